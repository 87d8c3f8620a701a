package domain

import (
	"fmt"
	"strings"
)

// ValidatePath checks that a context root or request path is absolute.
func ValidatePath(field, path string) error {
	if !strings.HasPrefix(path, "/") {
		return fmt.Errorf("%w: the %s has to start with '/'", ErrValidation, field)
	}
	return nil
}

// NormalizePath returns the comparable form of a full path: the host part is
// lower-cased and trailing slashes are removed.
func NormalizePath(full string) string {
	host, rest := full, ""
	if i := strings.Index(full, "/"); i >= 0 {
		host, rest = full[:i], full[i:]
	}
	return strings.ToLower(host) + strings.TrimRight(rest, "/")
}

// PathsOverlap reports whether two normalized paths claim the same requests:
// they are equal or one is a segment prefix of the other. It returns the
// shorter of the two first.
func PathsOverlap(a, b string) (overlap bool, aIsShorter bool) {
	switch {
	case a == b:
		return true, true
	case strings.HasPrefix(b, a+"/"):
		return true, true
	case strings.HasPrefix(a, b+"/"):
		return true, false
	}
	return false, false
}

// PathClaim is a full path held by an enabled service or content set.
type PathClaim struct {
	Kind EntityKind
	// ID is the service or content set holding the path.
	ID ID
	// ServiceID is the owning service; equal to ID for services.
	ServiceID ID
	Path      string
}
