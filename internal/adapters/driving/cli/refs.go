package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/custodia-labs/restgate/internal/core/domain"
	"github.com/custodia-labs/restgate/internal/core/services"
)

// serviceSelector turns a service reference into a selector. A reference
// is a service ID, "host/ctx" or "/ctx" for services bound to any host.
// Without a reference the current service, or the only service, is used.
func serviceSelector(ref string) (domain.ServiceSelector, error) {
	if ref == "" {
		return domain.ServiceSelector{UseCurrent: true, AutoSelectSingle: true}, nil
	}
	if id, err := domain.ParseID(ref); err == nil {
		return domain.ByID(id), nil
	}
	i := strings.Index(ref, "/")
	if i < 0 {
		return domain.ServiceSelector{}, fmt.Errorf(
			"%w: service reference %q is neither an ID nor host/context-root", domain.ErrValidation, ref)
	}
	return domain.ByHostCtx(ref[:i], ref[i:]), nil
}

// contentSetSelector turns a content set reference into a selector. A
// reference is a content set ID or a request path within the service named
// by serviceRef.
func contentSetSelector(ref, serviceRef string) (domain.ContentSetSelector, error) {
	if ref != "" && !strings.HasPrefix(ref, "/") {
		id, err := domain.ParseID(ref)
		if err != nil {
			return domain.ContentSetSelector{}, fmt.Errorf(
				"%w: content set reference %q is neither an ID nor a request path", domain.ErrValidation, ref)
		}
		return domain.ContentSetSelector{ID: &id}, nil
	}
	svc, err := serviceSelector(serviceRef)
	if err != nil {
		return domain.ContentSetSelector{}, err
	}
	return domain.ContentSetSelector{Service: svc, RequestPath: ref, AutoSelectSingle: true}, nil
}

func optionalArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}

// readDocument parses a JSON value document given inline, as @file or as
// "-" for standard input.
func readDocument(value string, stdin io.Reader) (map[string]any, error) {
	var data []byte
	switch {
	case value == "-":
		b, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		data = b
	case strings.HasPrefix(value, "@"):
		b, err := os.ReadFile(value[1:])
		if err != nil {
			return nil, fmt.Errorf("failed to read document: %w", err)
		}
		data = b
	default:
		data = []byte(value)
	}
	return services.DecodeDocument(data)
}

// readOptions parses an options object. An empty value yields nil.
func readOptions(value string, stdin io.Reader) (map[string]any, error) {
	if value == "" {
		return nil, nil
	}
	return readDocument(value, stdin)
}
