package domain

import (
	"bytes"
	"database/sql/driver"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// IDSize is the length in bytes of a binary identity.
const IDSize = 16

// ID is the binary identity shared by all metadata rows.
// Its canonical text form is "0x" followed by 32 lowercase hex digits.
type ID [IDSize]byte

// NilID is the zero identity. It never identifies a stored row.
var NilID ID

// ParseID parses "0x"-prefixed hex, bare hex or hyphenated UUID text.
func ParseID(s string) (ID, error) {
	var id ID
	raw := strings.TrimSpace(s)
	raw = strings.TrimPrefix(strings.TrimPrefix(raw, "0x"), "0X")
	raw = strings.ReplaceAll(raw, "-", "")
	if len(raw) != IDSize*2 {
		return id, fmt.Errorf("%w: malformed id %q", ErrValidation, s)
	}
	if _, err := hex.Decode(id[:], []byte(raw)); err != nil {
		return id, fmt.Errorf("%w: malformed id %q", ErrValidation, s)
	}
	return id, nil
}

// MustParseID is like ParseID but panics on malformed input.
// Intended for fixed identities such as seeded vendors.
func MustParseID(s string) ID {
	id, err := ParseID(s)
	if err != nil {
		panic(err)
	}
	return id
}

// IDFromBytes converts a stored binary value into an ID.
func IDFromBytes(b []byte) (ID, error) {
	var id ID
	if len(b) != IDSize {
		return id, fmt.Errorf("%w: id must be %d bytes, got %d", ErrValidation, IDSize, len(b))
	}
	copy(id[:], b)
	return id, nil
}

// String returns the canonical "0x..." form.
func (id ID) String() string {
	return "0x" + hex.EncodeToString(id[:])
}

// IsZero reports whether id is the zero identity.
func (id ID) IsZero() bool {
	return id == NilID
}

// Bytes returns a copy of the binary form.
func (id ID) Bytes() []byte {
	b := make([]byte, IDSize)
	copy(b, id[:])
	return b
}

// Compare orders identities bytewise.
func (id ID) Compare(other ID) int {
	return bytes.Compare(id[:], other[:])
}

// MarshalJSON encodes the canonical text form.
func (id ID) MarshalJSON() ([]byte, error) {
	return json.Marshal(id.String())
}

// UnmarshalJSON accepts any text form understood by ParseID.
func (id *ID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("%w: id must be a string", ErrValidation)
	}
	parsed, err := ParseID(s)
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// Value implements driver.Valuer so IDs bind as binary columns.
func (id ID) Value() (driver.Value, error) {
	return id.Bytes(), nil
}

// Scan implements sql.Scanner for binary columns.
func (id *ID) Scan(src any) error {
	switch v := src.(type) {
	case []byte:
		parsed, err := IDFromBytes(v)
		if err != nil {
			return err
		}
		*id = parsed
		return nil
	case string:
		parsed, err := IDFromBytes([]byte(v))
		if err != nil {
			return err
		}
		*id = parsed
		return nil
	default:
		return fmt.Errorf("cannot scan %T into ID", src)
	}
}

// ChildRef identifies a child row in a nested update document: either a
// row still to be created or an existing row.
type ChildRef struct {
	id       ID
	existing bool
}

// NewChild returns a reference to a row that does not exist yet.
func NewChild() ChildRef {
	return ChildRef{}
}

// ExistingChild returns a reference to the stored row with the given id.
func ExistingChild(id ID) ChildRef {
	return ChildRef{id: id, existing: true}
}

// IsNew reports whether the reference stands for a row to be inserted.
func (r ChildRef) IsNew() bool {
	return !r.existing
}

// ID returns the referenced identity; ok is false for new rows.
func (r ChildRef) ID() (id ID, ok bool) {
	return r.id, r.existing
}

// String renders "new" or the canonical id.
func (r ChildRef) String() string {
	if !r.existing {
		return "new"
	}
	return r.id.String()
}

// MarshalJSON encodes new rows as null.
func (r ChildRef) MarshalJSON() ([]byte, error) {
	if !r.existing {
		return []byte("null"), nil
	}
	return r.id.MarshalJSON()
}

// UnmarshalJSON maps null, negative numbers and "-"-prefixed strings to a
// new row. GUI clients send -1, -2, ... as placeholders for unsaved rows.
func (r *ChildRef) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" || trimmed == "" {
		*r = NewChild()
		return nil
	}
	if n, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
		if n < 0 {
			*r = NewChild()
			return nil
		}
		return fmt.Errorf("%w: numeric id %d is not a valid identity", ErrValidation, n)
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("%w: id must be a string", ErrValidation)
	}
	if s == "" || strings.HasPrefix(s, "-") {
		*r = NewChild()
		return nil
	}
	id, err := ParseID(s)
	if err != nil {
		return err
	}
	*r = ExistingChild(id)
	return nil
}
