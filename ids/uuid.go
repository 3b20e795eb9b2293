package ids

import (
	"github.com/google/uuid"
)

// UUID4 is a random 128-bit identifier in canonical hyphenated 36-char
// string form.
type UUID4 struct {
	value uuid.UUID
}

// NewUUID4 mints a fresh random (version 4) UUID.
func NewUUID4() UUID4 {
	return UUID4{value: uuid.New()}
}

// ParseUUID4 parses the canonical hyphenated string form.
func ParseUUID4(s string) (UUID4, error) {
	v, err := uuid.Parse(s)
	if err != nil {
		return UUID4{}, err
	}
	return UUID4{value: v}, nil
}

// String returns the canonical hyphenated 36-char form.
func (u UUID4) String() string { return u.value.String() }

// Equals reports equality of the underlying 128-bit value.
func (u UUID4) Equals(other UUID4) bool { return u.value == other.value }

// IsZero reports whether this is the zero-value (nil) UUID.
func (u UUID4) IsZero() bool { return u.value == uuid.Nil }

// MarshalText implements encoding.TextMarshaler.
func (u UUID4) MarshalText() ([]byte, error) { return []byte(u.value.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (u *UUID4) UnmarshalText(text []byte) error {
	v, err := uuid.Parse(string(text))
	if err != nil {
		return err
	}
	u.value = v
	return nil
}
