// Package ids implements the opaque, validated identifier types used
// throughout the substrate: Identifier, TraderId, ComponentId, and UUID4.
package ids

import (
	"hash/fnv"
	"strings"
)

// Identifier is the common shape shared by TraderId and ComponentId: an
// immutable, validated, non-empty string value with stable equality,
// hashing, and lexicographic ordering.
type Identifier struct {
	value string
	hash  *uint64
}

// newIdentifier validates value (non-empty, not all whitespace) and
// returns the backing Identifier.
func newIdentifier(value string) (Identifier, error) {
	if strings.TrimSpace(value) == "" {
		return Identifier{}, ErrEmptyValue
	}
	return Identifier{value: value}, nil
}

// Value returns the raw backing string.
func (i Identifier) Value() string { return i.value }

// String implements fmt.Stringer.
func (i Identifier) String() string { return i.value }

// Equals reports byte-wise equality of the backing values.
func (i Identifier) Equals(other Identifier) bool { return i.value == other.value }

// Less reports lexicographic ordering, so identifiers can sort
// deterministically (e.g. Clock.TimerNames()).
func (i Identifier) Less(other Identifier) bool { return i.value < other.value }

// Hash returns a memoised FNV-1a hash of the backing value. The hash is
// computed once and cached; this is the "optional hash" substitute
// spec.md §9 recommends in place of the "zero hash means recompute" trick.
func (i *Identifier) Hash() uint64 {
	if i.hash == nil {
		h := fnv.New64a()
		_, _ = h.Write([]byte(i.value))
		sum := h.Sum64()
		i.hash = &sum
	}
	return *i.hash
}

// TraderId is the top-level identity of a trading node, of the form
// NAME-TAG. Both NAME and TAG must be non-empty; TAG is everything after
// the final hyphen.
type TraderId struct {
	Identifier
}

// NewTraderId validates and constructs a TraderId. The value must be
// non-empty, not all whitespace, and contain at least one hyphen.
func NewTraderId(value string) (TraderId, error) {
	id, err := newIdentifier(value)
	if err != nil {
		return TraderId{}, err
	}
	if !strings.Contains(value, "-") {
		return TraderId{}, ErrMissingTag
	}
	return TraderId{Identifier: id}, nil
}

// GetTag returns the substring after the final hyphen.
func (t TraderId) GetTag() string {
	idx := strings.LastIndex(t.Value(), "-")
	if idx < 0 {
		return ""
	}
	return t.Value()[idx+1:]
}

// MarshalText implements encoding.TextMarshaler so TraderId round-trips
// through the config loader and cloudevents JSON payloads.
func (t TraderId) MarshalText() ([]byte, error) { return []byte(t.Value()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *TraderId) UnmarshalText(text []byte) error {
	id, err := NewTraderId(string(text))
	if err != nil {
		return err
	}
	*t = id
	return nil
}

// ComponentId is the identity of a component within a trader.
type ComponentId struct {
	Identifier
}

// NewComponentId validates and constructs a ComponentId.
func NewComponentId(value string) (ComponentId, error) {
	id, err := newIdentifier(value)
	if err != nil {
		return ComponentId{}, err
	}
	return ComponentId{Identifier: id}, nil
}

// MarshalText implements encoding.TextMarshaler.
func (c ComponentId) MarshalText() ([]byte, error) { return []byte(c.Value()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *ComponentId) UnmarshalText(text []byte) error {
	id, err := NewComponentId(string(text))
	if err != nil {
		return err
	}
	*c = id
	return nil
}
