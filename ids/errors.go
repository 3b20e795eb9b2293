package ids

import "errors"

// Identifier construction errors.
var (
	// ErrEmptyValue is returned when an identifier is built from an empty
	// or whitespace-only string.
	ErrEmptyValue = errors.New("ids: value must not be empty or whitespace")

	// ErrMissingTag is returned when a TraderId value has no hyphen
	// separating the name from the tag.
	ErrMissingTag = errors.New("ids: trader id must contain a hyphen separating name and tag")
)
