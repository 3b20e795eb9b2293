package messages

import "errors"

// ErrUnknownComponentState is returned when unmarshalling an unrecognised
// ComponentState name.
var ErrUnknownComponentState = errors.New("messages: unknown component state")
