package format

import "errors"

// ErrInvalidTime indicates a time string could not be parsed.
var ErrInvalidTime = errors.New("invalid time format")
