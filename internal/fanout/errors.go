package fanout

import "errors"

// ErrEmptyMessage is returned when publishing a blank message.
var ErrEmptyMessage = errors.New("fanout: message must not be empty")
