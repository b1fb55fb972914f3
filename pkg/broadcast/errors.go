package broadcast

import "errors"

var (
	// ErrBusClosed is returned when joining or publishing on a closed bus.
	ErrBusClosed = errors.New("broadcast: bus is closed")
	// ErrJoinFailed wraps transport errors while joining a group.
	ErrJoinFailed = errors.New("broadcast: failed to join group")
	// ErrEncodeFailed wraps payload serialization errors.
	ErrEncodeFailed = errors.New("broadcast: failed to encode message")
	// ErrPublishFailed wraps transport errors while publishing.
	ErrPublishFailed = errors.New("broadcast: failed to publish message")
)
