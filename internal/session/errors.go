package session

import "errors"

// ErrUnauthenticated is returned by Run when the handshake carries a
// missing or invalid token. The connection is closed without a payload.
var ErrUnauthenticated = errors.New("session: unauthenticated")
