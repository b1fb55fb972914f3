package auth

import "errors"

var (
	// ErrMissingSecret is returned when the verifier is built without a key.
	ErrMissingSecret = errors.New("auth: signing secret is required")
	// ErrInvalidToken covers every verification failure: bad signature,
	// malformed token, expired claims, missing user id.
	ErrInvalidToken = errors.New("auth: invalid token")
)
