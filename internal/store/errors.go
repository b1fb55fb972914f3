package store

import "errors"

var (
	ErrTagNotFound           = errors.New("store: tag not found")
	ErrUserNotFound          = errors.New("store: user not found")
	ErrSubscriptionNotFound  = errors.New("store: subscription not found")
	ErrEmptyTagName          = errors.New("store: tag name must not be empty")
	ErrDuplicateTag          = errors.New("store: tag name already exists")
	ErrDuplicateSubscription = errors.New("store: user is already subscribed to tag")
)
