package store

import (
	"context"

	"github.com/dariomolina/cintelink-challenge/internal/notification"
)

// ListOptions filters and paginates the per-user delivery record list.
type ListOptions struct {
	Limit          int  // maximum rows to return (0 = no limit)
	Offset         int  // rows to skip
	ExcludeDeleted bool // drop soft-deleted records (HTTP list surface)
	OnlyUnread     bool // only unread records
}

// Store is the durable record store for tags, notifications, subscriptions
// and per-user delivery records. Implementations must be safe for
// concurrent use; CreateNotification must be atomic.
type Store interface {
	// CreateTag creates a tag with a unique, non-empty name.
	// Returns ErrEmptyTagName or ErrDuplicateTag.
	CreateTag(ctx context.Context, name string) (notification.Tag, error)

	// GetTag returns the tag by id, or ErrTagNotFound.
	GetTag(ctx context.Context, id int64) (notification.Tag, error)

	// GetUser resolves a user id against the user directory, or
	// ErrUserNotFound.
	GetUser(ctx context.Context, id int64) (notification.User, error)

	// CreateSubscription subscribes the user to the tag. The
	// (user, tag) pair is unique; a duplicate returns
	// ErrDuplicateSubscription. An unknown tag returns ErrTagNotFound.
	CreateSubscription(ctx context.Context, userID, tagID int64) (notification.Subscription, error)

	// DeleteSubscription removes the user's subscription by id. Only the
	// owning user's row is affected; a missing row returns
	// ErrSubscriptionNotFound.
	DeleteSubscription(ctx context.Context, userID, subID int64) error

	// CreateNotification persists a notification under the tag and, in
	// the same transaction, creates one delivery record per distinct
	// subscriber present at that instant. Duplicate delivery records are
	// silently skipped. Returns the notification and the created
	// delivery records, or ErrTagNotFound.
	CreateNotification(ctx context.Context, tagID int64, message string) (notification.Notification, []notification.UserNotification, error)

	// ListUserNotifications returns the user's delivery records joined
	// with their notification's message and timestamp, in insertion
	// order.
	ListUserNotifications(ctx context.Context, userID int64, opts ListOptions) ([]notification.UserNotificationView, error)

	// CountUserNotifications returns the number of rows
	// ListUserNotifications would yield for the same options, ignoring
	// Limit and Offset.
	CountUserNotifications(ctx context.Context, userID int64, opts ListOptions) (int, error)

	// MarkRead sets is_read on the user's delivery record. A record that
	// does not exist or belongs to another user is an untouched no-op.
	MarkRead(ctx context.Context, userID, id int64) error

	// MarkDeleted sets is_deleted the same way. Soft delete: the row
	// persists and can still be marked read.
	MarkDeleted(ctx context.Context, userID, id int64) error

	// CountUnread returns the user's unread, non-deleted record count.
	CountUnread(ctx context.Context, userID int64) (int, error)
}
