package notification

import "time"

// Tag is a named topic notifications are published under. Names are unique
// and non-empty; tags are effectively immutable once referenced.
type Tag struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Notification is a single published message tied to one tag. It is
// created once and never mutated; per-user state lives on UserNotification.
type Notification struct {
	ID        int64     `json:"id"`
	TagID     int64     `json:"tag_id"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// Subscription is a user's standing interest in a tag. The (UserID, TagID)
// pair is unique: a user subscribes to a tag at most once.
type Subscription struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	TagID     int64     `json:"tag_id"`
	CreatedAt time.Time `json:"created_at"`
}

// UserNotification is one subscriber's personal copy of a notification,
// the only entity a user mutates directly. The (UserID, NotificationID)
// pair is unique. Deletion is soft; the flags are independent booleans.
type UserNotification struct {
	ID             int64 `json:"id"`
	UserID         int64 `json:"user_id"`
	NotificationID int64 `json:"notification_id"`
	IsRead         bool  `json:"is_read"`
	IsDeleted      bool  `json:"is_deleted"`
}

// UserNotificationView is a delivery record joined with its notification's
// message and timestamp, the shape exposed on the wire for list responses
// and real-time pushes.
type UserNotificationView struct {
	ID        int64     `json:"id"`
	Message   string    `json:"message"`
	IsRead    bool      `json:"is_read"`
	Timestamp Timestamp `json:"timestamp"`
}

// User is the identity surface the core needs from the user directory.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}
