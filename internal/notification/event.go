package notification

import (
	"strconv"
	"time"
)

// EventKind discriminates the events carried on the broadcast bus.
type EventKind string

const (
	// EventMessage is a fresh delivery produced by the fan-out engine.
	EventMessage EventKind = "notification_message"
	// EventRead propagates a mark-read so all of a user's sessions converge.
	EventRead EventKind = "notification_read"
	// EventDelete propagates a mark-deleted the same way.
	EventDelete EventKind = "notification_delete"
)

// Event is the payload published on the broadcast bus, keyed by the target
// user's group. Message, IsRead and Timestamp are only meaningful for
// EventMessage.
type Event struct {
	Kind      EventKind `json:"kind"`
	ID        int64     `json:"id"`
	Message   string    `json:"message,omitempty"`
	IsRead    bool      `json:"is_read,omitempty"`
	Timestamp time.Time `json:"timestamp,omitempty"`
}

// GroupKey derives the broadcast routing key addressing all live sessions
// of one user.
func GroupKey(userID int64) string {
	return "notifications_" + strconv.FormatInt(userID, 10)
}
