package session

import "github.com/dariomolina/cintelink-challenge/internal/notification"

// Inbound message types recognized in the Active state. Anything else is
// ignored without a response.
const (
	typeNotificationsList = "notifications_list"
	typeRead              = "read"
	typeDeleted           = "deleted"
)

// inboundFrame is the envelope for client messages. Page and PageSize only
// apply to notifications_list, ID only to read/deleted; absent fields are
// zero and resolved to protocol defaults downstream.
type inboundFrame struct {
	Type     string `json:"type"`
	Page     int    `json:"page"`
	PageSize int    `json:"page_size"`
	ID       int64  `json:"id"`
}

// listResponse answers a notifications_list request.
type listResponse struct {
	Type       string                              `json:"type"`
	Data       []notification.UserNotificationView `json:"data"`
	TotalPages int                                 `json:"total_pages"`
}

// ackFrame propagates a read or delete to all of the user's sessions.
type ackFrame struct {
	Type string `json:"type"`
	ID   int64  `json:"id"`
}

const (
	ackTypeRead   = "read"
	ackTypeDelete = "delete"
)

// The delivery push has no envelope of its own: it is the bare
// notification.UserNotificationView, without a "type" field. The shape is
// asymmetric with the other outbound frames but is kept deliberately for
// wire compatibility with existing clients.
