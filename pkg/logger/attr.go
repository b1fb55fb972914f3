package logger

import "log/slog"

// Error creates an attribute for a single error under the key "error".
// If err is nil, it returns an empty Attr.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// UserID records the user identifier under the key "user_id".
func UserID(id int64) slog.Attr {
	return slog.Int64("user_id", id)
}

// TagID records the tag identifier under the key "tag_id".
func TagID(id int64) slog.Attr {
	return slog.Int64("tag_id", id)
}

// NotificationID records the notification identifier under the key "notification_id".
func NotificationID(id int64) slog.Attr {
	return slog.Int64("notification_id", id)
}

// DeliveryID records the per-user delivery record identifier under the key "delivery_id".
func DeliveryID(id int64) slog.Attr {
	return slog.Int64("delivery_id", id)
}

// SessionID records the session identifier under the key "session_id".
func SessionID(id string) slog.Attr {
	return slog.String("session_id", id)
}

// Group records the broadcast group key under the key "group".
func Group(key string) slog.Attr {
	return slog.String("group", key)
}

// Component records the component name under the key "component".
func Component(name string) slog.Attr {
	return slog.String("component", name)
}

// MessageType records an inbound or outbound frame type under the key "message_type".
func MessageType(t string) slog.Attr {
	return slog.String("message_type", t)
}
