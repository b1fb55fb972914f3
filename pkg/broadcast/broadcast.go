package broadcast

import "context"

// Message wraps data of type T for type-safe broadcasting.
type Message[T any] struct {
	Data T
}

// Subscriber receives messages published to the group it joined.
// Implementations must be safe for concurrent use.
type Subscriber[T any] interface {
	// Receive returns the channel messages are delivered on. The channel
	// is closed when the subscriber leaves the group or the bus closes.
	Receive() <-chan Message[T]

	// Close leaves the group and releases resources. After Close the
	// receive channel is closed and no more messages arrive. Close is
	// idempotent.
	Close() error
}

// Bus routes messages to every subscriber currently joined under a group
// key. Publishing to a group with no subscribers is a safe no-op; there is
// no buffering or replay for late joiners. Delivery to a single subscriber
// preserves publish order for that group.
type Bus[T any] interface {
	// Join registers a new subscriber under the group key. The context
	// bounds the lifetime of the subscription: cancelling it leaves the
	// group, equivalent to calling Close on the subscriber.
	Join(ctx context.Context, group string) (Subscriber[T], error)

	// Publish delivers the message to all subscribers joined under the
	// group key at the time of the call.
	Publish(ctx context.Context, group string, msg Message[T]) error

	// Close shuts down the bus and closes all subscribers.
	Close() error
}
