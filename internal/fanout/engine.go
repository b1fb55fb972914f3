package fanout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dariomolina/cintelink-challenge/internal/notification"
	"github.com/dariomolina/cintelink-challenge/internal/store"
	"github.com/dariomolina/cintelink-challenge/pkg/broadcast"
	"github.com/dariomolina/cintelink-challenge/pkg/logger"
)

// Engine expands a published notification into per-subscriber delivery
// records and pushes a delivery event to each affected user's broadcast
// group. It also fronts the subscription operations whose uniqueness
// invariant the fan-out depends on.
type Engine struct {
	store  store.Store
	bus    broadcast.Bus[notification.Event]
	logger *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger for the Engine.
func WithLogger(log *slog.Logger) Option {
	return func(e *Engine) {
		if log != nil {
			e.logger = log
		}
	}
}

// New creates a fan-out engine over the given store and bus.
func New(st store.Store, bus broadcast.Bus[notification.Event], opts ...Option) *Engine {
	e := &Engine{
		store:  st,
		bus:    bus,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Publish persists a notification under the tag, creates one delivery
// record per subscriber in the store's transaction-consistent snapshot,
// and emits a delivery event per record.
//
// Persistence is atomic: either every snapshot subscriber gets a record or
// the publish fails. Event emission is best effort; a failed push is
// logged and the record stays retrievable through the paged list.
func (e *Engine) Publish(ctx context.Context, tagID int64, message string) (notification.Notification, error) {
	if strings.TrimSpace(message) == "" {
		return notification.Notification{}, ErrEmptyMessage
	}

	notif, deliveries, err := e.store.CreateNotification(ctx, tagID, message)
	if err != nil {
		if errors.Is(err, store.ErrTagNotFound) {
			return notification.Notification{}, store.ErrTagNotFound
		}
		return notification.Notification{}, fmt.Errorf("fanout: publish: %w", err)
	}

	for _, rec := range deliveries {
		event := notification.Event{
			Kind:      notification.EventMessage,
			ID:        rec.ID,
			Message:   notif.Message,
			IsRead:    rec.IsRead,
			Timestamp: notif.Timestamp,
		}
		if err := e.bus.Publish(ctx, notification.GroupKey(rec.UserID), broadcast.Message[notification.Event]{Data: event}); err != nil {
			e.logger.LogAttrs(ctx, slog.LevelWarn, "delivery event not pushed, record remains listable",
				logger.UserID(rec.UserID),
				logger.DeliveryID(rec.ID),
				logger.NotificationID(notif.ID),
				logger.Error(err),
			)
		}
	}

	e.logger.LogAttrs(ctx, slog.LevelInfo, "notification published",
		logger.NotificationID(notif.ID),
		logger.TagID(tagID),
		slog.Int("subscribers", len(deliveries)),
	)

	return notif, nil
}

// CreateTag creates a named tag for notifications to be published under.
func (e *Engine) CreateTag(ctx context.Context, name string) (notification.Tag, error) {
	return e.store.CreateTag(ctx, name)
}

// Subscribe registers the user's interest in a tag. A duplicate
// subscription is an idempotent no-op: the existing interest stands and no
// error is surfaced.
func (e *Engine) Subscribe(ctx context.Context, userID, tagID int64) (notification.Subscription, error) {
	sub, err := e.store.CreateSubscription(ctx, userID, tagID)
	if err != nil {
		if errors.Is(err, store.ErrDuplicateSubscription) {
			e.logger.LogAttrs(ctx, slog.LevelDebug, "duplicate subscription ignored",
				logger.UserID(userID),
				logger.TagID(tagID),
			)
			return notification.Subscription{UserID: userID, TagID: tagID}, nil
		}
		return notification.Subscription{}, err
	}
	return sub, nil
}

// Unsubscribe removes the user's subscription by id.
func (e *Engine) Unsubscribe(ctx context.Context, userID, subID int64) error {
	return e.store.DeleteSubscription(ctx, userID, subID)
}
