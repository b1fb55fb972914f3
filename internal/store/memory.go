package store

import (
	"context"
	"sync"
	"time"

	"github.com/dariomolina/cintelink-challenge/internal/notification"
)

// Memory is an in-memory Store implementation suitable for development and
// tests. The single mutex stands in for the transactional guarantees the
// postgres implementation gets from the database.
type Memory struct {
	mu sync.RWMutex

	users      map[int64]notification.User
	tags       map[int64]notification.Tag
	tagsByName map[string]int64
	subs       map[int64]notification.Subscription
	notifs     map[int64]notification.Notification
	deliveries []notification.UserNotification // insertion order, ids ascending

	nextUserID     int64
	nextTagID      int64
	nextSubID      int64
	nextNotifID    int64
	nextDeliveryID int64
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		users:      make(map[int64]notification.User),
		tags:       make(map[int64]notification.Tag),
		tagsByName: make(map[string]int64),
		subs:       make(map[int64]notification.Subscription),
		notifs:     make(map[int64]notification.Notification),
	}
}

// AddUser seeds a user into the directory and returns it. There is no
// user-creation operation in the protocol; identities come from outside.
func (s *Memory) AddUser(username string) notification.User {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextUserID++
	u := notification.User{ID: s.nextUserID, Username: username}
	s.users[u.ID] = u
	return u
}

func (s *Memory) CreateTag(ctx context.Context, name string) (notification.Tag, error) {
	if name == "" {
		return notification.Tag{}, ErrEmptyTagName
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.tagsByName[name]; exists {
		return notification.Tag{}, ErrDuplicateTag
	}

	s.nextTagID++
	tag := notification.Tag{ID: s.nextTagID, Name: name}
	s.tags[tag.ID] = tag
	s.tagsByName[name] = tag.ID
	return tag, nil
}

func (s *Memory) GetTag(ctx context.Context, id int64) (notification.Tag, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tag, ok := s.tags[id]
	if !ok {
		return notification.Tag{}, ErrTagNotFound
	}
	return tag, nil
}

func (s *Memory) GetUser(ctx context.Context, id int64) (notification.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return notification.User{}, ErrUserNotFound
	}
	return u, nil
}

func (s *Memory) CreateSubscription(ctx context.Context, userID, tagID int64) (notification.Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tags[tagID]; !ok {
		return notification.Subscription{}, ErrTagNotFound
	}
	if _, ok := s.users[userID]; !ok {
		return notification.Subscription{}, ErrUserNotFound
	}
	for _, sub := range s.subs {
		if sub.UserID == userID && sub.TagID == tagID {
			return notification.Subscription{}, ErrDuplicateSubscription
		}
	}

	s.nextSubID++
	sub := notification.Subscription{
		ID:        s.nextSubID,
		UserID:    userID,
		TagID:     tagID,
		CreatedAt: time.Now().UTC(),
	}
	s.subs[sub.ID] = sub
	return sub, nil
}

func (s *Memory) DeleteSubscription(ctx context.Context, userID, subID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sub, ok := s.subs[subID]
	if !ok || sub.UserID != userID {
		return ErrSubscriptionNotFound
	}
	delete(s.subs, subID)
	return nil
}

func (s *Memory) CreateNotification(ctx context.Context, tagID int64, message string) (notification.Notification, []notification.UserNotification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tags[tagID]; !ok {
		return notification.Notification{}, nil, ErrTagNotFound
	}

	s.nextNotifID++
	notif := notification.Notification{
		ID:        s.nextNotifID,
		TagID:     tagID,
		Message:   message,
		Timestamp: time.Now().UTC(),
	}
	s.notifs[notif.ID] = notif

	// Snapshot of current subscribers, one delivery per distinct user.
	seen := make(map[int64]bool)
	var created []notification.UserNotification
	for _, sub := range s.subs {
		if sub.TagID != tagID || seen[sub.UserID] {
			continue
		}
		seen[sub.UserID] = true

		s.nextDeliveryID++
		rec := notification.UserNotification{
			ID:             s.nextDeliveryID,
			UserID:         sub.UserID,
			NotificationID: notif.ID,
		}
		s.deliveries = append(s.deliveries, rec)
		created = append(created, rec)
	}

	return notif, created, nil
}

// collect returns the user's joined delivery rows matching opts, ignoring
// Limit and Offset. Callers hold at least the read lock.
func (s *Memory) collect(userID int64, opts ListOptions) []notification.UserNotificationView {
	var rows []notification.UserNotificationView
	for _, rec := range s.deliveries {
		if rec.UserID != userID {
			continue
		}
		if opts.ExcludeDeleted && rec.IsDeleted {
			continue
		}
		if opts.OnlyUnread && rec.IsRead {
			continue
		}
		notif := s.notifs[rec.NotificationID]
		rows = append(rows, notification.UserNotificationView{
			ID:        rec.ID,
			Message:   notif.Message,
			IsRead:    rec.IsRead,
			Timestamp: notification.Timestamp(notif.Timestamp),
		})
	}
	return rows
}

func (s *Memory) ListUserNotifications(ctx context.Context, userID int64, opts ListOptions) ([]notification.UserNotificationView, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows := s.collect(userID, opts)

	start := min(opts.Offset, len(rows))
	end := len(rows)
	if opts.Limit > 0 {
		end = min(start+opts.Limit, len(rows))
	}

	return rows[start:end], nil
}

func (s *Memory) CountUserNotifications(ctx context.Context, userID int64, opts ListOptions) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.collect(userID, opts)), nil
}

func (s *Memory) MarkRead(ctx context.Context, userID, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.deliveries {
		if s.deliveries[i].ID == id && s.deliveries[i].UserID == userID {
			s.deliveries[i].IsRead = true
			return nil
		}
	}
	// Unknown or foreign record: silent no-op per the protocol.
	return nil
}

func (s *Memory) MarkDeleted(ctx context.Context, userID, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.deliveries {
		if s.deliveries[i].ID == id && s.deliveries[i].UserID == userID {
			s.deliveries[i].IsDeleted = true
			return nil
		}
	}
	return nil
}

func (s *Memory) CountUnread(ctx context.Context, userID int64) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, rec := range s.deliveries {
		if rec.UserID == userID && !rec.IsRead && !rec.IsDeleted {
			count++
		}
	}
	return count, nil
}

// Delivery returns a delivery record by id, for test assertions.
func (s *Memory) Delivery(id int64) (notification.UserNotification, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, rec := range s.deliveries {
		if rec.ID == id {
			return rec, true
		}
	}
	return notification.UserNotification{}, false
}
