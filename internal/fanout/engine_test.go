package fanout

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dariomolina/cintelink-challenge/internal/notification"
	"github.com/dariomolina/cintelink-challenge/internal/store"
	"github.com/dariomolina/cintelink-challenge/pkg/broadcast"
)

type mockBus struct {
	mock.Mock
}

func (m *mockBus) Join(ctx context.Context, group string) (broadcast.Subscriber[notification.Event], error) {
	args := m.Called(ctx, group)
	sub, _ := args.Get(0).(broadcast.Subscriber[notification.Event])
	return sub, args.Error(1)
}

func (m *mockBus) Publish(ctx context.Context, group string, msg broadcast.Message[notification.Event]) error {
	args := m.Called(ctx, group, msg)
	return args.Error(0)
}

func (m *mockBus) Close() error {
	args := m.Called()
	return args.Error(0)
}

func setup(t *testing.T) (*Engine, *store.Memory, *broadcast.MemoryBus[notification.Event]) {
	t.Helper()

	st := store.NewMemory()
	bus := broadcast.NewMemoryBus[notification.Event](8)
	t.Cleanup(func() { _ = bus.Close() })
	return New(st, bus), st, bus
}

func TestEngine_Publish(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	engine, st, bus := setup(t)

	alice := st.AddUser("alice")
	bob := st.AddUser("bob")
	tag, err := engine.CreateTag(ctx, "releases")
	require.NoError(t, err)

	_, err = engine.Subscribe(ctx, alice.ID, tag.ID)
	require.NoError(t, err)
	_, err = engine.Subscribe(ctx, bob.ID, tag.ID)
	require.NoError(t, err)

	aliceSub, err := bus.Join(ctx, notification.GroupKey(alice.ID))
	require.NoError(t, err)
	bobSub, err := bus.Join(ctx, notification.GroupKey(bob.ID))
	require.NoError(t, err)

	notif, err := engine.Publish(ctx, tag.ID, "v2.0 is out")
	require.NoError(t, err)
	assert.Equal(t, "v2.0 is out", notif.Message)

	for _, sub := range []broadcast.Subscriber[notification.Event]{aliceSub, bobSub} {
		select {
		case msg := <-sub.Receive():
			assert.Equal(t, notification.EventMessage, msg.Data.Kind)
			assert.Equal(t, "v2.0 is out", msg.Data.Message)
			assert.False(t, msg.Data.IsRead)
			assert.NotZero(t, msg.Data.ID)
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for delivery event")
		}
	}

	rows, err := st.ListUserNotifications(ctx, alice.ID, store.ListOptions{})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "v2.0 is out", rows[0].Message)
}

func TestEngine_Publish_UnknownTag(t *testing.T) {
	t.Parallel()

	engine, _, _ := setup(t)

	_, err := engine.Publish(context.Background(), 9999, "lost")
	assert.ErrorIs(t, err, store.ErrTagNotFound)
}

func TestEngine_Publish_EmptyMessage(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	engine, st, _ := setup(t)

	tag, err := engine.CreateTag(ctx, "empty")
	require.NoError(t, err)

	for _, message := range []string{"", "   ", "\t\n"} {
		_, err := engine.Publish(ctx, tag.ID, message)
		assert.ErrorIs(t, err, ErrEmptyMessage)
	}

	// Nothing persisted for the subscriber either.
	alice := st.AddUser("alice")
	_, err = engine.Subscribe(ctx, alice.ID, tag.ID)
	require.NoError(t, err)
	_, err = engine.Publish(ctx, tag.ID, " ")
	require.ErrorIs(t, err, ErrEmptyMessage)

	rows, err := st.ListUserNotifications(ctx, alice.ID, store.ListOptions{})
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestEngine_Publish_SnapshotSemantics(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	engine, st, _ := setup(t)

	alice := st.AddUser("alice")
	late := st.AddUser("late")
	tag, err := engine.CreateTag(ctx, "snapshot")
	require.NoError(t, err)
	_, err = engine.Subscribe(ctx, alice.ID, tag.ID)
	require.NoError(t, err)

	_, err = engine.Publish(ctx, tag.ID, "before late joined")
	require.NoError(t, err)

	_, err = engine.Subscribe(ctx, late.ID, tag.ID)
	require.NoError(t, err)

	rows, err := st.ListUserNotifications(ctx, late.ID, store.ListOptions{})
	require.NoError(t, err)
	assert.Empty(t, rows, "late subscriber must not see earlier notifications")

	_, err = engine.Publish(ctx, tag.ID, "after late joined")
	require.NoError(t, err)

	rows, err = st.ListUserNotifications(ctx, late.ID, store.ListOptions{})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "after late joined", rows[0].Message)
}

func TestEngine_Publish_NoSubscribers(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	engine, _, _ := setup(t)

	tag, err := engine.CreateTag(ctx, "lonely")
	require.NoError(t, err)

	notif, err := engine.Publish(ctx, tag.ID, "anyone there?")
	require.NoError(t, err)
	assert.NotZero(t, notif.ID)
}

func TestEngine_Publish_BusFailureDoesNotRollBack(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	st := store.NewMemory()
	bus := &mockBus{}
	engine := New(st, bus)

	alice := st.AddUser("alice")
	tag, err := engine.CreateTag(ctx, "flaky")
	require.NoError(t, err)
	_, err = engine.Subscribe(ctx, alice.ID, tag.ID)
	require.NoError(t, err)

	bus.On("Publish", mock.Anything, notification.GroupKey(alice.ID), mock.Anything).
		Return(errors.New("bus is down"))

	notif, err := engine.Publish(ctx, tag.ID, "still persisted")
	require.NoError(t, err)
	assert.NotZero(t, notif.ID)

	rows, err := st.ListUserNotifications(ctx, alice.ID, store.ListOptions{})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "still persisted", rows[0].Message)

	bus.AssertExpectations(t)
}

func TestEngine_Subscribe_DuplicateIsIdempotent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	engine, st, _ := setup(t)

	alice := st.AddUser("alice")
	tag, err := engine.CreateTag(ctx, "dup")
	require.NoError(t, err)

	first, err := engine.Subscribe(ctx, alice.ID, tag.ID)
	require.NoError(t, err)
	require.NotZero(t, first.ID)

	again, err := engine.Subscribe(ctx, alice.ID, tag.ID)
	require.NoError(t, err)
	assert.Equal(t, alice.ID, again.UserID)
	assert.Equal(t, tag.ID, again.TagID)

	// Exactly one delivery per publish, not one per duplicate attempt.
	_, err = engine.Publish(ctx, tag.ID, "once")
	require.NoError(t, err)

	rows, err := st.ListUserNotifications(ctx, alice.ID, store.ListOptions{})
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestEngine_Unsubscribe(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	engine, st, _ := setup(t)

	alice := st.AddUser("alice")
	tag, err := engine.CreateTag(ctx, "churn")
	require.NoError(t, err)

	sub, err := engine.Subscribe(ctx, alice.ID, tag.ID)
	require.NoError(t, err)

	require.NoError(t, engine.Unsubscribe(ctx, alice.ID, sub.ID))
	assert.ErrorIs(t, engine.Unsubscribe(ctx, alice.ID, sub.ID), store.ErrSubscriptionNotFound)

	_, err = engine.Publish(ctx, tag.ID, "after unsubscribe")
	require.NoError(t, err)

	rows, err := st.ListUserNotifications(ctx, alice.ID, store.ListOptions{})
	require.NoError(t, err)
	assert.Empty(t, rows)
}
