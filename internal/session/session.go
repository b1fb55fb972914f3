package session

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/dariomolina/cintelink-challenge/internal/auth"
	"github.com/dariomolina/cintelink-challenge/internal/notification"
	"github.com/dariomolina/cintelink-challenge/internal/store"
	"github.com/dariomolina/cintelink-challenge/pkg/broadcast"
	"github.com/dariomolina/cintelink-challenge/pkg/logger"
)

// State is the connection lifecycle state.
type State int

const (
	// StateConnecting is the initial state before the token is verified.
	StateConnecting State = iota
	// StateAuthenticated means the token resolved to a user id.
	StateAuthenticated
	// StateActive means the session is joined to its broadcast group and
	// serving protocol messages.
	StateActive
	// StateClosed is terminal.
	StateClosed
)

// Session is the per-connection state machine. It authenticates the
// handshake token, joins the user's broadcast group, serves
// list/read/deleted requests and pushes delivery events until the
// transport closes.
type Session struct {
	id       string
	conn     Conn
	token    string
	verifier auth.Verifier
	store    store.Store
	bus      broadcast.Bus[notification.Event]
	logger   *slog.Logger

	mu     sync.Mutex
	state  State
	userID int64
	sub    broadcast.Subscriber[notification.Event]

	writeMu   sync.Mutex
	closeOnce sync.Once
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the session logger.
func WithLogger(log *slog.Logger) Option {
	return func(s *Session) {
		if log != nil {
			s.logger = log
		}
	}
}

// New creates a session over the given transport. token is the bearer
// credential extracted from the connection handshake.
func New(conn Conn, token string, verifier auth.Verifier, st store.Store, bus broadcast.Bus[notification.Event], opts ...Option) *Session {
	s := &Session{
		id:       uuid.New().String(),
		conn:     conn,
		token:    token,
		verifier: verifier,
		store:    st,
		bus:      bus,
		logger:   slog.Default(),
		state:    StateConnecting,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ID returns the session's unique identifier.
func (s *Session) ID() string { return s.id }

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// UserID returns the authenticated user id, zero before authentication.
func (s *Session) UserID() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.userID
}

func (s *Session) setState(state State) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}

// Run drives the session to completion: authenticate, join the broadcast
// group, serve messages, and deterministically leave the group before
// returning. An invalid or missing token closes the connection without any
// payload and returns ErrUnauthenticated.
func (s *Session) Run(ctx context.Context) error {
	defer s.Close()

	userID, err := s.authenticate(ctx)
	if err != nil {
		s.logger.LogAttrs(ctx, slog.LevelInfo, "session rejected",
			logger.SessionID(s.id),
			logger.Error(err),
		)
		return err
	}

	group := notification.GroupKey(userID)
	sub, err := s.bus.Join(ctx, group)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.sub = sub
	s.state = StateActive
	s.mu.Unlock()

	s.logger.LogAttrs(ctx, slog.LevelInfo, "session active",
		logger.SessionID(s.id),
		logger.UserID(userID),
		logger.Group(group),
	)

	pumpCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	pumpDone := make(chan struct{})
	go func() {
		defer close(pumpDone)
		s.pump(pumpCtx, sub)
	}()

	for {
		data, err := s.conn.ReadMessage(ctx)
		if err != nil {
			// Transport closed, client-initiated or otherwise.
			break
		}
		s.handleFrame(ctx, data)
	}

	// Leave the group before the task exits so nothing publishes into a
	// dead session.
	_ = sub.Close()
	cancel()
	<-pumpDone

	s.logger.LogAttrs(ctx, slog.LevelInfo, "session closed",
		logger.SessionID(s.id),
		logger.UserID(userID),
	)
	return nil
}

// authenticate performs Connecting -> Authenticated, or fails terminally.
func (s *Session) authenticate(ctx context.Context) (int64, error) {
	if s.token == "" {
		return 0, ErrUnauthenticated
	}

	userID, err := s.verifier.Verify(s.token)
	if err != nil {
		return 0, ErrUnauthenticated
	}

	// The token must resolve against the user directory, not just carry a
	// well-signed id.
	if _, err := s.store.GetUser(ctx, userID); err != nil {
		return 0, ErrUnauthenticated
	}

	s.mu.Lock()
	s.userID = userID
	s.state = StateAuthenticated
	s.mu.Unlock()

	return userID, nil
}

// pump forwards broadcast events to the client until the subscriber or the
// session context ends.
func (s *Session) pump(ctx context.Context, sub broadcast.Subscriber[notification.Event]) {
	for {
		select {
		case msg, ok := <-sub.Receive():
			if !ok {
				return
			}
			s.pushEvent(ctx, msg.Data)
		case <-ctx.Done():
			return
		}
	}
}

// pushEvent renders a bus event into its outbound frame.
func (s *Session) pushEvent(ctx context.Context, event notification.Event) {
	var frame any
	switch event.Kind {
	case notification.EventMessage:
		// Bare delivery push, no "type" wrapper.
		frame = notification.UserNotificationView{
			ID:        event.ID,
			Message:   event.Message,
			IsRead:    event.IsRead,
			Timestamp: notification.Timestamp(event.Timestamp),
		}
	case notification.EventRead:
		frame = ackFrame{Type: ackTypeRead, ID: event.ID}
	case notification.EventDelete:
		frame = ackFrame{Type: ackTypeDelete, ID: event.ID}
	default:
		return
	}
	s.write(ctx, frame)
}

// handleFrame dispatches one inbound message. Application-level failures
// are absorbed so the session stays available; only transport errors end
// the connection.
func (s *Session) handleFrame(ctx context.Context, data []byte) {
	var frame inboundFrame
	if err := json.Unmarshal(data, &frame); err != nil {
		s.logger.LogAttrs(ctx, slog.LevelDebug, "ignoring undecodable frame",
			logger.SessionID(s.id),
			logger.Error(err),
		)
		return
	}

	switch frame.Type {
	case typeNotificationsList:
		s.handleList(ctx, frame.Page, frame.PageSize)
	case typeRead:
		s.handleMark(ctx, frame.ID, notification.EventRead)
	case typeDeleted:
		s.handleMark(ctx, frame.ID, notification.EventDelete)
	default:
		s.logger.LogAttrs(ctx, slog.LevelDebug, "ignoring unrecognized message type",
			logger.SessionID(s.id),
			logger.MessageType(frame.Type),
		)
	}
}

// handleList serves one page of the user's delivery records.
func (s *Session) handleList(ctx context.Context, page, pageSize int) {
	userID := s.UserID()
	if pageSize <= 0 {
		pageSize = notification.DefaultPageSize
	}

	count, err := s.store.CountUserNotifications(ctx, userID, store.ListOptions{})
	if err != nil {
		s.logger.LogAttrs(ctx, slog.LevelError, "list count failed",
			logger.SessionID(s.id),
			logger.UserID(userID),
			logger.Error(err),
		)
		return
	}

	p := notification.ResolvePage(count, page, pageSize)
	rows, err := s.store.ListUserNotifications(ctx, userID, store.ListOptions{
		Limit:  pageSize,
		Offset: p.Start,
	})
	if err != nil {
		s.logger.LogAttrs(ctx, slog.LevelError, "list query failed",
			logger.SessionID(s.id),
			logger.UserID(userID),
			logger.Error(err),
		)
		return
	}
	if rows == nil {
		rows = []notification.UserNotificationView{}
	}

	s.write(ctx, listResponse{
		Type:       typeNotificationsList,
		Data:       rows,
		TotalPages: p.TotalPages,
	})
}

// handleMark applies a read or deleted flag to the caller's own record and
// broadcasts the change to every session in the caller's group. A foreign
// or unknown id mutates nothing; the broadcast still converges the
// caller's sessions on the store state.
func (s *Session) handleMark(ctx context.Context, id int64, kind notification.EventKind) {
	userID := s.UserID()

	var err error
	switch kind {
	case notification.EventRead:
		err = s.store.MarkRead(ctx, userID, id)
	case notification.EventDelete:
		err = s.store.MarkDeleted(ctx, userID, id)
	}
	if err != nil {
		s.logger.LogAttrs(ctx, slog.LevelError, "mark failed",
			logger.SessionID(s.id),
			logger.UserID(userID),
			logger.DeliveryID(id),
			logger.Error(err),
		)
		return
	}

	event := notification.Event{Kind: kind, ID: id}
	if err := s.bus.Publish(ctx, notification.GroupKey(userID), broadcast.Message[notification.Event]{Data: event}); err != nil {
		s.logger.LogAttrs(ctx, slog.LevelWarn, "mark broadcast failed",
			logger.SessionID(s.id),
			logger.UserID(userID),
			logger.DeliveryID(id),
			logger.Error(err),
		)
	}
}

// write marshals and sends one outbound frame, serialized across the
// read-loop and pump goroutines.
func (s *Session) write(ctx context.Context, frame any) {
	data, err := json.Marshal(frame)
	if err != nil {
		s.logger.LogAttrs(ctx, slog.LevelError, "frame marshal failed",
			logger.SessionID(s.id),
			logger.Error(err),
		)
		return
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if err := s.conn.WriteMessage(ctx, data); err != nil {
		s.logger.LogAttrs(ctx, slog.LevelDebug, "frame write failed",
			logger.SessionID(s.id),
			logger.Error(err),
		)
	}
}

// Close tears the session down: deregisters from the broadcast group and
// closes the transport. Idempotent and safe to call concurrently with Run.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		sub := s.sub
		s.state = StateClosed
		s.mu.Unlock()

		if sub != nil {
			_ = sub.Close()
		}
		_ = s.conn.Close()
	})
}
