package broadcast

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"

	"github.com/redis/go-redis/v9"
)

// RedisBus is the cluster-wide Bus implementation on top of Redis Pub/Sub.
// Every group maps to one Redis channel; payloads are JSON-encoded. Redis
// Pub/Sub has no replay, which matches the bus contract: only subscribers
// joined at publish time see a message.
type RedisBus[T any] struct {
	client     *redis.Client
	prefix     string
	bufferSize int
	logger     *slog.Logger

	subs   map[*redisSubscriber[T]]struct{}
	closed bool
	mu     sync.Mutex
	wg     sync.WaitGroup
}

// RedisBusOption configures a RedisBus.
type RedisBusOption[T any] func(*RedisBus[T])

// WithRedisBusLogger sets the logger used for decode and forwarding errors.
func WithRedisBusLogger[T any](logger *slog.Logger) RedisBusOption[T] {
	return func(b *RedisBus[T]) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// NewRedisBus creates a Redis-backed bus. The prefix namespaces the Redis
// channels so several deployments can share one Redis instance.
func NewRedisBus[T any](client *redis.Client, prefix string, bufferSize int, opts ...RedisBusOption[T]) *RedisBus[T] {
	b := &RedisBus[T]{
		client:     client,
		prefix:     prefix,
		bufferSize: max(bufferSize, 1),
		logger:     slog.Default(),
		subs:       make(map[*redisSubscriber[T]]struct{}),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *RedisBus[T]) channel(group string) string {
	return b.prefix + group
}

func (b *RedisBus[T]) Join(ctx context.Context, group string) (Subscriber[T], error) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil, ErrBusClosed
	}
	b.mu.Unlock()

	ps := b.client.Subscribe(ctx, b.channel(group))
	// Force the SUBSCRIBE round-trip so the caller is guaranteed to be
	// joined before Join returns; otherwise a publish racing the join
	// could be missed even inside one process.
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, errors.Join(ErrJoinFailed, err)
	}

	sub := &redisSubscriber[T]{
		pubsub: ps,
		ch:     make(chan Message[T], b.bufferSize),
		bus:    b,
	}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		_ = ps.Close()
		return nil, ErrBusClosed
	}
	b.subs[sub] = struct{}{}
	b.mu.Unlock()

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		sub.forward(b.logger)
	}()

	if ctx.Done() != nil {
		go func() {
			<-ctx.Done()
			_ = sub.Close()
		}()
	}

	return sub, nil
}

func (b *RedisBus[T]) Publish(ctx context.Context, group string, msg Message[T]) error {
	payload, err := json.Marshal(msg.Data)
	if err != nil {
		return errors.Join(ErrEncodeFailed, err)
	}
	if err := b.client.Publish(ctx, b.channel(group), payload).Err(); err != nil {
		return errors.Join(ErrPublishFailed, err)
	}
	return nil
}

func (b *RedisBus[T]) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	subs := make([]*redisSubscriber[T], 0, len(b.subs))
	for sub := range b.subs {
		subs = append(subs, sub)
	}
	clear(b.subs)
	b.mu.Unlock()

	for _, sub := range subs {
		_ = sub.close(false)
	}
	b.wg.Wait()
	return nil
}

func (b *RedisBus[T]) drop(sub *redisSubscriber[T]) {
	b.mu.Lock()
	delete(b.subs, sub)
	b.mu.Unlock()
}

type redisSubscriber[T any] struct {
	pubsub    *redis.PubSub
	ch        chan Message[T]
	bus       *RedisBus[T]
	closeOnce sync.Once
}

func (s *redisSubscriber[T]) Receive() <-chan Message[T] {
	return s.ch
}

func (s *redisSubscriber[T]) Close() error {
	return s.close(true)
}

func (s *redisSubscriber[T]) close(detach bool) error {
	var err error
	s.closeOnce.Do(func() {
		if detach {
			s.bus.drop(s)
		}
		// Closing the PubSub closes its message channel, which ends the
		// forward goroutine and closes s.ch.
		err = s.pubsub.Close()
	})
	return err
}

// forward decodes raw Redis messages onto the typed channel. Runs until the
// underlying PubSub closes.
func (s *redisSubscriber[T]) forward(logger *slog.Logger) {
	defer close(s.ch)

	for raw := range s.pubsub.Channel() {
		var data T
		if err := json.Unmarshal([]byte(raw.Payload), &data); err != nil {
			logger.Error("dropping undecodable bus payload",
				slog.String("channel", raw.Channel),
				slog.Any("error", err),
			)
			continue
		}

		select {
		case s.ch <- Message[T]{Data: data}:
		default:
			// Same slow-consumer policy as the memory bus: drop rather
			// than block the forwarding goroutine.
			logger.Warn("dropping bus message for slow subscriber",
				slog.String("channel", raw.Channel),
			)
		}
	}
}
