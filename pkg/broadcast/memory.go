package broadcast

import (
	"context"
	"sync"
)

// memorySubscriber is a buffered-channel subscriber backed by MemoryBus.
type memorySubscriber[T any] struct {
	group  string
	ch     chan Message[T]
	bus    *MemoryBus[T]
	closed bool
	mu     sync.RWMutex
}

func (s *memorySubscriber[T]) Receive() <-chan Message[T] {
	return s.ch
}

func (s *memorySubscriber[T]) Close() error {
	s.bus.leave(s)
	return nil
}

// send delivers non-blocking; a full buffer drops the message so one slow
// session never stalls a publish.
func (s *memorySubscriber[T]) send(msg Message[T]) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return false
	}

	select {
	case s.ch <- msg:
		return true
	default:
		return false
	}
}

func (s *memorySubscriber[T]) closeChan() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.closed {
		close(s.ch)
		s.closed = true
	}
}

// MemoryBus is the process-local Bus implementation. Groups are created on
// first join and reclaimed when their last subscriber leaves. All methods
// are safe for concurrent use.
type MemoryBus[T any] struct {
	groups     map[string]map[*memorySubscriber[T]]struct{}
	bufferSize int
	closed     bool
	mu         sync.RWMutex
	cleanupWg  sync.WaitGroup
}

// NewMemoryBus creates an in-memory bus. bufferSize sets each subscriber's
// channel buffer; a minimum of 1 is enforced so sends stay non-blocking.
func NewMemoryBus[T any](bufferSize int) *MemoryBus[T] {
	return &MemoryBus[T]{
		groups:     make(map[string]map[*memorySubscriber[T]]struct{}),
		bufferSize: max(bufferSize, 1),
	}
}

func (b *MemoryBus[T]) Join(ctx context.Context, group string) (Subscriber[T], error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil, ErrBusClosed
	}

	sub := &memorySubscriber[T]{
		group: group,
		ch:    make(chan Message[T], b.bufferSize),
		bus:   b,
	}

	members, ok := b.groups[group]
	if !ok {
		members = make(map[*memorySubscriber[T]]struct{})
		b.groups[group] = members
	}
	members[sub] = struct{}{}

	if ctx.Done() != nil {
		b.cleanupWg.Add(1)
		go func() {
			defer b.cleanupWg.Done()
			<-ctx.Done()
			b.leave(sub)
		}()
	}

	return sub, nil
}

func (b *MemoryBus[T]) Publish(ctx context.Context, group string, msg Message[T]) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return ErrBusClosed
	}

	// Absent group: nobody is connected, which is not an error.
	for sub := range b.groups[group] {
		if !sub.send(msg) {
			// Slow or closed subscribers are detached asynchronously so
			// the publish path never takes the write lock.
			go b.leave(sub)
		}
	}

	return nil
}

// GroupSize reports the number of subscribers joined under the group key.
func (b *MemoryBus[T]) GroupSize(group string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.groups[group])
}

func (b *MemoryBus[T]) Close() error {
	b.mu.Lock()

	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true

	for _, members := range b.groups {
		for sub := range members {
			sub.closeChan()
		}
	}
	clear(b.groups)
	b.mu.Unlock()

	// Wait for context-cancellation watchers so Close and async leave
	// cannot race.
	b.cleanupWg.Wait()

	return nil
}

func (b *MemoryBus[T]) leave(sub *memorySubscriber[T]) {
	b.mu.Lock()
	defer b.mu.Unlock()

	members, ok := b.groups[sub.group]
	if ok {
		delete(members, sub)
		if len(members) == 0 {
			delete(b.groups, sub.group)
		}
	}
	sub.closeChan()
}
