// Package feed distributes document change notifications to live
// subscribers.
//
// Every subscription owns a small mailbox drained by its own goroutine: one
// slot for the latest change and one for the latest failure notice. A
// publisher never blocks on a slow subscriber: a newer change replaces an
// undelivered older one, and a failure never displaces a pending change.
// Changes carry a monotonically increasing document version and a
// subscription never delivers a version older than one it has already
// accepted, so delivery order follows write order even when changes reach
// the bus over several paths.
package feed

import (
	"context"
	"sync"
)

// Change is the full state of one document after a write.
type Change struct {
	Key     string
	Body    []byte
	Exists  bool
	Version int64
	// Err is set on changes that report a feed failure instead of a write.
	Err error
}

type Handler func(Change)

type Bus interface {
	Publish(ctx context.Context, c Change) error
	Subscribe(key string, h Handler) *Subscription
	Close() error
}

// Subscription is one registered handler.
type Subscription struct {
	key    string
	h      Handler
	detach func()

	mu       sync.Mutex
	pending  *Change
	failure  *Change
	accepted bool
	last     int64
	closed   bool

	// failFirst orders the two slots when both are full.
	failFirst bool

	signal chan struct{}
	done   chan struct{}
	once   sync.Once
}

func newSubscription(key string, h Handler, detach func()) *Subscription {
	s := &Subscription{
		key:    key,
		h:      h,
		detach: detach,
		signal: make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
	go s.run()
	return s
}

// Offer queues c for delivery. Changes for other keys and changes older
// than the newest accepted version are dropped.
func (s *Subscription) Offer(c Change) {
	if c.Key != s.key {
		return
	}
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	if c.Err != nil {
		s.failure = &c
		s.failFirst = s.pending == nil
	} else {
		if s.accepted && c.Version <= s.last {
			s.mu.Unlock()
			return
		}
		s.accepted = true
		s.last = c.Version
		s.pending = &c
		if s.failure != nil {
			s.failFirst = true
		}
	}
	s.mu.Unlock()

	select {
	case s.signal <- struct{}{}:
	default:
	}
}

// Fail queues a failure notice carrying err.
func (s *Subscription) Fail(err error) {
	s.Offer(Change{Key: s.key, Err: err})
}

// Cancel detaches the subscription and drops any undelivered change. A
// handler call already in progress is not interrupted. Cancel is safe to
// call more than once and from inside the handler.
func (s *Subscription) Cancel() {
	s.once.Do(func() {
		s.mu.Lock()
		s.closed = true
		s.pending, s.failure = nil, nil
		s.mu.Unlock()
		close(s.done)
		if s.detach != nil {
			s.detach()
		}
	})
}

func (s *Subscription) run() {
	for {
		select {
		case <-s.done:
			return
		case <-s.signal:
		}
		s.mu.Lock()
		first, second := s.pending, s.failure
		if s.failFirst {
			first, second = second, first
		}
		s.pending, s.failure, s.failFirst = nil, nil, false
		closed := s.closed
		s.mu.Unlock()
		if closed {
			return
		}
		for _, c := range []*Change{first, second} {
			if c == nil {
				continue
			}
			if s.isClosed() {
				return
			}
			s.h(*c)
		}
	}
}

func (s *Subscription) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// LocalBus fans changes out to subscribers in this process.
type LocalBus struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]*Subscription
}

func NewLocalBus() *LocalBus {
	return &LocalBus{subs: make(map[int]*Subscription)}
}

func (b *LocalBus) Publish(_ context.Context, c Change) error {
	b.deliver(c)
	return nil
}

func (b *LocalBus) deliver(c Change) {
	subs := b.snapshot()
	for _, s := range subs {
		s.Offer(c)
	}
}

// failAll sends err to every subscriber.
func (b *LocalBus) failAll(err error) {
	subs := b.snapshot()
	for _, s := range subs {
		s.Fail(err)
	}
}

func (b *LocalBus) Subscribe(key string, h Handler) *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.nextID
	b.nextID++
	s := newSubscription(key, h, func() {
		b.mu.Lock()
		delete(b.subs, id)
		b.mu.Unlock()
	})
	b.subs[id] = s
	return s
}

func (b *LocalBus) snapshot() []*Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()
	subs := make([]*Subscription, 0, len(b.subs))
	for _, s := range b.subs {
		subs = append(subs, s)
	}
	return subs
}

// Len reports the number of live subscriptions.
func (b *LocalBus) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

// Close cancels every subscription.
func (b *LocalBus) Close() error {
	subs := b.snapshot()
	for _, s := range subs {
		s.Cancel()
	}
	return nil
}
