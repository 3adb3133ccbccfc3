package session

import (
	"context"
	"errors"
	"maps"
	"sync"
	"sync/atomic"

	"github.com/dmitrijs2005/mycloud/internal/client/models"
	"github.com/dmitrijs2005/mycloud/internal/client/repositories/state"
	"github.com/dmitrijs2005/mycloud/internal/logging"
)

// View is the read-only side of the Store.
type View interface {
	Snapshot() State
	Principal() *models.Principal
	IsAuthenticated() bool
	IsAdmin() bool
	// Subscribe registers fn to be called with the new state after every
	// applied transition. The returned func removes the subscription.
	Subscribe(fn func(State)) (unsubscribe func())
}

type subscriber struct {
	id int
	fn func(State)
}

// Store owns the session state. Dispatch is its only writer.
type Store struct {
	mu          sync.RWMutex
	state       State
	ticket      Ticket
	credentials map[string]string

	// pending holds snapshots not yet delivered to subscribers.
	pending  []State
	draining atomic.Bool

	subsMu sync.Mutex
	subs   []subscriber
	nextID int

	repo   state.Repository
	logger logging.Logger
}

var _ View = (*Store)(nil)

func NewStore(repo state.Repository, logger logging.Logger) *Store {
	return &Store{
		state:  Anonymous(),
		repo:   repo,
		logger: logger.With("component", "session"),
	}
}

// Dispatch applies ev. It returns ErrIllegalTransition when ev is not legal
// in the current state and ErrStaleTicket when ev completes a login that is
// no longer current; in both cases nothing changes.
//
// Persistence happens under the write lock so records are written in
// transition order. Subscribers run after the lock is released.
func (s *Store) Dispatch(ctx context.Context, ev Event) error {
	s.mu.Lock()
	next, ticket, eff, err := transition(s.state, s.ticket, ev)
	if err != nil {
		cur := s.state.Status
		s.mu.Unlock()
		if errors.Is(err, ErrStaleTicket) {
			s.logger.Debug(ctx, "ignoring stale login response", "event", ev.Type.String())
		} else {
			s.logger.Warn(ctx, "rejected session transition", "event", ev.Type.String(), "status", cur.String())
		}
		return err
	}

	prev := s.state.Status
	s.state = next
	s.ticket = ticket

	switch eff {
	case effectPersist:
		if ev.Credentials != nil {
			s.credentials = maps.Clone(ev.Credentials)
		}
		s.save(ctx, next, s.credentials)
	case effectPurge:
		s.credentials = nil
		s.Clear(ctx)
	}

	s.pending = append(s.pending, next.clone())
	s.mu.Unlock()

	s.logger.Debug(ctx, "session transition",
		"event", ev.Type.String(), "from", prev.String(), "to", next.Status.String())

	s.drain()
	return nil
}

// drain delivers queued snapshots in order. Only one goroutine drains at a
// time; a Dispatch made from inside a subscriber is delivered by the outer
// loop.
func (s *Store) drain() {
	if !s.draining.CompareAndSwap(false, true) {
		return
	}
	for {
		s.mu.Lock()
		if len(s.pending) == 0 {
			s.draining.Store(false)
			s.mu.Unlock()
			return
		}
		st := s.pending[0]
		s.pending = s.pending[1:]
		s.mu.Unlock()

		s.notify(st)
	}
}

func (s *Store) notify(st State) {
	s.subsMu.Lock()
	subs := make([]subscriber, len(s.subs))
	copy(subs, s.subs)
	s.subsMu.Unlock()

	for _, sub := range subs {
		sub.fn(st.clone())
	}
}

func (s *Store) Subscribe(fn func(State)) func() {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()

	s.nextID++
	id := s.nextID
	s.subs = append(s.subs, subscriber{id: id, fn: fn})

	var once sync.Once
	return func() {
		once.Do(func() {
			s.subsMu.Lock()
			defer s.subsMu.Unlock()
			for i, sub := range s.subs {
				if sub.id == id {
					s.subs = append(s.subs[:i:i], s.subs[i+1:]...)
					return
				}
			}
		})
	}
}

func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.clone()
}

// Principal returns a copy of the current principal, or nil.
func (s *Store) Principal() *models.Principal {
	return s.Snapshot().Principal
}

func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.IsAuthenticated()
}

func (s *Store) IsAdmin() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.IsAdmin()
}

// Credentials returns the transport credentials of the current session.
func (s *Store) Credentials() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return maps.Clone(s.credentials)
}

// Ticket returns the ticket of the in-flight login, or "".
func (s *Store) Ticket() Ticket {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ticket
}
