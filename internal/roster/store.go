// Package roster maintains a live in-memory snapshot of the user collection,
// fed by a bulk seed at startup and per-user events afterwards.
package roster

import (
	"sync"
	"time"

	"example.com/sportmeet/internal/domain"
	"example.com/sportmeet/internal/observability"
)

// Store is a subscribable user roster. Snapshots preserve insertion order so
// derived lists (participant names and the like) stay stable across reads.
// All methods are safe for concurrent use.
type Store struct {
	mu      sync.RWMutex
	users   map[string]domain.User
	order   []string
	loaded  bool
	subs    map[int]func([]domain.User)
	nextSub int
}

// NewStore constructs an empty, not-yet-loaded Store.
func NewStore() *Store {
	return &Store{
		users: make(map[string]domain.User),
		subs:  make(map[int]func([]domain.User)),
	}
}

// Seed replaces the roster with a bulk snapshot and marks the store loaded.
func (s *Store) Seed(users []domain.User) {
	s.mu.Lock()
	s.users = make(map[string]domain.User, len(users))
	s.order = make([]string, 0, len(users))
	for _, user := range users {
		if _, seen := s.users[user.ID]; !seen {
			s.order = append(s.order, user.ID)
		}
		s.users[user.ID] = user
	}
	s.loaded = true
	snapshot := s.snapshotLocked()
	subs := s.subscribersLocked()
	s.mu.Unlock()

	observability.RecordRosterSize(len(snapshot))
	observability.RecordRosterUpdate(time.Now().UTC())
	notify(subs, snapshot)
}

// Apply upserts a single user record; new users append to the roster order.
func (s *Store) Apply(user domain.User) {
	s.mu.Lock()
	if _, seen := s.users[user.ID]; !seen {
		s.order = append(s.order, user.ID)
	}
	s.users[user.ID] = user
	snapshot := s.snapshotLocked()
	subs := s.subscribersLocked()
	s.mu.Unlock()

	observability.RecordRosterSize(len(snapshot))
	observability.RecordRosterUpdate(time.Now().UTC())
	notify(subs, snapshot)
}

// Snapshot returns a copy of the roster in insertion order. The loaded flag
// is false until Seed has run, letting callers distinguish "no users yet"
// from "roster still loading".
func (s *Store) Snapshot() ([]domain.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked(), s.loaded
}

// Subscribe registers a callback invoked with a fresh snapshot after every
// mutation. The returned func cancels the registration.
func (s *Store) Subscribe(onNext func([]domain.User)) (cancel func()) {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = onNext
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

func (s *Store) snapshotLocked() []domain.User {
	out := make([]domain.User, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.users[id])
	}
	return out
}

func (s *Store) subscribersLocked() []func([]domain.User) {
	out := make([]func([]domain.User), 0, len(s.subs))
	for _, sub := range s.subs {
		out = append(out, sub)
	}
	return out
}

func notify(subs []func([]domain.User), snapshot []domain.User) {
	for _, sub := range subs {
		sub(snapshot)
	}
}
