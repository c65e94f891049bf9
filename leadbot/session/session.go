// Package session keeps per-user dialog progress in memory.
//
// Sessions live for the process lifetime only. The store is bounded by a
// user-count ceiling; an evicted or expired entry reads back as IDLE, which is
// the same thing a user sees after a restart.
package session

import (
	"fmt"
	"sync"
	"time"

	"github.com/maypok86/otter"
)

// State is the dialog step a user is at.
type State string

const (
	Idle            State = "idle"
	AwaitingName    State = "awaiting_name"
	AwaitingProject State = "awaiting_project"
	AwaitingBudget  State = "awaiting_budget"
	// AwaitingAnswer is part of the state vocabulary but the machine tracks
	// question mode with Session.AwaitingAnswer while the state stays Idle.
	AwaitingAnswer State = "awaiting_answer"
)

// Valid reports whether s is one of the known states.
func (s State) Valid() bool {
	switch s {
	case Idle, AwaitingName, AwaitingProject, AwaitingBudget, AwaitingAnswer:
		return true
	}
	return false
}

// InDialog reports whether s is one of the lead collection steps.
func (s State) InDialog() bool {
	return s == AwaitingName || s == AwaitingProject || s == AwaitingBudget
}

// Draft holds lead fields collected so far. A nil field is a step not yet completed.
type Draft struct {
	Name    *string
	Project *string
	Budget  *string
}

// Empty reports whether no step has been completed.
func (d Draft) Empty() bool {
	return d.Name == nil && d.Project == nil && d.Budget == nil
}

// Session is one user's dialog progress.
type Session struct {
	State          State
	Draft          Draft
	AwaitingAnswer bool
	UpdatedAt      time.Time
}

// Options configures the store.
type Options struct {
	// MaxUsers bounds the number of sessions kept in memory.
	MaxUsers int
	// IdleTTL drops sessions untouched for this long; 0 keeps them until evicted.
	IdleTTL time.Duration
}

// Store maps user IDs to sessions and serializes event processing per user.
type Store struct {
	cache otter.Cache[int64, Session]

	mu    sync.Mutex
	locks map[int64]*userLock
}

// userLock lives while at least one event of the user holds or waits for it.
type userLock struct {
	mu   sync.Mutex
	refs int
}

// NewStore builds an in-memory store.
func NewStore(opts Options) (*Store, error) {
	if opts.MaxUsers <= 0 {
		return nil, fmt.Errorf("session: max users must be positive, got %d", opts.MaxUsers)
	}
	if opts.IdleTTL < 0 {
		return nil, fmt.Errorf("session: negative idle ttl %s", opts.IdleTTL)
	}
	var (
		cache otter.Cache[int64, Session]
		err   error
	)
	builder := otter.MustBuilder[int64, Session](opts.MaxUsers)
	if opts.IdleTTL > 0 {
		cache, err = builder.WithTTL(opts.IdleTTL).Build()
	} else {
		cache, err = builder.Build()
	}
	if err != nil {
		return nil, fmt.Errorf("session: build cache: %w", err)
	}

	return &Store{cache: cache, locks: make(map[int64]*userLock)}, nil
}

// Get returns the user's session, or a fresh IDLE one if none is stored.
func (s *Store) Get(userID int64) Session {
	if sess, ok := s.cache.Get(userID); ok {
		return sess
	}
	return Session{State: Idle}
}

// Set stores the user's session.
func (s *Store) Set(userID int64, sess Session) {
	s.cache.Set(userID, sess)
}

// Clear resets the user to IDLE and discards the draft.
func (s *Store) Clear(userID int64) {
	s.cache.Delete(userID)
}

// Lock serializes processing for one user and returns the unlock function.
// Different users never wait on each other.
func (s *Store) Lock(userID int64) func() {
	s.mu.Lock()
	l, ok := s.locks[userID]
	if !ok {
		l = &userLock{}
		s.locks[userID] = l
	}
	l.refs++
	s.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		s.mu.Lock()
		if l.refs--; l.refs == 0 {
			delete(s.locks, userID)
		}
		s.mu.Unlock()
	}
}

// lockCount reports how many users currently hold or wait for a lock.
func (s *Store) lockCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.locks)
}

// Len returns the number of stored sessions.
func (s *Store) Len() int {
	return s.cache.Size()
}

// Close releases background resources of the cache.
func (s *Store) Close() {
	s.cache.Close()
}
