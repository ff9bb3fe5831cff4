// Package sessions maps browser sessions to their own activity boards.
package sessions

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nomis52/activityboard/board"
)

// DefaultMaxSessions bounds a Store when no limit is configured.
const DefaultMaxSessions = 1000

// BoardFactory builds the board for a new session.
type BoardFactory func(sessionID string) *board.Board

// Session is one browser's board.
type Session struct {
	ID        string
	Board     *board.Board
	CreatedAt time.Time
}

type entry struct {
	session  *Session
	lastSeen time.Time
}

// Store keeps sessions in memory only (no persistence).
type Store struct {
	newBoard    BoardFactory
	maxSessions int
	onEvict     func(sessionID string)
	onLen       func(n int)
	now         func() time.Time

	mu       sync.Mutex
	sessions map[string]*entry
}

// Option configures a Store.
type Option func(*Store)

// WithMaxSessions caps the number of sessions. The least recently seen
// session is evicted to make room.
func WithMaxSessions(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.maxSessions = n
		}
	}
}

// WithEvictHook is called with the id of every session that is pruned or
// evicted. It runs without the store lock held.
func WithEvictHook(f func(sessionID string)) Option {
	return func(s *Store) {
		s.onEvict = f
	}
}

// WithLenHook is called with the session count whenever it changes. It runs
// with the store lock held, so updates arrive in order; f must not call back
// into the store.
func WithLenHook(f func(n int)) Option {
	return func(s *Store) {
		s.onLen = f
	}
}

// NewStore creates an empty Store.
func NewStore(newBoard BoardFactory, opts ...Option) *Store {
	s := &Store{
		newBoard:    newBoard,
		maxSessions: DefaultMaxSessions,
		now:         time.Now,
		sessions:    make(map[string]*entry),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns the session and marks it as seen.
func (s *Store) Get(id string) (*Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	e.lastSeen = s.now()
	return e.session, true
}

// Create starts a new session with a fresh board.
func (s *Store) Create() (*Session, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return nil, fmt.Errorf("generating session id: %w", err)
	}

	session := &Session{
		ID:        id.String(),
		Board:     s.newBoard(id.String()),
		CreatedAt: s.now(),
	}

	s.mu.Lock()
	var evicted []string
	for len(s.sessions) >= s.maxSessions {
		oldest := s.oldestLocked()
		delete(s.sessions, oldest)
		evicted = append(evicted, oldest)
	}
	s.sessions[session.ID] = &entry{session: session, lastSeen: session.CreatedAt}
	s.lenChangedLocked()
	s.mu.Unlock()

	s.evicted(evicted)
	return session, nil
}

// GetOrCreate returns the session for id, creating a new one when id is
// unknown. created reports whether a new session was made.
func (s *Store) GetOrCreate(id string) (session *Session, created bool, err error) {
	if id != "" {
		if session, ok := s.Get(id); ok {
			return session, false, nil
		}
	}
	session, err = s.Create()
	if err != nil {
		return nil, false, err
	}
	return session, true, nil
}

// Prune removes sessions not seen for longer than idle and returns how many
// were removed.
func (s *Store) Prune(idle time.Duration) int {
	cutoff := s.now().Add(-idle)

	s.mu.Lock()
	var removed []string
	for id, e := range s.sessions {
		if e.lastSeen.Before(cutoff) {
			delete(s.sessions, id)
			removed = append(removed, id)
		}
	}
	if len(removed) > 0 {
		s.lenChangedLocked()
	}
	s.mu.Unlock()

	sort.Strings(removed)
	s.evicted(removed)
	return len(removed)
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *Store) oldestLocked() string {
	var oldestID string
	var oldest time.Time
	for id, e := range s.sessions {
		if oldestID == "" || e.lastSeen.Before(oldest) {
			oldestID, oldest = id, e.lastSeen
		}
	}
	return oldestID
}

func (s *Store) lenChangedLocked() {
	if s.onLen != nil {
		s.onLen(len(s.sessions))
	}
}

func (s *Store) evicted(ids []string) {
	if s.onEvict == nil {
		return
	}
	for _, id := range ids {
		s.onEvict(id)
	}
}
