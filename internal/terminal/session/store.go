// Package session keeps one terminal output buffer per visitor.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MrSnakeDoc/portfolio/internal/terminal"
)

// Session is one visitor's terminal.
type Session struct {
	ID string

	mu       sync.Mutex // serializes commands of this session
	buffer   *terminal.RingBuffer
	lastSeen time.Time // guarded by Store.mu
}

// Buffer returns the session output.
func (s *Session) Buffer() *terminal.RingBuffer {
	return s.buffer
}

// Exec runs fn while holding the session lock, so a session only ever has
// one command writing to its buffer.
func (s *Session) Exec(fn func(buf *terminal.RingBuffer) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.buffer)
}

// Store holds the live sessions in memory.
type Store struct {
	mu          sync.Mutex
	sessions    map[string]*Session
	bufferSize  int
	maxSessions int
	idleTTL     time.Duration
	now         func() time.Time
}

// NewStore creates a store. maxSessions <= 0 means unbounded and
// idleTTL <= 0 disables expiry.
func NewStore(bufferSize, maxSessions int, idleTTL time.Duration) *Store {
	return &Store{
		sessions:    make(map[string]*Session),
		bufferSize:  bufferSize,
		maxSessions: maxSessions,
		idleTTL:     idleTTL,
		now:         time.Now,
	}
}

// Get returns the live session id and marks it as seen.
func (s *Store) Get(id string) (*Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok || s.expired(sess, s.now()) {
		return nil, false
	}
	sess.lastSeen = s.now()
	return sess, true
}

// GetOrCreate returns the session id, or a new session with a fresh id when
// id is unknown, expired or not a valid id. created reports the latter.
func (s *Store) GetOrCreate(id string) (sess *Session, created bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if sess, ok := s.sessions[id]; ok && !s.expired(sess, now) {
		sess.lastSeen = now
		return sess, false
	}
	delete(s.sessions, id)

	if s.maxSessions > 0 && len(s.sessions) >= s.maxSessions {
		s.sweepLocked(now)
		if len(s.sessions) >= s.maxSessions {
			s.evictOldestLocked()
		}
	}

	sess = &Session{
		ID:       uuid.NewString(),
		buffer:   terminal.NewRingBuffer(s.bufferSize),
		lastSeen: now,
	}
	s.sessions[sess.ID] = sess
	return sess, true
}

// Delete drops a session.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}

// Len returns the number of stored sessions, expired ones included until
// the next sweep.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Sweep removes idle sessions and returns how many were removed.
func (s *Store) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sweepLocked(s.now())
}

func (s *Store) sweepLocked(now time.Time) int {
	removed := 0
	for id, sess := range s.sessions {
		if s.expired(sess, now) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

func (s *Store) evictOldestLocked() {
	var oldest *Session
	for _, sess := range s.sessions {
		if oldest == nil || sess.lastSeen.Before(oldest.lastSeen) {
			oldest = sess
		}
	}
	if oldest != nil {
		delete(s.sessions, oldest.ID)
	}
}

func (s *Store) expired(sess *Session, now time.Time) bool {
	return s.idleTTL > 0 && now.Sub(sess.lastSeen) > s.idleTTL
}

// ValidID reports whether id looks like an id issued by the store.
func ValidID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
