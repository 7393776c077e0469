package session

import (
	"sync"
	"time"

	"github.com/piwi3910/marcenapp/internal/model"
)

type storeEntry struct {
	sess     *Session
	lastUsed time.Time
}

// Store keeps the open sessions of a server process in memory. Sessions
// idle for longer than idleTTL are dropped, and once maxSessions are open
// the least recently used one makes room for a new one. A zero limit
// disables that limit.
type Store struct {
	mu          sync.Mutex
	sessions    map[string]*storeEntry
	maxSessions int
	idleTTL     time.Duration
	now         func() time.Time
}

func NewStore(maxSessions int, idleTTL time.Duration) *Store {
	return &Store{
		sessions:    make(map[string]*storeEntry),
		maxSessions: maxSessions,
		idleTTL:     idleTTL,
		now:         time.Now,
	}
}

// Create opens a session for p and registers it, evicting expired sessions
// and, at capacity, the least recently used one.
func (st *Store) Create(p model.Project) *Session {
	s := New(p)
	st.mu.Lock()
	defer st.mu.Unlock()

	now := st.now()
	st.pruneLocked(now)
	if st.maxSessions > 0 && len(st.sessions) >= st.maxSessions {
		st.evictOldestLocked()
	}
	st.sessions[s.ID()] = &storeEntry{sess: s, lastUsed: now}
	return s
}

// Get returns a live session and marks it used.
func (st *Store) Get(id string) (*Session, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	e, ok := st.sessions[id]
	if !ok {
		return nil, false
	}
	now := st.now()
	if st.expired(e, now) {
		delete(st.sessions, id)
		return nil, false
	}
	e.lastUsed = now
	return e.sess, true
}

// Delete reports whether a session was removed.
func (st *Store) Delete(id string) bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	e, ok := st.sessions[id]
	delete(st.sessions, id)
	return ok && !st.expired(e, st.now())
}

// Len counts sessions that have not expired.
func (st *Store) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.pruneLocked(st.now())
	return len(st.sessions)
}

func (st *Store) expired(e *storeEntry, now time.Time) bool {
	return st.idleTTL > 0 && now.Sub(e.lastUsed) > st.idleTTL
}

func (st *Store) pruneLocked(now time.Time) {
	for id, e := range st.sessions {
		if st.expired(e, now) {
			delete(st.sessions, id)
		}
	}
}

func (st *Store) evictOldestLocked() {
	var (
		oldestID string
		oldest   time.Time
	)
	for id, e := range st.sessions {
		if oldestID == "" || e.lastUsed.Before(oldest) {
			oldestID, oldest = id, e.lastUsed
		}
	}
	delete(st.sessions, oldestID)
}
