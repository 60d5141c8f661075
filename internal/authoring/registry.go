package authoring

import (
	"sync"
	"time"
)

// Registry tracks open authoring sessions keyed by user id and serializes
// turns per user: two messages from the same user are processed strictly in
// arrival order, while different users proceed concurrently.
type Registry struct {
	ttl time.Duration

	mu       sync.Mutex
	sessions map[int64]*Session
	userMu   map[int64]*sync.Mutex
}

// NewRegistry creates an empty registry. A zero ttl disables expiry: open
// sessions persist until finalize, cancel, or replacement.
func NewRegistry(ttl time.Duration) *Registry {
	return &Registry{
		ttl:      ttl,
		sessions: make(map[int64]*Session),
		userMu:   make(map[int64]*sync.Mutex),
	}
}

// Lock acquires the per-user turn lock and returns the unlock function.
func (r *Registry) Lock(userID int64) func() {
	r.mu.Lock()
	m, ok := r.userMu[userID]
	if !ok {
		m = &sync.Mutex{}
		r.userMu[userID] = m
	}
	r.mu.Unlock()

	m.Lock()
	return m.Unlock
}

// Begin opens a fresh session for the user, replacing any existing one
// (last writer wins).
func (r *Registry) Begin(userID int64, stage Stage) *Session {
	now := time.Now()
	sess := &Session{
		UserID:    userID,
		Stage:     stage,
		StartedAt: now,
		UpdatedAt: now,
	}
	r.mu.Lock()
	r.sessions[userID] = sess
	r.mu.Unlock()
	return sess
}

// Lookup returns the user's open session. Sessions past their ttl are
// evicted lazily here.
func (r *Registry) Lookup(userID int64) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sess, ok := r.sessions[userID]
	if !ok {
		return nil, false
	}
	if r.ttl > 0 && time.Since(sess.UpdatedAt) > r.ttl {
		delete(r.sessions, userID)
		return nil, false
	}
	return sess, true
}

// Clear drops the user's session and reports whether one was open.
func (r *Registry) Clear(userID int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.sessions[userID]
	delete(r.sessions, userID)
	return ok
}

// Len returns the number of open sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.ttl > 0 {
		for id, sess := range r.sessions {
			if time.Since(sess.UpdatedAt) > r.ttl {
				delete(r.sessions, id)
			}
		}
	}
	return len(r.sessions)
}
