package memory

import (
	"sync"
	"time"

	"tutorbot/internal/domain"
)

// SessionRepo is an in-memory session store. All registration state is
// volatile and process-lifetime only; a restart loses every in-flight
// registration by design.
type SessionRepo struct {
	mu       sync.RWMutex
	sessions map[int64]*domain.Session
}

// NewSessionRepo creates an empty in-memory session store.
func NewSessionRepo() *SessionRepo {
	return &SessionRepo{
		sessions: make(map[int64]*domain.Session),
	}
}

// Get returns the session for the given actor, if one exists.
func (r *SessionRepo) Get(userID int64) (*domain.Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[userID]
	return s, ok
}

// Put stores the session, replacing any existing one for the same actor.
func (r *SessionRepo) Put(session *domain.Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[session.UserID] = session
}

// Delete removes the session for the given actor.
func (r *SessionRepo) Delete(userID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, userID)
}

// Count returns the number of live sessions.
func (r *SessionRepo) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// DeleteIdle evicts sessions idle longer than olderThan. Only sessions in
// idle or collecting status are eligible; sessions awaiting review or
// payment must survive until an explicit decision or confirmation.
func (r *SessionRepo) DeleteIdle(olderThan time.Duration) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := time.Now().Add(-olderThan)
	removed := 0
	for id, s := range r.sessions {
		if s.Status != domain.StatusIdle && s.Status != domain.StatusCollecting {
			continue
		}
		if s.LastActivity.Before(cutoff) {
			delete(r.sessions, id)
			removed++
		}
	}
	return removed
}
