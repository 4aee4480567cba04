package repository

import (
	"time"

	"tutorbot/internal/domain"
)

// SessionRepository defines registration-session storage operations.
// At most one session exists per actor at any time.
type SessionRepository interface {
	Get(userID int64) (*domain.Session, bool)
	Put(session *domain.Session)
	Delete(userID int64)
	Count() int
	// DeleteIdle evicts sessions whose last activity is older than the
	// given age, but only sessions still in idle or collecting status.
	// Sessions awaiting review or payment are never evicted.
	DeleteIdle(olderThan time.Duration) int
}

// TransactionRepository correlates transaction references with the actor
// that owns them and tracks which references have already been finalized.
type TransactionRepository interface {
	Record(ref string, userID int64)
	Resolve(ref string) (int64, bool)
	IsProcessed(ref string) bool
	// MarkProcessed adds the reference to the processed set. Returns false
	// if it was already there, guaranteeing exactly-once finalization.
	MarkProcessed(ref string) bool
}
