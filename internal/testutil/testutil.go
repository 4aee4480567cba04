package testutil

import (
	"time"

	"tutorbot/internal/domain"

	"go.uber.org/zap"
)

// NewTestLogger creates a no-op logger for tests
func NewTestLogger() *zap.Logger {
	return zap.NewNop()
}

// NewTestSession creates a session in the given state
func NewTestSession(userID int64, step domain.Step, status domain.Status) *domain.Session {
	now := time.Now()
	return &domain.Session{
		UserID:       userID,
		Step:         step,
		Status:       status,
		CreatedAt:    now,
		LastActivity: now,
	}
}
