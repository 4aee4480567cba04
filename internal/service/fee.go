package service

import (
	"time"

	"tutorbot/internal/domain"
)

const (
	// StandardFee is the registration fee in ETB inside the grace window.
	StandardFee = 99
	// PenaltyFee is the elevated fee after the grace window or a rejection.
	PenaltyFee = 149
	// feeGraceWindow is how long the standard fee stays available.
	feeGraceWindow = 24 * time.Hour
)

// ComputeFee returns the amount due for the session at the given time and
// records the penalty decision on the session. It is deterministic for a
// fixed (CreatedAt, Status, now) triple; the escalation over wall-clock
// time is intentional.
func ComputeFee(s *domain.Session, now time.Time) int {
	if s.CreatedAt.IsZero() {
		return StandardFee
	}

	if s.Status == domain.StatusReapplyRequired || now.Sub(s.CreatedAt) > feeGraceWindow {
		s.PenaltyApplied = true
		return PenaltyFee
	}

	s.PenaltyApplied = false
	return StandardFee
}
