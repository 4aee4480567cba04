package service

import (
	"context"
	"fmt"
	"time"

	"tutorbot/internal/domain"
	"tutorbot/internal/payment"
	"tutorbot/internal/repository"

	"go.uber.org/zap"
)

// ConfirmOutcome classifies what a payment callback did.
type ConfirmOutcome int

const (
	// ConfirmIgnored means the callback carried no usable reference.
	ConfirmIgnored ConfirmOutcome = iota
	// ConfirmDuplicate means the reference was already finalized.
	ConfirmDuplicate
	// ConfirmNotPaid means the gateway reports the transaction unpaid.
	ConfirmNotPaid
	// ConfirmUnknown means no session owns the reference anymore.
	ConfirmUnknown
	// ConfirmFailed means the gateway verification call itself failed.
	ConfirmFailed
	// ConfirmVerified means the session was finalized as paid.
	ConfirmVerified
)

// ConfirmationService processes asynchronous payment provider callbacks
// and finalizes sessions exactly once per transaction reference.
type ConfirmationService struct {
	sessions   repository.SessionRepository
	txs        repository.TransactionRepository
	gateway    payment.Gateway
	notifier   Notifier
	reviewerID int64
	logger     *zap.Logger
	now        func() time.Time
}

// NewConfirmationService creates the payment confirmation handler.
func NewConfirmationService(
	sessions repository.SessionRepository,
	txs repository.TransactionRepository,
	gateway payment.Gateway,
	notifier Notifier,
	reviewerID int64,
	logger *zap.Logger,
) *ConfirmationService {
	return &ConfirmationService{
		sessions:   sessions,
		txs:        txs,
		gateway:    gateway,
		notifier:   notifier,
		reviewerID: reviewerID,
		logger:     logger,
		now:        time.Now,
	}
}

// Confirm handles one provider callback for a transaction reference. It
// never returns an error: every path is an acknowledgment so the provider
// has no reason to retry-storm. Internal failures are logged and swallowed.
func (s *ConfirmationService) Confirm(ctx context.Context, txRef string) ConfirmOutcome {
	if txRef == "" {
		s.logger.Warn("Payment callback without transaction reference")
		return ConfirmIgnored
	}

	if s.txs.IsProcessed(txRef) {
		s.logger.Info("Duplicate payment callback ignored", zap.String("tx_ref", txRef))
		return ConfirmDuplicate
	}

	// Never trust the callback body; ask the gateway what really happened.
	result, err := s.gateway.VerifyTransaction(ctx, txRef)
	if err != nil {
		s.logger.Error("Transaction verification failed",
			zap.String("tx_ref", txRef),
			zap.Error(err),
		)
		return ConfirmFailed
	}

	if result.Status != "success" {
		s.logger.Info("Transaction not paid yet",
			zap.String("tx_ref", txRef),
			zap.String("status", result.Status),
		)
		return ConfirmNotPaid
	}

	userID, ok := s.txs.Resolve(txRef)
	if !ok {
		s.logger.Warn("No owner recorded for transaction reference", zap.String("tx_ref", txRef))
		return ConfirmUnknown
	}
	session, ok := s.sessions.Get(userID)
	if !ok {
		s.logger.Warn("Session gone for verified transaction",
			zap.String("tx_ref", txRef),
			zap.Int64("user_id", userID),
		)
		return ConfirmUnknown
	}

	if !s.txs.MarkProcessed(txRef) {
		// A concurrent callback won the race; treat as duplicate.
		return ConfirmDuplicate
	}

	session.Status = domain.StatusPaymentVerified
	session.PaidAmount = result.Amount
	session.Commission = result.Charge
	session.PaymentDate = s.now()

	s.logger.Info("Payment verified",
		zap.Int64("user_id", userID),
		zap.String("tx_ref", txRef),
		zap.Float64("amount", result.Amount),
	)

	if err := s.notifier.Notify(userID, "✅ Payment received! Your tutor account is now active. Welcome aboard!"); err != nil {
		s.logger.Error("Failed to notify payer", zap.Int64("user_id", userID), zap.Error(err))
	}
	adminText := fmt.Sprintf("💰 Payment confirmed\n\nApplicant: %s (ID %d)\nAmount: %.2f %s\nReference: %s",
		session.Name, userID, result.Amount, result.Currency, txRef)
	if err := s.notifier.Notify(s.reviewerID, adminText); err != nil {
		s.logger.Error("Failed to notify reviewer", zap.Error(err))
	}

	return ConfirmVerified
}
