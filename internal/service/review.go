package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"tutorbot/internal/domain"
	"tutorbot/internal/payment"
	"tutorbot/internal/repository"

	"go.uber.org/zap"
)

// Approval is the outcome of a successful reviewer approval.
type Approval struct {
	CheckoutURL string
	Amount      int
	TxRef       string
}

// ReviewService implements the reviewer-facing decision protocol:
// approve, reject, and reply-mode redirection.
type ReviewService struct {
	sessions repository.SessionRepository
	txs      repository.TransactionRepository
	gateway  payment.Gateway
	notifier Notifier
	logger   *zap.Logger

	reviewerID    int64
	publicBaseURL string
	now           func() time.Time

	replyMu     sync.Mutex
	replyTarget int64
}

// NewReviewService creates the review and decision protocol service.
// reviewerID is the single authorized reviewer identity.
func NewReviewService(
	sessions repository.SessionRepository,
	txs repository.TransactionRepository,
	gateway payment.Gateway,
	notifier Notifier,
	reviewerID int64,
	publicBaseURL string,
	logger *zap.Logger,
) *ReviewService {
	return &ReviewService{
		sessions:      sessions,
		txs:           txs,
		gateway:       gateway,
		notifier:      notifier,
		reviewerID:    reviewerID,
		publicBaseURL: publicBaseURL,
		logger:        logger,
		now:           time.Now,
	}
}

// ReviewerID returns the authorized reviewer identity.
func (s *ReviewService) ReviewerID() int64 {
	return s.reviewerID
}

// Approve computes the fee, mints a transaction reference, issues a
// checkout through the gateway, and delivers the checkout link to the
// applicant. The session stays approved even when the gateway call fails,
// so the reviewer can retry without re-deciding.
func (s *ReviewService) Approve(ctx context.Context, callerID, targetID int64) (*Approval, error) {
	if callerID != s.reviewerID {
		return nil, ErrUnauthorized
	}

	session, ok := s.sessions.Get(targetID)
	if !ok {
		return nil, ErrNotFound
	}
	if session.Status == domain.StatusPaymentVerified {
		return nil, ErrAlreadyVerified
	}
	if session.Status == domain.StatusApproved && session.TransactionRef != "" && !s.txs.IsProcessed(session.TransactionRef) {
		return nil, ErrApprovalOutstanding
	}

	now := s.now()
	amount := ComputeFee(session, now)

	session.Status = domain.StatusApproved
	txRef := domain.NewTransactionRef(targetID, now)
	session.TransactionRef = txRef
	s.txs.Record(txRef, targetID)

	checkoutURL, err := s.gateway.InitializeCheckout(ctx, payment.CheckoutRequest{
		Amount:      amount,
		Currency:    "ETB",
		Email:       s.payerEmail(session),
		FirstName:   firstName(session.Name),
		LastName:    lastName(session.Name),
		TxRef:       txRef,
		CallbackURL: s.publicBaseURL + "/verify",
		ReturnURL:   s.publicBaseURL + "/success",
	})
	if err != nil {
		s.logger.Error("Checkout initialization failed",
			zap.Int64("user_id", targetID),
			zap.String("tx_ref", txRef),
			zap.Error(err),
		)
		// The decision stands; only payment infrastructure failed. Drop the
		// dead reference so a retry can mint a fresh one.
		session.TransactionRef = ""
		return nil, fmt.Errorf("%w: %v", ErrGateway, err)
	}

	s.logger.Info("Application approved",
		zap.Int64("user_id", targetID),
		zap.String("tx_ref", txRef),
		zap.Int("amount", amount),
	)

	text := fmt.Sprintf(
		"🎉 Your application was approved!\n\nRegistration fee: %d ETB\nPay here to activate your account:\n%s",
		amount, checkoutURL,
	)
	if err := s.notifier.Notify(targetID, text); err != nil {
		s.logger.Error("Failed to deliver checkout link", zap.Int64("user_id", targetID), zap.Error(err))
	}

	return &Approval{CheckoutURL: checkoutURL, Amount: amount, TxRef: txRef}, nil
}

// Reject marks the application as requiring reapplication and notifies the
// applicant with guidance.
func (s *ReviewService) Reject(callerID, targetID int64) error {
	if callerID != s.reviewerID {
		return ErrUnauthorized
	}

	session, ok := s.sessions.Get(targetID)
	if !ok {
		return ErrNotFound
	}

	session.Status = domain.StatusReapplyRequired

	s.logger.Info("Application rejected", zap.Int64("user_id", targetID))

	text := "😔 Your application was not approved this time.\n\nYou can review your details and send /register to apply again."
	if err := s.notifier.Notify(targetID, text); err != nil {
		s.logger.Error("Failed to deliver rejection notice", zap.Int64("user_id", targetID), zap.Error(err))
	}
	return nil
}

// SetReplyTarget arms reply mode: the reviewer's next message is
// redirected verbatim to the target actor. A newer target silently
// replaces any previous one.
func (s *ReviewService) SetReplyTarget(callerID, targetID int64) error {
	if callerID != s.reviewerID {
		return ErrUnauthorized
	}
	if _, ok := s.sessions.Get(targetID); !ok {
		return ErrNotFound
	}

	s.replyMu.Lock()
	s.replyTarget = targetID
	s.replyMu.Unlock()
	return nil
}

// TakeReplyTarget consumes the pending reply target, if the caller is the
// reviewer and a target is armed.
func (s *ReviewService) TakeReplyTarget(callerID int64) (int64, bool) {
	if callerID != s.reviewerID {
		return 0, false
	}

	s.replyMu.Lock()
	defer s.replyMu.Unlock()

	if s.replyTarget == 0 {
		return 0, false
	}
	target := s.replyTarget
	s.replyTarget = 0
	return target, true
}

// payerEmail returns the collected email or a synthesized fallback when
// the applicant skipped the step; the gateway requires one.
func (s *ReviewService) payerEmail(session *domain.Session) string {
	if session.Email == "" || session.Email == domain.EmailNotProvided {
		return fmt.Sprintf("applicant%d@tutorbot.app", session.UserID)
	}
	return session.Email
}

func firstName(full string) string {
	parts := strings.Fields(full)
	if len(parts) == 0 {
		return "Applicant"
	}
	return parts[0]
}

func lastName(full string) string {
	parts := strings.Fields(full)
	if len(parts) < 2 {
		return "Tutor"
	}
	return strings.Join(parts[1:], " ")
}
