package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"tutorbot/internal/domain"
	"tutorbot/internal/payment"
	"tutorbot/internal/repository/memory"
	"tutorbot/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	reviewerID = int64(100)
	actorID    = int64(42)
)

func newReviewFixture(t *testing.T) (*ReviewService, *memory.SessionRepo, *memory.TransactionRepo, *testutil.MockGateway, *testutil.RecordingNotifier) {
	t.Helper()
	sessions := memory.NewSessionRepo()
	txs := memory.NewTransactionRepo()
	gateway := new(testutil.MockGateway)
	notifier := testutil.NewRecordingNotifier()
	svc := NewReviewService(sessions, txs, gateway, notifier, reviewerID, "https://bot.example.com", testutil.NewTestLogger())
	return svc, sessions, txs, gateway, notifier
}

func pendingSession(age time.Duration) *domain.Session {
	now := time.Now()
	return &domain.Session{
		UserID:       actorID,
		Step:         domain.StepCompleted,
		Status:       domain.StatusPendingReview,
		CreatedAt:    now.Add(-age),
		LastActivity: now,
		Name:         "Jane Doe",
		Phone:        "0912345678",
		YoutubeURL:   "https://youtube.com/@jane",
		Email:        domain.EmailNotProvided,
		Subject:      "Math",
	}
}

func TestReviewService_ApproveStandardFee(t *testing.T) {
	svc, sessions, txs, gateway, notifier := newReviewFixture(t)
	sessions.Put(pendingSession(2 * time.Hour))

	gateway.On("InitializeCheckout", mock.Anything, mock.MatchedBy(func(req payment.CheckoutRequest) bool {
		return req.Amount == StandardFee && req.Currency == "ETB"
	})).Return("https://checkout.chapa.co/xyz", nil)

	approval, err := svc.Approve(context.Background(), reviewerID, actorID)

	require.NoError(t, err)
	assert.Equal(t, StandardFee, approval.Amount)
	assert.Equal(t, "https://checkout.chapa.co/xyz", approval.CheckoutURL)
	assert.NotEmpty(t, approval.TxRef)

	session, _ := sessions.Get(actorID)
	assert.Equal(t, domain.StatusApproved, session.Status)
	assert.Equal(t, approval.TxRef, session.TransactionRef)

	owner, ok := txs.Resolve(approval.TxRef)
	assert.True(t, ok)
	assert.Equal(t, actorID, owner)

	// The checkout link reaches the applicant.
	require.Len(t, notifier.Messages[actorID], 1)
	assert.Contains(t, notifier.Messages[actorID][0], "https://checkout.chapa.co/xyz")

	gateway.AssertExpectations(t)
}

func TestReviewService_ApprovePenaltyFee(t *testing.T) {
	svc, sessions, _, gateway, _ := newReviewFixture(t)
	sessions.Put(pendingSession(30 * time.Hour))

	gateway.On("InitializeCheckout", mock.Anything, mock.MatchedBy(func(req payment.CheckoutRequest) bool {
		return req.Amount == PenaltyFee
	})).Return("https://checkout.chapa.co/xyz", nil)

	approval, err := svc.Approve(context.Background(), reviewerID, actorID)

	require.NoError(t, err)
	assert.Equal(t, PenaltyFee, approval.Amount)

	session, _ := sessions.Get(actorID)
	assert.True(t, session.PenaltyApplied)
	gateway.AssertExpectations(t)
}

func TestReviewService_ApproveSynthesizesPayerEmail(t *testing.T) {
	svc, sessions, _, gateway, _ := newReviewFixture(t)
	sessions.Put(pendingSession(time.Hour))

	var captured payment.CheckoutRequest
	gateway.On("InitializeCheckout", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			captured = args.Get(1).(payment.CheckoutRequest)
		}).
		Return("https://checkout.chapa.co/xyz", nil)

	_, err := svc.Approve(context.Background(), reviewerID, actorID)

	require.NoError(t, err)
	assert.Contains(t, captured.Email, "@")
	assert.NotEqual(t, domain.EmailNotProvided, captured.Email)
	assert.Equal(t, "Jane", captured.FirstName)
	assert.Equal(t, "Doe", captured.LastName)
	assert.Contains(t, captured.CallbackURL, "/verify")
	assert.Contains(t, captured.ReturnURL, "/success")
}

func TestReviewService_ApproveGatewayFailure(t *testing.T) {
	svc, sessions, _, gateway, notifier := newReviewFixture(t)
	sessions.Put(pendingSession(time.Hour))

	gateway.On("InitializeCheckout", mock.Anything, mock.Anything).
		Return("", errors.New("connection refused"))

	approval, err := svc.Approve(context.Background(), reviewerID, actorID)

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrGateway))
	assert.Nil(t, approval)

	// The decision stands so the reviewer can retry.
	session, _ := sessions.Get(actorID)
	assert.Equal(t, domain.StatusApproved, session.Status)

	// No checkout link was delivered.
	assert.Empty(t, notifier.Messages[actorID])
}

func TestReviewService_ApproveRetryAfterGatewayFailure(t *testing.T) {
	svc, sessions, _, gateway, _ := newReviewFixture(t)
	sessions.Put(pendingSession(time.Hour))

	gateway.On("InitializeCheckout", mock.Anything, mock.Anything).
		Return("", errors.New("connection refused")).Once()
	gateway.On("InitializeCheckout", mock.Anything, mock.Anything).
		Return("https://checkout.chapa.co/xyz", nil).Once()

	_, err := svc.Approve(context.Background(), reviewerID, actorID)
	require.Error(t, err)

	// After a gateway failure the reference is dropped, so a retry is
	// allowed even though the session is already approved.
	session, _ := sessions.Get(actorID)
	assert.Empty(t, session.TransactionRef)

	approval, err := svc.Approve(context.Background(), reviewerID, actorID)
	require.NoError(t, err)
	assert.NotEmpty(t, approval.CheckoutURL)
}

func TestReviewService_SecondApprovalRejectedWhileOutstanding(t *testing.T) {
	svc, sessions, _, gateway, _ := newReviewFixture(t)
	sessions.Put(pendingSession(time.Hour))

	gateway.On("InitializeCheckout", mock.Anything, mock.Anything).
		Return("https://checkout.chapa.co/xyz", nil).Once()

	_, err := svc.Approve(context.Background(), reviewerID, actorID)
	require.NoError(t, err)

	_, err = svc.Approve(context.Background(), reviewerID, actorID)
	assert.True(t, errors.Is(err, ErrApprovalOutstanding))
	gateway.AssertExpectations(t)
}

func TestReviewService_ApproveUnknownTarget(t *testing.T) {
	svc, _, _, _, _ := newReviewFixture(t)

	_, err := svc.Approve(context.Background(), reviewerID, 999)

	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestReviewService_ApproveUnauthorized(t *testing.T) {
	svc, sessions, _, _, _ := newReviewFixture(t)
	sessions.Put(pendingSession(time.Hour))

	_, err := svc.Approve(context.Background(), actorID, actorID)

	assert.True(t, errors.Is(err, ErrUnauthorized))
	session, _ := sessions.Get(actorID)
	assert.Equal(t, domain.StatusPendingReview, session.Status)
}

func TestReviewService_ApproveAlreadyVerified(t *testing.T) {
	svc, sessions, _, _, _ := newReviewFixture(t)
	session := pendingSession(time.Hour)
	session.Status = domain.StatusPaymentVerified
	sessions.Put(session)

	_, err := svc.Approve(context.Background(), reviewerID, actorID)

	assert.True(t, errors.Is(err, ErrAlreadyVerified))
}

func TestReviewService_Reject(t *testing.T) {
	svc, sessions, _, _, notifier := newReviewFixture(t)
	sessions.Put(pendingSession(time.Hour))

	err := svc.Reject(reviewerID, actorID)

	require.NoError(t, err)
	session, _ := sessions.Get(actorID)
	assert.Equal(t, domain.StatusReapplyRequired, session.Status)
	require.Len(t, notifier.Messages[actorID], 1)
	assert.Contains(t, notifier.Messages[actorID][0], "/register")
}

func TestReviewService_RejectErrors(t *testing.T) {
	tests := []struct {
		name     string
		caller   int64
		target   int64
		expected error
	}{
		{
			name:     "unauthorized caller",
			caller:   actorID,
			target:   actorID,
			expected: ErrUnauthorized,
		},
		{
			name:     "unknown target",
			caller:   reviewerID,
			target:   999,
			expected: ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, sessions, _, _, _ := newReviewFixture(t)
			sessions.Put(pendingSession(time.Hour))

			err := svc.Reject(tt.caller, tt.target)

			assert.True(t, errors.Is(err, tt.expected))
		})
	}
}

func TestReviewService_ReplyTarget(t *testing.T) {
	svc, sessions, _, _, _ := newReviewFixture(t)
	sessions.Put(pendingSession(time.Hour))

	// Nothing armed yet.
	_, ok := svc.TakeReplyTarget(reviewerID)
	assert.False(t, ok)

	require.NoError(t, svc.SetReplyTarget(reviewerID, actorID))

	target, ok := svc.TakeReplyTarget(reviewerID)
	assert.True(t, ok)
	assert.Equal(t, actorID, target)

	// Consumed: a second take finds nothing.
	_, ok = svc.TakeReplyTarget(reviewerID)
	assert.False(t, ok)
}

func TestReviewService_ReplyTargetReplaced(t *testing.T) {
	svc, sessions, _, _, _ := newReviewFixture(t)
	sessions.Put(pendingSession(time.Hour))
	other := pendingSession(time.Hour)
	other.UserID = 43
	sessions.Put(other)

	require.NoError(t, svc.SetReplyTarget(reviewerID, actorID))
	require.NoError(t, svc.SetReplyTarget(reviewerID, 43))

	target, ok := svc.TakeReplyTarget(reviewerID)
	assert.True(t, ok)
	assert.Equal(t, int64(43), target)
}

func TestReviewService_ReplyTargetAuthorization(t *testing.T) {
	svc, sessions, _, _, _ := newReviewFixture(t)
	sessions.Put(pendingSession(time.Hour))

	err := svc.SetReplyTarget(actorID, actorID)
	assert.True(t, errors.Is(err, ErrUnauthorized))

	require.NoError(t, svc.SetReplyTarget(reviewerID, actorID))
	_, ok := svc.TakeReplyTarget(actorID)
	assert.False(t, ok)
}
