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

func newConfirmFixture(t *testing.T) (*ConfirmationService, *memory.SessionRepo, *memory.TransactionRepo, *testutil.MockGateway, *testutil.RecordingNotifier) {
	t.Helper()
	sessions := memory.NewSessionRepo()
	txs := memory.NewTransactionRepo()
	gateway := new(testutil.MockGateway)
	notifier := testutil.NewRecordingNotifier()
	svc := NewConfirmationService(sessions, txs, gateway, notifier, reviewerID, testutil.NewTestLogger())
	return svc, sessions, txs, gateway, notifier
}

func approvedSession(ref string) *domain.Session {
	s := pendingSession(time.Hour)
	s.Status = domain.StatusApproved
	s.TransactionRef = ref
	return s
}

func TestConfirmationService_Verified(t *testing.T) {
	svc, sessions, txs, gateway, notifier := newConfirmFixture(t)
	ref := "tutor-1-abc-42"
	sessions.Put(approvedSession(ref))
	txs.Record(ref, actorID)

	gateway.On("VerifyTransaction", mock.Anything, ref).
		Return(&payment.VerifyResult{Status: "success", Amount: 99, Charge: 3.47, Currency: "ETB"}, nil)

	outcome := svc.Confirm(context.Background(), ref)

	assert.Equal(t, ConfirmVerified, outcome)

	session, _ := sessions.Get(actorID)
	assert.Equal(t, domain.StatusPaymentVerified, session.Status)
	assert.Equal(t, 99.0, session.PaidAmount)
	assert.Equal(t, 3.47, session.Commission)
	assert.False(t, session.PaymentDate.IsZero())

	// Both the payer and the reviewer hear about it.
	assert.Len(t, notifier.Messages[actorID], 1)
	assert.Len(t, notifier.Messages[reviewerID], 1)
}

func TestConfirmationService_DuplicateDeliveredOnce(t *testing.T) {
	svc, sessions, txs, gateway, notifier := newConfirmFixture(t)
	ref := "tutor-1-abc-42"
	sessions.Put(approvedSession(ref))
	txs.Record(ref, actorID)

	gateway.On("VerifyTransaction", mock.Anything, ref).
		Return(&payment.VerifyResult{Status: "success", Amount: 99, Currency: "ETB"}, nil).Once()

	first := svc.Confirm(context.Background(), ref)
	second := svc.Confirm(context.Background(), ref)

	assert.Equal(t, ConfirmVerified, first)
	assert.Equal(t, ConfirmDuplicate, second)

	// Exactly one pair of notifications despite two deliveries.
	assert.Len(t, notifier.Messages[actorID], 1)
	assert.Len(t, notifier.Messages[reviewerID], 1)
	gateway.AssertExpectations(t)
}

func TestConfirmationService_EmptyReference(t *testing.T) {
	svc, _, _, gateway, notifier := newConfirmFixture(t)

	outcome := svc.Confirm(context.Background(), "")

	assert.Equal(t, ConfirmIgnored, outcome)
	assert.Empty(t, notifier.Messages)
	gateway.AssertNotCalled(t, "VerifyTransaction", mock.Anything, mock.Anything)
}

func TestConfirmationService_NotPaidYet(t *testing.T) {
	svc, sessions, txs, gateway, notifier := newConfirmFixture(t)
	ref := "tutor-1-abc-42"
	sessions.Put(approvedSession(ref))
	txs.Record(ref, actorID)

	gateway.On("VerifyTransaction", mock.Anything, ref).
		Return(&payment.VerifyResult{Status: "pending"}, nil)

	outcome := svc.Confirm(context.Background(), ref)

	assert.Equal(t, ConfirmNotPaid, outcome)
	session, _ := sessions.Get(actorID)
	assert.Equal(t, domain.StatusApproved, session.Status)
	assert.Empty(t, notifier.Messages)
	// The reference stays unprocessed so a later real payment can land.
	assert.False(t, txs.IsProcessed(ref))
}

func TestConfirmationService_UnknownReference(t *testing.T) {
	svc, _, _, gateway, notifier := newConfirmFixture(t)
	ref := "tutor-1-abc-999"

	gateway.On("VerifyTransaction", mock.Anything, ref).
		Return(&payment.VerifyResult{Status: "success", Amount: 99}, nil)

	outcome := svc.Confirm(context.Background(), ref)

	assert.Equal(t, ConfirmUnknown, outcome)
	assert.Empty(t, notifier.Messages)
}

func TestConfirmationService_SessionExpired(t *testing.T) {
	svc, _, txs, gateway, notifier := newConfirmFixture(t)
	ref := "tutor-1-abc-42"
	// The correlation survives but the session is gone.
	txs.Record(ref, actorID)

	gateway.On("VerifyTransaction", mock.Anything, ref).
		Return(&payment.VerifyResult{Status: "success", Amount: 99}, nil)

	outcome := svc.Confirm(context.Background(), ref)

	assert.Equal(t, ConfirmUnknown, outcome)
	assert.Empty(t, notifier.Messages)
}

func TestConfirmationService_VerificationFailure(t *testing.T) {
	svc, sessions, txs, gateway, notifier := newConfirmFixture(t)
	ref := "tutor-1-abc-42"
	sessions.Put(approvedSession(ref))
	txs.Record(ref, actorID)

	gateway.On("VerifyTransaction", mock.Anything, ref).
		Return(nil, errors.New("timeout"))

	outcome := svc.Confirm(context.Background(), ref)

	assert.Equal(t, ConfirmFailed, outcome)
	session, _ := sessions.Get(actorID)
	assert.Equal(t, domain.StatusApproved, session.Status)
	assert.Empty(t, notifier.Messages)
	assert.False(t, txs.IsProcessed(ref))
}

func TestConfirmationService_NotificationFailureStillFinalizes(t *testing.T) {
	sessions := memory.NewSessionRepo()
	txs := memory.NewTransactionRepo()
	gateway := new(testutil.MockGateway)
	notifier := new(testutil.MockNotifier)
	svc := NewConfirmationService(sessions, txs, gateway, notifier, reviewerID, testutil.NewTestLogger())

	ref := "tutor-1-abc-42"
	sessions.Put(approvedSession(ref))
	txs.Record(ref, actorID)

	gateway.On("VerifyTransaction", mock.Anything, ref).
		Return(&payment.VerifyResult{Status: "success", Amount: 99}, nil)
	notifier.On("Notify", mock.Anything, mock.Anything).
		Return(errors.New("blocked by user"))

	outcome := svc.Confirm(context.Background(), ref)

	// Transport failures are logged, never rolled back.
	assert.Equal(t, ConfirmVerified, outcome)
	session, _ := sessions.Get(actorID)
	assert.Equal(t, domain.StatusPaymentVerified, session.Status)
	notifier.AssertExpectations(t)
}

func TestConfirmationService_EndToEndWithApproval(t *testing.T) {
	sessions := memory.NewSessionRepo()
	txs := memory.NewTransactionRepo()
	gateway := new(testutil.MockGateway)
	notifier := testutil.NewRecordingNotifier()
	logger := testutil.NewTestLogger()

	review := NewReviewService(sessions, txs, gateway, notifier, reviewerID, "https://bot.example.com", logger)
	confirm := NewConfirmationService(sessions, txs, gateway, notifier, reviewerID, logger)

	sessions.Put(pendingSession(2 * time.Hour))

	gateway.On("InitializeCheckout", mock.Anything, mock.Anything).
		Return("https://checkout.chapa.co/xyz", nil)

	approval, err := review.Approve(context.Background(), reviewerID, actorID)
	require.NoError(t, err)

	gateway.On("VerifyTransaction", mock.Anything, approval.TxRef).
		Return(&payment.VerifyResult{Status: "success", Amount: float64(approval.Amount), Currency: "ETB"}, nil)

	outcome := confirm.Confirm(context.Background(), approval.TxRef)

	assert.Equal(t, ConfirmVerified, outcome)
	session, _ := sessions.Get(actorID)
	assert.Equal(t, domain.StatusPaymentVerified, session.Status)
	assert.Equal(t, float64(StandardFee), session.PaidAmount)
}
