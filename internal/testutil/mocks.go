package testutil

import (
	"context"

	"tutorbot/internal/payment"

	"github.com/stretchr/testify/mock"
)

// MockGateway is a mock for payment.Gateway
type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) InitializeCheckout(ctx context.Context, req payment.CheckoutRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

func (m *MockGateway) VerifyTransaction(ctx context.Context, txRef string) (*payment.VerifyResult, error) {
	args := m.Called(ctx, txRef)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.VerifyResult), args.Error(1)
}

// MockNotifier is a mock for service.Notifier that records every message.
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Notify(userID int64, text string) error {
	args := m.Called(userID, text)
	return args.Error(0)
}

// RecordingNotifier is a Notifier that just collects messages, for tests
// that only care about delivery counts.
type RecordingNotifier struct {
	Messages map[int64][]string
}

func NewRecordingNotifier() *RecordingNotifier {
	return &RecordingNotifier{Messages: make(map[int64][]string)}
}

func (n *RecordingNotifier) Notify(userID int64, text string) error {
	n.Messages[userID] = append(n.Messages[userID], text)
	return nil
}
