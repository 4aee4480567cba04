package payment

import "context"

// CheckoutRequest carries everything needed to initialize a hosted checkout.
type CheckoutRequest struct {
	Amount      int
	Currency    string
	Email       string
	FirstName   string
	LastName    string
	TxRef       string
	CallbackURL string
	ReturnURL   string
}

// VerifyResult is the gateway's authoritative view of a transaction.
type VerifyResult struct {
	// Status is "success" for a completed payment; anything else means
	// the transaction is not (yet) paid.
	Status   string
	Amount   float64
	Charge   float64
	Currency string
}

// Gateway abstracts the payment provider.
type Gateway interface {
	// InitializeCheckout creates a hosted checkout and returns its URL.
	InitializeCheckout(ctx context.Context, req CheckoutRequest) (string, error)
	// VerifyTransaction queries the provider's verification endpoint for
	// the authoritative payment status of a reference.
	VerifyTransaction(ctx context.Context, txRef string) (*VerifyResult, error)
}
