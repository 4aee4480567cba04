package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"
)

// Chapa is the HTTP client for the Chapa payment gateway.
type Chapa struct {
	secretKey string
	baseURL   string
	client    *http.Client
	logger    *zap.Logger
}

// NewChapa creates a Chapa client against the given API base URL.
func NewChapa(secretKey, baseURL string, logger *zap.Logger) *Chapa {
	return &Chapa{
		secretKey: secretKey,
		baseURL:   baseURL,
		client:    &http.Client{Timeout: 30 * time.Second},
		logger:    logger,
	}
}

type initializeRequest struct {
	Amount      string `json:"amount"`
	Currency    string `json:"currency"`
	Email       string `json:"email"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	TxRef       string `json:"tx_ref"`
	CallbackURL string `json:"callback_url"`
	ReturnURL   string `json:"return_url"`
}

type initializeResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Data    struct {
		CheckoutURL string `json:"checkout_url"`
	} `json:"data"`
}

type verifyResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Data    struct {
		Status   string  `json:"status"`
		Amount   float64 `json:"amount"`
		Charge   float64 `json:"charge"`
		Currency string  `json:"currency"`
	} `json:"data"`
}

// InitializeCheckout creates a hosted checkout and returns its URL.
func (c *Chapa) InitializeCheckout(ctx context.Context, req CheckoutRequest) (string, error) {
	body, err := json.Marshal(initializeRequest{
		Amount:      strconv.Itoa(req.Amount),
		Currency:    req.Currency,
		Email:       req.Email,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		TxRef:       req.TxRef,
		CallbackURL: req.CallbackURL,
		ReturnURL:   req.ReturnURL,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode initialize request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/transaction/initialize", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build initialize request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.secretKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("chapa initialize request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read initialize response: %w", err)
	}

	var decoded initializeResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return "", fmt.Errorf("failed to decode initialize response: %w", err)
	}

	if resp.StatusCode != http.StatusOK || decoded.Status != "success" {
		c.logger.Warn("Chapa initialize rejected",
			zap.Int("http_status", resp.StatusCode),
			zap.String("status", decoded.Status),
			zap.String("message", decoded.Message),
			zap.String("tx_ref", req.TxRef),
		)
		return "", fmt.Errorf("chapa initialize rejected: %s (%s)", decoded.Status, decoded.Message)
	}
	if decoded.Data.CheckoutURL == "" {
		return "", fmt.Errorf("chapa initialize returned no checkout url")
	}

	return decoded.Data.CheckoutURL, nil
}

// VerifyTransaction queries Chapa's verification endpoint for a reference.
func (c *Chapa) VerifyTransaction(ctx context.Context, txRef string) (*VerifyResult, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/transaction/verify/"+txRef, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build verify request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.secretKey)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("chapa verify request failed: %w", err)
	}
	defer resp.Body.Close()

	var decoded verifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("failed to decode verify response: %w", err)
	}

	if resp.StatusCode != http.StatusOK || decoded.Status != "success" {
		return nil, fmt.Errorf("chapa verify rejected: %s (%s)", decoded.Status, decoded.Message)
	}

	return &VerifyResult{
		Status:   decoded.Data.Status,
		Amount:   decoded.Data.Amount,
		Charge:   decoded.Data.Charge,
		Currency: decoded.Data.Currency,
	}, nil
}
