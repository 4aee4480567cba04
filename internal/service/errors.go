package service

import "errors"

var (
	// ErrUnauthorized is returned when a non-reviewer invokes a reviewer action.
	ErrUnauthorized = errors.New("caller is not the reviewer")
	// ErrNotFound is returned when a decision targets an unknown or expired session.
	ErrNotFound = errors.New("session not found")
	// ErrApprovalOutstanding is returned when a session already has an
	// unconfirmed checkout; a second approval would risk a double charge.
	ErrApprovalOutstanding = errors.New("an unpaid checkout is already outstanding for this session")
	// ErrAlreadyVerified is returned when a decision targets a session whose
	// payment has already been confirmed.
	ErrAlreadyVerified = errors.New("payment already verified for this session")
	// ErrGateway wraps payment gateway failures.
	ErrGateway = errors.New("payment gateway failure")
)
