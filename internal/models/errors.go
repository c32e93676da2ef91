package models

import "errors"

// Every rejected ledger call surfaces one of these kinds. Failures are
// synchronous and leave state untouched; callers decide whether to resubmit.
var (
	// ErrZeroAddress is returned when an operation targets the null address.
	ErrZeroAddress = errors.New("zero address")
	// ErrInvalidAmount is returned when an amount is nil, zero or negative.
	ErrInvalidAmount = errors.New("amount must be positive")
	// ErrInsufficientBalance is returned when an account balance cannot cover a debit.
	ErrInsufficientBalance = errors.New("insufficient balance")
	// ErrAllowanceExceeded is returned when a delegated transfer exceeds the approved amount.
	ErrAllowanceExceeded = errors.New("allowance exceeded")
	// ErrKYCRequired is returned when a transfer party is not compliance-verified.
	// The wrapping message names the non-compliant party.
	ErrKYCRequired = errors.New("kyc verification required")
	// ErrDailyLimitExceeded is returned when a transfer would exceed the sender's
	// rolling 24h volume cap.
	ErrDailyLimitExceeded = errors.New("daily transfer limit exceeded")
	// ErrContractPaused is returned by every mutating entry point except Unpause
	// while the contract is paused.
	ErrContractPaused = errors.New("contract paused")
	// ErrUnauthorized is returned when the caller does not hold the required role.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrGroupNotFound is returned for an unknown savings group id.
	ErrGroupNotFound = errors.New("savings group not found")
	// ErrGroupNotActive is returned when joining or contributing to an inactive group.
	ErrGroupNotActive = errors.New("savings group not active")
	// ErrAlreadyMember is returned when an account joins a group twice.
	ErrAlreadyMember = errors.New("already a member")
	// ErrNotAMember is returned when a non-member contributes to a group.
	ErrNotAMember = errors.New("not a member")
	// ErrUnsupportedCurrency is returned when no exchange rate is set for a currency code.
	ErrUnsupportedCurrency = errors.New("unsupported currency")
)
