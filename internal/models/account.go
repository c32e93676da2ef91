package models

import "math/big"

// Account holds the per-address ledger state.
type Account struct {
	// Address is the DT-prefixed address identifying the account.
	Address string `json:"address"`
	// Balance is the token balance in 18-decimal base units. Never negative.
	Balance *big.Int `json:"balance"`
	// Verified is the compliance (KYC) flag. Both parties of a transfer must be verified.
	Verified bool `json:"verified"`
	// DailyLimit caps the outbound transfer volume per 24h window. Zero means unlimited.
	DailyLimit *big.Int `json:"daily_limit"`
	// DailyUsed is the volume already transferred inside the current window.
	// Invariant: DailyUsed <= DailyLimit while the window has not rolled over.
	DailyUsed *big.Int `json:"daily_used"`
	// WindowStart is the Unix timestamp opening the current daily window.
	WindowStart int64 `json:"window_start"`
}

// Clone returns a deep copy so callers never alias live ledger state.
func (a *Account) Clone() *Account {
	if a == nil {
		return nil
	}
	return &Account{
		Address:     a.Address,
		Balance:     new(big.Int).Set(a.Balance),
		Verified:    a.Verified,
		DailyLimit:  new(big.Int).Set(a.DailyLimit),
		DailyUsed:   new(big.Int).Set(a.DailyUsed),
		WindowStart: a.WindowStart,
	}
}
