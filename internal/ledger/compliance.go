package ledger

import (
	"fmt"
	"math/big"

	"github.com/dinari-africa/dinari-ledger/internal/models"
)

// Compliance gate: both parties of a transfer must be KYC-verified, and the
// funds owner's outbound volume is capped per fixed 86400s window. The window
// is reset wholesale when more than a full day has elapsed; there is no
// notion of advancing N windows.

// SetKYCVerified flips the compliance flag of an account. Owner only.
func (l *Ledger) SetKYCVerified(caller, account string, verified bool) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.clock().Unix()

	if err := l.requireOwner(caller); err != nil {
		return err
	}
	if account == "" {
		return models.ErrZeroAddress
	}

	l.account(account).Verified = verified
	flag := "0"
	if verified {
		flag = "1"
	}
	l.emit(&models.Event{
		Kind:      models.EventKYCUpdated,
		To:        account,
		Amount:    flag,
		Timestamp: now,
	})
	l.logger.Info("KYC flag updated ", "account ", account, " verified ", verified)
	return nil
}

// SetDailyLimit sets the rolling 24h outbound volume cap of an account.
// Zero removes the cap. Owner only.
func (l *Ledger) SetDailyLimit(caller, account string, limit *big.Int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.clock().Unix()

	if err := l.requireOwner(caller); err != nil {
		return err
	}
	if account == "" {
		return models.ErrZeroAddress
	}
	if limit == nil || limit.Sign() < 0 {
		return models.ErrInvalidAmount
	}

	l.account(account).DailyLimit.Set(limit)
	l.emit(&models.Event{
		Kind:      models.EventDailyLimitUpdated,
		To:        account,
		Amount:    limit.String(),
		Timestamp: now,
	})
	return nil
}

// checkCompliance verifies both parties and the sender's daily window.
// It never mutates state: the returned commit closure applies the window
// accounting and must be called only once the whole transfer has passed
// every other check, so failed calls leave DailyUsed untouched.
// Callers must hold the mutex.
func (l *Ledger) checkCompliance(from, to string, amount *big.Int, now int64) (commit func(), err error) {
	if !l.isVerified(from) {
		return nil, fmt.Errorf("%w: sender %s is not verified", models.ErrKYCRequired, from)
	}
	if !l.isVerified(to) {
		return nil, fmt.Errorf("%w: receiver %s is not verified", models.ErrKYCRequired, to)
	}

	acc := l.account(from)
	if acc.DailyLimit.Sign() == 0 {
		return func() {}, nil
	}

	used := new(big.Int).Set(acc.DailyUsed)
	windowStart := acc.WindowStart
	if now-windowStart > dayWindow {
		used.SetInt64(0)
		windowStart = now
	}

	if new(big.Int).Add(used, amount).Cmp(acc.DailyLimit) > 0 {
		return nil, fmt.Errorf("%w: %s used %s of %s this window", models.ErrDailyLimitExceeded, from, used, acc.DailyLimit)
	}

	return func() {
		acc.DailyUsed.Add(used, amount)
		acc.WindowStart = windowStart
	}, nil
}

func (l *Ledger) isVerified(address string) bool {
	acc, ok := l.accounts[address]
	return ok && acc.Verified
}
