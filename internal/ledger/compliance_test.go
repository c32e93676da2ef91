package ledger_test

import (
	"errors"
	"math/big"
	"strings"
	"testing"
	"time"

	"github.com/dinari-africa/dinari-ledger/internal/models"
)

func TestKYCErrorNamesTheParty(t *testing.T) {
	l, _, _ := newTestLedger(t, defaultGenesis())
	verify(t, l, bob)
	if err := l.Mint(deployer, bob, tok(10)); err != nil {
		t.Fatalf("mint failed: %v", err)
	}

	// Unverified sender.
	err := l.Transfer(alice, bob, tok(1))
	if !errors.Is(err, models.ErrKYCRequired) {
		t.Fatalf("expected ErrKYCRequired, got %v", err)
	}
	if !strings.Contains(err.Error(), alice) {
		t.Errorf("error must name the non-compliant sender, got %q", err)
	}

	// Unverified receiver.
	err = l.Transfer(bob, carol, tok(1))
	if !errors.Is(err, models.ErrKYCRequired) {
		t.Fatalf("expected ErrKYCRequired, got %v", err)
	}
	if !strings.Contains(err.Error(), carol) {
		t.Errorf("error must name the non-compliant receiver, got %q", err)
	}

	// Revoking the flag re-gates a previously verified account.
	if err := l.SetKYCVerified(deployer, bob, false); err != nil {
		t.Fatalf("failed to revoke flag: %v", err)
	}
	if err := l.Transfer(bob, bob, tok(1)); !errors.Is(err, models.ErrKYCRequired) {
		t.Fatalf("revoked account must be gated, got %v", err)
	}
}

func TestSetKYCRequiresOwner(t *testing.T) {
	l, _, _ := newTestLedger(t, defaultGenesis())

	if err := l.SetKYCVerified(alice, bob, true); !errors.Is(err, models.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if err := l.SetDailyLimit(alice, bob, tok(1)); !errors.Is(err, models.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestDailyCapScenario(t *testing.T) {
	l, _, clock := newTestLedger(t, defaultGenesis())
	verify(t, l, alice, bob)
	if err := l.Mint(deployer, alice, tok(5000)); err != nil {
		t.Fatalf("mint failed: %v", err)
	}
	if err := l.SetDailyLimit(deployer, alice, tok(500)); err != nil {
		t.Fatalf("setDailyLimit failed: %v", err)
	}

	// 300 within the cap succeeds.
	if err := l.Transfer(alice, bob, tok(300)); err != nil {
		t.Fatalf("first transfer failed: %v", err)
	}
	if used := l.GetAccount(alice).DailyUsed; used.Cmp(tok(300)) != 0 {
		t.Errorf("expected dailyUsed 300, got %s", used)
	}

	// Another 300 in the same window exceeds the cap and must not move anything.
	err := l.Transfer(alice, bob, tok(300))
	if !errors.Is(err, models.ErrDailyLimitExceeded) {
		t.Fatalf("expected ErrDailyLimitExceeded, got %v", err)
	}
	if used := l.GetAccount(alice).DailyUsed; used.Cmp(tok(300)) != 0 {
		t.Errorf("rejected transfer must leave dailyUsed at 300, got %s", used)
	}
	if l.BalanceOf(bob).Cmp(tok(300)) != 0 {
		t.Errorf("rejected transfer must not move funds, bob holds %s", l.BalanceOf(bob))
	}

	// Topping up to exactly the cap is allowed.
	if err := l.Transfer(alice, bob, tok(200)); err != nil {
		t.Fatalf("transfer up to the cap failed: %v", err)
	}

	// After the window rolls over the accounting resets.
	clock.Advance(24*time.Hour + time.Second)
	if err := l.Transfer(alice, bob, tok(300)); err != nil {
		t.Fatalf("transfer after window rollover failed: %v", err)
	}
	if used := l.GetAccount(alice).DailyUsed; used.Cmp(tok(300)) != 0 {
		t.Errorf("expected dailyUsed 300 in the fresh window, got %s", used)
	}
}

func TestDailyWindowStaleForDaysResetsOnce(t *testing.T) {
	l, _, clock := newTestLedger(t, defaultGenesis())
	verify(t, l, alice, bob)
	if err := l.Mint(deployer, alice, tok(1000)); err != nil {
		t.Fatalf("mint failed: %v", err)
	}
	if err := l.SetDailyLimit(deployer, alice, tok(100)); err != nil {
		t.Fatalf("setDailyLimit failed: %v", err)
	}
	if err := l.Transfer(alice, bob, tok(100)); err != nil {
		t.Fatalf("transfer failed: %v", err)
	}

	// Any elapsed time beyond 24h is a full reset, not N advanced windows.
	clock.Advance(10 * 24 * time.Hour)
	if err := l.Transfer(alice, bob, tok(100)); err != nil {
		t.Fatalf("transfer after long idle failed: %v", err)
	}
	if err := l.Transfer(alice, bob, tok(1)); !errors.Is(err, models.ErrDailyLimitExceeded) {
		t.Fatalf("cap must apply inside the fresh window, got %v", err)
	}
}

func TestZeroLimitIsExempt(t *testing.T) {
	l, _, _ := newTestLedger(t, defaultGenesis())
	verify(t, l, alice, bob)
	if err := l.Mint(deployer, alice, tok(100_000)); err != nil {
		t.Fatalf("mint failed: %v", err)
	}

	// No limit set: arbitrarily large volume inside one window.
	for i := 0; i < 5; i++ {
		if err := l.Transfer(alice, bob, tok(20_000)); err != nil {
			t.Fatalf("transfer %d failed: %v", i, err)
		}
	}
	if used := l.GetAccount(alice).DailyUsed; used.Sign() != 0 {
		t.Errorf("exempt accounts must not accrue dailyUsed, got %s", used)
	}
}

func TestDailyLimitAppliesToDelegatedTransfers(t *testing.T) {
	l, _, _ := newTestLedger(t, defaultGenesis())
	verify(t, l, alice, bob, carol)
	if err := l.Mint(deployer, alice, tok(1000)); err != nil {
		t.Fatalf("mint failed: %v", err)
	}
	if err := l.SetDailyLimit(deployer, alice, tok(100)); err != nil {
		t.Fatalf("setDailyLimit failed: %v", err)
	}
	if err := l.Approve(alice, carol, tok(500)); err != nil {
		t.Fatalf("approve failed: %v", err)
	}

	// The cap tracks the funds owner, not the spender.
	if err := l.TransferFrom(carol, alice, bob, tok(80)); err != nil {
		t.Fatalf("delegated transfer failed: %v", err)
	}
	err := l.TransferFrom(carol, alice, bob, tok(30))
	if !errors.Is(err, models.ErrDailyLimitExceeded) {
		t.Fatalf("expected ErrDailyLimitExceeded, got %v", err)
	}
	if l.AllowanceOf(alice, carol).Cmp(new(big.Int).Sub(tok(500), tok(80))) != 0 {
		t.Error("failed delegated transfer must not consume allowance")
	}
}
