package ledger_test

import (
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/dinari-africa/dinari-ledger/internal/ledger"
	"github.com/dinari-africa/dinari-ledger/internal/models"
	"github.com/dinari-africa/dinari-ledger/pkg/dinari"
	"github.com/dinari-africa/dinari-ledger/pkg/logger"
)

var (
	deployer = dinari.GenerateAddress("deployer")
	alice    = dinari.GenerateAddress("alice")
	bob      = dinari.GenerateAddress("bob")
	carol    = dinari.GenerateAddress("carol")
)

// captureSink records emitted events synchronously for assertions.
type captureSink struct {
	events []*models.Event
}

func (s *captureSink) Record(ev *models.Event) {
	s.events = append(s.events, ev)
}

func (s *captureSink) last() *models.Event {
	if len(s.events) == 0 {
		return nil
	}
	return s.events[len(s.events)-1]
}

// tok converts whole tokens to 18-decimal base units.
func tok(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil))
}

// fakeClock is a settable time source for window tests.
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestLedger(t *testing.T, genesis *models.Genesis) (*ledger.Ledger, *captureSink, *fakeClock) {
	t.Helper()
	sink := &captureSink{}
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	l, err := ledger.New(genesis, sink, logger.NewNop(), ledger.WithClock(clock.Now))
	if err != nil {
		t.Fatalf("failed to create ledger: %v", err)
	}
	return l, sink, clock
}

func defaultGenesis() *models.Genesis {
	return &models.Genesis{
		Token:         models.Token{Name: "Dinari", Symbol: "DNR", Decimals: 18},
		Deployer:      deployer,
		InitialSupply: tok(10_000),
		InitialRates:  map[string]*big.Int{"USD": tok(1)},
	}
}

// verify flags an account and removes any daily cap, acting as the owner.
func verify(t *testing.T, l *ledger.Ledger, addrs ...string) {
	t.Helper()
	for _, addr := range addrs {
		if err := l.SetKYCVerified(deployer, addr, true); err != nil {
			t.Fatalf("failed to verify %s: %v", addr, err)
		}
	}
}

// supplyEqualsBalances checks the conservation invariant over the given accounts.
func supplyEqualsBalances(t *testing.T, l *ledger.Ledger, addrs ...string) {
	t.Helper()
	sum := new(big.Int)
	for _, addr := range addrs {
		sum.Add(sum, l.BalanceOf(addr))
	}
	if sum.Cmp(l.TotalSupply()) != 0 {
		t.Errorf("conservation violated: sum of balances %s, total supply %s", sum, l.TotalSupply())
	}
}

func TestGenesis(t *testing.T) {
	l, sink, _ := newTestLedger(t, defaultGenesis())

	if l.Owner() != deployer || l.Minter() != deployer {
		t.Error("deployer must hold both owner and minter roles at genesis")
	}
	if l.Paused() {
		t.Error("ledger must not start paused")
	}
	if l.BalanceOf(deployer).Cmp(tok(10_000)) != 0 {
		t.Errorf("expected deployer balance %s, got %s", tok(10_000), l.BalanceOf(deployer))
	}
	if l.TotalSupply().Cmp(tok(10_000)) != 0 {
		t.Errorf("expected total supply %s, got %s", tok(10_000), l.TotalSupply())
	}
	if l.ConversionRate("USD").Cmp(tok(1)) != 0 {
		t.Error("initial USD rate not installed")
	}

	// Genesis mint emits the Transfer record from the null sentinel.
	ev := sink.last()
	if ev == nil || ev.Kind != models.EventTransfer || ev.From != "" || ev.To != deployer {
		t.Errorf("expected genesis Transfer event to deployer, got %+v", ev)
	}
}

func TestGenesisZeroDeployer(t *testing.T) {
	genesis := defaultGenesis()
	genesis.Deployer = ""
	_, err := ledger.New(genesis, nil, logger.NewNop())
	if !errors.Is(err, models.ErrZeroAddress) {
		t.Fatalf("expected ErrZeroAddress, got %v", err)
	}
}

func TestMintAndTransferScenario(t *testing.T) {
	l, sink, _ := newTestLedger(t, defaultGenesis())
	verify(t, l, alice, bob)

	// Mint 1000 to alice.
	if err := l.Mint(deployer, alice, tok(1000)); err != nil {
		t.Fatalf("mint failed: %v", err)
	}
	if l.BalanceOf(alice).Cmp(tok(1000)) != 0 {
		t.Errorf("expected alice balance 1000, got %s", l.BalanceOf(alice))
	}
	if l.TotalSupply().Cmp(tok(11_000)) != 0 {
		t.Errorf("expected supply 11000, got %s", l.TotalSupply())
	}

	// Alice transfers 400 to bob.
	if err := l.Transfer(alice, bob, tok(400)); err != nil {
		t.Fatalf("transfer failed: %v", err)
	}
	if l.BalanceOf(alice).Cmp(tok(600)) != 0 {
		t.Errorf("expected alice balance 600, got %s", l.BalanceOf(alice))
	}
	if l.BalanceOf(bob).Cmp(tok(400)) != 0 {
		t.Errorf("expected bob balance 400, got %s", l.BalanceOf(bob))
	}

	ev := sink.last()
	if ev.Kind != models.EventTransfer || ev.From != alice || ev.To != bob || ev.Amount != tok(400).String() {
		t.Errorf("unexpected transfer event: %+v", ev)
	}

	supplyEqualsBalances(t, l, deployer, alice, bob)
}

func TestTransferFailuresLeaveStateUntouched(t *testing.T) {
	l, sink, _ := newTestLedger(t, defaultGenesis())
	verify(t, l, alice, bob)
	if err := l.Mint(deployer, alice, tok(100)); err != nil {
		t.Fatalf("mint failed: %v", err)
	}
	emitted := len(sink.events)

	cases := []struct {
		name string
		call func() error
		want error
	}{
		{"insufficient balance", func() error { return l.Transfer(alice, bob, tok(101)) }, models.ErrInsufficientBalance},
		{"zero address", func() error { return l.Transfer(alice, "", tok(1)) }, models.ErrZeroAddress},
		{"zero amount", func() error { return l.Transfer(alice, bob, big.NewInt(0)) }, models.ErrInvalidAmount},
		{"negative amount", func() error { return l.Transfer(alice, bob, big.NewInt(-5)) }, models.ErrInvalidAmount},
		{"unverified receiver", func() error { return l.Transfer(alice, carol, tok(1)) }, models.ErrKYCRequired},
	}

	for _, tc := range cases {
		if err := tc.call(); !errors.Is(err, tc.want) {
			t.Errorf("%s: expected %v, got %v", tc.name, tc.want, err)
		}
	}

	if l.BalanceOf(alice).Cmp(tok(100)) != 0 {
		t.Errorf("failed transfers must not change balances, alice holds %s", l.BalanceOf(alice))
	}
	if l.BalanceOf(bob).Sign() != 0 {
		t.Errorf("failed transfers must not credit the receiver, bob holds %s", l.BalanceOf(bob))
	}
	if len(sink.events) != emitted {
		t.Errorf("failed transfers must not emit events, got %d new", len(sink.events)-emitted)
	}
	supplyEqualsBalances(t, l, deployer, alice, bob)
}

func TestApproveAndTransferFrom(t *testing.T) {
	l, _, _ := newTestLedger(t, defaultGenesis())
	verify(t, l, alice, bob)
	if err := l.Mint(deployer, alice, tok(500)); err != nil {
		t.Fatalf("mint failed: %v", err)
	}

	if err := l.Approve(alice, carol, tok(300)); err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	if l.AllowanceOf(alice, carol).Cmp(tok(300)) != 0 {
		t.Errorf("expected allowance 300, got %s", l.AllowanceOf(alice, carol))
	}

	// Delegated transfer within the allowance.
	if err := l.TransferFrom(carol, alice, bob, tok(200)); err != nil {
		t.Fatalf("transferFrom failed: %v", err)
	}
	if l.AllowanceOf(alice, carol).Cmp(tok(100)) != 0 {
		t.Errorf("allowance must decrement by the transferred amount, got %s", l.AllowanceOf(alice, carol))
	}
	if l.BalanceOf(bob).Cmp(tok(200)) != 0 {
		t.Errorf("expected bob balance 200, got %s", l.BalanceOf(bob))
	}

	// Exceeding the remaining allowance fails and changes nothing.
	if err := l.TransferFrom(carol, alice, bob, tok(150)); !errors.Is(err, models.ErrAllowanceExceeded) {
		t.Fatalf("expected ErrAllowanceExceeded, got %v", err)
	}
	if l.AllowanceOf(alice, carol).Cmp(tok(100)) != 0 {
		t.Error("failed transferFrom must not touch the allowance")
	}
	if l.BalanceOf(alice).Cmp(tok(300)) != 0 {
		t.Error("failed transferFrom must not touch balances")
	}
	supplyEqualsBalances(t, l, deployer, alice, bob, carol)
}

func TestBurn(t *testing.T) {
	l, sink, _ := newTestLedger(t, defaultGenesis())

	if err := l.Burn(deployer, tok(4000)); err != nil {
		t.Fatalf("burn failed: %v", err)
	}
	if l.TotalSupply().Cmp(tok(6000)) != 0 {
		t.Errorf("expected supply 6000 after burn, got %s", l.TotalSupply())
	}
	if l.BalanceOf(deployer).Cmp(tok(6000)) != 0 {
		t.Errorf("expected deployer balance 6000 after burn, got %s", l.BalanceOf(deployer))
	}

	ev := sink.last()
	if ev.Kind != models.EventTransfer || ev.From != deployer || ev.To != "" {
		t.Errorf("burn must emit a Transfer to the null sentinel, got %+v", ev)
	}

	// Burning more than held fails.
	if err := l.Burn(deployer, tok(7000)); !errors.Is(err, models.ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}
	supplyEqualsBalances(t, l, deployer)
}

func TestMintRequiresMinterRole(t *testing.T) {
	l, _, _ := newTestLedger(t, defaultGenesis())
	verify(t, l, alice)

	if err := l.Mint(alice, alice, tok(1)); !errors.Is(err, models.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}

	// Hand the minter role to alice, then minting works and the old minter is out.
	if err := l.SetMinter(deployer, alice); err != nil {
		t.Fatalf("setMinter failed: %v", err)
	}
	if err := l.Mint(alice, alice, tok(1)); err != nil {
		t.Fatalf("mint by new minter failed: %v", err)
	}
	if err := l.Mint(deployer, alice, tok(1)); !errors.Is(err, models.ErrUnauthorized) {
		t.Fatalf("old minter must lose the role, got %v", err)
	}

	if err := l.Mint(alice, "", tok(1)); !errors.Is(err, models.ErrZeroAddress) {
		t.Fatalf("expected ErrZeroAddress for null target, got %v", err)
	}
}

func TestOwnershipTransfer(t *testing.T) {
	l, _, _ := newTestLedger(t, defaultGenesis())

	if err := l.TransferOwnership(alice, bob); !errors.Is(err, models.ErrUnauthorized) {
		t.Fatalf("non-owner must not transfer ownership, got %v", err)
	}
	if err := l.TransferOwnership(deployer, ""); !errors.Is(err, models.ErrZeroAddress) {
		t.Fatalf("expected ErrZeroAddress, got %v", err)
	}
	if err := l.TransferOwnership(deployer, alice); err != nil {
		t.Fatalf("ownership transfer failed: %v", err)
	}
	if l.Owner() != alice {
		t.Errorf("expected owner %s, got %s", alice, l.Owner())
	}

	// Replacement is effective immediately: old owner is out, new owner acts.
	if err := l.Pause(deployer); !errors.Is(err, models.ErrUnauthorized) {
		t.Fatalf("old owner must lose the role, got %v", err)
	}
	if err := l.Pause(alice); err != nil {
		t.Fatalf("new owner pause failed: %v", err)
	}
}

func TestPauseBlocksMutations(t *testing.T) {
	l, _, _ := newTestLedger(t, defaultGenesis())
	verify(t, l, alice, bob)
	if err := l.Mint(deployer, alice, tok(10)); err != nil {
		t.Fatalf("mint failed: %v", err)
	}

	if err := l.Pause(deployer); err != nil {
		t.Fatalf("pause failed: %v", err)
	}
	// Pausing again is a documented no-op success.
	if err := l.Pause(deployer); err != nil {
		t.Fatalf("pause must be idempotent, got %v", err)
	}

	blocked := []struct {
		name string
		call func() error
	}{
		{"transfer", func() error { return l.Transfer(alice, bob, tok(1)) }},
		{"approve", func() error { return l.Approve(alice, bob, tok(1)) }},
		{"transferFrom", func() error { return l.TransferFrom(bob, alice, bob, tok(1)) }},
		{"mint", func() error { return l.Mint(deployer, alice, tok(1)) }},
		{"burn", func() error { return l.Burn(alice, tok(1)) }},
		{"contribute", func() error { return l.ContributeToSavings(alice, 1, tok(1)) }},
		{"join", func() error { return l.JoinSavingsGroup(alice, 1) }},
		{"create group", func() error { _, err := l.CreateSavingsGroup(alice, "g", tok(1), 60); return err }},
	}
	for _, tc := range blocked {
		if err := tc.call(); !errors.Is(err, models.ErrContractPaused) {
			t.Errorf("%s: expected ErrContractPaused while paused, got %v", tc.name, err)
		}
	}

	if err := l.Unpause(deployer); err != nil {
		t.Fatalf("unpause failed: %v", err)
	}
	if err := l.Unpause(deployer); err != nil {
		t.Fatalf("unpause must be idempotent, got %v", err)
	}
	if err := l.Transfer(alice, bob, tok(1)); err != nil {
		t.Fatalf("transfer after unpause failed: %v", err)
	}
}

func TestConservationOverRandomishSequence(t *testing.T) {
	l, _, _ := newTestLedger(t, defaultGenesis())
	verify(t, l, alice, bob, carol)
	participants := []string{deployer, alice, bob, carol}

	steps := []func() error{
		func() error { return l.Mint(deployer, alice, tok(250)) },
		func() error { return l.Transfer(alice, bob, tok(100)) },
		func() error { return l.Mint(deployer, carol, tok(50)) },
		func() error { return l.Transfer(bob, carol, tok(30)) },
		func() error { return l.Burn(carol, tok(20)) },
		func() error { return l.Transfer(carol, alice, tok(10)) },
		func() error { return l.Burn(alice, tok(60)) },
	}
	for i, step := range steps {
		if err := step(); err != nil {
			t.Fatalf("step %d failed: %v", i, err)
		}
		supplyEqualsBalances(t, l, participants...)
	}
}
