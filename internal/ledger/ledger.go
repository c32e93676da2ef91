package ledger

import (
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dinari-africa/dinari-ledger/internal/models"
	"github.com/dinari-africa/dinari-ledger/pkg/logger"
)

const (
	// dayWindow is the length of the rolling daily-limit window in seconds.
	dayWindow = 86400
	// reserveCurrency denominates the supply for collateralization math.
	reserveCurrency = "USD"
)

// Ledger is the in-memory contract state and the single entry point for all
// mutations. Every public call takes the mutex, reads the clock once and
// either fully applies its updates or returns a taxonomy error with no side
// effect. Events are handed to the sink, which must not block.
type Ledger struct {
	logger *logger.Logger

	mu    sync.Mutex
	clock func() time.Time
	sink  models.EventSink

	token  models.Token
	owner  string
	minter string
	paused bool

	accounts    map[string]*models.Account
	allowances  map[string]map[string]*big.Int
	totalSupply *big.Int

	rates map[string]*big.Int

	groups      map[uint64]*models.SavingsGroup
	nextGroupID uint64

	collateralValue *big.Int
}

// Option configures a Ledger at construction.
type Option func(*Ledger)

// WithClock overrides the time source. Used in tests to drive the daily window.
func WithClock(clock func() time.Time) Option {
	return func(l *Ledger) { l.clock = clock }
}

// New performs the one-time genesis initialization: token metadata,
// owner = minter = deployer, initial supply minted to the deployer and the
// initial rate table installed. The deployer is marked compliance-verified
// with no daily cap so the initial supply is spendable.
func New(genesis *models.Genesis, sink models.EventSink, log *logger.Logger, opts ...Option) (*Ledger, error) {
	if genesis.Deployer == "" {
		return nil, fmt.Errorf("genesis deployer: %w", models.ErrZeroAddress)
	}

	l := &Ledger{
		logger:          log,
		clock:           time.Now,
		sink:            sink,
		token:           genesis.Token,
		owner:           genesis.Deployer,
		minter:          genesis.Deployer,
		accounts:        make(map[string]*models.Account),
		allowances:      make(map[string]map[string]*big.Int),
		totalSupply:     new(big.Int),
		rates:           make(map[string]*big.Int),
		groups:          make(map[uint64]*models.SavingsGroup),
		nextGroupID:     1,
		collateralValue: new(big.Int),
	}
	for _, opt := range opts {
		opt(l)
	}

	deployer := l.account(genesis.Deployer)
	deployer.Verified = true

	if genesis.InitialSupply != nil && genesis.InitialSupply.Sign() > 0 {
		deployer.Balance.Set(genesis.InitialSupply)
		l.totalSupply.Set(genesis.InitialSupply)
		l.emit(&models.Event{
			Kind:      models.EventTransfer,
			To:        genesis.Deployer,
			Amount:    genesis.InitialSupply.String(),
			Timestamp: l.clock().Unix(),
		})
	}

	for currency, rate := range genesis.InitialRates {
		if rate != nil && rate.Sign() > 0 {
			l.rates[currency] = new(big.Int).Set(rate)
		}
	}

	log.Info("Ledger initialized ", "symbol ", genesis.Token.Symbol, " deployer ", genesis.Deployer, " supply ", l.totalSupply.String())
	return l, nil
}

// Token returns the token metadata fixed at genesis.
func (l *Ledger) Token() models.Token {
	return l.token
}

// Transfer moves amount from one verified account to another, subject to the
// sender's daily volume cap.
func (l *Ledger) Transfer(from, to string, amount *big.Int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.clock().Unix()

	if err := l.checkTransfer(from, to, amount); err != nil {
		return err
	}
	commitWindow, err := l.checkCompliance(from, to, amount, now)
	if err != nil {
		return err
	}

	l.move(from, to, amount)
	commitWindow()
	l.emit(&models.Event{
		Kind:      models.EventTransfer,
		From:      from,
		To:        to,
		Amount:    amount.String(),
		Timestamp: now,
	})
	return nil
}

// Approve sets the allowance of spender over owner's balance. A zero amount
// clears a previous approval.
func (l *Ledger) Approve(owner, spender string, amount *big.Int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.clock().Unix()

	if l.paused {
		return models.ErrContractPaused
	}
	if spender == "" {
		return models.ErrZeroAddress
	}
	if amount == nil || amount.Sign() < 0 {
		return models.ErrInvalidAmount
	}

	if l.allowances[owner] == nil {
		l.allowances[owner] = make(map[string]*big.Int)
	}
	l.allowances[owner][spender] = new(big.Int).Set(amount)
	l.emit(&models.Event{
		Kind:      models.EventApproval,
		From:      owner,
		To:        spender,
		Amount:    amount.String(),
		Timestamp: now,
	})
	return nil
}

// TransferFrom moves amount from `from` to `to` on behalf of spender,
// consuming the spender's allowance. The compliance gate applies to the
// funds owner exactly as for a direct transfer.
func (l *Ledger) TransferFrom(spender, from, to string, amount *big.Int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.clock().Unix()

	if err := l.checkTransfer(from, to, amount); err != nil {
		return err
	}
	allowed := l.allowance(from, spender)
	if allowed.Cmp(amount) < 0 {
		return fmt.Errorf("%w: spender %s allowed %s, needs %s", models.ErrAllowanceExceeded, spender, allowed, amount)
	}
	commitWindow, err := l.checkCompliance(from, to, amount, now)
	if err != nil {
		return err
	}

	l.move(from, to, amount)
	l.allowances[from][spender] = new(big.Int).Sub(allowed, amount)
	commitWindow()
	l.emit(&models.Event{
		Kind:      models.EventTransfer,
		From:      from,
		To:        to,
		Amount:    amount.String(),
		Timestamp: now,
	})
	return nil
}

// Mint creates new supply on the target balance. Minter role only.
func (l *Ledger) Mint(caller, to string, amount *big.Int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.clock().Unix()

	if l.paused {
		return models.ErrContractPaused
	}
	if caller != l.minter {
		return fmt.Errorf("%w: %s is not the minter", models.ErrUnauthorized, caller)
	}
	if to == "" {
		return models.ErrZeroAddress
	}
	if amount == nil || amount.Sign() <= 0 {
		return models.ErrInvalidAmount
	}

	l.account(to).Balance.Add(l.account(to).Balance, amount)
	l.totalSupply.Add(l.totalSupply, amount)
	l.emit(&models.Event{
		Kind:      models.EventTransfer,
		To:        to,
		Amount:    amount.String(),
		Timestamp: now,
	})
	return nil
}

// Burn destroys amount from the caller's own balance.
func (l *Ledger) Burn(caller string, amount *big.Int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.clock().Unix()

	if l.paused {
		return models.ErrContractPaused
	}
	if amount == nil || amount.Sign() <= 0 {
		return models.ErrInvalidAmount
	}
	acc := l.account(caller)
	if acc.Balance.Cmp(amount) < 0 {
		return fmt.Errorf("%w: %s holds %s, needs %s", models.ErrInsufficientBalance, caller, acc.Balance, amount)
	}

	acc.Balance.Sub(acc.Balance, amount)
	l.totalSupply.Sub(l.totalSupply, amount)
	l.emit(&models.Event{
		Kind:      models.EventTransfer,
		From:      caller,
		Amount:    amount.String(),
		Timestamp: now,
	})
	return nil
}

// BalanceOf returns the balance of an address, zero for unknown accounts.
func (l *Ledger) BalanceOf(address string) *big.Int {
	l.mu.Lock()
	defer l.mu.Unlock()
	if acc, ok := l.accounts[address]; ok {
		return new(big.Int).Set(acc.Balance)
	}
	return new(big.Int)
}

// AllowanceOf returns the remaining allowance of spender over owner's balance.
func (l *Ledger) AllowanceOf(owner, spender string) *big.Int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return new(big.Int).Set(l.allowance(owner, spender))
}

// TotalSupply returns the current total supply.
func (l *Ledger) TotalSupply() *big.Int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return new(big.Int).Set(l.totalSupply)
}

// GetAccount returns a copy of the account state, nil for unknown addresses.
func (l *Ledger) GetAccount(address string) *models.Account {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.accounts[address].Clone()
}

// checkTransfer runs the checks shared by Transfer and TransferFrom.
// Callers must hold the mutex.
func (l *Ledger) checkTransfer(from, to string, amount *big.Int) error {
	if l.paused {
		return models.ErrContractPaused
	}
	if to == "" {
		return models.ErrZeroAddress
	}
	if amount == nil || amount.Sign() <= 0 {
		return models.ErrInvalidAmount
	}
	bal := l.balance(from)
	if bal.Cmp(amount) < 0 {
		return fmt.Errorf("%w: %s holds %s, needs %s", models.ErrInsufficientBalance, from, bal, amount)
	}
	return nil
}

// move applies the balance updates of a checked transfer.
func (l *Ledger) move(from, to string, amount *big.Int) {
	src := l.account(from)
	dst := l.account(to)
	src.Balance.Sub(src.Balance, amount)
	dst.Balance.Add(dst.Balance, amount)
}

// account returns the live account record, creating it on first touch.
func (l *Ledger) account(address string) *models.Account {
	acc, ok := l.accounts[address]
	if !ok {
		acc = &models.Account{
			Address:    address,
			Balance:    new(big.Int),
			DailyLimit: new(big.Int),
			DailyUsed:  new(big.Int),
		}
		l.accounts[address] = acc
	}
	return acc
}

func (l *Ledger) balance(address string) *big.Int {
	if acc, ok := l.accounts[address]; ok {
		return acc.Balance
	}
	return new(big.Int)
}

func (l *Ledger) allowance(owner, spender string) *big.Int {
	if m, ok := l.allowances[owner]; ok {
		if a, ok := m[spender]; ok {
			return a
		}
	}
	return new(big.Int)
}

func (l *Ledger) emit(ev *models.Event) {
	ev.ID = uuid.NewString()
	if l.sink != nil {
		l.sink.Record(ev)
	}
}
