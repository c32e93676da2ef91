package models

import "math/big"

// LedgerService is the full set of ledger entry points served by the API.
// Every mutating call executes atomically: it either fully succeeds, emitting
// its event record, or fails with a taxonomy error and no side effect.
type LedgerService interface {
	// Token returns the token metadata fixed at genesis.
	Token() Token

	// Ledger operations.
	Transfer(from, to string, amount *big.Int) error
	Approve(owner, spender string, amount *big.Int) error
	TransferFrom(spender, from, to string, amount *big.Int) error
	Mint(caller, to string, amount *big.Int) error
	Burn(caller string, amount *big.Int) error
	BalanceOf(address string) *big.Int
	AllowanceOf(owner, spender string) *big.Int
	TotalSupply() *big.Int

	// Access control.
	TransferOwnership(caller, newOwner string) error
	SetMinter(caller, newMinter string) error
	Pause(caller string) error
	Unpause(caller string) error
	Owner() string
	Minter() string
	Paused() bool

	// Compliance gate administration.
	SetKYCVerified(caller, account string, verified bool) error
	SetDailyLimit(caller, account string, limit *big.Int) error
	GetAccount(address string) *Account

	// Rate table.
	UpdateRate(caller, currency string, rate *big.Int) error
	ConversionRate(currency string) *big.Int
	ConvertToFiat(amount *big.Int, currency string) (*big.Int, error)

	// Savings groups.
	CreateSavingsGroup(caller, name string, target *big.Int, durationSeconds int64) (uint64, error)
	JoinSavingsGroup(caller string, groupID uint64) error
	ContributeToSavings(caller string, groupID uint64, amount *big.Int) error
	SavingsGroupInfo(groupID uint64) (*GroupInfo, error)
	MemberContribution(groupID uint64, member string) (*big.Int, error)

	// Collateral tracker.
	SetCollateralValue(caller string, value *big.Int) error
	CollateralValue() *big.Int
	CollateralizationRatio() *big.Int
}
