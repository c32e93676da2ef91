package models

import "math/big"

// SavingsGroup is a named community savings pool (tontine). Members contribute
// toward a shared target; contributions are escrowed at the group's own
// ledger address. Groups are never deleted and no entry point deactivates
// them, so Active stays true for the lifetime of the process.
type SavingsGroup struct {
	// ID is a monotonically increasing identifier, never reused, starting at 1.
	ID uint64 `json:"id"`
	// Name is the display name chosen by the creator.
	Name string `json:"name"`
	// EscrowAddress is the synthetic account holding the group's pooled funds.
	EscrowAddress string `json:"escrow_address"`
	// Members lists member addresses in join order. The creator is member #0.
	Members []string `json:"members"`
	// Contributions maps member address to cumulative contributed amount.
	// Invariant: sum of values == CurrentAmount.
	Contributions map[string]*big.Int `json:"contributions"`
	// TargetAmount is the savings goal in base units.
	TargetAmount *big.Int `json:"target_amount"`
	// CurrentAmount is the total contributed so far. Monotonically non-decreasing.
	CurrentAmount *big.Int `json:"current_amount"`
	// DurationSeconds is the intended savings period declared at creation.
	DurationSeconds int64 `json:"duration_seconds"`
	// CreatedAt is the Unix timestamp of group creation.
	CreatedAt int64 `json:"created_at"`
	// Active is true once set at creation.
	Active bool `json:"active"`
}

// IsMember reports whether addr has joined the group. Linear scan: groups are
// expected to hold tens of members, not thousands.
func (g *SavingsGroup) IsMember(addr string) bool {
	for _, m := range g.Members {
		if m == addr {
			return true
		}
	}
	return false
}

// GroupInfo is the read-only projection served to clients.
type GroupInfo struct {
	ID              uint64 `json:"id"`
	Name            string `json:"name"`
	EscrowAddress   string `json:"escrow_address"`
	MemberCount     int    `json:"member_count"`
	TargetAmount    string `json:"target_amount"`
	CurrentAmount   string `json:"current_amount"`
	DurationSeconds int64  `json:"duration_seconds"`
	Active          bool   `json:"active"`
	// ProgressPercent is CurrentAmount*100/TargetAmount, truncated.
	ProgressPercent int64 `json:"progress_percent"`
}
