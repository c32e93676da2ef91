package ledger

import (
	"fmt"
	"math/big"

	"github.com/dinari-africa/dinari-ledger/internal/models"
	"github.com/dinari-africa/dinari-ledger/pkg/dinari"
)

// Savings group engine (tontine): named pools of verified members
// accumulating contributions toward a target. Contributions are escrowed at
// a per-group synthetic address so balance conservation covers pooled funds.
// No payout or deactivation path exists; groups stay open indefinitely.

// CreateSavingsGroup allocates the next group id and registers the caller as
// member #0. The caller must be compliance-verified.
func (l *Ledger) CreateSavingsGroup(caller, name string, target *big.Int, durationSeconds int64) (uint64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.clock().Unix()

	if l.paused {
		return 0, models.ErrContractPaused
	}
	if !l.isVerified(caller) {
		return 0, fmt.Errorf("%w: creator %s is not verified", models.ErrKYCRequired, caller)
	}
	if target == nil || target.Sign() <= 0 {
		return 0, models.ErrInvalidAmount
	}

	id := l.nextGroupID
	l.nextGroupID++
	group := &models.SavingsGroup{
		ID:              id,
		Name:            name,
		EscrowAddress:   dinari.EscrowAddress(id),
		Members:         []string{caller},
		Contributions:   map[string]*big.Int{caller: new(big.Int)},
		TargetAmount:    new(big.Int).Set(target),
		CurrentAmount:   new(big.Int),
		DurationSeconds: durationSeconds,
		CreatedAt:       now,
		Active:          true,
	}
	l.groups[id] = group

	l.emit(&models.Event{
		Kind:      models.EventSavingsGroupCreated,
		From:      caller,
		Amount:    target.String(),
		GroupID:   id,
		Timestamp: now,
	})
	l.logger.Info("Savings group created ", "id ", id, " name ", name, " creator ", caller)
	return id, nil
}

// JoinSavingsGroup appends the caller to the member list in join order.
func (l *Ledger) JoinSavingsGroup(caller string, groupID uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.clock().Unix()

	if l.paused {
		return models.ErrContractPaused
	}
	if !l.isVerified(caller) {
		return fmt.Errorf("%w: %s is not verified", models.ErrKYCRequired, caller)
	}
	group, ok := l.groups[groupID]
	if !ok {
		return fmt.Errorf("%w: id %d", models.ErrGroupNotFound, groupID)
	}
	if !group.Active {
		return models.ErrGroupNotActive
	}
	if group.IsMember(caller) {
		return fmt.Errorf("%w: %s already joined group %d", models.ErrAlreadyMember, caller, groupID)
	}

	group.Members = append(group.Members, caller)
	group.Contributions[caller] = new(big.Int)
	l.emit(&models.Event{
		Kind:      models.EventMemberJoined,
		From:      caller,
		GroupID:   groupID,
		Timestamp: now,
	})
	return nil
}

// ContributeToSavings moves amount from the caller's balance into the
// group's escrow account and records the member's cumulative contribution.
// Emits the underlying Transfer for the escrow move plus the contribution
// event, and TargetReached when the total first crosses the target.
func (l *Ledger) ContributeToSavings(caller string, groupID uint64, amount *big.Int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.clock().Unix()

	if l.paused {
		return models.ErrContractPaused
	}
	if !l.isVerified(caller) {
		return fmt.Errorf("%w: %s is not verified", models.ErrKYCRequired, caller)
	}
	group, ok := l.groups[groupID]
	if !ok {
		return fmt.Errorf("%w: id %d", models.ErrGroupNotFound, groupID)
	}
	if !group.Active {
		return models.ErrGroupNotActive
	}
	if !group.IsMember(caller) {
		return fmt.Errorf("%w: %s has not joined group %d", models.ErrNotAMember, caller, groupID)
	}
	if amount == nil || amount.Sign() <= 0 {
		return models.ErrInvalidAmount
	}
	bal := l.balance(caller)
	if bal.Cmp(amount) < 0 {
		return fmt.Errorf("%w: %s holds %s, needs %s", models.ErrInsufficientBalance, caller, bal, amount)
	}

	wasBelowTarget := group.CurrentAmount.Cmp(group.TargetAmount) < 0

	l.move(caller, group.EscrowAddress, amount)
	group.Contributions[caller].Add(group.Contributions[caller], amount)
	group.CurrentAmount.Add(group.CurrentAmount, amount)

	l.emit(&models.Event{
		Kind:      models.EventTransfer,
		From:      caller,
		To:        group.EscrowAddress,
		Amount:    amount.String(),
		Timestamp: now,
	})
	l.emit(&models.Event{
		Kind:      models.EventSavingsContribution,
		From:      caller,
		To:        group.EscrowAddress,
		Amount:    amount.String(),
		GroupID:   groupID,
		Timestamp: now,
	})
	if wasBelowTarget && group.CurrentAmount.Cmp(group.TargetAmount) >= 0 {
		l.emit(&models.Event{
			Kind:      models.EventTargetReached,
			Amount:    group.CurrentAmount.String(),
			GroupID:   groupID,
			Timestamp: now,
		})
		l.logger.Info("Savings target reached ", "group ", groupID, " total ", group.CurrentAmount.String())
	}
	return nil
}

// SavingsGroupInfo returns the read-only projection of a group.
func (l *Ledger) SavingsGroupInfo(groupID uint64) (*models.GroupInfo, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	group, ok := l.groups[groupID]
	if !ok {
		return nil, fmt.Errorf("%w: id %d", models.ErrGroupNotFound, groupID)
	}

	progress := new(big.Int).Mul(group.CurrentAmount, big.NewInt(100))
	progress.Quo(progress, group.TargetAmount)
	return &models.GroupInfo{
		ID:              group.ID,
		Name:            group.Name,
		EscrowAddress:   group.EscrowAddress,
		MemberCount:     len(group.Members),
		TargetAmount:    group.TargetAmount.String(),
		CurrentAmount:   group.CurrentAmount.String(),
		DurationSeconds: group.DurationSeconds,
		Active:          group.Active,
		ProgressPercent: progress.Int64(),
	}, nil
}

// MemberContribution returns a member's cumulative contribution to a group.
func (l *Ledger) MemberContribution(groupID uint64, member string) (*big.Int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	group, ok := l.groups[groupID]
	if !ok {
		return nil, fmt.Errorf("%w: id %d", models.ErrGroupNotFound, groupID)
	}
	contribution, ok := group.Contributions[member]
	if !ok {
		return nil, fmt.Errorf("%w: %s has not joined group %d", models.ErrNotAMember, member, groupID)
	}
	return new(big.Int).Set(contribution), nil
}
