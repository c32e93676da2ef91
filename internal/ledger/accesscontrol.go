package ledger

import (
	"fmt"

	"github.com/dinari-africa/dinari-ledger/internal/models"
)

// Access control: two independent single-holder roles (owner, minter) and a
// global pause switch. Role changes take effect immediately. Pause gates the
// money-moving entry points; administrative calls stay available so the
// owner can remediate while paused.

// TransferOwnership replaces the owner role. Owner only.
func (l *Ledger) TransferOwnership(caller, newOwner string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.clock().Unix()

	if err := l.requireOwner(caller); err != nil {
		return err
	}
	if newOwner == "" {
		return models.ErrZeroAddress
	}

	prev := l.owner
	l.owner = newOwner
	l.emit(&models.Event{
		Kind:      models.EventOwnershipTransferred,
		From:      prev,
		To:        newOwner,
		Timestamp: now,
	})
	l.logger.Info("Ownership transferred ", "from ", prev, " to ", newOwner)
	return nil
}

// SetMinter replaces the minter role. Owner only.
func (l *Ledger) SetMinter(caller, newMinter string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.clock().Unix()

	if err := l.requireOwner(caller); err != nil {
		return err
	}
	if newMinter == "" {
		return models.ErrZeroAddress
	}

	prev := l.minter
	l.minter = newMinter
	l.emit(&models.Event{
		Kind:      models.EventMinterChanged,
		From:      prev,
		To:        newMinter,
		Timestamp: now,
	})
	return nil
}

// Pause engages the kill-switch. Owner only. Pausing an already paused
// contract is a no-op success.
func (l *Ledger) Pause(caller string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.clock().Unix()

	if err := l.requireOwner(caller); err != nil {
		return err
	}
	if l.paused {
		return nil
	}

	l.paused = true
	l.emit(&models.Event{
		Kind:      models.EventPaused,
		From:      caller,
		Timestamp: now,
	})
	l.logger.Warn("Ledger paused ", "by ", caller)
	return nil
}

// Unpause releases the kill-switch. Owner only, no-op success when not paused.
func (l *Ledger) Unpause(caller string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.clock().Unix()

	if err := l.requireOwner(caller); err != nil {
		return err
	}
	if !l.paused {
		return nil
	}

	l.paused = false
	l.emit(&models.Event{
		Kind:      models.EventUnpaused,
		From:      caller,
		Timestamp: now,
	})
	l.logger.Info("Ledger unpaused ", "by ", caller)
	return nil
}

// Owner returns the current owner address.
func (l *Ledger) Owner() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.owner
}

// Minter returns the current minter address.
func (l *Ledger) Minter() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.minter
}

// Paused reports whether the kill-switch is engaged.
func (l *Ledger) Paused() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.paused
}

// requireOwner checks the owner role. Callers must hold the mutex.
func (l *Ledger) requireOwner(caller string) error {
	if caller != l.owner {
		return fmt.Errorf("%w: %s is not the owner", models.ErrUnauthorized, caller)
	}
	return nil
}
