package models

import (
	"github.com/shopspring/decimal"

	"github.com/sheikh-saqib/payments-ledger-engine/internal/errors"
)

// Account holds the balance state of one client.
//
// Total always equals Available + Held. Fields are exported for reading;
// balances must only change through the methods below.
type Account struct {
	ID        uint16
	Available decimal.Decimal // funds usable for withdrawal or dispute
	Held      decimal.Decimal // funds frozen by open disputes
	Total     decimal.Decimal
	Locked    bool // set by a chargeback, never cleared
}

// NewAccount returns an unlocked account with zero balances.
func NewAccount(id uint16) *Account {
	return &Account{
		ID:        id,
		Available: decimal.Zero,
		Held:      decimal.Zero,
		Total:     decimal.Zero,
	}
}

// CheckUnlocked fails with AccountLocked once the account has been charged back.
func (a *Account) CheckUnlocked() error {
	if a.Locked {
		return errors.Locked(a.ID)
	}
	return nil
}

// CheckWithdraw validates a withdrawal of amount without applying it.
func (a *Account) CheckWithdraw(amount decimal.Decimal) error {
	if err := a.CheckUnlocked(); err != nil {
		return err
	}
	if a.Available.LessThan(amount) || a.Total.LessThan(amount) {
		return errors.ErrInsufficientFunds.ForTx(0, a.ID)
	}
	return nil
}

// Deposit increases the available and total funds.
func (a *Account) Deposit(amount decimal.Decimal) error {
	if err := a.CheckUnlocked(); err != nil {
		return err
	}
	a.Available = a.Available.Add(amount)
	a.Total = a.Total.Add(amount)
	return nil
}

// Withdraw decreases the available and total funds.
func (a *Account) Withdraw(amount decimal.Decimal) error {
	if err := a.CheckWithdraw(amount); err != nil {
		return err
	}
	a.Available = a.Available.Sub(amount)
	a.Total = a.Total.Sub(amount)
	return nil
}

// Hold moves amount from available to held for a dispute.
func (a *Account) Hold(amount decimal.Decimal) error {
	if err := a.CheckUnlocked(); err != nil {
		return err
	}
	if a.Available.LessThan(amount) {
		return errors.ErrInsufficientFunds.ForTx(0, a.ID)
	}
	a.Available = a.Available.Sub(amount)
	a.Held = a.Held.Add(amount)
	return nil
}

// Release moves amount from held back to available when a dispute is resolved.
func (a *Account) Release(amount decimal.Decimal) error {
	if err := a.CheckUnlocked(); err != nil {
		return err
	}
	if a.Held.LessThan(amount) {
		return errors.ErrInsufficientHeldFunds.ForTx(0, a.ID)
	}
	a.Held = a.Held.Sub(amount)
	a.Available = a.Available.Add(amount)
	return nil
}

// Chargeback removes amount from held and total and locks the account.
func (a *Account) Chargeback(amount decimal.Decimal) error {
	if err := a.CheckUnlocked(); err != nil {
		return err
	}
	if a.Held.LessThan(amount) {
		return errors.ErrInsufficientHeldFunds.ForTx(0, a.ID)
	}
	a.Held = a.Held.Sub(amount)
	a.Total = a.Total.Sub(amount)
	a.Locked = true
	return nil
}

// Balanced reports whether Total == Available + Held.
func (a *Account) Balanced() bool {
	return a.Total.Equal(a.Available.Add(a.Held))
}
