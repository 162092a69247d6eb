// Package domain provides definitions of all ledger entities and errors.
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

var (
	// ErrAccountNotFound indicates that the account is not found.
	ErrAccountNotFound = newError(ErrNotFound, "account not found")
	// ErrAccountAlreadyExists indicates that the owner already has an account in the currency.
	ErrAccountAlreadyExists = newError(ErrAlreadyExists, "account currency already exists")
	// ErrAccountClosed indicates a write to a closed account.
	ErrAccountClosed = newError(ErrInvalidInput, "account is closed")
	// ErrAccountFrozen indicates a write to an account halted by a failed reconciliation.
	ErrAccountFrozen = newError(ErrInvariantViolation, "account is frozen")
	// ErrAccountNotEmpty indicates an attempt to close an account with a non-zero balance.
	ErrAccountNotEmpty = newError(ErrInvalidInput, "account balance is not zero")
	// ErrUnsupportedCurrency indicates a currency missing from the catalogue.
	ErrUnsupportedCurrency = newError(ErrInvalidInput, "currency is not supported")
	// ErrInvalidOwner indicates an empty owner.
	ErrInvalidOwner = newError(ErrInvalidInput, "invalid owner")
)

// AccountStatus is the lifecycle state of an account.
type AccountStatus string

// Account statuses.
const (
	AccountActive AccountStatus = "active"
	AccountClosed AccountStatus = "closed"
	AccountFrozen AccountStatus = "frozen"
)

// Account holds user balance data for specific currency.
type Account struct {
	ID            string          `json:"id"`
	Owner         string          `json:"owner"`
	Currency      string          `json:"currency"`
	Balance       decimal.Decimal `json:"balance"`
	Version       int64           `json:"version"`
	AllowNegative bool            `json:"allow_negative"`
	Status        AccountStatus   `json:"status"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// CheckWritable returns an error if the account does not accept new entries.
func (a Account) CheckWritable() error {
	switch a.Status {
	case AccountClosed:
		return ErrAccountClosed
	case AccountFrozen:
		return ErrAccountFrozen
	}

	return nil
}

// CanHold reports whether the account may hold the given balance.
func (a Account) CanHold(balance decimal.Decimal) bool {
	return a.AllowNegative || !balance.IsNegative()
}

// CreateAccountParams is the input data to create an account.
type CreateAccountParams struct {
	Owner         string
	Currency      string
	AllowNegative bool
}
