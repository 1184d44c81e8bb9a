package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AccountType enumerates the supported account products.
type AccountType string

const (
	AccountTypeSavings AccountType = "SAVINGS"
	AccountTypeCurrent AccountType = "CURRENT"
)

// AccountStatus represents the lifecycle state of an account.
type AccountStatus string

const (
	AccountStatusActive   AccountStatus = "ACTIVE"
	AccountStatusInactive AccountStatus = "INACTIVE"
	AccountStatusClosed   AccountStatus = "CLOSED"
	AccountStatusBlocked  AccountStatus = "BLOCKED"
)

// Account is a customer account. AccountNumber is the caller-visible
// identifier and is immutable once assigned; ID is the storage key.
// Balance is only ever changed by the ledger service.
type Account struct {
	ID            uuid.UUID       `json:"id"`
	AccountNumber string          `json:"account_number"`
	AccountType   AccountType     `json:"account_type"`
	Balance       decimal.Decimal `json:"balance"`
	Status        AccountStatus   `json:"status"`
	UserID        uuid.UUID       `json:"user_id"`
	CreatedAt     time.Time       `json:"created_at"`
}

// IsActive reports whether the account may be mutated.
func (a *Account) IsActive() bool {
	return a.Status == AccountStatusActive
}

// IsTerminal reports whether the account has reached a final lifecycle state.
func (a *Account) IsTerminal() bool {
	return a.Status == AccountStatusClosed || a.Status == AccountStatusBlocked
}
