package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionType represents the kind of balance mutation.
type TransactionType string

const (
	TransactionTypeDeposit    TransactionType = "DEPOSIT"
	TransactionTypeWithdrawal TransactionType = "WITHDRAWAL"
	TransactionTypeTransfer   TransactionType = "TRANSFER"
)

// TransactionStatus is the outcome of an attempted mutation.
type TransactionStatus string

const (
	TransactionStatusSuccess TransactionStatus = "SUCCESS"
	TransactionStatusFailed  TransactionStatus = "FAILED"
)

// Transaction is a write-once ledger entry describing one attempted balance
// mutation, successful or failed. Entries are never updated or deleted.
// For a SUCCESS entry BalanceAfter = BalanceBefore ± Amount (sign per type);
// for a FAILED entry BalanceAfter == BalanceBefore.
type Transaction struct {
	ID              uuid.UUID         `json:"id"`
	TransactionID   string            `json:"transaction_id"`
	TransactionType TransactionType   `json:"transaction_type"`
	Amount          decimal.Decimal   `json:"amount"`
	BalanceBefore   decimal.Decimal   `json:"balance_before"`
	BalanceAfter    decimal.Decimal   `json:"balance_after"`
	Status          TransactionStatus `json:"status"`
	AccountID       uuid.UUID         `json:"account_id"`
	CreatedAt       time.Time         `json:"created_at"`
}

// newEntry builds a ledger entry with a fresh surrogate key and transaction
// identifier. The transaction identifier is independent of the storage key.
func newEntry(accountID uuid.UUID, txType TransactionType, amount, before, after decimal.Decimal, status TransactionStatus, at time.Time) *Transaction {
	return &Transaction{
		ID:              uuid.New(),
		TransactionID:   uuid.NewString(),
		TransactionType: txType,
		Amount:          amount,
		BalanceBefore:   before,
		BalanceAfter:    after,
		Status:          status,
		AccountID:       accountID,
		CreatedAt:       at,
	}
}

// NewDepositEntry builds a SUCCESS deposit entry. Deposits have no
// failure-path entry: there is no balance precondition to violate.
func NewDepositEntry(accountID uuid.UUID, amount, before, after decimal.Decimal, at time.Time) *Transaction {
	return newEntry(accountID, TransactionTypeDeposit, amount, before, after, TransactionStatusSuccess, at)
}

// NewWithdrawalEntry builds a withdrawal entry with the given outcome.
func NewWithdrawalEntry(accountID uuid.UUID, amount, before, after decimal.Decimal, status TransactionStatus, at time.Time) *Transaction {
	return newEntry(accountID, TransactionTypeWithdrawal, amount, before, after, status, at)
}

// NewTransferDebitEntry builds the sender-side entry of a transfer.
func NewTransferDebitEntry(accountID uuid.UUID, amount, before, after decimal.Decimal, status TransactionStatus, at time.Time) *Transaction {
	return newEntry(accountID, TransactionTypeTransfer, amount, before, after, status, at)
}

// NewTransferCreditEntry builds the receiver-side entry of a transfer.
// Credits only exist for successful transfers.
func NewTransferCreditEntry(accountID uuid.UUID, amount, before, after decimal.Decimal, at time.Time) *Transaction {
	return newEntry(accountID, TransactionTypeTransfer, amount, before, after, TransactionStatusSuccess, at)
}

// IsConsistent verifies the before/after arithmetic for the entry. Failed
// entries must leave the balance untouched; successful deposits and transfer
// credits add, successful withdrawals and transfer debits subtract. Transfer
// direction is inferred from the sign of the delta.
func (t *Transaction) IsConsistent() bool {
	if t.Status == TransactionStatusFailed {
		return t.BalanceAfter.Equal(t.BalanceBefore)
	}
	delta := t.BalanceAfter.Sub(t.BalanceBefore)
	switch t.TransactionType {
	case TransactionTypeDeposit:
		return delta.Equal(t.Amount)
	case TransactionTypeWithdrawal:
		return delta.Equal(t.Amount.Neg())
	case TransactionTypeTransfer:
		return delta.Equal(t.Amount) || delta.Equal(t.Amount.Neg())
	}
	return false
}
