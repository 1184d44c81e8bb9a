package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccount_IsActive(t *testing.T) {
	tests := []struct {
		name   string
		status AccountStatus
		want   bool
	}{
		{"active", AccountStatusActive, true},
		{"inactive", AccountStatusInactive, false},
		{"closed", AccountStatusClosed, false},
		{"blocked", AccountStatusBlocked, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := &Account{Status: tt.status}
			assert.Equal(t, tt.want, a.IsActive())
		})
	}
}

func TestAccount_IsTerminal(t *testing.T) {
	tests := []struct {
		name   string
		status AccountStatus
		want   bool
	}{
		{"active", AccountStatusActive, false},
		{"inactive", AccountStatusInactive, false},
		{"closed", AccountStatusClosed, true},
		{"blocked", AccountStatusBlocked, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := &Account{Status: tt.status}
			assert.Equal(t, tt.want, a.IsTerminal())
		})
	}
}

func TestNewDepositEntry(t *testing.T) {
	accountID := uuid.New()
	now := time.Now().UTC()

	e := NewDepositEntry(accountID,
		decimal.RequireFromString("5000.00"),
		decimal.RequireFromString("10000.00"),
		decimal.RequireFromString("15000.00"),
		now,
	)

	require.NotNil(t, e)
	assert.Equal(t, TransactionTypeDeposit, e.TransactionType)
	assert.Equal(t, TransactionStatusSuccess, e.Status)
	assert.Equal(t, accountID, e.AccountID)
	assert.NotEqual(t, uuid.Nil, e.ID)
	assert.NotEmpty(t, e.TransactionID)
	assert.NotEqual(t, e.ID.String(), e.TransactionID)
	assert.True(t, e.IsConsistent())
}

func TestNewWithdrawalEntry_FailedKeepsBalance(t *testing.T) {
	before := decimal.RequireFromString("5000.00")

	e := NewWithdrawalEntry(uuid.New(),
		decimal.RequireFromString("10000.00"),
		before, before,
		TransactionStatusFailed,
		time.Now().UTC(),
	)

	assert.Equal(t, TransactionStatusFailed, e.Status)
	assert.True(t, e.BalanceAfter.Equal(e.BalanceBefore))
	assert.True(t, e.IsConsistent())
}

func TestTransaction_IsConsistent(t *testing.T) {
	d := decimal.RequireFromString

	tests := []struct {
		name   string
		entry  *Transaction
		want   bool
	}{
		{
			"success deposit adds",
			&Transaction{TransactionType: TransactionTypeDeposit, Status: TransactionStatusSuccess,
				Amount: d("100"), BalanceBefore: d("50"), BalanceAfter: d("150")},
			true,
		},
		{
			"success deposit wrong delta",
			&Transaction{TransactionType: TransactionTypeDeposit, Status: TransactionStatusSuccess,
				Amount: d("100"), BalanceBefore: d("50"), BalanceAfter: d("100")},
			false,
		},
		{
			"success withdrawal subtracts",
			&Transaction{TransactionType: TransactionTypeWithdrawal, Status: TransactionStatusSuccess,
				Amount: d("30"), BalanceBefore: d("50"), BalanceAfter: d("20")},
			true,
		},
		{
			"transfer debit",
			&Transaction{TransactionType: TransactionTypeTransfer, Status: TransactionStatusSuccess,
				Amount: d("2000"), BalanceBefore: d("10000"), BalanceAfter: d("8000")},
			true,
		},
		{
			"transfer credit",
			&Transaction{TransactionType: TransactionTypeTransfer, Status: TransactionStatusSuccess,
				Amount: d("2000"), BalanceBefore: d("5000"), BalanceAfter: d("7000")},
			true,
		},
		{
			"failed entry must not move balance",
			&Transaction{TransactionType: TransactionTypeWithdrawal, Status: TransactionStatusFailed,
				Amount: d("30"), BalanceBefore: d("50"), BalanceAfter: d("20")},
			false,
		},
		{
			"failed entry balance untouched",
			&Transaction{TransactionType: TransactionTypeTransfer, Status: TransactionStatusFailed,
				Amount: d("9999"), BalanceBefore: d("50"), BalanceAfter: d("50")},
			true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.entry.IsConsistent())
		})
	}
}

func TestPayment_IsPending(t *testing.T) {
	assert.True(t, (&Payment{Status: PaymentStatusPending}).IsPending())
	assert.False(t, (&Payment{Status: PaymentStatusVerified}).IsPending())
	assert.False(t, (&Payment{Status: PaymentStatusFailed}).IsPending())
}

func TestAccountStatus_Constants(t *testing.T) {
	assert.Equal(t, AccountStatus("ACTIVE"), AccountStatusActive)
	assert.Equal(t, AccountStatus("INACTIVE"), AccountStatusInactive)
	assert.Equal(t, AccountStatus("CLOSED"), AccountStatusClosed)
	assert.Equal(t, AccountStatus("BLOCKED"), AccountStatusBlocked)
}

func TestTransactionType_Constants(t *testing.T) {
	assert.Equal(t, TransactionType("DEPOSIT"), TransactionTypeDeposit)
	assert.Equal(t, TransactionType("WITHDRAWAL"), TransactionTypeWithdrawal)
	assert.Equal(t, TransactionType("TRANSFER"), TransactionTypeTransfer)
}
