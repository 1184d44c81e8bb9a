package service

import (
	"context"
	"errors"
	"testing"

	"core-banking-ledger/internal/core/domain"
	"core-banking-ledger/internal/core/ports/mocks"
	"core-banking-ledger/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type ledgerTestDeps struct {
	svc         *LedgerServiceImpl
	accountRepo *mocks.MockAccountRepository
	txRepo      *mocks.MockTransactionRepository
	transactor  *mocks.MockDBTransactor
	ctrl        *gomock.Controller
}

func setupLedgerService(t *testing.T) *ledgerTestDeps {
	ctrl := gomock.NewController(t)
	d := &ledgerTestDeps{
		accountRepo: mocks.NewMockAccountRepository(ctrl),
		txRepo:      mocks.NewMockTransactionRepository(ctrl),
		transactor:  mocks.NewMockDBTransactor(ctrl),
		ctrl:        ctrl,
	}
	d.svc = NewLedgerService(d.accountRepo, d.txRepo, d.transactor, zerolog.Nop())
	return d
}

// mockTx implements pgx.Tx for testing and records commits and rollbacks.
type mockTx struct {
	pgx.Tx
	commits   int
	rollbacks int
}

func (m *mockTx) Rollback(_ context.Context) error {
	m.rollbacks++
	return nil
}
func (m *mockTx) Commit(_ context.Context) error {
	m.commits++
	return nil
}

func assertAppError(t *testing.T, err error, code string) {
	t.Helper()
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, code, appErr.Code)
}

func activeAccount(number, balance string) *domain.Account {
	return &domain.Account{
		ID:            uuid.New(),
		AccountNumber: number,
		AccountType:   domain.AccountTypeSavings,
		Balance:       decimal.RequireFromString(balance),
		Status:        domain.AccountStatusActive,
		UserID:        uuid.New(),
	}
}

// ==================== Deposit ====================

func TestLedgerService_Deposit_Success(t *testing.T) {
	d := setupLedgerService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	account := activeAccount("100200300400", "10000.00")
	tx := &mockTx{}

	var captured *domain.Transaction

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.accountRepo.EXPECT().GetByIDForUpdate(ctx, tx, account.ID).Return(account, nil)
	d.accountRepo.EXPECT().
		UpdateBalance(ctx, tx, account.ID, decimal.RequireFromString("15000.00")).
		Return(nil)
	d.txRepo.EXPECT().Create(ctx, tx, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ pgx.Tx, e *domain.Transaction) error {
			captured = e
			return nil
		})

	entry, err := d.svc.Deposit(ctx, account.ID, decimal.RequireFromString("5000.00"))
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, 1, tx.commits)

	assert.Equal(t, domain.TransactionTypeDeposit, entry.TransactionType)
	assert.Equal(t, domain.TransactionStatusSuccess, entry.Status)
	assert.True(t, entry.BalanceBefore.Equal(decimal.RequireFromString("10000.00")))
	assert.True(t, entry.BalanceAfter.Equal(decimal.RequireFromString("15000.00")))
	assert.True(t, entry.IsConsistent())
	assert.Same(t, captured, entry)
}

func TestLedgerService_Deposit_InvalidAmount(t *testing.T) {
	d := setupLedgerService(t)
	defer d.ctrl.Finish()

	for _, amount := range []string{"0", "-1", "-5000.00"} {
		entry, err := d.svc.Deposit(context.Background(), uuid.New(), decimal.RequireFromString(amount))
		assert.Nil(t, entry)
		assertAppError(t, err, apperror.CodeInvalidAmount)
	}
}

func TestLedgerService_Deposit_AccountNotFound(t *testing.T) {
	d := setupLedgerService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	accountID := uuid.New()
	tx := &mockTx{}

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.accountRepo.EXPECT().GetByIDForUpdate(ctx, tx, accountID).Return(nil, nil)

	entry, err := d.svc.Deposit(ctx, accountID, decimal.NewFromInt(100))
	assert.Nil(t, entry)
	assertAppError(t, err, apperror.CodeAccountNotFound)
	assert.Equal(t, 0, tx.commits)
}

func TestLedgerService_Deposit_AccountNotActive(t *testing.T) {
	d := setupLedgerService(t)
	defer d.ctrl.Finish()

	for _, status := range []domain.AccountStatus{
		domain.AccountStatusInactive,
		domain.AccountStatusClosed,
		domain.AccountStatusBlocked,
	} {
		ctx := context.Background()
		account := activeAccount("100200300400", "500.00")
		account.Status = status
		tx := &mockTx{}

		d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
		d.accountRepo.EXPECT().GetByIDForUpdate(ctx, tx, account.ID).Return(account, nil)

		entry, err := d.svc.Deposit(ctx, account.ID, decimal.NewFromInt(100))
		assert.Nil(t, entry)
		assertAppError(t, err, apperror.CodeAccountNotActive)
	}
}

func TestLedgerService_Deposit_BeginFails(t *testing.T) {
	d := setupLedgerService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	d.transactor.EXPECT().Begin(ctx).Return(nil, errors.New("pool exhausted"))

	entry, err := d.svc.Deposit(ctx, uuid.New(), decimal.NewFromInt(100))
	assert.Nil(t, entry)
	assertAppError(t, err, apperror.CodeInternal)
}

// ==================== Withdraw ====================

func TestLedgerService_Withdraw_Success(t *testing.T) {
	d := setupLedgerService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	account := activeAccount("100200300400", "10000.00")
	tx := &mockTx{}

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.accountRepo.EXPECT().GetByIDForUpdate(ctx, tx, account.ID).Return(account, nil)
	d.accountRepo.EXPECT().
		UpdateBalance(ctx, tx, account.ID, decimal.RequireFromString("4000.00")).
		Return(nil)
	d.txRepo.EXPECT().Create(ctx, tx, gomock.Any()).Return(nil)

	entry, err := d.svc.Withdraw(ctx, account.ID, decimal.RequireFromString("6000.00"))
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, 1, tx.commits)

	assert.Equal(t, domain.TransactionTypeWithdrawal, entry.TransactionType)
	assert.Equal(t, domain.TransactionStatusSuccess, entry.Status)
	assert.True(t, entry.BalanceAfter.Equal(decimal.RequireFromString("4000.00")))
	assert.True(t, entry.IsConsistent())
}

func TestLedgerService_Withdraw_InsufficientBalance_RecordsFailedEntry(t *testing.T) {
	d := setupLedgerService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	account := activeAccount("100200300400", "5000.00")
	tx := &mockTx{}

	var captured *domain.Transaction

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.accountRepo.EXPECT().GetByIDForUpdate(ctx, tx, account.ID).Return(account, nil)
	// Balance must never be written on the failure path.
	d.txRepo.EXPECT().Create(ctx, tx, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ pgx.Tx, e *domain.Transaction) error {
			captured = e
			return nil
		})

	entry, err := d.svc.Withdraw(ctx, account.ID, decimal.RequireFromString("10000.00"))
	assert.Nil(t, entry)
	assertAppError(t, err, apperror.CodeInsufficientBalance)

	// The FAILED entry is committed before the rejection surfaces.
	assert.Equal(t, 1, tx.commits)
	require.NotNil(t, captured)
	assert.Equal(t, domain.TransactionTypeWithdrawal, captured.TransactionType)
	assert.Equal(t, domain.TransactionStatusFailed, captured.Status)
	assert.True(t, captured.BalanceBefore.Equal(decimal.RequireFromString("5000.00")))
	assert.True(t, captured.BalanceAfter.Equal(decimal.RequireFromString("5000.00")))
	assert.True(t, captured.IsConsistent())
}

func TestLedgerService_Withdraw_ExactBalance_Succeeds(t *testing.T) {
	d := setupLedgerService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	account := activeAccount("100200300400", "5000.00")
	tx := &mockTx{}

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.accountRepo.EXPECT().GetByIDForUpdate(ctx, tx, account.ID).Return(account, nil)
	d.accountRepo.EXPECT().UpdateBalance(ctx, tx, account.ID, decimal.RequireFromString("0.00")).Return(nil)
	d.txRepo.EXPECT().Create(ctx, tx, gomock.Any()).Return(nil)

	entry, err := d.svc.Withdraw(ctx, account.ID, decimal.RequireFromString("5000.00"))
	require.NoError(t, err)
	assert.True(t, entry.BalanceAfter.IsZero())
}

func TestLedgerService_Withdraw_AccountNotActive(t *testing.T) {
	d := setupLedgerService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	account := activeAccount("100200300400", "5000.00")
	account.Status = domain.AccountStatusBlocked
	tx := &mockTx{}

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.accountRepo.EXPECT().GetByIDForUpdate(ctx, tx, account.ID).Return(account, nil)

	entry, err := d.svc.Withdraw(ctx, account.ID, decimal.NewFromInt(1))
	assert.Nil(t, entry)
	assertAppError(t, err, apperror.CodeAccountNotActive)
	assert.Equal(t, 0, tx.commits)
}

// ==================== Transfer ====================

func TestLedgerService_Transfer_Success(t *testing.T) {
	d := setupLedgerService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	// Sender's number sorts after the receiver's, so the canonical order
	// must lock the receiver first.
	sender := activeAccount("900000000002", "10000.00")
	receiver := activeAccount("100000000001", "5000.00")
	tx := &mockTx{}

	var entries []*domain.Transaction

	d.accountRepo.EXPECT().GetByID(ctx, sender.ID).Return(sender, nil)
	d.accountRepo.EXPECT().GetByNumber(ctx, receiver.AccountNumber).Return(receiver, nil)
	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	gomock.InOrder(
		d.accountRepo.EXPECT().GetByNumberForUpdate(ctx, tx, receiver.AccountNumber).Return(receiver, nil),
		d.accountRepo.EXPECT().GetByNumberForUpdate(ctx, tx, sender.AccountNumber).Return(sender, nil),
	)
	d.accountRepo.EXPECT().
		UpdateBalance(ctx, tx, sender.ID, decimal.RequireFromString("8000.00")).
		Return(nil)
	d.accountRepo.EXPECT().
		UpdateBalance(ctx, tx, receiver.ID, decimal.RequireFromString("7000.00")).
		Return(nil)
	d.txRepo.EXPECT().Create(ctx, tx, gomock.Any()).Times(2).
		DoAndReturn(func(_ context.Context, _ pgx.Tx, e *domain.Transaction) error {
			entries = append(entries, e)
			return nil
		})

	debit, credit, err := d.svc.Transfer(ctx, sender.ID, receiver.AccountNumber, decimal.RequireFromString("2000.00"))
	require.NoError(t, err)
	require.NotNil(t, debit)
	require.NotNil(t, credit)
	assert.Equal(t, 1, tx.commits)
	require.Len(t, entries, 2)

	assert.Equal(t, domain.TransactionTypeTransfer, debit.TransactionType)
	assert.Equal(t, sender.ID, debit.AccountID)
	assert.True(t, debit.BalanceBefore.Equal(decimal.RequireFromString("10000.00")))
	assert.True(t, debit.BalanceAfter.Equal(decimal.RequireFromString("8000.00")))

	assert.Equal(t, domain.TransactionTypeTransfer, credit.TransactionType)
	assert.Equal(t, receiver.ID, credit.AccountID)
	assert.True(t, credit.BalanceBefore.Equal(decimal.RequireFromString("5000.00")))
	assert.True(t, credit.BalanceAfter.Equal(decimal.RequireFromString("7000.00")))

	assert.NotEqual(t, debit.TransactionID, credit.TransactionID)
	assert.True(t, debit.IsConsistent())
	assert.True(t, credit.IsConsistent())
}

func TestLedgerService_Transfer_LockOrderFollowsAccountNumbers(t *testing.T) {
	d := setupLedgerService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	// Here the sender already sorts first; the order must be unchanged.
	sender := activeAccount("100000000001", "10000.00")
	receiver := activeAccount("900000000002", "5000.00")
	tx := &mockTx{}

	d.accountRepo.EXPECT().GetByID(ctx, sender.ID).Return(sender, nil)
	d.accountRepo.EXPECT().GetByNumber(ctx, receiver.AccountNumber).Return(receiver, nil)
	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	gomock.InOrder(
		d.accountRepo.EXPECT().GetByNumberForUpdate(ctx, tx, sender.AccountNumber).Return(sender, nil),
		d.accountRepo.EXPECT().GetByNumberForUpdate(ctx, tx, receiver.AccountNumber).Return(receiver, nil),
	)
	d.accountRepo.EXPECT().UpdateBalance(ctx, tx, sender.ID, gomock.Any()).Return(nil)
	d.accountRepo.EXPECT().UpdateBalance(ctx, tx, receiver.ID, gomock.Any()).Return(nil)
	d.txRepo.EXPECT().Create(ctx, tx, gomock.Any()).Times(2).Return(nil)

	_, _, err := d.svc.Transfer(ctx, sender.ID, receiver.AccountNumber, decimal.NewFromInt(100))
	require.NoError(t, err)
}

func TestLedgerService_Transfer_InsufficientBalance_FailedDebitOnly(t *testing.T) {
	d := setupLedgerService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	sender := activeAccount("100000000001", "10000.00")
	receiver := activeAccount("900000000002", "5000.00")
	tx := &mockTx{}

	var captured *domain.Transaction

	d.accountRepo.EXPECT().GetByID(ctx, sender.ID).Return(sender, nil)
	d.accountRepo.EXPECT().GetByNumber(ctx, receiver.AccountNumber).Return(receiver, nil)
	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.accountRepo.EXPECT().GetByNumberForUpdate(ctx, tx, sender.AccountNumber).Return(sender, nil)
	d.accountRepo.EXPECT().GetByNumberForUpdate(ctx, tx, receiver.AccountNumber).Return(receiver, nil)
	// No UpdateBalance on either side; exactly one FAILED entry on the sender.
	d.txRepo.EXPECT().Create(ctx, tx, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ pgx.Tx, e *domain.Transaction) error {
			captured = e
			return nil
		})

	debit, credit, err := d.svc.Transfer(ctx, sender.ID, receiver.AccountNumber, decimal.RequireFromString("15000.00"))
	assert.Nil(t, debit)
	assert.Nil(t, credit)
	assertAppError(t, err, apperror.CodeInsufficientBalance)

	assert.Equal(t, 1, tx.commits)
	require.NotNil(t, captured)
	assert.Equal(t, sender.ID, captured.AccountID)
	assert.Equal(t, domain.TransactionTypeTransfer, captured.TransactionType)
	assert.Equal(t, domain.TransactionStatusFailed, captured.Status)
	assert.True(t, captured.BalanceAfter.Equal(captured.BalanceBefore))
}

func TestLedgerService_Transfer_SelfTransfer(t *testing.T) {
	d := setupLedgerService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	sender := activeAccount("100000000001", "10000.00")

	d.accountRepo.EXPECT().GetByID(ctx, sender.ID).Return(sender, nil)
	d.accountRepo.EXPECT().GetByNumber(ctx, sender.AccountNumber).Return(sender, nil)
	// No unit of work is ever opened, so no ledger entry can exist.

	debit, credit, err := d.svc.Transfer(ctx, sender.ID, sender.AccountNumber, decimal.NewFromInt(100))
	assert.Nil(t, debit)
	assert.Nil(t, credit)
	assertAppError(t, err, apperror.CodeSelfTransfer)
}

func TestLedgerService_Transfer_ReceiverNotFound(t *testing.T) {
	d := setupLedgerService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	sender := activeAccount("100000000001", "10000.00")

	d.accountRepo.EXPECT().GetByID(ctx, sender.ID).Return(sender, nil)
	d.accountRepo.EXPECT().GetByNumber(ctx, "999999999999").Return(nil, nil)

	_, _, err := d.svc.Transfer(ctx, sender.ID, "999999999999", decimal.NewFromInt(100))
	assertAppError(t, err, apperror.CodeAccountNotFound)
}

func TestLedgerService_Transfer_ReceiverNotActive(t *testing.T) {
	d := setupLedgerService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	sender := activeAccount("100000000001", "10000.00")
	receiver := activeAccount("900000000002", "5000.00")
	receiver.Status = domain.AccountStatusClosed

	d.accountRepo.EXPECT().GetByID(ctx, sender.ID).Return(sender, nil)
	d.accountRepo.EXPECT().GetByNumber(ctx, receiver.AccountNumber).Return(receiver, nil)

	_, _, err := d.svc.Transfer(ctx, sender.ID, receiver.AccountNumber, decimal.NewFromInt(100))
	assertAppError(t, err, apperror.CodeAccountNotActive)
}

func TestLedgerService_Transfer_InvalidAmount(t *testing.T) {
	d := setupLedgerService(t)
	defer d.ctrl.Finish()

	_, _, err := d.svc.Transfer(context.Background(), uuid.New(), "100000000001", decimal.Zero)
	assertAppError(t, err, apperror.CodeInvalidAmount)
}

func TestLedgerService_Transfer_StatusRecheckedUnderLock(t *testing.T) {
	d := setupLedgerService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	sender := activeAccount("100000000001", "10000.00")
	receiver := activeAccount("900000000002", "5000.00")
	tx := &mockTx{}

	// The receiver is blocked between the preliminary read and the lock.
	lockedReceiver := *receiver
	lockedReceiver.Status = domain.AccountStatusBlocked

	d.accountRepo.EXPECT().GetByID(ctx, sender.ID).Return(sender, nil)
	d.accountRepo.EXPECT().GetByNumber(ctx, receiver.AccountNumber).Return(receiver, nil)
	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.accountRepo.EXPECT().GetByNumberForUpdate(ctx, tx, sender.AccountNumber).Return(sender, nil)
	d.accountRepo.EXPECT().GetByNumberForUpdate(ctx, tx, receiver.AccountNumber).Return(&lockedReceiver, nil)

	_, _, err := d.svc.Transfer(ctx, sender.ID, receiver.AccountNumber, decimal.NewFromInt(100))
	assertAppError(t, err, apperror.CodeAccountNotActive)
	assert.Equal(t, 0, tx.commits)
}
