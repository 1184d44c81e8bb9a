package service

import (
	"context"
	"fmt"
	"time"

	"core-banking-ledger/internal/core/domain"
	"core-banking-ledger/internal/core/ports"
	"core-banking-ledger/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// LedgerServiceImpl implements ports.LedgerService with pessimistic locking.
// Every operation is one unit of work: the balance read, the precondition
// check, the balance write and the ledger append commit together or not at
// all. Rejected attempts are recorded too — a FAILED entry is committed
// before InsufficientBalance reaches the caller.
type LedgerServiceImpl struct {
	accountRepo ports.AccountRepository
	txRepo      ports.TransactionRepository
	transactor  ports.DBTransactor
	log         zerolog.Logger
}

// NewLedgerService creates a new LedgerServiceImpl.
func NewLedgerService(
	accountRepo ports.AccountRepository,
	txRepo ports.TransactionRepository,
	transactor ports.DBTransactor,
	log zerolog.Logger,
) *LedgerServiceImpl {
	return &LedgerServiceImpl{
		accountRepo: accountRepo,
		txRepo:      txRepo,
		transactor:  transactor,
		log:         log,
	}
}

// Deposit credits amount to the account. Deposits cannot be rejected for
// balance reasons, so there is no failure-path ledger entry.
func (s *LedgerServiceImpl) Deposit(ctx context.Context, accountID uuid.UUID, amount decimal.Decimal) (*domain.Transaction, error) {
	if !amount.IsPositive() {
		return nil, apperror.ErrInvalidAmount()
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	account, err := s.accountRepo.GetByIDForUpdate(ctx, dbTx, accountID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("lock account: %w", err))
	}
	if account == nil {
		return nil, apperror.ErrAccountNotFound()
	}
	if !account.IsActive() {
		return nil, apperror.ErrAccountNotActive()
	}

	before := account.Balance
	after := before.Add(amount)

	if err := s.accountRepo.UpdateBalance(ctx, dbTx, account.ID, after); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("update balance: %w", err))
	}

	entry := domain.NewDepositEntry(account.ID, amount, before, after, time.Now().UTC())
	if err := s.txRepo.Create(ctx, dbTx, entry); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("append ledger entry: %w", err))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.log.Info().
		Str("transaction_id", entry.TransactionID).
		Str("account", account.AccountNumber).
		Str("amount", amount.String()).
		Msg("deposit processed")

	return entry, nil
}

// Withdraw debits amount from the account. An insufficient balance commits a
// FAILED entry (balance untouched) before the rejection is returned, so every
// attempt is auditable.
func (s *LedgerServiceImpl) Withdraw(ctx context.Context, accountID uuid.UUID, amount decimal.Decimal) (*domain.Transaction, error) {
	if !amount.IsPositive() {
		return nil, apperror.ErrInvalidAmount()
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	account, err := s.accountRepo.GetByIDForUpdate(ctx, dbTx, accountID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("lock account: %w", err))
	}
	if account == nil {
		return nil, apperror.ErrAccountNotFound()
	}
	if !account.IsActive() {
		return nil, apperror.ErrAccountNotActive()
	}

	before := account.Balance
	now := time.Now().UTC()

	if before.LessThan(amount) {
		entry := domain.NewWithdrawalEntry(account.ID, amount, before, before, domain.TransactionStatusFailed, now)
		if err := s.txRepo.Create(ctx, dbTx, entry); err != nil {
			return nil, apperror.InternalError(fmt.Errorf("append failed entry: %w", err))
		}
		if err := dbTx.Commit(ctx); err != nil {
			return nil, apperror.InternalError(fmt.Errorf("commit failed entry: %w", err))
		}

		s.log.Info().
			Str("transaction_id", entry.TransactionID).
			Str("account", account.AccountNumber).
			Str("amount", amount.String()).
			Msg("withdrawal rejected: insufficient balance")

		return nil, apperror.ErrInsufficientBalance()
	}

	after := before.Sub(amount)

	if err := s.accountRepo.UpdateBalance(ctx, dbTx, account.ID, after); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("update balance: %w", err))
	}

	entry := domain.NewWithdrawalEntry(account.ID, amount, before, after, domain.TransactionStatusSuccess, now)
	if err := s.txRepo.Create(ctx, dbTx, entry); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("append ledger entry: %w", err))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.log.Info().
		Str("transaction_id", entry.TransactionID).
		Str("account", account.AccountNumber).
		Str("amount", amount.String()).
		Msg("withdrawal processed")

	return entry, nil
}

// Transfer moves amount from the sender to the account addressed by
// receiverAccountNumber. Both rows are locked in ascending account-number
// order regardless of direction, so two opposing transfers between the same
// pair cannot deadlock. On insufficient balance only a FAILED debit entry on
// the sender is committed; the receiver is never mutated.
func (s *LedgerServiceImpl) Transfer(ctx context.Context, senderID uuid.UUID, receiverAccountNumber string, amount decimal.Decimal) (*domain.Transaction, *domain.Transaction, error) {
	if !amount.IsPositive() {
		return nil, nil, apperror.ErrInvalidAmount()
	}

	// Preliminary reads resolve both parties and establish the lock order.
	// Statuses and balances are re-read under lock below.
	sender, err := s.accountRepo.GetByID(ctx, senderID)
	if err != nil {
		return nil, nil, apperror.InternalError(fmt.Errorf("resolve sender: %w", err))
	}
	if sender == nil {
		return nil, nil, apperror.ErrAccountNotFound()
	}
	if !sender.IsActive() {
		return nil, nil, apperror.ErrAccountNotActive()
	}

	receiver, err := s.accountRepo.GetByNumber(ctx, receiverAccountNumber)
	if err != nil {
		return nil, nil, apperror.InternalError(fmt.Errorf("resolve receiver: %w", err))
	}
	if receiver == nil {
		return nil, nil, apperror.ErrAccountNotFound()
	}
	if !receiver.IsActive() {
		return nil, nil, apperror.ErrAccountNotActive()
	}

	if sender.AccountNumber == receiver.AccountNumber {
		return nil, nil, apperror.ErrSelfTransfer()
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	sender, receiver, err = s.lockPair(ctx, dbTx, sender.AccountNumber, receiver.AccountNumber)
	if err != nil {
		return nil, nil, err
	}
	if !sender.IsActive() || !receiver.IsActive() {
		return nil, nil, apperror.ErrAccountNotActive()
	}

	senderBefore := sender.Balance
	now := time.Now().UTC()

	if senderBefore.LessThan(amount) {
		entry := domain.NewTransferDebitEntry(sender.ID, amount, senderBefore, senderBefore, domain.TransactionStatusFailed, now)
		if err := s.txRepo.Create(ctx, dbTx, entry); err != nil {
			return nil, nil, apperror.InternalError(fmt.Errorf("append failed entry: %w", err))
		}
		if err := dbTx.Commit(ctx); err != nil {
			return nil, nil, apperror.InternalError(fmt.Errorf("commit failed entry: %w", err))
		}

		s.log.Info().
			Str("transaction_id", entry.TransactionID).
			Str("sender", sender.AccountNumber).
			Str("receiver", receiver.AccountNumber).
			Str("amount", amount.String()).
			Msg("transfer rejected: insufficient balance")

		return nil, nil, apperror.ErrInsufficientBalance()
	}

	senderAfter := senderBefore.Sub(amount)
	receiverBefore := receiver.Balance
	receiverAfter := receiverBefore.Add(amount)

	if err := s.accountRepo.UpdateBalance(ctx, dbTx, sender.ID, senderAfter); err != nil {
		return nil, nil, apperror.InternalError(fmt.Errorf("update sender balance: %w", err))
	}
	if err := s.accountRepo.UpdateBalance(ctx, dbTx, receiver.ID, receiverAfter); err != nil {
		return nil, nil, apperror.InternalError(fmt.Errorf("update receiver balance: %w", err))
	}

	debit := domain.NewTransferDebitEntry(sender.ID, amount, senderBefore, senderAfter, domain.TransactionStatusSuccess, now)
	credit := domain.NewTransferCreditEntry(receiver.ID, amount, receiverBefore, receiverAfter, now)

	if err := s.txRepo.Create(ctx, dbTx, debit); err != nil {
		return nil, nil, apperror.InternalError(fmt.Errorf("append debit entry: %w", err))
	}
	if err := s.txRepo.Create(ctx, dbTx, credit); err != nil {
		return nil, nil, apperror.InternalError(fmt.Errorf("append credit entry: %w", err))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.log.Info().
		Str("debit_id", debit.TransactionID).
		Str("credit_id", credit.TransactionID).
		Str("sender", sender.AccountNumber).
		Str("receiver", receiver.AccountNumber).
		Str("amount", amount.String()).
		Msg("transfer processed")

	return debit, credit, nil
}

// lockPair acquires both transfer parties in ascending account-number order
// and hands them back as (sender, receiver).
func (s *LedgerServiceImpl) lockPair(ctx context.Context, dbTx pgx.Tx, senderNumber, receiverNumber string) (*domain.Account, *domain.Account, error) {
	first, second := senderNumber, receiverNumber
	if second < first {
		first, second = second, first
	}

	firstAcc, err := s.accountRepo.GetByNumberForUpdate(ctx, dbTx, first)
	if err != nil {
		return nil, nil, apperror.InternalError(fmt.Errorf("lock account %s: %w", first, err))
	}
	secondAcc, err := s.accountRepo.GetByNumberForUpdate(ctx, dbTx, second)
	if err != nil {
		return nil, nil, apperror.InternalError(fmt.Errorf("lock account %s: %w", second, err))
	}
	if firstAcc == nil || secondAcc == nil {
		// A party vanished between resolution and locking.
		return nil, nil, apperror.ErrAccountNotFound()
	}

	if firstAcc.AccountNumber == senderNumber {
		return firstAcc, secondAcc, nil
	}
	return secondAcc, firstAcc, nil
}
