package service

import (
	"context"
	"fmt"

	"core-banking-ledger/internal/core/domain"
	"core-banking-ledger/internal/core/ports"
	"core-banking-ledger/pkg/apperror"

	"github.com/google/uuid"
)

const defaultHistoryPageSize = 20

// HistoryServiceImpl implements ports.HistoryService. It is a pure read path
// over the ledger and carries no invariant responsibility.
type HistoryServiceImpl struct {
	accountRepo ports.AccountRepository
	txRepo      ports.TransactionRepository
	maxPageSize int
}

// NewHistoryService creates a new HistoryServiceImpl. maxPageSize caps
// caller-supplied page sizes; zero or negative means the default cap of 100.
func NewHistoryService(accountRepo ports.AccountRepository, txRepo ports.TransactionRepository, maxPageSize int) *HistoryServiceImpl {
	if maxPageSize <= 0 {
		maxPageSize = 100
	}
	return &HistoryServiceImpl{
		accountRepo: accountRepo,
		txRepo:      txRepo,
		maxPageSize: maxPageSize,
	}
}

// ListHistory returns one page of the account's ledger entries, most recent
// first. Pages are 1-based; an out-of-range page yields an empty page, not
// an error.
func (s *HistoryServiceImpl) ListHistory(ctx context.Context, accountID uuid.UUID, page, pageSize int) ([]domain.Transaction, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultHistoryPageSize
	}
	if pageSize > s.maxPageSize {
		pageSize = s.maxPageSize
	}

	account, err := s.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return nil, 0, apperror.InternalError(fmt.Errorf("resolve account: %w", err))
	}
	if account == nil {
		return nil, 0, apperror.ErrAccountNotFound()
	}

	entries, total, err := s.txRepo.ListByAccountPaged(ctx, account.ID, page, pageSize)
	if err != nil {
		return nil, 0, apperror.InternalError(fmt.Errorf("list ledger entries: %w", err))
	}
	return entries, total, nil
}
