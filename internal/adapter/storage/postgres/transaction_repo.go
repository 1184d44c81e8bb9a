package postgres

import (
	"context"
	"errors"
	"fmt"

	"core-banking-ledger/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// TransactionRepo implements ports.TransactionRepository. The transactions
// table is append only; nothing here issues UPDATE or DELETE.
type TransactionRepo struct {
	pool Pool
}

// NewTransactionRepo creates a new TransactionRepo.
func NewTransactionRepo(pool Pool) *TransactionRepo {
	return &TransactionRepo{pool: pool}
}

const transactionColumns = `id, transaction_id, transaction_type, amount, balance_before, balance_after, status, account_id, created_at`

// Create appends a ledger entry within a transaction.
func (r *TransactionRepo) Create(ctx context.Context, tx pgx.Tx, t *domain.Transaction) error {
	query := `INSERT INTO transactions (id, transaction_id, transaction_type, amount, balance_before, balance_after, status, account_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := tx.Exec(ctx, query,
		t.ID, t.TransactionID, t.TransactionType, t.Amount,
		t.BalanceBefore, t.BalanceAfter, t.Status, t.AccountID, t.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

// GetByTransactionID fetches a ledger entry by its public identifier.
func (r *TransactionRepo) GetByTransactionID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE transaction_id = $1`

	t := &domain.Transaction{}
	err := r.pool.QueryRow(ctx, query, transactionID).Scan(
		&t.ID, &t.TransactionID, &t.TransactionType, &t.Amount,
		&t.BalanceBefore, &t.BalanceAfter, &t.Status, &t.AccountID, &t.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get transaction by id: %w", err)
	}
	return t, nil
}

// ListByAccount returns all entries for the account in ascending creation
// order, oldest first.
func (r *TransactionRepo) ListByAccount(ctx context.Context, accountID uuid.UUID) ([]domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions
		WHERE account_id = $1 ORDER BY created_at ASC, id ASC`

	rows, err := r.pool.Query(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	return collectTransactions(rows)
}

// ListByAccountPaged returns one page in reverse-chronological order plus
// the total entry count for the account. Pages past the end come back empty.
func (r *TransactionRepo) ListByAccountPaged(ctx context.Context, accountID uuid.UUID, page, pageSize int) ([]domain.Transaction, int64, error) {
	countQuery := `SELECT COUNT(*) FROM transactions WHERE account_id = $1`

	var total int64
	if err := r.pool.QueryRow(ctx, countQuery, accountID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count transactions: %w", err)
	}

	query := `SELECT ` + transactionColumns + ` FROM transactions
		WHERE account_id = $1 ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3`

	offset := (page - 1) * pageSize
	rows, err := r.pool.Query(ctx, query, accountID, pageSize, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list transactions page: %w", err)
	}
	defer rows.Close()

	entries, err := collectTransactions(rows)
	if err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

func collectTransactions(rows pgx.Rows) ([]domain.Transaction, error) {
	entries := make([]domain.Transaction, 0)
	for rows.Next() {
		var t domain.Transaction
		err := rows.Scan(
			&t.ID, &t.TransactionID, &t.TransactionType, &t.Amount,
			&t.BalanceBefore, &t.BalanceAfter, &t.Status, &t.AccountID, &t.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		entries = append(entries, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return entries, nil
}
