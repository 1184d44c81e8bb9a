package ports

import (
	"context"

	"core-banking-ledger/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// UserRepository defines persistence operations for users. Create runs
// inside a unit of work so user and account registration commit together.
type UserRepository interface {
	Create(ctx context.Context, tx pgx.Tx, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ExistsByPhone(ctx context.Context, phone string) (bool, error)
}

// AccountRepository defines persistence operations for accounts.
// Methods accepting pgx.Tx acquire a row lock and must be called inside a
// unit of work. The repository never enforces the non-negative balance
// invariant; that is the ledger service's responsibility before any write.
type AccountRepository interface {
	Create(ctx context.Context, tx pgx.Tx, account *domain.Account) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error)
	GetByNumber(ctx context.Context, accountNumber string) (*domain.Account, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Account, error)
	ExistsByNumber(ctx context.Context, accountNumber string) (bool, error)
	GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Account, error)
	GetByNumberForUpdate(ctx context.Context, tx pgx.Tx, accountNumber string) (*domain.Account, error)
	UpdateBalance(ctx context.Context, tx pgx.Tx, accountID uuid.UUID, balance decimal.Decimal) error
	UpdateStatus(ctx context.Context, accountID uuid.UUID, status domain.AccountStatus) error
}

// TransactionRepository is the append-only ledger. Entries are written once
// inside a unit of work and never mutated afterwards; the interface exposes
// no update or delete.
type TransactionRepository interface {
	Create(ctx context.Context, tx pgx.Tx, transaction *domain.Transaction) error
	GetByTransactionID(ctx context.Context, transactionID string) (*domain.Transaction, error)
	// ListByAccount returns entries in ascending creation order.
	ListByAccount(ctx context.Context, accountID uuid.UUID) ([]domain.Transaction, error)
	// ListByAccountPaged returns one page in reverse-chronological order
	// together with the total entry count. Out-of-range pages yield an
	// empty slice, not an error.
	ListByAccountPaged(ctx context.Context, accountID uuid.UUID, page, pageSize int) ([]domain.Transaction, int64, error)
}

// PaymentRepository defines persistence for gateway funding orders.
type PaymentRepository interface {
	Create(ctx context.Context, payment *domain.Payment) error
	GetByOrderID(ctx context.Context, orderID string) (*domain.Payment, error)
	MarkVerified(ctx context.Context, orderID, paymentID, signature string) error
	MarkFailed(ctx context.Context, orderID string) error
}

// DBTransactor provides database transaction management. A unit of work
// spans balance read, precondition check, balance write and ledger append:
// it commits entirely or not at all.
type DBTransactor interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}
