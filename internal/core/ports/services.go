package ports

import (
	"context"
	"time"

	"core-banking-ledger/internal/core/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LedgerService executes balance mutations. Every operation takes an
// already-resolved account reference; the service never reads caller
// identity from ambient context. Expected rejections come back as
// *apperror.AppError kinds the caller can branch on.
type LedgerService interface {
	// Deposit credits amount to the account and appends one SUCCESS entry.
	Deposit(ctx context.Context, accountID uuid.UUID, amount decimal.Decimal) (*domain.Transaction, error)
	// Withdraw debits amount. An insufficient balance is durably recorded
	// as a FAILED entry before the error is returned.
	Withdraw(ctx context.Context, accountID uuid.UUID, amount decimal.Decimal) (*domain.Transaction, error)
	// Transfer moves amount from the sender to the account addressed by
	// receiverAccountNumber as one unit of work. On success it returns the
	// debit and credit entries in that order.
	Transfer(ctx context.Context, senderID uuid.UUID, receiverAccountNumber string, amount decimal.Decimal) (*domain.Transaction, *domain.Transaction, error)
}

// HistoryService is the read-only view over an account's ledger entries.
type HistoryService interface {
	// ListHistory returns one page, most recent first, plus the total count.
	ListHistory(ctx context.Context, accountID uuid.UUID, page, pageSize int) ([]domain.Transaction, int64, error)
}

// AccountService opens accounts and resolves caller identity to an account.
type AccountService interface {
	OpenAccount(ctx context.Context, req OpenAccountRequest) (*OpenAccountResponse, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Account, error)
}

// OpenAccountRequest holds validated input for account opening.
type OpenAccountRequest struct {
	FullName       string
	Email          string
	Phone          string
	Password       string
	AccountType    domain.AccountType
	InitialDeposit decimal.Decimal
}

// OpenAccountResponse is the caller-visible result of opening an account.
type OpenAccountResponse struct {
	AccountNumber string
	AccountType   domain.AccountType
	Balance       decimal.Decimal
	Status        domain.AccountStatus
}

// AuthService defines authentication business logic.
type AuthService interface {
	Login(ctx context.Context, email, password string) (string, time.Time, error) // token, expiry, error
	Profile(ctx context.Context, userID uuid.UUID) (*domain.User, *domain.Account, error)
}

// GatewayService integrates with the external payment provider that funds
// deposits. CreateOrder registers intent; VerifyPayment checks the provider
// signature and, when valid, credits the account through the ledger.
type GatewayService interface {
	CreateOrder(ctx context.Context, accountID uuid.UUID, amount decimal.Decimal) (*GatewayOrder, error)
	VerifyPayment(ctx context.Context, req PaymentVerifyRequest) (*domain.Transaction, error)
}

// GatewayOrder is the provider order handed to the client for checkout.
type GatewayOrder struct {
	OrderID  string
	Amount   decimal.Decimal
	Currency string
	KeyID    string
}

// PaymentVerifyRequest holds the provider callback fields.
type PaymentVerifyRequest struct {
	OrderID   string
	PaymentID string
	Signature string
}

// HashService handles password hashing.
type HashService interface {
	Hash(password string) (string, error)
	Verify(password string, hash string) (bool, error)
}

// TokenService handles JWT token operations.
type TokenService interface {
	Generate(userID uuid.UUID, email string) (string, time.Time, error)
	Validate(tokenString string) (*TokenClaims, error)
}

// TokenClaims holds the parsed JWT claims.
type TokenClaims struct {
	UserID uuid.UUID
	Email  string
}
