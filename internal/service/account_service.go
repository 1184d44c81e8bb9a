package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"core-banking-ledger/internal/core/domain"
	"core-banking-ledger/internal/core/ports"
	"core-banking-ledger/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const accountNumberDigits = 12

// AccountServiceImpl implements ports.AccountService.
type AccountServiceImpl struct {
	userRepo    ports.UserRepository
	accountRepo ports.AccountRepository
	hashSvc     ports.HashService
	transactor  ports.DBTransactor
	maxAttempts int
	log         zerolog.Logger
}

// NewAccountService creates a new AccountServiceImpl. maxAttempts bounds the
// account-number generate-then-check retry loop; zero or negative means 5.
func NewAccountService(
	userRepo ports.UserRepository,
	accountRepo ports.AccountRepository,
	hashSvc ports.HashService,
	transactor ports.DBTransactor,
	maxAttempts int,
	log zerolog.Logger,
) *AccountServiceImpl {
	if maxAttempts <= 0 {
		maxAttempts = 5
	}
	return &AccountServiceImpl{
		userRepo:    userRepo,
		accountRepo: accountRepo,
		hashSvc:     hashSvc,
		transactor:  transactor,
		maxAttempts: maxAttempts,
		log:         log,
	}
}

// OpenAccount registers the owning user and creates the account with the
// caller-supplied initial deposit as the starting balance. Both rows are
// written in one unit of work: a failed account write must not leave behind
// an accountless user whose email blocks re-registration.
func (s *AccountServiceImpl) OpenAccount(ctx context.Context, req ports.OpenAccountRequest) (*ports.OpenAccountResponse, error) {
	if req.InitialDeposit.IsNegative() {
		return nil, apperror.ErrInvalidAmount()
	}

	exists, err := s.userRepo.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("check email: %w", err))
	}
	if exists {
		return nil, apperror.ErrDuplicateIdentity("Email")
	}

	exists, err = s.userRepo.ExistsByPhone(ctx, req.Phone)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("check phone: %w", err))
	}
	if exists {
		return nil, apperror.ErrDuplicateIdentity("Phone")
	}

	passwordHash, err := s.hashSvc.Hash(req.Password)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("hash password: %w", err))
	}

	number, err := s.allocateAccountNumber(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:           uuid.New(),
		FullName:     req.FullName,
		Email:        req.Email,
		Phone:        req.Phone,
		PasswordHash: passwordHash,
		KYCStatus:    domain.KYCStatusPending,
		CreatedAt:    now,
	}
	account := &domain.Account{
		ID:            uuid.New(),
		AccountNumber: number,
		AccountType:   req.AccountType,
		Balance:       req.InitialDeposit,
		Status:        domain.AccountStatusActive,
		UserID:        user.ID,
		CreatedAt:     now,
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	if err := s.userRepo.Create(ctx, dbTx, user); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create user: %w", err))
	}
	if err := s.accountRepo.Create(ctx, dbTx, account); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create account: %w", err))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.log.Info().
		Str("account", account.AccountNumber).
		Str("type", string(account.AccountType)).
		Msg("account opened")

	return &ports.OpenAccountResponse{
		AccountNumber: account.AccountNumber,
		AccountType:   account.AccountType,
		Balance:       account.Balance,
		Status:        account.Status,
	}, nil
}

// GetByUserID resolves a caller identity to their account.
func (s *AccountServiceImpl) GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Account, error) {
	account, err := s.accountRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get account by user: %w", err))
	}
	if account == nil {
		return nil, apperror.ErrAccountNotFound()
	}
	return account, nil
}

// allocateAccountNumber generates a random 12-digit number and checks
// uniqueness against the store, retrying up to maxAttempts on collision.
// The database carries a uniqueness constraint as the final guard.
func (s *AccountServiceImpl) allocateAccountNumber(ctx context.Context) (string, error) {
	for attempt := 0; attempt < s.maxAttempts; attempt++ {
		number, err := randomAccountNumber()
		if err != nil {
			return "", apperror.InternalError(fmt.Errorf("generate account number: %w", err))
		}

		taken, err := s.accountRepo.ExistsByNumber(ctx, number)
		if err != nil {
			return "", apperror.InternalError(fmt.Errorf("check account number: %w", err))
		}
		if !taken {
			return number, nil
		}

		s.log.Warn().Str("account", number).Int("attempt", attempt+1).Msg("account number collision")
	}
	return "", apperror.ErrAccountNumberExhausted(fmt.Errorf("%d consecutive collisions", s.maxAttempts))
}

// randomAccountNumber draws a 12-digit number with a nonzero leading digit.
func randomAccountNumber() (string, error) {
	base := new(big.Int).Exp(big.NewInt(10), big.NewInt(accountNumberDigits-1), nil)
	span := new(big.Int).Mul(base, big.NewInt(9))
	n, err := rand.Int(rand.Reader, span)
	if err != nil {
		return "", err
	}
	return new(big.Int).Add(base, n).String(), nil
}
