package service

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"core-banking-ledger/internal/core/domain"
	"core-banking-ledger/internal/core/ports"
	"core-banking-ledger/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// GatewayServiceImpl implements ports.GatewayService against a
// Razorpay-style provider: an order is created first, the client completes
// checkout, and the provider calls back with (orderID, paymentID, signature)
// where signature = HMAC-SHA256(secret, "orderID|paymentID"). A verified
// callback funds exactly one ledger deposit.
type GatewayServiceImpl struct {
	paymentRepo ports.PaymentRepository
	accountRepo ports.AccountRepository
	ledgerSvc   ports.LedgerService
	keyID       string
	keySecret   string
	currency    string
	log         zerolog.Logger
}

// NewGatewayService creates a new GatewayServiceImpl.
func NewGatewayService(
	paymentRepo ports.PaymentRepository,
	accountRepo ports.AccountRepository,
	ledgerSvc ports.LedgerService,
	keyID, keySecret, currency string,
	log zerolog.Logger,
) *GatewayServiceImpl {
	return &GatewayServiceImpl{
		paymentRepo: paymentRepo,
		accountRepo: accountRepo,
		ledgerSvc:   ledgerSvc,
		keyID:       keyID,
		keySecret:   keySecret,
		currency:    currency,
		log:         log,
	}
}

// CreateOrder registers a PENDING funding order for the account.
func (s *GatewayServiceImpl) CreateOrder(ctx context.Context, accountID uuid.UUID, amount decimal.Decimal) (*ports.GatewayOrder, error) {
	if !amount.IsPositive() {
		return nil, apperror.ErrInvalidAmount()
	}

	account, err := s.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("resolve account: %w", err))
	}
	if account == nil {
		return nil, apperror.ErrAccountNotFound()
	}
	if !account.IsActive() {
		return nil, apperror.ErrAccountNotActive()
	}

	orderID, err := generateOrderID()
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("generate order id: %w", err))
	}

	payment := &domain.Payment{
		ID:        uuid.New(),
		OrderID:   orderID,
		Amount:    amount,
		Status:    domain.PaymentStatusPending,
		AccountID: account.ID,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.paymentRepo.Create(ctx, payment); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create payment order: %w", err))
	}

	s.log.Info().
		Str("order_id", orderID).
		Str("account", account.AccountNumber).
		Str("amount", amount.String()).
		Msg("gateway order created")

	return &ports.GatewayOrder{
		OrderID:  orderID,
		Amount:   amount,
		Currency: s.currency,
		KeyID:    s.keyID,
	}, nil
}

// VerifyPayment checks the provider signature and funds the deposit. The
// order is marked FAILED on a bad signature so the attempt stays auditable.
func (s *GatewayServiceImpl) VerifyPayment(ctx context.Context, req ports.PaymentVerifyRequest) (*domain.Transaction, error) {
	payment, err := s.paymentRepo.GetByOrderID(ctx, req.OrderID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("find payment order: %w", err))
	}
	if payment == nil {
		return nil, apperror.ErrPaymentNotFound()
	}
	if !payment.IsPending() {
		return nil, apperror.ErrPaymentNotPending()
	}

	if !s.verifySignature(req.OrderID, req.PaymentID, req.Signature) {
		if err := s.paymentRepo.MarkFailed(ctx, req.OrderID); err != nil {
			return nil, apperror.InternalError(fmt.Errorf("mark payment failed: %w", err))
		}
		return nil, apperror.ErrInvalidPaymentSignature()
	}

	if err := s.paymentRepo.MarkVerified(ctx, req.OrderID, req.PaymentID, req.Signature); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("mark payment verified: %w", err))
	}

	entry, err := s.ledgerSvc.Deposit(ctx, payment.AccountID, payment.Amount)
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("order_id", req.OrderID).
		Str("payment_id", req.PaymentID).
		Str("transaction_id", entry.TransactionID).
		Msg("gateway payment verified and deposited")

	return entry, nil
}

// verifySignature checks HMAC-SHA256(secret, "orderID|paymentID") in
// constant time.
func (s *GatewayServiceImpl) verifySignature(orderID, paymentID, signature string) bool {
	mac := hmac.New(sha256.New, []byte(s.keySecret))
	fmt.Fprintf(mac, "%s|%s", orderID, paymentID)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

// generateOrderID builds a provider-style order identifier.
func generateOrderID() (string, error) {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return "order_" + hex.EncodeToString(buf), nil
}
