package postgres

import (
	"context"
	"errors"
	"fmt"

	"core-banking-ledger/internal/core/domain"

	"github.com/jackc/pgx/v5"
)

// PaymentRepo implements ports.PaymentRepository.
type PaymentRepo struct {
	pool Pool
}

// NewPaymentRepo creates a new PaymentRepo.
func NewPaymentRepo(pool Pool) *PaymentRepo {
	return &PaymentRepo{pool: pool}
}

// Create inserts a new funding order.
func (r *PaymentRepo) Create(ctx context.Context, p *domain.Payment) error {
	query := `INSERT INTO payments (id, order_id, payment_id, signature, amount, status, account_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.pool.Exec(ctx, query,
		p.ID, p.OrderID, p.PaymentID, p.Signature, p.Amount, p.Status, p.AccountID, p.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert payment: %w", err)
	}
	return nil
}

// GetByOrderID fetches a funding order by provider order ID.
func (r *PaymentRepo) GetByOrderID(ctx context.Context, orderID string) (*domain.Payment, error) {
	query := `SELECT id, order_id, payment_id, signature, amount, status, account_id, created_at
		FROM payments WHERE order_id = $1`

	p := &domain.Payment{}
	err := r.pool.QueryRow(ctx, query, orderID).Scan(
		&p.ID, &p.OrderID, &p.PaymentID, &p.Signature, &p.Amount, &p.Status, &p.AccountID, &p.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get payment by order id: %w", err)
	}
	return p, nil
}

// MarkVerified records the provider payment ID and signature on a verified
// order. Only PENDING orders transition.
func (r *PaymentRepo) MarkVerified(ctx context.Context, orderID, paymentID, signature string) error {
	query := `UPDATE payments SET status = $1, payment_id = $2, signature = $3
		WHERE order_id = $4 AND status = $5`

	tag, err := r.pool.Exec(ctx, query,
		domain.PaymentStatusVerified, paymentID, signature,
		orderID, domain.PaymentStatusPending,
	)
	if err != nil {
		return fmt.Errorf("mark payment verified: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("payment not pending: %s", orderID)
	}
	return nil
}

// MarkFailed transitions a PENDING order to FAILED.
func (r *PaymentRepo) MarkFailed(ctx context.Context, orderID string) error {
	query := `UPDATE payments SET status = $1 WHERE order_id = $2 AND status = $3`

	tag, err := r.pool.Exec(ctx, query,
		domain.PaymentStatusFailed, orderID, domain.PaymentStatusPending,
	)
	if err != nil {
		return fmt.Errorf("mark payment failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("payment not pending: %s", orderID)
	}
	return nil
}
