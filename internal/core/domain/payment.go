package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentStatus is the lifecycle state of a gateway funding order.
type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "PENDING"
	PaymentStatusVerified PaymentStatus = "VERIFIED"
	PaymentStatusFailed   PaymentStatus = "FAILED"
)

// Payment is a funding order created against the external payment provider.
// A verified payment funds exactly one ledger deposit.
type Payment struct {
	ID        uuid.UUID       `json:"id"`
	OrderID   string          `json:"order_id"`
	PaymentID *string         `json:"payment_id,omitempty"`
	Signature *string         `json:"-"` // Provider HMAC, never exposed
	Amount    decimal.Decimal `json:"amount"`
	Status    PaymentStatus   `json:"status"`
	AccountID uuid.UUID       `json:"account_id"`
	CreatedAt time.Time       `json:"created_at"`
}

// IsPending reports whether the order is still awaiting verification.
func (p *Payment) IsPending() bool {
	return p.Status == PaymentStatusPending
}
