package domain

import (
	"time"

	"github.com/google/uuid"
)

// KYCStatus represents the verification state of a user.
type KYCStatus string

const (
	KYCStatusPending  KYCStatus = "PENDING"
	KYCStatusVerified KYCStatus = "VERIFIED"
	KYCStatusRejected KYCStatus = "REJECTED"
)

// User owns exactly one account in this system.
type User struct {
	ID           uuid.UUID `json:"id"`
	FullName     string    `json:"full_name"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone"`
	PasswordHash string    `json:"-"` // Never expose
	KYCStatus    KYCStatus `json:"kyc_status"`
	CreatedAt    time.Time `json:"created_at"`
}
