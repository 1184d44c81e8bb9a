package apperror

import (
	"fmt"
	"net/http"
)

// AppError is a structured error that maps to HTTP responses.
type AppError struct {
	Code       string `json:"error_code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"` // Wrapped internal error (not exposed to client)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code string, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(code string, message string, httpStatus int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// Stable error codes. The ledger service returns exactly one of the ACC/TXN
// kinds for every expected rejection; SYS_001 covers everything unexpected.
const (
	CodeAccountNotActive    = "ACC_001"
	CodeAccountNotFound     = "ACC_002"
	CodeAccountNumberClash  = "ACC_003"
	CodeInsufficientBalance = "TXN_001"
	CodeInvalidAmount       = "TXN_002"
	CodeSelfTransfer        = "TXN_003"
	CodeInvalidCredentials  = "AUTH_001"
	CodeDuplicateIdentity   = "AUTH_002"
	CodeInvalidToken        = "AUTH_003"
	CodePaymentNotFound     = "PAY_001"
	CodeInvalidSignature    = "PAY_002"
	CodePaymentNotPending   = "PAY_003"
	CodeRateLimitExceeded   = "RATE_001"
	CodeValidation          = "REQ_001"
	CodeInternal            = "SYS_001"
)

// ---- Account lifecycle (ACC) ----

func ErrAccountNotActive() *AppError {
	return New(CodeAccountNotActive, "Account is not active", http.StatusForbidden)
}

func ErrAccountNotFound() *AppError {
	return New(CodeAccountNotFound, "Account not found", http.StatusNotFound)
}

// ErrAccountNumberExhausted signals that account number generation kept
// colliding past the retry bound.
func ErrAccountNumberExhausted(err error) *AppError {
	return Wrap(CodeAccountNumberClash, "Could not allocate account number", http.StatusInternalServerError, err)
}

// ---- Ledger business rules (TXN) ----

func ErrInsufficientBalance() *AppError {
	return New(CodeInsufficientBalance, "Insufficient balance", http.StatusPaymentRequired)
}

func ErrInvalidAmount() *AppError {
	return New(CodeInvalidAmount, "Amount must be positive", http.StatusBadRequest)
}

func ErrSelfTransfer() *AppError {
	return New(CodeSelfTransfer, "Cannot transfer to the same account", http.StatusBadRequest)
}

// ---- Authentication (AUTH) ----

func ErrInvalidCredentials() *AppError {
	return New(CodeInvalidCredentials, "Invalid credentials", http.StatusUnauthorized)
}

func ErrDuplicateIdentity(field string) *AppError {
	return New(CodeDuplicateIdentity, fmt.Sprintf("%s already registered", field), http.StatusConflict)
}

func ErrInvalidToken() *AppError {
	return New(CodeInvalidToken, "Invalid or expired token", http.StatusUnauthorized)
}

// ---- Payment gateway (PAY) ----

func ErrPaymentNotFound() *AppError {
	return New(CodePaymentNotFound, "Payment order not found", http.StatusNotFound)
}

func ErrInvalidPaymentSignature() *AppError {
	return New(CodeInvalidSignature, "Payment signature verification failed", http.StatusBadRequest)
}

func ErrPaymentNotPending() *AppError {
	return New(CodePaymentNotPending, "Payment order already processed", http.StatusConflict)
}

// ---- Rate Limiting (RATE) ----

func ErrRateLimitExceeded() *AppError {
	return New(CodeRateLimitExceeded, "Rate limit exceeded", http.StatusTooManyRequests)
}

// ---- System & Infrastructure (SYS) ----

// InternalError wraps an unexpected fault without leaking detail to clients.
func InternalError(err error) *AppError {
	return Wrap(CodeInternal, "Internal server error", http.StatusInternalServerError, err)
}

// Validation returns a request-shape validation error.
func Validation(message string) *AppError {
	return New(CodeValidation, message, http.StatusBadRequest)
}
