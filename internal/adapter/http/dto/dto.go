package dto

import "github.com/shopspring/decimal"

// OpenAccountRequest is the request body for opening an account.
type OpenAccountRequest struct {
	FullName       string          `json:"full_name" binding:"required,min=1,max=100"`
	Email          string          `json:"email" binding:"required,email,max=254"`
	Phone          string          `json:"phone" binding:"required,min=8,max=15"`
	Password       string          `json:"password" binding:"required,min=8,max=128"`
	AccountType    string          `json:"account_type" binding:"required,oneof=SAVINGS CURRENT"`
	InitialDeposit decimal.Decimal `json:"initial_deposit"`
}

// LoginRequest is the request body for login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse is the response body for successful login.
type LoginResponse struct {
	Token  string `json:"token"`
	Expiry int64  `json:"expiry"` // Unix timestamp
}

// OpenAccountResponse is the response body for successful account opening.
type OpenAccountResponse struct {
	AccountNumber string `json:"account_number"`
	AccountType   string `json:"account_type"`
	Balance       string `json:"balance"`
	Status        string `json:"status"`
}

// AccountResponse is the caller's view of their account.
type AccountResponse struct {
	AccountNumber string `json:"account_number"`
	AccountType   string `json:"account_type"`
	Balance       string `json:"balance"`
	Status        string `json:"status"`
	CreatedAt     string `json:"created_at"`
}

// ProfileResponse is the response for the "me" view.
type ProfileResponse struct {
	FullName  string          `json:"full_name"`
	Email     string          `json:"email"`
	Phone     string          `json:"phone"`
	KYCStatus string          `json:"kyc_status"`
	Account   AccountResponse `json:"account"`
}

// AmountRequest is the request body for deposits and withdrawals.
type AmountRequest struct {
	Amount decimal.Decimal `json:"amount" binding:"required"`
}

// TransferRequest is the request body for transfers.
type TransferRequest struct {
	ReceiverAccountNumber string          `json:"receiver_account_number" binding:"required,account_number"`
	Amount                decimal.Decimal `json:"amount" binding:"required"`
}

// TransactionResponse is one ledger entry as shown to the caller.
type TransactionResponse struct {
	TransactionID   string `json:"transaction_id"`
	TransactionType string `json:"transaction_type"`
	Amount          string `json:"amount"`
	BalanceBefore   string `json:"balance_before"`
	BalanceAfter    string `json:"balance_after"`
	Status          string `json:"status"`
	CreatedAt       string `json:"created_at"`
}

// TransferResponse carries both legs of a successful transfer.
type TransferResponse struct {
	Debit  TransactionResponse `json:"debit"`
	Credit TransactionResponse `json:"credit"`
}

// OrderRequest is the request body for creating a gateway funding order.
type OrderRequest struct {
	Amount decimal.Decimal `json:"amount" binding:"required"`
}

// OrderResponse is the response body for a created funding order.
type OrderResponse struct {
	OrderID  string `json:"order_id"`
	Amount   string `json:"amount"`
	Currency string `json:"currency"`
	KeyID    string `json:"key_id"`
}

// PaymentVerifyRequest is the provider callback body.
type PaymentVerifyRequest struct {
	OrderID   string `json:"order_id" binding:"required,safe_id"`
	PaymentID string `json:"payment_id" binding:"required,safe_id"`
	Signature string `json:"signature" binding:"required"`
}
