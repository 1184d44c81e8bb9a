package handler

import (
	"time"

	"core-banking-ledger/internal/adapter/http/dto"
	"core-banking-ledger/internal/core/domain"
	"core-banking-ledger/internal/core/ports"
	"core-banking-ledger/pkg/apperror"
	"core-banking-ledger/pkg/response"

	"github.com/gin-gonic/gin"
)

// AccountHandler handles account endpoints.
type AccountHandler struct {
	accountSvc ports.AccountService
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(accountSvc ports.AccountService) *AccountHandler {
	return &AccountHandler{accountSvc: accountSvc}
}

// Open handles POST /api/v1/accounts.
func (h *AccountHandler) Open(c *gin.Context) {
	var req dto.OpenAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	result, err := h.accountSvc.OpenAccount(c.Request.Context(), ports.OpenAccountRequest{
		FullName:       req.FullName,
		Email:          req.Email,
		Phone:          req.Phone,
		Password:       req.Password,
		AccountType:    domain.AccountType(req.AccountType),
		InitialDeposit: req.InitialDeposit,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.OpenAccountResponse{
		AccountNumber: result.AccountNumber,
		AccountType:   string(result.AccountType),
		Balance:       result.Balance.StringFixed(2),
		Status:        string(result.Status),
	})
}

// GetMine handles GET /api/v1/accounts/me.
func (h *AccountHandler) GetMine(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	account, err := h.accountSvc.GetByUserID(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	if account == nil {
		response.Error(c, apperror.ErrAccountNotFound())
		return
	}

	response.OK(c, toAccountResponse(account))
}

func toAccountResponse(a *domain.Account) dto.AccountResponse {
	return dto.AccountResponse{
		AccountNumber: a.AccountNumber,
		AccountType:   string(a.AccountType),
		Balance:       a.Balance.StringFixed(2),
		Status:        string(a.Status),
		CreatedAt:     a.CreatedAt.UTC().Format(time.RFC3339),
	}
}
