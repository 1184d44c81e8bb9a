package handler

import (
	"strconv"
	"time"

	"core-banking-ledger/internal/adapter/http/dto"
	"core-banking-ledger/internal/core/domain"
	"core-banking-ledger/internal/core/ports"
	"core-banking-ledger/pkg/apperror"
	"core-banking-ledger/pkg/response"

	"github.com/gin-gonic/gin"
)

// TransactionHandler handles balance mutations and ledger history. All
// routes operate on the authenticated caller's own account.
type TransactionHandler struct {
	ledgerSvc  ports.LedgerService
	historySvc ports.HistoryService
	accountSvc ports.AccountService
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(ledgerSvc ports.LedgerService, historySvc ports.HistoryService, accountSvc ports.AccountService) *TransactionHandler {
	return &TransactionHandler{
		ledgerSvc:  ledgerSvc,
		historySvc: historySvc,
		accountSvc: accountSvc,
	}
}

// Deposit handles POST /api/v1/transactions/deposit.
func (h *TransactionHandler) Deposit(c *gin.Context) {
	account, ok := h.resolveAccount(c)
	if !ok {
		return
	}

	var req dto.AmountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	entry, err := h.ledgerSvc.Deposit(c.Request.Context(), account.ID, req.Amount)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, toTransactionResponse(entry))
}

// Withdraw handles POST /api/v1/transactions/withdraw.
func (h *TransactionHandler) Withdraw(c *gin.Context) {
	account, ok := h.resolveAccount(c)
	if !ok {
		return
	}

	var req dto.AmountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	entry, err := h.ledgerSvc.Withdraw(c.Request.Context(), account.ID, req.Amount)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, toTransactionResponse(entry))
}

// Transfer handles POST /api/v1/transactions/transfer.
func (h *TransactionHandler) Transfer(c *gin.Context) {
	account, ok := h.resolveAccount(c)
	if !ok {
		return
	}

	var req dto.TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	debit, credit, err := h.ledgerSvc.Transfer(c.Request.Context(), account.ID, req.ReceiverAccountNumber, req.Amount)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.TransferResponse{
		Debit:  toTransactionResponse(debit),
		Credit: toTransactionResponse(credit),
	})
}

// History handles GET /api/v1/transactions?page=&page_size=.
func (h *TransactionHandler) History(c *gin.Context) {
	account, ok := h.resolveAccount(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	entries, total, err := h.historySvc.ListHistory(c.Request.Context(), account.ID, page, pageSize)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]dto.TransactionResponse, 0, len(entries))
	for i := range entries {
		items = append(items, toTransactionResponse(&entries[i]))
	}

	response.OK(c, response.PageResponse{
		Items:      items,
		Page:       page,
		PageSize:   pageSize,
		TotalItems: total,
	})
}

// resolveAccount maps the authenticated user to their account. It writes
// the error response itself when resolution fails.
func (h *TransactionHandler) resolveAccount(c *gin.Context) (*domain.Account, bool) {
	userID, ok := currentUserID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return nil, false
	}

	account, err := h.accountSvc.GetByUserID(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return nil, false
	}
	if account == nil {
		response.Error(c, apperror.ErrAccountNotFound())
		return nil, false
	}
	return account, true
}

func toTransactionResponse(t *domain.Transaction) dto.TransactionResponse {
	return dto.TransactionResponse{
		TransactionID:   t.TransactionID,
		TransactionType: string(t.TransactionType),
		Amount:          t.Amount.StringFixed(2),
		BalanceBefore:   t.BalanceBefore.StringFixed(2),
		BalanceAfter:    t.BalanceAfter.StringFixed(2),
		Status:          string(t.Status),
		CreatedAt:       t.CreatedAt.UTC().Format(time.RFC3339),
	}
}
