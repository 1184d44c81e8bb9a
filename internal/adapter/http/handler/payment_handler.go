package handler

import (
	"core-banking-ledger/internal/adapter/http/dto"
	"core-banking-ledger/internal/core/ports"
	"core-banking-ledger/pkg/apperror"
	"core-banking-ledger/pkg/response"

	"github.com/gin-gonic/gin"
)

// PaymentHandler handles gateway funding endpoints.
type PaymentHandler struct {
	gatewaySvc ports.GatewayService
	accountSvc ports.AccountService
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(gatewaySvc ports.GatewayService, accountSvc ports.AccountService) *PaymentHandler {
	return &PaymentHandler{
		gatewaySvc: gatewaySvc,
		accountSvc: accountSvc,
	}
}

// CreateOrder handles POST /api/v1/payments/order.
func (h *PaymentHandler) CreateOrder(c *gin.Context) {
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

	var req dto.OrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	order, err := h.gatewaySvc.CreateOrder(c.Request.Context(), account.ID, req.Amount)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.OrderResponse{
		OrderID:  order.OrderID,
		Amount:   order.Amount.StringFixed(2),
		Currency: order.Currency,
		KeyID:    order.KeyID,
	})
}

// Verify handles POST /api/v1/payments/verify. The provider callback is
// authenticated by its HMAC signature, not by a user token.
func (h *PaymentHandler) Verify(c *gin.Context) {
	var req dto.PaymentVerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	entry, err := h.gatewaySvc.VerifyPayment(c.Request.Context(), ports.PaymentVerifyRequest{
		OrderID:   req.OrderID,
		PaymentID: req.PaymentID,
		Signature: req.Signature,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, toTransactionResponse(entry))
}
