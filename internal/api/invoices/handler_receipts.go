package invoices

import (
	"net/http"

	"invoicing-app/internal/app/http/middleware"
	"invoicing-app/internal/app/http/respond"
	"invoicing-app/internal/app/receipts"

	"github.com/gin-gonic/gin"
)

func (h *Handler) ListReceipts(c *gin.Context) {
	out, err := h.receipts.List(c.Request.Context(), middleware.TenantID(c), respond.Page(c))
	if err != nil {
		respond.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) GetReceipt(c *gin.Context) {
	id, ok := respond.ParamUUID(c, "id")
	if !ok {
		return
	}
	out, err := h.receipts.Get(c.Request.Context(), middleware.TenantID(c), id)
	if err != nil {
		respond.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// CreateReceipt records money taken outside the gateway, cash or transfer.
func (h *Handler) CreateReceipt(c *gin.Context) {
	var req ManualReceiptRequest
	if !h.bind(c, &req) {
		return
	}
	out, err := h.receipts.CreateManual(c.Request.Context(), middleware.TenantID(c), middleware.UserID(c), req.input())
	if err != nil {
		respond.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, out)
}

// UpdateReceipt corrects notes and payment method only.
func (h *Handler) UpdateReceipt(c *gin.Context) {
	id, ok := respond.ParamUUID(c, "id")
	if !ok {
		return
	}
	var req ReceiptCorrectionRequest
	if !h.bind(c, &req) {
		return
	}
	out, err := h.receipts.Update(c.Request.Context(), middleware.TenantID(c), middleware.UserID(c), id, receipts.Correction{
		Notes:         req.Notes,
		PaymentMethod: req.PaymentMethod,
	})
	if err != nil {
		respond.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, out)
}
