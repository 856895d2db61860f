package billing

import (
	"net/http"

	"invoicing-app/internal/app/http/middleware"
	"invoicing-app/internal/app/http/respond"

	"github.com/gin-gonic/gin"
)

// CreatePaymentLink starts a hosted checkout for an unpaid invoice.
func (h *Handler) CreatePaymentLink(c *gin.Context) {
	invoiceID, ok := respond.ParamUUID(c, "id")
	if !ok {
		return
	}

	link, err := h.payments.CreateInvoiceLink(c.Request.Context(), middleware.TenantID(c), middleware.UserID(c), invoiceID)
	if err != nil {
		respond.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, link)
}
