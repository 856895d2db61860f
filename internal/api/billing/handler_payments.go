package billing

import (
	"net/http"
	"time"

	"invoicing-app/internal/app/http/middleware"
	"invoicing-app/internal/app/http/respond"
	"invoicing-app/internal/app/reconcile"
	"invoicing-app/internal/domain/billing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

func (h *Handler) GetPaymentHistory(c *gin.Context) {
	list, err := h.payments.List(c.Request.Context(), middleware.TenantID(c), respond.Page(c))
	if err != nil {
		respond.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// VerifyInvoicePayment checks one reference against one of the tenant's
// invoices.
func (h *Handler) VerifyInvoicePayment(c *gin.Context) {
	invoiceID, ok := respond.ParamUUID(c, "id")
	if !ok {
		return
	}

	res, err := h.payments.VerifyInvoicePayment(c.Request.Context(), middleware.TenantID(c), invoiceID, c.Query("reference"))
	if err != nil {
		respond.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, verified(res))
}

// PaymentCallback backs the public page the gateway redirects the payer to.
func (h *Handler) PaymentCallback(c *gin.Context) {
	res, err := h.payments.VerifyCallback(c.Request.Context(), c.Query("reference"))
	if err != nil {
		respond.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, publicResult(res))
}

// CallbackResult is all an anonymous holder of a reference gets to see.
type CallbackResult struct {
	Success       bool                  `json:"success"`
	Outcome       reconcile.Outcome     `json:"outcome"`
	Reference     string                `json:"reference"`
	Status        billing.PaymentStatus `json:"status"`
	Amount        decimal.Decimal       `json:"amount"`
	Currency      string                `json:"currency"`
	PaidAt        *time.Time            `json:"paid_at,omitempty"`
	InvoiceNumber string                `json:"invoice_number,omitempty"`
	ReceiptNumber string                `json:"receipt_number,omitempty"`
}

func publicResult(res *reconcile.Result) CallbackResult {
	out := CallbackResult{
		Success:   true,
		Outcome:   res.Outcome,
		Reference: res.Payment.Reference,
		Status:    res.Payment.Status,
		Amount:    res.Payment.Amount,
		Currency:  res.Payment.Currency,
		PaidAt:    res.Payment.PaidAt,
	}
	if res.Invoice != nil {
		out.InvoiceNumber = res.Invoice.InvoiceNumber
	}
	if res.Receipt != nil {
		out.ReceiptNumber = res.Receipt.ReceiptNumber
	}
	return out
}

func verified(res *reconcile.Result) gin.H {
	body := gin.H{
		"success": true,
		"outcome": res.Outcome,
		"invoice": res.Invoice,
		"payment": res.Payment,
	}
	if res.Receipt != nil {
		body["receipt"] = res.Receipt
	}
	if res.Subscription != nil {
		body["subscription"] = res.Subscription
	}
	return body
}
