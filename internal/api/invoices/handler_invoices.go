package invoices

import (
	"fmt"
	"net/http"
	"time"

	"invoicing-app/internal/app/http/middleware"
	"invoicing-app/internal/app/http/respond"

	"github.com/gin-gonic/gin"
)

func (h *Handler) CreateInvoice(c *gin.Context) {
	var req CreateInvoiceRequest
	if !h.bind(c, &req) {
		return
	}
	out, err := h.catalog.CreateInvoice(c.Request.Context(), middleware.TenantID(c), req.input())
	if err != nil {
		respond.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, out)
}

func (h *Handler) ListInvoices(c *gin.Context) {
	out, err := h.catalog.ListInvoices(c.Request.Context(), middleware.TenantID(c), respond.Page(c))
	if err != nil {
		respond.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) GetInvoice(c *gin.Context) {
	id, ok := respond.ParamUUID(c, "id")
	if !ok {
		return
	}
	out, err := h.catalog.GetInvoice(c.Request.Context(), middleware.TenantID(c), id)
	if err != nil {
		respond.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// UpdateInvoice answers 409 for a paid invoice, whatever the body.
func (h *Handler) UpdateInvoice(c *gin.Context) {
	id, ok := respond.ParamUUID(c, "id")
	if !ok {
		return
	}
	var req UpdateInvoiceRequest
	if !h.bind(c, &req) {
		return
	}
	out, err := h.catalog.UpdateInvoice(c.Request.Context(), middleware.TenantID(c), id, req.input())
	if err != nil {
		respond.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) DeleteInvoice(c *gin.Context) {
	id, ok := respond.ParamUUID(c, "id")
	if !ok {
		return
	}
	if err := h.catalog.DeleteInvoice(c.Request.Context(), middleware.TenantID(c), middleware.UserID(c), id); err != nil {
		respond.Error(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// SendInvoice delivers by email unless the body picks sms or whatsapp.
func (h *Handler) SendInvoice(c *gin.Context) {
	id, ok := respond.ParamUUID(c, "id")
	if !ok {
		return
	}
	var req SendInvoiceRequest
	if c.Request.ContentLength > 0 && !h.bind(c, &req) {
		return
	}
	out, err := h.catalog.SendInvoice(c.Request.Context(), middleware.TenantID(c), middleware.UserID(c), id, req.Channel)
	if err != nil {
		respond.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) Summary(c *gin.Context) {
	out, err := h.catalog.Summary(c.Request.Context(), middleware.TenantID(c))
	if err != nil {
		respond.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// ExportInvoices streams every invoice as CSV.
func (h *Handler) ExportInvoices(c *gin.Context) {
	filename := fmt.Sprintf("invoices-%s.csv", time.Now().Format("20060102"))
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Status(http.StatusOK)

	if err := h.catalog.ExportInvoices(c.Request.Context(), middleware.TenantID(c), c.Writer); err != nil {
		h.log.Error("invoice export failed", "error", err)
	}
}
