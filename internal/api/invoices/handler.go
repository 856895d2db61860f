// Package invoices serves the tenant's customers, items, invoices, receipts
// and audit trail.
package invoices

import (
	"log/slog"
	"net/http"

	"invoicing-app/internal/app/audit"
	"invoicing-app/internal/app/catalog"
	"invoicing-app/internal/app/http/middleware"
	"invoicing-app/internal/app/http/respond"
	"invoicing-app/internal/app/receipts"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	catalog  *catalog.Service
	receipts *receipts.Service
	audit    *audit.Recorder
	log      *slog.Logger
}

func NewHandler(c *catalog.Service, r *receipts.Service, a *audit.Recorder, log *slog.Logger) *Handler {
	return &Handler{catalog: c, receipts: r, audit: a, log: log}
}

func (h *Handler) bind(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		respond.BadRequest(c, "Invalid request body")
		return false
	}
	return true
}

// ListAuditLogs returns the tenant's trail, newest first.
func (h *Handler) ListAuditLogs(c *gin.Context) {
	logs, err := h.audit.List(c.Request.Context(), middleware.TenantID(c), respond.Page(c))
	if err != nil {
		respond.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, logs)
}
