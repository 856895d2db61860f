package admin

import (
	"context"
	"log/slog"
	"net/http"

	"invoicing-app/internal/app/http/middleware"
	"invoicing-app/internal/app/http/respond"
	"invoicing-app/internal/domain/tenants"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Tenants interface {
	Get(ctx context.Context, tenantID uuid.UUID) (*tenants.Tenant, error)
	Suspend(ctx context.Context, tenantID uuid.UUID, adminID *uuid.UUID) (*tenants.Tenant, error)
	Activate(ctx context.Context, tenantID uuid.UUID, adminID *uuid.UUID) (*tenants.Tenant, error)
}

type Handler struct {
	tenants Tenants
	log     *slog.Logger
}

func NewHandler(t Tenants, log *slog.Logger) *Handler {
	return &Handler{tenants: t, log: log}
}

func (h *Handler) GetTenant(c *gin.Context) {
	id, ok := respond.ParamUUID(c, "id")
	if !ok {
		return
	}
	t, err := h.tenants.Get(c.Request.Context(), id)
	if err != nil {
		respond.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

// SuspendTenant blocks every tenant-scoped route for the business.
func (h *Handler) SuspendTenant(c *gin.Context) {
	h.setStatus(c, h.tenants.Suspend)
}

func (h *Handler) ActivateTenant(c *gin.Context) {
	h.setStatus(c, h.tenants.Activate)
}

func (h *Handler) setStatus(c *gin.Context, fn func(context.Context, uuid.UUID, *uuid.UUID) (*tenants.Tenant, error)) {
	id, ok := respond.ParamUUID(c, "id")
	if !ok {
		return
	}
	t, err := fn(c.Request.Context(), id, middleware.UserID(c))
	if err != nil {
		respond.Error(c, h.log, err)
		return
	}
	h.log.Info("tenant status changed",
		slog.String("tenant_id", t.ID.String()),
		slog.String("status", string(t.Status)),
	)
	c.JSON(http.StatusOK, t)
}
