package users

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"invoicing-app/internal/app/entitlement"
	"invoicing-app/internal/app/http/middleware"
	"invoicing-app/internal/app/http/respond"
	"invoicing-app/internal/app/tenancy"
	"invoicing-app/internal/domain/tenants"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Tenants interface {
	Get(ctx context.Context, tenantID uuid.UUID) (*tenants.Tenant, error)
	Onboard(ctx context.Context, in tenancy.OnboardInput) (*tenancy.Onboarded, error)
}

type Entitlements interface {
	Snapshot(ctx context.Context, tenantID uuid.UUID) (*entitlement.Snapshot, error)
}

type Handler struct {
	tenants      Tenants
	entitlements Entitlements
	log          *slog.Logger
	now          func() time.Time
}

func NewHandler(t Tenants, e Entitlements, log *slog.Logger) *Handler {
	return &Handler{tenants: t, entitlements: e, log: log, now: time.Now}
}

// GetCurrentUser describes the caller, their business and its billing state.
// Users that have not onboarded get only the user block.
func (h *Handler) GetCurrentUser(c *gin.Context) {
	userID := middleware.UserID(c)
	if userID == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	resp := MeResponse{
		User: UserDTO{
			ID:    *userID,
			Email: middleware.Email(c),
			Role:  c.GetString(middleware.KeyRole),
		},
	}

	tenantID := middleware.TenantID(c)
	if tenantID == uuid.Nil {
		c.JSON(http.StatusOK, resp)
		return
	}

	tenant, err := h.tenants.Get(c.Request.Context(), tenantID)
	if err != nil {
		respond.Error(c, h.log, err)
		return
	}
	resp.Tenant = BuildTenantDTO(tenant)

	snap, err := h.entitlements.Snapshot(c.Request.Context(), tenantID)
	if err != nil {
		respond.Error(c, h.log, err)
		return
	}
	now := h.now()
	resp.Billing = &BillingDTO{
		Plan:         BuildPlanDTO(snap.Plan),
		Subscription: BuildSubscriptionDTO(snap.Subscription),
		Trial:        BuildTrialDTO(now, snap.Subscription),
		Usage:        snap.Usage,
	}
	resp.Access = &AccessDTO{
		State:    string(snap.Access.State),
		Features: snap.Access.Features,
	}

	c.JSON(http.StatusOK, resp)
}

// Onboard creates the caller's business and starts its trial.
func (h *Handler) Onboard(c *gin.Context) {
	userID := middleware.UserID(c)
	if userID == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var body struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Phone    string `json:"phone"`
		Currency string `json:"currency"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		respond.BadRequest(c, "Invalid request body")
		return
	}
	if body.Email == "" {
		body.Email = middleware.Email(c)
	}

	out, err := h.tenants.Onboard(c.Request.Context(), tenancy.OnboardInput{
		OwnerUserID: *userID,
		Name:        body.Name,
		Email:       body.Email,
		Phone:       body.Phone,
		Currency:    body.Currency,
	})
	if err != nil {
		respond.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, out)
}
