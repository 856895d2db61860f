package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"invoicing-app/internal/app/http/respond"
	"invoicing-app/internal/domain/plans"
	"invoicing-app/internal/domain/tenants"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const KeyTenant = "tenant"

type TenantGuard interface {
	RequireActive(ctx context.Context, tenantID uuid.UUID) (*tenants.Tenant, error)
}

type FeatureGate interface {
	RequireFeature(ctx context.Context, tenantID uuid.UUID, f plans.Feature) error
}

// RequireActiveTenant rejects tokens without a tenant and tenants that are
// not ACTIVE. The loaded tenant is stored under KeyTenant.
func RequireActiveTenant(guard TenantGuard, log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		tenantID := TenantID(c)
		if tenantID == uuid.Nil {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": "Complete onboarding to access your business",
				"code":  "forbidden",
			})
			return
		}

		tenant, err := guard.RequireActive(c.Request.Context(), tenantID)
		if err != nil {
			respond.Error(c, log, err)
			return
		}
		c.Set(KeyTenant, tenant)
		c.Next()
	}
}

// RequireFeature lets the request through only when the tenant's plan, or a
// running trial, enables f.
func RequireFeature(gate FeatureGate, f plans.Feature, log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := gate.RequireFeature(c.Request.Context(), TenantID(c), f); err != nil {
			respond.Error(c, log, err)
			return
		}
		c.Next()
	}
}

// Tenant returns the tenant loaded by RequireActiveTenant.
func Tenant(c *gin.Context) *tenants.Tenant {
	v, ok := c.Get(KeyTenant)
	if !ok {
		return nil
	}
	return v.(*tenants.Tenant)
}
