package billing

import (
	"net/http"

	"invoicing-app/internal/app/http/middleware"
	"invoicing-app/internal/app/http/respond"

	"github.com/gin-gonic/gin"
)

// GetSubscription returns the plan, usage and feature map shown on the
// billing page.
func (h *Handler) GetSubscription(c *gin.Context) {
	snap, err := h.entitlement.Snapshot(c.Request.Context(), middleware.TenantID(c))
	if err != nil {
		respond.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

// VerifyUpgrade is hit after the hosted checkout redirects back. Refreshing
// the page is safe.
func (h *Handler) VerifyUpgrade(c *gin.Context) {
	sub, err := h.subs.ConfirmUpgrade(c.Request.Context(), middleware.TenantID(c), c.Query("reference"))
	if err != nil {
		respond.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "subscription": sub})
}
