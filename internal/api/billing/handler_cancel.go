package billing

import (
	"net/http"

	"invoicing-app/internal/app/http/middleware"
	"invoicing-app/internal/app/http/respond"

	"github.com/gin-gonic/gin"
)

// CancelSubscription keeps access until the current period ends.
func (h *Handler) CancelSubscription(c *gin.Context) {
	sub, err := h.subs.Cancel(c.Request.Context(), middleware.TenantID(c), middleware.UserID(c))
	if err != nil {
		respond.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":      "Subscription will end at the close of the current period",
		"subscription": sub,
	})
}

func (h *Handler) ReactivateSubscription(c *gin.Context) {
	sub, err := h.subs.Reactivate(c.Request.Context(), middleware.TenantID(c), middleware.UserID(c))
	if err != nil {
		respond.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":      "Subscription reactivated",
		"subscription": sub,
	})
}
