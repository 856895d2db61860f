package billing

import (
	"net/http"

	"invoicing-app/internal/app/http/middleware"
	"invoicing-app/internal/app/http/respond"
	"invoicing-app/internal/app/subscription"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ChangePlan opens a checkout for an upgrade. Downgrades go through support.
func (h *Handler) ChangePlan(c *gin.Context) {
	var body struct {
		PlanID string `json:"plan_id"`
		Email  string `json:"email"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		respond.BadRequest(c, "Missing or invalid plan_id")
		return
	}
	planID, err := uuid.Parse(body.PlanID)
	if err != nil {
		respond.BadRequest(c, "Missing or invalid plan_id")
		return
	}

	email := body.Email
	if email == "" {
		email = middleware.Email(c)
	}
	if email == "" {
		if t := middleware.Tenant(c); t != nil {
			email = t.Email
		}
	}

	checkout, err := h.subs.InitiateUpgrade(c.Request.Context(), middleware.TenantID(c), subscription.UpgradeRequest{
		PlanID: planID,
		Email:  email,
		UserID: middleware.UserID(c),
	})
	if err != nil {
		respond.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, checkout)
}
