package plans

import (
	"context"
	"log/slog"
	"net/http"

	"invoicing-app/internal/app/http/respond"
	"invoicing-app/internal/domain/plans"

	"github.com/gin-gonic/gin"
)

type Catalog interface {
	Plans(ctx context.Context) ([]plans.Plan, error)
}

type Handler struct {
	catalog Catalog
	log     *slog.Logger
}

func NewHandler(c Catalog, log *slog.Logger) *Handler {
	return &Handler{catalog: c, log: log}
}

// ListPlans returns the active plans, cheapest first.
func (h *Handler) ListPlans(c *gin.Context) {
	list, err := h.catalog.Plans(c.Request.Context())
	if err != nil {
		respond.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, list)
}
