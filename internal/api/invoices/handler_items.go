package invoices

import (
	"net/http"

	"invoicing-app/internal/app/http/middleware"
	"invoicing-app/internal/app/http/respond"

	"github.com/gin-gonic/gin"
)

func (h *Handler) CreateItem(c *gin.Context) {
	var req ItemRequest
	if !h.bind(c, &req) {
		return
	}
	out, err := h.catalog.CreateItem(c.Request.Context(), middleware.TenantID(c), req.input())
	if err != nil {
		respond.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, out)
}

func (h *Handler) ListItems(c *gin.Context) {
	out, err := h.catalog.ListItems(c.Request.Context(), middleware.TenantID(c), respond.Page(c))
	if err != nil {
		respond.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) GetItem(c *gin.Context) {
	id, ok := respond.ParamUUID(c, "id")
	if !ok {
		return
	}
	out, err := h.catalog.GetItem(c.Request.Context(), middleware.TenantID(c), id)
	if err != nil {
		respond.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) UpdateItem(c *gin.Context) {
	id, ok := respond.ParamUUID(c, "id")
	if !ok {
		return
	}
	var req ItemRequest
	if !h.bind(c, &req) {
		return
	}
	out, err := h.catalog.UpdateItem(c.Request.Context(), middleware.TenantID(c), id, req.input())
	if err != nil {
		respond.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) DeleteItem(c *gin.Context) {
	id, ok := respond.ParamUUID(c, "id")
	if !ok {
		return
	}
	if err := h.catalog.DeleteItem(c.Request.Context(), middleware.TenantID(c), id); err != nil {
		respond.Error(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}
