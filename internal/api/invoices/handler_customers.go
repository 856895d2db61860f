package invoices

import (
	"net/http"

	"invoicing-app/internal/app/http/middleware"
	"invoicing-app/internal/app/http/respond"

	"github.com/gin-gonic/gin"
)

func (h *Handler) CreateCustomer(c *gin.Context) {
	var req CustomerRequest
	if !h.bind(c, &req) {
		return
	}
	out, err := h.catalog.CreateCustomer(c.Request.Context(), middleware.TenantID(c), req.input())
	if err != nil {
		respond.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, out)
}

func (h *Handler) ListCustomers(c *gin.Context) {
	out, err := h.catalog.ListCustomers(c.Request.Context(), middleware.TenantID(c), respond.Page(c))
	if err != nil {
		respond.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) GetCustomer(c *gin.Context) {
	id, ok := respond.ParamUUID(c, "id")
	if !ok {
		return
	}
	out, err := h.catalog.GetCustomer(c.Request.Context(), middleware.TenantID(c), id)
	if err != nil {
		respond.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) UpdateCustomer(c *gin.Context) {
	id, ok := respond.ParamUUID(c, "id")
	if !ok {
		return
	}
	var req CustomerRequest
	if !h.bind(c, &req) {
		return
	}
	out, err := h.catalog.UpdateCustomer(c.Request.Context(), middleware.TenantID(c), id, req.input())
	if err != nil {
		respond.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) DeleteCustomer(c *gin.Context) {
	id, ok := respond.ParamUUID(c, "id")
	if !ok {
		return
	}
	if err := h.catalog.DeleteCustomer(c.Request.Context(), middleware.TenantID(c), id); err != nil {
		respond.Error(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}
