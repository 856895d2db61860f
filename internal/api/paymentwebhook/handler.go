// Package paymentwebhook receives signed payment notifications from the
// configured gateway.
package paymentwebhook

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"invoicing-app/internal/apperr"
	"invoicing-app/internal/app/reconcile"

	"github.com/gin-gonic/gin"
)

const (
	maxBodyBytes = 65536

	// SignatureHeader is accepted alongside the gateway's own header.
	SignatureHeader = "X-Signature"
)

type Reconciler interface {
	HandleWebhook(ctx context.Context, body []byte, signature string) (*reconcile.Result, error)
}

type Handler struct {
	rec           Reconciler
	gatewayHeader string
	log           *slog.Logger
}

func NewHandler(rec Reconciler, gatewayHeader string, log *slog.Logger) *Handler {
	return &Handler{rec: rec, gatewayHeader: gatewayHeader, log: log}
}

// Receive acknowledges every delivery whose signature and body check out,
// actionable or not. Only a failure to apply a valid event answers 500 so the
// gateway redelivers it.
func (h *Handler) Receive(c *gin.Context) {
	payload, err := readBody(c, maxBodyBytes)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Error reading request body"})
		return
	}

	signature := c.GetHeader(h.gatewayHeader)
	if signature == "" {
		signature = c.GetHeader(SignatureHeader)
	}

	res, err := h.rec.HandleWebhook(c.Request.Context(), payload, signature)
	if err != nil {
		switch apperr.KindOf(err) {
		case apperr.SignatureInvalid:
			h.log.Warn("webhook signature rejected", slog.String("ip", c.ClientIP()))
			c.JSON(http.StatusBadRequest, gin.H{"error": "Signature verification failed"})
		case apperr.Validation:
			c.JSON(http.StatusBadRequest, gin.H{"error": "Malformed webhook payload"})
		default:
			h.log.Error("webhook apply failed", slog.Any("error", err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Webhook could not be processed"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "received", "outcome": res.Outcome})
}

func readBody(c *gin.Context, maxBytes int64) ([]byte, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
	return io.ReadAll(c.Request.Body)
}
