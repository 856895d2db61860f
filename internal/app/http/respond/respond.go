// Package respond turns service results into gin JSON responses.
package respond

import (
	"log/slog"
	"net/http"
	"strconv"

	"invoicing-app/internal/apperr"
	"invoicing-app/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

var statusByKind = map[apperr.Kind]int{
	apperr.Validation:                  http.StatusBadRequest,
	apperr.SignatureInvalid:            http.StatusBadRequest,
	apperr.GatewayReportedFailure:      http.StatusBadRequest,
	apperr.PaymentNotSuccessful:        http.StatusBadRequest,
	apperr.Unauthorized:                http.StatusUnauthorized,
	apperr.Forbidden:                   http.StatusForbidden,
	apperr.LimitReached:                http.StatusForbidden,
	apperr.FeatureUnavailable:          http.StatusForbidden,
	apperr.NoSubscription:              http.StatusForbidden,
	apperr.NotFound:                    http.StatusNotFound,
	apperr.PaymentRecordNotFound:       http.StatusNotFound,
	apperr.Conflict:                    http.StatusConflict,
	apperr.AlreadyOnboarded:            http.StatusConflict,
	apperr.AlreadyCanceled:             http.StatusConflict,
	apperr.NotScheduledForCancellation: http.StatusConflict,
	apperr.GatewayUnreachable:          http.StatusBadGateway,
	apperr.Internal:                    http.StatusInternalServerError,
}

// Status returns the HTTP status for an error kind.
func Status(kind apperr.Kind) int {
	if code, ok := statusByKind[kind]; ok {
		return code
	}
	return http.StatusInternalServerError
}

// Error aborts the request with the JSON body for err. Anything that is not
// an *apperr.Error is logged and answered with a generic 500.
func Error(c *gin.Context, log *slog.Logger, err error) {
	ae, ok := apperr.As(err)
	if !ok || ae.Kind == apperr.Internal {
		log.Error("request failed",
			slog.String("method", c.Request.Method),
			slog.String("path", c.FullPath()),
			slog.Any("error", err),
		)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error": "Something went wrong. Please try again.",
			"code":  apperr.Internal,
		})
		return
	}

	status := Status(ae.Kind)
	if status >= http.StatusInternalServerError {
		log.Warn("upstream failure", slog.String("path", c.FullPath()), slog.Any("error", err))
	}

	body := gin.H{"error": ae.Message, "code": ae.Kind}
	if ae.Kind == apperr.LimitReached {
		body["limit"] = ae.Limit
		body["current"] = ae.Current
	}
	c.AbortWithStatusJSON(status, body)
}

// ParamUUID reads a path parameter as a uuid and answers 400 when it is not one.
func ParamUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error": "Invalid " + name,
			"code":  apperr.Validation,
		})
		return uuid.Nil, false
	}
	return id, true
}

// Page reads ?limit=&offset= with the store's clamping.
func Page(c *gin.Context) store.Page {
	limit, _ := strconv.Atoi(c.Query("limit"))
	offset, _ := strconv.Atoi(c.Query("offset"))
	return store.Page{Limit: limit, Offset: offset}.Normalize()
}

// BadRequest answers a malformed body.
func BadRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": msg, "code": apperr.Validation})
}
