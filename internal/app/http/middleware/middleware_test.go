package middleware

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"invoicing-app/internal/apperr"
	"invoicing-app/internal/domain/plans"
	"invoicing-app/internal/domain/tenants"
	"invoicing-app/internal/infra/logger"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "test-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

func sign(t *testing.T, key string, claims Claims) string {
	t.Helper()
	if claims.ExpiresAt == nil {
		claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(time.Hour))
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(key))
	require.NoError(t, err)
	return s
}

func do(r http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	userID, tenantID := uuid.New(), uuid.New()

	r := gin.New()
	r.GET("/me", AuthMiddleware(secret), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"user":   UserID(c).String(),
			"tenant": TenantID(c).String(),
			"email":  Email(c),
		})
	})

	t.Run("valid token", func(t *testing.T) {
		tok := sign(t, secret, Claims{UserID: userID.String(), TenantID: tenantID.String(), Email: "owner@acme.test"})
		w := do(r, http.MethodGet, "/me", tok, "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), userID.String())
		assert.Contains(t, w.Body.String(), tenantID.String())
		assert.Contains(t, w.Body.String(), "owner@acme.test")
	})

	t.Run("token without tenant", func(t *testing.T) {
		tok := sign(t, secret, Claims{UserID: userID.String()})
		w := do(r, http.MethodGet, "/me", tok, "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), uuid.Nil.String())
	})

	t.Run("missing header", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, do(r, http.MethodGet, "/me", "", "").Code)
	})

	t.Run("wrong key", func(t *testing.T) {
		tok := sign(t, "other", Claims{UserID: userID.String()})
		assert.Equal(t, http.StatusUnauthorized, do(r, http.MethodGet, "/me", tok, "").Code)
	})

	t.Run("expired", func(t *testing.T) {
		claims := Claims{UserID: userID.String()}
		claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))
		tok := sign(t, secret, claims)
		assert.Equal(t, http.StatusUnauthorized, do(r, http.MethodGet, "/me", tok, "").Code)
	})

	t.Run("user id is not a uuid", func(t *testing.T) {
		tok := sign(t, secret, Claims{UserID: "42"})
		assert.Equal(t, http.StatusUnauthorized, do(r, http.MethodGet, "/me", tok, "").Code)
	})
}

func TestRequireRole(t *testing.T) {
	r := gin.New()
	r.GET("/admin", AuthMiddleware(secret), RequireRole("admin"), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	admin := sign(t, secret, Claims{UserID: uuid.NewString(), Role: "admin"})
	owner := sign(t, secret, Claims{UserID: uuid.NewString(), Role: "owner"})

	assert.Equal(t, http.StatusNoContent, do(r, http.MethodGet, "/admin", admin, "").Code)
	assert.Equal(t, http.StatusForbidden, do(r, http.MethodGet, "/admin", owner, "").Code)
}

func TestSanitizeNestedBody(t *testing.T) {
	r := gin.New()
	r.Use(SanitizeAndCleanInputMiddleware())
	r.POST("/echo", func(c *gin.Context) {
		b, _ := io.ReadAll(c.Request.Body)
		c.String(http.StatusOK, string(b))
	})

	w := do(r, http.MethodPost, "/echo", "",
		`{"name":"<b>Acme</b>","lines":[{"description":"<script>x()</script>Design","quantity":2.50}]}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"name":"Acme"`)
	assert.Contains(t, w.Body.String(), `"description":"Design"`)
	assert.Contains(t, w.Body.String(), `"quantity":2.50`)

	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodPost, "/echo", "", `{"name":`).Code)
	assert.Equal(t, http.StatusOK, do(r, http.MethodPost, "/echo", "", "").Code)
}

type fakeGuard struct {
	status tenants.Status
}

func (g fakeGuard) RequireActive(_ context.Context, id uuid.UUID) (*tenants.Tenant, error) {
	if g.status != tenants.StatusActive {
		return nil, apperr.New(apperr.Forbidden, "Your account is suspended")
	}
	return &tenants.Tenant{ID: id, Status: g.status}, nil
}

type fakeGate map[plans.Feature]bool

func (g fakeGate) RequireFeature(_ context.Context, _ uuid.UUID, f plans.Feature) error {
	if !g[f] {
		return apperr.New(apperr.FeatureUnavailable, "upgrade")
	}
	return nil
}

func TestRequireActiveTenant(t *testing.T) {
	build := func(status tenants.Status) *gin.Engine {
		r := gin.New()
		r.GET("/x", AuthMiddleware(secret), RequireActiveTenant(fakeGuard{status}, logger.Discard()), func(c *gin.Context) {
			c.String(http.StatusOK, Tenant(c).ID.String())
		})
		return r
	}
	tenantID := uuid.New()
	tok := sign(t, secret, Claims{UserID: uuid.NewString(), TenantID: tenantID.String()})

	w := do(build(tenants.StatusActive), http.MethodGet, "/x", tok, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, tenantID.String(), w.Body.String())

	assert.Equal(t, http.StatusForbidden, do(build(tenants.StatusSuspended), http.MethodGet, "/x", tok, "").Code)

	noTenant := sign(t, secret, Claims{UserID: uuid.NewString()})
	assert.Equal(t, http.StatusForbidden, do(build(tenants.StatusActive), http.MethodGet, "/x", noTenant, "").Code)
}

func TestRequireFeature(t *testing.T) {
	r := gin.New()
	gate := fakeGate{plans.FeatureReporting: true}
	tok := sign(t, secret, Claims{UserID: uuid.NewString(), TenantID: uuid.NewString()})
	r.GET("/reports", AuthMiddleware(secret), RequireFeature(gate, plans.FeatureReporting, logger.Discard()), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	r.GET("/export", AuthMiddleware(secret), RequireFeature(gate, plans.FeatureExportData, logger.Discard()), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/reports", tok, "").Code)
	w := do(r, http.MethodGet, "/export", tok, "")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), string(apperr.FeatureUnavailable))
}
