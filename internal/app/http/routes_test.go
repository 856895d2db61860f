package routes

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"invoicing-app/internal/app/apptest"
	"invoicing-app/internal/app/audit"
	"invoicing-app/internal/app/catalog"
	"invoicing-app/internal/app/entitlement"
	"invoicing-app/internal/app/http/middleware"
	"invoicing-app/internal/app/notify/notifytest"
	"invoicing-app/internal/app/payments"
	"invoicing-app/internal/app/receipts"
	"invoicing-app/internal/app/reconcile"
	"invoicing-app/internal/app/subscription"
	"invoicing-app/internal/app/tenancy"
	"invoicing-app/internal/domain/plans"
	"invoicing-app/internal/infra/gateway"
	"invoicing-app/internal/infra/gateway/gatewaytest"
	"invoicing-app/internal/infra/logger"
	"invoicing-app/internal/store/memstore"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const jwtSecret = "routes-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

type server struct {
	router *gin.Engine
	store  *memstore.Store
	gw     *gatewaytest.Fake
	notes  *notifytest.Recorder
	plan   *plans.Plan
	tenant apptest.Tenant
}

func newServer(t *testing.T, tweak func(*plans.Plan)) *server {
	t.Helper()
	s := memstore.New()
	plan := apptest.Plan("pro", 5000)
	plan.IsDefault = true
	plan.TrialDays = 7
	if tweak != nil {
		tweak(plan)
	}
	apptest.SeedPlan(t, s, plan)

	log := logger.Discard()
	gw := gatewaytest.New("whsec")
	notes := &notifytest.Recorder{}
	rec := audit.NewRecorder(s)
	ten := tenancy.NewService(s, rec, log)
	eng := entitlement.New(s)
	reconciler := reconcile.New(s, gw, receipts.NewIssuer(), rec, notes, log)
	callback := "https://app.test/payments/callback"

	r := gin.New()
	RegisterRoutes(r, Deps{
		JWTSecret:     jwtSecret,
		Log:           log,
		Tenants:       ten,
		Entitlement:   eng,
		Subscriptions: subscription.NewService(s, gw, reconciler, rec, callback, log),
		Catalog: catalog.NewService(catalog.Deps{
			Store:       s,
			Tenants:     ten,
			Entitlement: eng,
			Audit:       rec,
			Notifier:    notes,
			AppURL:      "https://app.test",
			Log:         log,
		}),
		Payments:   payments.NewService(s, gw, reconciler, ten, callback, log),
		Receipts:   receipts.NewService(s, receipts.NewIssuer(), rec, log),
		Reconciler: reconciler,
		Audit:      rec,
	})

	return &server{
		router: r,
		store:  s,
		gw:     gw,
		notes:  notes,
		plan:   plan,
		tenant: apptest.SeedTenant(t, s, plan),
	}
}

func token(t *testing.T, userID uuid.UUID, tenantID *uuid.UUID, role string) string {
	t.Helper()
	claims := middleware.Claims{UserID: userID.String(), Role: role, Email: "owner@acme.test"}
	if tenantID != nil {
		claims.TenantID = tenantID.String()
	}
	claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(time.Hour))
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(jwtSecret))
	require.NoError(t, err)
	return s
}

func (s *server) ownerToken(t *testing.T) string {
	id := s.tenant.ID()
	return token(t, s.tenant.Owner, &id, "owner")
}

func (s *server) do(method, path, tok string, body any, headers ...string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case []byte:
		buf.Write(b)
	default:
		_ = json.NewEncoder(&buf).Encode(b)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func object(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func list(t *testing.T, w *httptest.ResponseRecorder) []map[string]any {
	t.Helper()
	var out []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestHealthAndAuth(t *testing.T) {
	s := newServer(t, nil)

	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/health", "", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodGet, "/customers", "", nil).Code)

	plansList := list(t, s.do(http.MethodGet, "/plans", "", nil))
	require.Len(t, plansList, 1)
	assert.Equal(t, "pro", plansList[0]["code"])
}

func TestOnboarding(t *testing.T) {
	s := newServer(t, nil)
	user := uuid.New()
	tok := token(t, user, nil, "owner")

	assert.Equal(t, http.StatusForbidden, s.do(http.MethodGet, "/customers", tok, nil).Code)

	w := s.do(http.MethodPost, "/onboarding", tok, map[string]any{"name": "Globex", "currency": "ngn"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	out := object(t, w)
	tenant := out["tenant"].(map[string]any)
	sub := out["subscription"].(map[string]any)
	assert.Equal(t, "Globex", tenant["name"])
	assert.Equal(t, "owner@acme.test", tenant["email"])
	assert.Equal(t, "TRIALING", sub["status"])

	w = s.do(http.MethodPost, "/onboarding", tok, map[string]any{"name": "Globex again"})
	assert.Equal(t, http.StatusConflict, w.Code)

	tenantID := uuid.MustParse(tenant["id"].(string))
	tok = token(t, user, &tenantID, "owner")

	me := object(t, s.do(http.MethodGet, "/me", tok, nil))
	assert.Equal(t, "Globex", me["tenant"].(map[string]any)["name"])
	assert.Equal(t, "trial", me["access"].(map[string]any)["state"])
	assert.Equal(t, true, me["billing"].(map[string]any)["trial"].(map[string]any)["active"])

	// the trial unlocks features the plan itself leaves off
	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/reports/summary", tok, nil).Code)
}

func TestInvoicePaidByWebhook(t *testing.T) {
	s := newServer(t, nil)
	tok := s.ownerToken(t)

	w := s.do(http.MethodPost, "/customers", tok, map[string]any{"name": "Initech", "email": "ap@initech.test"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	customerID := object(t, w)["id"].(string)

	w = s.do(http.MethodPost, "/invoices", tok, map[string]any{
		"customer_id": customerID,
		"due_date":    "2026-12-31",
		"lines": []map[string]any{
			{"description": "Consulting", "quantity": 1, "unit_price": "15000", "tax_rate": "7.5"},
		},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	inv := object(t, w)
	invoiceID := inv["id"].(string)
	assert.Equal(t, "16125", inv["total"])
	assert.Equal(t, "INV-0001", inv["invoice_number"])

	w = s.do(http.MethodPost, "/invoices/"+invoiceID+"/payment-link", tok, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	reference := object(t, w)["reference"].(string)

	txn := gateway.Transaction{
		Reference:   reference,
		Status:      gateway.StatusSuccess,
		AmountMinor: 1612500,
		Currency:    "NGN",
		Channel:     "card",
	}
	s.gw.Settle(txn)
	body, sig := s.gw.SignedWebhook(gateway.EventChargeSuccess, txn)

	w = s.do(http.MethodPost, "/webhooks/payments", "", body, "X-Signature", sig)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, string(reconcile.OutcomeApplied), object(t, w)["outcome"])

	// redelivery is acknowledged and changes nothing
	w = s.do(http.MethodPost, "/webhooks/payments", "", body, gatewaytest.SignatureHeader, sig)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, string(reconcile.OutcomeAlreadyReconciled), object(t, w)["outcome"])

	got := object(t, s.do(http.MethodGet, "/invoices/"+invoiceID, tok, nil))
	assert.Equal(t, "PAID", got["payment_status"])
	assert.Equal(t, "SENT", got["status"])

	w = s.do(http.MethodGet, "/invoices/"+invoiceID+"/verify-payment?reference="+reference, tok, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	verified := object(t, w)
	assert.Equal(t, true, verified["success"])
	assert.Equal(t, "success", verified["payment"].(map[string]any)["status"])
	assert.Equal(t, 0, s.gw.VerifyCalls(reference))

	recs := list(t, s.do(http.MethodGet, "/receipts", tok, nil))
	require.Len(t, recs, 1)
	assert.Equal(t, "REC-0001", recs[0]["receipt_number"])

	w = s.do(http.MethodPut, "/invoices/"+invoiceID, tok, map[string]any{"notes": "late edit"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, http.StatusConflict, s.do(http.MethodDelete, "/invoices/"+invoiceID, tok, nil).Code)
	assert.Equal(t, http.StatusConflict, s.do(http.MethodPost, "/invoices/"+invoiceID+"/payment-link", tok, nil).Code)

	assert.Len(t, s.notes.Sent(), 1)
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	s := newServer(t, nil)
	body, _ := s.gw.SignedWebhook(gateway.EventChargeSuccess, gateway.Transaction{Reference: "INV-123"})

	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodPost, "/webhooks/payments", "", body).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodPost, "/webhooks/payments", "", body, "X-Signature", "deadbeef").Code)
}

func TestPaymentCallbackUnknownReference(t *testing.T) {
	s := newServer(t, nil)

	w := s.do(http.MethodGet, "/payments/callback?reference=nope", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodGet, "/payments/callback", "", nil).Code)
}

// openInvoice creates a customer and a 16125 invoice and returns the invoice id.
func (s *server) openInvoice(t *testing.T, tok string) string {
	t.Helper()
	w := s.do(http.MethodPost, "/customers", tok, map[string]any{
		"name":    "Initech",
		"email":   "ap@initech.test",
		"address": "12 Marina Road Lagos",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = s.do(http.MethodPost, "/invoices", tok, map[string]any{
		"customer_id": object(t, w)["id"],
		"lines": []map[string]any{
			{"description": "Consulting", "quantity": 1, "unit_price": "15000", "tax_rate": "7.5"},
		},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return object(t, w)["id"].(string)
}

func TestPaymentCallbackHidesPayerDetails(t *testing.T) {
	s := newServer(t, nil)
	tok := s.ownerToken(t)
	invoiceID := s.openInvoice(t, tok)

	w := s.do(http.MethodPost, "/invoices/"+invoiceID+"/payment-link", tok, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	reference := object(t, w)["reference"].(string)

	s.gw.Settle(gateway.Transaction{
		Reference:   reference,
		Status:      gateway.StatusSuccess,
		AmountMinor: 1612500,
		Currency:    "NGN",
		Channel:     "card",
		Authorization: map[string]any{
			"authorization_code": "AUTH_reusable",
			"last4":              "4081",
		},
	})

	w = s.do(http.MethodGet, "/payments/callback?reference="+reference, "", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	out := object(t, w)
	assert.Equal(t, true, out["success"])
	assert.Equal(t, "success", out["status"])
	assert.Equal(t, "INV-0001", out["invoice_number"])
	assert.Equal(t, "REC-0001", out["receipt_number"])
	assert.Equal(t, "16125", out["amount"])

	raw := w.Body.String()
	assert.NotContains(t, raw, "gateway_data")
	assert.NotContains(t, raw, "AUTH_reusable")
	assert.NotContains(t, raw, "ap@initech.test")
	assert.NotContains(t, raw, "Marina")

	// the tenant's own payment history does not carry card data either
	assert.NotContains(t, s.do(http.MethodGet, "/payments", tok, nil).Body.String(), "AUTH_reusable")
}

func TestInvoiceWithOpenPaymentLinkCannotBeDeleted(t *testing.T) {
	s := newServer(t, nil)
	tok := s.ownerToken(t)
	invoiceID := s.openInvoice(t, tok)

	require.Equal(t, http.StatusCreated, s.do(http.MethodPost, "/invoices/"+invoiceID+"/payment-link", tok, nil).Code)

	w := s.do(http.MethodDelete, "/invoices/"+invoiceID, tok, nil)
	assert.Equal(t, http.StatusConflict, w.Code, w.Body.String())
	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/invoices/"+invoiceID, tok, nil).Code)
}

func TestWebhookWithoutReferenceIsAcknowledged(t *testing.T) {
	s := newServer(t, nil)
	body, sig := s.gw.SignedWebhook(gateway.EventChargeSuccess, gateway.Transaction{Status: gateway.StatusSuccess})

	w := s.do(http.MethodPost, "/webhooks/payments", "", body, gatewaytest.SignatureHeader, sig)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, string(reconcile.OutcomeUnknownReference), object(t, w)["outcome"])
}

func TestLimitReachedResponse(t *testing.T) {
	s := newServer(t, func(p *plans.Plan) { p.MaxCustomers = 1 })
	tok := s.ownerToken(t)

	require.Equal(t, http.StatusCreated, s.do(http.MethodPost, "/customers", tok, map[string]any{"name": "One"}).Code)

	w := s.do(http.MethodPost, "/customers", tok, map[string]any{"name": "Two"})
	require.Equal(t, http.StatusForbidden, w.Code)
	out := object(t, w)
	assert.Equal(t, "limit_reached", out["code"])
	assert.EqualValues(t, 1, out["limit"])
	assert.EqualValues(t, 1, out["current"])
}

func TestFeatureGatedRoutes(t *testing.T) {
	s := newServer(t, nil)
	tok := s.ownerToken(t)

	assert.Equal(t, http.StatusForbidden, s.do(http.MethodGet, "/reports/summary", tok, nil).Code)
	assert.Equal(t, http.StatusForbidden, s.do(http.MethodGet, "/invoices/export", tok, nil).Code)

	s = newServer(t, func(p *plans.Plan) { p.CanExportData = true })
	w := s.do(http.MethodGet, "/invoices/export", s.ownerToken(t), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/csv")
	assert.Contains(t, w.Body.String(), "invoice_number")
}

func TestAdminSuspendsTenant(t *testing.T) {
	s := newServer(t, nil)
	tok := s.ownerToken(t)
	admin := token(t, uuid.New(), nil, "admin")
	path := "/admin/tenants/" + s.tenant.ID().String()

	assert.Equal(t, http.StatusForbidden, s.do(http.MethodPost, path+"/suspend", tok, nil).Code)

	w := s.do(http.MethodPost, path+"/suspend", admin, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "SUSPENDED", object(t, w)["status"])
	assert.Equal(t, http.StatusForbidden, s.do(http.MethodGet, "/customers", tok, nil).Code)

	require.Equal(t, http.StatusOK, s.do(http.MethodPost, path+"/activate", admin, nil).Code)
	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/customers", tok, nil).Code)

	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodPost, "/admin/tenants/not-a-uuid/suspend", admin, nil).Code)
}

func TestCancelAndReactivate(t *testing.T) {
	s := newServer(t, nil)
	tok := s.ownerToken(t)

	w := s.do(http.MethodPost, "/subscription/cancel", tok, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	sub := object(t, w)["subscription"].(map[string]any)
	assert.Equal(t, true, sub["cancel_at_period_end"])
	assert.Equal(t, "ACTIVE", sub["status"])

	w = s.do(http.MethodPost, "/subscription/reactivate", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, object(t, w)["subscription"].(map[string]any)["cancel_at_period_end"])

	w = s.do(http.MethodPost, "/subscription/reactivate", tok, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "not_scheduled_for_cancellation", object(t, w)["code"])
}

func TestUpgradeRejectsDowngradeOverHTTP(t *testing.T) {
	s := newServer(t, nil)
	cheaper := apptest.Plan("starter", 3000)
	apptest.SeedPlan(t, s.store, cheaper)

	w := s.do(http.MethodPost, "/subscription/upgrade", s.ownerToken(t), map[string]any{"plan_id": cheaper.ID.String()})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, s.gw.Initialized())

	w = s.do(http.MethodPost, "/subscription/upgrade", s.ownerToken(t), map[string]any{"plan_id": "nope"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTenantIsolation(t *testing.T) {
	s := newServer(t, nil)
	other := apptest.SeedTenant(t, s.store, s.plan)
	customer := apptest.SeedCustomer(t, s.store, other.ID(), "x@other.test")
	inv := apptest.SeedInvoice(t, s.store, other.ID(), customer.ID, "INV-0001", 100)

	tok := s.ownerToken(t)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, "/invoices/"+inv.ID.String(), tok, nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, "/customers/"+customer.ID.String(), tok, nil).Code)
	assert.Empty(t, list(t, s.do(http.MethodGet, "/invoices", tok, nil)))
}
