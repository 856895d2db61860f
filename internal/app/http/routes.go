package routes

import (
	"log/slog"
	"net/http"

	adminapi "invoicing-app/internal/api/admin"
	"invoicing-app/internal/api/billing"
	invoicesapi "invoicing-app/internal/api/invoices"
	"invoicing-app/internal/api/paymentwebhook"
	plansapi "invoicing-app/internal/api/plans"
	"invoicing-app/internal/api/users"
	"invoicing-app/internal/app/audit"
	"invoicing-app/internal/app/catalog"
	"invoicing-app/internal/app/entitlement"
	"invoicing-app/internal/app/http/middleware"
	"invoicing-app/internal/app/payments"
	"invoicing-app/internal/app/receipts"
	"invoicing-app/internal/app/reconcile"
	"invoicing-app/internal/app/subscription"
	"invoicing-app/internal/app/tenancy"
	"invoicing-app/internal/domain/plans"

	"github.com/gin-gonic/gin"
)

type Deps struct {
	JWTSecret string
	Log       *slog.Logger

	Tenants       *tenancy.Service
	Entitlement   *entitlement.Engine
	Subscriptions *subscription.Service
	Catalog       *catalog.Service
	Payments      *payments.Service
	Receipts      *receipts.Service
	Reconciler    *reconcile.Reconciler
	Audit         *audit.Recorder
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	webhooks := paymentwebhook.NewHandler(d.Reconciler, d.Reconciler.Gateway().SignatureHeader(), d.Log)
	billingH := billing.NewHandler(d.Subscriptions, d.Payments, d.Entitlement, d.Log)
	plansH := plansapi.NewHandler(d.Subscriptions, d.Log)
	usersH := users.NewHandler(d.Tenants, d.Entitlement, d.Log)
	invoicesH := invoicesapi.NewHandler(d.Catalog, d.Receipts, d.Audit, d.Log)
	adminH := adminapi.NewHandler(d.Tenants, d.Log)

	// Raw body: the signature covers the exact bytes.
	r.POST("/webhooks/payments", webhooks.Receive)
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	public := r.Group("/")
	public.Use(middleware.SanitizeAndCleanInputMiddleware())
	public.GET("/plans", plansH.ListPlans)
	public.GET("/payments/callback", billingH.PaymentCallback)

	// Authenticated
	auth := r.Group("/")
	auth.Use(middleware.AuthMiddleware(d.JWTSecret), middleware.SanitizeAndCleanInputMiddleware())
	auth.GET("/me", usersH.GetCurrentUser)
	auth.POST("/onboarding", usersH.Onboard)

	// Onboarded, active tenants
	tenant := auth.Group("/")
	tenant.Use(middleware.RequireActiveTenant(d.Tenants, d.Log))

	tenant.GET("/subscription", billingH.GetSubscription)
	tenant.POST("/subscription/cancel", billingH.CancelSubscription)
	tenant.POST("/subscription/reactivate", billingH.ReactivateSubscription)
	tenant.POST("/subscription/upgrade", billingH.ChangePlan)
	tenant.GET("/subscription/verify", billingH.VerifyUpgrade)

	tenant.GET("/customers", invoicesH.ListCustomers)
	tenant.POST("/customers", invoicesH.CreateCustomer)
	tenant.GET("/customers/:id", invoicesH.GetCustomer)
	tenant.PUT("/customers/:id", invoicesH.UpdateCustomer)
	tenant.DELETE("/customers/:id", invoicesH.DeleteCustomer)

	tenant.GET("/items", invoicesH.ListItems)
	tenant.POST("/items", invoicesH.CreateItem)
	tenant.GET("/items/:id", invoicesH.GetItem)
	tenant.PUT("/items/:id", invoicesH.UpdateItem)
	tenant.DELETE("/items/:id", invoicesH.DeleteItem)

	tenant.GET("/invoices", invoicesH.ListInvoices)
	tenant.POST("/invoices", invoicesH.CreateInvoice)
	tenant.GET("/invoices/export",
		middleware.RequireFeature(d.Entitlement, plans.FeatureExportData, d.Log),
		invoicesH.ExportInvoices)
	tenant.GET("/invoices/:id", invoicesH.GetInvoice)
	tenant.PUT("/invoices/:id", invoicesH.UpdateInvoice)
	tenant.DELETE("/invoices/:id", invoicesH.DeleteInvoice)
	tenant.POST("/invoices/:id/send", invoicesH.SendInvoice)
	tenant.POST("/invoices/:id/payment-link", billingH.CreatePaymentLink)
	tenant.GET("/invoices/:id/verify-payment", billingH.VerifyInvoicePayment)

	tenant.GET("/receipts", invoicesH.ListReceipts)
	tenant.POST("/receipts", invoicesH.CreateReceipt)
	tenant.GET("/receipts/:id", invoicesH.GetReceipt)
	tenant.PATCH("/receipts/:id", invoicesH.UpdateReceipt)

	tenant.GET("/payments", billingH.GetPaymentHistory)
	tenant.GET("/audit-logs", invoicesH.ListAuditLogs)
	tenant.GET("/reports/summary",
		middleware.RequireFeature(d.Entitlement, plans.FeatureReporting, d.Log),
		invoicesH.Summary)

	// Admin routes
	admin := r.Group("/admin")
	admin.Use(middleware.AuthMiddleware(d.JWTSecret), middleware.RequireRole("admin"))
	admin.GET("/tenants/:id", adminH.GetTenant)
	admin.POST("/tenants/:id/suspend", adminH.SuspendTenant)
	admin.POST("/tenants/:id/activate", adminH.ActivateTenant)
}
