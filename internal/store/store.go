// Package store declares the persistence contract the services depend on.
// Every tenant-scoped lookup takes the tenant id; a row owned by another
// tenant is reported as ErrNotFound.
package store

import (
	"context"
	"errors"

	"invoicing-app/internal/domain/audit"
	"invoicing-app/internal/domain/billing"
	"invoicing-app/internal/domain/invoices"
	"invoicing-app/internal/domain/plans"
	"invoicing-app/internal/domain/subscriptions"
	"invoicing-app/internal/domain/tenants"

	"github.com/google/uuid"
)

var (
	ErrNotFound  = errors.New("store: record not found")
	ErrDuplicate = errors.New("store: duplicate key")

	ErrUnknownResource = errors.New("store: resource is not countable")
)

type Page struct {
	Limit  int
	Offset int
}

// Normalize clamps the page to sane bounds.
func (p Page) Normalize() Page {
	if p.Limit <= 0 || p.Limit > 200 {
		p.Limit = 50
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}

type Store interface {
	Tenants
	Plans
	Subscriptions
	Usage
	Customers
	Items
	Invoices
	Payments
	Receipts
	AuditLogs

	// Transaction runs fn atomically. A non-nil error from fn rolls back
	// every write made through tx. Calling Transaction on tx joins it.
	Transaction(ctx context.Context, fn func(tx Store) error) error
}

type Tenants interface {
	CreateTenant(ctx context.Context, t *tenants.Tenant) error
	GetTenant(ctx context.Context, id uuid.UUID) (*tenants.Tenant, error)
	UpdateTenantStatus(ctx context.Context, id uuid.UUID, status tenants.Status) error
}

type Plans interface {
	CreatePlan(ctx context.Context, p *plans.Plan) error
	GetPlan(ctx context.Context, id uuid.UUID) (*plans.Plan, error)
	GetDefaultPlan(ctx context.Context) (*plans.Plan, error)
	ListActivePlans(ctx context.Context) ([]plans.Plan, error)
	CountPlans(ctx context.Context) (int64, error)
}

// Subscriptions always return the subscription with Plan loaded.
type Subscriptions interface {
	CreateSubscription(ctx context.Context, s *subscriptions.Subscription) error
	GetSubscriptionByTenant(ctx context.Context, tenantID uuid.UUID) (*subscriptions.Subscription, error)
	// LockSubscriptionByTenant reads the row with a write lock held until
	// the surrounding transaction ends.
	LockSubscriptionByTenant(ctx context.Context, tenantID uuid.UUID) (*subscriptions.Subscription, error)
	SaveSubscription(ctx context.Context, s *subscriptions.Subscription) error
}

type Usage interface {
	CountResource(ctx context.Context, tenantID uuid.UUID, r plans.Resource) (int, error)
}

type Customers interface {
	CreateCustomer(ctx context.Context, c *invoices.Customer) error
	GetCustomer(ctx context.Context, tenantID, id uuid.UUID) (*invoices.Customer, error)
	ListCustomers(ctx context.Context, tenantID uuid.UUID, page Page) ([]invoices.Customer, error)
	SaveCustomer(ctx context.Context, c *invoices.Customer) error
	DeleteCustomer(ctx context.Context, tenantID, id uuid.UUID) error
}

type Items interface {
	CreateItem(ctx context.Context, i *invoices.Item) error
	GetItem(ctx context.Context, tenantID, id uuid.UUID) (*invoices.Item, error)
	ListItems(ctx context.Context, tenantID uuid.UUID, page Page) ([]invoices.Item, error)
	SaveItem(ctx context.Context, i *invoices.Item) error
	DeleteItem(ctx context.Context, tenantID, id uuid.UUID) error
}

// Invoices return invoices with Lines (ordered by position) and Customer loaded.
type Invoices interface {
	CreateInvoice(ctx context.Context, inv *invoices.Invoice) error
	GetInvoice(ctx context.Context, tenantID, id uuid.UUID) (*invoices.Invoice, error)
	LockInvoice(ctx context.Context, tenantID, id uuid.UUID) (*invoices.Invoice, error)
	ListInvoices(ctx context.Context, tenantID uuid.UUID, page Page) ([]invoices.Invoice, error)
	// SaveInvoice writes header columns only; lines go through ReplaceInvoiceLines.
	SaveInvoice(ctx context.Context, inv *invoices.Invoice) error
	ReplaceInvoiceLines(ctx context.Context, invoiceID uuid.UUID, lines []invoices.LineItem) error
	DeleteInvoice(ctx context.Context, tenantID, id uuid.UUID) error
	InvoiceNumberExists(ctx context.Context, tenantID uuid.UUID, number string, exclude uuid.UUID) (bool, error)
	CountInvoicesForCustomer(ctx context.Context, tenantID, customerID uuid.UUID) (int64, error)
	CountInvoiceLinesForItem(ctx context.Context, tenantID, itemID uuid.UUID) (int64, error)
}

type Payments interface {
	CreatePayment(ctx context.Context, p *billing.Payment) error
	GetPaymentByReference(ctx context.Context, reference string) (*billing.Payment, error)
	LockPaymentByReference(ctx context.Context, reference string) (*billing.Payment, error)
	SavePayment(ctx context.Context, p *billing.Payment) error
	ListPayments(ctx context.Context, tenantID uuid.UUID, page Page) ([]billing.Payment, error)
	CountInvoicePayments(ctx context.Context, tenantID, invoiceID uuid.UUID, status billing.PaymentStatus) (int64, error)
}

type Receipts interface {
	CreateReceipt(ctx context.Context, r *billing.Receipt) error
	GetReceipt(ctx context.Context, tenantID, id uuid.UUID) (*billing.Receipt, error)
	GetReceiptByPayment(ctx context.Context, paymentID uuid.UUID) (*billing.Receipt, error)
	ListReceipts(ctx context.Context, tenantID uuid.UUID, page Page) ([]billing.Receipt, error)
	SaveReceipt(ctx context.Context, r *billing.Receipt) error
	// NextReceiptNumber bumps and returns the tenant's receipt counter. Must
	// be called inside a transaction; the counter row stays locked until it ends.
	NextReceiptNumber(ctx context.Context, tenantID uuid.UUID) (int64, error)
}

type AuditLogs interface {
	AppendAuditLog(ctx context.Context, l *audit.Log) error
	ListAuditLogs(ctx context.Context, tenantID uuid.UUID, page Page) ([]audit.Log, error)
}
