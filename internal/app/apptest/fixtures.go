// Package apptest seeds a memstore with tenants, plans and subscriptions for
// service and handler tests.
package apptest

import (
	"context"
	"testing"
	"time"

	"invoicing-app/internal/domain/invoices"
	"invoicing-app/internal/domain/plans"
	"invoicing-app/internal/domain/subscriptions"
	"invoicing-app/internal/domain/tenants"
	"invoicing-app/internal/store/memstore"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// Plan returns an active monthly NGN plan with every limit unlimited and
// every feature off. Callers tweak fields before seeding.
func Plan(code string, price int64) *plans.Plan {
	return &plans.Plan{
		Code:          code,
		Name:          code,
		Price:         decimal.NewFromInt(price),
		Currency:      "NGN",
		BillingPeriod: plans.BillingMonthly,
		MaxInvoices:   plans.Unlimited,
		MaxCustomers:  plans.Unlimited,
		MaxItems:      plans.Unlimited,
		MaxUsers:      plans.Unlimited,
		IsActive:      true,
	}
}

func SeedPlan(t testing.TB, s *memstore.Store, p *plans.Plan) *plans.Plan {
	t.Helper()
	require.NoError(t, s.CreatePlan(context.Background(), p))
	return p
}

type Tenant struct {
	Tenant       *tenants.Tenant
	Subscription *subscriptions.Subscription
	Owner        uuid.UUID
}

func (f Tenant) ID() uuid.UUID { return f.Tenant.ID }

// SeedTenant creates an ACTIVE tenant with an ACTIVE subscription on plan
// whose period started now.
func SeedTenant(t testing.TB, s *memstore.Store, plan *plans.Plan) Tenant {
	t.Helper()
	return SeedTenantWith(t, s, plan, subscriptions.StatusActive, nil)
}

func SeedTenantWith(t testing.TB, s *memstore.Store, plan *plans.Plan, status subscriptions.Status, trialEndsAt *time.Time) Tenant {
	t.Helper()
	ctx := context.Background()
	now := time.Now()

	owner := uuid.New()
	tenant := &tenants.Tenant{
		Name:        "Acme Ltd",
		Email:       "owner@acme.test",
		Currency:    "NGN",
		Status:      tenants.StatusActive,
		OwnerUserID: owner,
	}
	require.NoError(t, s.CreateTenant(ctx, tenant))

	sub := &subscriptions.Subscription{
		TenantID:           tenant.ID,
		PlanID:             plan.ID,
		Status:             status,
		TrialEndsAt:        trialEndsAt,
		CurrentPeriodStart: now,
		CurrentPeriodEnd:   plan.PeriodEnd(now),
	}
	require.NoError(t, s.CreateSubscription(ctx, sub))
	sub.Plan = plan

	return Tenant{Tenant: tenant, Subscription: sub, Owner: owner}
}

func SeedCustomer(t testing.TB, s *memstore.Store, tenantID uuid.UUID, email string) *invoices.Customer {
	t.Helper()
	c := &invoices.Customer{TenantID: tenantID, Name: "Customer " + email, Email: email}
	require.NoError(t, s.CreateCustomer(context.Background(), c))
	return c
}

// SeedInvoice creates an UNPAID DRAFT invoice with a single line of total.
func SeedInvoice(t testing.TB, s *memstore.Store, tenantID, customerID uuid.UUID, number string, total int64) *invoices.Invoice {
	t.Helper()
	inv := &invoices.Invoice{
		TenantID:      tenantID,
		CustomerID:    customerID,
		InvoiceNumber: number,
		Status:        invoices.StatusDraft,
		PaymentStatus: invoices.PaymentUnpaid,
		Currency:      "NGN",
		IssueDate:     time.Now(),
		Lines: []invoices.LineItem{{
			Description: "Services",
			Quantity:    decimal.NewFromInt(1),
			UnitPrice:   decimal.NewFromInt(total),
			TaxRate:     decimal.Zero,
		}},
	}
	inv.Recalculate()
	require.NoError(t, s.CreateInvoice(context.Background(), inv))
	return inv
}
