package entitlement

import (
	"context"
	"testing"
	"time"

	"invoicing-app/internal/app/apptest"
	"invoicing-app/internal/apperr"
	"invoicing-app/internal/domain/invoices"
	"invoicing-app/internal/domain/plans"
	"invoicing-app/internal/domain/subscriptions"
	"invoicing-app/internal/store/memstore"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckResourceLimitBoundary(t *testing.T) {
	ctx := context.Background()
	s := memstore.New()
	plan := apptest.Plan("starter", 5000)
	plan.MaxInvoices = 5
	apptest.SeedPlan(t, s, plan)
	tenant := apptest.SeedTenant(t, s, plan)
	customer := apptest.SeedCustomer(t, s, tenant.ID(), "c@example.com")

	for i := range 4 {
		apptest.SeedInvoice(t, s, tenant.ID(), customer.ID, invoices.FormatNumber(int64(i+1)), 100)
	}

	e := New(s)
	d, err := e.CheckResourceLimit(ctx, tenant.ID(), plans.ResourceInvoices)
	require.NoError(t, err)
	assert.Equal(t, Decision{Allowed: true, Limit: 5, Current: 4}, d)

	apptest.SeedInvoice(t, s, tenant.ID(), customer.ID, "INV-LAST", 100)

	d, err = e.CheckResourceLimit(ctx, tenant.ID(), plans.ResourceInvoices)
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.Equal(t, 5, d.Limit)
	assert.Equal(t, 5, d.Current)

	err = e.RequireResource(ctx, tenant.ID(), plans.ResourceInvoices)
	ae, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.LimitReached, ae.Kind)
	assert.Equal(t, 5, ae.Limit)
	assert.Equal(t, 5, ae.Current)
}

func TestCheckResourceLimitUnlimitedNeverCounts(t *testing.T) {
	ctx := context.Background()
	s := memstore.New()
	plan := apptest.SeedPlan(t, s, apptest.Plan("business", 20000))
	tenant := apptest.SeedTenant(t, s, plan)
	e := New(s)

	for range 3 {
		d, err := e.CheckResourceLimit(ctx, tenant.ID(), plans.ResourceCustomers)
		require.NoError(t, err)
		assert.True(t, d.Allowed)
		assert.Equal(t, plans.Unlimited, d.Limit)
	}
	assert.Zero(t, s.CountCalls(plans.ResourceCustomers))
}

func TestCheckResourceLimitZeroLimit(t *testing.T) {
	s := memstore.New()
	plan := apptest.Plan("free", 0)
	plan.MaxItems = 0
	apptest.SeedPlan(t, s, plan)
	tenant := apptest.SeedTenant(t, s, plan)

	d, err := New(s).CheckResourceLimit(context.Background(), tenant.ID(), plans.ResourceItems)
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.Equal(t, ReasonLimitReached, d.Reason)
}

func TestCheckResourceLimitDeniesInactiveSubscriptions(t *testing.T) {
	ctx := context.Background()
	s := memstore.New()
	plan := apptest.SeedPlan(t, s, apptest.Plan("pro", 10000))
	e := New(s)

	for _, st := range []subscriptions.Status{subscriptions.StatusCanceled, subscriptions.StatusPastDue} {
		tenant := apptest.SeedTenantWith(t, s, plan, st, nil)
		d, err := e.CheckResourceLimit(ctx, tenant.ID(), plans.ResourceCustomers)
		require.NoError(t, err)
		assert.False(t, d.Allowed, st)
		assert.Equal(t, ReasonInactive, d.Reason)
		assert.True(t, apperr.Is(e.RequireResource(ctx, tenant.ID(), plans.ResourceCustomers), apperr.Forbidden))
	}

	d, err := e.CheckResourceLimit(ctx, uuid.New(), plans.ResourceCustomers)
	require.NoError(t, err)
	assert.Equal(t, Decision{Reason: ReasonNoSubscription}, d)
	assert.True(t, apperr.Is(e.RequireResource(ctx, uuid.New(), plans.ResourceCustomers), apperr.NoSubscription))
}

func TestCheckFeatureAccess(t *testing.T) {
	ctx := context.Background()
	s := memstore.New()
	bare := apptest.SeedPlan(t, s, apptest.Plan("free", 0))
	future := time.Now().Add(7 * 24 * time.Hour)
	past := time.Now().Add(-time.Minute)

	trial := apptest.SeedTenantWith(t, s, bare, subscriptions.StatusTrialing, &future)
	expired := apptest.SeedTenantWith(t, s, bare, subscriptions.StatusTrialing, &past)
	active := apptest.SeedTenant(t, s, bare)

	e := New(s)
	for _, f := range plans.AllFeatures {
		ok, err := e.CheckFeatureAccess(ctx, trial.ID(), f)
		require.NoError(t, err)
		assert.True(t, ok, f)

		ok, err = e.CheckFeatureAccess(ctx, expired.ID(), f)
		require.NoError(t, err)
		assert.False(t, ok, f)

		ok, err = e.CheckFeatureAccess(ctx, active.ID(), f)
		require.NoError(t, err)
		assert.False(t, ok, f)
	}

	ok, err := e.CheckFeatureAccess(ctx, uuid.New(), plans.FeatureReporting)
	require.NoError(t, err)
	assert.False(t, ok)

	assert.True(t, apperr.Is(e.RequireFeature(ctx, active.ID(), plans.FeatureSMS), apperr.FeatureUnavailable))
	assert.NoError(t, e.RequireFeature(ctx, trial.ID(), plans.FeatureSMS))
}

func TestSnapshot(t *testing.T) {
	ctx := context.Background()
	s := memstore.New()
	plan := apptest.Plan("starter", 5000)
	plan.MaxCustomers = 10
	plan.CanUseReporting = true
	apptest.SeedPlan(t, s, plan)
	tenant := apptest.SeedTenant(t, s, plan)
	apptest.SeedCustomer(t, s, tenant.ID(), "a@example.com")

	snap, err := New(s).Snapshot(ctx, tenant.ID())
	require.NoError(t, err)
	assert.Equal(t, UsageLine{Used: 1, Limit: 10}, snap.Usage[plans.ResourceCustomers])
	assert.Equal(t, UsageLine{Used: 0, Limit: plans.Unlimited, Unlimited: true}, snap.Usage[plans.ResourceInvoices])
	assert.True(t, snap.Access.Features[plans.FeatureReporting])
	assert.Zero(t, snap.TrialDaysLeft)

	_, err = New(s).Snapshot(ctx, uuid.New())
	assert.True(t, apperr.Is(err, apperr.NoSubscription))
}
