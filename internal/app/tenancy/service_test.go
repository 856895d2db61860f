package tenancy

import (
	"context"
	"testing"
	"time"

	"invoicing-app/internal/apperr"
	"invoicing-app/internal/app/apptest"
	"invoicing-app/internal/app/audit"
	auditlog "invoicing-app/internal/domain/audit"
	"invoicing-app/internal/domain/subscriptions"
	"invoicing-app/internal/domain/tenants"
	"invoicing-app/internal/infra/logger"
	"invoicing-app/internal/store"
	"invoicing-app/internal/store/memstore"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newService(t *testing.T) (*Service, *memstore.Store) {
	t.Helper()
	s := memstore.New()
	pro := apptest.Plan("pro", 15000)
	pro.TrialDays = 7
	pro.IsDefault = true
	apptest.SeedPlan(t, s, pro)
	apptest.SeedPlan(t, s, apptest.Plan("free", 0))
	return NewService(s, audit.NewRecorder(s), logger.Discard()), s
}

func TestOnboardStartsTrial(t *testing.T) {
	svc, s := newService(t)
	now := time.Now()

	out, err := svc.Onboard(context.Background(), OnboardInput{OwnerUserID: uuid.New(), Name: " Acme ", Currency: "ngn"})
	require.NoError(t, err)

	assert.Equal(t, "Acme", out.Tenant.Name)
	assert.Equal(t, "NGN", out.Tenant.Currency)
	assert.Equal(t, tenants.StatusActive, out.Tenant.Status)

	sub, err := s.GetSubscriptionByTenant(context.Background(), out.Tenant.ID)
	require.NoError(t, err)
	assert.Equal(t, subscriptions.StatusTrialing, sub.Status)
	assert.Equal(t, "pro", sub.Plan.Code)
	require.NotNil(t, sub.TrialEndsAt)
	assert.WithinDuration(t, now.AddDate(0, 0, 7), *sub.TrialEndsAt, time.Second)
	assert.True(t, sub.CurrentPeriodEnd.Equal(*sub.TrialEndsAt))

	logs, err := s.ListAuditLogs(context.Background(), out.Tenant.ID, store.Page{})
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, auditlog.ActionSubscriptionCreated, logs[0].Action)
	assert.Equal(t, auditlog.ActionTenantOnboarded, logs[1].Action)
}

func TestOnboardTwiceFails(t *testing.T) {
	svc, _ := newService(t)
	owner := uuid.New()

	_, err := svc.Onboard(context.Background(), OnboardInput{OwnerUserID: owner, Name: "Acme"})
	require.NoError(t, err)
	_, err = svc.Onboard(context.Background(), OnboardInput{OwnerUserID: owner, Name: "Acme again"})
	assert.Equal(t, apperr.AlreadyOnboarded, apperr.KindOf(err))
}

func TestOnboardValidation(t *testing.T) {
	svc, _ := newService(t)

	_, err := svc.Onboard(context.Background(), OnboardInput{OwnerUserID: uuid.New(), Name: " "})
	assert.Equal(t, apperr.Validation, apperr.KindOf(err))

	_, err = svc.Onboard(context.Background(), OnboardInput{OwnerUserID: uuid.New(), Name: "Acme", Currency: "NAIRA"})
	assert.Equal(t, apperr.Validation, apperr.KindOf(err))
}

func TestOnboardWithoutDefaultPlan(t *testing.T) {
	s := memstore.New()
	svc := NewService(s, audit.NewRecorder(s), logger.Discard())

	_, err := svc.Onboard(context.Background(), OnboardInput{OwnerUserID: uuid.New(), Name: "Acme"})
	assert.Equal(t, apperr.Internal, apperr.KindOf(err))
}

func TestSuspendAndActivate(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	out, err := svc.Onboard(ctx, OnboardInput{OwnerUserID: uuid.New(), Name: "Acme"})
	require.NoError(t, err)
	id := out.Tenant.ID

	_, err = svc.RequireActive(ctx, id)
	require.NoError(t, err)

	tenant, err := svc.Suspend(ctx, id, nil)
	require.NoError(t, err)
	assert.Equal(t, tenants.StatusSuspended, tenant.Status)

	_, err = svc.RequireActive(ctx, id)
	assert.Equal(t, apperr.Forbidden, apperr.KindOf(err))

	tenant, err = svc.Activate(ctx, id, nil)
	require.NoError(t, err)
	assert.Equal(t, tenants.StatusActive, tenant.Status)
	_, err = svc.RequireActive(ctx, id)
	assert.NoError(t, err)

	_, err = svc.Suspend(ctx, uuid.New(), nil)
	assert.Equal(t, apperr.NotFound, apperr.KindOf(err))
	_, err = svc.RequireActive(ctx, uuid.New())
	assert.Equal(t, apperr.Forbidden, apperr.KindOf(err))
}
