package subscriptions

import (
	"testing"
	"time"

	"invoicing-app/internal/domain/plans"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func TestStartTrial(t *testing.T) {
	plan := &plans.Plan{ID: uuid.New(), TrialDays: 7}
	tenantID := uuid.New()

	sub := StartTrial(tenantID, plan, now)

	assert.Equal(t, StatusTrialing, sub.Status)
	require.NotNil(t, sub.TrialEndsAt)
	assert.Equal(t, now.AddDate(0, 0, 7), *sub.TrialEndsAt)
	assert.Equal(t, *sub.TrialEndsAt, sub.CurrentPeriodEnd)
	assert.Equal(t, now, sub.CurrentPeriodStart)
	assert.Equal(t, plan.ID, sub.PlanID)
}

func TestInTrial(t *testing.T) {
	future := now.Add(time.Hour)
	past := now.Add(-time.Hour)

	assert.True(t, (&Subscription{Status: StatusTrialing, TrialEndsAt: &future}).InTrial(now))
	assert.False(t, (&Subscription{Status: StatusTrialing, TrialEndsAt: &past}).InTrial(now), "lagging status must not count as trial")
	assert.False(t, (&Subscription{Status: StatusTrialing}).InTrial(now))
	assert.False(t, (&Subscription{Status: StatusActive, TrialEndsAt: &future}).InTrial(now))
	assert.False(t, (*Subscription)(nil).InTrial(now))
}

func TestCancelThenReactivate(t *testing.T) {
	end := now.AddDate(0, 1, 0)
	sub := &Subscription{Status: StatusActive, CurrentPeriodEnd: end}

	require.NoError(t, sub.Cancel(now))
	assert.True(t, sub.CancelAtPeriodEnd)
	assert.Equal(t, &now, sub.CanceledAt)
	assert.Equal(t, StatusActive, sub.Status)
	assert.Equal(t, end, sub.CurrentPeriodEnd)

	require.NoError(t, sub.Reactivate())
	assert.False(t, sub.CancelAtPeriodEnd)
	assert.Nil(t, sub.CanceledAt)
	assert.Equal(t, StatusActive, sub.Status)
	assert.Equal(t, end, sub.CurrentPeriodEnd)

	assert.ErrorIs(t, sub.Reactivate(), ErrNotScheduledForCancellation)
}

func TestCancelAlreadyCanceled(t *testing.T) {
	sub := &Subscription{Status: StatusCanceled}
	assert.ErrorIs(t, sub.Cancel(now), ErrAlreadyCanceled)
}

func TestApplyUpgrade(t *testing.T) {
	trialEnd := now.AddDate(0, 0, 3)
	canceledAt := now.Add(-time.Hour)
	sub := &Subscription{
		Status:            StatusTrialing,
		TrialEndsAt:       &trialEnd,
		CancelAtPeriodEnd: true,
		CanceledAt:        &canceledAt,
	}
	yearly := &plans.Plan{ID: uuid.New(), BillingPeriod: plans.BillingYearly}

	sub.ApplyUpgrade(yearly, now)

	assert.Equal(t, StatusActive, sub.Status)
	assert.Equal(t, yearly.ID, sub.PlanID)
	assert.Equal(t, now.AddDate(1, 0, 0), sub.CurrentPeriodEnd)
	assert.Nil(t, sub.TrialEndsAt)
	assert.Nil(t, sub.CanceledAt)
	assert.False(t, sub.CancelAtPeriodEnd)
}

func TestCheckUpgrade(t *testing.T) {
	current := &plans.Plan{Price: decimal.NewFromInt(5000)}

	assert.ErrorIs(t, CheckUpgrade(current, &plans.Plan{Price: decimal.NewFromInt(3000)}), ErrNotAnUpgrade)
	assert.ErrorIs(t, CheckUpgrade(current, &plans.Plan{Price: decimal.NewFromInt(5000)}), ErrNotAnUpgrade)
	assert.NoError(t, CheckUpgrade(current, &plans.Plan{Price: decimal.NewFromInt(9000)}))
	assert.NoError(t, CheckUpgrade(nil, &plans.Plan{Price: decimal.NewFromInt(1)}))
}
