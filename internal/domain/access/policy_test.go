package access

import (
	"testing"
	"time"

	"invoicing-app/internal/domain/plans"
	"invoicing-app/internal/domain/subscriptions"

	"github.com/stretchr/testify/assert"
)

func TestFeatureEnabled(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	future := now.Add(48 * time.Hour)
	past := now.Add(-time.Hour)
	bare := &plans.Plan{Code: "free"}
	reporting := &plans.Plan{Code: "pro", CanUseReporting: true}

	t.Run("trial unlocks every feature", func(t *testing.T) {
		sub := &subscriptions.Subscription{Status: subscriptions.StatusTrialing, TrialEndsAt: &future, Plan: bare}
		for _, f := range plans.AllFeatures {
			assert.True(t, FeatureEnabled(now, sub, f), f)
		}
	})

	t.Run("elapsed trial is not a trial", func(t *testing.T) {
		sub := &subscriptions.Subscription{Status: subscriptions.StatusTrialing, TrialEndsAt: &past, Plan: reporting}
		assert.False(t, FeatureEnabled(now, sub, plans.FeatureReporting))
		assert.Equal(t, AccessLimited, ComputeEffectiveAccessState(now, sub))
	})

	t.Run("active follows plan flags", func(t *testing.T) {
		sub := &subscriptions.Subscription{Status: subscriptions.StatusActive, Plan: reporting}
		assert.True(t, FeatureEnabled(now, sub, plans.FeatureReporting))
		assert.False(t, FeatureEnabled(now, sub, plans.FeatureSMS))
	})

	t.Run("canceled and past due deny", func(t *testing.T) {
		for _, st := range []subscriptions.Status{subscriptions.StatusCanceled, subscriptions.StatusPastDue} {
			sub := &subscriptions.Subscription{Status: st, Plan: reporting}
			assert.False(t, FeatureEnabled(now, sub, plans.FeatureReporting))
			assert.Equal(t, AccessLocked, ComputeEffectiveAccessState(now, sub))
		}
	})

	t.Run("missing subscription", func(t *testing.T) {
		assert.False(t, FeatureEnabled(now, nil, plans.FeatureReporting))
	})

	t.Run("unknown feature", func(t *testing.T) {
		sub := &subscriptions.Subscription{Status: subscriptions.StatusTrialing, TrialEndsAt: &future}
		assert.False(t, FeatureEnabled(now, sub, plans.Feature("teleport")))
	})
}

func TestComputePolicy(t *testing.T) {
	now := time.Now()
	sub := &subscriptions.Subscription{Status: subscriptions.StatusActive, Plan: &plans.Plan{CanExportData: true}}

	p := ComputePolicy(now, sub)
	assert.Equal(t, AccessFull, p.State)
	assert.True(t, p.Features[plans.FeatureExportData])
	assert.False(t, p.Features[plans.FeatureWhatsApp])
	assert.Len(t, p.Features, len(plans.AllFeatures))
}
