package plans

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPeriodEnd(t *testing.T) {
	start := time.Date(2026, 1, 31, 10, 0, 0, 0, time.UTC)

	monthly := &Plan{BillingPeriod: BillingMonthly}
	assert.Equal(t, start.AddDate(0, 1, 0), monthly.PeriodEnd(start))

	yearly := &Plan{BillingPeriod: BillingYearly}
	assert.Equal(t, time.Date(2027, 1, 31, 10, 0, 0, 0, time.UTC), yearly.PeriodEnd(start))
}

func TestLimit(t *testing.T) {
	p := &Plan{MaxInvoices: 5, MaxCustomers: Unlimited, MaxItems: 10, MaxUsers: 2}

	limit, ok := p.Limit(ResourceInvoices)
	assert.True(t, ok)
	assert.Equal(t, 5, limit)

	limit, ok = p.Limit(ResourceCustomers)
	assert.True(t, ok)
	assert.Equal(t, Unlimited, limit)

	_, ok = p.Limit(Resource("projects"))
	assert.False(t, ok)

	var nilPlan *Plan
	_, ok = nilPlan.Limit(ResourceItems)
	assert.False(t, ok)
}

func TestEnabled(t *testing.T) {
	p := &Plan{CanUseSMS: true, CanUseReporting: true}

	assert.True(t, p.Enabled(FeatureSMS))
	assert.True(t, p.Enabled(FeatureReporting))
	assert.False(t, p.Enabled(FeatureWhatsApp))
	assert.False(t, p.Enabled(Feature("teleport")))
	assert.True(t, FeatureExportData.Valid())
	assert.False(t, Feature("teleport").Valid())
}
