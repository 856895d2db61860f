package access

import (
	"time"

	"invoicing-app/internal/domain/plans"
	"invoicing-app/internal/domain/subscriptions"
)

// FeatureEnabled: a running trial unlocks everything, an ACTIVE subscription
// follows the plan flag, anything else is denied.
func FeatureEnabled(now time.Time, sub *subscriptions.Subscription, f plans.Feature) bool {
	if sub == nil || !f.Valid() {
		return false
	}
	if sub.InTrial(now) {
		return true
	}
	if sub.Status == subscriptions.StatusActive {
		return sub.Plan.Enabled(f)
	}
	return false
}

func FeaturesFor(now time.Time, sub *subscriptions.Subscription) map[plans.Feature]bool {
	out := make(map[plans.Feature]bool, len(plans.AllFeatures))
	for _, f := range plans.AllFeatures {
		out[f] = FeatureEnabled(now, sub, f)
	}
	return out
}
