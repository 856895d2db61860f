package access

import (
	"time"

	"invoicing-app/internal/domain/subscriptions"
)

// Effective access for UI/product: trial|full|limited|locked
func ComputeEffectiveAccessState(now time.Time, sub *subscriptions.Subscription) AccessState {
	if sub == nil {
		return AccessLocked
	}

	// Active trial, by timestamp
	if sub.InTrial(now) {
		return AccessTrial
	}

	switch sub.Status {
	case subscriptions.StatusActive:
		return AccessFull
	case subscriptions.StatusTrialing:
		// trial elapsed, status not flipped yet: plan limits apply, gated features don't
		return AccessLimited
	default:
		return AccessLocked
	}
}
