package access

import (
	"time"

	"invoicing-app/internal/domain/plans"
	"invoicing-app/internal/domain/subscriptions"
)

type Policy struct {
	State    AccessState            `json:"state"`
	Features map[plans.Feature]bool `json:"features"`
}

func ComputePolicy(now time.Time, sub *subscriptions.Subscription) Policy {
	return Policy{
		State:    ComputeEffectiveAccessState(now, sub),
		Features: FeaturesFor(now, sub),
	}
}
