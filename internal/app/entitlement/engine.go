// Package entitlement answers whether a tenant may create more of a resource
// or use a gated feature, based on its subscription and plan.
package entitlement

import (
	"context"
	"errors"
	"fmt"
	"time"

	"invoicing-app/internal/apperr"
	"invoicing-app/internal/domain/access"
	"invoicing-app/internal/domain/plans"
	"invoicing-app/internal/domain/subscriptions"
	"invoicing-app/internal/store"

	"github.com/google/uuid"
)

type Reason string

const (
	ReasonOK             Reason = ""
	ReasonNoSubscription Reason = "no_subscription"
	ReasonInactive       Reason = "subscription_inactive"
	ReasonLimitReached   Reason = "limit_reached"
	ReasonUnknown        Reason = "unknown_resource"
)

// Decision is the outcome of a resource check. Denials are values, not
// errors; an error from the engine always means the lookup itself failed.
type Decision struct {
	Allowed bool   `json:"allowed"`
	Limit   int    `json:"limit"`
	Current int    `json:"current"`
	Reason  Reason `json:"reason,omitempty"`
}

type Store interface {
	store.Subscriptions
	store.Usage
}

type Engine struct {
	store Store
	now   func() time.Time
}

func New(s Store) *Engine {
	return &Engine{store: s, now: time.Now}
}

func (e *Engine) subscription(ctx context.Context, tenantID uuid.UUID) (*subscriptions.Subscription, error) {
	sub, err := e.store.GetSubscriptionByTenant(ctx, tenantID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load subscription: %w", err)
	}
	return sub, nil
}

// CheckResourceLimit never counts rows for unlimited resources.
func (e *Engine) CheckResourceLimit(ctx context.Context, tenantID uuid.UUID, r plans.Resource) (Decision, error) {
	sub, err := e.subscription(ctx, tenantID)
	if err != nil {
		return Decision{}, err
	}
	if sub == nil {
		return Decision{Reason: ReasonNoSubscription}, nil
	}
	if !sub.Usable() {
		return Decision{Reason: ReasonInactive}, nil
	}

	limit, ok := sub.Plan.Limit(r)
	if !ok {
		return Decision{Reason: ReasonUnknown}, nil
	}
	if limit == plans.Unlimited {
		return Decision{Allowed: true, Limit: plans.Unlimited}, nil
	}

	current, err := e.store.CountResource(ctx, tenantID, r)
	if err != nil {
		return Decision{}, fmt.Errorf("count %s: %w", r, err)
	}

	d := Decision{Allowed: current < limit, Limit: limit, Current: current}
	if !d.Allowed {
		d.Reason = ReasonLimitReached
	}
	return d, nil
}

// RequireResource turns a denial into the error the HTTP layer reports.
func (e *Engine) RequireResource(ctx context.Context, tenantID uuid.UUID, r plans.Resource) error {
	d, err := e.CheckResourceLimit(ctx, tenantID, r)
	if err != nil {
		return err
	}
	switch {
	case d.Allowed:
		return nil
	case d.Reason == ReasonLimitReached:
		return apperr.NewLimitReached(string(r), d.Limit, d.Current)
	case d.Reason == ReasonNoSubscription:
		return apperr.New(apperr.NoSubscription, "An active subscription is required")
	case d.Reason == ReasonUnknown:
		return apperr.Newf(apperr.Validation, "Unknown resource %q", r)
	default:
		return apperr.New(apperr.Forbidden, "Your subscription is not active. Renew or upgrade to continue.")
	}
}

func (e *Engine) CheckFeatureAccess(ctx context.Context, tenantID uuid.UUID, f plans.Feature) (bool, error) {
	sub, err := e.subscription(ctx, tenantID)
	if err != nil {
		return false, err
	}
	return access.FeatureEnabled(e.now(), sub, f), nil
}

func (e *Engine) RequireFeature(ctx context.Context, tenantID uuid.UUID, f plans.Feature) error {
	ok, err := e.CheckFeatureAccess(ctx, tenantID, f)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.Newf(apperr.FeatureUnavailable, "Your plan does not include %s. Upgrade to unlock it.", f)
	}
	return nil
}

type UsageLine struct {
	Used      int  `json:"used"`
	Limit     int  `json:"limit"`
	Unlimited bool `json:"unlimited"`
}

type Snapshot struct {
	Subscription  *subscriptions.Subscription  `json:"subscription"`
	Plan          *plans.Plan                  `json:"plan"`
	Access        access.Policy                `json:"access"`
	Usage         map[plans.Resource]UsageLine `json:"usage"`
	TrialDaysLeft int                          `json:"trial_days_left"`
}

// Snapshot gathers what the billing page shows. Unlike the gate it counts
// every resource, unlimited ones included.
func (e *Engine) Snapshot(ctx context.Context, tenantID uuid.UUID) (*Snapshot, error) {
	sub, err := e.subscription(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, apperr.New(apperr.NoSubscription, "No subscription found")
	}

	now := e.now()
	snap := &Snapshot{
		Subscription: sub,
		Plan:         sub.Plan,
		Access:       access.ComputePolicy(now, sub),
		Usage:        make(map[plans.Resource]UsageLine, len(plans.CountableResources)),
	}
	if sub.InTrial(now) {
		snap.TrialDaysLeft = int(sub.TrialEndsAt.Sub(now).Hours()/24) + 1
	}

	for _, r := range plans.CountableResources {
		used, err := e.store.CountResource(ctx, tenantID, r)
		if err != nil {
			return nil, fmt.Errorf("count %s: %w", r, err)
		}
		limit, _ := sub.Plan.Limit(r)
		snap.Usage[r] = UsageLine{Used: used, Limit: limit, Unlimited: limit == plans.Unlimited}
	}
	return snap, nil
}
