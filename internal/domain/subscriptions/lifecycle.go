package subscriptions

import (
	"errors"
	"time"

	"invoicing-app/internal/domain/plans"

	"github.com/google/uuid"
)

var (
	ErrAlreadyCanceled             = errors.New("subscription is already canceled")
	ErrNotScheduledForCancellation = errors.New("subscription is not scheduled for cancellation")
	ErrNotAnUpgrade                = errors.New("target plan is not an upgrade")
)

// StartTrial builds the onboarding subscription on the trial plan.
func StartTrial(tenantID uuid.UUID, plan *plans.Plan, now time.Time) *Subscription {
	trialEnd := plan.TrialEnd(now)
	return &Subscription{
		TenantID:           tenantID,
		PlanID:             plan.ID,
		Plan:               plan,
		Status:             StatusTrialing,
		TrialEndsAt:        &trialEnd,
		CurrentPeriodStart: now,
		CurrentPeriodEnd:   trialEnd,
	}
}

// Cancel schedules cancellation at period end. Status and period are kept so
// the tenant retains access until CurrentPeriodEnd.
func (s *Subscription) Cancel(now time.Time) error {
	if s.Status == StatusCanceled {
		return ErrAlreadyCanceled
	}
	s.CancelAtPeriodEnd = true
	s.CanceledAt = &now
	return nil
}

func (s *Subscription) Reactivate() error {
	if !s.CancelAtPeriodEnd {
		return ErrNotScheduledForCancellation
	}
	s.CancelAtPeriodEnd = false
	s.CanceledAt = nil
	return nil
}

// ApplyUpgrade swaps the plan and opens a fresh paid period.
func (s *Subscription) ApplyUpgrade(plan *plans.Plan, now time.Time) {
	s.PlanID = plan.ID
	s.Plan = plan
	s.Status = StatusActive
	s.CurrentPeriodStart = now
	s.CurrentPeriodEnd = plan.PeriodEnd(now)
	s.CancelAtPeriodEnd = false
	s.CanceledAt = nil
	s.TrialEndsAt = nil
}

// CheckUpgrade rejects same-price and cheaper targets; downgrades go through
// support.
func CheckUpgrade(current, target *plans.Plan) error {
	if current != nil && target.Price.LessThanOrEqual(current.Price) {
		return ErrNotAnUpgrade
	}
	return nil
}
