package users

import (
	"strings"
	"time"

	"invoicing-app/internal/domain/plans"
	"invoicing-app/internal/domain/subscriptions"
	"invoicing-app/internal/domain/tenants"
)

func BuildTenantDTO(t *tenants.Tenant) *TenantDTO {
	if t == nil {
		return nil
	}
	return &TenantDTO{
		ID:       t.ID,
		Name:     t.Name,
		Email:    t.Email,
		Phone:    stringPtrIfNotEmpty(t.Phone),
		Currency: t.Currency,
		Status:   string(t.Status),
	}
}

func BuildPlanDTO(p *plans.Plan) *PlanDTO {
	if p == nil {
		return nil
	}
	return &PlanDTO{
		ID:       p.ID,
		Key:      p.Code,
		Name:     p.Name,
		Interval: strings.ToLower(string(p.BillingPeriod)),
		Price:    p.Price,
		Currency: p.Currency,
	}
}

func BuildSubscriptionDTO(s *subscriptions.Subscription) *SubscriptionDTO {
	if s == nil {
		return nil
	}
	return &SubscriptionDTO{
		Status:            string(s.Status),
		StartsAt:          s.CurrentPeriodStart,
		CurrentPeriodEnd:  s.CurrentPeriodEnd,
		CancelAtPeriodEnd: s.CancelAtPeriodEnd,
		CanceledAt:        s.CanceledAt,
	}
}

// BuildTrialDTO is nil once the subscription no longer carries a trial end.
func BuildTrialDTO(now time.Time, s *subscriptions.Subscription) *TrialDTO {
	if s == nil || s.TrialEndsAt == nil {
		return nil
	}

	d := 0
	if now.Before(*s.TrialEndsAt) {
		d = int(s.TrialEndsAt.Sub(now).Hours() / 24)
	}

	return &TrialDTO{
		EndsAt:   s.TrialEndsAt,
		DaysLeft: d,
		Active:   s.InTrial(now),
	}
}

func stringPtrIfNotEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
