package users

import (
	"time"

	"invoicing-app/internal/app/entitlement"
	"invoicing-app/internal/domain/plans"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type MeResponse struct {
	User    UserDTO     `json:"user"`
	Tenant  *TenantDTO  `json:"tenant"`
	Billing *BillingDTO `json:"billing"`
	Access  *AccessDTO  `json:"access"`
}

/* ---------- USER ---------- */

type UserDTO struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
	Role  string    `json:"role"`
}

type TenantDTO struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Email    string    `json:"email"`
	Phone    *string   `json:"phone"`
	Currency string    `json:"currency"`
	Status   string    `json:"status"`
}

/* ---------- BILLING ---------- */

type BillingDTO struct {
	Plan         *PlanDTO                                 `json:"plan"`
	Subscription *SubscriptionDTO                         `json:"subscription"`
	Trial        *TrialDTO                                `json:"trial"`
	Usage        map[plans.Resource]entitlement.UsageLine `json:"usage"`
}

type PlanDTO struct {
	ID       uuid.UUID       `json:"id"`
	Key      string          `json:"key"`
	Name     string          `json:"name"`
	Interval string          `json:"interval"`
	Price    decimal.Decimal `json:"price"`
	Currency string          `json:"currency"`
}

type SubscriptionDTO struct {
	Status            string     `json:"status"`
	StartsAt          time.Time  `json:"starts_at"`
	CurrentPeriodEnd  time.Time  `json:"current_period_end"`
	CancelAtPeriodEnd bool       `json:"cancel_at_period_end"`
	CanceledAt        *time.Time `json:"canceled_at"`
}

type TrialDTO struct {
	EndsAt   *time.Time `json:"ends_at"`
	DaysLeft int        `json:"days_left"`
	Active   bool       `json:"active"`
}

/* ---------- ACCESS ---------- */

type AccessDTO struct {
	State    string                 `json:"state"` // trial|full|limited|locked
	Features map[plans.Feature]bool `json:"features"`
}
