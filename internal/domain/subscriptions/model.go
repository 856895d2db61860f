package subscriptions

import (
	"time"

	"invoicing-app/internal/domain/plans"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Status string

const (
	StatusTrialing Status = "TRIALING"
	StatusActive   Status = "ACTIVE"
	StatusCanceled Status = "CANCELED"
	StatusPastDue  Status = "PAST_DUE"
)

type Subscription struct {
	ID       uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id"`
	TenantID uuid.UUID   `gorm:"type:uuid;not null;uniqueIndex:idx_subscriptions_tenant_id" json:"tenant_id"`
	PlanID   uuid.UUID   `gorm:"type:uuid;not null" json:"plan_id"`
	Plan     *plans.Plan `json:"plan,omitempty"`
	Status   Status      `gorm:"type:varchar(20);not null" json:"status"`

	TrialEndsAt        *time.Time `json:"trial_ends_at"`
	CurrentPeriodStart time.Time  `json:"current_period_start"`
	CurrentPeriodEnd   time.Time  `json:"current_period_end"`
	CancelAtPeriodEnd  bool       `gorm:"not null;default:false" json:"cancel_at_period_end"`
	CanceledAt         *time.Time `json:"canceled_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (s *Subscription) BeforeCreate(*gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// Usable reports whether the status grants access to tenant resources.
func (s *Subscription) Usable() bool {
	return s != nil && (s.Status == StatusActive || s.Status == StatusTrialing)
}

// InTrial compares the trial timestamp as well as the status: a TRIALING row
// whose trial already ended is not trialing, even before a job flips it.
func (s *Subscription) InTrial(now time.Time) bool {
	return s != nil &&
		s.Status == StatusTrialing &&
		s.TrialEndsAt != nil &&
		now.Before(*s.TrialEndsAt)
}
