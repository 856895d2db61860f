package plans

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type BillingPeriod string

const (
	BillingMonthly BillingPeriod = "MONTHLY"
	BillingYearly  BillingPeriod = "YEARLY"
)

// Unlimited is the limit sentinel for resources with no cap.
const Unlimited = -1

type Plan struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	Code          string          `gorm:"not null;uniqueIndex:idx_plans_code" json:"code"`
	Name          string          `gorm:"not null" json:"name"`
	Price         decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"price"`
	Currency      string          `gorm:"type:varchar(3);not null;default:'NGN'" json:"currency"`
	BillingPeriod BillingPeriod   `gorm:"type:varchar(10);not null;default:'MONTHLY'" json:"billing_period"`
	TrialDays     int             `gorm:"not null;default:0" json:"trial_days"`

	MaxInvoices  int `gorm:"not null" json:"max_invoices"`
	MaxCustomers int `gorm:"not null" json:"max_customers"`
	MaxItems     int `gorm:"not null" json:"max_items"`
	MaxUsers     int `gorm:"not null" json:"max_users"`

	CanUsePremiumTemplates bool `json:"can_use_premium_templates"`
	CanCustomizeTemplates  bool `json:"can_customize_templates"`
	CanUseReporting        bool `json:"can_use_reporting"`
	CanExportData          bool `json:"can_export_data"`
	CanRemoveBranding      bool `json:"can_remove_branding"`
	CanUseWhatsApp         bool `json:"can_use_whatsapp"`
	CanUseSMS              bool `json:"can_use_sms"`

	IsDefault bool `gorm:"not null;default:false" json:"is_default"`
	IsActive  bool `gorm:"not null" json:"is_active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (p *Plan) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// PeriodEnd returns the end of a billing period that starts at start.
func (p *Plan) PeriodEnd(start time.Time) time.Time {
	if p.BillingPeriod == BillingYearly {
		return start.AddDate(1, 0, 0)
	}
	return start.AddDate(0, 1, 0)
}

// TrialEnd returns start + TrialDays.
func (p *Plan) TrialEnd(start time.Time) time.Time {
	return start.AddDate(0, 0, p.TrialDays)
}
