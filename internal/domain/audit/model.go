package audit

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	ActionTenantOnboarded      = "tenant.onboarded"
	ActionTenantSuspended      = "tenant.suspended"
	ActionTenantActivated      = "tenant.activated"
	ActionSubscriptionCreated  = "subscription.created"
	ActionSubscriptionCanceled = "subscription.canceled"
	ActionSubscriptionResumed  = "subscription.reactivated"
	ActionSubscriptionUpgraded = "subscription.upgraded"
	ActionInvoicePaid          = "invoice.paid"
	ActionInvoiceSent          = "invoice.sent"
	ActionInvoiceDeleted       = "invoice.deleted"
	ActionPaymentFailed        = "payment.failed"
	ActionPaymentUnmatched     = "payment.unmatched"
	ActionReceiptIssued        = "receipt.issued"
	ActionReceiptUpdated       = "receipt.updated"
)

// Log is append-only. Entries are never updated or deleted.
type Log struct {
	ID         uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	TenantID   uuid.UUID         `gorm:"type:uuid;not null;index:idx_audit_tenant_created" json:"tenant_id"`
	UserID     *uuid.UUID        `gorm:"type:uuid" json:"user_id"`
	Action     string            `gorm:"not null;index" json:"action"`
	EntityType string            `gorm:"not null" json:"entity_type"`
	EntityID   string            `gorm:"not null" json:"entity_id"`
	Metadata   datatypes.JSONMap `gorm:"type:jsonb" json:"metadata"`
	CreatedAt  time.Time         `gorm:"index:idx_audit_tenant_created" json:"created_at"`
}

func (Log) TableName() string {
	return "audit_logs"
}

func (l *Log) BeforeCreate(*gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}
