package billing

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Receipt is immutable proof of a successful payment. At most one receipt
// exists per payment.
type Receipt struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	TenantID      uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_receipts_tenant_number" json:"tenant_id"`
	ReceiptNumber string          `gorm:"not null;uniqueIndex:idx_receipts_tenant_number" json:"receipt_number"`
	CustomerID    uuid.UUID       `gorm:"type:uuid;not null;index" json:"customer_id"`
	PaymentID     *uuid.UUID      `gorm:"type:uuid;uniqueIndex" json:"payment_id"`
	InvoiceID     *uuid.UUID      `gorm:"type:uuid;index" json:"invoice_id"`
	Amount        decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"amount"`
	Currency      string          `gorm:"type:varchar(3);not null" json:"currency"`
	PaymentMethod string          `json:"payment_method"`
	Reference     string          `json:"reference"`
	IssueDate     time.Time       `gorm:"not null" json:"issue_date"`
	Notes         string          `json:"notes"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (r *Receipt) BeforeCreate(*gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// ReceiptSequence holds the last receipt number handed out for a tenant.
// The row is locked for the duration of the issuing transaction.
type ReceiptSequence struct {
	TenantID  uuid.UUID `gorm:"type:uuid;primaryKey"`
	LastValue int64     `gorm:"not null"`
	UpdatedAt time.Time
}

func FormatReceiptNumber(n int64) string {
	return fmt.Sprintf("REC-%04d", n)
}
