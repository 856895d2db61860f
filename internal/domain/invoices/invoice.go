package invoices

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Status is the document lifecycle. It is independent of PaymentStatus.
type Status string

const (
	StatusDraft    Status = "DRAFT"
	StatusSent     Status = "SENT"
	StatusViewed   Status = "VIEWED"
	StatusOverdue  Status = "OVERDUE"
	StatusCanceled Status = "CANCELED"
)

func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusSent, StatusViewed, StatusOverdue, StatusCanceled:
		return true
	}
	return false
}

type PaymentStatus string

const (
	PaymentUnpaid        PaymentStatus = "UNPAID"
	PaymentPartiallyPaid PaymentStatus = "PARTIALLY_PAID"
	PaymentPaid          PaymentStatus = "PAID"
)

type Invoice struct {
	ID            uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	TenantID      uuid.UUID     `gorm:"type:uuid;not null;uniqueIndex:idx_invoices_tenant_number" json:"tenant_id"`
	InvoiceNumber string        `gorm:"not null;uniqueIndex:idx_invoices_tenant_number" json:"invoice_number"`
	CustomerID    uuid.UUID     `gorm:"type:uuid;not null;index" json:"customer_id"`
	Customer      *Customer     `json:"customer,omitempty"`
	Status        Status        `gorm:"type:varchar(20);not null" json:"status"`
	PaymentStatus PaymentStatus `gorm:"type:varchar(20);not null" json:"payment_status"`
	Currency      string        `gorm:"type:varchar(3);not null" json:"currency"`

	IssueDate time.Time  `json:"issue_date"`
	DueDate   *time.Time `json:"due_date"`
	PaidAt    *time.Time `json:"paid_at"`
	Notes     string     `json:"notes"`

	Subtotal decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"subtotal"`
	TaxTotal decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"tax_total"`
	Total    decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"total"`

	Lines []LineItem `gorm:"constraint:OnDelete:CASCADE" json:"lines"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type LineItem struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	InvoiceID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"invoice_id"`
	ItemID      *uuid.UUID      `gorm:"type:uuid;index" json:"item_id"`
	Description string          `gorm:"not null" json:"description"`
	Quantity    decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"quantity"`
	UnitPrice   decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"unit_price"`
	TaxRate     decimal.Decimal `gorm:"type:numeric(5,2);not null" json:"tax_rate"`
	Amount      decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"amount"`
	Position    int             `gorm:"not null" json:"position"`
}

func (i *Invoice) BeforeCreate(*gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

func (l *LineItem) BeforeCreate(*gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

// IsPaid invoices are frozen: no edits, no deletes.
func (i *Invoice) IsPaid() bool {
	return i.PaymentStatus == PaymentPaid
}

// Recalculate derives line amounts and invoice totals. Tax rates are
// percentages; money is rounded to 2 places per line.
func (i *Invoice) Recalculate() {
	subtotal := decimal.Zero
	taxTotal := decimal.Zero
	hundred := decimal.NewFromInt(100)

	for idx := range i.Lines {
		line := &i.Lines[idx]
		line.Position = idx
		line.Amount = line.Quantity.Mul(line.UnitPrice).Round(2)
		subtotal = subtotal.Add(line.Amount)
		taxTotal = taxTotal.Add(line.Amount.Mul(line.TaxRate).Div(hundred).Round(2))
	}

	i.Subtotal = subtotal
	i.TaxTotal = taxTotal
	i.Total = subtotal.Add(taxTotal)
}

// MarkPaid records settlement. Paying a DRAFT implicitly sends it; no other
// document status is touched.
func (i *Invoice) MarkPaid(now time.Time) {
	i.PaymentStatus = PaymentPaid
	i.PaidAt = &now
	if i.Status == StatusDraft {
		i.Status = StatusSent
	}
}

// FormatNumber renders the default invoice number for sequence n.
func FormatNumber(n int64) string {
	return fmt.Sprintf("INV-%04d", n)
}
