package billing

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentSuccess PaymentStatus = "success"
	PaymentFailed  PaymentStatus = "failed"
)

type PurposeKind string

const (
	PurposeInvoice PurposeKind = "invoice"
	PurposeUpgrade PurposeKind = "upgrade"
	PurposeAdhoc   PurposeKind = "adhoc"
)

// Purpose says what a payment settles. Exactly one variant is attached to
// every Payment.
type Purpose interface {
	Kind() PurposeKind
}

type InvoicePurpose struct {
	InvoiceID uuid.UUID
}

type UpgradePurpose struct {
	PlanID uuid.UUID
}

// AdhocPurpose covers money received outside any invoice, e.g. manual receipts.
type AdhocPurpose struct {
	CustomerID uuid.UUID
}

func (InvoicePurpose) Kind() PurposeKind { return PurposeInvoice }
func (UpgradePurpose) Kind() PurposeKind { return PurposeUpgrade }
func (AdhocPurpose) Kind() PurposeKind   { return PurposeAdhoc }

// Payment is a single attempt to collect money through the gateway.
// Reference is globally unique and is the idempotency key for reconciliation.
type Payment struct {
	ID          uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id"`
	TenantID    uuid.UUID   `gorm:"type:uuid;not null;index" json:"tenant_id"`
	Reference   string      `gorm:"not null;uniqueIndex" json:"reference"`
	PurposeKind PurposeKind `gorm:"type:varchar(20);not null" json:"purpose"`
	InvoiceID   *uuid.UUID  `gorm:"type:uuid;index" json:"invoice_id,omitempty"`
	PlanID      *uuid.UUID  `gorm:"type:uuid" json:"plan_id,omitempty"`
	CustomerID  *uuid.UUID  `gorm:"type:uuid" json:"customer_id,omitempty"`
	UserID      *uuid.UUID  `gorm:"type:uuid" json:"user_id,omitempty"`

	Amount   decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"amount"`
	Currency string          `gorm:"type:varchar(3);not null" json:"currency"`
	Status   PaymentStatus   `gorm:"type:varchar(20);not null;index" json:"status"`

	Channel          string            `json:"channel,omitempty"`
	Fees             decimal.Decimal   `gorm:"type:numeric(14,2)" json:"fees"`
	GatewayResponse  string            `json:"gateway_response,omitempty"`
	AuthorizationURL string            `json:"authorization_url,omitempty"`
	AccessCode       string            `json:"access_code,omitempty"`
	GatewayData      datatypes.JSONMap `gorm:"type:jsonb" json:"-"`
	PaidAt           *time.Time        `json:"paid_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (p *Payment) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// Purpose rebuilds the variant from the stored columns. Rows with a missing
// target id return nil.
func (p *Payment) Purpose() Purpose {
	switch p.PurposeKind {
	case PurposeInvoice:
		if p.InvoiceID != nil {
			return InvoicePurpose{InvoiceID: *p.InvoiceID}
		}
	case PurposeUpgrade:
		if p.PlanID != nil {
			return UpgradePurpose{PlanID: *p.PlanID}
		}
	case PurposeAdhoc:
		if p.CustomerID != nil {
			return AdhocPurpose{CustomerID: *p.CustomerID}
		}
	}
	return nil
}

func (p *Payment) SetPurpose(purpose Purpose) {
	p.InvoiceID, p.PlanID, p.CustomerID = nil, nil, nil
	p.PurposeKind = purpose.Kind()

	switch v := purpose.(type) {
	case InvoicePurpose:
		id := v.InvoiceID
		p.InvoiceID = &id
	case UpgradePurpose:
		id := v.PlanID
		p.PlanID = &id
	case AdhocPurpose:
		id := v.CustomerID
		p.CustomerID = &id
	}
}

func (p *Payment) IsSuccessful() bool {
	return p.Status == PaymentSuccess
}

// NewReference returns a gateway reference like "INV-1715000000-9f2c1a7b".
func NewReference(prefix string, now time.Time) string {
	buf := make([]byte, 4)
	_, _ = rand.Read(buf)
	return fmt.Sprintf("%s-%d-%s", strings.ToUpper(prefix), now.Unix(), hex.EncodeToString(buf))
}
