// Package gateway is the contract between the billing core and a hosted
// payment provider. Amounts cross this boundary in minor currency units.
package gateway

import (
	"context"
	"errors"
	"time"
)

const (
	EventChargeSuccess = "charge.success"
	EventChargeFailed  = "charge.failed"
)

const (
	StatusSuccess   = "success"
	StatusFailed    = "failed"
	StatusAbandoned = "abandoned"
	StatusPending   = "pending"
)

var (
	// ErrUnreachable covers transport failures, timeouts and 5xx answers.
	// Nothing was decided upstream, so the caller may retry.
	ErrUnreachable = errors.New("gateway: unreachable")
	// ErrRejected means the provider answered and refused the request.
	ErrRejected = errors.New("gateway: request rejected")
)

// Metadata keys written at checkout and read back on verification.
const (
	MetaType      = "type"
	MetaTenantID  = "tenantId"
	MetaPlanID    = "planId"
	MetaUserID    = "userId"
	MetaInvoiceID = "invoiceId"

	TypeUpgrade = "upgrade"
	TypeInvoice = "invoice"
)

type Metadata map[string]string

type InitializeRequest struct {
	Email       string
	AmountMinor int64
	Currency    string
	Reference   string
	Metadata    Metadata
	CallbackURL string
	Description string
}

type Checkout struct {
	AuthorizationURL string
	AccessCode       string
	Reference        string
}

type Transaction struct {
	Reference       string
	Status          string
	AmountMinor     int64
	Currency        string
	Channel         string
	FeesMinor       int64
	GatewayResponse string
	Authorization   map[string]any
	Metadata        Metadata
	PaidAt          *time.Time
}

func (t *Transaction) Successful() bool {
	return t != nil && t.Status == StatusSuccess
}

type Event struct {
	Name string
	Data Transaction
}

type Gateway interface {
	Name() string
	InitializeTransaction(ctx context.Context, req InitializeRequest) (*Checkout, error)
	VerifyTransaction(ctx context.Context, reference string) (*Transaction, error)
	// SignatureHeader names the provider's own signature header.
	SignatureHeader() string
	VerifyWebhookSignature(body []byte, signature string) bool
	// ParseWebhook must only be called on a body whose signature checked out.
	ParseWebhook(body []byte) (*Event, error)
}
