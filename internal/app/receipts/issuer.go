// Package receipts numbers and stores receipts, the immutable proof of a
// successful payment.
package receipts

import (
	"context"
	"fmt"
	"strings"
	"time"

	"invoicing-app/internal/domain/billing"
	"invoicing-app/internal/store"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type IssueParams struct {
	TenantID      uuid.UUID
	CustomerID    uuid.UUID
	PaymentID     *uuid.UUID
	InvoiceID     *uuid.UUID
	Amount        decimal.Decimal
	Currency      string
	PaymentMethod string
	Reference     string
	IssueDate     time.Time
	Notes         string
}

// Issuer hands out REC-nnnn numbers from the tenant's counter. It must run
// inside the transaction that records the payment so the number, the receipt
// and the payment commit together.
type Issuer struct{}

func NewIssuer() *Issuer { return &Issuer{} }

func (i *Issuer) Issue(ctx context.Context, tx store.Store, p IssueParams) (*billing.Receipt, error) {
	n, err := tx.NextReceiptNumber(ctx, p.TenantID)
	if err != nil {
		return nil, fmt.Errorf("next receipt number: %w", err)
	}

	method := strings.TrimSpace(p.PaymentMethod)
	if method == "" {
		method = "card"
	}

	r := &billing.Receipt{
		TenantID:      p.TenantID,
		ReceiptNumber: billing.FormatReceiptNumber(n),
		CustomerID:    p.CustomerID,
		PaymentID:     p.PaymentID,
		InvoiceID:     p.InvoiceID,
		Amount:        p.Amount,
		Currency:      p.Currency,
		PaymentMethod: method,
		Reference:     p.Reference,
		IssueDate:     p.IssueDate,
		Notes:         p.Notes,
	}
	if err := tx.CreateReceipt(ctx, r); err != nil {
		return nil, fmt.Errorf("create receipt: %w", err)
	}
	return r, nil
}
