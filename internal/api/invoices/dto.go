package invoices

import (
	"fmt"
	"strings"
	"time"

	"invoicing-app/internal/app/catalog"
	"invoicing-app/internal/app/receipts"
	"invoicing-app/internal/domain/invoices"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Date accepts "2006-01-02" as well as RFC 3339.
type Date struct {
	time.Time
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		return nil
	}
	for _, layout := range []string{time.DateOnly, time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			d.Time = t
			return nil
		}
	}
	return fmt.Errorf("invalid date %q", s)
}

func (d *Date) ptr() *time.Time {
	if d == nil || d.IsZero() {
		return nil
	}
	t := d.Time
	return &t
}

// ---------- requests

type CustomerRequest struct {
	Name    *string `json:"name"`
	Email   *string `json:"email"`
	Phone   *string `json:"phone"`
	Address *string `json:"address"`
}

func (r CustomerRequest) input() catalog.CustomerInput {
	return catalog.CustomerInput{Name: r.Name, Email: r.Email, Phone: r.Phone, Address: r.Address}
}

type ItemRequest struct {
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	UnitPrice   *decimal.Decimal `json:"unit_price"`
	TaxRate     *decimal.Decimal `json:"tax_rate"`
}

func (r ItemRequest) input() catalog.ItemInput {
	return catalog.ItemInput{Name: r.Name, Description: r.Description, UnitPrice: r.UnitPrice, TaxRate: r.TaxRate}
}

type LineRequest struct {
	ItemID      *uuid.UUID       `json:"item_id"`
	Description string           `json:"description"`
	Quantity    decimal.Decimal  `json:"quantity"`
	UnitPrice   *decimal.Decimal `json:"unit_price"`
	TaxRate     *decimal.Decimal `json:"tax_rate"`
}

func lineInputs(in []LineRequest) []catalog.LineInput {
	if in == nil {
		return nil
	}
	out := make([]catalog.LineInput, 0, len(in))
	for _, l := range in {
		out = append(out, catalog.LineInput{
			ItemID:      l.ItemID,
			Description: l.Description,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
			TaxRate:     l.TaxRate,
		})
	}
	return out
}

type CreateInvoiceRequest struct {
	CustomerID    uuid.UUID     `json:"customer_id" binding:"required"`
	InvoiceNumber string        `json:"invoice_number"`
	Currency      string        `json:"currency"`
	IssueDate     *Date         `json:"issue_date"`
	DueDate       *Date         `json:"due_date"`
	Notes         string        `json:"notes"`
	Lines         []LineRequest `json:"lines"`
}

func (r CreateInvoiceRequest) input() catalog.InvoiceInput {
	return catalog.InvoiceInput{
		CustomerID:    r.CustomerID,
		InvoiceNumber: r.InvoiceNumber,
		Currency:      r.Currency,
		IssueDate:     r.IssueDate.ptr(),
		DueDate:       r.DueDate.ptr(),
		Notes:         r.Notes,
		Lines:         lineInputs(r.Lines),
	}
}

type UpdateInvoiceRequest struct {
	CustomerID    *uuid.UUID       `json:"customer_id"`
	InvoiceNumber *string          `json:"invoice_number"`
	Status        *invoices.Status `json:"status"`
	IssueDate     *Date            `json:"issue_date"`
	DueDate       *Date            `json:"due_date"`
	Notes         *string          `json:"notes"`
	Lines         []LineRequest    `json:"lines"`
}

func (r UpdateInvoiceRequest) input() catalog.InvoiceUpdate {
	return catalog.InvoiceUpdate{
		CustomerID:    r.CustomerID,
		InvoiceNumber: r.InvoiceNumber,
		Status:        r.Status,
		IssueDate:     r.IssueDate.ptr(),
		DueDate:       r.DueDate.ptr(),
		Notes:         r.Notes,
		Lines:         lineInputs(r.Lines),
	}
}

type SendInvoiceRequest struct {
	Channel string `json:"channel"`
}

type ManualReceiptRequest struct {
	CustomerID    uuid.UUID       `json:"customer_id" binding:"required"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	PaymentMethod string          `json:"payment_method"`
	Reference     string          `json:"reference"`
	IssueDate     *Date           `json:"issue_date"`
	Notes         string          `json:"notes"`
	InvoiceID     *uuid.UUID      `json:"invoice_id"`
}

func (r ManualReceiptRequest) input() receipts.ManualReceipt {
	return receipts.ManualReceipt{
		CustomerID:    r.CustomerID,
		Amount:        r.Amount,
		Currency:      r.Currency,
		PaymentMethod: r.PaymentMethod,
		Reference:     r.Reference,
		IssueDate:     r.IssueDate.ptr(),
		Notes:         r.Notes,
		InvoiceID:     r.InvoiceID,
	}
}

type ReceiptCorrectionRequest struct {
	Notes         *string `json:"notes"`
	PaymentMethod *string `json:"payment_method"`
}
