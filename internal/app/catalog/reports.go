package catalog

import (
	"context"
	"encoding/csv"
	"io"
	"time"

	"invoicing-app/internal/domain/billing"
	"invoicing-app/internal/domain/invoices"
	"invoicing-app/internal/domain/plans"
	"invoicing-app/internal/store"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const scanPage = 200

type Summary struct {
	Currency         string          `json:"currency"`
	InvoiceCount     int             `json:"invoice_count"`
	PaidCount        int             `json:"paid_count"`
	UnpaidCount      int             `json:"unpaid_count"`
	OverdueCount     int             `json:"overdue_count"`
	TotalInvoiced    decimal.Decimal `json:"total_invoiced"`
	TotalPaid        decimal.Decimal `json:"total_paid"`
	TotalOutstanding decimal.Decimal `json:"total_outstanding"`
	ReceiptCount     int             `json:"receipt_count"`
	ReceiptTotal     decimal.Decimal `json:"receipt_total"`
	CustomerCount    int             `json:"customer_count"`
}

func (s *Service) eachInvoice(ctx context.Context, tenantID uuid.UUID, fn func(*invoices.Invoice) error) error {
	for offset := 0; ; offset += scanPage {
		page, err := s.store.ListInvoices(ctx, tenantID, store.Page{Limit: scanPage, Offset: offset})
		if err != nil {
			return err
		}
		for i := range page {
			if err := fn(&page[i]); err != nil {
				return err
			}
		}
		if len(page) < scanPage {
			return nil
		}
	}
}

func (s *Service) eachReceipt(ctx context.Context, tenantID uuid.UUID, fn func(*billing.Receipt)) error {
	for offset := 0; ; offset += scanPage {
		page, err := s.store.ListReceipts(ctx, tenantID, store.Page{Limit: scanPage, Offset: offset})
		if err != nil {
			return err
		}
		for i := range page {
			fn(&page[i])
		}
		if len(page) < scanPage {
			return nil
		}
	}
}

func isOverdue(inv *invoices.Invoice, now time.Time) bool {
	if inv.IsPaid() || inv.Status == invoices.StatusCanceled {
		return false
	}
	return inv.Status == invoices.StatusOverdue || (inv.DueDate != nil && inv.DueDate.Before(now))
}

// Summary totals the tenant's invoices and receipts. Canceled invoices are
// counted but excluded from money totals.
func (s *Service) Summary(ctx context.Context, tenantID uuid.UUID) (*Summary, error) {
	tenant, err := s.tenants.RequireActive(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	sum := &Summary{
		Currency:         tenant.Currency,
		TotalInvoiced:    decimal.Zero,
		TotalPaid:        decimal.Zero,
		TotalOutstanding: decimal.Zero,
		ReceiptTotal:     decimal.Zero,
	}

	err = s.eachInvoice(ctx, tenantID, func(inv *invoices.Invoice) error {
		sum.InvoiceCount++
		if inv.Status == invoices.StatusCanceled {
			return nil
		}
		sum.TotalInvoiced = sum.TotalInvoiced.Add(inv.Total)
		if inv.IsPaid() {
			sum.PaidCount++
			sum.TotalPaid = sum.TotalPaid.Add(inv.Total)
			return nil
		}
		sum.UnpaidCount++
		sum.TotalOutstanding = sum.TotalOutstanding.Add(inv.Total)
		if isOverdue(inv, now) {
			sum.OverdueCount++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = s.eachReceipt(ctx, tenantID, func(r *billing.Receipt) {
		sum.ReceiptCount++
		sum.ReceiptTotal = sum.ReceiptTotal.Add(r.Amount)
	})
	if err != nil {
		return nil, err
	}

	n, err := s.store.CountResource(ctx, tenantID, plans.ResourceCustomers)
	if err != nil {
		return nil, err
	}
	sum.CustomerCount = n
	return sum, nil
}

var exportHeader = []string{
	"invoice_number", "customer", "customer_email", "status", "payment_status",
	"currency", "issue_date", "due_date", "subtotal", "tax_total", "total", "paid_at",
}

func dateOrEmpty(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}

// ExportInvoices writes every invoice of the tenant as CSV, newest first.
func (s *Service) ExportInvoices(ctx context.Context, tenantID uuid.UUID, w io.Writer) error {
	if _, err := s.tenants.RequireActive(ctx, tenantID); err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		return err
	}
	err := s.eachInvoice(ctx, tenantID, func(inv *invoices.Invoice) error {
		var name, email string
		if inv.Customer != nil {
			name, email = inv.Customer.Name, inv.Customer.Email
		}
		return cw.Write([]string{
			inv.InvoiceNumber,
			name,
			email,
			string(inv.Status),
			string(inv.PaymentStatus),
			inv.Currency,
			inv.IssueDate.Format("2006-01-02"),
			dateOrEmpty(inv.DueDate),
			inv.Subtotal.StringFixed(2),
			inv.TaxTotal.StringFixed(2),
			inv.Total.StringFixed(2),
			dateOrEmpty(inv.PaidAt),
		})
	})
	if err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}
