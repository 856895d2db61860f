package catalog

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"invoicing-app/internal/apperr"
	"invoicing-app/internal/app/audit"
	auditlog "invoicing-app/internal/domain/audit"
	"invoicing-app/internal/domain/billing"
	"invoicing-app/internal/domain/invoices"
	"invoicing-app/internal/domain/plans"
	"invoicing-app/internal/store"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type LineInput struct {
	ItemID      *uuid.UUID
	Description string
	Quantity    decimal.Decimal
	UnitPrice   *decimal.Decimal
	TaxRate     *decimal.Decimal
}

type InvoiceInput struct {
	CustomerID    uuid.UUID
	InvoiceNumber string
	Currency      string
	IssueDate     *time.Time
	DueDate       *time.Time
	Notes         string
	Lines         []LineInput
}

// InvoiceUpdate leaves nil fields untouched. Lines, when non-nil, replace
// every existing line.
type InvoiceUpdate struct {
	CustomerID    *uuid.UUID
	InvoiceNumber *string
	Status        *invoices.Status
	IssueDate     *time.Time
	DueDate       *time.Time
	Notes         *string
	Lines         []LineInput
}

func (s *Service) buildLines(ctx context.Context, tx store.Store, tenantID uuid.UUID, in []LineInput) ([]invoices.LineItem, error) {
	if len(in) == 0 {
		return nil, apperr.New(apperr.Validation, "at least one line item is required")
	}

	lines := make([]invoices.LineItem, 0, len(in))
	for idx, li := range in {
		line := invoices.LineItem{
			ItemID:      li.ItemID,
			Description: strings.TrimSpace(li.Description),
			Quantity:    li.Quantity,
		}
		if li.ItemID != nil {
			item, err := tx.GetItem(ctx, tenantID, *li.ItemID)
			if err != nil {
				if errors.Is(err, store.ErrNotFound) {
					return nil, apperr.Newf(apperr.Validation, "line %d: item not found", idx+1)
				}
				return nil, err
			}
			if line.Description == "" {
				line.Description = item.Name
			}
			line.UnitPrice = item.UnitPrice
			line.TaxRate = item.TaxRate
		}
		if li.UnitPrice != nil {
			line.UnitPrice = *li.UnitPrice
		}
		if li.TaxRate != nil {
			line.TaxRate = *li.TaxRate
		}

		switch {
		case line.Description == "":
			return nil, apperr.Newf(apperr.Validation, "line %d: description is required", idx+1)
		case !line.Quantity.IsPositive():
			return nil, apperr.Newf(apperr.Validation, "line %d: quantity must be greater than zero", idx+1)
		case line.UnitPrice.IsNegative():
			return nil, apperr.Newf(apperr.Validation, "line %d: unitPrice cannot be negative", idx+1)
		}
		if err := validTaxRate(line.TaxRate); err != nil {
			return nil, apperr.Newf(apperr.Validation, "line %d: taxRate must be between 0 and 100", idx+1)
		}
		lines = append(lines, line)
	}
	return lines, nil
}

// nextInvoiceNumber proposes INV-<count+1> and walks forward past numbers
// that were typed in by hand.
func nextInvoiceNumber(ctx context.Context, tx store.Store, tenantID uuid.UUID) (string, error) {
	n, err := tx.CountResource(ctx, tenantID, plans.ResourceInvoices)
	if err != nil {
		return "", err
	}
	for seq := int64(n) + 1; ; seq++ {
		number := invoices.FormatNumber(seq)
		taken, err := tx.InvoiceNumberExists(ctx, tenantID, number, uuid.Nil)
		if err != nil {
			return "", err
		}
		if !taken {
			return number, nil
		}
	}
}

func (s *Service) CreateInvoice(ctx context.Context, tenantID uuid.UUID, in InvoiceInput) (*invoices.Invoice, error) {
	tenant, err := s.gate(ctx, tenantID, plans.ResourceInvoices)
	if err != nil {
		return nil, err
	}

	var inv *invoices.Invoice
	err = s.store.Transaction(ctx, func(tx store.Store) error {
		customer, err := tx.GetCustomer(ctx, tenantID, in.CustomerID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return apperr.New(apperr.Validation, "customer not found")
			}
			return err
		}
		lines, err := s.buildLines(ctx, tx, tenantID, in.Lines)
		if err != nil {
			return err
		}

		number := strings.TrimSpace(in.InvoiceNumber)
		if number == "" {
			if number, err = nextInvoiceNumber(ctx, tx, tenantID); err != nil {
				return err
			}
		} else if taken, err := tx.InvoiceNumberExists(ctx, tenantID, number, uuid.Nil); err != nil {
			return err
		} else if taken {
			return apperr.Newf(apperr.Conflict, "Invoice number %s already exists", number)
		}

		currency := strings.ToUpper(strings.TrimSpace(in.Currency))
		if currency == "" {
			currency = tenant.Currency
		}
		issueDate := s.now()
		if in.IssueDate != nil {
			issueDate = *in.IssueDate
		}
		if in.DueDate != nil && in.DueDate.Before(issueDate) {
			return apperr.New(apperr.Validation, "dueDate cannot be before issueDate")
		}

		inv = &invoices.Invoice{
			TenantID:      tenantID,
			CustomerID:    customer.ID,
			InvoiceNumber: number,
			Status:        invoices.StatusDraft,
			PaymentStatus: invoices.PaymentUnpaid,
			Currency:      currency,
			IssueDate:     issueDate,
			DueDate:       in.DueDate,
			Notes:         in.Notes,
			Lines:         lines,
		}
		inv.Recalculate()
		if err := tx.CreateInvoice(ctx, inv); err != nil {
			if errors.Is(err, store.ErrDuplicate) {
				return apperr.Newf(apperr.Conflict, "Invoice number %s already exists", number)
			}
			return err
		}
		inv.Customer = customer
		return nil
	})
	if err != nil {
		return nil, err
	}
	return inv, nil
}

func (s *Service) GetInvoice(ctx context.Context, tenantID, id uuid.UUID) (*invoices.Invoice, error) {
	inv, err := s.store.GetInvoice(ctx, tenantID, id)
	if err != nil {
		return nil, notFound(err, "Invoice")
	}
	return inv, nil
}

func (s *Service) ListInvoices(ctx context.Context, tenantID uuid.UUID, page store.Page) ([]invoices.Invoice, error) {
	return s.store.ListInvoices(ctx, tenantID, page)
}

// UpdateInvoice rejects any change to a paid invoice.
func (s *Service) UpdateInvoice(ctx context.Context, tenantID, id uuid.UUID, up InvoiceUpdate) (*invoices.Invoice, error) {
	var inv *invoices.Invoice
	err := s.store.Transaction(ctx, func(tx store.Store) error {
		var err error
		inv, err = tx.LockInvoice(ctx, tenantID, id)
		if err != nil {
			return notFound(err, "Invoice")
		}
		if inv.IsPaid() {
			return apperr.New(apperr.Conflict, "Paid invoices cannot be edited")
		}

		if up.CustomerID != nil && *up.CustomerID != inv.CustomerID {
			c, err := tx.GetCustomer(ctx, tenantID, *up.CustomerID)
			if err != nil {
				if errors.Is(err, store.ErrNotFound) {
					return apperr.New(apperr.Validation, "customer not found")
				}
				return err
			}
			inv.CustomerID = c.ID
			inv.Customer = c
		}
		if up.InvoiceNumber != nil {
			number := strings.TrimSpace(*up.InvoiceNumber)
			if number == "" {
				return apperr.New(apperr.Validation, "invoiceNumber cannot be empty")
			}
			taken, err := tx.InvoiceNumberExists(ctx, tenantID, number, inv.ID)
			if err != nil {
				return err
			}
			if taken {
				return apperr.Newf(apperr.Conflict, "Invoice number %s already exists", number)
			}
			inv.InvoiceNumber = number
		}
		if up.Status != nil {
			if !up.Status.Valid() {
				return apperr.Newf(apperr.Validation, "unknown status %q", *up.Status)
			}
			inv.Status = *up.Status
		}
		if up.IssueDate != nil {
			inv.IssueDate = *up.IssueDate
		}
		if up.DueDate != nil {
			inv.DueDate = up.DueDate
		}
		if inv.DueDate != nil && inv.DueDate.Before(inv.IssueDate) {
			return apperr.New(apperr.Validation, "dueDate cannot be before issueDate")
		}
		if up.Notes != nil {
			inv.Notes = *up.Notes
		}

		if up.Lines != nil {
			lines, err := s.buildLines(ctx, tx, tenantID, up.Lines)
			if err != nil {
				return err
			}
			inv.Lines = lines
			inv.Recalculate()
			if err := tx.ReplaceInvoiceLines(ctx, inv.ID, inv.Lines); err != nil {
				return err
			}
		}

		if err := tx.SaveInvoice(ctx, inv); err != nil {
			if errors.Is(err, store.ErrDuplicate) {
				return apperr.Newf(apperr.Conflict, "Invoice number %s already exists", inv.InvoiceNumber)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return inv, nil
}

func (s *Service) DeleteInvoice(ctx context.Context, tenantID uuid.UUID, userID *uuid.UUID, id uuid.UUID) error {
	err := s.store.Transaction(ctx, func(tx store.Store) error {
		inv, err := tx.LockInvoice(ctx, tenantID, id)
		if err != nil {
			return notFound(err, "Invoice")
		}
		if inv.IsPaid() {
			return apperr.New(apperr.Conflict, "Paid invoices cannot be deleted")
		}
		pending, err := tx.CountInvoicePayments(ctx, tenantID, id, billing.PaymentPending)
		if err != nil {
			return err
		}
		if pending > 0 {
			return apperr.New(apperr.Conflict, "Invoice has a payment in progress and cannot be deleted")
		}
		if err := tx.DeleteInvoice(ctx, tenantID, id); err != nil {
			return notFound(err, "Invoice")
		}
		return s.audit.Record(ctx, tx, audit.Entry{
			TenantID:   tenantID,
			UserID:     userID,
			Action:     auditlog.ActionInvoiceDeleted,
			EntityType: "invoice",
			EntityID:   id.String(),
			Metadata: map[string]any{
				"invoiceNumber": inv.InvoiceNumber,
				"total":         inv.Total.StringFixed(2),
			},
		})
	})
	if err != nil {
		return err
	}
	s.log.Info("invoice deleted", slog.String("tenant_id", tenantID.String()), slog.String("invoice_id", id.String()))
	return nil
}
