package receipts

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
	"invoicing-app/internal/store"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ManualReceipt struct {
	CustomerID    uuid.UUID
	Amount        decimal.Decimal
	Currency      string
	PaymentMethod string
	Reference     string
	IssueDate     *time.Time
	Notes         string
	InvoiceID     *uuid.UUID
}

type Correction struct {
	Notes         *string
	PaymentMethod *string
}

type Service struct {
	store  store.Store
	issuer *Issuer
	audit  *audit.Recorder
	log    *slog.Logger
	now    func() time.Time
}

func NewService(s store.Store, issuer *Issuer, rec *audit.Recorder, log *slog.Logger) *Service {
	return &Service{store: s, issuer: issuer, audit: rec, log: log, now: time.Now}
}

// CreateManual records money received outside the gateway (cash, transfer).
// A success Payment with an adhoc purpose is written alongside the receipt so
// every receipt traces back to a payment.
func (s *Service) CreateManual(ctx context.Context, tenantID uuid.UUID, userID *uuid.UUID, in ManualReceipt) (*billing.Receipt, error) {
	if !in.Amount.IsPositive() {
		return nil, apperr.New(apperr.Validation, "amount must be greater than zero")
	}
	if in.CustomerID == uuid.Nil {
		return nil, apperr.New(apperr.Validation, "customerId is required")
	}

	now := s.now()
	issueDate := now
	if in.IssueDate != nil {
		issueDate = *in.IssueDate
	}
	method := strings.TrimSpace(in.PaymentMethod)
	if method == "" {
		method = "cash"
	}

	var receipt *billing.Receipt
	err := s.store.Transaction(ctx, func(tx store.Store) error {
		customer, err := tx.GetCustomer(ctx, tenantID, in.CustomerID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return apperr.New(apperr.NotFound, "customer not found")
			}
			return err
		}

		currency := in.Currency
		if in.InvoiceID != nil {
			inv, err := tx.GetInvoice(ctx, tenantID, *in.InvoiceID)
			if err != nil {
				if errors.Is(err, store.ErrNotFound) {
					return apperr.New(apperr.NotFound, "invoice not found")
				}
				return err
			}
			if inv.CustomerID != customer.ID {
				return apperr.New(apperr.Validation, "invoice belongs to a different customer")
			}
			if currency == "" {
				currency = inv.Currency
			}
		}
		if currency == "" {
			tenant, err := tx.GetTenant(ctx, tenantID)
			if err != nil {
				return err
			}
			currency = tenant.Currency
		}

		reference := strings.TrimSpace(in.Reference)
		if reference == "" {
			reference = billing.NewReference("RCPT", now)
		}

		payment := &billing.Payment{
			TenantID:  tenantID,
			Reference: reference,
			UserID:    userID,
			Amount:    in.Amount,
			Currency:  currency,
			Status:    billing.PaymentSuccess,
			Channel:   method,
			PaidAt:    &issueDate,
		}
		payment.SetPurpose(billing.AdhocPurpose{CustomerID: customer.ID})
		if err := tx.CreatePayment(ctx, payment); err != nil {
			if errors.Is(err, store.ErrDuplicate) {
				return apperr.Newf(apperr.Conflict, "reference %q is already in use", reference)
			}
			return err
		}

		receipt, err = s.issuer.Issue(ctx, tx, IssueParams{
			TenantID:      tenantID,
			CustomerID:    customer.ID,
			PaymentID:     &payment.ID,
			InvoiceID:     in.InvoiceID,
			Amount:        in.Amount,
			Currency:      currency,
			PaymentMethod: method,
			Reference:     reference,
			IssueDate:     issueDate,
			Notes:         in.Notes,
		})
		if err != nil {
			if errors.Is(err, store.ErrDuplicate) {
				return apperr.Wrap(apperr.Conflict, "receipt number already taken, retry", err)
			}
			return err
		}

		return s.audit.Record(ctx, tx, audit.Entry{
			TenantID:   tenantID,
			UserID:     userID,
			Action:     auditlog.ActionReceiptIssued,
			EntityType: "receipt",
			EntityID:   receipt.ID.String(),
			Metadata: map[string]any{
				"receiptNumber": receipt.ReceiptNumber,
				"amount":        receipt.Amount.StringFixed(2),
				"reference":     reference,
				"manual":        true,
			},
		})
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("manual receipt issued",
		slog.String("tenant_id", tenantID.String()),
		slog.String("receipt_number", receipt.ReceiptNumber),
	)
	return receipt, nil
}

func (s *Service) List(ctx context.Context, tenantID uuid.UUID, page store.Page) ([]billing.Receipt, error) {
	return s.store.ListReceipts(ctx, tenantID, page)
}

func (s *Service) Get(ctx context.Context, tenantID, id uuid.UUID) (*billing.Receipt, error) {
	r, err := s.store.GetReceipt(ctx, tenantID, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.New(apperr.NotFound, "receipt not found")
	}
	return r, err
}

// Update corrects the free-text fields. Amounts, numbers and links are fixed
// once issued.
func (s *Service) Update(ctx context.Context, tenantID uuid.UUID, userID *uuid.UUID, id uuid.UUID, c Correction) (*billing.Receipt, error) {
	if c.Notes == nil && c.PaymentMethod == nil {
		return nil, apperr.New(apperr.Validation, "nothing to update")
	}

	var out *billing.Receipt
	err := s.store.Transaction(ctx, func(tx store.Store) error {
		r, err := tx.GetReceipt(ctx, tenantID, id)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return apperr.New(apperr.NotFound, "receipt not found")
			}
			return err
		}

		before := map[string]any{"notes": r.Notes, "paymentMethod": r.PaymentMethod}
		if c.Notes != nil {
			r.Notes = *c.Notes
		}
		if c.PaymentMethod != nil {
			method := strings.TrimSpace(*c.PaymentMethod)
			if method == "" {
				return apperr.New(apperr.Validation, "paymentMethod cannot be empty")
			}
			r.PaymentMethod = method
		}
		if err := tx.SaveReceipt(ctx, r); err != nil {
			return err
		}
		out = r

		return s.audit.Record(ctx, tx, audit.Entry{
			TenantID:   tenantID,
			UserID:     userID,
			Action:     auditlog.ActionReceiptUpdated,
			EntityType: "receipt",
			EntityID:   r.ID.String(),
			Metadata: map[string]any{
				"before": before,
				"after":  map[string]any{"notes": r.Notes, "paymentMethod": r.PaymentMethod},
			},
		})
	})
	return out, err
}
