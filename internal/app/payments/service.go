// Package payments creates hosted payment links for invoices and exposes
// the verify entry points used after the payer returns from checkout.
package payments

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"invoicing-app/internal/apperr"
	"invoicing-app/internal/app/reconcile"
	"invoicing-app/internal/domain/billing"
	"invoicing-app/internal/domain/tenants"
	"invoicing-app/internal/infra/gateway"
	"invoicing-app/internal/store"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type TenantGuard interface {
	RequireActive(ctx context.Context, tenantID uuid.UUID) (*tenants.Tenant, error)
}

type Service struct {
	store       store.Store
	gateway     gateway.Gateway
	reconciler  *reconcile.Reconciler
	tenants     TenantGuard
	callbackURL string
	log         *slog.Logger
	now         func() time.Time
}

func NewService(s store.Store, gw gateway.Gateway, rec *reconcile.Reconciler, t TenantGuard, callbackURL string, log *slog.Logger) *Service {
	return &Service{
		store:       s,
		gateway:     gw,
		reconciler:  rec,
		tenants:     t,
		callbackURL: callbackURL,
		log:         log,
		now:         time.Now,
	}
}

type Link struct {
	AuthorizationURL string          `json:"authorization_url"`
	AccessCode       string          `json:"access_code"`
	Reference        string          `json:"reference"`
	Amount           decimal.Decimal `json:"amount"`
	Currency         string          `json:"currency"`
}

// CreateInvoiceLink opens a checkout for the invoice total and records the
// pending payment that reconciliation will settle.
func (s *Service) CreateInvoiceLink(ctx context.Context, tenantID uuid.UUID, userID *uuid.UUID, invoiceID uuid.UUID) (*Link, error) {
	tenant, err := s.tenants.RequireActive(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	inv, err := s.store.GetInvoice(ctx, tenantID, invoiceID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.New(apperr.NotFound, "Invoice not found")
		}
		return nil, err
	}
	if inv.IsPaid() {
		return nil, apperr.New(apperr.Conflict, "Invoice is already paid")
	}
	if !inv.Total.IsPositive() {
		return nil, apperr.New(apperr.Validation, "Invoice total must be greater than zero")
	}

	email := tenant.Email
	if inv.Customer != nil && inv.Customer.Email != "" {
		email = inv.Customer.Email
	}
	if email == "" {
		return nil, apperr.New(apperr.Validation, "an email address is required for online payment")
	}

	reference := billing.NewReference("INV", s.now())
	checkout, err := s.gateway.InitializeTransaction(ctx, gateway.InitializeRequest{
		Email:       email,
		AmountMinor: gateway.ToMinorUnits(inv.Total),
		Currency:    inv.Currency,
		Reference:   reference,
		Metadata: gateway.Metadata{
			gateway.MetaType:      gateway.TypeInvoice,
			gateway.MetaTenantID:  tenantID.String(),
			gateway.MetaInvoiceID: inv.ID.String(),
		},
		CallbackURL: s.callbackURL,
		Description: fmt.Sprintf("Invoice %s", inv.InvoiceNumber),
	})
	if err != nil {
		if errors.Is(err, gateway.ErrRejected) {
			return nil, apperr.Wrap(apperr.GatewayReportedFailure, "payment provider rejected the checkout", err)
		}
		return nil, apperr.Wrap(apperr.GatewayUnreachable, "payment provider is unavailable, try again", err)
	}

	p := &billing.Payment{
		TenantID:         tenantID,
		Reference:        reference,
		UserID:           userID,
		Amount:           inv.Total,
		Currency:         inv.Currency,
		Status:           billing.PaymentPending,
		AuthorizationURL: checkout.AuthorizationURL,
		AccessCode:       checkout.AccessCode,
	}
	p.SetPurpose(billing.InvoicePurpose{InvoiceID: inv.ID})
	if err := s.store.CreatePayment(ctx, p); err != nil {
		return nil, fmt.Errorf("record invoice payment: %w", err)
	}

	s.log.Info("invoice payment link created",
		slog.String("tenant_id", tenantID.String()),
		slog.String("invoice_id", inv.ID.String()),
		slog.String("reference", reference),
	)
	return &Link{
		AuthorizationURL: checkout.AuthorizationURL,
		AccessCode:       checkout.AccessCode,
		Reference:        reference,
		Amount:           inv.Total,
		Currency:         inv.Currency,
	}, nil
}

// VerifyInvoicePayment is the tenant-side verify for one invoice.
func (s *Service) VerifyInvoicePayment(ctx context.Context, tenantID, invoiceID uuid.UUID, reference string) (*reconcile.Result, error) {
	return s.reconciler.VerifyReference(ctx, reconcile.Scope{TenantID: &tenantID, InvoiceID: &invoiceID}, reference)
}

// VerifyCallback backs the public redirect page. The reference alone
// identifies the payment.
func (s *Service) VerifyCallback(ctx context.Context, reference string) (*reconcile.Result, error) {
	return s.reconciler.VerifyReference(ctx, reconcile.Scope{}, reference)
}

func (s *Service) List(ctx context.Context, tenantID uuid.UUID, page store.Page) ([]billing.Payment, error) {
	return s.store.ListPayments(ctx, tenantID, page)
}
