// Package reconcile applies payment gateway outcomes to payments, invoices,
// subscriptions and receipts. The webhook (push) and verify (pull) triggers
// both funnel into ApplySuccessfulPayment, which re-reads the payment under a
// row lock and no-ops when another trigger already applied it.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"invoicing-app/internal/apperr"
	"invoicing-app/internal/app/audit"
	"invoicing-app/internal/app/notify"
	"invoicing-app/internal/app/receipts"
	auditlog "invoicing-app/internal/domain/audit"
	"invoicing-app/internal/domain/billing"
	"invoicing-app/internal/domain/invoices"
	"invoicing-app/internal/domain/subscriptions"
	"invoicing-app/internal/infra/gateway"
	"invoicing-app/internal/store"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Outcome string

const (
	OutcomeApplied           Outcome = "applied"
	OutcomeAlreadyReconciled Outcome = "already_reconciled"
	OutcomeMarkedFailed      Outcome = "marked_failed"
	OutcomeAmountMismatch    Outcome = "amount_mismatch"
	OutcomeUnknownReference  Outcome = "unknown_reference"
	OutcomeInvoiceMissing    Outcome = "invoice_missing"
	OutcomeIgnored           Outcome = "ignored"
)

// Result is the state after reconciliation. Only the entities the payment
// touches are set.
type Result struct {
	Outcome      Outcome
	Payment      *billing.Payment
	Invoice      *invoices.Invoice
	Receipt      *billing.Receipt
	Subscription *subscriptions.Subscription
}

// Deduper remembers webhook deliveries that were fully applied.
type Deduper interface {
	Seen(ctx context.Context, event, reference string) (bool, error)
	MarkApplied(ctx context.Context, event, reference string) (bool, error)
}

type Reconciler struct {
	store    store.Store
	gateway  gateway.Gateway
	issuer   *receipts.Issuer
	audit    *audit.Recorder
	notifier notify.Notifier
	dedupe   Deduper
	log      *slog.Logger
	now      func() time.Time
}

type Option func(*Reconciler)

// WithDeduper enables the redelivery fast path.
func WithDeduper(d Deduper) Option {
	return func(r *Reconciler) { r.dedupe = d }
}

func WithClock(now func() time.Time) Option {
	return func(r *Reconciler) { r.now = now }
}

func New(s store.Store, gw gateway.Gateway, issuer *receipts.Issuer, rec *audit.Recorder, n notify.Notifier, log *slog.Logger, opts ...Option) *Reconciler {
	r := &Reconciler{
		store:    s,
		gateway:  gw,
		issuer:   issuer,
		audit:    rec,
		notifier: n,
		log:      log,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Reconciler) Gateway() gateway.Gateway { return r.gateway }

// ApplySuccessfulPayment moves the payment to success and settles what it
// pays for, all in one transaction. A payment that is already successful is
// returned unchanged with OutcomeAlreadyReconciled. A failed payment may
// still succeed later, e.g. an abandoned checkout the payer resumed.
func (r *Reconciler) ApplySuccessfulPayment(ctx context.Context, txn gateway.Transaction) (*Result, error) {
	if strings.TrimSpace(txn.Reference) == "" {
		return nil, apperr.New(apperr.Validation, "transaction reference is required")
	}

	var (
		res     *Result
		confirm *notify.PaymentConfirmation
	)
	err := r.store.Transaction(ctx, func(tx store.Store) error {
		res, confirm = nil, nil

		p, err := r.lockOrAdoptPayment(ctx, tx, txn)
		if err != nil {
			return err
		}

		if p.IsSuccessful() {
			res, err = r.loadSettled(ctx, tx, p)
			return err
		}

		mismatch := amountMismatch(p, txn)
		if mismatch == "" {
			if mismatch, err = invoiceTotalChanged(ctx, tx, p); err != nil {
				return err
			}
		}
		if mismatch != "" {
			if p.Status == billing.PaymentFailed {
				res, err = r.loadSettled(ctx, tx, p)
				return err
			}
			res, err = r.markFailed(ctx, tx, p, txn, mismatch)
			if res != nil {
				res.Outcome = OutcomeAmountMismatch
			}
			return err
		}

		now := r.now()
		paidAt := now
		if txn.PaidAt != nil {
			paidAt = *txn.PaidAt
		}
		p.Status = billing.PaymentSuccess
		p.Channel = txn.Channel
		p.Fees = gateway.FromMinorUnits(txn.FeesMinor)
		p.GatewayResponse = txn.GatewayResponse
		p.GatewayData = gatewayData(txn)
		p.PaidAt = &paidAt

		res = &Result{Outcome: OutcomeApplied, Payment: p}

		switch purpose := p.Purpose().(type) {
		case billing.InvoicePurpose:
			confirm, err = r.settleInvoice(ctx, tx, p, purpose, res, now)
		case billing.UpgradePurpose:
			err = r.settleUpgrade(ctx, tx, p, purpose, res, now)
		case billing.AdhocPurpose:
			err = r.settleAdhoc(ctx, tx, p, purpose, res, now)
		default:
			err = apperr.Newf(apperr.Internal, "payment %s has no purpose", p.Reference)
		}
		if err != nil {
			return err
		}

		return tx.SavePayment(ctx, p)
	})
	if err != nil {
		return nil, err
	}

	switch res.Outcome {
	case OutcomeApplied:
		r.log.Info("payment applied",
			slog.String("reference", res.Payment.Reference),
			slog.String("tenant_id", res.Payment.TenantID.String()),
			slog.String("purpose", string(res.Payment.PurposeKind)),
		)
		if confirm != nil {
			r.sendConfirmation(ctx, *confirm)
		}
	case OutcomeAmountMismatch:
		r.log.Warn("payment amount mismatch",
			slog.String("reference", res.Payment.Reference),
			slog.String("reason", res.Payment.GatewayResponse),
			slog.Int64("received_minor", txn.AmountMinor),
		)
	case OutcomeInvoiceMissing:
		r.log.Warn("payment succeeded for a deleted invoice",
			slog.String("reference", res.Payment.Reference),
			slog.String("tenant_id", res.Payment.TenantID.String()),
		)
	}
	return res, nil
}

// ApplyFailedPayment marks a pending payment failed. Settled payments are
// never downgraded.
func (r *Reconciler) ApplyFailedPayment(ctx context.Context, txn gateway.Transaction) (*Result, error) {
	var res *Result
	err := r.store.Transaction(ctx, func(tx store.Store) error {
		p, err := tx.LockPaymentByReference(ctx, txn.Reference)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return apperr.Newf(apperr.PaymentRecordNotFound, "no payment with reference %q", txn.Reference)
			}
			return err
		}
		if p.Status != billing.PaymentPending {
			res, err = r.loadSettled(ctx, tx, p)
			return err
		}

		reason := txn.GatewayResponse
		if reason == "" {
			reason = "payment failed"
		}
		res, err = r.markFailed(ctx, tx, p, txn, reason)
		return err
	})
	if err != nil {
		return nil, err
	}
	if res.Outcome == OutcomeMarkedFailed {
		r.log.Info("payment marked failed",
			slog.String("reference", res.Payment.Reference),
			slog.String("reason", res.Payment.GatewayResponse),
		)
	}
	return res, nil
}

// lockOrAdoptPayment locks the payment for txn. An upgrade checkout whose
// local row was never written is adopted from the gateway metadata.
func (r *Reconciler) lockOrAdoptPayment(ctx context.Context, tx store.Store, txn gateway.Transaction) (*billing.Payment, error) {
	p, err := tx.LockPaymentByReference(ctx, txn.Reference)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	p, ok := paymentFromMetadata(txn)
	if !ok {
		return nil, apperr.Newf(apperr.PaymentRecordNotFound, "no payment with reference %q", txn.Reference)
	}
	if _, err := tx.GetTenant(ctx, p.TenantID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.Newf(apperr.PaymentRecordNotFound, "no payment with reference %q", txn.Reference)
		}
		return nil, err
	}
	if err := tx.CreatePayment(ctx, p); err != nil {
		return nil, fmt.Errorf("adopt payment %s: %w", txn.Reference, err)
	}
	r.log.Warn("adopted upgrade payment from gateway metadata", slog.String("reference", txn.Reference))
	return p, nil
}

func paymentFromMetadata(txn gateway.Transaction) (*billing.Payment, bool) {
	if txn.Metadata[gateway.MetaType] != gateway.TypeUpgrade {
		return nil, false
	}
	tenantID, err := uuid.Parse(txn.Metadata[gateway.MetaTenantID])
	if err != nil {
		return nil, false
	}
	planID, err := uuid.Parse(txn.Metadata[gateway.MetaPlanID])
	if err != nil {
		return nil, false
	}

	p := &billing.Payment{
		TenantID:  tenantID,
		Reference: txn.Reference,
		Amount:    gateway.FromMinorUnits(txn.AmountMinor),
		Currency:  strings.ToUpper(txn.Currency),
		Status:    billing.PaymentPending,
	}
	if userID, err := uuid.Parse(txn.Metadata[gateway.MetaUserID]); err == nil {
		p.UserID = &userID
	}
	p.SetPurpose(billing.UpgradePurpose{PlanID: planID})
	return p, true
}

func amountMismatch(p *billing.Payment, txn gateway.Transaction) string {
	if want := gateway.ToMinorUnits(p.Amount); txn.AmountMinor != want {
		return fmt.Sprintf("amount mismatch: expected %d, received %d", want, txn.AmountMinor)
	}
	if txn.Currency != "" && !strings.EqualFold(txn.Currency, p.Currency) {
		return fmt.Sprintf("currency mismatch: expected %s, received %s", p.Currency, txn.Currency)
	}
	return ""
}

// invoiceTotalChanged catches an invoice edited after its payment link was
// issued. Paid or deleted invoices are left to settleInvoice.
func invoiceTotalChanged(ctx context.Context, tx store.Store, p *billing.Payment) (string, error) {
	if p.PurposeKind != billing.PurposeInvoice || p.InvoiceID == nil {
		return "", nil
	}
	inv, err := tx.LockInvoice(ctx, p.TenantID, *p.InvoiceID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", nil
		}
		return "", err
	}
	if inv.IsPaid() || inv.Total.Equal(p.Amount) {
		return "", nil
	}
	return fmt.Sprintf("invoice total changed: link was for %s, invoice is now %s",
		p.Amount.StringFixed(2), inv.Total.StringFixed(2)), nil
}

func gatewayData(txn gateway.Transaction) datatypes.JSONMap {
	data := datatypes.JSONMap{"status": txn.Status}
	if len(txn.Authorization) > 0 {
		data["authorization"] = txn.Authorization
	}
	if len(txn.Metadata) > 0 {
		meta := make(map[string]any, len(txn.Metadata))
		for k, v := range txn.Metadata {
			meta[k] = v
		}
		data["metadata"] = meta
	}
	return data
}

func (r *Reconciler) markFailed(ctx context.Context, tx store.Store, p *billing.Payment, txn gateway.Transaction, reason string) (*Result, error) {
	p.Status = billing.PaymentFailed
	p.GatewayResponse = reason
	p.GatewayData = gatewayData(txn)
	if err := tx.SavePayment(ctx, p); err != nil {
		return nil, err
	}

	err := r.audit.Record(ctx, tx, audit.Entry{
		TenantID:   p.TenantID,
		UserID:     p.UserID,
		Action:     auditlog.ActionPaymentFailed,
		EntityType: "payment",
		EntityID:   p.ID.String(),
		Metadata: map[string]any{
			"reference": p.Reference,
			"purpose":   string(p.PurposeKind),
			"reason":    reason,
		},
	})
	if err != nil {
		return nil, err
	}
	return &Result{Outcome: OutcomeMarkedFailed, Payment: p}, nil
}

// loadSettled reports a payment that is no longer pending together with the
// entities it settled.
func (r *Reconciler) loadSettled(ctx context.Context, tx store.Store, p *billing.Payment) (*Result, error) {
	res := &Result{Outcome: OutcomeAlreadyReconciled, Payment: p}
	if !p.IsSuccessful() {
		return res, nil
	}

	if p.InvoiceID != nil {
		inv, err := tx.GetInvoice(ctx, p.TenantID, *p.InvoiceID)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			return nil, err
		}
		res.Invoice = inv
	}
	if p.PurposeKind == billing.PurposeUpgrade {
		sub, err := tx.GetSubscriptionByTenant(ctx, p.TenantID)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			return nil, err
		}
		res.Subscription = sub
	}
	rc, err := tx.GetReceiptByPayment(ctx, p.ID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}
	res.Receipt = rc
	return res, nil
}

func (r *Reconciler) sendConfirmation(ctx context.Context, c notify.PaymentConfirmation) {
	msg, err := c.Message()
	if err == nil {
		err = r.notifier.SendEmail(ctx, msg)
	}
	if err != nil {
		r.log.Warn("payment confirmation email failed",
			slog.String("reference", c.Reference),
			slog.String("error", err.Error()),
		)
	}
}
