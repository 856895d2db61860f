package reconcile

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"invoicing-app/internal/apperr"
	"invoicing-app/internal/domain/billing"
	"invoicing-app/internal/infra/gateway"
	"invoicing-app/internal/store"

	"github.com/google/uuid"
)

// Scope narrows which payments a verify call may touch. Zero fields match
// anything.
type Scope struct {
	TenantID  *uuid.UUID
	InvoiceID *uuid.UUID
	Purpose   billing.PurposeKind
}

func (s Scope) allows(p *billing.Payment) bool {
	if s.TenantID != nil && p.TenantID != *s.TenantID {
		return false
	}
	if s.InvoiceID != nil && (p.InvoiceID == nil || *p.InvoiceID != *s.InvoiceID) {
		return false
	}
	if s.Purpose != "" && p.PurposeKind != s.Purpose {
		return false
	}
	return true
}

// VerifyReference pulls the transaction status from the gateway and applies
// it. Calling it again after success returns the settled state without
// contacting the gateway. A gateway outage leaves local state untouched.
func (r *Reconciler) VerifyReference(ctx context.Context, scope Scope, reference string) (*Result, error) {
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return nil, apperr.New(apperr.Validation, "reference is required")
	}

	p, err := r.store.GetPaymentByReference(ctx, reference)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.New(apperr.PaymentRecordNotFound, "payment not found")
		}
		return nil, err
	}
	if !scope.allows(p) {
		return nil, apperr.New(apperr.PaymentRecordNotFound, "payment not found")
	}

	if p.IsSuccessful() {
		return r.loadSettled(ctx, r.store, p)
	}

	txn, err := r.gateway.VerifyTransaction(ctx, reference)
	if err != nil {
		if errors.Is(err, gateway.ErrRejected) {
			return nil, apperr.Wrap(apperr.GatewayReportedFailure, "payment could not be verified", err)
		}
		r.log.Error("gateway verify failed",
			slog.String("reference", reference),
			slog.String("error", err.Error()),
		)
		return nil, apperr.Wrap(apperr.GatewayUnreachable, "payment provider is unavailable, try again", err)
	}
	if txn.Reference == "" {
		txn.Reference = reference
	}

	switch txn.Status {
	case gateway.StatusSuccess:
		res, err := r.ApplySuccessfulPayment(ctx, *txn)
		if err != nil {
			return nil, err
		}
		if res.Outcome == OutcomeAmountMismatch {
			return res, apperr.New(apperr.GatewayReportedFailure, "amount paid does not match the amount due")
		}
		if res.Outcome == OutcomeAlreadyReconciled && !res.Payment.IsSuccessful() {
			return res, apperr.New(apperr.GatewayReportedFailure, failureMessage(res.Payment.GatewayResponse))
		}
		return res, nil

	case gateway.StatusFailed, gateway.StatusAbandoned:
		res, err := r.ApplyFailedPayment(ctx, *txn)
		if err != nil {
			return nil, err
		}
		if res.Payment.IsSuccessful() {
			return res, nil
		}
		return res, apperr.New(apperr.GatewayReportedFailure, failureMessage(txn.GatewayResponse))

	default:
		return &Result{Outcome: OutcomeIgnored, Payment: p}, apperr.New(apperr.PaymentNotSuccessful, "payment has not completed yet")
	}
}

func failureMessage(reason string) string {
	if reason == "" {
		return "payment was not successful"
	}
	return reason
}
