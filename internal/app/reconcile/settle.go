package reconcile

import (
	"context"
	"errors"
	"time"

	"invoicing-app/internal/apperr"
	"invoicing-app/internal/app/audit"
	"invoicing-app/internal/app/notify"
	"invoicing-app/internal/app/receipts"
	auditlog "invoicing-app/internal/domain/audit"
	"invoicing-app/internal/domain/billing"
	"invoicing-app/internal/store"
)

func (r *Reconciler) settleInvoice(ctx context.Context, tx store.Store, p *billing.Payment, purpose billing.InvoicePurpose, res *Result, now time.Time) (*notify.PaymentConfirmation, error) {
	inv, err := tx.LockInvoice(ctx, p.TenantID, purpose.InvoiceID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			res.Outcome = OutcomeInvoiceMissing
			return nil, r.audit.Record(ctx, tx, audit.Entry{
				TenantID:   p.TenantID,
				UserID:     p.UserID,
				Action:     auditlog.ActionPaymentUnmatched,
				EntityType: "payment",
				EntityID:   p.ID.String(),
				Metadata: map[string]any{
					"reference": p.Reference,
					"invoiceId": purpose.InvoiceID.String(),
					"amount":    p.Amount.StringFixed(2),
				},
			})
		}
		return nil, err
	}

	before := map[string]any{"status": string(inv.Status), "paymentStatus": string(inv.PaymentStatus)}
	if !inv.IsPaid() {
		inv.MarkPaid(now)
		if err := tx.SaveInvoice(ctx, inv); err != nil {
			return nil, err
		}
	}
	res.Invoice = inv

	rc, err := r.issuer.Issue(ctx, tx, receipts.IssueParams{
		TenantID:      p.TenantID,
		CustomerID:    inv.CustomerID,
		PaymentID:     &p.ID,
		InvoiceID:     &inv.ID,
		Amount:        p.Amount,
		Currency:      p.Currency,
		PaymentMethod: p.Channel,
		Reference:     p.Reference,
		IssueDate:     now,
	})
	if err != nil {
		return nil, err
	}
	res.Receipt = rc

	err = r.audit.Record(ctx, tx, audit.Entry{
		TenantID:   p.TenantID,
		UserID:     p.UserID,
		Action:     auditlog.ActionInvoicePaid,
		EntityType: "invoice",
		EntityID:   inv.ID.String(),
		Metadata: map[string]any{
			"invoiceNumber": inv.InvoiceNumber,
			"reference":     p.Reference,
			"amount":        p.Amount.StringFixed(2),
			"receiptNumber": rc.ReceiptNumber,
			"before":        before,
			"after":         map[string]any{"status": string(inv.Status), "paymentStatus": string(inv.PaymentStatus)},
		},
	})
	if err != nil {
		return nil, err
	}

	if inv.Customer == nil || inv.Customer.Email == "" {
		return nil, nil
	}
	tenant, err := tx.GetTenant(ctx, p.TenantID)
	if err != nil {
		return nil, err
	}
	return &notify.PaymentConfirmation{
		To:            inv.Customer.Email,
		CustomerName:  inv.Customer.Name,
		BusinessName:  tenant.Name,
		InvoiceNumber: inv.InvoiceNumber,
		ReceiptNumber: rc.ReceiptNumber,
		Reference:     p.Reference,
		Amount:        p.Amount,
		Currency:      p.Currency,
		PaidAt:        *p.PaidAt,
	}, nil
}

func (r *Reconciler) settleUpgrade(ctx context.Context, tx store.Store, p *billing.Payment, purpose billing.UpgradePurpose, res *Result, now time.Time) error {
	sub, err := tx.LockSubscriptionByTenant(ctx, p.TenantID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apperr.New(apperr.NoSubscription, "tenant has no subscription to upgrade")
		}
		return err
	}
	plan, err := tx.GetPlan(ctx, purpose.PlanID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apperr.Newf(apperr.Internal, "plan for payment %s is missing", p.Reference)
		}
		return err
	}

	before := map[string]any{"status": string(sub.Status)}
	if sub.Plan != nil {
		before["plan"] = sub.Plan.Name
	}

	sub.ApplyUpgrade(plan, now)
	if err := tx.SaveSubscription(ctx, sub); err != nil {
		return err
	}
	res.Subscription = sub

	return r.audit.Record(ctx, tx, audit.Entry{
		TenantID:   p.TenantID,
		UserID:     p.UserID,
		Action:     auditlog.ActionSubscriptionUpgraded,
		EntityType: "subscription",
		EntityID:   sub.ID.String(),
		Metadata: map[string]any{
			"reference":        p.Reference,
			"amount":           p.Amount.StringFixed(2),
			"before":           before,
			"after":            map[string]any{"plan": plan.Name, "status": string(sub.Status)},
			"currentPeriodEnd": sub.CurrentPeriodEnd,
		},
	})
}

func (r *Reconciler) settleAdhoc(ctx context.Context, tx store.Store, p *billing.Payment, purpose billing.AdhocPurpose, res *Result, now time.Time) error {
	rc, err := r.issuer.Issue(ctx, tx, receipts.IssueParams{
		TenantID:      p.TenantID,
		CustomerID:    purpose.CustomerID,
		PaymentID:     &p.ID,
		Amount:        p.Amount,
		Currency:      p.Currency,
		PaymentMethod: p.Channel,
		Reference:     p.Reference,
		IssueDate:     now,
	})
	if err != nil {
		return err
	}
	res.Receipt = rc

	return r.audit.Record(ctx, tx, audit.Entry{
		TenantID:   p.TenantID,
		UserID:     p.UserID,
		Action:     auditlog.ActionReceiptIssued,
		EntityType: "receipt",
		EntityID:   rc.ID.String(),
		Metadata: map[string]any{
			"receiptNumber": rc.ReceiptNumber,
			"reference":     p.Reference,
			"amount":        p.Amount.StringFixed(2),
		},
	})
}
