// Package subscription runs the tenant's plan lifecycle: cancel, reactivate
// and paid upgrades.
package subscription

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"invoicing-app/internal/apperr"
	"invoicing-app/internal/app/audit"
	"invoicing-app/internal/app/reconcile"
	auditlog "invoicing-app/internal/domain/audit"
	"invoicing-app/internal/domain/billing"
	"invoicing-app/internal/domain/plans"
	"invoicing-app/internal/domain/subscriptions"
	"invoicing-app/internal/infra/gateway"
	"invoicing-app/internal/store"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Service struct {
	store       store.Store
	gateway     gateway.Gateway
	reconciler  *reconcile.Reconciler
	audit       *audit.Recorder
	callbackURL string
	log         *slog.Logger
	now         func() time.Time
}

func NewService(s store.Store, gw gateway.Gateway, rec *reconcile.Reconciler, a *audit.Recorder, callbackURL string, log *slog.Logger) *Service {
	return &Service{
		store:       s,
		gateway:     gw,
		reconciler:  rec,
		audit:       a,
		callbackURL: callbackURL,
		log:         log,
		now:         time.Now,
	}
}

func lockSubscription(ctx context.Context, tx store.Store, tenantID uuid.UUID) (*subscriptions.Subscription, error) {
	sub, err := tx.LockSubscriptionByTenant(ctx, tenantID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.New(apperr.NoSubscription, "No subscription found")
	}
	return sub, err
}

// Cancel schedules cancellation at the end of the current period.
func (s *Service) Cancel(ctx context.Context, tenantID uuid.UUID, userID *uuid.UUID) (*subscriptions.Subscription, error) {
	var out *subscriptions.Subscription
	err := s.store.Transaction(ctx, func(tx store.Store) error {
		sub, err := lockSubscription(ctx, tx, tenantID)
		if err != nil {
			return err
		}

		wasScheduled := sub.CancelAtPeriodEnd
		if err := sub.Cancel(s.now()); err != nil {
			if errors.Is(err, subscriptions.ErrAlreadyCanceled) {
				return apperr.New(apperr.AlreadyCanceled, "Subscription is already canceled")
			}
			return err
		}
		if err := tx.SaveSubscription(ctx, sub); err != nil {
			return err
		}
		out = sub

		return s.audit.Record(ctx, tx, audit.Entry{
			TenantID:   tenantID,
			UserID:     userID,
			Action:     auditlog.ActionSubscriptionCanceled,
			EntityType: "subscription",
			EntityID:   sub.ID.String(),
			Metadata: map[string]any{
				"plan":             planName(sub),
				"status":           string(sub.Status),
				"before":           map[string]any{"cancelAtPeriodEnd": wasScheduled},
				"after":            map[string]any{"cancelAtPeriodEnd": true},
				"currentPeriodEnd": sub.CurrentPeriodEnd,
			},
		})
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("subscription cancellation scheduled", slog.String("tenant_id", tenantID.String()))
	return out, nil
}

func (s *Service) Reactivate(ctx context.Context, tenantID uuid.UUID, userID *uuid.UUID) (*subscriptions.Subscription, error) {
	var out *subscriptions.Subscription
	err := s.store.Transaction(ctx, func(tx store.Store) error {
		sub, err := lockSubscription(ctx, tx, tenantID)
		if err != nil {
			return err
		}

		canceledAt := sub.CanceledAt
		if err := sub.Reactivate(); err != nil {
			if errors.Is(err, subscriptions.ErrNotScheduledForCancellation) {
				return apperr.New(apperr.NotScheduledForCancellation, "Subscription is not scheduled for cancellation")
			}
			return err
		}
		if err := tx.SaveSubscription(ctx, sub); err != nil {
			return err
		}
		out = sub

		return s.audit.Record(ctx, tx, audit.Entry{
			TenantID:   tenantID,
			UserID:     userID,
			Action:     auditlog.ActionSubscriptionResumed,
			EntityType: "subscription",
			EntityID:   sub.ID.String(),
			Metadata: map[string]any{
				"plan":   planName(sub),
				"status": string(sub.Status),
				"before": map[string]any{"cancelAtPeriodEnd": true, "canceledAt": canceledAt},
				"after":  map[string]any{"cancelAtPeriodEnd": false},
			},
		})
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("subscription reactivated", slog.String("tenant_id", tenantID.String()))
	return out, nil
}

type UpgradeRequest struct {
	PlanID uuid.UUID
	Email  string
	UserID *uuid.UUID
}

type Checkout struct {
	AuthorizationURL string          `json:"authorization_url"`
	AccessCode       string          `json:"access_code"`
	Reference        string          `json:"reference"`
	Amount           decimal.Decimal `json:"amount"`
	Currency         string          `json:"currency"`
	Plan             *plans.Plan     `json:"plan"`
}

// InitiateUpgrade opens a hosted checkout for a more expensive plan. The
// subscription is left alone until the payment is confirmed.
func (s *Service) InitiateUpgrade(ctx context.Context, tenantID uuid.UUID, req UpgradeRequest) (*Checkout, error) {
	if req.PlanID == uuid.Nil {
		return nil, apperr.New(apperr.Validation, "planId is required")
	}
	if strings.TrimSpace(req.Email) == "" {
		return nil, apperr.New(apperr.Validation, "a billing email is required")
	}

	target, err := s.store.GetPlan(ctx, req.PlanID)
	if errors.Is(err, store.ErrNotFound) || (err == nil && !target.IsActive) {
		return nil, apperr.New(apperr.NotFound, "Plan not found")
	}
	if err != nil {
		return nil, err
	}

	sub, err := s.store.GetSubscriptionByTenant(ctx, tenantID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.New(apperr.NoSubscription, "No subscription found")
	}
	if err != nil {
		return nil, err
	}

	if err := subscriptions.CheckUpgrade(sub.Plan, target); err != nil {
		return nil, apperr.New(apperr.Validation, "Only upgrades to a higher-priced plan can be paid online. Contact support to downgrade.")
	}

	reference := billing.NewReference("SUB", s.now())
	meta := gateway.Metadata{
		gateway.MetaType:     gateway.TypeUpgrade,
		gateway.MetaTenantID: tenantID.String(),
		gateway.MetaPlanID:   target.ID.String(),
	}
	if req.UserID != nil {
		meta[gateway.MetaUserID] = req.UserID.String()
	}

	checkout, err := s.gateway.InitializeTransaction(ctx, gateway.InitializeRequest{
		Email:       req.Email,
		AmountMinor: gateway.ToMinorUnits(target.Price),
		Currency:    target.Currency,
		Reference:   reference,
		Metadata:    meta,
		CallbackURL: s.callbackURL,
		Description: fmt.Sprintf("Upgrade to %s", target.Name),
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
		UserID:           req.UserID,
		Amount:           target.Price,
		Currency:         target.Currency,
		Status:           billing.PaymentPending,
		AuthorizationURL: checkout.AuthorizationURL,
		AccessCode:       checkout.AccessCode,
	}
	p.SetPurpose(billing.UpgradePurpose{PlanID: target.ID})
	if err := s.store.CreatePayment(ctx, p); err != nil {
		return nil, fmt.Errorf("record upgrade payment: %w", err)
	}

	s.log.Info("upgrade checkout created",
		slog.String("tenant_id", tenantID.String()),
		slog.String("plan", target.Code),
		slog.String("reference", reference),
	)
	return &Checkout{
		AuthorizationURL: checkout.AuthorizationURL,
		AccessCode:       checkout.AccessCode,
		Reference:        reference,
		Amount:           target.Price,
		Currency:         target.Currency,
		Plan:             target,
	}, nil
}

// ConfirmUpgrade verifies the upgrade payment and returns the resulting
// subscription. Repeat calls for a confirmed reference are no-ops.
func (s *Service) ConfirmUpgrade(ctx context.Context, tenantID uuid.UUID, reference string) (*subscriptions.Subscription, error) {
	res, err := s.reconciler.VerifyReference(ctx, reconcile.Scope{TenantID: &tenantID, Purpose: billing.PurposeUpgrade}, reference)
	if err != nil {
		if ae, ok := apperr.As(err); ok && ae.Kind == apperr.GatewayReportedFailure {
			return nil, apperr.Wrap(apperr.PaymentNotSuccessful, ae.Message, err)
		}
		return nil, err
	}
	if res.Subscription != nil {
		return res.Subscription, nil
	}

	sub, err := s.store.GetSubscriptionByTenant(ctx, tenantID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.New(apperr.NoSubscription, "No subscription found")
	}
	return sub, err
}

func (s *Service) Plans(ctx context.Context) ([]plans.Plan, error) {
	return s.store.ListActivePlans(ctx)
}

func planName(sub *subscriptions.Subscription) string {
	if sub.Plan == nil {
		return ""
	}
	return sub.Plan.Name
}
