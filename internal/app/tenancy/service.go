// Package tenancy onboards tenants and switches them between active and
// suspended.
package tenancy

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"invoicing-app/internal/apperr"
	"invoicing-app/internal/app/audit"
	auditlog "invoicing-app/internal/domain/audit"
	"invoicing-app/internal/domain/subscriptions"
	"invoicing-app/internal/domain/tenants"
	"invoicing-app/internal/store"

	"github.com/google/uuid"
)

type Service struct {
	store store.Store
	audit *audit.Recorder
	log   *slog.Logger
	now   func() time.Time
}

func NewService(s store.Store, a *audit.Recorder, log *slog.Logger) *Service {
	return &Service{store: s, audit: a, log: log, now: time.Now}
}

type OnboardInput struct {
	OwnerUserID uuid.UUID
	Name        string
	Email       string
	Phone       string
	Currency    string
}

type Onboarded struct {
	Tenant       *tenants.Tenant             `json:"tenant"`
	Subscription *subscriptions.Subscription `json:"subscription"`
}

// Onboard creates the tenant and starts its trial on the default plan. Each
// owner onboards exactly once.
func (s *Service) Onboard(ctx context.Context, in OnboardInput) (*Onboarded, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperr.New(apperr.Validation, "business name is required")
	}
	if in.OwnerUserID == uuid.Nil {
		return nil, apperr.New(apperr.Unauthorized, "user is required")
	}
	currency := strings.ToUpper(strings.TrimSpace(in.Currency))
	if currency == "" {
		currency = "NGN"
	}
	if len(currency) != 3 {
		return nil, apperr.New(apperr.Validation, "currency must be a 3-letter ISO code")
	}

	var out *Onboarded
	err := s.store.Transaction(ctx, func(tx store.Store) error {
		plan, err := tx.GetDefaultPlan(ctx)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return apperr.New(apperr.Internal, "no trial plan is configured")
			}
			return err
		}

		tenant := &tenants.Tenant{
			Name:        name,
			Email:       strings.TrimSpace(in.Email),
			Phone:       strings.TrimSpace(in.Phone),
			Currency:    currency,
			Status:      tenants.StatusActive,
			OwnerUserID: in.OwnerUserID,
		}
		if err := tx.CreateTenant(ctx, tenant); err != nil {
			if errors.Is(err, store.ErrDuplicate) {
				return apperr.New(apperr.AlreadyOnboarded, "This account has already been onboarded")
			}
			return err
		}

		sub := subscriptions.StartTrial(tenant.ID, plan, s.now())
		if err := tx.CreateSubscription(ctx, sub); err != nil {
			if errors.Is(err, store.ErrDuplicate) {
				return apperr.New(apperr.AlreadyOnboarded, "This account has already been onboarded")
			}
			return err
		}

		userID := in.OwnerUserID
		if err := s.audit.Record(ctx, tx, audit.Entry{
			TenantID:   tenant.ID,
			UserID:     &userID,
			Action:     auditlog.ActionTenantOnboarded,
			EntityType: "tenant",
			EntityID:   tenant.ID.String(),
			Metadata:   map[string]any{"name": tenant.Name, "currency": tenant.Currency},
		}); err != nil {
			return err
		}
		if err := s.audit.Record(ctx, tx, audit.Entry{
			TenantID:   tenant.ID,
			UserID:     &userID,
			Action:     auditlog.ActionSubscriptionCreated,
			EntityType: "subscription",
			EntityID:   sub.ID.String(),
			Metadata: map[string]any{
				"plan":        plan.Name,
				"status":      string(sub.Status),
				"trialEndsAt": sub.TrialEndsAt,
			},
		}); err != nil {
			return err
		}

		out = &Onboarded{Tenant: tenant, Subscription: sub}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("tenant onboarded",
		slog.String("tenant_id", out.Tenant.ID.String()),
		slog.String("plan", out.Subscription.Plan.Code),
	)
	return out, nil
}

func (s *Service) Suspend(ctx context.Context, tenantID uuid.UUID, adminID *uuid.UUID) (*tenants.Tenant, error) {
	return s.setStatus(ctx, tenantID, adminID, tenants.StatusSuspended, auditlog.ActionTenantSuspended)
}

func (s *Service) Activate(ctx context.Context, tenantID uuid.UUID, adminID *uuid.UUID) (*tenants.Tenant, error) {
	return s.setStatus(ctx, tenantID, adminID, tenants.StatusActive, auditlog.ActionTenantActivated)
}

func (s *Service) setStatus(ctx context.Context, tenantID uuid.UUID, adminID *uuid.UUID, status tenants.Status, action string) (*tenants.Tenant, error) {
	var out *tenants.Tenant
	err := s.store.Transaction(ctx, func(tx store.Store) error {
		t, err := tx.GetTenant(ctx, tenantID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return apperr.New(apperr.NotFound, "Tenant not found")
			}
			return err
		}
		if t.Status == tenants.StatusDeleted {
			return apperr.New(apperr.Conflict, "Tenant has been deleted")
		}
		if t.Status == status {
			out = t
			return nil
		}

		before := t.Status
		if err := tx.UpdateTenantStatus(ctx, tenantID, status); err != nil {
			return err
		}
		t.Status = status
		out = t

		return s.audit.Record(ctx, tx, audit.Entry{
			TenantID:   tenantID,
			UserID:     adminID,
			Action:     action,
			EntityType: "tenant",
			EntityID:   tenantID.String(),
			Metadata:   map[string]any{"before": string(before), "after": string(status)},
		})
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("tenant status changed", slog.String("tenant_id", tenantID.String()), slog.String("status", string(out.Status)))
	return out, nil
}

// RequireActive loads the tenant and rejects anything that is not ACTIVE.
func (s *Service) RequireActive(ctx context.Context, tenantID uuid.UUID) (*tenants.Tenant, error) {
	t, err := s.store.GetTenant(ctx, tenantID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.New(apperr.Forbidden, "Tenant not found")
		}
		return nil, err
	}
	if !t.IsActive() {
		return nil, apperr.New(apperr.Forbidden, "This account is suspended. Contact support.")
	}
	return t, nil
}

func (s *Service) Get(ctx context.Context, tenantID uuid.UUID) (*tenants.Tenant, error) {
	t, err := s.store.GetTenant(ctx, tenantID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.New(apperr.NotFound, "Tenant not found")
	}
	return t, err
}
