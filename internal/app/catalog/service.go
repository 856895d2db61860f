// Package catalog owns customers, items and invoices. Every create goes
// through the same gate: the tenant must be ACTIVE and its plan must allow
// one more of the resource.
package catalog

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"invoicing-app/internal/apperr"
	"invoicing-app/internal/app/audit"
	"invoicing-app/internal/app/entitlement"
	"invoicing-app/internal/app/notify"
	"invoicing-app/internal/domain/plans"
	"invoicing-app/internal/domain/tenants"
	"invoicing-app/internal/store"

	"github.com/google/uuid"
)

type TenantGuard interface {
	RequireActive(ctx context.Context, tenantID uuid.UUID) (*tenants.Tenant, error)
}

type Service struct {
	store       store.Store
	tenants     TenantGuard
	entitlement *entitlement.Engine
	audit       *audit.Recorder
	notifier    notify.Notifier
	appURL      string
	log         *slog.Logger
	now         func() time.Time
}

type Deps struct {
	Store       store.Store
	Tenants     TenantGuard
	Entitlement *entitlement.Engine
	Audit       *audit.Recorder
	Notifier    notify.Notifier
	AppURL      string
	Log         *slog.Logger
}

func NewService(d Deps) *Service {
	return &Service{
		store:       d.Store,
		tenants:     d.Tenants,
		entitlement: d.Entitlement,
		audit:       d.Audit,
		notifier:    d.Notifier,
		appURL:      d.AppURL,
		log:         d.Log,
		now:         time.Now,
	}
}

// gate runs before every create. The limit check is advisory: two
// concurrent creates may both pass it.
func (s *Service) gate(ctx context.Context, tenantID uuid.UUID, r plans.Resource) (*tenants.Tenant, error) {
	t, err := s.tenants.RequireActive(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if err := s.entitlement.RequireResource(ctx, tenantID, r); err != nil {
		return nil, err
	}
	return t, nil
}

func notFound(err error, what string) error {
	if errors.Is(err, store.ErrNotFound) {
		return apperr.New(apperr.NotFound, what+" not found")
	}
	return err
}
