package gormstore

import (
	"context"

	"invoicing-app/internal/domain/invoices"
	"invoicing-app/internal/domain/plans"
	"invoicing-app/internal/domain/subscriptions"
	"invoicing-app/internal/domain/tenants"
	"invoicing-app/internal/store"

	"github.com/google/uuid"
	"gorm.io/gorm/clause"
)

func (s *Store) CreateTenant(ctx context.Context, t *tenants.Tenant) error {
	return translate(s.conn(ctx).Create(t).Error)
}

func (s *Store) GetTenant(ctx context.Context, id uuid.UUID) (*tenants.Tenant, error) {
	var t tenants.Tenant
	if err := s.conn(ctx).Where("id = ?", id).Take(&t).Error; err != nil {
		return nil, translate(err)
	}
	return &t, nil
}

func (s *Store) UpdateTenantStatus(ctx context.Context, id uuid.UUID, status tenants.Status) error {
	return affected(s.conn(ctx).Model(&tenants.Tenant{}).Where("id = ?", id).Update("status", status))
}

func (s *Store) CreatePlan(ctx context.Context, p *plans.Plan) error {
	return translate(s.conn(ctx).Create(p).Error)
}

func (s *Store) GetPlan(ctx context.Context, id uuid.UUID) (*plans.Plan, error) {
	var p plans.Plan
	if err := s.conn(ctx).Where("id = ?", id).Take(&p).Error; err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (s *Store) GetDefaultPlan(ctx context.Context) (*plans.Plan, error) {
	var p plans.Plan
	err := s.conn(ctx).
		Where("is_default = ? AND is_active = ?", true, true).
		Order("created_at").
		Take(&p).Error
	if err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (s *Store) ListActivePlans(ctx context.Context) ([]plans.Plan, error) {
	var out []plans.Plan
	if err := s.conn(ctx).Where("is_active = ?", true).Order("price ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) CountPlans(ctx context.Context) (int64, error) {
	var n int64
	err := s.conn(ctx).Model(&plans.Plan{}).Count(&n).Error
	return n, err
}

func (s *Store) CreateSubscription(ctx context.Context, sub *subscriptions.Subscription) error {
	return translate(s.conn(ctx).Omit(clause.Associations).Create(sub).Error)
}

func (s *Store) GetSubscriptionByTenant(ctx context.Context, tenantID uuid.UUID) (*subscriptions.Subscription, error) {
	var sub subscriptions.Subscription
	if err := s.conn(ctx).Preload("Plan").Where("tenant_id = ?", tenantID).Take(&sub).Error; err != nil {
		return nil, translate(err)
	}
	return &sub, nil
}

// The lock is taken on the subscription row alone; the plan is read separately.
func (s *Store) LockSubscriptionByTenant(ctx context.Context, tenantID uuid.UUID) (*subscriptions.Subscription, error) {
	var sub subscriptions.Subscription
	if err := s.forUpdate(ctx).Where("tenant_id = ?", tenantID).Take(&sub).Error; err != nil {
		return nil, translate(err)
	}
	plan, err := s.GetPlan(ctx, sub.PlanID)
	if err != nil {
		return nil, err
	}
	sub.Plan = plan
	return &sub, nil
}

func (s *Store) SaveSubscription(ctx context.Context, sub *subscriptions.Subscription) error {
	return translate(s.conn(ctx).Omit(clause.Associations).Save(sub).Error)
}

func (s *Store) CountResource(ctx context.Context, tenantID uuid.UUID, r plans.Resource) (int, error) {
	var model any
	switch r {
	case plans.ResourceInvoices:
		model = &invoices.Invoice{}
	case plans.ResourceCustomers:
		model = &invoices.Customer{}
	case plans.ResourceItems:
		model = &invoices.Item{}
	default:
		return 0, store.ErrUnknownResource
	}

	var n int64
	if err := s.conn(ctx).Model(model).Where("tenant_id = ?", tenantID).Count(&n).Error; err != nil {
		return 0, err
	}
	return int(n), nil
}
