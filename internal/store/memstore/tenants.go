package memstore

import (
	"context"
	"slices"
	"time"

	"invoicing-app/internal/domain/plans"
	"invoicing-app/internal/domain/subscriptions"
	"invoicing-app/internal/domain/tenants"
	"invoicing-app/internal/store"

	"github.com/google/uuid"
)

func (s *Store) CreateTenant(_ context.Context, t *tenants.Tenant) error {
	d, unlock := s.lock()
	defer unlock()

	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	if _, ok := d.tenants[t.ID]; ok {
		return store.ErrDuplicate
	}
	for _, existing := range d.tenants {
		if existing.OwnerUserID == t.OwnerUserID {
			return store.ErrDuplicate
		}
	}
	if t.Status == "" {
		t.Status = tenants.StatusActive
	}
	if t.Currency == "" {
		t.Currency = "NGN"
	}
	stamp(&t.CreatedAt, &t.UpdatedAt)
	d.tenants[t.ID] = *t
	return nil
}

func (s *Store) GetTenant(_ context.Context, id uuid.UUID) (*tenants.Tenant, error) {
	d, unlock := s.lock()
	defer unlock()

	t, ok := d.tenants[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &t, nil
}

func (s *Store) UpdateTenantStatus(_ context.Context, id uuid.UUID, status tenants.Status) error {
	d, unlock := s.lock()
	defer unlock()

	t, ok := d.tenants[id]
	if !ok {
		return store.ErrNotFound
	}
	t.Status = status
	t.UpdatedAt = time.Now()
	d.tenants[id] = t
	return nil
}

func (s *Store) CreatePlan(_ context.Context, p *plans.Plan) error {
	d, unlock := s.lock()
	defer unlock()

	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	for _, existing := range d.plans {
		if existing.ID == p.ID || existing.Code == p.Code {
			return store.ErrDuplicate
		}
	}
	stamp(&p.CreatedAt, &p.UpdatedAt)
	d.plans[p.ID] = *p
	d.planOrder = append(d.planOrder, p.ID)
	return nil
}

func (s *Store) GetPlan(_ context.Context, id uuid.UUID) (*plans.Plan, error) {
	d, unlock := s.lock()
	defer unlock()

	p, ok := d.plans[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &p, nil
}

func (s *Store) GetDefaultPlan(_ context.Context) (*plans.Plan, error) {
	d, unlock := s.lock()
	defer unlock()

	for _, id := range d.planOrder {
		if p := d.plans[id]; p.IsDefault && p.IsActive {
			return &p, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) ListActivePlans(_ context.Context) ([]plans.Plan, error) {
	d, unlock := s.lock()
	defer unlock()

	out := []plans.Plan{}
	for _, id := range d.planOrder {
		if p := d.plans[id]; p.IsActive {
			out = append(out, p)
		}
	}
	slices.SortStableFunc(out, func(a, b plans.Plan) int {
		return a.Price.Cmp(b.Price)
	})
	return out, nil
}

func (s *Store) CountPlans(_ context.Context) (int64, error) {
	d, unlock := s.lock()
	defer unlock()
	return int64(len(d.plans)), nil
}

func (s *Store) CreateSubscription(_ context.Context, sub *subscriptions.Subscription) error {
	d, unlock := s.lock()
	defer unlock()

	if _, ok := d.subscriptions[sub.TenantID]; ok {
		return store.ErrDuplicate
	}
	if sub.ID == uuid.Nil {
		sub.ID = uuid.New()
	}
	stamp(&sub.CreatedAt, &sub.UpdatedAt)
	row := *sub
	row.Plan = nil
	d.subscriptions[sub.TenantID] = row
	return nil
}

func (s *Store) GetSubscriptionByTenant(_ context.Context, tenantID uuid.UUID) (*subscriptions.Subscription, error) {
	d, unlock := s.lock()
	defer unlock()
	return d.subscription(tenantID)
}

// LockSubscriptionByTenant relies on transactions being serialized.
func (s *Store) LockSubscriptionByTenant(ctx context.Context, tenantID uuid.UUID) (*subscriptions.Subscription, error) {
	return s.GetSubscriptionByTenant(ctx, tenantID)
}

func (s *Store) SaveSubscription(_ context.Context, sub *subscriptions.Subscription) error {
	d, unlock := s.lock()
	defer unlock()

	existing, ok := d.subscriptions[sub.TenantID]
	if !ok || existing.ID != sub.ID {
		return store.ErrNotFound
	}
	sub.UpdatedAt = time.Now()
	row := *sub
	row.Plan = nil
	d.subscriptions[sub.TenantID] = row
	return nil
}

func (d *data) subscription(tenantID uuid.UUID) (*subscriptions.Subscription, error) {
	sub, ok := d.subscriptions[tenantID]
	if !ok {
		return nil, store.ErrNotFound
	}
	if p, ok := d.plans[sub.PlanID]; ok {
		sub.Plan = &p
	}
	return &sub, nil
}

func (s *Store) CountResource(_ context.Context, tenantID uuid.UUID, r plans.Resource) (int, error) {
	d, unlock := s.lock()
	defer unlock()

	s.db.countCalls[r]++

	n := 0
	switch r {
	case plans.ResourceInvoices:
		for _, inv := range d.invoices {
			if inv.TenantID == tenantID {
				n++
			}
		}
	case plans.ResourceCustomers:
		for _, c := range d.customers {
			if c.TenantID == tenantID {
				n++
			}
		}
	case plans.ResourceItems:
		for _, i := range d.items {
			if i.TenantID == tenantID {
				n++
			}
		}
	default:
		return 0, store.ErrUnknownResource
	}
	return n, nil
}
