package catalog

import (
	"context"
	"net/mail"
	"strings"

	"invoicing-app/internal/apperr"
	"invoicing-app/internal/domain/invoices"
	"invoicing-app/internal/domain/plans"
	"invoicing-app/internal/store"

	"github.com/google/uuid"
)

type CustomerInput struct {
	Name    *string
	Email   *string
	Phone   *string
	Address *string
}

func (in CustomerInput) apply(c *invoices.Customer) error {
	if in.Name != nil {
		c.Name = strings.TrimSpace(*in.Name)
	}
	if in.Email != nil {
		c.Email = strings.TrimSpace(*in.Email)
	}
	if in.Phone != nil {
		c.Phone = strings.TrimSpace(*in.Phone)
	}
	if in.Address != nil {
		c.Address = strings.TrimSpace(*in.Address)
	}

	if c.Name == "" {
		return apperr.New(apperr.Validation, "name is required")
	}
	if c.Email != "" {
		if _, err := mail.ParseAddress(c.Email); err != nil {
			return apperr.New(apperr.Validation, "email is invalid")
		}
	}
	return nil
}

func (s *Service) CreateCustomer(ctx context.Context, tenantID uuid.UUID, in CustomerInput) (*invoices.Customer, error) {
	if _, err := s.gate(ctx, tenantID, plans.ResourceCustomers); err != nil {
		return nil, err
	}

	c := &invoices.Customer{TenantID: tenantID}
	if err := in.apply(c); err != nil {
		return nil, err
	}
	if err := s.store.CreateCustomer(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) GetCustomer(ctx context.Context, tenantID, id uuid.UUID) (*invoices.Customer, error) {
	c, err := s.store.GetCustomer(ctx, tenantID, id)
	if err != nil {
		return nil, notFound(err, "Customer")
	}
	return c, nil
}

func (s *Service) ListCustomers(ctx context.Context, tenantID uuid.UUID, page store.Page) ([]invoices.Customer, error) {
	return s.store.ListCustomers(ctx, tenantID, page)
}

func (s *Service) UpdateCustomer(ctx context.Context, tenantID, id uuid.UUID, in CustomerInput) (*invoices.Customer, error) {
	c, err := s.GetCustomer(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if err := in.apply(c); err != nil {
		return nil, err
	}
	if err := s.store.SaveCustomer(ctx, c); err != nil {
		return nil, notFound(err, "Customer")
	}
	return c, nil
}

// DeleteCustomer refuses customers that still appear on invoices.
func (s *Service) DeleteCustomer(ctx context.Context, tenantID, id uuid.UUID) error {
	return s.store.Transaction(ctx, func(tx store.Store) error {
		if _, err := tx.GetCustomer(ctx, tenantID, id); err != nil {
			return notFound(err, "Customer")
		}
		n, err := tx.CountInvoicesForCustomer(ctx, tenantID, id)
		if err != nil {
			return err
		}
		if n > 0 {
			return apperr.Newf(apperr.Conflict, "Customer has %d invoice(s) and cannot be deleted", n)
		}
		return notFound(tx.DeleteCustomer(ctx, tenantID, id), "Customer")
	})
}
