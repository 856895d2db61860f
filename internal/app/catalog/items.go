package catalog

import (
	"context"
	"strings"

	"invoicing-app/internal/apperr"
	"invoicing-app/internal/domain/invoices"
	"invoicing-app/internal/domain/plans"
	"invoicing-app/internal/store"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

type ItemInput struct {
	Name        *string
	Description *string
	UnitPrice   *decimal.Decimal
	TaxRate     *decimal.Decimal
}

func (in ItemInput) apply(i *invoices.Item) error {
	if in.Name != nil {
		i.Name = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		i.Description = strings.TrimSpace(*in.Description)
	}
	if in.UnitPrice != nil {
		i.UnitPrice = *in.UnitPrice
	}
	if in.TaxRate != nil {
		i.TaxRate = *in.TaxRate
	}

	if i.Name == "" {
		return apperr.New(apperr.Validation, "name is required")
	}
	if i.UnitPrice.IsNegative() {
		return apperr.New(apperr.Validation, "unitPrice cannot be negative")
	}
	return validTaxRate(i.TaxRate)
}

func validTaxRate(rate decimal.Decimal) error {
	if rate.IsNegative() || rate.GreaterThan(hundred) {
		return apperr.New(apperr.Validation, "taxRate must be between 0 and 100")
	}
	return nil
}

func (s *Service) CreateItem(ctx context.Context, tenantID uuid.UUID, in ItemInput) (*invoices.Item, error) {
	if _, err := s.gate(ctx, tenantID, plans.ResourceItems); err != nil {
		return nil, err
	}

	i := &invoices.Item{TenantID: tenantID}
	if err := in.apply(i); err != nil {
		return nil, err
	}
	if err := s.store.CreateItem(ctx, i); err != nil {
		return nil, err
	}
	return i, nil
}

func (s *Service) GetItem(ctx context.Context, tenantID, id uuid.UUID) (*invoices.Item, error) {
	i, err := s.store.GetItem(ctx, tenantID, id)
	if err != nil {
		return nil, notFound(err, "Item")
	}
	return i, nil
}

func (s *Service) ListItems(ctx context.Context, tenantID uuid.UUID, page store.Page) ([]invoices.Item, error) {
	return s.store.ListItems(ctx, tenantID, page)
}

func (s *Service) UpdateItem(ctx context.Context, tenantID, id uuid.UUID, in ItemInput) (*invoices.Item, error) {
	i, err := s.GetItem(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if err := in.apply(i); err != nil {
		return nil, err
	}
	if err := s.store.SaveItem(ctx, i); err != nil {
		return nil, notFound(err, "Item")
	}
	return i, nil
}

// DeleteItem refuses items that are used on any invoice line.
func (s *Service) DeleteItem(ctx context.Context, tenantID, id uuid.UUID) error {
	return s.store.Transaction(ctx, func(tx store.Store) error {
		if _, err := tx.GetItem(ctx, tenantID, id); err != nil {
			return notFound(err, "Item")
		}
		n, err := tx.CountInvoiceLinesForItem(ctx, tenantID, id)
		if err != nil {
			return err
		}
		if n > 0 {
			return apperr.Newf(apperr.Conflict, "Item is used on %d invoice line(s) and cannot be deleted", n)
		}
		return notFound(tx.DeleteItem(ctx, tenantID, id), "Item")
	})
}
