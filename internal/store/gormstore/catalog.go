package gormstore

import (
	"context"

	"invoicing-app/internal/domain/invoices"
	"invoicing-app/internal/store"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

func (s *Store) CreateCustomer(ctx context.Context, c *invoices.Customer) error {
	return translate(s.conn(ctx).Create(c).Error)
}

func (s *Store) GetCustomer(ctx context.Context, tenantID, id uuid.UUID) (*invoices.Customer, error) {
	var c invoices.Customer
	if err := s.conn(ctx).Where("tenant_id = ? AND id = ?", tenantID, id).Take(&c).Error; err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func (s *Store) ListCustomers(ctx context.Context, tenantID uuid.UUID, page store.Page) ([]invoices.Customer, error) {
	var out []invoices.Customer
	err := paged(s.conn(ctx), page).Where("tenant_id = ?", tenantID).Order("created_at DESC").Find(&out).Error
	return out, err
}

func (s *Store) SaveCustomer(ctx context.Context, c *invoices.Customer) error {
	return s.updateScoped(ctx, c.TenantID, c)
}

func (s *Store) DeleteCustomer(ctx context.Context, tenantID, id uuid.UUID) error {
	return affected(s.conn(ctx).Where("tenant_id = ? AND id = ?", tenantID, id).Delete(&invoices.Customer{}))
}

func (s *Store) CreateItem(ctx context.Context, i *invoices.Item) error {
	return translate(s.conn(ctx).Create(i).Error)
}

func (s *Store) GetItem(ctx context.Context, tenantID, id uuid.UUID) (*invoices.Item, error) {
	var i invoices.Item
	if err := s.conn(ctx).Where("tenant_id = ? AND id = ?", tenantID, id).Take(&i).Error; err != nil {
		return nil, translate(err)
	}
	return &i, nil
}

func (s *Store) ListItems(ctx context.Context, tenantID uuid.UUID, page store.Page) ([]invoices.Item, error) {
	var out []invoices.Item
	err := paged(s.conn(ctx), page).Where("tenant_id = ?", tenantID).Order("created_at DESC").Find(&out).Error
	return out, err
}

func (s *Store) SaveItem(ctx context.Context, i *invoices.Item) error {
	return s.updateScoped(ctx, i.TenantID, i)
}

func (s *Store) DeleteItem(ctx context.Context, tenantID, id uuid.UUID) error {
	return affected(s.conn(ctx).Where("tenant_id = ? AND id = ?", tenantID, id).Delete(&invoices.Item{}))
}

func withInvoiceRelations(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Preload("Customer")
}

func (s *Store) CreateInvoice(ctx context.Context, inv *invoices.Invoice) error {
	return translate(s.conn(ctx).Omit("Customer").Create(inv).Error)
}

func (s *Store) GetInvoice(ctx context.Context, tenantID, id uuid.UUID) (*invoices.Invoice, error) {
	var inv invoices.Invoice
	err := withInvoiceRelations(s.conn(ctx)).Where("tenant_id = ? AND id = ?", tenantID, id).Take(&inv).Error
	if err != nil {
		return nil, translate(err)
	}
	return &inv, nil
}

func (s *Store) LockInvoice(ctx context.Context, tenantID, id uuid.UUID) (*invoices.Invoice, error) {
	var locked struct{ ID uuid.UUID }
	err := s.forUpdate(ctx).
		Model(&invoices.Invoice{}).
		Select("id").
		Where("tenant_id = ? AND id = ?", tenantID, id).
		Take(&locked).Error
	if err != nil {
		return nil, translate(err)
	}
	return s.GetInvoice(ctx, tenantID, id)
}

func (s *Store) ListInvoices(ctx context.Context, tenantID uuid.UUID, page store.Page) ([]invoices.Invoice, error) {
	var out []invoices.Invoice
	err := withInvoiceRelations(paged(s.conn(ctx), page)).
		Where("tenant_id = ?", tenantID).
		Order("created_at DESC").
		Find(&out).Error
	return out, err
}

func (s *Store) SaveInvoice(ctx context.Context, inv *invoices.Invoice) error {
	return s.updateScoped(ctx, inv.TenantID, inv)
}

func (s *Store) ReplaceInvoiceLines(ctx context.Context, invoiceID uuid.UUID, lines []invoices.LineItem) error {
	db := s.conn(ctx)
	if err := db.Where("invoice_id = ?", invoiceID).Delete(&invoices.LineItem{}).Error; err != nil {
		return err
	}
	if len(lines) == 0 {
		return nil
	}
	for idx := range lines {
		lines[idx].ID = uuid.Nil
		lines[idx].InvoiceID = invoiceID
	}
	return translate(db.Create(&lines).Error)
}

func (s *Store) DeleteInvoice(ctx context.Context, tenantID, id uuid.UUID) error {
	return s.Transaction(ctx, func(tx store.Store) error {
		db := tx.(*Store).conn(ctx)
		if err := db.Where("invoice_id = ?", id).Delete(&invoices.LineItem{}).Error; err != nil {
			return err
		}
		return affected(db.Where("tenant_id = ? AND id = ?", tenantID, id).Delete(&invoices.Invoice{}))
	})
}

func (s *Store) InvoiceNumberExists(ctx context.Context, tenantID uuid.UUID, number string, exclude uuid.UUID) (bool, error) {
	var n int64
	err := s.conn(ctx).Model(&invoices.Invoice{}).
		Where("tenant_id = ? AND invoice_number = ? AND id <> ?", tenantID, number, exclude).
		Count(&n).Error
	return n > 0, err
}

func (s *Store) CountInvoicesForCustomer(ctx context.Context, tenantID, customerID uuid.UUID) (int64, error) {
	var n int64
	err := s.conn(ctx).Model(&invoices.Invoice{}).
		Where("tenant_id = ? AND customer_id = ?", tenantID, customerID).
		Count(&n).Error
	return n, err
}

func (s *Store) CountInvoiceLinesForItem(ctx context.Context, tenantID, itemID uuid.UUID) (int64, error) {
	var n int64
	err := s.conn(ctx).Model(&invoices.LineItem{}).
		Joins("JOIN invoices ON invoices.id = line_items.invoice_id").
		Where("invoices.tenant_id = ? AND line_items.item_id = ?", tenantID, itemID).
		Count(&n).Error
	return n, err
}
