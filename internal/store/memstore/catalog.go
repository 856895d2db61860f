package memstore

import (
	"context"
	"slices"
	"time"

	"invoicing-app/internal/domain/invoices"
	"invoicing-app/internal/store"

	"github.com/google/uuid"
)

func (s *Store) CreateCustomer(_ context.Context, c *invoices.Customer) error {
	d, unlock := s.lock()
	defer unlock()

	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if _, ok := d.customers[c.ID]; ok {
		return store.ErrDuplicate
	}
	stamp(&c.CreatedAt, &c.UpdatedAt)
	d.customers[c.ID] = *c
	d.customerOrder = append(d.customerOrder, c.ID)
	return nil
}

func (s *Store) GetCustomer(_ context.Context, tenantID, id uuid.UUID) (*invoices.Customer, error) {
	d, unlock := s.lock()
	defer unlock()

	c, ok := d.customers[id]
	if !ok || c.TenantID != tenantID {
		return nil, store.ErrNotFound
	}
	return &c, nil
}

func (s *Store) ListCustomers(_ context.Context, tenantID uuid.UUID, page store.Page) ([]invoices.Customer, error) {
	d, unlock := s.lock()
	defer unlock()

	return newestFirst(d.customerOrder, d.customers, func(c invoices.Customer) bool {
		return c.TenantID == tenantID
	}, page), nil
}

func (s *Store) SaveCustomer(_ context.Context, c *invoices.Customer) error {
	d, unlock := s.lock()
	defer unlock()

	existing, ok := d.customers[c.ID]
	if !ok || existing.TenantID != c.TenantID {
		return store.ErrNotFound
	}
	c.UpdatedAt = time.Now()
	d.customers[c.ID] = *c
	return nil
}

func (s *Store) DeleteCustomer(_ context.Context, tenantID, id uuid.UUID) error {
	d, unlock := s.lock()
	defer unlock()

	c, ok := d.customers[id]
	if !ok || c.TenantID != tenantID {
		return store.ErrNotFound
	}
	delete(d.customers, id)
	d.customerOrder = remove(d.customerOrder, id)
	return nil
}

func (s *Store) CreateItem(_ context.Context, i *invoices.Item) error {
	d, unlock := s.lock()
	defer unlock()

	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	if _, ok := d.items[i.ID]; ok {
		return store.ErrDuplicate
	}
	stamp(&i.CreatedAt, &i.UpdatedAt)
	d.items[i.ID] = *i
	d.itemOrder = append(d.itemOrder, i.ID)
	return nil
}

func (s *Store) GetItem(_ context.Context, tenantID, id uuid.UUID) (*invoices.Item, error) {
	d, unlock := s.lock()
	defer unlock()

	i, ok := d.items[id]
	if !ok || i.TenantID != tenantID {
		return nil, store.ErrNotFound
	}
	return &i, nil
}

func (s *Store) ListItems(_ context.Context, tenantID uuid.UUID, page store.Page) ([]invoices.Item, error) {
	d, unlock := s.lock()
	defer unlock()

	return newestFirst(d.itemOrder, d.items, func(i invoices.Item) bool {
		return i.TenantID == tenantID
	}, page), nil
}

func (s *Store) SaveItem(_ context.Context, i *invoices.Item) error {
	d, unlock := s.lock()
	defer unlock()

	existing, ok := d.items[i.ID]
	if !ok || existing.TenantID != i.TenantID {
		return store.ErrNotFound
	}
	i.UpdatedAt = time.Now()
	d.items[i.ID] = *i
	return nil
}

func (s *Store) DeleteItem(_ context.Context, tenantID, id uuid.UUID) error {
	d, unlock := s.lock()
	defer unlock()

	i, ok := d.items[id]
	if !ok || i.TenantID != tenantID {
		return store.ErrNotFound
	}
	delete(d.items, id)
	d.itemOrder = remove(d.itemOrder, id)
	return nil
}

func (s *Store) CreateInvoice(_ context.Context, inv *invoices.Invoice) error {
	d, unlock := s.lock()
	defer unlock()

	if inv.ID == uuid.Nil {
		inv.ID = uuid.New()
	}
	if _, ok := d.invoices[inv.ID]; ok {
		return store.ErrDuplicate
	}
	if d.invoiceNumberTaken(inv.TenantID, inv.InvoiceNumber, uuid.Nil) {
		return store.ErrDuplicate
	}
	for idx := range inv.Lines {
		if inv.Lines[idx].ID == uuid.Nil {
			inv.Lines[idx].ID = uuid.New()
		}
		inv.Lines[idx].InvoiceID = inv.ID
	}
	stamp(&inv.CreatedAt, &inv.UpdatedAt)
	d.invoices[inv.ID] = copyInvoice(*inv)
	d.invoiceOrder = append(d.invoiceOrder, inv.ID)
	return nil
}

func (s *Store) GetInvoice(_ context.Context, tenantID, id uuid.UUID) (*invoices.Invoice, error) {
	d, unlock := s.lock()
	defer unlock()

	inv, ok := d.invoices[id]
	if !ok || inv.TenantID != tenantID {
		return nil, store.ErrNotFound
	}
	out := d.loadInvoice(inv)
	return &out, nil
}

func (s *Store) LockInvoice(ctx context.Context, tenantID, id uuid.UUID) (*invoices.Invoice, error) {
	return s.GetInvoice(ctx, tenantID, id)
}

func (s *Store) ListInvoices(_ context.Context, tenantID uuid.UUID, page store.Page) ([]invoices.Invoice, error) {
	d, unlock := s.lock()
	defer unlock()

	rows := newestFirst(d.invoiceOrder, d.invoices, func(inv invoices.Invoice) bool {
		return inv.TenantID == tenantID
	}, page)
	for idx := range rows {
		rows[idx] = d.loadInvoice(rows[idx])
	}
	return rows, nil
}

func (s *Store) SaveInvoice(_ context.Context, inv *invoices.Invoice) error {
	d, unlock := s.lock()
	defer unlock()

	existing, ok := d.invoices[inv.ID]
	if !ok || existing.TenantID != inv.TenantID {
		return store.ErrNotFound
	}
	if d.invoiceNumberTaken(inv.TenantID, inv.InvoiceNumber, inv.ID) {
		return store.ErrDuplicate
	}
	inv.UpdatedAt = time.Now()
	row := copyInvoice(*inv)
	row.Lines = existing.Lines
	d.invoices[inv.ID] = row
	return nil
}

func (s *Store) ReplaceInvoiceLines(_ context.Context, invoiceID uuid.UUID, lines []invoices.LineItem) error {
	d, unlock := s.lock()
	defer unlock()

	inv, ok := d.invoices[invoiceID]
	if !ok {
		return store.ErrNotFound
	}
	for idx := range lines {
		if lines[idx].ID == uuid.Nil {
			lines[idx].ID = uuid.New()
		}
		lines[idx].InvoiceID = invoiceID
	}
	inv.Lines = slices.Clone(lines)
	d.invoices[invoiceID] = inv
	return nil
}

func (s *Store) DeleteInvoice(_ context.Context, tenantID, id uuid.UUID) error {
	d, unlock := s.lock()
	defer unlock()

	inv, ok := d.invoices[id]
	if !ok || inv.TenantID != tenantID {
		return store.ErrNotFound
	}
	delete(d.invoices, id)
	d.invoiceOrder = remove(d.invoiceOrder, id)
	return nil
}

func (s *Store) InvoiceNumberExists(_ context.Context, tenantID uuid.UUID, number string, exclude uuid.UUID) (bool, error) {
	d, unlock := s.lock()
	defer unlock()
	return d.invoiceNumberTaken(tenantID, number, exclude), nil
}

func (s *Store) CountInvoicesForCustomer(_ context.Context, tenantID, customerID uuid.UUID) (int64, error) {
	d, unlock := s.lock()
	defer unlock()

	var n int64
	for _, inv := range d.invoices {
		if inv.TenantID == tenantID && inv.CustomerID == customerID {
			n++
		}
	}
	return n, nil
}

func (s *Store) CountInvoiceLinesForItem(_ context.Context, tenantID, itemID uuid.UUID) (int64, error) {
	d, unlock := s.lock()
	defer unlock()

	var n int64
	for _, inv := range d.invoices {
		if inv.TenantID != tenantID {
			continue
		}
		for _, line := range inv.Lines {
			if line.ItemID != nil && *line.ItemID == itemID {
				n++
			}
		}
	}
	return n, nil
}

func (d *data) invoiceNumberTaken(tenantID uuid.UUID, number string, exclude uuid.UUID) bool {
	for id, inv := range d.invoices {
		if id != exclude && inv.TenantID == tenantID && inv.InvoiceNumber == number {
			return true
		}
	}
	return false
}

func (d *data) loadInvoice(inv invoices.Invoice) invoices.Invoice {
	inv = copyInvoice(inv)
	slices.SortFunc(inv.Lines, func(a, b invoices.LineItem) int { return a.Position - b.Position })
	if c, ok := d.customers[inv.CustomerID]; ok {
		inv.Customer = &c
	}
	return inv
}
