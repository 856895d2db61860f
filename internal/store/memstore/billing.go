package memstore

import (
	"context"
	"time"

	"invoicing-app/internal/domain/audit"
	"invoicing-app/internal/domain/billing"
	"invoicing-app/internal/store"

	"github.com/google/uuid"
)

func (s *Store) CreatePayment(_ context.Context, p *billing.Payment) error {
	d, unlock := s.lock()
	defer unlock()

	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	for _, existing := range d.payments {
		if existing.ID == p.ID || existing.Reference == p.Reference {
			return store.ErrDuplicate
		}
	}
	stamp(&p.CreatedAt, &p.UpdatedAt)
	d.payments[p.ID] = copyPayment(*p)
	d.paymentOrder = append(d.paymentOrder, p.ID)
	return nil
}

func (s *Store) GetPaymentByReference(_ context.Context, reference string) (*billing.Payment, error) {
	d, unlock := s.lock()
	defer unlock()

	for _, p := range d.payments {
		if p.Reference == reference {
			out := copyPayment(p)
			return &out, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) LockPaymentByReference(ctx context.Context, reference string) (*billing.Payment, error) {
	return s.GetPaymentByReference(ctx, reference)
}

func (s *Store) SavePayment(_ context.Context, p *billing.Payment) error {
	d, unlock := s.lock()
	defer unlock()

	if _, ok := d.payments[p.ID]; !ok {
		return store.ErrNotFound
	}
	p.UpdatedAt = time.Now()
	d.payments[p.ID] = copyPayment(*p)
	return nil
}

func (s *Store) ListPayments(_ context.Context, tenantID uuid.UUID, page store.Page) ([]billing.Payment, error) {
	d, unlock := s.lock()
	defer unlock()

	rows := newestFirst(d.paymentOrder, d.payments, func(p billing.Payment) bool {
		return p.TenantID == tenantID
	}, page)
	for idx := range rows {
		rows[idx] = copyPayment(rows[idx])
	}
	return rows, nil
}

func (s *Store) CountInvoicePayments(_ context.Context, tenantID, invoiceID uuid.UUID, status billing.PaymentStatus) (int64, error) {
	d, unlock := s.lock()
	defer unlock()

	var n int64
	for _, p := range d.payments {
		if p.TenantID == tenantID && p.InvoiceID != nil && *p.InvoiceID == invoiceID && p.Status == status {
			n++
		}
	}
	return n, nil
}

func (s *Store) CreateReceipt(_ context.Context, r *billing.Receipt) error {
	d, unlock := s.lock()
	defer unlock()

	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	for _, existing := range d.receipts {
		if existing.ID == r.ID {
			return store.ErrDuplicate
		}
		if existing.TenantID == r.TenantID && existing.ReceiptNumber == r.ReceiptNumber {
			return store.ErrDuplicate
		}
		if r.PaymentID != nil && existing.PaymentID != nil && *existing.PaymentID == *r.PaymentID {
			return store.ErrDuplicate
		}
	}
	stamp(&r.CreatedAt, &r.UpdatedAt)
	d.receipts[r.ID] = *r
	d.receiptOrder = append(d.receiptOrder, r.ID)
	return nil
}

func (s *Store) GetReceipt(_ context.Context, tenantID, id uuid.UUID) (*billing.Receipt, error) {
	d, unlock := s.lock()
	defer unlock()

	r, ok := d.receipts[id]
	if !ok || r.TenantID != tenantID {
		return nil, store.ErrNotFound
	}
	return &r, nil
}

func (s *Store) GetReceiptByPayment(_ context.Context, paymentID uuid.UUID) (*billing.Receipt, error) {
	d, unlock := s.lock()
	defer unlock()

	for _, r := range d.receipts {
		if r.PaymentID != nil && *r.PaymentID == paymentID {
			return &r, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) ListReceipts(_ context.Context, tenantID uuid.UUID, page store.Page) ([]billing.Receipt, error) {
	d, unlock := s.lock()
	defer unlock()

	return newestFirst(d.receiptOrder, d.receipts, func(r billing.Receipt) bool {
		return r.TenantID == tenantID
	}, page), nil
}

func (s *Store) SaveReceipt(_ context.Context, r *billing.Receipt) error {
	d, unlock := s.lock()
	defer unlock()

	existing, ok := d.receipts[r.ID]
	if !ok || existing.TenantID != r.TenantID {
		return store.ErrNotFound
	}
	r.UpdatedAt = time.Now()
	d.receipts[r.ID] = *r
	return nil
}

// NextReceiptNumber seeds a missing counter from the tenant's receipt count.
func (s *Store) NextReceiptNumber(_ context.Context, tenantID uuid.UUID) (int64, error) {
	d, unlock := s.lock()
	defer unlock()

	last, ok := d.receiptSeq[tenantID]
	if !ok {
		for _, r := range d.receipts {
			if r.TenantID == tenantID {
				last++
			}
		}
	}
	last++
	d.receiptSeq[tenantID] = last
	return last, nil
}

func (s *Store) AppendAuditLog(_ context.Context, l *audit.Log) error {
	d, unlock := s.lock()
	defer unlock()

	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	if l.CreatedAt.IsZero() {
		l.CreatedAt = time.Now()
	}
	d.auditLogs = append(d.auditLogs, copyAuditLog(*l))
	return nil
}

func (s *Store) ListAuditLogs(_ context.Context, tenantID uuid.UUID, page store.Page) ([]audit.Log, error) {
	d, unlock := s.lock()
	defer unlock()

	page = page.Normalize()
	out := []audit.Log{}
	skipped := 0
	for i := len(d.auditLogs) - 1; i >= 0 && len(out) < page.Limit; i-- {
		l := d.auditLogs[i]
		if l.TenantID != tenantID {
			continue
		}
		if skipped < page.Offset {
			skipped++
			continue
		}
		out = append(out, copyAuditLog(l))
	}
	return out, nil
}
