// Package memstore is an in-memory store.Store used by tests and local runs
// without Postgres. Transactions are serialized and roll back by restoring a
// snapshot. Reads outside a transaction may observe uncommitted writes.
package memstore

import (
	"context"
	"maps"
	"slices"
	"sync"
	"time"

	"invoicing-app/internal/domain/audit"
	"invoicing-app/internal/domain/billing"
	"invoicing-app/internal/domain/invoices"
	"invoicing-app/internal/domain/plans"
	"invoicing-app/internal/domain/subscriptions"
	"invoicing-app/internal/domain/tenants"
	"invoicing-app/internal/store"

	"github.com/google/uuid"
)

type Store struct {
	db   *db
	inTx bool
}

type db struct {
	mu   sync.Mutex
	txMu sync.Mutex
	data *data

	countCalls map[plans.Resource]int
}

type data struct {
	tenants map[uuid.UUID]tenants.Tenant

	plans     map[uuid.UUID]plans.Plan
	planOrder []uuid.UUID

	// keyed by tenant id
	subscriptions map[uuid.UUID]subscriptions.Subscription

	customers     map[uuid.UUID]invoices.Customer
	customerOrder []uuid.UUID

	items     map[uuid.UUID]invoices.Item
	itemOrder []uuid.UUID

	invoices     map[uuid.UUID]invoices.Invoice
	invoiceOrder []uuid.UUID

	payments     map[uuid.UUID]billing.Payment
	paymentOrder []uuid.UUID

	receipts     map[uuid.UUID]billing.Receipt
	receiptOrder []uuid.UUID
	receiptSeq   map[uuid.UUID]int64

	auditLogs []audit.Log
}

var _ store.Store = (*Store)(nil)

func New() *Store {
	return &Store{db: &db{
		data: &data{
			tenants:       map[uuid.UUID]tenants.Tenant{},
			plans:         map[uuid.UUID]plans.Plan{},
			subscriptions: map[uuid.UUID]subscriptions.Subscription{},
			customers:     map[uuid.UUID]invoices.Customer{},
			items:         map[uuid.UUID]invoices.Item{},
			invoices:      map[uuid.UUID]invoices.Invoice{},
			payments:      map[uuid.UUID]billing.Payment{},
			receipts:      map[uuid.UUID]billing.Receipt{},
			receiptSeq:    map[uuid.UUID]int64{},
		},
		countCalls: map[plans.Resource]int{},
	}}
}

func (s *Store) Transaction(ctx context.Context, fn func(tx store.Store) error) error {
	if s.inTx {
		return fn(s)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.db.txMu.Lock()
	defer s.db.txMu.Unlock()

	s.db.mu.Lock()
	snapshot := s.db.data.clone()
	s.db.mu.Unlock()

	tx := &Store{db: s.db, inTx: true}
	if err := fn(tx); err != nil {
		s.db.mu.Lock()
		s.db.data = snapshot
		s.db.mu.Unlock()
		return err
	}
	return nil
}

// CountCalls reports how many times CountResource ran for r.
func (s *Store) CountCalls(r plans.Resource) int {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	return s.db.countCalls[r]
}

func (s *Store) lock() (*data, func()) {
	s.db.mu.Lock()
	return s.db.data, s.db.mu.Unlock
}

func (d *data) clone() *data {
	c := &data{
		tenants:       maps.Clone(d.tenants),
		plans:         maps.Clone(d.plans),
		planOrder:     slices.Clone(d.planOrder),
		subscriptions: maps.Clone(d.subscriptions),
		customers:     maps.Clone(d.customers),
		customerOrder: slices.Clone(d.customerOrder),
		items:         maps.Clone(d.items),
		itemOrder:     slices.Clone(d.itemOrder),
		invoices:      make(map[uuid.UUID]invoices.Invoice, len(d.invoices)),
		invoiceOrder:  slices.Clone(d.invoiceOrder),
		payments:      make(map[uuid.UUID]billing.Payment, len(d.payments)),
		paymentOrder:  slices.Clone(d.paymentOrder),
		receipts:      maps.Clone(d.receipts),
		receiptOrder:  slices.Clone(d.receiptOrder),
		receiptSeq:    maps.Clone(d.receiptSeq),
		auditLogs:     make([]audit.Log, 0, len(d.auditLogs)),
	}
	for id, inv := range d.invoices {
		c.invoices[id] = copyInvoice(inv)
	}
	for id, p := range d.payments {
		c.payments[id] = copyPayment(p)
	}
	for _, l := range d.auditLogs {
		c.auditLogs = append(c.auditLogs, copyAuditLog(l))
	}
	return c
}

func copyInvoice(inv invoices.Invoice) invoices.Invoice {
	inv.Lines = slices.Clone(inv.Lines)
	inv.Customer = nil
	return inv
}

func copyPayment(p billing.Payment) billing.Payment {
	p.GatewayData = maps.Clone(p.GatewayData)
	return p
}

func copyAuditLog(l audit.Log) audit.Log {
	l.Metadata = maps.Clone(l.Metadata)
	return l
}

func stamp(created, updated *time.Time) {
	now := time.Now()
	if created.IsZero() {
		*created = now
	}
	*updated = now
}

// newestFirst walks order backwards and keeps rows accepted by keep.
func newestFirst[T any](order []uuid.UUID, rows map[uuid.UUID]T, keep func(T) bool, page store.Page) []T {
	page = page.Normalize()
	out := []T{}
	skipped := 0
	for i := len(order) - 1; i >= 0 && len(out) < page.Limit; i-- {
		row, ok := rows[order[i]]
		if !ok || !keep(row) {
			continue
		}
		if skipped < page.Offset {
			skipped++
			continue
		}
		out = append(out, row)
	}
	return out
}

func remove(order []uuid.UUID, id uuid.UUID) []uuid.UUID {
	return slices.DeleteFunc(order, func(v uuid.UUID) bool { return v == id })
}
