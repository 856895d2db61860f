package gormstore

import (
	"context"
	"errors"

	"invoicing-app/internal/domain/audit"
	"invoicing-app/internal/domain/billing"
	"invoicing-app/internal/store"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func (s *Store) CreatePayment(ctx context.Context, p *billing.Payment) error {
	return translate(s.conn(ctx).Create(p).Error)
}

func (s *Store) GetPaymentByReference(ctx context.Context, reference string) (*billing.Payment, error) {
	var p billing.Payment
	if err := s.conn(ctx).Where("reference = ?", reference).Take(&p).Error; err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (s *Store) LockPaymentByReference(ctx context.Context, reference string) (*billing.Payment, error) {
	var p billing.Payment
	if err := s.forUpdate(ctx).Where("reference = ?", reference).Take(&p).Error; err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (s *Store) SavePayment(ctx context.Context, p *billing.Payment) error {
	return translate(s.conn(ctx).Save(p).Error)
}

func (s *Store) ListPayments(ctx context.Context, tenantID uuid.UUID, page store.Page) ([]billing.Payment, error) {
	var out []billing.Payment
	err := paged(s.conn(ctx), page).Where("tenant_id = ?", tenantID).Order("created_at DESC").Find(&out).Error
	return out, err
}

func (s *Store) CountInvoicePayments(ctx context.Context, tenantID, invoiceID uuid.UUID, status billing.PaymentStatus) (int64, error) {
	var n int64
	err := s.conn(ctx).Model(&billing.Payment{}).
		Where("tenant_id = ? AND invoice_id = ? AND status = ?", tenantID, invoiceID, status).
		Count(&n).Error
	return n, err
}

func (s *Store) CreateReceipt(ctx context.Context, r *billing.Receipt) error {
	return translate(s.conn(ctx).Create(r).Error)
}

func (s *Store) GetReceipt(ctx context.Context, tenantID, id uuid.UUID) (*billing.Receipt, error) {
	var r billing.Receipt
	if err := s.conn(ctx).Where("tenant_id = ? AND id = ?", tenantID, id).Take(&r).Error; err != nil {
		return nil, translate(err)
	}
	return &r, nil
}

func (s *Store) GetReceiptByPayment(ctx context.Context, paymentID uuid.UUID) (*billing.Receipt, error) {
	var r billing.Receipt
	if err := s.conn(ctx).Where("payment_id = ?", paymentID).Take(&r).Error; err != nil {
		return nil, translate(err)
	}
	return &r, nil
}

func (s *Store) ListReceipts(ctx context.Context, tenantID uuid.UUID, page store.Page) ([]billing.Receipt, error) {
	var out []billing.Receipt
	err := paged(s.conn(ctx), page).Where("tenant_id = ?", tenantID).Order("created_at DESC").Find(&out).Error
	return out, err
}

func (s *Store) SaveReceipt(ctx context.Context, r *billing.Receipt) error {
	return s.updateScoped(ctx, r.TenantID, r)
}

// NextReceiptNumber creates the counter row on first use, seeded with the
// number of receipts the tenant already has, then bumps it under FOR UPDATE.
func (s *Store) NextReceiptNumber(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	var seq billing.ReceiptSequence
	err := s.forUpdate(ctx).Where("tenant_id = ?", tenantID).Take(&seq).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		var existing int64
		if err := s.conn(ctx).Model(&billing.Receipt{}).Where("tenant_id = ?", tenantID).Count(&existing).Error; err != nil {
			return 0, err
		}
		seed := billing.ReceiptSequence{TenantID: tenantID, LastValue: existing}
		if err := s.conn(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&seed).Error; err != nil {
			return 0, err
		}
		err = s.forUpdate(ctx).Where("tenant_id = ?", tenantID).Take(&seq).Error
	}
	if err != nil {
		return 0, err
	}

	seq.LastValue++
	res := s.conn(ctx).Model(&billing.ReceiptSequence{}).
		Where("tenant_id = ?", tenantID).
		Update("last_value", seq.LastValue)
	if res.Error != nil {
		return 0, res.Error
	}
	return seq.LastValue, nil
}

func (s *Store) AppendAuditLog(ctx context.Context, l *audit.Log) error {
	return s.conn(ctx).Create(l).Error
}

func (s *Store) ListAuditLogs(ctx context.Context, tenantID uuid.UUID, page store.Page) ([]audit.Log, error) {
	var out []audit.Log
	err := paged(s.conn(ctx), page).Where("tenant_id = ?", tenantID).Order("created_at DESC").Find(&out).Error
	return out, err
}
