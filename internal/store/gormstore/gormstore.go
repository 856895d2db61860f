// Package gormstore implements store.Store on Postgres through gorm.
package gormstore

import (
	"context"
	"errors"
	"fmt"

	"invoicing-app/internal/store"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Store struct {
	db *gorm.DB
}

var _ store.Store = (*Store)(nil)

// New expects a *gorm.DB opened with TranslateError so unique violations
// surface as gorm.ErrDuplicatedKey.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Transaction(ctx context.Context, fn func(tx store.Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx})
	})
}

func (s *Store) conn(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx)
}

func (s *Store) forUpdate(ctx context.Context) *gorm.DB {
	return s.conn(ctx).Clauses(clause.Locking{Strength: "UPDATE"})
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return store.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %v", store.ErrDuplicate, err)
	default:
		return err
	}
}

// affected maps "no row touched" to ErrNotFound for tenant-scoped writes.
func affected(res *gorm.DB) error {
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}

// updateScoped writes every column of model, associations excluded, only when
// the row belongs to tenantID. gorm's Save would insert on a miss instead.
func (s *Store) updateScoped(ctx context.Context, tenantID uuid.UUID, model any) error {
	return affected(s.conn(ctx).
		Model(model).
		Where("tenant_id = ?", tenantID).
		Select("*").
		Omit("id", "created_at", clause.Associations).
		Updates(model))
}

func paged(db *gorm.DB, page store.Page) *gorm.DB {
	page = page.Normalize()
	return db.Limit(page.Limit).Offset(page.Offset)
}
