package gormstore

import (
	"errors"
	"fmt"
	"testing"

	"invoicing-app/internal/store"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestTranslate(t *testing.T) {
	assert.NoError(t, translate(nil))
	assert.ErrorIs(t, translate(gorm.ErrRecordNotFound), store.ErrNotFound)
	assert.ErrorIs(t, translate(fmt.Errorf("insert: %w", gorm.ErrDuplicatedKey)), store.ErrDuplicate)

	other := errors.New("connection reset")
	assert.Equal(t, other, translate(other))
}

func TestAffected(t *testing.T) {
	assert.ErrorIs(t, affected(&gorm.DB{RowsAffected: 0}), store.ErrNotFound)
	assert.NoError(t, affected(&gorm.DB{RowsAffected: 1}))

	failed := &gorm.DB{Error: gorm.ErrDuplicatedKey}
	assert.ErrorIs(t, affected(failed), store.ErrDuplicate)
}

func TestPageNormalize(t *testing.T) {
	assert.Equal(t, store.Page{Limit: 50}, store.Page{}.Normalize())
	assert.Equal(t, store.Page{Limit: 50, Offset: 0}, store.Page{Limit: 1000, Offset: -3}.Normalize())
	assert.Equal(t, store.Page{Limit: 10, Offset: 20}, store.Page{Limit: 10, Offset: 20}.Normalize())
}
