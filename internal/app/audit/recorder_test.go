package audit

import (
	"context"
	"errors"
	"testing"
	"time"

	auditlog "invoicing-app/internal/domain/audit"
	"invoicing-app/internal/store"
	"invoicing-app/internal/store/memstore"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordAndList(t *testing.T) {
	ctx := context.Background()
	s := memstore.New()
	r := NewRecorder(s)
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	r.now = func() time.Time { return fixed }

	tenantID := uuid.New()
	userID := uuid.New()

	require.NoError(t, r.Record(ctx, s, Entry{
		TenantID:   tenantID,
		UserID:     &userID,
		Action:     auditlog.ActionSubscriptionCanceled,
		EntityType: "subscription",
		EntityID:   "sub-1",
		Metadata:   map[string]any{"cancelAtPeriodEnd": true},
	}))
	require.NoError(t, r.Record(ctx, s, Entry{TenantID: uuid.New(), Action: "other", EntityType: "x", EntityID: "y"}))

	logs, err := r.List(ctx, tenantID, store.Page{})
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, auditlog.ActionSubscriptionCanceled, logs[0].Action)
	assert.Equal(t, fixed, logs[0].CreatedAt)
	assert.Equal(t, true, logs[0].Metadata["cancelAtPeriodEnd"])
	assert.Equal(t, &userID, logs[0].UserID)
}

func TestRecordRollsBackWithTransaction(t *testing.T) {
	ctx := context.Background()
	s := memstore.New()
	r := NewRecorder(s)
	tenantID := uuid.New()

	err := s.Transaction(ctx, func(tx store.Store) error {
		require.NoError(t, r.Record(ctx, tx, Entry{TenantID: tenantID, Action: "a", EntityType: "b", EntityID: "c"}))
		return errors.New("abort")
	})
	require.Error(t, err)

	logs, err := r.List(ctx, tenantID, store.Page{})
	require.NoError(t, err)
	assert.Empty(t, logs)
}
