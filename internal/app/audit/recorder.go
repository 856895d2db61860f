// Package audit appends and reads the tenant audit trail.
package audit

import (
	"context"
	"fmt"
	"time"

	auditlog "invoicing-app/internal/domain/audit"
	"invoicing-app/internal/store"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Entry struct {
	TenantID   uuid.UUID
	UserID     *uuid.UUID
	Action     string
	EntityType string
	EntityID   string
	Metadata   map[string]any
}

type Recorder struct {
	logs store.AuditLogs
	now  func() time.Time
}

func NewRecorder(logs store.AuditLogs) *Recorder {
	return &Recorder{logs: logs, now: time.Now}
}

// Record appends e through w, which is normally the caller's transaction so
// the entry commits or rolls back with the change it describes.
func (r *Recorder) Record(ctx context.Context, w store.AuditLogs, e Entry) error {
	l := &auditlog.Log{
		TenantID:   e.TenantID,
		UserID:     e.UserID,
		Action:     e.Action,
		EntityType: e.EntityType,
		EntityID:   e.EntityID,
		Metadata:   datatypes.JSONMap(e.Metadata),
		CreatedAt:  r.now(),
	}
	if err := w.AppendAuditLog(ctx, l); err != nil {
		return fmt.Errorf("audit %s: %w", e.Action, err)
	}
	return nil
}

func (r *Recorder) List(ctx context.Context, tenantID uuid.UUID, page store.Page) ([]auditlog.Log, error) {
	return r.logs.ListAuditLogs(ctx, tenantID, page)
}
