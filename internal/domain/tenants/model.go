package tenants

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Status string

const (
	StatusActive    Status = "ACTIVE"
	StatusSuspended Status = "SUSPENDED"
	StatusDeleted   Status = "DELETED"
)

type Tenant struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string    `gorm:"not null" json:"name"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone,omitempty"`
	Currency    string    `gorm:"type:varchar(3);not null;default:'NGN'" json:"currency"`
	Status      Status    `gorm:"type:varchar(20);not null;default:'ACTIVE'" json:"status"`
	OwnerUserID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_tenants_owner_user_id" json:"owner_user_id"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (t *Tenant) BeforeCreate(*gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

func (t *Tenant) IsActive() bool {
	return t != nil && t.Status == StatusActive
}
