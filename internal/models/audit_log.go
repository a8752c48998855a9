package models

import (
	"time"

	"bizdir/internal/uuid"

	"gorm.io/gorm"
)

// Audit actions recorded by the back office.
const (
	AuditActionBusinessSuspended = "BUSINESS_SUSPENDED"
	AuditActionBusinessDeleted   = "BUSINESS_DELETED"
	AuditActionUserRoleUpdated   = "USER_ROLE_UPDATED"
)

// Audit entity types.
const (
	AuditEntityBusiness = "Business"
	AuditEntityUser     = "User"
)

// AuditLog records an administrative action against a business or user.
// Entries are append-only: no Base embed, no UpdatedAt, no soft deletes.
type AuditLog struct {
	ID           string    `gorm:"type:uuid;primaryKey" json:"id"`
	ActorID      string    `gorm:"type:uuid;not null;index" json:"actor_id"`
	Action       string    `gorm:"not null;index" json:"action"`
	EntityType   string    `gorm:"not null" json:"entity_type"`
	EntityID     string    `gorm:"type:uuid;not null;index" json:"entity_id"`
	TargetUserID *string   `gorm:"type:uuid" json:"target_user_id,omitempty"`
	OldValue     string    `json:"old_value"`
	NewValue     string    `json:"new_value"`
	Reason       *string   `json:"reason,omitempty"`
	IPAddress    string    `json:"ip_address,omitempty"`
	UserAgent    string    `json:"user_agent,omitempty"`
	CreatedAt    time.Time `gorm:"not null" json:"created_at"`
}

// BeforeCreate hook generates a UUIDv7 for new records
func (a *AuditLog) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.New()
	}
	return nil
}
