package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	ActionCreateRemoval    = "CREATE_REMOVAL"
	ActionUpdateRemoval    = "UPDATE_REMOVAL"
	ActionSubmitRemoval    = "SUBMIT_REMOVAL"
	ActionApproveRemoval   = "APPROVE_REMOVAL"
	ActionRejectRemoval    = "REJECT_REMOVAL"
	ActionRecordReturn     = "RECORD_RETURN"
	ActionRequestExtension = "REQUEST_EXTENSION"
	ActionApproveExtension = "APPROVE_EXTENSION"
	ActionRejectExtension  = "REJECT_EXTENSION"
	ActionGenerateReport   = "GENERATE_REPORT"
	ActionCreateUser       = "CREATE_USER"
)

// AuditLog tracks Who, What, and When for critical system changes
type AuditLog struct {
	ID         uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID     *uuid.UUID `gorm:"type:uuid;index" json:"user_id"` // Nullable for seeding and other automated writes
	User       *User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Action     string     `gorm:"type:varchar(50);not null;index" json:"action"`
	EntityID   string     `gorm:"type:varchar(50);index" json:"entity_id"`
	EntityName string     `gorm:"type:varchar(255)" json:"entity_name,omitempty"`
	Details    string     `gorm:"type:jsonb" json:"details"` // Serialized JSON payload of the action
	CreatedAt  time.Time  `gorm:"index" json:"created_at"`
}

// RemovalEvent is broadcast to live clients after a removal changes.
type RemovalEvent struct {
	Action     string    `json:"action"`
	RemovalID  uuid.UUID `json:"removal_id"`
	FromStatus string    `json:"from_status,omitempty"`
	Status     string    `json:"status"`
	ActorID    uuid.UUID `json:"actor_id"`
	At         time.Time `json:"at"`
}
