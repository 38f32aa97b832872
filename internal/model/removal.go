package model

import (
	"time"

	"github.com/google/uuid"
)

// Removal status values. One per workflow step.
const (
	StatusDraft                = "DRAFT"
	StatusPendingLevel2        = "PENDING_LEVEL_2"
	StatusPendingLevel3        = "PENDING_LEVEL_3"
	StatusPendingLevel4        = "PENDING_LEVEL_4"
	StatusPendingSecurity      = "PENDING_SECURITY"
	StatusApproved             = "APPROVED"
	StatusRejected             = "REJECTED"
	StatusReturned             = "RETURNED"
	StatusPendingLevel2Recheck = "PENDING_LEVEL_2_RECHECK"
)

// Removal types
const (
	RemovalTypeReturnable    = "RETURNABLE"
	RemovalTypeNonReturnable = "NON_RETURNABLE"
)

// Extension request status values
const (
	ExtensionPending  = "PENDING"
	ExtensionApproved = "APPROVED"
	ExtensionRejected = "REJECTED"
)

// Removal is a request to take an asset off premises. It is never deleted,
// only transitioned, so its approvals form a permanent audit trail.
type Removal struct {
	ID                uuid.UUID          `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	RequesterID       uuid.UUID          `gorm:"type:uuid;not null;index" json:"requester_id"`
	Requester         *User              `gorm:"foreignKey:RequesterID" json:"requester,omitempty"`
	RemovalType       string             `gorm:"type:varchar(20);not null" json:"removal_type"`
	DateFrom          time.Time          `gorm:"not null" json:"date_from"`
	DateTo            *time.Time         `json:"date_to,omitempty"`
	Employee          string             `gorm:"type:varchar(255)" json:"employee,omitempty"`
	DepartmentID      *uuid.UUID         `gorm:"type:uuid;index" json:"department_id,omitempty"`
	Department        *Department        `gorm:"foreignKey:DepartmentID" json:"department,omitempty"`
	Status            string             `gorm:"type:varchar(30);not null;default:'DRAFT';index" json:"status"`
	RejectionReason   string             `gorm:"type:text" json:"rejection_reason,omitempty"`
	Version           int                `gorm:"not null;default:1" json:"version"` // Optimistic locking
	Items             []RemovalItem      `gorm:"foreignKey:RemovalID;constraint:OnDelete:CASCADE;" json:"items"`
	Approvals         []Approval         `gorm:"foreignKey:RemovalID" json:"approvals"`
	ReturnRecord      *ReturnRecord      `gorm:"foreignKey:RemovalID" json:"return_record,omitempty"`
	ExtensionRequests []ExtensionRequest `gorm:"foreignKey:RemovalID" json:"extension_requests"`
	CreatedAt         time.Time          `json:"created_at"`
	UpdatedAt         time.Time          `json:"updated_at"`
}

// RemovalItem is one asset on a removal, in submission order
type RemovalItem struct {
	ID              uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	RemovalID       uuid.UUID `gorm:"type:uuid;not null;index" json:"removal_id"`
	Position        int       `gorm:"not null;default:0" json:"position"`
	Description     string    `gorm:"type:text;not null" json:"description"`
	RemovalReasonID uuid.UUID `gorm:"type:uuid;not null" json:"removal_reason_id"`
	CustomReason    string    `gorm:"type:text" json:"custom_reason,omitempty"`
}

// RemovalReason is reference data. CustomReason on an item is only kept when AllowCustom is set.
type RemovalReason struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name        string    `gorm:"type:varchar(100);uniqueIndex;not null" json:"name"`
	AllowCustom bool      `gorm:"default:false" json:"allow_custom"`
}

// Approval is an append-only audit record of one approval or rejection event.
// Level: 2=department, 3=finance, 4=management, 5=security.
type Approval struct {
	ID              uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	RemovalID       uuid.UUID  `gorm:"type:uuid;not null;index" json:"removal_id"`
	Level           int        `gorm:"not null" json:"level"`
	Approved        bool       `gorm:"not null" json:"approved"`
	RejectionReason string     `gorm:"type:text" json:"rejection_reason,omitempty"`
	Comments        string     `gorm:"type:text" json:"comments,omitempty"`
	Signature       string     `gorm:"type:varchar(255);not null" json:"signature"`
	SignatureDate   time.Time  `json:"signature_date"`
	ApprovedByID    uuid.UUID  `gorm:"type:uuid;not null" json:"approved_by_id"`
	CreatedAt       time.Time  `gorm:"index" json:"created_at"`
	OverrideByID    *uuid.UUID `gorm:"type:uuid" json:"override_by_id,omitempty"`
	OverrideAt      *time.Time `json:"override_at,omitempty"`
}

// ReturnRecord is created exactly once, on the APPROVED -> RETURNED transition
type ReturnRecord struct {
	ID           uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	RemovalID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"removal_id"`
	ReturnDate   time.Time `gorm:"not null" json:"return_date"`
	Condition    string    `gorm:"type:varchar(255);not null" json:"condition"`
	Notes        string    `gorm:"type:text" json:"notes,omitempty"`
	RecordedByID uuid.UUID `gorm:"type:uuid;not null" json:"recorded_by_id"`
	CreatedAt    time.Time `json:"created_at"`
}

// ExtensionRequest asks to move the return date of an approved returnable removal
type ExtensionRequest struct {
	ID            uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	RemovalID     uuid.UUID  `gorm:"type:uuid;not null;index" json:"removal_id"`
	OriginalDate  time.Time  `gorm:"not null" json:"original_date"`
	NewDate       time.Time  `gorm:"not null" json:"new_date"`
	Status        string     `gorm:"type:varchar(20);not null;default:'PENDING'" json:"status"`
	RequestedByID uuid.UUID  `gorm:"type:uuid;not null" json:"requested_by_id"`
	CreatedAt     time.Time  `gorm:"index" json:"created_at"`
	RecheckByID   *uuid.UUID `gorm:"type:uuid" json:"recheck_by_id,omitempty"`
	RecheckStatus *string    `gorm:"type:varchar(20)" json:"recheck_status,omitempty"`
	RecheckAt     *time.Time `json:"recheck_at,omitempty"`
}

// OwnerID returns the requester of the removal.
func (r *Removal) OwnerID() uuid.UUID {
	return r.RequesterID
}

// OwningDepartmentID returns the department the removal belongs to, if any.
func (r *Removal) OwningDepartmentID() (uuid.UUID, bool) {
	if r.DepartmentID == nil {
		return uuid.Nil, false
	}
	return *r.DepartmentID, true
}

// CurrentStatus returns the workflow status.
func (r *Removal) CurrentStatus() string {
	return r.Status
}

// IsReturnable reports whether the asset is expected back.
func (r *Removal) IsReturnable() bool {
	return r.RemovalType == RemovalTypeReturnable
}

// AppendApproval adds an entry to the audit trail. Existing entries are never touched.
func (r *Removal) AppendApproval(a Approval) {
	a.RemovalID = r.ID
	r.Approvals = append(r.Approvals, a)
}

// PendingExtension returns the extension request driving PENDING_LEVEL_2_RECHECK, or nil.
func (r *Removal) PendingExtension() *ExtensionRequest {
	for i := range r.ExtensionRequests {
		if r.ExtensionRequests[i].Status == ExtensionPending {
			return &r.ExtensionRequests[i]
		}
	}
	return nil
}

// FindExtension returns the extension request with the given id, or nil.
func (r *Removal) FindExtension(id uuid.UUID) *ExtensionRequest {
	for i := range r.ExtensionRequests {
		if r.ExtensionRequests[i].ID == id {
			return &r.ExtensionRequests[i]
		}
	}
	return nil
}
