package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is the identity used for scope checks and audit attribution
type User struct {
	ID          uuid.UUID        `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name        string           `gorm:"type:varchar(255);not null" json:"name"`
	Email       string           `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Password    string           `gorm:"type:varchar(255);not null" json:"-"` // Omit password from JSON requests/responses
	Roles       []Role           `gorm:"many2many:user_roles;" json:"roles"`
	Departments []UserDepartment `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"departments"`
	CreatedAt   time.Time        `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time        `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt   gorm.DeletedAt   `gorm:"index" json:"-"` // GORM soft delete
}

// Department is reference data; removals of returnable assets are owned by one.
type Department struct {
	ID   uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name string    `gorm:"type:varchar(100);uniqueIndex;not null" json:"name"`
}

// UserDepartment links a user to a department they belong to
type UserDepartment struct {
	ID           uuid.UUID   `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID       uuid.UUID   `gorm:"type:uuid;not null;uniqueIndex:idx_user_department" json:"user_id"`
	DepartmentID uuid.UUID   `gorm:"type:uuid;not null;uniqueIndex:idx_user_department" json:"department_id"`
	Department   *Department `gorm:"foreignKey:DepartmentID" json:"department,omitempty"`
	IsPrimary    bool        `gorm:"default:false" json:"is_primary"`
}
