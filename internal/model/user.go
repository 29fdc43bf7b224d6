package model

import (
	"time"

	"gorm.io/gorm"
)

// User represents an account that can sign in to one of the portals.
// Role is validated against the closed role enumeration at the edges;
// JamiaID is nil for super admins and for single-tenant deployments.
type User struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	Email       string         `json:"email" gorm:"type:varchar(100);uniqueIndex;not null"`
	Password    string         `json:"-" gorm:"type:varchar(255)"`
	Name        string         `json:"name" gorm:"type:varchar(100)"`
	Role        string         `json:"role" gorm:"type:varchar(50);not null;default:'staff'"`
	JamiaID     *uint          `json:"jamia_id,omitempty" gorm:"index"`
	LinkedID    *uint          `json:"linked_id,omitempty" gorm:"index"` // teacher/student record this account is linked to
	Permissions StringList     `json:"permissions,omitempty" gorm:"type:jsonb"`
	Active      bool           `json:"active" gorm:"default:true"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`

	Jamia *Jamia `json:"jamia,omitempty" gorm:"foreignKey:JamiaID"`
}

// JamiaRef returns the jamia the user belongs to, if any.
func (u *User) JamiaRef() *uint { return u.JamiaID }
