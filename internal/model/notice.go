package model

import (
	"time"

	"gorm.io/gorm"
)

// Notice is an announcement for one or more portal audiences. Delivery over
// SMS/email is a stored preference only; no gateway is integrated.
type Notice struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	Title     string         `json:"title" gorm:"type:varchar(200);not null"`
	Body      string         `json:"body" gorm:"type:text"`
	Audience  string         `json:"audience" gorm:"type:varchar(50);default:'all'"` // all, teachers, students, staff
	SendSMS   bool           `json:"send_sms" gorm:"default:false"`
	SendEmail bool           `json:"send_email" gorm:"default:false"`
	PostedBy  uint           `json:"posted_by" gorm:"index"`
	JamiaID   *uint          `json:"jamia_id,omitempty" gorm:"index"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

// JamiaRef returns the jamia the notice belongs to, if any.
func (n *Notice) JamiaRef() *uint { return n.JamiaID }
