package model

import (
	"time"

	"gorm.io/gorm"
)

// Admission application statuses
const (
	AdmissionPending  = "pending"
	AdmissionApproved = "approved"
	AdmissionRejected = "rejected"
)

// Admission represents an admission application. Approving one creates the
// Student record.
type Admission struct {
	ID            uint           `json:"id" gorm:"primaryKey"`
	ApplicantName string         `json:"applicant_name" gorm:"type:varchar(100);not null"`
	FatherName    string         `json:"father_name" gorm:"type:varchar(100)"`
	Phone         string         `json:"phone" gorm:"type:varchar(30)"`
	ClassName     string         `json:"class_name" gorm:"type:varchar(50)"`
	Status        string         `json:"status" gorm:"type:varchar(20);default:'pending';index"`
	Notes         string         `json:"notes" gorm:"type:text"`
	StudentID     *uint          `json:"student_id,omitempty" gorm:"index"` // set on approval
	JamiaID       *uint          `json:"jamia_id,omitempty" gorm:"index"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `json:"-" gorm:"index"`
}

// JamiaRef returns the jamia the application belongs to, if any.
func (a *Admission) JamiaRef() *uint { return a.JamiaID }
