package model

import (
	"time"

	"gorm.io/gorm"
)

// StudentStatus values for Student.Status
const (
	StudentActive    = "active"
	StudentGraduated = "graduated"
	StudentLeft      = "left"
)

// Student represents an enrolled student. JamiaID is set at creation and
// never changed afterwards; a nil JamiaID marks a record from before
// multi-tenancy was introduced.
type Student struct {
	ID           uint           `json:"id" gorm:"primaryKey"`
	AdmissionNo  string         `json:"admission_no" gorm:"type:varchar(50);index;not null"`
	Name         string         `json:"name" gorm:"type:varchar(100);not null"`
	FatherName   string         `json:"father_name" gorm:"type:varchar(100)"`
	GuardianName string         `json:"guardian_name" gorm:"type:varchar(100)"`
	Phone        string         `json:"phone" gorm:"type:varchar(30)"`
	Address      string         `json:"address" gorm:"type:text"`
	DateOfBirth  *time.Time     `json:"date_of_birth,omitempty" gorm:"type:date"`
	ClassName    string         `json:"class_name" gorm:"type:varchar(50);index"`
	Status       string         `json:"status" gorm:"type:varchar(20);default:'active';index"`
	JamiaID      *uint          `json:"jamia_id,omitempty" gorm:"index"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `json:"-" gorm:"index"`
}

// JamiaRef returns the jamia the student belongs to, if any.
func (s *Student) JamiaRef() *uint { return s.JamiaID }
