package model

import (
	"time"

	"gorm.io/gorm"
)

// ExamResult records a student's marks in one subject of one exam.
type ExamResult struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	ExamName  string         `json:"exam_name" gorm:"type:varchar(100);not null;index"`
	Subject   string         `json:"subject" gorm:"type:varchar(100);not null"`
	StudentID uint           `json:"student_id" gorm:"not null;index"`
	Marks     float64        `json:"marks"`
	MaxMarks  float64        `json:"max_marks" gorm:"default:100"`
	JamiaID   *uint          `json:"jamia_id,omitempty" gorm:"index"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	Student *Student `json:"student,omitempty" gorm:"foreignKey:StudentID"`
}

// JamiaRef returns the jamia the result belongs to, if any.
func (r *ExamResult) JamiaRef() *uint { return r.JamiaID }
