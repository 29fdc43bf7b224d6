package model

import (
	"time"

	"gorm.io/gorm"
)

// Attendance statuses
const (
	AttendancePresent = "present"
	AttendanceAbsent  = "absent"
	AttendanceLate    = "late"
	AttendanceLeave   = "leave"
)

// AttendanceRecord represents one student's attendance for one day.
// One record per (jamia, student, date); marking the same day again
// updates the existing record while the edit window is open.
type AttendanceRecord struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	StudentID uint           `json:"student_id" gorm:"not null;uniqueIndex:idx_attendance_day,priority:2"`
	Date      time.Time      `json:"date" gorm:"type:date;not null;uniqueIndex:idx_attendance_day,priority:3;index"`
	Status    string         `json:"status" gorm:"type:varchar(10);not null"`
	MarkedBy  uint           `json:"marked_by" gorm:"index"`
	JamiaID   *uint          `json:"jamia_id,omitempty" gorm:"uniqueIndex:idx_attendance_day,priority:1;index"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	Student *Student `json:"student,omitempty" gorm:"foreignKey:StudentID"`
}

// JamiaRef returns the jamia the record belongs to, if any.
func (r *AttendanceRecord) JamiaRef() *uint { return r.JamiaID }

// ValidAttendanceStatus reports whether s is one of the known statuses.
func ValidAttendanceStatus(s string) bool {
	switch s {
	case AttendancePresent, AttendanceAbsent, AttendanceLate, AttendanceLeave:
		return true
	}
	return false
}
