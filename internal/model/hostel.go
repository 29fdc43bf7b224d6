package model

import (
	"time"

	"gorm.io/gorm"
)

// HostelRoom represents a hostel room with a bed capacity.
type HostelRoom struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	Number    string         `json:"number" gorm:"type:varchar(20);not null"`
	Capacity  int            `json:"capacity" gorm:"default:1"`
	Occupied  int            `json:"occupied" gorm:"default:0"`
	JamiaID   *uint          `json:"jamia_id,omitempty" gorm:"index"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

// JamiaRef returns the jamia the room belongs to, if any.
func (r *HostelRoom) JamiaRef() *uint { return r.JamiaID }

// HostelAllocation assigns a student to a room. VacatedAt nil means the bed
// is still occupied.
type HostelAllocation struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	RoomID    uint           `json:"room_id" gorm:"not null;index"`
	StudentID uint           `json:"student_id" gorm:"not null;index"`
	From      time.Time      `json:"from"`
	VacatedAt *time.Time     `json:"vacated_at,omitempty"`
	JamiaID   *uint          `json:"jamia_id,omitempty" gorm:"index"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	Room    *HostelRoom `json:"room,omitempty" gorm:"foreignKey:RoomID"`
	Student *Student    `json:"student,omitempty" gorm:"foreignKey:StudentID"`
}

// JamiaRef returns the jamia the allocation belongs to, if any.
func (a *HostelAllocation) JamiaRef() *uint { return a.JamiaID }
