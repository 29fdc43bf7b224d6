package model

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"gorm.io/gorm"
)

// Jamia represents one institution (tenant). All jamia-scoped records carry
// its id; soft deletion makes the jamia and everything behind it
// inaccessible regardless of the Active flag.
type Jamia struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	Name      string         `json:"name" gorm:"type:varchar(100);not null"`
	Slug      string         `json:"slug" gorm:"type:varchar(100);uniqueIndex"`
	Active    bool           `json:"active" gorm:"default:true"`
	Modules   ModuleFlags    `json:"modules" gorm:"type:jsonb"`
	Settings  JamiaSettings  `json:"settings" gorm:"type:jsonb"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

// JamiaSettings holds per-institution settings, stored as JSONB.
type JamiaSettings struct {
	Currency     string `json:"currency,omitempty"`
	AcademicYear string `json:"academic_year,omitempty"`
}

// Value implements driver.Valuer
func (s JamiaSettings) Value() (driver.Value, error) {
	b, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner
func (s *JamiaSettings) Scan(value interface{}) error {
	return scanJSON(value, s)
}
