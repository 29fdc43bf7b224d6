package model

import (
	"time"

	"gorm.io/gorm"
)

// Invoice statuses
const (
	InvoiceUnpaid  = "unpaid"
	InvoicePartial = "partial"
	InvoicePaid    = "paid"
)

// FeeStructure is the template bulk invoice generation works from: a named
// fee head with an amount, per jamia.
type FeeStructure struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	Name      string         `json:"name" gorm:"type:varchar(100);not null"`
	Amount    float64        `json:"amount" gorm:"not null"`
	ClassName string         `json:"class_name" gorm:"type:varchar(50)"` // empty applies to all classes
	JamiaID   *uint          `json:"jamia_id,omitempty" gorm:"index"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

// JamiaRef returns the jamia the structure belongs to, if any.
func (f *FeeStructure) JamiaRef() *uint { return f.JamiaID }

// Invoice is a single student's bill generated from a fee structure for a
// billing month ("2026-08"). PaidAmount is simple sum bookkeeping.
type Invoice struct {
	ID             uint           `json:"id" gorm:"primaryKey"`
	StudentID      uint           `json:"student_id" gorm:"not null;index"`
	FeeStructureID uint           `json:"fee_structure_id" gorm:"not null;index"`
	Month          string         `json:"month" gorm:"type:varchar(7);not null;index"`
	Amount         float64        `json:"amount" gorm:"not null"`
	PaidAmount     float64        `json:"paid_amount" gorm:"default:0"`
	Status         string         `json:"status" gorm:"type:varchar(10);default:'unpaid';index"`
	JamiaID        *uint          `json:"jamia_id,omitempty" gorm:"index"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `json:"-" gorm:"index"`

	Student *Student `json:"student,omitempty" gorm:"foreignKey:StudentID"`
}

// JamiaRef returns the jamia the invoice belongs to, if any.
func (i *Invoice) JamiaRef() *uint { return i.JamiaID }
