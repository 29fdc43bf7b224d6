package model

import (
	"time"

	"gorm.io/gorm"
)

// Book represents a library title with a simple copy count.
type Book struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	Title     string         `json:"title" gorm:"type:varchar(200);not null"`
	Author    string         `json:"author" gorm:"type:varchar(100)"`
	Copies    int            `json:"copies" gorm:"default:1"`
	Issued    int            `json:"issued" gorm:"default:0"`
	JamiaID   *uint          `json:"jamia_id,omitempty" gorm:"index"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

// JamiaRef returns the jamia the book belongs to, if any.
func (b *Book) JamiaRef() *uint { return b.JamiaID }

// BookIssue records a book lent to a student. ReturnedAt nil means the copy
// is still out.
type BookIssue struct {
	ID         uint           `json:"id" gorm:"primaryKey"`
	BookID     uint           `json:"book_id" gorm:"not null;index"`
	StudentID  uint           `json:"student_id" gorm:"not null;index"`
	IssuedAt   time.Time      `json:"issued_at"`
	DueAt      time.Time      `json:"due_at"`
	ReturnedAt *time.Time     `json:"returned_at,omitempty"`
	JamiaID    *uint          `json:"jamia_id,omitempty" gorm:"index"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `json:"-" gorm:"index"`

	Book    *Book    `json:"book,omitempty" gorm:"foreignKey:BookID"`
	Student *Student `json:"student,omitempty" gorm:"foreignKey:StudentID"`
}

// JamiaRef returns the jamia the issue belongs to, if any.
func (i *BookIssue) JamiaRef() *uint { return i.JamiaID }
