// Package store holds the data access layer: one small repository per
// domain, defined as an interface so handlers can be tested against
// in-memory fakes. All list methods take the authz.QueryScope computed for
// the requesting principal, so collection scans are partitioned at the
// query.
package store

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/Mahanoorfarooq/Madrassa-Management-System-sub002/internal/authz"
	"github.com/Mahanoorfarooq/Madrassa-Management-System-sub002/internal/model"
)

// JamiaStore manages institutions. It doubles as the guard's
// JamiaDirectory.
type JamiaStore interface {
	authz.JamiaDirectory
	Create(ctx context.Context, jamia *model.Jamia) error
	BySlug(ctx context.Context, slug string) (*model.Jamia, error)
	List(ctx context.Context) ([]model.Jamia, error)
	Update(ctx context.Context, jamia *model.Jamia) error
	SoftDelete(ctx context.Context, id uint) error
}

// UserStore manages portal accounts.
type UserStore interface {
	Create(ctx context.Context, user *model.User) error
	ByID(ctx context.Context, id uint) (*model.User, error)
	ByEmail(ctx context.Context, email string) (*model.User, error)
	List(ctx context.Context, scope authz.QueryScope) ([]model.User, error)
	Update(ctx context.Context, user *model.User) error
}

// StudentFilter narrows student listings.
type StudentFilter struct {
	ClassName string
	Status    string
}

// StudentStore manages student records.
type StudentStore interface {
	Create(ctx context.Context, student *model.Student) error
	ByID(ctx context.Context, id uint) (*model.Student, error)
	Update(ctx context.Context, student *model.Student) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, scope authz.QueryScope, filter StudentFilter) ([]model.Student, error)
}

// AdmissionStore manages admission applications.
type AdmissionStore interface {
	Create(ctx context.Context, admission *model.Admission) error
	ByID(ctx context.Context, id uint) (*model.Admission, error)
	Update(ctx context.Context, admission *model.Admission) error
	List(ctx context.Context, scope authz.QueryScope, status string) ([]model.Admission, error)
}

// AttendanceStore manages daily attendance records.
type AttendanceStore interface {
	// ByStudentDate returns the record for one student and day, if any.
	ByStudentDate(ctx context.Context, jamiaID *uint, studentID uint, date time.Time) (*model.AttendanceRecord, error)
	Create(ctx context.Context, record *model.AttendanceRecord) error
	Update(ctx context.Context, record *model.AttendanceRecord) error
	ListByDate(ctx context.Context, scope authz.QueryScope, date time.Time) ([]model.AttendanceRecord, error)
	ListByStudent(ctx context.Context, scope authz.QueryScope, studentID uint) ([]model.AttendanceRecord, error)
}

// InvoiceFilter narrows invoice listings.
type InvoiceFilter struct {
	StudentID uint
	Month     string
	Status    string
}

// FeeStore manages fee structures and invoices.
type FeeStore interface {
	CreateStructure(ctx context.Context, fs *model.FeeStructure) error
	StructureByID(ctx context.Context, id uint) (*model.FeeStructure, error)
	UpdateStructure(ctx context.Context, fs *model.FeeStructure) error
	DeleteStructure(ctx context.Context, id uint) error
	ListStructures(ctx context.Context, scope authz.QueryScope) ([]model.FeeStructure, error)
	// InvoicedStudentIDs returns the students already invoiced for a
	// structure and month, so bulk generation can skip them.
	InvoicedStudentIDs(ctx context.Context, structureID uint, month string) (map[uint]struct{}, error)
	CreateInvoices(ctx context.Context, invoices []model.Invoice) error
	InvoiceByID(ctx context.Context, id uint) (*model.Invoice, error)
	UpdateInvoice(ctx context.Context, invoice *model.Invoice) error
	ListInvoices(ctx context.Context, scope authz.QueryScope, filter InvoiceFilter) ([]model.Invoice, error)
}

// LibraryStore manages books and issues.
type LibraryStore interface {
	CreateBook(ctx context.Context, book *model.Book) error
	BookByID(ctx context.Context, id uint) (*model.Book, error)
	UpdateBook(ctx context.Context, book *model.Book) error
	DeleteBook(ctx context.Context, id uint) error
	ListBooks(ctx context.Context, scope authz.QueryScope) ([]model.Book, error)
	CreateIssue(ctx context.Context, issue *model.BookIssue) error
	IssueByID(ctx context.Context, id uint) (*model.BookIssue, error)
	UpdateIssue(ctx context.Context, issue *model.BookIssue) error
	ListIssues(ctx context.Context, scope authz.QueryScope, openOnly bool) ([]model.BookIssue, error)
}

// HostelStore manages rooms and allocations.
type HostelStore interface {
	CreateRoom(ctx context.Context, room *model.HostelRoom) error
	RoomByID(ctx context.Context, id uint) (*model.HostelRoom, error)
	UpdateRoom(ctx context.Context, room *model.HostelRoom) error
	DeleteRoom(ctx context.Context, id uint) error
	ListRooms(ctx context.Context, scope authz.QueryScope) ([]model.HostelRoom, error)
	CreateAllocation(ctx context.Context, alloc *model.HostelAllocation) error
	AllocationByID(ctx context.Context, id uint) (*model.HostelAllocation, error)
	UpdateAllocation(ctx context.Context, alloc *model.HostelAllocation) error
	ListAllocations(ctx context.Context, scope authz.QueryScope, activeOnly bool) ([]model.HostelAllocation, error)
}

// ExamStore manages exam results.
type ExamStore interface {
	Create(ctx context.Context, result *model.ExamResult) error
	List(ctx context.Context, scope authz.QueryScope, examName string, studentID uint) ([]model.ExamResult, error)
}

// NoticeStore manages notices.
type NoticeStore interface {
	Create(ctx context.Context, notice *model.Notice) error
	ByID(ctx context.Context, id uint) (*model.Notice, error)
	Update(ctx context.Context, notice *model.Notice) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, scope authz.QueryScope, audience string) ([]model.Notice, error)
}

// Stores bundles every repository over one gorm connection.
type Stores struct {
	Jamias     JamiaStore
	Users      UserStore
	Students   StudentStore
	Admissions AdmissionStore
	Attendance AttendanceStore
	Fees       FeeStore
	Library    LibraryStore
	Hostel     HostelStore
	Exams      ExamStore
	Notices    NoticeStore
}

// New builds gorm-backed stores.
func New(db *gorm.DB) *Stores {
	return &Stores{
		Jamias:     &jamiaStore{db: db},
		Users:      &userStore{db: db},
		Students:   &studentStore{db: db},
		Admissions: &admissionStore{db: db},
		Attendance: &attendanceStore{db: db},
		Fees:       &feeStore{db: db},
		Library:    &libraryStore{db: db},
		Hostel:     &hostelStore{db: db},
		Exams:      &examStore{db: db},
		Notices:    &noticeStore{db: db},
	}
}

// first runs the query and maps gorm's not-found to (nil, nil) so callers
// and the guard can distinguish absence from store failure.
func first[T any](db *gorm.DB, conds ...interface{}) (*T, error) {
	var out T
	result := db.First(&out, conds...)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return &out, nil
}
