package handler

import (
	"context"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/Mahanoorfarooq/Madrassa-Management-System-sub002/internal/authz"
	"github.com/Mahanoorfarooq/Madrassa-Management-System-sub002/internal/model"
	"github.com/Mahanoorfarooq/Madrassa-Management-System-sub002/internal/store"
)

// In-memory fakes so handlers can be exercised without a database. Only
// the behavior the handlers rely on is implemented.

func uintPtr(v uint) *uint { return &v }

type fakeJamiaStore struct {
	jamias map[uint]*model.Jamia
}

func (f *fakeJamiaStore) JamiaByID(_ context.Context, id uint) (*model.Jamia, error) {
	j, ok := f.jamias[id]
	if !ok || j.DeletedAt.Valid {
		return nil, nil
	}
	return j, nil
}

func (f *fakeJamiaStore) HasJamias(_ context.Context) (bool, error) {
	return len(f.jamias) > 0, nil
}

func (f *fakeJamiaStore) Create(_ context.Context, jamia *model.Jamia) error {
	jamia.ID = uint(len(f.jamias) + 1)
	f.jamias[jamia.ID] = jamia
	return nil
}

func (f *fakeJamiaStore) BySlug(_ context.Context, slug string) (*model.Jamia, error) {
	for _, j := range f.jamias {
		if j.Slug == slug && !j.DeletedAt.Valid {
			return j, nil
		}
	}
	return nil, nil
}

func (f *fakeJamiaStore) List(_ context.Context) ([]model.Jamia, error) {
	var out []model.Jamia
	for _, j := range f.jamias {
		if !j.DeletedAt.Valid {
			out = append(out, *j)
		}
	}
	return out, nil
}

func (f *fakeJamiaStore) Update(_ context.Context, jamia *model.Jamia) error {
	f.jamias[jamia.ID] = jamia
	return nil
}

func (f *fakeJamiaStore) SoftDelete(_ context.Context, id uint) error {
	if j, ok := f.jamias[id]; ok {
		j.DeletedAt.Time = time.Now()
		j.DeletedAt.Valid = true
	}
	return nil
}

func inScope(scope authz.QueryScope, ref *uint) bool {
	if scope.All {
		return true
	}
	if scope.JamiaID == nil {
		return ref == nil
	}
	if ref == nil {
		return scope.IncludeLegacy
	}
	return *ref == *scope.JamiaID
}

type fakeStudentStore struct {
	students map[uint]*model.Student
	nextID   uint
}

func newFakeStudentStore() *fakeStudentStore {
	return &fakeStudentStore{students: map[uint]*model.Student{}, nextID: 1}
}

func (f *fakeStudentStore) Create(_ context.Context, student *model.Student) error {
	student.ID = f.nextID
	f.nextID++
	f.students[student.ID] = student
	return nil
}

func (f *fakeStudentStore) ByID(_ context.Context, id uint) (*model.Student, error) {
	s, ok := f.students[id]
	if !ok {
		return nil, nil
	}
	return s, nil
}

func (f *fakeStudentStore) Update(_ context.Context, student *model.Student) error {
	f.students[student.ID] = student
	return nil
}

func (f *fakeStudentStore) Delete(_ context.Context, id uint) error {
	delete(f.students, id)
	return nil
}

func (f *fakeStudentStore) List(_ context.Context, scope authz.QueryScope, filter store.StudentFilter) ([]model.Student, error) {
	var out []model.Student
	for _, s := range f.students {
		if !inScope(scope, s.JamiaID) {
			continue
		}
		if filter.ClassName != "" && s.ClassName != filter.ClassName {
			continue
		}
		if filter.Status != "" && s.Status != filter.Status {
			continue
		}
		out = append(out, *s)
	}
	return out, nil
}

type fakeAttendanceStore struct {
	records []model.AttendanceRecord
	nextID  uint
}

func (f *fakeAttendanceStore) ByStudentDate(_ context.Context, jamiaID *uint, studentID uint, date time.Time) (*model.AttendanceRecord, error) {
	for i := range f.records {
		r := &f.records[i]
		if r.StudentID != studentID || !r.Date.Equal(date) {
			continue
		}
		if jamiaID == nil {
			if r.JamiaID == nil {
				return r, nil
			}
			continue
		}
		if r.JamiaID != nil && *r.JamiaID == *jamiaID {
			return r, nil
		}
	}
	return nil, nil
}

func (f *fakeAttendanceStore) Create(_ context.Context, record *model.AttendanceRecord) error {
	f.nextID++
	record.ID = f.nextID
	f.records = append(f.records, *record)
	return nil
}

func (f *fakeAttendanceStore) Update(_ context.Context, record *model.AttendanceRecord) error {
	for i := range f.records {
		if f.records[i].ID == record.ID {
			f.records[i] = *record
		}
	}
	return nil
}

func (f *fakeAttendanceStore) ListByDate(_ context.Context, scope authz.QueryScope, date time.Time) ([]model.AttendanceRecord, error) {
	var out []model.AttendanceRecord
	for _, r := range f.records {
		if r.Date.Equal(date) && inScope(scope, r.JamiaID) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeAttendanceStore) ListByStudent(_ context.Context, scope authz.QueryScope, studentID uint) ([]model.AttendanceRecord, error) {
	var out []model.AttendanceRecord
	for _, r := range f.records {
		if r.StudentID == studentID && inScope(scope, r.JamiaID) {
			out = append(out, r)
		}
	}
	return out, nil
}

type fakeFeeStore struct {
	structures map[uint]*model.FeeStructure
	invoices   []model.Invoice
	nextID     uint
}

func newFakeFeeStore() *fakeFeeStore {
	return &fakeFeeStore{structures: map[uint]*model.FeeStructure{}, nextID: 1}
}

func (f *fakeFeeStore) CreateStructure(_ context.Context, fs *model.FeeStructure) error {
	fs.ID = f.nextID
	f.nextID++
	f.structures[fs.ID] = fs
	return nil
}

func (f *fakeFeeStore) StructureByID(_ context.Context, id uint) (*model.FeeStructure, error) {
	fs, ok := f.structures[id]
	if !ok {
		return nil, nil
	}
	return fs, nil
}

func (f *fakeFeeStore) UpdateStructure(_ context.Context, fs *model.FeeStructure) error {
	f.structures[fs.ID] = fs
	return nil
}

func (f *fakeFeeStore) DeleteStructure(_ context.Context, id uint) error {
	delete(f.structures, id)
	return nil
}

func (f *fakeFeeStore) ListStructures(_ context.Context, scope authz.QueryScope) ([]model.FeeStructure, error) {
	var out []model.FeeStructure
	for _, fs := range f.structures {
		if inScope(scope, fs.JamiaID) {
			out = append(out, *fs)
		}
	}
	return out, nil
}

func (f *fakeFeeStore) InvoicedStudentIDs(_ context.Context, structureID uint, month string) (map[uint]struct{}, error) {
	out := map[uint]struct{}{}
	for _, inv := range f.invoices {
		if inv.FeeStructureID == structureID && inv.Month == month {
			out[inv.StudentID] = struct{}{}
		}
	}
	return out, nil
}

func (f *fakeFeeStore) CreateInvoices(_ context.Context, invoices []model.Invoice) error {
	for i := range invoices {
		invoices[i].ID = f.nextID
		f.nextID++
		f.invoices = append(f.invoices, invoices[i])
	}
	return nil
}

func (f *fakeFeeStore) InvoiceByID(_ context.Context, id uint) (*model.Invoice, error) {
	for i := range f.invoices {
		if f.invoices[i].ID == id {
			return &f.invoices[i], nil
		}
	}
	return nil, nil
}

func (f *fakeFeeStore) UpdateInvoice(_ context.Context, invoice *model.Invoice) error {
	for i := range f.invoices {
		if f.invoices[i].ID == invoice.ID {
			f.invoices[i] = *invoice
		}
	}
	return nil
}

func (f *fakeFeeStore) ListInvoices(_ context.Context, scope authz.QueryScope, filter store.InvoiceFilter) ([]model.Invoice, error) {
	var out []model.Invoice
	for _, inv := range f.invoices {
		if !inScope(scope, inv.JamiaID) {
			continue
		}
		if filter.StudentID != 0 && inv.StudentID != filter.StudentID {
			continue
		}
		if filter.Month != "" && inv.Month != filter.Month {
			continue
		}
		if filter.Status != "" && inv.Status != filter.Status {
			continue
		}
		out = append(out, inv)
	}
	return out, nil
}

// activeJamia builds a jamia with every module enabled.
func activeJamia(id uint, slug string) *model.Jamia {
	flags := model.ModuleFlags{}
	for _, m := range authz.Modules() {
		flags[string(m)] = true
	}
	return &model.Jamia{ID: id, Name: slug, Slug: slug, Active: true, Modules: flags}
}

func testGuard(jamias *fakeJamiaStore) *authz.Authorizer {
	return authz.NewAuthorizer(jamias, authz.DefaultPolicy(), zap.NewNop())
}

func adminPrincipal(jamiaID uint) *authz.Principal {
	return &authz.Principal{UserID: 10, Email: "admin@example.com", Role: authz.RoleAdmin, JamiaID: uintPtr(jamiaID)}
}

// newTestContext builds an echo context carrying the principal, the way
// the auth middleware would have left it.
func newTestContext(method, target, body string, p *authz.Principal) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if p != nil {
		c.Set("principal", p)
	}
	return c, rec
}

var testValidate = validator.New()
