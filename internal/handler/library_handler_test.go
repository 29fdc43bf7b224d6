package handler

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mahanoorfarooq/Madrassa-Management-System-sub002/internal/authz"
	"github.com/Mahanoorfarooq/Madrassa-Management-System-sub002/internal/model"
)

type fakeLibraryStore struct {
	books  map[uint]*model.Book
	issues []model.BookIssue
	nextID uint
}

func newFakeLibraryStore() *fakeLibraryStore {
	return &fakeLibraryStore{books: map[uint]*model.Book{}, nextID: 1}
}

func (f *fakeLibraryStore) CreateBook(_ context.Context, book *model.Book) error {
	book.ID = f.nextID
	f.nextID++
	f.books[book.ID] = book
	return nil
}

func (f *fakeLibraryStore) BookByID(_ context.Context, id uint) (*model.Book, error) {
	b, ok := f.books[id]
	if !ok {
		return nil, nil
	}
	return b, nil
}

func (f *fakeLibraryStore) UpdateBook(_ context.Context, book *model.Book) error {
	f.books[book.ID] = book
	return nil
}

func (f *fakeLibraryStore) DeleteBook(_ context.Context, id uint) error {
	delete(f.books, id)
	return nil
}

func (f *fakeLibraryStore) ListBooks(_ context.Context, scope authz.QueryScope) ([]model.Book, error) {
	var out []model.Book
	for _, b := range f.books {
		if inScope(scope, b.JamiaID) {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (f *fakeLibraryStore) CreateIssue(_ context.Context, issue *model.BookIssue) error {
	issue.ID = f.nextID
	f.nextID++
	f.issues = append(f.issues, *issue)
	return nil
}

func (f *fakeLibraryStore) IssueByID(_ context.Context, id uint) (*model.BookIssue, error) {
	for i := range f.issues {
		if f.issues[i].ID == id {
			return &f.issues[i], nil
		}
	}
	return nil, nil
}

func (f *fakeLibraryStore) UpdateIssue(_ context.Context, issue *model.BookIssue) error {
	for i := range f.issues {
		if f.issues[i].ID == issue.ID {
			f.issues[i] = *issue
		}
	}
	return nil
}

func (f *fakeLibraryStore) ListIssues(_ context.Context, scope authz.QueryScope, openOnly bool) ([]model.BookIssue, error) {
	var out []model.BookIssue
	for _, iss := range f.issues {
		if !inScope(scope, iss.JamiaID) {
			continue
		}
		if openOnly && iss.ReturnedAt != nil {
			continue
		}
		out = append(out, iss)
	}
	return out, nil
}

func libraryFixture(t *testing.T) (*LibraryHandler, *fakeLibraryStore, *fakeStudentStore, *fakeJamiaStore) {
	t.Helper()
	jamias := &fakeJamiaStore{jamias: map[uint]*model.Jamia{1: activeJamia(1, "alpha")}}
	library := newFakeLibraryStore()
	students := newFakeStudentStore()
	h := NewLibraryHandler(library, students, testGuard(jamias), testValidate)
	return h, library, students, jamias
}

func TestIssueBook(t *testing.T) {
	h, library, students, _ := libraryFixture(t)
	require.NoError(t, library.CreateBook(context.Background(),
		&model.Book{Title: "Sahih al-Bukhari", Copies: 2, JamiaID: uintPtr(1)}))
	require.NoError(t, students.Create(context.Background(),
		&model.Student{Name: "Ahmed", JamiaID: uintPtr(1)}))

	c, rec := newTestContext(http.MethodPost, "/api/library/issues",
		`{"book_id":1,"student_id":1,"days":14}`, adminPrincipal(1))
	require.NoError(t, h.IssueBook(c))

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, 1, library.books[1].Issued)
	require.Len(t, library.issues, 1)
	assert.WithinDuration(t, time.Now().AddDate(0, 0, 14), library.issues[0].DueAt, time.Minute)
}

func TestIssueBookNoCopiesLeft(t *testing.T) {
	h, library, students, _ := libraryFixture(t)
	require.NoError(t, library.CreateBook(context.Background(),
		&model.Book{Title: "Sahih al-Bukhari", Copies: 1, Issued: 1, JamiaID: uintPtr(1)}))
	require.NoError(t, students.Create(context.Background(),
		&model.Student{Name: "Ahmed", JamiaID: uintPtr(1)}))

	c, rec := newTestContext(http.MethodPost, "/api/library/issues",
		`{"book_id":1,"student_id":1,"days":14}`, adminPrincipal(1))
	require.NoError(t, h.IssueBook(c))

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Empty(t, library.issues)
}

func TestIssueBookCrossTenantBookLooksLikeMissing(t *testing.T) {
	h, library, students, _ := libraryFixture(t)
	require.NoError(t, library.CreateBook(context.Background(),
		&model.Book{Title: "Riyad as-Salihin", Copies: 3, JamiaID: uintPtr(2)}))
	require.NoError(t, students.Create(context.Background(),
		&model.Student{Name: "Ahmed", JamiaID: uintPtr(1)}))

	c, rec := newTestContext(http.MethodPost, "/api/library/issues",
		`{"book_id":1,"student_id":1,"days":14}`, adminPrincipal(1))
	require.NoError(t, h.IssueBook(c))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestIssueBookModuleDisabled(t *testing.T) {
	h, library, students, jamias := libraryFixture(t)
	jamias.jamias[1].Modules["library"] = false
	require.NoError(t, library.CreateBook(context.Background(),
		&model.Book{Title: "Sahih al-Bukhari", Copies: 2, JamiaID: uintPtr(1)}))
	require.NoError(t, students.Create(context.Background(),
		&model.Student{Name: "Ahmed", JamiaID: uintPtr(1)}))

	// The module gate denies even within the jamia's own data.
	c, rec := newTestContext(http.MethodPost, "/api/library/issues",
		`{"book_id":1,"student_id":1,"days":14}`, adminPrincipal(1))
	require.NoError(t, h.IssueBook(c))

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "not enabled for your institution")
}

func TestReturnBook(t *testing.T) {
	h, library, students, _ := libraryFixture(t)
	require.NoError(t, library.CreateBook(context.Background(),
		&model.Book{Title: "Sahih al-Bukhari", Copies: 2, JamiaID: uintPtr(1)}))
	require.NoError(t, students.Create(context.Background(),
		&model.Student{Name: "Ahmed", JamiaID: uintPtr(1)}))

	c, _ := newTestContext(http.MethodPost, "/api/library/issues",
		`{"book_id":1,"student_id":1,"days":14}`, adminPrincipal(1))
	require.NoError(t, h.IssueBook(c))
	require.Equal(t, uint(2), library.issues[0].ID)

	c, rec := newTestContext(http.MethodPost, "/api/library/issues/2/return", "", adminPrincipal(1))
	c.SetParamNames("id")
	c.SetParamValues("2")
	require.NoError(t, h.ReturnBook(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, library.books[1].Issued)
	require.NotNil(t, library.issues[0].ReturnedAt)

	// Returning twice conflicts.
	c, rec = newTestContext(http.MethodPost, "/api/library/issues/2/return", "", adminPrincipal(1))
	c.SetParamNames("id")
	c.SetParamValues("2")
	require.NoError(t, h.ReturnBook(c))
	assert.Equal(t, http.StatusConflict, rec.Code)
}
