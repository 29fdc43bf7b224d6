package handler

import (
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/Mahanoorfarooq/Madrassa-Management-System-sub002/internal/authz"
	"github.com/Mahanoorfarooq/Madrassa-Management-System-sub002/internal/middleware"
	"github.com/Mahanoorfarooq/Madrassa-Management-System-sub002/internal/model"
	"github.com/Mahanoorfarooq/Madrassa-Management-System-sub002/internal/store"
	"github.com/Mahanoorfarooq/Madrassa-Management-System-sub002/pkg/logger"
)

// LibraryHandler serves books and book issues.
type LibraryHandler struct {
	library  store.LibraryStore
	students store.StudentStore
	guard    *authz.Authorizer
	validate *validator.Validate
}

// NewLibraryHandler creates the library handler.
func NewLibraryHandler(library store.LibraryStore, students store.StudentStore, guard *authz.Authorizer, validate *validator.Validate) *LibraryHandler {
	return &LibraryHandler{library: library, students: students, guard: guard, validate: validate}
}

// CreateBook adds a title.
func (h *LibraryHandler) CreateBook(c echo.Context) error {
	log := logger.FromEcho(c)
	p := middleware.PrincipalFromEcho(c)

	d, err := h.guard.Authorize(c.Request().Context(), p, authz.ModuleLibrary, nil)
	if err != nil {
		return serverError(c, log, "Authorization lookup failed", err)
	}
	if !d.Allowed {
		return denied(c, log, d, false)
	}
	if !hasRole(p, authz.RoleAdmin, authz.RoleMudeer, authz.RoleNazim, authz.RoleStaff) {
		return forbiddenRole(c)
	}

	var req struct {
		Title  string `json:"title" validate:"required"`
		Author string `json:"author"`
		Copies int    `json:"copies" validate:"gte=1"`
	}
	if err := bindAndValidate(c, h.validate, &req); err != nil {
		return badRequest(c, "title and at least one copy are required")
	}

	book := model.Book{
		Title:   req.Title,
		Author:  req.Author,
		Copies:  req.Copies,
		JamiaID: p.JamiaID,
	}
	if err := h.library.CreateBook(c.Request().Context(), &book); err != nil {
		return serverError(c, log, "Failed to create book", err)
	}

	log.Info("Book added", zap.Uint("id", book.ID), zap.String("title", book.Title))
	return c.JSON(http.StatusCreated, book)
}

// UpdateBook edits a title or its copy count.
func (h *LibraryHandler) UpdateBook(c echo.Context) error {
	log := logger.FromEcho(c)
	p := middleware.PrincipalFromEcho(c)

	id, err := parseUintParam(c, "id")
	if err != nil {
		return badRequest(c, "invalid book id")
	}

	book, err := h.library.BookByID(c.Request().Context(), id)
	if err != nil {
		return serverError(c, log, "Failed to load book", err)
	}
	if book == nil {
		return notFound(c)
	}

	d, err := h.guard.Authorize(c.Request().Context(), p, authz.ModuleLibrary, book)
	if err != nil {
		return serverError(c, log, "Authorization lookup failed", err)
	}
	if !d.Allowed {
		return denied(c, log, d, true)
	}
	if !hasRole(p, authz.RoleAdmin, authz.RoleMudeer, authz.RoleNazim, authz.RoleStaff) {
		return forbiddenRole(c)
	}

	var req struct {
		Title  *string `json:"title"`
		Author *string `json:"author"`
		Copies *int    `json:"copies"`
	}
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request")
	}
	if req.Title != nil {
		book.Title = *req.Title
	}
	if req.Author != nil {
		book.Author = *req.Author
	}
	if req.Copies != nil {
		if *req.Copies < book.Issued {
			return badRequest(c, "copies cannot be fewer than currently issued")
		}
		book.Copies = *req.Copies
	}

	if err := h.library.UpdateBook(c.Request().Context(), book); err != nil {
		return serverError(c, log, "Failed to update book", err)
	}

	log.Info("Book updated", zap.Uint("id", book.ID))
	return c.JSON(http.StatusOK, book)
}

// DeleteBook removes a title. Outstanding issues block deletion.
func (h *LibraryHandler) DeleteBook(c echo.Context) error {
	log := logger.FromEcho(c)
	p := middleware.PrincipalFromEcho(c)

	id, err := parseUintParam(c, "id")
	if err != nil {
		return badRequest(c, "invalid book id")
	}

	book, err := h.library.BookByID(c.Request().Context(), id)
	if err != nil {
		return serverError(c, log, "Failed to load book", err)
	}
	if book == nil {
		return notFound(c)
	}

	d, err := h.guard.Authorize(c.Request().Context(), p, authz.ModuleLibrary, book)
	if err != nil {
		return serverError(c, log, "Authorization lookup failed", err)
	}
	if !d.Allowed {
		return denied(c, log, d, true)
	}
	if !hasRole(p, authz.RoleAdmin, authz.RoleMudeer, authz.RoleNazim, authz.RoleStaff) {
		return forbiddenRole(c)
	}

	if book.Issued > 0 {
		return c.JSON(http.StatusConflict, echo.Map{"error": "book has outstanding issues"})
	}

	if err := h.library.DeleteBook(c.Request().Context(), book.ID); err != nil {
		return serverError(c, log, "Failed to delete book", err)
	}

	log.Info("Book deleted", zap.Uint("id", book.ID))
	return c.JSON(http.StatusOK, echo.Map{"message": "book deleted"})
}

// ListBooks returns the jamia's catalogue.
func (h *LibraryHandler) ListBooks(c echo.Context) error {
	log := logger.FromEcho(c)
	p := middleware.PrincipalFromEcho(c)

	d, err := h.guard.Authorize(c.Request().Context(), p, authz.ModuleLibrary, nil)
	if err != nil {
		return serverError(c, log, "Authorization lookup failed", err)
	}
	if !d.Allowed {
		return denied(c, log, d, false)
	}

	scope, err := h.guard.ScopeFor(c.Request().Context(), p)
	if err != nil {
		return serverError(c, log, "Failed to compute scope", err)
	}

	books, err := h.library.ListBooks(c.Request().Context(), scope)
	if err != nil {
		return serverError(c, log, "Failed to list books", err)
	}
	return c.JSON(http.StatusOK, books)
}

// IssueBook lends a copy to a student.
func (h *LibraryHandler) IssueBook(c echo.Context) error {
	log := logger.FromEcho(c)
	p := middleware.PrincipalFromEcho(c)

	d, err := h.guard.Authorize(c.Request().Context(), p, authz.ModuleLibrary, nil)
	if err != nil {
		return serverError(c, log, "Authorization lookup failed", err)
	}
	if !d.Allowed {
		return denied(c, log, d, false)
	}
	if !hasRole(p, authz.RoleAdmin, authz.RoleMudeer, authz.RoleNazim, authz.RoleStaff) {
		return forbiddenRole(c)
	}

	var req struct {
		BookID    uint `json:"book_id" validate:"required"`
		StudentID uint `json:"student_id" validate:"required"`
		Days      int  `json:"days" validate:"gte=1"`
	}
	if err := bindAndValidate(c, h.validate, &req); err != nil {
		return badRequest(c, "book_id, student_id and days are required")
	}

	book, err := h.library.BookByID(c.Request().Context(), req.BookID)
	if err != nil {
		return serverError(c, log, "Failed to load book", err)
	}
	if book == nil {
		return notFound(c)
	}
	bd, err := h.guard.Authorize(c.Request().Context(), p, authz.ModuleNone, book)
	if err != nil {
		return serverError(c, log, "Authorization lookup failed", err)
	}
	if !bd.Allowed {
		return denied(c, log, bd, true)
	}

	student, err := h.students.ByID(c.Request().Context(), req.StudentID)
	if err != nil {
		return serverError(c, log, "Failed to load student", err)
	}
	if student == nil {
		return notFound(c)
	}
	sd, err := h.guard.Authorize(c.Request().Context(), p, authz.ModuleNone, student)
	if err != nil {
		return serverError(c, log, "Authorization lookup failed", err)
	}
	if !sd.Allowed {
		return denied(c, log, sd, true)
	}

	if book.Issued >= book.Copies {
		return c.JSON(http.StatusConflict, echo.Map{"error": "no copies available"})
	}

	now := time.Now()
	issue := model.BookIssue{
		BookID:    book.ID,
		StudentID: student.ID,
		IssuedAt:  now,
		DueAt:     now.AddDate(0, 0, req.Days),
		JamiaID:   book.JamiaID,
	}
	if err := h.library.CreateIssue(c.Request().Context(), &issue); err != nil {
		return serverError(c, log, "Failed to create issue", err)
	}

	book.Issued++
	if err := h.library.UpdateBook(c.Request().Context(), book); err != nil {
		return serverError(c, log, "Failed to update book", err)
	}

	log.Info("Book issued",
		zap.Uint("book_id", book.ID),
		zap.Uint("student_id", student.ID))
	return c.JSON(http.StatusCreated, issue)
}

// ReturnBook closes an issue.
func (h *LibraryHandler) ReturnBook(c echo.Context) error {
	log := logger.FromEcho(c)
	p := middleware.PrincipalFromEcho(c)

	id, err := parseUintParam(c, "id")
	if err != nil {
		return badRequest(c, "invalid issue id")
	}

	issue, err := h.library.IssueByID(c.Request().Context(), id)
	if err != nil {
		return serverError(c, log, "Failed to load issue", err)
	}
	if issue == nil {
		return notFound(c)
	}

	d, err := h.guard.Authorize(c.Request().Context(), p, authz.ModuleLibrary, issue)
	if err != nil {
		return serverError(c, log, "Authorization lookup failed", err)
	}
	if !d.Allowed {
		return denied(c, log, d, true)
	}
	if !hasRole(p, authz.RoleAdmin, authz.RoleMudeer, authz.RoleNazim, authz.RoleStaff) {
		return forbiddenRole(c)
	}

	if issue.ReturnedAt != nil {
		return c.JSON(http.StatusConflict, echo.Map{"error": "already returned"})
	}

	now := time.Now()
	issue.ReturnedAt = &now
	if err := h.library.UpdateIssue(c.Request().Context(), issue); err != nil {
		return serverError(c, log, "Failed to update issue", err)
	}

	book, err := h.library.BookByID(c.Request().Context(), issue.BookID)
	if err != nil {
		return serverError(c, log, "Failed to load book", err)
	}
	if book != nil && book.Issued > 0 {
		book.Issued--
		if err := h.library.UpdateBook(c.Request().Context(), book); err != nil {
			return serverError(c, log, "Failed to update book", err)
		}
	}

	log.Info("Book returned", zap.Uint("issue_id", issue.ID))
	return c.JSON(http.StatusOK, issue)
}

// ListIssues returns issues; pass open=true for outstanding ones only.
func (h *LibraryHandler) ListIssues(c echo.Context) error {
	log := logger.FromEcho(c)
	p := middleware.PrincipalFromEcho(c)

	d, err := h.guard.Authorize(c.Request().Context(), p, authz.ModuleLibrary, nil)
	if err != nil {
		return serverError(c, log, "Authorization lookup failed", err)
	}
	if !d.Allowed {
		return denied(c, log, d, false)
	}

	scope, err := h.guard.ScopeFor(c.Request().Context(), p)
	if err != nil {
		return serverError(c, log, "Failed to compute scope", err)
	}

	issues, err := h.library.ListIssues(c.Request().Context(), scope, c.QueryParam("open") == "true")
	if err != nil {
		return serverError(c, log, "Failed to list issues", err)
	}
	return c.JSON(http.StatusOK, issues)
}
