package handler

import (
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/Mahanoorfarooq/Madrassa-Management-System-sub002/internal/authz"
	"github.com/Mahanoorfarooq/Madrassa-Management-System-sub002/internal/middleware"
	"github.com/Mahanoorfarooq/Madrassa-Management-System-sub002/internal/model"
	"github.com/Mahanoorfarooq/Madrassa-Management-System-sub002/internal/store"
	"github.com/Mahanoorfarooq/Madrassa-Management-System-sub002/pkg/logger"
)

// ExamHandler serves exam results.
type ExamHandler struct {
	exams    store.ExamStore
	students store.StudentStore
	guard    *authz.Authorizer
	validate *validator.Validate
}

// NewExamHandler creates the exam handler.
func NewExamHandler(exams store.ExamStore, students store.StudentStore, guard *authz.Authorizer, validate *validator.Validate) *ExamHandler {
	return &ExamHandler{exams: exams, students: students, guard: guard, validate: validate}
}

// RecordResult stores one student's marks for a subject.
func (h *ExamHandler) RecordResult(c echo.Context) error {
	log := logger.FromEcho(c)
	p := middleware.PrincipalFromEcho(c)

	d, err := h.guard.Authorize(c.Request().Context(), p, authz.ModuleExams, nil)
	if err != nil {
		return serverError(c, log, "Authorization lookup failed", err)
	}
	if !d.Allowed {
		return denied(c, log, d, false)
	}
	if !hasRole(p, authz.RoleAdmin, authz.RoleMudeer, authz.RoleNazim, authz.RoleTeacher) {
		return forbiddenRole(c)
	}

	var req struct {
		ExamName  string  `json:"exam_name" validate:"required"`
		Subject   string  `json:"subject" validate:"required"`
		StudentID uint    `json:"student_id" validate:"required"`
		Marks     float64 `json:"marks" validate:"gte=0"`
		MaxMarks  float64 `json:"max_marks" validate:"gt=0"`
	}
	if err := bindAndValidate(c, h.validate, &req); err != nil {
		return badRequest(c, "exam_name, subject, student_id and marks are required")
	}
	if req.Marks > req.MaxMarks {
		return badRequest(c, "marks cannot exceed max_marks")
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

	result := model.ExamResult{
		ExamName:  req.ExamName,
		Subject:   req.Subject,
		StudentID: student.ID,
		Marks:     req.Marks,
		MaxMarks:  req.MaxMarks,
		JamiaID:   student.JamiaID,
	}
	if err := h.exams.Create(c.Request().Context(), &result); err != nil {
		return serverError(c, log, "Failed to record result", err)
	}

	log.Info("Exam result recorded",
		zap.String("exam", result.ExamName),
		zap.Uint("student_id", result.StudentID))
	return c.JSON(http.StatusCreated, result)
}

// ListResults returns results filtered by exam and/or student.
func (h *ExamHandler) ListResults(c echo.Context) error {
	log := logger.FromEcho(c)
	p := middleware.PrincipalFromEcho(c)

	d, err := h.guard.Authorize(c.Request().Context(), p, authz.ModuleExams, nil)
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

	var studentID uint
	if raw := c.QueryParam("student_id"); raw != "" {
		v, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			return badRequest(c, "invalid student_id")
		}
		studentID = uint(v)
	}
	// Students only ever see their own results.
	if p.Role == authz.RoleStudent {
		if p.LinkedID == nil {
			return forbiddenRole(c)
		}
		studentID = *p.LinkedID
	}

	results, err := h.exams.List(c.Request().Context(), scope, c.QueryParam("exam"), studentID)
	if err != nil {
		return serverError(c, log, "Failed to list results", err)
	}
	return c.JSON(http.StatusOK, results)
}
