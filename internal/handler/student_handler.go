package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/Mahanoorfarooq/Madrassa-Management-System-sub002/internal/authz"
	"github.com/Mahanoorfarooq/Madrassa-Management-System-sub002/internal/middleware"
	"github.com/Mahanoorfarooq/Madrassa-Management-System-sub002/internal/model"
	"github.com/Mahanoorfarooq/Madrassa-Management-System-sub002/internal/store"
	"github.com/Mahanoorfarooq/Madrassa-Management-System-sub002/pkg/logger"
	"github.com/Mahanoorfarooq/Madrassa-Management-System-sub002/prometheus"
)

// StudentHandler serves student records.
type StudentHandler struct {
	students store.StudentStore
	guard    *authz.Authorizer
	validate *validator.Validate
}

// NewStudentHandler creates the student handler.
func NewStudentHandler(students store.StudentStore, guard *authz.Authorizer, validate *validator.Validate) *StudentHandler {
	return &StudentHandler{students: students, guard: guard, validate: validate}
}

// StudentRequest is the create/update payload.
type StudentRequest struct {
	AdmissionNo  string `json:"admission_no" validate:"required"`
	Name         string `json:"name" validate:"required"`
	FatherName   string `json:"father_name"`
	GuardianName string `json:"guardian_name"`
	Phone        string `json:"phone"`
	Address      string `json:"address"`
	ClassName    string `json:"class_name"`
	Status       string `json:"status"`
}

// Create registers a student in the principal's jamia. The jamia reference
// is set here and never changes afterwards. Enrolling a student rides on the
// admissions module; reading and maintaining existing rosters does not, so
// the other CRUD operations stay ungated.
func (h *StudentHandler) Create(c echo.Context) error {
	log := logger.FromEcho(c)
	p := middleware.PrincipalFromEcho(c)

	d, err := h.guard.Authorize(c.Request().Context(), p, authz.ModuleAdmissions, nil)
	if err != nil {
		return serverError(c, log, "Authorization lookup failed", err)
	}
	if !d.Allowed {
		return denied(c, log, d, false)
	}
	if !hasRole(p, managementRoles...) {
		return forbiddenRole(c)
	}

	var req StudentRequest
	if err := bindAndValidate(c, h.validate, &req); err != nil {
		return badRequest(c, "admission_no and name are required")
	}

	status := req.Status
	if status == "" {
		status = model.StudentActive
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	student := model.Student{
		AdmissionNo:  req.AdmissionNo,
		Name:         req.Name,
		FatherName:   req.FatherName,
		GuardianName: req.GuardianName,
		Phone:        req.Phone,
		Address:      req.Address,
		ClassName:    req.ClassName,
		Status:       status,
		JamiaID:      p.JamiaID,
	}
	if err := h.students.Create(c.Request().Context(), &student); err != nil {
		return serverError(c, log, "Failed to create student", err)
	}

	log.Info("Student created",
		zap.Uint("id", student.ID),
		zap.String("admission_no", student.AdmissionNo))
	return c.JSON(http.StatusCreated, student)
}

// Get returns one student. Cross-tenant probes get the same 404 as a
// nonexistent id.
func (h *StudentHandler) Get(c echo.Context) error {
	log := logger.FromEcho(c)
	p := middleware.PrincipalFromEcho(c)

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return badRequest(c, "invalid student id")
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	student, err := h.students.ByID(c.Request().Context(), uint(id))
	if err != nil {
		return serverError(c, log, "Failed to load student", err)
	}
	if student == nil {
		return notFound(c)
	}

	d, err := h.guard.Authorize(c.Request().Context(), p, authz.ModuleNone, student)
	if err != nil {
		return serverError(c, log, "Authorization lookup failed", err)
	}
	if !d.Allowed {
		return denied(c, log, d, true)
	}

	return c.JSON(http.StatusOK, student)
}

// List returns the students in the principal's jamia, optionally filtered
// by class or status.
func (h *StudentHandler) List(c echo.Context) error {
	log := logger.FromEcho(c)
	p := middleware.PrincipalFromEcho(c)

	d, err := h.guard.Authorize(c.Request().Context(), p, authz.ModuleNone, nil)
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

	defer prometheus.TrackDBOperation("query")(time.Now())
	students, err := h.students.List(c.Request().Context(), scope, store.StudentFilter{
		ClassName: c.QueryParam("class_name"),
		Status:    c.QueryParam("status"),
	})
	if err != nil {
		return serverError(c, log, "Failed to list students", err)
	}
	return c.JSON(http.StatusOK, students)
}

// Update edits a student record. The jamia reference is immutable.
func (h *StudentHandler) Update(c echo.Context) error {
	log := logger.FromEcho(c)
	p := middleware.PrincipalFromEcho(c)

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return badRequest(c, "invalid student id")
	}

	student, err := h.students.ByID(c.Request().Context(), uint(id))
	if err != nil {
		return serverError(c, log, "Failed to load student", err)
	}
	if student == nil {
		return notFound(c)
	}

	d, err := h.guard.Authorize(c.Request().Context(), p, authz.ModuleNone, student)
	if err != nil {
		return serverError(c, log, "Authorization lookup failed", err)
	}
	if !d.Allowed {
		return denied(c, log, d, false)
	}
	if !hasRole(p, managementRoles...) {
		return forbiddenRole(c)
	}

	var req StudentRequest
	if err := bindAndValidate(c, h.validate, &req); err != nil {
		return badRequest(c, "admission_no and name are required")
	}

	student.AdmissionNo = req.AdmissionNo
	student.Name = req.Name
	student.FatherName = req.FatherName
	student.GuardianName = req.GuardianName
	student.Phone = req.Phone
	student.Address = req.Address
	student.ClassName = req.ClassName
	if req.Status != "" {
		student.Status = req.Status
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	if err := h.students.Update(c.Request().Context(), student); err != nil {
		return serverError(c, log, "Failed to update student", err)
	}

	log.Info("Student updated", zap.Uint("id", student.ID))
	return c.JSON(http.StatusOK, student)
}

// Delete soft-deletes a student record.
func (h *StudentHandler) Delete(c echo.Context) error {
	log := logger.FromEcho(c)
	p := middleware.PrincipalFromEcho(c)

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return badRequest(c, "invalid student id")
	}

	student, err := h.students.ByID(c.Request().Context(), uint(id))
	if err != nil {
		return serverError(c, log, "Failed to load student", err)
	}
	if student == nil {
		return notFound(c)
	}

	d, err := h.guard.Authorize(c.Request().Context(), p, authz.ModuleNone, student)
	if err != nil {
		return serverError(c, log, "Authorization lookup failed", err)
	}
	if !d.Allowed {
		return denied(c, log, d, false)
	}
	if !hasRole(p, managementRoles...) {
		return forbiddenRole(c)
	}

	defer prometheus.TrackDBOperation("delete")(time.Now())
	if err := h.students.Delete(c.Request().Context(), uint(id)); err != nil {
		return serverError(c, log, "Failed to delete student", err)
	}

	log.Info("Student deleted", zap.Uint("id", uint(id)))
	return c.JSON(http.StatusOK, echo.Map{"message": "student deleted"})
}
