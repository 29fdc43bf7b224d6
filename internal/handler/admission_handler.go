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

// AdmissionHandler serves admission applications.
type AdmissionHandler struct {
	admissions store.AdmissionStore
	students   store.StudentStore
	guard      *authz.Authorizer
	validate   *validator.Validate
}

// NewAdmissionHandler creates the admission handler.
func NewAdmissionHandler(admissions store.AdmissionStore, students store.StudentStore, guard *authz.Authorizer, validate *validator.Validate) *AdmissionHandler {
	return &AdmissionHandler{admissions: admissions, students: students, guard: guard, validate: validate}
}

// Create files a new application.
func (h *AdmissionHandler) Create(c echo.Context) error {
	log := logger.FromEcho(c)
	p := middleware.PrincipalFromEcho(c)

	d, err := h.guard.Authorize(c.Request().Context(), p, authz.ModuleAdmissions, nil)
	if err != nil {
		return serverError(c, log, "Authorization lookup failed", err)
	}
	if !d.Allowed {
		return denied(c, log, d, false)
	}

	var req struct {
		ApplicantName string `json:"applicant_name" validate:"required"`
		FatherName    string `json:"father_name"`
		Phone         string `json:"phone"`
		ClassName     string `json:"class_name"`
		Notes         string `json:"notes"`
	}
	if err := bindAndValidate(c, h.validate, &req); err != nil {
		return badRequest(c, "applicant_name is required")
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	admission := model.Admission{
		ApplicantName: req.ApplicantName,
		FatherName:    req.FatherName,
		Phone:         req.Phone,
		ClassName:     req.ClassName,
		Notes:         req.Notes,
		Status:        model.AdmissionPending,
		JamiaID:       p.JamiaID,
	}
	if err := h.admissions.Create(c.Request().Context(), &admission); err != nil {
		return serverError(c, log, "Failed to create admission", err)
	}

	log.Info("Admission filed", zap.Uint("id", admission.ID))
	return c.JSON(http.StatusCreated, admission)
}

// List returns applications, optionally by status.
func (h *AdmissionHandler) List(c echo.Context) error {
	log := logger.FromEcho(c)
	p := middleware.PrincipalFromEcho(c)

	d, err := h.guard.Authorize(c.Request().Context(), p, authz.ModuleAdmissions, nil)
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

	admissions, err := h.admissions.List(c.Request().Context(), scope, c.QueryParam("status"))
	if err != nil {
		return serverError(c, log, "Failed to list admissions", err)
	}
	return c.JSON(http.StatusOK, admissions)
}

// Decide approves or rejects a pending application. Approval creates the
// student record in the same jamia.
func (h *AdmissionHandler) Decide(c echo.Context) error {
	log := logger.FromEcho(c)
	p := middleware.PrincipalFromEcho(c)

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return badRequest(c, "invalid admission id")
	}

	admission, err := h.admissions.ByID(c.Request().Context(), uint(id))
	if err != nil {
		return serverError(c, log, "Failed to load admission", err)
	}
	if admission == nil {
		return notFound(c)
	}

	d, err := h.guard.Authorize(c.Request().Context(), p, authz.ModuleAdmissions, admission)
	if err != nil {
		return serverError(c, log, "Authorization lookup failed", err)
	}
	if !d.Allowed {
		return denied(c, log, d, false)
	}
	if !hasRole(p, managementRoles...) {
		return forbiddenRole(c)
	}

	if admission.Status != model.AdmissionPending {
		return c.JSON(http.StatusConflict, echo.Map{"error": "application already decided"})
	}

	var req struct {
		Approve     bool   `json:"approve"`
		AdmissionNo string `json:"admission_no"`
		Notes       string `json:"notes"`
	}
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request")
	}

	if !req.Approve {
		admission.Status = model.AdmissionRejected
		admission.Notes = req.Notes
		if err := h.admissions.Update(c.Request().Context(), admission); err != nil {
			return serverError(c, log, "Failed to update admission", err)
		}
		log.Info("Admission rejected", zap.Uint("id", admission.ID))
		return c.JSON(http.StatusOK, admission)
	}

	if req.AdmissionNo == "" {
		return badRequest(c, "admission_no is required for approval")
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	student := model.Student{
		AdmissionNo: req.AdmissionNo,
		Name:        admission.ApplicantName,
		FatherName:  admission.FatherName,
		Phone:       admission.Phone,
		ClassName:   admission.ClassName,
		Status:      model.StudentActive,
		JamiaID:     admission.JamiaID,
	}
	if err := h.students.Create(c.Request().Context(), &student); err != nil {
		return serverError(c, log, "Failed to create student from admission", err)
	}

	admission.Status = model.AdmissionApproved
	admission.StudentID = &student.ID
	admission.Notes = req.Notes
	if err := h.admissions.Update(c.Request().Context(), admission); err != nil {
		return serverError(c, log, "Failed to update admission", err)
	}

	log.Info("Admission approved",
		zap.Uint("id", admission.ID),
		zap.Uint("student_id", student.ID))
	return c.JSON(http.StatusOK, echo.Map{
		"admission": admission,
		"student":   student,
	})
}
