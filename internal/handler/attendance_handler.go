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
	"github.com/Mahanoorfarooq/Madrassa-Management-System-sub002/prometheus"
)

const dateLayout = "2006-01-02"

// AttendanceHandler serves daily attendance.
type AttendanceHandler struct {
	attendance store.AttendanceStore
	students   store.StudentStore
	guard      *authz.Authorizer
	validate   *validator.Validate
	// editWindow is how long after the attendance date records stay
	// editable; past it, marking is locked for everyone but super admins.
	editWindow time.Duration
	now        func() time.Time
}

// NewAttendanceHandler creates the attendance handler.
func NewAttendanceHandler(attendance store.AttendanceStore, students store.StudentStore, guard *authz.Authorizer, validate *validator.Validate, editWindow time.Duration) *AttendanceHandler {
	return &AttendanceHandler{
		attendance: attendance,
		students:   students,
		guard:      guard,
		validate:   validate,
		editWindow: editWindow,
		now:        time.Now,
	}
}

// MarkRequest is the bulk marking payload: one day, many students.
type MarkRequest struct {
	Date    string `json:"date" validate:"required"`
	Entries []struct {
		StudentID uint   `json:"student_id" validate:"required"`
		Status    string `json:"status" validate:"required"`
	} `json:"entries" validate:"required,min=1"`
}

// windowClosed reports whether the edit window for a date has passed. The
// window runs from the end of the attendance day.
func (h *AttendanceHandler) windowClosed(date time.Time) bool {
	dayEnd := date.Add(24 * time.Hour)
	return h.now().After(dayEnd.Add(h.editWindow))
}

// Mark writes attendance for one day. Re-marking a student on the same day
// updates the record while the edit window is open; afterwards the day is
// locked.
func (h *AttendanceHandler) Mark(c echo.Context) error {
	log := logger.FromEcho(c)
	p := middleware.PrincipalFromEcho(c)

	d, err := h.guard.Authorize(c.Request().Context(), p, authz.ModuleAttendance, nil)
	if err != nil {
		return serverError(c, log, "Authorization lookup failed", err)
	}
	if !d.Allowed {
		return denied(c, log, d, false)
	}
	if !hasRole(p, authz.RoleTeacher, authz.RoleAdmin, authz.RoleMudeer, authz.RoleNazim) {
		return forbiddenRole(c)
	}

	var req MarkRequest
	if err := bindAndValidate(c, h.validate, &req); err != nil {
		return badRequest(c, "date and at least one entry are required")
	}

	date, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		return badRequest(c, "date must be YYYY-MM-DD")
	}
	if date.After(h.now()) {
		return badRequest(c, "cannot mark attendance for a future date")
	}
	if h.windowClosed(date) && !p.IsSuperAdmin() {
		log.Warn("Attendance edit window closed",
			zap.String("date", req.Date),
			zap.Uint("user_id", p.UserID))
		return c.JSON(http.StatusConflict, echo.Map{"error": "attendance for this date is locked"})
	}

	for _, e := range req.Entries {
		if !model.ValidAttendanceStatus(e.Status) {
			return badRequest(c, "status must be present, absent, late or leave")
		}
	}

	// Resolve and authorize every entry before writing anything, so a bad
	// student or a denial mid-batch cannot leave the day half-marked.
	students := make([]*model.Student, 0, len(req.Entries))
	for _, e := range req.Entries {
		student, err := h.students.ByID(c.Request().Context(), e.StudentID)
		if err != nil {
			return serverError(c, log, "Failed to load student", err)
		}
		if student == nil {
			return badRequest(c, "unknown student in entries")
		}
		sd, err := h.guard.Authorize(c.Request().Context(), p, authz.ModuleNone, student)
		if err != nil {
			return serverError(c, log, "Authorization lookup failed", err)
		}
		if !sd.Allowed {
			return denied(c, log, sd, false)
		}
		students = append(students, student)
	}

	defer prometheus.TrackDBOperation("upsert")(time.Now())
	marked := 0
	for i, e := range req.Entries {
		// Records are keyed by the student's jamia, not the marker's, so a
		// super admin re-marking a day hits the jamia's existing row instead
		// of writing an unscoped duplicate.
		jamiaID := students[i].JamiaRef()

		existing, err := h.attendance.ByStudentDate(c.Request().Context(), jamiaID, e.StudentID, date)
		if err != nil {
			return serverError(c, log, "Failed to look up attendance", err)
		}
		if existing != nil {
			existing.Status = e.Status
			existing.MarkedBy = p.UserID
			if err := h.attendance.Update(c.Request().Context(), existing); err != nil {
				return serverError(c, log, "Failed to update attendance", err)
			}
		} else {
			record := model.AttendanceRecord{
				StudentID: e.StudentID,
				Date:      date,
				Status:    e.Status,
				MarkedBy:  p.UserID,
				JamiaID:   jamiaID,
			}
			if err := h.attendance.Create(c.Request().Context(), &record); err != nil {
				return serverError(c, log, "Failed to create attendance", err)
			}
		}
		marked++
		prometheus.AttendanceMarkedCounter.Inc()
	}

	log.Info("Attendance marked",
		zap.String("date", req.Date),
		zap.Int("count", marked),
		zap.Uint("marked_by", p.UserID))
	return c.JSON(http.StatusOK, echo.Map{"marked": marked, "date": req.Date})
}

// ListByDate returns the jamia's attendance for one day.
func (h *AttendanceHandler) ListByDate(c echo.Context) error {
	log := logger.FromEcho(c)
	p := middleware.PrincipalFromEcho(c)

	d, err := h.guard.Authorize(c.Request().Context(), p, authz.ModuleAttendance, nil)
	if err != nil {
		return serverError(c, log, "Authorization lookup failed", err)
	}
	if !d.Allowed {
		return denied(c, log, d, false)
	}

	date, err := time.Parse(dateLayout, c.QueryParam("date"))
	if err != nil {
		return badRequest(c, "date must be YYYY-MM-DD")
	}

	scope, err := h.guard.ScopeFor(c.Request().Context(), p)
	if err != nil {
		return serverError(c, log, "Failed to compute scope", err)
	}

	records, err := h.attendance.ListByDate(c.Request().Context(), scope, date)
	if err != nil {
		return serverError(c, log, "Failed to list attendance", err)
	}
	return c.JSON(http.StatusOK, records)
}

// ListByStudent returns one student's attendance history. Students can
// read their own record through their linked id.
func (h *AttendanceHandler) ListByStudent(c echo.Context) error {
	log := logger.FromEcho(c)
	p := middleware.PrincipalFromEcho(c)

	d, err := h.guard.Authorize(c.Request().Context(), p, authz.ModuleAttendance, nil)
	if err != nil {
		return serverError(c, log, "Authorization lookup failed", err)
	}
	if !d.Allowed {
		return denied(c, log, d, false)
	}

	var studentID uint
	if p.Role == authz.RoleStudent {
		if p.LinkedID == nil {
			return forbiddenRole(c)
		}
		studentID = *p.LinkedID
	} else {
		id, err := parseUintParam(c, "student_id")
		if err != nil {
			return badRequest(c, "invalid student id")
		}
		studentID = id
	}

	scope, err := h.guard.ScopeFor(c.Request().Context(), p)
	if err != nil {
		return serverError(c, log, "Failed to compute scope", err)
	}

	records, err := h.attendance.ListByStudent(c.Request().Context(), scope, studentID)
	if err != nil {
		return serverError(c, log, "Failed to list attendance", err)
	}
	return c.JSON(http.StatusOK, records)
}
