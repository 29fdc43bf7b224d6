package handler

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/Mahanoorfarooq/Madrassa-Management-System-sub002/internal/authz"
	"github.com/Mahanoorfarooq/Madrassa-Management-System-sub002/internal/middleware"
	"github.com/Mahanoorfarooq/Madrassa-Management-System-sub002/internal/model"
	"github.com/Mahanoorfarooq/Madrassa-Management-System-sub002/internal/store"
	"github.com/Mahanoorfarooq/Madrassa-Management-System-sub002/pkg/logger"
)

// NoticeHandler serves notice board CRUD. The notice board is not behind a
// module flag; every jamia has one. Creation is limited to management roles.
type NoticeHandler struct {
	notices  store.NoticeStore
	guard    *authz.Authorizer
	validate *validator.Validate
}

// NewNoticeHandler creates the notice handler.
func NewNoticeHandler(notices store.NoticeStore, guard *authz.Authorizer, validate *validator.Validate) *NoticeHandler {
	return &NoticeHandler{notices: notices, guard: guard, validate: validate}
}

func validAudience(a string) bool {
	switch a {
	case "all", "teachers", "students", "staff":
		return true
	}
	return false
}

// audienceFor maps a portal role to the notice audience it may read.
func audienceFor(p *authz.Principal) string {
	switch p.Role {
	case authz.RoleTeacher:
		return "teachers"
	case authz.RoleStudent:
		return "students"
	case authz.RoleStaff:
		return "staff"
	}
	return ""
}

// Create posts a notice.
func (h *NoticeHandler) Create(c echo.Context) error {
	log := logger.FromEcho(c)
	p := middleware.PrincipalFromEcho(c)

	d, err := h.guard.Authorize(c.Request().Context(), p, authz.ModuleNone, nil)
	if err != nil {
		return serverError(c, log, "Authorization lookup failed", err)
	}
	if !d.Allowed {
		return denied(c, log, d, false)
	}
	if !hasRole(p, managementRoles...) {
		return forbiddenRole(c)
	}

	var req struct {
		Title     string `json:"title" validate:"required"`
		Body      string `json:"body"`
		Audience  string `json:"audience"`
		SendSMS   bool   `json:"send_sms"`
		SendEmail bool   `json:"send_email"`
	}
	if err := bindAndValidate(c, h.validate, &req); err != nil {
		return badRequest(c, "title is required")
	}
	if req.Audience == "" {
		req.Audience = "all"
	}
	if !validAudience(req.Audience) {
		return badRequest(c, "audience must be one of all, teachers, students, staff")
	}

	notice := model.Notice{
		Title:     req.Title,
		Body:      req.Body,
		Audience:  req.Audience,
		SendSMS:   req.SendSMS,
		SendEmail: req.SendEmail,
		PostedBy:  p.UserID,
		JamiaID:   p.JamiaID,
	}
	if err := h.notices.Create(c.Request().Context(), &notice); err != nil {
		return serverError(c, log, "Failed to create notice", err)
	}

	log.Info("Notice posted", zap.Uint("id", notice.ID), zap.String("audience", notice.Audience))
	return c.JSON(http.StatusCreated, notice)
}

// List returns notices visible to the caller's role.
func (h *NoticeHandler) List(c echo.Context) error {
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

	audience := audienceFor(p)
	if hasRole(p, managementRoles...) {
		// Management may filter explicitly or see everything.
		audience = c.QueryParam("audience")
		if audience != "" && !validAudience(audience) {
			return badRequest(c, "audience must be one of all, teachers, students, staff")
		}
	}

	notices, err := h.notices.List(c.Request().Context(), scope, audience)
	if err != nil {
		return serverError(c, log, "Failed to list notices", err)
	}
	return c.JSON(http.StatusOK, notices)
}

// Update edits a notice.
func (h *NoticeHandler) Update(c echo.Context) error {
	log := logger.FromEcho(c)
	p := middleware.PrincipalFromEcho(c)

	id, err := parseUintParam(c, "id")
	if err != nil {
		return badRequest(c, "invalid notice id")
	}

	notice, err := h.notices.ByID(c.Request().Context(), id)
	if err != nil {
		return serverError(c, log, "Failed to load notice", err)
	}
	if notice == nil {
		return notFound(c)
	}

	d, err := h.guard.Authorize(c.Request().Context(), p, authz.ModuleNone, notice)
	if err != nil {
		return serverError(c, log, "Authorization lookup failed", err)
	}
	if !d.Allowed {
		return denied(c, log, d, true)
	}
	if !hasRole(p, managementRoles...) {
		return forbiddenRole(c)
	}

	var req struct {
		Title    *string `json:"title"`
		Body     *string `json:"body"`
		Audience *string `json:"audience"`
	}
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if req.Title != nil {
		notice.Title = *req.Title
	}
	if req.Body != nil {
		notice.Body = *req.Body
	}
	if req.Audience != nil {
		if !validAudience(*req.Audience) {
			return badRequest(c, "audience must be one of all, teachers, students, staff")
		}
		notice.Audience = *req.Audience
	}

	if err := h.notices.Update(c.Request().Context(), notice); err != nil {
		return serverError(c, log, "Failed to update notice", err)
	}

	log.Info("Notice updated", zap.Uint("id", notice.ID))
	return c.JSON(http.StatusOK, notice)
}

// Delete removes a notice.
func (h *NoticeHandler) Delete(c echo.Context) error {
	log := logger.FromEcho(c)
	p := middleware.PrincipalFromEcho(c)

	id, err := parseUintParam(c, "id")
	if err != nil {
		return badRequest(c, "invalid notice id")
	}

	notice, err := h.notices.ByID(c.Request().Context(), id)
	if err != nil {
		return serverError(c, log, "Failed to load notice", err)
	}
	if notice == nil {
		return notFound(c)
	}

	d, err := h.guard.Authorize(c.Request().Context(), p, authz.ModuleNone, notice)
	if err != nil {
		return serverError(c, log, "Authorization lookup failed", err)
	}
	if !d.Allowed {
		return denied(c, log, d, true)
	}
	if !hasRole(p, managementRoles...) {
		return forbiddenRole(c)
	}

	if err := h.notices.Delete(c.Request().Context(), notice.ID); err != nil {
		return serverError(c, log, "Failed to delete notice", err)
	}

	log.Info("Notice deleted", zap.Uint("id", notice.ID))
	return c.NoContent(http.StatusNoContent)
}
