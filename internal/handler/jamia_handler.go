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

// JamiaHandler serves jamia administration for super-tenant operators.
// Every route here requires the super_admin role; regular admins manage
// their institution's data, not the institution itself.
type JamiaHandler struct {
	jamias   store.JamiaStore
	validate *validator.Validate
}

// NewJamiaHandler creates the jamia handler.
func NewJamiaHandler(jamias store.JamiaStore, validate *validator.Validate) *JamiaHandler {
	return &JamiaHandler{jamias: jamias, validate: validate}
}

func (h *JamiaHandler) requireSuperAdmin(c echo.Context) (*authz.Principal, error) {
	p := middleware.PrincipalFromEcho(c)
	if p == nil {
		return nil, c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}
	if !p.IsSuperAdmin() {
		prometheus.RecordDenial(string(authz.ReasonCrossTenant))
		return nil, forbiddenRole(c)
	}
	return p, nil
}

// Create registers a new jamia with all modules enabled.
func (h *JamiaHandler) Create(c echo.Context) error {
	log := logger.FromEcho(c)
	if _, err := h.requireSuperAdmin(c); err != nil {
		return err
	}
	prometheus.RecordJamiaOperation("create")

	var req struct {
		Name         string `json:"name" validate:"required"`
		Slug         string `json:"slug" validate:"required"`
		Currency     string `json:"currency"`
		AcademicYear string `json:"academic_year"`
	}
	if err := bindAndValidate(c, h.validate, &req); err != nil {
		return badRequest(c, "name and slug are required")
	}

	existing, err := h.jamias.BySlug(c.Request().Context(), req.Slug)
	if err != nil {
		return serverError(c, log, "Failed to check jamia slug", err)
	}
	if existing != nil {
		return c.JSON(http.StatusConflict, echo.Map{"error": "slug already in use"})
	}

	modules := model.ModuleFlags{}
	for _, m := range authz.Modules() {
		modules[string(m)] = true
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	jamia := model.Jamia{
		Name:    req.Name,
		Slug:    req.Slug,
		Active:  true,
		Modules: modules,
		Settings: model.JamiaSettings{
			Currency:     req.Currency,
			AcademicYear: req.AcademicYear,
		},
	}
	if err := h.jamias.Create(c.Request().Context(), &jamia); err != nil {
		return serverError(c, log, "Failed to create jamia", err)
	}

	log.Info("Jamia created", zap.Uint("id", jamia.ID), zap.String("slug", jamia.Slug))
	return c.JSON(http.StatusCreated, jamia)
}

// List returns every jamia.
func (h *JamiaHandler) List(c echo.Context) error {
	log := logger.FromEcho(c)
	if _, err := h.requireSuperAdmin(c); err != nil {
		return err
	}

	jamias, err := h.jamias.List(c.Request().Context())
	if err != nil {
		return serverError(c, log, "Failed to list jamias", err)
	}
	return c.JSON(http.StatusOK, jamias)
}

// Get returns one jamia.
func (h *JamiaHandler) Get(c echo.Context) error {
	log := logger.FromEcho(c)
	if _, err := h.requireSuperAdmin(c); err != nil {
		return err
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return badRequest(c, "invalid jamia id")
	}

	jamia, err := h.jamias.JamiaByID(c.Request().Context(), uint(id))
	if err != nil {
		return serverError(c, log, "Failed to load jamia", err)
	}
	if jamia == nil {
		return notFound(c)
	}
	return c.JSON(http.StatusOK, jamia)
}

// Update edits name and settings, and can flip the active flag.
func (h *JamiaHandler) Update(c echo.Context) error {
	log := logger.FromEcho(c)
	if _, err := h.requireSuperAdmin(c); err != nil {
		return err
	}
	prometheus.RecordJamiaOperation("update")

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return badRequest(c, "invalid jamia id")
	}

	jamia, err := h.jamias.JamiaByID(c.Request().Context(), uint(id))
	if err != nil {
		return serverError(c, log, "Failed to load jamia", err)
	}
	if jamia == nil {
		return notFound(c)
	}

	var req struct {
		Name         *string `json:"name"`
		Active       *bool   `json:"active"`
		Currency     *string `json:"currency"`
		AcademicYear *string `json:"academic_year"`
	}
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request")
	}

	if req.Name != nil {
		jamia.Name = *req.Name
	}
	if req.Active != nil {
		jamia.Active = *req.Active
	}
	if req.Currency != nil {
		jamia.Settings.Currency = *req.Currency
	}
	if req.AcademicYear != nil {
		jamia.Settings.AcademicYear = *req.AcademicYear
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	if err := h.jamias.Update(c.Request().Context(), jamia); err != nil {
		return serverError(c, log, "Failed to update jamia", err)
	}

	log.Info("Jamia updated", zap.Uint("id", jamia.ID))
	return c.JSON(http.StatusOK, jamia)
}

// ToggleModule enables or disables one module for a jamia. The whole
// modules map is written in a single update, so a toggle is atomic and
// takes effect on the next request through the guard.
func (h *JamiaHandler) ToggleModule(c echo.Context) error {
	log := logger.FromEcho(c)
	if _, err := h.requireSuperAdmin(c); err != nil {
		return err
	}
	prometheus.RecordJamiaOperation("toggle_module")

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return badRequest(c, "invalid jamia id")
	}

	var req struct {
		Module  string `json:"module" validate:"required"`
		Enabled bool   `json:"enabled"`
	}
	if err := bindAndValidate(c, h.validate, &req); err != nil {
		return badRequest(c, "module is required")
	}

	module, err := authz.ParseModule(req.Module)
	if err != nil {
		// Unknown module names never reach the guard from here.
		return badRequest(c, "unknown module name")
	}

	jamia, err := h.jamias.JamiaByID(c.Request().Context(), uint(id))
	if err != nil {
		return serverError(c, log, "Failed to load jamia", err)
	}
	if jamia == nil {
		return notFound(c)
	}

	if jamia.Modules == nil {
		jamia.Modules = model.ModuleFlags{}
	}
	jamia.Modules[string(module)] = req.Enabled

	defer prometheus.TrackDBOperation("update")(time.Now())
	if err := h.jamias.Update(c.Request().Context(), jamia); err != nil {
		return serverError(c, log, "Failed to update jamia modules", err)
	}

	log.Info("Jamia module toggled",
		zap.Uint("jamia_id", jamia.ID),
		zap.String("module", string(module)),
		zap.Bool("enabled", req.Enabled))
	return c.JSON(http.StatusOK, jamia)
}

// Delete soft-deletes a jamia. The record stays in the table; the guard
// treats the jamia and all its data as inaccessible from the next request.
func (h *JamiaHandler) Delete(c echo.Context) error {
	log := logger.FromEcho(c)
	if _, err := h.requireSuperAdmin(c); err != nil {
		return err
	}
	prometheus.RecordJamiaOperation("delete")

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return badRequest(c, "invalid jamia id")
	}

	jamia, err := h.jamias.JamiaByID(c.Request().Context(), uint(id))
	if err != nil {
		return serverError(c, log, "Failed to load jamia", err)
	}
	if jamia == nil {
		return notFound(c)
	}

	defer prometheus.TrackDBOperation("delete")(time.Now())
	if err := h.jamias.SoftDelete(c.Request().Context(), uint(id)); err != nil {
		return serverError(c, log, "Failed to delete jamia", err)
	}

	log.Info("Jamia deleted", zap.Uint("id", uint(id)))
	return c.JSON(http.StatusOK, echo.Map{"message": "jamia deleted"})
}
