package handler

import (
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/Mahanoorfarooq/Madrassa-Management-System-sub002/internal/authz"
	"github.com/Mahanoorfarooq/Madrassa-Management-System-sub002/internal/middleware"
	"github.com/Mahanoorfarooq/Madrassa-Management-System-sub002/internal/model"
	"github.com/Mahanoorfarooq/Madrassa-Management-System-sub002/internal/store"
	"github.com/Mahanoorfarooq/Madrassa-Management-System-sub002/pkg/logger"
	"github.com/Mahanoorfarooq/Madrassa-Management-System-sub002/prometheus"
)

// UserHandler serves account administration within a jamia.
type UserHandler struct {
	users    store.UserStore
	guard    *authz.Authorizer
	validate *validator.Validate
}

// NewUserHandler creates the user handler.
func NewUserHandler(users store.UserStore, guard *authz.Authorizer, validate *validator.Validate) *UserHandler {
	return &UserHandler{users: users, guard: guard, validate: validate}
}

// Create adds an account. Admins create accounts inside their own jamia;
// only super admins can place an account in another jamia or mint further
// super admins.
func (h *UserHandler) Create(c echo.Context) error {
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
		Email       string   `json:"email" validate:"required,email"`
		Password    string   `json:"password" validate:"required,min=8"`
		Name        string   `json:"name" validate:"required"`
		Role        string   `json:"role" validate:"required"`
		JamiaID     *uint    `json:"jamia_id"`
		LinkedID    *uint    `json:"linked_id"`
		Permissions []string `json:"permissions"`
	}
	if err := bindAndValidate(c, h.validate, &req); err != nil {
		return badRequest(c, "email, name, role and a password of at least 8 characters are required")
	}

	role, err := authz.ParseRole(req.Role)
	if err != nil {
		return badRequest(c, "unknown role")
	}
	if role == authz.RoleSuperAdmin && !p.IsSuperAdmin() {
		return forbiddenRole(c)
	}

	// Non-super admins always create accounts in their own jamia.
	jamiaID := req.JamiaID
	if !p.IsSuperAdmin() {
		jamiaID = p.JamiaID
	}

	existing, err := h.users.ByEmail(c.Request().Context(), req.Email)
	if err != nil {
		return serverError(c, log, "Failed to check existing user", err)
	}
	if existing != nil {
		return c.JSON(http.StatusConflict, echo.Map{"error": "email already registered"})
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return serverError(c, log, "Failed to hash password", err)
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	user := model.User{
		Email:       req.Email,
		Password:    string(hash),
		Name:        req.Name,
		Role:        string(role),
		JamiaID:     jamiaID,
		LinkedID:    req.LinkedID,
		Permissions: req.Permissions,
		Active:      true,
	}
	if err := h.users.Create(c.Request().Context(), &user); err != nil {
		return serverError(c, log, "Failed to create user", err)
	}

	log.Info("User created",
		zap.String("email", user.Email),
		zap.String("role", user.Role),
		zap.Uint("created_by", p.UserID))
	return c.JSON(http.StatusCreated, user)
}

// List returns the accounts visible to the principal.
func (h *UserHandler) List(c echo.Context) error {
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

	scope, err := h.guard.ScopeFor(c.Request().Context(), p)
	if err != nil {
		return serverError(c, log, "Failed to compute scope", err)
	}

	users, err := h.users.List(c.Request().Context(), scope)
	if err != nil {
		return serverError(c, log, "Failed to list users", err)
	}
	return c.JSON(http.StatusOK, users)
}
