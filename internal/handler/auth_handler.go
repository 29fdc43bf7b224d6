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
	"github.com/Mahanoorfarooq/Madrassa-Management-System-sub002/pkg/jwtutil"
	"github.com/Mahanoorfarooq/Madrassa-Management-System-sub002/pkg/logger"
	"github.com/Mahanoorfarooq/Madrassa-Management-System-sub002/prometheus"
)

// AuthHandler serves registration and login.
type AuthHandler struct {
	users    store.UserStore
	jamias   store.JamiaStore
	jwt      *jwtutil.JWTUtil
	validate *validator.Validate
}

// NewAuthHandler creates the auth handler.
func NewAuthHandler(users store.UserStore, jamias store.JamiaStore, jwt *jwtutil.JWTUtil, validate *validator.Validate) *AuthHandler {
	return &AuthHandler{users: users, jamias: jamias, jwt: jwt, validate: validate}
}

// Register creates a staff account. Accounts with elevated roles are
// created by an admin through the users endpoint, never by self-signup.
func (h *AuthHandler) Register(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RegisterCounter.Inc()

	var req struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required,min=8"`
		Name     string `json:"name" validate:"required"`
	}
	if err := bindAndValidate(c, h.validate, &req); err != nil {
		log.Warn("Invalid registration request", zap.Error(err))
		prometheus.RecordAuthError("invalid_request")
		return badRequest(c, "email, name and a password of at least 8 characters are required")
	}

	existing, err := h.users.ByEmail(c.Request().Context(), req.Email)
	if err != nil {
		return serverError(c, log, "Failed to check existing user", err)
	}
	if existing != nil {
		prometheus.RecordAuthError("email_taken")
		return c.JSON(http.StatusConflict, echo.Map{"error": "email already registered"})
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return serverError(c, log, "Failed to hash password", err)
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	user := model.User{
		Email:    req.Email,
		Password: string(hash),
		Name:     req.Name,
		Role:     string(authz.RoleStaff),
		Active:   true,
	}
	if err := h.users.Create(c.Request().Context(), &user); err != nil {
		return serverError(c, log, "Failed to create user", err)
	}

	log.Info("User registered", zap.String("email", user.Email), zap.Uint("id", user.ID))
	return c.JSON(http.StatusCreated, echo.Map{
		"message": "registered successfully",
		"user":    user,
	})
}

// Login verifies credentials and issues a token. The jamia reference in
// the token mirrors the user record; it is re-read on every request anyway.
func (h *AuthHandler) Login(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.LoginCounter.Inc()

	var req struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}
	if err := bindAndValidate(c, h.validate, &req); err != nil {
		prometheus.RecordAuthError("invalid_request")
		return badRequest(c, "email and password are required")
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	user, err := h.users.ByEmail(c.Request().Context(), req.Email)
	if err != nil {
		return serverError(c, log, "Failed to look up user", err)
	}
	if user == nil || !user.Active {
		log.Warn("Login for unknown or inactive user", zap.String("email", req.Email))
		prometheus.RecordAuthError("user_not_found")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		log.Warn("Invalid password", zap.String("email", req.Email))
		prometheus.RecordAuthError("invalid_password")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	var jamiaKey string
	if user.JamiaID != nil {
		jamia, err := h.jamias.JamiaByID(c.Request().Context(), *user.JamiaID)
		if err != nil {
			return serverError(c, log, "Failed to look up jamia", err)
		}
		if jamia != nil {
			jamiaKey = jamia.Slug
		}
	}

	token, err := h.jwt.GenerateToken(user.Email, user.ID, user.Role, user.JamiaID, jamiaKey)
	if err != nil {
		return serverError(c, log, "Failed to generate token", err)
	}

	log.Info("User logged in", zap.String("email", user.Email), zap.Uint("user_id", user.ID))
	return c.JSON(http.StatusOK, echo.Map{
		"token": token,
		"user":  user,
	})
}

// Me returns the resolved principal for the current request.
func (h *AuthHandler) Me(c echo.Context) error {
	p := middleware.PrincipalFromEcho(c)
	if p == nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"user_id":     p.UserID,
		"email":       p.Email,
		"role":        p.Role,
		"jamia_id":    p.JamiaID,
		"permissions": p.Permissions,
	})
}
