package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/Mahanoorfarooq/Madrassa-Management-System-sub002/internal/authz"
	"github.com/Mahanoorfarooq/Madrassa-Management-System-sub002/internal/store"
	"github.com/Mahanoorfarooq/Madrassa-Management-System-sub002/pkg/jwtutil"
	"github.com/Mahanoorfarooq/Madrassa-Management-System-sub002/pkg/logger"
	"github.com/Mahanoorfarooq/Madrassa-Management-System-sub002/prometheus"
)

const principalKey = "principal"

// AuthMiddleware validates the bearer token and resolves the principal.
//
// The claims only identify the user; role, jamia and permissions are
// re-read from the user record on every request so a revoked account or a
// jamia reassignment takes effect immediately and a forged tenant claim
// buys nothing.
func AuthMiddleware(jwtUtil *jwtutil.JWTUtil, users store.UserStore) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			log := logger.FromEcho(c)

			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				log.Warn("Missing authorization header")
				prometheus.RecordAuthError("missing_token")
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing authorization token"})
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				log.Warn("Invalid authorization header format")
				prometheus.RecordAuthError("invalid_auth_format")
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid authorization format, expected Bearer token"})
			}

			claims, err := jwtUtil.ValidateToken(parts[1])
			if err != nil {
				log.Warn("Invalid or expired token", zap.Error(err))
				prometheus.RecordAuthError("invalid_token")
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired token"})
			}

			user, err := users.ByID(c.Request().Context(), claims.UserID)
			if err != nil {
				log.Error("Failed to load user for token", zap.Error(err))
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
			}
			if user == nil || !user.Active {
				log.Warn("Token for missing or deactivated user", zap.Uint("user_id", claims.UserID))
				prometheus.RecordAuthError("user_not_found")
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired token"})
			}

			role, err := authz.ParseRole(user.Role)
			if err != nil {
				// A stored role outside the enumeration is corrupt data,
				// not a client problem.
				log.Error("User has unknown role", zap.Uint("user_id", user.ID), zap.String("role", user.Role))
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
			}

			principal := &authz.Principal{
				UserID:      user.ID,
				Email:       user.Email,
				Role:        role,
				JamiaID:     user.JamiaID,
				LinkedID:    user.LinkedID,
				Permissions: user.Permissions,
			}
			c.Set(principalKey, principal)

			log.Debug("Request authenticated",
				zap.Uint("user_id", principal.UserID),
				zap.String("role", string(principal.Role)))

			return next(c)
		}
	}
}

// PrincipalFromEcho returns the principal resolved by AuthMiddleware, or
// nil when the request is unauthenticated.
func PrincipalFromEcho(c echo.Context) *authz.Principal {
	p, ok := c.Get(principalKey).(*authz.Principal)
	if !ok {
		return nil
	}
	return p
}
