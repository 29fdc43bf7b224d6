// Package handler contains the REST handlers behind the portals. Every
// handler resolves the principal placed in the context by the auth
// middleware, asks the tenant access guard for a decision, and only then
// touches the stores.
package handler

import (
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/Mahanoorfarooq/Madrassa-Management-System-sub002/internal/authz"
	"github.com/Mahanoorfarooq/Madrassa-Management-System-sub002/prometheus"
)

// denied writes the HTTP response for an authorization denial. Single-entity
// reads pass hideExistence so a cross-tenant probe gets the same 404 a
// nonexistent id would.
func denied(c echo.Context, log *zap.Logger, d authz.Decision, hideExistence bool) error {
	prometheus.RecordDenial(string(d.Reason))
	if hideExistence && d.Reason == authz.ReasonCrossTenant {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	}
	return c.JSON(d.HTTPStatus(), echo.Map{"error": d.Message()})
}

// serverError logs a store/infrastructure failure and answers 500. These
// are never reported as access denials.
func serverError(c echo.Context, log *zap.Logger, msg string, err error) error {
	log.Error(msg, zap.Error(err))
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}

// notFound is the uniform missing-record response.
func notFound(c echo.Context) error {
	return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
}

// badRequest answers 400 with a short message.
func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
}

// hasRole reports whether the principal holds one of the roles. Super
// admins pass every role check.
func hasRole(p *authz.Principal, roles ...authz.Role) bool {
	if p == nil {
		return false
	}
	if p.IsSuperAdmin() {
		return true
	}
	for _, r := range roles {
		if p.Role == r {
			return true
		}
	}
	return false
}

// managementRoles are the roles that administer records within a jamia.
var managementRoles = []authz.Role{authz.RoleAdmin, authz.RoleMudeer, authz.RoleNazim}

// forbiddenRole answers the role check failure.
func forbiddenRole(c echo.Context) error {
	return c.JSON(http.StatusForbidden, echo.Map{"error": "insufficient permissions"})
}

// parseUintParam parses a numeric path parameter.
func parseUintParam(c echo.Context, name string) (uint, error) {
	v, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(v), nil
}

// bindAndValidate binds the request body and runs struct validation.
func bindAndValidate(c echo.Context, v *validator.Validate, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return err
	}
	return v.Struct(req)
}
