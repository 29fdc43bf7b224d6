package authz

import "net/http"

// Reason classifies why access was denied. Reasons are terminal for the
// request and are logged for audit; they are never downgraded to an empty
// result set.
type Reason string

const (
	ReasonNone            Reason = ""
	ReasonUnauthenticated Reason = "unauthenticated"
	ReasonModuleDisabled  Reason = "module_disabled"
	ReasonTenantInactive  Reason = "tenant_inactive"
	ReasonCrossTenant     Reason = "cross_tenant_access"
)

// Decision is the outcome of an authorization check.
type Decision struct {
	Allowed bool
	Reason  Reason
}

// Allow is the positive decision.
var Allow = Decision{Allowed: true}

// Deny builds a negative decision with the given reason.
func Deny(reason Reason) Decision {
	return Decision{Allowed: false, Reason: reason}
}

// HTTPStatus maps a denial to the status a handler should respond with.
// Cross-tenant reads usually answer 404 instead, to avoid confirming that
// the record exists; handlers make that call.
func (d Decision) HTTPStatus() int {
	if d.Allowed {
		return http.StatusOK
	}
	switch d.Reason {
	case ReasonUnauthenticated:
		return http.StatusUnauthorized
	default:
		return http.StatusForbidden
	}
}

// Message returns a short user-facing message for a denial. Internal reason
// codes stay in the logs.
func (d Decision) Message() string {
	switch d.Reason {
	case ReasonUnauthenticated:
		return "authentication required"
	case ReasonModuleDisabled:
		return "this feature is not enabled for your institution"
	case ReasonTenantInactive:
		return "your institution's account is not active"
	case ReasonCrossTenant:
		return "access denied"
	default:
		return "access denied"
	}
}
