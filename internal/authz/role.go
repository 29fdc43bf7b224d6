package authz

import "fmt"

// Role is the closed set of portal roles. Keeping it a named type with
// parse-time validation means an unknown role never reaches a decision.
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleTeacher    Role = "teacher"
	RoleStaff      Role = "staff"
	RoleStudent    Role = "student"
	RoleMudeer     Role = "mudeer"
	RoleNazim      Role = "nazim"
	RoleSuperAdmin Role = "super_admin"
)

var allRoles = map[Role]struct{}{
	RoleAdmin:      {},
	RoleTeacher:    {},
	RoleStaff:      {},
	RoleStudent:    {},
	RoleMudeer:     {},
	RoleNazim:      {},
	RoleSuperAdmin: {},
}

// ParseRole validates a stored role string against the enumeration.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if _, ok := allRoles[r]; !ok {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

// Valid reports whether the role is one of the enumeration.
func (r Role) Valid() bool {
	_, ok := allRoles[r]
	return ok
}

// String implements fmt.Stringer
func (r Role) String() string { return string(r) }
