package authz

// Principal is the authenticated actor behind a request, rebuilt from the
// user record on every request rather than trusted from client claims.
type Principal struct {
	UserID  uint
	Email   string
	Role    Role
	JamiaID *uint
	// LinkedID points at the teacher/student record this account is tied
	// to, when there is one.
	LinkedID *uint
	// Permissions are fine-grained capability names granted to admin
	// accounts. They only ever narrow within an enabled module; a
	// permission never reopens a module the jamia has disabled.
	Permissions []string
}

// IsSuperAdmin reports whether the principal is a super-tenant operator.
// Super admins carry no jamia reference and bypass tenant scoping.
func (p *Principal) IsSuperAdmin() bool {
	return p != nil && p.Role == RoleSuperAdmin
}

// HasPermission reports whether the principal holds the named fine-grained
// permission.
func (p *Principal) HasPermission(name string) bool {
	if p == nil {
		return false
	}
	for _, perm := range p.Permissions {
		if perm == name {
			return true
		}
	}
	return false
}
