package auth

// Role is the capability attribute carried by an authenticated principal
type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
)

// Valid reports whether r is a known role
func (r Role) Valid() bool {
	return r == RoleCustomer || r == RoleAdmin
}

// Principal is the authenticated caller
type Principal struct {
	UserID uint
	Email  string
	Role   Role
}

// Has reports whether the principal holds role. Admins hold every role.
func (p *Principal) Has(role Role) bool {
	if p == nil {
		return false
	}
	return p.Role == role || p.Role == RoleAdmin
}

func (p *Principal) IsAdmin() bool {
	return p != nil && p.Role == RoleAdmin
}
