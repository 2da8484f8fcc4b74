package access

import "github.com/jrsteele09/go-auth-shell/users"

// RoleCheck answers role questions about a possibly absent user.
type RoleCheck struct {
	User *users.User
}

func Roles(user *users.User) RoleCheck {
	return RoleCheck{User: user}
}

func (r RoleCheck) is(role users.RoleType) bool {
	return r.User != nil && r.User.Role == role
}

func (r RoleCheck) IsManager() bool { return r.is(users.RoleManager) }
func (r RoleCheck) IsAdmin() bool   { return r.is(users.RoleAdmin) }

func (r RoleCheck) IsManagerOrAdmin() bool {
	return r.IsManager() || r.IsAdmin()
}

// HasAnyRole reports whether the user holds one of roles.
func (r RoleCheck) HasAnyRole(roles ...users.RoleType) bool {
	return r.User.HasRole(roles...)
}
