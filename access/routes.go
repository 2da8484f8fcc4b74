package access

import (
	"strings"
	"time"

	"github.com/jrsteele09/go-auth-shell/users"
)

// Shell route paths.
const (
	// Auth
	RouteLogin          = "/login"
	RouteRegister       = "/register"
	RouteForgotPassword = "/forgot-password"
	RouteResetPassword  = "/reset-password"

	// Protected
	RouteDashboard = "/dashboard"
	RouteAdmin     = "/admin"
	RouteManager   = "/manager"
	RouteProfile   = "/profile"

	RouteHome = "/"

	CallbackParam = "callbackUrl"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// RouteRule protects a path prefix. A nil Roles admits any authenticated role.
type RouteRule struct {
	Prefix string
	Roles  []users.RoleType
}

// RouteRules is the route access table.
var RouteRules = []RouteRule{
	{Prefix: RouteDashboard, Roles: users.AllRoles},
	{Prefix: RouteAdmin, Roles: []users.RoleType{users.RoleAdmin}},
	{Prefix: RouteManager, Roles: []users.RoleType{users.RoleManager, users.RoleAdmin}},
	{Prefix: RouteProfile, Roles: users.AllRoles},
}

// guestOnly routes send signed-in visitors to the dashboard.
var guestOnly = []string{RouteLogin, RouteRegister}

// RuleFor returns the rule protecting path, matching whole path segments.
func RuleFor(path string) (RouteRule, bool) {
	path = stripQuery(path)
	for _, rule := range RouteRules {
		if path == rule.Prefix || strings.HasPrefix(path, rule.Prefix+"/") {
			return rule, true
		}
	}
	return RouteRule{}, false
}

// CheckRoute is the coarse pre-check made before any session state is known. It
// only looks at whether an access token is present and, when the token is a
// readable JWT, at its role claim.
func CheckRoute(path, accessToken string) Decision {
	if rule, ok := RuleFor(path); ok {
		if accessToken == "" {
			return Decision{Outcome: RedirectToLogin, Location: LoginRedirect(stripQuery(path))}
		}
		// an expired token is about to be refreshed, so its role says nothing
		if claims, err := PeekClaims(accessToken); err == nil && claims.Role != "" && !claims.ExpiredAt(NowTimeFunc()) {
			if !hasMember(rule.Roles, users.RoleType(claims.Role)) {
				return Decision{Outcome: AccessDenied}
			}
		}
		return Decision{Outcome: RenderChildren}
	}

	if accessToken != "" {
		for _, p := range guestOnly {
			if stripQuery(path) == p {
				return Decision{Outcome: Redirect, Location: RouteDashboard}
			}
		}
	}
	return Decision{Outcome: RenderChildren}
}

func stripQuery(path string) string {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		return path[:i]
	}
	return path
}

func hasMember(roles []users.RoleType, role users.RoleType) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}
