// Package access decides what a view may render for a session: a loading
// placeholder, a redirect to login, an access-denied message or the view itself.
package access

import (
	"net/url"
	"strings"

	"github.com/jrsteele09/go-auth-shell/sessions"
	"github.com/jrsteele09/go-auth-shell/users"
)

type Outcome int

const (
	RenderChildren Outcome = iota
	RenderLoading
	RedirectToLogin
	AccessDenied
	// Redirect sends the visitor to Location without a callback.
	Redirect
)

func (o Outcome) String() string {
	switch o {
	case RenderChildren:
		return "render"
	case RenderLoading:
		return "loading"
	case RedirectToLogin:
		return "redirect-to-login"
	case AccessDenied:
		return "access-denied"
	case Redirect:
		return "redirect"
	default:
		return "unknown"
	}
}

// Decision is the result of a gate check. Location is set for redirects.
type Decision struct {
	Outcome  Outcome
	Location string
}

// Decide gates a protected view at location. An empty requiredRoles admits any
// authenticated user.
func Decide(session sessions.Session, requiredRoles []users.RoleType, location string) Decision {
	switch {
	case session.Loading:
		return Decision{Outcome: RenderLoading}
	case !session.IsAuthenticated || session.User == nil:
		return Decision{Outcome: RedirectToLogin, Location: LoginRedirect(location)}
	case len(requiredRoles) > 0 && !session.User.HasRole(requiredRoles...):
		return Decision{Outcome: AccessDenied}
	default:
		return Decision{Outcome: RenderChildren}
	}
}

// Guard is the in-page variant: true when the session user holds one of
// allowedRoles. It never redirects.
func Guard(session sessions.Session, allowedRoles ...users.RoleType) bool {
	return Roles(session.User).HasAnyRole(allowedRoles...)
}

// LoginRedirect builds the login location that returns to location afterwards.
func LoginRedirect(location string) string {
	if location == "" {
		return RouteLogin
	}
	return RouteLogin + "?" + CallbackParam + "=" + url.QueryEscape(location)
}

// CallbackTarget extracts the post-login destination from a login location or
// query string. Only local paths are honoured; anything else yields the dashboard.
func CallbackTarget(location string) string {
	query := location
	if i := strings.Index(location, "?"); i >= 0 {
		query = location[i+1:]
	}
	values, err := url.ParseQuery(query)
	if err != nil {
		return RouteDashboard
	}
	target := values.Get(CallbackParam)
	if !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") {
		return RouteDashboard
	}
	return target
}
