// Package shell is the line-oriented front end: it routes paths through the
// access gate, renders the matching screen and runs the command loop.
package shell

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/jrsteele09/go-auth-shell/access"
	"github.com/jrsteele09/go-auth-shell/apiclient"
	"github.com/jrsteele09/go-auth-shell/credentials"
	"github.com/jrsteele09/go-auth-shell/screens"
	"github.com/jrsteele09/go-auth-shell/sessions"
	"github.com/rs/zerolog"
)

// Screen paths below the protected sections.
const (
	RouteAdminUsers     = access.RouteAdmin + "/users"
	RouteManagerReports = access.RouteManager + "/reports"
)

const maxRedirects = 5

// API is the part of the gateway the screens and commands use.
type API interface {
	screens.DashboardAPI
	screens.AdminAPI
	screens.AdminDashboardAPI
	screens.ManagerDashboardAPI
	screens.ReportsAPI
	screens.ProfileAPI
	Health(ctx context.Context) apiclient.Response[apiclient.Health]
	AccessToken() string
}

var _ API = (*apiclient.Client)(nil)

type App struct {
	api        API
	store      *credentials.Store
	controller *sessions.Controller
	out        io.Writer
	logger     zerolog.Logger

	location string
	admin    *screens.AdminUsers
	profile  *screens.Profile
}

type Option func(*App)

func WithLogger(logger zerolog.Logger) Option {
	return func(a *App) {
		a.logger = logger
	}
}

func New(api API, store *credentials.Store, controller *sessions.Controller, out io.Writer, opts ...Option) *App {
	a := &App{
		api:        api,
		store:      store,
		controller: controller,
		out:        out,
		logger:     zerolog.Nop(),
		location:   access.RouteHome,
		admin:      screens.NewAdminUsers(api),
		profile:    screens.NewProfile(api),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Location is the path of the page currently shown, including its query.
func (a *App) Location() string {
	return a.location
}

// Navigate shows path, following redirects issued by the route pre-check and the
// gate.
func (a *App) Navigate(ctx context.Context, path string) error {
	for range maxRedirects {
		next, err := a.visit(ctx, path)
		if err != nil || next == "" {
			return err
		}
		a.logger.Debug().Str("from", path).Str("to", next).Msg("redirect")
		path = next
	}
	return fmt.Errorf("[shell Navigate] too many redirects at %s", path)
}

// visit renders path and returns the next location when it redirects instead.
func (a *App) visit(ctx context.Context, path string) (string, error) {
	if path == "" {
		path = access.RouteHome
	}
	route, query := splitPath(path)

	session := a.controller.Snapshot()
	pre := access.CheckRoute(path, a.accessToken(ctx))
	switch pre.Outcome {
	case access.Redirect, access.RedirectToLogin:
		return pre.Location, nil
	case access.AccessDenied:
		// the token's role claim can be stale; a loaded user is decided by the gate
		if session.User == nil {
			a.location = path
			return "", screens.RenderAccessDenied(a.out)
		}
	}

	if route == access.RouteHome {
		if session.IsAuthenticated {
			return access.RouteDashboard, nil
		}
		return access.RouteLogin, nil
	}

	a.location = path
	rule, protected := access.RuleFor(route)
	if !protected {
		return "", a.renderPublic(route)
	}

	decision := access.Decide(session, rule.Roles, route)
	switch decision.Outcome {
	case access.RenderLoading:
		return "", screens.RenderLoading(a.out)
	case access.RedirectToLogin:
		return decision.Location, nil
	case access.AccessDenied:
		return "", screens.RenderAccessDenied(a.out)
	}

	if err := a.renderProtected(ctx, route, query); err != nil {
		return "", err
	}
	// a failed refresh while loading signs the user out
	if !a.controller.Snapshot().IsAuthenticated {
		return access.LoginRedirect(route), nil
	}
	return "", nil
}

// accessToken is the credential the route pre-check sees: the stored one, or the
// in-memory one when nothing is persisted.
func (a *App) accessToken(ctx context.Context) string {
	if token, ok := a.store.AccessToken(ctx); ok {
		return token
	}
	return a.api.AccessToken()
}

func (a *App) renderPublic(route string) error {
	var title, usage string
	switch route {
	case access.RouteLogin:
		title, usage = "Sign in", "login <email> <password>"
	case access.RouteRegister:
		title, usage = "Create an account", "register <email> <password> <confirm-password> [name]"
	case access.RouteForgotPassword:
		title, usage = "Forgot password", "forgot <email>"
	case access.RouteResetPassword:
		title, usage = "Reset password", "reset <token> <password> <confirm-password>"
	default:
		return screens.RenderError(a.out, "Page not found: "+route)
	}
	fmt.Fprintln(a.out, title)
	if err := screens.RenderError(a.out, a.controller.Snapshot().Error); err != nil {
		return err
	}
	_, err := fmt.Fprintf(a.out, "  %s\n", usage)
	return err
}

func (a *App) renderProtected(ctx context.Context, route string, query url.Values) error {
	session := a.controller.Snapshot()
	switch route {
	case access.RouteDashboard:
		d := screens.NewDashboard(a.api)
		d.Load(ctx)
		return d.Render(a.out, session)

	case access.RouteAdmin:
		overview := screens.NewAdminOverview(a.api)
		overview.Load(ctx)
		if err := overview.Render(a.out); err != nil {
			return err
		}
		fmt.Fprintln(a.out)
		a.admin.Load(ctx, query)
		return a.admin.Render(a.out)

	case RouteAdminUsers:
		a.admin.Load(ctx, query)
		return a.admin.Render(a.out)

	case access.RouteManager:
		overview := screens.NewManagerOverview(a.api)
		overview.Load(ctx)
		if err := overview.Render(a.out); err != nil {
			return err
		}
		fmt.Fprintln(a.out)
		return a.renderReports(ctx, query)

	case RouteManagerReports:
		return a.renderReports(ctx, query)

	case access.RouteProfile:
		a.profile.Load(ctx)
		return a.profile.Render(a.out)

	default:
		return screens.RenderError(a.out, "Page not found: "+route)
	}
}

func (a *App) renderReports(ctx context.Context, query url.Values) error {
	reports := screens.NewManagerReports(a.api)
	reports.Load(ctx, query)
	return reports.Render(a.out)
}

func splitPath(path string) (string, url.Values) {
	route, rawQuery, _ := strings.Cut(path, "?")
	if route == "" {
		route = access.RouteHome
	}
	query, err := url.ParseQuery(rawQuery)
	if err != nil {
		query = nil
	}
	return route, query
}
