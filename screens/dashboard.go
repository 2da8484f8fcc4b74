package screens

import (
	"context"
	"fmt"
	"io"

	"github.com/jrsteele09/go-auth-shell/access"
	"github.com/jrsteele09/go-auth-shell/apiclient"
	"github.com/jrsteele09/go-auth-shell/sessions"
	"github.com/jrsteele09/go-auth-shell/users"
)

type DashboardAPI interface {
	UserDashboard(ctx context.Context) apiclient.Response[apiclient.Aggregate]
}

// Dashboard is the landing page for every signed-in role. Manager and admin
// shortcuts are shown only to those roles.
type Dashboard struct {
	api  DashboardAPI
	Data Loader[apiclient.Aggregate]
}

func NewDashboard(api DashboardAPI) *Dashboard {
	return &Dashboard{api: api}
}

func (d *Dashboard) Load(ctx context.Context) bool {
	return d.Data.Execute(ctx, d.api.UserDashboard)
}

func (d *Dashboard) Render(w io.Writer, session sessions.Session) error {
	if d.Data.Loading() {
		return RenderLoading(w)
	}
	heading(w, "Dashboard")
	if session.User != nil {
		fmt.Fprintf(w, "Welcome, %s! [%s]\n\n", displayName(session.User), roleBadge(session.User.Role.String()))
	}
	if err := RenderError(w, d.Data.Error()); err != nil {
		return err
	}
	if data, ok := d.Data.Data(); ok {
		if msg := data.Message(); msg != "" {
			fmt.Fprintln(w, msg)
		}
		if err := renderFields(w, data.Body()); err != nil {
			return err
		}
	}

	fmt.Fprintln(w, "\nQuick actions:")
	fmt.Fprintf(w, "  go %s\n", access.RouteProfile)
	if access.Guard(session, users.RoleManager, users.RoleAdmin) {
		fmt.Fprintf(w, "  go %s\n", access.RouteManager)
	}
	if access.Roles(session.User).IsAdmin() {
		fmt.Fprintf(w, "  go %s\n", access.RouteAdmin)
	}
	_, err := fmt.Fprintln(w, "  logout")
	return err
}

func displayName(u *users.User) string {
	if u.Name != "" {
		return u.Name
	}
	return u.Email
}

// Overview renders a role dashboard summary such as the admin or manager
// statistics.
type Overview struct {
	title string
	fetch func(context.Context) apiclient.Response[apiclient.Aggregate]
	Data  Loader[apiclient.Aggregate]
}

type AdminDashboardAPI interface {
	AdminDashboard(ctx context.Context) apiclient.Response[apiclient.Aggregate]
}

type ManagerDashboardAPI interface {
	ManagerDashboard(ctx context.Context) apiclient.Response[apiclient.Aggregate]
}

func NewAdminOverview(api AdminDashboardAPI) *Overview {
	return &Overview{title: "Admin Dashboard", fetch: api.AdminDashboard}
}

func NewManagerOverview(api ManagerDashboardAPI) *Overview {
	return &Overview{title: "Manager Dashboard", fetch: api.ManagerDashboard}
}

func (o *Overview) Load(ctx context.Context) bool {
	return o.Data.Execute(ctx, o.fetch)
}

func (o *Overview) Render(w io.Writer) error {
	if o.Data.Loading() {
		return RenderLoading(w)
	}
	heading(w, o.title)
	if err := RenderError(w, o.Data.Error()); err != nil {
		return err
	}
	data, ok := o.Data.Data()
	if !ok {
		return nil
	}
	return renderFields(w, data.Body())
}
