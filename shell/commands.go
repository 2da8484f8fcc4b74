package shell

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/jrsteele09/go-auth-shell/access"
	"github.com/jrsteele09/go-auth-shell/internal/errors"
	"github.com/jrsteele09/go-auth-shell/screens"
	"github.com/jrsteele09/go-auth-shell/users"
)

// ErrQuit is returned by Exec when the user asks to leave.
var ErrQuit = errors.New("quit")

type command struct {
	name  string
	usage string
	help  string
	run   func(a *App, ctx context.Context, args []string) error
}

var commands []command

func init() {
	commands = []command{
		{"go", "go <path>", "open a page, e.g. go /dashboard", (*App).goTo},
		{"login", "login <email> <password>", "sign in", (*App).login},
		{"register", "register <email> <password> <confirm-password> [name]", "create an account and sign in", (*App).register},
		{"logout", "logout", "sign out", (*App).logout},
		{"forgot", "forgot <email>", "request a password reset", (*App).forgot},
		{"reset", "reset <token> <password> <confirm-password>", "set a new password", (*App).reset},
		{"users", "users [role=<role>] [page=<n>] [limit=<n>]", "list users (admin)", (*App).listUsers},
		{"user-create", "user-create <email> <password> <role> <name>", "create a user (admin)", (*App).createUser},
		{"user-update", "user-update <id> [email=..] [name=..] [role=..] [password=..]", "edit a user (admin)", (*App).updateUser},
		{"user-delete", "user-delete <id>", "delete a user (admin)", (*App).deleteUser},
		{"reports", "reports [key=value...]", "show reports (manager, admin)", (*App).reports},
		{"profile", "profile [name=..] [password=..]", "show or update your profile", (*App).updateProfile},
		{"whoami", "whoami", "show the current session", (*App).whoami},
		{"health", "health", "check the API", (*App).health},
		{"help", "help", "list commands", (*App).help},
		{"quit", "quit", "leave the shell", func(*App, context.Context, []string) error { return ErrQuit }},
	}
}

func lookup(name string) (command, bool) {
	if name == "exit" {
		name = "quit"
	}
	for _, c := range commands {
		if c.name == name {
			return c, true
		}
	}
	return command{}, false
}

// Run reads commands from in until EOF, quit or ctx is done. Command failures are
// printed and do not stop the loop.
func (a *App) Run(ctx context.Context, in io.Reader) error {
	scanner := bufio.NewScanner(in)
	a.prompt()
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		err := a.Exec(ctx, scanner.Text())
		if errors.Is(err, ErrQuit) {
			return nil
		}
		if err != nil {
			a.logger.Debug().Err(err).Msg("command failed")
			_ = screens.RenderError(a.out, screens.FormMessage(err))
		}
		a.prompt()
	}
	return scanner.Err()
}

// Exec runs a single command line.
func (a *App) Exec(ctx context.Context, line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	c, ok := lookup(fields[0])
	if !ok {
		return errors.Wrapf(errors.ErrInvalidInput, "Unknown command %q, try help", fields[0])
	}
	return c.run(a, ctx, fields[1:])
}

func (a *App) prompt() {
	name := "guest"
	if u := a.controller.Snapshot().User; u != nil {
		name = u.Email
	}
	fmt.Fprintf(a.out, "%s %s> ", a.location, name)
}

func usage(name string) error {
	c, _ := lookup(name)
	return errors.Wrapf(errors.ErrInvalidInput, "usage: %s", c.usage)
}

// keyValues parses key=value arguments.
func keyValues(args []string) (url.Values, error) {
	values := url.Values{}
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok || key == "" {
			return nil, errors.Wrapf(errors.ErrInvalidInput, "expected key=value, got %q", arg)
		}
		values.Set(key, value)
	}
	return values, nil
}

func withQuery(route string, query url.Values) string {
	if len(query) == 0 {
		return route
	}
	return route + "?" + query.Encode()
}

func (a *App) goTo(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usage("go")
	}
	return a.Navigate(ctx, args[0])
}

// login returns to the page that sent the visitor to the login screen.
func (a *App) login(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return usage("login")
	}
	form := screens.LoginForm{Email: args[0], Password: args[1]}
	if err := form.Validate(); err != nil {
		return err
	}
	if !a.controller.Login(ctx, form.Request()) {
		return screens.RenderError(a.out, a.controller.Snapshot().Error)
	}
	return a.Navigate(ctx, access.CallbackTarget(a.location))
}

func (a *App) register(ctx context.Context, args []string) error {
	if len(args) < 3 {
		return usage("register")
	}
	form := screens.RegisterForm{
		Email:           args[0],
		Password:        args[1],
		ConfirmPassword: args[2],
		Name:            strings.Join(args[3:], " "),
	}
	if err := form.Validate(); err != nil {
		return err
	}
	if !a.controller.Register(ctx, form.Request()) {
		return screens.RenderError(a.out, a.controller.Snapshot().Error)
	}
	return a.Navigate(ctx, access.RouteDashboard)
}

func (a *App) logout(ctx context.Context, args []string) error {
	a.controller.Logout(ctx)
	fmt.Fprintln(a.out, "Signed out.")
	return a.Navigate(ctx, access.RouteLogin)
}

func (a *App) forgot(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usage("forgot")
	}
	form := screens.ForgotPasswordForm{Email: args[0]}
	if err := form.Validate(); err != nil {
		return err
	}
	res, ok := a.controller.ForgotPassword(ctx, strings.TrimSpace(form.Email))
	if !ok {
		return screens.RenderError(a.out, a.controller.Snapshot().Error)
	}
	message := res.Message
	if message == "" {
		message = "If the email exists, a password reset link has been sent."
	}
	fmt.Fprintln(a.out, message)
	if res.ResetToken != "" {
		fmt.Fprintf(a.out, "Reset token: %s\n", res.ResetToken)
	}
	return nil
}

func (a *App) reset(ctx context.Context, args []string) error {
	if len(args) != 3 {
		return usage("reset")
	}
	form := screens.ResetPasswordForm{Token: args[0], Password: args[1], ConfirmPassword: args[2]}
	if err := form.Validate(); err != nil {
		return err
	}
	if !a.controller.ResetPassword(ctx, strings.TrimSpace(form.Token), form.Password) {
		return screens.RenderError(a.out, a.controller.Snapshot().Error)
	}
	fmt.Fprintln(a.out, "Password reset. You can now sign in with your new password.")
	return a.Navigate(ctx, access.RouteLogin)
}

func (a *App) listUsers(ctx context.Context, args []string) error {
	query, err := keyValues(args)
	if err != nil {
		return err
	}
	return a.Navigate(ctx, withQuery(RouteAdminUsers, query))
}

// requireAdmin renders the access-denied message for non-admin sessions.
func (a *App) requireAdmin() bool {
	if access.Roles(a.controller.Snapshot().User).IsAdmin() {
		return true
	}
	_ = screens.RenderAccessDenied(a.out)
	return false
}

func (a *App) createUser(ctx context.Context, args []string) error {
	if len(args) < 4 {
		return usage("user-create")
	}
	if !a.requireAdmin() {
		return nil
	}
	role, err := users.ParseRole(args[2])
	if err != nil {
		return errors.Wrapf(errors.ErrInvalidInput, "Invalid role %q", args[2])
	}
	a.admin.StartCreate()
	a.admin.SetForm(screens.UserForm{
		Email:    args[0],
		Password: args[1],
		Role:     role,
		Name:     strings.Join(args[3:], " "),
	})
	return a.submitUser(ctx, "User created.")
}

func (a *App) updateUser(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return usage("user-update")
	}
	if !a.requireAdmin() {
		return nil
	}
	u, err := a.findUser(ctx, args[0])
	if err != nil {
		return err
	}
	changes, err := keyValues(args[1:])
	if err != nil {
		return err
	}

	a.admin.StartEdit(u)
	form := a.admin.Form()
	for key := range changes {
		value := changes.Get(key)
		switch key {
		case "email":
			form.Email = value
		case "name":
			form.Name = value
		case "password":
			form.Password = value
		case "role":
			role, err := users.ParseRole(value)
			if err != nil {
				a.admin.ResetForm()
				return errors.Wrapf(errors.ErrInvalidInput, "Invalid role %q", value)
			}
			form.Role = role
		default:
			a.admin.ResetForm()
			return errors.Wrapf(errors.ErrInvalidInput, "Unknown field %q", key)
		}
	}
	a.admin.SetForm(form)
	return a.submitUser(ctx, "User updated.")
}

func (a *App) submitUser(ctx context.Context, done string) error {
	if !a.admin.Submit(ctx) {
		message := a.admin.Error()
		a.admin.ResetForm()
		return screens.RenderError(a.out, message)
	}
	fmt.Fprintln(a.out, done)
	return a.admin.Render(a.out)
}

func (a *App) deleteUser(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usage("user-delete")
	}
	if !a.requireAdmin() {
		return nil
	}
	if !a.admin.Delete(ctx, args[0]) {
		return screens.RenderError(a.out, a.admin.Error())
	}
	fmt.Fprintln(a.out, "User deleted.")
	return a.admin.Render(a.out)
}

// findUser looks id up in the loaded list, loading it first when needed.
func (a *App) findUser(ctx context.Context, id string) (users.User, error) {
	if u, ok := a.admin.Find(id); ok {
		return u, nil
	}
	if !a.admin.Load(ctx, nil) {
		return users.User{}, errors.Wrapf(errors.ErrInvalidInput, "%s", a.admin.Users.Error())
	}
	if u, ok := a.admin.Find(id); ok {
		return u, nil
	}
	return users.User{}, errors.Wrapf(errors.ErrInvalidInput, "User %s not found", id)
}

func (a *App) reports(ctx context.Context, args []string) error {
	query, err := keyValues(args)
	if err != nil {
		return err
	}
	return a.Navigate(ctx, withQuery(RouteManagerReports, query))
}

func (a *App) updateProfile(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return a.Navigate(ctx, access.RouteProfile)
	}
	if !a.controller.Snapshot().IsAuthenticated {
		return a.Navigate(ctx, access.RouteProfile)
	}
	changes, err := keyValues(args)
	if err != nil {
		return err
	}
	for key := range changes {
		if key != "name" && key != "password" {
			return errors.Wrapf(errors.ErrInvalidInput, "Unknown field %q", key)
		}
	}
	if !a.profile.Update(ctx, changes.Get("name"), changes.Get("password")) {
		return screens.RenderError(a.out, a.profile.Error())
	}
	a.controller.RefreshUser(ctx)
	fmt.Fprintln(a.out, "Profile updated.")
	return a.profile.Render(a.out)
}

func (a *App) whoami(ctx context.Context, args []string) error {
	session := a.controller.Snapshot()
	if session.User == nil {
		_, err := fmt.Fprintf(a.out, "Not signed in (%s)\n", a.controller.Status())
		return err
	}
	fmt.Fprintf(a.out, "%s <%s> role=%s id=%s\n",
		session.User.Name, session.User.Email, session.User.Role, session.User.ID)

	sections := []string{access.RouteDashboard, access.RouteProfile}
	roles := access.Roles(session.User)
	if roles.IsManagerOrAdmin() {
		sections = append(sections, access.RouteManager)
	}
	if roles.IsAdmin() {
		sections = append(sections, access.RouteAdmin)
	}
	_, err := fmt.Fprintf(a.out, "Sections: %s\n", strings.Join(sections, " "))
	return err
}

func (a *App) health(ctx context.Context, args []string) error {
	res := a.api.Health(ctx)
	if !res.Success {
		return screens.RenderError(a.out, res.Error)
	}
	_, err := fmt.Fprintf(a.out, "API %s at %s\n", res.Data.Status, res.Data.Timestamp)
	return err
}

func (a *App) help(ctx context.Context, args []string) error {
	for _, c := range commands {
		fmt.Fprintf(a.out, "  %-62s %s\n", c.usage, c.help)
	}
	return nil
}
