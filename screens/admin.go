package screens

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/jrsteele09/go-auth-shell/apiclient"
	"github.com/jrsteele09/go-auth-shell/internal/errors"
	"github.com/jrsteele09/go-auth-shell/internal/utils"
	"github.com/jrsteele09/go-auth-shell/users"
)

type AdminAPI interface {
	ListUsers(ctx context.Context, query url.Values) apiclient.Response[[]users.User]
	CreateUser(ctx context.Context, create users.Create) apiclient.Response[users.User]
	UpdateUser(ctx context.Context, id string, update users.Update) apiclient.Response[users.User]
	DeleteUser(ctx context.Context, id string) apiclient.Response[apiclient.MessageResponse]
}

// UserForm is the create and edit form of the user management page.
type UserForm struct {
	Email    string
	Name     string
	Password string
	Role     users.RoleType
}

func emptyUserForm() UserForm {
	return UserForm{Role: users.RoleUser}
}

func (f UserForm) validate(creating bool) error {
	if err := validateEmail(f.Email); err != nil {
		return err
	}
	if strings.TrimSpace(f.Name) == "" {
		return errors.Wrapf(errors.ErrInvalidInput, "Name is required")
	}
	if !f.Role.Valid() {
		return errors.Wrapf(errors.ErrInvalidInput, "Invalid role %q", f.Role)
	}
	if creating || strings.TrimSpace(f.Password) != "" {
		if err := users.ValidatePassword(f.Password); err != nil {
			return errors.Wrapf(errors.ErrInvalidInput, "%s", err.Error())
		}
	}
	return nil
}

func (f UserForm) create() users.Create {
	return users.Create{
		Email:    strings.TrimSpace(f.Email),
		Name:     strings.TrimSpace(f.Name),
		Password: f.Password,
		Role:     f.Role,
	}
}

// update leaves the password out unless one was typed.
func (f UserForm) update() users.Update {
	return users.Update{
		Email:    utils.Ptr(strings.TrimSpace(f.Email)),
		Name:     utils.Ptr(strings.TrimSpace(f.Name)),
		Role:     utils.Ptr(f.Role),
		Password: utils.NonBlank(f.Password),
	}
}

// AdminUsers is the user management page.
type AdminUsers struct {
	api   AdminAPI
	Users Loader[[]users.User]

	form     UserForm
	editing  *users.User
	creating bool
	err      string
}

func NewAdminUsers(api AdminAPI) *AdminUsers {
	return &AdminUsers{api: api, form: emptyUserForm()}
}

// Load fetches the user list.
func (a *AdminUsers) Load(ctx context.Context, query url.Values) bool {
	return a.Users.Execute(ctx, func(ctx context.Context) apiclient.Response[[]users.User] {
		return a.api.ListUsers(ctx, query)
	})
}

func (a *AdminUsers) StartCreate() {
	a.editing = nil
	a.creating = true
	a.form = emptyUserForm()
	a.err = ""
}

// StartEdit fills the form from u with a blank password.
func (a *AdminUsers) StartEdit(u users.User) {
	a.editing = &u
	a.creating = false
	a.form = UserForm{Email: u.Email, Name: u.Name, Role: u.Role}
	a.err = ""
}

func (a *AdminUsers) SetForm(f UserForm) {
	a.form = f
}

func (a *AdminUsers) Form() UserForm {
	return a.form
}

// Editing returns the user being edited, or nil.
func (a *AdminUsers) Editing() *users.User {
	return a.editing
}

func (a *AdminUsers) Error() string {
	return a.err
}

func (a *AdminUsers) ResetForm() {
	a.editing = nil
	a.creating = false
	a.form = emptyUserForm()
}

// Find returns the loaded user with id.
func (a *AdminUsers) Find(id string) (users.User, bool) {
	list, _ := a.Users.Data()
	for _, u := range list {
		if u.ID == id {
			return u, true
		}
	}
	return users.User{}, false
}

// Submit creates or updates depending on the form mode. On success the form is
// reset and the list reloaded.
func (a *AdminUsers) Submit(ctx context.Context) bool {
	creating := a.editing == nil
	if err := a.form.validate(creating); err != nil {
		a.err = FormMessage(err)
		return false
	}

	var res apiclient.Response[users.User]
	if creating {
		res = a.api.CreateUser(ctx, a.form.create())
	} else {
		res = a.api.UpdateUser(ctx, a.editing.ID, a.form.update())
	}
	if !res.Success {
		a.err = res.Error
		return false
	}
	a.err = ""
	a.ResetForm()
	a.Load(ctx, nil)
	return true
}

// Delete removes the user and drops it from the loaded list without reloading.
func (a *AdminUsers) Delete(ctx context.Context, id string) bool {
	res := a.api.DeleteUser(ctx, id)
	if !res.Success {
		a.err = res.Error
		return false
	}
	a.err = ""
	a.Users.Update(func(list []users.User) []users.User {
		out := list[:0:0]
		for _, u := range list {
			if u.ID != id {
				out = append(out, u)
			}
		}
		return out
	})
	return true
}

func (a *AdminUsers) Render(w io.Writer) error {
	if _, ok := a.Users.Data(); !ok && a.Users.Loading() {
		return RenderLoading(w)
	}
	heading(w, "User Management")
	if err := RenderError(w, a.Users.Error()); err != nil {
		return err
	}
	if err := RenderError(w, a.err); err != nil {
		return err
	}
	list, _ := a.Users.Data()
	if err := renderUsers(w, list); err != nil {
		return err
	}
	switch {
	case a.editing != nil:
		fmt.Fprintf(w, "\nEditing %s (leave password blank to keep current)\n", a.editing.Email)
	case a.creating:
		fmt.Fprintln(w, "\nCreating new user")
	}
	return nil
}
