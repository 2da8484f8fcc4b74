package screens

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/jrsteele09/go-auth-shell/apiclient"
	"github.com/jrsteele09/go-auth-shell/internal/utils"
	"github.com/jrsteele09/go-auth-shell/users"
)

type ProfileAPI interface {
	UserProfile(ctx context.Context) apiclient.Response[users.User]
	UpdateUserProfile(ctx context.Context, update users.Update) apiclient.Response[users.User]
}

type Profile struct {
	api     ProfileAPI
	Profile Loader[users.User]
	err     string
}

func NewProfile(api ProfileAPI) *Profile {
	return &Profile{api: api}
}

func (p *Profile) Load(ctx context.Context) bool {
	return p.Profile.Execute(ctx, p.api.UserProfile)
}

func (p *Profile) Error() string {
	return p.err
}

// Update changes the name and, when given, the password. Blank values are left
// unchanged. The profile is reloaded on success.
func (p *Profile) Update(ctx context.Context, name, password string) bool {
	update := users.Update{
		Name:     utils.NonBlank(strings.TrimSpace(name)),
		Password: utils.NonBlank(password),
	}
	if update.Name == nil && update.Password == nil {
		p.err = "Nothing to update"
		return false
	}
	if update.Password != nil {
		if err := users.ValidatePassword(*update.Password); err != nil {
			p.err = err.Error()
			return false
		}
	}
	res := p.api.UpdateUserProfile(ctx, update)
	if !res.Success {
		p.err = res.Error
		return false
	}
	p.err = ""
	p.Load(ctx)
	return true
}

func (p *Profile) Render(w io.Writer) error {
	if p.Profile.Loading() {
		return RenderLoading(w)
	}
	heading(w, "Profile")
	if err := RenderError(w, p.Profile.Error()); err != nil {
		return err
	}
	if err := RenderError(w, p.err); err != nil {
		return err
	}
	u, ok := p.Profile.Data()
	if !ok {
		return nil
	}
	tw := newTable(w)
	fmt.Fprintf(tw, "ID\t%s\n", u.ID)
	fmt.Fprintf(tw, "Name\t%s\n", u.Name)
	fmt.Fprintf(tw, "Email\t%s\n", u.Email)
	fmt.Fprintf(tw, "Role\t%s\n", roleBadge(u.Role.String()))
	if !u.CreatedAt.IsZero() {
		fmt.Fprintf(tw, "Member since\t%s\n", u.CreatedAt.Format("2006-01-02"))
	}
	return tw.Flush()
}
