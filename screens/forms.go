package screens

import (
	"net/mail"
	"strings"

	"github.com/jrsteele09/go-auth-shell/apiclient"
	"github.com/jrsteele09/go-auth-shell/internal/errors"
	"github.com/jrsteele09/go-auth-shell/users"
)

var ErrPasswordMismatch = errors.Wrapf(errors.ErrInvalidInput, "Passwords do not match")

func validateEmail(email string) error {
	if strings.TrimSpace(email) == "" {
		return errors.Wrapf(errors.ErrInvalidInput, "Email is required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return errors.Wrapf(errors.ErrInvalidInput, "Invalid email address")
	}
	return nil
}

func validatePasswordPair(password, confirm string) error {
	if password != confirm {
		return ErrPasswordMismatch
	}
	if err := users.ValidatePassword(password); err != nil {
		return errors.Wrapf(errors.ErrInvalidInput, "%s", err.Error())
	}
	return nil
}

type LoginForm struct {
	Email    string
	Password string
}

func (f LoginForm) Validate() error {
	if err := validateEmail(f.Email); err != nil {
		return err
	}
	if f.Password == "" {
		return errors.Wrapf(errors.ErrInvalidInput, "Password is required")
	}
	return nil
}

func (f LoginForm) Request() apiclient.LoginRequest {
	return apiclient.LoginRequest{Email: strings.TrimSpace(f.Email), Password: f.Password}
}

// RegisterForm requires the password to be typed twice.
type RegisterForm struct {
	Name            string
	Email           string
	Password        string
	ConfirmPassword string
}

func (f RegisterForm) Validate() error {
	if err := validateEmail(f.Email); err != nil {
		return err
	}
	return validatePasswordPair(f.Password, f.ConfirmPassword)
}

func (f RegisterForm) Request() apiclient.RegisterRequest {
	return apiclient.RegisterRequest{
		Email:    strings.TrimSpace(f.Email),
		Password: f.Password,
		Name:     strings.TrimSpace(f.Name),
	}
}

type ForgotPasswordForm struct {
	Email string
}

func (f ForgotPasswordForm) Validate() error {
	return validateEmail(f.Email)
}

type ResetPasswordForm struct {
	Token           string
	Password        string
	ConfirmPassword string
}

func (f ResetPasswordForm) Validate() error {
	if strings.TrimSpace(f.Token) == "" {
		return errors.Wrapf(errors.ErrInvalidInput, "Reset token is required")
	}
	return validatePasswordPair(f.Password, f.ConfirmPassword)
}

// FormMessage strips the taxonomy prefix from a form validation error.
func FormMessage(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	if i := strings.LastIndex(msg, ": "+errors.ErrInvalidInput.Error()); i >= 0 {
		return msg[:i]
	}
	return msg
}
