package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/jrsteele09/go-auth-shell/internal/utils"
	"github.com/jrsteele09/go-auth-shell/users"
)

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name,omitempty"`
}

// LoginResponse is the login success body. User is nil when the server omitted it.
type LoginResponse struct {
	Token        string
	RefreshToken string
	User         *users.User
	ExpiresIn    Lifetime
}

// RegisterResponse is the register success body; registration signs the new user in.
type RegisterResponse struct {
	User         *users.User
	Message      string
	AccessToken  string
	RefreshToken string
}

type MessageResponse struct {
	Message string `json:"message"`
}

// ForgotPasswordResponse may carry the reset token directly when the backend runs
// without a mailer.
type ForgotPasswordResponse struct {
	Message    string `json:"message"`
	ResetToken string `json:"reset_token,omitempty"`
}

type ResetPasswordRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

// Lifetime holds an expiry hint sent either as seconds or as a duration string.
type Lifetime string

func (l *Lifetime) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*l = Lifetime(s)
		return nil
	}
	if bytes.Equal(data, []byte("null")) {
		*l = ""
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	if secs, err := strconv.ParseInt(n.String(), 10, 64); err == nil {
		*l = Lifetime(strconv.FormatInt(secs, 10) + "s")
		return nil
	}
	*l = Lifetime(n.String() + "s")
	return nil
}

type loginWire struct {
	Token        string         `json:"token"`
	RefreshToken string         `json:"refresh_token"`
	User         *users.APIUser `json:"user"`
	ExpiresIn    Lifetime       `json:"expiresIn"`
	ExpiresInAlt Lifetime       `json:"expires_in"`
}

type registerWire struct {
	User            *users.APIUser `json:"user"`
	Message         string         `json:"message"`
	AccessToken     string         `json:"accessToken"`
	RefreshToken    string         `json:"refreshToken"`
	AltAccessToken  string         `json:"token"`
	AltRefreshToken string         `json:"refresh_token"`
}

func normalizedPtr(a *users.APIUser) *users.User {
	if a == nil {
		return nil
	}
	u := a.Normalize()
	return &u
}

// Login exchanges credentials for a token pair. It does not store the tokens.
func (c *Client) Login(ctx context.Context, req LoginRequest) Response[LoginResponse] {
	c.logger.Debug().Str("email", req.Email).Msg("login request")
	res := call[loginWire](ctx, c, Request{Method: http.MethodPost, Endpoint: EndpointLogin, Body: req})
	return Map(res, func(w loginWire) (LoginResponse, error) {
		return LoginResponse{
			Token:        w.Token,
			RefreshToken: w.RefreshToken,
			User:         normalizedPtr(w.User),
			ExpiresIn:    utils.Coalesce(w.ExpiresIn, w.ExpiresInAlt),
		}, nil
	})
}

func (c *Client) Register(ctx context.Context, req RegisterRequest) Response[RegisterResponse] {
	c.logger.Debug().Str("email", req.Email).Msg("register request")
	res := call[registerWire](ctx, c, Request{Method: http.MethodPost, Endpoint: EndpointRegister, Body: req})
	return Map(res, func(w registerWire) (RegisterResponse, error) {
		return RegisterResponse{
			User:         normalizedPtr(w.User),
			Message:      w.Message,
			AccessToken:  utils.Coalesce(w.AccessToken, w.AltAccessToken),
			RefreshToken: utils.Coalesce(w.RefreshToken, w.AltRefreshToken),
		}, nil
	})
}

// Logout notifies the server, then clears the stored and in-memory credentials
// whatever the server answered.
func (c *Client) Logout(ctx context.Context) Response[MessageResponse] {
	c.logger.Debug().Msg("logout request")
	res := call[MessageResponse](ctx, c, Request{Method: http.MethodPost, Endpoint: EndpointLogout})
	c.store.Clear(ctx)
	c.SetAccessToken("")
	return res
}

func (c *Client) ForgotPassword(ctx context.Context, email string) Response[ForgotPasswordResponse] {
	c.logger.Debug().Str("email", email).Msg("forgot password request")
	return call[ForgotPasswordResponse](ctx, c, Request{
		Method:   http.MethodPost,
		Endpoint: EndpointForgotPassword,
		Body:     map[string]string{"email": email},
	})
}

func (c *Client) ResetPassword(ctx context.Context, token, password string) Response[MessageResponse] {
	c.logger.Debug().Msg("reset password request")
	return call[MessageResponse](ctx, c, Request{
		Method:   http.MethodPost,
		Endpoint: EndpointResetPassword,
		Body:     ResetPasswordRequest{Token: token, Password: password},
	})
}
