package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/jrsteele09/go-auth-shell/users"
)

// Aggregate is a free-form dashboard or report payload.
type Aggregate map[string]any

// Message returns the top-level "message" field, if any.
func (a Aggregate) Message() string {
	s, _ := a["message"].(string)
	return s
}

// Body returns the nested "data", "reports" or "stats" object when present,
// otherwise the aggregate itself without its message.
func (a Aggregate) Body() map[string]any {
	for _, key := range []string{"data", "reports", "stats"} {
		if m, ok := a[key].(map[string]any); ok {
			return m
		}
	}
	out := make(map[string]any, len(a))
	for k, v := range a {
		if k != "message" {
			out[k] = v
		}
	}
	return out
}

// decodeUser accepts {"user":{...}}, {"profile":{...}} or a bare user object.
func decodeUser(raw json.RawMessage) (users.User, error) {
	var wrapped struct {
		User    *users.APIUser `json:"user"`
		Profile *users.APIUser `json:"profile"`
	}
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return users.User{}, fmt.Errorf("decode user: %w", err)
	}
	switch {
	case wrapped.User != nil:
		return wrapped.User.Normalize(), nil
	case wrapped.Profile != nil:
		return wrapped.Profile.Normalize(), nil
	}
	var bare users.APIUser
	if err := json.Unmarshal(raw, &bare); err != nil {
		return users.User{}, fmt.Errorf("decode user: %w", err)
	}
	if bare.ID == "" && bare.Email == "" {
		return users.User{}, fmt.Errorf("decode user: no user in response")
	}
	return bare.Normalize(), nil
}

// decodeUsers accepts a bare array or {"users":[...]}.
func decodeUsers(raw json.RawMessage) ([]users.User, error) {
	raw = bytes.TrimSpace(raw)
	var list []users.APIUser
	if len(raw) > 0 && raw[0] == '[' {
		if err := json.Unmarshal(raw, &list); err != nil {
			return nil, fmt.Errorf("decode users: %w", err)
		}
		return users.NormalizeAll(list), nil
	}
	var wrapped struct {
		Users []users.APIUser `json:"users"`
	}
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}
	return users.NormalizeAll(wrapped.Users), nil
}

// CurrentUser fetches the signed-in user, normalized to camelCase fields.
func (c *Client) CurrentUser(ctx context.Context) Response[users.User] {
	c.logger.Debug().Msg("get current user request")
	return Map(c.Do(ctx, Request{Endpoint: EndpointUserMe}), decodeUser)
}

func (c *Client) UserProfile(ctx context.Context) Response[users.User] {
	c.logger.Debug().Msg("get user profile request")
	return Map(c.Do(ctx, Request{Endpoint: EndpointUserProfile}), decodeUser)
}

// UpdateUserProfile sends a partial update. Servers that answer with only a
// message yield the zero User.
func (c *Client) UpdateUserProfile(ctx context.Context, update users.Update) Response[users.User] {
	c.logger.Debug().Msg("update user profile request")
	return Map(c.Do(ctx, Request{Method: http.MethodPut, Endpoint: EndpointUserProfile, Body: update}), decodeOptionalUser)
}

func (c *Client) UserDashboard(ctx context.Context) Response[Aggregate] {
	c.logger.Debug().Msg("get user dashboard request")
	return call[Aggregate](ctx, c, Request{Endpoint: EndpointUserDashboard})
}

func decodeOptionalUser(raw json.RawMessage) (users.User, error) {
	u, err := decodeUser(raw)
	if err != nil {
		return users.User{}, nil
	}
	return u, nil
}

func withQuery(endpoint string, query url.Values) string {
	if len(query) == 0 {
		return endpoint
	}
	return endpoint + "?" + query.Encode()
}
