package apiclient

import (
	"context"
	"net/http"
	"net/url"

	"github.com/jrsteele09/go-auth-shell/users"
)

func (c *Client) ListUsers(ctx context.Context, query url.Values) Response[[]users.User] {
	c.logger.Debug().Msg("get users request")
	return Map(c.Do(ctx, Request{Endpoint: withQuery(EndpointAdminUsers, query)}), decodeUsers)
}

func (c *Client) CreateUser(ctx context.Context, create users.Create) Response[users.User] {
	c.logger.Debug().Str("email", create.Email).Msg("create user request")
	return Map(c.Do(ctx, Request{Method: http.MethodPost, Endpoint: EndpointAdminUsers, Body: create}), decodeOptionalUser)
}

func (c *Client) UpdateUser(ctx context.Context, id string, update users.Update) Response[users.User] {
	c.logger.Debug().Str("user_id", id).Msg("update user request")
	return Map(c.Do(ctx, Request{
		Method:   http.MethodPut,
		Endpoint: EndpointAdminUsers + "/" + url.PathEscape(id),
		Body:     update,
	}), decodeOptionalUser)
}

func (c *Client) DeleteUser(ctx context.Context, id string) Response[MessageResponse] {
	c.logger.Debug().Str("user_id", id).Msg("delete user request")
	return call[MessageResponse](ctx, c, Request{
		Method:   http.MethodDelete,
		Endpoint: EndpointAdminUsers + "/" + url.PathEscape(id),
	})
}

func (c *Client) AdminDashboard(ctx context.Context) Response[Aggregate] {
	c.logger.Debug().Msg("get admin dashboard request")
	return call[Aggregate](ctx, c, Request{Endpoint: EndpointAdminDashboard})
}
