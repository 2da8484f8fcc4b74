package apiclient

import (
	"context"
	"net/url"
)

func (c *Client) Reports(ctx context.Context, query url.Values) Response[Aggregate] {
	c.logger.Debug().Msg("get reports request")
	return call[Aggregate](ctx, c, Request{Endpoint: withQuery(EndpointManagerReports, query)})
}

func (c *Client) ManagerDashboard(ctx context.Context) Response[Aggregate] {
	return call[Aggregate](ctx, c, Request{Endpoint: EndpointManagerDashboard})
}
