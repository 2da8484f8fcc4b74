package apiclient

import "context"

type Health struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

func (c *Client) Health(ctx context.Context) Response[Health] {
	c.logger.Debug().Msg("health check request")
	return call[Health](ctx, c, Request{Endpoint: EndpointHealth})
}
