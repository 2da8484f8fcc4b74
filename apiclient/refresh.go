package apiclient

import (
	"context"
	"net/http"
)

type refreshOutcome int

const (
	// No stored refresh credential; nothing was sent and nothing was wiped.
	refreshUnavailable refreshOutcome = iota
	refreshSucceeded
	// The refresh call failed and both credentials were wiped.
	refreshFailed
)

// RefreshRequest is the refresh endpoint payload.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// RefreshResponse carries the new access credential and, when rotated, a new
// refresh credential.
type RefreshResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refresh_token,omitempty"`
}

// Refresh runs the refresh sub-protocol outside of a failed request and reports
// whether a new access credential was obtained.
func (c *Client) Refresh(ctx context.Context) bool {
	return c.refresh(ctx) == refreshSucceeded
}

func (c *Client) refresh(ctx context.Context) refreshOutcome {
	refreshToken, ok := c.store.RefreshToken(ctx)
	if !ok {
		c.logger.Debug().Msg("no refresh token available")
		return refreshUnavailable
	}

	res := Decode[RefreshResponse](c.send(ctx, Request{
		Method:   http.MethodPost,
		Endpoint: EndpointRefresh,
		Body:     RefreshRequest{RefreshToken: refreshToken},
	}, ""))

	if res.Success && res.Data.AccessToken != "" {
		c.SetAccessToken(res.Data.AccessToken)
		c.store.SaveAccessToken(ctx, res.Data.AccessToken)
		if res.Data.RefreshToken != "" {
			c.store.SaveRefreshToken(ctx, res.Data.RefreshToken)
		}
		c.logger.Debug().Bool("rotated", res.Data.RefreshToken != "").Msg("token refresh successful")
		return refreshSucceeded
	}

	c.logger.Info().Str("reason", res.Error).Int("status", res.StatusCode).Msg("token refresh failed, clearing credentials")
	c.store.Clear(ctx)
	c.SetAccessToken("")
	c.notifyRefreshFailure()
	return refreshFailed
}

func (c *Client) notifyRefreshFailure() {
	c.hooksMu.Lock()
	hooks := append([]func(){}, c.onRefreshFailure...)
	c.hooksMu.Unlock()
	for _, fn := range hooks {
		fn()
	}
}
