// Package apiclient is the HTTP gateway to the backend API. It attaches the bearer
// credential, normalizes every outcome into a Response, and on a 401 performs a
// single refresh-and-retry cycle.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-auth-shell/credentials"
	"github.com/jrsteele09/go-auth-shell/internal/logging"
	"github.com/rs/zerolog"
)

const requestIDHeader = "X-Request-ID"

// Request describes one API call. Body is JSON encoded unless it is already a
// []byte or json.RawMessage.
type Request struct {
	Method   string
	Endpoint string
	Body     any
	Header   http.Header
}

// Client is safe for concurrent use. The bearer credential is a single shared
// cell that every call reads at send time.
type Client struct {
	baseURL    string
	httpClient *http.Client
	store      *credentials.Store
	logger     zerolog.Logger

	mu          sync.RWMutex
	accessToken string

	hooksMu          sync.Mutex
	onRefreshFailure []func()
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// New creates a gateway for baseURL. store supplies the refresh credential and
// receives rotated credentials; it may be nil.
func New(baseURL string, store *credentials.Store, opts ...Option) *Client {
	c := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{},
		store:      store,
		logger:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger.Debug().Str("base_url", baseURL).Msg("api client initialised")
	return c
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// SetAccessToken replaces the in-memory bearer credential; "" clears it. It does
// not persist the token.
func (c *Client) SetAccessToken(token string) {
	c.mu.Lock()
	c.accessToken = token
	c.mu.Unlock()
	c.logger.Debug().Str("token", logging.TokenPresence(token)).Msg("access token set")
}

func (c *Client) AccessToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.accessToken
}

// OnRefreshFailure registers fn to run whenever a refresh cycle fails terminally
// and the credentials have been wiped.
func (c *Client) OnRefreshFailure(fn func()) {
	c.hooksMu.Lock()
	defer c.hooksMu.Unlock()
	c.onRefreshFailure = append(c.onRefreshFailure, fn)
}

// Do performs req. A 401 received while a bearer credential is set triggers at
// most one refresh and one retry of req.
func (c *Client) Do(ctx context.Context, req Request) Response[json.RawMessage] {
	refreshed := false
	for {
		token := c.AccessToken()
		res := c.send(ctx, req, token)
		if res.Kind != KindAuthExpired || token == "" || refreshed {
			return res
		}

		c.logger.Debug().Str("endpoint", req.Endpoint).Msg("401 received, attempting token refresh")
		switch c.refresh(ctx) {
		case refreshSucceeded:
			refreshed = true
			c.logger.Debug().Str("endpoint", req.Endpoint).Msg("token refreshed, retrying request")
		case refreshFailed:
			res.Kind = KindRefreshFailed
			return res
		default:
			return res
		}
	}
}

func (c *Client) send(ctx context.Context, req Request, token string) (res Response[json.RawMessage]) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error().Interface("panic", r).Str("endpoint", req.Endpoint).Msg("request panicked")
			res = Fail[json.RawMessage](KindTransport, 0, fmt.Sprintf("%v", r))
		}
	}()

	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	body, err := encodeBody(req.Body)
	if err != nil {
		return Fail[json.RawMessage](KindDecode, 0, fmt.Sprintf("encode request: %v", err))
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, c.baseURL+req.Endpoint, body)
	if err != nil {
		return Fail[json.RawMessage](KindTransport, 0, err.Error())
	}
	httpReq.Header.Set("Content-Type", "application/json")
	for k, values := range req.Header {
		httpReq.Header.Del(k)
		for _, v := range values {
			httpReq.Header.Add(k, v)
		}
	}
	if token != "" {
		credentials.Pair{AccessToken: token}.Token().SetAuthHeader(httpReq)
	}
	requestID := httpReq.Header.Get(requestIDHeader)
	if requestID == "" {
		requestID = uuid.NewString()
		httpReq.Header.Set(requestIDHeader, requestID)
	}

	log := c.logger.With().Str("request_id", requestID).Str("method", method).Str("endpoint", req.Endpoint).Logger()
	log.Debug().Str("token", logging.TokenPresence(token)).Msg("sending request")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		log.Warn().Err(err).Msg("network error")
		return Fail[json.RawMessage](KindTransport, 0, err.Error())
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Warn().Err(err).Msg("reading response body")
		return Fail[json.RawMessage](KindTransport, resp.StatusCode, err.Error())
	}
	log.Debug().Int("status", resp.StatusCode).Msg("response received")

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return OK(resp.StatusCode, json.RawMessage(data))
	}

	kind := KindServer
	if resp.StatusCode == http.StatusUnauthorized {
		kind = KindAuthExpired
	}
	return Fail[json.RawMessage](kind, resp.StatusCode, failureMessage(data))
}

func encodeBody(body any) (io.Reader, error) {
	switch b := body.(type) {
	case nil:
		return nil, nil
	case json.RawMessage:
		return bytes.NewReader(b), nil
	case []byte:
		return bytes.NewReader(b), nil
	default:
		data, err := json.Marshal(b)
		if err != nil {
			return nil, err
		}
		return bytes.NewReader(data), nil
	}
}

// call performs req and decodes the success body into T.
func call[T any](ctx context.Context, c *Client, req Request) Response[T] {
	return Decode[T](c.Do(ctx, req))
}
