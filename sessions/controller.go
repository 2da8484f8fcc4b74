// Package sessions holds the in-memory authentication state and the actions that
// move it between bootstrapping, unauthenticated and authenticated.
package sessions

import (
	"context"
	"sync"

	"github.com/jrsteele09/go-auth-shell/apiclient"
	"github.com/jrsteele09/go-auth-shell/credentials"
	"github.com/jrsteele09/go-auth-shell/users"
	"github.com/rs/zerolog"
)

// MissingTokenMessage is recorded when a login or register succeeds without an
// access token.
const MissingTokenMessage = "No access token found in server response"

// RegisteredWithoutSessionMessage is recorded when registration succeeds but the
// server does not sign the new account in.
const RegisteredWithoutSessionMessage = "Account created. Please sign in to continue."

// Gateway is the subset of the API client the controller drives.
type Gateway interface {
	SetAccessToken(token string)
	OnRefreshFailure(fn func())
	Login(ctx context.Context, req apiclient.LoginRequest) apiclient.Response[apiclient.LoginResponse]
	Register(ctx context.Context, req apiclient.RegisterRequest) apiclient.Response[apiclient.RegisterResponse]
	Logout(ctx context.Context) apiclient.Response[apiclient.MessageResponse]
	ForgotPassword(ctx context.Context, email string) apiclient.Response[apiclient.ForgotPasswordResponse]
	ResetPassword(ctx context.Context, token, password string) apiclient.Response[apiclient.MessageResponse]
	CurrentUser(ctx context.Context) apiclient.Response[users.User]
}

var _ Gateway = (*apiclient.Client)(nil)

// Controller owns one Session. It is safe for concurrent use; Busy is advisory and
// does not serialize actions.
type Controller struct {
	gateway Gateway
	store   *credentials.Store
	logger  zerolog.Logger

	mu      sync.RWMutex
	session Session
	status  Status
	busy    int

	listenersMu sync.Mutex
	listeners   map[int]func(Session)
	nextID      int

	bootstrap sync.Once
}

type Option func(*Controller)

func WithLogger(logger zerolog.Logger) Option {
	return func(c *Controller) {
		c.logger = logger
	}
}

// New creates a controller in the bootstrapping state. A refresh failure reported
// by the gateway forces it to unauthenticated.
func New(gateway Gateway, store *credentials.Store, opts ...Option) *Controller {
	c := &Controller{
		gateway:   gateway,
		store:     store,
		logger:    zerolog.Nop(),
		session:   initialSession(),
		status:    StatusBootstrapping,
		listeners: make(map[int]func(Session)),
	}
	for _, opt := range opts {
		opt(c)
	}
	gateway.OnRefreshFailure(c.forceLogout)
	return c
}

// Snapshot returns a copy of the current session.
func (c *Controller) Snapshot() Session {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.session.clone()
}

func (c *Controller) Status() Status {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.status
}

// Busy reports whether an action is in flight.
func (c *Controller) Busy() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.busy > 0
}

// Subscribe registers fn to receive a snapshot after every state change. The
// returned func removes it.
func (c *Controller) Subscribe(fn func(Session)) func() {
	c.listenersMu.Lock()
	defer c.listenersMu.Unlock()
	id := c.nextID
	c.nextID++
	c.listeners[id] = fn
	return func() {
		c.listenersMu.Lock()
		defer c.listenersMu.Unlock()
		delete(c.listeners, id)
	}
}

func (c *Controller) ClearError() {
	c.update(func(s *Session) {
		s.Error = ""
	})
}

// Bootstrap restores the session from the credential store. Only the first call
// has any effect.
func (c *Controller) Bootstrap(ctx context.Context) {
	c.bootstrap.Do(func() {
		c.restore(ctx)
	})
}

func (c *Controller) restore(ctx context.Context) {
	if err := c.store.Check(); err != nil {
		c.logger.Debug().Err(err).Msg("starting unauthenticated")
		c.setUnauthenticated()
		return
	}
	token, ok := c.store.AccessToken(ctx)
	if !ok {
		c.logger.Debug().Msg("no stored access token, starting unauthenticated")
		c.setUnauthenticated()
		return
	}

	c.gateway.SetAccessToken(token)
	res := c.gateway.CurrentUser(ctx)
	if !res.Success {
		c.logger.Info().Str("reason", res.Error).Msg("stored session rejected, clearing credentials")
		c.wipeCredentials(ctx)
		c.setUnauthenticated()
		return
	}
	c.logger.Debug().Str("user_id", res.Data.ID).Msg("session restored")
	c.setAuthenticated(res.Data)
}

// Login signs in with email and password and reports whether the session is now
// authenticated.
func (c *Controller) Login(ctx context.Context, req apiclient.LoginRequest) bool {
	end := c.begin(true)
	defer end()

	res := c.gateway.Login(ctx, req)
	if !res.Success {
		c.logger.Info().Str("email", req.Email).Str("reason", res.Error).Msg("login failed")
		c.fail(res.Error)
		return false
	}
	if res.Data.Token == "" {
		c.logger.Warn().Str("email", req.Email).Msg("login response without access token")
		c.fail(MissingTokenMessage)
		return false
	}
	return c.establish(ctx, res.Data.Token, res.Data.RefreshToken, res.Data.User)
}

// Register creates an account and signs the new user in.
func (c *Controller) Register(ctx context.Context, req apiclient.RegisterRequest) bool {
	end := c.begin(true)
	defer end()

	res := c.gateway.Register(ctx, req)
	if !res.Success {
		c.logger.Info().Str("email", req.Email).Str("reason", res.Error).Msg("registration failed")
		c.fail(res.Error)
		return false
	}
	if res.Data.AccessToken == "" {
		c.logger.Warn().Str("email", req.Email).Msg("register response without access token")
		c.fail(RegisteredWithoutSessionMessage)
		return false
	}
	if res.Data.RefreshToken == "" {
		c.logger.Warn().Str("email", req.Email).Msg("register response without refresh token")
	}
	return c.establish(ctx, res.Data.AccessToken, res.Data.RefreshToken, res.Data.User)
}

// establish persists a fresh credential pair and authenticates with user, fetching
// the user when the server did not return one.
func (c *Controller) establish(ctx context.Context, access, refresh string, user *users.User) bool {
	c.store.SaveAccessToken(ctx, access)
	if refresh != "" {
		c.store.SaveRefreshToken(ctx, refresh)
	} else {
		// a refresh token left by an earlier sign-in belongs to another pair
		c.store.Delete(ctx, credentials.RefreshTokenName)
	}
	c.gateway.SetAccessToken(access)

	if user == nil {
		res := c.gateway.CurrentUser(ctx)
		if !res.Success {
			c.logger.Info().Str("reason", res.Error).Msg("could not load signed-in user")
			c.wipeCredentials(ctx)
			c.fail(res.Error)
			return false
		}
		user = &res.Data
	}
	c.logger.Info().Str("user_id", user.ID).Str("role", user.Role.String()).Msg("signed in")
	c.setAuthenticated(*user)
	return true
}

// Logout ends the session whatever the server answers.
func (c *Controller) Logout(ctx context.Context) {
	res := c.gateway.Logout(ctx)
	if !res.Success {
		c.logger.Debug().Str("reason", res.Error).Msg("server logout failed")
	}
	c.wipeCredentials(ctx)
	c.setUnauthenticated()
	c.logger.Info().Msg("signed out")
}

// ForgotPassword requests a reset email. The response may carry the reset token
// when the backend has no mailer.
func (c *Controller) ForgotPassword(ctx context.Context, email string) (apiclient.ForgotPasswordResponse, bool) {
	end := c.begin(false)
	defer end()

	res := c.gateway.ForgotPassword(ctx, email)
	if !res.Success {
		c.fail(res.Error)
		return apiclient.ForgotPasswordResponse{}, false
	}
	return res.Data, true
}

func (c *Controller) ResetPassword(ctx context.Context, token, password string) bool {
	end := c.begin(false)
	defer end()

	res := c.gateway.ResetPassword(ctx, token, password)
	if !res.Success {
		c.fail(res.Error)
		return false
	}
	return true
}

// RefreshUser reloads the signed-in user. Failures keep the current user and
// record no error.
func (c *Controller) RefreshUser(ctx context.Context) {
	if c.Status() != StatusAuthenticated {
		return
	}

	c.mu.Lock()
	c.busy++
	c.session.Loading = true
	c.mu.Unlock()
	c.notify()

	res := c.gateway.CurrentUser(ctx)

	c.update(func(s *Session) {
		c.busy--
		if c.busy == 0 {
			s.Loading = false
		}
		if res.Success && c.status == StatusAuthenticated {
			u := res.Data
			s.User = &u
		}
	})
	if !res.Success {
		c.logger.Debug().Str("reason", res.Error).Msg("user refresh failed, keeping current user")
	}
}

// begin marks an action in flight and clears the error. The returned func ends it.
func (c *Controller) begin(loading bool) func() {
	c.update(func(s *Session) {
		c.busy++
		s.Error = ""
		if loading {
			s.Loading = true
		}
	})
	return func() {
		c.update(func(s *Session) {
			c.busy--
			if c.busy == 0 {
				s.Loading = false
			}
		})
	}
}

func (c *Controller) fail(message string) {
	c.update(func(s *Session) {
		s.Error = message
	})
}

func (c *Controller) setAuthenticated(user users.User) {
	c.update(func(s *Session) {
		s.User = &user
		s.IsAuthenticated = true
		s.Loading = c.busy > 0
		s.Error = ""
		c.status = StatusAuthenticated
	})
}

func (c *Controller) setUnauthenticated() {
	c.update(func(s *Session) {
		s.User = nil
		s.IsAuthenticated = false
		s.Loading = c.busy > 0
		s.Error = ""
		c.status = StatusUnauthenticated
	})
}

func (c *Controller) wipeCredentials(ctx context.Context) {
	c.store.Clear(ctx)
	c.gateway.SetAccessToken("")
}

// forceLogout runs when the gateway has wiped the credentials after a failed
// refresh.
func (c *Controller) forceLogout() {
	c.logger.Info().Msg("credential refresh failed, forcing sign out")
	c.setUnauthenticated()
}

// update applies fn under the state lock and then notifies subscribers.
func (c *Controller) update(fn func(s *Session)) {
	c.mu.Lock()
	fn(&c.session)
	c.mu.Unlock()
	c.notify()
}

func (c *Controller) notify() {
	snapshot := c.Snapshot()
	c.listenersMu.Lock()
	listeners := make([]func(Session), 0, len(c.listeners))
	for _, fn := range c.listeners {
		listeners = append(listeners, fn)
	}
	c.listenersMu.Unlock()
	for _, fn := range listeners {
		fn(snapshot)
	}
}
