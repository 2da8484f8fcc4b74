package sessions_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/jrsteele09/go-auth-shell/apiclient"
	"github.com/jrsteele09/go-auth-shell/credentials"
	"github.com/jrsteele09/go-auth-shell/sessions"
	"github.com/jrsteele09/go-auth-shell/users"
	"github.com/stretchr/testify/require"
)

type reply struct {
	status int
	body   string
}

// backend answers each endpoint with a fixed reply and counts hits.
type backend struct {
	mu      sync.Mutex
	replies map[string]reply
	hits    map[string]int
}

func (b *backend) set(endpoint string, status int, body string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.replies[endpoint] = reply{status: status, body: body}
}

func (b *backend) count(endpoint string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.hits[endpoint]
}

func (b *backend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	b.hits[r.URL.Path]++
	rep, ok := b.replies[r.URL.Path]
	b.mu.Unlock()
	if !ok {
		rep = reply{status: http.StatusNotFound, body: `{"error":"not found"}`}
	}
	w.WriteHeader(rep.status)
	_, _ = w.Write([]byte(rep.body))
}

type fixture struct {
	backend    *backend
	store      *credentials.Store
	client     *apiclient.Client
	controller *sessions.Controller
}

func newFixture(t *testing.T, medium credentials.Medium) *fixture {
	t.Helper()
	b := &backend{replies: map[string]reply{}, hits: map[string]int{}}
	srv := httptest.NewServer(b)
	t.Cleanup(srv.Close)

	store := credentials.NewStore(medium)
	client := apiclient.New(srv.URL, store)
	return &fixture{
		backend:    b,
		store:      store,
		client:     client,
		controller: sessions.New(client, store),
	}
}

const userJSON = `{"id":"1","email":"a@b.com","name":"A","role":"user"}`

func requireInvariant(t *testing.T, s sessions.Session) {
	t.Helper()
	require.Equal(t, s.User != nil, s.IsAuthenticated)
}

func TestController_Login(t *testing.T) {
	ctx := context.Background()

	t.Run("token and user authenticates", func(t *testing.T) {
		f := newFixture(t, credentials.NewMemoryMedium())
		f.controller.Bootstrap(ctx)
		f.backend.set(apiclient.EndpointLogin, http.StatusOK, `{"token":"tok1","user":`+userJSON+`}`)

		ok := f.controller.Login(ctx, apiclient.LoginRequest{Email: "a@b.com", Password: "x"})
		require.True(t, ok)
		require.Equal(t, sessions.StatusAuthenticated, f.controller.Status())
		require.False(t, f.controller.Busy())

		s := f.controller.Snapshot()
		require.True(t, s.IsAuthenticated)
		require.False(t, s.Loading)
		require.Empty(t, s.Error)
		require.Equal(t, "1", s.User.ID)
		require.Equal(t, users.RoleUser, s.User.Role)

		access, ok := f.store.AccessToken(ctx)
		require.True(t, ok)
		require.Equal(t, "tok1", access)
		_, ok = f.store.RefreshToken(ctx)
		require.False(t, ok)
		require.Equal(t, "tok1", f.client.AccessToken())
	})

	t.Run("refresh token is stored when returned", func(t *testing.T) {
		f := newFixture(t, credentials.NewMemoryMedium())
		f.backend.set(apiclient.EndpointLogin, http.StatusOK, `{"token":"tok1","refresh_token":"r1","user":`+userJSON+`}`)

		require.True(t, f.controller.Login(ctx, apiclient.LoginRequest{}))
		require.Equal(t, credentials.Pair{AccessToken: "tok1", RefreshToken: "r1"}, f.store.Pair(ctx))
	})

	t.Run("signing in again replaces the whole pair", func(t *testing.T) {
		f := newFixture(t, credentials.NewMemoryMedium())
		f.controller.Bootstrap(ctx)
		f.backend.set(apiclient.EndpointLogin, http.StatusOK, `{"token":"tokA","refresh_token":"refA","user":`+userJSON+`}`)
		require.True(t, f.controller.Login(ctx, apiclient.LoginRequest{Email: "a@b.com", Password: "x"}))
		require.Equal(t, credentials.Pair{AccessToken: "tokA", RefreshToken: "refA"}, f.store.Pair(ctx))

		f.backend.set(apiclient.EndpointLogin, http.StatusOK, `{"token":"tokB","user":{"id":"2","email":"b@b.com","name":"B","role":"user"}}`)
		require.True(t, f.controller.Login(ctx, apiclient.LoginRequest{Email: "b@b.com", Password: "y"}))
		require.Equal(t, credentials.Pair{AccessToken: "tokB"}, f.store.Pair(ctx))
		require.Equal(t, "2", f.controller.Snapshot().User.ID)

		// with no refresh token left, a 401 for B must not refresh with A's credential
		f.backend.set(apiclient.EndpointUserMe, http.StatusUnauthorized, `{"error":"expired"}`)
		res := f.client.CurrentUser(ctx)
		require.False(t, res.Success)
		require.Equal(t, 0, f.backend.count(apiclient.EndpointRefresh))
	})

	t.Run("missing token is a handled failure", func(t *testing.T) {
		f := newFixture(t, credentials.NewMemoryMedium())
		f.controller.Bootstrap(ctx)
		f.backend.set(apiclient.EndpointLogin, http.StatusOK, `{"user":`+userJSON+`}`)

		require.False(t, f.controller.Login(ctx, apiclient.LoginRequest{}))
		s := f.controller.Snapshot()
		require.Equal(t, sessions.MissingTokenMessage, s.Error)
		require.False(t, s.IsAuthenticated)
		require.False(t, s.Loading)
		require.Equal(t, sessions.StatusUnauthenticated, f.controller.Status())
		require.Equal(t, credentials.Pair{}, f.store.Pair(ctx))
	})

	t.Run("server error is recorded", func(t *testing.T) {
		f := newFixture(t, credentials.NewMemoryMedium())
		f.controller.Bootstrap(ctx)
		f.backend.set(apiclient.EndpointLogin, http.StatusUnauthorized, `{"error":"Invalid credentials"}`)

		require.False(t, f.controller.Login(ctx, apiclient.LoginRequest{}))
		require.Equal(t, "Invalid credentials", f.controller.Snapshot().Error)

		// the next action clears the previous error
		f.backend.set(apiclient.EndpointLogin, http.StatusOK, `{"token":"tok1","user":`+userJSON+`}`)
		require.True(t, f.controller.Login(ctx, apiclient.LoginRequest{}))
		require.Empty(t, f.controller.Snapshot().Error)
	})

	t.Run("token without user loads the current user", func(t *testing.T) {
		f := newFixture(t, credentials.NewMemoryMedium())
		f.backend.set(apiclient.EndpointLogin, http.StatusOK, `{"token":"tok1"}`)
		f.backend.set(apiclient.EndpointUserMe, http.StatusOK, `{"user":`+userJSON+`}`)

		require.True(t, f.controller.Login(ctx, apiclient.LoginRequest{}))
		require.Equal(t, "a@b.com", f.controller.Snapshot().User.Email)
		require.Equal(t, 1, f.backend.count(apiclient.EndpointUserMe))
	})
}

func TestController_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("stores both credentials and signs in", func(t *testing.T) {
		f := newFixture(t, credentials.NewMemoryMedium())
		f.backend.set(apiclient.EndpointRegister, http.StatusCreated,
			`{"user":`+userJSON+`,"accessToken":"a1","refreshToken":"r1"}`)

		require.True(t, f.controller.Register(ctx, apiclient.RegisterRequest{Email: "a@b.com", Password: "secret"}))
		require.Equal(t, sessions.StatusAuthenticated, f.controller.Status())
		require.Equal(t, credentials.Pair{AccessToken: "a1", RefreshToken: "r1"}, f.store.Pair(ctx))
	})

	t.Run("account created without a session asks the user to sign in", func(t *testing.T) {
		f := newFixture(t, credentials.NewMemoryMedium())
		f.backend.set(apiclient.EndpointRegister, http.StatusCreated, `{"user":`+userJSON+`,"message":"created"}`)

		require.False(t, f.controller.Register(ctx, apiclient.RegisterRequest{}))
		require.Equal(t, sessions.RegisteredWithoutSessionMessage, f.controller.Snapshot().Error)
		require.False(t, f.controller.Snapshot().IsAuthenticated)
		require.Equal(t, credentials.Pair{}, f.store.Pair(ctx))
	})

	t.Run("conflict", func(t *testing.T) {
		f := newFixture(t, credentials.NewMemoryMedium())
		f.backend.set(apiclient.EndpointRegister, http.StatusConflict, `{"error":"User already exists"}`)

		require.False(t, f.controller.Register(ctx, apiclient.RegisterRequest{}))
		require.Equal(t, "User already exists", f.controller.Snapshot().Error)
	})
}

func TestController_Bootstrap(t *testing.T) {
	ctx := context.Background()

	t.Run("starts loading", func(t *testing.T) {
		f := newFixture(t, credentials.NewMemoryMedium())
		require.Equal(t, sessions.StatusBootstrapping, f.controller.Status())
		require.True(t, f.controller.Snapshot().Loading)
	})

	t.Run("no durable storage", func(t *testing.T) {
		f := newFixture(t, nil)
		f.controller.Bootstrap(ctx)
		require.Equal(t, sessions.StatusUnauthenticated, f.controller.Status())
		require.False(t, f.controller.Snapshot().Loading)
		require.Equal(t, 0, f.backend.count(apiclient.EndpointUserMe))
	})

	t.Run("no stored token", func(t *testing.T) {
		f := newFixture(t, credentials.NewMemoryMedium())
		f.controller.Bootstrap(ctx)
		require.Equal(t, sessions.StatusUnauthenticated, f.controller.Status())
		require.Equal(t, 0, f.backend.count(apiclient.EndpointUserMe))
	})

	t.Run("stored token restores the user", func(t *testing.T) {
		f := newFixture(t, credentials.NewMemoryMedium())
		f.store.SaveAccessToken(ctx, "tok1")
		f.backend.set(apiclient.EndpointUserMe, http.StatusOK, `{"user":`+userJSON+`}`)

		f.controller.Bootstrap(ctx)
		f.controller.Bootstrap(ctx)
		require.Equal(t, sessions.StatusAuthenticated, f.controller.Status())
		require.Equal(t, "tok1", f.client.AccessToken())
		require.Equal(t, 1, f.backend.count(apiclient.EndpointUserMe))
		require.False(t, f.controller.Snapshot().Loading)
	})

	t.Run("rejected token wipes credentials", func(t *testing.T) {
		f := newFixture(t, credentials.NewMemoryMedium())
		f.store.SaveAccessToken(ctx, "tok1")
		f.backend.set(apiclient.EndpointUserMe, http.StatusInternalServerError, `{"error":"boom"}`)

		f.controller.Bootstrap(ctx)
		require.Equal(t, sessions.StatusUnauthenticated, f.controller.Status())
		require.Equal(t, credentials.Pair{}, f.store.Pair(ctx))
		require.Empty(t, f.client.AccessToken())
	})

	t.Run("expired token refreshes during restore", func(t *testing.T) {
		f := newFixture(t, credentials.NewMemoryMedium())
		f.store.SaveAccessToken(ctx, "stale")
		f.store.SaveRefreshToken(ctx, "r1")
		f.backend.set(apiclient.EndpointUserMe, http.StatusUnauthorized, `{"error":"expired"}`)
		f.backend.set(apiclient.EndpointRefresh, http.StatusUnauthorized, `{"error":"invalid refresh token"}`)

		f.controller.Bootstrap(ctx)
		require.Equal(t, sessions.StatusUnauthenticated, f.controller.Status())
		require.Equal(t, 1, f.backend.count(apiclient.EndpointRefresh))
		require.Equal(t, credentials.Pair{}, f.store.Pair(ctx))
	})
}

func TestController_Logout(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, credentials.NewMemoryMedium())
	f.backend.set(apiclient.EndpointLogin, http.StatusOK, `{"token":"tok1","refresh_token":"r1","user":`+userJSON+`}`)
	f.backend.set(apiclient.EndpointLogout, http.StatusInternalServerError, `{"error":"boom"}`)
	require.True(t, f.controller.Login(ctx, apiclient.LoginRequest{}))

	f.controller.Logout(ctx)
	require.Equal(t, sessions.StatusUnauthenticated, f.controller.Status())
	require.Equal(t, sessions.Session{}, f.controller.Snapshot())
	require.Equal(t, credentials.Pair{}, f.store.Pair(ctx))
	require.Empty(t, f.client.AccessToken())
	require.Equal(t, 1, f.backend.count(apiclient.EndpointLogout))
}

func TestController_RefreshUser(t *testing.T) {
	ctx := context.Background()

	t.Run("no-op when unauthenticated", func(t *testing.T) {
		f := newFixture(t, credentials.NewMemoryMedium())
		f.controller.Bootstrap(ctx)
		f.controller.RefreshUser(ctx)
		require.Equal(t, 0, f.backend.count(apiclient.EndpointUserMe))
	})

	t.Run("replaces the user on success", func(t *testing.T) {
		f := newFixture(t, credentials.NewMemoryMedium())
		f.backend.set(apiclient.EndpointLogin, http.StatusOK, `{"token":"tok1","user":`+userJSON+`}`)
		require.True(t, f.controller.Login(ctx, apiclient.LoginRequest{}))

		f.backend.set(apiclient.EndpointUserMe, http.StatusOK, `{"user":{"id":"1","email":"a@b.com","name":"Renamed","role":"manager"}}`)
		f.controller.RefreshUser(ctx)
		s := f.controller.Snapshot()
		require.Equal(t, "Renamed", s.User.Name)
		require.Equal(t, users.RoleManager, s.User.Role)
		require.False(t, s.Loading)
		require.False(t, f.controller.Busy())
	})

	t.Run("keeps stale user on failure", func(t *testing.T) {
		f := newFixture(t, credentials.NewMemoryMedium())
		f.backend.set(apiclient.EndpointLogin, http.StatusOK, `{"token":"tok1","user":`+userJSON+`}`)
		require.True(t, f.controller.Login(ctx, apiclient.LoginRequest{}))

		f.backend.set(apiclient.EndpointUserMe, http.StatusInternalServerError, `{"error":"boom"}`)
		f.controller.RefreshUser(ctx)
		s := f.controller.Snapshot()
		require.Equal(t, "A", s.User.Name)
		require.Empty(t, s.Error)
		require.Equal(t, sessions.StatusAuthenticated, f.controller.Status())
	})

	t.Run("refresh failure forces sign out", func(t *testing.T) {
		f := newFixture(t, credentials.NewMemoryMedium())
		f.backend.set(apiclient.EndpointLogin, http.StatusOK, `{"token":"tok1","refresh_token":"r1","user":`+userJSON+`}`)
		require.True(t, f.controller.Login(ctx, apiclient.LoginRequest{}))

		f.backend.set(apiclient.EndpointUserMe, http.StatusUnauthorized, `{"error":"expired"}`)
		f.backend.set(apiclient.EndpointRefresh, http.StatusUnauthorized, `{"error":"invalid refresh token"}`)
		f.controller.RefreshUser(ctx)

		require.Equal(t, sessions.StatusUnauthenticated, f.controller.Status())
		s := f.controller.Snapshot()
		require.Nil(t, s.User)
		require.False(t, s.IsAuthenticated)
		require.Equal(t, credentials.Pair{}, f.store.Pair(ctx))
	})
}

func TestController_PasswordFlows(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, credentials.NewMemoryMedium())
	f.controller.Bootstrap(ctx)

	f.backend.set(apiclient.EndpointForgotPassword, http.StatusNotFound, `{"error":"User not found"}`)
	_, ok := f.controller.ForgotPassword(ctx, "x@y.com")
	require.False(t, ok)
	require.Equal(t, "User not found", f.controller.Snapshot().Error)

	f.backend.set(apiclient.EndpointForgotPassword, http.StatusOK, `{"message":"sent","reset_token":"rt"}`)
	res, ok := f.controller.ForgotPassword(ctx, "a@b.com")
	require.True(t, ok)
	require.Equal(t, "rt", res.ResetToken)
	require.Empty(t, f.controller.Snapshot().Error)

	f.backend.set(apiclient.EndpointResetPassword, http.StatusBadRequest, `{"error":"Invalid or expired reset token"}`)
	require.False(t, f.controller.ResetPassword(ctx, "bad", "newpass"))
	require.Equal(t, "Invalid or expired reset token", f.controller.Snapshot().Error)
	require.Equal(t, sessions.StatusUnauthenticated, f.controller.Status())

	f.controller.ClearError()
	require.Empty(t, f.controller.Snapshot().Error)
}

func TestController_Subscribe(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, credentials.NewMemoryMedium())
	f.backend.set(apiclient.EndpointLogin, http.StatusOK, `{"token":"tok1","user":`+userJSON+`}`)

	var mu sync.Mutex
	var seen []sessions.Session
	unsubscribe := f.controller.Subscribe(func(s sessions.Session) {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, s)
	})

	f.controller.Bootstrap(ctx)
	require.True(t, f.controller.Login(ctx, apiclient.LoginRequest{}))
	f.controller.Logout(ctx)

	mu.Lock()
	observed := len(seen)
	require.NotZero(t, observed)
	sawLoading := false
	for _, s := range seen {
		requireInvariant(t, s)
		sawLoading = sawLoading || s.Loading
	}
	require.True(t, sawLoading)
	mu.Unlock()

	unsubscribe()
	f.controller.ClearError()
	mu.Lock()
	require.Len(t, seen, observed)
	mu.Unlock()
}

func TestStatus_String(t *testing.T) {
	require.Equal(t, "bootstrapping", sessions.StatusBootstrapping.String())
	require.Equal(t, "unauthenticated", sessions.StatusUnauthenticated.String())
	require.Equal(t, "authenticated", sessions.StatusAuthenticated.String())
}
