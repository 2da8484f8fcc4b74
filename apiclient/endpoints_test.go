package apiclient_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"github.com/jrsteele09/go-auth-shell/apiclient"
	"github.com/jrsteele09/go-auth-shell/credentials"
	"github.com/jrsteele09/go-auth-shell/internal/utils"
	"github.com/jrsteele09/go-auth-shell/users"
	"github.com/stretchr/testify/require"
)

type recorded struct {
	method string
	uri    string
	body   string
}

type recorder struct {
	mu   sync.Mutex
	last recorded
}

func (r *recorder) get() recorded {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.last
}

// serve answers every request with status and body and records the last request.
func serve(t *testing.T, status int, body string) (*apiclient.Client, *credentials.Store, *recorder) {
	t.Helper()
	rec := &recorder{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		rec.mu.Lock()
		rec.last = recorded{method: r.Method, uri: r.URL.RequestURI(), body: string(data)}
		rec.mu.Unlock()
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	store := credentials.NewStore(credentials.NewMemoryMedium())
	return apiclient.New(srv.URL, store), store, rec
}

func TestClient_Login(t *testing.T) {
	ctx := context.Background()

	t.Run("decodes token, user and expiry", func(t *testing.T) {
		client, store, rec := serve(t, http.StatusOK,
			`{"token":"tok1","refresh_token":"r1","user":{"id":1,"email":"a@b.com","role":{"name":"admin"}},"expires_in":"24h"}`)

		res := client.Login(ctx, apiclient.LoginRequest{Email: "a@b.com", Password: "x"})
		require.True(t, res.Success)
		require.Equal(t, "tok1", res.Data.Token)
		require.Equal(t, "r1", res.Data.RefreshToken)
		require.NotNil(t, res.Data.User)
		require.Equal(t, "1", res.Data.User.ID)
		require.Equal(t, users.RoleAdmin, res.Data.User.Role)
		require.Equal(t, apiclient.Lifetime("24h"), res.Data.ExpiresIn)

		require.Equal(t, http.MethodPost, rec.get().method)
		require.Equal(t, apiclient.EndpointLogin, rec.get().uri)
		require.JSONEq(t, `{"email":"a@b.com","password":"x"}`, rec.get().body)

		// the gateway leaves persistence to its caller
		require.Equal(t, credentials.Pair{}, store.Pair(ctx))
		require.Empty(t, client.AccessToken())
	})

	t.Run("numeric expiry", func(t *testing.T) {
		client, _, _ := serve(t, http.StatusOK, `{"token":"tok1","expiresIn":3600}`)
		res := client.Login(ctx, apiclient.LoginRequest{})
		require.True(t, res.Success)
		require.Nil(t, res.Data.User)
		require.Equal(t, apiclient.Lifetime("3600s"), res.Data.ExpiresIn)
	})

	t.Run("invalid credentials", func(t *testing.T) {
		client, _, _ := serve(t, http.StatusUnauthorized, `{"error":"Invalid credentials"}`)
		res := client.Login(ctx, apiclient.LoginRequest{})
		require.False(t, res.Success)
		require.Equal(t, "Invalid credentials", res.Error)
	})
}

func TestClient_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("camelCase tokens", func(t *testing.T) {
		client, _, rec := serve(t, http.StatusCreated,
			`{"user":{"id":"u1","email":"n@b.com","role":"user"},"message":"created","accessToken":"a","refreshToken":"r"}`)
		res := client.Register(ctx, apiclient.RegisterRequest{Email: "n@b.com", Password: "secret", Name: "N"})
		require.True(t, res.Success)
		require.Equal(t, "a", res.Data.AccessToken)
		require.Equal(t, "r", res.Data.RefreshToken)
		require.Equal(t, "created", res.Data.Message)
		require.Equal(t, "u1", res.Data.User.ID)
		require.JSONEq(t, `{"email":"n@b.com","password":"secret","name":"N"}`, rec.get().body)
	})

	t.Run("login-style tokens", func(t *testing.T) {
		client, _, _ := serve(t, http.StatusCreated, `{"user":{"id":2},"token":"a","refresh_token":"r"}`)
		res := client.Register(ctx, apiclient.RegisterRequest{})
		require.True(t, res.Success)
		require.Equal(t, "a", res.Data.AccessToken)
		require.Equal(t, "r", res.Data.RefreshToken)
	})
}

func TestClient_LogoutWipesRegardless(t *testing.T) {
	ctx := context.Background()
	client, store, rec := serve(t, http.StatusInternalServerError, `{"error":"boom"}`)
	store.SaveAccessToken(ctx, "a")
	store.SaveRefreshToken(ctx, "r")
	client.SetAccessToken("a")

	res := client.Logout(ctx)
	require.False(t, res.Success)
	require.Equal(t, apiclient.EndpointLogout, rec.get().uri)
	require.Equal(t, credentials.Pair{}, store.Pair(ctx))
	require.Empty(t, client.AccessToken())
}

func TestClient_PasswordFlows(t *testing.T) {
	ctx := context.Background()

	client, _, rec := serve(t, http.StatusOK, `{"message":"sent","reset_token":"rt"}`)
	forgot := client.ForgotPassword(ctx, "a@b.com")
	require.True(t, forgot.Success)
	require.Equal(t, "rt", forgot.Data.ResetToken)
	require.JSONEq(t, `{"email":"a@b.com"}`, rec.get().body)

	client, _, rec = serve(t, http.StatusOK, `{"message":"Password reset successfully"}`)
	reset := client.ResetPassword(ctx, "rt", "newpass")
	require.True(t, reset.Success)
	require.Equal(t, "Password reset successfully", reset.Data.Message)
	require.JSONEq(t, `{"token":"rt","password":"newpass"}`, rec.get().body)
}

func TestClient_UserShapes(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name string
		body string
	}{
		{"user wrapper", `{"user":{"id":5,"email":"a@b.com","name":"A","role":"manager"}}`},
		{"profile wrapper", `{"profile":{"id":"5","email":"a@b.com","name":"A","role":{"name":"manager"}}}`},
		{"bare", `{"id":5,"email":"a@b.com","name":"A","role":"manager"}`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			client, _, _ := serve(t, http.StatusOK, tc.body)
			res := client.UserProfile(ctx)
			require.True(t, res.Success, res.Error)
			require.Equal(t, users.User{ID: "5", Email: "a@b.com", Name: "A", Role: users.RoleManager}, res.Data)
		})
	}

	t.Run("empty object is a decode failure", func(t *testing.T) {
		client, _, _ := serve(t, http.StatusOK, `{}`)
		res := client.CurrentUser(ctx)
		require.False(t, res.Success)
		require.Equal(t, apiclient.KindDecode, res.Kind)
	})

	t.Run("update tolerates message-only answers", func(t *testing.T) {
		client, _, rec := serve(t, http.StatusOK, `{"message":"Profile updated"}`)
		res := client.UpdateUserProfile(ctx, users.Update{Name: utils.Ptr("B")})
		require.True(t, res.Success)
		require.Equal(t, users.User{}, res.Data)
		require.Equal(t, http.MethodPut, rec.get().method)
		require.JSONEq(t, `{"name":"B"}`, rec.get().body)
	})
}

func TestClient_Admin(t *testing.T) {
	ctx := context.Background()

	t.Run("list as array with query", func(t *testing.T) {
		client, _, rec := serve(t, http.StatusOK, `[{"id":1,"email":"a@b.com","role":"admin"},{"id":2,"email":"c@d.com","role":"user"}]`)
		res := client.ListUsers(ctx, url.Values{"page": {"2"}})
		require.True(t, res.Success)
		require.Len(t, res.Data, 2)
		require.Equal(t, "2", res.Data[1].ID)
		require.Equal(t, apiclient.EndpointAdminUsers+"?page=2", rec.get().uri)
	})

	t.Run("list wrapped", func(t *testing.T) {
		client, _, _ := serve(t, http.StatusOK, `{"users":[{"id":1,"email":"a@b.com","role":{"name":"admin"}}]}`)
		res := client.ListUsers(ctx, nil)
		require.True(t, res.Success)
		require.Equal(t, users.RoleAdmin, res.Data[0].Role)
	})

	t.Run("create, update and delete", func(t *testing.T) {
		client, _, rec := serve(t, http.StatusCreated, `{"user":{"id":3,"email":"n@b.com","role":"user"}}`)
		created := client.CreateUser(ctx, users.Create{Email: "n@b.com", Name: "N", Password: "secret", Role: users.RoleUser})
		require.True(t, created.Success)
		require.Equal(t, "3", created.Data.ID)
		require.JSONEq(t, `{"email":"n@b.com","name":"N","password":"secret","role":"user"}`, rec.get().body)

		client, _, rec = serve(t, http.StatusOK, `{"message":"updated"}`)
		updated := client.UpdateUser(ctx, "3", users.Update{Role: utils.Ptr(users.RoleManager)})
		require.True(t, updated.Success)
		require.Equal(t, apiclient.EndpointAdminUsers+"/3", rec.get().uri)
		require.JSONEq(t, `{"role":"manager"}`, rec.get().body)

		client, _, rec = serve(t, http.StatusOK, `{"message":"deleted"}`)
		deleted := client.DeleteUser(ctx, "3")
		require.True(t, deleted.Success)
		require.Equal(t, http.MethodDelete, rec.get().method)
		require.Equal(t, "deleted", deleted.Data.Message)
	})
}

func TestAggregate(t *testing.T) {
	ctx := context.Background()
	client, _, rec := serve(t, http.StatusOK, `{"message":"Manager reports","reports":{"total_users":3}}`)
	res := client.Reports(ctx, url.Values{"period": {"week"}})
	require.True(t, res.Success)
	require.Equal(t, "Manager reports", res.Data.Message())
	require.Equal(t, map[string]any{"total_users": float64(3)}, res.Data.Body())
	require.Equal(t, apiclient.EndpointManagerReports+"?period=week", rec.get().uri)

	flat := apiclient.Aggregate{"message": "hi", "count": 1}
	require.Equal(t, map[string]any{"count": 1}, flat.Body())
}

func TestLifetime(t *testing.T) {
	var l apiclient.Lifetime
	require.NoError(t, json.Unmarshal([]byte(`"15m"`), &l))
	require.Equal(t, apiclient.Lifetime("15m"), l)
	require.NoError(t, json.Unmarshal([]byte(`900`), &l))
	require.Equal(t, apiclient.Lifetime("900s"), l)
	require.Error(t, json.Unmarshal([]byte(`true`), &l))
}
