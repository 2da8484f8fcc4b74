package screens_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/jrsteele09/go-auth-shell/apiclient"
	"github.com/jrsteele09/go-auth-shell/screens"
	"github.com/stretchr/testify/require"
)

func TestLoader(t *testing.T) {
	ctx := context.Background()

	t.Run("success stores data", func(t *testing.T) {
		var l screens.Loader[string]
		ok := l.Execute(ctx, func(ctx context.Context) apiclient.Response[string] {
			require.True(t, l.Loading())
			return apiclient.OK(http.StatusOK, "hello")
		})
		require.True(t, ok)
		require.False(t, l.Loading())
		require.Empty(t, l.Error())
		data, loaded := l.Data()
		require.True(t, loaded)
		require.Equal(t, "hello", data)
	})

	t.Run("failure keeps previous data", func(t *testing.T) {
		var l screens.Loader[string]
		l.SetData("previous")
		ok := l.Execute(ctx, func(ctx context.Context) apiclient.Response[string] {
			return apiclient.Fail[string](apiclient.KindServer, http.StatusInternalServerError, "boom")
		})
		require.False(t, ok)
		require.Equal(t, "boom", l.Error())
		data, _ := l.Data()
		require.Equal(t, "previous", data)
	})

	t.Run("panic is recorded", func(t *testing.T) {
		var l screens.Loader[int]
		ok := l.Execute(ctx, func(ctx context.Context) apiclient.Response[int] {
			panic("kaboom")
		})
		require.False(t, ok)
		require.False(t, l.Loading())
		require.Contains(t, l.Error(), "kaboom")
	})

	t.Run("reset", func(t *testing.T) {
		var l screens.Loader[int]
		l.SetData(3)
		l.Execute(ctx, func(ctx context.Context) apiclient.Response[int] {
			return apiclient.Fail[int](apiclient.KindServer, http.StatusInternalServerError, "x")
		})
		require.Equal(t, "x", l.Error())
		l.Reset()
		_, loaded := l.Data()
		require.False(t, loaded)
		require.Empty(t, l.Error())
	})
}
