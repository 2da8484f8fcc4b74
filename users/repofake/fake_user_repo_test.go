package fakeuserrepo_test

import (
	"testing"
	"time"

	"github.com/jrsteele09/go-auth-shell/users"
	fakeuserrepo "github.com/jrsteele09/go-auth-shell/users/repofake"
	"github.com/stretchr/testify/require"
)

func TestFakeAccountRepo(t *testing.T) {
	repo := fakeuserrepo.NewFakeAccountRepo()

	a := &users.Account{User: users.User{Email: "Ann@Example.com", Name: "Ann", Role: users.RoleUser}}
	require.NoError(t, repo.Upsert(a))
	require.NotEmpty(t, a.ID)
	require.False(t, a.CreatedAt.IsZero())

	got, err := repo.GetByEmail("ann@example.com")
	require.NoError(t, err)
	require.Equal(t, a.ID, got.ID)

	got.Email = "ann2@example.com"
	require.NoError(t, repo.Upsert(got))
	_, err = repo.GetByEmail("ann@example.com")
	require.ErrorIs(t, err, fakeuserrepo.ErrNotFound)

	time.Sleep(time.Millisecond)
	require.NoError(t, repo.Upsert(&users.Account{User: users.User{Email: "bob@example.com"}}))
	list, err := repo.List()
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, "bob@example.com", list[0].Email)

	require.NoError(t, repo.Delete(a.ID))
	require.ErrorIs(t, repo.Delete(a.ID), fakeuserrepo.ErrNotFound)
	require.Equal(t, 1, repo.Count())
}
