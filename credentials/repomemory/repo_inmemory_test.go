package repomemory_test

import (
	"testing"

	"github.com/jrsteele09/go-auth-client/credentials/repomemory"
	"github.com/stretchr/testify/require"
)

func TestInMemoryRepo(t *testing.T) {
	repo := repomemory.NewInMemoryRepo()

	_, ok, err := repo.Get("k")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, repo.Put("k", "v"))
	value, ok, err := repo.Get("k")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "v", value)
	require.Equal(t, 1, repo.Len())

	require.NoError(t, repo.Delete("k"))
	require.NoError(t, repo.Delete("missing"))
	require.Zero(t, repo.Len())
}
