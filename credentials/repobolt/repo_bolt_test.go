package repobolt_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jrsteele09/go-auth-client/credentials"
	"github.com/jrsteele09/go-auth-client/credentials/repobolt"
	"github.com/jrsteele09/go-auth-client/credentials/repomemory"
	"github.com/stretchr/testify/require"
)

func TestRepo(t *testing.T) {
	folder := filepath.Join(t.TempDir(), "data")
	repo, err := repobolt.NewRepoFromFolder(folder, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })

	info, err := os.Stat(filepath.Join(folder, repobolt.DefaultFileName))
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0600), info.Mode().Perm())

	_, ok, err := repo.Get(credentials.KeyAccessToken)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, repo.Put(credentials.KeyAccessToken, "at"))
	value, ok, err := repo.Get(credentials.KeyAccessToken)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "at", value)

	require.NoError(t, repo.Delete(credentials.KeyAccessToken))
	require.NoError(t, repo.Delete(credentials.KeyAccessToken))
	_, ok, err = repo.Get(credentials.KeyAccessToken)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestRepoSurvivesReopen(t *testing.T) {
	folder := t.TempDir()

	repo, err := repobolt.NewRepoFromFolder(folder, nil)
	require.NoError(t, err)
	store, err := credentials.NewStore(repomemory.NewInMemoryRepo(), repo)
	require.NoError(t, err)
	require.NoError(t, store.StoreCredential(credentials.Credential{AccessToken: "at", RefreshToken: "rt"}, credentials.TierPersistent))
	require.NoError(t, repo.Close())

	// a restart: new session tier, same database file
	reopened, err := repobolt.NewRepoFromFolder(folder, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = reopened.Close() })
	store, err = credentials.NewStore(repomemory.NewInMemoryRepo(), reopened)
	require.NoError(t, err)

	cred, ok := store.Credential()
	require.True(t, ok)
	require.Equal(t, "at", cred.AccessToken)
	require.Equal(t, "rt", cred.RefreshToken)

	require.NoError(t, store.ClearAll())
	_, ok = store.Credential()
	require.False(t, ok)
}
