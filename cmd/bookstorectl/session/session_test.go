package session

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoginWhoamiLogout(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "bookstore", "session.json"))
	now := time.Date(2024, 5, 10, 9, 30, 0, 0, time.UTC)

	_, err := store.Current()
	assert.ErrorIs(t, err, ErrNotLoggedIn)

	sess, err := store.Login(" jane.doe@example.com ", "hunter2", now)
	require.NoError(t, err)
	assert.Equal(t, "jane.doe", sess.Name)
	assert.Equal(t, RoleManager, sess.Role)

	got, err := store.Current()
	require.NoError(t, err)
	assert.Equal(t, "jane.doe@example.com", got.Email)
	assert.True(t, got.LoginTime.Equal(now))
	assert.Equal(t, sess.ID, got.ID)

	require.NoError(t, store.Logout())
	require.NoError(t, store.Logout())

	_, err = store.Current()
	assert.ErrorIs(t, err, ErrNotLoggedIn)
}

func TestLoginRequiresBothFields(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "session.json"))

	_, err := store.Login("", "secret", time.Now())
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = store.Login("a@b.c", "", time.Now())
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = os.Stat(store.Path)
	assert.True(t, os.IsNotExist(err))
}

func TestCorruptSessionIsDiscarded(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := NewStore(path).Current()
	assert.ErrorIs(t, err, ErrNotLoggedIn)

	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestDefaultPathHonoursXDG(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	path, err := DefaultPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "bookstore", "session.json"), path)
}
