package tokenstore

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFileStore_Lifecycle(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "token")
	fs := NewFileStore(path)

	tok, err := fs.Get()
	require.NoError(t, err)
	require.Empty(t, tok, "empty slot should read as empty token")

	require.NoError(t, fs.Set("  ghp_abc \n"))

	tok, err = fs.Get()
	require.NoError(t, err)
	require.Equal(t, "ghp_abc", tok)

	if runtime.GOOS != "windows" {
		info, err := os.Stat(path)
		require.NoError(t, err)
		require.Equal(t, os.FileMode(0o600), info.Mode().Perm())
	}

	require.NoError(t, fs.Clear())
	tok, err = fs.Get()
	require.NoError(t, err)
	require.Empty(t, tok)

	require.NoError(t, fs.Clear(), "clearing twice should not fail")
}

func TestFileStore_SetEmpty(t *testing.T) {
	fs := NewFileStore(filepath.Join(t.TempDir(), "token"))
	require.NoError(t, fs.Set("old"))

	err := fs.Set("   ")
	require.True(t, errors.Is(err, ErrEmptyToken), "got %v", err)

	tok, err := fs.Get()
	require.NoError(t, err)
	require.Equal(t, "old", tok, "failed Set must keep previous token")
}

func TestMemory(t *testing.T) {
	m := NewMemory("")
	tok, _ := m.Get()
	require.Empty(t, tok)

	require.ErrorIs(t, m.Set(""), ErrEmptyToken)
	require.NoError(t, m.Set("t1"))
	tok, _ = m.Get()
	require.Equal(t, "t1", tok)

	require.NoError(t, m.Clear())
	tok, _ = m.Get()
	require.Empty(t, tok)
}
