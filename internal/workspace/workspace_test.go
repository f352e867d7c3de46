package workspace

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_Ephemeral(t *testing.T) {
	base := filepath.Join(t.TempDir(), "scratch")
	mgr := NewManager(base)
	assert.Empty(t, mgr.Path())

	require.NoError(t, mgr.Create())
	dir := mgr.Path()
	assert.True(t, strings.HasPrefix(filepath.Base(dir), "gitbook2mkdocs-"), dir)
	assert.DirExists(t, dir)
	assert.False(t, mgr.Persistent())

	other := NewManager(base)
	require.NoError(t, other.Create())
	assert.NotEqual(t, dir, other.Path())

	out, err := mgr.Subdir("docs")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "docs"), out)

	require.NoError(t, mgr.Cleanup())
	assert.NoDirExists(t, dir)
	assert.Empty(t, mgr.Path())
	require.NoError(t, mgr.Cleanup(), "second cleanup is a no-op")
}

func TestManager_Persistent(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "mirror")
	mgr := NewPersistentManager(dir)

	require.NoError(t, mgr.Create())
	assert.Equal(t, dir, mgr.Path())
	assert.True(t, mgr.Persistent())

	marker := filepath.Join(dir, "marker.txt")
	require.NoError(t, os.WriteFile(marker, []byte("keep"), 0o600))

	require.NoError(t, mgr.Cleanup())
	require.NoError(t, NewPersistentManager(dir).Create())
	assert.FileExists(t, marker)
}

func TestManager_SubdirBeforeCreate(t *testing.T) {
	_, err := NewManager(t.TempDir()).Subdir("x")
	assert.Error(t, err)
}
