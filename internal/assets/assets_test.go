package assets

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupDocs(t *testing.T) (docs, source string) {
	t.Helper()
	docs = filepath.Join(t.TempDir(), "docs")
	source = filepath.Join(docs, ".gitbook", "assets")
	require.NoError(t, os.MkdirAll(filepath.Join(source, "img"), 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(source, "logo.png"), []byte("png"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(source, "img", "a.gif"), []byte("gif"), 0o600))
	return docs, source
}

func TestLink_CreatesSymlink(t *testing.T) {
	docs, source := setupDocs(t)
	alias := filepath.Join(docs, "gbassets")

	created, err := Link(source, alias)
	require.NoError(t, err)
	assert.True(t, created)

	info, err := os.Lstat(alias)
	require.NoError(t, err)
	assert.NotZero(t, info.Mode()&os.ModeSymlink)

	data, err := os.ReadFile(filepath.Join(alias, "logo.png"))
	require.NoError(t, err)
	assert.Equal(t, "png", string(data))
}

func TestLink_SourceMissing(t *testing.T) {
	docs := t.TempDir()
	alias := filepath.Join(docs, "gbassets")

	created, err := Link(filepath.Join(docs, ".gitbook", "assets"), alias)
	require.NoError(t, err)
	assert.False(t, created)

	_, err = os.Lstat(alias)
	assert.True(t, os.IsNotExist(err))
}

func TestLink_AliasExists(t *testing.T) {
	docs, source := setupDocs(t)
	alias := filepath.Join(docs, "gbassets")
	require.NoError(t, os.Mkdir(alias, 0o750))

	created, err := Link(source, alias)
	require.NoError(t, err)
	assert.False(t, created)

	info, err := os.Lstat(alias)
	require.NoError(t, err)
	assert.True(t, info.IsDir(), "existing directory must be left untouched")
}

func TestLink_DanglingAliasCountsAsExisting(t *testing.T) {
	docs, source := setupDocs(t)
	alias := filepath.Join(docs, "gbassets")
	require.NoError(t, os.Symlink(filepath.Join(docs, "nowhere"), alias))

	created, err := Link(source, alias)
	require.NoError(t, err)
	assert.False(t, created)
}

func TestPublish_MergesIntoExistingSite(t *testing.T) {
	_, source := setupDocs(t)
	dest := filepath.Join(t.TempDir(), "site", "gbassets")
	require.NoError(t, os.MkdirAll(dest, 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(dest, "keep.txt"), []byte("keep"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dest, "logo.png"), []byte("old"), 0o600))

	copied, err := Publish(source, dest)
	require.NoError(t, err)
	assert.True(t, copied)

	for name, want := range map[string]string{
		"keep.txt":  "keep",
		"logo.png":  "png",
		"img/a.gif": "gif",
	} {
		data, err := os.ReadFile(filepath.Join(dest, filepath.FromSlash(name)))
		require.NoError(t, err, name)
		assert.Equal(t, want, string(data), name)
	}
}

func TestPublish_SourceMissing(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "site", "gbassets")

	copied, err := Publish(filepath.Join(t.TempDir(), "missing"), dest)
	require.NoError(t, err)
	assert.False(t, copied)

	_, err = os.Stat(dest)
	assert.True(t, os.IsNotExist(err))
}

func TestPublish_ThroughAliasSymlink(t *testing.T) {
	docs, source := setupDocs(t)
	alias := filepath.Join(docs, "gbassets")
	_, err := Link(source, alias)
	require.NoError(t, err)

	dest := filepath.Join(t.TempDir(), "gbassets")
	copied, err := Publish(alias, dest)
	require.NoError(t, err)
	assert.True(t, copied)
	assert.FileExists(t, filepath.Join(dest, "img", "a.gif"))
}

func TestRemoveAlias(t *testing.T) {
	docs, source := setupDocs(t)
	alias := filepath.Join(docs, "gbassets")
	_, err := Link(source, alias)
	require.NoError(t, err)

	removed, err := RemoveAlias(alias)
	require.NoError(t, err)
	assert.True(t, removed)
	assert.DirExists(t, source, "removing the alias must not touch the source")

	removed, err = RemoveAlias(alias)
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestRemoveAlias_LeavesRealDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "gbassets")
	require.NoError(t, os.Mkdir(dir, 0o750))

	removed, err := RemoveAlias(dir)
	require.NoError(t, err)
	assert.False(t, removed)
	assert.DirExists(t, dir)
}

func TestCopyFile_PreservesMode(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "run.sh")
	require.NoError(t, os.WriteFile(src, []byte("#!/bin/sh\n"), 0o700))

	dst := filepath.Join(dir, "copy.sh")
	require.NoError(t, CopyFile(src, dst))

	info, err := os.Stat(dst)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o700), info.Mode().Perm())
}

func TestPublish_FollowsSymlinks(t *testing.T) {
	tests := []struct {
		name   string
		link   func(t *testing.T, docs, source string)
		want   map[string]string
		absent []string
	}{
		{
			name: "directory symlink",
			link: func(t *testing.T, docs, source string) {
				shared := filepath.Join(docs, ".gitbook", "shared")
				require.NoError(t, os.MkdirAll(shared, 0o750))
				require.NoError(t, os.WriteFile(filepath.Join(shared, "logo.png"), []byte("shared"), 0o600))
				require.NoError(t, os.Symlink(filepath.Join("..", "shared"), filepath.Join(source, "shared")))
			},
			want: map[string]string{"shared/logo.png": "shared"},
		},
		{
			name: "file symlink",
			link: func(t *testing.T, _, source string) {
				require.NoError(t, os.Symlink("logo.png", filepath.Join(source, "icon.png")))
			},
			want: map[string]string{"icon.png": "png"},
		},
		{
			name: "dangling symlink",
			link: func(t *testing.T, docs, source string) {
				require.NoError(t, os.Symlink(filepath.Join(docs, "nowhere"), filepath.Join(source, "gone.png")))
			},
			absent: []string{"gone.png"},
		},
		{
			name: "symlink back to an ancestor",
			link: func(t *testing.T, _, source string) {
				require.NoError(t, os.Symlink("..", filepath.Join(source, "img", "up")))
			},
			want: map[string]string{"img/a.gif": "gif"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			docs, source := setupDocs(t)
			tt.link(t, docs, source)
			dest := filepath.Join(t.TempDir(), "site", "gbassets")

			copied, err := Publish(source, dest)
			require.NoError(t, err)
			assert.True(t, copied)

			for name, want := range tt.want {
				data, err := os.ReadFile(filepath.Join(dest, filepath.FromSlash(name)))
				require.NoError(t, err, name)
				assert.Equal(t, want, string(data), name)
			}
			for _, name := range tt.absent {
				_, err := os.Lstat(filepath.Join(dest, filepath.FromSlash(name)))
				assert.True(t, os.IsNotExist(err), name)
			}
		})
	}
}

func TestCopyFile_RejectsDirectory(t *testing.T) {
	dir := t.TempDir()
	dst := filepath.Join(dir, "copy")

	require.Error(t, CopyFile(dir, dst))
	_, err := os.Lstat(dst)
	assert.True(t, os.IsNotExist(err), "no destination file is left behind")
}
