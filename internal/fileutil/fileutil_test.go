package fileutil_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mirrorlib/mirrorlib/internal/fileutil"
)

func TestCopyFile(t *testing.T) {
	t.Run("SuccessCases", func(t *testing.T) {
		tests := []struct {
			name    string
			content []byte
		}{
			{
				name:    "copies small file",
				content: []byte("hello world"),
			},
			{
				name:    "copies empty file",
				content: []byte{},
			},
			{
				name:    "copies binary content",
				content: []byte{0x00, 0x01, 0x02, 0xFF, 0xFE, 0xFD},
			},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				tmpDir := t.TempDir()

				srcPath := filepath.Join(tmpDir, "source.mp3")
				dstPath := filepath.Join(tmpDir, "dest.mp3")

				err := os.WriteFile(srcPath, tt.content, 0600)
				require.NoError(t, err)

				err = fileutil.CopyFile(srcPath, dstPath)
				require.NoError(t, err)

				dstContent, err := os.ReadFile(dstPath)
				require.NoError(t, err)
				assert.Equal(t, tt.content, dstContent)

				// Source is untouched.
				srcContent, err := os.ReadFile(srcPath)
				require.NoError(t, err)
				assert.Equal(t, tt.content, srcContent)
			})
		}
	})

	t.Run("CreatesParentDirectories", func(t *testing.T) {
		tmpDir := t.TempDir()

		srcPath := filepath.Join(tmpDir, "source.mp3")
		dstPath := filepath.Join(tmpDir, "artist", "album", "dest.mp3")

		require.NoError(t, os.WriteFile(srcPath, []byte("audio"), 0600))
		require.NoError(t, fileutil.CopyFile(srcPath, dstPath))
		assert.FileExists(t, dstPath)
	})

	t.Run("OverwritesExistingFile", func(t *testing.T) {
		tmpDir := t.TempDir()

		srcPath := filepath.Join(tmpDir, "source.mp3")
		dstPath := filepath.Join(tmpDir, "dest.mp3")

		require.NoError(t, os.WriteFile(srcPath, []byte("new"), 0600))
		require.NoError(t, os.WriteFile(dstPath, []byte("old content"), 0600))

		require.NoError(t, fileutil.CopyFile(srcPath, dstPath))

		content, err := os.ReadFile(dstPath)
		require.NoError(t, err)
		assert.Equal(t, []byte("new"), content)
	})

	t.Run("MissingSourceErrors", func(t *testing.T) {
		tmpDir := t.TempDir()
		err := fileutil.CopyFile(filepath.Join(tmpDir, "missing.mp3"), filepath.Join(tmpDir, "dest.mp3"))
		require.Error(t, err)
	})
}

func TestMoveFile(t *testing.T) {
	t.Run("moves and creates parents", func(t *testing.T) {
		tmpDir := t.TempDir()
		srcPath := filepath.Join(tmpDir, "source.mp3")
		dstPath := filepath.Join(tmpDir, "deep", "dest.mp3")

		require.NoError(t, os.WriteFile(srcPath, []byte("audio"), 0600))
		require.NoError(t, fileutil.MoveFile(srcPath, dstPath))

		assert.NoFileExists(t, srcPath)
		content, err := os.ReadFile(dstPath)
		require.NoError(t, err)
		assert.Equal(t, []byte("audio"), content)
	})
}

func TestRemove(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "file.mp3")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0600))

	require.NoError(t, fileutil.Remove(path))
	assert.NoFileExists(t, path)

	// Removing an already-missing file is fine.
	require.NoError(t, fileutil.Remove(path))
}

func TestSymlink(t *testing.T) {
	tmpDir := t.TempDir()
	target := filepath.Join(tmpDir, "target.mp3")
	link := filepath.Join(tmpDir, "links", "a.mp3")

	require.NoError(t, os.WriteFile(target, []byte("audio"), 0600))
	require.NoError(t, fileutil.Symlink(target, link))

	got, err := os.Readlink(link)
	require.NoError(t, err)
	assert.Equal(t, target, got)
}

func TestPruneDirs(t *testing.T) {
	t.Run("removes empty ancestors up to root", func(t *testing.T) {
		root := t.TempDir()
		leaf := filepath.Join(root, "a", "b", "c")
		require.NoError(t, os.MkdirAll(leaf, 0750))

		require.NoError(t, fileutil.PruneDirs(leaf, root))

		assert.NoDirExists(t, filepath.Join(root, "a"))
		assert.DirExists(t, root)
	})

	t.Run("stops at the first non-empty directory", func(t *testing.T) {
		root := t.TempDir()
		leaf := filepath.Join(root, "a", "b", "c")
		require.NoError(t, os.MkdirAll(leaf, 0750))
		require.NoError(t, os.WriteFile(filepath.Join(root, "a", "keep.txt"), []byte("x"), 0600))

		require.NoError(t, fileutil.PruneDirs(leaf, root))

		assert.NoDirExists(t, filepath.Join(root, "a", "b"))
		assert.DirExists(t, filepath.Join(root, "a"))
	})

	t.Run("never removes the root itself", func(t *testing.T) {
		root := t.TempDir()
		require.NoError(t, fileutil.PruneDirs(root, root))
		assert.DirExists(t, root)
	})

	t.Run("ignores paths outside the root", func(t *testing.T) {
		root := t.TempDir()
		outside := t.TempDir()
		require.NoError(t, fileutil.PruneDirs(outside, root))
		assert.DirExists(t, outside)
	})

	t.Run("skips already-missing directories", func(t *testing.T) {
		root := t.TempDir()
		require.NoError(t, fileutil.PruneDirs(filepath.Join(root, "gone", "deeper"), root))
	})
}

func TestDirExists(t *testing.T) {
	tmpDir := t.TempDir()
	assert.True(t, fileutil.DirExists(tmpDir))
	assert.False(t, fileutil.DirExists(filepath.Join(tmpDir, "missing")))

	filePath := filepath.Join(tmpDir, "file.txt")
	require.NoError(t, os.WriteFile(filePath, []byte("x"), 0600))
	assert.False(t, fileutil.DirExists(filePath))
}
