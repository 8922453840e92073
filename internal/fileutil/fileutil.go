// Package fileutil provides the filesystem primitives used when
// materializing and maintaining alternative collections.
package fileutil

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// CopyFile copies a file from src to dst, creating parent directories as
// needed and overwriting any existing file at dst.
func CopyFile(src, dst string) (retErr error) {
	srcFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := srcFile.Close(); closeErr != nil && retErr == nil {
			retErr = closeErr
		}
	}()

	if err = os.MkdirAll(filepath.Dir(dst), 0750); err != nil {
		return err
	}

	dstFile, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := dstFile.Close(); closeErr != nil && retErr == nil {
			retErr = closeErr
		}
	}()

	_, err = io.Copy(dstFile, srcFile)
	return err
}

// MoveFile moves a file from src to dst, creating parent directories as
// needed. Falls back to copy+remove when rename fails (cross-device moves).
func MoveFile(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0750); err != nil {
		return err
	}
	if err := os.Rename(src, dst); err != nil {
		if copyErr := CopyFile(src, dst); copyErr != nil {
			return fmt.Errorf("failed to move %s: %w", src, copyErr)
		}
		return os.Remove(src)
	}
	return nil
}

// Remove deletes a file. A missing file is not an error.
func Remove(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Symlink creates a symbolic link at link pointing to target, creating
// parent directories as needed.
func Symlink(target, link string) error {
	if err := os.MkdirAll(filepath.Dir(link), 0750); err != nil {
		return err
	}
	return os.Symlink(target, link)
}

// PruneDirs removes empty directories starting at dir and walking up toward
// root. It stops at the first non-empty directory and never removes root
// itself. Missing directories are skipped.
func PruneDirs(dir, root string) error {
	root = filepath.Clean(root)
	dir = filepath.Clean(dir)

	for isBelow(dir, root) {
		entries, err := os.ReadDir(dir)
		if os.IsNotExist(err) {
			dir = filepath.Dir(dir)
			continue
		}
		if err != nil {
			return err
		}
		if len(entries) > 0 {
			return nil
		}
		if err := os.Remove(dir); err != nil {
			return err
		}
		dir = filepath.Dir(dir)
	}
	return nil
}

// DirExists reports whether path exists and is a directory.
func DirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// isBelow reports whether dir is strictly inside root.
func isBelow(dir, root string) bool {
	rel, err := filepath.Rel(root, dir)
	if err != nil {
		return false
	}
	return rel != "." && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
