// Package assets holds the filesystem glue around a build: exposing the GitBook
// asset directory under its alias while MkDocs renders, then publishing it into
// the site and removing the alias afterwards.
package assets

import (
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"syscall"
)

// Link creates alias as a symlink to source. Nothing is done, and created is
// false, when source does not exist or alias already exists in any form.
func Link(source, alias string) (created bool, err error) {
	if _, err := os.Stat(source); os.IsNotExist(err) {
		return false, nil
	} else if err != nil {
		return false, err
	}
	if _, err := os.Lstat(alias); err == nil {
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, err
	}

	if err := os.MkdirAll(filepath.Dir(alias), 0o750); err != nil {
		return false, err
	}
	target, err := filepath.Rel(filepath.Dir(alias), source)
	if err != nil {
		target = source
	}
	if err := os.Symlink(target, alias); err != nil {
		return false, err
	}
	return true, nil
}

// Publish copies source into dest, merging with files already there. Nothing
// is done when source does not exist.
func Publish(source, dest string) (copied bool, err error) {
	if _, err := os.Stat(source); os.IsNotExist(err) {
		return false, nil
	} else if err != nil {
		return false, err
	}
	if err := CopyDir(source, dest); err != nil {
		return false, err
	}
	return true, nil
}

// RemoveAlias removes alias when it is a symlink. A real file or directory at
// that path was not created by Link and is left alone.
func RemoveAlias(alias string) (removed bool, err error) {
	info, err := os.Lstat(alias)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if info.Mode()&os.ModeSymlink == 0 {
		return false, nil
	}
	if err := os.Remove(alias); err != nil {
		return false, err
	}
	return true, nil
}

// CopyDir recursively copies a directory tree into dst, overwriting files that
// exist in both and keeping files only present in dst. Symlinks are followed;
// dangling links and links back into a directory being copied are skipped.
func CopyDir(src, dst string) error {
	return copyDir(src, dst, map[string]bool{})
}

func copyDir(src, dst string, active map[string]bool) error {
	srcInfo, err := os.Stat(src)
	if err != nil {
		return err
	}
	resolved, err := filepath.EvalSymlinks(src)
	if err != nil {
		return err
	}
	if active[resolved] {
		return nil
	}
	active[resolved] = true
	defer delete(active, resolved)

	if err := os.MkdirAll(dst, srcInfo.Mode().Perm()|0o700); err != nil {
		return err
	}

	entries, err := os.ReadDir(src)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		srcPath := filepath.Join(src, entry.Name())
		dstPath := filepath.Join(dst, entry.Name())

		isDir := entry.IsDir()
		if entry.Type()&fs.ModeSymlink != 0 {
			info, err := os.Stat(srcPath)
			if os.IsNotExist(err) {
				continue
			}
			if err != nil {
				return err
			}
			isDir = info.IsDir()
		}

		if isDir {
			if err := copyDir(srcPath, dstPath, active); err != nil {
				return err
			}
			continue
		}
		if err := CopyFile(srcPath, dstPath); err != nil {
			return err
		}
	}
	return nil
}

// CopyFile copies a single file, preserving its permission bits.
func CopyFile(src, dst string) error {
	// #nosec G304 -- src comes from walking a configured directory
	srcFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() {
		_ = srcFile.Close()
	}()

	info, err := srcFile.Stat()
	if err != nil {
		return err
	}
	if info.IsDir() {
		return &fs.PathError{Op: "copy", Path: src, Err: syscall.EISDIR}
	}

	// #nosec G304 -- dst mirrors src under a configured output directory
	dstFile, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(dstFile, srcFile); err != nil {
		_ = dstFile.Close()
		return err
	}
	if err := dstFile.Close(); err != nil {
		return err
	}
	return os.Chmod(dst, info.Mode().Perm())
}
