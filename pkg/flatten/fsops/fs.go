// Package fsops provides the filesystem primitives flatten plans against and
// applies plans with.
//
// Planning only ever asks questions (Exists, IsDir, SameFile); the mutating
// methods are used by the executor after the plan is final. Everything goes
// through the FS interface so both sides can be tested without a real disk.
package fsops

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// FS provides an abstraction for filesystem operations.
type FS interface {
	// Exists reports whether path is present, without following symlinks.
	Exists(path string) bool

	// IsDir reports whether path is present and is a directory.
	IsDir(path string) bool

	// SameFile reports whether a and b name the same file on disk.
	SameFile(a, b string) bool

	// MkdirAll creates a directory and all parent directories.
	MkdirAll(path string, perm os.FileMode) error

	// Rename moves oldpath to newpath.
	Rename(oldpath, newpath string) error

	// RemoveAll removes a path and all its contents.
	RemoveAll(path string) error

	// IsEmptyDir reports whether path is a directory with no entries.
	IsEmptyDir(path string) (bool, error)
}

// RealFS implements FS using actual OS operations.
type RealFS struct{}

// NewRealFS creates a new RealFS.
func NewRealFS() *RealFS {
	return &RealFS{}
}

// Exists reports whether path is present.
func (fs *RealFS) Exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}

// IsDir reports whether path is a directory.
func (fs *RealFS) IsDir(path string) bool {
	info, err := os.Lstat(path)
	return err == nil && info.IsDir()
}

// SameFile reports whether a and b are one directory entry, as differently
// cased names are on a case-insensitive filesystem. Missing paths are never
// the same file. Hard links are separate entries: renaming one onto another
// does nothing, so they are reported as different files.
func (fs *RealFS) SameFile(a, b string) bool {
	ai, err := os.Lstat(a)
	if err != nil {
		return false
	}
	bi, err := os.Lstat(b)
	if err != nil {
		return false
	}
	if !os.SameFile(ai, bi) {
		return false
	}
	if ai.IsDir() || filepath.Clean(a) == filepath.Clean(b) {
		return true
	}
	// Two spellings of one entry list only one of them.
	return !listed(a) || !listed(b)
}

// listed reports whether the exact base name of path appears in its directory.
func listed(path string) bool {
	names, err := readDirNames(filepath.Dir(path))
	if err != nil {
		return false
	}
	base := filepath.Base(path)
	for _, name := range names {
		if name == base {
			return true
		}
	}
	return false
}

func readDirNames(dir string) ([]string, error) {
	f, err := os.Open(dir)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return f.Readdirnames(-1)
}

// MkdirAll creates a directory and all parent directories.
func (fs *RealFS) MkdirAll(path string, perm os.FileMode) error {
	return os.MkdirAll(path, perm)
}

// Rename moves oldpath to newpath.
func (fs *RealFS) Rename(oldpath, newpath string) error {
	return os.Rename(oldpath, newpath)
}

// RemoveAll removes a path and all its contents.
func (fs *RealFS) RemoveAll(path string) error {
	return os.RemoveAll(path)
}

// IsEmptyDir reports whether path is a directory with no entries.
func (fs *RealFS) IsEmptyDir(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer func() {
		_ = f.Close()
	}()

	info, err := f.Stat()
	if err != nil {
		return false, err
	}
	if !info.IsDir() {
		return false, fmt.Errorf("%s is not a directory", path)
	}

	_, err = f.Readdirnames(1)
	if errors.Is(err, io.EOF) {
		return true, nil
	}
	return false, err
}

// Ensure RealFS implements FS.
var _ FS = (*RealFS)(nil)
