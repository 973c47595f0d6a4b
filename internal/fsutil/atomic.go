package fsutil

import (
	"fmt"
	"os"
	"path/filepath"
)

// Stage identifies the step of an atomic write that failed
type Stage int

const (
	StageCreate Stage = iota
	StageWrite
	StageSync
	StageClose
	StageChmod
	StageRename
)

func (s Stage) String() string {
	switch s {
	case StageCreate:
		return "create"
	case StageWrite:
		return "write"
	case StageSync:
		return "sync"
	case StageClose:
		return "close"
	case StageChmod:
		return "chmod"
	case StageRename:
		return "rename"
	default:
		return "unknown"
	}
}

// WriteError reports which stage of an atomic write failed
type WriteError struct {
	Stage Stage
	Path  string
	Err   error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("atomic write of %s failed at %s: %v", e.Path, e.Stage, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

// Writer writes files with a temp file + rename so readers never observe a
// partially written file. The zero value is ready to use.
type Writer struct {
	// Rename replaces os.Rename when set
	Rename func(oldpath, newpath string) error
}

// WriteFile atomically replaces path with data
func (w Writer) WriteFile(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)

	// Temp file must live in the target directory so the rename stays on one device
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return &WriteError{Stage: StageCreate, Path: path, Err: err}
	}
	tmpPath := tmp.Name()

	defer func() {
		if tmpPath != "" {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return &WriteError{Stage: StageWrite, Path: path, Err: err}
	}

	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return &WriteError{Stage: StageSync, Path: path, Err: err}
	}

	if err := tmp.Close(); err != nil {
		return &WriteError{Stage: StageClose, Path: path, Err: err}
	}

	if err := os.Chmod(tmpPath, perm); err != nil {
		return &WriteError{Stage: StageChmod, Path: path, Err: err}
	}

	rename := w.Rename
	if rename == nil {
		rename = os.Rename
	}
	if err := rename(tmpPath, path); err != nil {
		return &WriteError{Stage: StageRename, Path: path, Err: err}
	}

	// Moved into place, nothing left to clean up
	tmpPath = ""

	syncDir(dir)
	return nil
}

// WriteFile atomically replaces path with data using the default Writer
func WriteFile(path string, data []byte, perm os.FileMode) error {
	return Writer{}.WriteFile(path, data, perm)
}

// syncDir persists the rename. Not every platform supports fsync on a directory.
func syncDir(dir string) {
	d, err := os.Open(dir)
	if err != nil {
		return
	}
	d.Sync() //nolint:errcheck
	d.Close()
}
