package utils

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/GriffinCanCode/glitchly/backend/internal/shared/paths"
)

// FillFunc streams content into w and reports how many bytes it produced
type FillFunc func(w io.Writer) (int64, error)

// WriteFileAtomic writes dst through a hidden temp sibling.
//
// The temp file is fsynced and closed before it is renamed over dst, so a
// reader never observes a partially written dst. On any failure the temp
// file is removed and dst is left as it was.
func WriteFileAtomic(dst string, perm os.FileMode, fill FillFunc) (n int64, err error) {
	tmp := paths.TempName(dst, uuid.NewString())

	f, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_EXCL, perm)
	if err != nil {
		return 0, fmt.Errorf("create temp file: %w", err)
	}

	closed := false
	defer func() {
		if err != nil {
			if !closed {
				f.Close()
			}
			os.Remove(tmp)
		}
	}()

	if n, err = fill(f); err != nil {
		return n, err
	}
	if err = f.Sync(); err != nil {
		return n, fmt.Errorf("sync temp file: %w", err)
	}
	closed = true
	if err = f.Close(); err != nil {
		return n, fmt.Errorf("close temp file: %w", err)
	}
	if err = os.Rename(tmp, dst); err != nil {
		return n, fmt.Errorf("rename into place: %w", err)
	}

	syncDir(filepath.Dir(dst))
	return n, nil
}

// WriteBytesAtomic is WriteFileAtomic for an in-memory payload
func WriteBytesAtomic(dst string, data []byte, perm os.FileMode) error {
	_, err := WriteFileAtomic(dst, perm, func(w io.Writer) (int64, error) {
		n, err := w.Write(data)
		return int64(n), err
	})
	return err
}

// syncDir persists a rename; some filesystems refuse to fsync directories,
// and the rename itself has already succeeded, so failures are ignored.
func syncDir(dir string) {
	d, err := os.Open(dir)
	if err != nil {
		return
	}
	_ = d.Sync()
	d.Close()
}
