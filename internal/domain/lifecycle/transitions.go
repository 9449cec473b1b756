package lifecycle

import (
	"fmt"
	"os"

	"github.com/GriffinCanCode/glitchly/backend/internal/domain/archive"
	"github.com/GriffinCanCode/glitchly/backend/internal/shared/utils"
	"go.uber.org/zap"
)

// The helpers in this file require the per-name lock for name.

func (m *Manager) stateLocked(op, name string) (State, error) {
	_, err := os.Stat(m.layout.ActivePath(name))
	switch {
	case err == nil:
		return StateActive, nil
	case !isNotExist(err):
		return StateAbsent, storageError(op, name, err)
	}

	_, err = os.Stat(m.layout.ArchivePath(name))
	switch {
	case err == nil:
		return StateCold, nil
	case isNotExist(err):
		return StateAbsent, nil
	default:
		return StateAbsent, storageError(op, name, err)
	}
}

func (m *Manager) createLocked(op, name string) error {
	dir := m.layout.AppDir(name)
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return storageError(op, name, err)
	}
	if err := utils.WriteBytesAtomic(m.layout.ActivePath(name), Placeholder(name), filePerm); err != nil {
		removeEmptyDir(dir)
		return storageError(op, name, err)
	}

	if m.metrics != nil {
		m.metrics.RecordTransition("create")
	}
	m.logger.Info("app created", zap.String("app", name))
	return nil
}

// thawLocked restores the archive into the active tier and then drops it.
// On failure nothing is left behind in the active tier and the archive is
// untouched.
func (m *Manager) thawLocked(op, name string) error {
	src := m.layout.ArchivePath(name)
	if err := archive.Sniff(src); err != nil {
		m.logger.Error("refusing to thaw archive", zap.String("app", name), zap.Error(err))
		return storageError(op, name, err)
	}

	dir := m.layout.AppDir(name)
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return storageError(op, name, err)
	}
	n, err := archive.Decompress(src, m.layout.ActivePath(name), m.opts.MaxContentBytes)
	if err != nil {
		removeEmptyDir(dir)
		m.logger.Error("thaw failed", zap.String("app", name), zap.Error(err))
		return storageError(op, name, err)
	}

	m.removeArchive(name)

	if m.metrics != nil {
		m.metrics.RecordTransition("thaw")
	}
	m.logger.Info("app thawed", zap.String("app", name), zap.Int64("bytes", n))

	if m.opts.FreezeAfterThaw {
		m.scheduleFreezeLocked(name)
	}
	return nil
}

// freezeLocked archives the active copy. The active copy is removed only
// after the archive has been read back and matches the source length.
func (m *Manager) freezeLocked(op, name string) error {
	state, err := m.stateLocked(op, name)
	if err != nil {
		return err
	}
	switch state {
	case StateAbsent:
		return notFound(op, name)
	case StateCold:
		return nil
	}

	src := m.layout.ActivePath(name)
	dst := m.layout.ArchivePath(name)

	info, err := os.Stat(src)
	if err != nil {
		return storageError(op, name, err)
	}
	stats, err := archive.Compress(src, dst, m.opts.CompressionLevel)
	if err != nil {
		m.logger.Error("freeze failed", zap.String("app", name), zap.Error(err))
		return &Error{Op: op, Name: name, Kind: KindIO, Err: err}
	}

	n, err := archive.Verify(dst)
	if err == nil && n != info.Size() {
		err = fmt.Errorf("%w: archive holds %d bytes, source has %d", archive.ErrCorrupt, n, info.Size())
	}
	if err != nil {
		if rmErr := os.Remove(dst); rmErr != nil && !isNotExist(rmErr) {
			m.logger.Warn("failed to remove unverified archive", zap.String("app", name), zap.Error(rmErr))
		}
		m.logger.Error("archive verification failed", zap.String("app", name), zap.Error(err))
		return &Error{Op: op, Name: name, Kind: KindIO, Err: fmt.Errorf("verify archive: %w", err)}
	}

	if err := os.Remove(src); err != nil && !isNotExist(err) {
		// Both copies exist; the active one stays authoritative
		return storageError(op, name, err)
	}
	removeEmptyDir(m.layout.AppDir(name))

	if m.metrics != nil {
		m.metrics.RecordTransition("freeze")
		m.metrics.RecordArchived(stats.Original, stats.Compressed)
	}
	m.logger.Info("app frozen",
		zap.String("app", name),
		zap.Int64("original_bytes", stats.Original),
		zap.Int64("compressed_bytes", stats.Compressed),
		zap.Float64("ratio", stats.Ratio()))
	return nil
}

// removeArchive drops an archive superseded by the active copy. A failure
// leaves a stale archive that the active copy shadows.
func (m *Manager) removeArchive(name string) {
	if err := os.Remove(m.layout.ArchivePath(name)); err != nil && !isNotExist(err) {
		m.logger.Warn("failed to remove stale archive", zap.String("app", name), zap.Error(err))
	}
}

// removeEmptyDir removes dir if it is empty and ignores every error
func removeEmptyDir(dir string) {
	_ = os.Remove(dir)
}
