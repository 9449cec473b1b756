package lifecycle

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/GriffinCanCode/glitchly/backend/internal/domain/archive"
	"github.com/GriffinCanCode/glitchly/backend/internal/shared/paths"
	"github.com/GriffinCanCode/glitchly/backend/internal/shared/utils"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/charlievieth/fastwalk"
	"go.uber.org/zap"
)

// RecoverOnStartup repairs whatever an unclean shutdown left behind. It
// removes temp files, drops archives shadowed by an active copy and
// schedules freezes for active apps when FreezeOnStartup is set. Cold apps
// are not decompressed; corrupt archives are counted and kept for
// inspection.
func (m *Manager) RecoverOnStartup(ctx context.Context) (report *RecoveryReport, err error) {
	const op = "recover"
	done := m.track(op)
	defer func() { done(err) }()

	report = &RecoveryReport{}
	for _, dir := range m.layout.Roots() {
		if err := os.MkdirAll(dir, dirPerm); err != nil {
			return nil, storageError(op, "", err)
		}
	}

	removed, err := m.sweepTempFiles()
	if err != nil {
		return nil, storageError(op, "", err)
	}
	report.TempFilesRemoved = removed

	cold, err := m.archivedNames()
	if err != nil {
		return nil, storageError(op, "", err)
	}
	for _, name := range cold {
		if err := m.reconcile(ctx, op, name, report); err != nil {
			return nil, err
		}
	}

	active, err := m.activeNames()
	if err != nil {
		return nil, storageError(op, "", err)
	}
	report.Active = len(active)

	if m.opts.FreezeOnStartup {
		for _, name := range active {
			unlock, err := m.acquire(ctx, op, name)
			if err != nil {
				return nil, err
			}
			m.scheduleFreezeLocked(name)
			unlock()
			report.FreezesScheduled++
		}
	}

	if m.metrics != nil {
		m.metrics.SetAppCounts(report.Active, report.Cold+report.Corrupt)
	}
	m.logger.Info("startup recovery completed",
		zap.Int("active", report.Active),
		zap.Int("cold", report.Cold),
		zap.Int("corrupt", report.Corrupt),
		zap.Int("reconciled", report.Reconciled),
		zap.Int("temp_files_removed", report.TempFilesRemoved),
		zap.Int("freezes_scheduled", report.FreezesScheduled))
	return report, nil
}

// reconcile resolves a single archive: shadowed archives are removed,
// the rest are checked for a gzip header.
func (m *Manager) reconcile(ctx context.Context, op, name string, report *RecoveryReport) error {
	unlock, err := m.acquire(ctx, op, name)
	if err != nil {
		return err
	}
	defer unlock()

	_, err = os.Stat(m.layout.ActivePath(name))
	switch {
	case err == nil:
		// Interrupted freeze or thaw; the active copy wins
		if err := os.Remove(m.layout.ArchivePath(name)); err != nil && !isNotExist(err) {
			m.logger.Warn("failed to remove shadowed archive", zap.String("app", name), zap.Error(err))
			return nil
		}
		report.Reconciled++
		m.logger.Info("removed archive shadowed by active copy", zap.String("app", name))
		return nil
	case !isNotExist(err):
		return storageError(op, name, err)
	}

	if err := archive.Sniff(m.layout.ArchivePath(name)); err != nil {
		report.Corrupt++
		m.logger.Warn("archive failed header check", zap.String("app", name), zap.Error(err))
		return nil
	}
	report.Cold++
	return nil
}

// sweepTempFiles deletes leftover temp files under both roots
func (m *Manager) sweepTempFiles() (int, error) {
	var removed atomic.Int64
	conf := fastwalk.Config{Follow: false}

	for _, root := range m.layout.Roots() {
		err := fastwalk.Walk(&conf, root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				m.logger.Warn("skipping unreadable path during recovery", zap.String("path", path), zap.Error(err))
				return nil
			}
			if d.IsDir() || !paths.IsTemp(d.Name()) {
				return nil
			}
			rel, err := filepath.Rel(root, path)
			if err != nil {
				return nil
			}
			if ok, _ := doublestar.Match(paths.TempPattern, filepath.ToSlash(rel)); !ok {
				return nil
			}
			if err := os.Remove(path); err != nil {
				m.logger.Warn("failed to remove temp file", zap.String("path", path), zap.Error(err))
				return nil
			}
			removed.Add(1)
			m.logger.Debug("removed temp file", zap.String("path", path))
			return nil
		})
		if err != nil {
			return int(removed.Load()), err
		}
	}
	return int(removed.Load()), nil
}

// activeNames lists directories under the public root that hold an index file
func (m *Manager) activeNames() ([]string, error) {
	entries, err := os.ReadDir(m.layout.PublicRoot)
	if err != nil {
		if isNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var names []string
	for _, entry := range entries {
		if !entry.IsDir() || utils.ValidateAppName(entry.Name()) != nil {
			continue
		}
		if _, err := os.Stat(m.layout.ActivePath(entry.Name())); err == nil {
			names = append(names, entry.Name())
		}
	}
	return names, nil
}

// archivedNames lists app names that have an archive under the storage root
func (m *Manager) archivedNames() ([]string, error) {
	entries, err := os.ReadDir(m.layout.StorageRoot)
	if err != nil {
		if isNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var names []string
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		name, ok := paths.NameFromArchive(entry.Name())
		if !ok || utils.ValidateAppName(name) != nil {
			continue
		}
		names = append(names, name)
	}
	return names, nil
}
