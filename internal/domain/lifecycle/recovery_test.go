package lifecycle

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/GriffinCanCode/glitchly/backend/internal/shared/paths"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecoverRemovesTempFiles(t *testing.T) {
	m, _ := newTestManager(t, func(o *Options) { o.FreezeOnStartup = false })
	ctx := context.Background()

	require.NoError(t, m.WriteContent(ctx, "demo", []byte("real")))

	leftovers := []string{
		paths.TempName(m.layout.ActivePath("demo"), "crashed"),
		paths.TempName(m.layout.ArchivePath("other"), "crashed"),
	}
	for _, p := range leftovers {
		require.NoError(t, os.WriteFile(p, []byte("partial"), 0o644))
	}
	// Visible files that merely end in .tmp belong to the user
	kept := filepath.Join(m.layout.AppDir("demo"), "notes.tmp")
	require.NoError(t, os.WriteFile(kept, []byte("keep"), 0o644))

	report, err := m.RecoverOnStartup(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, report.TempFilesRemoved)
	assert.Equal(t, 1, report.Active)
	assert.Zero(t, report.FreezesScheduled)

	for _, p := range leftovers {
		_, err := os.Stat(p)
		assert.True(t, os.IsNotExist(err), "%s should be removed", p)
	}

	_, err = os.Stat(kept)
	assert.NoError(t, err)

	data, err := m.ReadContent(ctx, "demo")
	require.NoError(t, err)
	assert.Equal(t, "real", string(data))
}

func TestRecoverPrefersActiveCopy(t *testing.T) {
	m, _ := newTestManager(t, func(o *Options) { o.FreezeOnStartup = false })
	ctx := context.Background()

	// Simulate a crash between writing the archive and removing the active copy
	require.NoError(t, m.WriteContent(ctx, "demo", []byte("old")))
	require.NoError(t, m.Freeze(ctx, "demo"))
	require.NoError(t, os.MkdirAll(m.layout.AppDir("demo"), 0o755))
	require.NoError(t, os.WriteFile(m.layout.ActivePath("demo"), []byte("new"), 0o644))

	report, err := m.RecoverOnStartup(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Reconciled)
	assert.Equal(t, 1, report.Active)
	assert.Zero(t, report.Cold)

	_, err = os.Stat(m.layout.ArchivePath("demo"))
	assert.True(t, os.IsNotExist(err))

	data, err := m.ReadContent(ctx, "demo")
	require.NoError(t, err)
	assert.Equal(t, "new", string(data))
}

func TestRecoverLeavesColdAppsCold(t *testing.T) {
	m, _ := newTestManager(t, func(o *Options) { o.FreezeOnStartup = false })
	ctx := context.Background()

	require.NoError(t, m.WriteContent(ctx, "demo", []byte("x")))
	require.NoError(t, m.Freeze(ctx, "demo"))
	require.NoError(t, os.WriteFile(m.layout.ArchivePath("broken"), []byte("garbage"), 0o644))

	report, err := m.RecoverOnStartup(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Cold)
	assert.Equal(t, 1, report.Corrupt)

	requireState(t, m, "demo", StateCold)
	_, err = os.Stat(m.layout.ArchivePath("broken"))
	assert.NoError(t, err, "corrupt archives are kept")
}

func TestRecoverSchedulesFreezes(t *testing.T) {
	m, _ := newTestManager(t, func(o *Options) {
		o.FreezeOnStartup = true
		o.FreezeDelay = 10 * time.Millisecond
	})

	// Active files written behind the manager's back, as after a restart
	for _, name := range []string{"one", "two"} {
		require.NoError(t, os.MkdirAll(m.layout.AppDir(name), 0o755))
		require.NoError(t, os.WriteFile(m.layout.ActivePath(name), []byte(name), 0o644))
	}

	report, err := m.RecoverOnStartup(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, report.FreezesScheduled)

	m.Wait()
	requireState(t, m, "one", StateCold)
	requireState(t, m, "two", StateCold)
}

func TestRecoverIgnoresForeignEntries(t *testing.T) {
	m, _ := newTestManager(t, func(o *Options) { o.FreezeOnStartup = false })

	require.NoError(t, os.WriteFile(filepath.Join(m.layout.StorageRoot, "README"), nil, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(m.layout.StorageRoot, ".gz"), nil, 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(m.layout.PublicRoot, "assets"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(m.layout.PublicRoot, "favicon.ico"), nil, 0o644))

	report, err := m.RecoverOnStartup(context.Background())
	require.NoError(t, err)
	assert.Equal(t, RecoveryReport{}, *report)

	_, err = os.Stat(filepath.Join(m.layout.StorageRoot, "README"))
	assert.NoError(t, err)
}
