package lifecycle

import (
	"context"
	"fmt"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/GriffinCanCode/glitchly/backend/internal/domain/archive"
	"github.com/GriffinCanCode/glitchly/backend/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/glitchly/backend/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/glitchly/backend/internal/shared/paths"
	"github.com/GriffinCanCode/glitchly/backend/internal/shared/utils"
	"go.uber.org/zap"
)

const (
	dirPerm  os.FileMode = 0o755
	filePerm os.FileMode = 0o644
)

// Options configures a Manager
type Options struct {
	Layout            paths.Layout
	FreezeDelay       time.Duration
	FreezeAfterThaw   bool
	FreezeOnStartup   bool
	FreezeConcurrency int
	CompressionLevel  int
	MaxContentBytes   int64
}

// DefaultOptions returns the production defaults for layout
func DefaultOptions(layout paths.Layout) Options {
	return Options{
		Layout:            layout,
		FreezeDelay:       5 * time.Second,
		FreezeAfterThaw:   true,
		FreezeOnStartup:   true,
		FreezeConcurrency: 4,
		CompressionLevel:  archive.DefaultLevel,
		MaxContentBytes:   utils.MaxContentSize,
	}
}

// Manager moves apps between the active and cold tiers
type Manager struct {
	layout  paths.Layout
	opts    Options
	locks   *lockTable
	logger  *zap.Logger
	metrics *monitoring.Metrics
	breaker *resilience.Breaker

	mu          sync.Mutex
	seq         uint64
	generations map[string]uint64
	closed      bool
	stop        chan struct{}
	pending     sync.WaitGroup
}

// NewManager creates both storage roots and returns a ready Manager
func NewManager(opts Options, logger *zap.Logger) (*Manager, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.FreezeConcurrency < 1 {
		opts.FreezeConcurrency = 1
	}
	if opts.MaxContentBytes <= 0 {
		opts.MaxContentBytes = utils.MaxContentSize
	}
	if opts.FreezeDelay < 0 {
		opts.FreezeDelay = 0
	}

	for _, dir := range opts.Layout.Roots() {
		if err := os.MkdirAll(dir, dirPerm); err != nil {
			return nil, fmt.Errorf("create storage root %s: %w", dir, err)
		}
	}

	m := &Manager{
		layout:      opts.Layout,
		opts:        opts,
		locks:       newLockTable(),
		logger:      logger,
		generations: make(map[string]uint64),
		stop:        make(chan struct{}),
	}
	m.breaker = resilience.New("archive", resilience.Settings{
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts resilience.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: m.logBreakerChange,
	})
	return m, nil
}

// WithMetrics adds metrics collection to the manager
func (m *Manager) WithMetrics(metrics *monitoring.Metrics) *Manager {
	m.metrics = metrics
	return m
}

// WithBreaker replaces the breaker guarding background freezes
func (m *Manager) WithBreaker(breaker *resilience.Breaker) *Manager {
	if breaker != nil {
		m.breaker = breaker
	}
	return m
}

// Options returns the effective options
func (m *Manager) Options() Options {
	return m.opts
}

// Breaker exposes the breaker for health reporting
func (m *Manager) Breaker() *resilience.Breaker {
	return m.breaker
}

// EnsureActive makes name active and returns its content. A cold app is
// thawed; an absent app gets the placeholder page.
func (m *Manager) EnsureActive(ctx context.Context, name string) (content *Content, err error) {
	const op = "ensure_active"
	done := m.track(op)
	defer func() { done(err) }()

	if err := m.validateName(op, name); err != nil {
		return nil, err
	}
	unlock, err := m.acquire(ctx, op, name)
	if err != nil {
		return nil, err
	}
	defer unlock()

	state, err := m.stateLocked(op, name)
	if err != nil {
		return nil, err
	}

	content = &Content{Name: name}
	switch state {
	case StateCold:
		if err := m.thawLocked(op, name); err != nil {
			return nil, err
		}
		content.Thawed = true
	case StateAbsent:
		if err := m.createLocked(op, name); err != nil {
			return nil, err
		}
		content.Created = true
	}

	data, err := os.ReadFile(m.layout.ActivePath(name))
	if err != nil {
		return nil, storageError(op, name, err)
	}
	content.Data = data
	return content, nil
}

// ReadContent returns the content of an existing app, thawing it if cold
func (m *Manager) ReadContent(ctx context.Context, name string) (data []byte, err error) {
	const op = "read"
	done := m.track(op)
	defer func() { done(err) }()

	if err := m.validateName(op, name); err != nil {
		return nil, err
	}
	unlock, err := m.acquire(ctx, op, name)
	if err != nil {
		return nil, err
	}
	defer unlock()

	state, err := m.stateLocked(op, name)
	if err != nil {
		return nil, err
	}
	switch state {
	case StateAbsent:
		return nil, notFound(op, name)
	case StateCold:
		if err := m.thawLocked(op, name); err != nil {
			return nil, err
		}
	}

	data, err = os.ReadFile(m.layout.ActivePath(name))
	if err != nil {
		return nil, storageError(op, name, err)
	}
	return data, nil
}

// WriteContent replaces the app's content and schedules a freeze
func (m *Manager) WriteContent(ctx context.Context, name string, data []byte) (err error) {
	const op = "write"
	done := m.track(op)
	defer func() { done(err) }()

	if err := m.validateName(op, name); err != nil {
		return err
	}
	if err := utils.ValidateContentSize(data, m.opts.MaxContentBytes); err != nil {
		return invalid(op, name, err)
	}
	unlock, err := m.acquire(ctx, op, name)
	if err != nil {
		return err
	}
	defer unlock()

	dir := m.layout.AppDir(name)
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return storageError(op, name, err)
	}
	if err := utils.WriteBytesAtomic(m.layout.ActivePath(name), data, filePerm); err != nil {
		removeEmptyDir(dir)
		return storageError(op, name, err)
	}

	// The new active copy supersedes any archive
	m.removeArchive(name)

	m.logger.Debug("app content written", zap.String("app", name), zap.Int("bytes", len(data)))
	m.scheduleFreezeLocked(name)
	return nil
}

// Freeze archives an active app now. Freezing a cold app is a no-op.
func (m *Manager) Freeze(ctx context.Context, name string) (err error) {
	const op = "freeze"
	done := m.track(op)
	defer func() { done(err) }()

	if err := m.validateName(op, name); err != nil {
		return err
	}
	unlock, err := m.acquire(ctx, op, name)
	if err != nil {
		return err
	}
	defer unlock()

	return m.freezeLocked(op, name)
}

// State reports which tier holds name
func (m *Manager) State(ctx context.Context, name string) (State, error) {
	const op = "state"
	if err := m.validateName(op, name); err != nil {
		return StateAbsent, err
	}
	unlock, err := m.acquire(ctx, op, name)
	if err != nil {
		return StateAbsent, err
	}
	defer unlock()

	return m.stateLocked(op, name)
}

// List returns every known app sorted by name. It does not take per-name
// locks, so an app in mid-transition is reported in either tier.
func (m *Manager) List(ctx context.Context) (apps []AppInfo, err error) {
	const op = "list"
	done := m.track(op)
	defer func() { done(err) }()

	byName := make(map[string]AppInfo)

	cold, err := m.archivedNames()
	if err != nil {
		return nil, storageError(op, "", err)
	}
	for _, name := range cold {
		info, err := os.Stat(m.layout.ArchivePath(name))
		if err != nil {
			continue
		}
		byName[name] = AppInfo{Name: name, State: StateCold, Size: info.Size(), Modified: info.ModTime()}
	}

	if err := ctx.Err(); err != nil {
		return nil, &Error{Op: op, Kind: KindIO, Err: err}
	}

	active, err := m.activeNames()
	if err != nil {
		return nil, storageError(op, "", err)
	}
	for _, name := range active {
		info, err := os.Stat(m.layout.ActivePath(name))
		if err != nil {
			continue
		}
		byName[name] = AppInfo{Name: name, State: StateActive, Size: info.Size(), Modified: info.ModTime()}
	}

	apps = make([]AppInfo, 0, len(byName))
	activeCount, coldCount := 0, 0
	for _, info := range byName {
		apps = append(apps, info)
		if info.State == StateActive {
			activeCount++
		} else {
			coldCount++
		}
	}
	sort.Slice(apps, func(i, j int) bool { return apps[i].Name < apps[j].Name })

	if m.metrics != nil {
		m.metrics.SetAppCounts(activeCount, coldCount)
	}
	return apps, nil
}

func (m *Manager) validateName(op, name string) error {
	if err := utils.ValidateAppName(name); err != nil {
		return invalid(op, name, err)
	}
	// Second guard: both tiers must resolve inside their roots
	if err := paths.Contains(m.layout.PublicRoot, m.layout.AppDir(name)); err != nil {
		return invalid(op, name, err)
	}
	if err := paths.Contains(m.layout.StorageRoot, m.layout.ArchivePath(name)); err != nil {
		return invalid(op, name, err)
	}
	return nil
}

func (m *Manager) acquire(ctx context.Context, op, name string) (func(), error) {
	unlock, err := m.locks.lock(ctx, name)
	if err != nil {
		return nil, &Error{Op: op, Name: name, Kind: KindIO, Err: err}
	}
	return unlock, nil
}

// track times an operation and counts failures by kind
func (m *Manager) track(op string) func(error) {
	timer := monitoring.NewTimer(m.metrics, op)
	return func(err error) {
		if err == nil {
			timer.Stop("success")
			return
		}
		timer.Stop("error")
		if m.metrics != nil {
			m.metrics.RecordOperationError(op, KindOf(err).String())
		}
	}
}

func (m *Manager) logBreakerChange(name string, from, to resilience.State) {
	m.logger.Warn("circuit breaker state changed",
		zap.String("breaker", name),
		zap.String("from", from.String()),
		zap.String("to", to.String()))
}
