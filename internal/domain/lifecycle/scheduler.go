package lifecycle

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/GriffinCanCode/glitchly/backend/internal/infrastructure/resilience"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Reasons recorded when a scheduled freeze does not run
const (
	skipSuperseded  = "superseded"
	skipShutdown    = "shutdown"
	skipBreakerOpen = "breaker_open"
)

// scheduleFreezeLocked records a new generation for name and starts a
// delayed freeze for it. The caller holds the per-name lock, so the
// generation is ordered with the write that triggered it.
func (m *Manager) scheduleFreezeLocked(name string) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.seq++
	gen := m.seq
	m.generations[name] = gen
	m.pending.Add(1)
	m.mu.Unlock()

	go m.runScheduledFreeze(name, gen)
}

func (m *Manager) runScheduledFreeze(name string, gen uint64) {
	defer m.pending.Done()

	if m.opts.FreezeDelay > 0 {
		timer := time.NewTimer(m.opts.FreezeDelay)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-m.stop:
			m.recordSkip(name, skipShutdown)
			return
		}
	}

	unlock, err := m.locks.lock(context.Background(), name)
	if err != nil {
		return
	}
	defer unlock()

	if !m.isLatest(name, gen) {
		m.recordSkip(name, skipSuperseded)
		return
	}
	defer m.retire(name, gen)

	var freezeErr error
	err = m.breaker.Execute(func() error {
		freezeErr = m.freezeLocked("scheduled_freeze", name)
		if errors.Is(freezeErr, ErrNotFound) {
			return nil
		}
		return freezeErr
	})

	switch {
	case errors.Is(err, resilience.ErrCircuitOpen), errors.Is(err, resilience.ErrTooManyRequests):
		m.recordSkip(name, skipBreakerOpen)
		m.logger.Warn("scheduled freeze skipped, archive breaker open", zap.String("app", name))
	case freezeErr != nil && !errors.Is(freezeErr, ErrNotFound):
		if m.metrics != nil {
			m.metrics.RecordOperationError("scheduled_freeze", KindOf(freezeErr).String())
		}
		m.logger.Error("scheduled freeze failed, app stays active",
			zap.String("app", name),
			zap.Error(freezeErr))
	}
}

func (m *Manager) isLatest(name string, gen uint64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.generations[name] == gen
}

func (m *Manager) retire(name string, gen uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.generations[name] == gen {
		delete(m.generations, name)
	}
}

func (m *Manager) recordSkip(name, reason string) {
	if m.metrics != nil {
		m.metrics.RecordFreezeSkipped(reason)
	}
	m.logger.Debug("scheduled freeze skipped", zap.String("app", name), zap.String("reason", reason))
}

// FreezeAll freezes every active app with bounded concurrency. It returns
// the number of apps frozen and the joined per-app failures.
func (m *Manager) FreezeAll(ctx context.Context) (int, error) {
	names, err := m.activeNames()
	if err != nil {
		return 0, storageError("freeze_all", "", err)
	}

	var (
		mu     sync.Mutex
		frozen int
		errs   []error
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(m.opts.FreezeConcurrency)
	for _, name := range names {
		g.Go(func() error {
			if err := m.Freeze(ctx, name); err != nil {
				if !errors.Is(err, ErrNotFound) {
					mu.Lock()
					errs = append(errs, err)
					mu.Unlock()
				}
				return nil
			}
			mu.Lock()
			frozen++
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	m.logger.Info("freeze all completed",
		zap.Int("apps", len(names)),
		zap.Int("frozen", frozen),
		zap.Int("failed", len(errs)))
	return frozen, errors.Join(errs...)
}

// Wait blocks until every scheduled freeze has finished or been skipped
func (m *Manager) Wait() {
	m.pending.Wait()
}

// Close cancels pending freezes and waits for running ones. Apps whose
// freeze was cancelled stay active. Close is idempotent.
func (m *Manager) Close() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	close(m.stop)
	m.mu.Unlock()

	m.pending.Wait()
}
