/*
Package resilience provides a circuit breaker for background storage work.

# Overview

Background freezes compress idle apps into the archive store. When the
archive store keeps failing (disk full, permissions) there is no point in
retrying every freeze; the breaker opens and freezes are skipped until the
timeout elapses. Skipped apps simply stay active.

# Usage

	breaker := resilience.New("archive", resilience.Settings{
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts resilience.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})

	err := breaker.Execute(func() error {
		return freeze(name)
	})
	if errors.Is(err, resilience.ErrCircuitOpen) {
		// skipped
	}

# States

	Closed --[failures]-> Open --[timeout]-> Half-Open --[successes]-> Closed
	                                           |
	                                       [failure]
	                                           v
	                                         Open
*/
package resilience
