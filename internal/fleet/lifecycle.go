// SPDX-License-Identifier: GPL-3.0-or-later

package fleet

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"
)

// DefaultShutdownTimeout matches spec.md §6's
// scheduler.shutdown-timeout default of 60000ms.
const DefaultShutdownTimeout = 60 * time.Second

// ShutdownReport summarizes a Lifecycle.Shutdown run: spec.md §4.5 says
// ShutdownTimeout is not an error returned to the caller, just logged
// with the elapsed time, so callers get this plain report instead of
// an error on the timeout path.
type ShutdownReport struct {
	Elapsed      time.Duration
	TimedOut     bool
	LeakedTaskID []string
}

// Lifecycle is the orderly-drain shutdown hook of spec.md §4.5.
type Lifecycle struct {
	registry        *Registry
	shutdownTimeout time.Duration
	// DrainExternalQueue, if set, is polled to completion before close
	// is requested — the collaborator hook for an external work queue
	// (out of scope per spec.md §1); nil means there is none to wait for.
	DrainExternalQueue func(ctx context.Context) error
	onReport           func(ShutdownReport)
}

// NewLifecycle builds a shutdown hook for registry with the given
// timeout (0 selects DefaultShutdownTimeout).
func NewLifecycle(registry *Registry, shutdownTimeout time.Duration, onReport func(ShutdownReport)) *Lifecycle {
	if shutdownTimeout <= 0 {
		shutdownTimeout = DefaultShutdownTimeout
	}
	return &Lifecycle{registry: registry, shutdownTimeout: shutdownTimeout, onReport: onReport}
}

// Shutdown runs the drain sequence from spec.md §4.5: wait for any
// external queue, closeAll, snapshot+notify started/stopping tasks,
// then poll until drained or shutdownTimeout elapses, re-notifying the
// snapshot every cycle.
func (l *Lifecycle) Shutdown(ctx context.Context) ShutdownReport {
	start := now()

	if l.DrainExternalQueue != nil {
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error { return l.DrainExternalQueue(gctx) })
		_ = g.Wait()
	}

	l.registry.CloseAll()

	snapshot := l.registry.Snapshot()
	pending := make([]*Task, 0, len(snapshot))
	for _, t := range snapshot {
		if s := t.State(); s == stateStarted || s == stateStopping {
			pending = append(pending, t)
		}
	}
	for _, t := range pending {
		t.Notify()
	}

	deadline := time.Now().Add(l.shutdownTimeout)
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	timedOut := false
drain:
	for {
		if l.registry.StartedAndStoppingCount() == 0 {
			break
		}
		if time.Now().After(deadline) {
			timedOut = true
			break drain
		}
		select {
		case <-ticker.C:
			for _, t := range pending {
				t.Notify()
			}
		case <-ctx.Done():
			timedOut = true
			break drain
		}
	}

	l.registry.monitor.markClosing()

	report := ShutdownReport{Elapsed: now().Sub(start), TimedOut: timedOut}
	if timedOut {
		for _, t := range pending {
			if t.State() != stateStopped {
				report.LeakedTaskID = append(report.LeakedTaskID, t.ID())
			}
		}
	}
	if l.onReport != nil {
		l.onReport(report)
	}
	return report
}
