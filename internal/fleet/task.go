// SPDX-License-Identifier: GPL-3.0-or-later

package fleet

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// taskState is the single authoritative state tag on every Task. Rather
// than moving a Task between three separate maps without a global lock,
// this module keeps one map keyed by id plus this tag; started/
// stopping/stopped are filtered views over it (SPEC_FULL §9, the
// "equivalent and simpler design" the spec's design notes permit).
type taskState int32

const (
	stateStopped taskState = iota
	stateStarted
	stateStopping
)

func (s taskState) String() string {
	switch s {
	case stateStarted:
		return "started"
	case stateStopping:
		return "stopping"
	default:
		return "stopped"
	}
}

// Analysis is the per-task statistics block attached to every
// lifecycle publication (spec.md §4.2, §6).
type Analysis struct {
	Count        int64
	LastRun      time.Time
	LastDuration time.Duration
	TotalRuntime time.Duration
	LastErr      error
}

// Task is a long-running worker driven by before/execute/after/destroy
// hooks. The scheduler loop runs on a goroutine borrowed from an
// Executor; Task itself only owns the cooperative close/closed/remove
// flags and the wake primitive used to interrupt a sleeping loop.
type Task struct {
	id    string
	group string
	hooks Hooks

	cfg atomic.Pointer[TaskConfig]

	state  atomic.Int32
	close  atomic.Bool
	closed atomic.Bool
	remove atomic.Bool

	wake chan struct{}

	onError func(*TaskExecutionError)

	mu       sync.Mutex
	analysis Analysis
}

func newTask(cfg TaskConfig, hooks Hooks, onError func(*TaskExecutionError)) *Task {
	t := &Task{
		id:      cfg.ID,
		group:   cfg.Group,
		hooks:   hooks,
		wake:    make(chan struct{}, 1),
		onError: onError,
	}
	t.cfg.Store(&cfg)
	// spec.md §3 step 1: created tasks start in stopped, close=true, closed=true.
	t.state.Store(int32(stateStopped))
	t.close.Store(true)
	t.closed.Store(true)
	return t
}

// ID returns the task's registry id.
func (t *Task) ID() string { return t.id }

// Group returns the group this task is a replica of.
func (t *Task) Group() string { return t.group }

// Config returns a snapshot of the task's current descriptor. Callers
// that need a stable Index/Total across multiple reads (e.g. the body
// of Execute) must read Config() once at the top of their own
// iteration rather than across iterations, since rebalance may run
// concurrently (spec.md §5).
func (t *Task) Config() TaskConfig { return *t.cfg.Load() }

func (t *Task) setConfig(cfg TaskConfig) { t.cfg.Store(&cfg) }

// setIndexTotal is rebalance's only mutation path: it rewrites the
// index/total fields of the current config without touching anything
// else (schedule, interval, runLimit, flags all survive untouched).
func (t *Task) setIndexTotal(index, total int) {
	cfg := t.Config()
	cfg.Index = index
	cfg.Total = total
	t.setConfig(cfg)
}

func (t *Task) State() taskState { return taskState(t.state.Load()) }

// StateName reports the task's lifecycle state as the lowercase string
// consumers outside this package (httpapi, the status CLI) render —
// "started", "stopping", or "stopped" — since taskState itself stays
// unexported.
func (t *Task) StateName() string { return t.State().String() }

// IsClosed reports whether the scheduler loop has exited. The flag is
// set just before the destroy hook runs, so destroy may still be in
// progress when IsClosed first reports true.
func (t *Task) IsClosed() bool { return t.closed.Load() }

// IsRemoved reports whether this replica was detached via
// Registry.RemoveReplica.
func (t *Task) IsRemoved() bool { return t.remove.Load() }

// Notify wakes a task that is sleeping between scheduled ticks or
// interval iterations (spec.md §4.2, §4.5). It is non-blocking and
// coalesces: multiple notifies before the task wakes are collapsed
// into one wake-up.
func (t *Task) Notify() {
	select {
	case t.wake <- struct{}{}:
	default:
	}
}

// Snapshot returns a copy of the task's analysis counters.
func (t *Task) Snapshot() Analysis {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.analysis
}

func (t *Task) recordIteration(d time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.analysis.Count++
	t.analysis.LastRun = now()
	t.analysis.LastDuration = d
	t.analysis.TotalRuntime += d
}

func (t *Task) recordErr(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.analysis.LastErr = err
}

// markStarted resets the cooperative flags for a fresh run and flips
// the state tag to started. Called by Registry.start under the
// registry lock, before the Task is submitted to the Executor.
func (t *Task) markStarted() {
	t.close.Store(false)
	t.closed.Store(false)
	t.state.Store(int32(stateStarted))
}

// markClosing sets the close flag and flips the state tag to stopping.
// Idempotent: calling it on an already-closing task changes nothing.
func (t *Task) markClosing() {
	t.close.Store(true)
	t.state.Store(int32(stateStopping))
	t.Notify()
}

func (t *Task) markStopped() {
	t.state.Store(int32(stateStopped))
}

func (t *Task) sleepUntil(deadline time.Time) {
	d := time.Until(deadline)
	if d <= 0 {
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-t.wake:
	}
}

func (t *Task) sleepFor(d time.Duration) {
	if d <= 0 {
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-t.wake:
	}
}

// runHook invokes fn, reporting its outcome, wrapped and recorded as a
// TaskExecutionError on failure. A nil hook is a no-op success. The
// bool return lets run() gate a later stage in the same iteration on
// an earlier one's success (spec.md §4.2: before/execute/after sit
// inside one try/catch, so a failing stage must skip the stages after
// it for that tick rather than run them anyway; destroy runs on its
// own once the loop has exited).
func (t *Task) runHook(stage string, fn func() error) bool {
	if fn == nil {
		return true
	}
	if err := t.invoke(fn); err != nil {
		wrapped := &TaskExecutionError{TaskID: t.id, Stage: stage, Err: err}
		t.recordErr(wrapped)
		if t.onError != nil {
			t.onError(wrapped)
		}
		return false
	}
	return true
}

// invoke runs fn and converts a panic into an error so a single
// misbehaving hook can never take down the worker goroutine (spec.md
// §7: TaskExecutionError is logged and counted, never propagated).
func (t *Task) invoke(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn()
}

// run is the scheduler loop described in spec.md §4.2. It is executed
// on a goroutine owned by an Executor; it returns once task.close is
// observed at a safe point and destroy() has run.
func (t *Task) run() {
	invocations := 0
	for {
		if t.close.Load() {
			break
		}

		cfg := t.Config()
		if cfg.Schedule != nil {
			if invocations > 0 || cfg.Lazy {
				next := cfg.Schedule.NextAfter(now())
				t.sleepUntil(next)
			}
			if t.close.Load() {
				break
			}
		} else if invocations == 0 && cfg.Lazy && cfg.Interval > 0 {
			// lazy + interval-only: the first tick also waits, instead
			// of firing immediately (spec.md §9 open-question resolution).
			t.sleepFor(cfg.Interval)
			if t.close.Load() {
				break
			}
		}

		start := now()
		runBefore := !cfg.BeforeAfterOnly || invocations == 0
		beforeOK := true
		if runBefore {
			beforeOK = t.runHook("before", t.hooks.Before)
		}
		// A failing before aborts execute/after for this tick, and a
		// failing execute aborts after: the three sit in one try/catch, so
		// the catch reports and the loop moves on to the next tick rather
		// than running the later stages anyway.
		executeOK := false
		if beforeOK {
			executeOK = t.runHook("execute", t.hooks.Execute)
		}

		invocations++
		if cfg.RunLimit > 0 && invocations >= cfg.RunLimit {
			t.close.Store(true)
		}
		reachedLastIteration := t.close.Load()
		runAfter := executeOK && (!cfg.BeforeAfterOnly || reachedLastIteration)
		if runAfter {
			t.runHook("after", t.hooks.After)
		}
		t.recordIteration(now().Sub(start))

		if cfg.Schedule == nil && cfg.Interval > 0 {
			t.sleepFor(cfg.Interval)
		}
	}
	t.closed.Store(true)
	t.runHook("destroy", t.hooks.Destroy)
}
