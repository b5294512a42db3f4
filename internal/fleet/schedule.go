// SPDX-License-Identifier: GPL-3.0-or-later

package fleet

import (
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Schedule is the opaque cron-like predicate a Task consults to find its
// next fire time. It is treated as a collaborator interface: this module
// never parses cron expressions itself, it only calls NextAfter.
type Schedule interface {
	// NextAfter returns the next instant strictly after now at which the
	// task should run.
	NextAfter(now time.Time) time.Time
}

// cronSchedule adapts a robfig/cron expression to the Schedule
// interface. robfig/cron already computes drift-tolerant next-fire
// times from the instant passed in, rather than from an accumulated
// total, so a long-running Execute never causes compounding skipped
// ticks (see SPEC_FULL.md §10).
type cronSchedule struct {
	expr     string
	schedule cron.Schedule
}

var cronParser = cron.NewParser(
	cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// NewCronSchedule parses a six-field cron expression (the leading
// seconds field is required) or a descriptor such as "@every 1s" into a
// Schedule. A malformed expression is a
// registration-time ConfigError, not a panic.
func NewCronSchedule(expr string) (Schedule, error) {
	sched, err := cronParser.Parse(expr)
	if err != nil {
		return nil, newConfigError("cron", err.Error())
	}
	return &cronSchedule{expr: expr, schedule: sched}, nil
}

func (c *cronSchedule) NextAfter(now time.Time) time.Time {
	return c.schedule.Next(now)
}

func (c *cronSchedule) String() string { return c.expr }

// now() is the package's clock seam for schedule arithmetic and analysis
// timestamps. Tests pin it to a fixed instant so those are deterministic,
// mirroring the teacher's setFixedTime/now() test seam. Timer-based waits
// (sleepUntil, sleepFor) and Lifecycle's deadline use the real clock.
var clockMu sync.RWMutex
var fixedTime time.Time

func now() time.Time {
	clockMu.RLock()
	defer clockMu.RUnlock()
	if !fixedTime.IsZero() {
		return fixedTime
	}
	return time.Now()
}

// setFixedTime pins now() to t for deterministic tests. Passing the
// zero Time reverts to the real wall clock.
func setFixedTime(t time.Time) {
	clockMu.Lock()
	defer clockMu.Unlock()
	fixedTime = t
}
