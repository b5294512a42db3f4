// SPDX-License-Identifier: GPL-3.0-or-later

package fleet

// newStatusMonitorTask builds the 1 Hz background sweep described in
// spec.md §4.3: it is itself a Task driven by the same scheduler loop
// every other replica uses, which is why it is constructed here rather
// than given a bespoke goroutine. It must never be closed during normal
// operation, so it lives outside Registry.tasks/groups entirely — no
// group operation (CloseAll, RemoveGroup, ...) can ever reach it.
func newStatusMonitorTask(r *Registry) *Task {
	sched, err := NewCronSchedule("@every 1s")
	if err != nil {
		// "@every 1s" is a fixed, known-good expression; a parse failure
		// here would mean the cron parser itself is broken.
		panic(err)
	}

	staged := make(map[string]*Task)

	hooks := Hooks{
		Before: func() error {
			for _, t := range r.snapshotAll() {
				if t.State() == stateStopping && t.IsClosed() {
					staged[t.ID()] = t
				}
			}
			return nil
		},
		Execute: func() error {
			for id, t := range staged {
				r.finalizeStopped(t)
				delete(staged, id)
			}
			return nil
		},
		After: func() error {
			for id := range staged {
				delete(staged, id)
			}
			return nil
		},
	}

	cfg := TaskConfig{
		ID:       "status-monitor",
		Group:    "__status_monitor__",
		Index:    0,
		Total:    1,
		Schedule: sched,
		Daemon:   true,
		Executor: r.executor,
	}
	return newTask(cfg, hooks, r.onError)
}
