// SPDX-License-Identifier: GPL-3.0-or-later

package fleet

import (
	"fmt"
	"sync"
)

// Mirror is the small outbound facet of the coordination port spec.md
// §4.4 calls CoordinationMirror: Registry publishes every lifecycle
// transition through it and never branches on whether coordination is
// actually enabled — NewRegistry and SetMirror install an internal
// no-op in place of a nil mirror, so publish calls are always safe to
// make on a Registry built through NewRegistry.
type Mirror interface {
	PublishStart(group, id string, stats Analysis)
	PublishStopping(group, id string, stats Analysis)
	PublishStopped(group, id string, removed bool, stats Analysis)
}

type noopMirror struct{}

func (noopMirror) PublishStart(string, string, Analysis)          {}
func (noopMirror) PublishStopping(string, string, Analysis)       {}
func (noopMirror) PublishStopped(string, string, bool, Analysis) {}

// Registry is the factory: the process-wide table of tasks and their
// lifecycle state (spec.md §4.1). A single mutex guards the
// authoritative task map and the group index; per spec.md §5 this is
// the simple, sufficient concurrency model since individual map
// operations need not scale past a handful of goroutines contending on
// bind/unbind (rebalance, not throughput, is the hot path here).
type Registry struct {
	mu     sync.RWMutex
	tasks  map[string]*Task
	groups map[string][]*Task

	executor *Executor
	mirror   Mirror
	onError  func(*TaskExecutionError)

	monitor *Task
}

// NewRegistry builds a Registry wired to executor and mirror. Passing a
// nil mirror installs the internal no-op, so callers that don't care
// about coordination can omit it entirely.
func NewRegistry(executor *Executor, mirror Mirror, onError func(*TaskExecutionError)) *Registry {
	if executor == nil {
		executor = NewExecutor()
	}
	if mirror == nil {
		mirror = noopMirror{}
	}
	r := &Registry{
		tasks:    make(map[string]*Task),
		groups:   make(map[string][]*Task),
		executor: executor,
		mirror:   mirror,
		onError:  onError,
	}
	r.monitor = newStatusMonitorTask(r)
	r.monitor.markStarted()
	r.executor.Submit("status-monitor", r.monitor.run)
	return r
}

// SetMirror swaps the Registry's outbound mirror. It exists for the
// bootstrap ordering a coordination backend typically needs: building
// an EtcdMirror requires a live Registry to dispatch inbound commands
// into, so a caller that wants both wired together constructs the
// Registry first (with a nil mirror) and binds the real one once it
// exists. A nil m reinstalls the no-op.
func (r *Registry) SetMirror(m Mirror) {
	if m == nil {
		m = noopMirror{}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.mirror = m
}

// Register inserts a brand-new task into stopped and appends it to its
// group, then rebalances the group. Duplicate ids fail with
// ErrAlreadyRegistered and mutate nothing (spec.md §4.1, §7).
func (r *Registry) Register(cfg TaskConfig, hooks Hooks) (*Task, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.tasks[cfg.ID]; exists {
		return nil, ErrAlreadyRegistered
	}
	cfg.Executor = r.executor
	t := newTask(cfg, hooks, r.onError)
	r.tasks[cfg.ID] = t
	r.groups[cfg.Group] = append(r.groups[cfg.Group], t)
	r.rebalanceLocked(cfg.Group)
	return t, nil
}

// RegisterDescriptor implements the registration contract of spec.md §6:
// it resolves Parallel and Cron per the documented precedence and
// creates Parallel replicas with consecutive indices 0..Parallel-1.
func (r *Registry) RegisterDescriptor(
	d Descriptor,
	cpuCount int,
	rawParallelProperty string,
	scannedCron []string,
	buildSchedule func(expr string) (Schedule, error),
) ([]*Task, error) {
	if !d.Defined {
		return nil, nil
	}
	parallel, err := ResolveParallel(d, cpuCount, rawParallelProperty)
	if err != nil {
		return nil, err
	}
	if parallel <= 0 {
		return nil, nil
	}

	var sched Schedule
	if expr := ResolveCron(d.StaticCron, scannedCron); expr != "" && buildSchedule != nil {
		sched, err = buildSchedule(expr)
		if err != nil {
			return nil, err
		}
	}

	tasks := make([]*Task, 0, parallel)
	for i := 0; i < parallel; i++ {
		cfg := TaskConfig{
			ID:              fmt.Sprintf("%s-%d", d.Group, i),
			Group:           d.Group,
			Index:           i,
			Total:           parallel,
			Schedule:        sched,
			Interval:        d.Interval,
			RunLimit:        d.RunNumberOfTimes,
			Daemon:          d.Daemon,
			Lazy:            d.Lazy,
			BeforeAfterOnly: d.BeforeAfterOnly,
		}
		t, err := r.Register(cfg, d.Hooks)
		if err != nil {
			return tasks, err
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}

// Start moves id from stopped to started, clears close, and submits it
// to the executor. Returns ErrNotFound if id is absent; no-op if the
// task is not currently stopped with close=true.
func (r *Registry) Start(id string) error {
	r.mu.Lock()
	t, ok := r.tasks[id]
	if !ok {
		r.mu.Unlock()
		return ErrNotFound
	}
	if t.State() != stateStopped || !t.close.Load() {
		r.mu.Unlock()
		return nil
	}
	t.markStarted()
	r.mu.Unlock()

	r.executor.Submit(id, t.run)
	r.mirror.PublishStart(t.Group(), t.ID(), t.Snapshot())
	return nil
}

// StartGroup starts every currently-stopped task in group.
func (r *Registry) StartGroup(group string) {
	for _, id := range r.stoppedIDsInGroup(group) {
		_ = r.Start(id)
	}
}

// StartAll starts every stopped task across every group.
func (r *Registry) StartAll() {
	for _, id := range r.stoppedIDs() {
		_ = r.Start(id)
	}
}

// Close requests a task stop: sets close=true and moves it to
// stopping. Idempotent.
func (r *Registry) Close(id string) error {
	r.mu.RLock()
	t, ok := r.tasks[id]
	r.mu.RUnlock()
	if !ok {
		return ErrNotFound
	}
	r.closeTask(t)
	return nil
}

func (r *Registry) closeTask(t *Task) {
	if t.State() == stateStopping || t.State() == stateStopped {
		return
	}
	t.markClosing()
	r.mirror.PublishStopping(t.Group(), t.ID(), t.Snapshot())
}

// CloseGroup requests stop for every started/stopping task in group.
func (r *Registry) CloseGroup(group string) {
	for _, t := range r.snapshotGroup(group) {
		r.closeTask(t)
	}
}

// CloseAll requests stop for every task known to the registry.
func (r *Registry) CloseAll() {
	for _, t := range r.snapshotAll() {
		r.closeTask(t)
	}
}

// Append clones the highest-index replica of group size times and
// inserts the clones in stopped (spec.md §4.1). Each clone gets
// index=currentTotal, total recomputed by the rebalance that follows.
func (r *Registry) Append(group string, size int, autoStart bool) ([]*Task, error) {
	if size <= 0 {
		return nil, nil
	}
	r.mu.Lock()
	last := lastReplica(r.groups[group])
	if last == nil {
		r.mu.Unlock()
		return nil, newConfigError("group", "cannot append to an empty or unknown group: "+group)
	}
	base := last.Config()
	nextIndex := len(r.groups[group])

	created := make([]*Task, 0, size)
	for i := 0; i < size; i++ {
		id := r.nextCloneID(group, nextIndex)
		nextIndex++
		cfg := base
		cfg.ID = id
		cfg.Index = len(r.groups[group])
		cfg.Total = len(r.groups[group]) + 1
		cfg.Executor = r.executor
		t := newTask(cfg, last.hooks, r.onError)
		r.tasks[id] = t
		r.groups[group] = append(r.groups[group], t)
		created = append(created, t)
	}
	r.rebalanceLocked(group)
	r.mu.Unlock()

	for _, t := range created {
		if autoStart {
			_ = r.Start(t.ID())
		} else {
			r.mirror.PublishStopped(t.Group(), t.ID(), false, t.Snapshot())
		}
	}
	return created, nil
}

// nextCloneID returns a fresh "<group>-<n>" id starting from candidate,
// the group's length before this Append call plus however many clones
// this same call has already placed — so a batch of N appends to a
// group of size M yields the contiguous run M..M+N-1, not one with
// gaps. It only advances past candidate on an actual collision (a
// caller-supplied id from an earlier, differently-numbered Append).
func (r *Registry) nextCloneID(group string, candidate int) string {
	for {
		id := fmt.Sprintf("%s-%d", group, candidate)
		if _, exists := r.tasks[id]; !exists {
			return id
		}
		candidate++
	}
}

// RemoveReplica detaches task from its group (refusing to do so for the
// last replica unless force is set), marks it for removal, and either
// closes it (letting StatusMonitor finalise once its loop exits) or, if
// it is already closed, finalises it immediately. It returns the
// group's remaining size.
func (r *Registry) RemoveReplica(t *Task, force bool) (int, error) {
	r.mu.Lock()
	group := t.Group()
	members := r.groups[group]
	if len(members) <= 1 && !force {
		size := len(members)
		r.mu.Unlock()
		return size, nil
	}

	idx := indexOf(members, t)
	if idx < 0 {
		r.mu.Unlock()
		return len(members), ErrNotFound
	}
	r.groups[group] = append(members[:idx:idx], members[idx+1:]...)
	t.remove.Store(true)
	r.rebalanceLocked(group)
	remaining := len(r.groups[group])
	alreadyClosed := t.IsClosed()
	r.mu.Unlock()

	if !alreadyClosed {
		r.closeTask(t)
	} else {
		r.finalizeStopped(t)
	}
	return remaining, nil
}

// RemoveReplicaFromGroup removes the last (highest-index) replica of
// group.
func (r *Registry) RemoveReplicaFromGroup(group string) (int, error) {
	r.mu.RLock()
	last := lastReplica(r.groups[group])
	r.mu.RUnlock()
	if last == nil {
		return 0, newConfigError("group", "unknown group: "+group)
	}
	return r.RemoveReplica(last, false)
}

// RemoveGroup repeatedly removes the last replica until one remains,
// then closes it.
func (r *Registry) RemoveGroup(group string) error {
	for {
		r.mu.RLock()
		size := len(r.groups[group])
		r.mu.RUnlock()
		if size <= 1 {
			break
		}
		if _, err := r.RemoveReplicaFromGroup(group); err != nil {
			return err
		}
	}
	r.CloseGroup(group)
	return nil
}

// finalizeStopped is StatusMonitor's hook back into the registry: it is
// called once a stopping task's loop has fully exited (closed=true).
// A task marked for removal is dropped from the registry entirely;
// otherwise it is simply moved into the stopped state.
func (r *Registry) finalizeStopped(t *Task) {
	r.mu.Lock()
	removed := t.IsRemoved()
	if removed {
		delete(r.tasks, t.ID())
	} else {
		t.markStopped()
	}
	r.mu.Unlock()

	r.mirror.PublishStopped(t.Group(), t.ID(), removed, t.Snapshot())
}

// Find looks up a task by id.
func (r *Registry) Find(id string) (*Task, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tasks[id]
	return t, ok
}

// FindLast returns the highest-index replica of group, if any.
func (r *Registry) FindLast(group string) (*Task, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t := lastReplica(r.groups[group])
	return t, t != nil
}

// GroupSize returns the number of replicas currently in group.
func (r *Registry) GroupSize(group string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.groups[group])
}

// HasStartedGroup reports whether any replica of group is started.
func (r *Registry) HasStartedGroup(group string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, t := range r.groups[group] {
		if t.State() == stateStarted {
			return true
		}
	}
	return false
}

// HasStoppedGroup reports whether any replica of group is stopped.
func (r *Registry) HasStoppedGroup(group string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, t := range r.groups[group] {
		if t.State() == stateStopped {
			return true
		}
	}
	return false
}

// Groups returns the known group names.
func (r *Registry) Groups() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.groups))
	for g := range r.groups {
		names = append(names, g)
	}
	return names
}

// Snapshot returns every task currently known to the registry, for
// introspection (internal/httpapi) and Lifecycle's drain loop.
func (r *Registry) Snapshot() []*Task {
	return r.snapshotAll()
}

// StartedAndStoppingCount reports len(started)+len(stopping); Lifecycle
// polls this to know when the fleet has drained.
func (r *Registry) StartedAndStoppingCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, t := range r.tasks {
		if s := t.State(); s == stateStarted || s == stateStopping {
			n++
		}
	}
	return n
}

// rebalanceLocked recomputes index/total for every replica of group in
// insertion order (spec.md §4.1). Callers must hold r.mu.
func (r *Registry) rebalanceLocked(group string) {
	members := r.groups[group]
	total := len(members)
	for i, t := range members {
		t.setIndexTotal(i, total)
	}
}

func (r *Registry) stoppedIDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.tasks))
	for id, t := range r.tasks {
		if t.State() == stateStopped {
			ids = append(ids, id)
		}
	}
	return ids
}

func (r *Registry) stoppedIDsInGroup(group string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var ids []string
	for _, t := range r.groups[group] {
		if t.State() == stateStopped {
			ids = append(ids, t.ID())
		}
	}
	return ids
}

func (r *Registry) snapshotGroup(group string) []*Task {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Task, len(r.groups[group]))
	copy(out, r.groups[group])
	return out
}

func (r *Registry) snapshotAll() []*Task {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Task, 0, len(r.tasks))
	for _, t := range r.tasks {
		out = append(out, t)
	}
	return out
}

func lastReplica(members []*Task) *Task {
	if len(members) == 0 {
		return nil
	}
	return members[len(members)-1]
}

func indexOf(members []*Task, target *Task) int {
	for i, t := range members {
		if t == target {
			return i
		}
	}
	return -1
}
