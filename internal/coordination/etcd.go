// SPDX-License-Identifier: GPL-3.0-or-later

package coordination

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	clientv3 "go.etcd.io/etcd/client/v3"

	"github.com/taskfleet/scheduler/internal/fleet"
)

// commandCacheSize bounds the dedupe LRU: a replica that reconnects
// after a watch gap only needs to avoid replaying commands it already
// applied within roughly one compaction window, not the cluster's full
// history.
const commandCacheSize = 4096

// EtcdMirror is the real CoordinationMirror: it publishes every
// lifecycle transition under root and relays commands written to
// root's _commands queue back into registry. Publish failures are
// retried in the background and never block the caller (spec.md §7).
type EtcdMirror struct {
	client   *clientv3.Client
	root     string
	registry *fleet.Registry
	log      Logger

	seen *lru.Cache[string, struct{}]

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewEtcdMirror builds a mirror over client. Call Run to start the
// background command watcher; PublishStart/Stopping/Stopped work
// immediately without it.
func NewEtcdMirror(client *clientv3.Client, root string, registry *fleet.Registry, log Logger) *EtcdMirror {
	if log == nil {
		log = nopLogger{}
	}
	cache, _ := lru.New[string, struct{}](commandCacheSize) // only errors on a non-positive size
	ctx, cancel := context.WithCancel(context.Background())
	return &EtcdMirror{
		client:   client,
		root:     root,
		registry: registry,
		log:      log,
		seen:     cache,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Run starts the command watcher. It blocks until ctx is done or Stop
// is called; callers should run it on its own goroutine.
func (m *EtcdMirror) Run(ctx context.Context) {
	prefix := commandsPrefix(m.root)
	retrier := NewRetrier(200 * time.Millisecond)

	for {
		select {
		case <-ctx.Done():
			return
		case <-m.ctx.Done():
			return
		default:
		}

		watchCh := m.client.Watch(m.ctx, prefix, clientv3.WithPrefix())
		m.log.Infof("coordination: watching %s", prefix)
		retrier.Reset()

	watchLoop:
		for {
			select {
			case <-ctx.Done():
				return
			case <-m.ctx.Done():
				return
			case resp, ok := <-watchCh:
				if !ok {
					break watchLoop
				}
				if err := resp.Err(); err != nil {
					m.log.Warnf("%v", &CoordinationError{Op: "watch", Key: prefix, Err: err})
					break watchLoop
				}
				for _, ev := range resp.Events {
					if ev.Type != clientv3.EventTypePut {
						continue
					}
					m.dispatch(string(ev.Kv.Key), ev.Kv.Value)
				}
			}
		}

		if err := retrier.Next(m.ctx); err != nil {
			return
		}
	}
}

// Stop cancels the watch loop and any in-flight publish retries.
func (m *EtcdMirror) Stop() {
	m.cancel()
	m.wg.Wait()
}

func (m *EtcdMirror) dispatch(key string, value []byte) {
	if _, dup := m.seen.Get(key); dup {
		return
	}
	m.seen.Add(key, struct{}{})

	var cmd command
	if err := json.Unmarshal(value, &cmd); err != nil {
		m.log.Warnf("coordination: malformed command at %s: %v", key, err)
		return
	}

	switch cmd.Op {
	case "start":
		if err := m.registry.Start(cmd.ID); err != nil {
			m.log.Warnf("coordination: remote start %s failed: %v", cmd.ID, err)
		}
	case "stop":
		if err := m.registry.Close(cmd.ID); err != nil {
			m.log.Warnf("coordination: remote stop %s failed: %v", cmd.ID, err)
		}
	case "append":
		if _, err := m.registry.Append(cmd.Group, cmd.Size, true); err != nil {
			m.log.Warnf("coordination: remote append to %s failed: %v", cmd.Group, err)
		}
	case "remove":
		if _, err := m.registry.RemoveReplicaFromGroup(cmd.Group); err != nil {
			m.log.Warnf("coordination: remote remove from %s failed: %v", cmd.Group, err)
		}
	default:
		m.log.Warnf("coordination: unknown command op %q at %s", cmd.Op, key)
	}
}

// PublishStart implements fleet.Mirror.
func (m *EtcdMirror) PublishStart(group, id string, stats fleet.Analysis) {
	m.publish(group, id, "started", stats)
}

// PublishStopping implements fleet.Mirror.
func (m *EtcdMirror) PublishStopping(group, id string, stats fleet.Analysis) {
	m.publish(group, id, "stopping", stats)
}

// PublishStopped implements fleet.Mirror. removed is folded into the
// published state string so a watcher can tell a finalized removal
// apart from a task that merely stopped and may restart.
func (m *EtcdMirror) PublishStopped(group, id string, removed bool, stats fleet.Analysis) {
	state := "stopped"
	if removed {
		state = "removed"
	}
	m.publish(group, id, state, stats)
}

func (m *EtcdMirror) publish(group, id, state string, stats fleet.Analysis) {
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		m.publishWithRetry(group, id, state, stats)
	}()
}

// publishWithRetry writes the state and analysis keys for a single
// transition, retrying transient etcd errors with backoff. It gives up
// silently after the Retrier is exhausted: a missed mirror write is a
// CoordinationError (spec.md §7), logged here, never propagated to the
// task that triggered it.
func (m *EtcdMirror) publishWithRetry(group, id, state string, stats fleet.Analysis) {
	retrier := NewRetrier(100 * time.Millisecond)
	retrier.MaxRetries = 5

	payload, err := json.Marshal(stats)
	if err != nil {
		m.log.Errorf("coordination: marshal analysis for %s: %v", id, err)
		return
	}

	key := stateKey(m.root, group, id)
	for {
		ctx, cancel := context.WithTimeout(m.ctx, 2*time.Second)
		_, err := m.client.Txn(ctx).Then(
			clientv3.OpPut(key, state),
			clientv3.OpPut(analysisKey(m.root, group, id), string(payload)),
		).Commit()
		cancel()
		if err == nil {
			return
		}

		coordErr := &CoordinationError{Op: "publish", Key: key, Err: err}
		m.log.Warnf("%v", coordErr)
		if retryErr := retrier.Next(m.ctx); retryErr != nil {
			m.log.Errorf("giving up: %v", coordErr)
			return
		}
	}
}

// SubmitCommand enqueues a command for any scheduler replica watching
// root's command prefix to pick up and dispatch; the key suffix is a
// random uuid rather than a counter since multiple peers may submit
// concurrently with no shared sequence source (spec.md §6's
// CoordinationPort is an opaque mirror, not a distributed log).
func SubmitCommand(ctx context.Context, client *clientv3.Client, root, op, group, id string, size int, force bool) error {
	payload, err := json.Marshal(command{Op: op, Group: group, ID: id, Size: size, Force: force})
	if err != nil {
		return fmt.Errorf("coordination: marshal command: %w", err)
	}
	key := commandsPrefix(root) + uuid.New().String()
	if _, err := client.Put(ctx, key, string(payload)); err != nil {
		return &CoordinationError{Op: "dispatch", Key: key, Err: err}
	}
	return nil
}
