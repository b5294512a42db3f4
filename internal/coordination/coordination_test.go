// SPDX-License-Identifier: GPL-3.0-or-later

package coordination

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/taskfleet/scheduler/internal/fleet"
)

func TestEmpty_SatisfiesMirrorWithoutPanicking(t *testing.T) {
	t.Parallel()
	var m fleet.Mirror = Empty{}
	m.PublishStart("g", "g-0", fleet.Analysis{})
	m.PublishStopping("g", "g-0", fleet.Analysis{})
	m.PublishStopped("g", "g-0", true, fleet.Analysis{})
}

func TestRetrier_BacksOffExponentially(t *testing.T) {
	t.Parallel()
	r := NewRetrier(5 * time.Millisecond)
	r.MaxInterval = 40 * time.Millisecond

	start := time.Now()
	require.NoError(t, r.Next(context.Background()))
	first := time.Since(start)
	require.GreaterOrEqual(t, first, 5*time.Millisecond)

	start = time.Now()
	require.NoError(t, r.Next(context.Background()))
	second := time.Since(start)
	require.GreaterOrEqual(t, second, 10*time.Millisecond)
}

func TestRetrier_ExhaustsAfterMaxRetries(t *testing.T) {
	t.Parallel()
	r := NewRetrier(time.Millisecond)
	r.MaxRetries = 2

	require.NoError(t, r.Next(context.Background()))
	require.NoError(t, r.Next(context.Background()))
	require.ErrorIs(t, r.Next(context.Background()), ErrRetriesExhausted)
}

func TestRetrier_RespectsContextCancellation(t *testing.T) {
	t.Parallel()
	r := NewRetrier(time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, r.Next(ctx), context.Canceled)
}

func TestCommandDispatch_DedupesRepeatedKey(t *testing.T) {
	t.Parallel()
	registry := fleet.NewRegistry(nil, nil, nil)
	calls := 0
	_, err := registry.Register(fleet.TaskConfig{ID: "g-0", Group: "g", Index: 0, Total: 1, Interval: time.Hour},
		fleet.Hooks{Execute: func() error { calls++; return nil }})
	require.NoError(t, err)

	m := NewEtcdMirror(nil, "/scheduler", registry, nil)
	payload := []byte(`{"op":"start","group":"g","id":"g-0"}`)

	m.dispatch("/scheduler/_commands/1", payload)
	m.dispatch("/scheduler/_commands/1", payload)

	tk, ok := registry.Find("g-0")
	require.True(t, ok)
	require.Eventually(t, func() bool { return tk.Snapshot().Count >= 1 }, time.Second, time.Millisecond)

	// The same key carrying a stop is dropped as already seen, so the task stays started.
	m.dispatch("/scheduler/_commands/1", []byte(`{"op":"stop","group":"g","id":"g-0"}`))
	require.Equal(t, "started", tk.StateName())
}
