// SPDX-License-Identifier: GPL-3.0-or-later

package fleet

import (
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestResolveParallel_Precedence(t *testing.T) {
	t.Parallel()

	t.Run("CoreParallelWins", func(t *testing.T) {
		d := Descriptor{CoreParallel: true, StaticParallel: 9}
		got, err := ResolveParallel(d, runtime.NumCPU(), "4")
		require.NoError(t, err)
		require.Equal(t, runtime.NumCPU(), got)
	})

	t.Run("PropertyOverridesStatic", func(t *testing.T) {
		d := Descriptor{StaticParallel: 2}
		got, err := ResolveParallel(d, 8, "5")
		require.NoError(t, err)
		require.Equal(t, 5, got)
	})

	t.Run("FallsBackToStatic", func(t *testing.T) {
		d := Descriptor{StaticParallel: 3}
		got, err := ResolveParallel(d, 8, "")
		require.NoError(t, err)
		require.Equal(t, 3, got)
	})

	t.Run("MalformedPropertyIsConfigError", func(t *testing.T) {
		d := Descriptor{StaticParallel: 3}
		_, err := ResolveParallel(d, 8, "not-a-number")
		var cfgErr *ConfigError
		require.ErrorAs(t, err, &cfgErr)
	})

	t.Run("NegativeStaticClampedToZero", func(t *testing.T) {
		d := Descriptor{StaticParallel: -5}
		got, err := ResolveParallel(d, 8, "")
		require.NoError(t, err)
		require.Equal(t, 0, got)
	})
}

func TestResolveCron_LastNonBlankWins(t *testing.T) {
	t.Parallel()

	require.Equal(t, "static", ResolveCron("static", nil))
	require.Equal(t, "static", ResolveCron("static", []string{"", "  "}))
	require.Equal(t, "from-props", ResolveCron("static", []string{"older", "from-props"}))
}

func TestTaskConfig_Validate(t *testing.T) {
	t.Parallel()

	t.Run("RejectsNegativeRunLimit", func(t *testing.T) {
		cfg := TaskConfig{ID: "a-0", Group: "a", Index: 0, Total: 1, RunLimit: -1}
		require.Error(t, cfg.validate())
	})

	t.Run("RejectsIndexOutOfRange", func(t *testing.T) {
		cfg := TaskConfig{ID: "a-0", Group: "a", Index: 2, Total: 2}
		require.Error(t, cfg.validate())
	})

	t.Run("AcceptsValidConfig", func(t *testing.T) {
		cfg := TaskConfig{ID: "a-0", Group: "a", Index: 0, Total: 1, Interval: time.Millisecond}
		require.NoError(t, cfg.validate())
	})
}

func TestRegistry_RegisterDescriptor_CreatesConsecutiveReplicas(t *testing.T) {
	t.Parallel()
	r := newTestRegistry()

	d := Descriptor{
		Group:          "Y",
		Hooks:          Hooks{Execute: func() error { return nil }},
		StaticParallel: 3,
		Interval:       5 * time.Millisecond,
		Defined:        true,
	}
	tasks, err := r.RegisterDescriptor(d, 0, "", nil, nil)
	require.NoError(t, err)
	require.Len(t, tasks, 3)
	for i, tk := range tasks {
		require.Equal(t, i, tk.Config().Index)
		require.Equal(t, 3, tk.Config().Total)
	}
}

func TestRegistry_RegisterDescriptor_SkipsWhenNotDefined(t *testing.T) {
	t.Parallel()
	r := newTestRegistry()

	tasks, err := r.RegisterDescriptor(Descriptor{Group: "Z", Defined: false}, 0, "", nil, nil)
	require.NoError(t, err)
	require.Nil(t, tasks)
	require.Equal(t, 0, r.GroupSize("Z"))
}
