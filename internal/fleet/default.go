// SPDX-License-Identifier: GPL-3.0-or-later

package fleet

import "sync"

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
)

// Default returns a lazily-initialized, process-wide Registry backed by
// a fresh Executor and the no-op Mirror. This is the convenience escape
// hatch spec.md §9 allows alongside explicit construction via
// NewRegistry; sync.Once is Go's idiomatic replacement for the source's
// double-checked-locking singleton.
func Default() *Registry {
	defaultOnce.Do(func() {
		defaultRegistry = NewRegistry(NewExecutor(), nil, nil)
	})
	return defaultRegistry
}
