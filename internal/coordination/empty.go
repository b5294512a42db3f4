// SPDX-License-Identifier: GPL-3.0-or-later

package coordination

import "github.com/taskfleet/scheduler/internal/fleet"

// Empty satisfies fleet.Mirror without publishing anything; a caller can
// pass it wherever a Mirror is taken when coordination is disabled
// (spec.md §9: coordination absence must be transparent, never a branch
// the Registry itself has to take). NewRegistry does not use Empty: given
// a nil mirror it installs fleet's own equivalent no-op.
type Empty struct{}

func (Empty) PublishStart(string, string, fleet.Analysis)          {}
func (Empty) PublishStopping(string, string, fleet.Analysis)       {}
func (Empty) PublishStopped(string, string, bool, fleet.Analysis) {}
