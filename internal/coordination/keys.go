// SPDX-License-Identifier: GPL-3.0-or-later

package coordination

import "fmt"

// Key layout under root (spec.md §6):
//
//	<root>/<group>/<id>/state        current lifecycle state, one of
//	                                  "started"|"stopping"|"stopped"|"removed"
//	<root>/<group>/<id>/analysis     JSON-encoded fleet.Analysis
//	<root>/_commands/<seq>           an ordered inbound command queue;
//	                                  seq is an etcd lease-free key
//	                                  suffix supplied by whatever put
//	                                  the command (CLI, another
//	                                  replica's admin surface, etc.)

func stateKey(root, group, id string) string {
	return fmt.Sprintf("%s/%s/%s/state", root, group, id)
}

func analysisKey(root, group, id string) string {
	return fmt.Sprintf("%s/%s/%s/analysis", root, group, id)
}

func commandsPrefix(root string) string {
	return root + "/_commands/"
}
