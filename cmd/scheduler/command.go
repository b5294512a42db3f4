// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	clientv3 "go.etcd.io/etcd/client/v3"

	"github.com/taskfleet/scheduler/internal/coordination"
)

// commandCmd enqueues a start/stop/append/remove command for any
// scheduler replica watching the same etcd root to pick up, without
// needing a direct connection to that replica's own process.
func commandCmd() *cobra.Command {
	var (
		endpoints []string
		root      string
		group     string
		id        string
		size      int
		force     bool
	)
	cmd := &cobra.Command{
		Use:       "command [start|stop|append|remove]",
		Short:     "Enqueue a coordination command for any replica watching the etcd root",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"start", "stop", "append", "remove"},
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := clientv3.New(clientv3.Config{Endpoints: endpoints, DialTimeout: 5 * time.Second})
			if err != nil {
				return fmt.Errorf("etcd client: %w", err)
			}
			defer client.Close()

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return coordination.SubmitCommand(ctx, client, root, args[0], group, id, size, force)
		},
	}
	cmd.Flags().StringSliceVar(&endpoints, "endpoints", []string{"localhost:2379"}, "etcd endpoints")
	cmd.Flags().StringVar(&root, "root", "/scheduler", "etcd coordination root")
	cmd.Flags().StringVar(&group, "group", "", "target group")
	cmd.Flags().StringVar(&id, "id", "", "target task id (start/stop)")
	cmd.Flags().IntVar(&size, "size", 1, "replicas to append (append only)")
	cmd.Flags().BoolVar(&force, "force", false, "set the command's force field (the watcher's remove handler ignores it and never removes a group's last replica)")
	return cmd
}
