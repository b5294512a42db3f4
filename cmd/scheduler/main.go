// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"os"

	"github.com/spf13/cobra"
)

var version = "0.0.0"

func main() {
	cmd := &cobra.Command{
		Use:   "scheduler",
		Short: "Process-local, cluster-aware task scheduler",
		Long:  "scheduler [run|status|command|version] [flags]",
	}

	cmd.AddCommand(runCmd())
	cmd.AddCommand(statusCmd())
	cmd.AddCommand(commandCmd())
	cmd.AddCommand(versionCmd())

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the scheduler version",
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Println(version)
		},
	}
}
