// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

type replicaSummary struct {
	ID    string `json:"id"`
	Index int    `json:"index"`
	State string `json:"state"`
}

type groupSummary struct {
	Name  string           `json:"name"`
	Size  int              `json:"size"`
	Tasks []replicaSummary `json:"tasks"`
}

// statusCmd queries a running scheduler's introspection API and prints
// a colorized summary, the CLI-side counterpart to the teacher's own
// status command.
func statusCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the groups registered with a running scheduler",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return printStatus(addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "http://localhost:8090", "introspection API base address")
	return cmd
}

func printStatus(addr string) error {
	resp, err := http.Get(addr + "/groups")
	if err != nil {
		return fmt.Errorf("query %s: %w", addr, err)
	}
	defer resp.Body.Close()

	var groups []groupSummary
	if err := json.NewDecoder(resp.Body).Decode(&groups); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	good := color.New(color.FgGreen)
	bold := color.New(color.Bold)
	dim := color.New(color.FgHiBlack)
	if len(groups) == 0 {
		fmt.Println("no groups registered")
		return nil
	}
	for _, g := range groups {
		bold.Printf("%s", g.Name)
		good.Printf(" (%d replicas)\n", g.Size)
		for _, t := range g.Tasks {
			fmt.Printf("  - %s [%d]", t.ID, t.Index)
			dim.Printf(" %s\n", t.State)
		}
	}
	return nil
}
