// SPDX-License-Identifier: GPL-3.0-or-later

// Package httpapi exposes the introspection surface SPEC_FULL.md adds
// on top of spec.md's original scope: a read-only view of group/task
// state and a Prometheus scrape endpoint, routed with go-chi the way
// the rest of the examples pack's HTTP services do.
package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/taskfleet/scheduler/internal/fleet"
)

// ReplicaSummary is one replica's entry within a GroupSummary: its id,
// its current index within the group, and its lifecycle state.
type ReplicaSummary struct {
	ID    string `json:"id"`
	Index int    `json:"index"`
	State string `json:"state"`
}

// GroupSummary is the JSON shape returned by GET /groups: a snapshot of
// every group's replicas, indices, and states.
type GroupSummary struct {
	Name  string           `json:"name"`
	Size  int              `json:"size"`
	Tasks []ReplicaSummary `json:"tasks"`
}

// TaskSummary is the JSON shape returned by GET /tasks/{id}.
type TaskSummary struct {
	ID       string         `json:"id"`
	Group    string         `json:"group"`
	Index    int            `json:"index"`
	Total    int            `json:"total"`
	State    string         `json:"state"`
	Closed   bool           `json:"closed"`
	Removed  bool           `json:"removed"`
	Analysis fleet.Analysis `json:"analysis"`
}

// NewRouter builds the chi router for the introspection API. metrics
// may be nil, in which case /metrics serves an empty registry's output
// rather than panicking — coordination (and therefore the Prometheus
// bridge) is optional per spec.md §9.
func NewRouter(registry *fleet.Registry, metrics prometheus.Collector) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet},
	}))

	r.Get("/groups", listGroups(registry))
	r.Get("/tasks/{id}", getTask(registry))

	reg := prometheus.NewRegistry()
	if metrics != nil {
		reg.MustRegister(metrics)
	}
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	return r
}

func listGroups(registry *fleet.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		byGroup := make(map[string][]ReplicaSummary)
		for _, t := range registry.Snapshot() {
			byGroup[t.Group()] = append(byGroup[t.Group()], ReplicaSummary{
				ID:    t.ID(),
				Index: t.Config().Index,
				State: t.StateName(),
			})
		}
		out := make([]GroupSummary, 0, len(byGroup))
		for name, replicas := range byGroup {
			out = append(out, GroupSummary{Name: name, Size: len(replicas), Tasks: replicas})
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func getTask(registry *fleet.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		t, ok := registry.Find(id)
		if !ok {
			http.Error(w, "task not found", http.StatusNotFound)
			return
		}
		cfg := t.Config()
		writeJSON(w, http.StatusOK, TaskSummary{
			ID:       t.ID(),
			Group:    t.Group(),
			Index:    cfg.Index,
			Total:    cfg.Total,
			State:    t.StateName(),
			Closed:   t.IsClosed(),
			Removed:  t.IsRemoved(),
			Analysis: t.Snapshot(),
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
