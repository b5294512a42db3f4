// SPDX-License-Identifier: GPL-3.0-or-later

package coordination

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/taskfleet/scheduler/internal/fleet"
)

// MetricsBridge exposes a Registry's task counters as Prometheus gauges
// (SPEC_FULL.md §4.7's JMX-equivalent). It implements prometheus.Collector
// directly rather than pushing updates on every iteration, so a scrape
// always reflects the live Snapshot() rather than a stale cached value.
type MetricsBridge struct {
	registry *fleet.Registry

	iterations  *prometheus.Desc
	lastRuntime *prometheus.Desc
	totalTime   *prometheus.Desc
	groupSize   *prometheus.Desc
	hasError    *prometheus.Desc
}

// NewMetricsBridge builds a Collector over registry. Register it with a
// prometheus.Registry (or the default one) before serving /metrics.
func NewMetricsBridge(registry *fleet.Registry) *MetricsBridge {
	return &MetricsBridge{
		registry: registry,
		iterations: prometheus.NewDesc(
			"scheduler_task_iterations_total", "Completed iterations of a task's execute hook.",
			[]string{"group", "id"}, nil,
		),
		lastRuntime: prometheus.NewDesc(
			"scheduler_task_last_duration_seconds", "Wall time of the task's most recent iteration.",
			[]string{"group", "id"}, nil,
		),
		totalTime: prometheus.NewDesc(
			"scheduler_task_total_runtime_seconds", "Cumulative wall time spent in this task's iterations.",
			[]string{"group", "id"}, nil,
		),
		groupSize: prometheus.NewDesc(
			"scheduler_group_size", "Number of replicas currently registered in a group.",
			[]string{"group"}, nil,
		),
		hasError: prometheus.NewDesc(
			"scheduler_task_last_error", "1 if the task has recorded a hook error since it was registered, else 0.",
			[]string{"group", "id"}, nil,
		),
	}
}

func (m *MetricsBridge) Describe(ch chan<- *prometheus.Desc) {
	ch <- m.iterations
	ch <- m.lastRuntime
	ch <- m.totalTime
	ch <- m.groupSize
	ch <- m.hasError
}

func (m *MetricsBridge) Collect(ch chan<- prometheus.Metric) {
	sizes := make(map[string]int)
	for _, t := range m.registry.Snapshot() {
		group, id := t.Group(), t.ID()
		sizes[group]++

		stats := t.Snapshot()
		ch <- prometheus.MustNewConstMetric(m.iterations, prometheus.CounterValue, float64(stats.Count), group, id)
		ch <- prometheus.MustNewConstMetric(m.lastRuntime, prometheus.GaugeValue, stats.LastDuration.Seconds(), group, id)
		ch <- prometheus.MustNewConstMetric(m.totalTime, prometheus.CounterValue, stats.TotalRuntime.Seconds(), group, id)

		errVal := 0.0
		if stats.LastErr != nil {
			errVal = 1.0
		}
		ch <- prometheus.MustNewConstMetric(m.hasError, prometheus.GaugeValue, errVal, group, id)
	}
	for group, size := range sizes {
		ch <- prometheus.MustNewConstMetric(m.groupSize, prometheus.GaugeValue, float64(size), group)
	}
}
