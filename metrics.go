package main

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// MetricsSink exports the batch summary as gauges in the node exporter
// textfile format.
type MetricsSink struct {
	Path string
}

func (s *MetricsSink) Name() string { return "metrics:" + s.Path }

func (s *MetricsSink) Write(summary *BatchSummary) error {
	registry := prometheus.NewRegistry()
	labels := []string{"batch", "engine", "sf", "database", "task"}

	latency := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "workload_task_latency_ms",
		Help: "Latency statistics of the valid runs of a task in milliseconds.",
	}, append(labels, "stat"))
	runs := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "workload_task_runs",
		Help: "Configured and valid runs of a task.",
	}, append(labels, "kind"))
	resultRows := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "workload_task_result_rows",
		Help: "Row count of the last valid run of a task.",
	}, labels)
	skipped := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "workload_batch_skipped_tasks",
		Help: "Tasks without a single valid run.",
	}, []string{"batch", "engine", "sf", "database"})
	registry.MustRegister(latency, runs, resultRows, skipped)

	sf := strconv.Itoa(summary.ScaleFactor)
	for _, result := range summary.Results {
		values := []string{summary.ID, summary.Engine, sf, summary.Database, result.Task}
		latency.WithLabelValues(append(values, "avg")...).Set(result.AvgMs)
		latency.WithLabelValues(append(values, "min")...).Set(result.MinMs)
		latency.WithLabelValues(append(values, "max")...).Set(result.MaxMs)
		latency.WithLabelValues(append(values, "std")...).Set(result.StdMs)
		runs.WithLabelValues(append(values, "configured")...).Set(float64(result.RunsConfigured))
		runs.WithLabelValues(append(values, "valid")...).Set(float64(result.RunsValid))
		resultRows.WithLabelValues(values...).Set(float64(result.LastRowCount))
	}
	skipped.WithLabelValues(summary.ID, summary.Engine, sf, summary.Database).Set(float64(len(summary.Skipped)))

	return prometheus.WriteToTextfile(s.Path, registry)
}
