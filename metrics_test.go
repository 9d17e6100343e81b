package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMetricsSink(t *testing.T) {
	path := filepath.Join(t.TempDir(), "workload.prom")
	sink := &MetricsSink{Path: path}

	require.NoError(t, sink.Write(testSummary()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	require.Contains(t, text, `workload_task_latency_ms{batch="batch-1",database="ecommerce_sf10",engine="mysql",sf="10",stat="avg",task="T-R1_denorm_scan"} 12.346`)
	require.Contains(t, text, `workload_task_runs{batch="batch-1",database="ecommerce_sf10",engine="mysql",kind="configured",sf="10",task="T-R1_denorm_scan"} 2`)
	require.Contains(t, text, `workload_task_runs{batch="batch-1",database="ecommerce_sf10",engine="mysql",kind="valid",sf="10",task="T-R1_denorm_scan"} 1`)
	require.Contains(t, text, `workload_task_result_rows{batch="batch-1",database="ecommerce_sf10",engine="mysql",sf="10",task="T-R1_denorm_scan"} 1`)
	require.Contains(t, text, `workload_batch_skipped_tasks{batch="batch-1",database="ecommerce_sf10",engine="mysql",sf="10"} 1`)
}
