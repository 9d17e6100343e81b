package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// CSVSink lays out one directory per scale factor:
// <task>_result.csv, <task>_runs.csv and workload_summary_<engine>.csv.
type CSVSink struct {
	Dir string
}

func (s *CSVSink) Name() string { return "csv:" + s.Dir }

func (s *CSVSink) OutputDir(scaleFactor int) string {
	return filepath.Join(s.Dir, fmt.Sprintf("sf%v", scaleFactor))
}

func (s *CSVSink) Write(summary *BatchSummary) error {
	dir := s.OutputDir(summary.ScaleFactor)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	for _, result := range summary.Results {
		if result.LastResult.Len() > 0 {
			path := filepath.Join(dir, fmt.Sprintf("%v_result.csv", result.Task))
			if err := writeCSV(path, result.LastResult.Columns, resultRecords(result.LastResult)); err != nil {
				return fmt.Errorf("failed to write result of task %v: %w", result.Task, err)
			}
		}
		path := filepath.Join(dir, fmt.Sprintf("%v_runs.csv", result.Task))
		if err := writeCSV(path, RunsHeader, RunsRecords(result)); err != nil {
			return fmt.Errorf("failed to write runs of task %v: %w", result.Task, err)
		}
	}
	path := filepath.Join(dir, fmt.Sprintf("workload_summary_%v.csv", summary.Engine))
	if err := writeCSV(path, SummaryHeader, SummaryRecords(summary)); err != nil {
		return fmt.Errorf("failed to write summary: %w", err)
	}
	Logger.Infof("summary saved to %v", path)
	return nil
}

var RunsHeader = []string{"run", "time_ms", "rows", "failed", "error"}

var SummaryHeader = []string{
	"task", "sf", "engine", "database", "collection_or_table",
	"runs_configured", "runs_valid", "result_rows",
	"avg_time_ms", "min_time_ms", "max_time_ms", "std_time_ms",
}

func RunsRecords(result TaskResult) [][]string {
	records := make([][]string, 0, len(result.Samples))
	for _, sample := range result.Samples {
		records = append(records, []string{
			strconv.Itoa(sample.Run),
			formatFloat(sample.ElapsedMs),
			strconv.Itoa(sample.RowCount),
			strconv.FormatBool(sample.Failed),
			sample.Error,
		})
	}
	return records
}

func SummaryRecords(summary *BatchSummary) [][]string {
	records := make([][]string, 0, len(summary.Results))
	for _, result := range summary.Results {
		records = append(records, []string{
			result.Task,
			strconv.Itoa(summary.ScaleFactor),
			summary.Engine,
			summary.Database,
			result.Target,
			strconv.Itoa(result.RunsConfigured),
			strconv.Itoa(result.RunsValid),
			strconv.Itoa(result.LastRowCount),
			formatFloat(round2(result.AvgMs)),
			formatFloat(round2(result.MinMs)),
			formatFloat(round2(result.MaxMs)),
			formatFloat(round2(result.StdMs)),
		})
	}
	return records
}

func resultRecords(table Table) [][]string {
	records := make([][]string, 0, len(table.Rows))
	for _, row := range table.Rows {
		record := make([]string, len(row))
		for i, value := range row {
			record[i] = formatCell(value)
		}
		records = append(records, record)
	}
	return records
}

func formatFloat(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}

func formatCell(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	case float64:
		return formatFloat(v)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case time.Time:
		return v.Format("2006-01-02 15:04:05")
	}
	return fmt.Sprintf("%v", value)
}

func writeCSV(path string, header []string, records [][]string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.Write(header); err != nil {
		return err
	}
	if err := w.WriteAll(records); err != nil {
		return err
	}
	return file.Sync()
}
