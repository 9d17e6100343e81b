package main

import (
	"math"
	"slices"
)

type TaskResult struct {
	Task           string
	Target         string
	RunsConfigured int
	RunsValid      int
	AvgMs          float64
	MinMs          float64
	MaxMs          float64
	StdMs          float64
	LastRowCount   int
	LastResult     Table
	Samples        []RunSample
}

// Aggregate reduces the samples of one task. Failed samples are ignored and
// NoValidRunsError is returned when nothing is left. StdMs is the population
// standard deviation.
func Aggregate(task string, runsConfigured int, samples []RunSample) (TaskResult, error) {
	valid := make([]RunSample, 0, len(samples))
	for _, sample := range samples {
		if !sample.Failed {
			valid = append(valid, sample)
		}
	}
	if len(valid) == 0 {
		return TaskResult{}, &NoValidRunsError{Task: task, Runs: len(samples)}
	}
	slices.SortStableFunc(valid, func(a, b RunSample) int { return a.Run - b.Run })

	minMs, maxMs, sum := valid[0].ElapsedMs, valid[0].ElapsedMs, 0.0
	for _, sample := range valid {
		minMs = min(minMs, sample.ElapsedMs)
		maxMs = max(maxMs, sample.ElapsedMs)
		sum += sample.ElapsedMs
	}
	n := float64(len(valid))
	// rounding in sum/n must not push the mean outside of the observed range
	avgMs := min(max(sum/n, minMs), maxMs)

	stdMs := 0.0
	if len(valid) > 1 {
		squares := 0.0
		for _, sample := range valid {
			delta := sample.ElapsedMs - avgMs
			squares += delta * delta
		}
		stdMs = math.Sqrt(squares / n)
	}

	last := valid[len(valid)-1]
	return TaskResult{
		Task:           task,
		RunsConfigured: max(runsConfigured, len(samples)),
		RunsValid:      len(valid),
		AvgMs:          avgMs,
		MinMs:          minMs,
		MaxMs:          maxMs,
		StdMs:          stdMs,
		LastRowCount:   last.RowCount,
		LastResult:     last.Result,
		Samples:        slices.Clone(samples),
	}, nil
}

func round2(value float64) float64 {
	return math.Round(value*100) / 100
}
