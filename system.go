package main

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/google/uuid"
	"github.com/shirou/gopsutil/cpu"
	"github.com/shirou/gopsutil/host"
	"github.com/shirou/gopsutil/mem"
)

const Version = "v1"

type Sink interface {
	Name() string
	Write(summary *BatchSummary) error
}

type System struct {
	runner    Runner
	benchmark Benchmark
	sinks     []Sink
	runs      int
}

type SysInfo struct {
	Arch     string
	Hostname string
	Platform string
	CPUCount int
	CPUFreq  float64
	RAM      float64
}

type BatchSummary struct {
	ID          string
	Catalog     string
	Engine      string
	ScaleFactor int
	Database    string
	Host        SysInfo
	Started     time.Time
	Finished    time.Time
	Results     []TaskResult
	Skipped     []string
}

func HostStat() SysInfo {
	hostStat, _ := host.Info()
	cpuStat, _ := cpu.Info()
	vmStat, _ := mem.VirtualMemory()
	info := SysInfo{Arch: runtime.GOARCH}
	if hostStat != nil {
		info.Hostname = hostStat.Hostname
		info.Platform = hostStat.Platform
	}
	if len(cpuStat) > 0 {
		totalFreq := 0.0
		for _, cpu := range cpuStat {
			totalFreq += cpu.Mhz
		}
		info.CPUCount = len(cpuStat)
		info.CPUFreq = totalFreq / float64(len(cpuStat)) * 1000
	}
	if vmStat != nil {
		info.RAM = float64(vmStat.Total) / 1024 / 1024 / 1024
	}
	return info
}

// NewSystem wires a runner with the benchmark settings. runs overrides the
// catalog default run count when positive.
func NewSystem(runner Runner, benchmark Benchmark, runs int, sinks ...Sink) *System {
	return &System{runner: runner, benchmark: benchmark, sinks: sinks, runs: runs}
}

func (s *System) runCountFor(catalog *Catalog, task string) int {
	if _, ok := catalog.TaskRuns[task]; !ok && s.runs > 0 {
		return s.runs
	}
	return catalog.RunCountFor(task)
}

// RunBatch executes every task of the catalog in order. Only a ConfigError
// is returned, it happens before any connection is opened.
func (s *System) RunBatch(ctx context.Context, catalog *Catalog, scaleFactor int) (*BatchSummary, error) {
	if catalog.Engine != s.runner.Name() {
		return nil, &ConfigError{
			ScaleFactor: scaleFactor,
			Reason:      fmt.Sprintf("catalog %v targets %v, runner is %v", catalog.Name, catalog.Engine, s.runner.Name()),
		}
	}
	database, err := catalog.ResolveDatabaseName(scaleFactor)
	if err != nil {
		return nil, err
	}

	summary := &BatchSummary{
		ID:          uuid.NewString(),
		Catalog:     catalog.Name,
		Engine:      catalog.Engine,
		ScaleFactor: scaleFactor,
		Database:    database,
		Started:     time.Now(),
		Results:     make([]TaskResult, 0, len(catalog.Tasks)),
	}
	Logger.Infof("start batch %v: catalog %v, engine %v, sf=%v, database %v", summary.ID, catalog.Name, catalog.Engine, scaleFactor, database)

	for _, task := range catalog.Tasks {
		if ctx.Err() != nil {
			Logger.Warnf("batch %v interrupted before task %v: %v", summary.ID, task.Name, ctx.Err())
			break
		}
		runs := s.runCountFor(catalog, task.Name)
		Logger.Infof("running task %v (%v): %v runs", task.Name, task.Query.Target(), runs)
		Logger.Debugf("task %v query: %v", task.Name, describeQuery(task.Query))

		s.benchmark.WarmupTask(ctx, s.runner, database, task)
		samples := s.benchmark.RunTask(ctx, s.runner, database, task, runs)
		result, err := Aggregate(task.Name, runs, samples)
		if err != nil {
			Logger.Warnf("skip task %v: %v", task.Name, err)
			summary.Skipped = append(summary.Skipped, task.Name)
			continue
		}
		result.Target = task.Query.Target()
		Logger.Infof(
			"task %v: %v/%v valid runs, avg=%.2f ms, min=%.2f ms, max=%.2f ms, std=%.2f ms, rows=%v",
			task.Name, result.RunsValid, result.RunsConfigured, result.AvgMs, result.MinMs, result.MaxMs, result.StdMs, result.LastRowCount,
		)
		summary.Results = append(summary.Results, result)
	}
	summary.Finished = time.Now()
	return summary, nil
}

// Run executes the batch and hands the summary to every sink. Sink failures
// are reported together after all sinks had a chance to write.
func (s *System) Run(ctx context.Context, catalog *Catalog, scaleFactor int) (*BatchSummary, error) {
	info := HostStat()
	Logger.Infof("host stat: %+v", info)

	summary, err := s.RunBatch(ctx, catalog, scaleFactor)
	if err != nil {
		return nil, err
	}
	summary.Host = info

	var errs []error
	for _, sink := range s.sinks {
		if err := sink.Write(summary); err != nil {
			Logger.Errorf("failed to write batch %v to %v: %v", summary.ID, sink.Name(), err)
			errs = append(errs, fmt.Errorf("sink %v: %w", sink.Name(), err))
			continue
		}
		Logger.Infof("batch %v written to %v", summary.ID, sink.Name())
	}
	Logger.Infof(
		"finished batch %v in %v: %v tasks measured, %v skipped",
		summary.ID, summary.Finished.Sub(summary.Started).Round(time.Millisecond), len(summary.Results), len(summary.Skipped),
	)
	return summary, errors.Join(errs...)
}
