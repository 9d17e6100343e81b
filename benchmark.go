package main

import (
	"context"
	"errors"
	"time"
)

type Benchmark struct {
	Warmup  int
	Timeout time.Duration

	now func() time.Time
}

type RunSample struct {
	Run       int
	RowCount  int
	ElapsedMs float64
	Result    Table
	Failed    bool
	Error     string
}

// clock reads the monotonic clock unless a test replaced it.
func (b *Benchmark) clock() time.Time {
	if b.now != nil {
		return b.now()
	}
	return time.Now()
}

// Execute issues the query on an already opened instance. The timer covers
// the query and the full materialization of its result, nothing else.
func (b *Benchmark) Execute(ctx context.Context, instance Instance, task Task) (Table, float64, error) {
	start := b.clock()
	table, err := instance.Execute(ctx, task.Query)
	elapsed := b.clock().Sub(start)
	if err != nil {
		return Table{}, 0, err
	}
	return table, float64(elapsed.Nanoseconds()) / float64(time.Millisecond), nil
}

// RunOnce opens a fresh instance, executes the task and releases the
// instance on every path. Connection setup and teardown are not timed.
func (b *Benchmark) RunOnce(ctx context.Context, runner Runner, namespace string, task Task, run int) (RunSample, error) {
	if b.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.Timeout)
		defer cancel()
	}
	instance, err := runner.Open(ctx, namespace)
	if err != nil {
		return RunSample{}, &ExecutionError{Task: task.Name, Run: run, Err: err}
	}
	defer func() {
		if closeErr := instance.Close(); closeErr != nil {
			Logger.Warnf("failed to close %v instance after %v run #%v: %v", instance.Name(), task.Name, run, closeErr)
		}
	}()

	table, elapsedMs, err := b.Execute(ctx, instance, task)
	if err != nil {
		return RunSample{}, &ExecutionError{Task: task.Name, Run: run, Err: err}
	}
	return RunSample{Run: run, RowCount: table.Len(), ElapsedMs: elapsedMs, Result: table}, nil
}

func (b *Benchmark) WarmupTask(ctx context.Context, runner Runner, namespace string, task Task) {
	for i := 0; i < b.Warmup && ctx.Err() == nil; i++ {
		Logger.Infof("running warmup #%v/%v for task %v", i+1, b.Warmup, task.Name)
		if _, err := b.RunOnce(ctx, runner, namespace, task, i+1); err != nil {
			Logger.Warnf("warmup #%v of task %v failed: %v", i+1, task.Name, err)
		}
	}
}

// RunTask executes the task runs times in order. A failed run is recorded
// and the loop moves on. Only the latest successful sample keeps its Result.
func (b *Benchmark) RunTask(ctx context.Context, runner Runner, namespace string, task Task, runs int) []RunSample {
	samples := make([]RunSample, 0, runs)
	last := -1
	for run := 1; run <= runs; run++ {
		if ctx.Err() != nil {
			Logger.Warnf("task %v interrupted before run #%v/%v: %v", task.Name, run, runs, ctx.Err())
			break
		}
		sample, err := b.RunOnce(ctx, runner, namespace, task, run)
		if err != nil {
			var execErr *ExecutionError
			if !errors.As(err, &execErr) {
				execErr = &ExecutionError{Task: task.Name, Run: run, Err: err}
			}
			Logger.Errorf("task %v run #%v/%v failed: %v", task.Name, run, runs, execErr.Err)
			samples = append(samples, RunSample{Run: run, Failed: true, Error: execErr.Err.Error()})
			continue
		}
		Logger.Infof("task %v run #%v/%v: %v rows in %.2f ms", task.Name, run, runs, sample.RowCount, sample.ElapsedMs)
		if last >= 0 {
			samples[last].Result = Table{}
		}
		last = len(samples)
		samples = append(samples, sample)
	}
	return samples
}
