package main

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type recordingSink struct {
	summaries []*BatchSummary
	err       error
}

func (s *recordingSink) Name() string { return "recording" }

func (s *recordingSink) Write(summary *BatchSummary) error {
	s.summaries = append(s.summaries, summary)
	return s.err
}

func TestRunBatchEndToEnd(t *testing.T) {
	calls := 0
	runner := newFakeRunner(func(_ string, call int) fakeOutcome {
		calls++
		return fakeOutcome{rows: calls, latency: time.Duration(calls) * time.Millisecond}
	})
	system := NewSystem(runner, runner.benchmark(), 0)

	summary, err := system.RunBatch(context.Background(), fakeCatalog("first", "second"), 10)
	require.Nil(t, err)
	require.Equal(t, "ecommerce_sf10", summary.Database)
	require.Equal(t, 10, summary.ScaleFactor)
	require.NotEmpty(t, summary.ID)
	require.Empty(t, summary.Skipped)
	require.Len(t, summary.Results, 2)

	require.Equal(t, "first", summary.Results[0].Task)
	require.Equal(t, "second", summary.Results[1].Task)
	for _, result := range summary.Results {
		require.Equal(t, 3, result.RunsValid)
		require.Equal(t, 3, result.RunsConfigured)
		require.Equal(t, "N/A", result.Target)
	}
	require.Equal(t, 3, summary.Results[0].LastRowCount)
	require.Equal(t, 6, summary.Results[1].LastRowCount)
	require.Equal(t, 2.0, summary.Results[0].AvgMs)
	require.Equal(t, 5.0, summary.Results[1].AvgMs)
	require.Equal(t, 6, runner.opens)
	require.Equal(t, 6, runner.closes)
}

func TestRunBatchSkipsFullyFailedTask(t *testing.T) {
	runner := newFakeRunner(func(statement string, call int) fakeOutcome {
		if statement == "broken" {
			return fakeOutcome{err: errSimulated}
		}
		return fakeOutcome{rows: 1, latency: time.Millisecond}
	})
	system := NewSystem(runner, runner.benchmark(), 0)

	summary, err := system.RunBatch(context.Background(), fakeCatalog("ok", "broken", "after"), 1)
	require.Nil(t, err)
	require.Len(t, summary.Results, 2)
	require.Equal(t, "ok", summary.Results[0].Task)
	require.Equal(t, "after", summary.Results[1].Task)
	require.Equal(t, []string{"broken"}, summary.Skipped)
	require.Equal(t, 3, runner.calls["broken"])
}

func TestRunBatchUnsupportedScaleFactor(t *testing.T) {
	runner := newFakeRunner(func(string, int) fakeOutcome { return fakeOutcome{rows: 1} })
	catalog := fakeCatalog("task")
	catalog.Namespace = mongoNamespaces
	system := NewSystem(runner, runner.benchmark(), 0)

	summary, err := system.RunBatch(context.Background(), catalog, 5)
	require.Nil(t, summary)
	var configErr *ConfigError
	require.True(t, errors.As(err, &configErr))
	require.Equal(t, 5, configErr.ScaleFactor)
	require.Zero(t, runner.opens)
}

func TestRunBatchEngineMismatch(t *testing.T) {
	runner := newFakeRunner(func(string, int) fakeOutcome { return fakeOutcome{rows: 1} })
	catalog := fakeCatalog("task")
	catalog.Engine = EngineMongo
	system := NewSystem(runner, runner.benchmark(), 0)

	_, err := system.RunBatch(context.Background(), catalog, 1)
	var configErr *ConfigError
	require.True(t, errors.As(err, &configErr))
	require.Zero(t, runner.opens)
}

func TestRunBatchRunOverrides(t *testing.T) {
	runner := newFakeRunner(func(string, int) fakeOutcome { return fakeOutcome{rows: 1, latency: time.Millisecond} })
	catalog := fakeCatalog("default", "pinned")
	catalog.TaskRuns["pinned"] = 2
	system := NewSystem(runner, runner.benchmark(), 4)

	summary, err := system.RunBatch(context.Background(), catalog, 1)
	require.Nil(t, err)
	require.Equal(t, 4, summary.Results[0].RunsConfigured)
	require.Equal(t, 2, summary.Results[1].RunsConfigured)
	require.Equal(t, 4, runner.calls["default"])
	require.Equal(t, 2, runner.calls["pinned"])
}

func TestRunWritesAllSinks(t *testing.T) {
	runner := newFakeRunner(func(string, int) fakeOutcome { return fakeOutcome{rows: 1, latency: time.Millisecond} })
	failing := &recordingSink{err: errors.New("disk full")}
	healthy := &recordingSink{}
	system := NewSystem(runner, runner.benchmark(), 1, failing, healthy)

	summary, err := system.Run(context.Background(), fakeCatalog("task"), 1)
	require.ErrorContains(t, err, "disk full")
	require.NotNil(t, summary)
	require.Len(t, failing.summaries, 1)
	require.Len(t, healthy.summaries, 1)
	require.Same(t, summary, healthy.summaries[0])
	require.Equal(t, summary.Host.Arch, healthy.summaries[0].Host.Arch)
}
