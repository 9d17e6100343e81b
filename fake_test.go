package main

import (
	"context"
	"fmt"
	"time"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time { return c.t }

type fakeOutcome struct {
	rows    int
	latency time.Duration
	err     error
}

// fakeRunner answers relational queries whose statement is the task name.
// script receives the 1-based call number per statement.
type fakeRunner struct {
	clock   *fakeClock
	script  func(statement string, call int) fakeOutcome
	openErr error
	calls   map[string]int
	opens   int
	closes  int
}

func newFakeRunner(script func(statement string, call int) fakeOutcome) *fakeRunner {
	return &fakeRunner{clock: &fakeClock{t: time.Unix(0, 0)}, script: script, calls: map[string]int{}}
}

func (r *fakeRunner) benchmark() Benchmark { return Benchmark{now: r.clock.Now} }

func (r *fakeRunner) Name() string { return EngineMysql }

func (r *fakeRunner) Open(ctx context.Context, namespace string) (Instance, error) {
	r.opens++
	if r.openErr != nil {
		return nil, r.openErr
	}
	return &fakeInstance{runner: r}, nil
}

type fakeInstance struct {
	runner *fakeRunner
}

func (i *fakeInstance) Name() string { return EngineMysql }

func (i *fakeInstance) Execute(ctx context.Context, query Query) (Table, error) {
	statement := query.(RelationalQuery).Statement
	i.runner.calls[statement]++
	outcome := i.runner.script(statement, i.runner.calls[statement])
	i.runner.clock.t = i.runner.clock.t.Add(outcome.latency)
	if outcome.err != nil {
		return Table{}, outcome.err
	}
	table := Table{Columns: []string{"id"}}
	for k := 0; k < outcome.rows; k++ {
		table.Rows = append(table.Rows, []any{int64(k)})
	}
	return table, nil
}

func (i *fakeInstance) Close() error {
	i.runner.closes++
	return nil
}

func fakeTask(name string) Task {
	return Task{Name: name, Query: RelationalQuery{Statement: name}}
}

func fakeCatalog(names ...string) *Catalog {
	catalog := &Catalog{
		Name:        "fake",
		Engine:      EngineMysql,
		DefaultRuns: 3,
		TaskRuns:    map[string]int{},
		Namespace:   SuffixNamespace{Base: "ecommerce"},
	}
	for _, name := range names {
		catalog.Tasks = append(catalog.Tasks, fakeTask(name))
	}
	return catalog
}

var errSimulated = fmt.Errorf("simulated failure")
