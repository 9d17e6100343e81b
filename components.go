package main

import (
	"context"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
)

// Query is either a RelationalQuery or a PipelineQuery.
type Query interface {
	Engine() string
	Target() string
}

type RelationalQuery struct {
	Statement string
}

func (q RelationalQuery) Engine() string { return EngineMysql }
func (q RelationalQuery) Target() string { return "N/A" }

// PipelineQuery stages are handed to the engine verbatim.
type PipelineQuery struct {
	Collection string
	Stages     []bson.D
}

func (q PipelineQuery) Engine() string { return EngineMongo }
func (q PipelineQuery) Target() string { return q.Collection }

type Task struct {
	Name  string
	Query Query
}

// Table is the engine-agnostic result of one execution: ordered column
// names and rows holding one value per column.
type Table struct {
	Columns []string
	Rows    [][]any
}

func (t Table) Len() int { return len(t.Rows) }

type Runner interface {
	Name() string
	Open(ctx context.Context, namespace string) (Instance, error)
}

// Instance is a single live connection to the namespace it was opened for.
type Instance interface {
	Name() string
	Execute(ctx context.Context, query Query) (Table, error)
	Close() error
}

type ConfigError struct {
	ScaleFactor int
	Reason      string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error for sf=%v: %v", e.ScaleFactor, e.Reason)
}

type ExecutionError struct {
	Task string
	Run  int
	Err  error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("task %v run #%v failed: %v", e.Task, e.Run, e.Err)
}

func (e *ExecutionError) Unwrap() error { return e.Err }

type NoValidRunsError struct {
	Task string
	Runs int
}

func (e *NoValidRunsError) Error() string {
	return fmt.Sprintf("task %v has no valid runs out of %v", e.Task, e.Runs)
}

func describeQuery(query Query) string {
	switch q := query.(type) {
	case RelationalQuery:
		return strings.Join(strings.Fields(q.Statement), " ")
	case PipelineQuery:
		return fmt.Sprintf("%v: %v stages", q.Collection, len(q.Stages))
	}
	return fmt.Sprintf("%v", query)
}
