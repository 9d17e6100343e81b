package main

import (
	"context"
	"database/sql"
	"fmt"
	"slices"
	"strings"
	"time"

	_ "github.com/tursodatabase/libsql-client-go/libsql"
)

// Storage keeps batch parameters, per-run measurements and summaries in a
// libsql database so runs from different hosts end up in one place.
type Storage struct {
	db  *sql.DB
	url string
}

func ConnectStorage(url string) (*Storage, error) {
	db, err := sql.Open("libsql", url)
	if err != nil {
		return nil, err
	}
	storage := &Storage{db: db, url: url}
	if err := storage.InitResultsDb(); err != nil {
		db.Close()
		return nil, fmt.Errorf("unable to initialize results db: %w", err)
	}
	return storage, nil
}

func (s *Storage) Name() string {
	if i := strings.Index(s.url, "?"); i >= 0 {
		return "libsql:" + s.url[:i]
	}
	return "libsql:" + s.url
}

func (s *Storage) Close() error { return s.db.Close() }

func (s *Storage) InitResultsDb() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS parameters (
		batch TEXT,
		name TEXT,
		value,
		PRIMARY KEY (batch, name)
	)`)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(`CREATE TABLE IF NOT EXISTS measurements (
		batch TEXT,
		engine TEXT,
		sf INTEGER,
		task TEXT,
		run INTEGER,
		rows INTEGER,
		elapsed_ms REAL,
		failed BOOL,
		error TEXT,
		PRIMARY KEY (batch, task, run)
	)`)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(`CREATE TABLE IF NOT EXISTS summaries (
		batch TEXT,
		engine TEXT,
		sf INTEGER,
		database TEXT,
		task TEXT,
		target TEXT,
		runs_configured INTEGER,
		runs_valid INTEGER,
		result_rows INTEGER,
		avg_ms REAL,
		min_ms REAL,
		max_ms REAL,
		std_ms REAL,
		PRIMARY KEY (batch, task)
	)`)
	if err != nil {
		return err
	}
	Logger.Infof("initialized results database %v", s.Name())
	return nil
}

func (s *Storage) Write(summary *BatchSummary) error {
	tx, err := s.db.BeginTx(context.Background(), nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := insertParameters(tx, summary); err != nil {
		return fmt.Errorf("failed to insert parameters: %w", err)
	}
	for _, result := range summary.Results {
		for _, sample := range result.Samples {
			_, err = tx.Exec(
				"INSERT INTO measurements VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)",
				summary.ID,
				summary.Engine,
				summary.ScaleFactor,
				result.Task,
				sample.Run,
				sample.RowCount,
				sample.ElapsedMs,
				sample.Failed,
				sample.Error,
			)
			if err != nil {
				return fmt.Errorf("failed to insert measurement %v/%v: %w", result.Task, sample.Run, err)
			}
		}
		_, err = tx.Exec(
			"INSERT INTO summaries VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
			summary.ID,
			summary.Engine,
			summary.ScaleFactor,
			summary.Database,
			result.Task,
			result.Target,
			result.RunsConfigured,
			result.RunsValid,
			result.LastRowCount,
			result.AvgMs,
			result.MinMs,
			result.MaxMs,
			result.StdMs,
		)
		if err != nil {
			return fmt.Errorf("failed to insert summary of %v: %w", result.Task, err)
		}
	}
	return tx.Commit()
}

func insertParameters(tx *sql.Tx, summary *BatchSummary) error {
	meta := [][2]any{
		{"version", Version},
		{"time", summary.Started.Format(time.DateTime)},
		{"catalog", summary.Catalog},
		{"engine", summary.Engine},
		{"sf", summary.ScaleFactor},
		{"database", summary.Database},
		{"arch", summary.Host.Arch},
		{"hostname", summary.Host.Hostname},
		{"platform", summary.Host.Platform},
		{"ram", summary.Host.RAM},
		{"cpu", summary.Host.CPUCount},
		{"freq", summary.Host.CPUFreq},
		{"skipped", strings.Join(summary.Skipped, ",")},
	}
	parameters := make([]any, 0, 3*len(meta))
	for _, entry := range meta {
		parameters = append(parameters, summary.ID, entry[0], fmt.Sprintf("%v", entry[1]))
	}
	placeholders := strings.Join(slices.Repeat([]string{"(?, ?, ?)"}, len(meta)), ", ")
	_, err := tx.Exec(
		fmt.Sprintf("INSERT INTO parameters VALUES %v ON CONFLICT DO NOTHING", placeholders),
		parameters...,
	)
	return err
}
