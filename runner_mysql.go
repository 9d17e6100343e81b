package main

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"strconv"

	"github.com/go-sql-driver/mysql"
)

type RunnerMysql struct {
	Host     string
	Port     int
	User     string
	Password string
}

type InstanceMysql struct {
	db   *sql.DB
	conn *sql.Conn
}

func (r *RunnerMysql) Name() string { return EngineMysql }

func (r *RunnerMysql) DSN(namespace string) string {
	cfg := mysql.NewConfig()
	cfg.User = r.User
	cfg.Passwd = r.Password
	cfg.Net = "tcp"
	cfg.Addr = net.JoinHostPort(r.Host, strconv.Itoa(r.Port))
	cfg.DBName = namespace
	cfg.ParseTime = true
	return cfg.FormatDSN()
}

func (r *RunnerMysql) Open(ctx context.Context, namespace string) (Instance, error) {
	db, err := sql.Open("mysql", r.DSN(namespace))
	if err != nil {
		return nil, err
	}
	instance, err := newInstanceMysql(ctx, db)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to mysql database %v at %v:%v: %w", namespace, r.Host, r.Port, err)
	}
	return instance, nil
}

// newInstanceMysql pins a single connection so the handshake happens here
// and not inside the first measured query.
func newInstanceMysql(ctx context.Context, db *sql.DB) (*InstanceMysql, error) {
	db.SetMaxOpenConns(1)
	conn, err := db.Conn(ctx)
	if err != nil {
		return nil, err
	}
	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, err
	}
	return &InstanceMysql{db: db, conn: conn}, nil
}

func (i *InstanceMysql) Name() string { return EngineMysql }

func (i *InstanceMysql) Execute(ctx context.Context, query Query) (Table, error) {
	relational, ok := query.(RelationalQuery)
	if !ok {
		return Table{}, fmt.Errorf("mysql can't execute %T", query)
	}
	rows, err := i.conn.QueryContext(ctx, relational.Statement)
	if err != nil {
		return Table{}, err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return Table{}, err
	}
	table := Table{Columns: columns, Rows: make([][]any, 0)}
	for rows.Next() {
		values := make([]any, len(columns))
		pointers := make([]any, len(columns))
		for k := range values {
			pointers[k] = &values[k]
		}
		if err := rows.Scan(pointers...); err != nil {
			return Table{}, err
		}
		for k, value := range values {
			if bytes, ok := value.([]byte); ok {
				values[k] = string(bytes)
			}
		}
		table.Rows = append(table.Rows, values)
	}
	if err := rows.Err(); err != nil {
		return Table{}, err
	}
	return table, nil
}

func (i *InstanceMysql) Close() error {
	connErr := i.conn.Close()
	dbErr := i.db.Close()
	if connErr != nil {
		return connErr
	}
	return dbErr
}
