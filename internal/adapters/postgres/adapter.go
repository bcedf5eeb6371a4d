// Package postgres provides a Postgres implementation of the dataset source
// port using the pgx driver.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/ewilliams-labs/songscope/internal/adapters/sqltable"
	"github.com/ewilliams-labs/songscope/internal/core/domain"
)

const (
	pingTimeout    = 5 * time.Second
	maxWait        = 30 * time.Second
	initialBackoff = 500 * time.Millisecond
	maxBackoff     = 5 * time.Second
)

// Adapter loads the dataset from a songs table in Postgres. Load takes a
// DSN in place of a file path.
type Adapter struct {
	table string
}

// NewAdapter returns a source reading table. An empty table name reads
// sqltable.DefaultTable.
func NewAdapter(table string) *Adapter {
	if table == "" {
		table = sqltable.DefaultTable
	}
	return &Adapter{table: table}
}

// Load connects with dsn, scans the table and disconnects. Errors carry a
// redacted form of the DSN.
func (a *Adapter) Load(ctx context.Context, dsn string) (*domain.Dataset, error) {
	label, err := Redact(dsn)
	if err != nil {
		return nil, domain.NewDataSourceError("postgres", "open", err)
	}

	db, err := openDatabase(ctx, dsn)
	if err != nil {
		return nil, domain.NewDataSourceError(label, "open", err)
	}
	defer db.Close()

	return sqltable.Load(ctx, db, label, a.table)
}

// Redact returns host, port and database of dsn without credentials.
func Redact(dsn string) (string, error) {
	cfg, err := pgx.ParseConfig(dsn)
	if err != nil {
		return "", fmt.Errorf("parse dsn: %w", err)
	}
	return fmt.Sprintf("postgres://%s:%d/%s", cfg.Host, cfg.Port, cfg.Database), nil
}

// openDatabase establishes a connection and retries until the instance
// responds or maxWait elapses.
func openDatabase(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	deadline := time.Now().Add(maxWait)
	backoff := initialBackoff
	var lastErr error

	for {
		pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
		lastErr = db.PingContext(pingCtx)
		cancel()

		if lastErr == nil {
			return db, nil
		}
		if ctx.Err() != nil || time.Now().After(deadline) {
			break
		}

		select {
		case <-ctx.Done():
		case <-time.After(backoff):
		}
		backoff = min(backoff*2, maxBackoff)
	}

	_ = db.Close()
	return nil, fmt.Errorf("ping database: %w", lastErr)
}
