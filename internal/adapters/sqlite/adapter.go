// Package sqlite provides a read-only SQLite implementation of the dataset
// source port.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ewilliams-labs/songscope/internal/adapters/sqltable"
	"github.com/ewilliams-labs/songscope/internal/core/domain"
	_ "github.com/mattn/go-sqlite3" // Import the driver anonymously
)

// Adapter loads the dataset from a songs table in a SQLite file.
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

// Load opens the file at path read-only and scans the whole table. The file
// is never created or migrated.
func (a *Adapter) Load(ctx context.Context, path string) (*domain.Dataset, error) {
	db, err := Open(ctx, path)
	if err != nil {
		return nil, domain.NewDataSourceError(path, "open", err)
	}
	defer db.Close()

	return sqltable.Load(ctx, db, path, a.table)
}

// Open connects to an existing database file in read-only mode.
func Open(ctx context.Context, path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", "file:"+path+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite db: %w", err)
	}

	// Verify connection
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping sqlite db: %w", err)
	}
	return db, nil
}
