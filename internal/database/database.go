// Package database executes SQL against the embedded DuckDB file and
// normalizes results into row maps the agent can feed back to the model.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/marcboeker/go-duckdb" // DuckDB driver
	"github.com/rs/zerolog/log"
)

// Row maps column name to scalar value. An execution failure yields a single
// row shaped {"error": message}.
type Row = map[string]any

// ErrorColumn is the key carrying an execution failure message.
const ErrorColumn = "error"

// Service wraps a DuckDB database file.
type Service struct {
	db   *sql.DB
	path string
}

// New opens (creating if absent) the DuckDB file at path.
func New(path string) (*Service, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &Service{db: db, path: path}, nil
}

// Close releases the database handle.
func (s *Service) Close() error {
	return s.db.Close()
}

// TestConnection verifies the database is reachable.
func (s *Service) TestConnection(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Path returns the database file path.
func (s *Service) Path() string {
	return s.path
}

// Execute runs sqlText and returns all rows with column order preserved in
// each map's keys. Engine failures of any kind (syntax error, missing table,
// type mismatch) come back as a single {"error": message} row rather than an
// error value: the agent loop hands failures to the model as observational
// data so it can self-correct or explain them.
func (s *Service) Execute(ctx context.Context, sqlText string) []Row {
	rows, err := s.db.QueryContext(ctx, sqlText)
	if err != nil {
		log.Debug().Err(err).Str("sql", sqlText).Msg("query failed")
		return []Row{{ErrorColumn: err.Error()}}
	}
	defer func() { _ = rows.Close() }()

	columns, err := rows.Columns()
	if err != nil {
		return []Row{{ErrorColumn: err.Error()}}
	}

	var out []Row
	for rows.Next() {
		values := make([]any, len(columns))
		targets := make([]any, len(columns))
		for i := range values {
			targets[i] = &values[i]
		}
		if err := rows.Scan(targets...); err != nil {
			return []Row{{ErrorColumn: err.Error()}}
		}

		row := make(Row, len(columns))
		for i, col := range columns {
			row[col] = normalizeValue(values[i])
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return []Row{{ErrorColumn: err.Error()}}
	}

	return out
}

// normalizeValue converts driver byte slices to strings so rows serialize
// cleanly to JSON for the model.
func normalizeValue(v any) any {
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return v
}
