package database_test

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sqlsage/sqlsage/internal/database"
)

func newService(t *testing.T) *database.Service {
	t.Helper()
	svc, err := database.New(filepath.Join(t.TempDir(), "data", "test.db"))
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	t.Cleanup(func() { _ = svc.Close() })
	return svc
}

func TestNewCreatesDirectory(t *testing.T) {
	svc := newService(t)
	if err := svc.TestConnection(context.Background()); err != nil {
		t.Errorf("TestConnection() error: %v", err)
	}
}

func TestExecuteSelect(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	if rows := svc.Execute(ctx, "CREATE TABLE budgets (department VARCHAR, year INTEGER, amount DOUBLE)"); hasErrorRow(rows) {
		t.Fatalf("create table failed: %v", rows)
	}
	if rows := svc.Execute(ctx, "INSERT INTO budgets VALUES ('Engineering', 2023, 500000), ('Sales', 2023, 250000)"); hasErrorRow(rows) {
		t.Fatalf("insert failed: %v", rows)
	}

	rows := svc.Execute(ctx, "SELECT department, amount FROM budgets WHERE year = 2023 ORDER BY amount DESC")
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2: %v", len(rows), rows)
	}
	if rows[0]["department"] != "Engineering" {
		t.Errorf("rows[0][department] = %v (%T), want Engineering as string", rows[0]["department"], rows[0]["department"])
	}
	if _, ok := rows[0]["amount"].(float64); !ok {
		t.Errorf("rows[0][amount] = %v (%T), want float64", rows[0]["amount"], rows[0]["amount"])
	}
}

func TestExecuteEmptyResult(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	svc.Execute(ctx, "CREATE TABLE empty_t (id INTEGER)")
	rows := svc.Execute(ctx, "SELECT * FROM empty_t")
	if len(rows) != 0 {
		t.Errorf("rows = %v, want none", rows)
	}
}

func TestExecuteFailuresBecomeErrorRows(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	tests := []struct {
		name string
		sql  string
	}{
		{"syntax error", "SELEC * FRM nothing"},
		{"missing table", "SELECT * FROM does_not_exist"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows := svc.Execute(ctx, tt.sql)
			if len(rows) != 1 {
				t.Fatalf("rows = %v, want a single error row", rows)
			}
			msg, ok := rows[0][database.ErrorColumn].(string)
			if !ok || msg == "" {
				t.Errorf("error row = %v, want non-empty %q value", rows[0], database.ErrorColumn)
			}
		})
	}
}

func TestExecuteCancelledContext(t *testing.T) {
	svc := newService(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rows := svc.Execute(ctx, "SELECT 1")
	if !hasErrorRow(rows) {
		t.Errorf("cancelled query should return an error row, got %v", rows)
	}
	if !strings.Contains(rows[0][database.ErrorColumn].(string), "context canceled") {
		t.Errorf("error row = %v, want a context cancellation message", rows[0])
	}
}

func hasErrorRow(rows []database.Row) bool {
	return len(rows) == 1 && rows[0][database.ErrorColumn] != nil
}
