package catalog_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sqlsage/sqlsage/internal/catalog"
)

const sampleDoc = `{
  "employees": {
    "description": "Company employees",
    "fields": [
      {"name": "id", "type": "integer", "description": "Primary key"},
      {"name": "name", "type": "varchar"},
      {"name": "department", "type": "varchar", "description": "Department name"}
    ]
  },
  "budgets": {
    "description": "Departmental budgets by year",
    "fields": [
      {"name": "department", "type": "varchar"},
      {"name": "year", "type": "integer"},
      {"name": "amount", "type": "double"}
    ]
  }
}`

func writeDoc(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "table_descriptions.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write schema document: %v", err)
	}
	return path
}

func TestLoadPreservesTableOrder(t *testing.T) {
	schema, err := catalog.Load(writeDoc(t, sampleDoc))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if len(schema.Tables) != 2 {
		t.Fatalf("Load() tables = %d, want 2", len(schema.Tables))
	}
	if schema.Tables[0].Name != "employees" || schema.Tables[1].Name != "budgets" {
		t.Errorf("table order = [%s, %s], want document order [employees, budgets]",
			schema.Tables[0].Name, schema.Tables[1].Name)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := catalog.Load(filepath.Join(t.TempDir(), "absent.json"))
	if err == nil {
		t.Fatal("Load() on missing file should fail")
	}
	var loadErr *catalog.LoadError
	if !errors.As(err, &loadErr) {
		t.Errorf("error should be *LoadError, got %T", err)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("error should wrap os.ErrNotExist, got %v", err)
	}
}

func TestLoadMalformed(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"invalid json", `{"employees": `},
		{"top-level array", `[]`},
		{"table not object", `{"employees": 3}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := catalog.Load(writeDoc(t, tt.content))
			if err == nil {
				t.Fatal("Load() should fail on malformed document")
			}
			var loadErr *catalog.LoadError
			if !errors.As(err, &loadErr) {
				t.Errorf("error should be *LoadError, got %T", err)
			}
		})
	}
}

func TestRender(t *testing.T) {
	schema, err := catalog.Load(writeDoc(t, sampleDoc))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	rendered := schema.Render()

	if !strings.HasPrefix(rendered, "DATABASE SCHEMA:\n\n") {
		t.Errorf("Render() should start with the schema header, got %q", rendered[:30])
	}
	for _, want := range []string{
		"Table: employees",
		"Description: Company employees",
		"- id (integer): Primary key",
		"- name (varchar)\n",
		"Table: budgets",
		"- amount (double)",
	} {
		if !strings.Contains(rendered, want) {
			t.Errorf("Render() missing %q", want)
		}
	}
	if strings.Index(rendered, "Table: employees") > strings.Index(rendered, "Table: budgets") {
		t.Error("Render() should keep document table order")
	}
}

func TestSchemaTableLookup(t *testing.T) {
	schema, err := catalog.Load(writeDoc(t, sampleDoc))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if tbl := schema.Table("budgets"); tbl == nil || tbl.Description != "Departmental budgets by year" {
		t.Errorf("Table(budgets) = %+v, want the budgets entry", tbl)
	}
	if tbl := schema.Table("unknown"); tbl != nil {
		t.Errorf("Table(unknown) = %+v, want nil", tbl)
	}
}

func TestStoreServesCachedCopy(t *testing.T) {
	path := writeDoc(t, sampleDoc)
	store, err := catalog.NewStore(path)
	if err != nil {
		t.Fatalf("NewStore() error: %v", err)
	}

	first := store.Get()
	if first == nil || len(first.Tables) != 2 {
		t.Fatalf("Get() = %+v, want loaded schema", first)
	}

	// Within the TTL the cached pointer is returned even if the file changes.
	if err := os.WriteFile(path, []byte(`{}`), 0o644); err != nil {
		t.Fatalf("rewrite schema document: %v", err)
	}
	if got := store.Get(); got != first {
		t.Error("Get() inside TTL should return the cached schema")
	}
}

func TestNewStoreFailsFast(t *testing.T) {
	if _, err := catalog.NewStore(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Fatal("NewStore() on missing file should fail")
	}
}
