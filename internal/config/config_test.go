package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sqlsage/sqlsage/internal/config"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Port != config.DefaultPort {
		t.Errorf("Port = %d, want %d", cfg.Port, config.DefaultPort)
	}
	if cfg.DatabasePath != "company_data.db" {
		t.Errorf("DatabasePath = %q", cfg.DatabasePath)
	}
	if cfg.SchemaPath != "table_descriptions.json" {
		t.Errorf("SchemaPath = %q", cfg.SchemaPath)
	}
	if !cfg.EnableAuth || !cfg.EnableDataMasking || !cfg.EnablePIIDetection {
		t.Error("security features should be enabled by default")
	}
	if cfg.MaxResultRows != 10_000 {
		t.Errorf("MaxResultRows = %d, want 10000", cfg.MaxResultRows)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("SQLSAGE_PORT", "9001")
	t.Setenv("SQLSAGE_DATABASE_PATH", "/tmp/other.db")
	t.Setenv("SQLSAGE_API_KEYS", "key-a,key-b")
	t.Setenv("ENABLE_AUTH", "false")
	t.Setenv("MAX_RESULT_ROWS", "250")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Port != 9001 {
		t.Errorf("Port = %d, want 9001", cfg.Port)
	}
	if cfg.DatabasePath != "/tmp/other.db" {
		t.Errorf("DatabasePath = %q", cfg.DatabasePath)
	}
	if len(cfg.APIKeys) != 2 || cfg.APIKeys[0] != "key-a" {
		t.Errorf("APIKeys = %v", cfg.APIKeys)
	}
	if cfg.EnableAuth {
		t.Error("ENABLE_AUTH=false should disable auth")
	}
	if cfg.MaxResultRows != 250 {
		t.Errorf("MaxResultRows = %d, want 250", cfg.MaxResultRows)
	}
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	doc := `{"port": 9100, "log_level": "debug", "schema_path": "custom_schema.json"}`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("SQLSAGE_CONFIG", path)

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Port != 9100 || cfg.LogLevel != "debug" || cfg.SchemaPath != "custom_schema.json" {
		t.Errorf("config = port %d, log %q, schema %q", cfg.Port, cfg.LogLevel, cfg.SchemaPath)
	}
}

func TestLoadEnvBeatsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"port": 9100}`), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("SQLSAGE_CONFIG", path)
	t.Setenv("SQLSAGE_PORT", "9200")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Port != 9200 {
		t.Errorf("Port = %d, environment should override the config file", cfg.Port)
	}
}

func TestLoadMissingConfigFile(t *testing.T) {
	t.Setenv("SQLSAGE_CONFIG", filepath.Join(t.TempDir(), "absent.json"))
	if _, err := config.Load(); err == nil {
		t.Fatal("Load() should fail when SQLSAGE_CONFIG points at a missing file")
	}
}
