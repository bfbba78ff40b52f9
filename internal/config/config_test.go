package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"canvasnotes/internal/config"
	"canvasnotes/internal/secret"
	"canvasnotes/internal/storage"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	for _, k := range []string{"NOTES_DATA_DIR", "NOTES_DB_DRIVER", "NOTES_AUTOSAVE", "NOTES_HISTORY_LIMIT", "NOTES_STROKE_WIDTH", "NOTES_MCP_ADDR"} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}

	cfg, err := config.Load(filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Storage.Driver != storage.DriverSQLite {
		t.Errorf("driver = %q", cfg.Storage.Driver)
	}
	if cfg.Autosave != config.DefaultAutosave || cfg.HistoryLimit != 50 || cfg.StrokeWidth != 3 {
		t.Errorf("defaults = %+v", cfg)
	}
	if cfg.MCPAddr != config.DefaultMCPAddr {
		t.Errorf("mcp addr = %q", cfg.MCPAddr)
	}
	if filepath.Base(cfg.DataDir) != "canvasnotes" || cfg.Storage.DataDir != cfg.DataDir {
		t.Errorf("data dir = %q", cfg.DataDir)
	}
}

func TestLoad_EnvFile(t *testing.T) {
	dir := t.TempDir()
	env := filepath.Join(dir, ".env")
	content := "NOTES_DATA_DIR=" + dir + "\nNOTES_DB_DRIVER=postgres\nNOTES_HISTORY_LIMIT=20\nNOTES_AUTOSAVE=\n"
	if err := os.WriteFile(env, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	for _, k := range []string{"NOTES_DATA_DIR", "NOTES_DB_DRIVER", "NOTES_HISTORY_LIMIT", "NOTES_AUTOSAVE"} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}

	cfg, err := config.Load(env)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.DataDir != dir || cfg.Storage.Driver != storage.DriverPostgres || cfg.HistoryLimit != 20 {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.Autosave != "" {
		t.Errorf("explicit empty NOTES_AUTOSAVE should disable autosave, got %q", cfg.Autosave)
	}
}

func TestLoad_MCPAddr(t *testing.T) {
	tests := []struct {
		env  string
		want string
	}{
		{"localhost:9000", "localhost:9000"},
		{"off", ""},
		{"", ""},
	}
	for _, tt := range tests {
		t.Setenv("NOTES_DATA_DIR", t.TempDir())
		t.Setenv("NOTES_MCP_ADDR", tt.env)
		cfg, err := config.Load(filepath.Join(t.TempDir(), "none"))
		if err != nil {
			t.Fatal(err)
		}
		if cfg.MCPAddr != tt.want {
			t.Errorf("NOTES_MCP_ADDR=%q: addr = %q, want %q", tt.env, cfg.MCPAddr, tt.want)
		}
	}
}

func TestLoad_InvalidNumber(t *testing.T) {
	t.Setenv("NOTES_DATA_DIR", t.TempDir())
	t.Setenv("NOTES_STROKE_WIDTH", "thick")
	if _, err := config.Load(filepath.Join(t.TempDir(), "none")); err == nil {
		t.Fatal("expected error for non-numeric stroke width")
	}
}

func TestResolvePassword(t *testing.T) {
	secrets := secret.NewMemoryStore()
	secrets.Set(secret.DBPasswordKey, []byte("from-keychain"))

	cfg := config.Config{Storage: storage.Config{Driver: storage.DriverMySQL}}
	if err := cfg.ResolvePassword(secrets); err != nil {
		t.Fatal(err)
	}
	if cfg.Storage.Password != "from-keychain" {
		t.Errorf("password = %q", cfg.Storage.Password)
	}

	cfg = config.Config{Storage: storage.Config{Driver: storage.DriverMySQL, Password: "from-env"}}
	cfg.ResolvePassword(secrets)
	if cfg.Storage.Password != "from-env" {
		t.Errorf("env password overridden: %q", cfg.Storage.Password)
	}
}
