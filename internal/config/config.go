// Package config reads settings from an optional .env file and the
// environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"

	"canvasnotes/internal/history"
	"canvasnotes/internal/secret"
	"canvasnotes/internal/storage"
)

const (
	DefaultAutosave    = "@every 30s"
	DefaultStrokeWidth = 3.0
	DefaultStrokeColor = "#000000"
	DefaultLogLevel    = "info"
	DefaultMCPAddr     = "127.0.0.1:7410"
)

type Config struct {
	DataDir  string
	LogLevel string
	Storage  storage.Config
	// Autosave is a robfig/cron spec; empty disables autosave.
	Autosave     string
	HistoryLimit int
	StrokeWidth  float64
	StrokeColor  string
	// MCPAddr is where the desktop app serves MCP over HTTP; empty or "off"
	// leaves it to a standalone "notes mcp" process.
	MCPAddr string
}

// Load reads files (default ".env") and then the environment. Missing env
// files are not an error; existing variables win over file values.
func Load(files ...string) (Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}

	dataDir := os.Getenv("NOTES_DATA_DIR")
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return Config{}, fmt.Errorf("home dir: %w", err)
		}
		dataDir = filepath.Join(home, ".local", "share", "canvasnotes")
	}

	cfg := Config{
		DataDir:  dataDir,
		LogLevel: getenv("NOTES_LOG_LEVEL", DefaultLogLevel),
		Storage: storage.Config{
			Driver:   storage.Driver(getenv("NOTES_DB_DRIVER", string(storage.DriverSQLite))),
			DSN:      os.Getenv("NOTES_DB_DSN"),
			Password: os.Getenv("NOTES_DB_PASSWORD"),
			Database: os.Getenv("NOTES_DB_NAME"),
			DataDir:  dataDir,
		},
		Autosave:     DefaultAutosave,
		HistoryLimit: history.DefaultLimit,
		StrokeWidth:  DefaultStrokeWidth,
		StrokeColor:  getenv("NOTES_STROKE_COLOR", DefaultStrokeColor),
		MCPAddr:      DefaultMCPAddr,
	}
	if v, ok := os.LookupEnv("NOTES_AUTOSAVE"); ok {
		cfg.Autosave = v
	}
	if v, ok := os.LookupEnv("NOTES_MCP_ADDR"); ok {
		cfg.MCPAddr = v
	}
	if cfg.MCPAddr == "off" {
		cfg.MCPAddr = ""
	}

	var err error
	if cfg.HistoryLimit, err = intEnv("NOTES_HISTORY_LIMIT", cfg.HistoryLimit); err != nil {
		return Config{}, err
	}
	if cfg.StrokeWidth, err = floatEnv("NOTES_STROKE_WIDTH", cfg.StrokeWidth); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ResolvePassword fills Storage.Password from secrets when the environment
// did not set it. SQLite needs no password.
func (c *Config) ResolvePassword(secrets secret.SecretStore) error {
	if c.Storage.Password != "" || c.Storage.Driver == storage.DriverSQLite || secrets == nil {
		return nil
	}
	pw, err := secrets.Get(secret.DBPasswordKey)
	if err != nil {
		return fmt.Errorf("read db password: %w", err)
	}
	c.Storage.Password = string(pw)
	return nil
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func intEnv(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%s: want a positive integer, got %q", key, v)
	}
	return n, nil
}

func floatEnv(key string, def float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f <= 0 {
		return 0, fmt.Errorf("%s: want a positive number, got %q", key, v)
	}
	return f, nil
}
