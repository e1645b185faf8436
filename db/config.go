package db

import (
	"os"
	"path/filepath"
	"strings"
	"time"
)

type Config struct {
	Driver          string
	DSN             string
	BusyTimeoutMs   int
	WAL             bool
	ForeignKeys     bool
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	AutoMigrate     bool
}

func DefaultConfig() Config {
	return Config{
		Driver:        "sqlite",
		BusyTimeoutMs: 5000,
		WAL:           true,
		ForeignKeys:   true,
		MaxOpenConns:  1,
		MaxIdleConns:  1,
		AutoMigrate:   true,
	}
}

// ResolveSQLiteDSN returns the DSN as-is when set, otherwise the database
// file under $HOME/.openassistant, creating the directory if needed.
func ResolveSQLiteDSN(dsn string) (string, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn != "" {
		return dsn, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(home, ".openassistant")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return filepath.Join(dir, "openassistant.sqlite"), nil
}
