package db

import (
	"fmt"
	"strings"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open opens the database described by cfg and applies pool settings and
// migrations. Only the sqlite driver is supported.
func Open(cfg Config) (*gorm.DB, error) {
	if strings.ToLower(strings.TrimSpace(cfg.Driver)) != "sqlite" {
		return nil, fmt.Errorf("db: unsupported driver %q", cfg.Driver)
	}

	dsn, err := ResolveSQLiteDSN(cfg.DSN)
	if err != nil {
		return nil, err
	}

	// A DSN carrying its own options (or :memory:) is passed through
	// untouched.
	if !strings.Contains(dsn, "?") && dsn != ":memory:" {
		var pragmas []string
		if cfg.BusyTimeoutMs > 0 {
			pragmas = append(pragmas, fmt.Sprintf("_pragma=busy_timeout(%d)", cfg.BusyTimeoutMs))
		}
		if cfg.WAL {
			pragmas = append(pragmas, "_pragma=journal_mode(WAL)")
		}
		if cfg.ForeignKeys {
			pragmas = append(pragmas, "_pragma=foreign_keys(1)")
		}
		if len(pragmas) > 0 {
			dsn = dsn + "?" + strings.Join(pragmas, "&")
		}
	}

	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("db: open sqlite: %w", err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, err
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	if cfg.AutoMigrate {
		if err := AutoMigrate(gdb); err != nil {
			return nil, fmt.Errorf("db: migrate: %w", err)
		}
	}
	return gdb, nil
}
