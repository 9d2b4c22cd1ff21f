package database

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dbehnke/rsc-bcjr/pkg/logger"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	// Use modernc.org/sqlite (pure Go, no CGO)
	"gorm.io/driver/sqlite"
	_ "modernc.org/sqlite"
)

// SchemaVersion is the vector store layout written to PRAGMA user_version.
// Bump it when the JSON encoding of stored LLRs changes.
const SchemaVersion = 1

// ErrSchemaVersion is returned when the store was written by a newer layout
var ErrSchemaVersion = errors.New("vector store schema is newer than supported")

var pragmas = []struct {
	stmt string
	what string
}{
	{"PRAGMA journal_mode=WAL", "enable WAL mode"},
	{"PRAGMA synchronous=NORMAL", "set synchronous mode"},
	{"PRAGMA busy_timeout=5000", "set busy timeout"},
	// reference_vectors cascade with their set
	{"PRAGMA foreign_keys=ON", "enable foreign keys"},
}

// DB wraps the GORM database connection
type DB struct {
	db     *gorm.DB
	logger *logger.Logger
}

// Config holds database configuration
type Config struct {
	Path string // Path to SQLite database file
}

// NewDB opens the vector store and migrates its schema
func NewDB(cfg Config, log *logger.Logger) (*DB, error) {
	if cfg.Path == "" {
		cfg.Path = "bcjr-vectors.db"
	}
	if log == nil {
		log = logger.New(logger.Config{Level: "warn"})
	}
	log = log.WithComponent("database")

	dir := filepath.Dir(cfg.Path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	gormLog := gormlogger.New(
		&gormLogAdapter{log: log},
		gormlogger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	// The pure Go driver registers itself as "sqlite"
	dialector := sqlite.Dialector{
		DriverName: "sqlite",
		DSN:        cfg.Path,
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormLog,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	for _, p := range pragmas {
		if _, err := sqlDB.Exec(p.stmt); err != nil {
			_ = sqlDB.Close()
			return nil, fmt.Errorf("failed to %s: %w", p.what, err)
		}
	}

	var version int
	if err := sqlDB.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to read schema version: %w", err)
	}
	if version > SchemaVersion {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("%w: %s has %d, want %d", ErrSchemaVersion, cfg.Path, version, SchemaVersion)
	}

	if err := db.AutoMigrate(&VectorSet{}, &ReferenceVector{}); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	if version < SchemaVersion {
		if _, err := sqlDB.Exec(fmt.Sprintf("PRAGMA user_version=%d", SchemaVersion)); err != nil {
			_ = sqlDB.Close()
			return nil, fmt.Errorf("failed to write schema version: %w", err)
		}
	}

	log.Debug("Vector store ready",
		logger.String("path", cfg.Path),
		logger.Int("schema", SchemaVersion),
		logger.Int("previous_schema", version))

	return &DB{
		db:     db,
		logger: log,
	}, nil
}

// Close closes the database connection
func (d *DB) Close() error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// GetDB returns the underlying GORM database instance
func (d *DB) GetDB() *gorm.DB {
	return d.db
}

// gormLogAdapter adapts our logger to GORM's logger interface
type gormLogAdapter struct {
	log *logger.Logger
}

func (l *gormLogAdapter) Printf(format string, args ...interface{}) {
	l.log.Warn(fmt.Sprintf(format, args...))
}
