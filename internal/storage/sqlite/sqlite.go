// Package sqlite provides a SQLite-backed implementation of the
// storage.Gateway interface.
//
// Two layers are stacked here:
//
//   - database/sql + github.com/mattn/go-sqlite3 own the file and the
//     connection pool (the blank import registers the "sqlite3" driver).
//   - GORM sits on top of that *sql.DB and turns Filter maps and partial
//     column sets into SQL, one Table[T] per resource.
//
// The schema is created with GORM's AutoMigrate on every start. It is
// idempotent: existing tables are left alone, missing ones are created.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/aanand-mishra/school-api/internal/config"
	"github.com/aanand-mishra/school-api/internal/storage"
	"github.com/aanand-mishra/school-api/internal/types"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	// Side effect only: registers the "sqlite3" driver with database/sql.
	_ "github.com/mattn/go-sqlite3"
)

const (
	// busyTimeoutMs is how long a connection waits for a lock before
	// failing with "database is locked".
	busyTimeoutMs = 5000

	dirPermissions = 0750

	pingTimeout = 5 * time.Second
)

// SQLite holds the raw connection pool and the ORM handle built on it.
// Both are safe for concurrent use by multiple goroutines.
type SQLite struct {
	Db   *sql.DB
	Gorm *gorm.DB
}

// New opens the database at cfg.StoragePath. ORM query logging is only
// turned on (at warn level) in the dev environment.
func New(cfg *config.Config) (*SQLite, error) {
	l := gormlogger.Discard
	if cfg.Env == "dev" {
		l = gormlogger.Default.LogMode(gormlogger.Warn)
	}
	return Open(cfg.StoragePath, l)
}

// Open opens (creating if needed) the SQLite database at path, enables
// foreign keys, and migrates the niveis, pessoas and turmas tables.
//
// path may be ":memory:" for a throwaway database. The pool is capped at
// a single connection: SQLite only has one writer, and every connection
// to ":memory:" would otherwise get its own empty database.
func Open(path string, l gormlogger.Interface) (*SQLite, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), dirPermissions); err != nil {
			return nil, fmt.Errorf("sqlite.Open: create directory: %w", err)
		}
	}

	// See https://github.com/mattn/go-sqlite3#connection-string
	dsn := fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=%d", path, busyTimeoutMs)

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite.Open: open db: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close() //nolint:errcheck // best effort cleanup on error path
		return nil, fmt.Errorf("sqlite.Open: ping: %w", err)
	}

	gdb, err := gorm.Open(gormsqlite.New(gormsqlite.Config{Conn: db}), &gorm.Config{Logger: l})
	if err != nil {
		db.Close() //nolint:errcheck // best effort cleanup on error path
		return nil, fmt.Errorf("sqlite.Open: gorm: %w", err)
	}

	// AutoMigrate orders tables by dependency, so niveis and pessoas exist
	// before turmas references them.
	if err := gdb.AutoMigrate(&types.Nivel{}, &types.Pessoa{}, &types.Turma{}); err != nil {
		db.Close() //nolint:errcheck // best effort cleanup on error path
		return nil, fmt.Errorf("sqlite.Open: migrate: %w", err)
	}

	return &SQLite{Db: db, Gorm: gdb}, nil
}

// Close releases the connection pool.
func (s *SQLite) Close() error {
	if err := s.Db.Close(); err != nil {
		return fmt.Errorf("sqlite.Close: %w", err)
	}
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Table is the storage.Gateway for one record type.
//
// The table name comes from the record's TableName() method, the same
// one GORM uses. Errors are wrapped as "<table>: <op>: <cause>" so the
// message a client sees on a 500 names where it failed.
// ─────────────────────────────────────────────────────────────────────────────
type Table[T any] struct {
	db   *gorm.DB
	name string
}

var _ storage.Gateway[types.Nivel] = (*Table[types.Nivel])(nil)

// NewTable returns the gateway for records of type T stored in s.
func NewTable[T any](s *SQLite) *Table[T] {
	name := "records"
	var zero T
	if n, ok := any(zero).(interface{ TableName() string }); ok {
		name = n.TableName()
	}
	return &Table[T]{db: s.Gorm, name: name}
}

func (t *Table[T]) FindAll(ctx context.Context) ([]T, error) {
	records := make([]T, 0)
	if err := t.db.WithContext(ctx).Find(&records).Error; err != nil {
		return nil, fmt.Errorf("%s: find all: %w", t.name, err)
	}
	return records, nil
}

func (t *Table[T]) FindOne(ctx context.Context, filter storage.Filter) (*T, error) {
	var record T
	// GORM only recognises the unnamed map type as a condition.
	err := t.db.WithContext(ctx).Where(map[string]any(filter)).Take(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: find one: %w", t.name, err)
	}
	return &record, nil
}

func (t *Table[T]) Create(ctx context.Context, record *T) error {
	if err := t.db.WithContext(ctx).Create(record).Error; err != nil {
		return fmt.Errorf("%s: create: %w", t.name, err)
	}
	return nil
}

func (t *Table[T]) Update(ctx context.Context, fields map[string]any, filter storage.Filter) (int64, error) {
	res := t.db.WithContext(ctx).Model(new(T)).Where(map[string]any(filter)).Updates(fields)
	if res.Error != nil {
		return 0, fmt.Errorf("%s: update: %w", t.name, res.Error)
	}
	return res.RowsAffected, nil
}

func (t *Table[T]) Destroy(ctx context.Context, filter storage.Filter) (int64, error) {
	res := t.db.WithContext(ctx).Where(map[string]any(filter)).Delete(new(T))
	if res.Error != nil {
		return 0, fmt.Errorf("%s: destroy: %w", t.name, res.Error)
	}
	return res.RowsAffected, nil
}
