package store

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/roach88/coursesync/internal/record"
	"github.com/roach88/coursesync/internal/schema"
)

//go:embed schema.sql
var schemaSQL string

// Schema version tracking:
// 0 - Initial schema (pre-migration)
// 1 - Added index on progress.assignee for user cascades
const currentSchemaVersion = 1

// Supported database/sql driver names.
const (
	DriverMattn   = "sqlite3"
	DriverModernc = "sqlite"
)

// ErrNotFound is returned when a record id does not exist.
var ErrNotFound = errors.New("record not found")

// IsNotFound reports whether err wraps ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// DBTX is the subset of database/sql implemented by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

var (
	_ DBTX = (*sql.DB)(nil)
	_ DBTX = (*sql.Tx)(nil)
)

// Store provides durable storage for course, user and progress records.
// Uses SQLite with WAL mode for concurrent read access.
type Store struct {
	queries
	sqlDB *sql.DB
}

var _ Records = (*Store)(nil)

type options struct {
	driver    string
	ids       record.IDGenerator
	validator *schema.Validator
	logger    *zap.Logger
}

// Option configures Open.
type Option func(*options)

// WithDriver selects the database/sql driver (DriverMattn or DriverModernc).
func WithDriver(driver string) Option {
	return func(o *options) {
		o.driver = driver
	}
}

// WithIDGenerator sets the generator used for records created without an id.
// Default: record.UUIDv7Generator.
func WithIDGenerator(g record.IDGenerator) Option {
	return func(o *options) {
		o.ids = g
	}
}

// WithValidator overrides the record validator.
func WithValidator(v *schema.Validator) Option {
	return func(o *options) {
		o.validator = v
	}
}

// WithLogger sets the store logger. Default: no-op.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// Open creates or opens a SQLite database at the given path.
// Applies required pragmas and migrations automatically.
//
// This function is idempotent - safe to call multiple times.
func Open(path string, opts ...Option) (*Store, error) {
	o := options{
		driver: DriverMattn,
		ids:    record.UUIDv7Generator{},
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.driver != DriverMattn && o.driver != DriverModernc {
		return nil, fmt.Errorf("unsupported driver %q: must be %q or %q", o.driver, DriverMattn, DriverModernc)
	}
	if o.validator == nil {
		v, err := schema.New()
		if err != nil {
			return nil, err
		}
		o.validator = v
	}

	db, err := sql.Open(o.driver, path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite only supports one writer at a time. A single connection also
	// keeps ":memory:" databases alive across calls.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	if err := applySchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	o.logger.Debug("store opened", zap.String("path", path), zap.String("driver", o.driver))

	return &Store{
		queries: queries{
			db:        db,
			ids:       o.ids,
			validator: o.validator,
			logger:    o.logger,
		},
		sqlDB: db,
	}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// RunInTransaction executes fn with a scoped handle whose writes commit
// atomically together. If fn returns an error the transaction is rolled back
// and the error is returned unchanged.
//
// fn must only use the handle it is given: with a single connection, calls on
// the outer Store block until the transaction ends.
func (s *Store) RunInTransaction(ctx context.Context, fn func(Records) error) error {
	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	scoped := &Tx{queries: s.queries}
	scoped.db = tx

	if err := fn(scoped); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Tx is the scoped handle passed to RunInTransaction callbacks.
type Tx struct {
	queries
}

var _ Records = (*Tx)(nil)

// RunInTransaction on a transaction handle joins the enclosing transaction.
func (t *Tx) RunInTransaction(_ context.Context, fn func(Records) error) error {
	return fn(t)
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	return nil
}

// applySchema creates tables if they don't exist and runs migrations.
// This function is idempotent.
func applySchema(db *sql.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}

	if err := runMigrations(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

// runMigrations applies incremental schema migrations based on user_version.
func runMigrations(db *sql.DB) error {
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("get user_version: %w", err)
	}

	if version < 1 {
		if err := migrateToV1(db); err != nil {
			return err
		}
	}

	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}

	return nil
}

// migrateToV1 indexes progress by assignee. User deletion removes every
// progress record of the user regardless of course.
func migrateToV1(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_progress_assignee
		ON progress(assignee)
	`)
	if err != nil {
		return fmt.Errorf("migrate to v1: %w", err)
	}
	return nil
}

// schemaVersion returns the database's user_version. Used for testing.
func (s *Store) schemaVersion() (int, error) {
	var version int
	if err := s.sqlDB.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("get user_version: %w", err)
	}
	return version, nil
}
