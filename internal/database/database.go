package database

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mattn/go-sqlite3"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	catalogerrors "github.com/moviedb/moviedb/internal/errors"
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// Store owns the process's connection to one catalog database.
type Store struct {
	db   *gorm.DB
	path string
}

type options struct {
	logQueries  bool
	busyTimeout time.Duration
	readOnly    bool
}

// Option configures Open.
type Option func(*options)

// WithQueryLogging makes gorm print every statement.
func WithQueryLogging(enabled bool) Option {
	return func(o *options) { o.logQueries = enabled }
}

// WithBusyTimeout sets how long SQLite waits on a locked file.
func WithBusyTimeout(d time.Duration) Option {
	return func(o *options) { o.busyTimeout = d }
}

// Open opens or creates the SQLite database at path and creates any missing
// tables. Opening an already-current database changes nothing.
func Open(path string, opts ...Option) (*Store, error) {
	o := options{busyTimeout: 5 * time.Second}
	for _, opt := range opts {
		opt(&o)
	}

	s, err := open(path, o)
	if err != nil {
		return nil, err
	}

	if err := s.db.AutoMigrate(Models()...); err != nil {
		s.Close()
		return nil, fmt.Errorf("failed to migrate schema %s: %w", Version, err)
	}

	return s, nil
}

// OpenReadOnly opens an existing database without touching its schema. It is
// how older database generations are read during migration.
func OpenReadOnly(path string, opts ...Option) (*Store, error) {
	o := options{busyTimeout: 5 * time.Second}
	for _, opt := range opts {
		opt(&o)
	}
	o.readOnly = true

	return open(path, o)
}

// New wraps an existing gorm handle. The schema is left as it is.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

func open(path string, o options) (*Store, error) {
	logLevel := logger.Silent
	if o.logQueries {
		logLevel = logger.Info
	}

	db, err := gorm.Open(sqlite.Open(buildDSN(path, o)), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", path, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access connection pool: %w", err)
	}
	// One connection: the file belongs to this process alone, and an
	// in-memory database lives exactly as long as its connection.
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(0)

	return &Store{db: db, path: path}, nil
}

func buildDSN(path string, o options) string {
	params := []string{
		"_foreign_keys=on",
		fmt.Sprintf("_busy_timeout=%d", o.busyTimeout.Milliseconds()),
	}

	if o.readOnly {
		escaped := strings.NewReplacer("%", "%25", "?", "%3f", "#", "%23").Replace(path)
		return "file:" + escaped + "?mode=ro&" + strings.Join(params, "&")
	}
	return path + "?" + strings.Join(params, "&")
}

// DB returns the gorm handle.
func (s *Store) DB() *gorm.DB {
	return s.db
}

// Path returns the file the store was opened on; empty for wrapped handles.
func (s *Store) Path() string {
	return s.path
}

// Close releases the connection.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// ClassifyError turns storage failures into catalog errors. Errors that are
// already classified pass through unchanged.
func ClassifyError(op string, err error) error {
	if err == nil {
		return nil
	}

	var cErr *catalogerrors.CatalogError
	if errors.As(err, &cErr) {
		return err
	}

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return catalogerrors.NotFound(op, err)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return catalogerrors.IntegrityFailure(op, err)
	}

	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint {
		switch sqliteErr.ExtendedCode {
		case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey, sqlite3.ErrConstraintForeignKey:
			return catalogerrors.IntegrityFailure(op, err)
		default:
			return catalogerrors.ConstraintFailure(op, err)
		}
	}

	return catalogerrors.InternalError(op, err)
}
