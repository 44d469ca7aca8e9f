// Package environment places the catalog database on disk, finds it again on
// the next start, and upgrades it when the saved schema version is older than
// database.Version.
package environment

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/moviedb/moviedb/internal/database"
	"github.com/moviedb/moviedb/internal/logger"
	"github.com/moviedb/moviedb/internal/modules/catalogmodule"
	"github.com/moviedb/moviedb/internal/modules/databasemodule"
	"github.com/moviedb/moviedb/internal/utils"
)

// State is how the last Start found the data directory.
type State string

const (
	// StateFirstRun means no version file existed; an empty catalog was created.
	StateFirstRun State = "first_run"
	// StateReopened means the current-version database was opened as it was.
	StateReopened State = "reopened"
	// StateMigrated means an older database was loaded into the current one.
	StateMigrated State = "migrated"
)

type options struct {
	log         hclog.Logger
	logQueries  bool
	busyTimeout time.Duration
	migrations  *databasemodule.MigrationManager
}

// Option configures Start.
type Option func(*options)

// WithLogger sets the logger; sub-loggers "environment" and "migration" are
// derived from it.
func WithLogger(log hclog.Logger) Option {
	return func(o *options) { o.log = log }
}

// WithQueryLogging prints every SQL statement.
func WithQueryLogging(enabled bool) Option {
	return func(o *options) { o.logQueries = enabled }
}

// WithBusyTimeout sets the SQLite busy timeout.
func WithBusyTimeout(d time.Duration) Option {
	return func(o *options) { o.busyTimeout = d }
}

// WithMigrationManager replaces the default set of migrations.
func WithMigrationManager(mm *databasemodule.MigrationManager) Option {
	return func(o *options) { o.migrations = mm }
}

// Environment is a started catalog: its paths, its open database and the
// operations surface over it.
type Environment struct {
	paths      Paths
	state      State
	store      *database.Store
	module     *catalogmodule.Module
	migrations *databasemodule.MigrationManager
	log        hclog.Logger
}

// Start runs the startup sequence under parent:
//
//  1. create "Movie Data" and the current version directory when missing
//  2. read the version file, writing it with the current version when absent
//  3. open the current database, creating tables as needed
//  4. when the saved version is older, migrate it and rewrite the version file
//
// A failed migration returns an error and leaves the version file untouched.
func Start(ctx context.Context, parent string, opts ...Option) (*Environment, error) {
	o := options{
		log:         logger.Default(),
		busyTimeout: 5 * time.Second,
	}
	for _, opt := range opts {
		opt(&o)
	}

	log := o.log.Named("environment")
	if o.migrations == nil {
		o.migrations = databasemodule.NewMigrationManager(o.log.Named("migration"))
	}

	paths := ResolvePaths(parent, database.Version)

	created, err := utils.EnsureDir(paths.DataDir)
	if err != nil {
		return nil, err
	}
	if created {
		log.Info("missing data directory", "path", paths.DataDir)
	}

	created, err = utils.EnsureDir(paths.DatabaseDir)
	if err != nil {
		return nil, err
	}
	if created {
		log.Info("missing database directory", "path", paths.DatabaseDir)
	}

	state := StateReopened
	saved, found, err := ReadSavedVersion(paths.VersionFile)
	if err != nil {
		return nil, err
	}
	if !found {
		if err := WriteSavedVersion(paths.VersionFile, database.Version); err != nil {
			return nil, err
		}
		saved = database.Version
		state = StateFirstRun
	}

	store, err := database.Open(paths.DatabaseFile,
		database.WithQueryLogging(o.logQueries),
		database.WithBusyTimeout(o.busyTimeout))
	if err != nil {
		return nil, err
	}

	module := catalogmodule.NewModule(store, o.log)
	if err := module.Init(); err != nil {
		store.Close()
		return nil, err
	}

	env := &Environment{
		paths:      paths,
		state:      state,
		store:      store,
		module:     module,
		migrations: o.migrations,
		log:        log,
	}

	if saved == database.Version {
		log.Info(fmt.Sprintf("reopened at version %s", database.Version), "path", paths.DatabaseFile)
		return env, nil
	}

	log.Info(fmt.Sprintf("update from %s starting", saved))
	oldPath := DatabaseFile(paths.DataDir, saved)
	if err := o.migrations.Migrate(ctx, saved, oldPath, module.Service()); err != nil {
		log.Error("update failed", "from", saved, "error", err)
		env.Close()
		return nil, err
	}
	if err := WriteSavedVersion(paths.VersionFile, database.Version); err != nil {
		env.Close()
		return nil, err
	}
	log.Info(fmt.Sprintf("update to %s successful", database.Version))

	env.state = StateMigrated
	return env, nil
}

// Catalog returns the operations surface.
func (e *Environment) Catalog() *catalogmodule.Service {
	return e.module.Service()
}

// Paths returns the on-disk layout in use.
func (e *Environment) Paths() Paths {
	return e.paths
}

// State reports what Start found.
func (e *Environment) State() State {
	return e.state
}

// Migrations returns the upgrades this build can run, oldest version first.
func (e *Environment) Migrations() []*databasemodule.Migration {
	return e.migrations.GetMigrations()
}

// Stats reports connection pool usage.
func (e *Environment) Stats() map[string]interface{} {
	return e.Catalog().Stats()
}

// HealthCheck reports whether the catalog module is up and its database
// answers.
func (e *Environment) HealthCheck() error {
	return e.module.HealthCheck()
}

// Close releases the database.
func (e *Environment) Close() error {
	e.module.Shutdown()
	return e.store.Close()
}
