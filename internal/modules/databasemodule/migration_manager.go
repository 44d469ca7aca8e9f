package databasemodule

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/hashicorp/go-hclog"

	catalogerrors "github.com/moviedb/moviedb/internal/errors"
	"github.com/moviedb/moviedb/internal/services"
)

// MigrationFunc reads the database at oldPath and writes its contents
// through loader.
type MigrationFunc func(ctx context.Context, oldPath string, loader services.CatalogLoader) error

// Migration upgrades one predecessor schema generation to the current one.
type Migration struct {
	FromVersion string
	Description string
	Up          MigrationFunc
}

// MigrationManager maps saved schema versions to the migration that reads
// them.
type MigrationManager struct {
	migrations map[string]*Migration
	log        hclog.Logger
	mu         sync.RWMutex
}

// NewMigrationManager creates a migration manager knowing every supported
// predecessor version.
func NewMigrationManager(log hclog.Logger) *MigrationManager {
	if log == nil {
		log = hclog.NewNullLogger()
	}

	mm := &MigrationManager{
		migrations: make(map[string]*Migration),
		log:        log,
	}

	if err := mm.RegisterMigration(&Migration{
		FromVersion: LegacyVersion,
		Description: "load DBv0 tags and movies into the current schema",
		Up:          mm.migrateLegacy,
	}); err != nil {
		log.Error("failed to register built-in migration", "from", LegacyVersion, "error", err)
	}

	return mm
}

// RegisterMigration registers a new migration
func (mm *MigrationManager) RegisterMigration(migration *Migration) error {
	mm.mu.Lock()
	defer mm.mu.Unlock()

	if migration.FromVersion == "" {
		return fmt.Errorf("migration version cannot be empty")
	}
	if migration.Up == nil {
		return fmt.Errorf("migration up function cannot be nil")
	}
	if _, exists := mm.migrations[migration.FromVersion]; exists {
		return fmt.Errorf("migration from %s already exists", migration.FromVersion)
	}

	mm.migrations[migration.FromVersion] = migration
	return nil
}

// GetMigrations returns all registered migrations
func (mm *MigrationManager) GetMigrations() []*Migration {
	mm.mu.RLock()
	defer mm.mu.RUnlock()

	migrations := make([]*Migration, 0, len(mm.migrations))
	for _, migration := range mm.migrations {
		migrations = append(migrations, migration)
	}
	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].FromVersion < migrations[j].FromVersion
	})
	return migrations
}

func (mm *MigrationManager) versions() []string {
	var out []string
	for _, m := range mm.GetMigrations() {
		out = append(out, m.FromVersion)
	}
	return out
}

// Migrate moves the contents of the fromVersion database at oldPath into
// catalog. All writes share one transaction, so a failed migration leaves
// the current database as it was.
func (mm *MigrationManager) Migrate(ctx context.Context, fromVersion, oldPath string, catalog services.CatalogService) error {
	mm.mu.RLock()
	migration, exists := mm.migrations[fromVersion]
	mm.mu.RUnlock()

	if !exists {
		mm.log.Warn("no migration for saved version", "version", fromVersion, "known", mm.versions())
		return catalogerrors.UnrecognizedOldVersion("migrate", fromVersion)
	}

	started := time.Now()
	err := catalog.InTransaction(ctx, func(tx services.CatalogService) error {
		return migration.Up(ctx, oldPath, tx)
	})
	if err != nil {
		return fmt.Errorf("migration from %s failed: %w", fromVersion, err)
	}

	mm.log.Debug("migration finished", "from", fromVersion, "duration", time.Since(started))
	return nil
}
