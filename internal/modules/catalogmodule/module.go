package catalogmodule

import (
	"fmt"

	"github.com/hashicorp/go-hclog"

	"github.com/moviedb/moviedb/internal/base"
	"github.com/moviedb/moviedb/internal/database"
	"github.com/moviedb/moviedb/internal/services"
)

const (
	// ModuleID is the unique identifier for the catalog module
	ModuleID = "system.catalog"

	// ModuleName is the display name for the catalog module
	ModuleName = "Movie Catalog"
)

// Module owns the catalog service for one open database and publishes it in
// the service registry.
type Module struct {
	*base.BaseModule

	store   *database.Store
	log     hclog.Logger
	service *Service
}

// NewModule creates the catalog module for store.
func NewModule(store *database.Store, log hclog.Logger) *Module {
	if log == nil {
		log = hclog.NewNullLogger()
	}
	return &Module{
		BaseModule: base.NewBaseModule(ModuleID, ModuleName),
		store:      store,
		log:        log,
	}
}

// Init builds the service and registers it as services.CatalogServiceName.
func (m *Module) Init() error {
	service := NewService(m.store, m.log.Named("tx"))
	if err := services.Register(services.CatalogServiceName, services.CatalogService(service)); err != nil {
		return fmt.Errorf("failed to register catalog service: %w", err)
	}

	m.service = service
	m.SetDB(m.store.DB())
	m.SetInitialized(true)
	m.log.Debug("catalog service registered", "database", m.store.Path())
	return nil
}

// Service returns the catalog service; nil before Init.
func (m *Module) Service() *Service {
	return m.service
}

// Shutdown withdraws the service from the registry.
func (m *Module) Shutdown() {
	if !m.IsInitialized() {
		return
	}
	services.Unregister(services.CatalogServiceName)
	m.SetInitialized(false)
}
