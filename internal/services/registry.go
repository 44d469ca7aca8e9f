package services

import (
	"fmt"
	"sort"
	"sync"
)

// Names under which the core registers its services.
const (
	CatalogServiceName = "catalog"
)

// ServiceRegistry lets the command line and other collaborators reach a
// running service by name instead of threading it through every call.
type ServiceRegistry struct {
	mu       sync.RWMutex
	services map[string]interface{}
}

var globalRegistry = NewServiceRegistry()

// NewServiceRegistry creates an empty registry.
func NewServiceRegistry() *ServiceRegistry {
	return &ServiceRegistry{services: make(map[string]interface{})}
}

// Register adds a service. Registering a name twice is an error.
func (r *ServiceRegistry) Register(name string, service interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.services[name]; exists {
		return fmt.Errorf("service '%s' already registered", name)
	}
	r.services[name] = service
	return nil
}

// Unregister removes a service; unknown names are ignored.
func (r *ServiceRegistry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.services, name)
}

// Names returns the registered service names in sorted order.
func (r *ServiceRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.services))
	for name := range r.services {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *ServiceRegistry) lookup(name string) (interface{}, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.services[name]
	return s, ok
}

// Register adds a service to the global registry.
func Register(name string, service interface{}) error {
	return globalRegistry.Register(name, service)
}

// Unregister removes a service from the global registry.
func Unregister(name string) {
	globalRegistry.Unregister(name)
}

// ListServices returns all registered service names
func ListServices() []string {
	return globalRegistry.Names()
}

// GetService retrieves a service by name with type safety
func GetService[T any](name string) (T, error) {
	return GetFrom[T](globalRegistry, name)
}

// GetFrom retrieves a typed service from r.
func GetFrom[T any](r *ServiceRegistry, name string) (T, error) {
	var zero T

	service, exists := r.lookup(name)
	if !exists {
		return zero, fmt.Errorf("service '%s' not found", name)
	}

	typed, ok := service.(T)
	if !ok {
		return zero, fmt.Errorf("service '%s' has wrong type %T", name, service)
	}
	return typed, nil
}

// GetCatalogService returns the running catalog.
func GetCatalogService() (CatalogService, error) {
	return GetService[CatalogService](CatalogServiceName)
}
