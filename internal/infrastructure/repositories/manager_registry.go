package repositories

import (
	"sort"

	"github.com/rios0rios0/omnirun/internal/domain/entities"
	domainRepos "github.com/rios0rios0/omnirun/internal/domain/repositories"
)

// ManagerRegistry manages all registered package-manager implementations.
type ManagerRegistry struct {
	managers map[entities.Manager]domainRepos.PackageManager
}

// NewManagerRegistry creates an empty manager registry.
func NewManagerRegistry() *ManagerRegistry {
	return &ManagerRegistry{
		managers: make(map[entities.Manager]domainRepos.PackageManager),
	}
}

// Register adds a manager under its name.
func (r *ManagerRegistry) Register(m domainRepos.PackageManager) {
	r.managers[m.Name()] = m
}

// Get returns the manager with the given name, or nil if not registered.
func (r *ManagerRegistry) Get(name entities.Manager) domainRepos.PackageManager {
	return r.managers[name]
}

// All returns every registered manager in stable name order.
func (r *ManagerRegistry) All() []domainRepos.PackageManager {
	names := r.Names()
	result := make([]domainRepos.PackageManager, 0, len(names))
	for _, name := range names {
		result = append(result, r.managers[name])
	}
	return result
}

// Names returns the sorted list of registered manager names.
func (r *ManagerRegistry) Names() []entities.Manager {
	names := make([]entities.Manager, 0, len(r.managers))
	for name := range r.managers {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}
