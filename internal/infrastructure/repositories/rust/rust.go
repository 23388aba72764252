// Package rust implements the PackageManager abstraction for cargo.
package rust

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/rios0rios0/omnirun/internal/domain/entities"
	"github.com/rios0rios0/omnirun/internal/domain/repositories"
)

const manifestName = "Cargo.toml"

// Manager implements repositories.PackageManager for cargo.
type Manager struct{}

// New creates the cargo manager.
func New() repositories.PackageManager { return &Manager{} }

func (m *Manager) Name() entities.Manager { return entities.ManagerCargo }

func (m *Manager) ManifestNames() []string { return []string{manifestName} }

func (m *Manager) BulkInstall() bool { return true }

// ParseManifest reads [dependencies] and [dev-dependencies] from Cargo.toml.
// A dependency value is either a bare version string or a table with a
// version key, so the tables are decoded generically.
func (m *Manager) ParseManifest(dir string) ([]entities.Dependency, error) {
	data, err := os.ReadFile(filepath.Join(dir, manifestName))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", manifestName, err)
	}

	var doc struct {
		Dependencies    map[string]any `toml:"dependencies"`
		DevDependencies map[string]any `toml:"dev-dependencies"`
	}
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", manifestName, err)
	}

	deps := fromTable(doc.Dependencies, true)
	deps = append(deps, fromTable(doc.DevDependencies, false)...)
	return deps, nil
}

func fromTable(entries map[string]any, required bool) []entities.Dependency {
	names := make([]string, 0, len(entries))
	for name := range entries {
		names = append(names, name)
	}
	sort.Strings(names)

	deps := make([]entities.Dependency, 0, len(names))
	for _, name := range names {
		deps = append(deps, entities.Dependency{
			Name:       name,
			Constraint: versionOf(entries[name]),
			Manager:    entities.ManagerCargo,
			Required:   required,
		})
	}
	return deps
}

func versionOf(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case map[string]any:
		if version, ok := v["version"].(string); ok {
			return version
		}
	}
	return ""
}

// CheckAvailable uses the build directory as the signal: cargo vendors
// nothing locally until the project has been built or fetched, and the
// registry cache offers no cheap per-crate lookup.
func (m *Manager) CheckAvailable(_ context.Context, _ entities.Dependency, dir string) entities.Availability {
	if _, err := os.Stat(filepath.Join(dir, "target")); err == nil {
		return entities.AvailabilityAvailable
	}
	return entities.AvailabilityMissing
}

// PlanInstall builds the project, which fetches and compiles the whole
// dependency graph in one invocation.
func (m *Manager) PlanInstall(deps []entities.Dependency, dir string) []entities.FixAction {
	if len(deps) == 0 {
		return nil
	}
	return []entities.FixAction{{
		Dependencies: deps,
		Manager:      entities.ManagerCargo,
		Command:      "cargo build",
		WorkDir:      dir,
		AutoFixable:  true,
	}}
}
