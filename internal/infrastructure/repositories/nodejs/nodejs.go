// Package nodejs implements the PackageManager abstraction for the npm,
// yarn and pnpm ecosystems, which share the package.json manifest format
// and differ only in lockfile and install command.
package nodejs

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/rios0rios0/omnirun/internal/domain/entities"
	"github.com/rios0rios0/omnirun/internal/domain/repositories"
)

const manifestName = "package.json"

// Manager implements repositories.PackageManager for one of the three
// Node.js package managers.
type Manager struct {
	name    entities.Manager
	install string
}

// New creates a manager for the given Node.js package-manager flavor.
func New(name entities.Manager) repositories.PackageManager {
	install := "npm install"
	switch name {
	case entities.ManagerYarn:
		install = "yarn install"
	case entities.ManagerPnpm:
		install = "pnpm install"
	}
	return &Manager{name: name, install: install}
}

// DetectFlavor returns the manager that owns dir, decided by lockfile
// evidence: pnpm-lock.yaml, then yarn.lock, then npm as the default.
func DetectFlavor(dir string) entities.Manager {
	if _, err := os.Stat(filepath.Join(dir, "pnpm-lock.yaml")); err == nil {
		return entities.ManagerPnpm
	}
	if _, err := os.Stat(filepath.Join(dir, "yarn.lock")); err == nil {
		return entities.ManagerYarn
	}
	return entities.ManagerNpm
}

func (m *Manager) Name() entities.Manager { return m.name }

func (m *Manager) ManifestNames() []string { return []string{manifestName} }

func (m *Manager) BulkInstall() bool { return true }

// ParseManifest reads package.json. Runtime dependencies are required; dev
// dependencies are optional. Entries stay in a stable (sorted) order since
// JSON objects carry none of their own.
func (m *Manager) ParseManifest(dir string) ([]entities.Dependency, error) {
	data, err := os.ReadFile(filepath.Join(dir, manifestName))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", manifestName, err)
	}

	var pkg struct {
		Dependencies    map[string]string `json:"dependencies"`
		DevDependencies map[string]string `json:"devDependencies"`
	}
	if err := json.Unmarshal(data, &pkg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", manifestName, err)
	}

	deps := make([]entities.Dependency, 0, len(pkg.Dependencies)+len(pkg.DevDependencies))
	deps = append(deps, fromMap(pkg.Dependencies, m.name, true)...)
	deps = append(deps, fromMap(pkg.DevDependencies, m.name, false)...)
	return deps, nil
}

func fromMap(entries map[string]string, manager entities.Manager, required bool) []entities.Dependency {
	names := make([]string, 0, len(entries))
	for name := range entries {
		names = append(names, name)
	}
	sort.Strings(names)

	deps := make([]entities.Dependency, 0, len(names))
	for _, name := range names {
		deps = append(deps, entities.Dependency{
			Name:       name,
			Constraint: entries[name],
			Manager:    manager,
			Required:   required,
		})
	}
	return deps
}

// CheckAvailable uses the cheapest reliable signal: presence of the package
// directory under node_modules. No external process is needed.
func (m *Manager) CheckAvailable(_ context.Context, dep entities.Dependency, dir string) entities.Availability {
	modules := filepath.Join(dir, "node_modules")
	if _, err := os.Stat(modules); err != nil {
		return entities.AvailabilityMissing
	}
	if _, err := os.Stat(filepath.Join(modules, filepath.FromSlash(dep.Name))); err != nil {
		return entities.AvailabilityMissing
	}
	return entities.AvailabilityAvailable
}

// PlanInstall emits a single bulk install regardless of how many packages
// are missing; the manager resolves the whole declared set at once.
func (m *Manager) PlanInstall(deps []entities.Dependency, dir string) []entities.FixAction {
	if len(deps) == 0 {
		return nil
	}
	return []entities.FixAction{{
		Dependencies: deps,
		Manager:      m.name,
		Command:      m.install,
		WorkDir:      dir,
		AutoFixable:  true,
	}}
}
