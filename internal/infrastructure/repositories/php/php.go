// Package php implements the PackageManager abstraction for composer.
package php

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rios0rios0/omnirun/internal/domain/entities"
	"github.com/rios0rios0/omnirun/internal/domain/repositories"
)

const manifestName = "composer.json"

// Manager implements repositories.PackageManager for composer.
type Manager struct{}

// New creates the composer manager.
func New() repositories.PackageManager { return &Manager{} }

func (m *Manager) Name() entities.Manager { return entities.ManagerComposer }

func (m *Manager) ManifestNames() []string { return []string{manifestName} }

func (m *Manager) BulkInstall() bool { return true }

// ParseManifest reads require and require-dev from composer.json. The
// "php" entry and "ext-*" entries are platform requirements, not packages,
// and are skipped here; the analyzer reports the interpreter separately.
func (m *Manager) ParseManifest(dir string) ([]entities.Dependency, error) {
	data, err := os.ReadFile(filepath.Join(dir, manifestName))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", manifestName, err)
	}

	var pkg struct {
		Require    map[string]string `json:"require"`
		RequireDev map[string]string `json:"require-dev"`
	}
	if err := json.Unmarshal(data, &pkg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", manifestName, err)
	}

	deps := fromMap(pkg.Require, true)
	deps = append(deps, fromMap(pkg.RequireDev, false)...)
	return deps, nil
}

func fromMap(entries map[string]string, required bool) []entities.Dependency {
	names := make([]string, 0, len(entries))
	for name := range entries {
		if name == "php" || strings.HasPrefix(name, "ext-") {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)

	deps := make([]entities.Dependency, 0, len(names))
	for _, name := range names {
		deps = append(deps, entities.Dependency{
			Name:       name,
			Constraint: entries[name],
			Manager:    entities.ManagerComposer,
			Required:   required,
		})
	}
	return deps
}

// CheckAvailable uses the vendor directory: composer package names are
// vendor/package paths on disk.
func (m *Manager) CheckAvailable(_ context.Context, dep entities.Dependency, dir string) entities.Availability {
	vendor := filepath.Join(dir, "vendor")
	if _, err := os.Stat(vendor); err != nil {
		return entities.AvailabilityMissing
	}
	if _, err := os.Stat(filepath.Join(vendor, filepath.FromSlash(dep.Name))); err != nil {
		return entities.AvailabilityMissing
	}
	return entities.AvailabilityAvailable
}

// PlanInstall installs the whole declared set in one invocation.
func (m *Manager) PlanInstall(deps []entities.Dependency, dir string) []entities.FixAction {
	if len(deps) == 0 {
		return nil
	}
	return []entities.FixAction{{
		Dependencies: deps,
		Manager:      entities.ManagerComposer,
		Command:      "composer install",
		WorkDir:      dir,
		AutoFixable:  true,
	}}
}
