// Package golang implements the PackageManager abstraction for Go modules.
package golang

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/mod/modfile"
	"golang.org/x/mod/module"

	"github.com/rios0rios0/omnirun/internal/domain/entities"
	"github.com/rios0rios0/omnirun/internal/domain/repositories"
)

const manifestName = "go.mod"

// Manager implements repositories.PackageManager for go-modules.
type Manager struct{}

// New creates the go-modules manager.
func New() repositories.PackageManager { return &Manager{} }

func (m *Manager) Name() entities.Manager { return entities.ManagerGoModules }

func (m *Manager) ManifestNames() []string { return []string{manifestName} }

func (m *Manager) BulkInstall() bool { return true }

// ParseManifest parses go.mod with x/mod. Indirect requirements are
// reported as optional; the module's own code never imports them directly.
func (m *Manager) ParseManifest(dir string) ([]entities.Dependency, error) {
	path := filepath.Join(dir, manifestName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", manifestName, err)
	}

	file, err := modfile.Parse(path, data, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", manifestName, err)
	}

	deps := make([]entities.Dependency, 0, len(file.Require))
	for _, req := range file.Require {
		deps = append(deps, entities.Dependency{
			Name:       req.Mod.Path,
			Constraint: req.Mod.Version,
			Manager:    entities.ManagerGoModules,
			Required:   !req.Indirect,
		})
	}
	return deps, nil
}

// CheckAvailable looks for the exact module version in the local module
// cache. The cache path uses the escaped module path, per x/mod rules.
func (m *Manager) CheckAvailable(_ context.Context, dep entities.Dependency, _ string) entities.Availability {
	cache := moduleCacheDir()
	if cache == "" {
		return entities.AvailabilityUnknown
	}

	escaped, err := module.EscapePath(dep.Name)
	if err != nil {
		return entities.AvailabilityUnknown
	}
	if _, statErr := os.Stat(filepath.Join(cache, escaped+"@"+dep.Constraint)); statErr == nil {
		return entities.AvailabilityAvailable
	}
	return entities.AvailabilityMissing
}

func moduleCacheDir() string {
	if cache := os.Getenv("GOMODCACHE"); cache != "" {
		return cache
	}
	gopath := os.Getenv("GOPATH")
	if gopath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		gopath = filepath.Join(home, "go")
	}
	// GOPATH may hold multiple entries; the cache lives under the first.
	if idx := strings.IndexByte(gopath, os.PathListSeparator); idx >= 0 {
		gopath = gopath[:idx]
	}
	return filepath.Join(gopath, "pkg", "mod")
}

// PlanInstall downloads the whole declared set in one invocation.
func (m *Manager) PlanInstall(deps []entities.Dependency, dir string) []entities.FixAction {
	if len(deps) == 0 {
		return nil
	}
	return []entities.FixAction{{
		Dependencies: deps,
		Manager:      entities.ManagerGoModules,
		Command:      "go mod download",
		WorkDir:      dir,
		AutoFixable:  true,
	}}
}
