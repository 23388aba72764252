// Package ruby implements the PackageManager abstraction for bundler.
package ruby

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/rios0rios0/omnirun/internal/domain/entities"
	"github.com/rios0rios0/omnirun/internal/domain/repositories"
	"github.com/rios0rios0/omnirun/internal/infrastructure/hostenv"
)

const manifestName = "Gemfile"

// gemPattern matches `gem "name", "constraint"` declarations.
var gemPattern = regexp.MustCompile(`(?m)^\s*gem\s+["']([^"']+)["'](?:\s*,\s*["']([^"']+)["'])?`)

// Manager implements repositories.PackageManager for bundler.
type Manager struct{}

// New creates the bundler manager.
func New() repositories.PackageManager { return &Manager{} }

func (m *Manager) Name() entities.Manager { return entities.ManagerBundler }

func (m *Manager) ManifestNames() []string { return []string{manifestName} }

func (m *Manager) BulkInstall() bool { return true }

// ParseManifest extracts gem declarations from the Gemfile in declaration
// order. Group blocks (development/test) are not tracked, so every gem is
// reported required; bundler installs the whole set anyway.
func (m *Manager) ParseManifest(dir string) ([]entities.Dependency, error) {
	data, err := os.ReadFile(filepath.Join(dir, manifestName))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", manifestName, err)
	}

	matches := gemPattern.FindAllStringSubmatch(string(data), -1)
	deps := make([]entities.Dependency, 0, len(matches))
	for _, match := range matches {
		deps = append(deps, entities.Dependency{
			Name:       match[1],
			Constraint: strings.TrimSpace(match[2]),
			Manager:    entities.ManagerBundler,
			Required:   true,
		})
	}
	return deps, nil
}

// CheckAvailable queries the gem index. RubyGems prints "true"/"false" for
// `gem list -i`; a missing gem binary or a timeout yields unknown.
func (m *Manager) CheckAvailable(ctx context.Context, dep entities.Dependency, dir string) entities.Availability {
	if !hostenv.Installed("gem") {
		return entities.AvailabilityUnknown
	}
	out, err := hostenv.Query(ctx, dir, "gem", "list", "-i", "^"+dep.Name+"$")
	switch strings.TrimSpace(out) {
	case "true":
		return entities.AvailabilityAvailable
	case "false":
		return entities.AvailabilityMissing
	}
	if err != nil {
		return entities.AvailabilityUnknown
	}
	return entities.AvailabilityUnknown
}

// PlanInstall installs the whole Gemfile in one invocation.
func (m *Manager) PlanInstall(deps []entities.Dependency, dir string) []entities.FixAction {
	if len(deps) == 0 {
		return nil
	}
	return []entities.FixAction{{
		Dependencies: deps,
		Manager:      entities.ManagerBundler,
		Command:      "bundle install",
		WorkDir:      dir,
		AutoFixable:  true,
	}}
}
