// Package python implements the PackageManager abstraction for pip, parsing
// requirements.txt and pyproject.toml manifests.
package python

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/rios0rios0/omnirun/internal/domain/entities"
	"github.com/rios0rios0/omnirun/internal/domain/repositories"
)

// requirementPattern splits "name[extras]<constraint>" requirement lines.
// Lines that do not match are kept as unknown-cannot-check entries rather
// than failing the whole manifest.
var requirementPattern = regexp.MustCompile(`^([A-Za-z0-9][A-Za-z0-9._-]*)(\[[^\]]*\])?\s*([<>=!~].*)?$`)

var venvDirNames = []string{"venv", ".venv", "env"}

// Manager implements repositories.PackageManager for pip.
type Manager struct{}

// New creates the pip manager.
func New() repositories.PackageManager { return &Manager{} }

func (m *Manager) Name() entities.Manager { return entities.ManagerPip }

func (m *Manager) ManifestNames() []string {
	return []string{"requirements.txt", "pyproject.toml"}
}

func (m *Manager) BulkInstall() bool { return true }

// ParseManifest prefers requirements.txt and falls back to the [project]
// dependencies of pyproject.toml. A project that declares packages but has
// no venv yet gets a venv pseudo-dependency first: without one no package
// can be checked or installed, so creating it is the first fix.
func (m *Manager) ParseManifest(dir string) ([]entities.Dependency, error) {
	deps, err := m.parseDeclared(dir)
	if err != nil {
		return nil, err
	}
	if findSitePackages(dir) == "" {
		deps = append([]entities.Dependency{venvDependency()}, deps...)
	}
	return deps, nil
}

func (m *Manager) parseDeclared(dir string) ([]entities.Dependency, error) {
	if data, err := os.ReadFile(filepath.Join(dir, "requirements.txt")); err == nil {
		return m.parseRequirements(string(data)), nil
	}
	if data, err := os.ReadFile(filepath.Join(dir, "pyproject.toml")); err == nil {
		return m.parsePyproject(data)
	}
	return nil, fmt.Errorf("no python manifest found in %s", dir)
}

func venvDependency() entities.Dependency {
	return entities.Dependency{
		Name:      "venv",
		Manager:   entities.ManagerPip,
		Required:  true,
		Toolchain: true,
		Detail:    "no virtual environment found; installs target a fresh venv/",
	}
}

func (m *Manager) parseRequirements(content string) []entities.Dependency {
	var deps []entities.Dependency
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "-") {
			continue
		}
		// Inline comments and environment markers are not evidence.
		if idx := strings.IndexAny(line, "#;"); idx >= 0 {
			line = strings.TrimSpace(line[:idx])
		}
		deps = append(deps, m.parseRequirement(line))
	}
	return deps
}

func (m *Manager) parseRequirement(line string) entities.Dependency {
	match := requirementPattern.FindStringSubmatch(line)
	if match == nil {
		return entities.Dependency{
			Name:         line,
			Manager:      entities.ManagerPip,
			Required:     true,
			Availability: entities.AvailabilityUnknown,
			Detail:       "unparseable requirement line",
		}
	}
	return entities.Dependency{
		Name:       match[1],
		Constraint: strings.TrimSpace(match[3]),
		Manager:    entities.ManagerPip,
		Required:   true,
	}
}

func (m *Manager) parsePyproject(data []byte) ([]entities.Dependency, error) {
	var doc struct {
		Project struct {
			Dependencies         []string            `toml:"dependencies"`
			OptionalDependencies map[string][]string `toml:"optional-dependencies"`
		} `toml:"project"`
	}
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse pyproject.toml: %w", err)
	}

	var deps []entities.Dependency
	for _, line := range doc.Project.Dependencies {
		deps = append(deps, m.parseRequirement(strings.TrimSpace(line)))
	}
	for _, group := range doc.Project.OptionalDependencies {
		for _, line := range group {
			dep := m.parseRequirement(strings.TrimSpace(line))
			dep.Required = false
			deps = append(deps, dep)
		}
	}
	return deps, nil
}

// CheckAvailable looks for the package in the project venv's site-packages,
// the cheapest signal pip offers. Without a venv there is no reliable local
// signal, so the result is unknown rather than a guess.
func (m *Manager) CheckAvailable(_ context.Context, dep entities.Dependency, dir string) entities.Availability {
	sitePackages := findSitePackages(dir)
	if dep.Toolchain {
		// The venv pseudo-dependency is satisfied once site-packages resolves.
		if sitePackages == "" {
			return entities.AvailabilityMissing
		}
		return entities.AvailabilityAvailable
	}
	if sitePackages == "" {
		return entities.AvailabilityUnknown
	}

	// Distribution names normalize - to _ on disk.
	normalized := strings.ReplaceAll(strings.ToLower(dep.Name), "-", "_")
	if _, err := os.Stat(filepath.Join(sitePackages, normalized)); err == nil {
		return entities.AvailabilityAvailable
	}
	matches, _ := filepath.Glob(filepath.Join(sitePackages, normalized+"-*.dist-info"))
	if len(matches) > 0 {
		return entities.AvailabilityAvailable
	}
	return entities.AvailabilityMissing
}

func findSitePackages(dir string) string {
	for _, name := range venvDirNames {
		matches, _ := filepath.Glob(filepath.Join(dir, name, "lib", "python*", "site-packages"))
		if len(matches) > 0 {
			return matches[0]
		}
		// Windows layout.
		winPath := filepath.Join(dir, name, "Lib", "site-packages")
		if _, err := os.Stat(winPath); err == nil {
			return winPath
		}
	}
	return ""
}

// venvPip returns the venv-local pip relative to dir, or "" when no venv
// exists yet.
func venvPip(dir string) string {
	for _, name := range venvDirNames {
		posix := filepath.Join(name, "bin", "pip")
		if _, err := os.Stat(filepath.Join(dir, posix)); err == nil {
			return posix
		}
		win := filepath.Join(name, "Scripts", "pip.exe")
		if _, err := os.Stat(filepath.Join(dir, win)); err == nil {
			return win
		}
	}
	return ""
}

// PlanInstall installs into the project venv, creating one first when none
// exists so the install never lands in the global interpreter. Installs come
// from requirements.txt when present, otherwise by package name.
func (m *Manager) PlanInstall(deps []entities.Dependency, dir string) []entities.FixAction {
	if len(deps) == 0 {
		return nil
	}

	pip := venvPip(dir)
	prefix := ""
	if pip == "" {
		pip = filepath.Join("venv", "bin", "pip")
		prefix = "python3 -m venv venv && "
	}

	spec := "-r requirements.txt"
	if _, err := os.Stat(filepath.Join(dir, "requirements.txt")); err != nil {
		names := make([]string, 0, len(deps))
		for _, dep := range deps {
			if dep.Toolchain {
				// The venv pseudo-dependency is not a package to install.
				continue
			}
			names = append(names, dep.Name)
		}
		if len(names) == 0 {
			// Only the venv itself is missing.
			return []entities.FixAction{{
				Dependencies: deps,
				Manager:      entities.ManagerPip,
				Command:      "python3 -m venv venv",
				WorkDir:      dir,
				AutoFixable:  true,
			}}
		}
		spec = strings.Join(names, " ")
	}
	command := prefix + pip + " install " + spec

	return []entities.FixAction{{
		Dependencies: deps,
		Manager:      entities.ManagerPip,
		Command:      command,
		WorkDir:      dir,
		AutoFixable:  true,
	}}
}
