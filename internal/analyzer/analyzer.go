// Package analyzer resolves each discovered program's declared dependencies
// and their availability on the host.
package analyzer

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/Masterminds/semver/v3"
	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/omnirun/internal/discovery"
	"github.com/rios0rios0/omnirun/internal/domain/entities"
	domainRepos "github.com/rios0rios0/omnirun/internal/domain/repositories"
	"github.com/rios0rios0/omnirun/internal/infrastructure/hostenv"
	infraRepos "github.com/rios0rios0/omnirun/internal/infrastructure/repositories"
	nodeRepo "github.com/rios0rios0/omnirun/internal/infrastructure/repositories/nodejs"
)

const maxConcurrentChecks = 8

// Analyzer classifies each declared dependency of a program as available,
// missing, or unknown. Results are computed fresh on every call; nothing is
// cached across a fix attempt.
type Analyzer struct {
	registry *infraRepos.ManagerRegistry
	timeout  time.Duration
}

// New creates an analyzer using the given manager registry. timeout bounds
// each out-of-process availability query.
func New(registry *infraRepos.ManagerRegistry, timeout time.Duration) *Analyzer {
	return &Analyzer{registry: registry, timeout: timeout}
}

// Analyze returns the ordered dependency list for a program: interpreter
// pseudo-dependencies first, then the manifest's declarations in
// declaration order. The program's own files are only read, never written.
func (a *Analyzer) Analyze(ctx context.Context, prog *entities.Program) []entities.Dependency {
	dir := filepath.Dir(prog.Path)

	deps := a.checkToolchain(ctx, prog)

	manager := a.managerFor(prog.Language, dir)
	if manager == nil || !manifestExists(manager, dir) {
		// No manifest means no declared dependencies, a valid state.
		return deps
	}

	declared, err := manager.ParseManifest(dir)
	if err != nil {
		// Degrade to partial results: the toolchain entries still stand.
		logger.Warnf("Manifest parsing failed for %s: %v", prog.RelativePath, err)
		return deps
	}

	for i := range declared {
		normalizeConstraint(&declared[i])
	}

	a.checkAvailability(ctx, declared, manager, dir)
	return append(deps, declared...)
}

// checkToolchain probes the language's interpreters. When none is present
// the toolchain itself is reported as a required pseudo-dependency, which
// distinguishes "toolchain missing" from "package missing".
func (a *Analyzer) checkToolchain(ctx context.Context, prog *entities.Program) []entities.Dependency {
	spec := discovery.SpecForLanguage(prog.Language)
	if spec == nil {
		return nil
	}

	for _, interpreter := range spec.Interpreters {
		available, version := hostenv.Probe(ctx, interpreter)
		if available {
			return []entities.Dependency{{
				Name:         interpreter,
				Manager:      entities.ManagerSystem,
				Required:     true,
				Availability: entities.AvailabilityAvailable,
				Version:      version,
				Toolchain:    true,
			}}
		}
	}

	primary := ""
	if len(spec.Interpreters) > 0 {
		primary = spec.Interpreters[0]
	}
	return []entities.Dependency{{
		Name:         primary,
		Manager:      entities.ManagerSystem,
		Required:     true,
		Availability: entities.AvailabilityMissing,
		Detail:       "interpreter not found on PATH; install it manually",
		Toolchain:    true,
	}}
}

// checkAvailability runs the per-dependency checks concurrently. Each check
// is independent and bounded; entries pre-marked unknown by the parser are
// left untouched.
func (a *Analyzer) checkAvailability(
	ctx context.Context,
	deps []entities.Dependency,
	manager domainRepos.PackageManager,
	dir string,
) {
	sem := make(chan struct{}, maxConcurrentChecks)
	var wg sync.WaitGroup

	for i := range deps {
		if deps[i].Availability == entities.AvailabilityUnknown {
			continue
		}
		wg.Add(1)
		sem <- struct{}{}
		go func(dep *entities.Dependency) {
			defer wg.Done()
			defer func() { <-sem }()

			checkCtx, cancel := context.WithTimeout(ctx, a.timeout)
			defer cancel()

			dep.Availability = manager.CheckAvailable(checkCtx, *dep, dir)
			if checkCtx.Err() != nil {
				dep.Availability = entities.AvailabilityUnknown
				dep.Detail = "availability query timed out"
			}
		}(&deps[i])
	}

	wg.Wait()
}

// managerFor selects the package manager for a language, using directory
// evidence where one language maps to several managers.
func (a *Analyzer) managerFor(lang entities.Language, dir string) domainRepos.PackageManager {
	switch lang {
	case entities.LangPython:
		return a.registry.Get(entities.ManagerPip)
	case entities.LangJavaScript, entities.LangTypeScript:
		return a.registry.Get(nodeRepo.DetectFlavor(dir))
	case entities.LangGo:
		return a.registry.Get(entities.ManagerGoModules)
	case entities.LangRust:
		return a.registry.Get(entities.ManagerCargo)
	case entities.LangJava:
		if _, err := os.Stat(filepath.Join(dir, "pom.xml")); err == nil {
			return a.registry.Get(entities.ManagerMaven)
		}
		return a.registry.Get(entities.ManagerGradle)
	case entities.LangRuby:
		return a.registry.Get(entities.ManagerBundler)
	case entities.LangPHP:
		return a.registry.Get(entities.ManagerComposer)
	case entities.LangTerraform:
		return a.registry.Get(entities.ManagerTerraform)
	default:
		return nil
	}
}

// manifestExists reports whether any of the manager's manifests is present.
// Terraform declares itself through arbitrary .tf files, handled by glob.
func manifestExists(manager domainRepos.PackageManager, dir string) bool {
	if manager.Name() == entities.ManagerTerraform {
		matches, _ := filepath.Glob(filepath.Join(dir, "*.tf"))
		return len(matches) > 0
	}
	for _, name := range manager.ManifestNames() {
		if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
			return true
		}
	}
	return false
}

// normalizeConstraint canonicalizes parseable version constraints so
// reports and plans show a uniform shape. Unparseable constraints are kept
// verbatim; the native manager is the resolver of record anyway.
func normalizeConstraint(dep *entities.Dependency) {
	if dep.Constraint == "" {
		return
	}
	if constraint, err := semver.NewConstraint(dep.Constraint); err == nil {
		dep.Constraint = constraint.String()
	}
}
