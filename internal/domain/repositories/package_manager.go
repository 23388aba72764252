package repositories

import (
	"context"

	"github.com/rios0rios0/omnirun/internal/domain/entities"
)

// PackageManager abstracts one dependency ecosystem (pip, npm, cargo, ...).
// Implementations are selected by entities.Manager through the registry so
// that no manager-specific branching leaks into the analyzer or planner.
type PackageManager interface {
	// Name returns the manager identifier this implementation answers for.
	Name() entities.Manager

	// ManifestNames returns the manifest file names this ecosystem declares
	// its dependencies in, in evidence-priority order.
	ManifestNames() []string

	// ParseManifest reads the manifests found in dir and returns the
	// declared dependencies in declaration order. Unparseable entries are
	// skipped and reported as unknown-cannot-check, never as an error; an
	// error is returned only when no manifest could be read at all.
	ParseManifest(dir string) ([]entities.Dependency, error)

	// CheckAvailable determines availability via the cheapest reliable
	// signal for this ecosystem. The context bounds any external query.
	CheckAvailable(ctx context.Context, dep entities.Dependency, dir string) entities.Availability

	// PlanInstall converts missing dependencies into fix actions for dir.
	// When BulkInstall is true a single action covers all of them.
	PlanInstall(deps []entities.Dependency, dir string) []entities.FixAction

	// BulkInstall reports whether one invocation installs the whole
	// declared set (npm install) vs one command per package.
	BulkInstall() bool
}
