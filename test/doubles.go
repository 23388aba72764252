// Package testdoubles provides test doubles (spies, stubs, dummies) for domain
// interfaces. These are hand-crafted implementations — no mock frameworks.
package testdoubles

import (
	"context"

	"github.com/rios0rios0/omnirun/internal/domain/entities"
	"github.com/rios0rios0/omnirun/internal/domain/repositories"
)

// ---------------------------------------------------------------------------
// SpyPackageManager
// ---------------------------------------------------------------------------

// SpyPackageManager implements repositories.PackageManager as a configurable
// spy. Configure the response fields for the methods your test exercises,
// then inspect the call-tracking fields to verify behavior.
type SpyPackageManager struct {
	// --- identity ---
	ManagerName entities.Manager
	Manifests   []string
	Bulk        bool

	// --- ParseManifest ---
	ParsedDeps []entities.Dependency
	ParseErr   error
	// spy: dirs that were parsed
	ParsedDirs []string

	// --- CheckAvailable ---
	// Availabilities maps dependency name -> result; unlisted names get
	// DefaultAvailability.
	Availabilities      map[string]entities.Availability
	DefaultAvailability entities.Availability
	// spy: names that were checked
	CheckedNames []string

	// --- PlanInstall ---
	PlannedActions []entities.FixAction
	// spy: calls received
	PlanCalls []PlanCall
}

// PlanCall records a single invocation of PlanInstall.
type PlanCall struct {
	Deps []entities.Dependency
	Dir  string
}

var _ repositories.PackageManager = (*SpyPackageManager)(nil)

func (m *SpyPackageManager) Name() entities.Manager { return m.ManagerName }

func (m *SpyPackageManager) ManifestNames() []string { return m.Manifests }

func (m *SpyPackageManager) BulkInstall() bool { return m.Bulk }

func (m *SpyPackageManager) ParseManifest(dir string) ([]entities.Dependency, error) {
	m.ParsedDirs = append(m.ParsedDirs, dir)
	return m.ParsedDeps, m.ParseErr
}

func (m *SpyPackageManager) CheckAvailable(
	_ context.Context,
	dep entities.Dependency,
	_ string,
) entities.Availability {
	m.CheckedNames = append(m.CheckedNames, dep.Name)
	if m.Availabilities != nil {
		if availability, ok := m.Availabilities[dep.Name]; ok {
			return availability
		}
	}
	if m.DefaultAvailability != "" {
		return m.DefaultAvailability
	}
	return entities.AvailabilityAvailable
}

func (m *SpyPackageManager) PlanInstall(
	deps []entities.Dependency,
	dir string,
) []entities.FixAction {
	m.PlanCalls = append(m.PlanCalls, PlanCall{Deps: deps, Dir: dir})
	if m.PlannedActions != nil {
		return m.PlannedActions
	}
	return []entities.FixAction{{
		Dependencies: deps,
		Manager:      m.ManagerName,
		Command:      string(m.ManagerName) + " install",
		WorkDir:      dir,
		AutoFixable:  true,
	}}
}

// ---------------------------------------------------------------------------
// SpySnapshot
// ---------------------------------------------------------------------------

// SpySnapshot implements repositories.Snapshot as a configurable spy.
type SpySnapshot struct {
	SnapshotKind string
	Where        string
	RestoreErr   error
	DiscardErr   error

	// spy: call counters
	RestoreCalls int
	DiscardCalls int
}

var _ repositories.Snapshot = (*SpySnapshot)(nil)

func (s *SpySnapshot) Kind() string {
	if s.SnapshotKind != "" {
		return s.SnapshotKind
	}
	return "file-copy"
}

func (s *SpySnapshot) Location() string { return s.Where }

func (s *SpySnapshot) Restore() error {
	s.RestoreCalls++
	return s.RestoreErr
}

func (s *SpySnapshot) Discard() error {
	s.DiscardCalls++
	return s.DiscardErr
}
