//go:build integration || unit || test

package entitybuilders //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"github.com/rios0rios0/omnirun/internal/domain/entities"
	testkit "github.com/rios0rios0/testkit/pkg/test"
)

// DependencyBuilder helps create test dependencies with a fluent interface.
type DependencyBuilder struct {
	*testkit.BaseBuilder
	name         string
	constraint   string
	manager      entities.Manager
	required     bool
	availability entities.Availability
	toolchain    bool
}

// NewDependencyBuilder creates a new dependency builder with sensible defaults.
func NewDependencyBuilder() *DependencyBuilder {
	return &DependencyBuilder{
		BaseBuilder:  testkit.NewBaseBuilder(),
		name:         "test-dependency",
		constraint:   ">=1.0.0",
		manager:      entities.ManagerPip,
		required:     true,
		availability: entities.AvailabilityMissing,
	}
}

// WithName sets the dependency name.
func (b *DependencyBuilder) WithName(name string) *DependencyBuilder {
	b.name = name
	return b
}

// WithConstraint sets the declared version constraint.
func (b *DependencyBuilder) WithConstraint(constraint string) *DependencyBuilder {
	b.constraint = constraint
	return b
}

// WithManager sets the package manager.
func (b *DependencyBuilder) WithManager(manager entities.Manager) *DependencyBuilder {
	b.manager = manager
	return b
}

// WithRequired sets the required flag.
func (b *DependencyBuilder) WithRequired(required bool) *DependencyBuilder {
	b.required = required
	return b
}

// WithAvailability sets the availability state.
func (b *DependencyBuilder) WithAvailability(a entities.Availability) *DependencyBuilder {
	b.availability = a
	return b
}

// WithToolchain marks the dependency as an interpreter pseudo-dependency.
func (b *DependencyBuilder) WithToolchain(toolchain bool) *DependencyBuilder {
	b.toolchain = toolchain
	return b
}

// Build creates the dependency (satisfies testkit.Builder interface).
func (b *DependencyBuilder) Build() interface{} {
	return b.BuildDependency()
}

// BuildDependency creates the dependency with a concrete return type.
func (b *DependencyBuilder) BuildDependency() entities.Dependency {
	return entities.Dependency{
		Name:         b.name,
		Constraint:   b.constraint,
		Manager:      b.manager,
		Required:     b.required,
		Availability: b.availability,
		Toolchain:    b.toolchain,
	}
}

// Reset clears the builder state, allowing it to be reused.
func (b *DependencyBuilder) Reset() testkit.Builder {
	b.BaseBuilder.Reset()
	b.name = "test-dependency"
	b.constraint = ">=1.0.0"
	b.manager = entities.ManagerPip
	b.required = true
	b.availability = entities.AvailabilityMissing
	b.toolchain = false
	return b
}

// Clone creates a deep copy of the DependencyBuilder.
func (b *DependencyBuilder) Clone() testkit.Builder {
	return &DependencyBuilder{
		BaseBuilder:  b.BaseBuilder.Clone().(*testkit.BaseBuilder),
		name:         b.name,
		constraint:   b.constraint,
		manager:      b.manager,
		required:     b.required,
		availability: b.availability,
		toolchain:    b.toolchain,
	}
}
