package entities

// Manager identifies the package manager that satisfies a dependency.
type Manager string

const (
	ManagerPip       Manager = "pip"
	ManagerNpm       Manager = "npm"
	ManagerYarn      Manager = "yarn"
	ManagerPnpm      Manager = "pnpm"
	ManagerGoModules Manager = "go-modules"
	ManagerCargo     Manager = "cargo"
	ManagerMaven     Manager = "maven"
	ManagerGradle    Manager = "gradle"
	ManagerBundler   Manager = "bundler"
	ManagerComposer  Manager = "composer"
	ManagerTerraform Manager = "terraform"

	// ManagerSystem marks interpreter/toolchain pseudo-dependencies that no
	// package manager can install on the user's behalf.
	ManagerSystem Manager = "system"
)

// Availability is the tri-state result of a dependency check.
type Availability string

const (
	AvailabilityAvailable Availability = "available"
	AvailabilityMissing   Availability = "missing"

	// AvailabilityUnknown means the manager provides no cheap query, the
	// query timed out, or the manifest entry could not be parsed.
	AvailabilityUnknown Availability = "unknown-cannot-check"
)

// Dependency is one declared requirement of a Program. Availability is
// recomputed fresh on every analysis call and never cached across a fix
// attempt.
type Dependency struct {
	Name       string
	Constraint string // declared version constraint, may be empty
	Manager    Manager
	Required   bool // hard requirement vs optional/dev dependency

	Availability Availability
	Version      string // detected version, when the check yields one
	Detail       string // human-readable note (e.g. why a check was skipped)

	// Toolchain marks interpreter/runtime pseudo-dependencies, reported when
	// the host lacks the language toolchain itself rather than a package.
	Toolchain bool
}
