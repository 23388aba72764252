// Package fixer converts missing dependencies into an ordered, safety-gated
// remediation: the planner builds the action list and the safety controller
// executes it under the backup/rollback protocol.
package fixer

import (
	"path/filepath"

	"github.com/rios0rios0/omnirun/internal/domain/entities"
	infraRepos "github.com/rios0rios0/omnirun/internal/infrastructure/repositories"
)

// interpreterHints maps a missing toolchain binary to the manual
// installation guidance shown in the plan. Interpreters need system-level
// installation, so these actions are never auto-executed.
var interpreterHints = map[string]string{
	"python":    "install Python from python.org or your system package manager",
	"python3":   "install Python from python.org or your system package manager",
	"node":      "install Node.js from nodejs.org or via nvm",
	"ruby":      "install Ruby from ruby-lang.org or via rbenv",
	"go":        "install Go from go.dev",
	"cargo":     "install Rust from rustup.rs",
	"java":      "install a JDK from adoptium.net",
	"php":       "install PHP from php.net or your system package manager",
	"terraform": "install Terraform from developer.hashicorp.com/terraform",
}

// Planner groups missing dependencies by manager and orders the resulting
// actions: toolchain installs first, then one bulk action per manager (or
// one per package where the manager cannot bulk-install).
type Planner struct {
	registry *infraRepos.ManagerRegistry
}

// NewPlanner creates a planner over the given manager registry.
func NewPlanner(registry *infraRepos.ManagerRegistry) *Planner {
	return &Planner{registry: registry}
}

// Plan converts missing dependencies of one program into a fix plan. The
// full action list keeps non-fixable actions for visibility; the executable
// subset drops them. Dependencies whose availability is unknown are not
// planned: there is no signal to verify a fix against.
func (p *Planner) Plan(programPath string, deps []entities.Dependency) entities.FixPlan {
	dir := filepath.Dir(programPath)

	var plan entities.FixPlan

	// Toolchain actions first; packages are meaningless without a runtime.
	grouped := groupByManager(deps)
	for _, group := range grouped {
		if group.manager != entities.ManagerSystem {
			continue
		}
		for _, dep := range group.deps {
			plan.Actions = append(plan.Actions, entities.FixAction{
				Dependencies: []entities.Dependency{dep},
				Manager:      entities.ManagerSystem,
				Command:      hintFor(dep.Name),
				WorkDir:      dir,
				AutoFixable:  false,
			})
		}
	}

	for _, group := range grouped {
		if group.manager == entities.ManagerSystem {
			continue
		}
		manager := p.registry.Get(group.manager)
		if manager == nil {
			continue
		}
		var actions []entities.FixAction
		if manager.BulkInstall() {
			actions = manager.PlanInstall(group.deps, dir)
		} else {
			for _, dep := range group.deps {
				actions = append(actions, manager.PlanInstall([]entities.Dependency{dep}, dir)...)
			}
		}
		plan.Actions = append(plan.Actions, actions...)
	}

	for _, action := range plan.Actions {
		if action.AutoFixable {
			plan.Executable = append(plan.Executable, action)
		}
	}
	return plan
}

type managerGroup struct {
	manager entities.Manager
	deps    []entities.Dependency
}

// groupByManager preserves both first-appearance order of managers and the
// manifest declaration order of dependencies within each group.
func groupByManager(deps []entities.Dependency) []managerGroup {
	index := make(map[entities.Manager]int)
	var groups []managerGroup
	for _, dep := range deps {
		if dep.Availability == entities.AvailabilityUnknown {
			continue
		}
		i, ok := index[dep.Manager]
		if !ok {
			i = len(groups)
			index[dep.Manager] = i
			groups = append(groups, managerGroup{manager: dep.Manager})
		}
		groups[i].deps = append(groups[i].deps, dep)
	}
	return groups
}

func hintFor(binary string) string {
	if hint, ok := interpreterHints[binary]; ok {
		return hint
	}
	return "install " + binary + " manually"
}
