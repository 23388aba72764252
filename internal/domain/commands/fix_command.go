package commands

import (
	"context"
	"fmt"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/omnirun/internal/domain/entities"
	"github.com/rios0rios0/omnirun/internal/fixer"
)

// Fix is the interface for the fix command.
type Fix interface {
	Execute(ctx context.Context, settings *entities.Settings, opts FixOptions) error
}

// FixOptions holds runtime options for a single fix run.
type FixOptions struct {
	Root        string
	AutoApprove bool // skip the confirmation prompt
	DryRun      bool // show the plan without executing anything
}

// FixCommand scans the target, plans remediation for every missing required
// dependency, and drives the plan through the safety controller as one
// session per project root.
type FixCommand struct {
	scan       Scan
	planner    *fixer.Planner
	controller *fixer.SafetyController
	confirmer  fixer.Confirmer
}

// NewFixCommand creates a new FixCommand with its collaborators.
func NewFixCommand(
	scan Scan,
	planner *fixer.Planner,
	controller *fixer.SafetyController,
	confirmer fixer.Confirmer,
) *FixCommand {
	return &FixCommand{scan: scan, planner: planner, controller: controller, confirmer: confirmer}
}

// Execute runs the full fix flow. It returns ErrDependenciesRemain when
// required dependencies are still missing afterwards (including the dry-run
// and nothing-auto-fixable cases), so the CLI can map it to a failure exit.
func (it *FixCommand) Execute(
	ctx context.Context,
	settings *entities.Settings,
	opts FixOptions,
) error {
	result, err := it.scan.Execute(ctx, settings, ScanOptions{Root: opts.Root, Analyze: true})
	if err != nil {
		return err
	}

	plan := it.buildPlan(result)
	if len(plan.Actions) == 0 {
		logger.Info("All required dependencies are available, nothing to fix.")
		return nil
	}

	describePlan(plan)

	if opts.DryRun {
		return fmt.Errorf("%w (dry run, nothing executed)", entities.ErrDependenciesRemain)
	}
	if !plan.HasExecutable() {
		return fmt.Errorf("%w (no auto-fixable actions)", entities.ErrDependenciesRemain)
	}

	session, runErr := it.controller.Run(ctx, result.Root, plan, it.confirmer, fixer.SessionOptions{
		AutoApprove:       opts.AutoApprove,
		ConfirmEachAction: settings.ConfirmEachAction,
		EnableBackup:      settings.EnableBackup,
		AutoRollback:      settings.AutoRollback,
	})
	if runErr != nil {
		if session != nil && session.RollbackNote != "" {
			logger.Error(session.RollbackNote)
		}
		return runErr
	}

	logger.Infof("Fix session %s completed: %d action(s) executed", session.ID, session.Executed())
	return nil
}

// buildPlan merges the per-program plans into one root-level plan, so the
// whole run shares a single session and a single snapshot. System actions
// keep their toolchain-first position across the merge: a package install
// is meaningless while any program's runtime is absent.
func (it *FixCommand) buildPlan(result *entities.ScanResult) entities.FixPlan {
	var system, packages []entities.FixAction
	seen := make(map[string]struct{})

	for _, prog := range result.Programs {
		missing := prog.MissingRequired()
		if len(missing) == 0 {
			continue
		}

		plan := it.planner.Plan(prog.Path, missing)
		for _, action := range plan.Actions {
			key := action.Command + "\x00" + action.WorkDir
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			if action.Manager == entities.ManagerSystem {
				system = append(system, action)
			} else {
				packages = append(packages, action)
			}
		}
	}

	merged := entities.FixPlan{Actions: append(system, packages...)}
	for _, action := range merged.Actions {
		if action.AutoFixable {
			merged.Executable = append(merged.Executable, action)
		}
	}
	return merged
}

func describePlan(plan entities.FixPlan) {
	logger.Infof("Fix plan: %d action(s), %d auto-fixable", len(plan.Actions), len(plan.Executable))
	for _, action := range plan.Actions {
		marker := "manual"
		if action.AutoFixable {
			marker = "auto"
		}
		logger.Infof("  [%s/%s] %s (in %s)", action.Manager, marker, action.Command, action.WorkDir)
	}
}
