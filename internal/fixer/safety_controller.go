package fixer

import (
	"context"
	"fmt"
	"os/exec"
	"time"

	"github.com/google/uuid"
	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/omnirun/internal/domain/entities"
	domainRepos "github.com/rios0rios0/omnirun/internal/domain/repositories"
	infraRepos "github.com/rios0rios0/omnirun/internal/infrastructure/repositories"
)

// Confirmer asks the user to approve a fix plan. Implementations must be
// side-effect free; the controller calls it at most once per session.
type Confirmer interface {
	Confirm(plan entities.FixPlan) bool
}

// ActionRunner executes one remediation command to completion and returns
// its failure, if any. The default implementation shells out; tests inject
// doubles.
type ActionRunner interface {
	Run(ctx context.Context, action entities.FixAction) error
}

// shellRunner runs each action through `sh -c` in the action's working
// directory. A started command always runs to completion; cancellation is
// honored between actions, never mid-command.
type shellRunner struct {
	timeout time.Duration
}

// NewShellRunner creates the production action runner. timeout bounds each
// individual command.
func NewShellRunner(timeout time.Duration) ActionRunner {
	return &shellRunner{timeout: timeout}
}

func (r *shellRunner) Run(_ context.Context, action entities.FixAction) error {
	// Deliberately rooted at Background: the caller's cancellation must not
	// kill a package manager mid-write.
	runCtx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, "sh", "-c", action.Command)
	cmd.Dir = action.WorkDir
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("command %q failed: %w: %s", action.Command, err, string(out))
	}
	return nil
}

// SafetyController drives a fix session through its lifecycle: snapshot,
// confirmation, sequential execution, verification, and rollback on any
// failure. One controller serves all sessions; concurrency per root is
// bounded by the session guard.
type SafetyController struct {
	registry *infraRepos.ManagerRegistry
	guard    *SessionGuard
	runner   ActionRunner
}

// NewSafetyController wires the controller with its collaborators.
func NewSafetyController(
	registry *infraRepos.ManagerRegistry,
	guard *SessionGuard,
	runner ActionRunner,
) *SafetyController {
	return &SafetyController{registry: registry, guard: guard, runner: runner}
}

// SessionOptions carries the caller's safety preferences into one session.
// AutoRollback and EnableBackup come from configuration; AutoApprove from
// the CLI flag or the run command's auto-fix path.
type SessionOptions struct {
	AutoApprove       bool
	ConfirmEachAction bool
	EnableBackup      bool
	AutoRollback      bool
}

// Run executes a fix plan for the project root under the full safety
// protocol. It returns the finished session in a terminal state; err is
// non-nil for every outcome other than Completed.
func (c *SafetyController) Run(
	ctx context.Context,
	root string,
	plan entities.FixPlan,
	confirmer Confirmer,
	opts SessionOptions,
) (*entities.FixSession, error) {
	session := entities.NewFixSession(uuid.NewString(), root, plan, opts.AutoApprove)

	if err := c.guard.Acquire(root, session.ID); err != nil {
		return session, err
	}
	defer c.guard.Release(root, session.ID)

	// The snapshot exists before anything can be asked or run, so there is
	// never a window where an action fires without a restore point.
	snapshot := domainRepos.Snapshot(NoopSnapshot())
	if opts.EnableBackup {
		var err error
		snapshot, err = TakeSnapshot(root, plan)
		if err != nil {
			// No snapshot, no session: nothing ran, so the only legal
			// terminal from here is RolledBack.
			_ = session.Transition(entities.SessionAwaitingConfirmation)
			c.fail(session, entities.SessionRolledBack)
			return session, err
		}
	} else {
		logger.Warn("Backups disabled by configuration; a failed fix cannot be rolled back")
	}

	if err := session.Transition(entities.SessionAwaitingConfirmation); err != nil {
		return session, err
	}

	if !session.AutoApprove && !confirmer.Confirm(plan) {
		_ = snapshot.Discard()
		c.fail(session, entities.SessionRolledBack)
		return session, entities.ErrConfirmationDenied
	}

	if err := session.Transition(entities.SessionExecuting); err != nil {
		return session, err
	}

	for _, action := range plan.Executable {
		// Cooperative cancellation between actions only.
		if ctx.Err() != nil {
			logger.Warnf("Fix session %s canceled after %d action(s)", session.ID, session.Executed())
			return session, c.rollbackAs(session, snapshot, entities.SessionRolledBack, ctx.Err(), opts)
		}

		if opts.ConfirmEachAction && !opts.AutoApprove && !confirmer.Confirm(singleActionPlan(action)) {
			return session, c.rollbackAs(
				session, snapshot, entities.SessionRolledBack, entities.ErrConfirmationDenied, opts)
		}

		logger.Infof("Running fix action: %s (in %s)", action.Command, action.WorkDir)
		if runErr := c.runner.Run(ctx, action); runErr != nil {
			return session, c.rollbackAs(session, snapshot, entities.SessionFailed, runErr, opts)
		}
		session.MarkExecuted()
	}

	if err := session.Transition(entities.SessionVerifying); err != nil {
		return session, err
	}

	if verifyErr := c.verify(ctx, plan); verifyErr != nil {
		return session, c.rollbackAs(session, snapshot, entities.SessionFailed, verifyErr, opts)
	}

	if err := session.Transition(entities.SessionCompleted); err != nil {
		return session, err
	}
	_ = snapshot.Discard()
	return session, nil
}

func singleActionPlan(action entities.FixAction) entities.FixPlan {
	return entities.FixPlan{
		Actions:    []entities.FixAction{action},
		Executable: []entities.FixAction{action},
	}
}

// verify re-checks every dependency the executed actions were meant to fix.
// Any that still reports missing fails the whole session.
func (c *SafetyController) verify(ctx context.Context, plan entities.FixPlan) error {
	for _, action := range plan.Executable {
		manager := c.registry.Get(action.Manager)
		if manager == nil {
			continue
		}
		for _, dep := range action.Dependencies {
			availability := manager.CheckAvailable(ctx, dep, action.WorkDir)
			if availability == entities.AvailabilityMissing {
				return fmt.Errorf("%w: %s is still missing", entities.ErrVerificationFailed, dep.Name)
			}
		}
	}
	return nil
}

// rollbackAs restores the snapshot, then moves the session to the given
// terminal state. A failed restore is the worst case: the session keeps the
// backup location in RollbackNote for manual recovery. A Failed session
// retains its snapshot so a later manual rollback stays possible; only a
// clean RolledBack discards it.
func (c *SafetyController) rollbackAs(
	session *entities.FixSession,
	snapshot domainRepos.Snapshot,
	terminal entities.SessionState,
	cause error,
	opts SessionOptions,
) error {
	if !opts.AutoRollback {
		if loc := snapshot.Location(); loc != "" {
			session.RollbackNote = fmt.Sprintf("automatic rollback disabled; backup located at %s", loc)
			logger.Warn(session.RollbackNote)
		}
		c.fail(session, entities.SessionFailed)
		return cause
	}

	if restoreErr := snapshot.Restore(); restoreErr != nil {
		session.RollbackNote = fmt.Sprintf(
			"manifest may be in a modified state; backup located at %s", snapshot.Location())
		logger.Errorf("Rollback failed for session %s: %v (%s)", session.ID, restoreErr, session.RollbackNote)
		c.fail(session, entities.SessionFailed)
		return fmt.Errorf("%w: %v (after: %v)", entities.ErrRollbackFailed, restoreErr, cause)
	}

	if terminal == entities.SessionRolledBack {
		_ = snapshot.Discard()
		if cause != nil {
			logger.Infof("Fix session %s rolled back: %v", session.ID, cause)
		}
	} else if loc := snapshot.Location(); loc != "" {
		logger.Infof("Snapshot retained at %s for manual inspection", loc)
	}
	c.fail(session, terminal)
	return cause
}

// fail forces the session into a terminal state, walking through Verifying
// first where the table requires it.
func (c *SafetyController) fail(session *entities.FixSession, terminal entities.SessionState) {
	if session.State().Terminal() {
		return
	}
	if err := session.Transition(terminal); err == nil {
		return
	}
	_ = session.Transition(entities.SessionVerifying)
	_ = session.Transition(terminal)
}
