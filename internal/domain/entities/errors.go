package entities

import "errors"

var (
	// ErrInvalidTarget signals an invalid invocation (nonexistent target
	// path). Mapped to exit code 2 by the CLI layer.
	ErrInvalidTarget = errors.New("target path does not exist or is not a directory")

	// ErrDependenciesRemain signals that required dependencies are still
	// unavailable after any fix attempt. Mapped to exit code 1.
	ErrDependenciesRemain = errors.New("required dependencies remain unavailable")

	// ErrSessionActive is returned when a fix is requested against a project
	// root that already has a session executing or verifying.
	ErrSessionActive = errors.New("another fix session is active for this project root")

	// ErrIllegalTransition guards the session state machine.
	ErrIllegalTransition = errors.New("illegal session state transition")

	// ErrConfirmationDenied means the user declined the fix plan.
	ErrConfirmationDenied = errors.New("fix plan not confirmed")

	// ErrRollbackFailed is the most severe condition: the project may be in
	// a modified state and manual intervention is required.
	ErrRollbackFailed = errors.New("rollback failed; manual intervention required")

	// ErrVerificationFailed means at least one supposedly fixed dependency
	// is still reported missing after execution.
	ErrVerificationFailed = errors.New("post-fix verification failed")
)
