package entities

import "fmt"

// SessionState is the lifecycle state of a fix session.
type SessionState string

const (
	SessionPlanned              SessionState = "planned"
	SessionAwaitingConfirmation SessionState = "awaiting-confirmation"
	SessionExecuting            SessionState = "executing"
	SessionVerifying            SessionState = "verifying"
	SessionCompleted            SessionState = "completed"
	SessionRolledBack           SessionState = "rolled-back"
	SessionFailed               SessionState = "failed"
)

// Terminal reports whether no further transitions are allowed.
func (s SessionState) Terminal() bool {
	switch s {
	case SessionCompleted, SessionRolledBack, SessionFailed:
		return true
	default:
		return false
	}
}

// legalTransitions is the closed transition table of the safety controller.
var legalTransitions = map[SessionState][]SessionState{
	SessionPlanned:              {SessionAwaitingConfirmation},
	SessionAwaitingConfirmation: {SessionExecuting, SessionRolledBack},
	SessionExecuting:            {SessionVerifying, SessionFailed, SessionRolledBack},
	SessionVerifying:            {SessionCompleted, SessionFailed, SessionRolledBack},
}

// FixSession is the unit of a single auto-fix run. The confirmation policy
// (AutoApprove) is captured once at creation and fixed for the session's
// lifetime.
type FixSession struct {
	ID          string
	Root        string // project root the session locks
	Plan        FixPlan
	AutoApprove bool

	state    SessionState
	executed int // number of actions that completed

	// RollbackNote carries the manual-intervention message when the tree was
	// not restored: rollback failed, or automatic rollback is disabled.
	// Empty otherwise.
	RollbackNote string
}

// NewFixSession creates a session in the Planned state.
func NewFixSession(id, root string, plan FixPlan, autoApprove bool) *FixSession {
	return &FixSession{
		ID:          id,
		Root:        root,
		Plan:        plan,
		AutoApprove: autoApprove,
		state:       SessionPlanned,
	}
}

// State returns the current session state.
func (s *FixSession) State() SessionState { return s.state }

// Executed returns how many actions have completed so far.
func (s *FixSession) Executed() int { return s.executed }

// MarkExecuted records that one more action finished.
func (s *FixSession) MarkExecuted() { s.executed++ }

// Transition moves the session to the next state, enforcing the transition
// table. Re-confirmation of a terminal session is rejected here.
func (s *FixSession) Transition(next SessionState) error {
	for _, allowed := range legalTransitions[s.state] {
		if allowed == next {
			s.state = next
			return nil
		}
	}
	return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, s.state, next)
}
