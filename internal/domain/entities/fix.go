package entities

// FixAction is one remediation step: a literal shell invocation run in a
// working directory. Actions execute strictly in list order.
type FixAction struct {
	Dependencies []Dependency // the declared requirements this action satisfies
	Manager      Manager
	Command      string
	WorkDir      string

	// AutoFixable is false when the action requires a human (e.g. a missing
	// system-level interpreter). Non-fixable actions stay in the plan for
	// visibility but are excluded from execution.
	AutoFixable bool
}

// FixPlan is the ordered output of the fix planner. Executable is the
// subset of Actions that can run unattended, in the same relative order.
type FixPlan struct {
	Actions    []FixAction
	Executable []FixAction
}

// HasExecutable reports whether the plan contains anything to run.
func (p *FixPlan) HasExecutable() bool {
	return len(p.Executable) > 0
}
