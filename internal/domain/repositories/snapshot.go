package repositories

// Snapshot is a saved pre-fix state enabling rollback. The two strategies
// (git stash vs manifest file copies) are selected once at session creation
// based on whether the project root is a git worktree.
type Snapshot interface {
	// Kind returns "git-stash" or "file-copy".
	Kind() string

	// Restore puts the captured state back. A restore failure is the most
	// severe condition the tool can hit and is surfaced verbatim.
	Restore() error

	// Discard releases the snapshot's resources (drops the stash entry or
	// deletes the backup directory). Called after Completed or RolledBack.
	Discard() error

	// Location describes where the backup lives, for operator messages.
	Location() string
}
