package fixer

import (
	"fmt"
	"sync"

	"github.com/rios0rios0/omnirun/internal/domain/entities"
)

// SessionGuard enforces that at most one fix session is active per project
// root at any time. Release happens when the session reaches a terminal
// state.
type SessionGuard struct {
	mu     sync.Mutex
	active map[string]string // root -> session ID
}

// NewSessionGuard creates an empty guard.
func NewSessionGuard() *SessionGuard {
	return &SessionGuard{active: make(map[string]string)}
}

// Acquire reserves the root for the given session. A second acquisition of
// the same root is rejected until the holder releases it.
func (g *SessionGuard) Acquire(root, sessionID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if holder, ok := g.active[root]; ok {
		return fmt.Errorf("%w (held by session %s)", entities.ErrSessionActive, holder)
	}
	g.active[root] = sessionID
	return nil
}

// Release frees the root. Releasing with a mismatched session ID is a no-op
// so a stale caller cannot unlock another session's root.
func (g *SessionGuard) Release(root, sessionID string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.active[root] == sessionID {
		delete(g.active, root)
	}
}
