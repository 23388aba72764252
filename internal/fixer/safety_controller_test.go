//go:build unit

package fixer_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/omnirun/internal/domain/entities"
	"github.com/rios0rios0/omnirun/internal/fixer"
	infraRepos "github.com/rios0rios0/omnirun/internal/infrastructure/repositories"
	testdoubles "github.com/rios0rios0/omnirun/test"
)

// stubRunner executes actions via a test-provided function.
type stubRunner struct {
	mu   sync.Mutex
	run  func(action entities.FixAction) error
	runs []entities.FixAction
}

func (r *stubRunner) Run(_ context.Context, action entities.FixAction) error {
	r.mu.Lock()
	r.runs = append(r.runs, action)
	r.mu.Unlock()
	if r.run != nil {
		return r.run(action)
	}
	return nil
}

// stubConfirmer answers every confirmation with a fixed verdict.
type stubConfirmer struct {
	approve bool
	asked   int
}

func (c *stubConfirmer) Confirm(_ entities.FixPlan) bool {
	c.asked++
	return c.approve
}

// actionDenier approves the plan-level prompt and denies every per-action
// prompt after it.
type actionDenier struct {
	calls int
}

func (c *actionDenier) Confirm(_ entities.FixPlan) bool {
	c.calls++
	return c.calls == 1
}

func missingDep(name string, manager entities.Manager) entities.Dependency {
	return entities.Dependency{
		Name:         name,
		Manager:      manager,
		Required:     true,
		Availability: entities.AvailabilityMissing,
	}
}

func newController(
	manager *testdoubles.SpyPackageManager,
	runner fixer.ActionRunner,
) *fixer.SafetyController {
	registry := infraRepos.NewManagerRegistry()
	registry.Register(manager)
	return fixer.NewSafetyController(registry, fixer.NewSessionGuard(), runner)
}

func npmPlan(dir string, deps ...entities.Dependency) entities.FixPlan {
	action := entities.FixAction{
		Dependencies: deps,
		Manager:      entities.ManagerNpm,
		Command:      "npm install",
		WorkDir:      dir,
		AutoFixable:  true,
	}
	return entities.FixPlan{
		Actions:    []entities.FixAction{action},
		Executable: []entities.FixAction{action},
	}
}

func defaultOptions() fixer.SessionOptions {
	return fixer.SessionOptions{EnableBackup: true, AutoRollback: true}
}

func autoOptions() fixer.SessionOptions {
	opts := defaultOptions()
	opts.AutoApprove = true
	return opts
}

func TestSafetyControllerRun(t *testing.T) {
	t.Parallel()

	t.Run("should complete when actions succeed and verification passes", func(t *testing.T) {
		t.Parallel()

		// given
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "package.json"), []byte("{}"), 0o644))

		manager := &testdoubles.SpyPackageManager{
			ManagerName:         entities.ManagerNpm,
			DefaultAvailability: entities.AvailabilityAvailable,
		}
		runner := &stubRunner{}
		controller := newController(manager, runner)

		// when
		session, err := controller.Run(
			context.Background(), dir,
			npmPlan(dir, missingDep("express", entities.ManagerNpm)),
			&stubConfirmer{approve: true}, defaultOptions(),
		)

		// then
		require.NoError(t, err)
		assert.Equal(t, entities.SessionCompleted, session.State())
		assert.Equal(t, 1, session.Executed())
		assert.Len(t, runner.runs, 1)
		assert.Contains(t, manager.CheckedNames, "express")
	})

	t.Run("should roll back and leave the manifest untouched when confirmation is denied", func(t *testing.T) {
		t.Parallel()

		// given
		dir := t.TempDir()
		manifest := filepath.Join(dir, "package.json")
		original := []byte(`{"dependencies":{"express":"^4.18.0"}}`)
		require.NoError(t, os.WriteFile(manifest, original, 0o644))

		manager := &testdoubles.SpyPackageManager{ManagerName: entities.ManagerNpm}
		runner := &stubRunner{}
		controller := newController(manager, runner)

		// when
		session, err := controller.Run(
			context.Background(), dir,
			npmPlan(dir, missingDep("express", entities.ManagerNpm)),
			&stubConfirmer{approve: false}, defaultOptions(),
		)

		// then
		require.ErrorIs(t, err, entities.ErrConfirmationDenied)
		assert.Equal(t, entities.SessionRolledBack, session.State())
		assert.Empty(t, runner.runs)

		content, readErr := os.ReadFile(manifest)
		require.NoError(t, readErr)
		assert.Equal(t, original, content)
	})

	t.Run("should not ask for confirmation with auto-approve", func(t *testing.T) {
		t.Parallel()

		// given
		dir := t.TempDir()
		manager := &testdoubles.SpyPackageManager{
			ManagerName:         entities.ManagerNpm,
			DefaultAvailability: entities.AvailabilityAvailable,
		}
		confirmer := &stubConfirmer{approve: false}
		controller := newController(manager, &stubRunner{})

		// when
		session, err := controller.Run(
			context.Background(), dir,
			npmPlan(dir, missingDep("express", entities.ManagerNpm)),
			confirmer, autoOptions(),
		)

		// then
		require.NoError(t, err)
		assert.Zero(t, confirmer.asked)
		assert.Equal(t, entities.SessionCompleted, session.State())
	})

	t.Run("should fail and restore the manifest when an action fails", func(t *testing.T) {
		t.Parallel()

		// given
		dir := t.TempDir()
		manifest := filepath.Join(dir, "package.json")
		original := []byte(`{"dependencies":{"express":"^4.18.0"}}`)
		require.NoError(t, os.WriteFile(manifest, original, 0o644))

		manager := &testdoubles.SpyPackageManager{ManagerName: entities.ManagerNpm}
		runner := &stubRunner{run: func(_ entities.FixAction) error {
			// the failing action left the manifest in a modified state
			if err := os.WriteFile(manifest, []byte("half-written"), 0o644); err != nil {
				return err
			}
			return errors.New("exit status 1")
		}}
		controller := newController(manager, runner)

		// when
		session, err := controller.Run(
			context.Background(), dir,
			npmPlan(dir, missingDep("express", entities.ManagerNpm)),
			&stubConfirmer{approve: true}, defaultOptions(),
		)

		// then
		require.Error(t, err)
		assert.Equal(t, entities.SessionFailed, session.State())

		content, readErr := os.ReadFile(manifest)
		require.NoError(t, readErr)
		assert.Equal(t, original, content)
	})

	t.Run("should fail and roll back when verification still reports missing", func(t *testing.T) {
		t.Parallel()

		// given
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "package.json"), []byte("{}"), 0o644))

		manager := &testdoubles.SpyPackageManager{
			ManagerName:         entities.ManagerNpm,
			DefaultAvailability: entities.AvailabilityMissing,
		}
		controller := newController(manager, &stubRunner{})

		// when
		session, err := controller.Run(
			context.Background(), dir,
			npmPlan(dir, missingDep("express", entities.ManagerNpm)),
			&stubConfirmer{approve: true}, defaultOptions(),
		)

		// then
		require.ErrorIs(t, err, entities.ErrVerificationFailed)
		assert.Equal(t, entities.SessionFailed, session.State())
	})

	t.Run("should reject a concurrent session for the same root", func(t *testing.T) {
		t.Parallel()

		// given
		dir := t.TempDir()
		manager := &testdoubles.SpyPackageManager{
			ManagerName:         entities.ManagerNpm,
			DefaultAvailability: entities.AvailabilityAvailable,
		}

		started := make(chan struct{})
		release := make(chan struct{})
		runner := &stubRunner{run: func(_ entities.FixAction) error {
			close(started)
			<-release
			return nil
		}}
		controller := newController(manager, runner)
		plan := npmPlan(dir, missingDep("express", entities.ManagerNpm))

		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = controller.Run(context.Background(), dir, plan, &stubConfirmer{approve: true}, autoOptions())
		}()
		<-started

		// when
		_, err := controller.Run(context.Background(), dir, plan, &stubConfirmer{approve: true}, autoOptions())

		// then
		require.ErrorIs(t, err, entities.ErrSessionActive)

		close(release)
		wg.Wait()
	})

	t.Run("should stop between actions and roll back on cancellation", func(t *testing.T) {
		t.Parallel()

		// given
		dir := t.TempDir()
		manager := &testdoubles.SpyPackageManager{
			ManagerName:         entities.ManagerNpm,
			DefaultAvailability: entities.AvailabilityAvailable,
		}

		ctx, cancel := context.WithCancel(context.Background())
		runner := &stubRunner{run: func(_ entities.FixAction) error {
			cancel() // canceled mid-run; the started action still finishes
			return nil
		}}
		controller := newController(manager, runner)

		first := entities.FixAction{
			Dependencies: []entities.Dependency{missingDep("express", entities.ManagerNpm)},
			Manager:      entities.ManagerNpm,
			Command:      "npm install express",
			WorkDir:      dir,
			AutoFixable:  true,
		}
		second := entities.FixAction{
			Dependencies: []entities.Dependency{missingDep("left-pad", entities.ManagerNpm)},
			Manager:      entities.ManagerNpm,
			Command:      "npm install left-pad",
			WorkDir:      dir,
			AutoFixable:  true,
		}
		plan := entities.FixPlan{
			Actions:    []entities.FixAction{first, second},
			Executable: []entities.FixAction{first, second},
		}

		// when
		session, err := controller.Run(ctx, dir, plan, &stubConfirmer{approve: true}, autoOptions())

		// then
		require.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, entities.SessionRolledBack, session.State())
		assert.Len(t, runner.runs, 1) // the second action never started
		assert.Equal(t, 1, session.Executed())
	})

	t.Run("should ask before each action when configured and roll back on denial", func(t *testing.T) {
		t.Parallel()

		// given
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "package.json"), []byte("{}"), 0o644))
		manager := &testdoubles.SpyPackageManager{ManagerName: entities.ManagerNpm}

		denyActions := &actionDenier{}
		runner := &stubRunner{}
		controller := newController(manager, runner)

		opts := defaultOptions()
		opts.ConfirmEachAction = true

		// when
		session, err := controller.Run(
			context.Background(), dir,
			npmPlan(dir, missingDep("express", entities.ManagerNpm)),
			denyActions, opts,
		)

		// then
		require.ErrorIs(t, err, entities.ErrConfirmationDenied)
		assert.Equal(t, entities.SessionRolledBack, session.State())
		assert.Empty(t, runner.runs)
	})

	t.Run("should leave the tree as-is when auto-rollback is disabled", func(t *testing.T) {
		t.Parallel()

		// given
		dir := t.TempDir()
		manifest := filepath.Join(dir, "package.json")
		require.NoError(t, os.WriteFile(manifest, []byte("{}"), 0o644))

		manager := &testdoubles.SpyPackageManager{ManagerName: entities.ManagerNpm}
		runner := &stubRunner{run: func(_ entities.FixAction) error {
			if err := os.WriteFile(manifest, []byte("half-written"), 0o644); err != nil {
				return err
			}
			return errors.New("exit status 1")
		}}
		controller := newController(manager, runner)

		opts := defaultOptions()
		opts.AutoRollback = false
		opts.AutoApprove = true

		// when
		session, err := controller.Run(
			context.Background(), dir,
			npmPlan(dir, missingDep("express", entities.ManagerNpm)),
			&stubConfirmer{approve: true}, opts,
		)

		// then
		require.Error(t, err)
		assert.Equal(t, entities.SessionFailed, session.State())
		assert.Contains(t, session.RollbackNote, "backup located at")

		content, readErr := os.ReadFile(manifest)
		require.NoError(t, readErr)
		assert.Equal(t, []byte("half-written"), content) // untouched, backup kept
	})

	t.Run("should run without a restore point when backups are disabled", func(t *testing.T) {
		t.Parallel()

		// given
		dir := t.TempDir()
		manager := &testdoubles.SpyPackageManager{
			ManagerName:         entities.ManagerNpm,
			DefaultAvailability: entities.AvailabilityAvailable,
		}
		controller := newController(manager, &stubRunner{})

		opts := autoOptions()
		opts.EnableBackup = false

		// when
		session, err := controller.Run(
			context.Background(), dir,
			npmPlan(dir, missingDep("express", entities.ManagerNpm)),
			&stubConfirmer{approve: true}, opts,
		)

		// then
		require.NoError(t, err)
		assert.Equal(t, entities.SessionCompleted, session.State())
	})

	t.Run("should release the root after a terminal state", func(t *testing.T) {
		t.Parallel()

		// given
		dir := t.TempDir()
		manager := &testdoubles.SpyPackageManager{
			ManagerName:         entities.ManagerNpm,
			DefaultAvailability: entities.AvailabilityAvailable,
		}
		controller := newController(manager, &stubRunner{})
		plan := npmPlan(dir, missingDep("express", entities.ManagerNpm))

		_, err := controller.Run(context.Background(), dir, plan, &stubConfirmer{approve: true}, autoOptions())
		require.NoError(t, err)

		// when: a second run right after the first finished
		session, err := controller.Run(context.Background(), dir, plan, &stubConfirmer{approve: true}, autoOptions())

		// then
		require.NoError(t, err)
		assert.Equal(t, entities.SessionCompleted, session.State())
	})
}
