package commands

import (
	"time"

	"go.uber.org/dig"

	"github.com/rios0rios0/omnirun/internal/fixer"
)

// actionTimeout bounds each remediation command; package managers that need
// longer than this are stuck, not slow.
const actionTimeout = 5 * time.Minute

// RegisterProviders registers all command providers with the DIG container.
func RegisterProviders(container *dig.Container) error {
	// Fixer collaborators used by the commands
	if err := container.Provide(fixer.NewPlanner); err != nil {
		return err
	}
	if err := container.Provide(fixer.NewSessionGuard); err != nil {
		return err
	}
	if err := container.Provide(func() fixer.ActionRunner {
		return fixer.NewShellRunner(actionTimeout)
	}); err != nil {
		return err
	}
	if err := container.Provide(fixer.NewSafetyController); err != nil {
		return err
	}
	if err := container.Provide(fixer.NewPromptConfirmer); err != nil {
		return err
	}
	if err := container.Provide(func(impl *fixer.PromptConfirmer) fixer.Confirmer {
		return impl
	}); err != nil {
		return err
	}

	// Register command constructors
	if err := container.Provide(NewScanCommand); err != nil {
		return err
	}
	if err := container.Provide(NewFixCommand); err != nil {
		return err
	}
	if err := container.Provide(NewRunCommand); err != nil {
		return err
	}

	// Bind interfaces to implementations
	if err := container.Provide(func(impl *ScanCommand) Scan {
		return impl
	}); err != nil {
		return err
	}
	if err := container.Provide(func(impl *FixCommand) Fix {
		return impl
	}); err != nil {
		return err
	}
	if err := container.Provide(func(impl *RunCommand) Run {
		return impl
	}); err != nil {
		return err
	}

	return nil
}
