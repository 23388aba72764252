package controllers

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/rios0rios0/omnirun/internal/domain/commands"
	"github.com/rios0rios0/omnirun/internal/domain/entities"
)

// FixController handles the fix command: install missing dependencies under
// the backup/rollback protocol.
type FixController struct {
	command commands.Fix
}

// NewFixController creates a new FixController.
func NewFixController(command commands.Fix) *FixController {
	return &FixController{command: command}
}

// GetBind returns the Cobra command metadata for the fix controller.
func (it *FixController) GetBind() entities.ControllerBind {
	return entities.ControllerBind{
		Use:   "fix [path]",
		Short: "Install missing dependencies",
		Long: `Analyze every program under a directory, plan installs for missing
required dependencies, and execute the plan with a pre-taken backup and
automatic rollback on any failure.`,
	}
}

// AddFlags registers the fix-specific flags.
func (it *FixController) AddFlags(cmd *cobra.Command) {
	cmd.Flags().BoolP("yes", "y", false, "Apply the plan without asking")
	cmd.Flags().Bool("dry-run", false, "Show the plan without executing anything")
}

// Execute runs the fix flow.
func (it *FixController) Execute(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	settings, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	root := "."
	if len(args) > 0 {
		root = args[0]
	}

	autoApprove, _ := cmd.Flags().GetBool("yes")
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	return it.command.Execute(ctx, settings, commands.FixOptions{
		Root:        root,
		AutoApprove: autoApprove,
		DryRun:      dryRun,
	})
}
