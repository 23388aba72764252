package controllers

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/rios0rios0/omnirun/internal/domain/commands"
	"github.com/rios0rios0/omnirun/internal/domain/entities"
)

// RunController handles the run command: execute a discovered program.
type RunController struct {
	command commands.Run
}

// NewRunController creates a new RunController.
func NewRunController(command commands.Run) *RunController {
	return &RunController{command: command}
}

// GetBind returns the Cobra command metadata for the run controller.
func (it *RunController) GetBind() entities.ControllerBind {
	return entities.ControllerBind{
		Use:   "run [path] [-- program-args...]",
		Short: "Run the best entrypoint found under a directory",
		Long: `Scan a directory, pick the highest-ranked entrypoint (or the one named
with --target), resolve its launch command, and execute it. The command
that succeeds is remembered for the next run.`,
	}
}

// AddFlags registers the run-specific flags.
func (it *RunController) AddFlags(cmd *cobra.Command) {
	cmd.Flags().String("target", "", "Program name or relative path to run")
	cmd.Flags().Bool("auto-fix", false, "Install missing dependencies before running")
}

// Execute runs the selected program.
func (it *RunController) Execute(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	settings, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	if autoFix, _ := cmd.Flags().GetBool("auto-fix"); autoFix {
		settings.AutoFix = true
	}

	root := "."
	var programArgs []string
	if len(args) > 0 {
		root = args[0]
		programArgs = args[1:]
	}

	target, _ := cmd.Flags().GetString("target")

	return it.command.Execute(ctx, settings, commands.RunOptions{
		Root:   root,
		Target: target,
		Args:   programArgs,
	})
}
