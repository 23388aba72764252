package controllers

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/rios0rios0/omnirun/internal/domain/commands"
	"github.com/rios0rios0/omnirun/internal/domain/entities"
	"github.com/rios0rios0/omnirun/internal/report"
)

// ScanController handles the scan command: discover and rank executable
// programs under a directory.
type ScanController struct {
	command commands.Scan
}

// NewScanController creates a new ScanController.
func NewScanController(command commands.Scan) *ScanController {
	return &ScanController{command: command}
}

// GetBind returns the Cobra command metadata for the scan controller.
func (it *ScanController) GetBind() entities.ControllerBind {
	return entities.ControllerBind{
		Use:   "scan [path]",
		Short: "Discover and rank executable programs",
		Long: `Walk a directory tree, classify every executable candidate by language
and framework, score entrypoint likelihood, and report dependency state.`,
	}
}

// AddFlags registers the scan-specific flags.
func (it *ScanController) AddFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("json", false, "Emit the report as JSON")
	cmd.Flags().Bool("no-deps", false, "Skip dependency analysis")
}

// Execute runs a scan and renders the report.
func (it *ScanController) Execute(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	settings, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	root := "."
	if len(args) > 0 {
		root = args[0]
	}

	noDeps, _ := cmd.Flags().GetBool("no-deps")
	result, err := it.command.Execute(ctx, settings, commands.ScanOptions{
		Root:    root,
		Analyze: !noDeps,
	})
	if err != nil {
		return err
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		return report.WriteJSON(os.Stdout, result)
	}
	return report.WriteText(os.Stdout, result)
}
