package main

import (
	"errors"
	"os"

	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rios0rios0/omnirun/internal"
	"github.com/rios0rios0/omnirun/internal/domain/entities"
	"github.com/rios0rios0/omnirun/internal/infrastructure/controllers"
)

// Exit codes: 0 success, 1 dependencies remain unavailable, 2 invalid
// invocation.
const (
	exitOK           = 0
	exitDepsRemain   = 1
	exitUsageFailure = 2
)

func buildRootCommand() *cobra.Command {
	//nolint:exhaustruct // Minimal Command initialization with required fields only
	cmd := &cobra.Command{
		Use:   "omnirun",
		Short: "Universal program discovery and runner",
		Long: `Discover every executable program in a directory tree, rank the likely
entrypoints, check their dependencies, and run or fix them.

  omnirun scan .     Rank entrypoints and report dependency state
  omnirun fix .      Install missing dependencies (with backup/rollback)
  omnirun run .      Execute the best entrypoint found`,
	}

	// Global persistent flags
	cmd.PersistentFlags().StringP("config", "c", "",
		"Path to config file (default: auto-detect)")
	cmd.PersistentFlags().Int("max-depth", 0,
		"Maximum directory depth to scan (overrides config)")
	cmd.PersistentFlags().Int("timeout", 0,
		"Per-operation timeout in seconds (overrides config)")
	cmd.PersistentFlags().BoolP("verbose", "v", false,
		"Enable verbose output")

	return cmd
}

func addSubcommands(rootCmd *cobra.Command, appContext *internal.AppInternal) {
	for _, controller := range appContext.GetControllers() {
		bind := controller.GetBind()
		ctrl := controller // capture for closure
		//nolint:exhaustruct // Minimal Command initialization with required fields only
		subCmd := &cobra.Command{
			Use:           bind.Use,
			Short:         bind.Short,
			Long:          bind.Long,
			SilenceUsage:  true,
			SilenceErrors: true,
			RunE: func(command *cobra.Command, arguments []string) error {
				return ctrl.Execute(command, arguments)
			},
		}

		// Add controller-specific flags
		switch c := ctrl.(type) {
		case *controllers.ScanController:
			c.AddFlags(subCmd)
		case *controllers.FixController:
			c.AddFlags(subCmd)
		case *controllers.RunController:
			c.AddFlags(subCmd)
		}

		rootCmd.AddCommand(subCmd)
	}
}

// exitCodeFor maps the error taxonomy to process exit codes.
func exitCodeFor(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, entities.ErrInvalidTarget):
		return exitUsageFailure
	default:
		return exitDepsRemain
	}
}

func main() {
	//nolint:exhaustruct // Minimal TextFormatter initialization with required fields only
	logger.SetFormatter(&logger.TextFormatter{
		ForceColors:   true,
		FullTimestamp: true,
	})
	if os.Getenv("DEBUG") == "true" {
		logger.SetLevel(logger.DebugLevel)
	}

	cobraRoot := buildRootCommand()

	appContext := injectAppContext()
	addSubcommands(cobraRoot, appContext)

	if err := cobraRoot.Execute(); err != nil {
		logger.Errorf("Error executing 'omnirun': %s", err)
		os.Exit(exitCodeFor(err))
	}
}
