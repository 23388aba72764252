package controllers

import (
	"time"

	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rios0rios0/omnirun/config"
	"github.com/rios0rios0/omnirun/internal/domain/entities"
)

// loadSettings resolves the effective settings for one invocation: the
// config file (explicit --config path or auto-detected), overridden by any
// flags the user set.
func loadSettings(cmd *cobra.Command) (*entities.Settings, error) {
	var (
		settings *entities.Settings
		err      error
	)

	if path, _ := cmd.Flags().GetString("config"); path != "" {
		settings, err = config.Load(path)
	} else {
		settings, err = config.LoadOrDefault()
	}
	if err != nil {
		return nil, err
	}

	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		logger.SetLevel(logger.DebugLevel)
	}
	if cmd.Flags().Changed("max-depth") {
		depth, _ := cmd.Flags().GetInt("max-depth")
		settings.MaxDepth = depth
	}
	if cmd.Flags().Changed("timeout") {
		seconds, _ := cmd.Flags().GetInt("timeout")
		settings.Timeout = time.Duration(seconds) * time.Second
	}

	return settings, nil
}
