package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/memohai/avatar/internal/config"
	"github.com/memohai/avatar/internal/logger"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "avatar",
		Short:         "Custom user avatar service",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().String("config", "", "path to config.toml (defaults to $CONFIG_PATH or ./config.toml)")
	root.AddCommand(
		newServeCommand(),
		newMigrateCommand(),
		newTokenCommand(),
		newRenderCommand(),
	)
	return root
}

// loadConfig resolves the config path from --config, then CONFIG_PATH.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	logger.Init(cfg.Log.Level, cfg.Log.Format)
	return cfg, nil
}
