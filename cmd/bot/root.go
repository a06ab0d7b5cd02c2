package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"moderator_bot/internal/config"
	"moderator_bot/internal/infra/logger"
)

func Execute() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	serve := newServeCmd()
	cmd := &cobra.Command{
		Use:          "bot",
		Short:        "Complaint moderator Telegram bot",
		SilenceUsage: true,
		// Running the binary without a subcommand serves the webhook.
		RunE: serve.RunE,
	}

	cmd.PersistentFlags().String("config", "", "YAML config file (overrides MODERATOR_CONFIG).")

	cmd.AddCommand(serve)
	cmd.AddCommand(newWebhookCmd())
	cmd.AddCommand(newAuditCmd())
	return cmd
}

// loadRuntime reads configuration and builds the process logger.
func loadRuntime(cmd *cobra.Command) (config.Config, *zap.Logger, error) {
	if path, _ := cmd.Flags().GetString("config"); strings.TrimSpace(path) != "" {
		if err := os.Setenv(config.ConfigPathEnv, path); err != nil {
			return config.Config{}, nil, fmt.Errorf("set config path: %w", err)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("load config: %w", err)
	}

	log, err := logger.New(cfg.Log.Level)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("build logger: %w", err)
	}
	return cfg, log, nil
}
