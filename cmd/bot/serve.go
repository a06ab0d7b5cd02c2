package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"moderator_bot/internal/app"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Register the webhook and serve Telegram updates",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := loadRuntime(cmd)
			if err != nil {
				return err
			}
			defer func() {
				_ = log.Sync()
			}()

			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid config: %w", err)
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			application, err := app.New(ctx, cfg, log)
			if err != nil {
				log.Error("create moderator app", zap.Error(err))
				return err
			}

			log.Info("moderator bot starting", zap.String("environment", cfg.Environment))
			if err := application.Run(ctx); err != nil {
				log.Error("moderator bot stopped with error", zap.Error(err))
				return err
			}
			log.Info("moderator bot stopped")
			return nil
		},
	}
}
