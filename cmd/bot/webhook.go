package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"moderator_bot/internal/config"
	"moderator_bot/internal/infra/telegram"
)

func newWebhookCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "webhook",
		Short: "Manage the moderator bot webhook",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "set",
		Short: "Point the webhook at MODERATOR_WEBHOOK_URL/moderator",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, client, err := webhookClient(cmd)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid config: %w", err)
			}
			if err := client.SetWebhook(cfg.WebhookEndpoint()); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "webhook set to %s\n", cfg.WebhookEndpoint())
			return err
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "delete",
		Short: "Remove the webhook",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, client, err := webhookClient(cmd)
			if err != nil {
				return err
			}
			if err := client.DeleteWebhook(); err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), "webhook deleted")
			return err
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "info",
		Short: "Print the webhook registered with Telegram",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, client, err := webhookClient(cmd)
			if err != nil {
				return err
			}
			info, err := client.WebhookInfo()
			if err != nil {
				return err
			}
			encoder := json.NewEncoder(cmd.OutOrStdout())
			encoder.SetIndent("", "  ")
			return encoder.Encode(info)
		},
	})

	return cmd
}

func webhookClient(cmd *cobra.Command) (config.Config, *telegram.Client, error) {
	cfg, log, err := loadRuntime(cmd)
	if err != nil {
		return config.Config{}, nil, err
	}

	httpClient, err := telegram.NewHTTPClient(cfg.ProxyURL(), cfg.Bot.SessionLimit)
	if err != nil {
		return config.Config{}, nil, err
	}
	client, err := telegram.NewClient(cfg.Bot.Token, telegram.Options{HTTPClient: httpClient, Logger: log})
	if err != nil {
		return config.Config{}, nil, err
	}
	return cfg, client, nil
}
