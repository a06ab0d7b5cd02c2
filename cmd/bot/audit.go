package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	pgrepo "moderator_bot/internal/repo/postgres"
	"moderator_bot/internal/services/audit"
)

func newAuditCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Print the most recent moderator actions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := loadRuntime(cmd)
			if err != nil {
				return err
			}

			pool, err := pgrepo.NewPool(cmd.Context(), cfg.DatabaseDSN(), cfg.DBConnectTimeout())
			if err != nil {
				return err
			}
			gw := pgrepo.NewGateway(pool, pgrepo.DefaultConnectAttempts, log)
			defer gw.Close()

			entries, err := audit.NewService(pgrepo.NewAuditRepo(gw), true, log).ListRecent(cmd.Context(), limit)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "TIME\tACTOR\tACTION\tTARGET\tPAYLOAD")
			for _, entry := range entries {
				fmt.Fprintf(w, "%s\t%d\t%s\t%s:%d\t%s\n",
					entry.CreatedAt.Format(time.RFC3339),
					entry.ActorTGID,
					entry.Action,
					entry.TargetType,
					entry.TargetID,
					string(entry.Payload),
				)
			}
			return w.Flush()
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 50, "Number of entries to print.")
	return cmd
}
