package main

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func sweepCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Delete expired listings and webhook events once, then exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			a, err := openApp(cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := log.Logger.WithContext(cmd.Context())
			res, err := a.Maintenance.Sweep(ctx)
			if err != nil {
				return err
			}
			log.Info().
				Int64("listings", res.Listings).
				Int64("webhook_events", res.WebhookEvents).
				Msg("sweep done")
			return nil
		},
	}
}
