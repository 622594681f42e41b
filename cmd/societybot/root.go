package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/tbourn/go-society-bot/internal/app"
	"github.com/tbourn/go-society-bot/internal/config"
	"github.com/tbourn/go-society-bot/internal/repo"
	"github.com/tbourn/go-society-bot/internal/sysutil"
	"github.com/tbourn/go-society-bot/internal/transport"
)

// version is stamped at build time with -ldflags "-X main.version=...".
var version string

// rootCmd runs the server when no subcommand is given.
var rootCmd = &cobra.Command{
	Use:           "societybot",
	Short:         "Classifieds matching bot for housing-society group chats",
	Long:          `Reads group messages, matches offers with queries and sells contact leads.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

// Execute loads .env and runs the root command.
func Execute() error {
	// Load .env file early so environment variables are available
	_ = godotenv.Load()

	rootCmd.Version = sysutil.Version(version)
	rootCmd.AddCommand(serveCommand(), sweepCommand(), classifyCommand())
	return rootCmd.ExecuteContext(context.Background())
}

// loadConfig reads the environment and installs the process logger.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return cfg, fmt.Errorf("load config: %w", err)
	}
	sysutil.SetLogLevel(cfg.LogLevel)
	sysutil.InstallLogger(sysutil.NewLogger(os.Stderr, cfg.OTEL.ServiceName, cfg.LogPretty))
	return cfg, nil
}

// openApp opens the database, migrates it and wires the services.
func openApp(cfg config.Config) (*app.App, error) {
	db, err := repo.Open(cfg.DBDriver, cfg.DBDSN, cfg.OTEL.Enabled)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := repo.AutoMigrate(db); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	sender := transport.NewSender(cfg.AMQP.URL, cfg.AMQP.Exchange, cfg.AMQP.RoutingKey)
	a, err := app.Build(cfg, db, sender)
	if err != nil {
		_ = sender.Close()
		return nil, err
	}
	log.Info().
		Str("db_driver", cfg.DBDriver).
		Str("transport", transport.Mode(sender)).
		Str("payment_channel", cfg.Payments.Channel).
		Msg("bot wired")
	return a, nil
}
