// Package cli provides the command-line interface for the screening application.
package cli

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"orion-screener/internal/config"
	"orion-screener/internal/provider"
	"orion-screener/internal/store"
)

// Version information
const (
	Version = "0.1.0"
)

// App holds the application dependencies.
type App struct {
	Config   *config.Config
	Logger   zerolog.Logger
	Store    *store.SQLiteStore
	Provider provider.DataProvider
}

// NewRootCmd creates the root command for the CLI. dataProvider may be
// nil; without one only history and status commands are usable.
func NewRootCmd(cfg *config.Config, logger zerolog.Logger, dataProvider provider.DataProvider) *cobra.Command {
	app := &App{
		Config:   cfg,
		Logger:   logger,
		Provider: dataProvider,
	}

	// Initialize SQLite store for history and the durable cache tier.
	resultStore, err := store.NewSQLiteStore(cfg.Storage.DBPath)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to initialize store, history and durable caching unavailable")
	} else {
		app.Store = resultStore
		logger.Debug().Str("path", cfg.Storage.DBPath).Msg("SQLite store initialized")
	}

	rootCmd := &cobra.Command{
		Use:   "orion",
		Short: "Orion screens equities for option-selling opportunities",
		Long: `Orion screens a universe of equities against a trading strategy
and surfaces option-selling opportunities. It produces advisory
signals only and places no orders.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		newScreenCmd(app),
		newHistoryCmd(app),
		newStatusCmd(app),
		newVersionCmd(),
	)

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Printf("orion %s\n", Version)
		},
	}
}
