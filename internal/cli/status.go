package cli

import (
	"github.com/spf13/cobra"
)

func newStatusCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show configuration and storage status",
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.Printf("provider:        %s\n", app.Config.Provider.Name)
			cmd.Printf("universe:        %v\n", app.Config.Symbols())
			cmd.Printf("max concurrent:  %d\n", app.Config.Screening.MaxConcurrent)
			cmd.Printf("cache TTLs:      quote=%ds chain=%ds historical=%ds\n",
				app.Config.Cache.QuoteTTL, app.Config.Cache.OptionChainTTL, app.Config.Cache.HistoricalTTL)
			cmd.Printf("database:        %s\n", app.Config.Storage.DBPath)

			if app.Store == nil {
				cmd.Println("storage:         UNAVAILABLE")
				return nil
			}

			runs, err := app.Store.GetRunSummaries(cmd.Context(), 1)
			if err != nil {
				cmd.Printf("storage:         ERROR (%v)\n", err)
				return nil
			}
			if len(runs) == 0 {
				cmd.Println("storage:         OK (no runs yet)")
				return nil
			}

			last := runs[0]
			cmd.Printf("storage:         OK\n")
			cmd.Printf("last run:        %s strategy=%s symbols=%d matches=%d\n",
				last.Timestamp.Format("2006-01-02 15:04"), last.Strategy, last.Symbols, last.Matches)
			return nil
		},
	}
}
