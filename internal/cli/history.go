package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newHistoryCmd(app *App) *cobra.Command {
	var (
		symbol string
		days   int
		limit  int
		output string
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show persisted screening history",
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.Store == nil {
				return fmt.Errorf("store unavailable: check storage.db_path")
			}

			if symbol != "" {
				entries, err := app.Store.GetResultsBySymbol(cmd.Context(), symbol, days)
				if err != nil {
					return err
				}
				return printHistory(cmd, entries, output)
			}

			entries, err := app.Store.GetRecentMatches(cmd.Context(), days, limit)
			if err != nil {
				return err
			}
			return printHistory(cmd, entries, output)
		},
	}

	cmd.Flags().StringVarP(&symbol, "symbol", "s", "", "filter by symbol (default: recent matches)")
	cmd.Flags().IntVarP(&days, "days", "d", 30, "lookback window in days")
	cmd.Flags().IntVarP(&limit, "limit", "l", 100, "maximum entries")
	cmd.Flags().StringVarP(&output, "output", "o", "table", "output format: table|json")

	return cmd
}
