package cli

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"orion-screener/internal/models"
	"orion-screener/internal/store"
)

// printResults renders a screening batch in the requested format.
func printResults(cmd *cobra.Command, results []models.ScreeningResult, stats models.ScreeningStats, format string) error {
	switch format {
	case "json":
		payload := struct {
			Stats   models.ScreeningStats    `json:"stats"`
			Results []models.ScreeningResult `json:"results"`
		}{Stats: stats, Results: results}
		data, err := json.MarshalIndent(payload, "", "  ")
		if err != nil {
			return err
		}
		cmd.Println(string(data))
		return nil
	case "table":
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "SYMBOL\tMATCH\tSTRENGTH\tCONDITIONS\tOPTION\tYIELD")
		for _, r := range results {
			option, yield := "-", "-"
			if r.Option != nil {
				option = fmt.Sprintf("%.2f put %s",
					r.Option.Contract.Strike, r.Option.Contract.Expiry.Format("2006-01-02"))
				yield = fmt.Sprintf("%.1f%%", r.Option.Yield*100)
			}
			fmt.Fprintf(w, "%s\t%v\t%.2f\t%s\t%s\t%s\n",
				r.Symbol, r.Matches, r.SignalStrength, joinConditions(r.ConditionsMet), option, yield)
		}
		w.Flush()
		cmd.Printf("\n%d screened, %d matched, %d failed in %.1fs\n",
			stats.Attempted, stats.Matched, stats.Failed, stats.Duration.Seconds())
		return nil
	default:
		return fmt.Errorf("unknown output format: %s", format)
	}
}

// printHistory renders persisted history entries.
func printHistory(cmd *cobra.Command, entries []store.HistoryEntry, format string) error {
	switch format {
	case "json":
		data, err := json.MarshalIndent(entries, "", "  ")
		if err != nil {
			return err
		}
		cmd.Println(string(data))
		return nil
	case "table":
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "TIME\tSTRATEGY\tSYMBOL\tMATCH\tSTRENGTH\tCONDITIONS")
		for _, e := range entries {
			fmt.Fprintf(w, "%s\t%s\t%s\t%v\t%.2f\t%s\n",
				e.Timestamp.Format("2006-01-02 15:04"), e.Strategy, e.Symbol,
				e.Matches, e.SignalStrength, joinConditions(e.ConditionsMet))
		}
		w.Flush()
		return nil
	default:
		return fmt.Errorf("unknown output format: %s", format)
	}
}
