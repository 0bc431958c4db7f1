package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"orion-screener/internal/cache"
	"orion-screener/internal/notify"
	"orion-screener/internal/provider"
	"orion-screener/internal/screener"
	"orion-screener/internal/strategy"
)

func newScreenCmd(app *App) *cobra.Command {
	var (
		symbols      []string
		strategyName string
		concurrency  int
		output       string
		noSave       bool
		doNotify     bool
	)

	cmd := &cobra.Command{
		Use:   "screen",
		Short: "Run a screening batch against a strategy",
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.Provider == nil {
				return fmt.Errorf("no data provider configured: set provider.name and ORION_PROVIDER_API_KEY")
			}

			strat, err := strategy.PresetByName(strategyName)
			if err != nil {
				return err
			}
			evaluator, err := strategy.NewEvaluator(strat)
			if err != nil {
				return err
			}

			if len(symbols) == 0 {
				symbols = app.Config.Symbols()
			}
			if concurrency <= 0 {
				concurrency = app.Config.Screening.MaxConcurrent
			}

			// The SQLite store doubles as the durable cache tier; a nil
			// store degrades the cache to fast-tier-only.
			var durable cache.DurableTier
			if app.Store != nil {
				durable = app.Store
			}
			cacheManager := cache.NewManager(app.Config.Cache.FastCapacity, durable, app.Logger)
			cached := provider.NewCachedProvider(app.Provider, cacheManager, app.Config.Cache)

			scr := screener.New(cached, evaluator, app.Logger, concurrency)
			results, failures, stats := scr.ScreenBatch(cmd.Context(), symbols)

			if err := printResults(cmd, results, stats, output); err != nil {
				return err
			}

			if app.Store != nil && !noSave {
				runID, err := app.Store.SaveRun(cmd.Context(), stats)
				if err != nil {
					app.Logger.Warn().Err(err).Msg("Failed to save screening run")
				} else if err := app.Store.SaveResults(cmd.Context(), runID, append(results, failures...)); err != nil {
					app.Logger.Warn().Err(err).Msg("Failed to save screening results")
				}
			}

			if doNotify {
				svc := notify.NewService(app.Config.Notifications, app.Logger)
				if svc.Enabled() {
					svc.NotifyMatches(cmd.Context(), stats, results)
				}
			}

			return nil
		},
	}

	cmd.Flags().StringSliceVarP(&symbols, "symbols", "s", nil, "symbols to screen (default: configured universe)")
	cmd.Flags().StringVarP(&strategyName, "strategy", "t", "ofi", "strategy preset name")
	cmd.Flags().IntVarP(&concurrency, "concurrency", "c", 0, "max concurrent symbols (default: config)")
	cmd.Flags().StringVarP(&output, "output", "o", "table", "output format: table|json")
	cmd.Flags().BoolVar(&noSave, "no-save", false, "skip persisting results")
	cmd.Flags().BoolVar(&doNotify, "notify", false, "send notifications for matches")

	return cmd
}

func joinConditions(conditions []string) string {
	if len(conditions) == 0 {
		return "-"
	}
	return strings.Join(conditions, ",")
}
