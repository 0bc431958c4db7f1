package main

import (
	"fmt"
	"os"

	"orion-screener/internal/cli"
	"orion-screener/internal/config"
	"orion-screener/internal/logging"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	logCfg := logging.DefaultLogConfig()
	logCfg.Level = cfg.Logging.Level
	logCfg.Console = cfg.Logging.Console
	logCfg.File = cfg.Logging.File
	logger := logging.NewLoggerWithConfig(logCfg)

	// Concrete provider clients register themselves based on
	// cfg.Provider; none is bundled in this module.
	rootCmd := cli.NewRootCmd(cfg, logger, nil)

	if err := rootCmd.Execute(); err != nil {
		logger.Error().Err(err).Msg("Command failed")
		os.Exit(1)
	}
}
