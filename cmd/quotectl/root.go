package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/coverly/quotes/internal/app"
	"github.com/coverly/quotes/internal/config"
	"github.com/coverly/quotes/internal/logger"
)

var (
	verbose    bool
	configPath string
)

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "location of config file. If non is specified config will be loaded from the environment")
}

var rootCmd = &cobra.Command{
	Use:          "quotectl",
	Short:        "insurance quotes admin CLI",
	SilenceUsage: true,
}

func loadConfig() (config.Config, error) {
	var cfg config.Config
	if configPath != "" {
		return cfg, cfg.Load(configPath)
	}
	return cfg, cfg.LoadFromEnv()
}

func newLogger(cfg config.Config) (*logger.Logger, error) {
	if !verbose {
		return logger.Nop(), nil
	}
	return logger.New(cfg.LogMode)
}

// openApp wires the store, cache and services from config. The caller closes it.
// Commands that change quotes or providers pass mutating; they refuse to run
// against a memory cache since clearing it here never reaches the server's.
func openApp(cmd *cobra.Command, mutating bool) (*app.App, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if mutating && !cfg.CacheShared() {
		return nil, fmt.Errorf("cache_type %q is local to each process, so the api server would keep serving stale quotes. "+
			"use the api, or run with the server's cache_type set to 'redis' or 'none'", cfg.CacheType)
	}

	log, err := newLogger(cfg)
	if err != nil {
		return nil, err
	}

	return app.Open(cmd.Context(), cfg, log)
}
