package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/coverly/quotes/internal/quote/repo"
)

var (
	migrateDBDriver string
	migrateDBURL    string
)

func init() {
	migrateCmd.Flags().StringVarP(&migrateDBDriver, "driver", "", "", "database driver: sqlite3 or postgres. Defaults to db_driver from config")
	migrateCmd.Flags().StringVarP(&migrateDBURL, "url", "", "", "database url: /path/to/quotes.db or postgres://... Defaults to db_url from config")

	rootCmd.AddCommand(migrateCmd)
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "create the quote and provider schema",
	RunE:  doMigrate,
}

func doMigrate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if migrateDBDriver != "" {
		cfg.DBDriver = migrateDBDriver
	}
	if migrateDBURL != "" {
		cfg.DBURL = migrateDBURL
	}

	r, err := repo.New(repo.Options{
		Driver:       cfg.DBDriver,
		URL:          cfg.DBURL,
		MaxOpenConns: cfg.DBMaxOpenConns,
	})
	if err != nil {
		return err
	}
	defer r.Close()

	fmt.Fprintf(cmd.OutOrStdout(), "schema applied to %s database\n", cfg.DBDriver)
	return nil
}
