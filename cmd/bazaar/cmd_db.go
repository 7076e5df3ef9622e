package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/bazaar/config"
	"github.com/shashiranjanraj/bazaar/database/seeders"
	"github.com/shashiranjanraj/bazaar/pkg/database"
	"github.com/shashiranjanraj/bazaar/pkg/migration"
)

// bootDB loads config and opens the database connection.
func bootDB() error {
	if err := config.Load(); err != nil {
		return err
	}
	return database.Connect()
}

// bazaar migrate
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run all pending database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := bootDB(); err != nil {
			return err
		}
		ran, err := migration.New(database.DB).Run(cmd.Context())
		for _, name := range ran {
			fmt.Fprintln(cmd.OutOrStdout(), "migrated:", name)
		}
		return err
	},
}

// bazaar migrate:rollback
var migrateRollbackCmd = &cobra.Command{
	Use:   "migrate:rollback",
	Short: "Rollback the last batch of migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := bootDB(); err != nil {
			return err
		}
		undone, err := migration.New(database.DB).Rollback(cmd.Context())
		for _, name := range undone {
			fmt.Fprintln(cmd.OutOrStdout(), "rolled back:", name)
		}
		return err
	},
}

// bazaar migrate:status
var migrateStatusCmd = &cobra.Command{
	Use:   "migrate:status",
	Short: "Show the status of each migration",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := bootDB(); err != nil {
			return err
		}
		status, err := migration.New(database.DB).Status(cmd.Context())
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "MIGRATION\tRAN\tBATCH")
		for _, s := range status {
			batch := "-"
			if s.Ran {
				batch = fmt.Sprint(s.Batch)
			}
			fmt.Fprintf(w, "%s\t%v\t%s\n", s.Name, s.Ran, batch)
		}
		return w.Flush()
	},
}

var seedOnly []string

// bazaar seed [--only demo_catalog]
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Run the database seeders",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := bootDB(); err != nil {
			return err
		}
		return seeders.Run(cmd.Context(), database.DB, seedOnly...)
	},
}

func init() {
	seedCmd.Flags().StringSliceVar(&seedOnly, "only", nil, "run only these seeders ("+strings.Join(seeders.Names(), ", ")+")")
}
