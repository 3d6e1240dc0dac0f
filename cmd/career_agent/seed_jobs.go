package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/career-compass/internal/observability"
	"github.com/jonathan/career-compass/internal/seed"
)

var seedDatabaseURL string

var seedJobsCmd = &cobra.Command{
	Use:   "seed-jobs",
	Short: "Insert the starter job listings into an empty jobs table",
	Long:  "Insert the built-in starter job listings. Nothing is written when any job already exists.",
	RunE:  runSeedJobs,
}

func init() {
	seedJobsCmd.Flags().StringVar(&seedDatabaseURL, "db-url", "", "Database URL (overrides DATABASE_URL env var)")
	rootCmd.AddCommand(seedJobsCmd)
}

func runSeedJobs(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	database, err := openDatabase(ctx, seedDatabaseURL)
	if err != nil {
		return err
	}
	defer database.Close()

	return seedJobs(ctx, database, observability.NewPrinter(os.Stdout))
}

func seedJobs(ctx context.Context, store seed.Store, printer *observability.Printer) error {
	result, err := seed.Seed(ctx, store)
	if err != nil {
		return err
	}
	printer.PrintSeedResult(result)
	return nil
}
