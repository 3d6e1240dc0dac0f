// Package main provides the entry point for the Career Compass API server and
// its maintenance commands.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "career_agent",
	Short: "Career Compass HTTP API Server",
	Long: "Career Compass serves profile, job and course data and AI career guidance " +
		"(career assessment, skill gap analysis, résumé optimization, job posting extraction) via REST API.",
	SilenceUsage: true,
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
