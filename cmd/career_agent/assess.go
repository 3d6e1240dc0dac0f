package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/career-compass/internal/flows"
	"github.com/jonathan/career-compass/internal/observability"
	"github.com/jonathan/career-compass/internal/profile"
	"github.com/jonathan/career-compass/internal/types"
)

var assessCmd = &cobra.Command{
	Use:   "assess",
	Short: "Recommend career paths for a profile",
	Long:  "Run the career assessment on a profile JSON file and print the recommended paths.",
	RunE:  runAssess,
}

var (
	assessProfile string
	assessOutput  string
	assessAPIKey  string
)

func init() {
	assessCmd.Flags().StringVarP(&assessProfile, "profile", "p", "", "Path to profile JSON file (required)")
	assessCmd.Flags().StringVarP(&assessOutput, "out", "o", "", "Also write the assessment as JSON to this path")
	assessCmd.Flags().StringVar(&assessAPIKey, "api-key", "", "Gemini API key (overrides GEMINI_API_KEY env var)")
	_ = assessCmd.MarkFlagRequired("profile")

	rootCmd.AddCommand(assessCmd)
}

func runAssess(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	p, err := readProfile(assessProfile)
	if err != nil {
		return err
	}

	f, closeFlows, err := openFlows(ctx, assessAPIKey)
	if err != nil {
		return err
	}
	defer closeFlows()

	return assess(ctx, f, p, assessOutput, observability.NewPrinter(os.Stdout))
}

func assess(ctx context.Context, f *flows.Flows, p *types.UserProfile, outPath string, printer *observability.Printer) error {
	printer.PrintCompleteness(p.FullName, profile.Measure(p))

	result, err := f.AssessCareerPaths(ctx, *p)
	if err != nil {
		return fmt.Errorf("career assessment failed: %w", err)
	}

	printer.PrintCareerAssessment(result)
	if outPath != "" {
		return writeOutput(outPath, result)
	}
	return nil
}
