package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/career-compass/internal/flows"
	"github.com/jonathan/career-compass/internal/ingestion"
	"github.com/jonathan/career-compass/internal/observability"
	"github.com/jonathan/career-compass/internal/profile"
	"github.com/jonathan/career-compass/internal/types"
)

var optimizeResumeCmd = &cobra.Command{
	Use:   "optimize-resume",
	Short: "Rewrite a résumé for a target role",
	Long:  "Rewrite a résumé (.txt, .md, .pdf or .docx) using the profile for extra context. The rewritten text is printed to stdout.",
	RunE:  runOptimizeResume,
}

var (
	optimizeResume  string
	optimizeProfile string
	optimizeTarget  string
	optimizeOutput  string
	optimizeAPIKey  string
)

func init() {
	optimizeResumeCmd.Flags().StringVarP(&optimizeResume, "resume", "r", "", "Path to résumé file (required)")
	optimizeResumeCmd.Flags().StringVarP(&optimizeProfile, "profile", "p", "", "Path to profile JSON file")
	optimizeResumeCmd.Flags().StringVarP(&optimizeTarget, "target", "t", "", "Desired career path")
	optimizeResumeCmd.Flags().StringVarP(&optimizeOutput, "out", "o", "", "Write the rewritten résumé to this path instead of stdout")
	optimizeResumeCmd.Flags().StringVar(&optimizeAPIKey, "api-key", "", "Gemini API key (overrides GEMINI_API_KEY env var)")
	_ = optimizeResumeCmd.MarkFlagRequired("resume")

	rootCmd.AddCommand(optimizeResumeCmd)
}

func runOptimizeResume(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	in, err := resumeInput(optimizeResume, optimizeProfile, optimizeTarget)
	if err != nil {
		return err
	}

	f, closeFlows, err := openFlows(ctx, optimizeAPIKey)
	if err != nil {
		return err
	}
	defer closeFlows()

	return optimize(ctx, f, in, optimizeOutput, observability.NewPrinter(os.Stdout))
}

func resumeInput(resumePath, profilePath, target string) (types.ResumeOptimizationInput, error) {
	doc, err := ingestion.FromFile(resumePath)
	if err != nil {
		return types.ResumeOptimizationInput{}, fmt.Errorf("failed to read résumé: %w", err)
	}

	p := profile.Default(localProfileID, "", "", "")
	if profilePath != "" {
		if p, err = readProfile(profilePath); err != nil {
			return types.ResumeOptimizationInput{}, err
		}
	}

	return types.ResumeOptimizationInput{
		ResumeText:        doc.Text,
		UserProfile:       *p,
		DesiredCareerPath: strings.TrimSpace(target),
	}, nil
}

func optimize(ctx context.Context, f *flows.Flows, in types.ResumeOptimizationInput, outPath string, printer *observability.Printer) error {
	result, err := f.OptimizeResume(ctx, in)
	if err != nil {
		return fmt.Errorf("résumé optimization failed: %w", err)
	}

	if outPath != "" {
		if err := os.WriteFile(outPath, []byte(result.OptimizedResume), 0644); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		_, _ = fmt.Fprintf(os.Stdout, "Output: %s\n", outPath)
		return nil
	}
	printer.PrintOptimizedResume(result)
	return nil
}
