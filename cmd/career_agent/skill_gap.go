package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/career-compass/internal/flows"
	"github.com/jonathan/career-compass/internal/observability"
	"github.com/jonathan/career-compass/internal/profile"
	"github.com/jonathan/career-compass/internal/types"
)

var skillGapCmd = &cobra.Command{
	Use:   "skill-gap",
	Short: "Compare current skills with a target role",
	Long:  "List the skills missing for a target role and resources to learn them. Skills come from --skills or, if omitted, from the skill lists of --profile.",
	RunE:  runSkillGap,
}

var (
	gapSkills  string
	gapProfile string
	gapTarget  string
	gapAPIKey  string
)

func init() {
	skillGapCmd.Flags().StringVarP(&gapSkills, "skills", "s", "", "Comma-separated current skills")
	skillGapCmd.Flags().StringVarP(&gapProfile, "profile", "p", "", "Profile JSON file to take skills from when --skills is omitted")
	skillGapCmd.Flags().StringVarP(&gapTarget, "target", "t", "", "Desired career path (required)")
	skillGapCmd.Flags().StringVar(&gapAPIKey, "api-key", "", "Gemini API key (overrides GEMINI_API_KEY env var)")
	_ = skillGapCmd.MarkFlagRequired("target")

	rootCmd.AddCommand(skillGapCmd)
}

func runSkillGap(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	skills, err := resolveSkills(gapSkills, gapProfile)
	if err != nil {
		return err
	}

	f, closeFlows, err := openFlows(ctx, gapAPIKey)
	if err != nil {
		return err
	}
	defer closeFlows()

	return skillGap(ctx, f, skills, gapTarget, observability.NewPrinter(os.Stdout))
}

func resolveSkills(skills, profilePath string) (string, error) {
	if strings.TrimSpace(skills) != "" {
		return strings.TrimSpace(skills), nil
	}
	if profilePath == "" {
		return "", fmt.Errorf("one of --skills or --profile is required")
	}
	p, err := readProfile(profilePath)
	if err != nil {
		return "", err
	}
	summary := profile.SkillsSummary(p)
	if summary == "" {
		return "", fmt.Errorf("profile %s lists no skills", profilePath)
	}
	return summary, nil
}

func skillGap(ctx context.Context, f *flows.Flows, skills, target string, printer *observability.Printer) error {
	result, err := f.AnalyzeSkillGap(ctx, types.SkillGapInput{
		UserSkills:        skills,
		DesiredCareerPath: strings.TrimSpace(target),
	})
	if err != nil {
		return fmt.Errorf("skill gap analysis failed: %w", err)
	}

	printer.PrintSkillGap(target, result)
	return nil
}
