// Package observability provides formatted output utilities for the CLI.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/career-compass/internal/profile"
	"github.com/jonathan/career-compass/internal/seed"
	"github.com/jonathan/career-compass/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for CLI summaries
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range wrap(content, boxWidth-4) {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// wrap breaks content into lines of at most width runes, splitting on spaces
// where it can. Existing newlines are kept.
func wrap(content string, width int) []string {
	var lines []string
	for _, para := range strings.Split(content, "\n") {
		runes := []rune(para)
		for len(runes) > width {
			cut := width
			for i := width; i > width/2; i-- {
				if runes[i] == ' ' {
					cut = i
					break
				}
			}
			lines = append(lines, strings.TrimRight(string(runes[:cut]), " "))
			runes = []rune(strings.TrimLeft(string(runes[cut:]), " "))
		}
		lines = append(lines, string(runes))
	}
	return lines
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-3]) + "..."
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

// PrintJobListing outputs the fields extracted from a job posting.
func (p *Printer) PrintJobListing(job *types.JobListing) {
	if job == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Title:    %s\n", orDash(job.Title)))
	sb.WriteString(fmt.Sprintf("Company:  %s\n", orDash(job.Company)))
	sb.WriteString(fmt.Sprintf("Location: %s\n", orDash(job.Location)))
	sb.WriteString(fmt.Sprintf("Apply:    %s\n", truncate(orDash(job.ApplyLink), boxWidth-14)))

	if len(job.Tags) > 0 {
		sb.WriteString("\nTags:\n")
		count := min(len(job.Tags), maxItemsToShow)
		for i := 0; i < count; i++ {
			sb.WriteString(fmt.Sprintf("  • %s\n", job.Tags[i]))
		}
		if len(job.Tags) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(job.Tags)-maxItemsToShow))
		}
	}

	p.printBox("PARSED JOB LISTING", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintCareerAssessment outputs each recommended path and the overall summary.
func (p *Printer) PrintCareerAssessment(out *types.CareerAssessmentOutput) {
	if out == nil || len(out.CareerPaths) == 0 {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d career paths recommended:\n\n", len(out.CareerPaths)))

	for i, path := range out.CareerPaths {
		sb.WriteString(fmt.Sprintf("#%d  %s\n", i+1, path.Title))
		sb.WriteString(fmt.Sprintf("    Why:    %s\n", truncate(path.Reasoning, 120)))
		sb.WriteString(fmt.Sprintf("    Next:   %s\n", truncate(path.NextSteps, 120)))
		sb.WriteString(fmt.Sprintf("    Growth: %s\n", truncate(path.GrowthPotential, 80)))
		sb.WriteString("\n")
	}
	sb.WriteString(out.Summary)

	p.printBox("CAREER ASSESSMENT", sb.String())
}

// PrintSkillGap outputs the missing skills and the suggested resources.
func (p *Printer) PrintSkillGap(target string, out *types.SkillGapOutput) {
	if out == nil {
		return
	}

	var sb strings.Builder
	if target != "" {
		sb.WriteString(fmt.Sprintf("Target: %s\n\n", target))
	}
	sb.WriteString("Skill gaps:\n")
	sb.WriteString(out.SkillGaps)
	sb.WriteString("\n\nRecommended resources:\n")
	sb.WriteString(out.RecommendedResources)

	p.printBox("SKILL GAP ANALYSIS", sb.String())
}

// PrintOptimizedResume writes the rewritten résumé as plain text. It is not
// boxed so the output can be redirected to a file.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintOptimizedResume(out *types.ResumeOptimizationOutput) {
	if out == nil {
		return
	}
	fmt.Fprintln(p.out, strings.TrimRight(out.OptimizedResume, "\n"))
}

// PrintSeedResult outputs what a seed run did.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintSeedResult(result *seed.Result) {
	if result == nil {
		return
	}
	if result.Aborted {
		fmt.Fprintf(p.out, "┌%s┐\n", strings.Repeat("─", boxWidth-2))
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, fmt.Sprintf("⚠ SEED SKIPPED: %d jobs already exist", result.Existing))
		fmt.Fprintf(p.out, "└%s┘\n", strings.Repeat("─", boxWidth-2))
		return
	}
	p.printBox("SEED JOBS", fmt.Sprintf("Inserted %d jobs", result.Inserted))
}

// PrintCompleteness outputs how much of a profile is filled in.
func (p *Printer) PrintCompleteness(name string, c profile.Completeness) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Profile:  %s\n", orDash(name)))
	sb.WriteString(fmt.Sprintf("Complete: %d%% (%d/%d)\n", c.Percent, c.Filled, c.Total))

	if len(c.Missing) > 0 {
		sb.WriteString("\nMissing:\n")
		count := min(len(c.Missing), maxItemsToShow)
		for i := 0; i < count; i++ {
			sb.WriteString(fmt.Sprintf("  • %s\n", c.Missing[i]))
		}
		if len(c.Missing) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(c.Missing)-maxItemsToShow))
		}
	}

	p.printBox("PROFILE COMPLETENESS", strings.TrimSuffix(sb.String(), "\n"))
}
