package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonathan/career-compass/internal/fetch"
	"github.com/jonathan/career-compass/internal/flows"
	"github.com/jonathan/career-compass/internal/ingestion"
	"github.com/jonathan/career-compass/internal/observability"
)

var parseJobCmd = &cobra.Command{
	Use:   "parse-job",
	Short: "Extract a structured job listing from a job posting",
	Long: "Extract title, company, location, tags and apply link from job posting text, a local file (.txt, .pdf, .docx) " +
		"or a job page URL. The listing is printed for review and is not saved.",
	RunE: runParseJob,
}

var (
	parseText    string
	parseFile    string
	parseURL     string
	parseOutput  string
	parseAPIKey  string
	parseBrowser bool
	parseVerbose bool
)

func init() {
	parseJobCmd.Flags().StringVar(&parseText, "text", "", "Job posting text")
	parseJobCmd.Flags().StringVarP(&parseFile, "file", "f", "", "Path to a job posting file")
	parseJobCmd.Flags().StringVarP(&parseURL, "url", "u", "", "URL of a job posting page")
	parseJobCmd.Flags().StringVarP(&parseOutput, "out", "o", "", "Also write the listing as JSON to this path")
	parseJobCmd.Flags().StringVar(&parseAPIKey, "api-key", "", "Gemini API key (overrides GEMINI_API_KEY env var)")
	parseJobCmd.Flags().BoolVar(&parseBrowser, "browser", false, "Render the page in headless Chrome when plain HTTP returns too little text")
	parseJobCmd.Flags().BoolVarP(&parseVerbose, "verbose", "v", false, "Log fetch details")
	parseJobCmd.MarkFlagsMutuallyExclusive("text", "file", "url")
	parseJobCmd.MarkFlagsOneRequired("text", "file", "url")

	rootCmd.AddCommand(parseJobCmd)
}

// jobSource is where parse-job reads the posting from. Exactly one field is set.
type jobSource struct {
	Text string
	File string
	URL  string
}

func runParseJob(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	src := jobSource{Text: parseText, File: parseFile, URL: parseURL}
	jobText, err := resolveJobText(ctx, src, jobPageOptions(parseBrowser, parseVerbose))
	if err != nil {
		return err
	}

	f, closeFlows, err := openFlows(ctx, parseAPIKey)
	if err != nil {
		return err
	}
	defer closeFlows()

	return parseJob(ctx, f, jobText, parseOutput, observability.NewPrinter(os.Stdout))
}

func jobPageOptions(browser, verbose bool) *fetch.JobPageOptions {
	opts := &fetch.JobPageOptions{Fetch: fetch.DefaultOptions(), Verbose: verbose}
	if browser {
		opts.Renderer = &fetch.ChromeRenderer{Timeout: 45 * time.Second, Verbose: verbose}
	}
	return opts
}

func resolveJobText(ctx context.Context, src jobSource, opts *fetch.JobPageOptions) (string, error) {
	switch {
	case strings.TrimSpace(src.Text) != "":
		return ingestion.CleanText(src.Text), nil
	case src.File != "":
		doc, err := ingestion.FromFile(src.File)
		if err != nil {
			return "", fmt.Errorf("failed to read job posting: %w", err)
		}
		return doc.Text, nil
	case src.URL != "":
		doc, _, err := ingestion.JobFromURL(ctx, src.URL, opts)
		if err != nil {
			return "", fmt.Errorf("failed to fetch job posting: %w", err)
		}
		return doc.Text, nil
	default:
		return "", fmt.Errorf("one of --text, --file or --url is required")
	}
}

func parseJob(ctx context.Context, f *flows.Flows, jobText, outPath string, printer *observability.Printer) error {
	job, err := f.ParseJobPosting(ctx, jobText)
	if err != nil {
		return fmt.Errorf("failed to parse job posting: %w", err)
	}

	printer.PrintJobListing(job)
	if outPath != "" {
		if err := writeOutput(outPath, job); err != nil {
			return err
		}
		_, _ = fmt.Fprintf(os.Stdout, "Output: %s\n", outPath)
	}
	return nil
}
