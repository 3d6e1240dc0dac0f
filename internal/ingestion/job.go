package ingestion

import (
	"context"
	"fmt"

	"github.com/jonathan/career-compass/internal/fetch"
)

// JobFromURL fetches a job posting page and returns its cleaned text.
func JobFromURL(ctx context.Context, urlStr string, opts *fetch.JobPageOptions) (*Document, *fetch.Page, error) {
	page, err := fetch.JobPage(ctx, urlStr, opts)
	if err != nil {
		return nil, nil, err
	}
	text := CleanText(page.Text)
	if text == "" {
		return nil, page, fmt.Errorf("job page %s: %w", urlStr, ErrEmptyDocument)
	}
	return newDocument(urlStr, "text/html", text), page, nil
}
