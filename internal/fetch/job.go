package fetch

import (
	"context"
	"log"
	"strings"
)

// Page is a job posting page reduced to text.
type Page struct {
	URL        string   `json:"url"`
	Platform   Platform `json:"platform"`
	Text       string   `json:"text"`
	ApplyLinks []string `json:"applyLinks,omitempty"`
	Rendered   bool     `json:"rendered"`
}

// JobPageOptions configures JobPage.
type JobPageOptions struct {
	Fetch *Options
	// Renderer, if set, is used when the plain HTTP text is too short.
	Renderer Renderer
	Verbose  bool
}

// JobPage fetches a job posting and extracts its text and apply links. The
// apply links are appended to the text so extraction sees the real URLs.
func JobPage(ctx context.Context, urlStr string, opts *JobPageOptions) (*Page, error) {
	if opts == nil {
		opts = &JobPageOptions{}
	}
	base, err := ValidateURL(urlStr)
	if err != nil {
		return nil, err
	}

	platform := DetectPlatform(urlStr)
	contentSelectors := PlatformContentSelectors(platform)
	noiseSelectors := PlatformNoiseSelectors(platform)

	result, err := URL(ctx, urlStr, opts.Fetch)
	if err != nil {
		return nil, err
	}

	html := result.HTML
	text, err := ExtractMainText(html, contentSelectors, noiseSelectors...)
	if err != nil {
		return nil, &Error{URL: urlStr, Message: "content extraction failed", Cause: err}
	}

	page := &Page{URL: urlStr, Platform: platform}
	if opts.Renderer != nil && ShouldUseBrowser(text) {
		if opts.Verbose {
			log.Printf("[VERBOSE] %s: %d chars over HTTP, rendering in browser", urlStr, len(text))
		}
		rendered, renderErr := opts.Renderer.Render(ctx, urlStr)
		if renderErr != nil {
			log.Printf("Browser rendering failed for %s, using HTTP content: %v", urlStr, renderErr)
		} else if renderedText, extractErr := ExtractMainText(rendered, contentSelectors, noiseSelectors...); extractErr == nil && len(renderedText) > len(text) {
			html = rendered
			text = renderedText
			page.Rendered = true
		}
	}

	links, err := ApplyLinks(html, base)
	if err == nil {
		page.ApplyLinks = links
	}

	var sb strings.Builder
	sb.WriteString(text)
	if len(page.ApplyLinks) > 0 {
		sb.WriteString("\n\nApply links:\n")
		for _, link := range page.ApplyLinks {
			sb.WriteString(link)
			sb.WriteString("\n")
		}
	}
	page.Text = strings.TrimSpace(sb.String())
	return page, nil
}
