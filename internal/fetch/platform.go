// Package fetch - platform.go detects hiring platforms and their page selectors.
package fetch

import (
	"net/url"
	"strings"
)

// Platform represents a known job board or applicant tracking system.
type Platform string

const (
	PlatformGreenhouse Platform = "greenhouse"
	PlatformLever      Platform = "lever"
	PlatformWorkday    Platform = "workday"
	PlatformDarwinbox  Platform = "darwinbox"
	PlatformNaukri     Platform = "naukri"
	PlatformUnknown    Platform = "unknown"
)

var platformHosts = []struct {
	suffix   string
	platform Platform
}{
	{"greenhouse.io", PlatformGreenhouse},
	{"lever.co", PlatformLever},
	{"myworkdayjobs.com", PlatformWorkday},
	{"workday.com", PlatformWorkday},
	{"darwinbox.in", PlatformDarwinbox},
	{"naukri.com", PlatformNaukri},
}

// DetectPlatform identifies the hiring platform from a URL's host.
func DetectPlatform(urlStr string) Platform {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return PlatformUnknown
	}
	host := strings.ToLower(parsed.Hostname())
	for _, p := range platformHosts {
		if host == p.suffix || strings.HasSuffix(host, "."+p.suffix) {
			return p.platform
		}
	}
	return PlatformUnknown
}

// PlatformContentSelectors returns content selectors for a platform, most specific first.
func PlatformContentSelectors(platform Platform) []string {
	switch platform {
	case PlatformGreenhouse:
		return []string{".job__description.body", ".job__description", "#content"}
	case PlatformLever:
		return []string{".posting-page", ".posting-description", ".content"}
	case PlatformWorkday:
		return []string{"[data-automation-id='jobPostingDescription']", "[data-automation-id='jobDescription']", ".job-description"}
	case PlatformDarwinbox:
		return []string{".job-description-container", ".jd-container", ".job-details"}
	case PlatformNaukri:
		return []string{".styles_JDC__dang-inner-html__h0K4t", ".job-desc", "section.job-desc"}
	default:
		return JobPostingSelectors()
	}
}

// PlatformNoiseSelectors returns elements to strip before extracting text.
func PlatformNoiseSelectors(platform Platform) []string {
	common := []string{
		"form",
		".application-form",
		".eeo-statement",
		".social-share",
		".cookie-consent",
		".similar-jobs",
	}

	switch platform {
	case PlatformGreenhouse:
		return append(common, ".application--wrapper", "#usa_self_id_section")
	case PlatformLever:
		return append(common, ".posting-apply")
	case PlatformWorkday:
		return append(common, "[data-automation-id='applyButton']")
	case PlatformNaukri:
		return append(common, ".styles_jhc__apply-button-container__5Bqnb", ".recommended-jobs")
	default:
		return common
	}
}
