package validate

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validation rule applied to every URL
const urlRule = "required,http_url"

var v = validator.New()

// IsValid reports whether url is an absolute http or https URL
func IsValid(url string) bool {
	return v.Var(url, urlRule) == nil
}

// CleanText splits free text into one candidate per line, trims whitespace,
// and keeps only valid URLs. Order is preserved and duplicates are kept;
// de-duplication is the queue's concern.
func CleanText(text string) []string {
	lines := strings.Split(text, "\n")
	candidates := make([]string, 0, len(lines))
	for _, line := range lines {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			candidates = append(candidates, trimmed)
		}
	}
	return CleanList(candidates)
}

// CleanList filters a pre-split list down to valid URLs, preserving order
func CleanList(urls []string) []string {
	cleaned := make([]string, 0, len(urls))
	for _, url := range urls {
		if IsValid(url) {
			cleaned = append(cleaned, url)
		}
	}
	return cleaned
}
