// Package normalize extracts HTML or JSON payloads from model responses that
// may arrive wrapped in fences, prose, or otherwise malformed (SPEC_FULL.md
// §4.2). Neither extractor calls a model or the network.
package normalize

import (
	"regexp"
	"strings"
)

var (
	fencedBlockRe  = regexp.MustCompile("(?s)```(?:[a-zA-Z0-9_-]*\\n)?(.*?)```")
	docStartRe     = regexp.MustCompile(`(?i)<!doctype|<html`)
	docEndRe       = regexp.MustCompile(`(?i)</html\s*>`)
)

// HTML implements the four-step fallback chain from §4.2 "HTML extraction".
// It never fails: the trimmed input is always a valid last resort.
func HTML(raw string) string {
	trimmed := strings.TrimSpace(raw)

	// (a) unchanged if it already begins with <!DOCTYPE or <html.
	if hasDocPrefix(trimmed) {
		return trimmed
	}

	// (b) the contents of the first fenced code block, if present.
	if m := fencedBlockRe.FindStringSubmatch(raw); m != nil {
		body := strings.TrimSpace(m[1])
		if body != "" {
			return body
		}
	}

	// (c) the substring from the first <!DOCTYPE/<html to the matching </html>.
	if start := docStartRe.FindStringIndex(raw); start != nil {
		rest := raw[start[0]:]
		if end := docEndRe.FindStringIndex(rest); end != nil {
			return strings.TrimSpace(rest[:end[1]])
		}
	}

	// (d) trimmed input.
	return trimmed
}

func hasDocPrefix(s string) bool {
	lower := strings.ToLower(s)
	return strings.HasPrefix(lower, "<!doctype") || strings.HasPrefix(lower, "<html")
}
