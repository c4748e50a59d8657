// Package scanner implements the deterministic security gate for synthesized
// HTML artifacts. It never calls the network and never calls a model: it is
// the one authoritative check that decides whether generated code is safe to
// hand to the smoke harness.
package scanner

import (
	"regexp"
	"strings"

	nethtml "golang.org/x/net/html"
)

// Violation describes a single banned construct found in a document.
type Violation struct {
	Canonical string `json:"canonical"`
	FixHint   string `json:"fix_hint"`
	Count     int    `json:"count"`
	Snippet   string `json:"snippet"`
}

// Result is the scanner's verdict for one HTML document.
type Result struct {
	Passed            bool        `json:"passed"`
	SecurityViolations []Violation `json:"security_violations"`
	StructureErrors   []string    `json:"structure_errors"`
	Summary           string      `json:"summary"`
}

// fixHints is the canonical name -> human fix hint lookup shared by the
// scanner, the patch-prompt renderer, and the logs (§6.6).
var fixHints = map[string]string{
	"fetch()":         "Use window.geaRuntimeLLM() for AI calls, or window.geaRuntimeStore for data.",
	"axios":           "Use window.geaRuntimeLLM() for AI calls, or window.geaRuntimeStore for data.",
	"axios()":         "Use window.geaRuntimeLLM() for AI calls, or window.geaRuntimeStore for data.",
	"XMLHttpRequest":  "Use window.geaRuntimeLLM() for AI calls, or window.geaRuntimeStore for data.",
	"$.ajax()":        "Use window.geaRuntimeLLM() for AI calls, or window.geaRuntimeStore for data.",
	"jQuery.ajax()":   "Use window.geaRuntimeLLM() for AI calls, or window.geaRuntimeStore for data.",
	"eval()":          "Rewrite the logic without eval(); use plain functions or JSON.parse().",
	"new Function()":  "Rewrite the logic without new Function(); use plain functions.",
	"<iframe>":        "Remove the <iframe>; embed equivalent content directly in the page.",
	"<embed>":         "Remove the <embed>; use a native element (img/video/audio) instead.",
	"<object>":        "Remove the <object>; use a native element (img/video/audio) instead.",
}

// FixHint returns the human-readable remediation for a canonical banned-name,
// or "" if the name is unknown.
func FixHint(canonical string) string {
	return fixHints[canonical]
}

var bannedTags = []struct {
	canonical string
	re        *regexp.Regexp
}{
	{"<iframe>", regexp.MustCompile(`(?i)<iframe`)},
	{"<embed>", regexp.MustCompile(`(?i)<embed`)},
	{"<object>", regexp.MustCompile(`(?i)<object`)},
}

var bannedCalls = []struct {
	canonical string
	re        *regexp.Regexp
}{
	{"fetch()", regexp.MustCompile(`fetch\(`)},
	{"axios()", regexp.MustCompile(`axios\(`)},
	{"axios", regexp.MustCompile(`axios\.`)},
	{"XMLHttpRequest", regexp.MustCompile(`XMLHttpRequest`)},
	{"$.ajax()", regexp.MustCompile(`\$\.ajax\(`)},
	{"jQuery.ajax()", regexp.MustCompile(`jQuery\.ajax\(`)},
	{"eval()", regexp.MustCompile(`eval\(`)},
	{"new Function()", regexp.MustCompile(`new\s+Function\(`)},
}

// leniencyEligible are the canonical names the empty-URL-literal leniency
// applies to (§4.1 step 5).
var leniencyEligible = map[string]bool{
	"fetch()": true,
	"axios()": true,
	"axios":   true,
}

var (
	scriptBlockRe  = regexp.MustCompile(`(?is)<script[^>]*>(.*?)</script>`)
	eventHandlerRe = regexp.MustCompile(`(?i)\son\w+\s*=\s*("([^"]*)"|'([^']*)'|([^\s>]+))`)
	emptyURLAfter  = regexp.MustCompile(`^.{0,20}?(''|""|` + "``" + `)`)
)

// Scan runs the full six-step algorithm from SPEC_FULL.md §4.1 over a single
// HTML document.
func Scan(html string) Result {
	var violations []Violation
	var structureErrors []string

	// Step 1: banned tags over raw HTML.
	for _, bt := range bannedTags {
		locs := bt.re.FindAllStringIndex(html, -1)
		if len(locs) == 0 {
			continue
		}
		violations = append(violations, Violation{
			Canonical: bt.canonical,
			FixHint:   fixHints[bt.canonical],
			Count:     len(locs),
			Snippet:   snippetAt(html, locs[0][0]),
		})
	}

	// Step 2: extract executable text (script bodies + inline handlers).
	executable := extractExecutable(html)

	// Step 3: strip comments and string literals.
	sanitized := stripCommentsAndStrings(executable)

	// Step 4 + 5: banned call patterns, with empty-URL leniency.
	for _, bc := range bannedCalls {
		locs := bc.re.FindAllStringIndex(sanitized, -1)
		if len(locs) == 0 {
			continue
		}
		if leniencyEligible[bc.canonical] && allFollowedByEmptyURL(sanitized, locs) {
			continue
		}
		violations = append(violations, Violation{
			Canonical: bc.canonical,
			FixHint:   fixHints[bc.canonical],
			Count:     len(locs),
			Snippet:   snippetAt(sanitized, locs[0][0]),
		})
	}

	// Step 6: basic structure, via a tolerant tokenizer rather than brittle
	// regexes over raw text (case variants, stray whitespace in tags, etc).
	structureErrors = append(structureErrors, structureIssues(html)...)

	passed := len(violations) == 0 && len(structureErrors) == 0
	return Result{
		Passed:             passed,
		SecurityViolations: violations,
		StructureErrors:    structureErrors,
		Summary:            summarize(passed, violations, structureErrors),
	}
}

func allFollowedByEmptyURL(text string, locs [][]int) bool {
	for _, loc := range locs {
		tail := text[loc[1]:]
		if len(tail) > 20 {
			tail = tail[:20]
		}
		if !emptyURLAfter.MatchString(tail) {
			return false
		}
	}
	return true
}

func extractExecutable(html string) string {
	var sb strings.Builder
	for _, m := range scriptBlockRe.FindAllStringSubmatch(html, -1) {
		sb.WriteString(m[1])
		sb.WriteByte('\n')
	}
	for _, m := range eventHandlerRe.FindAllStringSubmatch(html, -1) {
		// Whichever quoting group matched.
		val := m[2]
		if val == "" {
			val = m[3]
		}
		if val == "" {
			val = m[4]
		}
		sb.WriteString(val)
		sb.WriteByte('\n')
	}
	return sb.String()
}

func snippetAt(text string, idx int) string {
	start := idx - 20
	if start < 0 {
		start = 0
	}
	end := idx + 40
	if end > len(text) {
		end = len(text)
	}
	snippet := strings.TrimSpace(text[start:end])
	snippet = strings.ReplaceAll(snippet, "\n", " ")
	if len(snippet) > 60 {
		snippet = snippet[:60] + "..."
	}
	return snippet
}

// structureIssues runs the document through a tolerant tokenizer (rather
// than regexing raw bytes) to check the two structural requirements of §4.1
// step 6: a leading <!DOCTYPE or <html, and a closing </html>. The
// tokenizer shrugs off attribute quoting, stray whitespace, and casing that
// would otherwise need an increasingly fragile regex.
func structureIssues(doc string) []string {
	z := nethtml.NewTokenizer(strings.NewReader(doc))
	sawDoctypeOrHTML := false
	sawCloseHTML := false

	for {
		tt := z.Next()
		if tt == nethtml.ErrorToken {
			break
		}
		switch tt {
		case nethtml.DoctypeToken:
			sawDoctypeOrHTML = true
		case nethtml.StartTagToken, nethtml.SelfClosingTagToken:
			name, _ := z.TagName()
			if string(name) == "html" {
				sawDoctypeOrHTML = true
			}
		case nethtml.EndTagToken:
			name, _ := z.TagName()
			if string(name) == "html" {
				sawCloseHTML = true
			}
		}
	}

	var issues []string
	if !sawDoctypeOrHTML {
		issues = append(issues, "document does not begin with <!DOCTYPE or contain <html")
	}
	if !sawCloseHTML {
		issues = append(issues, "document is missing a closing </html>")
	}
	return issues
}

func summarize(passed bool, violations []Violation, structureErrors []string) string {
	if passed {
		return "scan passed: no banned constructs, structure valid"
	}
	names := make([]string, 0, len(violations))
	for _, v := range violations {
		names = append(names, v.Canonical)
	}
	parts := make([]string, 0, 2)
	if len(names) > 0 {
		parts = append(parts, "violations: "+strings.Join(names, ", "))
	}
	if len(structureErrors) > 0 {
		parts = append(parts, "structure: "+strings.Join(structureErrors, "; "))
	}
	return strings.Join(parts, " | ")
}
