package smoke

import (
	"strings"

	"github.com/MohamedAKonsowa/geappliances-ai-tool-prototype/internal/domain"
)

// uiSelector is a derived check against one piece of UI named in the plan.
type uiSelector struct {
	description string
	css         string
	kind        string // "button", "input", "select", "presence"
	severity    string // "critical" or "non-critical"
}

// criticalComponentKeywords and nonCriticalComponentKeywords classify
// Plan.UIComponents entries per §4.6's interaction-severity table.
var criticalComponentKeywords = map[string]string{
	"button":   "button, [role=button]",
	"submit":   "button[type=submit], input[type=submit]",
	"table":    "table",
	"grid":     "table, [role=grid]",
	"form":     "form",
	"input":    "input, textarea",
	"chart":    "canvas, svg",
	"graph":    "canvas, svg",
	"visual":   "canvas, svg",
	"search":   "input[type=search], input[type=text]",
	"dropdown": "select",
	"select":   "select",
}

var nonCriticalComponentKeywords = map[string]string{
	"modal":   "[role=dialog], .modal",
	"dialog":  "[role=dialog], .modal",
	"popup":   "[role=dialog], .modal",
	"tab":     "[role=tab], .tab",
	"card":    ".card",
	"list":    "ul, ol, [role=list]",
}

// deriveSelectors translates the plan's declared UI into concrete checks,
// per §4.6: titles and multi-page nav are always critical; data bindings
// produce a non-critical container presence check.
func deriveSelectors(plan *domain.Plan) []uiSelector {
	if plan == nil {
		return nil
	}

	var out []uiSelector
	seen := make(map[string]bool)

	add := func(s uiSelector) {
		key := s.kind + "|" + s.css
		if seen[key] {
			return
		}
		seen[key] = true
		out = append(out, s)
	}

	if plan.Title != "" {
		add(uiSelector{description: "document title", css: "title", kind: "presence", severity: "critical"})
	}
	if len(plan.Pages) > 1 {
		add(uiSelector{description: "multi-page navigation", css: "nav, [role=navigation]", kind: "presence", severity: "critical"})
	}

	for _, comp := range plan.UIComponents {
		lower := strings.ToLower(comp)
		matched := false
		for kw, css := range criticalComponentKeywords {
			if strings.Contains(lower, kw) {
				kind := "presence"
				if kw == "button" || kw == "submit" {
					kind = "button"
				} else if kw == "input" || kw == "search" {
					kind = "input"
				} else if kw == "dropdown" || kw == "select" {
					kind = "select"
				}
				add(uiSelector{description: comp, css: css, kind: kind, severity: "critical"})
				matched = true
			}
		}
		if matched {
			continue
		}
		for kw, css := range nonCriticalComponentKeywords {
			if strings.Contains(lower, kw) {
				add(uiSelector{description: comp, css: css, kind: "presence", severity: "non-critical"})
				matched = true
			}
		}
		if !matched {
			add(uiSelector{description: comp, css: "body", kind: "presence", severity: "non-critical"})
		}
	}

	if len(plan.DataBindings) > 0 {
		add(uiSelector{description: "data-bound container", css: "[data-bind], [id], [class]", kind: "presence", severity: "non-critical"})
	}

	return out
}
