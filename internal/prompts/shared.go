// Package prompts renders the pure-function prompt templates consumed by the
// Planner, Coder, Plan-Critic, Code-Critic, and Patch roles (SPEC_FULL.md
// §4.4). None of these functions call a model; each is a deterministic
// formatter over its inputs so the output can be snapshot-tested.
package prompts

import (
	"fmt"
	"strings"

	"github.com/MohamedAKonsowa/geappliances-ai-tool-prototype/internal/domain"
	"github.com/MohamedAKonsowa/geappliances-ai-tool-prototype/internal/safety"
	"github.com/MohamedAKonsowa/geappliances-ai-tool-prototype/internal/scanner"
)

// bannedCapabilityBlock enumerates the banned APIs every builder must make
// explicit, per §4.4 ("Every builder emits explicit security restrictions").
const bannedCapabilityBlock = `BANNED — do not use any of the following, in any form:
  - fetch(), axios, axios(), XMLHttpRequest, $.ajax(), jQuery.ajax() — all outbound network calls
  - eval(), new Function() — dynamic code execution
  - <iframe>, <embed>, <object> — embedded external content

ALLOWED CAPABILITIES (the only way to reach outside the page):
  - window.geaRuntimeLLM(prompt, {model?, signal?}) -> Promise<string> for AI calls
  - window.geaRuntimeStore.get(key) / .set(key, value) for persistent data`

// cdnRulesBlock renders the CDN loading rules from the centralized
// allowlist in internal/safety, so the Coder prompt and the injected CSP
// never drift (SPEC_FULL.md §4.3 "CSP allowlist detail").
func cdnRulesBlock() string {
	return "CDN LOADING RULES — you may load <script>/<link> tags only from:\n  - " +
		strings.Join(safety.CDNAllowlist, "\n  - ")
}

// renderSecurityErrors renders the accumulated security_errors list with
// each entry's canonical fix hint, per §4.8 "Failure-memory discipline": "a
// lookup table {canonical name -> fix hint} is used so the model sees an
// actionable instruction, not just a ban."
func renderSecurityErrors(names []string) string {
	if len(names) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("PREVIOUSLY BANNED CONSTRUCTS — do not repeat any of these:\n")
	for _, name := range names {
		hint := scanner.FixHint(name)
		if hint == "" {
			hint = "remove this construct entirely."
		}
		sb.WriteString(fmt.Sprintf("  ❌ %s IS BANNED → %s\n", name, hint))
	}
	return sb.String()
}

// renderIssueList renders a labeled bullet list, or "" if empty.
func renderIssueList(label string, issues []string) string {
	if len(issues) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(label + ":\n")
	for _, issue := range issues {
		sb.WriteString("  • " + issue + "\n")
	}
	return sb.String()
}

// planJSONSchemaBlock documents the Plan's required/optional fields for the
// Planner prompt (§3).
const planJSONSchemaBlock = `Return a single JSON object with this shape:
{
  "title": "<non-empty string>",
  "pages": ["<page 1>", "<page 2>", ...],            // non-empty, ordered
  "ui_components": ["<component tag>", ...],          // non-empty set
  "description": "<optional>",
  "state": { ... },                                    // optional
  "interactions": { ... },                             // optional
  "acceptance_criteria": ["...", ...],                 // optional
  "libraries": ["...", ...],                           // optional
  "data_bindings": ["...", ...],                       // optional
  "recommended_models": { ... }                        // optional
}`

// domainExtraDirections renders the "extra directions accumulated from prior
// failures" block shared by the Planner and Coder builders.
func domainExtraDirections(fm *domain.FailureMemory) string {
	if fm == nil {
		return ""
	}
	var parts []string
	if s := renderSecurityErrors(fm.SecurityErrors); s != "" {
		parts = append(parts, s)
	}
	if s := renderIssueList("PRIOR PLAN-CRITIQUE ISSUES TO RESOLVE", fm.PlanCritiqueIssues); s != "" {
		parts = append(parts, s)
	}
	if s := renderIssueList("PRIOR CODE-CRITIQUE ISSUES TO RESOLVE", fm.CodeCritiqueIssues); s != "" {
		parts = append(parts, s)
	}
	return strings.Join(parts, "\n")
}
