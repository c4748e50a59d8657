package prompts

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/MohamedAKonsowa/geappliances-ai-tool-prototype/internal/domain"
)

const codeCritiqueTruncateBytes = 8 * 1024

// PlanCritique builds the Plan-Critic prompt: requests ONLY JSON
// {approved, issues[], suggestedPatchPrompt?}, instructed to behave as a
// schema/security validator, not a stylistic judge (§4.4 table row
// "Plan-Critic").
func PlanCritique(userPrompt string, plan *domain.Plan) string {
	planJSON, _ := json.MarshalIndent(plan.ToMap(), "", "  ")

	return fmt.Sprintf(`You are the Plan-Critic. You are a schema and security validator, NOT a
stylistic reviewer — do not suggest design or UX improvements.

ORIGINAL USER REQUEST:
%s

PLAN TO VALIDATE:
%s

Check:
  1. title is a non-empty string.
  2. pages is a non-empty ordered sequence.
  3. ui_components is a non-empty set.
  4. The plan does not require any banned capability (network calls other
     than the runtime bridge, embedded iframes/objects, dynamic code eval).
  5. The plan is achievable as a SINGLE self-contained HTML document.

Return ONLY this JSON object — no prose, no code fences:
{
  "approved": <bool>,
  "issues": ["[severity] area: message", ...],
  "suggestedPatchPrompt": "<optional string, only if approved=false>"
}
`, userPrompt, string(planJSON))
}

// CodeCritique builds the Code-Critic prompt: requests ONLY JSON
// {approved, missing[], issues[], fixInstructions?} (§4.4 table row
// "Code-Critic"). The HTML is truncated to ~8 kB per the spec.
func CodeCritique(userPrompt string, plan *domain.Plan, html string) string {
	planJSON, _ := json.MarshalIndent(plan.ToMap(), "", "  ")
	truncated := html
	if len(truncated) > codeCritiqueTruncateBytes {
		truncated = truncated[:codeCritiqueTruncateBytes] + "\n<!-- truncated -->"
	}

	return fmt.Sprintf(`You are the Code-Critic. You are a schema and security validator, NOT a
stylistic reviewer. Your findings are advisory only — they do not block the
pipeline, so be thorough but do not withhold "approved" over style opinions.

ORIGINAL USER REQUEST:
%s

APPROVED PLAN:
%s

GENERATED HTML (possibly truncated):
%s

Check that the HTML implements every plan requirement, does not use any
banned capability, and will plausibly pass a headless-browser smoke test.

Return ONLY this JSON object — no prose, no code fences:
{
  "approved": <bool>,
  "missing": ["<plan requirement not implemented>", ...],
  "issues": ["[severity] message", ...],
  "fixInstructions": "<optional string>"
}
`, userPrompt, string(planJSON), truncated)
}

// criticUnavailableNote is the fallback verdict note when the model call
// itself fails — the pipeline is never blocked by a missing advisory (§4.5).
const criticUnavailableNote = "critic unavailable"

// UnavailableVerdict builds the low-severity, approved=true verdict used
// when a critic's model call fails outright.
func UnavailableVerdict() *domain.CriticVerdict {
	return &domain.CriticVerdict{
		Approved: true,
		Issues:   []string{"[low] " + criticUnavailableNote},
	}
}

// ParseFailureVerdict builds the default-approve verdict used when JSON
// parsing fails twice in a row, attaching the raw text (§4.5).
func ParseFailureVerdict(raw string) *domain.CriticVerdict {
	return &domain.CriticVerdict{
		Approved: true,
		Issues:   []string{"[low] critic response could not be parsed as JSON"},
		Raw:      strings.TrimSpace(raw),
	}
}

// StricterRetryInstruction is prepended to the critic prompt on the single
// retry after a first JSON-parse failure (§4.5).
const StricterRetryInstruction = "Your previous response could not be parsed as JSON. Respond with ONLY a single valid JSON object and nothing else — no prose, no markdown fences, no trailing commentary.\n\n"
