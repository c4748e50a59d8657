package prompts

import (
	"fmt"

	"github.com/MohamedAKonsowa/geappliances-ai-tool-prototype/internal/domain"
)

// Plan builds the Planner prompt: a request for a single JSON object
// matching the Plan schema, enumerating allowed library categories and the
// banned-capability list (§4.4 table row "Planner").
func Plan(userPrompt string, fm *domain.FailureMemory) string {
	extra := domainExtraDirections(fm)

	prompt := fmt.Sprintf(`You are the Planner for a single-page internal web tool synthesis pipeline.

USER REQUEST:
%s

Produce a plan for a SINGLE self-contained HTML document (no multi-page, no
backend beyond the runtime bridge described below). Think in terms of pages
within that one document, UI components, and state — not separate files.

%s

LIBRARY CATEGORIES YOU MAY RECOMMEND (names only — the Coder resolves exact
CDN URLs): charting (e.g. Chart.js), date handling, table/grid rendering,
form validation, icon sets, CSS utility frameworks.

%s
`, userPrompt, planJSONSchemaBlock, bannedCapabilityBlock)

	if extra != "" {
		prompt += "\n" + extra + "\nReturn ONLY the JSON object — no prose, no code fences.\n"
	} else {
		prompt += "\nReturn ONLY the JSON object — no prose, no code fences.\n"
	}

	return prompt
}
