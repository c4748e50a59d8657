package prompts

import (
	"encoding/json"
	"fmt"

	"github.com/MohamedAKonsowa/geappliances-ai-tool-prototype/internal/domain"
)

// Code builds the Coder prompt: requests ONLY raw HTML (no prose, no
// fences), enumerates CDN loading rules and banned APIs, and includes worked
// examples for the runtime bridge (§4.4 table row "Coder").
func Code(userPrompt string, plan *domain.Plan, fm *domain.FailureMemory, libraryCatalog string) string {
	planJSON, _ := json.MarshalIndent(plan.ToMap(), "", "  ")

	prompt := fmt.Sprintf(`You are the Coder for a single-page internal web tool synthesis pipeline.

USER REQUEST:
%s

APPROVED PLAN:
%s

Generate ONE self-contained HTML document implementing this plan exactly.
Return ONLY the raw HTML document — no prose, no markdown code fences, no
explanation before or after it. The document must start with <!DOCTYPE html>
and end with </html>.

%s

%s

AVAILABLE LIBRARIES:
%s

RUNTIME BRIDGE — worked examples:

  // AI call
  window.geaRuntimeLLM("Summarize this: " + text).then(function (summary) {
    document.getElementById("summary").textContent = summary;
  });

  // Persisted key/value data
  window.geaRuntimeStore.set("items", items);
  window.geaRuntimeStore.get("items").then(function (items) {
    renderTable(items);
  });

Do not add a <script> tag with id="gea-runtime-bridge" yourself — the pipeline
injects it after your response; only call window.geaRuntimeLLM and
window.geaRuntimeStore as shown above.
`, userPrompt, string(planJSON), bannedCapabilityBlock, cdnRulesBlock(), libraryCatalog)

	if extra := domainExtraDirections(fm); extra != "" {
		prompt += "\n" + extra
	}

	return prompt
}
