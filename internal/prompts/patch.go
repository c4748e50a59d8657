package prompts

import (
	"fmt"
	"strings"

	"github.com/MohamedAKonsowa/geappliances-ai-tool-prototype/internal/domain"
)

const maxRecentCodeIssues = 5

// PatchInput bundles everything the Patch builder needs so call sites don't
// have to juggle a long positional argument list (§4.4 table row "Patch").
type PatchInput struct {
	CurrentHTML       string
	LastSmokeErrors   []domain.StructuredError
	RecentCodeIssues  []string // already limited by the caller if desired; Patch re-limits to 5
	SecurityErrors    []string
	AttemptHistory    []string // chronological, one line per prior attempt
}

// Patch builds the Patch prompt: current HTML, rendered fix instructions,
// recent smoke-test console errors, and chronological attempt history.
// Requests ONLY the complete fixed HTML document, repeats the
// banned-capability list prominently, and asks the model to avoid repeating
// any listed prior mistake.
func Patch(in PatchInput) string {
	var sb strings.Builder

	sb.WriteString("You are patching a previously generated single-page HTML tool.\n\n")
	sb.WriteString("CURRENT HTML:\n")
	sb.WriteString(in.CurrentHTML)
	sb.WriteString("\n\n")

	if len(in.LastSmokeErrors) > 0 {
		sb.WriteString("SMOKE-TEST FAILURES TO FIX:\n")
		for _, e := range in.LastSmokeErrors {
			sb.WriteString(renderStructuredError(e))
		}
		sb.WriteString("\n")
	}

	if len(in.RecentCodeIssues) > 0 {
		recent := in.RecentCodeIssues
		if len(recent) > maxRecentCodeIssues {
			recent = recent[len(recent)-maxRecentCodeIssues:]
		}
		sb.WriteString(renderIssueList("RECENT CODE-CRITIC ISSUES", recent))
		sb.WriteString("\n")
	}

	if s := renderSecurityErrors(in.SecurityErrors); s != "" {
		sb.WriteString(s)
		sb.WriteString("\n")
	}

	if len(in.AttemptHistory) > 0 {
		sb.WriteString("ATTEMPT HISTORY (chronological, do not repeat these mistakes):\n")
		for i, h := range in.AttemptHistory {
			sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, h))
		}
		sb.WriteString("\n")
	}

	sb.WriteString(bannedCapabilityBlock)
	sb.WriteString("\n\n")
	sb.WriteString("Return ONLY the complete fixed HTML document — no prose, no code fences. ")
	sb.WriteString("Do not repeat any mistake listed above.\n")

	return sb.String()
}

// renderStructuredError renders one smoke-test structured error as a bullet
// line: "• [SEVERITY] TYPE: message". S5 in §8 requires a line beginning
// "• [CRITICAL] MISSING_ELEMENT:" for a missing critical selector.
func renderStructuredError(e domain.StructuredError) string {
	severity := strings.ToUpper(e.Severity)
	line := fmt.Sprintf("• [%s] %s: %s", severity, e.Type, e.Message)
	if e.SuggestedFix != "" {
		line += " (fix: " + e.SuggestedFix + ")"
	}
	return line + "\n"
}
