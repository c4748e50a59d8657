// Package critics implements the two LLM-backed schema/security validators
// (SPEC_FULL.md §4.5). Both share an adapter: call the model, run the
// Response Normalizer's JSON path on the reply, and normalize to
// {approved, issues, missing, ...}. Neither critic can block the pipeline on
// a transport failure — see UnavailableVerdict/ParseFailureVerdict in
// internal/prompts.
package critics

import (
	"context"

	"github.com/MohamedAKonsowa/geappliances-ai-tool-prototype/internal/domain"
	"github.com/MohamedAKonsowa/geappliances-ai-tool-prototype/internal/modeladapter"
	"github.com/MohamedAKonsowa/geappliances-ai-tool-prototype/internal/normalize"
	"github.com/MohamedAKonsowa/geappliances-ai-tool-prototype/internal/prompts"
)

// PlanCritic is the blocking validator over a Planner's output.
type PlanCritic struct {
	Adapter modeladapter.Adapter
}

// Evaluate runs the Plan-Critic over plan and normalizes the verdict.
func (c *PlanCritic) Evaluate(ctx context.Context, userPrompt string, plan *domain.Plan, modelID string) *domain.CriticVerdict {
	prompt := prompts.PlanCritique(userPrompt, plan)
	m, raw, ok := callAndParse(ctx, c.Adapter, modelID, prompt)
	if !ok {
		return m
	}
	return &domain.CriticVerdict{
		Approved:       asBool(raw["approved"]),
		Issues:         asStringSlice(raw["issues"]),
		SuggestedPatch: asString(raw["suggestedPatchPrompt"]),
	}
}

// CodeCritic is the advisory-only validator over a Coder's HTML output. Its
// issues are accumulated into code_critique_issues but never block
// progression to the smoke harness (§4.5 "Important posture decision").
type CodeCritic struct {
	Adapter modeladapter.Adapter
}

// Evaluate runs the Code-Critic over html and normalizes the verdict.
func (c *CodeCritic) Evaluate(ctx context.Context, userPrompt string, plan *domain.Plan, html, modelID string) *domain.CriticVerdict {
	prompt := prompts.CodeCritique(userPrompt, plan, html)
	m, raw, ok := callAndParse(ctx, c.Adapter, modelID, prompt)
	if !ok {
		return m
	}
	return &domain.CriticVerdict{
		Approved:        asBool(raw["approved"]),
		Missing:         asStringSlice(raw["missing"]),
		Issues:          asStringSlice(raw["issues"]),
		FixInstructions: asString(raw["fixInstructions"]),
	}
}

// callAndParse calls the model, extracts JSON from the reply, and retries
// once with a stricter instruction if the first parse fails. On an
// unrecoverable outcome it returns the fallback *domain.CriticVerdict and
// ok=false; callers should return that verdict directly.
func callAndParse(ctx context.Context, adapter modeladapter.Adapter, modelID, prompt string) (*domain.CriticVerdict, map[string]any, bool) {
	resp, err := adapter.Call(ctx, modelID, prompt)
	if err != nil {
		return prompts.UnavailableVerdict(), nil, false
	}

	parsed, err := normalize.JSON(resp)
	if err == nil {
		return nil, parsed, true
	}

	// Retry once with a stricter instruction prepended.
	resp, err = adapter.Call(ctx, modelID, prompts.StricterRetryInstruction+prompt)
	if err != nil {
		return prompts.UnavailableVerdict(), nil, false
	}

	parsed, err = normalize.JSON(resp)
	if err != nil {
		return prompts.ParseFailureVerdict(resp), nil, false
	}
	return nil, parsed, true
}

func asBool(v any) bool {
	b, _ := v.(bool)
	return b
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asStringSlice(v any) []string {
	raw, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
