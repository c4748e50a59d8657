// Package domain holds the data model shared across every DS-Star component:
// Plan, Failure Memory, Iteration Record, and Run Summary (SPEC_FULL.md §3).
// It has no dependencies on any other internal package so that prompts,
// critics, store, smoke, and orchestrator can all import it without cycles.
package domain

// Plan is the structured description of the app to build. The three required
// fields are checked by Validate, which the orchestrator runs before the
// Plan-Critic sees the plan; everything else the Planner
// returns is preserved verbatim in Extra and round-tripped into the Coder
// prompt (Design Note §9 "Dynamic JSON everywhere" — an open tagged record,
// not a closed schema).
type Plan struct {
	Title         string   `json:"title"`
	Pages         []string `json:"pages"`
	UIComponents  []string `json:"ui_components"`

	Description         string         `json:"description,omitempty"`
	State                any            `json:"state,omitempty"`
	Interactions         any            `json:"interactions,omitempty"`
	AcceptanceCriteria   []string       `json:"acceptance_criteria,omitempty"`
	Libraries            []string       `json:"libraries,omitempty"`
	DataBindings         []string       `json:"data_bindings,omitempty"`
	RecommendedModels    map[string]any `json:"recommended_models,omitempty"`

	// Extra preserves any field the Planner emitted that is not one of the
	// named fields above, so it still reaches the Coder prompt unchanged.
	Extra map[string]any `json:"-"`
}

// Validate checks the three required-field invariants from §3: title
// non-empty, pages non-empty, ui_components non-empty.
func (p *Plan) Validate() []string {
	var problems []string
	if p == nil {
		return []string{"plan is nil"}
	}
	if p.Title == "" {
		problems = append(problems, "title must be non-empty")
	}
	if len(p.Pages) == 0 {
		problems = append(problems, "pages must be a non-empty ordered sequence")
	}
	if len(p.UIComponents) == 0 {
		problems = append(problems, "ui_components must be a non-empty set")
	}
	return problems
}
