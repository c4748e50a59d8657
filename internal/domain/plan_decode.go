package domain

// knownPlanFields lists the JSON keys PlanFromMap consumes into named Plan
// fields; everything else lands in Extra.
var knownPlanFields = map[string]bool{
	"title": true, "pages": true, "ui_components": true, "description": true,
	"state": true, "interactions": true, "acceptance_criteria": true,
	"libraries": true, "data_bindings": true, "recommended_models": true,
}

// PlanFromMap decodes a loosely-typed JSON object (as produced by
// normalize.JSON) into a Plan, preserving any field PlanFromMap does not
// recognize in Extra.
func PlanFromMap(m map[string]any) *Plan {
	p := &Plan{Extra: map[string]any{}}

	p.Title, _ = m["title"].(string)
	p.Pages = stringSlice(m["pages"])
	p.UIComponents = stringSlice(m["ui_components"])
	p.Description, _ = m["description"].(string)
	p.State = m["state"]
	p.Interactions = m["interactions"]
	p.AcceptanceCriteria = stringSlice(m["acceptance_criteria"])
	p.Libraries = stringSlice(m["libraries"])
	p.DataBindings = stringSlice(m["data_bindings"])
	if rm, ok := m["recommended_models"].(map[string]any); ok {
		p.RecommendedModels = rm
	}

	for k, v := range m {
		if !knownPlanFields[k] {
			p.Extra[k] = v
		}
	}

	return p
}

func stringSlice(v any) []string {
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

// ToMap re-renders the Plan as a loose map for embedding in prompts,
// merging Extra back in so the Coder sees everything the Planner produced.
func (p *Plan) ToMap() map[string]any {
	m := map[string]any{
		"title":         p.Title,
		"pages":         p.Pages,
		"ui_components": p.UIComponents,
	}
	if p.Description != "" {
		m["description"] = p.Description
	}
	if p.State != nil {
		m["state"] = p.State
	}
	if p.Interactions != nil {
		m["interactions"] = p.Interactions
	}
	if len(p.AcceptanceCriteria) > 0 {
		m["acceptance_criteria"] = p.AcceptanceCriteria
	}
	if len(p.Libraries) > 0 {
		m["libraries"] = p.Libraries
	}
	if len(p.DataBindings) > 0 {
		m["data_bindings"] = p.DataBindings
	}
	if len(p.RecommendedModels) > 0 {
		m["recommended_models"] = p.RecommendedModels
	}
	for k, v := range p.Extra {
		m[k] = v
	}
	return m
}
