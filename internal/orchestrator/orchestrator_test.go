package orchestrator

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MohamedAKonsowa/geappliances-ai-tool-prototype/internal/critics"
	"github.com/MohamedAKonsowa/geappliances-ai-tool-prototype/internal/domain"
	"github.com/MohamedAKonsowa/geappliances-ai-tool-prototype/internal/modeladapter"
	"github.com/MohamedAKonsowa/geappliances-ai-tool-prototype/internal/progress"
	"github.com/MohamedAKonsowa/geappliances-ai-tool-prototype/internal/store"
)

const (
	plannerModel = "planner-model"
	coderModel   = "coder-model"
	criticModel  = "critic-model"
	runtimeModel = "runtime-model"
)

type stubSmoke struct {
	results []domain.SmokeResult
	calls   int
}

func (s *stubSmoke) Run(ctx context.Context, html string, plan *domain.Plan) domain.SmokeResult {
	i := s.calls
	s.calls++
	if i >= len(s.results) {
		return domain.SmokeResult{Passed: true}
	}
	return s.results[i]
}

func approvedPlanCritique() string {
	return `{"approved": true, "issues": []}`
}

func approvedCodeCritique() string {
	return `{"approved": true, "missing": [], "issues": []}`
}

func newTestOrchestrator(t *testing.T, smoke *stubSmoke) (*Orchestrator, *modeladapter.StubAdapter) {
	t.Helper()
	adapter := modeladapter.NewStubAdapter()
	s := store.Open(t.TempDir(), nil)
	o := New(
		adapter,
		&critics.PlanCritic{Adapter: adapter},
		&critics.CodeCritic{Adapter: adapter},
		smoke,
		s,
		0,
	)
	return o, adapter
}

func baseRequest() domain.Request {
	return domain.Request{
		Prompt:       "Create an inventory tracker for my department",
		MaxIters:     8,
		PlannerModel: plannerModel,
		CoderModel:   coderModel,
		CriticModel:  criticModel,
		RuntimeModel: runtimeModel,
	}
}

const validPlanJSON = `{"title": "Inventory Tracker", "pages": ["home"], "ui_components": ["table", "form", "button"]}`

const validHTML = `<!DOCTYPE html><html><head><title>Inventory Tracker</title></head><body>
<table></table><form></form><button>Add</button>
</body></html>`

func TestRun_S1_FirstTrySuccess(t *testing.T) {
	smoke := &stubSmoke{results: []domain.SmokeResult{{Passed: true}}}
	o, adapter := newTestOrchestrator(t, smoke)

	adapter.Enqueue(plannerModel, validPlanJSON)
	adapter.Enqueue(criticModel, approvedPlanCritique())
	adapter.Enqueue(coderModel, validHTML)
	adapter.Enqueue(criticModel, approvedCodeCritique())

	var phases []string
	result, err := o.Run(context.Background(), baseRequest(), func(ev progress.Event) {
		if ev.Type == progress.TypeIter {
			phases = append(phases, ev.Phase+":"+ev.Status)
		}
	})
	require.NoError(t, err)
	assert.Contains(t, phases, "plan:working")
	assert.Contains(t, phases, "plan:approved")
	assert.Contains(t, phases, "tests:passed")
	assert.True(t, result.Success)
	assert.Equal(t, 1, result.Summary.TotalIterations)
	assert.Equal(t, 1, result.Summary.TestsPassedAt)
	assert.Contains(t, result.FinalPlan.Title, "Inventory Tracker")
}

func TestRun_S2_SecurityHardFailForcesReplan(t *testing.T) {
	smoke := &stubSmoke{results: []domain.SmokeResult{{Passed: true}}}
	o, adapter := newTestOrchestrator(t, smoke)

	bannedHTML := `<!DOCTYPE html><html><head></head><body><script>fetch("/data")</script></body></html>`

	adapter.Enqueue(plannerModel, validPlanJSON)
	adapter.Enqueue(criticModel, approvedPlanCritique())
	adapter.Enqueue(coderModel, bannedHTML)
	// iteration 2: re-plan
	adapter.Enqueue(plannerModel, validPlanJSON)
	adapter.Enqueue(criticModel, approvedPlanCritique())
	adapter.Enqueue(coderModel, validHTML)
	adapter.Enqueue(criticModel, approvedCodeCritique())

	result, err := o.Run(context.Background(), baseRequest(), nil)
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Contains(t, result.SecurityErrors, "fetch()")
	assert.Equal(t, 2, result.Summary.TotalIterations)

	var iter2PlanPrompt string
	for _, call := range adapter.Calls {
		if call.ModelID == plannerModel {
			iter2PlanPrompt = call.Prompt // last wins == iteration 2
		}
	}
	assert.Contains(t, iter2PlanPrompt, "❌ fetch() IS BANNED → Use window.geaRuntimeLLM() for AI calls")
}

func TestRun_S5_PatchCycleEmbedsMissingElementBullet(t *testing.T) {
	smoke := &stubSmoke{results: []domain.SmokeResult{
		{Passed: false, StructuredErrors: []domain.StructuredError{
			{Type: "MISSING_ELEMENT", Message: "expected element for \"table\" not found", Severity: "critical"},
		}},
		{Passed: true},
	}}
	o, adapter := newTestOrchestrator(t, smoke)

	adapter.Enqueue(plannerModel, validPlanJSON)
	adapter.Enqueue(criticModel, approvedPlanCritique())
	adapter.Enqueue(coderModel, validHTML)
	adapter.Enqueue(criticModel, approvedCodeCritique())
	adapter.Enqueue(coderModel, validHTML) // patch response for iteration 2
	adapter.Enqueue(criticModel, approvedCodeCritique())

	result, err := o.Run(context.Background(), baseRequest(), nil)
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, 2, result.Summary.TotalIterations)
	assert.Equal(t, 2, result.Summary.TestsPassedAt)

	var patchPrompt string
	coderCalls := 0
	for _, call := range adapter.Calls {
		if call.ModelID == coderModel {
			coderCalls++
			if coderCalls == 2 {
				patchPrompt = call.Prompt
			}
		}
	}
	assert.Contains(t, patchPrompt, "• [CRITICAL] MISSING_ELEMENT:")
}

func TestRun_S6_FallbackSuccess(t *testing.T) {
	smoke := &stubSmoke{results: []domain.SmokeResult{
		{Passed: false, StructuredErrors: []domain.StructuredError{{Type: "CONSOLE_ERROR", Message: "[medium] minor layout glitch", Severity: "non-critical"}}},
		{Passed: false, StructuredErrors: []domain.StructuredError{{Type: "CONSOLE_ERROR", Message: "[medium] minor layout glitch", Severity: "non-critical"}}},
		{Passed: false, StructuredErrors: []domain.StructuredError{{Type: "CONSOLE_ERROR", Message: "[medium] minor layout glitch", Severity: "non-critical"}}},
	}}
	o, adapter := newTestOrchestrator(t, smoke)

	adapter.Enqueue(plannerModel, validPlanJSON)
	adapter.Enqueue(criticModel, approvedPlanCritique())
	adapter.Enqueue(coderModel, validHTML)
	adapter.Enqueue(criticModel, approvedCodeCritique())
	for i := 0; i < 2; i++ {
		adapter.Enqueue(coderModel, validHTML)
		adapter.Enqueue(criticModel, approvedCodeCritique())
	}

	req := baseRequest()
	req.MaxIters = 4

	result, err := o.Run(context.Background(), req, nil)
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.True(t, result.Summary.Fallback)
	assert.Equal(t, 3, result.Summary.TestsPassedAt)
}

func TestRun_ExhaustsMaxItersWithoutSuccess(t *testing.T) {
	smoke := &stubSmoke{results: []domain.SmokeResult{
		{Passed: false, StructuredErrors: []domain.StructuredError{{Type: "MISSING_ELEMENT", Message: "still missing", Severity: "critical"}}},
	}}
	o, adapter := newTestOrchestrator(t, smoke)

	req := baseRequest()
	req.MaxIters = 1

	adapter.Enqueue(plannerModel, validPlanJSON)
	adapter.Enqueue(criticModel, approvedPlanCritique())
	adapter.Enqueue(coderModel, validHTML)
	adapter.Enqueue(criticModel, approvedCodeCritique())

	result, err := o.Run(context.Background(), req, nil)
	require.ErrorIs(t, err, ErrMaxIters)
	assert.False(t, result.Success)
	assert.NotEmpty(t, result.FinalHTMLPath)
}
