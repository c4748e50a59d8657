package critics

import (
	"context"
	"errors"
	"testing"

	"github.com/MohamedAKonsowa/geappliances-ai-tool-prototype/internal/domain"
	"github.com/MohamedAKonsowa/geappliances-ai-tool-prototype/internal/modeladapter"
	"github.com/stretchr/testify/assert"
)

func testPlan() *domain.Plan {
	return &domain.Plan{Title: "X", Pages: []string{"home"}, UIComponents: []string{"table"}}
}

func TestPlanCritic_ApprovedOnValidJSON(t *testing.T) {
	adapter := modeladapter.NewStubAdapter()
	adapter.Enqueue("critic-model", `{"approved": true, "issues": []}`)

	c := &PlanCritic{Adapter: adapter}
	v := c.Evaluate(context.Background(), "req", testPlan(), "critic-model")

	assert.True(t, v.Approved)
	assert.Empty(t, v.Issues)
}

func TestPlanCritic_DefaultsApprovedWhenModelCallFails(t *testing.T) {
	adapter := modeladapter.NewStubAdapter()
	adapter.EnqueueError("critic-model", errors.New("timeout"))

	c := &PlanCritic{Adapter: adapter}
	v := c.Evaluate(context.Background(), "req", testPlan(), "critic-model")

	assert.True(t, v.Approved)
	assert.Len(t, v.Issues, 1)
	assert.Contains(t, v.Issues[0], "critic unavailable")
}

func TestPlanCritic_RetriesOnceOnParseFailureThenDefaultsApprove(t *testing.T) {
	adapter := modeladapter.NewStubAdapter()
	adapter.Enqueue("critic-model", "not json at all")
	adapter.Enqueue("critic-model", "still not json")

	c := &PlanCritic{Adapter: adapter}
	v := c.Evaluate(context.Background(), "req", testPlan(), "critic-model")

	assert.True(t, v.Approved)
	assert.Equal(t, 2, adapter.CallCount)
	assert.NotEmpty(t, v.Raw)
}

func TestPlanCritic_RecoversOnRetry(t *testing.T) {
	adapter := modeladapter.NewStubAdapter()
	adapter.Enqueue("critic-model", "not json")
	adapter.Enqueue("critic-model", `{"approved": false, "issues": ["[high] area: bad"]}`)

	c := &PlanCritic{Adapter: adapter}
	v := c.Evaluate(context.Background(), "req", testPlan(), "critic-model")

	assert.False(t, v.Approved)
	assert.Equal(t, []string{"[high] area: bad"}, v.Issues)
}

func TestCodeCritic_IsAdvisoryShapeWithMissing(t *testing.T) {
	adapter := modeladapter.NewStubAdapter()
	adapter.Enqueue("critic-model", `{"approved": false, "missing": ["search box"], "issues": ["[medium] msg"]}`)

	c := &CodeCritic{Adapter: adapter}
	v := c.Evaluate(context.Background(), "req", testPlan(), "<html></html>", "critic-model")

	assert.False(t, v.Approved)
	assert.Equal(t, []string{"search box"}, v.Missing)
}
