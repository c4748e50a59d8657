package smoke

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/MohamedAKonsowa/geappliances-ai-tool-prototype/internal/domain"
)

func TestClassifySeverity_MatchesKnownCriticalPatterns(t *testing.T) {
	assert.Equal(t, "critical", classifySeverity("Uncaught TypeError: x is not a function"))
	assert.Equal(t, "critical", classifySeverity("foo is not defined"))
	assert.Equal(t, "critical", classifySeverity("Cannot read property 'bar' of undefined"))
	assert.Equal(t, "non-critical", classifySeverity("deprecation warning: foo"))
}

func TestDecide_FailsOnAnyCriticalError(t *testing.T) {
	assert.True(t, decide(nil))
	assert.True(t, decide([]domain.StructuredError{{Severity: "non-critical"}}))
	assert.False(t, decide([]domain.StructuredError{{Severity: "critical"}, {Severity: "non-critical"}}))
}

func TestDecide_FailsWhenMissingSelectorCountExceedsThree(t *testing.T) {
	missing := func(n int) []domain.StructuredError {
		errs := make([]domain.StructuredError, n)
		for i := range errs {
			errs[i] = domain.StructuredError{Type: "MISSING_ELEMENT", Severity: "non-critical"}
		}
		return errs
	}
	assert.True(t, decide(missing(3)))
	assert.False(t, decide(missing(4)))
}

func TestErrorCapture_FiltersHarmlessPatterns(t *testing.T) {
	c := newErrorCapture()
	c.record(`GET http://localhost/favicon.ico 404 (Not Found)`, true)
	c.record(`WebSocket connection to 'ws://localhost/socket.io/' failed`, true)
	c.record(`ResizeObserver loop limit exceeded`, true)
	c.record(`Uncaught (in promise) 42`, true) // non-Error promise rejection
	assert.Empty(t, c.structuredErrors())
	assert.Empty(t, c.rawLogs())

	c.record("TypeError: x is not a function", true)
	assert.Len(t, c.structuredErrors(), 1)
}

func TestDeriveSelectors_TitleAndMultiPageAreCritical(t *testing.T) {
	plan := &domain.Plan{
		Title: "Dashboard",
		Pages: []string{"home", "settings"},
	}
	sels := deriveSelectors(plan)

	var sawTitle, sawNav bool
	for _, s := range sels {
		if s.description == "document title" {
			sawTitle = true
			assert.Equal(t, "critical", s.severity)
		}
		if s.description == "multi-page navigation" {
			sawNav = true
			assert.Equal(t, "critical", s.severity)
		}
	}
	assert.True(t, sawTitle)
	assert.True(t, sawNav)
}

func TestDeriveSelectors_ComponentClassification(t *testing.T) {
	plan := &domain.Plan{
		UIComponents: []string{"Submit button", "Results table", "Help modal", "Sidebar tab list"},
	}
	sels := deriveSelectors(plan)

	severity := make(map[string]string)
	for _, s := range sels {
		severity[s.description] = s.severity
	}
	assert.Equal(t, "critical", severity["Submit button"])
	assert.Equal(t, "critical", severity["Results table"])
	assert.Equal(t, "non-critical", severity["Help modal"])
}

func TestDeriveSelectors_DataBindingsAddNonCriticalContainer(t *testing.T) {
	plan := &domain.Plan{DataBindings: []string{"products -> #product-list"}}
	sels := deriveSelectors(plan)

	found := false
	for _, s := range sels {
		if s.description == "data-bound container" {
			found = true
			assert.Equal(t, "non-critical", s.severity)
		}
	}
	assert.True(t, found)
}

func TestDeriveSelectors_NilPlanReturnsNoSelectors(t *testing.T) {
	assert.Empty(t, deriveSelectors(nil))
}
