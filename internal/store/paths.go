package store

import (
	"fmt"
	"path/filepath"
)

// Layout describes the on-disk paths for one run, matching §4.7 exactly:
// iter_<N>/{prompt.txt, plan.json, plan_critique.json, html.html,
// code_critique.json, smoke_test.json, meta.json}, plus
// final_plan.json, final.html, summary.json at the run root.
type Layout struct {
	Root string // <artifact-store-root>/<run_id>
}

// NewLayout returns the Layout for runID rooted at storeRoot.
func NewLayout(storeRoot, runID string) Layout {
	return Layout{Root: filepath.Join(storeRoot, runID)}
}

func (l Layout) IterDir(iteration int) string {
	return filepath.Join(l.Root, fmt.Sprintf("iter_%d", iteration))
}

func (l Layout) PromptPath(iteration int) string        { return filepath.Join(l.IterDir(iteration), "prompt.txt") }
func (l Layout) PlanPath(iteration int) string           { return filepath.Join(l.IterDir(iteration), "plan.json") }
func (l Layout) PlanCritiquePath(iteration int) string   { return filepath.Join(l.IterDir(iteration), "plan_critique.json") }
func (l Layout) HTMLPath(iteration int) string           { return filepath.Join(l.IterDir(iteration), "html.html") }
func (l Layout) CodeCritiquePath(iteration int) string   { return filepath.Join(l.IterDir(iteration), "code_critique.json") }
func (l Layout) SmokeTestPath(iteration int) string      { return filepath.Join(l.IterDir(iteration), "smoke_test.json") }
func (l Layout) MetaPath(iteration int) string            { return filepath.Join(l.IterDir(iteration), "meta.json") }

func (l Layout) FinalPlanPath() string { return filepath.Join(l.Root, "final_plan.json") }
func (l Layout) FinalHTMLPath() string { return filepath.Join(l.Root, "final.html") }
func (l Layout) SummaryPath() string   { return filepath.Join(l.Root, "summary.json") }
