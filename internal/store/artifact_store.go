package store

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/MohamedAKonsowa/geappliances-ai-tool-prototype/internal/domain"
)

// ArtifactStore owns the flat per-run directory tree under Root (§4.7). It
// is the only shared resource in the system (§5); every write goes through a
// per-run Layout, so concurrent runs never touch the same path.
type ArtifactStore struct {
	Root  string
	Index *RunIndex // nil if the advisory SQLite index is unavailable
}

// Open returns an ArtifactStore rooted at root that records finished runs in
// index, which may be nil. Open does not open the index itself: the caller
// opens <root>/runs.db with OpenRunIndex and reports any failure there — per
// §4.7 the index is advisory.
func Open(root string, index *RunIndex) *ArtifactStore {
	return &ArtifactStore{Root: root, Index: index}
}

// NewRun allocates a fresh run id and its Layout.
func (s *ArtifactStore) NewRun(now time.Time) (string, Layout) {
	runID := NewRunID(now)
	return runID, NewLayout(s.Root, runID)
}

// IterationArtifacts bundles everything one iteration may have produced.
// Every field is optional; WriteIteration writes only what's non-empty/non-nil,
// matching §4.7 "each file present only if the corresponding phase produced it".
type IterationArtifacts struct {
	Prompt       string
	Plan         *domain.Plan
	PlanCritique *domain.CriticVerdict
	HTML         string
	CodeCritique *domain.CriticVerdict
	SmokeTest    *domain.SmokeResult
	Meta         map[string]any
}

// WriteIteration fans out one write per non-empty field concurrently via
// errgroup, per §4.8 "Artifact writes within an iteration are fan-out/fan-in
// parallel." It returns the first error encountered, after all writes have
// been attempted.
func (s *ArtifactStore) WriteIteration(ctx context.Context, layout Layout, iteration int, a IterationArtifacts) error {
	g, _ := errgroup.WithContext(ctx)

	if a.Prompt != "" {
		g.Go(func() error { return writeText(layout.PromptPath(iteration), a.Prompt) })
	}
	if a.Plan != nil {
		g.Go(func() error { return writeJSON(layout.PlanPath(iteration), a.Plan) })
	}
	if a.PlanCritique != nil {
		g.Go(func() error { return writeJSON(layout.PlanCritiquePath(iteration), a.PlanCritique) })
	}
	if a.HTML != "" {
		g.Go(func() error { return writeText(layout.HTMLPath(iteration), a.HTML) })
	}
	if a.CodeCritique != nil {
		g.Go(func() error { return writeJSON(layout.CodeCritiquePath(iteration), a.CodeCritique) })
	}
	if a.SmokeTest != nil {
		g.Go(func() error { return writeJSON(layout.SmokeTestPath(iteration), a.SmokeTest) })
	}
	if a.Meta != nil {
		g.Go(func() error { return writeJSON(layout.MetaPath(iteration), a.Meta) })
	}

	return g.Wait()
}

// WriteFinalPlan persists the approved plan as final_plan.json.
func (s *ArtifactStore) WriteFinalPlan(layout Layout, plan *domain.Plan) error {
	if plan == nil {
		return nil
	}
	return writeJSON(layout.FinalPlanPath(), plan)
}

// WriteFinalHTML persists html as final.html. Per the invariant in §3, this
// is written exactly once per run — the orchestrator calls it with the last
// HTML the Safety Transformer produced, regardless of outcome, so a failed
// run is still inspectable.
func (s *ArtifactStore) WriteFinalHTML(layout Layout, html string) error {
	return writeText(layout.FinalHTMLPath(), html)
}

// WriteSummary persists the run summary last, after every other artifact is
// durably on disk (§4.7 "The orchestrator writes the summary last"), then
// advisedly records the run in the SQLite index.
func (s *ArtifactStore) WriteSummary(layout Layout, summary *domain.RunSummary) error {
	if err := writeJSON(layout.SummaryPath(), summary); err != nil {
		return err
	}
	if s.Index != nil {
		s.Index.Record(summary) // advisory: failure is logged by RunIndex, never returned here
	}
	return nil
}
