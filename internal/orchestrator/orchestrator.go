// Package orchestrator drives the DS-Star state machine: per iteration,
// Plan -> PlanCritique -> CodeGen -> SecurityScan -> CodeCritique ->
// SmokeTest -> IterationSeal (SPEC_FULL.md §4.8). It is implemented as
// direct Go control flow — a run method stepping through named phase
// functions — rather than as Datalog facts/rules over an embedded kernel;
// see DESIGN.md for why the teacher's google/mangle gating mechanism was not
// adopted for this small, fixed transition table.
package orchestrator

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/MohamedAKonsowa/geappliances-ai-tool-prototype/internal/critics"
	"github.com/MohamedAKonsowa/geappliances-ai-tool-prototype/internal/domain"
	"github.com/MohamedAKonsowa/geappliances-ai-tool-prototype/internal/logging"
	"github.com/MohamedAKonsowa/geappliances-ai-tool-prototype/internal/modeladapter"
	"github.com/MohamedAKonsowa/geappliances-ai-tool-prototype/internal/progress"
	"github.com/MohamedAKonsowa/geappliances-ai-tool-prototype/internal/store"
)

// ErrMaxIters is returned by Run as its error value, alongside the full
// RunResult, when a run exhausts maxIters without success or fallback
// success.
var ErrMaxIters = fmt.Errorf("orchestrator: exhausted max iterations without success")

// SmokeRunner is the capability the orchestrator depends on for behavioral
// probing (§4.6). internal/smoke.Harness satisfies it; tests substitute a
// deterministic stub (Design Note §9 "Pluggable agents").
type SmokeRunner interface {
	Run(ctx context.Context, html string, plan *domain.Plan) domain.SmokeResult
}

// PlanCriticEvaluator and CodeCriticEvaluator are the capabilities
// internal/critics.PlanCritic/CodeCritic satisfy; declared here so tests can
// substitute stubs without constructing a real modeladapter.Adapter.
type PlanCriticEvaluator interface {
	Evaluate(ctx context.Context, userPrompt string, plan *domain.Plan, modelID string) *domain.CriticVerdict
}

type CodeCriticEvaluator interface {
	Evaluate(ctx context.Context, userPrompt string, plan *domain.Plan, html, modelID string) *domain.CriticVerdict
}

// Orchestrator wires together every capability a run depends on. None of the
// fields are concrete-typed beyond Adapter and Store, per "Pluggable
// agents" — everything else is an interface satisfied by the real
// implementations (internal/critics, internal/smoke) or a test stub.
type Orchestrator struct {
	Adapter     modeladapter.Adapter
	PlanCritic  PlanCriticEvaluator
	CodeCritic  CodeCriticEvaluator
	Smoke       SmokeRunner
	Store       *store.ArtifactStore
	ModelTimeout time.Duration
	LibraryCatalog string
}

// New constructs an Orchestrator from concrete components, defaulting
// ModelTimeout to 120s per §5 when timeout <= 0.
func New(adapter modeladapter.Adapter, planCritic *critics.PlanCritic, codeCritic *critics.CodeCritic, smokeRunner SmokeRunner, artifactStore *store.ArtifactStore, timeout time.Duration) *Orchestrator {
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &Orchestrator{
		Adapter:      adapter,
		PlanCritic:   planCritic,
		CodeCritic:   codeCritic,
		Smoke:        smokeRunner,
		Store:        artifactStore,
		ModelTimeout: timeout,
	}
}

// RunResult is the upstream return shape from §6.1:
// {run_id, success, final_plan, final_html_path, summary, history, failure_reports, security_errors}.
type RunResult struct {
	RunID           string
	Success         bool
	FinalPlan       *domain.Plan
	FinalHTMLPath   string
	Summary         *domain.RunSummary
	History         []domain.IterationRecord
	FailureReports  []string
	SecurityErrors  []string
}

// Run drives one complete synthesis run for req, streaming progress to
// onProgress (which may be nil), and returns the upstream result shape.
func (o *Orchestrator) Run(ctx context.Context, req domain.Request, onProgress progress.Emitter) (*RunResult, error) {
	maxIters := req.MaxIters
	if maxIters <= 0 {
		maxIters = 8
	}

	runID, layout := o.Store.NewRun(time.Now())
	models := progress.Models{Planner: req.PlannerModel, Coder: req.CoderModel, Critic: req.CriticModel, Runtime: req.RuntimeModel}
	log := logging.Get(logging.CategoryOrchestrator)

	progress.Emit(onProgress, progress.Event{Type: progress.TypeStart, Models: models, RunID: runID, MaxIters: maxIters})

	run := &runState{
		orch:       o,
		req:        req,
		onProgress: onProgress,
		runID:      runID,
		layout:     layout,
		maxIters:   maxIters,
		models:     models,
		fm:         &domain.FailureMemory{},
	}

	fallbackThreshold := int(math.Ceil(0.75 * float64(maxIters)))

	for i := 1; i <= maxIters; i++ {
		outcome := run.iterate(ctx, i)
		run.history = append(run.history, outcome.record)

		if outcome.success {
			run.success = true
			run.testsPassedAt = i
			break
		}

		// Fallback success (§4.8 "Success"): at iteration >= ceil(0.75*maxIters),
		// with a currently approved plan and no security/high-severity entry in
		// *this* iteration's own failure report (Open Question in §9, resolved
		// to "current iteration only").
		if i >= fallbackThreshold && run.planApproved && !outcome.hadSecurityFailure && !outcome.hasHighSeverity {
			run.success = true
			run.fallback = true
			run.testsPassedAt = i
			run.emit(progress.Event{Type: progress.TypeSuccess, Iteration: i, Fallback: true})
			break
		}
	}

	summary := run.buildSummary()
	if err := o.Store.WriteFinalHTML(layout, run.lastHTML); err != nil {
		log.Error("final.html write failed for %s: %v", runID, err)
	}
	if run.currentPlan != nil {
		_ = o.Store.WriteFinalPlan(layout, run.currentPlan)
	}
	if err := o.Store.WriteSummary(layout, summary); err != nil {
		log.Error("summary.json write failed for %s: %v", runID, err)
	}

	progress.Emit(onProgress, progress.Event{Type: progress.TypeComplete, Models: models, Summary: summary})

	result := &RunResult{
		RunID:          runID,
		Success:        run.success,
		FinalPlan:      run.currentPlan,
		FinalHTMLPath:  layout.FinalHTMLPath(),
		Summary:        summary,
		History:        run.history,
		FailureReports: summary.FailureReports,
		SecurityErrors: run.fm.SecurityErrors,
	}
	if !run.success {
		return result, ErrMaxIters
	}
	return result, nil
}
