package orchestrator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/MohamedAKonsowa/geappliances-ai-tool-prototype/internal/domain"
	"github.com/MohamedAKonsowa/geappliances-ai-tool-prototype/internal/logging"
	"github.com/MohamedAKonsowa/geappliances-ai-tool-prototype/internal/normalize"
	"github.com/MohamedAKonsowa/geappliances-ai-tool-prototype/internal/progress"
	"github.com/MohamedAKonsowa/geappliances-ai-tool-prototype/internal/prompts"
	"github.com/MohamedAKonsowa/geappliances-ai-tool-prototype/internal/safety"
	"github.com/MohamedAKonsowa/geappliances-ai-tool-prototype/internal/scanner"
	"github.com/MohamedAKonsowa/geappliances-ai-tool-prototype/internal/store"
)

// runState holds everything that accumulates across iterations of a single
// run: the failure memory, the last plan/html seen, and bookkeeping for the
// final RunSummary. One runState is created per Orchestrator.Run call.
type runState struct {
	orch       *Orchestrator
	req        domain.Request
	onProgress progress.Emitter
	runID      string
	layout     store.Layout
	maxIters   int
	models     progress.Models
	fm         *domain.FailureMemory

	history []domain.IterationRecord

	planApproved   bool
	planApprovedAt int
	currentPlan    *domain.Plan

	codeApprovedAt int
	currentHTML    string
	lastHTML       string

	success       bool
	fallback      bool
	testsPassedAt int

	lastSmokeErrors  []domain.StructuredError
	recentCodeIssues []string
	attemptHistory   []string
	lastFailure      string
}

// iterationOutcome is what one call to iterate reports back to Run, beyond
// the sealed IterationRecord: whether this iteration reached success, and
// (for the fallback-success check) whether it saw a security failure or a
// high-severity issue.
type iterationOutcome struct {
	record             domain.IterationRecord
	success            bool
	hadSecurityFailure bool
	hasHighSeverity    bool
}

func (r *runState) emit(ev progress.Event) {
	ev.Models = r.models
	progress.Emit(r.onProgress, ev)
}

func (r *runState) callModel(ctx context.Context, modelID, prompt string) (string, error) {
	cctx, cancel := context.WithTimeout(ctx, r.orch.ModelTimeout)
	defer cancel()
	return r.orch.Adapter.Call(cctx, modelID, prompt)
}

// iterate runs one full pass through Plan -> PlanCritique -> CodeGen ->
// SecurityScan -> CodeCritique -> SmokeTest -> IterationSeal, per the
// gating table in §4.8.
func (r *runState) iterate(ctx context.Context, i int) iterationOutcome {
	log := logging.Get(logging.CategoryOrchestrator)
	rec := domain.IterationRecord{IterationIndex: i, StartTS: time.Now()}
	artifacts := store.IterationArtifacts{}
	out := iterationOutcome{}

	// --- Plan / PlanCritique: only when there is no currently approved plan. ---
	if !r.planApproved {
		r.emit(progress.Event{Type: progress.TypeIter, Iteration: i, MaxIters: r.maxIters, Phase: progress.PhasePlan, Status: progress.StatusWorking})

		planPrompt := prompts.Plan(r.req.Prompt, r.fm)
		artifacts.Prompt = planPrompt

		raw, err := r.callModel(ctx, r.req.PlannerModel, planPrompt)
		if err != nil {
			log.Warn("iter %d: planner call failed: %v", i, err)
			r.lastFailure = "planner call failed: " + err.Error()
			r.emit(progress.Event{Type: progress.TypeIter, Iteration: i, Phase: progress.PhasePlan, Status: progress.StatusFailed, Errors: []string{r.lastFailure}})
			rec.PhaseOutcomes = append(rec.PhaseOutcomes, domain.PhaseOutcome{Phase: progress.PhasePlan, Status: progress.StatusFailed, Detail: r.lastFailure})
			return r.seal(rec, artifacts, out)
		}

		parsed, perr := normalize.JSON(raw)
		if perr != nil {
			log.Warn("iter %d: plan parse failed: %v", i, perr)
			r.lastFailure = "plan did not parse as JSON"
			r.emit(progress.Event{Type: progress.TypeIter, Iteration: i, Phase: progress.PhasePlan, Status: progress.StatusFailed, Errors: []string{r.lastFailure}})
			rec.PhaseOutcomes = append(rec.PhaseOutcomes, domain.PhaseOutcome{Phase: progress.PhasePlan, Status: progress.StatusFailed, Detail: r.lastFailure})
			return r.seal(rec, artifacts, out)
		}

		plan := domain.PlanFromMap(parsed)
		if problems := plan.Validate(); len(problems) > 0 {
			r.fm.AddPlanCritiqueIssues(problems...)
			r.lastFailure = "plan missing required fields: " + strings.Join(problems, "; ")
			r.emit(progress.Event{Type: progress.TypeIter, Iteration: i, Phase: progress.PhasePlan, Status: progress.StatusRejected, Issues: problems})
			rec.PhaseOutcomes = append(rec.PhaseOutcomes, domain.PhaseOutcome{Phase: progress.PhasePlan, Status: progress.StatusRejected, Detail: r.lastFailure})
			artifacts.Plan = plan
			return r.seal(rec, artifacts, out)
		}
		artifacts.Plan = plan
		rec.Plan = plan

		verdict := r.orch.PlanCritic.Evaluate(ctx, r.req.Prompt, plan, r.req.CriticModel)
		artifacts.PlanCritique = verdict
		rec.PlanCritique = verdict

		if !verdict.Approved {
			r.fm.AddPlanCritiqueIssues(verdict.Issues...)
			r.lastFailure = "plan rejected by Plan-Critic"
			out.hasHighSeverity = containsSeverity(verdict.Issues, "high") || containsSeverity(verdict.Issues, "critical")
			r.emit(progress.Event{Type: progress.TypeIter, Iteration: i, Phase: progress.PhasePlan, Status: progress.StatusRejected, Issues: verdict.Issues})
			rec.PhaseOutcomes = append(rec.PhaseOutcomes, domain.PhaseOutcome{Phase: progress.PhasePlan, Status: progress.StatusRejected, Detail: r.lastFailure})
			return r.seal(rec, artifacts, out)
		}

		r.planApproved = true
		r.planApprovedAt = i
		r.currentPlan = plan
		r.emit(progress.Event{Type: progress.TypeIter, Iteration: i, Phase: progress.PhasePlan, Status: progress.StatusApproved})
		rec.PhaseOutcomes = append(rec.PhaseOutcomes, domain.PhaseOutcome{Phase: progress.PhasePlan, Status: progress.StatusApproved})
	}

	// --- CodeGen: fresh or patch, per §4.8's CodeGen gating row. ---
	r.emit(progress.Event{Type: progress.TypeIter, Iteration: i, Phase: progress.PhaseCode, Status: progress.StatusWorking})

	// §4.8's literal condition names security_errors/code_critique_issues;
	// the Patch builder itself also consumes "last smoke errors" as an input
	// (§4.4 table row "Patch"), so a prior smoke failure alone must also
	// select the patch path — otherwise a smoke-only failure would silently
	// regenerate from scratch and lose the failing-selector context (§8 S5).
	needsPatch := r.currentHTML != "" && (len(r.fm.SecurityErrors) > 0 || len(r.fm.CodeCritiqueIssues) > 0 || len(r.lastSmokeErrors) > 0)
	var codePrompt string
	if needsPatch {
		codePrompt = prompts.Patch(prompts.PatchInput{
			CurrentHTML:      r.currentHTML,
			LastSmokeErrors:  r.lastSmokeErrors,
			RecentCodeIssues: r.recentCodeIssues,
			SecurityErrors:   r.fm.SecurityErrors,
			AttemptHistory:   r.attemptHistory,
		})
	} else {
		codePrompt = prompts.Code(r.req.Prompt, r.currentPlan, r.fm, r.orch.LibraryCatalog)
	}
	artifacts.Prompt = codePrompt

	rawHTML, err := r.callModel(ctx, r.req.CoderModel, codePrompt)
	if err != nil {
		log.Warn("iter %d: coder call failed: %v", i, err)
		r.lastFailure = "coder call failed: " + err.Error()
		r.attemptHistory = append(r.attemptHistory, fmt.Sprintf("iteration %d: coder call failed", i))
		r.emit(progress.Event{Type: progress.TypeIter, Iteration: i, Phase: progress.PhaseCode, Status: progress.StatusFailed, Errors: []string{r.lastFailure}})
		rec.PhaseOutcomes = append(rec.PhaseOutcomes, domain.PhaseOutcome{Phase: progress.PhaseCode, Status: progress.StatusFailed, Detail: r.lastFailure})
		return r.seal(rec, artifacts, out)
	}

	html := normalize.HTML(rawHTML)
	rec.PhaseOutcomes = append(rec.PhaseOutcomes, domain.PhaseOutcome{Phase: progress.PhaseCode, Status: progress.StatusWorking})

	// --- SecurityScan: always runs after CodeGen (invariant 1 in §8), on the
	// Coder/Patch output itself — before the Safety Transformer ever touches
	// it. The injected runtime bridge unconditionally calls
	// fetch("/api/runtime/llm", ...) and fetch("/api/runtime/store/"+key, ...)
	// with non-empty URLs, so scanning post-transform would flag the bridge's
	// own fetch() calls as a banned construct on every iteration. The scanner
	// is only ever responsible for vetting what the model wrote.
	scanResult := scanner.Scan(html)
	rec.SecurityScan = &domain.SecurityScanRecord{
		Passed:          scanResult.Passed,
		StructureErrors: scanResult.StructureErrors,
		Summary:         scanResult.Summary,
	}
	for _, v := range scanResult.SecurityViolations {
		rec.SecurityScan.SecurityViolations = append(rec.SecurityScan.SecurityViolations, v.Canonical)
	}

	if !scanResult.Passed {
		names := make([]string, 0, len(scanResult.SecurityViolations))
		for _, v := range scanResult.SecurityViolations {
			names = append(names, v.Canonical)
		}
		r.fm.AddSecurityErrors(names...)
		r.attemptHistory = append(r.attemptHistory, fmt.Sprintf("iteration %d: security scan failed (%s)", i, strings.Join(names, ", ")))
		rec.HTML = html
		artifacts.HTML = html
		r.lastHTML = safety.Transform(html, r.runID, r.req.RuntimeModel)

		// Invalidate the plan so the next iteration re-plans with explicit
		// "do not use X" directions (§4.8 "invalidate the plan"). currentHTML
		// (the Patch trigger) is cleared, but lastHTML — what final.html gets
		// written from — keeps the last code the run actually produced, passed
		// through the Safety Transformer like every other final.html.
		r.planApproved = false
		r.currentPlan = nil
		r.currentHTML = ""

		out.hadSecurityFailure = true
		r.lastFailure = "security scan rejected: " + strings.Join(names, ", ")
		r.emit(progress.Event{Type: progress.TypeIter, Iteration: i, Phase: progress.PhaseSecurityScan, Status: progress.StatusSecurityFailed, Violations: names})
		rec.PhaseOutcomes = append(rec.PhaseOutcomes, domain.PhaseOutcome{Phase: progress.PhaseSecurityScan, Status: progress.StatusSecurityFailed, Detail: r.lastFailure})
		return r.seal(rec, artifacts, out)
	}
	r.emit(progress.Event{Type: progress.TypeIter, Iteration: i, Phase: progress.PhaseSecurityScan, Status: progress.StatusPassed})
	rec.PhaseOutcomes = append(rec.PhaseOutcomes, domain.PhaseOutcome{Phase: progress.PhaseSecurityScan, Status: progress.StatusPassed})
	r.codeApprovedAt = i

	// Only a scan-clean document ever receives the CSP meta + runtime bridge;
	// CodeCritique, the smoke harness, and the stored artifacts all see the
	// transformed HTML from here on.
	html = safety.Transform(html, r.runID, r.req.RuntimeModel)
	artifacts.HTML = html
	rec.HTML = html
	r.currentHTML = html
	r.lastHTML = html

	// --- CodeCritique: advisory only, never blocks (§4.5). ---
	codeVerdict := r.orch.CodeCritic.Evaluate(ctx, r.req.Prompt, r.currentPlan, html, r.req.CriticModel)
	artifacts.CodeCritique = codeVerdict
	rec.CodeCritique = codeVerdict

	var issueLines []string
	issueLines = append(issueLines, codeVerdict.Issues...)
	for _, m := range codeVerdict.Missing {
		issueLines = append(issueLines, "Missing: "+m)
	}
	if len(issueLines) > 0 {
		r.fm.AddCodeCritiqueIssues(issueLines...)
		r.recentCodeIssues = issueLines
		out.hasHighSeverity = out.hasHighSeverity || containsSeverity(issueLines, "high") || containsSeverity(issueLines, "critical")
		r.emit(progress.Event{Type: progress.TypeIter, Iteration: i, Phase: progress.PhaseCodeCritique, Status: progress.StatusAdvisoryIssues, Issues: issueLines, Missing: codeVerdict.Missing})
		rec.PhaseOutcomes = append(rec.PhaseOutcomes, domain.PhaseOutcome{Phase: progress.PhaseCodeCritique, Status: progress.StatusAdvisoryIssues})
	} else {
		r.emit(progress.Event{Type: progress.TypeIter, Iteration: i, Phase: progress.PhaseCodeCritique, Status: progress.StatusApproved})
		rec.PhaseOutcomes = append(rec.PhaseOutcomes, domain.PhaseOutcome{Phase: progress.PhaseCodeCritique, Status: progress.StatusApproved})
	}

	// --- SmokeTest: after CodeCritique regardless of its outcome (§4.8). ---
	smokeResult := r.orch.Smoke.Run(ctx, html, r.currentPlan)
	artifacts.SmokeTest = &smokeResult
	rec.SmokeResult = &smokeResult

	if smokeResult.Passed {
		r.emit(progress.Event{Type: progress.TypeIter, Iteration: i, Phase: progress.PhaseTests, Status: progress.StatusPassed})
		rec.PhaseOutcomes = append(rec.PhaseOutcomes, domain.PhaseOutcome{Phase: progress.PhaseTests, Status: progress.StatusPassed})
		rec.Success = true
		out.success = true
		r.emit(progress.Event{Type: progress.TypeSuccess, Iteration: i, Fallback: false})
		return r.seal(rec, artifacts, out)
	}

	r.lastSmokeErrors = smokeResult.StructuredErrors
	var errMessages []string
	for _, e := range smokeResult.StructuredErrors {
		errMessages = append(errMessages, e.Message)
		if strings.EqualFold(e.Severity, "critical") {
			out.hasHighSeverity = true
		}
	}
	r.attemptHistory = append(r.attemptHistory, fmt.Sprintf("iteration %d: smoke test failed (%d structured errors)", i, len(smokeResult.StructuredErrors)))
	r.lastFailure = "smoke test failed"
	r.emit(progress.Event{Type: progress.TypeIter, Iteration: i, Phase: progress.PhaseTests, Status: progress.StatusFailed, Errors: errMessages})
	rec.PhaseOutcomes = append(rec.PhaseOutcomes, domain.PhaseOutcome{Phase: progress.PhaseTests, Status: progress.StatusFailed})

	return r.seal(rec, artifacts, out)
}

// seal writes the iteration's artifacts (fan-out/fan-in via the store) and
// stamps EndTS, finishing the IterationSeal phase of §4.8.
func (r *runState) seal(rec domain.IterationRecord, artifacts store.IterationArtifacts, out iterationOutcome) iterationOutcome {
	rec.EndTS = time.Now()
	if err := r.orch.Store.WriteIteration(context.Background(), r.layout, rec.IterationIndex, artifacts); err != nil {
		logging.Get(logging.CategoryOrchestrator).Error("iteration %d artifact write failed: %v", rec.IterationIndex, err)
	}
	out.record = rec
	return out
}

func containsSeverity(lines []string, severity string) bool {
	needle := "[" + strings.ToLower(severity) + "]"
	for _, l := range lines {
		if strings.Contains(strings.ToLower(l), needle) {
			return true
		}
	}
	return false
}

// buildSummary renders the terminal RunSummary once the loop has ended,
// whether by success, fallback success, or maxIters exhaustion.
func (r *runState) buildSummary() *domain.RunSummary {
	var reports []string
	for _, rec := range r.history {
		for _, p := range rec.PhaseOutcomes {
			if p.Status == "failed" || p.Status == "rejected" || p.Status == "security_failed" {
				reports = append(reports, fmt.Sprintf("iter %d [%s] %s: %s", rec.IterationIndex, p.Phase, p.Status, p.Detail))
			}
		}
	}

	return &domain.RunSummary{
		RunID:                     r.runID,
		Success:                   r.success,
		TotalIterations:           len(r.history),
		PlanApprovedAt:            r.planApprovedAt,
		CodeApprovedAt:            r.codeApprovedAt,
		TestsPassedAt:             r.testsPassedAt,
		LastFailure:               r.lastFailure,
		AccumulatedSecurityErrors: r.fm.SecurityErrors,
		FailureReports:            reports,
		Timestamp:                 time.Now(),
		Fallback:                  r.fallback,
	}
}
