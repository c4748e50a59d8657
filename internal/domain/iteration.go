package domain

import "time"

// PhaseOutcome records the result of a single orchestrator phase within one
// iteration, suitable for JSON persistence in an Iteration Record.
type PhaseOutcome struct {
	Phase    string `json:"phase"`
	Status   string `json:"status"`
	Detail   string `json:"detail,omitempty"`
	Duration string `json:"duration,omitempty"`
}

// IterationRecord is the tuple captured per loop turn (§3). It is immutable
// once sealed by the orchestrator's IterationSeal phase.
type IterationRecord struct {
	IterationIndex int            `json:"iteration_index"`
	PhaseOutcomes  []PhaseOutcome `json:"phase_outcomes"`

	Plan          *Plan          `json:"plan,omitempty"`
	PlanCritique  *CriticVerdict `json:"plan_critique,omitempty"`
	HTML          string         `json:"html,omitempty"`
	SecurityScan  *SecurityScanRecord `json:"security_scan"`
	CodeCritique  *CriticVerdict `json:"code_critique,omitempty"`
	SmokeResult   *SmokeResult   `json:"smoke_result,omitempty"`

	StartTS time.Time `json:"start_ts"`
	EndTS   time.Time `json:"end_ts"`
	Success bool      `json:"success"`
}

// SecurityScanRecord is the persisted shape of a scanner.Result, kept here
// (rather than importing internal/scanner) so internal/domain stays free of
// dependencies on any other internal package.
type SecurityScanRecord struct {
	Passed             bool     `json:"passed"`
	SecurityViolations []string `json:"security_violations"`
	StructureErrors    []string `json:"structure_errors"`
	Summary            string   `json:"summary"`
}

// CriticVerdict is the normalized output both critics produce (§4.5).
type CriticVerdict struct {
	Approved          bool     `json:"approved"`
	Issues            []string `json:"issues,omitempty"`
	Missing           []string `json:"missing,omitempty"`
	SuggestedPatch    string   `json:"suggestedPatchPrompt,omitempty"`
	FixInstructions   string   `json:"fixInstructions,omitempty"`
	Raw               string   `json:"raw,omitempty"`
}

// StructuredError is one behavioral error the smoke harness captured
// (§4.6 step 1).
type StructuredError struct {
	Type          string `json:"type"`
	Message       string `json:"message"`
	Severity      string `json:"severity"`
	SuggestedFix  string `json:"suggestedFix,omitempty"`
}

// SmokeResult is the smoke harness's verdict for one (html, plan) pair
// (§4.6).
type SmokeResult struct {
	Passed           bool              `json:"passed"`
	Skipped          bool              `json:"skipped,omitempty"`
	Results          []string          `json:"results,omitempty"`
	Logs             []string          `json:"logs,omitempty"`
	StructuredErrors []StructuredError `json:"structured_errors,omitempty"`
}
