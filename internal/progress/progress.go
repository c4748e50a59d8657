// Package progress defines the ordered event schema the orchestrator streams
// to an injected callback while it drives a run (SPEC_FULL.md §6.3). Events
// are plain values; nothing in this package blocks or buffers — delivery
// order is the caller's responsibility (see internal/orchestrator).
package progress

import "time"

// Phase names recognized in an Event's Phase field.
const (
	PhaseStart        = "start"
	PhasePlan         = "plan"
	PhasePlanCritique = "plan_critique"
	PhaseCode         = "code"
	PhaseCodeCritique = "code_critique"
	PhaseSecurityScan = "security_scan"
	PhaseTests        = "tests"
)

// Status values recognized in an Event's Status field.
const (
	StatusWorking         = "working"
	StatusApproved        = "approved"
	StatusRejected        = "rejected"
	StatusAdvisoryIssues  = "advisory_issues"
	StatusSecurityFailed  = "security_failed"
	StatusFailed          = "failed"
	StatusPassed          = "passed"
)

// Type values recognized in an Event's Type field.
const (
	TypeStart    = "start"
	TypeIter     = "iteration"
	TypeSuccess  = "success"
	TypeComplete = "complete"
	TypeError    = "error"
)

// Models records which model id backs each of the three roles plus the
// runtime model, echoed on every event per §6.3 ("All events share
// {models: {planner, coder, critic, runtime}}").
type Models struct {
	Planner string `json:"planner"`
	Coder   string `json:"coder"`
	Critic  string `json:"critic"`
	Runtime string `json:"runtime"`
}

// Event is one progress notification emitted by the orchestrator. Not every
// field is populated for every Type; see the doc comments on each field.
type Event struct {
	Type      string    `json:"type"`
	Models    Models    `json:"models"`
	Timestamp time.Time `json:"timestamp"`

	// start
	RunID    string `json:"run_id,omitempty"`
	MaxIters int    `json:"max_iters,omitempty"`

	// iteration
	Iteration int    `json:"iteration,omitempty"`
	Phase     string `json:"phase,omitempty"`
	Status    string `json:"status,omitempty"`
	Issues    []string `json:"issues,omitempty"`
	Missing   []string `json:"missing,omitempty"`
	Errors    []string `json:"errors,omitempty"`
	Violations []string `json:"violations,omitempty"`
	FatalError string  `json:"fatal_error,omitempty"`

	// success
	Fallback bool `json:"fallback,omitempty"`

	// complete
	Summary any `json:"summary,omitempty"`

	// error
	Error string `json:"error,omitempty"`
}

// Emitter is the callback signature the orchestrator's upstream interface
// accepts as onProgress (§6.1). A nil Emitter is valid and means "no one is
// listening" — callers must tolerate that without blocking.
type Emitter func(Event)

// Emit calls fn if it is non-nil, stamping Timestamp if the caller left it
// zero. This is the only way orchestrator code should send an event, so
// every call site gets the same nil-safety and timestamp behavior.
func Emit(fn Emitter, ev Event) {
	if fn == nil {
		return
	}
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now()
	}
	fn(ev)
}
