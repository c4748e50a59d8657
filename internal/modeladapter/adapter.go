// Package modeladapter defines the single text-in/text-out capability the
// orchestrator depends on for all three model roles (SPEC_FULL.md §6.2). The
// core makes no assumption about model families — role-to-model mapping is
// resolved entirely by the caller.
package modeladapter

import "context"

// Adapter is the one operation the orchestrator consumes from a model
// provider. Implementations must honor ctx's deadline; a call that runs past
// it should return a context.DeadlineExceeded-wrapping error.
type Adapter interface {
	Call(ctx context.Context, modelID, prompt string) (string, error)
}
