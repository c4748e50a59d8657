package modeladapter

import (
	"context"
	"fmt"
	"sync"
)

// StubAdapter is a deterministic, scriptable adapter used by tests and by
// the CLI's --dry-run mode. Responses are consumed in FIFO order per
// modelID; if a modelID's queue is exhausted, StubAdapter falls back to a
// single default responder if one is configured, else returns an error.
type StubAdapter struct {
	mu        sync.Mutex
	queues    map[string][]string
	errors    map[string][]error
	Default   func(modelID, prompt string) (string, error)
	CallCount int
	Calls     []StubCall
}

// StubCall records one Call invocation for assertions in tests.
type StubCall struct {
	ModelID string
	Prompt  string
}

// NewStubAdapter returns an empty StubAdapter; use Enqueue/EnqueueError to
// script responses before driving the orchestrator against it.
func NewStubAdapter() *StubAdapter {
	return &StubAdapter{
		queues: make(map[string][]string),
		errors: make(map[string][]error),
	}
}

// Enqueue schedules text as the next successful response for modelID.
func (s *StubAdapter) Enqueue(modelID, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queues[modelID] = append(s.queues[modelID], text)
	s.errors[modelID] = append(s.errors[modelID], nil)
}

// EnqueueError schedules err as the next Call outcome for modelID.
func (s *StubAdapter) EnqueueError(modelID string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queues[modelID] = append(s.queues[modelID], "")
	s.errors[modelID] = append(s.errors[modelID], err)
}

// Call implements Adapter.
func (s *StubAdapter) Call(ctx context.Context, modelID, prompt string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.CallCount++
	s.Calls = append(s.Calls, StubCall{ModelID: modelID, Prompt: prompt})

	if err := ctx.Err(); err != nil {
		return "", err
	}

	q := s.queues[modelID]
	if len(q) == 0 {
		if s.Default != nil {
			return s.Default(modelID, prompt)
		}
		return "", fmt.Errorf("modeladapter: stub has no queued response for %q", modelID)
	}

	text := q[0]
	err := s.errors[modelID][0]
	s.queues[modelID] = q[1:]
	s.errors[modelID] = s.errors[modelID][1:]
	return text, err
}
