package smoke

import (
	"fmt"
	"strings"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"

	"github.com/MohamedAKonsowa/geappliances-ai-tool-prototype/internal/domain"
)

// criticalPatterns are substrings (case-insensitive) that mark a console
// error or runtime exception as critical rather than advisory, per §4.6.
var criticalPatterns = []string{
	"undefined is not a function",
	"is not defined",
	"cannot read propert",
	"cannot read properties",
	"null is not an object",
	"syntaxerror",
	"typeerror",
	"referenceerror",
}

// harmlessPatterns are substrings (case-insensitive) of console noise that
// §4.6 calls out by name as never surfacing in the pass/fail decision:
// "harmless patterns like favicon 404, socket.io warnings, ResizeObserver
// loop, non-Error promise rejection are filtered out".
var harmlessPatterns = []string{
	"favicon.ico",
	"favicon 404",
	"socket.io",
	"resizeobserver loop",
}

func isHarmless(message string) bool {
	lower := strings.ToLower(message)
	for _, pat := range harmlessPatterns {
		if strings.Contains(lower, pat) {
			return true
		}
	}
	return isNonErrorPromiseRejection(lower)
}

// isNonErrorPromiseRejection matches Chrome's "Uncaught (in promise) <value>"
// when the rejected value isn't an Error (no stack, no "Error" in the text) —
// the harmless case §4.6 calls out by name. A rejection that does carry an
// Error is left alone so it still classifies as critical.
func isNonErrorPromiseRejection(lowerMessage string) bool {
	const prefix = "uncaught (in promise)"
	if !strings.HasPrefix(lowerMessage, prefix) {
		return false
	}
	return !strings.Contains(lowerMessage, "error")
}

func classifySeverity(message string) string {
	lower := strings.ToLower(message)
	for _, pat := range criticalPatterns {
		if strings.Contains(lower, pat) {
			return "critical"
		}
	}
	return "non-critical"
}

// errorCapture listens for console errors and uncaught exceptions on a page,
// adapted from the teacher's startEventStream's RuntimeConsoleAPICalled /
// RuntimeExceptionThrown handling, trimmed to error-severity-only capture
// (no DOM reification, no network logging).
type errorCapture struct {
	mu   sync.Mutex
	raw  []string
	errs []domain.StructuredError
}

func newErrorCapture() *errorCapture {
	return &errorCapture{}
}

// attach registers the event handlers and starts them in the background.
// The returned stop func is a no-op placeholder for symmetry with callers;
// the listener goroutine exits on its own once the page's context
// (page.Context(pageCtx) from Run) is cancelled.
func (c *errorCapture) attach(page *rod.Page) (stop func()) {
	wait := page.EachEvent(
		func(ev *proto.RuntimeConsoleAPICalled) {
			if ev.Type != proto.RuntimeConsoleAPICalledTypeError && ev.Type != proto.RuntimeConsoleAPICalledTypeWarning {
				return
			}
			msg := stringifyConsoleArgs(ev.Args)
			c.record(msg, ev.Type == proto.RuntimeConsoleAPICalledTypeError)
		},
		func(ev *proto.RuntimeExceptionThrown) {
			msg := ev.ExceptionDetails.Text
			if ev.ExceptionDetails.Exception != nil && ev.ExceptionDetails.Exception.Description != "" {
				msg = ev.ExceptionDetails.Exception.Description
			}
			c.record(msg, true)
		},
	)
	go wait()
	return func() {}
}

func (c *errorCapture) record(msg string, isError bool) {
	if isHarmless(msg) {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.raw = append(c.raw, msg)
	if !isError {
		return
	}
	c.errs = append(c.errs, domain.StructuredError{
		Type:     "CONSOLE_ERROR",
		Message:  msg,
		Severity: classifySeverity(msg),
	})
}

func (c *errorCapture) structuredErrors() []domain.StructuredError {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]domain.StructuredError, len(c.errs))
	copy(out, c.errs)
	return out
}

func (c *errorCapture) rawLogs() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.raw))
	copy(out, c.raw)
	return out
}

func stringifyConsoleArgs(args []*proto.RuntimeRemoteObject) string {
	parts := make([]string, 0, len(args))
	for _, a := range args {
		if a == nil {
			continue
		}
		if a.Value != nil {
			parts = append(parts, fmt.Sprintf("%v", a.Value.Val()))
			continue
		}
		if a.Description != "" {
			parts = append(parts, a.Description)
		}
	}
	return strings.Join(parts, " ")
}
