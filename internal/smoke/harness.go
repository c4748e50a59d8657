// Package smoke drives a headless Chrome instance against generated HTML and
// reports console errors, uncaught exceptions, and basic interaction
// failures (SPEC_FULL.md §4.6 "Smoke test"). Grounded on the teacher's
// internal/browser.SessionManager.Start/CreateSession launch sequence, but
// trimmed to a single throwaway incognito page per run instead of a
// multi-session DOM-to-Mangle reification pipeline.
package smoke

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/MohamedAKonsowa/geappliances-ai-tool-prototype/internal/domain"
	"github.com/MohamedAKonsowa/geappliances-ai-tool-prototype/internal/logging"
)

// Config controls how the harness launches and drives Chrome.
type Config struct {
	DebuggerURL         string
	Headless            bool
	ViewportWidth       int
	ViewportHeight      int
	NavigationTimeoutMs int
	SettleTimeMs        int
}

func (c Config) navigationTimeout() time.Duration {
	if c.NavigationTimeoutMs <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.NavigationTimeoutMs) * time.Millisecond
}

func (c Config) settleTime() time.Duration {
	if c.SettleTimeMs <= 0 {
		return 1500 * time.Millisecond
	}
	return time.Duration(c.SettleTimeMs) * time.Millisecond
}

// Harness owns a single browser connection reused across iterations within a
// run, mirroring the teacher's one-SessionManager-per-run lifetime.
type Harness struct {
	cfg     Config
	browser *rod.Browser
}

// New constructs a Harness without connecting. Connect is lazy, on first Run.
func New(cfg Config) *Harness {
	return &Harness{cfg: cfg}
}

// Close releases the underlying browser, if one was launched.
func (h *Harness) Close() {
	if h.browser != nil {
		_ = h.browser.Close()
		h.browser = nil
	}
}

func (h *Harness) ensureBrowser() error {
	if h.browser != nil {
		if _, err := h.browser.Version(); err == nil {
			return nil
		}
		_ = h.browser.Close()
		h.browser = nil
	}

	controlURL := h.cfg.DebuggerURL
	if controlURL == "" {
		url, err := launcher.New().Headless(h.cfg.Headless).Launch()
		if err != nil {
			return fmt.Errorf("smoke: launch chrome: %w", err)
		}
		controlURL = url
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		return fmt.Errorf("smoke: connect chrome: %w", err)
	}
	h.browser = browser
	return nil
}

// Run loads html in a fresh incognito page, captures console/runtime errors,
// exercises interactions derived from plan, and returns a pass/fail verdict
// per §4.6. If Chrome cannot be reached at all, Run returns a
// skipped-but-passing result rather than failing the iteration — an
// unavailable browser must never block the pipeline (§4.6 "Graceful
// degradation").
func (h *Harness) Run(ctx context.Context, html string, plan *domain.Plan) domain.SmokeResult {
	if err := h.ensureBrowser(); err != nil {
		logging.Get(logging.CategorySmoke).Warn("chrome unavailable, skipping smoke test: %v", err)
		return domain.SmokeResult{Passed: true, Skipped: true}
	}

	incognito, err := h.browser.Incognito()
	if err != nil {
		logging.Get(logging.CategorySmoke).Warn("incognito context failed, skipping: %v", err)
		return domain.SmokeResult{Passed: true, Skipped: true}
	}
	defer func() { _ = incognito.Close() }()

	page, err := incognito.Page(proto.TargetCreateTarget{})
	if err != nil {
		logging.Get(logging.CategorySmoke).Warn("page creation failed, skipping: %v", err)
		return domain.SmokeResult{Passed: true, Skipped: true}
	}
	defer func() { _ = page.Close() }()

	pageCtx, cancel := context.WithTimeout(ctx, h.cfg.navigationTimeout())
	defer cancel()
	page = page.Context(pageCtx)

	capture := newErrorCapture()
	stopListening := capture.attach(page)
	defer stopListening()

	if err := page.SetDocumentContent(html); err != nil {
		return domain.SmokeResult{
			Passed: false,
			StructuredErrors: []domain.StructuredError{{
				Type:     "LOAD_FAILURE",
				Message:  err.Error(),
				Severity: "critical",
			}},
		}
	}

	time.Sleep(h.cfg.settleTime())

	selectors := deriveSelectors(plan)
	interactionErrs := runInteractions(page, selectors)

	structured := capture.structuredErrors()
	structured = append(structured, interactionErrs...)

	logs := capture.rawLogs()
	passed := decide(structured)

	return domain.SmokeResult{
		Passed:           passed,
		Results:          selectorResultSummaries(selectors, structured),
		Logs:             logs,
		StructuredErrors: structured,
	}
}

// maxMissingSelectors is the §4.6 cap: "the total missing-selector count <= 3".
const maxMissingSelectors = 3

// decide implements §4.6's pass/fail rule: any critical-severity structured
// error fails the smoke test, and so does a total missing-selector count
// (critical or not) above maxMissingSelectors, even when none of those
// misses is individually critical.
func decide(errs []domain.StructuredError) bool {
	missing := 0
	for _, e := range errs {
		if strings.EqualFold(e.Severity, "critical") {
			return false
		}
		if e.Type == "MISSING_ELEMENT" {
			missing++
		}
	}
	return missing <= maxMissingSelectors
}

func selectorResultSummaries(sels []uiSelector, errs []domain.StructuredError) []string {
	out := make([]string, 0, len(sels))
	for _, s := range sels {
		out = append(out, fmt.Sprintf("%s (%s): checked", s.description, s.severity))
	}
	return out
}
