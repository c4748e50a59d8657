package smoke

import (
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"

	"github.com/MohamedAKonsowa/geappliances-ai-tool-prototype/internal/domain"
)

const (
	maxButtonsClicked = 5
	maxInputsFilled   = 3
)

// runInteractions exercises derived selectors (clicking buttons, filling
// inputs, touching selects) and reports a MISSING_ELEMENT structured error
// for every selector absent from the DOM, critical or not, per §4.6: a
// critical miss always fails the smoke test, and every miss (critical or
// non-critical) counts toward the "total missing-selector count <= 3" cap
// that decide() enforces.
func runInteractions(page *rod.Page, selectors []uiSelector) []domain.StructuredError {
	var errs []domain.StructuredError
	buttonsClicked := 0
	inputsFilled := 0

	for _, sel := range selectors {
		els, err := page.Elements(sel.css)
		if err != nil || len(els) == 0 {
			errs = append(errs, domain.StructuredError{
				Type:         "MISSING_ELEMENT",
				Message:      "expected element for \"" + sel.description + "\" not found (selector: " + sel.css + ")",
				Severity:     sel.severity,
				SuggestedFix: "render an element matching " + sel.css + " for " + sel.description,
			})
			continue
		}

		switch sel.kind {
		case "button":
			if buttonsClicked >= maxButtonsClicked {
				continue
			}
			el := els[0]
			if clickErr := el.Click(proto.InputMouseButtonLeft, 1); clickErr != nil {
				errs = append(errs, domain.StructuredError{
					Type:     "INTERACTION_FAILURE",
					Message:  "click failed for \"" + sel.description + "\": " + clickErr.Error(),
					Severity: "non-critical",
				})
			}
			buttonsClicked++
		case "input":
			if inputsFilled >= maxInputsFilled {
				continue
			}
			el := els[0]
			if inputErr := el.Input("test"); inputErr != nil {
				errs = append(errs, domain.StructuredError{
					Type:     "INTERACTION_FAILURE",
					Message:  "input failed for \"" + sel.description + "\": " + inputErr.Error(),
					Severity: "non-critical",
				})
			}
			inputsFilled++
		case "select":
			el := els[0]
			_, _ = el.Text()
		}
	}

	return errs
}
