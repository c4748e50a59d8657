package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTML_AlreadyWellFormed(t *testing.T) {
	in := "<!DOCTYPE html><html><body>hi</body></html>"
	assert.Equal(t, in, HTML(in))
}

func TestHTML_FencedBlock(t *testing.T) {
	in := "Here you go:\n```html\n<!DOCTYPE html><html><body>x</body></html>\n```\nEnjoy."
	got := HTML(in)
	assert.Equal(t, "<!DOCTYPE html><html><body>x</body></html>", got)
}

func TestHTML_ProseWrapped(t *testing.T) {
	in := "Sure, here's the app:\n<html><body>y</body></html>\nLet me know if you need changes."
	got := HTML(in)
	assert.Equal(t, "<html><body>y</body></html>", got)
}

func TestHTML_FallsBackToTrimmedInput(t *testing.T) {
	in := "   not html at all   "
	assert.Equal(t, "not html at all", HTML(in))
}

func TestHTML_NeverFails(t *testing.T) {
	inputs := []string{"", "   ", "```\n```", "<html", "</html>"}
	for _, in := range inputs {
		assert.NotPanics(t, func() { HTML(in) })
	}
}
