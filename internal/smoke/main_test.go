package smoke

import (
	"testing"

	"go.uber.org/goleak"
)

// TestMain catches goroutine leaks from the error-capture listener and any
// rod page/browser handles a test forgets to close.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}
