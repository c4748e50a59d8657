package safety

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDoc = `<!DOCTYPE html>
<html>
<head><title>App</title></head>
<body>
<h1>Hello</h1>
</body>
</html>`

func TestTransform_InjectsExactlyOneCSPAndOneBridge(t *testing.T) {
	out := Transform(sampleDoc, "app-123", "glm-4.7")

	assert.Equal(t, 1, strings.Count(out, "Content-Security-Policy"))
	assert.Equal(t, 1, strings.Count(out, BridgeMarkerID))
	assert.Contains(t, out, "geaRuntimeLLM")
	assert.Contains(t, out, "geaRuntimeStore")
	assert.Contains(t, out, "app-123")
}

func TestTransform_Idempotent(t *testing.T) {
	once := Transform(sampleDoc, "app-123", "glm-4.7")
	twice := Transform(once, "app-123", "glm-4.7")
	assert.Equal(t, once, twice)
}

func TestTransform_RebindsAppIDOnPatch(t *testing.T) {
	once := Transform(sampleDoc, "app-123", "glm-4.7")
	rebindTwice := Transform(once, "app-456", "glm-5.0")

	assert.Equal(t, 1, strings.Count(rebindTwice, BridgeMarkerID))
	assert.Contains(t, rebindTwice, "app-456")
	assert.NotContains(t, rebindTwice, "app-123")
	// CSP meta untouched by the rebind since it was already present.
	assert.Equal(t, 1, strings.Count(rebindTwice, "Content-Security-Policy"))
}

func TestInjectCSP_PrependsWhenNoHead(t *testing.T) {
	doc := `<html><body>x</body></html>`
	out := InjectCSP(doc)
	require.True(t, strings.HasPrefix(out, `<meta http-equiv="Content-Security-Policy"`))
}

func TestInjectCSP_AllowlistsCDNHosts(t *testing.T) {
	out := InjectCSP(sampleDoc)
	for _, host := range CDNAllowlist {
		assert.Contains(t, out, host)
	}
}

func TestInjectBridge_NoDoubleInjectionAcrossPatches(t *testing.T) {
	withBridge := InjectBridge(sampleDoc, "a", "m1")
	patched := InjectBridge(withBridge, "a", "m2")
	assert.Equal(t, 1, strings.Count(patched, "<script id=\""+BridgeMarkerID+"\""))
}
