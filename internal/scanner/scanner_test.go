package scanner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func wrap(body string) string {
	return "<!DOCTYPE html><html><head></head><body>" + body + "</body></html>"
}

func TestScan_CleanDocumentPasses(t *testing.T) {
	doc := wrap(`<table></table><form></form><button>Go</button>`)
	res := Scan(doc)
	require.True(t, res.Passed)
	assert.Empty(t, res.SecurityViolations)
	assert.Empty(t, res.StructureErrors)
}

func TestScan_BannedTagsFail(t *testing.T) {
	for _, tag := range []string{"<iframe src=x>", "<embed src=x>", "<object data=x>"} {
		doc := wrap(tag)
		res := Scan(doc)
		assert.False(t, res.Passed, "expected %s to fail scan", tag)
		require.NotEmpty(t, res.SecurityViolations)
	}
}

func TestScan_BannedCallOutsideStringFails(t *testing.T) {
	doc := wrap(`<script>fetch("/data").then(r => r.json());</script>`)
	res := Scan(doc)
	assert.False(t, res.Passed)
	var names []string
	for _, v := range res.SecurityViolations {
		names = append(names, v.Canonical)
	}
	assert.Contains(t, names, "fetch()")
}

func TestScan_XHRFails(t *testing.T) {
	doc := wrap(`<script>var x = new XMLHttpRequest();</script>`)
	res := Scan(doc)
	assert.False(t, res.Passed)
}

// S3 — scanner false-positive suppression: the only mentions of a banned
// name are inside a string literal and a line comment.
func TestScan_StringAndCommentSuppressed(t *testing.T) {
	doc := wrap(`<script>const u="fetch(1)"; // we don't use fetch()
	</script>`)
	res := Scan(doc)
	assert.True(t, res.Passed, "expected suppression, got: %+v", res.SecurityViolations)
}

// S4 — harmless empty-URL stub.
func TestScan_EmptyURLStubSuppressed(t *testing.T) {
	doc := wrap(`<script>fetch("");</script>`)
	res := Scan(doc)
	assert.True(t, res.Passed)
}

func TestScan_EmptyURLStubBacktick(t *testing.T) {
	doc := wrap("<script>fetch(``);</script>")
	res := Scan(doc)
	assert.True(t, res.Passed)
}

func TestScan_NonEmptyURLNotSuppressed(t *testing.T) {
	doc := wrap(`<script>fetch("/api/data");</script>`)
	res := Scan(doc)
	assert.False(t, res.Passed)
}

func TestScan_InlineEventHandlerScanned(t *testing.T) {
	doc := wrap(`<button onclick="eval(userInput)">Go</button>`)
	res := Scan(doc)
	assert.False(t, res.Passed)
}

func TestScan_MissingDoctypeAndHTMLFailsStructure(t *testing.T) {
	res := Scan(`<body>hi</body>`)
	assert.False(t, res.Passed)
	assert.NotEmpty(t, res.StructureErrors)
}

func TestFixHint_KnownAndUnknown(t *testing.T) {
	assert.NotEmpty(t, FixHint("fetch()"))
	assert.Equal(t, "", FixHint("not-a-real-name"))
}

func TestStripCommentsAndStrings_PreservesLength(t *testing.T) {
	src := "a //comment\nb /* block\ncomment */ c \"str\" d 'str2' e `str3`"
	stripped := stripCommentsAndStrings(src)
	assert.Equal(t, len(src), len(stripped))
	assert.Contains(t, stripped, "\n")
}

func TestStripCommentsAndStrings_BackslashEscape(t *testing.T) {
	src := `"he said \"fetch(\" to me"` + " fetch(x)"
	stripped := stripCommentsAndStrings(src)
	assert.Contains(t, stripped, "fetch(x)")
	assert.NotContains(t, stripped, `fetch(\`)
}
