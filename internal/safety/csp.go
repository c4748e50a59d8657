// Package safety implements the Safety Transformer: idempotent CSP-meta
// injection and runtime-bridge injection applied to a Coder/Patch response
// after the security scanner has vetted it and before it is handed to the
// code critic and smoke harness (SPEC_FULL.md §4.3).
package safety

import (
	"regexp"
	"strings"
)

// CDNAllowlist is the curated set of CDN hosts the injected CSP permits for
// style/script/font loading. It is the single source of truth shared by the
// CSP injector and the Coder prompt's "CDN loading rules" section, so the
// two never drift (SPEC_FULL.md §4.3 "CSP allowlist detail").
var CDNAllowlist = []string{
	"cdn.jsdelivr.net",
	"cdnjs.cloudflare.com",
	"unpkg.com",
	"fonts.googleapis.com",
	"fonts.gstatic.com",
	"cdn.tailwindcss.com",
	"stackpath.bootstrapcdn.com",
}

// mapTileAllowlist is the small connect-src allowance for map tile providers
// referenced by §4.3 ("a small allowlist for map tiles").
var mapTileAllowlist = []string{
	"tile.openstreetmap.org",
	"api.mapbox.com",
}

var cspMetaRe = regexp.MustCompile(`(?i)<meta[^>]+http-equiv\s*=\s*["']?Content-Security-Policy["']?[^>]*>`)
var headOpenRe = regexp.MustCompile(`(?i)<head(?:\s[^>]*)?>`)

// policy renders the fixed CSP string from the allowlists above.
func policy() string {
	cdn := strings.Join(CDNAllowlist, " ")
	maps := strings.Join(mapTileAllowlist, " ")
	parts := []string{
		"default-src 'self'",
		"style-src 'self' 'unsafe-inline' " + cdn,
		"script-src 'self' 'unsafe-inline' " + cdn,
		"font-src 'self' data: " + cdn,
		"img-src 'self' data: https:",
		"connect-src 'self' http://localhost:* http://127.0.0.1:* " + maps,
	}
	return strings.Join(parts, "; ") + ";"
}

// InjectCSP inserts a Content-Security-Policy meta tag immediately after
// <head> (or prepends one if there is no head) unless the document already
// carries one, in which case it is left untouched. Idempotent: calling this
// twice on the same document is a no-op on the second call.
func InjectCSP(html string) string {
	if cspMetaRe.MatchString(html) {
		return html
	}

	meta := `<meta http-equiv="Content-Security-Policy" content="` + policy() + `">`

	if loc := headOpenRe.FindStringIndex(html); loc != nil {
		return html[:loc[1]] + "\n    " + meta + html[loc[1]:]
	}

	return meta + "\n" + html
}
