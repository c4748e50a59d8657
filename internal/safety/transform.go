package safety

// Transform applies the two idempotent Safety Transformer passes, in order,
// after every Coder or Patch response that passes the security scan (and to
// the rejected document kept for final.html): CSP injection, then runtime-bridge
// injection (§4.3). Calling Transform twice on its own output is a no-op.
func Transform(html, appID, defaultModel string) string {
	html = InjectCSP(html)
	html = InjectBridge(html, appID, defaultModel)
	return html
}
