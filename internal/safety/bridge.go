package safety

import "regexp"

// BridgeMarkerID is the stable element id that identifies an existing
// runtime-bridge script, so a patch can find and replace it in place instead
// of appending a duplicate (§4.3 "Runtime-bridge injection").
const BridgeMarkerID = "gea-runtime-bridge"

var bridgeScriptRe = regexp.MustCompile(`(?is)<script[^>]*id=["']` + BridgeMarkerID + `["'][^>]*>.*?</script>`)
var bodyCloseRe = regexp.MustCompile(`(?i)</body\s*>`)
var htmlCloseRe = regexp.MustCompile(`(?i)</html\s*>`)

// bridgeScript renders the injected global surface: window.geaRuntimeLLM and
// window.geaRuntimeStore, namespaced by appID so that deployed copies of the
// same artifact keep isolated storage (§4.3, §6.4).
func bridgeScript(appID, defaultModel string) string {
	return `<script id="` + BridgeMarkerID + `" data-app-id="` + appID + `">
(function () {
  var APP_ID = ` + jsString(appID) + `;
  var DEFAULT_MODEL = ` + jsString(defaultModel) + `;

  window.geaRuntimeLLM = function (prompt, options) {
    options = options || {};
    if (!prompt) {
      return Promise.reject(new Error("geaRuntimeLLM: prompt must not be empty"));
    }
    var controller = options.signal ? undefined : undefined;
    return fetch("/api/runtime/llm", {
      method: "POST",
      headers: { "Content-Type": "application/json", "X-App-ID": APP_ID },
      body: JSON.stringify({ prompt: prompt, model: options.model || DEFAULT_MODEL }),
      signal: options.signal
    }).then(function (res) {
      if (!res.ok) {
        throw new Error("geaRuntimeLLM: request failed with status " + res.status);
      }
      return res.json();
    }).then(function (data) {
      return data.response;
    });
  };

  window.geaRuntimeStore = {
    get: function (key) {
      return fetch("/api/runtime/store/" + encodeURIComponent(key), {
        headers: { "X-App-ID": APP_ID }
      }).then(function (res) {
        if (!res.ok) {
          throw new Error("geaRuntimeStore.get: request failed with status " + res.status);
        }
        return res.json();
      });
    },
    set: function (key, value) {
      return fetch("/api/runtime/store/" + encodeURIComponent(key), {
        method: "POST",
        headers: { "Content-Type": "application/json", "X-App-ID": APP_ID },
        body: JSON.stringify(value)
      }).then(function (res) {
        if (!res.ok) {
          throw new Error("geaRuntimeStore.set: request failed with status " + res.status);
        }
        return res.json();
      });
    }
  };
})();
</script>`
}

// jsString renders a Go string as a JS string literal, guarding against a
// hostile appID/model id breaking out of the quotes.
func jsString(s string) string {
	out := "\""
	for _, r := range s {
		switch r {
		case '\\':
			out += `\\`
		case '"':
			out += `\"`
		case '\n':
			out += `\n`
		case '<':
			out += `<`
		default:
			out += string(r)
		}
	}
	return out + "\""
}

// InjectBridge ensures exactly one runtime-bridge script is present, bound to
// appID and defaultModel. If a bridge already exists it is replaced in place
// (so appID/default model stay in sync across patches); otherwise one is
// inserted before </body>, or </html>, or appended.
func InjectBridge(html, appID, defaultModel string) string {
	script := bridgeScript(appID, defaultModel)

	if bridgeScriptRe.MatchString(html) {
		return bridgeScriptRe.ReplaceAllLiteralString(html, script)
	}

	if loc := bodyCloseRe.FindStringIndex(html); loc != nil {
		return html[:loc[0]] + script + "\n" + html[loc[0]:]
	}
	if loc := htmlCloseRe.FindStringIndex(html); loc != nil {
		return html[:loc[0]] + script + "\n" + html[loc[0]:]
	}
	return html + "\n" + script
}
