package extractor

import (
	"regexp"
	"strings"
)

var (
	vueScriptOpenRe = regexp.MustCompile(`(?is)<script\b([^>]*)>`)
	vueLangAttrRe   = regexp.MustCompile(`(?i)\blang\s*=\s*["']([^"']+)["']`)
)

// vueScript is the script block carved out of a single-file component.
type vueScript struct {
	source     []byte
	lang       string
	lineOffset int // lines preceding the script body in the original file
}

// extractVueScript locates the first <script> block of a single-file
// component. Components without one contribute zero endpoints, which is not
// an error.
func extractVueScript(src []byte) (*vueScript, bool) {
	loc := vueScriptOpenRe.FindSubmatchIndex(src)
	if loc == nil {
		return nil, false
	}

	attrs := string(src[loc[2]:loc[3]])
	bodyStart := loc[1]

	rest := string(src[bodyStart:])
	end := strings.Index(strings.ToLower(rest), "</script>")
	if end < 0 {
		return nil, false
	}

	lang := LangJavaScript
	if m := vueLangAttrRe.FindStringSubmatch(attrs); m != nil {
		switch strings.ToLower(m[1]) {
		case "ts", "typescript":
			lang = LangTypeScript
		case "tsx":
			lang = LangTSX
		case "jsx":
			lang = LangJavaScript
		}
	}

	return &vueScript{
		source:     src[bodyStart : bodyStart+end],
		lang:       lang,
		lineOffset: strings.Count(string(src[:bodyStart]), "\n"),
	}, true
}
