package extractor

import (
	"fmt"
	"regexp"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"apiscout/internal/ir"
	"apiscout/internal/resolver"
)

// DefaultAPIMarker is the path fragment that admits a URL as a backend call.
// URLs without it are asset or navigation fetches and are dropped silently.
const DefaultAPIMarker = "/api/"

var (
	placeholderRe = regexp.MustCompile(`\{([^{}]+)\}`)
	colonParamRe  = regexp.MustCompile(`:([A-Za-z_][A-Za-z0-9_]*)`)
	unnamedRe     = regexp.MustCompile(`\{param\d+\}`)
	versionSegRe  = regexp.MustCompile(`^v\d+$`)
	wordSplitRe   = regexp.MustCompile(`[^A-Za-z0-9]+`)
	pathSyntaxRe  = regexp.MustCompile(`[/:{}]`)
)

// reconstructURL renders a URL argument to text. Literal strings are taken
// verbatim; template strings concatenate their fragments, with {name} for
// bare-identifier interpolations and {paramK} (1-indexed over the template's
// substitutions) for anything else. dynamic reports whether template
// substitutions were involved; ok is false for arguments that cannot be
// rendered statically.
func reconstructURL(n *sitter.Node, src []byte) (url string, dynamic bool, ok bool) {
	if n == nil {
		return "", false, false
	}

	switch n.Type() {
	case "string":
		return stripQuotes(n.Content(src)), false, true
	case "template_string":
		var b strings.Builder
		sub := 0
		for i := 0; i < int(n.NamedChildCount()); i++ {
			child := n.NamedChild(i)
			switch child.Type() {
			case "string_fragment", "escape_sequence":
				b.WriteString(child.Content(src))
			case "template_substitution":
				sub++
				dynamic = true
				expr := unwrapExpression(child.NamedChild(0))
				if expr != nil && expr.Type() == "identifier" {
					b.WriteString("{" + expr.Content(src) + "}")
				} else {
					b.WriteString(fmt.Sprintf("{param%d}", sub))
				}
			}
		}
		return b.String(), dynamic, true
	}
	return "", false, false
}

// deriveRoute strips any query suffix and rewrites {name} placeholders into
// the :name tokens downstream routers bind to.
func deriveRoute(rawPath string) string {
	route := rawPath
	if q := strings.Index(route, "?"); q >= 0 {
		route = route[:q]
	}
	return placeholderRe.ReplaceAllString(route, ":$1")
}

func splitPathSegments(route string) []string {
	var segs []string
	for _, seg := range strings.Split(route, "/") {
		if seg != "" {
			segs = append(segs, seg)
		}
	}
	return segs
}

// deriveController picks the path segment after the API marker segment,
// skipping a version segment like v2, and title-cases it. Routes with no
// usable segment group under Default.
func deriveController(route, markerSegment string) string {
	segs := splitPathSegments(route)
	for i, seg := range segs {
		if seg != markerSegment {
			continue
		}
		rest := segs[i+1:]
		if len(rest) == 0 {
			break
		}
		pick := rest[0]
		if versionSegRe.MatchString(strings.ToLower(pick)) {
			if len(rest) < 2 {
				break
			}
			pick = rest[1]
		}
		if name := titleCase(pick); name != "" {
			return name
		}
		break
	}
	return "Default"
}

// deriveAction builds the handler name from the route's last token:
// GET /api/users -> getUsers, POST /api/products -> postProducts.
func deriveAction(route, method, marker string) string {
	rest := strings.TrimPrefix(route, marker)
	rest = pathSyntaxRe.ReplaceAllString(rest, " ")

	token := "Action"
	if fields := strings.Fields(rest); len(fields) > 0 {
		token = fields[len(fields)-1]
	}
	name := titleCase(token)
	if name == "" {
		name = "Action"
	}
	return strings.ToLower(method) + name
}

// titleCase removes non-alphanumeric delimiters and capitalizes the first
// letter of each word: "user-profiles" -> "UserProfiles".
func titleCase(s string) string {
	var b strings.Builder
	for _, w := range wordSplitRe.Split(s, -1) {
		if w == "" {
			continue
		}
		b.WriteString(strings.ToUpper(w[:1]))
		b.WriteString(w[1:])
	}
	return b.String()
}

// extractPathParams returns the distinct :name tokens of a route in order of
// first appearance.
func extractPathParams(route string) []string {
	var params []string
	seen := make(map[string]bool)
	for _, m := range colonParamRe.FindAllStringSubmatch(route, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			params = append(params, m[1])
		}
	}
	return params
}

// extractQueryParams returns the distinct literal keys of a ?k=v&... suffix
// in order of first appearance. Dynamic keys are skipped.
func extractQueryParams(rawPath string) []string {
	q := strings.Index(rawPath, "?")
	if q < 0 {
		return nil
	}

	var params []string
	seen := make(map[string]bool)
	for _, pair := range strings.Split(rawPath[q+1:], "&") {
		key := pair
		if eq := strings.Index(key, "="); eq >= 0 {
			key = key[:eq]
		}
		if key == "" || strings.ContainsAny(key, "{}") {
			continue
		}
		if !seen[key] {
			seen[key] = true
			params = append(params, key)
		}
	}
	return params
}

// buildEndpoint assembles a full descriptor from one recognized request.
// The bool result is false when the admission filter rejects the URL.
func (e *Extractor) buildEndpoint(req *rawRequest, path string, src []byte, lineOffset int) (ir.EndpointDescriptor, bool) {
	rawPath, dynamic, ok := reconstructURL(unwrapExpression(req.urlNode), src)
	if !ok || !strings.Contains(rawPath, e.marker) {
		return ir.EndpointDescriptor{}, false
	}

	route := deriveRoute(rawPath)

	var body []ir.SchemaField
	var trail []resolver.StageResult
	if req.payload != nil {
		lookup := func(name string) *sitter.Node {
			if v := req.scope.Lookup(name); v != nil {
				return unwrapExpression(v)
			}
			return nil
		}
		body, trail = e.chain.Resolve(req.payload, src, lookup)
	}

	signals := CallSignals{
		TemplateURL:     dynamic,
		PlaceholderURL:  unnamedRe.MatchString(rawPath),
		MethodDefaulted: !req.methodExplicit,
		BodyViaBinding:  resolver.MatchedStage(trail) == resolver.StageBinding,
		BodyMissing:     ir.Mutating(req.method) && req.payload != nil && len(body) == 0,
	}

	return ir.EndpointDescriptor{
		RawPath:        rawPath,
		Route:          route,
		Method:         req.method,
		ControllerName: deriveController(route, e.markerSegment),
		ActionName:     deriveAction(route, req.method, e.marker),
		PathParams:     extractPathParams(route),
		QueryParams:    extractQueryParams(rawPath),
		RequestBody:    body,
		SourceFile:     path,
		Line:           req.line + lineOffset,
		Confidence:     CalibrateEndpointConfidence(signals),
	}, true
}
