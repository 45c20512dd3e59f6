package extractor

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"apiscout/internal/ir"
)

// DirectCallName is the ambient fetch-style global recognized as a
// direct-request call.
const DirectCallName = "fetch"

// httpVerbs maps client-method property names to HTTP methods. The object
// half of the property access is never validated, so renamed and wrapped
// clients are tolerated.
var httpVerbs = map[string]string{
	"get":    ir.MethodGet,
	"post":   ir.MethodPost,
	"put":    ir.MethodPut,
	"patch":  ir.MethodPatch,
	"delete": ir.MethodDelete,
}

// Calling conventions a call site can match.
const (
	conventionDirect = "direct" // fetch(url, options?)
	conventionClient = "client" // client.verb(url, payload?)
)

// callSite is one call expression observed during traversal, tied to the
// scope chain active at its position.
type callSite struct {
	node  *sitter.Node
	scope *Scope
}

// fileWalker builds the per-file scope chain and collects every call
// expression in a single pre-order pass. Calls are classified only after the
// walk completes, so every declaration in an enclosing scope is visible no
// matter where it sits relative to the call.
type fileWalker struct {
	src   []byte
	calls []callSite
}

func newFileWalker(src []byte) *fileWalker {
	return &fileWalker{src: src}
}

func (w *fileWalker) walk(root *sitter.Node) {
	w.visit(root, newScope(nil))
}

func (w *fileWalker) visit(n *sitter.Node, scope *Scope) {
	if scopeOpeners[n.Type()] {
		scope = newScope(scope)
	}

	switch n.Type() {
	case "variable_declarator":
		name := n.ChildByFieldName("name")
		value := n.ChildByFieldName("value")
		if name != nil && value != nil && name.Type() == "identifier" {
			scope.declare(name.Content(w.src), value)
		}
	case "call_expression":
		w.calls = append(w.calls, callSite{node: n, scope: scope})
	}

	for i := 0; i < int(n.NamedChildCount()); i++ {
		w.visit(n.NamedChild(i), scope)
	}
}

// rawRequest is the normalized observation of one recognized call site,
// before URL admission and schema resolution.
type rawRequest struct {
	convention     string
	method         string
	methodExplicit bool
	urlNode        *sitter.Node
	payload        *sitter.Node
	line           int
	scope          *Scope
}

// recognize classifies a call expression against the two calling
// conventions. Calls matching neither are ignored.
func recognize(call callSite, src []byte) (*rawRequest, bool) {
	fn := call.node.ChildByFieldName("function")
	if fn == nil {
		return nil, false
	}
	args := callArguments(call.node)
	if len(args) == 0 {
		return nil, false
	}

	switch fn.Type() {
	case "identifier":
		if fn.Content(src) != DirectCallName {
			return nil, false
		}
		return recognizeDirect(call, args, src), true
	case "member_expression":
		prop := fn.ChildByFieldName("property")
		if prop == nil {
			return nil, false
		}
		method, ok := httpVerbs[strings.ToLower(prop.Content(src))]
		if !ok {
			return nil, false
		}
		return recognizeClient(call, args, method), true
	}
	return nil, false
}

func recognizeDirect(call callSite, args []*sitter.Node, src []byte) *rawRequest {
	req := &rawRequest{
		convention: conventionDirect,
		method:     ir.MethodGet,
		urlNode:    args[0],
		line:       nodeLine(call.node),
		scope:      call.scope,
	}

	if len(args) < 2 {
		return req
	}
	opts := unwrapExpression(args[1])
	if opts == nil || opts.Type() != "object" {
		return req
	}

	if mv := objectProperty(opts, "method", src); mv != nil {
		if v := unwrapExpression(mv); v != nil && v.Type() == "string" {
			m := strings.ToUpper(stripQuotes(v.Content(src)))
			if ir.KnownMethod(m) {
				req.method = m
				req.methodExplicit = true
			}
		}
	}

	if ir.Mutating(req.method) {
		if bv := objectProperty(opts, "body", src); bv != nil {
			req.payload = jsonSerializedPayload(unwrapExpression(bv), src)
		}
	}
	return req
}

func recognizeClient(call callSite, args []*sitter.Node, method string) *rawRequest {
	req := &rawRequest{
		convention:     conventionClient,
		method:         method,
		methodExplicit: true,
		urlNode:        args[0],
		line:           nodeLine(call.node),
		scope:          call.scope,
	}
	if ir.Mutating(method) && len(args) > 1 {
		req.payload = unwrapExpression(args[1])
	}
	return req
}

// jsonSerializedPayload unwraps the conventional JSON.stringify(payload)
// body wrapper and returns the payload expression, or nil when the body is
// not of that shape.
func jsonSerializedPayload(body *sitter.Node, src []byte) *sitter.Node {
	if body == nil || body.Type() != "call_expression" {
		return nil
	}
	fn := body.ChildByFieldName("function")
	if fn == nil || fn.Type() != "member_expression" {
		return nil
	}
	obj := fn.ChildByFieldName("object")
	prop := fn.ChildByFieldName("property")
	if obj == nil || prop == nil {
		return nil
	}
	if obj.Type() != "identifier" || obj.Content(src) != "JSON" || prop.Content(src) != "stringify" {
		return nil
	}
	args := callArguments(body)
	if len(args) == 0 {
		return nil
	}
	return unwrapExpression(args[0])
}
