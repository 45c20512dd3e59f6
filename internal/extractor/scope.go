package extractor

import sitter "github.com/smacker/go-tree-sitter"

// Scope is one lexical scope: declared names mapped to their initializer
// expressions, linked to the enclosing scope. Scopes are built once per file
// during traversal and queried afterwards, so a declaration is visible to
// every call site in its scope regardless of textual order.
type Scope struct {
	parent   *Scope
	bindings map[string]*sitter.Node
}

func newScope(parent *Scope) *Scope {
	return &Scope{parent: parent}
}

func (s *Scope) declare(name string, value *sitter.Node) {
	if s.bindings == nil {
		s.bindings = make(map[string]*sitter.Node)
	}
	s.bindings[name] = value
}

// Lookup resolves name to the initializer of the nearest enclosing
// declaration, walking outward through parent scopes. Returns nil when no
// enclosing scope declares the name.
func (s *Scope) Lookup(name string) *sitter.Node {
	for cur := s; cur != nil; cur = cur.parent {
		if v, ok := cur.bindings[name]; ok {
			return v
		}
	}
	return nil
}

// scopeOpeners are node kinds that introduce a fresh lexical scope.
var scopeOpeners = map[string]bool{
	"program":                        true,
	"statement_block":                true,
	"class_body":                     true,
	"arrow_function":                 true,
	"function_declaration":           true,
	"function_expression":            true,
	"function":                       true,
	"generator_function":             true,
	"generator_function_declaration": true,
	"method_definition":              true,
	"for_statement":                  true,
	"for_in_statement":               true,
	"catch_clause":                   true,
}
