package extractor

import (
	"fmt"
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// Languages the extractor can parse. Each maps onto a tree-sitter grammar.
const (
	LangJavaScript = "javascript"
	LangTypeScript = "typescript"
	LangTSX        = "tsx"
	LangVue        = "vue"
)

// LanguageForFile picks the grammar for a path by extension, or "" when the
// file is not an analyzable source kind.
func LanguageForFile(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".js", ".jsx", ".mjs", ".cjs":
		return LangJavaScript
	case ".ts":
		return LangTypeScript
	case ".tsx":
		return LangTSX
	case ".vue":
		return LangVue
	}
	return ""
}

func grammarFor(lang string) *sitter.Language {
	switch lang {
	case LangTypeScript:
		return typescript.GetLanguage()
	case LangTSX:
		return tsx.GetLanguage()
	default:
		return javascript.GetLanguage()
	}
}

// ParseError marks a single file whose text could not be turned into a usable
// tree. Callers recover it locally; the file contributes zero endpoints.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// unwrapExpression strips wrappers that do not change an expression's runtime
// value (parentheses, TS assertions, await).
func unwrapExpression(n *sitter.Node) *sitter.Node {
	for n != nil {
		switch n.Type() {
		case "parenthesized_expression", "as_expression", "satisfies_expression",
			"non_null_expression", "await_expression":
			inner := n.NamedChild(0)
			if inner == nil {
				return n
			}
			n = inner
		default:
			return n
		}
	}
	return nil
}

// stripQuotes removes the surrounding quote characters from a string
// literal's source text.
func stripQuotes(s string) string {
	if len(s) >= 2 {
		first, last := s[0], s[len(s)-1]
		if (first == '"' && last == '"') || (first == '\'' && last == '\'') || (first == '`' && last == '`') {
			return s[1 : len(s)-1]
		}
	}
	return s
}

// callArguments returns the positional argument expressions of a call.
// Tagged-template invocations have no argument list and yield nil.
func callArguments(call *sitter.Node) []*sitter.Node {
	args := call.ChildByFieldName("arguments")
	if args == nil || args.Type() != "arguments" {
		return nil
	}
	out := make([]*sitter.Node, 0, args.NamedChildCount())
	for i := 0; i < int(args.NamedChildCount()); i++ {
		child := args.NamedChild(i)
		if child.Type() == "comment" {
			continue
		}
		out = append(out, child)
	}
	return out
}

// objectProperty finds the value node of a named property in an object
// literal, or nil when absent.
func objectProperty(obj *sitter.Node, name string, src []byte) *sitter.Node {
	if obj == nil || obj.Type() != "object" {
		return nil
	}
	for i := 0; i < int(obj.NamedChildCount()); i++ {
		child := obj.NamedChild(i)
		if child.Type() != "pair" {
			continue
		}
		key := child.ChildByFieldName("key")
		if key == nil {
			continue
		}
		if propertyName(key, src) == name {
			return child.ChildByFieldName("value")
		}
	}
	return nil
}

// propertyName renders an object key to its plain name; computed keys yield "".
func propertyName(key *sitter.Node, src []byte) string {
	switch key.Type() {
	case "property_identifier", "identifier", "number":
		return key.Content(src)
	case "string":
		return stripQuotes(key.Content(src))
	}
	return ""
}

func nodeLine(n *sitter.Node) int {
	return int(n.StartPoint().Row) + 1
}
