package resolver

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"apiscout/internal/ir"
)

// LiteralResolver handles payloads written as inline object literals at the
// call site, the most common shape in hand-written API clients.
type LiteralResolver struct{}

func NewLiteralResolver() *LiteralResolver {
	return &LiteralResolver{}
}

func (r *LiteralResolver) Name() string {
	return StageLiteral
}

func (r *LiteralResolver) Resolve(payload *sitter.Node, src []byte, _ BindingLookup) ([]ir.SchemaField, bool) {
	if payload == nil || payload.Type() != "object" {
		return nil, false
	}
	return ObjectFields(payload, src), true
}

// BindingResolver follows a payload identifier one hop back to its
// initializer. Only a direct object-literal initializer counts; anything
// else (a call result, a reassigned variable, an import) stays unresolved.
type BindingResolver struct{}

func NewBindingResolver() *BindingResolver {
	return &BindingResolver{}
}

func (r *BindingResolver) Name() string {
	return StageBinding
}

func (r *BindingResolver) Resolve(payload *sitter.Node, src []byte, lookup BindingLookup) ([]ir.SchemaField, bool) {
	if payload == nil || payload.Type() != "identifier" || lookup == nil {
		return nil, false
	}
	init := lookup(payload.Content(src))
	if init == nil || init.Type() != "object" {
		return nil, false
	}
	return ObjectFields(init, src), true
}

// ObjectFields flattens an object literal into one schema field per
// property. Nested values are not descended into; their top-level type is
// recorded and the rest is left to the consumer.
func ObjectFields(obj *sitter.Node, src []byte) []ir.SchemaField {
	var fields []ir.SchemaField
	for i := 0; i < int(obj.NamedChildCount()); i++ {
		prop := obj.NamedChild(i)
		switch prop.Type() {
		case "pair":
			name := pairKeyName(prop.ChildByFieldName("key"), src)
			if name == "" {
				continue
			}
			fields = append(fields, ir.SchemaField{
				Name: name,
				Type: classifyLiteral(unwrapValue(prop.ChildByFieldName("value"))),
			})
		case "shorthand_property_identifier":
			fields = append(fields, ir.SchemaField{
				Name: prop.Content(src),
				Type: ir.FieldString,
			})
		}
	}
	return fields
}

func pairKeyName(key *sitter.Node, src []byte) string {
	if key == nil {
		return ""
	}
	switch key.Type() {
	case "property_identifier", "identifier", "number":
		return key.Content(src)
	case "string":
		return strings.Trim(key.Content(src), `"'`)
	}
	return ""
}

func classifyLiteral(value *sitter.Node) ir.FieldType {
	if value == nil {
		return ir.FieldString
	}
	switch value.Type() {
	case "number":
		return ir.FieldNumber
	case "true", "false":
		return ir.FieldBoolean
	case "unary_expression":
		if value.NamedChildCount() == 1 && value.NamedChild(0).Type() == "number" {
			return ir.FieldNumber
		}
	}
	return ir.FieldString
}

func unwrapValue(n *sitter.Node) *sitter.Node {
	for n != nil {
		switch n.Type() {
		case "parenthesized_expression", "as_expression", "satisfies_expression", "non_null_expression":
			if n.NamedChildCount() == 0 {
				return n
			}
			n = n.NamedChild(0)
		default:
			return n
		}
	}
	return n
}
