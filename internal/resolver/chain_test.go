package resolver

import (
	"context"
	"testing"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"

	"apiscout/internal/ir"
)

type fakeResolver struct {
	name string
	fn   func(payload *sitter.Node, src []byte, lookup BindingLookup) ([]ir.SchemaField, bool)
}

func (f fakeResolver) Name() string { return f.name }
func (f fakeResolver) Resolve(payload *sitter.Node, src []byte, lookup BindingLookup) ([]ir.SchemaField, bool) {
	return f.fn(payload, src, lookup)
}

func parseSource(t *testing.T, src string) (*sitter.Node, []byte) {
	t.Helper()
	parser := sitter.NewParser()
	parser.SetLanguage(javascript.GetLanguage())
	tree, err := parser.ParseCtx(context.Background(), nil, []byte(src))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	t.Cleanup(tree.Close)
	return tree.RootNode(), []byte(src)
}

func findNode(n *sitter.Node, typ string) *sitter.Node {
	if n == nil {
		return nil
	}
	if n.Type() == typ {
		return n
	}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		if found := findNode(n.NamedChild(i), typ); found != nil {
			return found
		}
	}
	return nil
}

func TestChain_FirstMatchWins(t *testing.T) {
	root, src := parseSource(t, `send({id: 1})`)
	payload := findNode(root, "object")
	if payload == nil {
		t.Fatal("no object literal in fixture")
	}

	first := fakeResolver{
		name: "first",
		fn: func(_ *sitter.Node, _ []byte, _ BindingLookup) ([]ir.SchemaField, bool) {
			return []ir.SchemaField{{Name: "id", Type: ir.FieldNumber}}, true
		},
	}
	second := fakeResolver{
		name: "second",
		fn: func(_ *sitter.Node, _ []byte, _ BindingLookup) ([]ir.SchemaField, bool) {
			t.Fatal("second stage should not run after a match")
			return nil, false
		},
	}

	fields, trail := NewChain(first, second).Resolve(payload, src, nil)

	if len(fields) != 1 || fields[0].Name != "id" {
		t.Fatalf("unexpected fields: %+v", fields)
	}
	if len(trail) != 1 {
		t.Fatalf("expected 1 stage in trail, got %d", len(trail))
	}
	if !trail[0].Matched || trail[0].Resolver != "first" {
		t.Fatalf("unexpected trail entry: %+v", trail[0])
	}
	if got := MatchedStage(trail); got != "first" {
		t.Fatalf("MatchedStage = %q, want %q", got, "first")
	}
}

func TestChain_FallsThroughToNextStage(t *testing.T) {
	root, src := parseSource(t, `send(payload)`)
	ident := findNode(root, "identifier")
	if ident == nil {
		t.Fatal("no identifier in fixture")
	}

	miss := fakeResolver{
		name: "miss",
		fn: func(_ *sitter.Node, _ []byte, _ BindingLookup) ([]ir.SchemaField, bool) {
			return nil, false
		},
	}
	hit := fakeResolver{
		name: "hit",
		fn: func(_ *sitter.Node, _ []byte, _ BindingLookup) ([]ir.SchemaField, bool) {
			return []ir.SchemaField{{Name: "x", Type: ir.FieldString}}, true
		},
	}

	fields, trail := NewChain(miss, hit).Resolve(ident, src, nil)

	if len(fields) != 1 {
		t.Fatalf("expected 1 field, got %d", len(fields))
	}
	if len(trail) != 2 {
		t.Fatalf("expected 2 stages in trail, got %d", len(trail))
	}
	if trail[0].Matched {
		t.Fatal("first stage should not have matched")
	}
	if got := MatchedStage(trail); got != "hit" {
		t.Fatalf("MatchedStage = %q, want %q", got, "hit")
	}
}

func TestChain_NilPayload(t *testing.T) {
	fields, trail := NewDefaultChain().Resolve(nil, nil, nil)
	if fields != nil || trail != nil {
		t.Fatalf("expected nil results for nil payload, got %v / %v", fields, trail)
	}
	if got := MatchedStage(trail); got != "" {
		t.Fatalf("MatchedStage = %q, want empty", got)
	}
}

func TestLiteralResolver_ObjectLiteral(t *testing.T) {
	root, src := parseSource(t, `send({id: 1, name: "apiscout", active: true, retries: -1, tags: [1, 2], nested: {a: 1}})`)
	payload := findNode(root, "object")
	if payload == nil {
		t.Fatal("no object literal in fixture")
	}

	fields, matched := NewLiteralResolver().Resolve(payload, src, nil)
	if !matched {
		t.Fatal("expected literal resolver to match an object payload")
	}

	want := []ir.SchemaField{
		{Name: "id", Type: ir.FieldNumber},
		{Name: "name", Type: ir.FieldString},
		{Name: "active", Type: ir.FieldBoolean},
		{Name: "retries", Type: ir.FieldNumber},
		{Name: "tags", Type: ir.FieldString},
		{Name: "nested", Type: ir.FieldString},
	}
	if len(fields) != len(want) {
		t.Fatalf("expected %d fields, got %d: %+v", len(want), len(fields), fields)
	}
	for i, f := range fields {
		if f != want[i] {
			t.Errorf("field %d = %+v, want %+v", i, f, want[i])
		}
	}
}

func TestLiteralResolver_ShorthandAndStringKeys(t *testing.T) {
	root, src := parseSource(t, `send({userId, "display-name": "x", count: 2})`)
	payload := findNode(root, "object")

	fields, matched := NewLiteralResolver().Resolve(payload, src, nil)
	if !matched {
		t.Fatal("expected a match")
	}

	want := []ir.SchemaField{
		{Name: "userId", Type: ir.FieldString},
		{Name: "display-name", Type: ir.FieldString},
		{Name: "count", Type: ir.FieldNumber},
	}
	if len(fields) != len(want) {
		t.Fatalf("expected %d fields, got %d: %+v", len(want), len(fields), fields)
	}
	for i, f := range fields {
		if f != want[i] {
			t.Errorf("field %d = %+v, want %+v", i, f, want[i])
		}
	}
}

func TestLiteralResolver_RejectsNonObject(t *testing.T) {
	root, src := parseSource(t, `send(payload)`)
	ident := findNode(root, "identifier")

	if _, matched := NewLiteralResolver().Resolve(ident, src, nil); matched {
		t.Fatal("literal resolver must not match an identifier payload")
	}
}

func TestBindingResolver_OneHop(t *testing.T) {
	root, src := parseSource(t, `const payload = {id: 1, active: true}; send(payload)`)
	decl := findNode(root, "variable_declarator")
	if decl == nil {
		t.Fatal("no declarator in fixture")
	}
	obj := decl.ChildByFieldName("value")

	call := findNode(root, "call_expression")
	args := call.ChildByFieldName("arguments")
	ident := args.NamedChild(0)

	lookup := func(name string) *sitter.Node {
		if name == "payload" {
			return obj
		}
		return nil
	}

	fields, matched := NewBindingResolver().Resolve(ident, src, lookup)
	if !matched {
		t.Fatal("expected binding resolver to match")
	}

	want := []ir.SchemaField{
		{Name: "id", Type: ir.FieldNumber},
		{Name: "active", Type: ir.FieldBoolean},
	}
	if len(fields) != len(want) {
		t.Fatalf("expected %d fields, got %d: %+v", len(want), len(fields), fields)
	}
	for i, f := range fields {
		if f != want[i] {
			t.Errorf("field %d = %+v, want %+v", i, f, want[i])
		}
	}
}

func TestBindingResolver_NonObjectInitializer(t *testing.T) {
	initRoot, _ := parseSource(t, `const payload = buildPayload()`)
	decl := findNode(initRoot, "variable_declarator")
	init := decl.ChildByFieldName("value")

	root, src := parseSource(t, `send(payload)`)
	call := findNode(root, "call_expression")
	ident := call.ChildByFieldName("arguments").NamedChild(0)

	lookup := func(string) *sitter.Node { return init }

	if _, matched := NewBindingResolver().Resolve(ident, src, lookup); matched {
		t.Fatal("binding resolver must not match a call-expression initializer")
	}
}

func TestBindingResolver_NoBinding(t *testing.T) {
	root, src := parseSource(t, `send(payload)`)
	ident := findNode(root, "identifier")

	if _, matched := NewBindingResolver().Resolve(ident, src, func(string) *sitter.Node { return nil }); matched {
		t.Fatal("binding resolver must not match without a visible binding")
	}
	if _, matched := NewBindingResolver().Resolve(ident, src, nil); matched {
		t.Fatal("binding resolver must not match with a nil lookup")
	}
}
