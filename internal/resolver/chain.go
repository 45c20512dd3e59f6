package resolver

import (
	sitter "github.com/smacker/go-tree-sitter"

	"apiscout/internal/ir"
)

const (
	StageLiteral = "literal"
	StageBinding = "binding"
)

// BindingLookup resolves an identifier to the expression it was initialized
// with, or nil when no binding is visible from the call site.
type BindingLookup func(name string) *sitter.Node

type PayloadResolver interface {
	Name() string
	Resolve(payload *sitter.Node, src []byte, lookup BindingLookup) ([]ir.SchemaField, bool)
}

type StageResult struct {
	Resolver string
	Matched  bool
	Fields   int
}

type Chain struct {
	resolvers []PayloadResolver
}

func NewChain(resolvers ...PayloadResolver) *Chain {
	return &Chain{resolvers: resolvers}
}

func NewDefaultChain() *Chain {
	return NewChain(NewLiteralResolver(), NewBindingResolver())
}

// Resolve runs each stage in order and stops at the first one that matches
// the payload expression. The trail records every stage that ran.
func (c *Chain) Resolve(payload *sitter.Node, src []byte, lookup BindingLookup) ([]ir.SchemaField, []StageResult) {
	if payload == nil {
		return nil, nil
	}

	var trail []StageResult
	for _, r := range c.resolvers {
		fields, matched := r.Resolve(payload, src, lookup)
		trail = append(trail, StageResult{
			Resolver: r.Name(),
			Matched:  matched,
			Fields:   len(fields),
		})
		if matched {
			return fields, trail
		}
	}
	return nil, trail
}

// MatchedStage reports which stage produced the schema, or "" when none did.
func MatchedStage(trail []StageResult) string {
	for _, s := range trail {
		if s.Matched {
			return s.Resolver
		}
	}
	return ""
}
