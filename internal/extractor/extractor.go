package extractor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"apiscout/internal/ir"
	"apiscout/internal/resolver"
)

// Extractor turns frontend source files into endpoint descriptors. It holds
// no per-file state and is safe for concurrent use across files.
type Extractor struct {
	marker        string
	markerSegment string
	chain         *resolver.Chain
}

// NewExtractor creates an extractor using the default /api/ admission marker.
func NewExtractor() *Extractor {
	return NewExtractorWithMarker(DefaultAPIMarker)
}

// NewExtractorWithMarker creates an extractor admitting URLs that contain
// the given path fragment. An empty marker selects the default.
func NewExtractorWithMarker(marker string) *Extractor {
	if marker == "" {
		marker = DefaultAPIMarker
	}
	return &Extractor{
		marker:        marker,
		markerSegment: strings.Trim(marker, "/"),
		chain:         resolver.NewDefaultChain(),
	}
}

// ExtractFromFile reads and analyzes a single source file.
func (e *Extractor) ExtractFromFile(path string) ([]ir.EndpointDescriptor, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", path, err)
	}
	return e.Extract(path, src)
}

// Extract analyzes source text under the given provenance path. A tree that
// cannot be produced yields a *ParseError, which callers recover so the file
// contributes zero endpoints without aborting sibling files.
func (e *Extractor) Extract(path string, src []byte) ([]ir.EndpointDescriptor, error) {
	lang := LanguageForFile(path)
	if lang == "" {
		return nil, nil
	}

	lineOffset := 0
	if lang == LangVue {
		script, ok := extractVueScript(src)
		if !ok {
			return nil, nil
		}
		src = script.source
		lang = script.lang
		lineOffset = script.lineOffset
	}

	parser := sitter.NewParser()
	parser.SetLanguage(grammarFor(lang))
	tree, err := parser.ParseCtx(context.Background(), nil, src)
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	defer tree.Close()

	root := tree.RootNode()
	if root == nil {
		return nil, &ParseError{Path: path, Err: errors.New("no syntax tree produced")}
	}
	if root.HasError() {
		return nil, &ParseError{Path: path, Err: errors.New("source contains syntax errors")}
	}

	// One pass to build scopes and collect calls, then classification with
	// the whole file's declarations visible.
	walker := newFileWalker(src)
	walker.walk(root)

	var endpoints []ir.EndpointDescriptor
	for _, call := range walker.calls {
		req, ok := recognize(call, src)
		if !ok {
			continue
		}
		desc, admitted := e.buildEndpoint(req, path, src, lineOffset)
		if !admitted {
			continue
		}
		endpoints = append(endpoints, desc)
	}
	return endpoints, nil
}
