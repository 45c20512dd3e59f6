package generator

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"apiscout/internal/ir"
)

// MarkdownGenerator renders an endpoint snapshot as reference documentation.
type MarkdownGenerator struct {
	mermaid *MermaidGenerator
}

// NewMarkdownGenerator creates a markdown generator.
func NewMarkdownGenerator() *MarkdownGenerator {
	return &MarkdownGenerator{mermaid: &MermaidGenerator{}}
}

// GenerateDocs renders the snapshot and writes it to <outDir>/endpoints.md.
func (g *MarkdownGenerator) GenerateDocs(snap *ir.Snapshot, outDir string) error {
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	path := filepath.Join(outDir, "endpoints.md")
	if err := os.WriteFile(path, []byte(g.Render(snap)), 0644); err != nil {
		return fmt.Errorf("failed to write documentation: %w", err)
	}
	return nil
}

// Render produces the full markdown document for one snapshot.
func (g *MarkdownGenerator) Render(snap *ir.Snapshot) string {
	var sb strings.Builder

	sb.WriteString("# API Surface\n\n")
	sb.WriteString(fmt.Sprintf("- **Endpoints**: %d\n", len(snap.Endpoints)))
	sb.WriteString(fmt.Sprintf("- **Root**: `%s`\n", snap.Root))
	if snap.Revision != "" {
		sb.WriteString(fmt.Sprintf("- **Revision**: `%s`\n", snap.Revision))
	}
	sb.WriteString(fmt.Sprintf("- **Generated**: %s\n", snap.GeneratedAt.Format("2006-01-02 15:04:05 MST")))
	sb.WriteString(fmt.Sprintf("- **Schema**: %s\n\n", snap.SchemaVersion))

	byController := groupByController(snap.Endpoints)
	controllers := sortedControllers(byController)

	if len(controllers) > 0 {
		sb.WriteString("## Controllers\n\n")
		for _, controller := range controllers {
			sb.WriteString(fmt.Sprintf("- [%s](#%s) (%d endpoints)\n",
				controller, strings.ToLower(controller), len(byController[controller])))
		}
		sb.WriteString("\n")
	}

	for _, controller := range controllers {
		g.writeControllerSection(&sb, controller, byController[controller])
	}

	if len(snap.Endpoints) > 0 {
		sb.WriteString("## Route Map\n\n")
		sb.WriteString(g.mermaid.GenerateRouteMap(snap))
	}

	return sb.String()
}

func (g *MarkdownGenerator) writeControllerSection(sb *strings.Builder, controller string, endpoints []ir.EndpointDescriptor) {
	sb.WriteString(fmt.Sprintf("## %s\n\n", controller))
	sb.WriteString("| Method | Route | Action | Path Params | Query Params | Request Body | Confidence |\n")
	sb.WriteString("|--------|-------|--------|-------------|--------------|--------------|------------|\n")

	for _, e := range endpoints {
		sb.WriteString(fmt.Sprintf("| %s | `%s` | `%s` | %s | %s | %s | %.2f |\n",
			e.Method,
			e.Route,
			e.ActionName,
			cellOrDash(strings.Join(e.PathParams, ", ")),
			cellOrDash(strings.Join(e.QueryParams, ", ")),
			cellOrDash(renderSchema(e.RequestBody)),
			e.Confidence,
		))
	}
	sb.WriteString("\n")

	for _, e := range endpoints {
		if e.SourceFile == "" {
			continue
		}
		sb.WriteString(fmt.Sprintf("- `%s %s` declared in `%s:%d`\n", e.Method, e.Route, e.SourceFile, e.Line))
	}
	sb.WriteString("\n")
}

func cellOrDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
