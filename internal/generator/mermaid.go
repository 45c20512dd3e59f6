package generator

import (
	"fmt"
	"regexp"
	"strings"

	"apiscout/internal/ir"
)

// MermaidGenerator creates diagrams from endpoint snapshots.
type MermaidGenerator struct{}

var mermaidIDRe = regexp.MustCompile(`[^A-Za-z0-9]+`)

// GenerateRouteMap renders the API surface as a flowchart: root, then
// controllers, then one leaf per endpoint.
func (m *MermaidGenerator) GenerateRouteMap(snap *ir.Snapshot) string {
	var sb strings.Builder
	sb.WriteString("```mermaid\n")
	sb.WriteString("graph TD\n")
	sb.WriteString("    api[\"API\"]\n")

	byController := groupByController(snap.Endpoints)
	for _, controller := range sortedControllers(byController) {
		ctrlID := mermaidID("ctrl", controller)
		sb.WriteString(fmt.Sprintf("    api --> %s[\"%s\"]\n", ctrlID, controller))

		for _, e := range byController[controller] {
			leafID := mermaidID("ep", e.Method+" "+e.Route)
			sb.WriteString(fmt.Sprintf("    %s --> %s[\"%s %s\"]\n", ctrlID, leafID, e.Method, e.Route))
		}
	}

	sb.WriteString("```\n")
	return sb.String()
}

// GenerateControllerDiagram renders one controller as a class with its
// derived actions.
func (m *MermaidGenerator) GenerateControllerDiagram(controller string, endpoints []ir.EndpointDescriptor) string {
	var sb strings.Builder
	sb.WriteString("```mermaid\n")
	sb.WriteString("classDiagram\n")
	sb.WriteString(fmt.Sprintf("    class %s {\n", mermaidID("", controller)))

	for _, e := range endpoints {
		params := strings.Join(e.PathParams, ", ")
		sb.WriteString(fmt.Sprintf("        +%s(%s)\n", e.ActionName, params))
	}

	sb.WriteString("    }\n")
	sb.WriteString("```\n")
	return sb.String()
}

// mermaidID builds a node identifier that is safe inside a diagram.
func mermaidID(prefix, raw string) string {
	id := strings.Trim(mermaidIDRe.ReplaceAllString(raw, "_"), "_")
	if prefix == "" {
		return id
	}
	return prefix + "_" + id
}
