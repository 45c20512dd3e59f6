package generator

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/fatih/color"

	"apiscout/internal/index"
	"apiscout/internal/ir"
)

// ReportGenerator formats scan results for terminals and machine consumers.
type ReportGenerator struct {
	format    string
	useColors bool
}

// NewReportGenerator creates a report generator. Supported formats are
// "console" and "json"; anything else falls back to console.
func NewReportGenerator(format string, useColors bool) *ReportGenerator {
	return &ReportGenerator{
		format:    format,
		useColors: useColors,
	}
}

// Generate creates a formatted report for one snapshot plus the files the
// scan had to skip.
func (r *ReportGenerator) Generate(snap *ir.Snapshot, failures []index.FileFailure) string {
	switch r.format {
	case "json":
		return r.generateJSON(snap, failures)
	default:
		return r.generateConsole(snap, failures)
	}
}

func (r *ReportGenerator) generateJSON(snap *ir.Snapshot, failures []index.FileFailure) string {
	payload := struct {
		*ir.Snapshot
		Failures []index.FileFailure `json:"failures,omitempty"`
	}{snap, failures}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Sprintf("Error generating JSON report: %v", err)
	}
	return string(data)
}

func (r *ReportGenerator) generateConsole(snap *ir.Snapshot, failures []index.FileFailure) string {
	var report strings.Builder

	// Header
	if r.useColors {
		report.WriteString(color.CyanString("🧭 apiscout - API surface report\n"))
		report.WriteString(color.WhiteString("═══════════════════════════════════════\n\n"))
	} else {
		report.WriteString("apiscout - API surface report\n")
		report.WriteString("=======================================\n\n")
	}

	r.writeSummary(&report, snap, failures)

	byController := groupByController(snap.Endpoints)
	for _, controller := range sortedControllers(byController) {
		r.writeController(&report, controller, byController[controller])
	}

	if len(failures) > 0 {
		r.writeFailures(&report, failures)
	}

	// Footer
	generated := snap.GeneratedAt.Format("2006-01-02 15:04:05 MST")
	if snap.Revision != "" {
		report.WriteString(fmt.Sprintf("Generated at %s (revision %s)\n", generated, snap.Revision))
	} else {
		report.WriteString(fmt.Sprintf("Generated at %s\n", generated))
	}

	return report.String()
}

func (r *ReportGenerator) writeSummary(report *strings.Builder, snap *ir.Snapshot, failures []index.FileFailure) {
	counts := make(map[string]int)
	for _, e := range snap.Endpoints {
		counts[e.Method]++
	}

	var parts []string
	for _, m := range []string{ir.MethodGet, ir.MethodPost, ir.MethodPut, ir.MethodPatch, ir.MethodDelete} {
		if counts[m] > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", counts[m], m))
		}
	}
	line := fmt.Sprintf("%d endpoints", len(snap.Endpoints))
	if len(parts) > 0 {
		line += " (" + strings.Join(parts, ", ") + ")"
	}
	if len(failures) > 0 {
		line += fmt.Sprintf(", %d files skipped", len(failures))
	}

	if r.useColors {
		report.WriteString(color.WhiteString("%s\n\n", line))
	} else {
		report.WriteString(line + "\n\n")
	}
}

func (r *ReportGenerator) writeController(report *strings.Builder, controller string, endpoints []ir.EndpointDescriptor) {
	if r.useColors {
		report.WriteString(color.CyanString("%s\n", controller))
	} else {
		report.WriteString(controller + "\n")
	}

	for _, e := range endpoints {
		method := e.Method
		if r.useColors {
			method = methodColor(e.Method)("%-6s", e.Method)
		} else {
			method = fmt.Sprintf("%-6s", e.Method)
		}
		report.WriteString(fmt.Sprintf("  %s %-40s %-20s conf %.2f\n", method, e.Route, e.ActionName, e.Confidence))

		var details []string
		if len(e.PathParams) > 0 {
			details = append(details, "path: "+strings.Join(e.PathParams, ", "))
		}
		if len(e.QueryParams) > 0 {
			details = append(details, "query: "+strings.Join(e.QueryParams, ", "))
		}
		if e.HasBody() {
			details = append(details, "body: "+renderSchema(e.RequestBody))
		}
		if len(details) > 0 {
			line := "         " + strings.Join(details, " | ") + "\n"
			if r.useColors {
				report.WriteString(color.HiBlackString(line))
			} else {
				report.WriteString(line)
			}
		}
	}
	report.WriteString("\n")
}

func (r *ReportGenerator) writeFailures(report *strings.Builder, failures []index.FileFailure) {
	if r.useColors {
		report.WriteString(color.YellowString("⚠️  %d files skipped:\n", len(failures)))
	} else {
		report.WriteString(fmt.Sprintf("%d files skipped:\n", len(failures)))
	}
	for _, f := range failures {
		report.WriteString(fmt.Sprintf("  - %s: %s\n", f.Path, f.Reason))
	}
	report.WriteString("\n")
}

func methodColor(method string) func(format string, a ...interface{}) string {
	switch method {
	case ir.MethodGet:
		return color.GreenString
	case ir.MethodPost:
		return color.YellowString
	case ir.MethodPut:
		return color.BlueString
	case ir.MethodPatch:
		return color.MagentaString
	case ir.MethodDelete:
		return color.RedString
	}
	return color.WhiteString
}

func renderSchema(fields []ir.SchemaField) string {
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f.Name, f.Type))
	}
	return strings.Join(parts, ", ")
}

func groupByController(endpoints []ir.EndpointDescriptor) map[string][]ir.EndpointDescriptor {
	grouped := make(map[string][]ir.EndpointDescriptor)
	for _, e := range endpoints {
		grouped[e.ControllerName] = append(grouped[e.ControllerName], e)
	}
	return grouped
}

func sortedControllers(grouped map[string][]ir.EndpointDescriptor) []string {
	names := make([]string, 0, len(grouped))
	for name := range grouped {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
