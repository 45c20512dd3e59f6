package generator

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"apiscout/internal/index"
	"apiscout/internal/ir"
)

func sampleSnapshot() *ir.Snapshot {
	return ir.NewSnapshot("/repo", "abc1234", []ir.EndpointDescriptor{
		{
			Method:         ir.MethodGet,
			Route:          "/api/users",
			RawPath:        "/api/users?page=1",
			ControllerName: "Users",
			ActionName:     "getUsers",
			QueryParams:    []string{"page"},
			SourceFile:     "src/users.ts",
			Line:           4,
			Confidence:     0.93,
		},
		{
			Method:         ir.MethodPost,
			Route:          "/api/users",
			RawPath:        "/api/users",
			ControllerName: "Users",
			ActionName:     "postUsers",
			RequestBody:    []ir.SchemaField{{Name: "name", Type: ir.FieldString}},
			SourceFile:     "src/users.ts",
			Line:           9,
			Confidence:     0.90,
		},
		{
			Method:         ir.MethodGet,
			Route:          "/api/orders",
			RawPath:        "/api/orders",
			ControllerName: "Orders",
			ActionName:     "getOrders",
			SourceFile:     "src/orders.ts",
			Line:           2,
			Confidence:     0.95,
		},
	})
}

func TestReportGenerator_JSON(t *testing.T) {
	gen := NewReportGenerator("json", false)
	out := gen.Generate(sampleSnapshot(), []index.FileFailure{{Path: "src/broken.ts", Reason: "source contains syntax errors"}})

	var decoded struct {
		SchemaVersion string                  `json:"schema_version"`
		Endpoints     []ir.EndpointDescriptor `json:"endpoints"`
		Failures      []index.FileFailure     `json:"failures"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))

	assert.Equal(t, ir.SchemaVersion, decoded.SchemaVersion)
	assert.Len(t, decoded.Endpoints, 3)
	require.Len(t, decoded.Failures, 1)
	assert.Equal(t, "src/broken.ts", decoded.Failures[0].Path)
}

func TestReportGenerator_Console(t *testing.T) {
	gen := NewReportGenerator("console", false)
	out := gen.Generate(sampleSnapshot(), nil)

	assert.Contains(t, out, "3 endpoints (2 GET, 1 POST)")
	assert.Contains(t, out, "Users")
	assert.Contains(t, out, "Orders")
	assert.Contains(t, out, "/api/users")
	assert.Contains(t, out, "getUsers")
	assert.Contains(t, out, "body: name: String")
	assert.Contains(t, out, "query: page")
	assert.Contains(t, out, "revision abc1234")
}

func TestReportGenerator_ConsoleSkippedFiles(t *testing.T) {
	gen := NewReportGenerator("console", false)
	out := gen.Generate(sampleSnapshot(), []index.FileFailure{{Path: "src/broken.ts", Reason: "source contains syntax errors"}})

	assert.Contains(t, out, "1 files skipped")
	assert.Contains(t, out, "src/broken.ts: source contains syntax errors")
}

func TestMarkdownGenerator_Render(t *testing.T) {
	gen := NewMarkdownGenerator()
	out := gen.Render(sampleSnapshot())

	assert.Contains(t, out, "# API Surface")
	assert.Contains(t, out, "## Users")
	assert.Contains(t, out, "## Orders")
	assert.Contains(t, out, "| POST | `/api/users` | `postUsers` |")
	assert.Contains(t, out, "name: String")
	assert.Contains(t, out, "`src/users.ts:9`")
	assert.Contains(t, out, "## Route Map")
	assert.Contains(t, out, "```mermaid")
}

func TestMermaidGenerator_RouteMap(t *testing.T) {
	gen := &MermaidGenerator{}
	out := gen.GenerateRouteMap(sampleSnapshot())

	assert.Contains(t, out, "graph TD")
	assert.Contains(t, out, `api --> ctrl_Users["Users"]`)
	assert.Contains(t, out, `ctrl_Users --> ep_GET_api_users["GET /api/users"]`)
	assert.Contains(t, out, `ctrl_Orders --> ep_GET_api_orders["GET /api/orders"]`)
}

func TestMermaidGenerator_ControllerDiagram(t *testing.T) {
	gen := &MermaidGenerator{}
	out := gen.GenerateControllerDiagram("Users", []ir.EndpointDescriptor{
		{ActionName: "getUsers"},
		{ActionName: "deleteUserId", PathParams: []string{"userId"}},
	})

	assert.Contains(t, out, "classDiagram")
	assert.Contains(t, out, "class Users {")
	assert.Contains(t, out, "+getUsers()")
	assert.Contains(t, out, "+deleteUserId(userId)")
}

func TestScanReport_FinalizeOrdersSignals(t *testing.T) {
	report := NewScanReport("/repo")

	h := report.BeginStage("scan")
	report.EndStage(h, "ok", map[string]float64{"files": 12}, nil)

	report.AddSignal("low_confidence", "extract", "info", "endpoint below threshold", 0.5)
	report.AddSignal("parse_failure", "extract", "warning", "src/broken.ts skipped", 0)
	report.RecordScan(12, 1, 9)
	report.Finalize()

	require.Len(t, report.Signals, 2)
	assert.Equal(t, "warning", report.Signals[0].Severity, "warnings sort before info signals")
	assert.Equal(t, 1, report.Summary.StageCount)
	assert.Equal(t, 0, report.Summary.FailedStages)
	assert.Equal(t, 12, report.Summary.FilesScanned)
	assert.Equal(t, 1, report.Summary.FilesSkipped)
	assert.Equal(t, 9, report.Summary.EndpointCount)
	assert.Equal(t, map[string]int{"warning": 1, "info": 1}, report.Summary.SignalsBySeverity)
}
