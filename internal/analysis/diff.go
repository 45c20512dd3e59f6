package analysis

import (
	"apiscout/internal/ir"
)

// EndpointChange is one endpoint whose surface differs between two
// snapshots. Fields lists the descriptor fields that moved; provenance
// (source file, line, confidence) is ignored, so refactors that only move
// call sites do not register as changes.
type EndpointChange struct {
	Before   ir.EndpointDescriptor
	After    ir.EndpointDescriptor
	Fields   []string
	Breaking bool
}

// DiffReport summarizes the endpoint surface drift between two snapshots.
type DiffReport struct {
	Added   []ir.EndpointDescriptor
	Removed []ir.EndpointDescriptor
	Changed []EndpointChange
}

// Empty reports whether the two snapshots describe the same surface.
func (r *DiffReport) Empty() bool {
	return len(r.Added) == 0 && len(r.Removed) == 0 && len(r.Changed) == 0
}

// BreakingCount tallies removals plus contract-breaking changes.
func (r *DiffReport) BreakingCount() int {
	n := len(r.Removed)
	for _, c := range r.Changed {
		if c.Breaking {
			n++
		}
	}
	return n
}

// Differ compares endpoint snapshots by method+route identity.
type Differ struct{}

// NewDiffer creates a new differ.
func NewDiffer() *Differ {
	return &Differ{}
}

// Diff reports what changed from before to after. Output order follows the
// snapshots' own endpoint order, so reports are stable across runs.
func (d *Differ) Diff(before, after *ir.Snapshot) *DiffReport {
	report := &DiffReport{}

	prev := make(map[string]ir.EndpointDescriptor)
	for _, e := range before.Endpoints {
		prev[e.Key()] = e
	}
	next := make(map[string]bool)
	for _, e := range after.Endpoints {
		next[e.Key()] = true
	}

	for _, e := range after.Endpoints {
		old, existed := prev[e.Key()]
		if !existed {
			report.Added = append(report.Added, e)
			continue
		}
		if change, differs := compareEndpoints(old, e); differs {
			report.Changed = append(report.Changed, change)
		}
	}

	for _, e := range before.Endpoints {
		if !next[e.Key()] {
			report.Removed = append(report.Removed, e)
		}
	}

	return report
}

func compareEndpoints(before, after ir.EndpointDescriptor) (EndpointChange, bool) {
	change := EndpointChange{Before: before, After: after}

	if before.RawPath != after.RawPath {
		change.Fields = append(change.Fields, "raw_path")
	}
	if before.ControllerName != after.ControllerName {
		change.Fields = append(change.Fields, "controller_name")
	}
	if before.ActionName != after.ActionName {
		change.Fields = append(change.Fields, "action_name")
	}
	if !stringsEqual(before.PathParams, after.PathParams) {
		change.Fields = append(change.Fields, "path_params")
		change.Breaking = true
	}
	if !stringsEqual(before.QueryParams, after.QueryParams) {
		change.Fields = append(change.Fields, "query_params")
	}
	if !schemaEqual(before.RequestBody, after.RequestBody) {
		change.Fields = append(change.Fields, "request_body")
		change.Breaking = true
	}

	return change, len(change.Fields) > 0
}

func stringsEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func schemaEqual(a, b []ir.SchemaField) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
