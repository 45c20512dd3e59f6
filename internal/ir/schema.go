package ir

import "time"

// SchemaVersion tags serialized snapshots so consumers can detect format drift.
const SchemaVersion = "1.0"

// HTTP methods a descriptor may carry. Anything else is normalized to GET
// before it reaches the IR.
const (
	MethodGet    = "GET"
	MethodPost   = "POST"
	MethodPut    = "PUT"
	MethodPatch  = "PATCH"
	MethodDelete = "DELETE"
)

// KnownMethod reports whether m is one of the five supported HTTP methods.
func KnownMethod(m string) bool {
	switch m {
	case MethodGet, MethodPost, MethodPut, MethodPatch, MethodDelete:
		return true
	}
	return false
}

// Mutating reports whether m may carry a request body.
func Mutating(m string) bool {
	switch m {
	case MethodPost, MethodPut, MethodPatch:
		return true
	}
	return false
}

// FieldType classifies a request-body field by the syntactic kind of its literal.
type FieldType string

const (
	FieldString  FieldType = "String"
	FieldNumber  FieldType = "Number"
	FieldBoolean FieldType = "Boolean"
)

// SchemaField is one named field of an inferred request-body schema.
type SchemaField struct {
	Name string    `json:"name"`
	Type FieldType `json:"type"`
}

// EndpointDescriptor is the canonical record of one backend route derived
// from a frontend call site.
type EndpointDescriptor struct {
	RawPath        string        `json:"raw_path"`
	Route          string        `json:"route"`
	Method         string        `json:"method"`
	ControllerName string        `json:"controller_name"`
	ActionName     string        `json:"action_name"`
	PathParams     []string      `json:"path_params,omitempty"`
	QueryParams    []string      `json:"query_params,omitempty"`
	RequestBody    []SchemaField `json:"request_body,omitempty"`
	SourceFile     string        `json:"source_file,omitempty"`
	Line           int           `json:"line,omitempty"`
	Confidence     float64       `json:"confidence"`
}

// Key is the identity of a descriptor: exactly one endpoint exists per
// (method, route) pair, first occurrence wins.
func (e *EndpointDescriptor) Key() string {
	return e.Method + " " + e.Route
}

// HasBody reports whether a request-body schema was resolved.
func (e *EndpointDescriptor) HasBody() bool {
	return len(e.RequestBody) > 0
}

// Snapshot is the persisted, versioned view of one analysis run.
type Snapshot struct {
	SchemaVersion string               `json:"schema_version"`
	GeneratedAt   time.Time            `json:"generated_at"`
	Root          string               `json:"root"`
	Revision      string               `json:"revision,omitempty"`
	Endpoints     []EndpointDescriptor `json:"endpoints"`
}

// NewSnapshot stamps an endpoint list with the schema version, provenance
// and generation time.
func NewSnapshot(root, revision string, endpoints []EndpointDescriptor) *Snapshot {
	return &Snapshot{
		SchemaVersion: SchemaVersion,
		GeneratedAt:   time.Now().UTC(),
		Root:          root,
		Revision:      revision,
		Endpoints:     endpoints,
	}
}
