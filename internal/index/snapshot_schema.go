package index

import (
	"encoding/json"
	"fmt"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

// snapshotSchemaJSON constrains snapshot documents read from disk. Decoding
// into ir.Snapshot would silently zero mistyped fields, so external files are
// checked against this schema before they are trusted.
const snapshotSchemaJSON = `{
  "type": "object",
  "required": ["schema_version", "generated_at", "root", "endpoints"],
  "properties": {
    "schema_version": { "type": "string" },
    "generated_at": { "type": "string" },
    "root": { "type": "string" },
    "revision": { "type": "string" },
    "endpoints": {
      "type": ["array", "null"],
      "items": {
        "type": "object",
        "required": ["raw_path", "route", "method", "controller_name", "action_name", "confidence"],
        "properties": {
          "raw_path": { "type": "string" },
          "route": { "type": "string" },
          "method": { "type": "string", "enum": ["GET", "POST", "PUT", "PATCH", "DELETE"] },
          "controller_name": { "type": "string" },
          "action_name": { "type": "string" },
          "path_params": { "type": "array", "items": { "type": "string" } },
          "query_params": { "type": "array", "items": { "type": "string" } },
          "request_body": {
            "type": "array",
            "items": {
              "type": "object",
              "required": ["name", "type"],
              "properties": {
                "name": { "type": "string" },
                "type": { "type": "string", "enum": ["String", "Number", "Boolean"] }
              }
            }
          },
          "source_file": { "type": "string" },
          "line": { "type": "integer" },
          "confidence": { "type": "number" }
        }
      }
    }
  }
}`

var snapshotSchema = jsonschema.MustCompileString("snapshot.schema.json", snapshotSchemaJSON)

// validateSnapshotDocument checks a raw snapshot document against the
// embedded schema.
func validateSnapshotDocument(raw []byte) error {
	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		return fmt.Errorf("failed to decode snapshot: %w", err)
	}
	if err := snapshotSchema.Validate(v); err != nil {
		return fmt.Errorf("snapshot schema validation failed: %w", err)
	}
	return nil
}
