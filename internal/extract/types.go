// Package extract implements the document-to-structured-data pipeline: OCR'd
// page text goes in, schema-validated troubleshooting records come out.
package extract

import "fmt"

// Request is one extraction job. It is never mutated after construction;
// schema validation is an explicit step that runs before a Request is built.
type Request struct {
	// Text is the page-tagged text to extract from.
	Text string `json:"text"`

	// JSONSchema optionally describes what content should be extracted.
	// Must be a valid JSON Schema (Draft 2020-12).
	JSONSchema map[string]any `json:"json_schema,omitempty"`

	// Instructions are supplemental system instructions.
	Instructions string `json:"instructions,omitempty"`

	// ModelName selects the chat model. Empty means the configured default.
	ModelName string `json:"model_name,omitempty"`
}

// Response is the result of one extraction job. Kept loose on purpose: the
// record shape belongs to the caller's schema, not to this service.
type Response struct {
	Data []map[string]any `json:"data"`
}

// ModelOutputParseError reports that the model's unconstrained output was not
// valid JSON (or not an object/list of objects). Surfaced, never silently
// coerced to an empty result, so callers can retry or escalate.
type ModelOutputParseError struct {
	Err     error
	Content string
}

func (e *ModelOutputParseError) Error() string {
	return fmt.Sprintf("failed to parse model output: %v", e.Err)
}

func (e *ModelOutputParseError) Unwrap() error {
	return e.Err
}
