// Package schema validates caller-supplied JSON Schemas before they gate
// model output. Validation happens before any OCR or model work so malformed
// schemas are rejected as bad requests, not processing failures.
package schema

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ValidationError reports a caller schema that does not conform to the
// JSON Schema Draft 2020-12 meta-schema. It is client-facing.
type ValidationError struct {
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid schema: %s", e.Message)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Check verifies that the given value is a well-formed JSON Schema under
// Draft 2020-12. A nil schema means "no schema supplied" and passes.
// Pure validation; no side effects.
func Check(schemaMap map[string]any) error {
	if schemaMap == nil {
		return nil
	}

	b, err := json.Marshal(schemaMap)
	if err != nil {
		return &ValidationError{Message: err.Error(), Err: err}
	}

	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource("request.json", bytes.NewReader(b)); err != nil {
		return &ValidationError{Message: err.Error(), Err: err}
	}
	if _, err := compiler.Compile("request.json"); err != nil {
		return &ValidationError{Message: err.Error(), Err: err}
	}
	return nil
}

// Compile compiles a caller schema for validating documents against it.
// The schema must already have passed Check; compile failures here are
// reported the same way.
func Compile(schemaMap map[string]any) (*jsonschema.Schema, error) {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return nil, &ValidationError{Message: err.Error(), Err: err}
	}

	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource("request.json", bytes.NewReader(b)); err != nil {
		return nil, &ValidationError{Message: err.Error(), Err: err}
	}
	compiled, err := compiler.Compile("request.json")
	if err != nil {
		return nil, &ValidationError{Message: err.Error(), Err: err}
	}
	return compiled, nil
}

// ValidateDocument validates parsed JSON data against a caller schema.
// Used to check structured model output locally rather than trusting the
// provider's constrained decoding.
func ValidateDocument(schemaMap map[string]any, data []byte) error {
	if schemaMap == nil {
		return nil
	}

	compiled, err := Compile(schemaMap)
	if err != nil {
		return err
	}

	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	if err := compiled.Validate(doc); err != nil {
		return fmt.Errorf("json does not match schema: %w", err)
	}
	return nil
}
