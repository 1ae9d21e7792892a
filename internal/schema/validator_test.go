package schema

import (
	"errors"
	"strings"
	"testing"
)

func TestCheck(t *testing.T) {
	valid := []struct {
		name   string
		schema map[string]any
	}{
		{"nil schema", nil},
		{"empty object", map[string]any{}},
		{"simple object", map[string]any{
			"type": "object",
			"properties": map[string]any{
				"issue":    map[string]any{"type": "string"},
				"solution": map[string]any{"type": "string"},
				"page":     map[string]any{"type": "integer"},
			},
			"required": []any{"issue", "solution", "page"},
		}},
		{"array of records", map[string]any{
			"type": "array",
			"items": map[string]any{
				"type": "object",
			},
		}},
	}

	for _, tc := range valid {
		t.Run("accepts "+tc.name, func(t *testing.T) {
			if err := Check(tc.schema); err != nil {
				t.Errorf("Check() rejected valid schema: %v", err)
			}
		})
	}

	invalid := []struct {
		name   string
		schema map[string]any
	}{
		{"bogus type keyword", map[string]any{"type": "not-a-real-type"}},
		{"type as number", map[string]any{"type": 42}},
		{"properties as list", map[string]any{"properties": []any{"a"}}},
		{"required as string", map[string]any{"required": "issue"}},
	}

	for _, tc := range invalid {
		t.Run("rejects "+tc.name, func(t *testing.T) {
			err := Check(tc.schema)
			if err == nil {
				t.Fatal("Check() accepted invalid schema")
			}
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected ValidationError, got %T", err)
			}
			if ve.Message == "" {
				t.Error("expected a message describing the violation")
			}
			if !strings.Contains(err.Error(), "invalid schema") {
				t.Errorf("unexpected error text: %v", err)
			}
		})
	}
}

func TestValidateDocument(t *testing.T) {
	recordSchema := map[string]any{
		"type": "array",
		"items": map[string]any{
			"type": "object",
			"properties": map[string]any{
				"issue":    map[string]any{"type": "string"},
				"solution": map[string]any{"type": "string"},
				"page":     map[string]any{"type": "integer"},
			},
			"required": []any{"issue", "solution", "page"},
		},
	}

	t.Run("matching document passes", func(t *testing.T) {
		doc := []byte(`[{"issue": "noisy belt", "solution": "tighten", "page": 2}]`)
		if err := ValidateDocument(recordSchema, doc); err != nil {
			t.Errorf("ValidateDocument() error = %v", err)
		}
	})

	t.Run("empty list passes", func(t *testing.T) {
		if err := ValidateDocument(recordSchema, []byte(`[]`)); err != nil {
			t.Errorf("ValidateDocument() error = %v", err)
		}
	})

	t.Run("missing field fails", func(t *testing.T) {
		doc := []byte(`[{"issue": "noisy belt"}]`)
		if err := ValidateDocument(recordSchema, doc); err == nil {
			t.Error("expected validation failure for missing fields")
		}
	})

	t.Run("nil schema passes anything", func(t *testing.T) {
		if err := ValidateDocument(nil, []byte(`"whatever"`)); err != nil {
			t.Errorf("ValidateDocument() error = %v", err)
		}
	})
}
