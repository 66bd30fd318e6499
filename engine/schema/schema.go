// Package schema validates inbound API request bodies against JSON Schemas
// before they are decoded, so malformed payloads surface as field-level
// validation errors instead of partial unmarshals.
package schema

import (
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

// createTestSchema constrains the create-test request body.
const createTestSchema = `{
	"type": "object",
	"required": ["name", "variants", "traffic_split"],
	"properties": {
		"name": {"type": "string", "minLength": 1},
		"description": {"type": "string"},
		"variants": {
			"type": "array",
			"minItems": 1,
			"items": {
				"type": "object",
				"required": ["name"],
				"properties": {
					"name": {"type": "string", "minLength": 1}
				}
			}
		},
		"traffic_split": {
			"type": "array",
			"minItems": 1,
			"items": {"type": "number", "minimum": 0}
		},
		"duration_days": {"type": "integer", "minimum": 1},
		"metrics": {"type": "array", "items": {"type": "string"}},
		"success_criteria": {
			"type": "object",
			"additionalProperties": {"type": "number"}
		}
	}
}`

// submitFeedbackSchema constrains the submit-feedback request body.
const submitFeedbackSchema = `{
	"type": "object",
	"required": ["user_id", "session_id", "feedback_type", "rating"],
	"properties": {
		"user_id": {"type": "string", "minLength": 1},
		"session_id": {"type": "string", "minLength": 1},
		"feedback_type": {"type": "string", "minLength": 1},
		"rating": {"type": "integer"},
		"comment": {"type": "string"},
		"context": {"type": "object"}
	}
}`

// Validator validates request payloads against precompiled schemas.
type Validator struct {
	createTest     *gojsonschema.Schema
	submitFeedback *gojsonschema.Schema
}

// NewValidator compiles the request schemas.
func NewValidator() (*Validator, error) {
	createTest, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(createTestSchema))
	if err != nil {
		return nil, fmt.Errorf("failed to compile create-test schema: %w", err)
	}
	submitFeedback, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(submitFeedbackSchema))
	if err != nil {
		return nil, fmt.Errorf("failed to compile submit-feedback schema: %w", err)
	}
	return &Validator{
		createTest:     createTest,
		submitFeedback: submitFeedback,
	}, nil
}

// ValidateCreateTest validates a create-test request body.
func (v *Validator) ValidateCreateTest(body []byte) []string {
	return validate(v.createTest, body)
}

// ValidateSubmitFeedback validates a submit-feedback request body.
func (v *Validator) ValidateSubmitFeedback(body []byte) []string {
	return validate(v.submitFeedback, body)
}

// validate runs a schema against raw JSON and returns violation messages,
// or nil when the payload conforms.
func validate(schema *gojsonschema.Schema, body []byte) []string {
	result, err := schema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return []string{fmt.Sprintf("invalid JSON: %v", err)}
	}
	if result.Valid() {
		return nil
	}
	errs := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		errs = append(errs, e.String())
	}
	return errs
}
