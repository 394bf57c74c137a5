// Package validation checks inbound service-hook envelopes against a JSON
// schema before they are dispatched to handlers.
package validation

import (
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (r *ValidationResult) GetErrorMessages() []string {
	msgs := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		msgs = append(msgs, fmt.Sprintf("%s: %s", e.Field, e.Message))
	}
	return msgs
}

// EnvelopeSchema describes the service-hook callback body the platform sends
// on each pipeline event. Post-images are optional: the registered post-image
// may be absent, and handlers must treat that as a documented skip condition,
// not a transport error.
func EnvelopeSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":     "object",
		"required": []interface{}{"messageName", "entityName", "stage", "mode", "userId"},
		"properties": map[string]interface{}{
			"messageName": map[string]interface{}{
				"type":      "string",
				"minLength": 1,
			},
			"entityName": map[string]interface{}{
				"type":      "string",
				"minLength": 1,
			},
			"stage": map[string]interface{}{
				"type": "string",
				"enum": []interface{}{"PreValidation", "PreOperation", "PostOperation"},
			},
			"mode": map[string]interface{}{
				"type": "string",
				"enum": []interface{}{"Synchronous", "Asynchronous"},
			},
			"userId": map[string]interface{}{
				"type":      "string",
				"minLength": 1,
			},
			"correlationId": map[string]interface{}{
				"type": "string",
			},
			"postImages": map[string]interface{}{
				"type": "object",
				"additionalProperties": map[string]interface{}{
					"type":     "object",
					"required": []interface{}{"id"},
					"properties": map[string]interface{}{
						"id":         map[string]interface{}{"type": "string"},
						"entity":     map[string]interface{}{"type": "string"},
						"attributes": map[string]interface{}{"type": "object"},
					},
				},
			},
		},
		"additionalProperties": false,
	}
}

// ValidateEnvelope validates a raw service-hook body against EnvelopeSchema.
func ValidateEnvelope(body []byte) (*ValidationResult, error) {
	schemaLoader := gojsonschema.NewGoLoader(EnvelopeSchema())
	documentLoader := gojsonschema.NewBytesLoader(body)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return nil, fmt.Errorf("schema validation error: %w", err)
	}

	out := &ValidationResult{Valid: result.Valid()}
	for _, desc := range result.Errors() {
		out.Errors = append(out.Errors, ValidationError{
			Field:   desc.Field(),
			Message: desc.Description(),
		})
	}
	return out, nil
}
