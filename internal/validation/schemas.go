package validation

import (
	"encoding/json"
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

// Request payload schemas, compiled once at startup. Inline definitions keep
// the validator usable without a schema directory on disk.
const gameUpsertSchema = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "object",
	"required": ["title", "category", "difficulty", "estimated_time", "xp_reward"],
	"properties": {
		"title": {"type": "string", "minLength": 1, "maxLength": 200},
		"category": {"type": "string", "minLength": 1, "maxLength": 100},
		"difficulty": {"type": "string", "minLength": 1, "maxLength": 50},
		"estimated_time": {"type": "number", "minimum": 1, "maximum": 480},
		"xp_reward": {"type": "number", "minimum": 0},
		"rating": {"type": "number", "minimum": 0, "maximum": 5},
		"likes": {"type": "integer", "minimum": 0},
		"active": {"type": "boolean"}
	},
	"additionalProperties": false
}`

const reviewSchema = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "object",
	"required": ["quality"],
	"properties": {
		"quality": {"type": "integer", "minimum": 0, "maximum": 5}
	},
	"additionalProperties": false
}`

const authRequestSchema = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "object",
	"required": ["user_id"],
	"properties": {
		"user_id": {"type": "string", "format": "uuid"},
		"user_tier": {"type": "string", "enum": ["free", "premium"]}
	},
	"additionalProperties": false
}`

// SchemaValidator handles JSON schema validation for API request payloads.
type SchemaValidator struct {
	schemas map[string]*gojsonschema.Schema
}

func NewSchemaValidator() (*SchemaValidator, error) {
	sources := map[string]string{
		"game-upsert":  gameUpsertSchema,
		"review":       reviewSchema,
		"auth-request": authRequestSchema,
	}

	sv := &SchemaValidator{
		schemas: make(map[string]*gojsonschema.Schema, len(sources)),
	}

	for name, source := range sources {
		schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(source))
		if err != nil {
			return nil, fmt.Errorf("failed to compile schema %s: %w", name, err)
		}
		sv.schemas[name] = schema
	}

	return sv, nil
}

// ValidateGameUpsert validates a game create/update payload.
func (sv *SchemaValidator) ValidateGameUpsert(data interface{}) *ValidationResult {
	return sv.validate("game-upsert", data)
}

// ValidateReview validates a flashcard review payload.
func (sv *SchemaValidator) ValidateReview(data interface{}) *ValidationResult {
	return sv.validate("review", data)
}

// ValidateAuthRequest validates a token mint payload.
func (sv *SchemaValidator) ValidateAuthRequest(data interface{}) *ValidationResult {
	return sv.validate("auth-request", data)
}

func (sv *SchemaValidator) validate(schemaName string, data interface{}) *ValidationResult {
	schema, exists := sv.schemas[schemaName]
	if !exists {
		return &ValidationResult{
			Valid: false,
			Errors: []ValidationError{{
				Field:   "schema",
				Message: fmt.Sprintf("Schema '%s' not found", schemaName),
				Code:    "SCHEMA_NOT_FOUND",
			}},
		}
	}

	var documentLoader gojsonschema.JSONLoader
	switch v := data.(type) {
	case string:
		documentLoader = gojsonschema.NewStringLoader(v)
	case []byte:
		documentLoader = gojsonschema.NewBytesLoader(v)
	default:
		jsonBytes, err := json.Marshal(data)
		if err != nil {
			return &ValidationResult{
				Valid: false,
				Errors: []ValidationError{{
					Field:   "data",
					Message: fmt.Sprintf("Failed to marshal data to JSON: %v", err),
					Code:    "JSON_MARSHAL_ERROR",
				}},
			}
		}
		documentLoader = gojsonschema.NewBytesLoader(jsonBytes)
	}

	result, err := schema.Validate(documentLoader)
	if err != nil {
		return &ValidationResult{
			Valid: false,
			Errors: []ValidationError{{
				Field:   "validation",
				Message: fmt.Sprintf("Validation error: %v", err),
				Code:    "VALIDATION_ERROR",
			}},
		}
	}

	validationResult := &ValidationResult{
		Valid:  result.Valid(),
		Errors: make([]ValidationError, 0),
	}

	if !result.Valid() {
		for _, err := range result.Errors() {
			validationResult.Errors = append(validationResult.Errors, ValidationError{
				Field:   err.Field(),
				Message: err.Description(),
				Code:    "VALIDATION_ERROR",
				Value:   err.Value(),
			})
		}
	}

	return validationResult
}

// ValidationResult represents the result of a validation operation
type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

// ValidationError represents a single validation error
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Code    string      `json:"code"`
	Value   interface{} `json:"value,omitempty"`
}

func (ve ValidationError) Error() string {
	return fmt.Sprintf("validation error in field '%s': %s", ve.Field, ve.Message)
}

// ToAPIError converts validation errors to the API error envelope.
func (vr *ValidationResult) ToAPIError() map[string]interface{} {
	if vr.Valid {
		return nil
	}

	errorDetails := make(map[string]interface{})
	errorDetails["validationErrors"] = vr.Errors

	fieldErrors := make(map[string][]string)
	for _, err := range vr.Errors {
		if err.Field != "" {
			fieldErrors[err.Field] = append(fieldErrors[err.Field], err.Message)
		}
	}

	if len(fieldErrors) > 0 {
		errorDetails["fieldErrors"] = fieldErrors
	}

	return map[string]interface{}{
		"error": map[string]interface{}{
			"code":    "VALIDATION_ERROR",
			"message": "Request validation failed",
			"details": errorDetails,
		},
	}
}
