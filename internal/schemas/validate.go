// Package schemas validates untrusted JSON documents against embedded JSON Schemas.
package schemas

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed partlist.schema.json
var partListSchema string

// PartList is the schema for externally produced part lists: a "parts" array
// plus optional stock, kerf, margin and material_order.
const PartList = "partlist"

var registry = map[string]string{
	PartList: partListSchema,
}

// FieldError is one schema violation at a JSON path such as "parts.2.width".
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// SchemaValidationError is returned when a document does not match its schema.
type SchemaValidationError struct {
	Schema string       `json:"schema"`
	Errors []FieldError `json:"errors"`
}

func (e *SchemaValidationError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s document failed schema validation:", e.Schema)
	for i, fe := range e.Errors {
		fmt.Fprintf(&sb, "\n  %d. %s: %s", i+1, fe.Field, fe.Message)
	}
	return sb.String()
}

// SchemaLoadError means the schema itself or the document could not be parsed.
type SchemaLoadError struct {
	Schema  string
	Message string
	Cause   error
}

func (e *SchemaLoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("schema %s: %s: %v", e.Schema, e.Message, e.Cause)
	}
	return fmt.Sprintf("schema %s: %s", e.Schema, e.Message)
}

func (e *SchemaLoadError) Unwrap() error {
	return e.Cause
}

// Validate checks document against the named embedded schema.
func Validate(schema string, document []byte) error {
	content, ok := registry[schema]
	if !ok {
		return &SchemaLoadError{Schema: schema, Message: "unknown schema"}
	}
	return ValidateString(schema, content, string(document))
}

// ValidateString checks jsonContent against schemaContent. name only labels errors.
func ValidateString(name, schemaContent, jsonContent string) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(schemaContent),
		gojsonschema.NewStringLoader(jsonContent),
	)
	if err != nil {
		return &SchemaLoadError{Schema: name, Message: "could not load schema or document", Cause: err}
	}
	if result.Valid() {
		return nil
	}

	verr := &SchemaValidationError{
		Schema: name,
		Errors: make([]FieldError, 0, len(result.Errors())),
	}
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		verr.Errors = append(verr.Errors, FieldError{Field: field, Message: desc.Description()})
	}
	return verr
}
