package schemas

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_ValidPartList(t *testing.T) {
	doc := `{
		"parts": [
			{"name": "Side", "width": 600, "height": 400, "quantity": 2, "material": "white",
			 "edge_banding": {"top": true}}
		],
		"stock": {"width": 2730, "height": 1830, "price_per_sheet": 300},
		"kerf": 3,
		"margin": 10
	}`
	assert.NoError(t, Validate(PartList, []byte(doc)))
}

func TestValidate_ReportsEveryField(t *testing.T) {
	doc := `{"parts": [
		{"width": 0, "height": 400, "quantity": 1, "material": "white"},
		{"width": 100, "height": 400, "quantity": 0, "material": " "}
	]}`

	err := Validate(PartList, []byte(doc))
	require.Error(t, err)

	var verr *SchemaValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, PartList, verr.Schema)

	fields := map[string]bool{}
	for _, fe := range verr.Errors {
		fields[fe.Field] = true
	}
	assert.True(t, fields["parts.0.width"], "got %v", verr.Errors)
	assert.True(t, fields["parts.1.quantity"], "got %v", verr.Errors)
	assert.True(t, fields["parts.1.material"], "got %v", verr.Errors)
}

func TestValidate_MissingParts(t *testing.T) {
	err := Validate(PartList, []byte(`{}`))

	var verr *SchemaValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, err.Error(), "parts")
}

func TestValidate_MalformedJSON(t *testing.T) {
	err := Validate(PartList, []byte(`{"parts": [`))

	var lerr *SchemaLoadError
	require.True(t, errors.As(err, &lerr))
	assert.NotNil(t, errors.Unwrap(err))
}

func TestValidate_UnknownSchema(t *testing.T) {
	err := Validate("nope", []byte(`{}`))

	var lerr *SchemaLoadError
	require.True(t, errors.As(err, &lerr))
	assert.Contains(t, err.Error(), "unknown schema")
}
