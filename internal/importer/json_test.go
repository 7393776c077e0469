package importer

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/marcenapp/internal/model"
	"github.com/piwi3910/marcenapp/internal/schemas"
)

func TestDecodePartList(t *testing.T) {
	doc := `{
		"name": "Kitchen",
		"parts": [
			{"width": 600, "height": 400, "quantity": 2, "material": "white"},
			{"id": "door-1", "name": "Door", "width": 700, "height": 500, "quantity": 1, "material": "wood"}
		],
		"kerf": 4,
		"material_order": ["wood", "white"]
	}`

	pl, err := DecodePartList([]byte(doc))
	require.NoError(t, err)
	require.Len(t, pl.Parts, 2)
	assert.Equal(t, "p1", pl.Parts[0].ID)
	assert.Equal(t, "Part 1", pl.Parts[0].Name)
	assert.Equal(t, "door-1", pl.Parts[1].ID)
	assert.Nil(t, pl.Margin)

	settings := pl.Apply(model.DefaultNestingSettings())
	assert.Equal(t, 4.0, settings.Kerf)
	assert.Equal(t, 10.0, settings.Margin)
	assert.Equal(t, []string{"wood", "white"}, settings.MaterialOrder)
}

func TestDecodePartList_MissingIDsAreStable(t *testing.T) {
	doc := []byte(`{"parts": [
		{"width": 600, "height": 400, "quantity": 1, "material": "white"},
		{"id": "p1", "width": 700, "height": 500, "quantity": 1, "material": "white"},
		{"width": 800, "height": 300, "quantity": 1, "material": "white"}
	]}`)

	first, err := DecodePartList(doc)
	require.NoError(t, err)
	second, err := DecodePartList(doc)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	ids := []string{first.Parts[0].ID, first.Parts[1].ID, first.Parts[2].ID}
	assert.Equal(t, []string{"p1-2", "p1", "p3"}, ids)
}

func TestDecodePartList_SchemaViolation(t *testing.T) {
	_, err := DecodePartList([]byte(`{"parts": [{"width": -1, "height": 2, "quantity": 1, "material": "white"}]}`))

	var verr *schemas.SchemaValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "parts.0.width", verr.Errors[0].Field)
}

func TestImportJSON_ReportsSchemaErrorsAsRows(t *testing.T) {
	result := ImportJSON([]byte(`{"parts": [{"width": 10, "height": 10, "quantity": 0, "material": "white"}]}`))
	assert.Empty(t, result.Parts)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "parts.0.quantity")
}

func TestImportJSON_EmptyList(t *testing.T) {
	result := ImportJSON([]byte(`{"parts": []}`))
	assert.Empty(t, result.Errors)
	assert.Equal(t, []string{"part list is empty"}, result.Warnings)
}
