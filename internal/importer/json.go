package importer

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/piwi3910/marcenapp/internal/model"
	"github.com/piwi3910/marcenapp/internal/schemas"
)

// PartList is a part list document as produced by other tools. Optional
// fields are nil when the document leaves them out.
type PartList struct {
	Name          string            `json:"name,omitempty"`
	Parts         []model.Part      `json:"parts"`
	Stock         *model.StockSheet `json:"stock,omitempty"`
	Kerf          *float64          `json:"kerf,omitempty"`
	Margin        *float64          `json:"margin,omitempty"`
	MaterialOrder []string          `json:"material_order,omitempty"`
}

// Apply overlays the document's optional settings on base.
func (pl PartList) Apply(base model.NestingSettings) model.NestingSettings {
	if pl.Stock != nil {
		base.Stock = *pl.Stock
	}
	if pl.Kerf != nil {
		base.Kerf = *pl.Kerf
	}
	if pl.Margin != nil {
		base.Margin = *pl.Margin
	}
	if len(pl.MaterialOrder) > 0 {
		base.MaterialOrder = append([]string(nil), pl.MaterialOrder...)
	}
	return base
}

// DecodePartList validates data against the part list schema before
// decoding it. It returns a *schemas.SchemaValidationError for documents
// that do not match. Parts without an id are named after their position,
// "p1" for the first part, so the same document always decodes the same way.
func DecodePartList(data []byte) (PartList, error) {
	if err := schemas.Validate(schemas.PartList, data); err != nil {
		return PartList{}, err
	}
	var pl PartList
	if err := json.Unmarshal(data, &pl); err != nil {
		return PartList{}, fmt.Errorf("decoding part list: %w", err)
	}
	taken := make(map[string]bool, len(pl.Parts))
	for _, p := range pl.Parts {
		if p.ID != "" {
			taken[p.ID] = true
		}
	}
	for i := range pl.Parts {
		if pl.Parts[i].ID == "" {
			pl.Parts[i].ID = positionalID(i, taken)
		}
		if pl.Parts[i].Name == "" {
			pl.Parts[i].Name = fmt.Sprintf("Part %d", i+1)
		}
	}
	return pl, nil
}

func positionalID(i int, taken map[string]bool) string {
	id := fmt.Sprintf("p%d", i+1)
	for n := 2; taken[id]; n++ {
		id = fmt.Sprintf("p%d-%d", i+1, n)
	}
	taken[id] = true
	return id
}

// ImportJSON reads a part list document. Schema violations are reported one
// per error line so they read like CSV row problems.
func ImportJSON(data []byte) ImportResult {
	var result ImportResult
	pl, err := DecodePartList(data)
	if err != nil {
		var verr *schemas.SchemaValidationError
		if errors.As(err, &verr) {
			for _, fe := range verr.Errors {
				result.errorf("%s: %s", fe.Field, fe.Message)
			}
			return result
		}
		result.errorf("%v", err)
		return result
	}
	result.Parts = pl.Parts
	if len(pl.Parts) == 0 {
		result.warnf("part list is empty")
	}
	return result
}
