package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/marcenapp/internal/model"
)

func TestBuildDefaultScenarios(t *testing.T) {
	base := model.DefaultNestingSettings()
	scenarios := BuildDefaultScenarios(base)

	require.Len(t, scenarios, 3)
	assert.Equal(t, "Current Settings", scenarios[0].Name)
	assert.Equal(t, 1.5, scenarios[1].Settings.Kerf)
	assert.Equal(t, 0.0, scenarios[2].Settings.Margin)

	base.Stock = model.StockSheet{Width: 2440, Height: 1220, PricePerSheet: 200}
	base.Kerf = 1
	base.Margin = 0
	scenarios = BuildDefaultScenarios(base)
	require.Len(t, scenarios, 2)
	assert.Equal(t, "Stock 2730x1830", scenarios[1].Name)
}

func TestCompareScenarios_ResultsInScenarioOrder(t *testing.T) {
	parts := []model.Part{
		part("Side", 700, 1820, 2, "white"),
		part("Shelf", 800, 400, 6, "white"),
	}
	scenarios := BuildDefaultScenarios(model.DefaultNestingSettings())

	results, err := CompareScenarios(context.Background(), scenarios, parts)
	require.NoError(t, err)
	require.Len(t, results, len(scenarios))

	for i, r := range results {
		assert.Equal(t, scenarios[i].Name, r.Scenario.Name)
	}

	// 1820 tall sides exceed the usable height with a 10mm margin.
	current := results[0]
	var tooLarge *PartTooLargeError
	assert.True(t, errors.As(current.Err, &tooLarge))
	assert.NotEmpty(t, current.Error)

	noMargin := results[2]
	require.NoError(t, noMargin.Err)
	assert.Equal(t, 8, noMargin.Result.ItemCount())
	assert.Equal(t, len(noMargin.Result.Sheets), noMargin.SheetsUsed)
	assert.Equal(t, noMargin.Result.Efficiency, noMargin.Efficiency)
}

func TestCompareScenarios_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := CompareScenarios(ctx, BuildDefaultScenarios(model.DefaultNestingSettings()), nil)
	assert.ErrorIs(t, err, context.Canceled)
}
