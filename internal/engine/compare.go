package engine

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/piwi3910/marcenapp/internal/model"
)

// ComparisonScenario is a named set of settings to compare.
type ComparisonScenario struct {
	Name     string                `json:"name"`
	Settings model.NestingSettings `json:"settings"`
}

// ComparisonResult holds the nesting result and summary figures for one
// scenario. Err is set when the scenario's input was rejected; the other
// scenarios still run.
type ComparisonResult struct {
	Scenario   ComparisonScenario  `json:"scenario"`
	Result     model.NestingResult `json:"result"`
	SheetsUsed int                 `json:"sheets_used"`
	Efficiency float64             `json:"efficiency"`
	WasteValue float64             `json:"waste_value"`
	Err        error               `json:"-"`
	Error      string              `json:"error,omitempty"`
}

// CompareScenarios nests parts once per scenario in parallel and returns the
// results in scenario order. Only context cancellation fails the whole call.
func CompareScenarios(ctx context.Context, scenarios []ComparisonScenario, parts []model.Part) ([]ComparisonResult, error) {
	results := make([]ComparisonResult, len(scenarios))

	g, ctx := errgroup.WithContext(ctx)
	for i, scenario := range scenarios {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := New(scenario.Settings).Compute(parts)
			cr := ComparisonResult{Scenario: scenario, Err: err}
			if err != nil {
				cr.Error = err.Error()
			} else {
				cr.Result = res
				cr.SheetsUsed = len(res.Sheets)
				cr.Efficiency = res.Efficiency
				cr.WasteValue = res.WasteValue
			}
			results[i] = cr
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("comparing scenarios: %w", err)
	}
	return results, nil
}

// BuildDefaultScenarios varies the base settings to show what-if alternatives:
// a thinner blade, no edge trim, and the reference stock when another is configured.
func BuildDefaultScenarios(base model.NestingSettings) []ComparisonScenario {
	scenarios := []ComparisonScenario{
		{Name: "Current Settings", Settings: base},
	}

	if base.Kerf > 1.0 {
		half := base
		half.Kerf = base.Kerf * 0.5
		scenarios = append(scenarios, ComparisonScenario{
			Name:     fmt.Sprintf("Kerf %.1fmm (half)", half.Kerf),
			Settings: half,
		})
	}

	if base.Margin > 0 {
		noMargin := base
		noMargin.Margin = 0
		scenarios = append(scenarios, ComparisonScenario{
			Name:     "No Edge Margin",
			Settings: noMargin,
		})
	}

	ref := model.DefaultStockSheet()
	if base.Stock.Width != ref.Width || base.Stock.Height != ref.Height {
		refStock := base
		refStock.Stock = ref
		scenarios = append(scenarios, ComparisonScenario{
			Name:     fmt.Sprintf("Stock %gx%g", ref.Width, ref.Height),
			Settings: refStock,
		})
	}

	return scenarios
}
