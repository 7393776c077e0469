package export

import (
	"fmt"
	"io"
	"os"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/piwi3910/marcenapp/internal/model"
)

// WriteChart renders an HTML page with per-sheet utilization bars and a
// used-versus-waste breakdown by material.
func WriteChart(w io.Writer, result model.NestingResult) error {
	if len(result.Sheets) == 0 {
		return ErrNoSheets
	}
	page := components.NewPage()
	page.PageTitle = "Nesting utilization"
	page.AddCharts(utilizationBar(result), materialPie(result))
	if err := page.Render(w); err != nil {
		return fmt.Errorf("rendering chart: %w", err)
	}
	return nil
}

func ExportChart(path string, result model.NestingResult) error {
	if len(result.Sheets) == 0 {
		return ErrNoSheets
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()
	return WriteChart(f, result)
}

func utilizationBar(result model.NestingResult) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Sheet utilization",
			Subtitle: fmt.Sprintf("%d sheets, %.1f%% overall", len(result.Sheets), result.Efficiency*100),
		}),
		charts.WithYAxisOpts(opts.YAxis{Name: "%", Max: 100}),
	)

	labels := make([]string, len(result.Sheets))
	data := make([]opts.BarData, len(result.Sheets))
	for i, s := range result.Sheets {
		labels[i] = fmt.Sprintf("%d %s", i+1, s.Material)
		data[i] = opts.BarData{Value: round1(result.SheetEfficiency(i) * 100)}
	}
	bar.SetXAxis(labels).AddSeries("Utilization", data)
	return bar
}

func materialPie(result model.NestingResult) *charts.Pie {
	pie := charts.NewPie()
	pie.SetGlobalOptions(charts.WithTitleOpts(opts.Title{Title: "Area by material (m²)"}))

	area := result.Stock.Area()
	var data []opts.PieData
	for _, m := range result.Materials() {
		var used float64
		for _, s := range result.Sheets {
			if s.Material == m {
				used += s.UsedArea
			}
		}
		waste := float64(result.SheetsFor(m))*area - used
		data = append(data,
			opts.PieData{Name: m + " used", Value: round1(used / 1e6)},
			opts.PieData{Name: m + " waste", Value: round1(waste / 1e6)},
		)
	}
	pie.AddSeries("Area", data)
	return pie
}
