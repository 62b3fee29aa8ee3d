package performance

import (
	"bytes"
	"fmt"
	"sort"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/foliotrack/folio/internal/models"
)

// RenderPerformanceChart renders a PNG line chart of one currency's daily
// value and cost basis series. Two series: Total Value (blue solid) and
// Total Investment (gray dashed). Returns raw PNG bytes.
func RenderPerformanceChart(days []models.DailyPerformanceRecord, currency string) ([]byte, error) {
	sorted := make([]models.DailyPerformanceRecord, len(days))
	copy(sorted, days)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date) })

	var (
		xValues     []time.Time
		valueY      []float64
		investmentY []float64
	)
	for _, d := range sorted {
		cd, ok := d.PerCurrency[currency]
		if !ok {
			continue
		}
		xValues = append(xValues, d.Date)
		valueY = append(valueY, cd.TotalValue)
		investmentY = append(investmentY, cd.TotalInvestment)
	}

	if len(xValues) < 2 {
		return nil, fmt.Errorf("%w: need at least 2 data points in %s, got %d", ErrNoData, currency, len(xValues))
	}

	valueSeries := chart.TimeSeries{
		Name: "Total Value",
		Style: chart.Style{
			StrokeColor: drawing.ColorFromHex("2563eb"),
			StrokeWidth: 2.5,
		},
		XValues: xValues,
		YValues: valueY,
	}

	investmentSeries := chart.TimeSeries{
		Name: "Total Investment",
		Style: chart.Style{
			StrokeColor:     drawing.ColorFromHex("9ca3af"),
			StrokeWidth:     1.5,
			StrokeDashArray: []float64{5.0, 3.0},
		},
		XValues: xValues,
		YValues: investmentY,
	}

	graph := chart.Chart{
		Title:  fmt.Sprintf("Portfolio Performance (%s)", currency),
		Width:  900,
		Height: 400,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 10, Right: 20, Bottom: 10},
		},
		XAxis: chart.XAxis{
			TickPosition: chart.TickPositionBetweenTicks,
			ValueFormatter: func(v interface{}) string {
				if t, ok := v.(float64); ok {
					return chart.TimeFromFloat64(t).Format("Jan 06")
				}
				return ""
			},
		},
		YAxis: chart.YAxis{
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("%.0f", f)
				}
				return ""
			},
		},
		Series: []chart.Series{
			valueSeries,
			investmentSeries,
		},
	}

	graph.Elements = []chart.Renderable{
		chart.LegendLeft(&graph),
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("chart render failed: %w", err)
	}

	return buf.Bytes(), nil
}
