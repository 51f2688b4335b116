package output

import (
	"fmt"
	"os"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/ortho-guardian/ortho-guardian-cli/internal/indices"
)

// Histogram bars per chart; the 256 accumulator bins are folded down so the
// page stays readable.
const chartBins = 64

// CreateHistogramChart renders the per-index value distributions of a pass
// to a single self-contained HTML page, one bar chart per index.
func CreateHistogramChart(result *indices.Result, outputPath string) error {
	page := components.NewPage()
	page.PageTitle = "Vegetation index distributions"

	for _, idx := range indices.All() {
		acc, ok := result.Stats[idx]
		if !ok || acc.Count == 0 {
			continue
		}
		page.AddCharts(histogramBar(idx, acc))
	}

	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create chart file: %w", err)
	}
	defer file.Close()

	if err := page.Render(file); err != nil {
		return fmt.Errorf("failed to render charts: %w", err)
	}

	fmt.Println("Histogram charts saved to", outputPath)
	return nil
}

func histogramBar(idx indices.Index, acc *indices.Accumulator) *charts.Bar {
	lo, hi := idx.Range()
	fold := len(acc.Hist) / chartBins
	binWidth := (hi - lo) / chartBins

	labels := make([]string, chartBins)
	values := make([]opts.BarData, chartBins)
	for i := 0; i < chartBins; i++ {
		var count int64
		for j := 0; j < fold; j++ {
			count += acc.Hist[i*fold+j]
		}
		labels[i] = fmt.Sprintf("%.2f", lo+(float64(i)+0.5)*binWidth)
		values[i] = opts.BarData{Value: count}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    idx.String(),
			Subtitle: fmt.Sprintf("%d valid pixels, mean %.4f", acc.Count, acc.Mean()),
		}),
	)
	bar.SetXAxis(labels).AddSeries("pixels", values)
	return bar
}
