package output

import (
	"fmt"
	"os"

	"github.com/gocarina/gocsv"
	"github.com/ortho-guardian/ortho-guardian-cli/internal/indices"
)

type indexStatsRow struct {
	Index  string  `csv:"index"`
	Count  int64   `csv:"count"`
	Min    float64 `csv:"min"`
	Max    float64 `csv:"max"`
	Mean   float64 `csv:"mean"`
	StdDev float64 `csv:"std_dev"`
	P1     float64 `csv:"percentile_1"`
	P5     float64 `csv:"percentile_5"`
	P25    float64 `csv:"percentile_25"`
	P75    float64 `csv:"percentile_75"`
	P95    float64 `csv:"percentile_95"`
	P99    float64 `csv:"percentile_99"`
}

// ExportStatsCSV writes the per-index statistics of a pass to a CSV file,
// one row per index in composite band order.
func ExportStatsCSV(result *indices.Result, outputPath string) error {
	var rows []indexStatsRow
	for _, idx := range indices.All() {
		acc, ok := result.Stats[idx]
		if !ok {
			continue
		}
		s := acc.Summarize()
		rows = append(rows, indexStatsRow{
			Index:  idx.String(),
			Count:  s.Count,
			Min:    s.Min,
			Max:    s.Max,
			Mean:   s.Mean,
			StdDev: s.StdDev,
			P1:     s.P1,
			P5:     s.P5,
			P25:    s.P25,
			P75:    s.P75,
			P95:    s.P95,
			P99:    s.P99,
		})
	}

	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create stats CSV: %w", err)
	}
	defer file.Close()

	if err := gocsv.MarshalFile(&rows, file); err != nil {
		return fmt.Errorf("failed to write stats CSV: %w", err)
	}

	fmt.Println("Index statistics exported to", outputPath)
	return nil
}
