package indices

import (
	"encoding/json"
	"fmt"
	"os"
)

const SummaryName = "vegetation_indices_stats.json"

// IndexSummary is the serializable digest of one accumulator, written next
// to the index products so later thematic runs can show threshold hints
// without recomputing the pass.
type IndexSummary struct {
	Count  int64   `json:"count"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	P1     float64 `json:"percentile_1"`
	P5     float64 `json:"percentile_5"`
	P25    float64 `json:"percentile_25"`
	P75    float64 `json:"percentile_75"`
	P95    float64 `json:"percentile_95"`
	P99    float64 `json:"percentile_99"`
}

type Summary struct {
	Indices      map[string]IndexSummary `json:"indices"`
	Paths        map[string]string       `json:"paths"`
	Composite    string                  `json:"composite"`
	ValidPixels  int64                   `json:"valid_pixels"`
	MaskedPixels int64                   `json:"masked_pixels"`
	TotalPixels  int64                   `json:"total_pixels"`
}

func (a *Accumulator) Summarize() IndexSummary {
	return IndexSummary{
		Count:  a.Count,
		Min:    a.Min,
		Max:    a.Max,
		Mean:   a.Mean(),
		StdDev: a.StdDev(),
		P1:     a.Quantile(0.01),
		P5:     a.Quantile(0.05),
		P25:    a.Quantile(0.25),
		P75:    a.Quantile(0.75),
		P95:    a.Quantile(0.95),
		P99:    a.Quantile(0.99),
	}
}

func (r *Result) Summary() Summary {
	s := Summary{
		Indices:      make(map[string]IndexSummary),
		Paths:        make(map[string]string),
		Composite:    r.CompositePath,
		ValidPixels:  r.ValidPixels,
		MaskedPixels: r.MaskedPixels,
		TotalPixels:  r.TotalPixels,
	}
	for idx, acc := range r.Stats {
		s.Indices[idx.String()] = acc.Summarize()
	}
	for idx, path := range r.Paths {
		s.Paths[idx.String()] = path
	}
	return s
}

func (s Summary) Save(path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create summary file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(s); err != nil {
		return fmt.Errorf("failed to encode summary: %w", err)
	}
	return nil
}

func LoadSummary(path string) (Summary, error) {
	var s Summary
	data, err := os.ReadFile(path)
	if err != nil {
		return s, fmt.Errorf("failed to read summary file: %w", err)
	}
	if err := json.Unmarshal(data, &s); err != nil {
		return s, fmt.Errorf("failed to decode summary: %w", err)
	}
	return s, nil
}
