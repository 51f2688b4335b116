package indices

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

const histogramBins = 256

// Accumulator keeps streaming statistics for one index over a pass: count,
// sum, sum of squares, min, max, and a fixed-bin histogram over the index's
// declared range for percentile approximation. Merge is associative and
// commutative, so per-block accumulators can be reduced in any order.
type Accumulator struct {
	Index Index
	Count int64
	Sum   float64
	SumSq float64
	Min   float64
	Max   float64
	Hist  [histogramBins]int64

	lo, hi float64
}

func NewAccumulator(i Index) *Accumulator {
	lo, hi := i.Range()
	return &Accumulator{
		Index: i,
		Min:   math.Inf(1),
		Max:   math.Inf(-1),
		lo:    lo,
		hi:    hi,
	}
}

func (a *Accumulator) Add(v float64) {
	a.Count++
	a.Sum += v
	a.SumSq += v * v
	if v < a.Min {
		a.Min = v
	}
	if v > a.Max {
		a.Max = v
	}
	a.Hist[a.bin(v)]++
}

// Values outside the declared range land in the edge bins.
func (a *Accumulator) bin(v float64) int {
	idx := int((v - a.lo) / (a.hi - a.lo) * histogramBins)
	if idx < 0 {
		return 0
	}
	if idx >= histogramBins {
		return histogramBins - 1
	}
	return idx
}

func (a *Accumulator) Merge(other *Accumulator) {
	a.Count += other.Count
	a.Sum += other.Sum
	a.SumSq += other.SumSq
	if other.Min < a.Min {
		a.Min = other.Min
	}
	if other.Max > a.Max {
		a.Max = other.Max
	}
	for i := range a.Hist {
		a.Hist[i] += other.Hist[i]
	}
}

func (a *Accumulator) Mean() float64 {
	if a.Count == 0 {
		return 0
	}
	return a.Sum / float64(a.Count)
}

func (a *Accumulator) StdDev() float64 {
	if a.Count == 0 {
		return 0
	}
	mean := a.Mean()
	variance := a.SumSq/float64(a.Count) - mean*mean
	if variance < 0 {
		// Tiny negative variance can appear from rounding.
		variance = 0
	}
	return math.Sqrt(variance)
}

// Quantile approximates the p-quantile (p in [0,1]) from the histogram,
// treating bin centers as weighted samples.
func (a *Accumulator) Quantile(p float64) float64 {
	if a.Count == 0 {
		return 0
	}
	centers := make([]float64, 0, histogramBins)
	weights := make([]float64, 0, histogramBins)
	binWidth := (a.hi - a.lo) / histogramBins
	for i, n := range a.Hist {
		if n == 0 {
			continue
		}
		centers = append(centers, a.lo+(float64(i)+0.5)*binWidth)
		weights = append(weights, float64(n))
	}
	return stat.Quantile(p, stat.Empirical, centers, weights)
}
