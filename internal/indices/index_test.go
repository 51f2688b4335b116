package indices

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluateNDVI(t *testing.T) {
	t.Parallel()

	t.Run("standard vegetation pixel", func(t *testing.T) {
		t.Parallel()
		// NIR=200, Red=100 on a 0-1000 scale.
		got := NDVI.Evaluate(0.1, 0, 0, 0.2)
		assert.InDelta(t, 1.0/3.0, got, 1e-9)
	})

	t.Run("equal bands give zero", func(t *testing.T) {
		t.Parallel()
		got := NDVI.Evaluate(0.1, 0, 0, 0.1)
		assert.Equal(t, 0.0, got)
	})

	t.Run("zero denominator yields exactly zero", func(t *testing.T) {
		t.Parallel()
		got := NDVI.Evaluate(0, 0, 0, 0)
		assert.Equal(t, 0.0, got)
		assert.False(t, math.IsNaN(got))
	})

	t.Run("stays within declared range", func(t *testing.T) {
		t.Parallel()
		lo, hi := NDVI.Range()
		for _, r := range []float64{0, 0.01, 0.2, 0.5, 1} {
			for _, nir := range []float64{0, 0.01, 0.2, 0.5, 1} {
				got := NDVI.Evaluate(r, 0, 0, nir)
				assert.GreaterOrEqual(t, got, lo)
				assert.LessOrEqual(t, got, hi)
			}
		}
	})
}

func TestEvaluateSAVI(t *testing.T) {
	t.Parallel()
	// (1+0.5)*(0.2-0.1)/(0.2+0.1+0.5)
	got := SAVI.Evaluate(0.1, 0, 0, 0.2)
	assert.InDelta(t, 1.5*0.1/0.8, got, 1e-9)
}

func TestEvaluateEVI(t *testing.T) {
	t.Parallel()
	// 2.5*(0.4-0.2)/(0.4+6*0.2-7.5*0.1+1)
	got := EVI.Evaluate(0.2, 0.3, 0.1, 0.4)
	assert.InDelta(t, 2.5*0.2/(0.4+1.2-0.75+1), got, 1e-9)
}

func TestEvaluateAVI(t *testing.T) {
	t.Parallel()

	t.Run("positive radicand", func(t *testing.T) {
		t.Parallel()
		got := AVI.Evaluate(0.1, 0, 0, 0.5)
		want := math.Pow(0.5*0.9*0.4, 1.0/3.0)
		assert.InDelta(t, want, got, 1e-9)
	})

	t.Run("negative radicand keeps its sign", func(t *testing.T) {
		t.Parallel()
		// NIR < Red makes the product negative.
		got := AVI.Evaluate(0.5, 0, 0, 0.1)
		want := -math.Pow(0.1*0.5*0.4, 1.0/3.0)
		assert.InDelta(t, want, got, 1e-9)
		assert.Negative(t, got)
	})

	t.Run("zero radicand gives zero", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, 0.0, AVI.Evaluate(0.2, 0, 0, 0.2))
	})
}

func TestEvaluateBINIR(t *testing.T) {
	t.Parallel()
	got := BINIR.Evaluate(0.1, 0.2, 0.3, 0.4)
	assert.InDelta(t, 0.25, got, 1e-9)
}

func TestEvaluateRatio(t *testing.T) {
	t.Parallel()

	t.Run("standard pixel", func(t *testing.T) {
		t.Parallel()
		got := Ratio.Evaluate(0.1, 0.1, 0.2, 0.8)
		assert.InDelta(t, 2.0, got, 1e-9)
	})

	t.Run("zero denominator yields zero", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, 0.0, Ratio.Evaluate(0, 0, 0, 0.5))
	})
}

func TestEvaluateBSI(t *testing.T) {
	t.Parallel()

	t.Run("standard pixel", func(t *testing.T) {
		t.Parallel()
		r, g, b, nir := 0.3, 0.25, 0.1, 0.2
		got := BSI.Evaluate(r, g, b, nir)
		want := ((r + g) + (nir + b)) / ((r + g) - (nir + b))
		assert.InDelta(t, want, got, 1e-9)
	})

	t.Run("zero denominator yields zero", func(t *testing.T) {
		t.Parallel()
		// (R+G) == (NIR+B) makes the denominator exactly zero.
		assert.Equal(t, 0.0, BSI.Evaluate(0.2, 0.1, 0.1, 0.2))
	})
}

func TestParseIndex(t *testing.T) {
	t.Parallel()

	t.Run("round trips every index", func(t *testing.T) {
		t.Parallel()
		for _, idx := range All() {
			got, err := ParseIndex(idx.String())
			require.NoError(t, err)
			assert.Equal(t, idx, got)
		}
	})

	t.Run("case insensitive", func(t *testing.T) {
		t.Parallel()
		got, err := ParseIndex("bi_nir")
		require.NoError(t, err)
		assert.Equal(t, BINIR, got)
	})

	t.Run("rejects unknown names", func(t *testing.T) {
		t.Parallel()
		_, err := ParseIndex("NDWI")
		assert.Error(t, err)
	})
}

func TestAllOrder(t *testing.T) {
	t.Parallel()
	// Composite band order is part of the output contract.
	want := []string{"NDVI", "SAVI", "EVI", "AVI", "BI_NIR", "RATIO", "BSI"}
	var got []string
	for _, idx := range All() {
		got = append(got, idx.String())
	}
	assert.Equal(t, want, got)
}

func TestRangeBounds(t *testing.T) {
	t.Parallel()
	for _, idx := range All() {
		lo, hi := idx.Range()
		assert.Less(t, lo, hi, "index %s", idx)
	}
}
