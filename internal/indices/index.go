package indices

import (
	"fmt"
	"math"
	"strings"
)

// Index identifies one of the seven spectral indices. The set is closed:
// adding an index means adding a variant here and a case in Evaluate.
type Index int

const (
	NDVI Index = iota
	SAVI
	EVI
	AVI
	BINIR
	Ratio
	BSI
)

// All returns the indices in composite band order.
func All() []Index {
	return []Index{NDVI, SAVI, EVI, AVI, BINIR, Ratio, BSI}
}

const (
	saviL   = 0.5
	eviGain = 2.5
	eviC1   = 6.0
	eviC2   = 7.5
	eviL    = 1.0
)

func (i Index) String() string {
	switch i {
	case NDVI:
		return "NDVI"
	case SAVI:
		return "SAVI"
	case EVI:
		return "EVI"
	case AVI:
		return "AVI"
	case BINIR:
		return "BI_NIR"
	case Ratio:
		return "RATIO"
	case BSI:
		return "BSI"
	default:
		return fmt.Sprintf("Index(%d)", int(i))
	}
}

func ParseIndex(name string) (Index, error) {
	for _, i := range All() {
		if strings.EqualFold(name, i.String()) {
			return i, nil
		}
	}
	return 0, fmt.Errorf("unknown index %q", name)
}

// Range is the declared valid output interval of the index, used as the
// histogram domain for percentile approximation.
func (i Index) Range() (lo, hi float64) {
	switch i {
	case NDVI, EVI, BSI:
		return -1, 1
	case SAVI:
		return -1.5, 1.5
	case AVI:
		return -2, 2
	case BINIR:
		return 0, 1
	case Ratio:
		return 0, 10
	default:
		return -1, 1
	}
}

// Evaluate computes the index for one pixel. Inputs are reflectance proxies
// normalized to [0,1]. Divisions with a zero denominator yield 0 by
// convention rather than NaN; that is a proxy-value choice, not a physical
// claim.
func (i Index) Evaluate(r, g, b, nir float64) float64 {
	switch i {
	case NDVI:
		return safeDiv(nir-r, nir+r)
	case SAVI:
		return safeDiv((1+saviL)*(nir-r), nir+r+saviL)
	case EVI:
		return safeDiv(eviGain*(nir-r), nir+eviC1*r-eviC2*b+eviL)
	case AVI:
		return cubeRoot(nir * (1 - r) * (nir - r))
	case BINIR:
		return (r + g + b + nir) / 4
	case Ratio:
		return safeDiv(nir, r+g+b)
	case BSI:
		return safeDiv((r+g)+(nir+b), (r+g)-(nir+b))
	default:
		return 0
	}
}

func safeDiv(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}

// cubeRoot is the signed real cube root. The radicand of AVI goes negative
// wherever NIR < Red; as an odd function the root stays defined there and
// keeps its sign instead of being masked to 0.
func cubeRoot(v float64) float64 {
	if v < 0 {
		return -math.Pow(-v, 1.0/3.0)
	}
	return math.Pow(v, 1.0/3.0)
}
