package thematic

import (
	"fmt"
	"math"

	"github.com/ortho-guardian/ortho-guardian-cli/internal/indices"
	"github.com/ortho-guardian/ortho-guardian-cli/internal/raster"
)

type Operator string

const (
	Greater        Operator = ">"
	Less           Operator = "<"
	GreaterOrEqual Operator = ">="
	LessOrEqual    Operator = "<="
)

func ParseOperator(s string) (Operator, error) {
	switch Operator(s) {
	case Greater, Less, GreaterOrEqual, LessOrEqual:
		return Operator(s), nil
	default:
		return "", fmt.Errorf("unknown operator %q, expected >, <, >= or <=", s)
	}
}

func (o Operator) Apply(v, threshold float64) bool {
	switch o {
	case Greater:
		return v > threshold
	case Less:
		return v < threshold
	case GreaterOrEqual:
		return v >= threshold
	case LessOrEqual:
		return v <= threshold
	default:
		return false
	}
}

// Condition is one threshold comparison over a named index.
type Condition struct {
	Index     string   `yaml:"index"`
	Operator  Operator `yaml:"operator"`
	Threshold float64  `yaml:"threshold"`
}

func (c Condition) String() string {
	return fmt.Sprintf("%s %s %g", c.Index, c.Operator, c.Threshold)
}

// Zone is a named classification rule: the AND-combination of its
// conditions. Conditions are order-insensitive.
type Zone struct {
	Name        string      `yaml:"name"`
	Description string      `yaml:"description"`
	Conditions  []Condition `yaml:"conditions"`
}

// Validate rejects malformed zones before any block is processed.
func (z Zone) Validate() error {
	if z.Name == "" {
		return &raster.InvalidConfigurationError{Reason: "zone has no name"}
	}
	if len(z.Conditions) == 0 {
		return &raster.InvalidConfigurationError{Reason: fmt.Sprintf("zone %q has no conditions", z.Name)}
	}
	for _, c := range z.Conditions {
		if _, err := indices.ParseIndex(c.Index); err != nil {
			return &raster.InvalidConfigurationError{Reason: fmt.Sprintf("zone %q: %v", z.Name, err)}
		}
		if _, err := ParseOperator(string(c.Operator)); err != nil {
			return &raster.InvalidConfigurationError{Reason: fmt.Sprintf("zone %q: %v", z.Name, err)}
		}
	}
	return nil
}

// IndexNames returns the distinct index names the zone references, in first
// appearance order.
func (z Zone) IndexNames() []string {
	seen := make(map[string]bool)
	var names []string
	for _, c := range z.Conditions {
		if !seen[c.Index] {
			seen[c.Index] = true
			names = append(names, c.Index)
		}
	}
	return names
}

const (
	// Detected marks a pixel satisfying every condition of the zone.
	Detected = 255
	// NotDetected marks a valid pixel failing at least one condition; it
	// doubles as the mask's no-data value for invalid pixels.
	NotDetected = 0
)

// evaluateBlock classifies one block. blocks holds one pixel buffer per
// entry of names (the zone's distinct indices); condBlock maps each
// condition to its buffer. A pixel is detected only when valid in every
// referenced index and passing every condition.
func evaluateBlock(conds []Condition, condBlock []int, blocks [][]float32, nodata float32, mask []byte) (detected, valid int64) {
	for p := range mask {
		ok := true
		for _, block := range blocks {
			v := block[p]
			if v == nodata || math.IsNaN(float64(v)) {
				ok = false
				break
			}
		}
		if !ok {
			mask[p] = NotDetected
			continue
		}
		valid++

		hit := true
		for i, c := range conds {
			if !c.Operator.Apply(float64(blocks[condBlock[i]][p]), c.Threshold) {
				hit = false
				break
			}
		}
		if hit {
			mask[p] = Detected
			detected++
		} else {
			mask[p] = NotDetected
		}
	}
	return detected, valid
}
