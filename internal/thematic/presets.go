package thematic

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Presets are the predefined zone profiles shipped with the tool, tuned for
// the French ortho-imagery campaigns.
func Presets() []Zone {
	return []Zone{
		{
			Name:        "dense_forest",
			Description: "Dense forest (closed canopy)",
			Conditions: []Condition{
				{Index: "NDVI", Operator: Greater, Threshold: 0.6},
				{Index: "SAVI", Operator: Greater, Threshold: 0.4},
			},
		},
		{
			Name:        "sparse_vegetation",
			Description: "Sparse vegetation (meadows, crops)",
			Conditions: []Condition{
				{Index: "NDVI", Operator: Greater, Threshold: 0.2},
				{Index: "NDVI", Operator: LessOrEqual, Threshold: 0.6},
				{Index: "EVI", Operator: Greater, Threshold: 0.1},
			},
		},
		{
			Name:        "shadow_zone",
			Description: "Shadowed areas under forest cover",
			Conditions: []Condition{
				{Index: "SAVI", Operator: Greater, Threshold: 0.3},
				{Index: "RATIO", Operator: Less, Threshold: 0.8},
				{Index: "BI_NIR", Operator: Less, Threshold: 0.4},
			},
		},
		{
			Name:        "rocky_zone",
			Description: "Rocky areas and bare soil",
			Conditions: []Condition{
				{Index: "BSI", Operator: Greater, Threshold: 0.1},
				{Index: "NDVI", Operator: Less, Threshold: 0.2},
			},
		},
		{
			Name:        "urban_zone",
			Description: "Urban and artificial surfaces",
			Conditions: []Condition{
				{Index: "BI_NIR", Operator: Greater, Threshold: 0.6},
				{Index: "NDVI", Operator: Less, Threshold: 0.3},
			},
		},
		{
			Name:        "water",
			Description: "Water bodies and wetlands",
			Conditions: []Condition{
				{Index: "RATIO", Operator: Less, Threshold: 0.3},
				{Index: "BI_NIR", Operator: Less, Threshold: 0.2},
			},
		},
	}
}

// ThresholdHints are suggested threshold ranges per index, shown when the
// user enters conditions manually.
var ThresholdHints = map[string]string{
	"NDVI":   "range [-1, 1] | vegetation > 0.2 | dense > 0.8 | bare soil < 0.2 | water < 0",
	"SAVI":   "range [-1.5, 1.5] | vegetation > 0.2 | dense > 0.6 | bare soil < 0.1",
	"EVI":    "range [-1, 1] | vegetation > 0.2 | dense > 0.8",
	"BSI":    "range [-1, 1] | bare soil > 0.1 | vegetation < -0.1",
	"RATIO":  "range [0, 10] | vegetation > 1.0 | water < 0.5 | soil around 0.8",
	"BI_NIR": "range [0, 1] | dark < 0.3 | bright > 0.7",
	"AVI":    "range [-2, 2] | vegetation > 0.1",
}

// LoadZones reads custom zone profiles from a YAML file:
//
//	- name: scree
//	  description: High-altitude scree
//	  conditions:
//	    - {index: BSI, operator: ">", threshold: 0.2}
func LoadZones(path string) ([]Zone, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read zones file: %w", err)
	}
	var zones []Zone
	if err := yaml.Unmarshal(data, &zones); err != nil {
		return nil, fmt.Errorf("failed to parse zones file: %w", err)
	}
	for _, z := range zones {
		if err := z.Validate(); err != nil {
			return nil, err
		}
	}
	return zones, nil
}
