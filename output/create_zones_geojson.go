package output

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/ortho-guardian/ortho-guardian-cli/internal/raster"
	"github.com/ortho-guardian/ortho-guardian-cli/internal/thematic"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// CreateZonesGeoJSON writes one feature per classified zone: the raster
// footprint polygon in CRS coordinates with the zone statistics as
// properties.
func CreateZonesGeoJSON(profile raster.Profile, stats []thematic.ZoneStats, outputPath string) error {
	footprint := footprintPolygon(profile)

	fc := geojson.NewFeatureCollection()
	for _, s := range stats {
		feature := geojson.NewFeature(footprint)
		feature.Properties = geojson.Properties{
			"zone":            s.Zone,
			"detected_pixels": s.Detected,
			"valid_pixels":    s.Valid,
			"total_pixels":    s.Total,
			"percentage":      s.Percentage(),
			"area_ha":         s.AreaHa(),
			"area_m2":         s.AreaM2(),
		}
		fc.Append(feature)
	}

	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create GeoJSON file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(fc); err != nil {
		return fmt.Errorf("failed to encode GeoJSON: %w", err)
	}

	fmt.Println("Zone GeoJSON created successfully at", outputPath)
	return nil
}

func footprintPolygon(p raster.Profile) orb.Polygon {
	gt := p.GeoTransform
	corner := func(px, py float64) orb.Point {
		return orb.Point{
			gt[0] + gt[1]*px + gt[2]*py,
			gt[3] + gt[4]*px + gt[5]*py,
		}
	}
	w, h := float64(p.Width), float64(p.Height)
	return orb.Polygon{orb.Ring{
		corner(0, 0),
		corner(w, 0),
		corner(w, h),
		corner(0, h),
		corner(0, 0),
	}}
}
