package atlas

import (
	"encoding/json"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom/encoding/geojson"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/hartylabs/housing-atlas/internal/model"
)

// tooltip values use localized number formatting, matching what the map
// page shows on hover.
var tooltipPrinter = message.NewPrinter(language.AmericanEnglish)

// FeatureCollection renders a snapshot as a GeoJSON FeatureCollection for
// the selected metric. The per-feature "value" property is the display
// value (ratio x 100); the raw ratios ride along unscaled so switching the
// metric never touches stored data.
func FeatureCollection(snap *model.Snapshot, metric model.Metric) ([]byte, error) {
	fc := geojson.FeatureCollection{
		Features: make([]*geojson.Feature, 0, len(snap.Counties)),
	}

	for _, c := range snap.Counties {
		display := metric.Value(c) * 100
		fc.Features = append(fc.Features, &geojson.Feature{
			ID:       c.FIPS,
			Geometry: c.Geometry,
			Properties: map[string]any{
				"fips":              c.FIPS,
				"county":            c.Name,
				"value":             display,
				"label":             FormatPercent(metric.Value(c)),
				"rental_roi":        c.RentalYield,
				"property_tax_rate": c.TaxBurden,
			},
		})
	}

	data, err := json.Marshal(&fc)
	if err != nil {
		return nil, eris.Wrap(err, "atlas: encode feature collection")
	}
	return data, nil
}

// FormatPercent renders a raw ratio as a localized percentage string for
// tooltips, e.g. 0.06 -> "6.00%".
func FormatPercent(ratio float64) string {
	return tooltipPrinter.Sprintf("%.2f%%", ratio*100)
}
