package model

import "github.com/rotisserie/eris"

// Metric selects which derived ratio the presentation layer displays.
type Metric string

const (
	MetricRentalYield Metric = "rental_yield"
	MetricTaxBurden   Metric = "tax_burden"
)

// Metrics lists the displayable metrics in toggle order.
func Metrics() []Metric {
	return []Metric{MetricRentalYield, MetricTaxBurden}
}

// ParseMetric validates a metric name from a query string or flag.
// An empty name selects the rental-yield metric.
func ParseMetric(s string) (Metric, error) {
	switch Metric(s) {
	case "":
		return MetricRentalYield, nil
	case MetricRentalYield:
		return MetricRentalYield, nil
	case MetricTaxBurden:
		return MetricTaxBurden, nil
	default:
		return "", eris.Errorf("model: unknown metric %q", s)
	}
}

// Label returns the legend text for the metric.
func (m Metric) Label() string {
	switch m {
	case MetricTaxBurden:
		return "Property Tax Rate (%)"
	default:
		return "Rental ROI (%)"
	}
}

// Value returns the raw (unscaled) ratio for the metric. Display scaling
// to percent happens in the presentation layer only.
func (m Metric) Value(c CountyMetrics) float64 {
	switch m {
	case MetricTaxBurden:
		return c.TaxBurden
	default:
		return c.RentalYield
	}
}
