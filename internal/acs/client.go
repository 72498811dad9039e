// Package acs fetches county-level housing statistics from the Census
// Bureau ACS 5-year API and derives the rental-yield and tax-burden ratios.
package acs

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"sort"
	"strconv"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/hartylabs/housing-atlas/internal/faults"
	"github.com/hartylabs/housing-atlas/internal/fetcher"
	"github.com/hartylabs/housing-atlas/internal/model"
)

// ACS variable codes for the three housing figures.
const (
	varMedianRent      = "B25064_001E" // median gross rent, USD/month
	varMedianHomeValue = "B25077_001E" // median home value, USD
	varMedianTax       = "B25092_001E" // median real estate taxes paid, USD/year
)

// The ACS API encodes missing or suppressed estimates as large negative
// sentinel values (-666666666 and friends). Anything below this floor is
// treated as not reported.
const annotationFloor = -100000

// Config holds the fixed query parameters for one deployment.
type Config struct {
	BaseURL   string // e.g. https://api.census.gov/data
	Year      int    // ACS release year, e.g. 2022
	StateFIPS string // 2-digit state code, e.g. "18"
	APIKey    string // optional
}

// Client fetches and parses ACS county statistics.
type Client struct {
	f   fetcher.Fetcher
	cfg Config
}

// New creates an ACS client over the given fetcher.
func New(f fetcher.Fetcher, cfg Config) *Client {
	return &Client{f: f, cfg: cfg}
}

// QueryURL returns the fixed ACS query for the configured state.
func (c *Client) QueryURL() string {
	q := url.Values{}
	q.Set("get", "NAME,"+varMedianRent+","+varMedianHomeValue+","+varMedianTax)
	if c.cfg.APIKey != "" {
		q.Set("key", c.cfg.APIKey)
	}
	// for/in carry colons the Census API expects unescaped; append manually.
	return fmt.Sprintf("%s/%d/acs/acs5?%s&for=county:*&in=state:%s",
		c.cfg.BaseURL, c.cfg.Year, q.Encode(), c.cfg.StateFIPS)
}

// CountyStats fetches the configured state's county statistics and derives
// both ratios. The result is sorted by FIPS. Any county with a missing or
// zero median home value fails the whole fetch: the ratios would be
// undefined, and a partial map is never rendered.
func (c *Client) CountyStats(ctx context.Context) ([]model.CountyStats, error) {
	reqURL := c.QueryURL()
	log := zap.L().With(
		zap.String("component", "acs.client"),
		zap.String("state", c.cfg.StateFIPS),
		zap.Int("year", c.cfg.Year),
	)
	log.Info("fetching ACS county statistics")

	body, err := c.f.Download(ctx, reqURL)
	if err != nil {
		return nil, &faults.RequestError{Source: "acs", Err: err}
	}
	defer body.Close() //nolint:errcheck

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, &faults.RequestError{Source: "acs", Err: err}
	}

	stats, err := parseTable(data)
	if err != nil {
		return nil, err
	}

	log.Info("ACS county statistics fetched", zap.Int("counties", len(stats)))
	return stats, nil
}

// parseTable decodes the ACS tabular JSON: an array of string arrays whose
// first element is the header row. Text fields are converted to float64 at
// this boundary; nothing loosely typed escapes the package.
func parseTable(data []byte) ([]model.CountyStats, error) {
	var raw [][]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &faults.ParseError{Err: eris.Wrap(err, "unmarshal tabular JSON")}
	}

	if len(raw) < 2 {
		return nil, &faults.ParseError{Err: eris.New("response has no data rows")}
	}

	header := raw[0]
	colIdx := make(map[string]int, len(header))
	for i, col := range header {
		colIdx[col] = i
	}
	for _, col := range []string{"NAME", varMedianRent, varMedianHomeValue, varMedianTax, "state", "county"} {
		if _, ok := colIdx[col]; !ok {
			return nil, &faults.ParseError{Err: eris.Errorf("header missing column %s", col)}
		}
	}

	stats := make([]model.CountyStats, 0, len(raw)-1)
	for _, record := range raw[1:] {
		if len(record) != len(header) {
			return nil, &faults.ParseError{Err: eris.Errorf("row has %d fields, header has %d", len(record), len(header))}
		}

		fips := record[colIdx["state"]] + record[colIdx["county"]]
		name := record[colIdx["NAME"]]

		rent, rentOK, err := parseEstimate(record[colIdx[varMedianRent]])
		if err != nil {
			return nil, &faults.ParseError{Err: eris.Wrapf(err, "county %s: %s", fips, varMedianRent)}
		}
		homeValue, valueOK, err := parseEstimate(record[colIdx[varMedianHomeValue]])
		if err != nil {
			return nil, &faults.ParseError{Err: eris.Wrapf(err, "county %s: %s", fips, varMedianHomeValue)}
		}
		tax, taxOK, err := parseEstimate(record[colIdx[varMedianTax]])
		if err != nil {
			return nil, &faults.ParseError{Err: eris.Wrapf(err, "county %s: %s", fips, varMedianTax)}
		}

		// Guard the divisions explicitly: a zero or unreported home value
		// must never propagate as NaN or Inf.
		if !valueOK || homeValue == 0 {
			return nil, &faults.DataError{FIPS: fips, Detail: "median home value is zero or missing"}
		}
		if !rentOK {
			return nil, &faults.DataError{FIPS: fips, Detail: "median gross rent is missing"}
		}
		if !taxOK {
			return nil, &faults.DataError{FIPS: fips, Detail: "median property tax is missing"}
		}

		stats = append(stats, model.CountyStats{
			FIPS:              fips,
			Name:              name,
			MedianRent:        rent,
			MedianHomeValue:   homeValue,
			MedianPropertyTax: tax,
			RentalYield:       (rent * 12) / homeValue,
			TaxBurden:         tax / homeValue,
		})
	}

	sort.Slice(stats, func(i, j int) bool { return stats[i].FIPS < stats[j].FIPS })
	return stats, nil
}

// parseEstimate converts an ACS text value to float64. The second return
// is false when the value is empty, "null", or an annotation sentinel.
func parseEstimate(s string) (float64, bool, error) {
	if s == "" || s == "null" {
		return 0, false, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false, eris.Wrapf(err, "parse %q", s)
	}
	if v < annotationFloor {
		return 0, false, nil
	}
	return v, true, nil
}
