package atlas

import (
	"io"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/hartylabs/housing-atlas/internal/model"
)

// exportRow is the downloadable table: one row per county, raw ratios,
// no index column. Column names are fixed.
type exportRow struct {
	County          string  `csv:"county"`
	RentalROI       float64 `csv:"rental_roi"`
	PropertyTaxRate float64 `csv:"property_tax_rate"`
}

func exportRows(snap *model.Snapshot) []exportRow {
	rows := make([]exportRow, 0, len(snap.Counties))
	for _, c := range snap.Counties {
		rows = append(rows, exportRow{
			County:          c.Name,
			RentalROI:       c.RentalYield,
			PropertyTaxRate: c.TaxBurden,
		})
	}
	return rows
}

// WriteCSV writes the merged table as UTF-8 CSV with header
// county,rental_roi,property_tax_rate. Percent scaling is display-only
// and never applied here.
func WriteCSV(w io.Writer, snap *model.Snapshot) error {
	data, err := csvutil.Marshal(exportRows(snap))
	if err != nil {
		return eris.Wrap(err, "atlas: encode csv")
	}
	if _, err := w.Write(data); err != nil {
		return eris.Wrap(err, "atlas: write csv")
	}
	return nil
}

// WriteXLSX writes the same table as a single-sheet workbook.
func WriteXLSX(w io.Writer, snap *model.Snapshot) error {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("counties")
	if err != nil {
		return eris.Wrap(err, "atlas: add sheet")
	}

	header := sheet.AddRow()
	for _, name := range []string{"county", "rental_roi", "property_tax_rate"} {
		header.AddCell().SetString(name)
	}

	for _, row := range exportRows(snap) {
		r := sheet.AddRow()
		r.AddCell().SetString(row.County)
		r.AddCell().SetFloat(row.RentalROI)
		r.AddCell().SetFloat(row.PropertyTaxRate)
	}

	if err := file.Write(w); err != nil {
		return eris.Wrap(err, "atlas: write xlsx")
	}
	return nil
}
