package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/Sumee7/project1autoinsight/internal/model"
	"github.com/Sumee7/project1autoinsight/pkg/errors"
	"github.com/Sumee7/project1autoinsight/pkg/profile"
)

// XLSX writes a workbook with a Data sheet holding the rows and a
// Profile sheet holding per-column quality counts.
func (e *Exporter) XLSX(w io.Writer, ds *model.Dataset, s profile.Summary) error {
	f := excelize.NewFile()
	defer f.Close()

	const dataSheet = "Data"
	if err := f.SetSheetName(f.GetSheetName(0), dataSheet); err != nil {
		return errors.Wrap(err, errors.CodeExportFailed, "naming data sheet")
	}

	for j, col := range ds.Columns {
		cell, _ := excelize.CoordinatesToCellName(j+1, 1)
		if err := f.SetCellValue(dataSheet, cell, col); err != nil {
			return errors.Wrap(err, errors.CodeExportFailed, "writing header")
		}
	}
	for i := range ds.Rows {
		for j, c := range ds.Rows[i] {
			cell, _ := excelize.CoordinatesToCellName(j+1, i+2)
			var err error
			if v, ok := c.Float(); ok {
				err = f.SetCellValue(dataSheet, cell, v)
			} else {
				err = f.SetCellValue(dataSheet, cell, c.String())
			}
			if err != nil {
				return errors.Wrap(err, errors.CodeExportFailed, "writing row")
			}
		}
	}

	const profileSheet = "Profile"
	if _, err := f.NewSheet(profileSheet); err != nil {
		return errors.Wrap(err, errors.CodeExportFailed, "creating profile sheet")
	}
	headers := []string{"Column", "Type", "Missing", "Invalid", "Outliers"}
	for j, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(j+1, 1)
		if err := f.SetCellValue(profileSheet, cell, h); err != nil {
			return errors.Wrap(err, errors.CodeExportFailed, "writing profile header")
		}
	}
	for i, col := range s.Columns {
		values := []any{col.Name, string(col.Type), col.MissingCount, col.InvalidCount, col.OutlierCount}
		for j, v := range values {
			cell, _ := excelize.CoordinatesToCellName(j+1, i+2)
			if err := f.SetCellValue(profileSheet, cell, v); err != nil {
				return errors.Wrap(err, errors.CodeExportFailed, "writing profile row")
			}
		}
	}
	summaryRow := len(s.Columns) + 3
	cell, _ := excelize.CoordinatesToCellName(1, summaryRow)
	note := fmt.Sprintf("%d rows, %d duplicate rows", s.RowCount, s.DuplicateRowCount)
	if err := f.SetCellValue(profileSheet, cell, note); err != nil {
		return errors.Wrap(err, errors.CodeExportFailed, "writing summary note")
	}

	if _, err := f.WriteTo(w); err != nil {
		return errors.Wrap(err, errors.CodeExportFailed, "writing workbook")
	}
	return nil
}
