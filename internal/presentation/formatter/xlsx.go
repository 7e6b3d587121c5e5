package formatter

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

const xlsxSheet = "Rollup"

// XLSXFormatter saves a report as a spreadsheet with one row per period.
type XLSXFormatter struct {
	path string
}

func NewXLSXFormatter(path string) *XLSXFormatter {
	return &XLSXFormatter{path: path}
}

func (f *XLSXFormatter) Format(report *Report) error {
	book := excelize.NewFile()
	defer book.Close()

	if err := book.SetSheetName(book.GetSheetName(0), xlsxSheet); err != nil {
		return err
	}

	headers := []interface{}{"Period", "Start", "Days", "Activities", valueHeader(report)}
	if err := book.SetSheetRow(xlsxSheet, "A1", &headers); err != nil {
		return err
	}

	for i, row := range report.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := []interface{}{row.Period, row.Start.Format("2006-01-02"), row.Days, row.Activities, row.Value}
		if err := book.SetSheetRow(xlsxSheet, cell, &values); err != nil {
			return err
		}
	}

	if err := book.SetPanes(xlsxSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return err
	}

	if err := book.SaveAs(f.path); err != nil {
		return fmt.Errorf("failed to save %s: %w", f.path, err)
	}
	return nil
}
