package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/nao1215/blackbird/internal/model"
)

const (
	resultsSheet = "Results"
	summarySheet = "Summary"
)

// XLSXWriter writes a workbook with a Results sheet listing the found
// accounts as hyperlinks and a Summary sheet with the run metadata.
type XLSXWriter struct{}

// Write implements Writer.
func (x *XLSXWriter) Write(w io.Writer, rs *model.ResultSet) (err error) {
	f := excelize.NewFile()
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	if err := f.SetSheetName("Sheet1", resultsSheet); err != nil {
		return err
	}
	if err := x.writeResults(f, rs); err != nil {
		return err
	}
	if err := x.writeSummary(f, rs); err != nil {
		return err
	}
	return f.Write(w)
}

func (x *XLSXWriter) writeResults(f *excelize.File, rs *model.ResultSet) error {
	if err := f.SetSheetRow(resultsSheet, "A1", &[]any{"Name", "URL", "Category", "Status code"}); err != nil {
		return err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(resultsSheet, "A1", "D1", bold); err != nil {
		return err
	}

	for i, o := range rs.Found() {
		row := i + 2
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(resultsSheet, cell, &[]any{o.Site, o.Link(), o.Category, o.StatusCode}); err != nil {
			return err
		}
		if err := f.SetCellHyperLink(resultsSheet, fmt.Sprintf("B%d", row), o.Link(), "External"); err != nil {
			return err
		}
	}

	if err := f.SetColWidth(resultsSheet, "A", "A", 24); err != nil {
		return err
	}
	return f.SetColWidth(resultsSheet, "B", "B", 60)
}

func (x *XLSXWriter) writeSummary(f *excelize.File, rs *model.ResultSet) error {
	if _, err := f.NewSheet(summarySheet); err != nil {
		return err
	}
	counts := rs.Counts()
	rows := [][]any{
		{"Username", rs.Username},
		{"Date", rs.PrettyDate()},
		{"Sites checked", counts.Total},
		{"Accounts found", counts.Found},
		{"Not found", counts.NotFound},
		{"Errors", counts.Error},
		{"Elapsed (seconds)", rs.Elapsed.Seconds()},
	}
	for i, r := range rows {
		if err := f.SetSheetRow(summarySheet, fmt.Sprintf("A%d", i+1), &r); err != nil {
			return err
		}
	}
	return f.SetColWidth(summarySheet, "A", "A", 20)
}
