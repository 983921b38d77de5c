package export

import (
	"fmt"
	"io"

	"github.com/dgallion1/pyqbook/internal/paper"
	"github.com/xuri/excelize/v2"
)

// SheetName is the worksheet holding question rows.
const SheetName = "Questions"

// WriteXLSX writes every question to a single worksheet with a bold header.
func WriteXLSX(w io.Writer, questions []paper.Question) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	header := make([]any, len(Columns))
	for i, c := range Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("write xlsx header: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create style: %w", err)
	}
	last, _ := excelize.CoordinatesToCellName(len(Columns), 1)
	if err := f.SetCellStyle(SheetName, "A1", last, bold); err != nil {
		return fmt.Errorf("style header: %w", err)
	}

	for i, q := range questions {
		cells := row(q)
		values := make([]any, len(cells))
		for j, c := range cells {
			values[j] = c
		}
		// Numbers stay numeric so spreadsheets sort them properly.
		values[0] = q.Number
		values[6] = q.Page

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
			return fmt.Errorf("write xlsx row %d: %w", q.Number, err)
		}
	}

	_ = f.SetColWidth(SheetName, "B", "C", 60)
	if err := f.Write(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}

// ReadXLSX loads questions from the first worksheet of a workbook written by
// WriteXLSX.
func ReadXLSX(r io.Reader) ([]paper.Question, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("no worksheets in xlsx")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read xlsx rows: %w", err)
	}
	return decode(rows)
}
