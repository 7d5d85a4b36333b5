package spreadsheet

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// Writer builds a multi-sheet workbook in memory.
type Writer struct {
	f      *excelize.File
	sheets int
}

func NewWriter() *Writer {
	return &Writer{f: excelize.NewFile()}
}

// AddSheet appends a sheet with a bold header row followed by rows.
func (w *Writer) AddSheet(name string, header []string, rows [][]any) error {
	if w.sheets == 0 {
		if err := w.f.SetSheetName(w.f.GetSheetName(0), name); err != nil {
			return err
		}
	} else if _, err := w.f.NewSheet(name); err != nil {
		return err
	}
	w.sheets++

	hdr := make([]any, len(header))
	for i, h := range header {
		hdr[i] = h
	}
	if err := w.f.SetSheetRow(name, "A1", &hdr); err != nil {
		return err
	}
	bold, err := w.f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	if len(header) > 0 {
		last, err := excelize.CoordinatesToCellName(len(header), 1)
		if err != nil {
			return err
		}
		if err := w.f.SetCellStyle(name, "A1", last, bold); err != nil {
			return err
		}
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		r := row
		if err := w.f.SetSheetRow(name, cell, &r); err != nil {
			return fmt.Errorf("sheet %s row %d: %w", name, i+2, err)
		}
	}
	return nil
}

// Bytes renders the workbook as .xlsx and releases it.
func (w *Writer) Bytes() ([]byte, error) {
	defer w.f.Close()
	buf, err := w.f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
