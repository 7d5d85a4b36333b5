package spreadsheet

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

const (
	MIMEXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	MIMEXLS  = "application/vnd.ms-excel"
)

var (
	ErrInvalidWorkbook = errors.New("invalid workbook")
	ErrNoSheet         = errors.New("workbook has no sheets")
)

// IsSpreadsheetContentType reports whether ct is one of the two Excel MIME
// types. Parameters such as charset are ignored.
func IsSpreadsheetContentType(ct string) bool {
	ct = strings.TrimSpace(ct)
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	return strings.EqualFold(ct, MIMEXLSX) || strings.EqualFold(ct, MIMEXLS)
}

func HasSpreadsheetExtension(name string) bool {
	ext := strings.ToLower(filepath.Ext(strings.TrimSpace(name)))
	return ext == ".xlsx" || ext == ".xls"
}

// Sheet is the first worksheet of an uploaded workbook, read with raw cell
// values so numbers are not reformatted by the cell style.
type Sheet struct {
	Name string
	rows [][]string
}

// ReadFirstSheet parses r as an Office Open XML workbook and loads its first
// sheet.
func ReadFirstSheet(r io.Reader) (*Sheet, error) {
	f, err := excelize.OpenReader(r, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidWorkbook, err)
	}
	defer f.Close()

	names := f.GetSheetList()
	if len(names) == 0 {
		return nil, ErrNoSheet
	}
	rows, err := f.GetRows(names[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidWorkbook, err)
	}
	return &Sheet{Name: names[0], rows: rows}, nil
}

// Header returns the first row, or nil for an empty sheet.
func (s *Sheet) Header() []string {
	if len(s.rows) == 0 {
		return nil
	}
	return s.rows[0]
}

// DataRows returns every row after the header, including blank ones, keyed
// by cols.
func (s *Sheet) DataRows(cols Columns) []Row {
	if len(s.rows) < 2 {
		return nil
	}
	out := make([]Row, 0, len(s.rows)-1)
	for i, cells := range s.rows[1:] {
		out = append(out, NewRow(i+2, cells, cols))
	}
	return out
}
