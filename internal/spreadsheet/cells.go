package spreadsheet

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// Row is one data row of the uploaded sheet, addressed by canonical key.
type Row struct {
	// Number is the 1-based row number as shown by spreadsheet software.
	Number int

	cells []string
	cols  Columns
}

func NewRow(number int, cells []string, cols Columns) Row {
	return Row{Number: number, cells: cells, cols: cols}
}

// Blank reports whether every cell of the row is empty or whitespace.
func (r Row) Blank() bool {
	for _, c := range r.cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func (r Row) raw(key string) (string, bool) {
	i, ok := r.cols[key]
	if !ok || i >= len(r.cells) {
		return "", false
	}
	v := strings.TrimSpace(r.cells[i])
	return v, v != ""
}

// String returns the trimmed cell value, or nil when the column is absent or
// the cell is blank.
func (r Row) String(key string) *string {
	v, ok := r.raw(key)
	if !ok {
		return nil
	}
	return &v
}

func (r Row) Int(key string) *int {
	v, ok := r.raw(key)
	if !ok {
		return nil
	}
	return ParseInt(v)
}

func (r Row) Decimal(key string) *float64 {
	v, ok := r.raw(key)
	if !ok {
		return nil
	}
	return ParseDecimal(v)
}

func (r Row) UUID(key string) *uuid.UUID {
	v, ok := r.raw(key)
	if !ok {
		return nil
	}
	id, err := uuid.Parse(v)
	if err != nil || id == uuid.Nil {
		return nil
	}
	return &id
}

var (
	invariantGrouped = regexp.MustCompile(`^[+-]?\d{1,3}(,\d{3})+(\.\d+)?$`)
	spanishGrouped   = regexp.MustCompile(`^[+-]?\d{1,3}(\.\d{3})+(,\d+)?$`)
	spanishPlain     = regexp.MustCompile(`^[+-]?\d+,\d+$`)
)

// ParseDecimal accepts plain numbers, invariant grouping ("1,234.5") and
// Spanish formatting ("1.234,5" or "3,5"). Unparseable input yields nil.
func ParseDecimal(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	candidates := []string{s}
	switch {
	case invariantGrouped.MatchString(s):
		candidates = append(candidates, strings.ReplaceAll(s, ",", ""))
	case spanishGrouped.MatchString(s), spanishPlain.MatchString(s):
		es := strings.ReplaceAll(s, ".", "")
		candidates = append(candidates, strings.Replace(es, ",", ".", 1))
	}
	for _, c := range candidates {
		f, err := strconv.ParseFloat(c, 64)
		if err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
			return &f
		}
	}
	return nil
}

// ParseInt accepts integers in the same formats as ParseDecimal. Numeric cells
// stored with a fraction are rounded to the nearest integer.
func ParseInt(s string) *int {
	if n, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
		return &n
	}
	f := ParseDecimal(s)
	if f == nil || *f > math.MaxInt32 || *f < math.MinInt32 {
		return nil
	}
	n := int(math.RoundToEven(*f))
	return &n
}
