package spreadsheet

import (
	"testing"

	"github.com/google/uuid"
)

func TestParseDecimal(t *testing.T) {
	cases := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"3.5", 3.5, true},
		{"3,5", 3.5, true},
		{"1,234.5", 1234.5, true},
		{"1.234,5", 1234.5, true},
		{"-2", -2, true},
		{"  7 ", 7, true},
		{"abc", 0, false},
		{"", 0, false},
		{"NaN", 0, false},
	}
	for _, tc := range cases {
		got := ParseDecimal(tc.in)
		if !tc.ok {
			if got != nil {
				t.Fatalf("ParseDecimal(%q) = %v, want nil", tc.in, *got)
			}
			continue
		}
		if got == nil || *got != tc.want {
			t.Fatalf("ParseDecimal(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestParseInt(t *testing.T) {
	cases := map[string]int{
		"12":    12,
		"12.0":  12,
		"2.5":   2,
		"1.234": 1,
		"1,234": 1234,
	}
	for in, want := range cases {
		got := ParseInt(in)
		if got == nil || *got != want {
			t.Fatalf("ParseInt(%q) = %v, want %d", in, got, want)
		}
	}
	if ParseInt("x") != nil {
		t.Fatalf("expected nil for garbage")
	}
}

func TestRowAccessors(t *testing.T) {
	id := uuid.New()
	cols := Columns{ColCampaignID: 0, ColEmail: 1, ColOrder: 2, ColTotal: 3, ColCentre: 5}
	r := NewRow(4, []string{id.String(), "  a@b.es ", "3", "7,25"}, cols)

	if r.Blank() {
		t.Fatalf("row should not be blank")
	}
	if got := r.UUID(ColCampaignID); got == nil || *got != id {
		t.Fatalf("uuid: %v", got)
	}
	if got := r.String(ColEmail); got == nil || *got != "a@b.es" {
		t.Fatalf("email: %v", got)
	}
	if got := r.Int(ColOrder); got == nil || *got != 3 {
		t.Fatalf("order: %v", got)
	}
	if got := r.Decimal(ColTotal); got == nil || *got != 7.25 {
		t.Fatalf("total: %v", got)
	}
	// short row: the centre column is past the last cell
	if r.String(ColCentre) != nil {
		t.Fatalf("expected nil for cell past end of row")
	}
	if r.String(ColNationalID) != nil {
		t.Fatalf("expected nil for unmapped column")
	}

	if !NewRow(5, []string{" ", ""}, cols).Blank() {
		t.Fatalf("whitespace row should be blank")
	}
}
