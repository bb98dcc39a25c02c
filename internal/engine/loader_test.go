package engine

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/zeebo/xxh3"
)

func writeTemp(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "merged_data.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadCSV(t *testing.T) {
	csvContent := "\ufeffiso3,Country,region,assumptions,r_iron_r_2030,d_iron_r_2030,notes\n" +
		"IND,India,South Asia,high,12.5,4000,x\n" +
		"BRA,Brazil,LAC,high,8.0,1500,\n" +
		"COD,\"Congo, Dem. Rep.\",SSA,low,NA,,\n" +
		"IND,India,South Asia,low,6,2100,\n"

	path := writeTemp(t, csvContent)

	store, err := LoadCSV(path, nil)
	if err != nil {
		t.Fatalf("LoadCSV: %v", err)
	}

	if store.Len() != 4 {
		t.Fatalf("Expected 4 rows, got %d", store.Len())
	}

	r0 := store.At(0)
	if r0.Country != "India" || r0.Region != "South Asia" || r0.Assumptions != "high" {
		t.Errorf("Row 0 dimensions wrong: %+v", r0)
	}
	if !r0.RelativeReduction.Valid || r0.RelativeReduction.Value != 12.5 {
		t.Errorf("Row 0 relative reduction: expected 12.5, got %+v", r0.RelativeReduction)
	}
	if r0.DalysSaved.Value != 4000 {
		t.Errorf("Row 0 DALYs: expected 4000, got %+v", r0.DalysSaved)
	}

	r2 := store.At(2)
	if r2.Country != "Congo, Dem. Rep." {
		t.Errorf("quoted country not preserved: %q", r2.Country)
	}
	if r2.RelativeReduction.Valid || r2.DalysSaved.Valid {
		t.Errorf("Row 2 measures should be missing, got %+v", r2)
	}

	want := xxh3.Hash([]byte(csvContent))
	if store.Fingerprint != want {
		t.Errorf("Fingerprint: expected %x, got %x", want, store.Fingerprint)
	}
}

func TestLoadCSVErrors(t *testing.T) {
	cases := []struct {
		name    string
		content string
		want    error
	}{
		{"empty file", "", ErrMissingColumn},
		{"missing columns", "Country,region,assumptions\nIndia,South Asia,high\n", ErrMissingColumn},
		{"bad number", "Country,region,assumptions,r_iron_r_2030,d_iron_r_2030\nIndia,South Asia,high,twelve,1\n", ErrMalformedRow},
		{"ragged row", "Country,region,assumptions,r_iron_r_2030,d_iron_r_2030\nIndia,South Asia,high,1\n", ErrMalformedRow},
		{"missing region", "Country,region,assumptions,r_iron_r_2030,d_iron_r_2030\nIndia,,high,1,1\n", ErrMalformedRow},
		{"missing scenario", "Country,region,assumptions,r_iron_r_2030,d_iron_r_2030\nIndia,South Asia, ,1,1\n", ErrMalformedRow},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d, err := LoadCSV(writeTemp(t, tc.content), nil)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
			if d != nil {
				t.Errorf("partial dataset returned: %d rows", d.Len())
			}
		})
	}

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadCSV(filepath.Join(t.TempDir(), "nope.csv"), nil)
		if !errors.Is(err, os.ErrNotExist) {
			t.Fatalf("expected not-exist error, got %v", err)
		}
	})

	t.Run("missing column names listed", func(t *testing.T) {
		_, err := ReadCSV(strings.NewReader("Country,region\n"))
		if err == nil || !strings.Contains(err.Error(), "r_iron_r_2030") {
			t.Errorf("error should name the missing column: %v", err)
		}
	})
}

func TestParseMeasure(t *testing.T) {
	m, err := parseMeasure(" 123.45 ")
	if err != nil || !m.Valid || m.Value != 123.45 {
		t.Errorf("parseMeasure failed: %+v %v", m, err)
	}

	for _, null := range []string{"", "NA", "NaN", "nan", "null", "N/A", "Inf"} {
		m, err := parseMeasure(null)
		if err != nil || m.Valid {
			t.Errorf("parseMeasure(%q) should be missing, got %+v %v", null, m, err)
		}
	}

	if _, err := parseMeasure("12%"); err == nil {
		t.Error("parseMeasure(12%) should fail")
	}
}

func TestInterner(t *testing.T) {
	in := make(interner)
	a := in.get(strings.Clone("South Asia"))
	b := in.get(strings.Clone("South Asia"))
	if a != b || len(in) != 1 {
		t.Errorf("expected one interned value, got %d", len(in))
	}
}
