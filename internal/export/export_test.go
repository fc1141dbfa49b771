package export

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/viyanta/viyanta-web-sub000/pkg/tablemodel"
)

func sampleModel() tablemodel.TableModel {
	model := tablemodel.NewEngine().Normalize(tablemodel.TokenizedInput{
		Headers: []string{"Particulars", "Amount"},
		Rows: []any{
			[]any{"Premium", "1,200"},
			[]any{"Claims", "(300)"},
			[]any{"Total", json.Number("900")},
		},
	}, nil)
	model.DocumentInfo = []string{"FORM L-1", "Period: 2024"}
	return model
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		input string
		want  float64
		ok    bool
	}{
		{"1,200", 1200, true},
		{"(300)", -300, true},
		{"( 1,234.50 )", -1234.5, true},
		{"-42", -42, true},
		{"1 000", 1000, true},
		{"-", 0, false},
		{"", 0, false},
		{"NaN", 0, false},
		{"Inf", 0, false},
		{"Schedule 4", 0, false},
	}

	for _, tt := range tests {
		got, ok := ParseAmount(tt.input)
		if ok != tt.ok || got != tt.want {
			t.Errorf("ParseAmount(%q): expected (%v, %v), got (%v, %v)", tt.input, tt.want, tt.ok, got, ok)
		}
	}
}

func TestParseFormat(t *testing.T) {
	for _, name := range []string{"csv", ".xlsx", "JSON"} {
		if _, err := ParseFormat(name); err != nil {
			t.Errorf("Expected %q to parse, got %v", name, err)
		}
	}
	if _, err := ParseFormat("pdf"); err == nil {
		t.Error("Expected an error for pdf")
	}
	if _, err := FormatForPath("table"); err == nil {
		t.Error("Expected an error for a path without extension")
	}
}

func TestText(t *testing.T) {
	typer := tablemodel.NewTyper(tablemodel.DefaultConfig().Locale)

	if got := Text(typer.Type(1234567, false)); got != "1234567" {
		t.Errorf("Expected ungrouped number, got %q", got)
	}
	if got := Text(typer.Type([]any{"a", "b"}, false)); got != `["a","b"]` {
		t.Errorf("Expected JSON array, got %q", got)
	}
	if got := Text(typer.Type(nil, false)); got != "" {
		t.Errorf("Expected empty text for null, got %q", got)
	}

	long := strings.Repeat("x", 200)
	if got := Text(typer.Type(long, false)); got != long {
		t.Errorf("Expected full text of a collapsed long cell, got %d chars", len(got))
	}

	edited := typer.Type("old", false)
	edited.Display = "new"
	edited.Edited = true
	if got := Text(edited); got != "new" {
		t.Errorf("Expected edited value, got %q", got)
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, sampleModel(), Options{IncludeInfo: true}); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	want := "# FORM L-1\n# Period: 2024\nParticulars,Amount\nPremium,\"1,200\"\nClaims,(300)\nTotal,900\n"
	if buf.String() != want {
		t.Errorf("Expected:\n%s\ngot:\n%s", want, buf.String())
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, sampleModel()); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	var decoded struct {
		Columns []struct {
			Label     string `json:"label"`
			Alignment string `json:"alignment"`
		} `json:"columns"`
		Rows []struct {
			IsTotalRow bool `json:"is_total_row"`
		} `json:"rows"`
	}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("Expected valid JSON, got %v", err)
	}
	if len(decoded.Columns) != 2 || decoded.Columns[0].Label != "Particulars" {
		t.Errorf("Unexpected columns: %+v", decoded.Columns)
	}
	if len(decoded.Rows) != 3 || !decoded.Rows[2].IsTotalRow {
		t.Errorf("Expected the last row to be a total: %+v", decoded.Rows)
	}
}

func TestWriteXLSX(t *testing.T) {
	model := sampleModel()
	model.Groups = []tablemodel.HeaderGroup{{Label: "Figures", Start: 1, Span: 1}}

	path := filepath.Join(t.TempDir(), "table.xlsx")
	if err := WriteToFile(path, model, Options{IncludeInfo: true, Sheet: "L-1"}); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("Failed to open workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("L-1")
	if err != nil {
		t.Fatalf("Failed to read rows: %v", err)
	}
	// 2 info lines, a blank line, the group row, the header and 3 data rows
	if len(rows) != 8 {
		t.Fatalf("Expected 8 rows, got %d: %v", len(rows), rows)
	}
	if rows[0][0] != "FORM L-1" {
		t.Errorf("Expected metadata first, got %v", rows[0])
	}
	if rows[4][0] != "Particulars" {
		t.Errorf("Expected header row, got %v", rows[4])
	}

	value, err := f.GetCellValue("L-1", "B7", excelize.Options{RawCellValue: true})
	if err != nil {
		t.Fatalf("Failed to read B7: %v", err)
	}
	if value != "-300" {
		t.Errorf("Expected a negative number in B7, got %q", value)
	}
}
