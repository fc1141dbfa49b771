package tablemodel

import (
	"reflect"
	"strings"
	"testing"
)

func TestEngine_Normalize_RevenueAccountLines(t *testing.T) {
	engine := NewEngine()
	model := engine.Normalize("Form L-1-A-REVENUE\nParticulars Schedule LIFE PENSION\nPremiums earned 1 1,234 (500)", nil)

	if !reflect.DeepEqual(model.DocumentInfo, []string{"Form L-1-A-REVENUE"}) {
		t.Errorf("Unexpected document info %q", model.DocumentInfo)
	}

	labels := model.Labels()
	if !containsString(labels, "Particulars") || !containsString(labels, "Schedule") {
		t.Errorf("Expected Particulars and Schedule headers, got %q", labels)
	}
	if model.ColumnCount() != InsuranceColumnCount {
		t.Errorf("Expected %d columns, got %d", InsuranceColumnCount, model.ColumnCount())
	}

	if model.RowCount() != 1 {
		t.Fatalf("Expected 1 row, got %d", model.RowCount())
	}
	row := model.Rows[0]
	if len(row.Cells) != InsuranceColumnCount {
		t.Errorf("Expected row padded to %d cells, got %d", InsuranceColumnCount, len(row.Cells))
	}

	want := []string{"Premiums earned", "1", "1,234", "(500)"}
	for i, w := range want {
		if row.Cells[i].Display != w {
			t.Errorf("Cell %d: expected %q, got %q", i, w, row.Cells[i].Display)
		}
	}
	if !row.Cells[3].NegativeParenthesized {
		t.Error("Expected (500) to be flagged as parenthesized negative")
	}
	if row.IsTotalRow {
		t.Error("Expected a regular row")
	}
}

func TestEngine_Normalize_TokenizedAlignmentAndTotals(t *testing.T) {
	engine := NewEngine()

	inputs := map[string]any{
		"struct": TokenizedInput{
			Headers: []string{"Sl No", "Particulars", "2023"},
			Rows:    []any{[]any{"1", "Total Premium", "900"}},
		},
		"json": []byte(`{"headers":["Sl No","Particulars","2023"],"rows":[["1","Total Premium","900"]]}`),
	}

	for name, input := range inputs {
		t.Run(name, func(t *testing.T) {
			model := engine.Normalize(input, nil)
			if model.Reason != "" {
				t.Fatalf("Unexpected reason %q", model.Reason)
			}

			want := []Alignment{AlignCenter, AlignLeft, AlignRight}
			for i, w := range want {
				if model.Columns[i].Alignment != w {
					t.Errorf("Column %d: expected %v, got %v", i, w, model.Columns[i].Alignment)
				}
			}
			if !model.Rows[0].IsTotalRow {
				t.Error("Expected total row")
			}
		})
	}
}

func TestEngine_Normalize_ArrayCellExpansion(t *testing.T) {
	engine := NewEngine()
	input := TokenizedInput{
		Headers: []string{"Name", "Tags"},
		Rows:    []any{[]any{"x", []any{"a", "b", "c", "d", "e", "f", "g"}}},
	}

	store := NewStore()
	collapsed := engine.Normalize(input, store).Rows[0].Cells[1]
	if len(collapsed.Items) != 5 || !strings.Contains(collapsed.MoreMarker, "and 2 more") {
		t.Errorf("Expected 5 items and marker, got %q %q", collapsed.Items, collapsed.MoreMarker)
	}

	store.Toggle(0, 1)
	expanded := engine.Normalize(input, store).Rows[0].Cells[1]
	if len(expanded.Items) != 7 || expanded.MoreMarker != "" {
		t.Errorf("Expected all 7 items, got %q %q", expanded.Items, expanded.MoreMarker)
	}
}

func TestEngine_Normalize_StringSubtypes(t *testing.T) {
	engine := NewEngine()
	prose := strings.Repeat("word ", 40)
	model := engine.Normalize([][]any{{"user@example.com", "https://x.com/y", "+91 98765 43210", "2023-03-31", prose}}, nil)

	want := []CellType{TypeEmail, TypeURL, TypePhone, TypeDate, TypeLongText}
	for i, w := range want {
		if got := model.Rows[0].Cells[i].Type; got != w {
			t.Errorf("Cell %d: expected %v, got %v", i, w, got)
		}
	}
	long := model.Rows[0].Cells[4].Display
	if len([]rune(long)) != 151 || !strings.HasSuffix(long, Ellipsis) {
		t.Errorf("Expected truncated long text, got %d runes", len([]rune(long)))
	}
}

func TestEngine_Normalize_UnrecognizedText(t *testing.T) {
	engine := NewEngine()
	model := engine.Normalize("lorem ipsum dolor\nsit amet consectetur", nil)

	if model.Reason != "" {
		t.Errorf("Expected a valid model, got reason %q", model.Reason)
	}
	if len(model.DocumentInfo) != 0 {
		t.Errorf("Expected no document info, got %q", model.DocumentInfo)
	}
	if model.ColumnCount() != 1 || model.Columns[0].Label != "Description" {
		t.Errorf("Expected a synthesized Description column, got %q", model.Labels())
	}
	if !model.Empty() {
		t.Errorf("Expected no rows, got %d", model.RowCount())
	}
}

func TestEngine_Normalize_SynthesizedHeaderWidth(t *testing.T) {
	engine := NewEngine()
	texts := []string{
		"Commission  10",
		"Commission  10  20  30\nBenefits paid  5",
		"Premiums earned 1 2 3 4 5",
	}

	for _, text := range texts {
		model := engine.Normalize(text, nil)
		widest := 0
		for _, line := range strings.Split(text, "\n") {
			if n := len(SplitDataFields(line)); n > widest {
				widest = n
			}
		}
		if model.ColumnCount() != widest {
			t.Errorf("%q: expected %d columns, got %d", text, widest, model.ColumnCount())
		}
		if model.Columns[0].Label != "Description" {
			t.Errorf("%q: expected Description, got %q", text, model.Columns[0].Label)
		}
	}
}

func TestEngine_Normalize_RowsMatchColumns(t *testing.T) {
	engine := NewEngine()
	inputs := []any{
		TokenizedInput{Headers: []string{"a", "b"}, Rows: []any{[]any{1}, []any{1, 2, 3}, []any{}}},
		[][]any{{1}, {1, 2, 3, 4}},
		[]map[string]any{{"a": 1}, {"b": 2, "c": 3}},
		[]byte(`[{"x":1,"y":2},{"z":3}]`),
		[]byte(`[[1,2],[3],[4,5,6]]`),
		[]byte(`{"rows":[["a","b","c"],["d"]]}`),
	}

	for i, input := range inputs {
		model := engine.Normalize(input, nil)
		if model.Reason != "" {
			t.Errorf("Input %d: unexpected reason %q", i, model.Reason)
		}
		for r, row := range model.Rows {
			if len(row.Cells) != model.ColumnCount() {
				t.Errorf("Input %d row %d: expected %d cells, got %d", i, r, model.ColumnCount(), len(row.Cells))
			}
		}
	}
}

func TestEngine_Normalize_Malformed(t *testing.T) {
	engine := NewEngine()
	inputs := []any{
		nil,
		42,
		map[string]any{"name": "x"},
		[]any{1, 2, 3},
		[]any{[]any{1}, "x"},
		(*TokenizedInput)(nil),
	}

	for i, input := range inputs {
		model := engine.Normalize(input, nil)
		if model.Reason == "" {
			t.Errorf("Input %d: expected a reason", i)
		}
		if !model.Empty() || model.ColumnCount() != 0 {
			t.Errorf("Input %d: expected an empty model", i)
		}
	}
}

func TestEngine_Assemble_Idempotent(t *testing.T) {
	engine := NewEngine()
	structure, _ := engine.Structure(revenueAccount)
	store := NewStore()
	store.Toggle(0, 2)

	a := engine.Model(structure, store)
	b := engine.Model(structure, store)
	if !reflect.DeepEqual(a, b) {
		t.Error("Expected identical models for identical inputs")
	}
}

func TestEngine_CustomVocabulary(t *testing.T) {
	vocab := Vocabulary{
		DocumentMarkers:   []string{"Statement of"},
		MainHeaderMarkers: []string{"Account", "Amount"},
		DataRowPattern:    `^[A-Za-z].*\d`,
		TotalMarkers:      []string{"sum"},
	}
	engine := NewEngine(WithVocabulary(vocab), WithDocumentInfoWindow(2))

	model := engine.Normalize("Statement of balances\nAccount  Amount\nCash  100\nSum of all  100", nil)
	if !reflect.DeepEqual(model.DocumentInfo, []string{"Statement of balances"}) {
		t.Errorf("Unexpected document info %q", model.DocumentInfo)
	}
	if model.RowCount() != 2 {
		t.Fatalf("Expected 2 rows, got %d", model.RowCount())
	}
	if model.Rows[0].IsTotalRow || !model.Rows[1].IsTotalRow {
		t.Error("Expected only the second row to be a total row")
	}
	if got := model.Labels(); !reflect.DeepEqual(got, []string{"Account", "Amount"}) {
		t.Errorf("Expected the detected header labels, got %q", got)
	}
}

func TestEngine_Normalize_SubtotalRow(t *testing.T) {
	engine := NewEngine()
	model := engine.Normalize([][]any{{"Subtotal", 10}, {"Premium", 5}, {"GRAND TOTAL", 15}}, nil)

	want := []bool{true, false, true}
	for i, w := range want {
		if model.Rows[i].IsTotalRow != w {
			t.Errorf("Row %d: expected total %v", i, w)
		}
	}
}

func containsString(values []string, s string) bool {
	for _, v := range values {
		if v == s {
			return true
		}
	}
	return false
}
