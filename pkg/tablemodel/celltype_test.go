package tablemodel

import (
	"encoding/json"
	"math"
	"strings"
	"testing"
	"time"

	"golang.org/x/text/language"
)

func newTestTyper() *Typer {
	return NewTyper(language.English)
}

func TestTyper_Type_Kinds(t *testing.T) {
	typer := newTestTyper()

	tests := []struct {
		name    string
		raw     any
		want    CellType
		display string
	}{
		{"nil", nil, TypeNull, ""},
		{"nil pointer", (*string)(nil), TypeNull, ""},
		{"true", true, TypeBoolean, "True"},
		{"false", false, TypeBoolean, "False"},
		{"int", 1234567, TypeNumber, "1,234,567"},
		{"negative int", -4200, TypeNumber, "-4,200"},
		{"uint", uint8(7), TypeNumber, "7"},
		{"integral float", float64(1000), TypeNumber, "1,000"},
		{"fractional float", 1234.5, TypeNumber, "1,234.5"},
		{"json number", json.Number("98765"), TypeNumber, "98,765"},
		{"json fraction", json.Number("0.25"), TypeNumber, "0.25"},
		{"email", "user@example.com", TypeEmail, "user@example.com"},
		{"url", "https://x.com/y", TypeURL, "https://x.com/y"},
		{"plain http url", "http://example.org", TypeURL, "http://example.org"},
		{"international phone", "+91 98765 43210", TypePhone, "+91 98765 43210"},
		{"ten digit phone", "(022) 2345-6789", TypePhone, "(022) 2345-6789"},
		{"bare ten digits", "9876543210", TypePhone, "9876543210"},
		{"nine digits without prefix", "123456789", TypeShortText, "123456789"},
		{"nine digits with prefix", "+123456789", TypePhone, "+123456789"},
		{"iso date", "2023-03-31", TypeDate, "2023-03-31"},
		{"day month date", "31-03-2023", TypeDate, "31-03-2023"},
		{"named month date", "31-Mar-2023", TypeDate, "31-Mar-2023"},
		{"date without hyphen", "31/03/2023", TypeShortText, "31/03/2023"},
		{"hyphenated code", "L-4", TypeShortText, "L-4"},
		{"grouped amount", "1,234", TypeShortText, "1,234"},
		{"short text", "Premiums earned", TypeShortText, "Premiums earned"},
		{"empty string", "", TypeShortText, ""},
		{"time value", time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC), TypeDate, "2024-03-31"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cell := typer.Type(tt.raw, false)
			if cell.Type != tt.want {
				t.Errorf("Expected type %v, got %v", tt.want, cell.Type)
			}
			if cell.Display != tt.display {
				t.Errorf("Expected display %q, got %q", tt.display, cell.Display)
			}
		})
	}
}

func TestTyper_Type_NegativeParenthesized(t *testing.T) {
	typer := newTestTyper()

	tests := []struct {
		raw  any
		want bool
	}{
		{"(500)", true},
		{" (1,234.50) ", true},
		{"500", false},
		{"-500", false},
		{"(note)", false},
		{"()", false},
		{-500, false},
	}

	for _, tt := range tests {
		cell := typer.Type(tt.raw, false)
		if cell.NegativeParenthesized != tt.want {
			t.Errorf("%q: expected negative %v, got %v", tt.raw, tt.want, cell.NegativeParenthesized)
		}
	}
}

func TestTyper_Type_ArrayCollapse(t *testing.T) {
	typer := newTestTyper()
	raw := []any{"a", "b", "c", "d", "e", "f", "g"}

	collapsed := typer.Type(raw, false)
	if collapsed.Type != TypeArray {
		t.Fatalf("Expected array, got %v", collapsed.Type)
	}
	if len(collapsed.Items) != 5 {
		t.Errorf("Expected 5 items, got %d", len(collapsed.Items))
	}
	if collapsed.More != 2 || collapsed.MoreMarker != "… and 2 more" {
		t.Errorf("Expected marker for 2 more, got %d %q", collapsed.More, collapsed.MoreMarker)
	}
	if !collapsed.Long || collapsed.Expanded {
		t.Errorf("Expected long collapsed cell, got long=%v expanded=%v", collapsed.Long, collapsed.Expanded)
	}

	expanded := typer.Type(raw, true)
	if len(expanded.Items) != 7 {
		t.Errorf("Expected 7 items, got %d", len(expanded.Items))
	}
	if expanded.MoreMarker != "" || expanded.More != 0 {
		t.Errorf("Expected no marker, got %q", expanded.MoreMarker)
	}
	if !expanded.Expanded {
		t.Error("Expected expanded cell")
	}
}

func TestTyper_Type_ShortArrayIgnoresExpansion(t *testing.T) {
	typer := newTestTyper()
	cell := typer.Type([]string{"x", "y"}, true)

	if cell.Long || cell.Expanded {
		t.Errorf("Expected short array, got long=%v expanded=%v", cell.Long, cell.Expanded)
	}
	if cell.Display != "x, y" {
		t.Errorf("Expected display %q, got %q", "x, y", cell.Display)
	}
}

func TestTyper_Type_NestedArrayItems(t *testing.T) {
	typer := newTestTyper()
	cell := typer.Type([]any{nil, 1500, []any{"a", "b"}, map[string]any{"k": true}}, false)

	want := []string{"null", "1,500", "[a, b]", `{"k":true}`}
	for i, item := range cell.Items {
		if item != want[i] {
			t.Errorf("Item %d: expected %q, got %q", i, want[i], item)
		}
	}
}

func TestTyper_Type_Object(t *testing.T) {
	typer := newTestTyper()

	small := typer.Type(map[string]any{"b": 2, "a": 1}, false)
	if small.Type != TypeObject || small.Display != `{"a":1,"b":2}` || small.Long {
		t.Errorf("Unexpected small object cell %+v", small)
	}

	big := map[string]any{"description": strings.Repeat("x", 120)}
	collapsed := typer.Type(big, false)
	if !collapsed.Long {
		t.Fatal("Expected long object")
	}
	if !strings.HasSuffix(collapsed.Display, Ellipsis) {
		t.Errorf("Expected ellipsis, got %q", collapsed.Display)
	}
	if got := len([]rune(collapsed.Display)); got != MaxCollapsedObjectChars+1 {
		t.Errorf("Expected %d runes, got %d", MaxCollapsedObjectChars+1, got)
	}

	expanded := typer.Type(big, true)
	if strings.HasSuffix(expanded.Display, Ellipsis) || !expanded.Expanded {
		t.Errorf("Expected full object, got %q", expanded.Display)
	}
}

func TestTyper_Type_LongText(t *testing.T) {
	typer := newTestTyper()
	prose := strings.Repeat("The quick brown fox jumps over the lazy dog. ", 4) + "\nSecond line of the remark text."
	if len([]rune(prose)) <= 150 {
		t.Fatalf("Test text too short: %d", len(prose))
	}

	collapsed := typer.Type(prose, false)
	if collapsed.Type != TypeLongText {
		t.Fatalf("Expected long text, got %v", collapsed.Type)
	}
	if got := []rune(collapsed.Display); len(got) != 151 || string(got[150:]) != Ellipsis {
		t.Errorf("Expected 150 runes plus ellipsis, got %d runes", len(got))
	}

	expanded := typer.Type(prose, true)
	if expanded.Display != prose {
		t.Error("Expected expanded text to keep line breaks and full content")
	}
}

func TestTyper_Type_TwoHundredCharacters(t *testing.T) {
	typer := newTestTyper()
	cell := typer.Type(strings.Repeat("a", 200), false)

	if cell.Type != TypeLongText {
		t.Fatalf("Expected long text, got %v", cell.Type)
	}
	if cell.Display != strings.Repeat("a", 150)+"…" {
		t.Errorf("Unexpected display %q", cell.Display)
	}
}

func TestTyper_Type_Deterministic(t *testing.T) {
	typer := newTestTyper()
	inputs := []any{"(500)", 12.5, []any{1, 2, 3, 4, 5, 6}, map[string]any{"a": []any{1}}, nil}

	for _, in := range inputs {
		for _, expanded := range []bool{false, true} {
			a := typer.Type(in, expanded)
			b := typer.Type(in, expanded)
			if a.Type != b.Type || a.Display != b.Display || a.Long != b.Long {
				t.Errorf("Typing %v is not deterministic: %+v vs %+v", in, a, b)
			}
		}
	}
}

func TestTyper_Type_Total(t *testing.T) {
	typer := newTestTyper()

	type payload struct {
		Name  string
		Inner struct{ N int }
	}
	ch := make(chan int)
	value := 3

	inputs := []any{
		math.NaN(),
		math.Inf(1),
		complex(1, 2),
		ch,
		func() {},
		payload{Name: "x"},
		&value,
		[0]int{},
		map[int]string{1: "a"},
		struct{ C chan int }{ch},
		[]byte("raw"),
	}

	for _, in := range inputs {
		cell := typer.Type(in, false)
		if cell.Type.String() == "" {
			t.Errorf("Expected a type for %T", in)
		}
	}

	if got := typer.Type(&value, false); got.Type != TypeNumber || got.Display != "3" {
		t.Errorf("Expected pointer to be dereferenced, got %+v", got)
	}
}

func TestTyper_Type_Locale(t *testing.T) {
	typer := NewTyper(language.German)
	if got := typer.Type(1234567, false).Display; got != "1.234.567" {
		t.Errorf("Expected German grouping, got %q", got)
	}
}
