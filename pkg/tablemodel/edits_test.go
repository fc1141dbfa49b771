package tablemodel

import "testing"

func TestParseEditKey(t *testing.T) {
	tests := []struct {
		in      string
		want    EditKey
		wantErr bool
	}{
		{in: "L-1-A-RA_0_3_Life", want: EditKey{Form: "L-1-A-RA", Record: 0, Row: 3, Header: "Life"}},
		{in: "revenue_2_10_Var_Ins", want: EditKey{Form: "revenue", Record: 2, Row: 10, Header: "Var_Ins"}},
		{in: "form_1_2_", want: EditKey{Form: "form", Record: 1, Row: 2, Header: ""}},
		{in: "form_1_2_3_4", want: EditKey{Form: "form", Record: 1, Row: 2, Header: "3_4"}},
		{in: "no-numbers", wantErr: true},
		{in: "form_x_2_Life", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseEditKey(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Errorf("Expected error, got %+v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Expected %+v, got %+v", tt.want, got)
			}
		})
	}
}

func TestEditKey_RoundTrip(t *testing.T) {
	key := EditKey{Form: "L-4-PREMIUM", Record: 1, Row: 12, Header: "GRAND TOTAL"}
	parsed, err := ParseEditKey(key.String())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if parsed != key {
		t.Errorf("Expected %+v, got %+v", key, parsed)
	}
}

func TestApplyEdits(t *testing.T) {
	engine := NewEngine()
	base := engine.Normalize(TokenizedInput{
		Headers: []string{"Particulars", "Amount"},
		Rows:    []any{[]any{"Premium", "100"}, []any{"Claims", "50"}},
	}, nil)

	edits := map[EditKey]string{
		{Form: "L-1", Record: 0, Row: 1, Header: "Amount"}:  "75",
		{Form: "L-1", Record: 0, Row: 0, Header: "amount"}:  "110",
		{Form: "L-1", Record: 1, Row: 0, Header: "Amount"}:  "999",
		{Form: "L-2", Record: 0, Row: 0, Header: "Amount"}:  "999",
		{Form: "L-1", Record: 0, Row: 9, Header: "Amount"}:  "999",
		{Form: "L-1", Record: 0, Row: 0, Header: "Missing"}: "999",
	}

	edited := ApplyEdits(base, "L-1", 0, edits)

	if got := edited.Rows[1].Cells[1]; got.Display != "75" || !got.Edited {
		t.Errorf("Expected edited cell, got %+v", got)
	}
	if got := edited.Rows[0].Cells[1]; got.Display != "110" || !got.Edited {
		t.Errorf("Expected case-insensitive header match, got %+v", got)
	}
	if got := edited.Rows[0].Cells[0]; got.Edited {
		t.Errorf("Expected untouched cell, got %+v", got)
	}

	if base.Rows[1].Cells[1].Edited || base.Rows[1].Cells[1].Display != "50" {
		t.Error("Expected base model to be unchanged")
	}
}
