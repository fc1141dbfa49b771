package tablemodel

import "testing"

func TestAttributes(t *testing.T) {
	typer := newTestTyper()
	numeric := ColumnSpec{Index: 2, Alignment: AlignRight, Role: Role{Kind: RoleNumericGroup, Group: "linked"}}
	grand := ColumnSpec{Index: 19, Alignment: AlignRight, Role: Role{Kind: RoleGrandTotal}}
	label := ColumnSpec{Index: 0, Alignment: AlignLeft, Role: Role{Kind: RoleRowLabel}}

	tests := []struct {
		name   string
		column ColumnSpec
		raw    any
		want   SemanticKind
	}{
		{"negative", numeric, "(500)", KindNegative},
		{"null", numeric, nil, KindNull},
		{"number", numeric, 12, KindNumber},
		{"boolean", label, true, KindBoolean},
		{"link", label, "https://example.com", KindLink},
		{"email", label, "a@b.co", KindEmail},
		{"phone", label, "+44 20 7946 0958", KindPhone},
		{"date", label, "2024-03-31", KindDate},
		{"array", label, []any{1, 2}, KindStructured},
		{"object", label, map[string]any{"a": 1}, KindStructured},
		{"grand total text", grand, "1,300", KindTotal},
		{"text", label, "Premium", KindText},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			attrs := Attributes(tt.column, typer.Type(tt.raw, false))
			if attrs.Kind != tt.want {
				t.Errorf("Expected kind %v, got %v", tt.want, attrs.Kind)
			}
			if attrs.Alignment != tt.column.Alignment {
				t.Errorf("Expected alignment %v, got %v", tt.column.Alignment, attrs.Alignment)
			}
		})
	}
}

func TestRowAttributes_TotalRow(t *testing.T) {
	engine := NewEngine()
	model := engine.Normalize([][]any{{"Total", "(5)", "10"}}, nil)

	attrs := RowAttributes(model.Columns, model.Rows[0])
	want := []SemanticKind{KindTotal, KindNegative, KindTotal}
	for i, w := range want {
		if attrs[i].Kind != w {
			t.Errorf("Cell %d: expected %v, got %v", i, w, attrs[i].Kind)
		}
	}
}
