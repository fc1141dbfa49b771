package tablemodel

// SemanticKind is the rendering category of a cell
type SemanticKind int

const (
	KindText SemanticKind = iota
	KindNull
	KindNumber
	KindNegative
	KindTotal
	KindLink
	KindEmail
	KindPhone
	KindDate
	KindBoolean
	KindLong
	KindStructured
)

var semanticKindNames = [...]string{
	KindText:       "text",
	KindNull:       "null",
	KindNumber:     "number",
	KindNegative:   "negative",
	KindTotal:      "total",
	KindLink:       "link",
	KindEmail:      "email",
	KindPhone:      "phone",
	KindDate:       "date",
	KindBoolean:    "boolean",
	KindLong:       "long",
	KindStructured: "structured",
}

func (k SemanticKind) String() string {
	if int(k) >= 0 && int(k) < len(semanticKindNames) {
		return semanticKindNames[k]
	}
	return "text"
}

// MarshalText encodes the kind by name
func (k SemanticKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// CellAttributes is everything a renderer needs to style a cell
type CellAttributes struct {
	Alignment Alignment    `json:"alignment"`
	Kind      SemanticKind `json:"kind"`
}

// Attributes maps a column and a cell to rendering attributes
func Attributes(column ColumnSpec, cell Cell) CellAttributes {
	attrs := CellAttributes{Alignment: column.Alignment}

	switch {
	case cell.NegativeParenthesized:
		attrs.Kind = KindNegative
	case cell.Type == TypeNull:
		attrs.Kind = KindNull
	case cell.Type == TypeNumber:
		attrs.Kind = KindNumber
	case cell.Type == TypeBoolean:
		attrs.Kind = KindBoolean
	case cell.Type == TypeURL:
		attrs.Kind = KindLink
	case cell.Type == TypeEmail:
		attrs.Kind = KindEmail
	case cell.Type == TypePhone:
		attrs.Kind = KindPhone
	case cell.Type == TypeDate:
		attrs.Kind = KindDate
	case cell.Type == TypeArray || cell.Type == TypeObject:
		attrs.Kind = KindStructured
	case cell.Type == TypeLongText:
		attrs.Kind = KindLong
	case column.Role.Kind == RoleGrandTotal:
		attrs.Kind = KindTotal
	default:
		attrs.Kind = KindText
	}

	return attrs
}

// RowAttributes returns the attributes of every cell of a row. Cells of a
// total row that would render as plain text or numbers are marked as totals.
func RowAttributes(columns []ColumnSpec, row RowModel) []CellAttributes {
	attrs := make([]CellAttributes, len(row.Cells))
	for i, cell := range row.Cells {
		var column ColumnSpec
		if i < len(columns) {
			column = columns[i]
		}
		a := Attributes(column, cell)
		if row.IsTotalRow && (a.Kind == KindText || a.Kind == KindNumber) {
			a.Kind = KindTotal
		}
		attrs[i] = a
	}
	return attrs
}
