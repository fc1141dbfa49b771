package tablemodel

import "fmt"

// RawLine is a single line of source text with its trimmed form
type RawLine struct {
	Index   int    `json:"index"`
	Text    string `json:"text"`
	Trimmed string `json:"trimmed"`
}

// NewRawLines splits raw text into RawLines, keeping blank lines so indices
// stay aligned with the source
func NewRawLines(lines []string) []RawLine {
	raw := make([]RawLine, 0, len(lines))
	for i, line := range lines {
		raw = append(raw, RawLine{Index: i, Text: line, Trimmed: trimLine(line)})
	}
	return raw
}

// LineKind identifies what a source line contributes to the table
type LineKind int

const (
	LineNoise LineKind = iota
	LineDocumentInfo
	LineMainHeader
	LineSubHeader
	LineData
)

var lineKindNames = map[LineKind]string{
	LineNoise:        "noise",
	LineDocumentInfo: "document-info",
	LineMainHeader:   "main-header",
	LineSubHeader:    "sub-header",
	LineData:         "data",
}

func (k LineKind) String() string {
	if name, ok := lineKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("LineKind(%d)", int(k))
}

// LineClass is the classification assigned to a line exactly once.
// SubHeader is the 1-based position of a header continuation line.
type LineClass struct {
	Kind      LineKind `json:"kind"`
	SubHeader int      `json:"sub_header,omitempty"`
}

func (c LineClass) String() string {
	if c.Kind == LineSubHeader {
		return fmt.Sprintf("sub-header(%d)", c.SubHeader)
	}
	return c.Kind.String()
}

// TokenizedLine is a classified line and its cell strings
type TokenizedLine struct {
	Class LineClass `json:"class"`
	Cells []string  `json:"cells"`
}

// Mode is the sticky classification mode carried through a build
type Mode int

const (
	// ModeDocument allows document metadata lines
	ModeDocument Mode = iota
	// ModeHeader is entered once the main header line has been seen
	ModeHeader
	// ModeData is entered on the first data line and never left
	ModeData
)

func (m Mode) String() string {
	switch m {
	case ModeDocument:
		return "document"
	case ModeHeader:
		return "header"
	case ModeData:
		return "data"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// Advance returns the mode after a line of the given class.
// The result is never an earlier mode than m.
func (m Mode) Advance(class LineClass) Mode {
	next := m
	switch class.Kind {
	case LineMainHeader:
		next = ModeHeader
	case LineData:
		next = ModeData
	}
	if next < m {
		return m
	}
	return next
}

// LayoutKind identifies the column layout of a structure
type LayoutKind int

const (
	LayoutGeneric LayoutKind = iota
	LayoutInsurance
)

func (k LayoutKind) String() string {
	if k == LayoutInsurance {
		return "insurance"
	}
	return "generic"
}

// HeaderGroup is a header label spanning Span leaf columns from Start
type HeaderGroup struct {
	Name  string `json:"name,omitempty"`
	Label string `json:"label"`
	Start int    `json:"start"`
	Span  int    `json:"span"`
}

// RawTableStructure is the untyped result of a build. Every row has exactly
// len(Headers) values.
type RawTableStructure struct {
	DocumentInfo []string      `json:"document_info"`
	Headers      []string      `json:"headers"`
	HeaderRows   [][]string    `json:"header_rows,omitempty"`
	Groups       []HeaderGroup `json:"groups,omitempty"`
	Rows         [][]any       `json:"rows"`
	Layout       LayoutKind    `json:"layout"`
}

// ============================================================================
// Columns
// ============================================================================

// RoleKind is the semantic category of a column
type RoleKind int

const (
	RoleRowLabel RoleKind = iota
	RoleScheduleCode
	RoleNumericGroup
	RoleGrandTotal
)

func (k RoleKind) String() string {
	switch k {
	case RoleRowLabel:
		return "row-label"
	case RoleScheduleCode:
		return "schedule-code"
	case RoleNumericGroup:
		return "numeric-group"
	case RoleGrandTotal:
		return "grand-total"
	}
	return fmt.Sprintf("RoleKind(%d)", int(k))
}

// Role is a column role; Group is set only for RoleNumericGroup
type Role struct {
	Kind  RoleKind `json:"kind"`
	Group string   `json:"group,omitempty"`
}

func (r Role) String() string {
	if r.Kind == RoleNumericGroup {
		return fmt.Sprintf("numeric-group(%s)", r.Group)
	}
	return r.Kind.String()
}

// Alignment is the text alignment of a column
type Alignment int

const (
	AlignRight Alignment = iota
	AlignLeft
	AlignCenter
)

func (a Alignment) String() string {
	switch a {
	case AlignLeft:
		return "left"
	case AlignCenter:
		return "center"
	default:
		return "right"
	}
}

// MarshalText encodes the alignment by name
func (a Alignment) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText decodes an alignment name
func (a *Alignment) UnmarshalText(text []byte) error {
	switch string(text) {
	case "left":
		*a = AlignLeft
	case "center":
		*a = AlignCenter
	case "right":
		*a = AlignRight
	default:
		return fmt.Errorf("unknown alignment %q", text)
	}
	return nil
}

// ColumnSpec describes one column
type ColumnSpec struct {
	Index     int       `json:"index"`
	Label     string    `json:"label"`
	Role      Role      `json:"role"`
	Alignment Alignment `json:"alignment"`
}

// ============================================================================
// Cells
// ============================================================================

// CellType is the inferred type of a cell value
type CellType int

const (
	TypeNull CellType = iota
	TypeNumber
	TypeBoolean
	TypeDate
	TypeEmail
	TypeURL
	TypePhone
	TypeLongText
	TypeShortText
	TypeArray
	TypeObject
)

var cellTypeNames = [...]string{
	TypeNull:      "null",
	TypeNumber:    "number",
	TypeBoolean:   "boolean",
	TypeDate:      "date",
	TypeEmail:     "email",
	TypeURL:       "url",
	TypePhone:     "phone",
	TypeLongText:  "long-text",
	TypeShortText: "short-text",
	TypeArray:     "array",
	TypeObject:    "object",
}

func (t CellType) String() string {
	if int(t) >= 0 && int(t) < len(cellTypeNames) {
		return cellTypeNames[t]
	}
	return fmt.Sprintf("CellType(%d)", int(t))
}

// MarshalText encodes the type by name
func (t CellType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText decodes a type name
func (t *CellType) UnmarshalText(text []byte) error {
	for i, name := range cellTypeNames {
		if name == string(text) {
			*t = CellType(i)
			return nil
		}
	}
	return fmt.Errorf("unknown cell type %q", text)
}

// Cell is a typed cell value. Items, More and MoreMarker are set for arrays.
type Cell struct {
	Raw                   any      `json:"raw"`
	Type                  CellType `json:"type"`
	Display               string   `json:"display"`
	Items                 []string `json:"items,omitempty"`
	More                  int      `json:"more,omitempty"`
	MoreMarker            string   `json:"more_marker,omitempty"`
	Long                  bool     `json:"long,omitempty"`
	Expanded              bool     `json:"expanded,omitempty"`
	NegativeParenthesized bool     `json:"negative_parenthesized,omitempty"`
	Edited                bool     `json:"edited,omitempty"`
}

// RowModel is one row of typed cells
type RowModel struct {
	Cells      []Cell `json:"cells"`
	IsTotalRow bool   `json:"is_total_row"`
}

// TableModel is the canonical table handed to renderers
type TableModel struct {
	Columns      []ColumnSpec  `json:"columns"`
	Rows         []RowModel    `json:"rows"`
	DocumentInfo []string      `json:"document_info"`
	Groups       []HeaderGroup `json:"groups,omitempty"`
	HeaderRows   [][]string    `json:"header_rows,omitempty"`
	Reason       string        `json:"reason,omitempty"`
}

// RowCount returns the number of rows
func (m TableModel) RowCount() int {
	return len(m.Rows)
}

// ColumnCount returns the number of columns
func (m TableModel) ColumnCount() int {
	return len(m.Columns)
}

// Empty reports whether the model has no data rows
func (m TableModel) Empty() bool {
	return len(m.Rows) == 0
}

// Labels returns the column labels in order
func (m TableModel) Labels() []string {
	labels := make([]string, len(m.Columns))
	for i, c := range m.Columns {
		labels[i] = c.Label
	}
	return labels
}

// Summary returns the "N rows × M columns" chrome text
func (m TableModel) Summary() string {
	return fmt.Sprintf("%d rows × %d columns", m.RowCount(), m.ColumnCount())
}
