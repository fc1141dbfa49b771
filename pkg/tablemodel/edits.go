package tablemodel

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// EditKey identifies an edited cell by form, record, row and column header.
// Its wire form is "form_record_row_header".
type EditKey struct {
	Form   string `json:"form"`
	Record int    `json:"record"`
	Row    int    `json:"row"`
	Header string `json:"header"`
}

// editKeyPattern anchors on the first pair of numeric segments, so the form
// must not contain "_<digits>_<digits>_" while the header may contain anything
var editKeyPattern = regexp.MustCompile(`^(.*?)_(\d+)_(\d+)_(.*)$`)

func (k EditKey) String() string {
	return fmt.Sprintf("%s_%d_%d_%s", k.Form, k.Record, k.Row, k.Header)
}

// MarshalText encodes the key in its wire form
func (k EditKey) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText decodes the wire form
func (k *EditKey) UnmarshalText(text []byte) error {
	parsed, err := ParseEditKey(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// ParseEditKey parses "form_record_row_header"
func ParseEditKey(s string) (EditKey, error) {
	m := editKeyPattern.FindStringSubmatch(s)
	if m == nil {
		return EditKey{}, fmt.Errorf("invalid edit key %q", s)
	}
	record, err := strconv.Atoi(m[2])
	if err != nil {
		return EditKey{}, fmt.Errorf("invalid record index in edit key %q: %w", s, err)
	}
	row, err := strconv.Atoi(m[3])
	if err != nil {
		return EditKey{}, fmt.Errorf("invalid row index in edit key %q: %w", s, err)
	}
	return EditKey{Form: m[1], Record: record, Row: row, Header: m[4]}, nil
}

// ApplyEdits returns a copy of model with the display value of every edited
// cell of the given form and record replaced. Edits for other forms, unknown
// headers or rows out of range are ignored. The base model is not modified.
func ApplyEdits(model TableModel, form string, record int, edits map[EditKey]string) TableModel {
	out := model
	out.Rows = make([]RowModel, len(model.Rows))
	for i, row := range model.Rows {
		out.Rows[i] = RowModel{
			Cells:      append([]Cell(nil), row.Cells...),
			IsTotalRow: row.IsTotalRow,
		}
	}

	for key, value := range edits {
		if key.Form != form || key.Record != record {
			continue
		}
		col := columnByHeader(model.Columns, key.Header)
		if col < 0 || key.Row < 0 || key.Row >= len(out.Rows) || col >= len(out.Rows[key.Row].Cells) {
			continue
		}

		cell := &out.Rows[key.Row].Cells[col]
		cell.Display = value
		cell.Items = nil
		cell.More = 0
		cell.MoreMarker = ""
		cell.Edited = true
	}

	return out
}

// columnByHeader finds a column by exact label, then case-insensitively
func columnByHeader(columns []ColumnSpec, header string) int {
	for _, c := range columns {
		if c.Label == header {
			return c.Index
		}
	}
	for _, c := range columns {
		if strings.EqualFold(strings.TrimSpace(c.Label), strings.TrimSpace(header)) {
			return c.Index
		}
	}
	return -1
}
