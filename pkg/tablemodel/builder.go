package tablemodel

import (
	"fmt"
	"sort"
	"strings"
)

// ============================================================================
// Structure Builder
// ============================================================================

// Builder turns classified lines or tokenized values into a RawTableStructure
type Builder struct {
	tokenizer *Tokenizer
	layout    Layout
}

// NewBuilder creates a builder for the given configuration
func NewBuilder(config Config) *Builder {
	return &Builder{
		tokenizer: NewTokenizer(config),
		layout:    config.Vocabulary.Layout,
	}
}

// buildState is the fold accumulator of a text build
type buildState struct {
	mode       Mode
	index      int
	subHeaders int
	mainHeader bool
	structure  RawTableStructure
}

// Build runs a single forward pass over the lines
func (b *Builder) Build(lines []RawLine) RawTableStructure {
	state := buildState{mode: ModeDocument}
	for _, line := range lines {
		state = b.step(state, line)
	}
	return b.finish(state)
}

// BuildText splits raw text into lines and builds it
func (b *Builder) BuildText(text string) RawTableStructure {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return b.Build(NewRawLines(strings.Split(text, "\n")))
}

// step consumes one line; the mode only moves forward
func (b *Builder) step(state buildState, line RawLine) buildState {
	tl := b.tokenizer.TokenizeLine(line.Text, Cursor{
		Index:      state.index,
		Mode:       state.mode,
		SubHeaders: state.subHeaders,
	})
	if tl.Class.Kind == LineNoise {
		return state
	}
	state.index++

	switch tl.Class.Kind {
	case LineDocumentInfo:
		state.structure.DocumentInfo = append(state.structure.DocumentInfo, tl.Cells...)
	case LineMainHeader:
		state.mainHeader = true
		state.structure.HeaderRows = append(state.structure.HeaderRows, tl.Cells)
	case LineSubHeader:
		// Continuation lines only count once the main header is known
		state.subHeaders = tl.Class.SubHeader
		if state.mainHeader {
			state.structure.HeaderRows = append(state.structure.HeaderRows, tl.Cells)
		}
	case LineData:
		if len(tl.Cells) >= MinFieldsPerDataRow {
			state.structure.Rows = append(state.structure.Rows, stringsToValues(tl.Cells))
		}
	}

	state.mode = state.mode.Advance(tl.Class)
	return state
}

// finish applies the header layout and pads every row
func (b *Builder) finish(state buildState) RawTableStructure {
	s := state.structure
	if s.DocumentInfo == nil {
		s.DocumentInfo = []string{}
	}
	if s.Rows == nil {
		s.Rows = [][]any{}
	}

	if state.mainHeader && b.layout.Width() > 0 {
		s.Layout = LayoutInsurance
		s.Headers = b.layout.Labels()
		s.Groups = b.layout.HeaderGroups()
	} else {
		s.Layout = LayoutGeneric
		s.Headers = mainHeaderLabels(state)
		if len(s.Headers) == 0 {
			s.Headers = SynthesizeHeaders(widestRow(s.Rows))
			s.HeaderRows = nil
		}
	}

	s.Rows = padRows(s.Rows, len(s.Headers))
	return s
}

// mainHeaderLabels returns the labels of the detected main header line,
// or nil when none was seen
func mainHeaderLabels(state buildState) []string {
	if !state.mainHeader || len(state.structure.HeaderRows) == 0 {
		return nil
	}
	var labels []string
	for _, label := range state.structure.HeaderRows[0] {
		if label != "" {
			labels = append(labels, label)
		}
	}
	return labels
}

// FromTokenized builds a structure from already-split values, skipping
// tokenization. Empty headers are synthesized from the widest row.
func (b *Builder) FromTokenized(headers []string, rows [][]any) RawTableStructure {
	s := RawTableStructure{
		DocumentInfo: []string{},
		Rows:         make([][]any, 0, len(rows)),
		Layout:       LayoutGeneric,
	}
	for _, row := range rows {
		s.Rows = append(s.Rows, append([]any(nil), row...))
	}

	if len(headers) == 0 {
		s.Headers = SynthesizeHeaders(widestRow(s.Rows))
	} else {
		s.Headers = append([]string(nil), headers...)
	}

	if b.matchesLayout(s.Headers) {
		s.Layout = LayoutInsurance
		s.Groups = b.layout.HeaderGroups()
	}

	s.Rows = padRows(s.Rows, len(s.Headers))
	return s
}

// FromRecords builds a structure from keyed records. Headers follow the
// first-seen key order across all records.
func (b *Builder) FromRecords(records []Record) RawTableStructure {
	var headers []string
	seen := make(map[string]bool)
	for _, r := range records {
		for _, k := range r.Keys {
			if !seen[k] {
				seen[k] = true
				headers = append(headers, k)
			}
		}
	}

	rows := make([][]any, 0, len(records))
	for _, r := range records {
		row := make([]any, len(headers))
		for i, h := range headers {
			v, ok := r.Values[h]
			if !ok {
				v = ""
			}
			row[i] = v
		}
		rows = append(rows, row)
	}

	return b.FromTokenized(headers, rows)
}

// matchesLayout reports whether tokenized headers are the statement layout
func (b *Builder) matchesLayout(headers []string) bool {
	labels := b.layout.Labels()
	if len(labels) == 0 || len(headers) != len(labels) {
		return false
	}
	for i := range b.layout.LabelColumns {
		if !strings.EqualFold(strings.TrimSpace(headers[i]), labels[i]) {
			return false
		}
	}
	return true
}

// ============================================================================
// Records
// ============================================================================

// Record is a keyed row that remembers its key order
type Record struct {
	Keys   []string
	Values map[string]any
}

// RecordFromMap builds a Record with sorted keys, since map order is undefined
func RecordFromMap(m map[string]any) Record {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return Record{Keys: keys, Values: m}
}

// ============================================================================
// Helpers
// ============================================================================

// SynthesizeHeaders returns ["Description", "Column 2", ...] with n labels,
// at least one
func SynthesizeHeaders(n int) []string {
	if n < 1 {
		n = 1
	}
	headers := make([]string, n)
	headers[0] = SynthesizedFirstHeader
	for i := 1; i < n; i++ {
		headers[i] = fmt.Sprintf("Column %d", i+1)
	}
	return headers
}

func widestRow(rows [][]any) int {
	widest := 0
	for _, row := range rows {
		if len(row) > widest {
			widest = len(row)
		}
	}
	return widest
}

// padRows right-pads every row with "" or truncates it to width
func padRows(rows [][]any, width int) [][]any {
	for i, row := range rows {
		rows[i] = padRow(row, width)
	}
	return rows
}

func padRow(row []any, width int) []any {
	if len(row) >= width {
		return row[:width:width]
	}
	padded := make([]any, width)
	copy(padded, row)
	for i := len(row); i < width; i++ {
		padded[i] = ""
	}
	return padded
}

func stringsToValues(cells []string) []any {
	values := make([]any, len(cells))
	for i, c := range cells {
		values[i] = c
	}
	return values
}
