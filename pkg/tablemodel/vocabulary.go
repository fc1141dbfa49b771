package tablemodel

import (
	"regexp"
	"strings"
	"unicode"
)

// Vocabulary holds every domain word list the engine matches against.
// The zero value matches nothing; use DefaultVocabulary for insurance statements.
type Vocabulary struct {
	// Line classification
	DocumentMarkers    []string `toml:"document_markers" json:"document_markers"`
	MainHeaderMarkers  []string `toml:"main_header_markers" json:"main_header_markers"`
	LineItemPhrases    []string `toml:"line_item_phrases" json:"line_item_phrases"`
	DataRowPattern     string   `toml:"data_row_pattern" json:"data_row_pattern"`
	HeaderLabelPattern []string `toml:"header_label_patterns" json:"header_label_patterns"`

	// Column classification
	SerialHeaders []string `toml:"serial_headers" json:"serial_headers"`
	LabelHeaders  []string `toml:"label_headers" json:"label_headers"`
	RightHeaders  []string `toml:"right_headers" json:"right_headers"`

	// Row classification
	TotalMarkers []string `toml:"total_markers" json:"total_markers"`

	Layout Layout `toml:"layout" json:"layout"`
}

// Layout describes the fixed multi-level column structure of a statement form
type Layout struct {
	LabelColumns []string      `toml:"label_columns" json:"label_columns"`
	Groups       []LayoutGroup `toml:"groups" json:"groups"`
	GrandTotal   string        `toml:"grand_total" json:"grand_total"`
}

// LayoutGroup is a named run of numeric columns
type LayoutGroup struct {
	Name    string   `toml:"name" json:"name"`
	Label   string   `toml:"label" json:"label"`
	Columns []string `toml:"columns" json:"columns"`
}

// DefaultVocabulary returns the vocabulary for insurance regulatory statements
// (revenue account forms with linked / non-linked business columns)
func DefaultVocabulary() Vocabulary {
	return Vocabulary{
		DocumentMarkers:   []string{"Form L-", "Registration", "REVENUE ACCOUNT", "Policyholders"},
		MainHeaderMarkers: []string{"Particulars", "Schedule"},
		LineItemPhrases:   []string{"Premiums earned", "Income from investments", "Benefits paid"},
		// a label that starts with a letter, then whitespace, then a (possibly
		// parenthesized or signed) number
		DataRowPattern: `^[A-Za-z][^0-9]*?\s+[(\-]?\d`,
		HeaderLabelPattern: []string{
			`(?i)\bParticulars\b`,
			`(?i)\bSchedule(?:\s+Ref(?:erence)?\.?)?`,
			`(?i)\bNon-Linked\s+Business(?:\s*-\s*\w+)?`,
			`(?i)\bLinked\s+Business(?:\s*-\s*\w+)?`,
			`(?i)\bGRAND\s+TOTAL\b`,
		},
		SerialHeaders: []string{"sl no", "s no", "sr no", "serial number", "serial no", "index", "item", "no", "#"},
		LabelHeaders:  []string{"particulars", "description", "name", "category", "remarks", "details", "label", "type", "schedule"},
		RightHeaders:  []string{"for"},
		TotalMarkers:  []string{"total"},
		Layout: Layout{
			LabelColumns: []string{"Particulars", "Schedule"},
			Groups: []LayoutGroup{
				{
					Name:    "linked",
					Label:   "Linked Business",
					Columns: []string{"Life", "Pension", "Health", "Var. Ins", "Total"},
				},
				{
					Name:    "participating",
					Label:   "Non-Linked Business - Participating",
					Columns: []string{"Life", "Annuity", "Pension", "Health", "Var. Ins", "Total"},
				},
				{
					Name:    "non-participating",
					Label:   "Non-Linked Business - Non-Participating",
					Columns: []string{"Life", "Annuity", "Pension", "Health", "Var. Ins", "Total"},
				},
			},
			GrandTotal: "GRAND TOTAL",
		},
	}
}

// Width returns the number of leaf columns the layout declares
func (l Layout) Width() int {
	n := len(l.LabelColumns)
	for _, g := range l.Groups {
		n += len(g.Columns)
	}
	if l.GrandTotal != "" {
		n++
	}
	return n
}

// Labels returns the leaf column labels in order
func (l Layout) Labels() []string {
	labels := make([]string, 0, l.Width())
	labels = append(labels, l.LabelColumns...)
	for _, g := range l.Groups {
		labels = append(labels, g.Columns...)
	}
	if l.GrandTotal != "" {
		labels = append(labels, l.GrandTotal)
	}
	return labels
}

// HeaderGroups returns the spanning group labels of the layout
func (l Layout) HeaderGroups() []HeaderGroup {
	groups := make([]HeaderGroup, 0, len(l.Groups)+2)
	start := 0
	if len(l.LabelColumns) > 0 {
		groups = append(groups, HeaderGroup{Start: 0, Span: len(l.LabelColumns)})
		start = len(l.LabelColumns)
	}
	for _, g := range l.Groups {
		groups = append(groups, HeaderGroup{Name: g.Name, Label: g.Label, Start: start, Span: len(g.Columns)})
		start += len(g.Columns)
	}
	if l.GrandTotal != "" {
		groups = append(groups, HeaderGroup{Name: "grand-total", Label: l.GrandTotal, Start: start, Span: 1})
	}
	return groups
}

// groupAt returns the layout group owning leaf column index, if any
func (l Layout) groupAt(index int) (LayoutGroup, bool) {
	start := len(l.LabelColumns)
	for _, g := range l.Groups {
		if index >= start && index < start+len(g.Columns) {
			return g, true
		}
		start += len(g.Columns)
	}
	return LayoutGroup{}, false
}

// ============================================================================
// Compiled Vocabulary
// ============================================================================

// matcher is the compiled, lower-cased form of a Vocabulary
type matcher struct {
	vocab         Vocabulary
	documentLower []string
	headerLower   []string
	phrasesLower  []string
	dataRow       *regexp.Regexp
	headerLabels  []*regexp.Regexp
	serial        []string
	label         []string
	right         []string
	total         []string
}

func compileVocabulary(v Vocabulary) *matcher {
	m := &matcher{
		vocab:         v,
		documentLower: lowerAll(v.DocumentMarkers),
		headerLower:   lowerAll(v.MainHeaderMarkers),
		phrasesLower:  lowerAll(v.LineItemPhrases),
		serial:        normalizeAll(v.SerialHeaders),
		label:         normalizeAll(v.LabelHeaders),
		right:         normalizeAll(v.RightHeaders),
		total:         lowerAll(v.TotalMarkers),
	}

	// Invalid user patterns are skipped rather than failing the engine
	if v.DataRowPattern != "" {
		if re, err := regexp.Compile(v.DataRowPattern); err == nil {
			m.dataRow = re
		}
	}
	for _, p := range v.HeaderLabelPattern {
		if re, err := regexp.Compile(p); err == nil {
			m.headerLabels = append(m.headerLabels, re)
		}
	}

	return m
}

// isDocumentLine reports whether the line carries a document marker
func (m *matcher) isDocumentLine(line string) bool {
	return containsAny(strings.ToLower(line), m.documentLower)
}

// isMainHeaderLine reports whether the line carries every main header marker
func (m *matcher) isMainHeaderLine(line string) bool {
	if len(m.headerLower) == 0 {
		return false
	}
	lower := strings.ToLower(line)
	for _, marker := range m.headerLower {
		if !strings.Contains(lower, marker) {
			return false
		}
	}
	return true
}

// isDataLine reports whether the line looks like a line item
func (m *matcher) isDataLine(line string) bool {
	if m.dataRow != nil && m.dataRow.MatchString(line) {
		return true
	}
	return containsAny(strings.ToLower(line), m.phrasesLower)
}

// isTotalText reports whether the text contains a total marker
func (m *matcher) isTotalText(text string) bool {
	return containsAny(strings.ToLower(text), m.total)
}

func containsAny(lower string, needles []string) bool {
	for _, needle := range needles {
		if needle != "" && strings.Contains(lower, needle) {
			return true
		}
	}
	return false
}

func lowerAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		out = append(out, strings.ToLower(v))
	}
	return out
}

func normalizeAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if n := normalizeHeader(v); n != "" {
			out = append(out, n)
		}
	}
	return out
}

// normalizeHeader lower-cases a header, turns punctuation into spaces and
// collapses whitespace: "Sl. No." -> "sl no"
func normalizeHeader(s string) string {
	var b strings.Builder
	lastSpace := true
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '#' {
			b.WriteRune(r)
			lastSpace = false
			continue
		}
		if !lastSpace {
			b.WriteRune(' ')
			lastSpace = true
		}
	}
	return strings.TrimSpace(b.String())
}

// matchesWord reports whether any vocabulary term appears in the normalized
// header on word boundaries
func matchesWord(normalized string, terms []string) bool {
	if normalized == "" {
		return false
	}
	padded := " " + normalized + " "
	for _, term := range terms {
		if strings.Contains(padded, " "+term+" ") {
			return true
		}
	}
	return false
}
