package internal

import (
	"log/slog"
	"strings"

	"github.com/viyanta/viyanta-web-sub000/internal/export"
	"github.com/viyanta/viyanta-web-sub000/internal/render"
	"github.com/viyanta/viyanta-web-sub000/pkg/fuzzymatch"
	"github.com/viyanta/viyanta-web-sub000/pkg/tablemodel"
)

// State is the interactive state of one table: the assembled model, the
// focused cell and the active search. Toggling expansion re-assembles the
// model from the cached structure without tokenizing the input again.
type State struct {
	engine    *tablemodel.Engine
	structure tablemodel.RawTableStructure
	expansion *tablemodel.Store
	matcher   *fuzzymatch.Matcher

	Model tablemodel.TableModel
	Row   int
	Col   int

	query   string
	matches []fuzzymatch.Match
	current int
}

// NewState normalizes input and focuses the first cell
func NewState(engine *tablemodel.Engine, input any) *State {
	s := &State{
		engine:    engine,
		expansion: tablemodel.NewStore(),
		matcher:   fuzzymatch.NewMatcher(false),
	}

	structure, reason := engine.Structure(input)
	if reason != "" {
		slog.Warn("Input is not a table", "reason", reason)
		s.Model = engine.Normalize(input, nil)
		return s
	}
	s.structure = structure
	s.refresh()
	return s
}

func (s *State) refresh() {
	s.Model = s.engine.Model(s.structure, s.expansion)
}

// ============================================================================
// Navigation
// ============================================================================

// Move shifts the focus, stopping at the table edges
func (s *State) Move(rows, cols int) {
	s.Row = clamp(s.Row+rows, 0, s.Model.RowCount()-1)
	s.Col = clamp(s.Col+cols, 0, s.Model.ColumnCount()-1)
}

// MoveTo focuses a row, keeping the column
func (s *State) MoveTo(row int) {
	s.Row = clamp(row, 0, s.Model.RowCount()-1)
}

// Focused returns the focused cell
func (s *State) Focused() (tablemodel.Cell, bool) {
	if s.Row >= s.Model.RowCount() {
		return tablemodel.Cell{}, false
	}
	cells := s.Model.Rows[s.Row].Cells
	if s.Col >= len(cells) {
		return tablemodel.Cell{}, false
	}
	return cells[s.Col], true
}

// ============================================================================
// Expansion
// ============================================================================

// Toggle flips the expansion of the focused cell and returns the new state.
// Only long cells react; toggling anything else is a no-op.
func (s *State) Toggle() bool {
	cell, ok := s.Focused()
	if !ok || !cell.Long {
		return false
	}
	expanded := s.expansion.Toggle(s.Row, s.Col)
	s.refresh()
	slog.Debug("Toggled cell", "row", s.Row, "col", s.Col, "expanded", expanded)
	return expanded
}

// CollapseAll resets every expanded cell
func (s *State) CollapseAll() {
	s.expansion.Reset()
	s.refresh()
}

// Expanded returns the number of expanded cells
func (s *State) Expanded() int {
	return s.expansion.Len()
}

// ============================================================================
// Search
// ============================================================================

// Search fuzzy matches every row against query and focuses the best match.
// It returns the number of matching rows; an empty query clears the search.
func (s *State) Search(query string) int {
	s.query = query
	s.matches = nil
	s.current = 0
	if query == "" {
		return 0
	}

	texts := make([]string, s.Model.RowCount())
	for i := range texts {
		texts[i] = s.RowText(i)
	}
	s.matches = s.matcher.FilterRows(query, texts)
	if len(s.matches) > 0 {
		s.MoveTo(s.matches[0].Row)
	}
	return len(s.matches)
}

// NextMatch focuses the next search result, wrapping around. A negative
// step moves backwards.
func (s *State) NextMatch(step int) bool {
	if len(s.matches) == 0 {
		return false
	}
	n := len(s.matches)
	s.current = ((s.current+step)%n + n) % n
	s.MoveTo(s.matches[s.current].Row)
	return true
}

// Query returns the active search query
func (s *State) Query() string {
	return s.query
}

// Matches returns the number of rows matching the active search
func (s *State) Matches() int {
	return len(s.matches)
}

// IsMatch reports whether a row matches the active search
func (s *State) IsMatch(row int) bool {
	for _, m := range s.matches {
		if m.Row == row {
			return true
		}
	}
	return false
}

// RowText joins the visible text of a row for searching
func (s *State) RowText(row int) string {
	cells := s.Model.Rows[row].Cells
	parts := make([]string, len(cells))
	for i, cell := range cells {
		parts[i] = render.CellText(cell)
	}
	return strings.Join(parts, " | ")
}

// ============================================================================
// Copying
// ============================================================================

// FocusedText returns the full, untruncated text of the focused cell
func (s *State) FocusedText() string {
	cell, ok := s.Focused()
	if !ok {
		return ""
	}
	return export.Text(cell)
}

// RowValues returns the full text of the focused row, tab separated
func (s *State) RowValues() string {
	if s.Row >= s.Model.RowCount() {
		return ""
	}
	cells := s.Model.Rows[s.Row].Cells
	parts := make([]string, len(cells))
	for i, cell := range cells {
		parts[i] = export.Text(cell)
	}
	return strings.Join(parts, "\t")
}
