package render

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-runewidth"
	"golang.org/x/term"

	"github.com/viyanta/viyanta-web-sub000/internal/theme"
	"github.com/viyanta/viyanta-web-sub000/pkg/tablemodel"
)

const (
	defaultTerminalWidth = 80
	defaultMaxCellWidth  = 40
	columnGap            = "  "
)

// Option configures a Renderer
type Option func(*Renderer)

// Renderer writes a TableModel as aligned, colored text
type Renderer struct {
	theme        theme.Theme
	maxCellWidth int
	documentInfo bool
	summary      bool
	groups       bool
}

// New creates a renderer with the default theme
func New(opts ...Option) *Renderer {
	r := &Renderer{
		theme:        theme.Default(),
		maxCellWidth: defaultMaxCellWidth,
		documentInfo: true,
		summary:      true,
		groups:       true,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// WithTheme sets the colors used for semantic cell kinds
func WithTheme(t theme.Theme) Option {
	return func(r *Renderer) {
		r.theme = t
	}
}

// WithMaxCellWidth caps the width of collapsed cells. Zero disables the cap.
func WithMaxCellWidth(width int) Option {
	return func(r *Renderer) {
		r.maxCellWidth = width
	}
}

// WithDocumentInfo enables/disables the document metadata block
func WithDocumentInfo(enabled bool) Option {
	return func(r *Renderer) {
		r.documentInfo = enabled
	}
}

// WithSummary enables/disables the trailing row/column count
func WithSummary(enabled bool) Option {
	return func(r *Renderer) {
		r.summary = enabled
	}
}

// WithGroups enables/disables the spanning group header line
func WithGroups(enabled bool) Option {
	return func(r *Renderer) {
		r.groups = enabled
	}
}

// Render writes the model to w
func (r *Renderer) Render(w io.Writer, model tablemodel.TableModel) error {
	out := bufio.NewWriter(w)

	if r.documentInfo {
		for _, line := range model.DocumentInfo {
			out.WriteString(r.theme.DocumentInfo.Sprint(line))
			out.WriteByte('\n')
		}
		if len(model.DocumentInfo) > 0 {
			out.WriteByte('\n')
		}
	}

	if model.Reason != "" {
		out.WriteString(r.theme.Muted.Sprint(model.Reason))
		out.WriteByte('\n')
	}

	if model.ColumnCount() > 0 {
		widths := r.ColumnWidths(model)

		if r.groups && len(model.Groups) > 0 {
			out.WriteString(r.groupLine(model.Groups, widths))
			out.WriteByte('\n')
		}

		header := make([]string, len(model.Columns))
		for i, column := range model.Columns {
			text := Pad(r.fit(column.Label, widths[i], false), widths[i], column.Alignment)
			header[i] = r.theme.Header.Sprint(text)
		}
		out.WriteString(strings.TrimRight(strings.Join(header, columnGap), " "))
		out.WriteByte('\n')
		out.WriteString(rule(widths))
		out.WriteByte('\n')

		for _, row := range model.Rows {
			out.WriteString(r.row(model.Columns, row, widths))
			out.WriteByte('\n')
		}
	}

	if r.summary {
		out.WriteString(r.theme.Muted.Sprint(model.Summary()))
		out.WriteByte('\n')
	}

	return out.Flush()
}

// ColumnWidths returns the display width of every column
func (r *Renderer) ColumnWidths(model tablemodel.TableModel) []int {
	widths := make([]int, len(model.Columns))
	for i, column := range model.Columns {
		widths[i] = r.capWidth(runewidth.StringWidth(column.Label))
	}
	for _, row := range model.Rows {
		for i, cell := range row.Cells {
			if i >= len(widths) {
				break
			}
			w := runewidth.StringWidth(CellText(cell))
			if !cell.Expanded {
				w = r.capWidth(w)
			}
			if w > widths[i] {
				widths[i] = w
			}
		}
	}
	return widths
}

func (r *Renderer) row(columns []tablemodel.ColumnSpec, row tablemodel.RowModel, widths []int) string {
	attrs := tablemodel.RowAttributes(columns, row)
	parts := make([]string, len(widths))
	for i := range widths {
		if i >= len(row.Cells) {
			parts[i] = strings.Repeat(" ", widths[i])
			continue
		}
		cell := row.Cells[i]
		text := Pad(r.fit(CellText(cell), widths[i], cell.Expanded), widths[i], attrs[i].Alignment)
		parts[i] = r.theme.ForKind(attrs[i].Kind).Sprint(text)
	}
	return strings.TrimRight(strings.Join(parts, columnGap), " ")
}

// groupLine centers each group label over the columns it spans
func (r *Renderer) groupLine(groups []tablemodel.HeaderGroup, widths []int) string {
	var b strings.Builder
	col := 0
	for _, g := range groups {
		for ; col < g.Start && col < len(widths); col++ {
			b.WriteString(strings.Repeat(" ", widths[col]))
			b.WriteString(columnGap)
		}
		span := 0
		for i := g.Start; i < g.Start+g.Span && i < len(widths); i++ {
			span += widths[i]
		}
		if g.Span > 1 {
			span += runewidth.StringWidth(columnGap) * (g.Span - 1)
		}
		label := runewidth.Truncate(g.Label, span, tablemodel.Ellipsis)
		b.WriteString(r.theme.Header.Sprint(Pad(label, span, tablemodel.AlignCenter)))
		b.WriteString(columnGap)
		col = g.Start + g.Span
	}
	return strings.TrimRight(b.String(), " ")
}

func (r *Renderer) capWidth(w int) int {
	if r.maxCellWidth > 0 && w > r.maxCellWidth {
		return r.maxCellWidth
	}
	return w
}

func (r *Renderer) fit(text string, width int, expanded bool) string {
	if expanded || runewidth.StringWidth(text) <= width {
		return text
	}
	return runewidth.Truncate(text, width, tablemodel.Ellipsis)
}

// CellText returns the single-line text of a cell. Collapsed arrays show
// their visible items and the overflow marker.
func CellText(cell tablemodel.Cell) string {
	text := cell.Display
	if cell.Type == tablemodel.TypeArray && len(cell.Items) > 0 {
		text = strings.Join(cell.Items, ", ")
		if cell.MoreMarker != "" {
			text += " " + cell.MoreMarker
		}
	}
	return strings.NewReplacer("\r\n", " ", "\n", " ", "\t", " ").Replace(text)
}

// Pad aligns text within width display columns
func Pad(text string, width int, align tablemodel.Alignment) string {
	gap := width - runewidth.StringWidth(text)
	if gap <= 0 {
		return text
	}
	switch align {
	case tablemodel.AlignLeft:
		return text + strings.Repeat(" ", gap)
	case tablemodel.AlignCenter:
		left := gap / 2
		return strings.Repeat(" ", left) + text + strings.Repeat(" ", gap-left)
	default:
		return strings.Repeat(" ", gap) + text
	}
}

func rule(widths []int) string {
	parts := make([]string, len(widths))
	for i, w := range widths {
		parts[i] = strings.Repeat("─", w)
	}
	return strings.Join(parts, columnGap)
}

// TerminalWidth returns the width of the terminal attached to f
func TerminalWidth(f *os.File) int {
	if f == nil || !term.IsTerminal(int(f.Fd())) {
		return defaultTerminalWidth
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil || width <= 0 {
		return defaultTerminalWidth
	}
	return width
}
