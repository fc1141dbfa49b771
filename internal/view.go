package internal

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"

	"github.com/viyanta/viyanta-web-sub000/internal/render"
	"github.com/viyanta/viyanta-web-sub000/internal/theme"
	"github.com/viyanta/viyanta-web-sub000/pkg/clipboard"
	"github.com/viyanta/viyanta-web-sub000/pkg/tablemodel"
)

// Rows above and below the table body: header, rule and status line
const (
	headerLines = 2
	chromeLines = headerLines + 1
)

type mode int

const (
	modeBrowse mode = iota
	modeSearch
	modeJump
)

// ViewOption configures a View
type ViewOption func(*View)

// WithTheme sets the colors of the viewer
func WithTheme(t theme.Theme) ViewOption {
	return func(v *View) {
		v.theme = t
	}
}

// WithCopier sets where copied cells go. Without one copying is disabled.
func WithCopier(c *clipboard.Copier) ViewOption {
	return func(v *View) {
		v.copier = c
	}
}

// WithAlphabet sets the letters used for jump labels
func WithAlphabet(a *Alphabet) ViewOption {
	return func(v *View) {
		v.alphabet = a
	}
}

// WithMaxCellWidth caps collapsed column widths
func WithMaxCellWidth(width int) ViewOption {
	return func(v *View) {
		v.maxCellWidth = width
	}
}

// WithScreen draws on an initialized screen owned by the caller
func WithScreen(s tcell.Screen) ViewOption {
	return func(v *View) {
		v.screen = s
	}
}

// View is the interactive terminal table viewer
type View struct {
	state        *State
	theme        theme.Theme
	copier       *clipboard.Copier
	alphabet     *Alphabet
	maxCellWidth int
	screen       tcell.Screen
	buffer       *TextBuffer

	mode   mode
	input  string
	labels map[string]int
	status string
	top    int
	left   int
}

// NewView creates a viewer for state
func NewView(state *State, opts ...ViewOption) *View {
	v := &View{
		state:        state,
		theme:        theme.Default(),
		alphabet:     NewAlphabet("asdfjklgh"),
		maxCellWidth: 40,
	}

	for _, opt := range opts {
		opt(v)
	}

	return v
}

// Run shows the viewer until the user quits
func (v *View) Run() error {
	if v.screen == nil {
		screen, err := tcell.NewScreen()
		if err != nil {
			return fmt.Errorf("failed to create screen: %w", err)
		}
		if err := screen.Init(); err != nil {
			return fmt.Errorf("failed to initialize screen: %w", err)
		}
		defer screen.Fini()

		screen.SetStyle(tcell.StyleDefault)
		screen.EnableMouse()
		screen.Clear()
		v.screen = screen
	}

	v.listen()
	return nil
}

// listen handles user input until a quit key or a screen error
func (v *View) listen() {
	renderStart := time.Now()
	v.render()
	slog.Info("first render completed", "duration_ms", time.Since(renderStart).Milliseconds())

	for {
		switch ev := v.screen.PollEvent().(type) {
		case nil:
			return
		case *tcell.EventKey:
			if v.handleKeyEvent(ev) {
				return
			}
		case *tcell.EventMouse:
			v.handleMouseEvent(ev)
		case *tcell.EventResize:
			v.screen.Sync()
		case *tcell.EventError:
			slog.Error("Screen error", "error", ev)
			return
		}

		v.render()
	}
}

// ============================================================================
// Rendering
// ============================================================================

func (v *View) render() {
	width, height := v.screen.Size()
	if v.buffer == nil {
		v.buffer = NewTextBuffer(width, height)
	} else if w, h := v.buffer.Size(); w != width || h != height {
		v.buffer = NewTextBuffer(width, height)
	} else {
		v.buffer.Clear()
	}

	model := v.state.Model
	if model.Reason != "" {
		v.buffer.SetString(0, 0, model.Reason, v.fg(v.theme.Muted))
	} else {
		widths := v.columnWidths()
		v.scroll(widths)
		v.renderHeader(widths)
		v.renderBody(widths)
	}
	v.renderStatus()

	v.screen.Clear()
	v.buffer.WriteToScreen(v.screen)
	v.screen.Show()
}

func (v *View) columnWidths() []int {
	return render.New(render.WithMaxCellWidth(v.maxCellWidth)).ColumnWidths(v.state.Model)
}

func (v *View) bodyHeight() int {
	_, height := v.buffer.Size()
	return max(height-chromeLines, 1)
}

// scroll keeps the focused cell inside the visible window
func (v *View) scroll(widths []int) {
	body := v.bodyHeight()
	row := v.state.Row
	if row < v.top {
		v.top = row
	}
	if row >= v.top+body {
		v.top = row - body + 1
	}

	col := v.state.Col
	if col < v.left {
		v.left = col
	}
	width, _ := v.buffer.Size()
	for v.left < col && span(widths, v.left, col) > width {
		v.left++
	}
}

// span is the display width of columns from..to inclusive
func span(widths []int, from, to int) int {
	total := 0
	for i := from; i <= to && i < len(widths); i++ {
		total += widths[i] + len(columnGap)
	}
	return total
}

const columnGap = "  "

func (v *View) renderHeader(widths []int) {
	style := v.fg(v.theme.Header).Bold(true)
	x := 0
	for c := v.left; c < len(widths); c++ {
		column := v.state.Model.Columns[c]
		label := runewidth.Truncate(column.Label, widths[c], tablemodel.Ellipsis)
		x = v.buffer.SetString(x, 0, render.Pad(label, widths[c], column.Alignment)+columnGap, style)
	}

	rule := v.fg(v.theme.Muted)
	x = 0
	for c := v.left; c < len(widths); c++ {
		x = v.buffer.SetString(x, 1, strings.Repeat("─", widths[c])+columnGap, rule)
	}
}

func (v *View) renderBody(widths []int) {
	model := v.state.Model
	selection := tcell.StyleDefault.
		Foreground(v.theme.SelectionFg.Tcell()).
		Background(v.theme.SelectionBg.Tcell())

	body := v.bodyHeight()
	var labels []string
	if v.mode == modeJump {
		labels = v.alphabet.Labels(min(body, model.RowCount()-v.top))
		v.labels = make(map[string]int, len(labels))
	}

	for i := 0; i < body && v.top+i < model.RowCount(); i++ {
		r := v.top + i
		y := headerLines + i
		row := model.Rows[r]
		attrs := tablemodel.RowAttributes(model.Columns, row)
		matched := v.state.IsMatch(r)

		x := 0
		for c := v.left; c < len(widths); c++ {
			text := ""
			style := tcell.StyleDefault
			if c < len(row.Cells) {
				cell := row.Cells[c]
				text = render.CellText(cell)
				if !cell.Expanded && runewidth.StringWidth(text) > widths[c] {
					text = runewidth.Truncate(text, widths[c], tablemodel.Ellipsis)
				}
				text = render.Pad(text, widths[c], attrs[c].Alignment)
				style = v.fg(v.theme.ForKind(attrs[c].Kind)).Bold(row.IsTotalRow)
			}
			if matched {
				style = style.Underline(true)
			}
			if r == v.state.Row && c == v.state.Col {
				style = selection
			}
			x = v.buffer.SetString(x, y, text, style)
			x = v.buffer.SetString(x, y, columnGap, tcell.StyleDefault)
		}

		if i < len(labels) {
			v.labels[labels[i]] = r
			v.renderLabel(labels[i], y)
		}
	}
}

// renderLabel draws a jump label over the start of a row, highlighting the
// part already typed
func (v *View) renderLabel(label string, y int) {
	style := tcell.StyleDefault.
		Foreground(v.theme.SelectionFg.Tcell()).
		Background(v.theme.SelectionBg.Tcell())
	typed := tcell.StyleDefault.
		Foreground(v.theme.Negative.Tcell()).
		Background(v.theme.SelectionBg.Tcell())

	for i, r := range label {
		s := style
		if strings.HasPrefix(label, v.input) && i < len(v.input) {
			s = typed
		}
		v.buffer.SetCell(i, y, r, s)
	}
}

func (v *View) renderStatus() {
	_, height := v.buffer.Size()
	y := height - 1

	var text string
	switch v.mode {
	case modeSearch:
		text = fmt.Sprintf("/%s  (%d matches)", v.input, v.state.Matches())
	case modeJump:
		text = "jump: " + v.input
	default:
		text = v.statusLine()
	}
	v.buffer.SetString(0, y, text, v.fg(v.theme.Muted))
}

func (v *View) statusLine() string {
	if v.status != "" {
		return v.status
	}
	model := v.state.Model
	if model.Empty() {
		return model.Summary()
	}

	parts := []string{model.Summary(), fmt.Sprintf("row %d/%d", v.state.Row+1, model.RowCount())}
	if v.state.Col < model.ColumnCount() {
		column := model.Columns[v.state.Col]
		label := column.Label
		if g := groupOf(model.Groups, v.state.Col); g != "" {
			label = g + " / " + label
		}
		parts = append(parts, label)
	}
	if cell, ok := v.state.Focused(); ok {
		parts = append(parts, cell.Type.String())
	}
	if n := v.state.Expanded(); n > 0 {
		parts = append(parts, fmt.Sprintf("%d expanded", n))
	}
	return strings.Join(parts, "  ")
}

func groupOf(groups []tablemodel.HeaderGroup, col int) string {
	for _, g := range groups {
		if col >= g.Start && col < g.Start+g.Span {
			return g.Label
		}
	}
	return ""
}

func (v *View) fg(c theme.Color) tcell.Style {
	return tcell.StyleDefault.Foreground(c.Tcell())
}

// ============================================================================
// Input
// ============================================================================

// handleKeyEvent processes a key event and reports whether to quit
func (v *View) handleKeyEvent(ev *tcell.EventKey) bool {
	switch v.mode {
	case modeSearch:
		v.handleSearchKey(ev)
		return false
	case modeJump:
		v.handleJumpKey(ev)
		return false
	}

	v.status = ""
	page := v.pageSize()

	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		if ev.Key() == tcell.KeyEscape && v.state.Query() != "" {
			v.state.Search("")
			return false
		}
		return true
	case tcell.KeyUp:
		v.state.Move(-1, 0)
	case tcell.KeyDown:
		v.state.Move(1, 0)
	case tcell.KeyLeft:
		v.state.Move(0, -1)
	case tcell.KeyRight:
		v.state.Move(0, 1)
	case tcell.KeyPgUp:
		v.state.Move(-page, 0)
	case tcell.KeyPgDn:
		v.state.Move(page, 0)
	case tcell.KeyHome:
		v.state.MoveTo(0)
	case tcell.KeyEnd:
		v.state.MoveTo(v.state.Model.RowCount() - 1)
	case tcell.KeyEnter:
		v.toggle()
	case tcell.KeyRune:
		return v.handleRuneKey(ev.Rune())
	}
	return false
}

func (v *View) handleRuneKey(r rune) bool {
	switch r {
	case 'q':
		return true
	case 'k':
		v.state.Move(-1, 0)
	case 'j':
		v.state.Move(1, 0)
	case 'h':
		v.state.Move(0, -1)
	case 'l':
		v.state.Move(0, 1)
	case 'g':
		v.state.MoveTo(0)
	case 'G':
		v.state.MoveTo(v.state.Model.RowCount() - 1)
	case ' ':
		v.toggle()
	case 'c':
		v.state.CollapseAll()
	case '/':
		v.mode = modeSearch
		v.input = ""
	case 'n':
		v.state.NextMatch(1)
	case 'N':
		v.state.NextMatch(-1)
	case 'f':
		v.mode = modeJump
		v.input = ""
	case 'y':
		v.copy(v.state.FocusedText())
	case 'Y':
		v.copy(v.state.RowValues())
	}
	return false
}

func (v *View) handleSearchKey(ev *tcell.EventKey) {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		v.state.Search("")
		v.mode = modeBrowse
	case tcell.KeyEnter:
		v.mode = modeBrowse
		if v.state.Matches() == 0 && v.input != "" {
			v.status = fmt.Sprintf("no rows match %q", v.input)
		}
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		if v.input != "" {
			runes := []rune(v.input)
			v.input = string(runes[:len(runes)-1])
			v.state.Search(v.input)
		}
	case tcell.KeyRune:
		v.input += string(ev.Rune())
		v.state.Search(v.input)
	}
}

func (v *View) handleJumpKey(ev *tcell.EventKey) {
	if ev.Key() != tcell.KeyRune {
		v.mode = modeBrowse
		return
	}

	v.input += strings.ToLower(string(ev.Rune()))
	if row, ok := v.labels[v.input]; ok {
		v.state.MoveTo(row)
		v.mode = modeBrowse
		return
	}
	for label := range v.labels {
		if strings.HasPrefix(label, v.input) {
			return
		}
	}
	v.status = fmt.Sprintf("no row labeled %q", v.input)
	v.mode = modeBrowse
}

func (v *View) handleMouseEvent(ev *tcell.EventMouse) {
	switch {
	case ev.Buttons()&tcell.WheelUp != 0:
		v.state.Move(-1, 0)
	case ev.Buttons()&tcell.WheelDown != 0:
		v.state.Move(1, 0)
	case ev.Buttons()&tcell.Button1 != 0:
		_, y := ev.Position()
		if row := v.top + y - headerLines; y >= headerLines && row < v.state.Model.RowCount() {
			v.state.MoveTo(row)
		}
	}
}

func (v *View) pageSize() int {
	if v.buffer == nil {
		return 1
	}
	return v.bodyHeight()
}

func (v *View) toggle() {
	cell, ok := v.state.Focused()
	if !ok || !cell.Long {
		v.status = "nothing to expand"
		return
	}
	if v.state.Toggle() {
		v.status = "expanded"
	} else {
		v.status = "collapsed"
	}
}

func (v *View) copy(text string) {
	if v.copier == nil {
		v.status = "clipboard disabled"
		return
	}
	if err := v.copier.Copy(text); err != nil {
		slog.Warn("Copy failed", "error", err)
		v.status = "copy failed: " + err.Error()
		return
	}
	v.status = fmt.Sprintf("copied %d characters", len([]rune(text)))
}
