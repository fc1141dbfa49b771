package internal

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"
)

type TextCell struct {
	Rune  rune
	Style tcell.Style
}

// TextBuffer is a fixed size grid of styled cells. Writes outside the grid
// are clipped rather than wrapped.
type TextBuffer struct {
	content [][]TextCell // [row][column]
	width   int
	height  int
}

func NewTextBuffer(width, height int) *TextBuffer {
	content := make([][]TextCell, max(height, 0))
	for i := range content {
		content[i] = make([]TextCell, max(width, 0))
	}
	return &TextBuffer{content: content, width: width, height: height}
}

// Size returns the buffer dimensions
func (tb *TextBuffer) Size() (int, int) {
	return tb.width, tb.height
}

// Clear blanks every cell
func (tb *TextBuffer) Clear() {
	for i := range tb.content {
		for j := range tb.content[i] {
			tb.content[i][j] = TextCell{}
		}
	}
}

// SetCell sets one cell. Out of range coordinates are ignored.
func (tb *TextBuffer) SetCell(x, y int, r rune, style tcell.Style) {
	if y < 0 || y >= tb.height || x < 0 || x >= tb.width {
		return
	}
	tb.content[y][x] = TextCell{Rune: r, Style: style}
}

// SetString writes text starting at x and returns the column after it.
// Wide runes occupy two columns; the second one is left blank.
func (tb *TextBuffer) SetString(x, y int, text string, style tcell.Style) int {
	for _, r := range text {
		width := runewidth.RuneWidth(r)
		if width <= 0 {
			width = 1
		}
		if x+width > tb.width {
			break
		}
		tb.SetCell(x, y, r, style)
		if width == 2 {
			tb.SetCell(x+1, y, 0, style)
		}
		x += width
	}
	return x
}

// FillLine styles a whole row, keeping its runes
func (tb *TextBuffer) FillLine(y int, style tcell.Style) {
	if y < 0 || y >= tb.height {
		return
	}
	for x := range tb.content[y] {
		tb.content[y][x].Style = style
	}
}

// Line returns the text of one row with trailing blanks trimmed
func (tb *TextBuffer) Line(y int) string {
	if y < 0 || y >= tb.height {
		return ""
	}
	var sb strings.Builder
	row := tb.content[y]
	for x, cell := range row {
		switch {
		case cell.Rune != 0:
			sb.WriteRune(cell.Rune)
		case x > 0 && runewidth.RuneWidth(row[x-1].Rune) == 2:
		default:
			sb.WriteRune(' ')
		}
	}
	return strings.TrimRight(sb.String(), " ")
}

// StyleAt returns the style of one cell
func (tb *TextBuffer) StyleAt(x, y int) tcell.Style {
	if y < 0 || y >= tb.height || x < 0 || x >= tb.width {
		return tcell.StyleDefault
	}
	return tb.content[y][x].Style
}

func (tb *TextBuffer) String() string {
	lines := make([]string, tb.height)
	for y := range lines {
		lines[y] = tb.Line(y)
	}
	return strings.Join(lines, "\n")
}

func (tb *TextBuffer) dumpSnapshot() error {
	unixMilli := time.Now().UnixMilli()

	appDir := filepath.Join(xdg.StateHome, "tablelens")
	if err := os.MkdirAll(appDir, 0755); err != nil {
		return err
	}
	filePath := filepath.Join(appDir, fmt.Sprintf("snapshot-%d.txt", unixMilli))

	f, err := os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	defer f.Close() // nolint

	_, err = f.WriteString(tb.String())
	return err
}

// WriteToScreen copies the grid to a tcell screen
func (tb *TextBuffer) WriteToScreen(screen tcell.Screen) {
	if tb.width <= 0 {
		return
	}

	if IsDebugMode() {
		tb.dumpSnapshot() // nolint
	}

	for y, row := range tb.content {
		for x, cell := range row {
			r := cell.Rune
			if r == 0 {
				if x > 0 && runewidth.RuneWidth(row[x-1].Rune) == 2 {
					continue
				}
				r = ' '
			}
			screen.SetContent(x, y, r, nil, cell.Style)
		}
	}
}
