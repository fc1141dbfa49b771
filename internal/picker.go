package internal

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"golang.org/x/term"

	"github.com/viyanta/viyanta-web-sub000/pkg/fuzzymatch"
)

const (
	defaultMaxVisibleItems = 10
	defaultWidth           = 80

	// Control characters
	ctrlC = 3   // Ctrl+C
	esc   = 27  // ESC
	del   = 127 // Backspace/Delete
	bs    = 8   // Backspace
	enter = 13  // Enter
	ctrlU = 21  // Ctrl+U (clear input)
	ctrlP = 16  // Ctrl+P (up)
	ctrlN = 14  // Ctrl+N (down)
	ctrlJ = 10  // Ctrl+J (down)
	ctrlK = 11  // Ctrl+K (up)
)

// PickerOption configures a Picker
type PickerOption func(*Picker)

// WithPickerIO reads keys from in and draws on out instead of /dev/tty
func WithPickerIO(in io.Reader, out io.Writer) PickerOption {
	return func(p *Picker) {
		p.in = in
		p.out = out
	}
}

// WithMaxVisible sets how many candidates are listed at once
func WithMaxVisible(n int) PickerOption {
	return func(p *Picker) {
		if n > 0 {
			p.maxVisible = n
		}
	}
}

// Picker is an inline fuzzy chooser drawn below the cursor. It is used to
// pick a document when the command line does not name one.
type Picker struct {
	candidates []string
	matcher    *fuzzymatch.Matcher
	matches    []fuzzymatch.Match
	selected   int
	offset     int
	query      string
	maxVisible int
	width      int

	in  io.Reader
	out io.Writer

	selectColor *color.Color
}

// NewPicker creates a picker over candidates
func NewPicker(candidates []string, opts ...PickerOption) *Picker {
	p := &Picker{
		candidates:  candidates,
		matcher:     fuzzymatch.NewMatcher(false),
		maxVisible:  defaultMaxVisibleItems,
		width:       defaultWidth,
		selectColor: color.New(color.BgCyan, color.FgBlack),
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Pick runs the picker and returns the index of the chosen candidate. ok is
// false when the user cancels or nothing matches.
func (p *Picker) Pick() (int, bool, error) {
	if len(p.candidates) == 0 {
		return -1, false, nil
	}

	if p.in == nil {
		restore, err := p.openTTY()
		if err != nil {
			return -1, false, err
		}
		defer restore()
	}

	p.update()
	buf := make([]byte, 32)
	for {
		p.render()

		n, err := p.in.Read(buf)
		if n == 0 && err != nil {
			p.clear()
			if err == io.EOF {
				return -1, false, nil
			}
			return -1, false, err
		}

		done, chosen := p.handleInput(buf[:n])
		if done {
			p.clear()
			if !chosen || len(p.matches) == 0 {
				return -1, false, nil
			}
			return p.matches[p.selected].Row, true, nil
		}
	}
}

// openTTY puts /dev/tty in raw mode for the duration of the pick
func (p *Picker) openTTY() (func(), error) {
	tty, err := os.OpenFile("/dev/tty", os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to open /dev/tty: %w", err)
	}

	fd := int(tty.Fd())
	state, err := term.MakeRaw(fd)
	if err != nil {
		tty.Close() // nolint
		return nil, fmt.Errorf("failed to enter raw mode: %w", err)
	}
	if width, _, err := term.GetSize(fd); err == nil && width > 0 {
		p.width = width
	}

	p.in = tty
	p.out = tty
	return func() {
		_ = term.Restore(fd, state)
		_ = tty.Close()
	}, nil
}

// ============================================================================
// Filtering
// ============================================================================

func (p *Picker) update() {
	p.matches = p.matcher.FilterRows(p.query, p.candidates)
	if p.selected >= len(p.matches) {
		p.selected = 0
	}
	p.constrain()
}

// constrain keeps the selection inside the visible window
func (p *Picker) constrain() {
	count := len(p.matches)
	if count == 0 {
		p.selected, p.offset = 0, 0
		return
	}
	p.selected = clamp(p.selected, 0, count-1)

	visible := min(p.maxVisible, count)
	minOffset := max(p.selected-visible+1, 0)
	maxOffset := max(min(count-visible, p.selected), 0)
	p.offset = clamp(p.offset, minOffset, maxOffset)
}

func (p *Picker) move(step int) {
	p.selected += step
	p.constrain()
}

// ============================================================================
// Input
// ============================================================================

// handleInput processes one read of raw bytes. done is set when the picker
// should close; chosen tells a selection from a cancel.
func (p *Picker) handleInput(buf []byte) (done, chosen bool) {
	for i := 0; i < len(buf); i++ {
		ch := buf[i]

		if ch == esc {
			if i+2 < len(buf) && buf[i+1] == '[' {
				switch buf[i+2] {
				case 'A':
					p.move(-1)
				case 'B':
					p.move(1)
				}
				i += 2
				continue
			}
			return true, false
		}

		switch ch {
		case ctrlC:
			return true, false
		case enter:
			return true, true
		case del, bs:
			if p.query != "" {
				runes := []rune(p.query)
				p.query = string(runes[:len(runes)-1])
				p.update()
			}
		case ctrlU:
			p.query = ""
			p.update()
		case ctrlP, ctrlK:
			p.move(-1)
		case ctrlN, ctrlJ:
			p.move(1)
		default:
			if ch >= 32 && ch < 127 {
				p.query += string(ch)
				p.update()
			}
		}
	}
	return false, false
}

// ============================================================================
// Rendering
// ============================================================================

func (p *Picker) write(text string) {
	_, _ = io.WriteString(p.out, text)
}

// clear erases everything drawn below the prompt line
func (p *Picker) clear() {
	p.write("\r\x1b[J")
}

func (p *Picker) render() {
	p.clear()

	current := 0
	if len(p.matches) > 0 {
		current = p.selected + 1
	}
	prompt := fmt.Sprintf("[ %d/%d ] > %s", current, len(p.matches), p.query)
	p.write(prompt)

	visible := min(p.maxVisible, len(p.matches)-p.offset)
	for i := 0; i < visible; i++ {
		idx := p.offset + i
		p.write("\r\n")
		p.write(p.line(p.matches[idx], idx == p.selected))
	}

	// Park the cursor at the end of the query
	if visible > 0 {
		p.write(fmt.Sprintf("\x1b[%dA", visible))
	}
	p.write(fmt.Sprintf("\r\x1b[%dC", len([]rune(prompt))))
}

func (p *Picker) line(match fuzzymatch.Match, selected bool) string {
	text := match.Text
	if limit := p.width - 4; limit > 3 && len([]rune(text)) > limit {
		text = string([]rune(text)[:limit-1]) + "…"
		match.Indices = nil
	}
	match.Text = text

	if selected {
		return " > " + p.selectColor.Sprint(text)
	}
	if color.NoColor {
		return "   " + text
	}
	return "   " + fuzzymatch.Highlight(match, "\x1b[1m", "\x1b[22m")
}
