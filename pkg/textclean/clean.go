package textclean

import (
	"strings"
	"unicode"

	"github.com/leaanthony/go-ansi-parser"
	"golang.org/x/text/unicode/norm"
)

// Cleaner sanitizes raw extraction output before tokenization: terminal
// escape sequences are dropped, compatibility characters are folded and
// page breaks become line breaks
type Cleaner struct {
	stripANSI bool
	form      norm.Form
}

// Option configures a Cleaner
type Option func(*Cleaner)

// WithANSI enables/disables escape sequence removal
func WithANSI(enabled bool) Option {
	return func(c *Cleaner) {
		c.stripANSI = enabled
	}
}

// WithForm sets the Unicode normalization form
func WithForm(form norm.Form) Option {
	return func(c *Cleaner) {
		c.form = form
	}
}

// New creates a Cleaner that strips escapes and applies NFKC
func New(opts ...Option) *Cleaner {
	c := &Cleaner{stripANSI: true, form: norm.NFKC}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Clean returns the sanitized text with "\n" line endings
func (c *Cleaner) Clean(text string) string {
	return strings.Join(c.Lines(text), "\n")
}

// Lines returns the sanitized lines of text
func (c *Cleaner) Lines(text string) []string {
	text = strings.NewReplacer("\r\n", "\n", "\r", "\n", "\f", "\n").Replace(text)
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = c.cleanLine(line)
	}
	return lines
}

func (c *Cleaner) cleanLine(line string) string {
	if c.stripANSI && strings.ContainsRune(line, '\x1b') {
		line = plainText(line)
	}
	line = c.form.String(line)

	line = strings.Map(func(r rune) rune {
		switch {
		case r == '\t':
			return r
		case unicode.Is(unicode.Cf, r):
			// zero-width and bidi marks
			return -1
		case unicode.IsSpace(r):
			return ' '
		case unicode.IsControl(r):
			return -1
		}
		return r
	}, line)

	return strings.TrimRightFunc(line, unicode.IsSpace)
}

// plainText keeps only the text of a line with escape sequences
func plainText(line string) string {
	elements, err := ansi.Parse(line)
	if err != nil {
		return line
	}

	var b strings.Builder
	for _, element := range elements {
		b.WriteString(element.Label)
	}
	return b.String()
}

// Clean sanitizes text with the default Cleaner
func Clean(text string) string {
	return New().Clean(text)
}
