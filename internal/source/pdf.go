package source

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
)

// ErrNoText is returned when a PDF has no extractable text layer
var ErrNoText = errors.New("no text layer")

// ReadPDF returns the text of each page. Words separated by a visible gap
// are joined with two spaces so the tokenizer sees column boundaries.
func ReadPDF(path string) (pages []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("PDF reader crashed on %q: %v", path, r)
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %q: %w", path, err)
	}
	defer f.Close()

	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		rows, err := page.GetTextByRow()
		if err != nil {
			continue
		}

		lines := make([]string, 0, len(rows))
		for _, row := range rows {
			if line := joinWords(row.Content); line != "" {
				lines = append(lines, line)
			}
		}
		pages = append(pages, strings.Join(lines, "\n"))
	}

	if strings.TrimSpace(strings.Join(pages, "")) == "" {
		return nil, fmt.Errorf("%q: %w", path, ErrNoText)
	}
	return pages, nil
}

// joinWords rebuilds a line from positioned text runs. Runs read by row
// may carry no width or font size, so both are estimated from the text.
func joinWords(words []pdf.Text) string {
	var b strings.Builder
	for i, w := range words {
		if i > 0 {
			prev := words[i-1]
			char := charWidth(prev)
			end := prev.X + prev.W
			if prev.W <= 0 {
				end = prev.X + float64(utf8.RuneCountInString(prev.S))*char
			}
			if w.X-end > 2*char {
				b.WriteString("  ")
			} else {
				b.WriteByte(' ')
			}
		}
		b.WriteString(strings.TrimSpace(w.S))
	}
	return strings.TrimSpace(b.String())
}

func charWidth(t pdf.Text) float64 {
	if t.FontSize > 0 {
		return t.FontSize * 0.5
	}
	return 5
}
