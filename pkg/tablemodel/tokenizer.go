package tablemodel

import (
	"sort"
	"strings"
	"unicode"
)

// ============================================================================
// Line Tokenizer
// ============================================================================

// Token is a field of a line with its byte offsets
type Token struct {
	Text  string `json:"text"`
	Start int    `json:"start"`
	End   int    `json:"end"`
}

// Cursor is the position of a line within a build: its index among non-blank
// lines, the current mode and how many header continuation lines came before it
type Cursor struct {
	Index      int
	Mode       Mode
	SubHeaders int
}

// Tokenizer splits and classifies raw text lines
type Tokenizer struct {
	vocab  *matcher
	window int
}

// NewTokenizer creates a tokenizer for the given configuration
func NewTokenizer(config Config) *Tokenizer {
	return &Tokenizer{
		vocab:  compileVocabulary(config.Vocabulary),
		window: config.DocumentInfoWindow,
	}
}

// TokenizeLine classifies a line and splits it into cells.
// Rules are evaluated in order and the first match wins.
func (t *Tokenizer) TokenizeLine(line string, at Cursor) TokenizedLine {
	trimmed := trimLine(line)
	if trimmed == "" {
		return TokenizedLine{Class: LineClass{Kind: LineNoise}}
	}

	switch {
	case at.Mode == ModeData:
		return t.dataLine(trimmed)
	case at.Index < t.window && t.vocab.isDocumentLine(trimmed):
		return TokenizedLine{Class: LineClass{Kind: LineDocumentInfo}, Cells: []string{trimmed}}
	case t.vocab.isMainHeaderLine(trimmed):
		return TokenizedLine{Class: LineClass{Kind: LineMainHeader}, Cells: t.headerLabels(trimmed)}
	case t.vocab.isDataLine(trimmed):
		return t.dataLine(trimmed)
	default:
		return TokenizedLine{
			Class: LineClass{Kind: LineSubHeader, SubHeader: at.SubHeaders + 1},
			Cells: t.headerLabels(trimmed),
		}
	}
}

// dataLine splits a data line; lines with too few fields become noise
func (t *Tokenizer) dataLine(trimmed string) TokenizedLine {
	cells := SplitDataFields(trimmed)
	if len(cells) < MinFieldsPerDataRow {
		return TokenizedLine{Class: LineClass{Kind: LineData}}
	}
	return TokenizedLine{Class: LineClass{Kind: LineData}, Cells: cells}
}

// SplitDataFields splits a data line on whitespace runs. Single-spaced lines
// fall back to a leading label followed by a numeric tail.
func SplitDataFields(line string) []string {
	fields := tokenTexts(tokenizeFields(line))
	if len(fields) < MinFieldsPerDataRow {
		fields = splitLabelTail(line)
	}

	cells := make([]string, 0, len(fields))
	for _, field := range fields {
		if isNumericLike(field) {
			field = stripSpaces(field)
		}
		if field = strings.TrimSpace(field); field != "" {
			cells = append(cells, field)
		}
	}
	return cells
}

// tokenizeFields splits a line on runs of MinSpacesForSeparation spaces or on
// any tab
func tokenizeFields(line string) []Token {
	var tokens []Token
	var current strings.Builder
	var start int
	inToken := false
	consecutiveSpaces := 0
	sawTab := false

	flush := func(end int) {
		tokens = append(tokens, Token{Text: current.String(), Start: start, End: end})
		current.Reset()
		inToken = false
	}

	for i, char := range line {
		if unicode.IsSpace(char) {
			consecutiveSpaces++
			if char == '\t' {
				sawTab = true
			}
			if inToken && (sawTab || consecutiveSpaces >= MinSpacesForSeparation) {
				flush(i - consecutiveSpaces)
			}
			continue
		}

		if !inToken {
			start = i
			inToken = true
		} else if consecutiveSpaces > 0 {
			// Single spaces stay inside the field
			for j := 0; j < consecutiveSpaces; j++ {
				current.WriteRune(' ')
			}
		}
		consecutiveSpaces = 0
		sawTab = false
		current.WriteRune(char)
	}

	if inToken {
		flush(len(line) - 1)
	}

	return tokens
}

// splitLabelTail treats the leading words up to the first numeric word as the
// label and every following word as its own field
func splitLabelTail(line string) []string {
	words := strings.Fields(line)
	for i, word := range words {
		if isNumericLike(word) && containsDigit(word) {
			if i == 0 {
				return words
			}
			fields := []string{strings.Join(words[:i], " ")}
			return append(fields, words[i:]...)
		}
	}
	return []string{strings.Join(words, " ")}
}

// headerLabels extracts header labels: vocabulary matches in position order,
// with the residue between them split like a data line
func (t *Tokenizer) headerLabels(line string) []string {
	type span struct{ start, end int }

	var spans []span
	for _, re := range t.vocab.headerLabels {
		for _, loc := range re.FindAllStringIndex(line, -1) {
			spans = append(spans, span{loc[0], loc[1]})
		}
	}

	// Earliest start wins; on ties the longer match wins
	sort.Slice(spans, func(i, j int) bool {
		if spans[i].start != spans[j].start {
			return spans[i].start < spans[j].start
		}
		return spans[i].end > spans[j].end
	})

	var labels []string
	addResidue := func(text string) {
		for _, tok := range tokenizeFields(text) {
			if s := strings.TrimSpace(tok.Text); s != "" {
				labels = append(labels, s)
			}
		}
	}

	pos := 0
	for _, s := range spans {
		if s.start < pos {
			continue
		}
		addResidue(line[pos:s.start])
		labels = append(labels, strings.TrimSpace(line[s.start:s.end]))
		pos = s.end
	}
	addResidue(line[pos:])

	return labels
}

// ============================================================================
// Helpers
// ============================================================================

func trimLine(line string) string {
	return strings.TrimSpace(line)
}

func tokenTexts(tokens []Token) []string {
	texts := make([]string, len(tokens))
	for i, tok := range tokens {
		texts[i] = tok.Text
	}
	return texts
}

// isNumericLike reports whether s consists only of digits, commas, periods,
// parentheses, hyphens and whitespace
func isNumericLike(s string) bool {
	if strings.TrimSpace(s) == "" {
		return false
	}
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
		case r == ',', r == '.', r == '(', r == ')', r == '-':
		case unicode.IsSpace(r):
		default:
			return false
		}
	}
	return true
}

func containsDigit(s string) bool {
	for _, r := range s {
		if r >= '0' && r <= '9' {
			return true
		}
	}
	return false
}

func stripSpaces(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}
