package fuzzymatch

import (
	"sort"
	"strings"
	"unicode"
)

// Match is a row that matched a query
type Match struct {
	Row     int
	Text    string
	Score   int
	Indices []int // rune positions of matched characters
}

// Matcher scores rows of text against a subsequence query
type Matcher struct {
	caseSensitive bool
}

// NewMatcher creates a new matcher
func NewMatcher(caseSensitive bool) *Matcher {
	return &Matcher{caseSensitive: caseSensitive}
}

// FilterRows returns the rows matching query, best first. Equal scores keep
// row order. An empty query matches every row.
func (m *Matcher) FilterRows(query string, rows []string) []Match {
	matches := make([]Match, 0, len(rows))
	for i, text := range rows {
		if match, ok := m.Score(query, text); ok {
			match.Row = i
			matches = append(matches, match)
		}
	}

	if query != "" {
		sort.SliceStable(matches, func(i, j int) bool {
			return matches[i].Score > matches[j].Score
		})
	}
	return matches
}

// Score matches query as a subsequence of text
func (m *Matcher) Score(query, text string) (Match, bool) {
	match := Match{Text: text, Indices: []int{}}
	if query == "" {
		return match, true
	}

	q := []rune(query)
	original := []rune(text)
	candidate := original
	if !m.caseSensitive {
		q = []rune(strings.ToLower(query))
		candidate = []rune(strings.ToLower(text))
	}

	qi := 0
	for i, r := range candidate {
		if qi >= len(q) {
			break
		}
		if r != q[qi] {
			continue
		}

		switch {
		case qi == 0 && i == 0:
			match.Score += 100
		case qi == 0:
			match.Score += 50
		case match.Indices[len(match.Indices)-1] == i-1:
			match.Score += 50
		default:
			match.Score += 20
		}
		match.Score += boundaryBonus(original, i)

		match.Indices = append(match.Indices, i)
		qi++
	}

	if qi < len(q) {
		return Match{}, false
	}

	// Shorter rows rank higher
	match.Score += (1000 - len(candidate)) / 10
	return match, true
}

// boundaryBonus rewards matches at the start of a word or cell
func boundaryBonus(runes []rune, i int) int {
	if i == 0 {
		return 10
	}
	if i >= len(runes) {
		return 0
	}
	prev := runes[i-1]
	switch {
	case unicode.IsSpace(prev) || prev == '|' || prev == '-' || prev == '(':
		return 15
	case unicode.IsLower(prev) && unicode.IsUpper(runes[i]):
		return 10
	}
	return 0
}

// Highlight wraps matched runs of text in start and end tags
func Highlight(match Match, start, end string) string {
	if len(match.Indices) == 0 {
		return match.Text
	}

	matched := make(map[int]bool, len(match.Indices))
	for _, i := range match.Indices {
		matched[i] = true
	}

	var b strings.Builder
	open := false
	for i, r := range []rune(match.Text) {
		if matched[i] != open {
			if open {
				b.WriteString(end)
			} else {
				b.WriteString(start)
			}
			open = !open
		}
		b.WriteRune(r)
	}
	if open {
		b.WriteString(end)
	}
	return b.String()
}
