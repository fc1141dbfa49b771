package internal

import (
	"fmt"
	"strings"
)

// Jump labels are drawn over the visible rows while in jump mode. Typing a
// label moves the cursor to its row.
var builtinAlphabets = []struct {
	name    string
	letters string
}{
	{"numeric", "1234567890"},
	{"qwerty", "asdfqwerzxcvjklmiuopghtybn"},
	{"qwerty-homerow", "asdfjklgh"},
	{"azerty", "qsdfazerwxcvjklmuiopghtybn"},
	{"qwertz", "asdfqweryxcvjkluiopmghtzbn"},
	{"dvorak", "aoeuqjkxpyhtnsgcrlmwvzfidb"},
	{"colemak", "arstqwfpzxcvneioluymdhgjbk"},
}

// Alphabet generates jump labels from a set of letters
type Alphabet struct {
	letters []string
}

// NewAlphabet creates an alphabet from the given letters
func NewAlphabet(letters string) *Alphabet {
	return &Alphabet{letters: strings.Split(letters, "")}
}

// NewBuiltinAlphabet looks up a keyboard layout by name
func NewBuiltinAlphabet(name string) (*Alphabet, error) {
	for _, alphabet := range builtinAlphabets {
		if alphabet.name == name {
			return NewAlphabet(alphabet.letters), nil
		}
	}
	return nil, fmt.Errorf("unknown alphabet: %s", name)
}

// Labels returns up to n distinct labels. No label is a prefix of another,
// so a label is selected as soon as it is fully typed. The trailing letters
// become prefixes of two-letter labels; the rest stay single keystrokes.
func (a *Alphabet) Labels(n int) []string {
	size := len(a.letters)
	if n <= 0 || size == 0 {
		return nil
	}
	if n <= size || size == 1 {
		return append([]string(nil), a.letters[:min(n, size)]...)
	}

	// Each prefix letter trades one label for size labels
	prefixes := min((n-size+size-2)/(size-1), size)
	singles := size - prefixes

	labels := append(make([]string, 0, n), a.letters[:singles]...)
	for _, prefix := range a.letters[singles:] {
		for _, letter := range a.letters {
			if len(labels) == n {
				return labels
			}
			labels = append(labels, prefix+letter)
		}
	}
	return labels
}
