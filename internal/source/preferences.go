package source

import (
	"strings"

	"github.com/viyanta/viyanta-web-sub000/internal/collab"
)

// Preferences is the set of form identifiers a user has enabled. Disabled
// forms are never handed to the engine.
type Preferences struct {
	forms map[string]bool
}

// NewPreferences creates preferences from enabled form identifiers. An empty
// list enables every form.
func NewPreferences(forms []string) Preferences {
	p := Preferences{}
	for _, f := range forms {
		key := formKey(f)
		if key == "" {
			continue
		}
		if p.forms == nil {
			p.forms = make(map[string]bool, len(forms))
		}
		p.forms[key] = true
	}
	return p
}

// Enabled reports whether a form is enabled
func (p Preferences) Enabled(form string) bool {
	if len(p.forms) == 0 {
		return true
	}
	return p.forms[formKey(form)]
}

// FilterFiles drops disabled splits and files left without any split
func (p Preferences) FilterFiles(files []collab.File) []collab.File {
	out := make([]collab.File, 0, len(files))
	for _, f := range files {
		splits := make([]collab.Split, 0, len(f.Splits))
		for _, s := range f.Splits {
			if p.Enabled(s.Form) {
				splits = append(splits, s)
			}
		}
		if len(splits) == 0 {
			continue
		}
		f.Splits = splits
		out = append(out, f)
	}
	return out
}

// formKey normalizes "Form L-1", "l-1" and "L 1" to the same key
func formKey(form string) string {
	key := strings.ToLower(strings.TrimSpace(form))
	key = strings.TrimPrefix(key, "form")
	key = strings.NewReplacer(" ", "", "-", "", "_", "").Replace(key)
	return key
}
