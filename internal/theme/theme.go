package theme

import (
	"fmt"

	"github.com/viyanta/viyanta-web-sub000/pkg/tablemodel"
)

// Names is the configurable form of a Theme
type Names struct {
	Negative     string `toml:"negative"`
	Total        string `toml:"total"`
	Header       string `toml:"header"`
	Link         string `toml:"link"`
	Muted        string `toml:"muted"`
	SelectionFg  string `toml:"selection_foreground"`
	SelectionBg  string `toml:"selection_background"`
	DocumentInfo string `toml:"document_info"`
}

// DefaultNames returns the default color names
func DefaultNames() Names {
	return Names{
		Negative:     "red",
		Total:        "yellow",
		Header:       "cyan",
		Link:         "blue",
		Muted:        "gray",
		SelectionFg:  "black",
		SelectionBg:  "cyan",
		DocumentInfo: "green",
	}
}

// Theme maps semantic cell kinds to colors
type Theme struct {
	Negative     Color
	Total        Color
	Header       Color
	Link         Color
	Muted        Color
	SelectionFg  Color
	SelectionBg  Color
	DocumentInfo Color
	Plain        Color
}

// New parses every configured color
func New(names Names) (Theme, error) {
	t := Theme{Plain: MustColor("default")}
	fields := []struct {
		key  string
		name string
		dst  *Color
	}{
		{"negative", names.Negative, &t.Negative},
		{"total", names.Total, &t.Total},
		{"header", names.Header, &t.Header},
		{"link", names.Link, &t.Link},
		{"muted", names.Muted, &t.Muted},
		{"selection_foreground", names.SelectionFg, &t.SelectionFg},
		{"selection_background", names.SelectionBg, &t.SelectionBg},
		{"document_info", names.DocumentInfo, &t.DocumentInfo},
	}

	for _, f := range fields {
		c, err := ParseColor(f.name)
		if err != nil {
			return Theme{}, fmt.Errorf("colors.%s: %w", f.key, err)
		}
		*f.dst = c
	}
	return t, nil
}

// Default returns the default theme
func Default() Theme {
	t, err := New(DefaultNames())
	if err != nil {
		panic(err)
	}
	return t
}

// ForKind returns the color of a semantic cell kind
func (t Theme) ForKind(kind tablemodel.SemanticKind) Color {
	switch kind {
	case tablemodel.KindNegative:
		return t.Negative
	case tablemodel.KindTotal:
		return t.Total
	case tablemodel.KindLink, tablemodel.KindEmail:
		return t.Link
	case tablemodel.KindNull, tablemodel.KindStructured:
		return t.Muted
	default:
		return t.Plain
	}
}
