package theme

import (
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/gdamore/tcell/v2"

	"github.com/viyanta/viyanta-web-sub000/pkg/tablemodel"
)

func TestParseColor_Named(t *testing.T) {
	previous := color.NoColor
	color.NoColor = false
	defer func() { color.NoColor = previous }()

	c, err := ParseColor("green")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	want := color.New(color.FgGreen).Sprint("foo")
	if got := c.Sprint("foo"); got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
	if c.Tcell() != tcell.ColorGreen {
		t.Errorf("Expected tcell green, got %v", c.Tcell())
	}
}

func TestParseColor_RGB(t *testing.T) {
	previous := color.NoColor
	color.NoColor = false
	defer func() { color.NoColor = previous }()

	c, err := ParseColor("#1b1cbf")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if got := c.Sprint("foo"); !strings.Contains(got, "27;28;191") {
		t.Errorf("Expected RGB color with 27;28;191, got %q", got)
	}
	if c.Tcell() != tcell.NewRGBColor(27, 28, 191) {
		t.Errorf("Unexpected tcell color %v", c.Tcell())
	}
}

func TestParseColor_Invalid(t *testing.T) {
	for _, name := range []string{"#1b1cbj", "wat", ""} {
		if _, err := ParseColor(name); err == nil {
			t.Errorf("Expected error for %q", name)
		}
	}
}

func TestColor_NoColorIsPlain(t *testing.T) {
	previous := color.NoColor
	color.NoColor = true
	defer func() { color.NoColor = previous }()

	if got := MustColor("#ff0000").Sprint("x"); got != "x" {
		t.Errorf("Expected plain text, got %q", got)
	}
	if got := MustColor("red").Sprint("x"); got != "x" {
		t.Errorf("Expected plain text, got %q", got)
	}
}

func TestTheme_New(t *testing.T) {
	names := DefaultNames()
	names.Total = "nope"
	if _, err := New(names); err == nil || !strings.Contains(err.Error(), "colors.total") {
		t.Errorf("Expected error naming the key, got %v", err)
	}

	th := Default()
	if th.ForKind(tablemodel.KindNegative).Name() != "red" {
		t.Errorf("Expected red negatives, got %q", th.ForKind(tablemodel.KindNegative).Name())
	}
	if th.ForKind(tablemodel.KindText).Name() != "default" {
		t.Errorf("Expected plain text, got %q", th.ForKind(tablemodel.KindText).Name())
	}
}
