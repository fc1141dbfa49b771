package theme

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/fatih/color"
	"github.com/gdamore/tcell/v2"
)

// Color renders text for a terminal and maps to a tcell color
type Color struct {
	name  string
	attr  color.Attribute
	isRGB bool
	r     uint8
	g     uint8
	b     uint8
}

// Name returns the configured name of the color
func (c Color) Name() string {
	return c.name
}

// Sprint returns text wrapped in the color's escape sequence. Output follows
// fatih/color's NoColor switch, so piping to a file yields plain text.
func (c Color) Sprint(text string) string {
	if c.isRGB {
		if color.NoColor {
			return text
		}
		return fmt.Sprintf("\x1b[38;2;%d;%d;%dm%s\x1b[0m", c.r, c.g, c.b, text)
	}
	if c.attr == color.Reset {
		return text
	}
	return color.New(c.attr).Sprint(text)
}

// Tcell returns the color for a tcell screen
func (c Color) Tcell() tcell.Color {
	if c.isRGB {
		return tcell.NewRGBColor(int32(c.r), int32(c.g), int32(c.b))
	}
	if tc, ok := tcellColors[c.attr]; ok {
		return tc
	}
	return tcell.ColorDefault
}

var rgbRegex = regexp.MustCompile(`^#([a-fA-F0-9]{2})([a-fA-F0-9]{2})([a-fA-F0-9]{2})$`)

var (
	colorCache = make(map[string]Color, 32)
	colorMutex sync.RWMutex
)

var namedColors = map[string]color.Attribute{
	"black":   color.FgBlack,
	"red":     color.FgRed,
	"green":   color.FgGreen,
	"yellow":  color.FgYellow,
	"blue":    color.FgBlue,
	"magenta": color.FgMagenta,
	"cyan":    color.FgCyan,
	"white":   color.FgWhite,
	"gray":    color.FgHiBlack,
	"grey":    color.FgHiBlack,
	"default": color.Reset,
}

var tcellColors = map[color.Attribute]tcell.Color{
	color.FgBlack:   tcell.ColorBlack,
	color.FgRed:     tcell.ColorRed,
	color.FgGreen:   tcell.ColorGreen,
	color.FgYellow:  tcell.ColorYellow,
	color.FgBlue:    tcell.ColorBlue,
	color.FgMagenta: tcell.ColorFuchsia,
	color.FgCyan:    tcell.ColorAqua,
	color.FgWhite:   tcell.ColorWhite,
	color.FgHiBlack: tcell.ColorGray,
	color.Reset:     tcell.ColorDefault,
}

// ParseColor parses a color name or a #rrggbb value
func ParseColor(name string) (Color, error) {
	colorMutex.RLock()
	if cached, exists := colorCache[name]; exists {
		colorMutex.RUnlock()
		return cached, nil
	}
	colorMutex.RUnlock()

	var result Color
	if m := rgbRegex.FindStringSubmatch(name); m != nil {
		r, _ := strconv.ParseUint(m[1], 16, 8)
		g, _ := strconv.ParseUint(m[2], 16, 8)
		b, _ := strconv.ParseUint(m[3], 16, 8)
		result = Color{name: name, isRGB: true, r: uint8(r), g: uint8(g), b: uint8(b)}
	} else if attr, ok := namedColors[strings.ToLower(name)]; ok {
		result = Color{name: name, attr: attr}
	} else {
		return Color{}, fmt.Errorf("unknown color: %q", name)
	}

	colorMutex.Lock()
	colorCache[name] = result
	colorMutex.Unlock()

	return result, nil
}

// MustColor parses a color known at compile time
func MustColor(name string) Color {
	c, err := ParseColor(name)
	if err != nil {
		panic(err)
	}
	return c
}
