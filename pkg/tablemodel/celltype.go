package tablemodel

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	urlPattern   = regexp.MustCompile(`(?i)^https?://`)
	phonePattern = regexp.MustCompile(`^\+?[\d\s\-()]+$`)
)

// dateLayouts are the layouts a hyphenated string may parse as
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"02-01-2006",
	"2-1-2006",
	"01-02-2006",
	"02-Jan-2006",
	"2-Jan-2006",
	"02-Jan-06",
	"Jan-02-2006",
	"2006-Jan-02",
}

// Typer infers cell types and display values
type Typer struct {
	printer *message.Printer
}

// NewTyper creates a typer that groups numbers for the given locale
func NewTyper(locale language.Tag) *Typer {
	return &Typer{printer: message.NewPrinter(locale)}
}

// Type infers the type of raw. The result depends only on raw and expanded.
func (t *Typer) Type(raw any, expanded bool) Cell {
	cell := Cell{Raw: raw}

	v := reflect.ValueOf(raw)
	for v.IsValid() && (v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface) {
		if v.IsNil() {
			v = reflect.Value{}
			break
		}
		v = v.Elem()
	}

	if !v.IsValid() {
		cell.Type = TypeNull
		return cell
	}

	switch val := v.Interface().(type) {
	case json.Number:
		t.typeJSONNumber(&cell, val)
		return cell
	case time.Time:
		cell.Type = TypeDate
		cell.Display = val.Format("2006-01-02")
		return cell
	}

	switch v.Kind() {
	case reflect.Slice, reflect.Array:
		t.typeArray(&cell, v, expanded)
	case reflect.Map, reflect.Struct:
		t.typeObject(&cell, v, expanded)
	case reflect.Bool:
		cell.Type = TypeBoolean
		cell.Display = FalseLabel
		if v.Bool() {
			cell.Display = TrueLabel
		}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		cell.Type = TypeNumber
		cell.Display = t.printer.Sprintf("%d", v.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		cell.Type = TypeNumber
		cell.Display = t.printer.Sprintf("%d", v.Uint())
	case reflect.Float32, reflect.Float64:
		cell.Type = TypeNumber
		cell.Display = t.formatFloat(v.Float())
	case reflect.String:
		t.typeString(&cell, v.String(), expanded)
	default:
		cell.Type = TypeShortText
		cell.Display = fmt.Sprint(v.Interface())
	}

	return cell
}

func (t *Typer) typeJSONNumber(cell *Cell, n json.Number) {
	cell.Type = TypeNumber
	if i, err := n.Int64(); err == nil {
		cell.Display = t.printer.Sprintf("%d", i)
		return
	}
	if f, err := n.Float64(); err == nil {
		cell.Display = t.formatFloat(f)
		return
	}
	cell.Display = n.String()
}

func (t *Typer) formatFloat(f float64) string {
	switch {
	case math.IsNaN(f) || math.IsInf(f, 0):
		return fmt.Sprint(f)
	case f == math.Trunc(f) && math.Abs(f) < 1e18:
		return t.printer.Sprintf("%d", int64(f))
	default:
		return t.printer.Sprint(number.Decimal(f, number.MaxFractionDigits(3)))
	}
}

// typeArray shows MaxCollapsedArrayItems items and a marker while collapsed
func (t *Typer) typeArray(cell *Cell, v reflect.Value, expanded bool) {
	cell.Type = TypeArray

	n := v.Len()
	items := make([]string, 0, n)
	for i := 0; i < n; i++ {
		items = append(items, t.itemDisplay(v.Index(i).Interface()))
	}

	cell.Long = n > MaxCollapsedArrayItems
	cell.Expanded = expanded && cell.Long
	if cell.Long && !expanded {
		cell.More = n - MaxCollapsedArrayItems
		cell.MoreMarker = fmt.Sprintf("%s and %d more", Ellipsis, cell.More)
		items = items[:MaxCollapsedArrayItems]
	}

	cell.Items = items
	cell.Display = strings.Join(items, ", ")
	if cell.MoreMarker != "" {
		cell.Display += " " + cell.MoreMarker
	}
}

// itemDisplay renders one array element on a single line
func (t *Typer) itemDisplay(item any) string {
	inner := t.Type(item, true)
	switch inner.Type {
	case TypeArray:
		return "[" + strings.Join(inner.Items, ", ") + "]"
	case TypeNull:
		return "null"
	default:
		return inner.Display
	}
}

// typeObject serializes the object as JSON; long objects are cut while collapsed
func (t *Typer) typeObject(cell *Cell, v reflect.Value, expanded bool) {
	cell.Type = TypeObject

	serialized := ""
	if data, err := json.Marshal(v.Interface()); err == nil {
		serialized = string(data)
	} else {
		serialized = fmt.Sprintf("%v", v.Interface())
	}

	cell.Long = utf8.RuneCountInString(serialized) > MaxCollapsedObjectChars
	cell.Expanded = expanded && cell.Long
	cell.Display = serialized
	if cell.Long && !expanded {
		cell.Display = truncateRunes(serialized, MaxCollapsedObjectChars) + Ellipsis
	}
}

// typeString sub-types a string by pattern, first match wins
func (t *Typer) typeString(cell *Cell, s string, expanded bool) {
	trimmed := strings.TrimSpace(s)
	cell.NegativeParenthesized = isNumericLike(trimmed) && containsDigit(trimmed) && strings.Contains(trimmed, "(")
	cell.Display = trimmed

	switch {
	case emailPattern.MatchString(trimmed):
		cell.Type = TypeEmail
	case urlPattern.MatchString(trimmed):
		cell.Type = TypeURL
	case isPhone(trimmed):
		cell.Type = TypePhone
	case isDate(trimmed):
		cell.Type = TypeDate
	case utf8.RuneCountInString(s) > MaxCollapsedTextChars:
		cell.Type = TypeLongText
		cell.Long = true
		cell.Expanded = expanded
		cell.Display = s
		if !expanded {
			cell.Display = truncateRunes(s, MaxCollapsedTextChars) + Ellipsis
		}
	default:
		cell.Type = TypeShortText
	}
}

// isPhone requires MinPhoneDigits digits unless the number has a '+' prefix,
// so dates and grouped amounts are not mistaken for phone numbers
func isPhone(s string) bool {
	if len(s) <= MinPhoneLength || !phonePattern.MatchString(s) {
		return false
	}
	if strings.HasPrefix(s, "+") {
		return true
	}
	digits := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			digits++
		}
	}
	return digits >= MinPhoneDigits
}

// isDate reports whether s contains a hyphen and parses as a date
func isDate(s string) bool {
	if !strings.Contains(s, "-") {
		return false
	}
	for _, layout := range dateLayouts {
		if _, err := time.Parse(layout, s); err == nil {
			return true
		}
	}
	return false
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}
