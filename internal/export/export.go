package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"

	"github.com/viyanta/viyanta-web-sub000/pkg/tablemodel"
)

// Format is an export file format
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	FormatJSON Format = "json"
)

// ParseFormat parses a format name
func ParseFormat(name string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimPrefix(name, "."))); f {
	case FormatCSV, FormatXLSX, FormatJSON:
		return f, nil
	}
	return "", fmt.Errorf("unknown export format %q", name)
}

// FormatForPath picks the format from a file extension
func FormatForPath(path string) (Format, error) {
	ext := filepath.Ext(path)
	if ext == "" {
		return "", fmt.Errorf("cannot infer export format from %q", path)
	}
	return ParseFormat(ext)
}

// Options configures an export
type Options struct {
	// IncludeInfo writes document metadata above the table
	IncludeInfo bool
	// Sheet is the worksheet name for XLSX output
	Sheet string
}

// Write exports the model in the given format
func Write(w io.Writer, model tablemodel.TableModel, format Format, opts Options) error {
	switch format {
	case FormatCSV:
		return WriteCSV(w, model, opts)
	case FormatXLSX:
		return WriteXLSX(w, model, opts)
	case FormatJSON:
		return WriteJSON(w, model)
	}
	return fmt.Errorf("unknown export format %q", format)
}

// WriteToFile exports the model to path, inferring the format from its extension
func WriteToFile(path string, model tablemodel.TableModel, opts Options) error {
	format, err := FormatForPath(path)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file %q: %w", path, err)
	}
	if err := Write(f, model, format, opts); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// WriteCSV writes the model as CSV. Metadata rows are prefixed with '#'.
func WriteCSV(w io.Writer, model tablemodel.TableModel, opts Options) error {
	writer := csv.NewWriter(w)

	if opts.IncludeInfo {
		for _, line := range model.DocumentInfo {
			if err := writer.Write([]string{"# " + line}); err != nil {
				return fmt.Errorf("failed to write CSV metadata: %w", err)
			}
		}
	}

	if err := writer.Write(model.Labels()); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, row := range model.Rows {
		record := make([]string, len(model.Columns))
		for i := range record {
			if i < len(row.Cells) {
				record[i] = Text(row.Cells[i])
			}
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// WriteJSON writes the model as indented JSON
func WriteJSON(w io.Writer, model tablemodel.TableModel) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(model); err != nil {
		return fmt.Errorf("failed to encode table: %w", err)
	}
	return nil
}

// Text returns the full text of a cell, ignoring collapse truncation
func Text(cell tablemodel.Cell) string {
	if cell.Edited {
		return cell.Display
	}
	switch raw := cell.Raw.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(raw)
	case json.Number:
		return raw.String()
	}
	switch cell.Type {
	case tablemodel.TypeArray, tablemodel.TypeObject:
		if b, err := json.Marshal(cell.Raw); err == nil {
			return string(b)
		}
	case tablemodel.TypeNumber:
		if f, ok := Number(cell); ok {
			return strconv.FormatFloat(f, 'f', -1, 64)
		}
	}
	return cell.Display
}

// Number returns the numeric value of a cell. Grouped and parenthesized
// amounts such as "(1,234.50)" are read as negative numbers.
func Number(cell tablemodel.Cell) (float64, bool) {
	if cell.Edited {
		return ParseAmount(cell.Display)
	}

	switch raw := cell.Raw.(type) {
	case json.Number:
		f, err := raw.Float64()
		return f, err == nil
	case string:
		return ParseAmount(raw)
	}

	v := reflect.ValueOf(cell.Raw)
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(v.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(v.Uint()), true
	case reflect.Float32, reflect.Float64:
		return v.Float(), true
	}
	return 0, false
}

// ParseAmount parses a financial amount string
func ParseAmount(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = strings.TrimSpace(s[1 : len(s)-1])
	}
	s = strings.NewReplacer(",", "", " ", "").Replace(s)
	if s == "" || s == "-" {
		return 0, false
	}
	for _, r := range s {
		if (r < '0' || r > '9') && r != '.' && r != '-' && r != '+' {
			return 0, false
		}
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	if negative {
		f = -f
	}
	return f, true
}
