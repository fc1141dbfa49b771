package source

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/viyanta/viyanta-web-sub000/internal/collab"
	"github.com/viyanta/viyanta-web-sub000/pkg/tablemodel"
	"github.com/viyanta/viyanta-web-sub000/pkg/textclean"
)

// Prepare turns a payload into an engine input. JSON objects and arrays are
// decoded; anything else is cleaned and passed on as raw text.
func Prepare(data []byte) any {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[') {
		if in := tablemodel.DecodeInput(trimmed); in != nil {
			if _, isText := in.(string); !isText {
				return in
			}
		}
	}
	return textclean.Clean(string(data))
}

// FromDocument prepares a fetched collaborator payload
func FromDocument(doc collab.Document) any {
	return Prepare(doc.Body)
}

// ReadFile reads an engine input from a local file. PDF and XLSX files are
// converted to text lines and rows; other files go through Prepare.
func ReadFile(path string) (any, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		pages, err := ReadPDF(path)
		if err != nil {
			return nil, err
		}
		return textclean.Clean(strings.Join(pages, "\n")), nil
	case ".xlsx", ".xlsm":
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open %q: %w", path, err)
		}
		defer f.Close()
		return ReadWorkbook(f, "")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %q: %w", path, err)
	}
	return Prepare(data), nil
}

// Read reads an engine input from r
func Read(r io.Reader) (any, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}
	return Prepare(data), nil
}
