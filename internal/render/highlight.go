package render

import (
	"fmt"
	"io"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/fatih/color"
)

const defaultStyleName = "monokai"

// HighlightJSON writes JSON with terminal syntax colors. When colors are
// disabled the text is written unchanged.
func HighlightJSON(w io.Writer, data []byte, styleName string) error {
	if color.NoColor {
		_, err := w.Write(data)
		return err
	}

	lexer := lexers.Get("json")
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	if styleName == "" {
		styleName = defaultStyleName
	}
	style := styles.Get(styleName)

	formatter := formatters.Get("terminal256")
	if formatter == nil {
		formatter = formatters.Fallback
	}

	iterator, err := lexer.Tokenise(nil, string(data))
	if err != nil {
		return fmt.Errorf("failed to tokenize JSON: %w", err)
	}
	if err := formatter.Format(w, style, iterator); err != nil {
		return fmt.Errorf("failed to format JSON: %w", err)
	}
	return nil
}
