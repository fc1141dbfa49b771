package render

import (
	"fmt"
	"html"
	"io"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/viyanta/viyanta-web-sub000/pkg/tablemodel"
)

// Format selects how a boxed table is drawn
type Format string

const (
	FormatBox  Format = "box"
	FormatHTML Format = "html"
)

// Boxed writes the model as a bordered table. Cell text is truncated the
// same way as the plain renderer, without colors.
func (r *Renderer) Boxed(w io.Writer, model tablemodel.TableModel, format Format) error {
	if model.ColumnCount() == 0 {
		_, err := fmt.Fprintln(w, model.Summary())
		return err
	}

	table := newTable(w, model.Columns, format)

	headers := model.Labels()
	if format == FormatHTML {
		for i, h := range headers {
			headers[i] = html.EscapeString(h)
		}
	}
	table.Header(headers)

	widths := r.ColumnWidths(model)
	for _, row := range model.Rows {
		cells := make([]string, len(model.Columns))
		attrs := tablemodel.RowAttributes(model.Columns, row)
		for i := range cells {
			if i >= len(row.Cells) {
				continue
			}
			text := r.fit(CellText(row.Cells[i]), widths[i], row.Cells[i].Expanded)
			if format == FormatHTML {
				text = fmt.Sprintf(`<span class="tl-%s">%s</span>`, attrs[i].Kind, html.EscapeString(text))
			}
			cells[i] = text
		}
		if err := table.Append(cells); err != nil {
			return fmt.Errorf("append row: %w", err)
		}
	}

	if r.summary {
		table.Caption(tw.Caption{Text: model.Summary()})
	}

	return table.Render()
}

func newTable(w io.Writer, columns []tablemodel.ColumnSpec, format Format) *tablewriter.Table {
	if format == FormatHTML {
		cfg := renderer.HTMLConfig{
			TableClass:    "tl-table",
			HeaderClass:   "tl-header",
			EscapeContent: false,
		}
		return tablewriter.NewTable(w, tablewriter.WithRenderer(renderer.NewHTML(cfg)))
	}

	aligns := make([]tw.Align, len(columns))
	for i, c := range columns {
		aligns[i] = alignOf(c.Alignment)
	}

	return tablewriter.NewTable(w,
		tablewriter.WithConfig(tablewriter.Config{
			Row: tw.CellConfig{
				Alignment: tw.CellAlignment{PerColumn: aligns},
			},
		}),
		tablewriter.WithHeaderAlignment(tw.AlignCenter),
		tablewriter.WithRendition(tw.Rendition{
			Borders: tw.Border{Left: tw.On, Right: tw.On, Top: tw.On, Bottom: tw.On},
			Settings: tw.Settings{
				Separators: tw.Separators{BetweenColumns: tw.On},
			},
		}),
	)
}

func alignOf(a tablemodel.Alignment) tw.Align {
	switch a {
	case tablemodel.AlignLeft:
		return tw.AlignLeft
	case tablemodel.AlignCenter:
		return tw.AlignCenter
	default:
		return tw.AlignRight
	}
}
