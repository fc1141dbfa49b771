package source

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/viyanta/viyanta-web-sub000/pkg/tablemodel"
)

// ReadWorkbook reads the rows of one sheet as pre-tokenized rows. An empty
// sheet name selects the first sheet. The first non-empty row becomes the
// header row.
func ReadWorkbook(r io.Reader, sheet string) (any, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("workbook has no sheets")
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}

	for len(rows) > 0 && blankRow(rows[0]) {
		rows = rows[1:]
	}
	if len(rows) == 0 {
		return [][]string{}, nil
	}

	data := make([]any, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if blankRow(row) {
			continue
		}
		data = append(data, row)
	}
	return tablemodel.TokenizedInput{Headers: rows[0], Rows: data}, nil
}

func blankRow(row []string) bool {
	for _, cell := range row {
		if cell != "" {
			return false
		}
	}
	return true
}
