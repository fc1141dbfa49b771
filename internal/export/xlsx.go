package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/viyanta/viyanta-web-sub000/pkg/tablemodel"
)

const defaultSheet = "Sheet1"

// WriteXLSX writes the model as a single-sheet workbook. Numeric cells are
// written as numbers; group labels are merged across their columns.
func WriteXLSX(w io.Writer, model tablemodel.TableModel, opts Options) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := defaultSheet
	if opts.Sheet != "" && opts.Sheet != defaultSheet {
		if err := f.SetSheetName(defaultSheet, opts.Sheet); err != nil {
			return fmt.Errorf("failed to name sheet %q: %w", opts.Sheet, err)
		}
		sheet = opts.Sheet
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	row := 1
	if opts.IncludeInfo {
		for _, line := range model.DocumentInfo {
			if err := setCell(f, sheet, 1, row, line); err != nil {
				return err
			}
			row++
		}
		if len(model.DocumentInfo) > 0 {
			row++
		}
	}

	if len(model.Groups) > 0 {
		for _, g := range model.Groups {
			if err := setCell(f, sheet, g.Start+1, row, g.Label); err != nil {
				return err
			}
			if g.Span > 1 {
				top, _ := excelize.CoordinatesToCellName(g.Start+1, row)
				bottom, _ := excelize.CoordinatesToCellName(g.Start+g.Span, row)
				if err := f.MergeCell(sheet, top, bottom); err != nil {
					return fmt.Errorf("failed to merge %s:%s: %w", top, bottom, err)
				}
			}
		}
		if err := styleRow(f, sheet, row, len(model.Columns), bold); err != nil {
			return err
		}
		row++
	}

	for i, label := range model.Labels() {
		if err := setCell(f, sheet, i+1, row, label); err != nil {
			return err
		}
	}
	if err := styleRow(f, sheet, row, len(model.Columns), bold); err != nil {
		return err
	}
	row++

	for _, r := range model.Rows {
		for i, cell := range r.Cells {
			if i >= len(model.Columns) {
				break
			}
			var value any = Text(cell)
			if n, ok := Number(cell); ok && cell.Type != tablemodel.TypePhone {
				value = n
			}
			if err := setCell(f, sheet, i+1, row, value); err != nil {
				return err
			}
		}
		if r.IsTotalRow {
			if err := styleRow(f, sheet, row, len(model.Columns), bold); err != nil {
				return err
			}
		}
		row++
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func setCell(f *excelize.File, sheet string, col, row int, value any) error {
	name, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	if err := f.SetCellValue(sheet, name, value); err != nil {
		return fmt.Errorf("failed to set %s: %w", name, err)
	}
	return nil
}

func styleRow(f *excelize.File, sheet string, row, columns, style int) error {
	if columns == 0 {
		return nil
	}
	first, _ := excelize.CoordinatesToCellName(1, row)
	last, _ := excelize.CoordinatesToCellName(columns, row)
	return f.SetCellStyle(sheet, first, last, style)
}
