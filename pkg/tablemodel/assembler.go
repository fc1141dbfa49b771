package tablemodel

// Assembler composes typed rows from a structure and its columns
type Assembler struct {
	typer *Typer
	vocab *matcher
}

// NewAssembler creates an assembler for the given configuration
func NewAssembler(config Config) *Assembler {
	return &Assembler{
		typer: NewTyper(config.Locale),
		vocab: compileVocabulary(config.Vocabulary),
	}
}

// Assemble types every cell with its current expansion flag. The result
// depends only on the three inputs.
func (a *Assembler) Assemble(structure RawTableStructure, columns []ColumnSpec, expansion Expansion) TableModel {
	if expansion == nil {
		expansion = collapsed{}
	}

	model := TableModel{
		Columns:      columns,
		Rows:         make([]RowModel, 0, len(structure.Rows)),
		DocumentInfo: structure.DocumentInfo,
		Groups:       structure.Groups,
		HeaderRows:   structure.HeaderRows,
	}
	if model.DocumentInfo == nil {
		model.DocumentInfo = []string{}
	}

	for r, raw := range structure.Rows {
		raw = padRow(raw, len(columns))
		row := RowModel{Cells: make([]Cell, len(raw))}
		for c, value := range raw {
			cell := a.typer.Type(value, expansion.IsExpanded(r, c))
			row.Cells[c] = cell
			if !row.IsTotalRow && a.vocab.isTotalText(totalProbe(cell)) {
				row.IsTotalRow = true
			}
		}
		model.Rows = append(model.Rows, row)
	}

	return model
}

// totalProbe is the text a cell contributes to total-row detection
func totalProbe(cell Cell) string {
	if s, ok := cell.Raw.(string); ok {
		return s
	}
	return cell.Display
}
