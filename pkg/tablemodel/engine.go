package tablemodel

import (
	"fmt"

	"golang.org/x/text/language"
)

// ============================================================================
// Engine API
// ============================================================================

// Config holds the engine configuration
type Config struct {
	Vocabulary         Vocabulary   `json:"vocabulary"`
	DocumentInfoWindow int          `json:"document_info_window"`
	Locale             language.Tag `json:"-"`
}

// DefaultConfig returns the default engine configuration
func DefaultConfig() Config {
	return Config{
		Vocabulary:         DefaultVocabulary(),
		DocumentInfoWindow: DefaultDocumentInfoWindow,
		Locale:             language.MustParse(DefaultLocale),
	}
}

// Option defines options for configuring the engine
type Option func(*Config)

// WithVocabulary replaces the domain vocabulary
func WithVocabulary(v Vocabulary) Option {
	return func(config *Config) {
		config.Vocabulary = v
	}
}

// WithDocumentInfoWindow sets how many leading lines may carry document metadata
func WithDocumentInfoWindow(lines int) Option {
	return func(config *Config) {
		config.DocumentInfoWindow = lines
	}
}

// WithLocale sets the locale used for number grouping
func WithLocale(tag language.Tag) Option {
	return func(config *Config) {
		config.Locale = tag
	}
}

// Engine runs the full pipeline from raw input to a TableModel.
// It holds no mutable state and is safe for concurrent use.
type Engine struct {
	config     Config
	builder    *Builder
	classifier *Classifier
	assembler  *Assembler
}

// NewEngine creates an engine with the given options
func NewEngine(opts ...Option) *Engine {
	config := DefaultConfig()

	for _, opt := range opts {
		opt(&config)
	}

	return &Engine{
		config:     config,
		builder:    NewBuilder(config),
		classifier: NewClassifier(config),
		assembler:  NewAssembler(config),
	}
}

// Config returns the engine configuration
func (e *Engine) Config() Config {
	return e.config
}

// Normalize turns any supported input into a TableModel. The input shape
// alone selects the path; unsupported shapes yield an empty model with a
// Reason instead of an error.
func (e *Engine) Normalize(input any, expansion Expansion) TableModel {
	structure, reason := e.Structure(input)
	if reason != "" {
		return malformed(reason)
	}
	return e.Model(structure, expansion)
}

// Model classifies and assembles an already built structure
func (e *Engine) Model(structure RawTableStructure, expansion Expansion) TableModel {
	columns := e.classifier.ClassifyLayout(structure.Headers, structure.Layout)
	return e.assembler.Assemble(structure, columns, expansion)
}

// Structure builds the raw structure for an input. A non-empty reason means
// the input shape is not supported.
func (e *Engine) Structure(input any) (RawTableStructure, string) {
	switch in := input.(type) {
	case nil:
		return RawTableStructure{}, "no input"
	case string:
		return e.builder.BuildText(in), ""
	case []byte:
		return e.Structure(DecodeInput(in))
	case []string:
		return e.builder.Build(NewRawLines(in)), ""
	case TokenizedInput:
		return e.fromTokenized(in)
	case *TokenizedInput:
		if in == nil {
			return RawTableStructure{}, "no input"
		}
		return e.fromTokenized(*in)
	case []Record:
		return e.builder.FromRecords(in), ""
	case []map[string]any:
		records := make([]Record, len(in))
		for i, m := range in {
			records[i] = RecordFromMap(m)
		}
		return e.builder.FromRecords(records), ""
	case [][]any:
		return e.builder.FromTokenized(nil, in), ""
	case [][]string:
		rows := make([][]any, len(in))
		for i, row := range in {
			rows[i] = stringsToValues(row)
		}
		return e.builder.FromTokenized(nil, rows), ""
	case map[string]any:
		if tokenized, ok := tokenizedFromMap(in); ok {
			return e.fromTokenized(tokenized)
		}
		return RawTableStructure{}, "object input has no rows"
	case []any:
		return e.fromList(in)
	default:
		return RawTableStructure{}, fmt.Sprintf("unsupported input type %T", input)
	}
}

// fromList dispatches a JSON array on the shape of its elements
func (e *Engine) fromList(list []any) (RawTableStructure, string) {
	if len(list) == 0 {
		return e.builder.FromTokenized(nil, nil), ""
	}

	switch list[0].(type) {
	case Record, map[string]any:
		records := make([]Record, 0, len(list))
		for _, item := range list {
			switch r := item.(type) {
			case Record:
				records = append(records, r)
			case map[string]any:
				records = append(records, RecordFromMap(r))
			default:
				return RawTableStructure{}, "array mixes objects and non-objects"
			}
		}
		return e.builder.FromRecords(records), ""
	case []any:
		rows := make([][]any, 0, len(list))
		for _, item := range list {
			row, ok := item.([]any)
			if !ok {
				return RawTableStructure{}, "array mixes rows and non-rows"
			}
			rows = append(rows, row)
		}
		return e.builder.FromTokenized(nil, rows), ""
	}

	return RawTableStructure{}, "array elements are neither rows nor objects"
}

func (e *Engine) fromTokenized(in TokenizedInput) (RawTableStructure, string) {
	headers := append([]string(nil), in.Headers...)
	rows := make([][]any, 0, len(in.Rows))
	for _, row := range in.Rows {
		switch r := row.(type) {
		case []any:
			rows = append(rows, r)
		case []string:
			rows = append(rows, stringsToValues(r))
		case Record:
			rows = append(rows, recordRow(r, &headers))
		case map[string]any:
			rows = append(rows, recordRow(RecordFromMap(r), &headers))
		case nil:
			rows = append(rows, []any{})
		default:
			// A scalar row becomes a single cell
			rows = append(rows, []any{r})
		}
	}
	return e.builder.FromTokenized(headers, rows), ""
}

// recordRow orders a keyed row by the headers, adding unseen keys as headers
func recordRow(r Record, headers *[]string) []any {
	index := make(map[string]int, len(*headers))
	for i, h := range *headers {
		index[h] = i
	}
	for _, k := range r.Keys {
		if _, ok := index[k]; !ok {
			index[k] = len(*headers)
			*headers = append(*headers, k)
		}
	}

	row := make([]any, len(*headers))
	for i := range row {
		row[i] = ""
	}
	for k, v := range r.Values {
		row[index[k]] = v
	}
	return row
}

// malformed returns the empty model reported for unsupported input
func malformed(reason string) TableModel {
	return TableModel{
		Columns:      []ColumnSpec{},
		Rows:         []RowModel{},
		DocumentInfo: []string{},
		Reason:       reason,
	}
}
