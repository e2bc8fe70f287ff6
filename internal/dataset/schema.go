package dataset

import (
	"fmt"
	"math"
	"regexp"
	"slices"
	"strconv"
	"strings"
)

// ColumnKind tells how a column is carried through augmentation.
type ColumnKind int

const (
	KindID ColumnKind = iota
	KindClass
	KindTime
	KindNumeric
	KindCategorical
)

// SchemaOptions names the special columns of a ping table.
type SchemaOptions struct {
	IDColumn        string
	ClassColumn     string
	TimeColumn      string
	FrequencyPrefix string
	// DropColumns are removed on load when present.
	DropColumns []string
	// LeadingColumns are moved to the front, in this order, when present.
	LeadingColumns []string
}

// DefaultSchemaOptions matches the layout of the combined fish ping exports.
func DefaultSchemaOptions() SchemaOptions {
	return SchemaOptions{
		IDColumn:        "fishNum",
		ClassColumn:     "Spe",
		TimeColumn:      "Ping_time",
		FrequencyPrefix: "F",
		DropColumns:     []string{"airbladderTotalLength", "totalLength", "weight", "sex"},
		LeadingColumns:  []string{"fishNum", "Spe", "Index"},
	}
}

// Schema is the one-time classification of a table's columns.
type Schema struct {
	Columns []string

	kinds       []ColumnKind
	slot        []int // index into Numeric or Categorical, -1 for special columns
	numeric     []int
	categorical []int
	frequency   []int // indexes into Measurement.Numeric
}

// NewSchema classifies header given the raw cells of every row. A column
// other than the id, class and time columns is numeric when every non-empty
// cell parses as a float.
func NewSchema(header []string, rows [][]string, opts SchemaOptions) (*Schema, error) {
	special := map[string]ColumnKind{
		opts.IDColumn:    KindID,
		opts.ClassColumn: KindClass,
		opts.TimeColumn:  KindTime,
	}
	for name := range special {
		if !slices.Contains(header, name) {
			return nil, fmt.Errorf("missing required column %q", name)
		}
	}

	freqName, err := frequencyPattern(opts.FrequencyPrefix)
	if err != nil {
		return nil, err
	}

	s := &Schema{
		Columns: slices.Clone(header),
		kinds:   make([]ColumnKind, len(header)),
		slot:    make([]int, len(header)),
	}

	for i, name := range header {
		if kind, ok := special[name]; ok {
			s.kinds[i] = kind
			s.slot[i] = -1
			continue
		}

		if isNumericColumn(rows, i) {
			s.kinds[i] = KindNumeric
			s.slot[i] = len(s.numeric)
			if freqName.MatchString(name) {
				s.frequency = append(s.frequency, len(s.numeric))
			}
			s.numeric = append(s.numeric, i)
		} else {
			s.kinds[i] = KindCategorical
			s.slot[i] = len(s.categorical)
			s.categorical = append(s.categorical, i)
		}
	}

	return s, nil
}

func frequencyPattern(prefix string) (*regexp.Regexp, error) {
	if prefix == "" {
		return nil, fmt.Errorf("frequency column prefix is required")
	}
	return regexp.Compile(`^` + regexp.QuoteMeta(prefix) + `\d+(\.\d+)?$`)
}

func isNumericColumn(rows [][]string, col int) bool {
	for _, row := range rows {
		if col >= len(row) {
			continue
		}
		cell := strings.TrimSpace(row[col])
		if cell == "" {
			continue
		}
		if _, err := strconv.ParseFloat(cell, 64); err != nil {
			return false
		}
	}
	return true
}

// Kind reports how column i is classified.
func (s *Schema) Kind(i int) ColumnKind {
	return s.kinds[i]
}

// NumericColumns returns the names of the numeric columns in table order.
func (s *Schema) NumericColumns() []string {
	return s.names(s.numeric)
}

// CategoricalColumns returns the names of the non-numeric metadata columns.
func (s *Schema) CategoricalColumns() []string {
	return s.names(s.categorical)
}

// FrequencyColumns returns the names of the frequency-response columns.
func (s *Schema) FrequencyColumns() []string {
	out := make([]string, len(s.frequency))
	for i, slot := range s.frequency {
		out[i] = s.Columns[s.numeric[slot]]
	}
	return out
}

// FrequencySlots returns the positions of the frequency columns within
// Measurement.Numeric.
func (s *Schema) FrequencySlots() []int {
	return slices.Clone(s.frequency)
}

func (s *Schema) names(idx []int) []string {
	out := make([]string, len(idx))
	for i, c := range idx {
		out[i] = s.Columns[c]
	}
	return out
}

// Decode converts one raw row into a Measurement.
func (s *Schema) Decode(row []string) (Measurement, error) {
	if len(row) != len(s.Columns) {
		return Measurement{}, fmt.Errorf("row has %d cells, expected %d", len(row), len(s.Columns))
	}

	m := Measurement{
		Numeric:     make([]float64, len(s.numeric)),
		Categorical: make([]string, len(s.categorical)),
	}
	for i, cell := range row {
		switch s.kinds[i] {
		case KindID:
			m.IndividualID = cell
		case KindClass:
			m.Class = cell
		case KindTime:
			m.PingTime = cell
		case KindNumeric:
			v := math.NaN()
			if trimmed := strings.TrimSpace(cell); trimmed != "" {
				f, err := strconv.ParseFloat(trimmed, 64)
				if err != nil {
					return Measurement{}, fmt.Errorf("column %s: %w", s.Columns[i], err)
				}
				v = f
			}
			m.Numeric[s.slot[i]] = v
		case KindCategorical:
			m.Categorical[s.slot[i]] = cell
		}
	}
	return m, nil
}

// Encode renders a Measurement back into cells in column order.
func (s *Schema) Encode(m Measurement) []string {
	row := make([]string, len(s.Columns))
	for i := range s.Columns {
		switch s.kinds[i] {
		case KindID:
			row[i] = m.IndividualID
		case KindClass:
			row[i] = m.Class
		case KindTime:
			row[i] = m.PingTime
		case KindNumeric:
			v := m.Numeric[s.slot[i]]
			if !math.IsNaN(v) {
				row[i] = strconv.FormatFloat(v, 'g', -1, 64)
			}
		case KindCategorical:
			row[i] = m.Categorical[s.slot[i]]
		}
	}
	return row
}
