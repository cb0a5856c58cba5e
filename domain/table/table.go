// Package table holds the in-memory tabular subject of all analytics
// computation: ordered columns, inferred column types, and explicitly-typed
// cells. A Table is built fresh per request and never mutated afterwards.
package table

// Table is an immutable, column-oriented view of a parsed dataset
type Table struct {
	columns []string
	types   map[string]ColumnType
	cells   map[string][]Cell
	rows    int
}

// New constructs a Table from row mappings, the declared column order and an
// optional column→type map. Columns missing from the type map are inferred
// from their values. Cell coercion follows the declared type; values that
// fail to coerce become Null rather than raising.
func New(rows []map[string]interface{}, columns []string, types map[string]ColumnType) *Table {
	t := &Table{
		columns: append([]string(nil), columns...),
		types:   make(map[string]ColumnType, len(columns)),
		cells:   make(map[string][]Cell, len(columns)),
		rows:    len(rows),
	}

	for _, col := range t.columns {
		ct, ok := types[col]
		if !ok {
			values := make([]interface{}, 0, len(rows))
			for _, row := range rows {
				values = append(values, row[col])
			}
			ct = InferColumnType(values)
		}
		t.types[col] = ct

		cells := make([]Cell, len(rows))
		for i, row := range rows {
			cells[i] = coerce(row[col], ct)
		}
		t.cells[col] = cells
	}
	return t
}

// coerce converts a raw value into a Cell of the column's declared type.
// Unparsable values are treated as missing, mirroring coerce-errors-to-null
// semantics.
func coerce(raw interface{}, ct ColumnType) Cell {
	s, missing := rawString(raw)
	if missing {
		return Null()
	}
	switch ct {
	case TypeInteger:
		if f, ok := parseFloatLiteral(raw, s); ok {
			return Int(int64(f))
		}
	case TypeFloat:
		if f, ok := parseFloatLiteral(raw, s); ok {
			return Float(f)
		}
	case TypeDatetime:
		if ts, ok := parseTimestamp(s); ok {
			return Time(ts)
		}
	case TypeBoolean:
		if b, ok := parseBoolLiteral(raw, s); ok {
			return Bool(b)
		}
	default:
		return Str(s)
	}
	return Null()
}

// RowCount returns the number of rows
func (t *Table) RowCount() int { return t.rows }

// Columns returns the declared column order
func (t *Table) Columns() []string {
	return append([]string(nil), t.columns...)
}

// ColumnCount returns the number of declared columns
func (t *Table) ColumnCount() int { return len(t.columns) }

// Type returns the inferred type of a column
func (t *Table) Type(col string) (ColumnType, bool) {
	ct, ok := t.types[col]
	return ct, ok
}

// Types returns a copy of the column→type map
func (t *Table) Types() map[string]ColumnType {
	out := make(map[string]ColumnType, len(t.types))
	for k, v := range t.types {
		out[k] = v
	}
	return out
}

// HasColumn reports whether the column is declared
func (t *Table) HasColumn(col string) bool {
	_, ok := t.types[col]
	return ok
}

// Column returns the cells of a column in row order
func (t *Table) Column(col string) []Cell {
	return t.cells[col]
}

// NumericColumns lists Integer/Float columns in declared order
func (t *Table) NumericColumns() []string {
	var out []string
	for _, col := range t.columns {
		if t.types[col].IsNumeric() {
			out = append(out, col)
		}
	}
	return out
}

// CategoricalColumns lists String columns in declared order. Datetime and
// Boolean columns belong to neither bucket.
func (t *Table) CategoricalColumns() []string {
	var out []string
	for _, col := range t.columns {
		if t.types[col] == TypeString {
			out = append(out, col)
		}
	}
	return out
}

// NumericValues returns the non-missing numeric values of a column in
// row order
func (t *Table) NumericValues(col string) []float64 {
	cells := t.cells[col]
	out := make([]float64, 0, len(cells))
	for _, c := range cells {
		if v, ok := c.Float(); ok {
			out = append(out, v)
		}
	}
	return out
}

// MissingCount returns the number of Null cells in a column
func (t *Table) MissingCount(col string) int {
	n := 0
	for _, c := range t.cells[col] {
		if c.IsNull() {
			n++
		}
	}
	return n
}

// TotalMissing returns the number of Null cells across the whole table
func (t *Table) TotalMissing() int {
	n := 0
	for _, col := range t.columns {
		n += t.MissingCount(col)
	}
	return n
}

// MemoryEstimateKB approximates the loaded footprint of the table in
// kilobytes. The estimate counts cell payloads plus per-column overhead;
// it is informational, not a strict contract.
func (t *Table) MemoryEstimateKB() float64 {
	bytes := 0
	for _, col := range t.columns {
		bytes += len(col)
		for _, c := range t.cells[col] {
			switch c.Kind() {
			case KindString:
				bytes += len(c.s) + 16
			case KindTime:
				bytes += 24
			default:
				bytes += 8
			}
		}
	}
	return float64(bytes) / 1024
}
