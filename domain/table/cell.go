package table

import (
	"strconv"
	"time"
)

// CellKind discriminates the variants of a Cell
type CellKind uint8

const (
	KindNull CellKind = iota
	KindInt
	KindFloat
	KindString
	KindBool
	KindTime
)

// Cell is a single typed table value. Missing data is an explicit Null cell,
// never an absent key and never a floating-point NaN.
type Cell struct {
	kind CellKind
	i    int64
	f    float64
	s    string
	b    bool
	t    time.Time
}

// Constructors for each variant
func Null() Cell { return Cell{kind: KindNull} }
func Int(v int64) Cell { return Cell{kind: KindInt, i: v} }
func Float(v float64) Cell { return Cell{kind: KindFloat, f: v} }
func Str(v string) Cell { return Cell{kind: KindString, s: v} }
func Bool(v bool) Cell { return Cell{kind: KindBool, b: v} }
func Time(v time.Time) Cell { return Cell{kind: KindTime, t: v} }

// Kind returns the cell's variant tag
func (c Cell) Kind() CellKind { return c.kind }

// IsNull reports whether the cell holds no value
func (c Cell) IsNull() bool { return c.kind == KindNull }

// Float returns the numeric view of the cell. Integer cells widen to
// float64; every other variant reports ok=false.
func (c Cell) Float() (float64, bool) {
	switch c.kind {
	case KindInt:
		return float64(c.i), true
	case KindFloat:
		return c.f, true
	}
	return 0, false
}

// String returns the display form of the cell. Null cells render empty.
func (c Cell) String() string {
	switch c.kind {
	case KindInt:
		return strconv.FormatInt(c.i, 10)
	case KindFloat:
		return strconv.FormatFloat(c.f, 'g', -1, 64)
	case KindString:
		return c.s
	case KindBool:
		return strconv.FormatBool(c.b)
	case KindTime:
		return c.t.Format(time.RFC3339)
	}
	return ""
}

// Value returns the JSON-serializable form of the cell (nil for Null)
func (c Cell) Value() interface{} {
	switch c.kind {
	case KindInt:
		return c.i
	case KindFloat:
		return c.f
	case KindString:
		return c.s
	case KindBool:
		return c.b
	case KindTime:
		return c.t.Format(time.RFC3339)
	}
	return nil
}
