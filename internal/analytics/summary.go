package analytics

import (
	"bytes"
	"encoding/json"
	"math"
	"strings"

	"github.com/montanaflynn/stats"
)

// Overview holds whole-table counters
type Overview struct {
	TotalRows          int     `json:"total_rows"`
	TotalColumns       int     `json:"total_columns"`
	NumericColumns     int     `json:"numeric_columns"`
	CategoricalColumns int     `json:"categorical_columns"`
	MissingValues      int     `json:"missing_values"`
	MemoryUsage        float64 `json:"memory_usage"` // approximate KB
}

// NumericSummary holds per-column descriptive statistics. Statistics that
// cannot be computed (empty column, std of a single value) are null.
type NumericSummary struct {
	Count   int      `json:"count"`
	Mean    *float64 `json:"mean"`
	Std     *float64 `json:"std"`
	Min     *float64 `json:"min"`
	Max     *float64 `json:"max"`
	Median  *float64 `json:"median"`
	Q1      *float64 `json:"q1"`
	Q3      *float64 `json:"q3"`
	Missing int      `json:"missing"`
}

// ValueCount is one entry of an ordered frequency table
type ValueCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// ValueCounts marshals as a JSON object whose key order is descending
// frequency with first-seen tie-breaking.
type ValueCounts []ValueCount

// MarshalJSON writes the entries as an ordered object
func (v ValueCounts) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, vc := range v {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(vc.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		count, err := json.Marshal(vc.Count)
		if err != nil {
			return nil, err
		}
		buf.Write(count)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// CategoricalSummary holds per-column frequency statistics
type CategoricalSummary struct {
	UniqueValues int         `json:"unique_values"`
	TopValues    ValueCounts `json:"top_values"`
	Missing      int         `json:"missing"`
}

// KPICard is a single dashboard metric derived from one numeric column
type KPICard struct {
	ID             string  `json:"id"`
	Label          string  `json:"label"`
	Value          float64 `json:"value"`
	Unit           string  `json:"unit"`
	Trend          float64 `json:"trend"`
	TrendDirection string  `json:"trend_direction"`
}

// SummaryResult is the full output of the summary computation
type SummaryResult struct {
	Overview           Overview                      `json:"overview"`
	NumericSummary     map[string]NumericSummary     `json:"numeric_summary"`
	CategoricalSummary map[string]CategoricalSummary `json:"categorical_summary"`
	KPIMetrics         []KPICard                     `json:"kpi_metrics"`
}

// Summary computes descriptive statistics, frequency tables and KPI cards
// for the table. Numeric statistics cover Integer/Float columns, frequency
// tables cover String columns; Datetime and Boolean columns participate in
// neither bucket.
func (e *Engine) Summary() *SummaryResult {
	numericCols := e.tbl.NumericColumns()
	categoricalCols := e.tbl.CategoricalColumns()

	result := &SummaryResult{
		Overview: Overview{
			TotalRows:          e.tbl.RowCount(),
			TotalColumns:       e.tbl.ColumnCount(),
			NumericColumns:     len(numericCols),
			CategoricalColumns: len(categoricalCols),
			MissingValues:      e.tbl.TotalMissing(),
			MemoryUsage:        e.tbl.MemoryEstimateKB(),
		},
		NumericSummary:     make(map[string]NumericSummary, len(numericCols)),
		CategoricalSummary: make(map[string]CategoricalSummary, len(categoricalCols)),
	}

	for _, col := range numericCols {
		result.NumericSummary[col] = e.numericSummary(col)
	}
	for _, col := range categoricalCols {
		result.CategoricalSummary[col] = e.categoricalSummary(col)
	}
	result.KPIMetrics = e.KPIs()
	return result
}

func (e *Engine) numericSummary(col string) NumericSummary {
	values := e.tbl.NumericValues(col)
	summary := NumericSummary{
		Count:   len(values),
		Missing: e.tbl.MissingCount(col),
	}
	if len(values) == 0 {
		return summary
	}

	mean, _ := stats.Mean(values)
	std, _ := stats.StandardDeviationSample(values)
	min, _ := stats.Min(values)
	max, _ := stats.Max(values)
	median, _ := stats.Median(values)

	summary.Mean = finite(mean)
	summary.Std = finite(std)
	summary.Min = finite(min)
	summary.Max = finite(max)
	summary.Median = finite(median)
	summary.Q1 = finite(quantile(values, 0.25))
	summary.Q3 = finite(quantile(values, 0.75))
	return summary
}

func (e *Engine) categoricalSummary(col string) CategoricalSummary {
	var keys []string
	for _, cell := range e.tbl.Column(col) {
		if !cell.IsNull() {
			keys = append(keys, cell.String())
		}
	}

	counted := countValues(keys)
	top := make(ValueCounts, 0, 10)
	for i, vc := range counted {
		if i >= 10 {
			break
		}
		top = append(top, ValueCount{Value: vc.value, Count: vc.count})
	}

	return CategoricalSummary{
		UniqueValues: len(counted),
		TopValues:    top,
		Missing:      e.tbl.MissingCount(col),
	}
}

// kpiColumnLimit caps how many numeric columns produce dashboard cards
const kpiColumnLimit = 4

// KPIs derives dashboard cards from the first numeric columns in declared
// order. The trend compares the mean of the second half of the value
// sequence against the first half.
func (e *Engine) KPIs() []KPICard {
	cols := e.tbl.NumericColumns()
	if len(cols) > kpiColumnLimit {
		cols = cols[:kpiColumnLimit]
	}

	kpis := make([]KPICard, 0, len(cols))
	for _, col := range cols {
		values := e.tbl.NumericValues(col)

		value := 0.0
		if len(values) > 0 {
			if mean, err := stats.Mean(values); err == nil && !math.IsNaN(mean) {
				value = roundTo(mean, 2)
			}
		}

		trend := trendPercent(values)
		direction := "stable"
		if trend > 0 {
			direction = "up"
		} else if trend < 0 {
			direction = "down"
		}

		kpis = append(kpis, KPICard{
			ID:             strings.ReplaceAll(strings.ToLower(col), " ", "_"),
			Label:          col,
			Value:          value,
			Unit:           inferUnit(col),
			Trend:          trend,
			TrendDirection: direction,
		})
	}
	return kpis
}

// trendPercent computes the half-over-half percent change of a value
// sequence, rounded to 1 decimal. Fewer than 2 values, or a zero first-half
// mean, yield 0.
func trendPercent(values []float64) float64 {
	mid := len(values) / 2
	if mid == 0 {
		return 0
	}
	firstMean, err1 := stats.Mean(values[:mid])
	secondMean, err2 := stats.Mean(values[mid:])
	if err1 != nil || err2 != nil || firstMean == 0 {
		return 0
	}
	pct := (secondMean - firstMean) / firstMean * 100
	if math.IsNaN(pct) || math.IsInf(pct, 0) {
		return 0
	}
	return roundTo(pct, 1)
}

// unitKeyword maps a column-name substring to a measurement unit
type unitKeyword struct {
	keyword string
	unit    string
}

// unitKeywords is checked in order; the first match wins
var unitKeywords = []unitKeyword{
	{"temperature", "°C"},
	{"temp", "°C"},
	{"pressure", "bar"},
	{"flow", "L/min"},
	{"concentration", "mol/L"},
	{"conc", "mol/L"},
	{"ph", ""},
	{"voltage", "V"},
	{"current", "A"},
	{"power", "kW"},
	{"time", "s"},
	{"weight", "kg"},
	{"mass", "kg"},
	{"volume", "L"},
	{"speed", "RPM"},
	{"rpm", "RPM"},
	{"percent", "%"},
	{"%", "%"},
}

// inferUnit guesses the measurement unit from the column name
func inferUnit(column string) string {
	name := strings.ToLower(column)
	for _, uk := range unitKeywords {
		if strings.Contains(name, uk.keyword) {
			return uk.unit
		}
	}
	return ""
}
