package analytics

import (
	"fmt"
	"math"
	"sort"
	"strconv"

	"gonum.org/v1/gonum/stat"

	"chemviz/domain/core"
)

// Chart kinds recognized by the projector
const (
	ChartLine      = "line"
	ChartBar       = "bar"
	ChartPie       = "pie"
	ChartScatter   = "scatter"
	ChartHistogram = "histogram"
	ChartHeatmap   = "heatmap"
	ChartCombined  = "combined"
)

// DefaultHistogramBins is used when no bin count is requested
const DefaultHistogramBins = 20

// scatterPointLimit caps scatter output; larger results are stride-sampled
const scatterPointLimit = 500

// heatmapColumnLimit caps the correlation matrix size for readability
const heatmapColumnLimit = 10

// barCategoryLimit caps bar chart categories
const barCategoryLimit = 20

// pieSliceLimit caps pie chart slices
const pieSliceLimit = 8

// Series is one named sequence of chart values. Entries are null where the
// source cell was missing.
type Series struct {
	Label string     `json:"label"`
	Data  []*float64 `json:"data"`
}

// Point is a single scatter observation
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// HeatCell is one cell of the flattened correlation matrix
type HeatCell struct {
	X int     `json:"x"`
	Y int     `json:"y"`
	V float64 `json:"v"`
}

// ChartPayload is the chart-kind-tagged projection output. Labels and
// Datasets serve the labeled kinds; Points serves scatter; Cells plus
// Min/Max serve heatmap.
type ChartPayload struct {
	Kind       string     `json:"type"`
	Labels     []string   `json:"labels,omitempty"`
	Datasets   []Series   `json:"datasets,omitempty"`
	Points     []Point    `json:"points,omitempty"`
	PointLabel string     `json:"point_label,omitempty"`
	Cells      []HeatCell `json:"data,omitempty"`
	Min        *float64   `json:"min,omitempty"`
	Max        *float64   `json:"max,omitempty"`
	XAxisLabel string     `json:"xAxisLabel,omitempty"`
	YAxisLabel string     `json:"yAxisLabel,omitempty"`
}

// AllChartsResult bundles every chart the table's shape supports, plus a
// manifest of which kinds were populated.
type AllChartsResult struct {
	Line            *ChartPayload `json:"line,omitempty"`
	Bar             *ChartPayload `json:"bar,omitempty"`
	Pie             *ChartPayload `json:"pie,omitempty"`
	Scatter         *ChartPayload `json:"scatter,omitempty"`
	Histogram       *ChartPayload `json:"histogram,omitempty"`
	Heatmap         *ChartPayload `json:"heatmap,omitempty"`
	AvailableCharts []string      `json:"available_charts"`
}

// Chart projects the table into the requested chart kind. xCol/yCol are
// optional axis requests; unknown columns fall back to kind-specific
// defaults. bins <= 0 selects the histogram default.
func (e *Engine) Chart(kind, xCol, yCol string, bins int) (*ChartPayload, error) {
	switch kind {
	case ChartLine:
		return e.lineChart(xCol, yCol)
	case ChartBar:
		return e.barChart(xCol, yCol)
	case ChartPie:
		col := xCol
		if col == "" {
			col = yCol
		}
		return e.pieChart(col)
	case ChartScatter:
		return e.scatterChart(xCol, yCol)
	case ChartHistogram:
		col := xCol
		if col == "" {
			col = yCol
		}
		return e.histogramChart(col, bins)
	case ChartHeatmap:
		return e.heatmapChart()
	default:
		return nil, core.NewChartKindError(kind)
	}
}

// AllCharts builds the combined dashboard view. Line always runs on the
// first numeric column; bar and pie require a categorical column; scatter
// and heatmap require two numeric columns; histogram requires one.
func (e *Engine) AllCharts() *AllChartsResult {
	numericCols := e.tbl.NumericColumns()
	categoricalCols := e.tbl.CategoricalColumns()

	result := &AllChartsResult{AvailableCharts: []string{}}

	firstNumeric := ""
	if len(numericCols) > 0 {
		firstNumeric = numericCols[0]
	}
	if line, err := e.lineChart("", firstNumeric); err == nil {
		result.Line = line
		result.AvailableCharts = append(result.AvailableCharts, ChartLine)
	}

	if len(categoricalCols) > 0 {
		if bar, err := e.barChart(categoricalCols[0], firstNumeric); err == nil {
			result.Bar = bar
			result.AvailableCharts = append(result.AvailableCharts, ChartBar)
		}
		if pie, err := e.pieChart(categoricalCols[0]); err == nil {
			result.Pie = pie
			result.AvailableCharts = append(result.AvailableCharts, ChartPie)
		}
	}

	if len(numericCols) >= 2 {
		if scatter, err := e.scatterChart(numericCols[0], numericCols[1]); err == nil {
			result.Scatter = scatter
			result.AvailableCharts = append(result.AvailableCharts, ChartScatter)
		}
		if heatmap, err := e.heatmapChart(); err == nil {
			result.Heatmap = heatmap
			result.AvailableCharts = append(result.AvailableCharts, ChartHeatmap)
		}
	}

	if len(numericCols) > 0 {
		if hist, err := e.histogramChart(numericCols[0], DefaultHistogramBins); err == nil {
			result.Histogram = hist
			result.AvailableCharts = append(result.AvailableCharts, ChartHistogram)
		}
	}

	return result
}

func (e *Engine) lineChart(xCol, yCol string) (*ChartPayload, error) {
	numericCols := e.tbl.NumericColumns()
	if len(numericCols) == 0 {
		return nil, core.NewColumnCountError("line chart", 1)
	}

	var labels []string
	xLabel := "Index"
	if xCol != "" && e.tbl.HasColumn(xCol) {
		for _, cell := range e.tbl.Column(xCol) {
			labels = append(labels, cell.String())
		}
		xLabel = xCol
	} else {
		labels = make([]string, e.tbl.RowCount())
		for i := range labels {
			labels[i] = strconv.Itoa(i)
		}
	}

	yCols := numericCols
	if len(yCols) > 3 {
		yCols = yCols[:3]
	}
	if yCol != "" && containsString(numericCols, yCol) {
		yCols = []string{yCol}
	}

	datasets := make([]Series, 0, len(yCols))
	for _, col := range yCols {
		data := make([]*float64, 0, e.tbl.RowCount())
		for _, cell := range e.tbl.Column(col) {
			if v, ok := cell.Float(); ok {
				data = append(data, &v)
			} else {
				data = append(data, nil)
			}
		}
		datasets = append(datasets, Series{Label: col, Data: data})
	}

	return &ChartPayload{
		Kind:       ChartLine,
		Labels:     labels,
		Datasets:   datasets,
		XAxisLabel: xLabel,
		YAxisLabel: "Value",
	}, nil
}

func (e *Engine) barChart(xCol, yCol string) (*ChartPayload, error) {
	categoricalCols := e.tbl.CategoricalColumns()
	numericCols := e.tbl.NumericColumns()
	columns := e.tbl.Columns()

	switch {
	case xCol != "" && e.tbl.HasColumn(xCol):
		// keep the requested column
	case len(categoricalCols) > 0:
		xCol = categoricalCols[0]
	case len(columns) > 0:
		xCol = columns[0]
	default:
		return nil, core.NewColumnCountError("bar chart", 1)
	}

	switch {
	case yCol != "" && containsString(numericCols, yCol):
		// keep the requested column
	case len(numericCols) > 0:
		yCol = numericCols[0]
	default:
		yCol = "" // no numeric column: fall back to counting
	}

	if yCol != "" {
		labels, values := e.groupMeans(xCol, yCol)
		if len(labels) > barCategoryLimit {
			labels = labels[:barCategoryLimit]
			values = values[:barCategoryLimit]
		}
		return &ChartPayload{
			Kind:       ChartBar,
			Labels:     labels,
			Datasets:   []Series{{Label: "Average " + yCol, Data: values}},
			XAxisLabel: xCol,
			YAxisLabel: "Average " + yCol,
		}, nil
	}

	counted := e.columnValueCounts(xCol)
	if len(counted) > barCategoryLimit {
		counted = counted[:barCategoryLimit]
	}
	labels := make([]string, 0, len(counted))
	values := make([]*float64, 0, len(counted))
	for _, vc := range counted {
		labels = append(labels, vc.value)
		count := float64(vc.count)
		values = append(values, &count)
	}
	return &ChartPayload{
		Kind:       ChartBar,
		Labels:     labels,
		Datasets:   []Series{{Label: "Count", Data: values}},
		XAxisLabel: xCol,
		YAxisLabel: "Count",
	}, nil
}

// groupMeans averages yCol grouped by the display value of xCol. Group keys
// come out in ascending sorted order; a group with no numeric values
// reports 0.
func (e *Engine) groupMeans(xCol, yCol string) ([]string, []*float64) {
	xCells := e.tbl.Column(xCol)
	yCells := e.tbl.Column(yCol)

	sums := make(map[string]float64)
	counts := make(map[string]int)
	var keys []string
	for i, xc := range xCells {
		if xc.IsNull() {
			continue
		}
		key := xc.String()
		if _, ok := counts[key]; !ok {
			keys = append(keys, key)
			counts[key] = 0
		}
		if v, ok := yCells[i].Float(); ok {
			sums[key] += v
			counts[key]++
		}
	}
	sort.Strings(keys)

	values := make([]*float64, 0, len(keys))
	for _, key := range keys {
		mean := 0.0
		if counts[key] > 0 {
			mean = sums[key] / float64(counts[key])
		}
		values = append(values, &mean)
	}
	return keys, values
}

// columnValueCounts counts the non-missing display values of a column,
// ordered by descending frequency.
func (e *Engine) columnValueCounts(col string) []valueCount {
	var keys []string
	for _, cell := range e.tbl.Column(col) {
		if !cell.IsNull() {
			keys = append(keys, cell.String())
		}
	}
	return countValues(keys)
}

func (e *Engine) pieChart(col string) (*ChartPayload, error) {
	categoricalCols := e.tbl.CategoricalColumns()
	columns := e.tbl.Columns()

	switch {
	case col != "" && e.tbl.HasColumn(col):
		// keep the requested column
	case len(categoricalCols) > 0:
		col = categoricalCols[0]
	case len(columns) > 0:
		col = columns[0]
	default:
		return nil, core.NewColumnCountError("pie chart", 1)
	}

	counted := e.columnValueCounts(col)
	if len(counted) > pieSliceLimit {
		counted = counted[:pieSliceLimit]
	}
	labels := make([]string, 0, len(counted))
	values := make([]*float64, 0, len(counted))
	for _, vc := range counted {
		labels = append(labels, vc.value)
		count := float64(vc.count)
		values = append(values, &count)
	}

	return &ChartPayload{
		Kind:     ChartPie,
		Labels:   labels,
		Datasets: []Series{{Label: col, Data: values}},
	}, nil
}

func (e *Engine) scatterChart(xCol, yCol string) (*ChartPayload, error) {
	numericCols := e.tbl.NumericColumns()
	if len(numericCols) < 2 {
		return nil, core.NewColumnCountError("scatter plot", 2)
	}

	if !containsString(numericCols, xCol) {
		xCol = numericCols[0]
	}
	if !containsString(numericCols, yCol) {
		yCol = numericCols[1]
	}

	xCells := e.tbl.Column(xCol)
	yCells := e.tbl.Column(yCol)
	points := make([]Point, 0, len(xCells))
	for i := range xCells {
		x, okX := xCells[i].Float()
		y, okY := yCells[i].Float()
		if okX && okY {
			points = append(points, Point{X: x, Y: y})
		}
	}

	// Deterministic stride downsampling keeps repeated calls identical
	if len(points) > scatterPointLimit {
		step := len(points) / scatterPointLimit
		sampled := make([]Point, 0, scatterPointLimit+1)
		for i := 0; i < len(points); i += step {
			sampled = append(sampled, points[i])
		}
		points = sampled
	}

	return &ChartPayload{
		Kind:       ChartScatter,
		Points:     points,
		PointLabel: fmt.Sprintf("%s vs %s", xCol, yCol),
		XAxisLabel: xCol,
		YAxisLabel: yCol,
	}, nil
}

func (e *Engine) histogramChart(col string, bins int) (*ChartPayload, error) {
	numericCols := e.tbl.NumericColumns()
	if len(numericCols) == 0 {
		return nil, core.NewColumnCountError("histogram", 1)
	}
	if !containsString(numericCols, col) {
		col = numericCols[0]
	}
	if bins <= 0 {
		bins = DefaultHistogramBins
	}

	values := e.tbl.NumericValues(col)
	counts, edges := binCounts(values, bins)

	labels := make([]string, 0, bins)
	data := make([]*float64, 0, bins)
	for i, count := range counts {
		labels = append(labels, fmt.Sprintf("%.2f-%.2f", edges[i], edges[i+1]))
		c := float64(count)
		data = append(data, &c)
	}

	return &ChartPayload{
		Kind:       ChartHistogram,
		Labels:     labels,
		Datasets:   []Series{{Label: col, Data: data}},
		XAxisLabel: col,
		YAxisLabel: "Frequency",
	}, nil
}

func (e *Engine) heatmapChart() (*ChartPayload, error) {
	numericCols := e.tbl.NumericColumns()
	if len(numericCols) < 2 {
		return nil, core.NewColumnCountError("heatmap", 2)
	}
	if len(numericCols) > heatmapColumnLimit {
		numericCols = numericCols[:heatmapColumnLimit]
	}

	cells := make([]HeatCell, 0, len(numericCols)*len(numericCols))
	for i, rowCol := range numericCols {
		for j, colCol := range numericCols {
			cells = append(cells, HeatCell{
				X: j,
				Y: i,
				V: roundTo(e.pairwiseCorrelation(rowCol, colCol), 3),
			})
		}
	}

	min, max := -1.0, 1.0
	return &ChartPayload{
		Kind:   ChartHeatmap,
		Labels: numericCols,
		Cells:  cells,
		Min:    &min,
		Max:    &max,
	}, nil
}

// pairwiseCorrelation computes the Pearson correlation of two columns over
// rows where both are non-missing. Undefined correlations (constant input,
// fewer than 2 pairs) report 0.
func (e *Engine) pairwiseCorrelation(colA, colB string) float64 {
	aCells := e.tbl.Column(colA)
	bCells := e.tbl.Column(colB)

	var xs, ys []float64
	for i := range aCells {
		a, okA := aCells[i].Float()
		b, okB := bCells[i].Float()
		if okA && okB {
			xs = append(xs, a)
			ys = append(ys, b)
		}
	}
	if len(xs) < 2 {
		return 0
	}

	r := stat.Correlation(xs, ys, nil)
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return 0
	}
	return r
}

func containsString(list []string, s string) bool {
	if s == "" {
		return false
	}
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
