package analytics

import (
	"errors"
	"fmt"
	"reflect"
	"testing"

	"chemviz/domain/core"
	"chemviz/domain/table"
)

func equipmentRows() []map[string]interface{} {
	return []map[string]interface{}{
		{"Equipment Name": "R-101", "Type": "Reactor", "Flowrate": "10", "Pressure": "2.0", "Temperature": "50"},
		{"Equipment Name": "P-201", "Type": "Pump", "Flowrate": "20", "Pressure": "4.0", "Temperature": "60"},
		{"Equipment Name": "P-202", "Type": "Pump", "Flowrate": "30", "Pressure": "6.0", "Temperature": "70"},
		{"Equipment Name": "V-301", "Type": "Valve", "Flowrate": "", "Pressure": "8.0", "Temperature": "80"},
	}
}

func equipmentColumns() []string {
	return []string{"Equipment Name", "Type", "Flowrate", "Pressure", "Temperature"}
}

func newEquipmentEngine() *Engine {
	return NewEngine(equipmentRows(), equipmentColumns(), nil)
}

func TestChartUnsupportedKind(t *testing.T) {
	_, err := newEquipmentEngine().Chart("sparkline", "", "", 0)
	if !errors.Is(err, core.ErrUnsupportedChartKind) {
		t.Errorf("expected ErrUnsupportedChartKind, got %v", err)
	}
}

func TestLineChartIndexFallback(t *testing.T) {
	payload, err := newEquipmentEngine().Chart(ChartLine, "", "", 0)
	if err != nil {
		t.Fatal(err)
	}

	if payload.XAxisLabel != "Index" {
		t.Errorf("x label = %s, want Index", payload.XAxisLabel)
	}
	if !reflect.DeepEqual(payload.Labels, []string{"0", "1", "2", "3"}) {
		t.Errorf("labels = %v", payload.Labels)
	}
	// up to 3 numeric series
	if len(payload.Datasets) != 3 {
		t.Fatalf("datasets = %d, want 3", len(payload.Datasets))
	}
	// missing Flowrate in the last row surfaces as null, not zero
	flow := payload.Datasets[0]
	if flow.Label != "Flowrate" {
		t.Fatalf("first series = %s, want Flowrate", flow.Label)
	}
	if flow.Data[3] != nil {
		t.Error("missing value should project to null")
	}
}

func TestLineChartRequestedColumns(t *testing.T) {
	payload, err := newEquipmentEngine().Chart(ChartLine, "Equipment Name", "Pressure", 0)
	if err != nil {
		t.Fatal(err)
	}
	if payload.XAxisLabel != "Equipment Name" {
		t.Errorf("x label = %s", payload.XAxisLabel)
	}
	if len(payload.Datasets) != 1 || payload.Datasets[0].Label != "Pressure" {
		t.Errorf("requested y column not honored: %+v", payload.Datasets)
	}
}

func TestBarChartGroupMeans(t *testing.T) {
	payload, err := newEquipmentEngine().Chart(ChartBar, "Type", "Temperature", 0)
	if err != nil {
		t.Fatal(err)
	}

	// group keys come out in ascending sorted order
	if !reflect.DeepEqual(payload.Labels, []string{"Pump", "Reactor", "Valve"}) {
		t.Fatalf("labels = %v", payload.Labels)
	}
	data := payload.Datasets[0].Data
	if *data[0] != 65 { // (60+70)/2
		t.Errorf("Pump mean = %f, want 65", *data[0])
	}
	if *data[1] != 50 || *data[2] != 80 {
		t.Errorf("unexpected means: %v %v", *data[1], *data[2])
	}
	if payload.YAxisLabel != "Average Temperature" {
		t.Errorf("y label = %s", payload.YAxisLabel)
	}
}

func TestBarChartCountFallback(t *testing.T) {
	// no categorical and no numeric columns: x falls back to the first
	// declared column and the series is a value count
	rows := []map[string]interface{}{
		{"When": "2024-01-01"}, {"When": "2024-01-01"}, {"When": "2024-01-02"},
	}
	e := NewEngine(rows, []string{"When"}, nil)

	payload, err := e.Chart(ChartBar, "", "", 0)
	if err != nil {
		t.Fatal(err)
	}
	if payload.XAxisLabel != "When" {
		t.Errorf("x label = %s, want When", payload.XAxisLabel)
	}
	if payload.YAxisLabel != "Count" {
		t.Errorf("y label = %s, want Count", payload.YAxisLabel)
	}
	if *payload.Datasets[0].Data[0] != 2 {
		t.Errorf("most frequent count = %f, want 2", *payload.Datasets[0].Data[0])
	}
}

func TestBarChartCategoryCap(t *testing.T) {
	var rows []map[string]interface{}
	for i := 0; i < 30; i++ {
		rows = append(rows, map[string]interface{}{
			"Cat": fmt.Sprintf("c%02d", i), "Val": "1",
		})
	}
	e := NewEngine(rows, []string{"Cat", "Val"}, nil)

	payload, err := e.Chart(ChartBar, "", "", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(payload.Labels) != 20 {
		t.Errorf("labels = %d, want capped at 20", len(payload.Labels))
	}
}

func TestPieChartTopSlices(t *testing.T) {
	var rows []map[string]interface{}
	for i := 0; i < 10; i++ {
		for j := 0; j <= i; j++ {
			rows = append(rows, map[string]interface{}{"T": fmt.Sprintf("t%d", i)})
		}
	}
	e := NewEngine(rows, []string{"T"}, nil)

	payload, err := e.Chart(ChartPie, "", "", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(payload.Labels) != 8 {
		t.Fatalf("slices = %d, want 8", len(payload.Labels))
	}
	// most frequent first
	if payload.Labels[0] != "t9" {
		t.Errorf("first slice = %s, want t9", payload.Labels[0])
	}
	if *payload.Datasets[0].Data[0] != 10 {
		t.Errorf("first count = %f, want 10", *payload.Datasets[0].Data[0])
	}
}

func TestScatterRequiresTwoNumericColumns(t *testing.T) {
	rows := floatRows("X", "1", "2")
	e := NewEngine(rows, []string{"X"}, nil)
	_, err := e.Chart(ChartScatter, "", "", 0)
	if !errors.Is(err, core.ErrInsufficientColumns) {
		t.Errorf("expected ErrInsufficientColumns, got %v", err)
	}
}

func TestScatterSkipsIncompletePairs(t *testing.T) {
	rows := []map[string]interface{}{
		{"A": "1", "B": "10"},
		{"A": "", "B": "20"},
		{"A": "3", "B": ""},
		{"A": "4", "B": "40"},
	}
	e := NewEngine(rows, []string{"A", "B"}, map[string]table.ColumnType{
		"A": table.TypeFloat, "B": table.TypeFloat,
	})

	payload, err := e.Chart(ChartScatter, "", "", 0)
	if err != nil {
		t.Fatal(err)
	}
	want := []Point{{X: 1, Y: 10}, {X: 4, Y: 40}}
	if !reflect.DeepEqual(payload.Points, want) {
		t.Errorf("points = %v, want %v", payload.Points, want)
	}
}

func TestScatterDeterministicDownsampling(t *testing.T) {
	var rows []map[string]interface{}
	for i := 0; i < 1200; i++ {
		rows = append(rows, map[string]interface{}{
			"A": fmt.Sprintf("%d", i), "B": fmt.Sprintf("%d", i*2),
		})
	}
	e := NewEngine(rows, []string{"A", "B"}, nil)

	first, err := e.Chart(ChartScatter, "", "", 0)
	if err != nil {
		t.Fatal(err)
	}
	second, _ := e.Chart(ChartScatter, "", "", 0)

	// stride = 1200/500 = 2, selecting every other point
	if len(first.Points) != 600 {
		t.Errorf("points = %d, want 600", len(first.Points))
	}
	if first.Points[1].X != 2 {
		t.Errorf("second point x = %f, want 2", first.Points[1].X)
	}
	if !reflect.DeepEqual(first.Points, second.Points) {
		t.Error("downsampling must be deterministic across calls")
	}
}

func TestHistogramBinCount(t *testing.T) {
	rows := floatRows("X", "0", "1", "2", "3", "4", "5", "6", "7", "abc")
	e := NewEngine(rows, []string{"X"}, map[string]table.ColumnType{"X": table.TypeFloat})

	payload, err := e.Chart(ChartHistogram, "X", "", 4)
	if err != nil {
		t.Fatal(err)
	}
	if len(payload.Labels) != 4 {
		t.Fatalf("bins = %d, want 4", len(payload.Labels))
	}
	total := 0.0
	for _, c := range payload.Datasets[0].Data {
		total += *c
	}
	if total != 8 {
		t.Errorf("bin counts sum to %f, want 8 non-missing values", total)
	}
	if payload.Labels[0] != "0.00-1.75" {
		t.Errorf("first label = %s, want 0.00-1.75", payload.Labels[0])
	}
	// top edge belongs to the last bin
	if last := payload.Datasets[0].Data[3]; *last != 2 {
		t.Errorf("last bin = %f, want 2 (values 6 and 7)", *last)
	}
}

func TestHistogramDefaultBins(t *testing.T) {
	payload, err := newEquipmentEngine().Chart(ChartHistogram, "", "", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(payload.Labels) != DefaultHistogramBins {
		t.Errorf("bins = %d, want %d", len(payload.Labels), DefaultHistogramBins)
	}
	if payload.XAxisLabel != "Flowrate" {
		t.Errorf("column fallback = %s, want first numeric column", payload.XAxisLabel)
	}
}

func TestHeatmapCorrelation(t *testing.T) {
	rows := []map[string]interface{}{
		{"A": "1", "B": "2", "C": "9"},
		{"A": "2", "B": "4", "C": "7"},
		{"A": "3", "B": "6", "C": "5"},
		{"A": "4", "B": "8", "C": "3"},
	}
	e := NewEngine(rows, []string{"A", "B", "C"}, nil)

	payload, err := e.Chart(ChartHeatmap, "", "", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(payload.Cells) != 9 {
		t.Fatalf("cells = %d, want 9", len(payload.Cells))
	}
	if *payload.Min != -1 || *payload.Max != 1 {
		t.Errorf("range = [%f, %f], want [-1, 1]", *payload.Min, *payload.Max)
	}

	cell := func(x, y int) float64 {
		for _, c := range payload.Cells {
			if c.X == x && c.Y == y {
				return c.V
			}
		}
		t.Fatalf("cell (%d,%d) not found", x, y)
		return 0
	}
	if cell(0, 0) != 1 {
		t.Errorf("diagonal = %f, want 1", cell(0, 0))
	}
	if cell(1, 0) != 1 { // B is 2*A
		t.Errorf("corr(A,B) = %f, want 1", cell(1, 0))
	}
	if cell(2, 0) != -1 { // C decreases linearly with A
		t.Errorf("corr(A,C) = %f, want -1", cell(2, 0))
	}
}

func TestHeatmapConstantColumnReportsZero(t *testing.T) {
	rows := []map[string]interface{}{
		{"A": "1", "B": "5"},
		{"A": "2", "B": "5"},
		{"A": "3", "B": "5"},
	}
	e := NewEngine(rows, []string{"A", "B"}, nil)

	payload, err := e.Chart(ChartHeatmap, "", "", 0)
	if err != nil {
		t.Fatal(err)
	}
	for _, c := range payload.Cells {
		if c.X == 1 && c.Y == 0 && c.V != 0 {
			t.Errorf("undefined correlation should report 0, got %f", c.V)
		}
	}
}

func TestAllChartsManifest(t *testing.T) {
	result := newEquipmentEngine().AllCharts()

	want := []string{"line", "bar", "pie", "scatter", "heatmap", "histogram"}
	if !reflect.DeepEqual(result.AvailableCharts, want) {
		t.Errorf("available = %v, want %v", result.AvailableCharts, want)
	}
	if result.Line == nil || result.Bar == nil || result.Pie == nil ||
		result.Scatter == nil || result.Heatmap == nil || result.Histogram == nil {
		t.Error("all chart payloads should be populated for the equipment table")
	}
}

func TestAllChartsNumericOnly(t *testing.T) {
	rows := []map[string]interface{}{
		{"A": "1", "B": "2"},
		{"A": "3", "B": "4"},
	}
	e := NewEngine(rows, []string{"A", "B"}, nil)
	result := e.AllCharts()

	if result.Bar != nil || result.Pie != nil {
		t.Error("bar/pie need a categorical column")
	}
	want := []string{"line", "scatter", "heatmap", "histogram"}
	if !reflect.DeepEqual(result.AvailableCharts, want) {
		t.Errorf("available = %v, want %v", result.AvailableCharts, want)
	}
}
