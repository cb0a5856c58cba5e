package analytics

import (
	"fmt"
	"math"
	"sort"

	"chemviz/domain/table"
)

// Fixed column names of the chemical-equipment schema. Matching is
// case-sensitive; an absent column omits its aggregate instead of erroring.
const (
	ColEquipmentName = "Equipment Name"
	ColType          = "Type"
	ColFlowrate      = "Flowrate"
	ColPressure      = "Pressure"
	ColTemperature   = "Temperature"
)

// EquipmentTypePalette is the fixed chart palette assigned to equipment
// types in frequency order.
var EquipmentTypePalette = []string{
	"#3B82F6", "#10B981", "#F59E0B", "#EF4444", "#8B5CF6",
	"#EC4899", "#06B6D4", "#84CC16", "#F97316", "#6366F1",
}

// pressureBucketCount is the fixed bin count of the pressure distribution
const pressureBucketCount = 5

// TypeDistribution pairs equipment-type counts with their palette colors
type TypeDistribution struct {
	Labels          []string `json:"labels"`
	Data            []int    `json:"data"`
	BackgroundColor []string `json:"backgroundColor"`
}

// GroupMeans is a label-aligned series of per-group averages
type GroupMeans struct {
	Labels []string  `json:"labels"`
	Data   []float64 `json:"data"`
}

// PressureBucket is one equal-width bin of the pressure distribution
type PressureBucket struct {
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Count int     `json:"count"`
}

// PressureDistribution holds the bucketed pressure histogram
type PressureDistribution struct {
	Labels  []string         `json:"labels"`
	Data    []int            `json:"data"`
	Buckets []PressureBucket `json:"buckets"`
}

// DomainSummaryResult is the fixed chemical-equipment aggregate
type DomainSummaryResult struct {
	TotalEquipment            int                  `json:"total_equipment"`
	AverageFlowrate           *float64             `json:"average_flowrate"`
	AverageTemperature        *float64             `json:"average_temperature"`
	DominantEquipmentType     *string              `json:"dominant_equipment_type"`
	EquipmentTypeDistribution TypeDistribution     `json:"equipment_type_distribution"`
	TemperatureByEquipment    GroupMeans           `json:"temperature_by_equipment"`
	PressureDistribution      PressureDistribution `json:"pressure_distribution"`
}

// DomainSummary computes the fixed equipment aggregates directly over raw
// rows, coercing the Flowrate/Pressure/Temperature columns numerically and
// skipping values that fail to coerce.
func DomainSummary(rows []map[string]interface{}) *DomainSummaryResult {
	result := &DomainSummaryResult{
		TotalEquipment: len(rows),
		EquipmentTypeDistribution: TypeDistribution{
			Labels: []string{}, Data: []int{}, BackgroundColor: []string{},
		},
		TemperatureByEquipment: GroupMeans{Labels: []string{}, Data: []float64{}},
		PressureDistribution: PressureDistribution{
			Labels: []string{}, Data: []int{}, Buckets: []PressureBucket{},
		},
	}

	result.AverageFlowrate = columnMean(rows, ColFlowrate)
	result.AverageTemperature = columnMean(rows, ColTemperature)

	if hasColumn(rows, ColType) {
		counted := countValues(columnStrings(rows, ColType))
		if len(counted) > 0 {
			dominant := counted[0].value
			result.DominantEquipmentType = &dominant
		}
		for i, vc := range counted {
			result.EquipmentTypeDistribution.Labels = append(result.EquipmentTypeDistribution.Labels, vc.value)
			result.EquipmentTypeDistribution.Data = append(result.EquipmentTypeDistribution.Data, vc.count)
			if i < len(EquipmentTypePalette) {
				result.EquipmentTypeDistribution.BackgroundColor = append(
					result.EquipmentTypeDistribution.BackgroundColor, EquipmentTypePalette[i])
			}
		}
	}

	if hasColumn(rows, ColEquipmentName) && hasColumn(rows, ColTemperature) {
		result.TemperatureByEquipment = temperatureByEquipment(rows)
	}

	if hasColumn(rows, ColPressure) {
		result.PressureDistribution = pressureDistribution(rows)
	}

	return result
}

// hasColumn reports whether any row carries the key
func hasColumn(rows []map[string]interface{}, col string) bool {
	for _, row := range rows {
		if _, ok := row[col]; ok {
			return true
		}
	}
	return false
}

// columnStrings collects the non-missing display values of a raw column
func columnStrings(rows []map[string]interface{}, col string) []string {
	var out []string
	for _, row := range rows {
		if s, ok := table.ParseString(row[col]); ok {
			out = append(out, s)
		}
	}
	return out
}

// columnNumeric collects the numerically-coerced, non-missing values of a
// raw column
func columnNumeric(rows []map[string]interface{}, col string) []float64 {
	var out []float64
	for _, row := range rows {
		if v, ok := table.ParseNumeric(row[col]); ok {
			out = append(out, v)
		}
	}
	return out
}

// columnMean averages a numerically-coerced column, rounded to 2 decimals.
// Absent or entirely non-numeric columns yield nil.
func columnMean(rows []map[string]interface{}, col string) *float64 {
	if !hasColumn(rows, col) {
		return nil
	}
	values := columnNumeric(rows, col)
	if len(values) == 0 {
		return nil
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	mean := roundTo(sum/float64(len(values)), 2)
	return &mean
}

// temperatureByEquipment averages Temperature grouped by Equipment Name,
// group keys in ascending order. Groups with no numeric temperature
// report 0.
func temperatureByEquipment(rows []map[string]interface{}) GroupMeans {
	sums := make(map[string]float64)
	counts := make(map[string]int)
	var names []string
	for _, row := range rows {
		name, ok := table.ParseString(row[ColEquipmentName])
		if !ok {
			continue
		}
		if _, seen := counts[name]; !seen {
			names = append(names, name)
			counts[name] = 0
		}
		if v, numeric := table.ParseNumeric(row[ColTemperature]); numeric {
			sums[name] += v
			counts[name]++
		}
	}
	sort.Strings(names)

	out := GroupMeans{Labels: names, Data: make([]float64, 0, len(names))}
	if names == nil {
		out.Labels = []string{}
	}
	for _, name := range names {
		mean := 0.0
		if counts[name] > 0 {
			mean = roundTo(sums[name]/float64(counts[name]), 2)
		}
		out.Data = append(out.Data, mean)
	}
	return out
}

// pressureDistribution buckets coerced pressure values into 5 equal-width
// right-closed bins. All-identical values collapse into a single bucket
// spanning that one value.
func pressureDistribution(rows []map[string]interface{}) PressureDistribution {
	dist := PressureDistribution{
		Labels: []string{}, Data: []int{}, Buckets: []PressureBucket{},
	}
	values := columnNumeric(rows, ColPressure)
	if len(values) == 0 {
		return dist
	}

	min, max := values[0], values[0]
	for _, v := range values[1:] {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}

	if min == max {
		dist.Labels = []string{fmt.Sprintf("%.1f", min)}
		dist.Data = []int{len(values)}
		dist.Buckets = []PressureBucket{{Min: min, Max: max, Count: len(values)}}
		return dist
	}

	width := (max - min) / pressureBucketCount
	counts := make([]int, pressureBucketCount)
	for _, v := range values {
		// right-closed bins: a value on an interior edge belongs to the
		// lower bucket, and the first bucket is closed on both ends
		idx := int(math.Ceil((v-min)/width)) - 1
		if idx < 0 {
			idx = 0
		}
		if idx >= pressureBucketCount {
			idx = pressureBucketCount - 1
		}
		counts[idx]++
	}

	for i := 0; i < pressureBucketCount; i++ {
		lo := min + width*float64(i)
		hi := min + width*float64(i+1)
		if i == pressureBucketCount-1 {
			hi = max
		}
		dist.Labels = append(dist.Labels, fmt.Sprintf("%.1f-%.1f", lo, hi))
		dist.Data = append(dist.Data, counts[i])
		dist.Buckets = append(dist.Buckets, PressureBucket{Min: lo, Max: hi, Count: counts[i]})
	}
	return dist
}
