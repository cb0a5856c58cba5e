package table

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// ColumnType classifies a column for aggregation purposes
type ColumnType string

const (
	TypeInteger  ColumnType = "integer"
	TypeFloat    ColumnType = "float"
	TypeDatetime ColumnType = "datetime"
	TypeBoolean  ColumnType = "boolean"
	TypeString   ColumnType = "string"
)

// IsNumeric reports whether numeric statistics apply to the type
func (t ColumnType) IsNumeric() bool {
	return t == TypeInteger || t == TypeFloat
}

// timestampFormats are the date/time layouts recognized during inference
// and coercion, most specific first.
var timestampFormats = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"01/02/2006",
	"2006/01/02",
	"02-Jan-2006",
}

// InferColumnType classifies raw cell values into a ColumnType.
//
// The checks run in order of restrictiveness: a column where every
// non-missing value is an integer literal is Integer; failing that, all
// floats gives Float, all date/time literals gives Datetime, all boolean
// literals gives Boolean, and anything else is String. A column with no
// non-missing values defaults to String.
func InferColumnType(values []interface{}) ColumnType {
	allInt := true
	allFloat := true
	allTime := true
	allBool := true
	seen := 0

	for _, raw := range values {
		s, missing := rawString(raw)
		if missing {
			continue
		}
		seen++

		if allInt && !isIntLiteral(raw, s) {
			allInt = false
		}
		if allFloat {
			if _, ok := parseFloatLiteral(raw, s); !ok {
				allFloat = false
			}
		}
		if allTime {
			if _, ok := parseTimestamp(s); !ok {
				allTime = false
			}
		}
		if allBool {
			if _, ok := parseBoolLiteral(raw, s); !ok {
				allBool = false
			}
		}
		if !allInt && !allFloat && !allTime && !allBool {
			return TypeString
		}
	}

	if seen == 0 {
		return TypeString
	}
	switch {
	case allInt:
		return TypeInteger
	case allFloat:
		return TypeFloat
	case allTime:
		return TypeDatetime
	case allBool:
		return TypeBoolean
	}
	return TypeString
}

// InferColumnTypes derives the type map for every declared column
func InferColumnTypes(rows []map[string]interface{}, columns []string) map[string]ColumnType {
	types := make(map[string]ColumnType, len(columns))
	for _, col := range columns {
		values := make([]interface{}, 0, len(rows))
		for _, row := range rows {
			values = append(values, row[col])
		}
		types[col] = InferColumnType(values)
	}
	return types
}

// ParseNumeric coerces a raw cell value to float64. Null markers and
// unparsable values report ok=false instead of an error.
func ParseNumeric(raw interface{}) (float64, bool) {
	s, missing := rawString(raw)
	if missing {
		return 0, false
	}
	return parseFloatLiteral(raw, s)
}

// ParseString coerces a raw cell value to its trimmed string form.
// Null markers report ok=false.
func ParseString(raw interface{}) (string, bool) {
	s, missing := rawString(raw)
	return s, !missing
}

// rawString normalizes a raw cell value to its string form. The empty
// string and nil are the upstream null markers.
func rawString(raw interface{}) (s string, missing bool) {
	if raw == nil {
		return "", true
	}
	switch v := raw.(type) {
	case string:
		s = strings.TrimSpace(v)
	case float64:
		s = strconv.FormatFloat(v, 'g', -1, 64)
	case float32:
		s = strconv.FormatFloat(float64(v), 'g', -1, 64)
	case int:
		s = strconv.Itoa(v)
	case int64:
		s = strconv.FormatInt(v, 10)
	case bool:
		s = strconv.FormatBool(v)
	default:
		s = strings.TrimSpace(fmt.Sprintf("%v", v))
	}
	if s == "" {
		return "", true
	}
	return s, false
}

// isIntLiteral reports whether the value is an integer literal: no
// fractional part, no exponent.
func isIntLiteral(raw interface{}, s string) bool {
	switch v := raw.(type) {
	case int, int64:
		return true
	case float64:
		// JSON numbers arrive as float64; whole values count as integers
		return v == math.Trunc(v) && !math.IsInf(v, 0)
	}
	_, err := strconv.ParseInt(s, 10, 64)
	return err == nil
}

// parseFloatLiteral attempts strict numeric parsing, rejecting Inf/NaN
func parseFloatLiteral(raw interface{}, s string) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		return v, !math.IsInf(v, 0) && !math.IsNaN(v)
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case bool:
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

// parseTimestamp attempts the recognized date/time layouts in order
func parseTimestamp(s string) (time.Time, bool) {
	for _, layout := range timestampFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// parseBoolLiteral accepts the textual boolean forms
func parseBoolLiteral(raw interface{}, s string) (bool, bool) {
	if v, ok := raw.(bool); ok {
		return v, true
	}
	switch strings.ToLower(s) {
	case "true", "yes", "y":
		return true, true
	case "false", "no", "n":
		return false, true
	}
	return false, false
}
