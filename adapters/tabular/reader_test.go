package tabular

import (
	"bytes"
	"strings"
	"testing"

	"chemviz/domain/table"
	"chemviz/internal/errors"
)

const sampleCSV = `Equipment Name,Type,Flowrate,Pressure,Temperature
Pump A,Pump,10.5,2.1,45
Reactor B,Reactor,20.0,,60
Valve C,Valve,,3.0,75
`

func TestParseCSV(t *testing.T) {
	reader := NewReader()
	result, err := reader.Parse("equipment.csv", strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	wantColumns := []string{"Equipment Name", "Type", "Flowrate", "Pressure", "Temperature"}
	if len(result.Columns) != len(wantColumns) {
		t.Fatalf("expected %d columns, got %d", len(wantColumns), len(result.Columns))
	}
	for i, col := range wantColumns {
		if result.Columns[i] != col {
			t.Errorf("column %d: expected %q, got %q", i, col, result.Columns[i])
		}
	}
	if len(result.Rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(result.Rows))
	}

	if result.Types["Flowrate"] != table.TypeFloat {
		t.Errorf("expected Flowrate to infer float, got %s", result.Types["Flowrate"])
	}
	if result.Types["Temperature"] != table.TypeInteger {
		t.Errorf("expected Temperature to infer integer, got %s", result.Types["Temperature"])
	}
	if result.Types["Type"] != table.TypeString {
		t.Errorf("expected Type to infer string, got %s", result.Types["Type"])
	}

	// empty CSV cells come through as nil, not ""
	if result.Rows[1]["Pressure"] != nil {
		t.Errorf("expected empty cell to be nil, got %v", result.Rows[1]["Pressure"])
	}
	if result.Rows[0]["Equipment Name"] != "Pump A" {
		t.Errorf("unexpected first cell: %v", result.Rows[0]["Equipment Name"])
	}
}

func TestParseCSVTrimsWhitespace(t *testing.T) {
	csvData := " Name , Value \n Pump A , 10 \n"
	result, err := NewReader().Parse("data.csv", strings.NewReader(csvData))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if result.Columns[0] != "Name" || result.Columns[1] != "Value" {
		t.Errorf("expected trimmed headers, got %v", result.Columns)
	}
	if result.Rows[0]["Name"] != "Pump A" {
		t.Errorf("expected trimmed cell, got %v", result.Rows[0]["Name"])
	}
}

func TestParseCSVRaggedRows(t *testing.T) {
	csvData := "a,b,c\n1,2\n4,5,6,7\n"
	result, err := NewReader().Parse("data.csv", strings.NewReader(csvData))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(result.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(result.Rows))
	}
	// short rows pad with nil, long rows drop the overflow
	if result.Rows[0]["c"] != nil {
		t.Errorf("expected missing trailing cell to be nil, got %v", result.Rows[0]["c"])
	}
	if result.Rows[1]["c"] != "6" {
		t.Errorf("expected third cell 6, got %v", result.Rows[1]["c"])
	}
}

func TestParseCSVBlankHeaderGetsPlaceholder(t *testing.T) {
	csvData := "a,,c\n1,2,3\n"
	result, err := NewReader().Parse("data.csv", strings.NewReader(csvData))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if result.Columns[1] != "Column 2" {
		t.Errorf("expected placeholder header, got %q", result.Columns[1])
	}
}

func TestParseEmptyFile(t *testing.T) {
	_, err := NewReader().Parse("data.csv", strings.NewReader(""))
	if err == nil {
		t.Fatal("expected error for empty file")
	}
	if errors.GetCode(err) != errors.CodeParseError {
		t.Errorf("expected PARSE_ERROR, got %s", errors.GetCode(err))
	}
}

func TestParseHeaderOnly(t *testing.T) {
	_, err := NewReader().Parse("data.csv", strings.NewReader("a,b,c\n"))
	if err == nil {
		t.Fatal("expected error for header-only file")
	}
}

func TestParseUnsupportedExtension(t *testing.T) {
	_, err := NewReader().Parse("data.json", strings.NewReader("{}"))
	if err == nil {
		t.Fatal("expected error for unsupported extension")
	}
	if errors.GetCode(err) != errors.CodeInvalidInput {
		t.Errorf("expected INVALID_INPUT, got %s", errors.GetCode(err))
	}
}

func TestParseExcelRejectsGarbage(t *testing.T) {
	_, err := NewReader().Parse("data.xlsx", bytes.NewReader([]byte("not a zip archive")))
	if err == nil {
		t.Fatal("expected error for malformed xlsx")
	}
	if errors.GetCode(err) != errors.CodeParseError {
		t.Errorf("expected PARSE_ERROR, got %s", errors.GetCode(err))
	}
}

func TestSupports(t *testing.T) {
	reader := NewReader()
	for _, name := range []string{"a.csv", "b.XLSX", "c.xls"} {
		if !reader.Supports(name) {
			t.Errorf("expected %s to be supported", name)
		}
	}
	for _, name := range []string{"a.json", "b.txt", "noext"} {
		if reader.Supports(name) {
			t.Errorf("expected %s to be unsupported", name)
		}
	}
}
