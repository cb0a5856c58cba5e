// Package tabular parses uploaded CSV and Excel files into row-oriented
// records with inferred column types.
package tabular

import (
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"chemviz/domain/table"
	"chemviz/internal/errors"
)

// ParseResult holds the parsed contents of one uploaded file
type ParseResult struct {
	Columns []string
	Types   map[string]table.ColumnType
	Rows    []map[string]interface{}
}

// Reader parses tabular uploads. The format is picked from the filename
// extension.
type Reader struct{}

// NewReader creates a tabular file reader
func NewReader() *Reader {
	return &Reader{}
}

// SupportedExtensions lists the upload formats the reader accepts
var SupportedExtensions = []string{".csv", ".xlsx", ".xls"}

// Supports reports whether the filename has a parseable extension
func (r *Reader) Supports(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, supported := range SupportedExtensions {
		if ext == supported {
			return true
		}
	}
	return false
}

// Parse reads the upload and returns columns, inferred types and rows
func (r *Reader) Parse(filename string, reader io.Reader) (*ParseResult, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".csv":
		return r.parseCSV(reader)
	case ".xlsx", ".xls":
		return r.parseExcel(reader)
	default:
		return nil, errors.InvalidInput(
			fmt.Sprintf("unsupported file type %q, expected one of %s", ext, strings.Join(SupportedExtensions, ", ")))
	}
}

func (r *Reader) parseCSV(reader io.Reader) (*ParseResult, error) {
	csvReader := csv.NewReader(reader)
	csvReader.FieldsPerRecord = -1

	records, err := csvReader.ReadAll()
	if err != nil {
		return nil, errors.ParseError("failed to read CSV file", err)
	}
	return buildResult(records)
}

func (r *Reader) parseExcel(reader io.Reader) (*ParseResult, error) {
	f, err := excelize.OpenReader(reader)
	if err != nil {
		return nil, errors.ParseError("failed to open Excel file", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, errors.ParseError("Excel file has no sheets", nil)
	}
	records, err := f.GetRows(sheet)
	if err != nil {
		return nil, errors.ParseError("failed to read Excel sheet", err)
	}
	return buildResult(records)
}

// buildResult turns raw string records into typed rows. The first record is
// the header; empty cells become nil so analytics treats them as missing.
func buildResult(records [][]string) (*ParseResult, error) {
	if len(records) == 0 {
		return nil, errors.ParseError("file is empty", nil)
	}

	columns := make([]string, 0, len(records[0]))
	for i, header := range records[0] {
		name := strings.TrimSpace(header)
		if name == "" {
			name = fmt.Sprintf("Column %d", i+1)
		}
		columns = append(columns, name)
	}
	if len(records) < 2 {
		return nil, errors.ParseError("file must have a header row and at least one data row", nil)
	}

	rows := make([]map[string]interface{}, 0, len(records)-1)
	rawColumns := make(map[string][]interface{}, len(columns))
	for _, record := range records[1:] {
		row := make(map[string]interface{}, len(columns))
		for i, col := range columns {
			var value interface{}
			if i < len(record) {
				cell := strings.TrimSpace(record[i])
				if cell != "" {
					value = cell
				}
			}
			row[col] = value
			rawColumns[col] = append(rawColumns[col], value)
		}
		rows = append(rows, row)
	}

	types := make(map[string]table.ColumnType, len(columns))
	for _, col := range columns {
		types[col] = table.InferColumnType(rawColumns[col])
	}

	return &ParseResult{Columns: columns, Types: types, Rows: rows}, nil
}
