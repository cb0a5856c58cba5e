// Package dataset defines the uploaded-dataset entity and its lifecycle
// states. Parsed rows are stored alongside the record as JSON so analytics
// requests never re-read the original file.
package dataset

import (
	"time"

	"chemviz/domain/core"
	"chemviz/domain/table"
)

// Status represents the processing state of a dataset
type Status string

const (
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// RequiredColumns is the chemical-equipment schema expected of uploads.
// Missing columns downgrade the upload to a warning, not a rejection.
var RequiredColumns = []string{
	"Equipment Name", "Type", "Flowrate", "Pressure", "Temperature",
}

// PreviewRowCount caps how many rows are stored as the quick preview
const PreviewRowCount = 10

// Dataset represents one uploaded CSV/Excel file with its parsed contents
type Dataset struct {
	ID               core.DatasetID              `json:"id"`
	Name             string                      `json:"name"`
	OriginalFilename string                      `json:"original_filename"`
	FileSize         int64                       `json:"file_size"`
	RowCount         int                         `json:"row_count"`
	ColumnCount      int                         `json:"column_count"`
	Columns          []string                    `json:"columns"`
	ColumnTypes      map[string]table.ColumnType `json:"column_types"`
	DataPreview      []map[string]interface{}    `json:"data_preview"`
	Rows             []map[string]interface{}    `json:"data_json"`
	Status           Status                      `json:"processing_status"`
	ProcessingError  string                      `json:"processing_error,omitempty"`
	IsActive         bool                        `json:"is_active"`
	UploadedAt       time.Time                   `json:"uploaded_at"`
	UpdatedAt        time.Time                   `json:"updated_at"`
}

// New creates a dataset record in the processing state
func New(name, filename string, fileSize int64) *Dataset {
	now := time.Now().UTC()
	return &Dataset{
		ID:               core.DatasetID(core.NewID()),
		Name:             name,
		OriginalFilename: filename,
		FileSize:         fileSize,
		Status:           StatusProcessing,
		UploadedAt:       now,
		UpdatedAt:        now,
	}
}

// MarkCompleted transitions the dataset out of the processing state
func (d *Dataset) MarkCompleted() {
	d.Status = StatusCompleted
	d.ProcessingError = ""
	d.UpdatedAt = time.Now().UTC()
}

// MarkFailed records a processing failure
func (d *Dataset) MarkFailed(reason string) {
	d.Status = StatusFailed
	d.ProcessingError = reason
	d.UpdatedAt = time.Now().UTC()
}

// IsReady reports whether the dataset can serve analytics requests
func (d *Dataset) IsReady() bool {
	return d.Status == StatusCompleted
}

// HasData reports whether parsed rows are available
func (d *Dataset) HasData() bool {
	return len(d.Rows) > 0
}

// Preview returns the first rows of the dataset for display
func Preview(rows []map[string]interface{}) []map[string]interface{} {
	if len(rows) <= PreviewRowCount {
		return rows
	}
	return rows[:PreviewRowCount]
}

// ColumnValidation reports how an upload's header compares against the
// equipment schema
type ColumnValidation struct {
	IsValid         bool     `json:"is_valid"`
	RequiredColumns []string `json:"required_columns"`
	FoundColumns    []string `json:"found_columns"`
	MissingColumns  []string `json:"missing_columns"`
	ExtraColumns    []string `json:"extra_columns"`
}

// ValidateColumns checks the declared columns against RequiredColumns
func ValidateColumns(columns []string) ColumnValidation {
	found := make(map[string]bool, len(columns))
	for _, col := range columns {
		found[col] = true
	}

	validation := ColumnValidation{
		RequiredColumns: RequiredColumns,
		FoundColumns:    columns,
		MissingColumns:  []string{},
		ExtraColumns:    []string{},
	}
	for _, col := range RequiredColumns {
		if !found[col] {
			validation.MissingColumns = append(validation.MissingColumns, col)
		}
	}
	required := make(map[string]bool, len(RequiredColumns))
	for _, col := range RequiredColumns {
		required[col] = true
	}
	for _, col := range columns {
		if !required[col] {
			validation.ExtraColumns = append(validation.ExtraColumns, col)
		}
	}
	validation.IsValid = len(validation.MissingColumns) == 0
	return validation
}
