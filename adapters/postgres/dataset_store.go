// Package postgres implements the dataset store on PostgreSQL. Parsed rows
// and column metadata are stored as JSONB next to the record.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"chemviz/domain/core"
	"chemviz/domain/dataset"
	"chemviz/domain/table"
	"chemviz/ports"
)

// datasetStore implements the DatasetStore interface
type datasetStore struct {
	db *sqlx.DB
}

// NewDatasetStore creates a new PostgreSQL-backed dataset store
func NewDatasetStore(db *sqlx.DB) ports.DatasetStore {
	return &datasetStore{db: db}
}

// Connect opens and pings a PostgreSQL connection
func Connect(url string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	return db, nil
}

// EnsureSchema creates the datasets table when absent
func EnsureSchema(ctx context.Context, db *sqlx.DB) error {
	schema := `CREATE TABLE IF NOT EXISTS datasets (
		id UUID PRIMARY KEY,
		name TEXT NOT NULL,
		original_filename TEXT NOT NULL,
		file_size BIGINT NOT NULL DEFAULT 0,
		row_count INTEGER NOT NULL DEFAULT 0,
		column_count INTEGER NOT NULL DEFAULT 0,
		columns JSONB NOT NULL DEFAULT '[]',
		column_types JSONB NOT NULL DEFAULT '{}',
		data_preview JSONB NOT NULL DEFAULT '[]',
		data_json JSONB NOT NULL DEFAULT '[]',
		processing_status TEXT NOT NULL DEFAULT 'processing',
		processing_error TEXT NOT NULL DEFAULT '',
		is_active BOOLEAN NOT NULL DEFAULT FALSE,
		uploaded_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_datasets_uploaded_at ON datasets (uploaded_at DESC);`

	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to ensure datasets schema: %w", err)
	}
	return nil
}

// Create inserts a new dataset into the database
func (s *datasetStore) Create(ctx context.Context, ds *dataset.Dataset) error {
	columnsJSON, columnTypesJSON, previewJSON, rowsJSON, err := marshalDataset(ds)
	if err != nil {
		return err
	}

	query := `INSERT INTO datasets (
		id, name, original_filename, file_size, row_count, column_count,
		columns, column_types, data_preview, data_json,
		processing_status, processing_error, is_active, uploaded_at, updated_at
	) VALUES (
		$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15
	)`

	_, err = s.db.ExecContext(ctx, query,
		ds.ID, ds.Name, ds.OriginalFilename, ds.FileSize, ds.RowCount, ds.ColumnCount,
		columnsJSON, columnTypesJSON, previewJSON, rowsJSON,
		ds.Status, ds.ProcessingError, ds.IsActive, ds.UploadedAt, ds.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create dataset: %w", err)
	}
	return nil
}

// GetByID retrieves a dataset by its ID
func (s *datasetStore) GetByID(ctx context.Context, id core.DatasetID) (*dataset.Dataset, error) {
	query := selectColumns + ` FROM datasets WHERE id = $1`
	row := s.db.QueryRowContext(ctx, query, id)
	ds, err := scanDataset(row)
	if err == sql.ErrNoRows {
		return nil, core.ErrDatasetNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get dataset: %w", err)
	}
	return ds, nil
}

// Update persists changes to an existing dataset
func (s *datasetStore) Update(ctx context.Context, ds *dataset.Dataset) error {
	columnsJSON, columnTypesJSON, previewJSON, rowsJSON, err := marshalDataset(ds)
	if err != nil {
		return err
	}

	query := `UPDATE datasets SET
		name = $2, original_filename = $3, file_size = $4, row_count = $5,
		column_count = $6, columns = $7, column_types = $8, data_preview = $9,
		data_json = $10, processing_status = $11, processing_error = $12,
		is_active = $13, updated_at = $14
	WHERE id = $1`

	result, err := s.db.ExecContext(ctx, query,
		ds.ID, ds.Name, ds.OriginalFilename, ds.FileSize, ds.RowCount,
		ds.ColumnCount, columnsJSON, columnTypesJSON, previewJSON,
		rowsJSON, ds.Status, ds.ProcessingError, ds.IsActive, ds.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update dataset: %w", err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return core.ErrDatasetNotFound
	}
	return nil
}

// Delete removes a dataset by ID
func (s *datasetStore) Delete(ctx context.Context, id core.DatasetID) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM datasets WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete dataset: %w", err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return core.ErrDatasetNotFound
	}
	return nil
}

// List returns the most recent datasets, newest first
func (s *datasetStore) List(ctx context.Context, limit int) ([]*dataset.Dataset, error) {
	query := selectColumns + ` FROM datasets ORDER BY uploaded_at DESC LIMIT $1`
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list datasets: %w", err)
	}
	defer rows.Close()

	var datasets []*dataset.Dataset
	for rows.Next() {
		ds, err := scanDataset(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan dataset: %w", err)
		}
		datasets = append(datasets, ds)
	}
	return datasets, rows.Err()
}

// Activate marks one dataset active and deactivates the rest
func (s *datasetStore) Activate(ctx context.Context, id core.DatasetID) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `UPDATE datasets SET is_active = FALSE WHERE id <> $1`, id); err != nil {
		return fmt.Errorf("failed to deactivate datasets: %w", err)
	}
	result, err := tx.ExecContext(ctx, `UPDATE datasets SET is_active = TRUE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to activate dataset: %w", err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return core.ErrDatasetNotFound
	}
	return tx.Commit()
}

// GetActive returns the currently active dataset
func (s *datasetStore) GetActive(ctx context.Context) (*dataset.Dataset, error) {
	query := selectColumns + ` FROM datasets WHERE is_active = TRUE ORDER BY uploaded_at DESC LIMIT 1`
	row := s.db.QueryRowContext(ctx, query)
	ds, err := scanDataset(row)
	if err == sql.ErrNoRows {
		return nil, core.ErrNoActiveDataset
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get active dataset: %w", err)
	}
	return ds, nil
}

// EnforceHistoryLimit deletes the oldest datasets beyond max
func (s *datasetStore) EnforceHistoryLimit(ctx context.Context, max int) error {
	query := `DELETE FROM datasets WHERE id IN (
		SELECT id FROM datasets ORDER BY uploaded_at DESC OFFSET $1
	)`
	if _, err := s.db.ExecContext(ctx, query, max); err != nil {
		return fmt.Errorf("failed to enforce history limit: %w", err)
	}
	return nil
}

const selectColumns = `SELECT
	id, name, original_filename, file_size, row_count, column_count,
	columns, column_types, data_preview, data_json,
	processing_status, COALESCE(processing_error, '') as processing_error,
	is_active, uploaded_at, updated_at`

// rowScanner abstracts *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanDataset(row rowScanner) (*dataset.Dataset, error) {
	var ds dataset.Dataset
	var columnsJSON, columnTypesJSON, previewJSON, rowsJSON []byte

	err := row.Scan(
		&ds.ID, &ds.Name, &ds.OriginalFilename, &ds.FileSize, &ds.RowCount, &ds.ColumnCount,
		&columnsJSON, &columnTypesJSON, &previewJSON, &rowsJSON,
		&ds.Status, &ds.ProcessingError, &ds.IsActive, &ds.UploadedAt, &ds.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(columnsJSON, &ds.Columns); err != nil {
		return nil, fmt.Errorf("failed to unmarshal columns: %w", err)
	}
	if err := json.Unmarshal(columnTypesJSON, &ds.ColumnTypes); err != nil {
		return nil, fmt.Errorf("failed to unmarshal column types: %w", err)
	}
	if err := json.Unmarshal(previewJSON, &ds.DataPreview); err != nil {
		return nil, fmt.Errorf("failed to unmarshal data preview: %w", err)
	}
	if err := json.Unmarshal(rowsJSON, &ds.Rows); err != nil {
		return nil, fmt.Errorf("failed to unmarshal data rows: %w", err)
	}
	return &ds, nil
}

func marshalDataset(ds *dataset.Dataset) (columns, columnTypes, preview, rows []byte, err error) {
	if ds.Columns == nil {
		ds.Columns = []string{}
	}
	if ds.ColumnTypes == nil {
		ds.ColumnTypes = map[string]table.ColumnType{}
	}
	if ds.DataPreview == nil {
		ds.DataPreview = []map[string]interface{}{}
	}
	if ds.Rows == nil {
		ds.Rows = []map[string]interface{}{}
	}

	if columns, err = json.Marshal(ds.Columns); err != nil {
		return nil, nil, nil, nil, fmt.Errorf("failed to marshal columns: %w", err)
	}
	if columnTypes, err = json.Marshal(ds.ColumnTypes); err != nil {
		return nil, nil, nil, nil, fmt.Errorf("failed to marshal column types: %w", err)
	}
	if preview, err = json.Marshal(ds.DataPreview); err != nil {
		return nil, nil, nil, nil, fmt.Errorf("failed to marshal data preview: %w", err)
	}
	if rows, err = json.Marshal(ds.Rows); err != nil {
		return nil, nil, nil, nil, fmt.Errorf("failed to marshal data rows: %w", err)
	}
	return columns, columnTypes, preview, rows, nil
}
