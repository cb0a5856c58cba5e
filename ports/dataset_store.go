package ports

import (
	"context"

	"chemviz/domain/core"
	"chemviz/domain/dataset"
)

// DatasetStore defines the interface for dataset persistence. The analytics
// core only ever reads through it; all writes happen in the upload and
// lifecycle handlers.
type DatasetStore interface {
	// Core CRUD operations
	Create(ctx context.Context, ds *dataset.Dataset) error
	GetByID(ctx context.Context, id core.DatasetID) (*dataset.Dataset, error)
	Update(ctx context.Context, ds *dataset.Dataset) error
	Delete(ctx context.Context, id core.DatasetID) error

	// List returns the most recent datasets, newest first
	List(ctx context.Context, limit int) ([]*dataset.Dataset, error)

	// Active-dataset management
	Activate(ctx context.Context, id core.DatasetID) error
	GetActive(ctx context.Context) (*dataset.Dataset, error)

	// EnforceHistoryLimit deletes the oldest datasets beyond max
	EnforceHistoryLimit(ctx context.Context, max int) error
}
