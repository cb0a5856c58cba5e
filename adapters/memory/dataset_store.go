// Package memory provides an in-memory dataset store. It backs tests and
// lets the server run without a database connection.
package memory

import (
	"context"
	"sort"
	"sync"

	"chemviz/domain/core"
	"chemviz/domain/dataset"
	"chemviz/ports"
)

type datasetStore struct {
	mu       sync.RWMutex
	datasets map[core.DatasetID]*dataset.Dataset
}

// NewDatasetStore creates an empty in-memory dataset store
func NewDatasetStore() ports.DatasetStore {
	return &datasetStore{datasets: make(map[core.DatasetID]*dataset.Dataset)}
}

func (s *datasetStore) Create(ctx context.Context, ds *dataset.Dataset) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := *ds
	s.datasets[ds.ID] = &stored
	return nil
}

func (s *datasetStore) GetByID(ctx context.Context, id core.DatasetID) (*dataset.Dataset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ds, ok := s.datasets[id]
	if !ok {
		return nil, core.ErrDatasetNotFound
	}
	copied := *ds
	return &copied, nil
}

func (s *datasetStore) Update(ctx context.Context, ds *dataset.Dataset) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.datasets[ds.ID]; !ok {
		return core.ErrDatasetNotFound
	}
	stored := *ds
	s.datasets[ds.ID] = &stored
	return nil
}

func (s *datasetStore) Delete(ctx context.Context, id core.DatasetID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.datasets[id]; !ok {
		return core.ErrDatasetNotFound
	}
	delete(s.datasets, id)
	return nil
}

func (s *datasetStore) List(ctx context.Context, limit int) ([]*dataset.Dataset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sorted := s.sortedByUploadDesc()
	if limit > 0 && len(sorted) > limit {
		sorted = sorted[:limit]
	}
	result := make([]*dataset.Dataset, 0, len(sorted))
	for _, ds := range sorted {
		copied := *ds
		result = append(result, &copied)
	}
	return result, nil
}

func (s *datasetStore) Activate(ctx context.Context, id core.DatasetID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	target, ok := s.datasets[id]
	if !ok {
		return core.ErrDatasetNotFound
	}
	for _, ds := range s.datasets {
		ds.IsActive = false
	}
	target.IsActive = true
	return nil
}

func (s *datasetStore) GetActive(ctx context.Context) (*dataset.Dataset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var active *dataset.Dataset
	for _, ds := range s.datasets {
		if !ds.IsActive {
			continue
		}
		if active == nil || ds.UploadedAt.After(active.UploadedAt) {
			active = ds
		}
	}
	if active == nil {
		return nil, core.ErrNoActiveDataset
	}
	copied := *active
	return &copied, nil
}

func (s *datasetStore) EnforceHistoryLimit(ctx context.Context, max int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sorted := s.sortedByUploadDesc()
	for _, ds := range sorted[minInt(max, len(sorted)):] {
		delete(s.datasets, ds.ID)
	}
	return nil
}

// sortedByUploadDesc returns datasets newest first. Callers must hold the lock.
func (s *datasetStore) sortedByUploadDesc() []*dataset.Dataset {
	sorted := make([]*dataset.Dataset, 0, len(s.datasets))
	for _, ds := range s.datasets {
		sorted = append(sorted, ds)
	}
	sort.Slice(sorted, func(i, j int) bool {
		if !sorted[i].UploadedAt.Equal(sorted[j].UploadedAt) {
			return sorted[i].UploadedAt.After(sorted[j].UploadedAt)
		}
		return sorted[i].ID > sorted[j].ID
	})
	return sorted
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
