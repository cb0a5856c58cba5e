package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"chemviz/domain/core"
	"chemviz/domain/dataset"
)

func newTestDataset(name string, uploadedAt time.Time) *dataset.Dataset {
	ds := dataset.New(name, name+".csv", 100)
	ds.UploadedAt = uploadedAt
	ds.UpdatedAt = uploadedAt
	return ds
}

func TestCreateAndGetByID(t *testing.T) {
	store := NewDatasetStore()
	ctx := context.Background()

	ds := newTestDataset("run-a", time.Now().UTC())
	if err := store.Create(ctx, ds); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	got, err := store.GetByID(ctx, ds.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Name != "run-a" {
		t.Errorf("expected name run-a, got %s", got.Name)
	}

	// mutating the returned copy must not affect the stored record
	got.Name = "mutated"
	again, err := store.GetByID(ctx, ds.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if again.Name != "run-a" {
		t.Errorf("store record was mutated through a returned copy")
	}
}

func TestGetByIDNotFound(t *testing.T) {
	store := NewDatasetStore()
	_, err := store.GetByID(context.Background(), core.DatasetID("00000000-0000-0000-0000-000000000000"))
	if !errors.Is(err, core.ErrDatasetNotFound) {
		t.Errorf("expected ErrDatasetNotFound, got %v", err)
	}
}

func TestListNewestFirst(t *testing.T) {
	store := NewDatasetStore()
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for i, name := range []string{"oldest", "middle", "newest"} {
		ds := newTestDataset(name, base.Add(time.Duration(i)*time.Hour))
		if err := store.Create(ctx, ds); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}

	datasets, err := store.List(ctx, 10)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(datasets) != 3 {
		t.Fatalf("expected 3 datasets, got %d", len(datasets))
	}
	if datasets[0].Name != "newest" || datasets[2].Name != "oldest" {
		t.Errorf("expected newest-first ordering, got %s..%s", datasets[0].Name, datasets[2].Name)
	}

	limited, err := store.List(ctx, 2)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(limited) != 2 || limited[0].Name != "newest" {
		t.Errorf("expected limit to keep the newest datasets")
	}
}

func TestActivateDeactivatesOthers(t *testing.T) {
	store := NewDatasetStore()
	ctx := context.Background()
	base := time.Now().UTC()

	first := newTestDataset("first", base)
	second := newTestDataset("second", base.Add(time.Minute))
	for _, ds := range []*dataset.Dataset{first, second} {
		if err := store.Create(ctx, ds); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}

	if err := store.Activate(ctx, first.ID); err != nil {
		t.Fatalf("Activate failed: %v", err)
	}
	if err := store.Activate(ctx, second.ID); err != nil {
		t.Fatalf("Activate failed: %v", err)
	}

	active, err := store.GetActive(ctx)
	if err != nil {
		t.Fatalf("GetActive failed: %v", err)
	}
	if active.ID != second.ID {
		t.Errorf("expected second dataset active, got %s", active.Name)
	}

	previous, err := store.GetByID(ctx, first.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if previous.IsActive {
		t.Errorf("activating a dataset must deactivate the others")
	}
}

func TestGetActiveEmpty(t *testing.T) {
	store := NewDatasetStore()
	_, err := store.GetActive(context.Background())
	if !errors.Is(err, core.ErrNoActiveDataset) {
		t.Errorf("expected ErrNoActiveDataset, got %v", err)
	}
}

func TestEnforceHistoryLimit(t *testing.T) {
	store := NewDatasetStore()
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	names := []string{"a", "b", "c", "d", "e", "f", "g"}
	for i, name := range names {
		ds := newTestDataset(name, base.Add(time.Duration(i)*time.Minute))
		if err := store.Create(ctx, ds); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}

	if err := store.EnforceHistoryLimit(ctx, 5); err != nil {
		t.Fatalf("EnforceHistoryLimit failed: %v", err)
	}

	remaining, err := store.List(ctx, 100)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(remaining) != 5 {
		t.Fatalf("expected 5 datasets after pruning, got %d", len(remaining))
	}
	for _, ds := range remaining {
		if ds.Name == "a" || ds.Name == "b" {
			t.Errorf("expected oldest datasets to be pruned, found %s", ds.Name)
		}
	}
}

func TestDeleteRemovesDataset(t *testing.T) {
	store := NewDatasetStore()
	ctx := context.Background()

	ds := newTestDataset("doomed", time.Now().UTC())
	if err := store.Create(ctx, ds); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := store.Delete(ctx, ds.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := store.GetByID(ctx, ds.ID); !errors.Is(err, core.ErrDatasetNotFound) {
		t.Errorf("expected ErrDatasetNotFound after delete, got %v", err)
	}
	if err := store.Delete(ctx, ds.ID); !errors.Is(err, core.ErrDatasetNotFound) {
		t.Errorf("expected ErrDatasetNotFound on double delete, got %v", err)
	}
}
