package badger

import (
	"context"
	"testing"

	"github.com/ternarybob/arbor"

	"github.com/rstatelabs/playnews/internal/models"
)

func TestSourceStorageActiveFilter(t *testing.T) {
	db := newTestDB(t)
	storage := NewSourceStorage(db, arbor.NewLogger())
	ctx := context.Background()

	sources := []*models.SourceConfig{
		{ID: "patch", SourceName: "Patch", ContentScope: models.ScopeLocalBusiness, IsActive: true, UpdateFrequency: "0 */6 * * *"},
		{ID: "freddiemac", SourceName: "Freddie Mac", ContentScope: models.ScopeRealEstate, IsActive: true, UpdateFrequency: "0 8 * * *"},
		{ID: "dormant", SourceName: "Dormant", ContentScope: models.ScopeHousing, IsActive: false, UpdateFrequency: "0 0 * * *"},
	}
	for _, src := range sources {
		if err := storage.SaveSource(ctx, src); err != nil {
			t.Fatalf("SaveSource(%s) failed: %v", src.ID, err)
		}
	}

	active, err := storage.ListActiveSources(ctx)
	if err != nil {
		t.Fatalf("ListActiveSources failed: %v", err)
	}
	if len(active) != 2 {
		t.Fatalf("expected 2 active sources, got %d", len(active))
	}
	if active[0].ID != "freddiemac" || active[1].ID != "patch" {
		t.Errorf("expected ID-ordered active sources, got %s, %s", active[0].ID, active[1].ID)
	}

	got, err := storage.GetSource(ctx, "dormant")
	if err != nil {
		t.Fatalf("GetSource failed: %v", err)
	}
	if got.IsActive {
		t.Error("dormant source should be inactive")
	}

	if _, err := storage.GetSource(ctx, "missing"); err == nil {
		t.Error("expected error for unknown source")
	}
}

func TestZipCodeRoundTrip(t *testing.T) {
	db := newTestDB(t)
	storage := NewSourceStorage(db, arbor.NewLogger())
	ctx := context.Background()

	input := []string{" 78701 ", "78702", "78701", "", "  "}
	if err := storage.SaveZipCodes(ctx, input); err != nil {
		t.Fatalf("SaveZipCodes failed: %v", err)
	}

	zipCodes, err := storage.ListZipCodes(ctx)
	if err != nil {
		t.Fatalf("ListZipCodes failed: %v", err)
	}
	if len(zipCodes) != 2 {
		t.Fatalf("expected 2 distinct zip codes, got %d: %v", len(zipCodes), zipCodes)
	}
	seen := map[string]bool{}
	for _, z := range zipCodes {
		seen[z] = true
	}
	if !seen["78701"] || !seen["78702"] {
		t.Errorf("unexpected zip codes: %v", zipCodes)
	}
}

func TestTaskLogLifecycle(t *testing.T) {
	db := newTestDB(t)
	storage := NewTaskLogStorage(db, arbor.NewLogger())
	ctx := context.Background()

	id, err := storage.LogTask(ctx, &models.TaskLog{
		TaskType: models.TaskTypeLocalNews,
		Status:   models.TaskStatusRunning,
		SourceID: "patch",
		ZipCode:  "78701",
	})
	if err != nil {
		t.Fatalf("LogTask failed: %v", err)
	}
	if id == "" {
		t.Fatal("expected a task log ID")
	}

	if err := storage.UpdateTask(ctx, id, models.TaskStatusSuccess, 7, ""); err != nil {
		t.Fatalf("UpdateTask failed: %v", err)
	}

	var entry models.TaskLog
	if err := db.Store().Get(id, &entry); err != nil {
		t.Fatalf("failed to read back task log: %v", err)
	}
	if entry.Status != models.TaskStatusSuccess {
		t.Errorf("status = %q, want success", entry.Status)
	}
	if entry.ArticlesCount != 7 {
		t.Errorf("articles_count = %d, want 7", entry.ArticlesCount)
	}
	if entry.CompletedAt == nil {
		t.Error("completed_at should be set after update")
	}

	if err := storage.UpdateTask(ctx, "missing", models.TaskStatusFailed, 0, "boom"); err == nil {
		t.Error("expected error updating unknown task log")
	}
}
