package badger

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"

	"github.com/rstatelabs/playnews/internal/interfaces"
	"github.com/rstatelabs/playnews/internal/models"
)

func newTestDB(t *testing.T) *BadgerDB {
	t.Helper()

	tmpDir := t.TempDir()

	options := badgerhold.DefaultOptions
	options.Dir = tmpDir
	options.ValueDir = tmpDir
	options.Logger = nil

	store, err := badgerhold.Open(options)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })

	return &BadgerDB{store: store, logger: arbor.NewLogger()}
}

func testRecord(sourceID, title, url string) *models.NewsRecord {
	return &models.NewsRecord{
		SourceID:    sourceID,
		City:        "Austin",
		Title:       title,
		URL:         url,
		PublishDate: time.Now().UTC().Format(time.RFC3339),
	}
}

func TestInsertWithDedup(t *testing.T) {
	db := newTestDB(t)
	logger := arbor.NewLogger()
	storage := NewNewsStorage(db, logger, filepath.Join(t.TempDir(), "failed"))
	ctx := context.Background()

	first := []*models.NewsRecord{
		testRecord("patch", "Article A", "https://example.com/a"),
		testRecord("patch", "Article B", "https://example.com/b"),
	}

	count, inserted, err := storage.InsertWithDedup(ctx, first)
	if err != nil {
		t.Fatalf("InsertWithDedup failed: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 inserted, got %d", count)
	}
	for _, rec := range inserted {
		if rec.ID == 0 {
			t.Errorf("record %q did not get an ID", rec.Title)
		}
		if rec.Status != models.StatusNew {
			t.Errorf("record %q status = %q, want %q", rec.Title, rec.Status, models.StatusNew)
		}
		if rec.Language != models.DefaultLanguage {
			t.Errorf("record %q language = %q, want %q", rec.Title, rec.Language, models.DefaultLanguage)
		}
		if rec.CrawlTime.IsZero() || rec.CreatedAt.IsZero() {
			t.Errorf("record %q missing timestamps", rec.Title)
		}
	}

	// Re-inserting URL variants of stored articles must be a no-op.
	second := []*models.NewsRecord{
		testRecord("patch", "Article A again", "http://example.com/a"),
		testRecord("patch", "Article B again", "https://example.com/b/"),
		testRecord("patch", "Article C", "https://example.com/c"),
	}

	count, inserted, err = storage.InsertWithDedup(ctx, second)
	if err != nil {
		t.Fatalf("InsertWithDedup failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 inserted on second batch, got %d", count)
	}
	if inserted[0].Title != "Article C" {
		t.Errorf("expected only Article C to be inserted, got %q", inserted[0].Title)
	}
}

func TestInsertWithDedupWithinBatch(t *testing.T) {
	db := newTestDB(t)
	storage := NewNewsStorage(db, arbor.NewLogger(), filepath.Join(t.TempDir(), "failed"))

	records := []*models.NewsRecord{
		testRecord("patch", "Original", "https://example.com/story"),
		testRecord("patch", "Variant", "https://example.com/story?utm=1"),
		testRecord("patch", "No URL", ""),
	}

	count, inserted, err := storage.InsertWithDedup(context.Background(), records)
	if err != nil {
		t.Fatalf("InsertWithDedup failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 inserted, got %d", count)
	}
	if inserted[0].Title != "Original" {
		t.Errorf("first occurrence should win, got %q", inserted[0].Title)
	}
}

func TestInsertWithDedupEmptyBatch(t *testing.T) {
	db := newTestDB(t)
	storage := NewNewsStorage(db, arbor.NewLogger(), filepath.Join(t.TempDir(), "failed"))

	count, inserted, err := storage.InsertWithDedup(context.Background(), nil)
	if err != nil {
		t.Fatalf("InsertWithDedup failed: %v", err)
	}
	if count != 0 || len(inserted) != 0 {
		t.Fatalf("expected no-op for empty batch, got count=%d", count)
	}
}

func TestQueryRecent(t *testing.T) {
	db := newTestDB(t)
	storage := NewNewsStorage(db, arbor.NewLogger(), filepath.Join(t.TempDir(), "failed"))
	ctx := context.Background()

	now := time.Now().UTC()
	fresh := testRecord("patch", "Fresh", "https://example.com/fresh")
	fresh.PublishDate = now.Add(-2 * time.Hour).Format(time.RFC3339)
	fresh.ZipCode = "78701"

	older := testRecord("newsbreak", "Older", "https://example.com/older")
	older.PublishDate = now.AddDate(0, 0, -3).Format(time.RFC3339)
	older.ZipCode = "78702"

	ancient := testRecord("patch", "Ancient", "https://example.com/ancient")
	ancient.PublishDate = now.AddDate(0, 0, -30).Format(time.RFC3339)

	if _, _, err := storage.InsertWithDedup(ctx, []*models.NewsRecord{fresh, older, ancient}); err != nil {
		t.Fatal(err)
	}

	records, err := storage.QueryRecent(ctx, interfaces.RecentQuery{Days: 7})
	if err != nil {
		t.Fatalf("QueryRecent failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 recent records, got %d", len(records))
	}
	if records[0].Title != "Fresh" || records[1].Title != "Older" {
		t.Errorf("expected newest-first ordering, got %q then %q", records[0].Title, records[1].Title)
	}

	records, err = storage.QueryRecent(ctx, interfaces.RecentQuery{Days: 7, ZipCode: "78702"})
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 || records[0].Title != "Older" {
		t.Errorf("zip filter returned wrong records: %v", records)
	}

	records, err = storage.QueryRecent(ctx, interfaces.RecentQuery{Days: 7, SourceID: "patch"})
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 || records[0].Title != "Fresh" {
		t.Errorf("source filter returned wrong records: %v", records)
	}
}

func TestSpoolFailedInserts(t *testing.T) {
	db := newTestDB(t)
	failedDir := filepath.Join(t.TempDir(), "failed")
	storage := NewNewsStorage(db, arbor.NewLogger(), failedDir).(*NewsStorage)

	storage.spoolFailedInserts([]*models.NewsRecord{
		testRecord("patch", "Doomed", "https://example.com/doomed"),
	})

	entries, err := os.ReadDir(failedDir)
	if err != nil {
		t.Fatalf("failed-inserts dir not created: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 spool file, got %d", len(entries))
	}
	if filepath.Ext(entries[0].Name()) != ".json" {
		t.Errorf("spool file should be JSON, got %s", entries[0].Name())
	}
}
