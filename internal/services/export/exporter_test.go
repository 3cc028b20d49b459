package export

import (
	"encoding/json"
	"os"
	"testing"

	"github.com/ternarybob/arbor"

	"github.com/rstatelabs/playnews/internal/models"
)

func TestExportByDateAndSource(t *testing.T) {
	e := NewExporter(t.TempDir(), arbor.NewLogger())

	records := []*models.NewsRecord{
		{SourceID: "patch", Source: "Patch", Title: "A", PublishDate: "2026-08-30T10:00:00Z"},
		{SourceID: "patch", Source: "Patch", Title: "B", PublishDate: "2026-08-30T18:00:00Z"},
		{SourceID: "newsbreak", Title: "C", PublishDate: "2026-08-29T09:00:00Z"},
		{SourceID: "", Title: "D", PublishDate: ""},
	}

	path, err := e.ExportByDateAndSource(records, "test.json")
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		t.Fatalf("export is not valid JSON: %v", err)
	}

	if snap.TotalArticles != 4 {
		t.Errorf("total = %d", snap.TotalArticles)
	}
	// Groups key on the source name, falling back to the source id.
	if len(snap.Grouped["2026-08-30"]["Patch"]) != 2 {
		t.Errorf("2026-08-30/Patch group = %d records", len(snap.Grouped["2026-08-30"]["Patch"]))
	}
	if len(snap.Grouped["2026-08-29"]["newsbreak"]) != 1 {
		t.Error("record without a source name should group under its source id")
	}
	if len(snap.Grouped["unknown"]["unknown"]) != 1 {
		t.Error("dateless record should land in the unknown bucket")
	}
}

func TestExportSimple(t *testing.T) {
	e := NewExporter(t.TempDir(), arbor.NewLogger())

	path, err := e.ExportSimple([]*models.NewsRecord{{Title: "only"}}, "")
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		t.Fatal(err)
	}
	if len(snap.Articles) != 1 || snap.Articles[0].Title != "only" {
		t.Errorf("articles = %+v", snap.Articles)
	}
}

func TestDatePart(t *testing.T) {
	tests := []struct{ in, want string }{
		{"2026-08-30T10:00:00Z", "2026-08-30"},
		{"2026-08-30", "2026-08-30"},
		{"", "unknown"},
		{"soon", "soon"},
	}
	for _, tt := range tests {
		if got := datePart(tt.in); got != tt.want {
			t.Errorf("datePart(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
