package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/rstatelabs/playnews/internal/models"
)

// Exporter writes snapshot files of crawl results to disk so a run's
// output can be inspected without a database client.
type Exporter struct {
	outputDir string
	logger    arbor.ILogger
}

func NewExporter(outputDir string, logger arbor.ILogger) *Exporter {
	if outputDir == "" {
		outputDir = "./output"
	}
	return &Exporter{outputDir: outputDir, logger: logger}
}

type snapshot struct {
	ExportedAt    string                                     `json:"exported_at"`
	TotalArticles int                                        `json:"total_articles"`
	Grouped       map[string]map[string][]*models.NewsRecord `json:"grouped_by_date_and_source,omitempty"`
	Articles      []*models.NewsRecord                       `json:"articles,omitempty"`
}

// ExportByDateAndSource writes records grouped by publish date then source
// name. An empty filename picks a timestamped default.
func (e *Exporter) ExportByDateAndSource(records []*models.NewsRecord, filename string) (string, error) {
	if filename == "" {
		filename = fmt.Sprintf("raw_news_%s.json", time.Now().UTC().Format("20060102_150405"))
	}

	grouped := make(map[string]map[string][]*models.NewsRecord)
	for _, rec := range records {
		date := datePart(rec.PublishDate)
		source := rec.Source
		if source == "" {
			source = rec.SourceID
		}
		if source == "" {
			source = "unknown"
		}
		if grouped[date] == nil {
			grouped[date] = make(map[string][]*models.NewsRecord)
		}
		grouped[date][source] = append(grouped[date][source], rec)
	}

	return e.write(filename, &snapshot{
		ExportedAt:    time.Now().UTC().Format(time.RFC3339),
		TotalArticles: len(records),
		Grouped:       grouped,
	})
}

// ExportSimple writes records as a flat list.
func (e *Exporter) ExportSimple(records []*models.NewsRecord, filename string) (string, error) {
	if filename == "" {
		filename = fmt.Sprintf("raw_news_simple_%s.json", time.Now().UTC().Format("20060102_150405"))
	}
	return e.write(filename, &snapshot{
		ExportedAt:    time.Now().UTC().Format(time.RFC3339),
		TotalArticles: len(records),
		Articles:      records,
	})
}

func (e *Exporter) write(filename string, snap *snapshot) (string, error) {
	if err := os.MkdirAll(e.outputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output dir %s: %w", e.outputDir, err)
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode export: %w", err)
	}

	path := filepath.Join(e.outputDir, filename)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write export %s: %w", path, err)
	}

	e.logger.Info().Str("path", path).Int("articles", snap.TotalArticles).Msg("JSON export complete")
	return path, nil
}

// datePart reduces a publish date to its YYYY-MM-DD prefix.
func datePart(publishDate string) string {
	if publishDate == "" {
		return "unknown"
	}
	if i := strings.IndexByte(publishDate, 'T'); i > 0 {
		return publishDate[:i]
	}
	if len(publishDate) >= 10 {
		return publishDate[:10]
	}
	return publishDate
}
