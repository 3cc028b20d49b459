package badger

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"

	"github.com/rstatelabs/playnews/internal/interfaces"
	"github.com/rstatelabs/playnews/internal/models"
)

// SourceStorage implements the SourceStorage interface for Badger
type SourceStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewSourceStorage creates a new SourceStorage instance
func NewSourceStorage(db *BadgerDB, logger arbor.ILogger) interfaces.SourceStorage {
	return &SourceStorage{
		db:     db,
		logger: logger,
	}
}

// ListActiveSources returns all sources flagged active, ordered by ID.
func (s *SourceStorage) ListActiveSources(ctx context.Context) ([]*models.SourceConfig, error) {
	var sources []models.SourceConfig
	if err := s.db.Store().Find(&sources, badgerhold.Where("IsActive").Eq(true)); err != nil {
		return nil, fmt.Errorf("failed to list active sources: %w", err)
	}

	sort.Slice(sources, func(i, j int) bool { return sources[i].ID < sources[j].ID })

	result := make([]*models.SourceConfig, len(sources))
	for i := range sources {
		result[i] = &sources[i]
	}

	s.logger.Info().Int("count", len(result)).Msg("Loaded active sources")
	return result, nil
}

func (s *SourceStorage) GetSource(ctx context.Context, id string) (*models.SourceConfig, error) {
	var source models.SourceConfig
	if err := s.db.Store().Get(id, &source); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, fmt.Errorf("source not found: %s", id)
		}
		return nil, fmt.Errorf("failed to get source: %w", err)
	}
	return &source, nil
}

func (s *SourceStorage) SaveSource(ctx context.Context, source *models.SourceConfig) error {
	if err := source.Validate(); err != nil {
		return fmt.Errorf("invalid source: %w", err)
	}

	now := time.Now().UTC()
	if source.CreatedAt.IsZero() {
		source.CreatedAt = now
	}
	source.UpdatedAt = now

	if err := s.db.Store().Upsert(source.ID, source); err != nil {
		return fmt.Errorf("failed to save source: %w", err)
	}
	return nil
}

// ListZipCodes returns the distinct non-empty zip codes, trimmed.
func (s *SourceStorage) ListZipCodes(ctx context.Context) ([]string, error) {
	var entries []models.ZipCodeEntry
	if err := s.db.Store().Find(&entries, nil); err != nil {
		return nil, fmt.Errorf("failed to list zip codes: %w", err)
	}

	seen := make(map[string]struct{}, len(entries))
	zipCodes := make([]string, 0, len(entries))
	for _, entry := range entries {
		code := strings.TrimSpace(entry.Code)
		if code == "" {
			continue
		}
		if _, dup := seen[code]; dup {
			continue
		}
		seen[code] = struct{}{}
		zipCodes = append(zipCodes, code)
	}

	s.logger.Info().Int("count", len(zipCodes)).Msg("Loaded zip codes")
	return zipCodes, nil
}

func (s *SourceStorage) SaveZipCodes(ctx context.Context, zipCodes []string) error {
	now := time.Now().UTC()
	for _, code := range zipCodes {
		code = strings.TrimSpace(code)
		if code == "" {
			continue
		}
		entry := &models.ZipCodeEntry{Code: code, CreatedAt: now}
		if err := s.db.Store().Upsert(entry.Code, entry); err != nil {
			return fmt.Errorf("failed to save zip code %s: %w", code, err)
		}
	}
	return nil
}
