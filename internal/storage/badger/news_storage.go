package badger

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	badgerdb "github.com/dgraph-io/badger/v4"
	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"

	"github.com/rstatelabs/playnews/internal/interfaces"
	"github.com/rstatelabs/playnews/internal/models"
	"github.com/rstatelabs/playnews/internal/services/normalizer"
)

// urlCheckBatchSize limits how many URLs one existence query carries.
const urlCheckBatchSize = 100

// NewsStorage implements the NewsStorage interface for Badger
type NewsStorage struct {
	db        *BadgerDB
	logger    arbor.ILogger
	failedDir string
}

// NewNewsStorage creates a NewsStorage. Records that cannot be persisted
// even record-by-record are spooled as JSON under failedDir.
func NewNewsStorage(db *BadgerDB, logger arbor.ILogger, failedDir string) interfaces.NewsStorage {
	return &NewsStorage{
		db:        db,
		logger:    logger,
		failedDir: failedDir,
	}
}

// InsertWithDedup persists records whose canonical URL is not already stored.
// Duplicate detection compares canonical forms on both sides, so URL variants
// of an already-stored article are skipped. When the existence query itself
// fails the insert proceeds anyway; a duplicate row is recoverable, a dropped
// article is not.
func (s *NewsStorage) InsertWithDedup(ctx context.Context, records []*models.NewsRecord) (int, []*models.NewsRecord, error) {
	if len(records) == 0 {
		return 0, nil, nil
	}

	now := time.Now().UTC()
	for _, rec := range records {
		rec.CrawlTime = now
		rec.CreatedAt = now
		rec.UpdatedAt = now
		if rec.Language == "" {
			rec.Language = models.DefaultLanguage
		}
		if rec.Status == "" {
			rec.Status = models.StatusNew
		}
		if rec.URL != "" {
			rec.CanonicalURL = normalizer.CanonicalURL(rec.URL)
		}
	}

	// Map canonical URL -> record, first occurrence wins.
	byCanonical := make(map[string]*models.NewsRecord, len(records))
	order := make([]string, 0, len(records))
	for _, rec := range records {
		if rec.URL == "" {
			s.logger.Warn().Str("title", rec.Title).Msg("Record has no URL, skipping insert")
			continue
		}
		key := rec.CanonicalURL
		if key == "" {
			continue
		}
		if _, dup := byCanonical[key]; dup {
			continue
		}
		byCanonical[key] = rec
		order = append(order, key)
	}

	existing := s.checkExistingURLs(ctx, order)

	newRecords := make([]*models.NewsRecord, 0, len(order))
	skipped := 0
	for _, key := range order {
		if _, found := existing[key]; found {
			skipped++
			s.logger.Debug().Str("url", byCanonical[key].URL).Msg("Skipping already-stored URL")
			continue
		}
		newRecords = append(newRecords, byCanonical[key])
	}

	if skipped > 0 {
		s.logger.Info().Int("skipped", skipped).Int("remaining", len(newRecords)).Msg("Store-level dedup complete")
	}
	if len(newRecords) == 0 {
		s.logger.Info().Msg("All records already stored, nothing to insert")
		return 0, nil, nil
	}

	if err := s.bulkInsert(newRecords); err != nil {
		s.logger.Error().Err(err).Msg("Bulk insert failed, spooling batch and retrying record by record")
		s.spoolFailedInserts(newRecords)
		inserted := s.insertIndividually(ctx, newRecords)
		return len(inserted), inserted, nil
	}

	s.logger.Info().Int("count", len(newRecords)).Msg("Inserted news records")
	return len(newRecords), newRecords, nil
}

// bulkInsert writes all records in one transaction. IDs are assigned from
// the store sequence.
func (s *NewsStorage) bulkInsert(records []*models.NewsRecord) error {
	return s.db.Store().Badger().Update(func(txn *badgerdb.Txn) error {
		for _, rec := range records {
			if err := s.db.Store().TxInsert(txn, badgerhold.NextSequence(), rec); err != nil {
				return fmt.Errorf("failed to insert record %s: %w", rec.URL, err)
			}
		}
		return nil
	})
}

// insertIndividually is the degraded path after a bulk failure. Each record
// is checked and inserted on its own so one bad record cannot sink the rest.
func (s *NewsStorage) insertIndividually(ctx context.Context, records []*models.NewsRecord) []*models.NewsRecord {
	inserted := make([]*models.NewsRecord, 0, len(records))
	failures := 0

	for _, rec := range records {
		key := rec.CanonicalURL
		if found := s.checkExistingURLs(ctx, []string{key}); found[key] {
			continue
		}

		rec.ID = 0
		if err := s.db.Store().Insert(badgerhold.NextSequence(), rec); err != nil {
			failures++
			s.logger.Warn().Err(err).Str("url", rec.URL).Msg("Single-record insert failed")
			continue
		}
		inserted = append(inserted, rec)
	}

	if failures > 0 {
		s.logger.Warn().Int("failures", failures).Msg("Some records could not be inserted")
	}
	return inserted
}

// checkExistingURLs returns the subset of canonical URLs already present in
// the store, querying in batches. A query failure yields an empty set so the
// caller continues inserting.
func (s *NewsStorage) checkExistingURLs(ctx context.Context, canonicalURLs []string) map[string]bool {
	existing := make(map[string]bool)
	if len(canonicalURLs) == 0 {
		return existing
	}

	wanted := make(map[string]bool, len(canonicalURLs))
	for _, u := range canonicalURLs {
		wanted[u] = true
	}

	for i := 0; i < len(canonicalURLs); i += urlCheckBatchSize {
		if err := ctx.Err(); err != nil {
			s.logger.Warn().Err(err).Msg("URL existence check cancelled, allowing inserts to continue")
			return make(map[string]bool)
		}

		end := i + urlCheckBatchSize
		if end > len(canonicalURLs) {
			end = len(canonicalURLs)
		}
		batch := canonicalURLs[i:end]

		in := make([]interface{}, len(batch))
		for j, u := range batch {
			in[j] = u
		}

		var found []models.NewsRecord
		err := s.db.Store().Find(&found, badgerhold.Where("CanonicalURL").In(in...))
		if err != nil {
			s.logger.Warn().Err(err).Msg("URL existence check failed, allowing inserts to continue")
			return make(map[string]bool)
		}
		for _, rec := range found {
			key := rec.CanonicalURL
			if key == "" {
				key = normalizer.CanonicalURL(rec.URL)
			}
			if wanted[key] {
				existing[key] = true
			}
		}
	}

	s.logger.Debug().
		Int("checked", len(canonicalURLs)).
		Int("existing", len(existing)).
		Msg("URL existence check complete")
	return existing
}

// QueryRecent returns records published within the last opts.Days days,
// newest first. Publish dates are stored RFC 3339 UTC so lexicographic
// comparison orders them correctly.
func (s *NewsStorage) QueryRecent(ctx context.Context, opts interfaces.RecentQuery) ([]*models.NewsRecord, error) {
	days := opts.Days
	if days <= 0 {
		days = 7
	}
	limit := opts.Limit
	if limit <= 0 {
		limit = 100
	}

	cutoff := time.Now().UTC().AddDate(0, 0, -days).Format(time.RFC3339)

	query := badgerhold.Where("PublishDate").Ge(cutoff)
	if opts.ZipCode != "" {
		query = query.And("ZipCode").Eq(opts.ZipCode)
	}
	if opts.SourceID != "" {
		query = query.And("SourceID").Eq(opts.SourceID)
	}
	if opts.Status != "" {
		query = query.And("Status").Eq(opts.Status)
	}
	query = query.SortBy("PublishDate").Reverse().Limit(limit)

	var records []models.NewsRecord
	if err := s.db.Store().Find(&records, query); err != nil {
		return nil, fmt.Errorf("failed to query recent news: %w", err)
	}

	result := make([]*models.NewsRecord, len(records))
	for i := range records {
		result[i] = &records[i]
	}
	return result, nil
}

// spoolFailedInserts writes the batch to a timestamped JSON file so nothing
// is lost when the store misbehaves.
func (s *NewsStorage) spoolFailedInserts(records []*models.NewsRecord) {
	if err := os.MkdirAll(s.failedDir, 0755); err != nil {
		s.logger.Error().Err(err).Str("dir", s.failedDir).Msg("Failed to create failed-inserts directory")
		return
	}

	path := filepath.Join(s.failedDir, time.Now().UTC().Format("20060102_150405")+".json")
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to marshal failed records")
		return
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		s.logger.Error().Err(err).Str("path", path).Msg("Failed to write failed-inserts file")
		return
	}
	s.logger.Error().Str("path", path).Int("count", len(records)).Msg("Bulk insert failed, batch saved for recovery")
}
