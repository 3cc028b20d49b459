package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/ternarybob/arbor"

	"github.com/rstatelabs/playnews/internal/common"
	"github.com/rstatelabs/playnews/internal/models"
)

// RunFunc executes one harvest for a single source.
type RunFunc func(ctx context.Context, sourceID string) error

// jobEntry tracks one scheduled source crawl.
type jobEntry struct {
	sourceID   string
	sourceName string
	schedule   string
	cronID     cron.EntryID
	isRunning  bool
	lastRun    *time.Time
	lastError  string
}

// Service schedules per-source harvest runs from each source's cron
// expression. A source never runs concurrently with itself; a tick that
// lands while the previous run is still going is skipped.
type Service struct {
	cron    *cron.Cron
	run     RunFunc
	logger  arbor.ILogger
	mu      sync.Mutex
	jobs    map[string]*jobEntry
	running bool
}

// NewService creates a scheduler in the configured timezone. An unknown
// timezone name falls back to UTC.
func NewService(cfg *common.SchedulerConfig, run RunFunc, logger arbor.ILogger) *Service {
	loc := time.UTC
	if cfg.Timezone != "" {
		parsed, err := time.LoadLocation(cfg.Timezone)
		if err != nil {
			logger.Warn().Err(err).Str("timezone", cfg.Timezone).Msg("Unknown timezone, using UTC")
		} else {
			loc = parsed
		}
	}
	return &Service{
		cron:   cron.New(cron.WithLocation(loc)),
		run:    run,
		logger: logger,
		jobs:   make(map[string]*jobEntry),
	}
}

// RegisterSources adds one cron job per source that carries an update
// frequency. Sources without one are skipped. Returns the number of jobs
// registered.
func (s *Service) RegisterSources(sources []*models.SourceConfig) int {
	registered := 0
	for _, source := range sources {
		if !source.IsActive {
			s.logger.Debug().Str("source", source.SourceName).Msg("Skipping inactive source")
			continue
		}
		if source.UpdateFrequency == "" {
			s.logger.Warn().Str("source", source.SourceName).Msg("Source has no update_frequency, not scheduled")
			continue
		}
		if err := s.registerSource(source); err != nil {
			s.logger.Error().Err(err).Str("source", source.SourceName).Str("schedule", source.UpdateFrequency).Msg("Failed to schedule source")
			continue
		}
		registered++
	}
	s.logger.Info().Int("count", registered).Msg("Source schedules registered")
	return registered
}

func (s *Service) registerSource(source *models.SourceConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.jobs[source.ID]; exists {
		return fmt.Errorf("source %s already scheduled", source.ID)
	}

	entry := &jobEntry{
		sourceID:   source.ID,
		sourceName: source.SourceName,
		schedule:   source.UpdateFrequency,
	}

	sourceID := source.ID
	cronID, err := s.cron.AddFunc(source.UpdateFrequency, func() {
		s.executeJob(sourceID)
	})
	if err != nil {
		return fmt.Errorf("invalid cron expression %q: %w", source.UpdateFrequency, err)
	}

	entry.cronID = cronID
	s.jobs[source.ID] = entry

	s.logger.Info().
		Str("source", source.SourceName).
		Str("schedule", source.UpdateFrequency).
		Msg("Source scheduled")
	return nil
}

// executeJob runs one source crawl, skipping if the source is still busy
// from a previous tick.
func (s *Service) executeJob(sourceID string) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error().Str("source_id", sourceID).Str("panic", fmt.Sprintf("%v", r)).Msg("PANIC RECOVERED in scheduled harvest")
			s.mu.Lock()
			if entry, exists := s.jobs[sourceID]; exists {
				entry.isRunning = false
				entry.lastError = fmt.Sprintf("panic: %v", r)
			}
			s.mu.Unlock()
		}
	}()

	s.mu.Lock()
	entry, exists := s.jobs[sourceID]
	if !exists {
		s.mu.Unlock()
		return
	}
	if entry.isRunning {
		s.mu.Unlock()
		s.logger.Warn().Str("source", entry.sourceName).Msg("Previous run still active, skipping this tick")
		return
	}
	entry.isRunning = true
	s.mu.Unlock()

	start := time.Now()
	s.logger.Info().Str("source", entry.sourceName).Msg("Scheduled harvest started")

	err := s.run(context.Background(), sourceID)

	completed := time.Now()
	s.mu.Lock()
	entry.isRunning = false
	entry.lastRun = &completed
	if err != nil {
		entry.lastError = err.Error()
	} else {
		entry.lastError = ""
	}
	s.mu.Unlock()

	if err != nil {
		s.logger.Error().Err(err).Str("source", entry.sourceName).Dur("duration", time.Since(start)).Msg("Scheduled harvest failed")
	} else {
		s.logger.Info().Str("source", entry.sourceName).Dur("duration", time.Since(start)).Msg("Scheduled harvest completed")
	}
}

// Start begins ticking. No-op if already started.
func (s *Service) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.cron.Start()
	s.running = true
	s.logger.Info().Int("jobs", len(s.jobs)).Msg("Scheduler started")
}

// Stop halts ticking and waits for in-flight runs started by the cron to
// return.
func (s *Service) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.mu.Unlock()

	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info().Msg("Scheduler stopped")
}

// JobCount returns the number of registered source schedules.
func (s *Service) JobCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}

// IsRunning reports whether the scheduler is ticking.
func (s *Service) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}
