package badger

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"

	"github.com/rstatelabs/playnews/internal/interfaces"
	"github.com/rstatelabs/playnews/internal/models"
)

// TaskLogStorage implements the TaskLogStorage interface for Badger
type TaskLogStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewTaskLogStorage creates a new TaskLogStorage instance
func NewTaskLogStorage(db *BadgerDB, logger arbor.ILogger) interfaces.TaskLogStorage {
	return &TaskLogStorage{
		db:     db,
		logger: logger,
	}
}

// LogTask records a task lifecycle entry and returns its ID. Terminal
// statuses get a completion timestamp immediately.
func (s *TaskLogStorage) LogTask(ctx context.Context, entry *models.TaskLog) (string, error) {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.StartedAt.IsZero() {
		entry.StartedAt = time.Now().UTC()
	}
	if entry.Status == models.TaskStatusSuccess || entry.Status == models.TaskStatusFailed {
		now := time.Now().UTC()
		entry.CompletedAt = &now
	}

	if err := s.db.Store().Insert(entry.ID, entry); err != nil {
		return "", fmt.Errorf("failed to log task: %w", err)
	}

	s.logger.Info().
		Str("task_type", entry.TaskType).
		Str("status", entry.Status).
		Int("articles_count", entry.ArticlesCount).
		Msg("Task log recorded")
	return entry.ID, nil
}

// UpdateTask marks an existing entry with its final status and counts.
func (s *TaskLogStorage) UpdateTask(ctx context.Context, id, status string, articlesCount int, errorMessage string) error {
	var entry models.TaskLog
	if err := s.db.Store().Get(id, &entry); err != nil {
		if err == badgerhold.ErrNotFound {
			return fmt.Errorf("task log not found: %s", id)
		}
		return fmt.Errorf("failed to get task log: %w", err)
	}

	entry.Status = status
	entry.ArticlesCount = articlesCount
	if errorMessage != "" {
		entry.ErrorMessage = errorMessage
	}
	now := time.Now().UTC()
	entry.CompletedAt = &now

	if err := s.db.Store().Update(id, &entry); err != nil {
		return fmt.Errorf("failed to update task log: %w", err)
	}

	s.logger.Debug().Str("id", id).Str("status", status).Msg("Task log updated")
	return nil
}
