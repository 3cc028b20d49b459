package models

import "time"

// Task log lifecycle and types.
const (
	TaskStatusRunning = "running"
	TaskStatusSuccess = "success"
	TaskStatusFailed  = "failed"

	TaskTypeLocalNews  = "local_news"
	TaskTypeRealEstate = "real_estate"
	TaskTypeFullRun    = "full_task"
)

// TaskLog records the lifecycle of one crawl task. It is created at crawl
// start and updated at crawl end; nothing in the pipeline reads it back.
type TaskLog struct {
	ID            string     `json:"id" badgerhold:"key"`
	TaskType      string     `json:"task_type"`
	Status        string     `json:"status"`
	SourceID      string     `json:"source_id,omitempty"`
	ZipCode       string     `json:"zipcode,omitempty"`
	Source        string     `json:"source,omitempty"`
	ArticlesCount int        `json:"articles_count"`
	ErrorMessage  string     `json:"error_message,omitempty"`
	StartedAt     time.Time  `json:"started_at"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
}
