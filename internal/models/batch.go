package models

import "time"

type BatchStatus string

const (
	StatusIdle       BatchStatus = "idle"
	StatusProcessing BatchStatus = "processing"
	StatusDone       BatchStatus = "done"
	StatusFailed     BatchStatus = "failed"
)

func (s BatchStatus) Terminal() bool {
	return s == StatusDone || s == StatusFailed
}

// BatchEvent is emitted on every orchestrator state change.
type BatchEvent struct {
	BatchID    string      `json:"batch_id"`
	Status     BatchStatus `json:"status"`
	Items      int         `json:"items"`
	Failed     int         `json:"failed"`
	Skipped    int         `json:"skipped"`
	Entries    int         `json:"entries"`
	Ratio      string      `json:"ratio"`
	Width      int         `json:"width"`
	OccurredAt time.Time   `json:"occurred_at"`
}

// BatchRecord tracks an asynchronous batch until its archive is taken.
type BatchRecord struct {
	ID          string      `json:"id"`
	Status      BatchStatus `json:"status"`
	Ratio       string      `json:"ratio"`
	Width       int         `json:"width"`
	Quality     float64     `json:"quality"`
	Items       int         `json:"items"`
	Failed      int         `json:"failed"`
	Skipped     int         `json:"skipped"`
	ArchiveName string      `json:"archive_name,omitempty"`
	URL         string      `json:"url,omitempty"`
	Error       string      `json:"error,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
	FinishedAt  *time.Time  `json:"finished_at,omitempty"`
}
