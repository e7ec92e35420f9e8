package domain

import "time"

// Run status constants
const (
	RunStatusRunning   = "RUNNING"
	RunStatusSucceeded = "SUCCEEDED"
	RunStatusFailed    = "FAILED"
)

// Run is one ingestion cycle recorded in the ingest_runs table
type Run struct {
	ID              string     `db:"id"`
	StartedAt       time.Time  `db:"started_at"`
	CompletedAt     *time.Time `db:"completed_at"`
	Status          string     `db:"status"`
	ListingsFetched int        `db:"listings_fetched"`
	RecordsCreated  int        `db:"records_created"`
	RecordsUpdated  int        `db:"records_updated"`
	ErrorMessage    *string    `db:"error_message"`
}
