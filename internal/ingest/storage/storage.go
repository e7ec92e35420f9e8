package storage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"

	"github.com/cuongbtq/jobfeed-etl/internal/ingest/domain"
)

// Storage handles all database operations for the ingest pipeline
type Storage struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewStorage creates a new Storage instance
func NewStorage(db *sqlx.DB, logger *slog.Logger) *Storage {
	return &Storage{
		db:     db,
		logger: logger,
	}
}

// BatchResult reports the outcome of loading one batch of records
type BatchResult struct {
	Created int
	Updated int
}

// Total is the number of rows the batch touched
func (r BatchResult) Total() int {
	return r.Created + r.Updated
}

// EnsureSchema creates the destination tables when absent. It runs at
// the start of every cycle, so the DDL must stay idempotent.
func (s *Storage) EnsureSchema(ctx context.Context) error {
	queries := []string{
		`
		CREATE TABLE IF NOT EXISTS job_data (
			id SERIAL PRIMARY KEY,
			title TEXT NOT NULL,
			company TEXT,
			location TEXT,
			description TEXT,
			skills TEXT,
			experience_years_min INTEGER,
			experience_years_max INTEGER,
			experience_level TEXT,
			created_date TIMESTAMP NOT NULL,
			job_source TEXT NOT NULL,
			external_id TEXT NOT NULL,
			raw_data JSONB,
			CONSTRAINT unique_job UNIQUE (external_id, job_source)
		)
		`,
		`
		CREATE TABLE IF NOT EXISTS ingest_runs (
			id UUID PRIMARY KEY,
			started_at TIMESTAMP NOT NULL,
			completed_at TIMESTAMP,
			status TEXT NOT NULL,
			listings_fetched INTEGER NOT NULL DEFAULT 0,
			records_created INTEGER NOT NULL DEFAULT 0,
			records_updated INTEGER NOT NULL DEFAULT 0,
			error_message TEXT
		)
		`,
	}

	for _, query := range queries {
		if _, err := s.db.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to ensure schema: %w", err)
		}
	}

	s.logger.Debug("Database schema ready")

	return nil
}

// UpsertRecord writes one canonical record, inserting a new row or
// merging into the existing one with the same (external_id, job_source).
// The merge deliberately leaves company, location and skills at their
// first-seen values. Returns whether a new row was created and fills in
// the record's surrogate id.
func (s *Storage) UpsertRecord(ctx context.Context, record *domain.JobRecord) (bool, error) {
	query := `
		INSERT INTO job_data (
			title, company, location, description, skills,
			experience_years_min, experience_years_max, experience_level,
			created_date, job_source, external_id, raw_data
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (external_id, job_source)
		DO UPDATE SET
			title = EXCLUDED.title,
			description = EXCLUDED.description,
			experience_years_min = EXCLUDED.experience_years_min,
			experience_years_max = EXCLUDED.experience_years_max,
			experience_level = EXCLUDED.experience_level,
			raw_data = EXCLUDED.raw_data,
			created_date = EXCLUDED.created_date
		RETURNING id, (xmax = 0) AS inserted
	`

	var created bool
	err := s.db.QueryRowContext(ctx, query,
		record.Title,
		record.Company,
		record.Location,
		record.Description,
		record.Skills,
		record.ExperienceYearsMin,
		record.ExperienceYearsMax,
		record.ExperienceLevel,
		record.CreatedDate,
		record.JobSource,
		record.ExternalID,
		record.RawPayload,
	).Scan(&record.ID, &created)

	if err != nil {
		return false, fmt.Errorf("failed to upsert record: %w", err)
	}

	return created, nil
}

// UpsertBatch loads records one at a time, each upsert independently
// atomic. The first failing record aborts the batch; rows already
// written stay written.
func (s *Storage) UpsertBatch(ctx context.Context, records []domain.JobRecord) (BatchResult, error) {
	var result BatchResult

	for i := range records {
		created, err := s.UpsertRecord(ctx, &records[i])
		if err != nil {
			return result, fmt.Errorf("record %d (external_id=%q): %w", i, records[i].ExternalID, err)
		}

		if created {
			result.Created++
		} else {
			result.Updated++
		}
	}

	s.logger.Info("Batch loaded",
		slog.Int("created", result.Created),
		slog.Int("updated", result.Updated),
	)

	return result, nil
}

// BeginRun records the start of an ingestion cycle
func (s *Storage) BeginRun(ctx context.Context, run *domain.Run) error {
	query := `
		INSERT INTO ingest_runs (id, started_at, status)
		VALUES ($1, $2, $3)
	`

	_, err := s.db.ExecContext(ctx, query, run.ID, run.StartedAt, run.Status)
	if err != nil {
		return fmt.Errorf("failed to record run start: %w", err)
	}

	return nil
}

// CompleteRun finalizes the run row with its outcome
func (s *Storage) CompleteRun(ctx context.Context, run *domain.Run) error {
	query := `
		UPDATE ingest_runs
		SET completed_at = $1,
			status = $2,
			listings_fetched = $3,
			records_created = $4,
			records_updated = $5,
			error_message = $6
		WHERE id = $7
	`

	result, err := s.db.ExecContext(ctx, query,
		run.CompletedAt,
		run.Status,
		run.ListingsFetched,
		run.RecordsCreated,
		run.RecordsUpdated,
		run.ErrorMessage,
		run.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to record run completion: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		s.logger.Warn("Run completion update - no rows affected",
			slog.String("run_id", run.ID),
		)
	}

	return nil
}
