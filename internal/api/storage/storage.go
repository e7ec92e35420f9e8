package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/cuongbtq/jobfeed-etl/internal/api/domain"
	"github.com/cuongbtq/jobfeed-etl/internal/api/model"
	ingestdomain "github.com/cuongbtq/jobfeed-etl/internal/ingest/domain"
	"github.com/cuongbtq/jobfeed-etl/shared/postgresql"
)

// listColumns excludes raw_data; the stored payloads can be large and
// list responses never include them.
const listColumns = `
	id, title, company, location, description, skills,
	experience_years_min, experience_years_max, experience_level,
	created_date, job_source, external_id
`

type Storage struct {
	db *sqlx.DB
}

func NewStorage(pg *postgresql.Client) *Storage {
	return &Storage{
		db: pg.GetDB(),
	}
}

// JobFilter narrows a job listing. Zero-valued fields are ignored.
type JobFilter struct {
	Source   string
	Level    string
	Company  string
	Search   string
	PageSize int
	Cursor   *JobCursor
}

// JobCursor marks the last row of the previous page. Pagination keys on
// (created_date, id) descending.
type JobCursor struct {
	CreatedDate time.Time
	ID          int64
}

// ListJobs returns up to PageSize+1 rows matching the filter; the extra
// row tells the caller another page exists.
func (s *Storage) ListJobs(ctx context.Context, filter JobFilter) ([]model.Job, error) {
	query := `SELECT ` + listColumns + ` FROM job_data WHERE 1=1`
	args := []interface{}{}
	argIdx := 1

	// Filters
	if filter.Source != "" {
		query += fmt.Sprintf(" AND job_source = $%d", argIdx)
		args = append(args, filter.Source)
		argIdx++
	}

	if filter.Level != "" {
		query += fmt.Sprintf(" AND experience_level = $%d", argIdx)
		args = append(args, filter.Level)
		argIdx++
	}

	if filter.Company != "" {
		query += fmt.Sprintf(" AND company ILIKE $%d", argIdx)
		args = append(args, "%"+filter.Company+"%")
		argIdx++
	}

	if filter.Search != "" {
		query += fmt.Sprintf(" AND (title ILIKE $%d OR description ILIKE $%d)", argIdx, argIdx)
		args = append(args, "%"+filter.Search+"%")
		argIdx++
	}

	if filter.Cursor != nil {
		query += fmt.Sprintf(" AND (created_date, id) < ($%d, $%d)", argIdx, argIdx+1)
		args = append(args, filter.Cursor.CreatedDate, filter.Cursor.ID)
		argIdx += 2
	}

	// Order by created_date DESC, id DESC for consistent pagination
	query += " ORDER BY created_date DESC, id DESC"

	// Fetch one extra to determine if there are more results
	query += fmt.Sprintf(" LIMIT $%d", argIdx)
	args = append(args, filter.PageSize+1)

	var jobs []model.Job
	err := s.db.SelectContext(ctx, &jobs, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}

	return jobs, nil
}

// GetJobByID returns one job including its stored source payload
func (s *Storage) GetJobByID(ctx context.Context, id int64) (*model.Job, error) {
	var job model.Job
	query := `SELECT ` + listColumns + `, raw_data FROM job_data WHERE id = $1`

	err := s.db.GetContext(ctx, &job, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrJobNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get job: %w", err)
	}

	return &job, nil
}

// DeleteJob removes one job row
func (s *Storage) DeleteJob(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM job_data WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete job: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return domain.ErrJobNotFound
	}

	return nil
}

// Stats aggregates the stored jobs by source and experience level.
// LatestCreatedDate is nil while the table is empty.
type Stats struct {
	TotalJobs         int64
	BySource          map[string]int64
	ByLevel           map[string]int64
	LatestCreatedDate *time.Time
}

func (s *Storage) Stats(ctx context.Context) (*Stats, error) {
	stats := &Stats{
		BySource: make(map[string]int64),
		ByLevel:  make(map[string]int64),
	}

	if err := s.db.GetContext(ctx, &stats.TotalJobs, `SELECT COUNT(*) FROM job_data`); err != nil {
		return nil, fmt.Errorf("failed to count jobs: %w", err)
	}

	type bucket struct {
		Key   string `db:"key"`
		Count int64  `db:"count"`
	}

	var bySource []bucket
	err := s.db.SelectContext(ctx, &bySource,
		`SELECT job_source AS key, COUNT(*) AS count FROM job_data GROUP BY job_source`)
	if err != nil {
		return nil, fmt.Errorf("failed to count jobs by source: %w", err)
	}
	for _, b := range bySource {
		stats.BySource[b.Key] = b.Count
	}

	// Rows without an extracted level report as "unknown"
	var byLevel []bucket
	err = s.db.SelectContext(ctx, &byLevel,
		`SELECT COALESCE(experience_level, 'unknown') AS key, COUNT(*) AS count FROM job_data GROUP BY COALESCE(experience_level, 'unknown')`)
	if err != nil {
		return nil, fmt.Errorf("failed to count jobs by level: %w", err)
	}
	for _, b := range byLevel {
		stats.ByLevel[b.Key] = b.Count
	}

	var latest sql.NullTime
	err = s.db.GetContext(ctx, &latest, `SELECT MAX(created_date) FROM job_data`)
	if err != nil {
		return nil, fmt.Errorf("failed to find latest created_date: %w", err)
	}
	if latest.Valid {
		stats.LatestCreatedDate = &latest.Time
	}

	return stats, nil
}

// ListRuns returns the most recent ingestion cycles, newest first
func (s *Storage) ListRuns(ctx context.Context, limit int) ([]ingestdomain.Run, error) {
	query := `
		SELECT id, started_at, completed_at, status,
			listings_fetched, records_created, records_updated, error_message
		FROM ingest_runs
		ORDER BY started_at DESC
		LIMIT $1
	`

	var runs []ingestdomain.Run
	if err := s.db.SelectContext(ctx, &runs, query, limit); err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}

	return runs, nil
}
