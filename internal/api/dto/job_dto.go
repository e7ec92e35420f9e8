package dto

import "encoding/json"

type ListJobsRequest struct {
	Source   string `form:"source"`
	Level    string `form:"level"`
	Company  string `form:"company"`
	Search   string `form:"q"`
	PageSize int    `form:"page_size"`
	Cursor   string `form:"cursor"`
}

type ListJobsResponse struct {
	Jobs       []JobDTO `json:"jobs"`
	NextCursor string   `json:"next_cursor,omitempty"`
}

// JobDTO is the API shape of a stored job. Raw is only populated on
// single-job lookups.
type JobDTO struct {
	ID                 int64           `json:"id"`
	ExternalID         string          `json:"external_id"`
	Source             string          `json:"source"`
	Title              string          `json:"title"`
	Company            string          `json:"company"`
	Location           string          `json:"location"`
	Description        string          `json:"description"`
	Skills             string          `json:"skills"`
	ExperienceYearsMin *int            `json:"experience_years_min,omitempty"`
	ExperienceYearsMax *int            `json:"experience_years_max,omitempty"`
	ExperienceLevel    *string         `json:"experience_level,omitempty"`
	CreatedDate        string          `json:"created_date"`
	Raw                json.RawMessage `json:"raw,omitempty"`
}

type StatsResponse struct {
	TotalJobs         int64            `json:"total_jobs"`
	BySource          map[string]int64 `json:"by_source"`
	ByLevel           map[string]int64 `json:"by_level"`
	LatestCreatedDate *string          `json:"latest_created_date,omitempty"`
}

type ListRunsResponse struct {
	Runs []RunDTO `json:"runs"`
}

// RunDTO is the API shape of one recorded ingestion cycle
type RunDTO struct {
	ID              string  `json:"id"`
	Status          string  `json:"status"`
	StartedAt       string  `json:"started_at"`
	CompletedAt     *string `json:"completed_at,omitempty"`
	ListingsFetched int     `json:"listings_fetched"`
	RecordsCreated  int     `json:"records_created"`
	RecordsUpdated  int     `json:"records_updated"`
	ErrorMessage    *string `json:"error_message,omitempty"`
}
