package model

import "time"

// Job is one row of the job_data table as served by the read API.
// RawData carries the stored source payload and is only selected for
// single-job lookups.
type Job struct {
	ID                 int64     `db:"id"`
	Title              string    `db:"title"`
	Company            string    `db:"company"`
	Location           string    `db:"location"`
	Description        string    `db:"description"`
	Skills             string    `db:"skills"`
	ExperienceYearsMin *int      `db:"experience_years_min"`
	ExperienceYearsMax *int      `db:"experience_years_max"`
	ExperienceLevel    *string   `db:"experience_level"`
	CreatedDate        time.Time `db:"created_date"`
	JobSource          string    `db:"job_source"`
	ExternalID         string    `db:"external_id"`
	RawData            []byte    `db:"raw_data"`
}
