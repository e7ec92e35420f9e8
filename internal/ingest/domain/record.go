package domain

import (
	"encoding/json"
	"time"
)

// RawListing is one listing as returned by the source API. The parsed
// fields cover what the transformer reads; Raw preserves the original
// bytes so the stored payload is not a lossy re-marshal.
type RawListing struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Company     Company         `json:"company"`
	Location    Location        `json:"location"`
	Description string          `json:"description"`
	SkillTags   []string        `json:"skill_tags"`
	Raw         json.RawMessage `json:"-"`
}

// Company is the nested company object on a raw listing
type Company struct {
	DisplayName string `json:"display_name"`
}

// Location is the nested location object on a raw listing
type Location struct {
	DisplayName string `json:"display_name"`
}

// JobRecord is the canonical persisted shape of one listing. Rows are
// deduplicated on (ExternalID, JobSource); ID is assigned by the store.
type JobRecord struct {
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
	RawPayload         string    `db:"raw_data"`
}
