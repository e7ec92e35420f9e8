package ingest

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/cuongbtq/jobfeed-etl/internal/experience"
	"github.com/cuongbtq/jobfeed-etl/internal/ingest/domain"
)

// Transformer maps raw listings into canonical job records
type Transformer struct {
	source string
	now    func() time.Time
}

// NewTransformer creates a transformer stamping records with the given
// source tag. The clock is injectable so tests can pin created_date;
// passing nil uses the wall clock.
func NewTransformer(source string, now func() time.Time) *Transformer {
	if now == nil {
		now = time.Now
	}
	return &Transformer{source: source, now: now}
}

// Transform converts raw listings into canonical records, one per
// listing and in the same order. Missing source fields fall back to
// sentinels; the transform itself never fails.
func (t *Transformer) Transform(listings []domain.RawListing) []domain.JobRecord {
	records := make([]domain.JobRecord, 0, len(listings))
	for _, listing := range listings {
		records = append(records, t.transformOne(listing))
	}
	return records
}

func (t *Transformer) transformOne(listing domain.RawListing) domain.JobRecord {
	record := domain.JobRecord{
		Title:       listing.Title,
		Company:     listing.Company.DisplayName,
		Location:    listing.Location.DisplayName,
		Description: listing.Description,
		Skills:      domain.SentinelNA,
		CreatedDate: t.now(),
		JobSource:   t.source,
		ExternalID:  listing.ID,
		RawPayload:  string(listing.Raw),
	}

	if record.Title == "" {
		record.Title = domain.SentinelNA
	}
	if record.Company == "" {
		record.Company = domain.SentinelUnknown
	}
	if record.Location == "" {
		record.Location = domain.SentinelUnknown
	}
	if len(listing.SkillTags) > 0 {
		record.Skills = strings.Join(listing.SkillTags, ", ")
	}

	// The payload column is JSONB, so it must never be empty. Listings
	// decoded from the API carry their original bytes; anything else
	// gets a re-marshal.
	if record.RawPayload == "" {
		if b, err := json.Marshal(listing); err == nil {
			record.RawPayload = string(b)
		} else {
			record.RawPayload = "{}"
		}
	}

	// Matching runs on a markup-stripped copy; the stored description
	// stays verbatim.
	sig := experience.Extract(stripMarkup(listing.Description))
	record.ExperienceYearsMin = sig.YearsMin
	record.ExperienceYearsMax = sig.YearsMax
	if sig.Level != "" {
		level := string(sig.Level)
		record.ExperienceLevel = &level
	}

	return record
}
