package domain

// SourceAdzuna tags every record ingested from the Adzuna search API.
// It is half of the natural key, so changing it orphans existing rows.
const SourceAdzuna = "adzuna"

// Sentinel values substituted for absent source fields
const (
	SentinelNA      = "N/A"
	SentinelUnknown = "Unknown"
)
