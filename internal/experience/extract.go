package experience

import (
	"regexp"
	"strconv"
)

// Level classifies the seniority of a job listing
type Level string

const (
	LevelEntry     Level = "entry"
	LevelMid       Level = "mid"
	LevelSenior    Level = "senior"
	LevelExecutive Level = "executive"
)

// Signal holds the experience requirements parsed from a description.
// Nil year fields and an empty Level mean no signal was found; the two
// halves are detected independently.
type Signal struct {
	YearsMin *int
	YearsMax *int
	Level    Level
}

// yearsRE captures "3-5 years of experience", "7+ years experience",
// "4 to 6 yrs experience" and similar phrasings. Only the first match
// in the text is used.
var yearsRE = regexp.MustCompile(`(?i)(\d+)\+?\s*(?:-|to)?\s*(\d+)?\s*(?:years?|yrs?)(?:\s+of)?\s+experience`)

// levelChecks is scanned in fixed priority order; the first group with a
// match wins, so a description naming both "junior" and "senior" roles
// classifies as entry.
var levelChecks = []struct {
	level Level
	re    *regexp.Regexp
}{
	{LevelEntry, regexp.MustCompile(`(?i)\b(entry[ -]level|junior|fresh graduate|fresher)\b`)},
	{LevelMid, regexp.MustCompile(`(?i)\b(mid[ -]level|intermediate)\b`)},
	{LevelSenior, regexp.MustCompile(`(?i)\b(senior|lead|principal)\b`)},
	{LevelExecutive, regexp.MustCompile(`(?i)\b(executive|director|head|chief|vp)\b`)},
}

// Extract parses experience signals out of free-form description text.
// It never fails: text without a recognizable phrase yields a zero
// Signal. A single year figure sets both bounds; a reversed range is
// normalized so YearsMax >= YearsMin always holds.
func Extract(description string) Signal {
	var sig Signal

	if m := yearsRE.FindStringSubmatch(description); m != nil {
		if lo, err := strconv.Atoi(m[1]); err == nil {
			hi := lo
			if m[2] != "" {
				if n, err := strconv.Atoi(m[2]); err == nil {
					hi = n
				}
			}
			if hi < lo {
				lo, hi = hi, lo
			}
			sig.YearsMin = &lo
			sig.YearsMax = &hi
		}
	}

	for _, check := range levelChecks {
		if check.re.MatchString(description) {
			sig.Level = check.level
			break
		}
	}

	return sig
}
