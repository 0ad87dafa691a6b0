package backup

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/juandrep/golftrack/internal/models"
)

// Backup files are versioned JSON documents. Both identifiers are
// checked exactly on import; anything else is rejected outright.
const (
	Schema  = "golftrack.backup"
	Version = 1
)

// Payload is the on-disk backup document.
type Payload struct {
	Schema     string `json:"schema"`
	Version    int    `json:"version"`
	ExportedAt string `json:"exportedAt"`
	AppVersion string `json:"appVersion,omitempty"`
	Data       Data   `json:"data"`
}

type Data struct {
	Courses []models.Course `json:"courses"`
	Rounds  []models.Round  `json:"rounds"`
}

// Preview summarizes a parsed backup for confirmation before import.
type Preview struct {
	CourseCount int
	RoundCount  int
	ExportedAt  string
	AppVersion  string
}

// Result is a validated, deduplicated backup ready for import.
type Result struct {
	Payload  Payload
	Preview  Preview
	Warnings []string
}

// FormatError marks a backup that cannot be imported at all. Imports
// are all-or-nothing; a single bad entry rejects the whole file.
type FormatError struct {
	Reason string
}

func (e *FormatError) Error() string {
	return "invalid backup: " + e.Reason
}

func formatErrf(format string, args ...interface{}) error {
	return &FormatError{Reason: fmt.Sprintf(format, args...)}
}

// rawPayload defers entry decoding so structural errors can name the
// offending index.
type rawPayload struct {
	Schema     string `json:"schema"`
	Version    *int   `json:"version"`
	ExportedAt string `json:"exportedAt"`
	AppVersion string `json:"appVersion"`
	Data       struct {
		Courses []json.RawMessage `json:"courses"`
		Rounds  []json.RawMessage `json:"rounds"`
	} `json:"data"`
}

// Parse validates a backup document and deduplicates its entries.
// Duplicate ids keep the most recent copy; each removal is reported as
// an advisory warning, never an error.
func Parse(data []byte) (*Result, error) {
	var raw rawPayload
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &FormatError{Reason: "file is not valid JSON"}
	}

	if raw.Schema != Schema {
		return nil, formatErrf("unsupported schema %q", raw.Schema)
	}
	if raw.Version == nil || *raw.Version != Version {
		if raw.Version == nil {
			return nil, formatErrf("missing version")
		}
		return nil, formatErrf("unsupported version %d", *raw.Version)
	}

	if raw.ExportedAt == "" || models.ParseStamp(raw.ExportedAt).IsZero() {
		return nil, formatErrf("invalid exportedAt %q", raw.ExportedAt)
	}

	courses := make([]models.Course, 0, len(raw.Data.Courses))
	for i, entry := range raw.Data.Courses {
		var c models.Course
		if err := json.Unmarshal(entry, &c); err != nil {
			return nil, formatErrf("courses[%d]: %v", i, err)
		}
		if c.ID == "" {
			return nil, formatErrf("courses[%d]: missing id", i)
		}
		if c.Name == "" {
			return nil, formatErrf("courses[%d]: missing name", i)
		}
		courses = append(courses, c)
	}

	rounds := make([]models.Round, 0, len(raw.Data.Rounds))
	for i, entry := range raw.Data.Rounds {
		var r models.Round
		if err := json.Unmarshal(entry, &r); err != nil {
			return nil, formatErrf("rounds[%d]: %v", i, err)
		}
		if r.ID == "" {
			return nil, formatErrf("rounds[%d]: missing id", i)
		}
		if r.CourseID == "" {
			return nil, formatErrf("rounds[%d]: missing courseId", i)
		}
		rounds = append(rounds, r)
	}

	var warnings []string
	courses, removedCourses := DedupeCourses(courses)
	if removedCourses > 0 {
		warnings = append(warnings, fmt.Sprintf(
			"Removed %d duplicate course id entries (kept most recent)", removedCourses))
	}
	rounds, removedRounds := DedupeRounds(rounds)
	if removedRounds > 0 {
		warnings = append(warnings, fmt.Sprintf(
			"Removed %d duplicate round id entries (kept most recent)", removedRounds))
	}

	return &Result{
		Payload: Payload{
			Schema:     raw.Schema,
			Version:    *raw.Version,
			ExportedAt: raw.ExportedAt,
			AppVersion: raw.AppVersion,
			Data:       Data{Courses: courses, Rounds: rounds},
		},
		Preview: Preview{
			CourseCount: len(courses),
			RoundCount:  len(rounds),
			ExportedAt:  raw.ExportedAt,
			AppVersion:  raw.AppVersion,
		},
		Warnings: warnings,
	}, nil
}

// DedupeCourses collapses entries sharing an id down to the most
// recent one, keeping the slot where the id first appeared. On a
// recency tie the later-encountered entry wins. Returns the number of
// entries removed.
func DedupeCourses(courses []models.Course) ([]models.Course, int) {
	out := make([]models.Course, 0, len(courses))
	index := make(map[string]int, len(courses))
	removed := 0

	for _, c := range courses {
		pos, seen := index[c.ID]
		if !seen {
			index[c.ID] = len(out)
			out = append(out, c)
			continue
		}
		removed++
		if !courseRecency(c).Before(courseRecency(out[pos])) {
			out[pos] = c
		}
	}
	return out, removed
}

// DedupeRounds mirrors DedupeCourses with round recency rules.
func DedupeRounds(rounds []models.Round) ([]models.Round, int) {
	out := make([]models.Round, 0, len(rounds))
	index := make(map[string]int, len(rounds))
	removed := 0

	for _, r := range rounds {
		pos, seen := index[r.ID]
		if !seen {
			index[r.ID] = len(out)
			out = append(out, r)
			continue
		}
		removed++
		if !roundRecency(r).Before(roundRecency(out[pos])) {
			out[pos] = r
		}
	}
	return out, removed
}

// courseRecency orders duplicates: updatedAt, then createdAt, then the
// zero time for entries with no parseable stamp at all.
func courseRecency(c models.Course) time.Time {
	if t := models.ParseStamp(c.UpdatedAt); !t.IsZero() {
		return t
	}
	return models.ParseStamp(c.CreatedAt)
}

func roundRecency(r models.Round) time.Time {
	if t := models.ParseStamp(r.UpdatedAt); !t.IsZero() {
		return t
	}
	return models.ParseStamp(r.StartedAt)
}

// Export builds a backup document from the current local state.
func Export(courses []models.Course, rounds []models.Round, appVersion string) Payload {
	if courses == nil {
		courses = []models.Course{}
	}
	if rounds == nil {
		rounds = []models.Round{}
	}
	return Payload{
		Schema:     Schema,
		Version:    Version,
		ExportedAt: models.NowStamp(),
		AppVersion: appVersion,
		Data:       Data{Courses: courses, Rounds: rounds},
	}
}

// Encode renders a payload as indented JSON for writing to disk.
func Encode(p Payload) ([]byte, error) {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode backup: %w", err)
	}
	return data, nil
}

// Filename returns the suggested name for an export taken at the given
// time. Colons are swapped for dashes to stay filesystem-safe.
func Filename(now time.Time) string {
	stamp := now.UTC().Format(time.RFC3339)
	stamp = strings.ReplaceAll(stamp, ":", "-")
	return "golftrack-backup-" + stamp + ".json"
}
