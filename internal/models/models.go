package models

import (
	"sort"
	"time"
)

// DistanceUnit is the unit used for GPS distances.
type DistanceUnit string

const (
	UnitYards  DistanceUnit = "yards"
	UnitMeters DistanceUnit = "meters"
)

// PublishStatus marks whether a course is visible to other players.
type PublishStatus string

const (
	PublishDraft     PublishStatus = "draft"
	PublishPublished PublishStatus = "published"
)

// SyncStatus describes where the last mutation settled.
type SyncStatus string

const (
	SyncLocalOnly SyncStatus = "local_only"
	SyncSyncing   SyncStatus = "syncing"
	SyncSynced    SyncStatus = "synced"
	SyncConflict  SyncStatus = "conflict"
)

// SyncState is the user-visible sync status plus a short message.
type SyncState struct {
	Status  SyncStatus `json:"status"`
	Message string     `json:"message,omitempty"`
}

// Hole is one hole of a course with tee and green coordinates.
type Hole struct {
	Number   int     `json:"number"`
	Par      int     `json:"par"`
	TeeLat   float64 `json:"teeLat,omitempty"`
	TeeLng   float64 `json:"teeLng,omitempty"`
	GreenLat float64 `json:"greenLat,omitempty"`
	GreenLng float64 `json:"greenLng,omitempty"`
}

// TeeOption is a set of tees a round can be played from.
type TeeOption struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Color  string  `json:"color,omitempty"`
	Rating float64 `json:"rating,omitempty"`
	Slope  int     `json:"slope,omitempty"`
}

// QAReport is the result of the geometry check run before publish.
type QAReport struct {
	GeneratedAt string   `json:"generatedAt,omitempty"`
	Passed      bool     `json:"passed"`
	Issues      []string `json:"issues,omitempty"`
}

// Course is a mapped golf course. ID is immutable once created;
// UpdatedAt never decreases across successful writes.
type Course struct {
	ID            string        `json:"id"`
	Name          string        `json:"name"`
	Club          string        `json:"club,omitempty"`
	Location      string        `json:"location,omitempty"`
	Holes         []Hole        `json:"holes"`
	Tees          []TeeOption   `json:"tees,omitempty"`
	DraftHoles    []Hole        `json:"draftHoles,omitempty"`
	PublishStatus PublishStatus `json:"publishStatus,omitempty"`
	QAReport      *QAReport     `json:"qaReport,omitempty"`
	CreatedAt     string        `json:"createdAt,omitempty"`
	UpdatedAt     string        `json:"updatedAt,omitempty"`
}

// HoleScore is the stroke count for one hole of a round.
type HoleScore struct {
	HoleNumber int `json:"holeNumber"`
	Strokes    int `json:"strokes"`
	Putts      int `json:"putts,omitempty"`
}

// Round is one played or in-progress game. CourseID is not enforced;
// a round whose course was deleted is still listed.
type Round struct {
	ID                string      `json:"id"`
	CourseID          string      `json:"courseId"`
	TeeID             string      `json:"teeId,omitempty"`
	StartedAt         string      `json:"startedAt"`
	CompletedAt       string      `json:"completedAt,omitempty"`
	UpdatedAt         string      `json:"updatedAt,omitempty"`
	Scores            []HoleScore `json:"scores"`
	StablefordEnabled bool        `json:"stablefordEnabled,omitempty"`
}

// TotalStrokes sums the recorded strokes across all holes.
func (r Round) TotalStrokes() int {
	total := 0
	for _, s := range r.Scores {
		total += s.Strokes
	}
	return total
}

// HasScores reports whether at least one hole has a stroke recorded.
func (r Round) HasScores() bool {
	for _, s := range r.Scores {
		if s.Strokes > 0 {
			return true
		}
	}
	return false
}

// SetScore records strokes for a hole, keeping Scores ordered by hole
// number with one entry per hole.
func (r *Round) SetScore(holeNumber, strokes int) {
	for i, s := range r.Scores {
		if s.HoleNumber == holeNumber {
			r.Scores[i].Strokes = strokes
			return
		}
	}
	r.Scores = append(r.Scores, HoleScore{HoleNumber: holeNumber, Strokes: strokes})
	sort.Slice(r.Scores, func(i, j int) bool {
		return r.Scores[i].HoleNumber < r.Scores[j].HoleNumber
	})
}

// ScoreFor returns the recorded strokes for a hole, 0 if none.
func (r Round) ScoreFor(holeNumber int) int {
	for _, s := range r.Scores {
		if s.HoleNumber == holeNumber {
			return s.Strokes
		}
	}
	return 0
}

// Settings is the singleton user preference record.
type Settings struct {
	DistanceUnit DistanceUnit `json:"distanceUnit"`
	TileSourceID string       `json:"tileSourceId"`
	UpdatedAt    string       `json:"updatedAt,omitempty"`
}

// DefaultSettings is what the repository hands out before the user has
// ever saved preferences.
func DefaultSettings() Settings {
	return Settings{
		DistanceUnit: UnitYards,
		TileSourceID: "osm",
	}
}

// Profile is the account profile mirrored to the remote service.
type Profile struct {
	DisplayName string  `json:"displayName,omitempty"`
	Email       string  `json:"email,omitempty"`
	HomeClub    string  `json:"homeClub,omitempty"`
	Handicap    float64 `json:"handicap,omitempty"`
	UpdatedAt   string  `json:"updatedAt,omitempty"`
}

// LeaderboardEntry is one row of the social leaderboard.
type LeaderboardEntry struct {
	PlayerID     string  `json:"playerId,omitempty"`
	Name         string  `json:"name"`
	Rounds       int     `json:"rounds"`
	BestScore    int     `json:"bestScore"`
	AverageScore float64 `json:"averageScore"`
	Position     int     `json:"position"`
}

// NowStamp returns the current UTC time in the ISO-8601 form used for
// every record timestamp.
func NowStamp() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// ParseStamp parses an ISO-8601 timestamp, returning the zero time on
// failure. Records from older exports may carry missing or malformed
// timestamps; callers treat those as epoch.
func ParseStamp(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
