package db

import (
	"time"

	"github.com/juandrep/golftrack/internal/models"
)

const (
	demoCourseID = "demo-course"
	demoRoundID  = "demo-round"
)

// demoPars is a conventional par-72 routing.
var demoPars = [18]int{4, 3, 5, 4, 4, 3, 4, 5, 4, 4, 5, 3, 4, 4, 5, 3, 4, 4}

var demoScores = [18]int{5, 3, 6, 4, 5, 4, 4, 5, 4, 5, 6, 3, 4, 5, 5, 3, 5, 4}

// SeedDemoData inserts the demo course and a completed demo round so a
// fresh install (or a just-signed-out account) has something to show.
// Existing demo records are left untouched.
func (db *DB) SeedDemoData() error {
	existing, err := db.GetCourse(demoCourseID)
	if err != nil {
		return err
	}
	if existing == nil {
		if err := db.UpsertCourse(demoCourse()); err != nil {
			return err
		}
	}

	round, err := db.GetRound(demoRoundID)
	if err != nil {
		return err
	}
	if round == nil {
		if err := db.UpsertRound(demoRound()); err != nil {
			return err
		}
	}
	return nil
}

func demoCourse() models.Course {
	holes := make([]models.Hole, 18)
	for i := range holes {
		holes[i] = models.Hole{Number: i + 1, Par: demoPars[i]}
	}
	now := models.NowStamp()
	return models.Course{
		ID:            demoCourseID,
		Name:          "Willow Creek (Demo)",
		Club:          "Willow Creek Golf Club",
		Location:      "Demo Valley",
		Holes:         holes,
		Tees: []models.TeeOption{
			{ID: "demo-tee-yellow", Name: "Yellow", Color: "#e8c547", Rating: 70.1, Slope: 124},
			{ID: "demo-tee-white", Name: "White", Color: "#f5f5f5", Rating: 72.3, Slope: 129},
		},
		PublishStatus: models.PublishPublished,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func demoRound() models.Round {
	scores := make([]models.HoleScore, 18)
	for i := range scores {
		scores[i] = models.HoleScore{HoleNumber: i + 1, Strokes: demoScores[i]}
	}
	started := time.Now().UTC().Add(-48 * time.Hour).Format(time.RFC3339)
	completed := time.Now().UTC().Add(-44 * time.Hour).Format(time.RFC3339)
	return models.Round{
		ID:          demoRoundID,
		CourseID:    demoCourseID,
		TeeID:       "demo-tee-yellow",
		StartedAt:   started,
		CompletedAt: completed,
		UpdatedAt:   completed,
		Scores:      scores,
	}
}
