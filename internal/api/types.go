package api

import "github.com/juandrep/golftrack/internal/models"

// Snapshot is the full account state the server returns after a
// successful mutation and from the snapshot pull.
type Snapshot struct {
	Courses       []models.Course  `json:"courses"`
	Rounds        []models.Round   `json:"rounds"`
	Settings      *models.Settings `json:"settings,omitempty"`
	Profile       *models.Profile  `json:"profile,omitempty"`
	ActiveRoundID *string          `json:"activeRoundId,omitempty"`
}

type activeRoundRequest struct {
	RoundID *string `json:"roundId"`
}

type leaderboardResponse struct {
	Entries []models.LeaderboardEntry `json:"entries"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type conflictResponse struct {
	Error       string        `json:"error,omitempty"`
	ServerRound *models.Round `json:"serverRound,omitempty"`
}
