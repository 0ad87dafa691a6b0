package api

import "github.com/juandrep/golftrack/internal/models"

// ConflictError is raised when the round-upsert endpoint answers 409
// with the server's copy of the round. It is the only remote failure
// the coordinator recovers from by forking rather than degrading.
type ConflictError struct {
	Message     string
	ServerRound *models.Round
}

func (e *ConflictError) Error() string {
	if e.Message != "" {
		return "round conflict: " + e.Message
	}
	return "round conflict: server holds a different version"
}
