package db

import (
	"database/sql"
	"encoding/json"

	"github.com/juandrep/golftrack/internal/models"
)

// ListRounds returns every round, most recently started first.
func (db *DB) ListRounds() ([]models.Round, error) {
	rows, err := db.conn.Query(`
		SELECT id, course_id, tee_id, started_at, completed_at, updated_at, stableford, scores
		FROM rounds
		ORDER BY started_at DESC
	`)
	if err != nil {
		return nil, storageErr("list rounds", err)
	}
	defer rows.Close()

	var rounds []models.Round
	for rows.Next() {
		r, err := scanRound(rows)
		if err != nil {
			return nil, storageErr("scan round", err)
		}
		rounds = append(rounds, *r)
	}
	return rounds, storageErr("list rounds", rows.Err())
}

// GetRound returns the round with the given id, or nil if absent.
func (db *DB) GetRound(id string) (*models.Round, error) {
	row := db.conn.QueryRow(`
		SELECT id, course_id, tee_id, started_at, completed_at, updated_at, stableford, scores
		FROM rounds WHERE id = ?
	`, id)

	r, err := scanRound(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, storageErr("get round", err)
	}
	return r, nil
}

// UpsertRound stores a round whole, replacing any record with the same id.
func (db *DB) UpsertRound(r models.Round) error {
	scores, err := json.Marshal(r.Scores)
	if err != nil {
		return storageErr("marshal scores", err)
	}

	_, err = db.conn.Exec(`
		INSERT INTO rounds (id, course_id, tee_id, started_at, completed_at, updated_at, stableford, scores)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			course_id = excluded.course_id,
			tee_id = excluded.tee_id,
			started_at = excluded.started_at,
			completed_at = excluded.completed_at,
			updated_at = excluded.updated_at,
			stableford = excluded.stableford,
			scores = excluded.scores
	`, r.ID, r.CourseID, r.TeeID, r.StartedAt, r.CompletedAt, r.UpdatedAt, boolToInt(r.StablefordEnabled), string(scores))

	return storageErr("upsert round", err)
}

// DeleteRound removes a round by id. Deleting a missing id is a no-op.
func (db *DB) DeleteRound(id string) error {
	_, err := db.conn.Exec(`DELETE FROM rounds WHERE id = ?`, id)
	return storageErr("delete round", err)
}

// ClearRounds empties the round table (replace-mode import, sign-out wipe).
func (db *DB) ClearRounds() error {
	_, err := db.conn.Exec(`DELETE FROM rounds`)
	return storageErr("clear rounds", err)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func scanRound(row rowScanner) (*models.Round, error) {
	var r models.Round
	var teeID, completedAt, updatedAt sql.NullString
	var stableford int
	var scores string

	err := row.Scan(&r.ID, &r.CourseID, &teeID, &r.StartedAt, &completedAt, &updatedAt, &stableford, &scores)
	if err != nil {
		return nil, err
	}

	r.TeeID = teeID.String
	r.CompletedAt = completedAt.String
	r.UpdatedAt = updatedAt.String
	r.StablefordEnabled = stableford == 1

	if scores != "" {
		if err := json.Unmarshal([]byte(scores), &r.Scores); err != nil {
			r.Scores = nil
		}
	}

	return &r, nil
}
