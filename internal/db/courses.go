package db

import (
	"database/sql"
	"encoding/json"

	"github.com/juandrep/golftrack/internal/models"
)

// ListCourses returns every course ordered by name.
func (db *DB) ListCourses() ([]models.Course, error) {
	rows, err := db.conn.Query(`
		SELECT id, name, club, location, publish_status, holes, tees, draft_holes, qa_report, created_at, updated_at
		FROM courses
		ORDER BY name COLLATE NOCASE ASC
	`)
	if err != nil {
		return nil, storageErr("list courses", err)
	}
	defer rows.Close()

	var courses []models.Course
	for rows.Next() {
		c, err := scanCourse(rows)
		if err != nil {
			return nil, storageErr("scan course", err)
		}
		courses = append(courses, *c)
	}
	return courses, storageErr("list courses", rows.Err())
}

// GetCourse returns the course with the given id, or nil if absent.
func (db *DB) GetCourse(id string) (*models.Course, error) {
	row := db.conn.QueryRow(`
		SELECT id, name, club, location, publish_status, holes, tees, draft_holes, qa_report, created_at, updated_at
		FROM courses WHERE id = ?
	`, id)

	c, err := scanCourse(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, storageErr("get course", err)
	}
	return c, nil
}

// UpsertCourse stores a course whole, replacing any record with the
// same id. There is no partial merge at this layer.
func (db *DB) UpsertCourse(c models.Course) error {
	holes, err := json.Marshal(c.Holes)
	if err != nil {
		return storageErr("marshal holes", err)
	}
	tees, err := json.Marshal(c.Tees)
	if err != nil {
		return storageErr("marshal tees", err)
	}
	draft, err := json.Marshal(c.DraftHoles)
	if err != nil {
		return storageErr("marshal draft holes", err)
	}
	var qa []byte
	if c.QAReport != nil {
		qa, err = json.Marshal(c.QAReport)
		if err != nil {
			return storageErr("marshal qa report", err)
		}
	}

	status := c.PublishStatus
	if status == "" {
		status = models.PublishDraft
	}

	_, err = db.conn.Exec(`
		INSERT INTO courses (id, name, club, location, publish_status, holes, tees, draft_holes, qa_report, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			club = excluded.club,
			location = excluded.location,
			publish_status = excluded.publish_status,
			holes = excluded.holes,
			tees = excluded.tees,
			draft_holes = excluded.draft_holes,
			qa_report = excluded.qa_report,
			created_at = excluded.created_at,
			updated_at = excluded.updated_at
	`, c.ID, c.Name, c.Club, c.Location, status, string(holes), string(tees), string(draft), nullableJSON(qa), c.CreatedAt, c.UpdatedAt)

	return storageErr("upsert course", err)
}

// DeleteCourse removes a course by id. Deleting a missing id is a no-op.
func (db *DB) DeleteCourse(id string) error {
	_, err := db.conn.Exec(`DELETE FROM courses WHERE id = ?`, id)
	return storageErr("delete course", err)
}

// ClearCourses empties the course table (replace-mode import).
func (db *DB) ClearCourses() error {
	_, err := db.conn.Exec(`DELETE FROM courses`)
	return storageErr("clear courses", err)
}

func nullableJSON(b []byte) interface{} {
	if len(b) == 0 {
		return nil
	}
	return string(b)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanCourse(row rowScanner) (*models.Course, error) {
	var c models.Course
	var club, location, tees, draft, qa, createdAt, updatedAt sql.NullString
	var status string
	var holes string

	err := row.Scan(&c.ID, &c.Name, &club, &location, &status, &holes, &tees, &draft, &qa, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	c.Club = club.String
	c.Location = location.String
	c.PublishStatus = models.PublishStatus(status)
	c.CreatedAt = createdAt.String
	c.UpdatedAt = updatedAt.String

	if holes != "" {
		if err := json.Unmarshal([]byte(holes), &c.Holes); err != nil {
			c.Holes = nil
		}
	}
	if tees.Valid && tees.String != "" {
		if err := json.Unmarshal([]byte(tees.String), &c.Tees); err != nil {
			c.Tees = nil
		}
	}
	if draft.Valid && draft.String != "" {
		if err := json.Unmarshal([]byte(draft.String), &c.DraftHoles); err != nil {
			c.DraftHoles = nil
		}
	}
	if qa.Valid && qa.String != "" {
		var report models.QAReport
		if err := json.Unmarshal([]byte(qa.String), &report); err == nil {
			c.QAReport = &report
		}
	}

	return &c, nil
}
