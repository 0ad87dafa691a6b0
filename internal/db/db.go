package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

type DB struct {
	conn *sql.DB
}

func New(dbPath string) (*DB, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create db directory: %w", err)
	}

	conn, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return db, nil
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS courses (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		club TEXT,
		location TEXT,
		publish_status TEXT NOT NULL DEFAULT 'draft',
		holes TEXT NOT NULL,
		tees TEXT,
		draft_holes TEXT,
		qa_report TEXT,
		created_at TEXT,
		updated_at TEXT
	);
	CREATE TABLE IF NOT EXISTS rounds (
		id TEXT PRIMARY KEY,
		course_id TEXT NOT NULL,
		tee_id TEXT,
		started_at TEXT NOT NULL,
		completed_at TEXT,
		updated_at TEXT,
		stableford INTEGER NOT NULL DEFAULT 0,
		scores TEXT NOT NULL
	);
	CREATE TABLE IF NOT EXISTS settings (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		distance_unit TEXT NOT NULL,
		tile_source_id TEXT NOT NULL,
		updated_at TEXT
	);
	CREATE TABLE IF NOT EXISTS active_round (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		round_id TEXT NOT NULL
	);
	CREATE TABLE IF NOT EXISTS profile (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		display_name TEXT,
		email TEXT,
		home_club TEXT,
		handicap REAL,
		updated_at TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_courses_name ON courses(name);
	CREATE INDEX IF NOT EXISTS idx_rounds_started ON rounds(started_at);
	CREATE INDEX IF NOT EXISTS idx_rounds_course ON rounds(course_id);
	`
	_, err := db.conn.Exec(schema)
	return err
}

func (db *DB) Close() error {
	return db.conn.Close()
}
