package db

import (
	"database/sql"

	"github.com/juandrep/golftrack/internal/models"
)

// GetSettings returns the settings singleton, creating it with
// defaults on first read.
func (db *DB) GetSettings() (models.Settings, error) {
	var s models.Settings
	var updatedAt sql.NullString

	err := db.conn.QueryRow(`
		SELECT distance_unit, tile_source_id, updated_at FROM settings WHERE id = 1
	`).Scan(&s.DistanceUnit, &s.TileSourceID, &updatedAt)

	if err == sql.ErrNoRows {
		s = models.DefaultSettings()
		if err := db.SaveSettings(s); err != nil {
			return s, err
		}
		return s, nil
	}
	if err != nil {
		return s, storageErr("get settings", err)
	}

	s.UpdatedAt = updatedAt.String
	return s, nil
}

// SaveSettings replaces the settings singleton.
func (db *DB) SaveSettings(s models.Settings) error {
	_, err := db.conn.Exec(`
		INSERT INTO settings (id, distance_unit, tile_source_id, updated_at)
		VALUES (1, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			distance_unit = excluded.distance_unit,
			tile_source_id = excluded.tile_source_id,
			updated_at = excluded.updated_at
	`, s.DistanceUnit, s.TileSourceID, s.UpdatedAt)
	return storageErr("save settings", err)
}

// GetActiveRound returns the id of the round in progress, or "" when
// no round is active.
func (db *DB) GetActiveRound() (string, error) {
	var id string
	err := db.conn.QueryRow(`SELECT round_id FROM active_round WHERE id = 1`).Scan(&id)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", storageErr("get active round", err)
	}
	return id, nil
}

// SetActiveRound points the active-round singleton at a round id.
func (db *DB) SetActiveRound(roundID string) error {
	_, err := db.conn.Exec(`
		INSERT INTO active_round (id, round_id) VALUES (1, ?)
		ON CONFLICT(id) DO UPDATE SET round_id = excluded.round_id
	`, roundID)
	return storageErr("set active round", err)
}

// ClearActiveRound removes the active-round pointer.
func (db *DB) ClearActiveRound() error {
	_, err := db.conn.Exec(`DELETE FROM active_round WHERE id = 1`)
	return storageErr("clear active round", err)
}

// GetProfile returns the profile singleton, or nil if never saved.
func (db *DB) GetProfile() (*models.Profile, error) {
	var p models.Profile
	var displayName, email, homeClub, updatedAt sql.NullString
	var handicap sql.NullFloat64

	err := db.conn.QueryRow(`
		SELECT display_name, email, home_club, handicap, updated_at FROM profile WHERE id = 1
	`).Scan(&displayName, &email, &homeClub, &handicap, &updatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, storageErr("get profile", err)
	}

	p.DisplayName = displayName.String
	p.Email = email.String
	p.HomeClub = homeClub.String
	p.Handicap = handicap.Float64
	p.UpdatedAt = updatedAt.String
	return &p, nil
}

// SaveProfile replaces the profile singleton.
func (db *DB) SaveProfile(p models.Profile) error {
	_, err := db.conn.Exec(`
		INSERT INTO profile (id, display_name, email, home_club, handicap, updated_at)
		VALUES (1, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			display_name = excluded.display_name,
			email = excluded.email,
			home_club = excluded.home_club,
			handicap = excluded.handicap,
			updated_at = excluded.updated_at
	`, p.DisplayName, p.Email, p.HomeClub, p.Handicap, p.UpdatedAt)
	return storageErr("save profile", err)
}

// ClearProfile removes the profile singleton (sign-out wipe).
func (db *DB) ClearProfile() error {
	_, err := db.conn.Exec(`DELETE FROM profile WHERE id = 1`)
	return storageErr("clear profile", err)
}
