package store

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/juandrep/golftrack/internal/backup"
	"github.com/juandrep/golftrack/internal/models"
)

// ImportMode selects how a backup is applied to local state.
type ImportMode int

const (
	// ImportMerge upserts every imported record by id; collisions
	// overwrite the existing local record whole.
	ImportMerge ImportMode = iota
	// ImportReplace clears all local courses and rounds first.
	ImportReplace
)

// ImportBackup applies an already-parsed backup. The import itself is
// purely local; with a session the result is then pushed record by
// record. Push failures leave the import intact and the state
// local-only.
func (s *Store) ImportBackup(res *backup.Result, mode ImportMode) (SyncOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if mode == ImportReplace {
		if err := s.db.ClearCourses(); err != nil {
			return SyncOutcome{}, err
		}
		if err := s.db.ClearRounds(); err != nil {
			return SyncOutcome{}, err
		}
		if err := s.db.ClearActiveRound(); err != nil {
			return SyncOutcome{}, err
		}
	}

	for _, c := range res.Payload.Data.Courses {
		if err := s.db.UpsertCourse(c); err != nil {
			return SyncOutcome{}, err
		}
	}
	for _, r := range res.Payload.Data.Rounds {
		if err := s.db.UpsertRound(r); err != nil {
			return SyncOutcome{}, err
		}
	}
	if err := s.reload(); err != nil {
		return SyncOutcome{}, err
	}

	if !s.canSync() {
		s.setState(models.SyncLocalOnly, "Backup imported")
		s.refreshLeaderboardLocked()
		return localOnly("no account session"), nil
	}

	s.setState(models.SyncSyncing, "Syncing imported records")
	failed := 0
	for _, c := range res.Payload.Data.Courses {
		if _, err := s.client.UpsertCourse(c); err != nil {
			failed++
		}
	}
	for _, r := range res.Payload.Data.Rounds {
		if _, err := s.client.UpsertRound(r); err != nil {
			failed++
		}
	}

	s.refreshLeaderboardLocked()
	if failed > 0 {
		s.setState(models.SyncLocalOnly, "Backup imported; some records did not sync")
		return localOnly(fmt.Sprintf("%d records failed to sync", failed)), nil
	}
	s.setState(models.SyncSynced, "Backup imported and synced")
	return synced(), nil
}

// ImportBackupFile parses and applies a backup file, returning the
// codec's advisory warnings alongside the outcome.
func (s *Store) ImportBackupFile(path string, mode ImportMode) (*backup.Result, SyncOutcome, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, SyncOutcome{}, fmt.Errorf("failed to read backup file: %w", err)
	}
	res, err := backup.Parse(data)
	if err != nil {
		return nil, SyncOutcome{}, err
	}
	outcome, err := s.ImportBackup(res, mode)
	if err != nil {
		return nil, SyncOutcome{}, err
	}
	return res, outcome, nil
}

// ExportBackup renders the current local state as a backup document.
func (s *Store) ExportBackup() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return backup.Encode(backup.Export(s.courses, s.rounds, AppVersion))
}

// ExportBackupFile writes a timestamped backup into dir and returns
// the full path.
func (s *Store) ExportBackupFile(dir string) (string, error) {
	data, err := s.ExportBackup()
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, backup.Filename(time.Now()))
	if err := os.WriteFile(path, data, 0600); err != nil {
		return "", fmt.Errorf("failed to write backup file: %w", err)
	}
	return path, nil
}
