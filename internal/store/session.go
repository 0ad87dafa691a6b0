package store

import (
	"github.com/juandrep/golftrack/internal/api"
	"github.com/juandrep/golftrack/internal/models"
)

// SignIn attaches credentials and reconciles local state with the
// account: the server snapshot replaces local courses, rounds,
// settings and the active pointer, then the leaderboard is refreshed.
// A failed initial pull keeps the session; sync resumes on the next
// mutation.
func (s *Store) SignIn(token, uid string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.client.SetSession(token, uid)

	snap, err := s.client.FetchSnapshot()
	if err != nil {
		s.setState(models.SyncLocalOnly, "Signed in; initial sync failed")
		return nil
	}
	if err := s.replaceSnapshot(snap); err != nil {
		return err
	}
	s.setState(models.SyncSynced, "Signed in")
	s.refreshLeaderboardLocked()
	return nil
}

// SignOut drops the session and returns the device to guest state:
// rounds, the active pointer and the profile are wiped, demo content
// is reseeded, and the leaderboard empties until the next refresh.
// Courses are kept; they are not account-private.
func (s *Store) SignOut() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.client.ClearSession()

	if err := s.db.ClearRounds(); err != nil {
		return err
	}
	if err := s.db.ClearActiveRound(); err != nil {
		return err
	}
	if err := s.db.ClearProfile(); err != nil {
		return err
	}
	if err := s.db.SeedDemoData(); err != nil {
		return err
	}
	if err := s.reload(); err != nil {
		return err
	}

	s.leaderboard = nil
	s.setState(models.SyncLocalOnly, "Signed out")
	return nil
}

// SyncFromRemote re-pulls the account snapshot on demand.
func (s *Store) SyncFromRemote() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.canSync() {
		return nil
	}
	snap, err := s.client.FetchSnapshot()
	if err != nil {
		s.setState(models.SyncLocalOnly, "Sync failed")
		return err
	}
	if err := s.replaceSnapshot(snap); err != nil {
		return err
	}
	s.setState(models.SyncSynced, "Synced")
	s.refreshLeaderboardLocked()
	return nil
}

// replaceSnapshot makes the server state the local state. Used at
// sign-in and explicit re-pulls, where the merge direction is
// documented as one-way. Callers hold mu.
func (s *Store) replaceSnapshot(snap *api.Snapshot) error {
	if err := s.db.ClearCourses(); err != nil {
		return err
	}
	if err := s.db.ClearRounds(); err != nil {
		return err
	}
	if err := s.applySnapshotRecords(snap); err != nil {
		return err
	}
	if snap.ActiveRoundID != nil && *snap.ActiveRoundID != "" {
		if err := s.db.SetActiveRound(*snap.ActiveRoundID); err != nil {
			return err
		}
	} else {
		if err := s.db.ClearActiveRound(); err != nil {
			return err
		}
	}
	return s.reload()
}

// mergeSnapshot overlays server records onto local state without
// clearing anything first. Used after a conflict fork, where a local
// round the server has never seen must survive the pull.
func (s *Store) mergeSnapshot(snap *api.Snapshot) error {
	if err := s.applySnapshotRecords(snap); err != nil {
		return err
	}
	return s.reload()
}

func (s *Store) applySnapshotRecords(snap *api.Snapshot) error {
	for _, c := range snap.Courses {
		if err := s.db.UpsertCourse(c); err != nil {
			return err
		}
	}
	for _, r := range snap.Rounds {
		if err := s.db.UpsertRound(r); err != nil {
			return err
		}
	}
	if snap.Settings != nil {
		if err := s.db.SaveSettings(*snap.Settings); err != nil {
			return err
		}
	}
	if snap.Profile != nil {
		if err := s.db.SaveProfile(*snap.Profile); err != nil {
			return err
		}
	}
	return nil
}
