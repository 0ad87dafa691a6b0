package store

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/juandrep/golftrack/internal/api"
	"github.com/juandrep/golftrack/internal/models"
)

// SaveCourse stamps, persists locally, then pushes. The local write is
// never undone whatever the remote does.
func (s *Store) SaveCourse(course models.Course) (SyncOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := models.NowStamp()
	course.UpdatedAt = now
	if course.CreatedAt == "" {
		course.CreatedAt = now
	}

	if err := s.db.UpsertCourse(course); err != nil {
		return SyncOutcome{}, err
	}
	if err := s.reload(); err != nil {
		return SyncOutcome{}, err
	}

	if !s.canSync() {
		s.setState(models.SyncLocalOnly, "Saved locally")
		return localOnly("no account session"), nil
	}

	s.setState(models.SyncSyncing, "Syncing course")
	if _, err := s.client.UpsertCourse(course); err != nil {
		s.setState(models.SyncLocalOnly, "Saved locally; sync failed")
		return localOnly(err.Error()), nil
	}
	s.setState(models.SyncSynced, "Synced")
	return synced(), nil
}

// SaveRound persists a round locally and pushes it. A remote conflict
// forks the local edit instead of discarding it.
func (s *Store) SaveRound(round models.Round) (SyncOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveRound(round)
}

func (s *Store) saveRound(round models.Round) (SyncOutcome, error) {
	now := models.NowStamp()
	round.UpdatedAt = now
	if round.StartedAt == "" {
		round.StartedAt = now
	}

	if err := s.db.UpsertRound(round); err != nil {
		return SyncOutcome{}, err
	}
	if err := s.reload(); err != nil {
		return SyncOutcome{}, err
	}

	if !s.canSync() {
		s.setState(models.SyncLocalOnly, "Saved locally")
		return localOnly("no account session"), nil
	}

	s.setState(models.SyncSyncing, "Syncing round")
	_, err := s.client.UpsertRound(round)
	if err == nil {
		s.setState(models.SyncSynced, "Synced")
		return synced(), nil
	}

	var conflict *api.ConflictError
	if errors.As(err, &conflict) {
		return s.forkRound(round)
	}

	s.setState(models.SyncLocalOnly, "Saved locally; sync failed")
	return localOnly(err.Error()), nil
}

// forkRound preserves a conflicting local edit as a brand new round.
// The fork gets a fresh id and timestamps, is made durable locally,
// then pushed. The remote push and the snapshot re-pull that follows
// are both best-effort; the server's copy of the original round comes
// back through the pull so neither version is lost.
func (s *Store) forkRound(local models.Round) (SyncOutcome, error) {
	fork := local
	fork.ID = uuid.NewString()
	now := models.NowStamp()
	fork.StartedAt = now
	fork.UpdatedAt = now

	if err := s.db.UpsertRound(fork); err != nil {
		return SyncOutcome{}, err
	}

	_, _ = s.client.UpsertRound(fork)
	if snap, err := s.client.FetchSnapshot(); err == nil {
		_ = s.mergeSnapshot(snap)
	}

	if err := s.reload(); err != nil {
		return SyncOutcome{}, err
	}
	s.setState(models.SyncConflict, "Sync conflict: preserved local edit as a new round")
	return conflictOutcome(fork.ID), nil
}

// StartRound creates a fresh round on a course and makes it active.
func (s *Store) StartRound(courseID, teeID string) (models.Round, SyncOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := models.NowStamp()
	round := models.Round{
		ID:        uuid.NewString(),
		CourseID:  courseID,
		TeeID:     teeID,
		StartedAt: now,
		UpdatedAt: now,
	}

	outcome, err := s.saveRound(round)
	if err != nil {
		return models.Round{}, SyncOutcome{}, err
	}

	// A conflict fork replaces the round the user is editing; the
	// active pointer must follow the fork, not the rejected id.
	if outcome.Kind == OutcomeConflict {
		forked, err := s.db.GetRound(outcome.ForkedID)
		if err != nil {
			return models.Round{}, SyncOutcome{}, err
		}
		if forked != nil {
			round = *forked
		}
	}

	if err := s.db.SetActiveRound(round.ID); err != nil {
		return models.Round{}, SyncOutcome{}, err
	}
	if s.canSync() {
		id := round.ID
		_ = s.client.SetActiveRound(&id)
	}
	if err := s.reload(); err != nil {
		return models.Round{}, SyncOutcome{}, err
	}
	return round, outcome, nil
}

// RecordScore sets the stroke count for one hole of a round.
func (s *Store) RecordScore(roundID string, holeNumber, strokes int) (SyncOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	round, err := s.db.GetRound(roundID)
	if err != nil {
		return SyncOutcome{}, err
	}
	if round == nil {
		return SyncOutcome{}, fmt.Errorf("round %s not found", roundID)
	}

	round.SetScore(holeNumber, strokes)
	return s.saveRound(*round)
}

// CompleteRound stamps the finish time and clears the active pointer
// in the same intent.
func (s *Store) CompleteRound(id string) (SyncOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	round, err := s.db.GetRound(id)
	if err != nil {
		return SyncOutcome{}, err
	}
	if round == nil {
		return SyncOutcome{}, fmt.Errorf("round %s not found", id)
	}

	round.CompletedAt = models.NowStamp()
	outcome, err := s.saveRound(*round)
	if err != nil {
		return SyncOutcome{}, err
	}

	if err := s.db.ClearActiveRound(); err != nil {
		return SyncOutcome{}, err
	}
	if s.canSync() {
		_ = s.client.SetActiveRound(nil)
	}
	if err := s.reload(); err != nil {
		return SyncOutcome{}, err
	}
	s.refreshLeaderboardLocked()
	return outcome, nil
}

// DeleteRound removes a round locally and remotely. Deleting the
// active round also clears the active pointer.
func (s *Store) DeleteRound(id string) (SyncOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.db.DeleteRound(id); err != nil {
		return SyncOutcome{}, err
	}
	clearedActive := s.activeRound == id
	if clearedActive {
		if err := s.db.ClearActiveRound(); err != nil {
			return SyncOutcome{}, err
		}
	}
	if err := s.reload(); err != nil {
		return SyncOutcome{}, err
	}

	outcome := localOnly("no account session")
	if s.canSync() {
		s.setState(models.SyncSyncing, "Syncing")
		if err := s.client.DeleteRound(id); err != nil {
			s.setState(models.SyncLocalOnly, "Deleted locally; sync failed")
			outcome = localOnly(err.Error())
		} else {
			if clearedActive {
				_ = s.client.SetActiveRound(nil)
			}
			s.setState(models.SyncSynced, "Synced")
			outcome = synced()
		}
	} else {
		s.setState(models.SyncLocalOnly, "Deleted locally")
	}

	s.refreshLeaderboardLocked()
	return outcome, nil
}

// SetActiveRoundID points the active-round record at a round, or
// clears it when id is nil.
func (s *Store) SetActiveRoundID(id *string) (SyncOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id == nil {
		if err := s.db.ClearActiveRound(); err != nil {
			return SyncOutcome{}, err
		}
	} else {
		if err := s.db.SetActiveRound(*id); err != nil {
			return SyncOutcome{}, err
		}
	}
	if err := s.reload(); err != nil {
		return SyncOutcome{}, err
	}

	outcome := s.pushSimple(func() error { return s.client.SetActiveRound(id) })
	s.refreshLeaderboardLocked()
	return outcome, nil
}

// SetUnit switches the distance unit.
func (s *Store) SetUnit(unit models.DistanceUnit) (SyncOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	settings := s.settings
	settings.DistanceUnit = unit
	return s.saveSettings(settings)
}

// SetTileSource switches the map tile source.
func (s *Store) SetTileSource(id string) (SyncOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	settings := s.settings
	settings.TileSourceID = id
	return s.saveSettings(settings)
}

func (s *Store) saveSettings(settings models.Settings) (SyncOutcome, error) {
	settings.UpdatedAt = models.NowStamp()
	if err := s.db.SaveSettings(settings); err != nil {
		return SyncOutcome{}, err
	}
	if err := s.reload(); err != nil {
		return SyncOutcome{}, err
	}
	return s.pushSimple(func() error { return s.client.SaveSettings(settings) }), nil
}

// SaveProfile updates the account profile.
func (s *Store) SaveProfile(p models.Profile) (SyncOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p.UpdatedAt = models.NowStamp()
	if err := s.db.SaveProfile(p); err != nil {
		return SyncOutcome{}, err
	}
	if err := s.reload(); err != nil {
		return SyncOutcome{}, err
	}
	return s.pushSimple(func() error { return s.client.SaveProfile(p) }), nil
}

// pushSimple runs a remote call for mutations with no conflict path
// and folds the result into an outcome. Callers hold mu and have
// already persisted locally.
func (s *Store) pushSimple(call func() error) SyncOutcome {
	if !s.canSync() {
		s.setState(models.SyncLocalOnly, "Saved locally")
		return localOnly("no account session")
	}
	s.setState(models.SyncSyncing, "Syncing")
	if err := call(); err != nil {
		s.setState(models.SyncLocalOnly, "Saved locally; sync failed")
		return localOnly(err.Error())
	}
	s.setState(models.SyncSynced, "Synced")
	return synced()
}
