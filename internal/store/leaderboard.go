package store

import "github.com/juandrep/golftrack/internal/models"

// RefreshLeaderboard recomputes the leaderboard with new filters.
// Without a session the board is derived purely from local rounds;
// with one it is fetched verbatim from the server.
func (s *Store) RefreshLeaderboard(timeframe, courseID, role string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lbTimeframe = timeframe
	s.lbCourseID = courseID
	s.lbRole = role

	if !s.canSync() {
		s.leaderboard = s.guestLeaderboard()
		return nil
	}

	entries, err := s.client.Leaderboard(timeframe, courseID, role)
	if err != nil {
		return err
	}
	s.leaderboard = entries
	return nil
}

// refreshLeaderboardLocked re-runs the last leaderboard query after a
// mutation that changes rankings. Remote failures keep the previous
// board. Callers hold mu.
func (s *Store) refreshLeaderboardLocked() {
	if !s.canSync() {
		s.leaderboard = s.guestLeaderboard()
		return
	}
	entries, err := s.client.Leaderboard(s.lbTimeframe, s.lbCourseID, s.lbRole)
	if err == nil {
		s.leaderboard = entries
	}
}

// guestLeaderboard builds the single synthetic entry for a signed-out
// device from rounds that have at least one recorded score. Zero such
// rounds yields an empty board, not an entry with meaningless scores.
func (s *Store) guestLeaderboard() []models.LeaderboardEntry {
	var totals []int
	for i := range s.rounds {
		if s.rounds[i].HasScores() {
			totals = append(totals, s.rounds[i].TotalStrokes())
		}
	}
	if len(totals) == 0 {
		return nil
	}

	best := totals[0]
	sum := 0
	for _, t := range totals {
		if t < best {
			best = t
		}
		sum += t
	}

	return []models.LeaderboardEntry{{
		PlayerID:     "guest",
		Name:         "Guest",
		Rounds:       len(totals),
		BestScore:    best,
		AverageScore: float64(sum) / float64(len(totals)),
		Position:     1,
	}}
}
