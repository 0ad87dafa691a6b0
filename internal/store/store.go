package store

import (
	"sync"

	"github.com/juandrep/golftrack/internal/api"
	"github.com/juandrep/golftrack/internal/db"
	"github.com/juandrep/golftrack/internal/models"
)

// AppVersion is stamped into backup exports.
const AppVersion = "1.0.0"

// Store coordinates the local database and the sync client. Every
// mutation writes locally first and never rolls that write back; the
// remote push that follows is opportunistic. Cached view state is
// re-read from the database after each settled mutation.
type Store struct {
	db     *db.DB
	client *api.Client

	mu          sync.Mutex
	courses     []models.Course
	rounds      []models.Round
	activeRound string
	settings    models.Settings
	profile     *models.Profile
	leaderboard []models.LeaderboardEntry
	state       models.SyncState

	lbTimeframe string
	lbCourseID  string
	lbRole      string
}

// New loads the cached view state and computes the initial
// leaderboard. The client may be unconfigured; everything then runs
// local-only.
func New(database *db.DB, client *api.Client) (*Store, error) {
	s := &Store{
		db:          database,
		client:      client,
		state:       models.SyncState{Status: models.SyncLocalOnly},
		lbTimeframe: "all",
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.reload(); err != nil {
		return nil, err
	}
	s.refreshLeaderboardLocked()
	return s, nil
}

// reload re-reads all derived view state. Callers hold mu.
func (s *Store) reload() error {
	courses, err := s.db.ListCourses()
	if err != nil {
		return err
	}
	rounds, err := s.db.ListRounds()
	if err != nil {
		return err
	}
	active, err := s.db.GetActiveRound()
	if err != nil {
		return err
	}
	settings, err := s.db.GetSettings()
	if err != nil {
		return err
	}
	profile, err := s.db.GetProfile()
	if err != nil {
		return err
	}

	s.courses = courses
	s.rounds = rounds
	s.activeRound = active
	s.settings = settings
	s.profile = profile
	return nil
}

func (s *Store) canSync() bool {
	return s.client != nil && s.client.IsConfigured() && s.client.HasSession()
}

func (s *Store) setState(status models.SyncStatus, message string) {
	s.state = models.SyncState{Status: status, Message: message}
}

// Accessors return copies so callers never see the cache mid-update.

func (s *Store) Courses() []models.Course {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Course, len(s.courses))
	copy(out, s.courses)
	return out
}

func (s *Store) Rounds() []models.Round {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Round, len(s.rounds))
	copy(out, s.rounds)
	return out
}

func (s *Store) CourseByID(id string) *models.Course {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.courses {
		if s.courses[i].ID == id {
			c := s.courses[i]
			return &c
		}
	}
	return nil
}

func (s *Store) RoundByID(id string) *models.Round {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.rounds {
		if s.rounds[i].ID == id {
			r := s.rounds[i]
			return &r
		}
	}
	return nil
}

// ActiveRoundID returns "" when no round is in progress.
func (s *Store) ActiveRoundID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeRound
}

func (s *Store) Settings() models.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings
}

func (s *Store) Profile() *models.Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.profile == nil {
		return nil
	}
	p := *s.profile
	return &p
}

func (s *Store) Leaderboard() []models.LeaderboardEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.LeaderboardEntry, len(s.leaderboard))
	copy(out, s.leaderboard)
	return out
}

func (s *Store) SyncState() models.SyncState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Store) HasSession() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.canSync()
}
