package store

import (
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/juandrep/golftrack/internal/api"
	"github.com/juandrep/golftrack/internal/backup"
	"github.com/juandrep/golftrack/internal/db"
	"github.com/juandrep/golftrack/internal/models"
)

func newTestDB(t *testing.T) *db.DB {
	t.Helper()
	database, err := db.New(filepath.Join(t.TempDir(), "golf.db"))
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return database
}

// newOfflineStore has no server configured at all.
func newOfflineStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(newTestDB(t), api.NewClient(""))
	if err != nil {
		t.Fatalf("failed to build store: %v", err)
	}
	return s
}

// newOnlineStore points at a test server with an active session.
func newOnlineStore(t *testing.T, handler http.HandlerFunc) *Store {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client := api.NewClient(srv.URL)
	client.SetSession("tok", "u1")
	s, err := New(newTestDB(t), client)
	if err != nil {
		t.Fatalf("failed to build store: %v", err)
	}
	return s
}

func scoredRound(id string, strokes int) models.Round {
	return models.Round{
		ID:       id,
		CourseID: "c1",
		Scores:   []models.HoleScore{{HoleNumber: 1, Strokes: strokes}},
	}
}

func TestSaveRoundOfflineIsDurableAndLocalOnly(t *testing.T) {
	s := newOfflineStore(t)

	outcome, err := s.SaveRound(scoredRound("r1", 85))
	if err != nil {
		t.Fatalf("SaveRound failed: %v", err)
	}
	if outcome.Kind != OutcomeLocalOnly {
		t.Errorf("outcome = %+v, want LocalOnly", outcome)
	}
	if s.RoundByID("r1") == nil {
		t.Error("round not durable locally")
	}
	if got := s.SyncState().Status; got != models.SyncLocalOnly {
		t.Errorf("state = %q, want local_only", got)
	}
}

func TestSaveRoundSurvivesServerFailure(t *testing.T) {
	s := newOnlineStore(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{"error": "boom"})
	})

	outcome, err := s.SaveRound(scoredRound("r1", 85))
	if err != nil {
		t.Fatalf("SaveRound must not fail on a remote error: %v", err)
	}
	if outcome.Kind != OutcomeLocalOnly || outcome.Reason != "boom" {
		t.Errorf("outcome = %+v, want LocalOnly(boom)", outcome)
	}
	if s.RoundByID("r1") == nil {
		t.Error("local write was lost after remote failure")
	}
}

func TestSaveRoundSyncedWhenServerAccepts(t *testing.T) {
	s := newOnlineStore(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(api.Snapshot{})
	})

	outcome, err := s.SaveRound(scoredRound("r1", 85))
	if err != nil {
		t.Fatalf("SaveRound failed: %v", err)
	}
	if outcome.Kind != OutcomeSynced {
		t.Errorf("outcome = %+v, want Synced", outcome)
	}
	if got := s.SyncState().Status; got != models.SyncSynced {
		t.Errorf("state = %q, want synced", got)
	}
}

func TestConflictForksLocalEditAndKeepsBothVersions(t *testing.T) {
	serverRound := models.Round{
		ID:        "r1",
		CourseID:  "c1",
		TeeID:     "server-tee",
		StartedAt: "2026-01-01T08:00:00Z",
		UpdatedAt: "2026-01-02T08:00:00Z",
		Scores:    []models.HoleScore{{HoleNumber: 1, Strokes: 4}},
	}

	s := newOnlineStore(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPut && r.URL.Path == "/api/v1/users/u1/rounds/r1":
			w.WriteHeader(http.StatusConflict)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"error":       "stale round",
				"serverRound": serverRound,
			})
		case r.Method == http.MethodGet && r.URL.Path == "/api/v1/users/u1/snapshot":
			json.NewEncoder(w).Encode(api.Snapshot{Rounds: []models.Round{serverRound}})
		case r.URL.Path == "/api/v1/leaderboard":
			json.NewEncoder(w).Encode(map[string]interface{}{"entries": []models.LeaderboardEntry{}})
		default:
			json.NewEncoder(w).Encode(api.Snapshot{})
		}
	})

	local := models.Round{
		ID:       "r1",
		CourseID: "c1",
		TeeID:    "local-tee",
		Scores:   []models.HoleScore{{HoleNumber: 1, Strokes: 6}},
	}
	outcome, err := s.SaveRound(local)
	if err != nil {
		t.Fatalf("SaveRound failed: %v", err)
	}

	if outcome.Kind != OutcomeConflict {
		t.Fatalf("outcome = %+v, want Conflict", outcome)
	}
	if outcome.ForkedID == "" || outcome.ForkedID == "r1" {
		t.Fatalf("ForkedID = %q, want a fresh id", outcome.ForkedID)
	}

	fork := s.RoundByID(outcome.ForkedID)
	if fork == nil {
		t.Fatal("forked round missing locally")
	}
	if fork.TeeID != "local-tee" || fork.ScoreFor(1) != 6 {
		t.Errorf("fork does not carry the local edit: %+v", fork)
	}
	if fork.StartedAt == local.StartedAt || fork.UpdatedAt == "" {
		t.Error("fork should carry fresh timestamps")
	}

	original := s.RoundByID("r1")
	if original == nil {
		t.Fatal("server version of the round missing after re-pull")
	}
	if original.TeeID != "server-tee" {
		t.Errorf("round r1 tee = %q, want the server copy", original.TeeID)
	}

	state := s.SyncState()
	if state.Status != models.SyncConflict {
		t.Errorf("state = %q, want conflict", state.Status)
	}
	if !strings.Contains(state.Message, "preserved local edit as a new round") {
		t.Errorf("state message = %q", state.Message)
	}
}

func TestStartRoundConflictKeepsForkActive(t *testing.T) {
	var rejectedID string
	s := newOnlineStore(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPut && strings.Contains(r.URL.Path, "/rounds/"):
			id := r.URL.Path[strings.LastIndex(r.URL.Path, "/")+1:]
			if rejectedID == "" {
				rejectedID = id
				w.WriteHeader(http.StatusConflict)
				json.NewEncoder(w).Encode(map[string]interface{}{
					"error": "stale round",
					"serverRound": models.Round{
						ID:        id,
						CourseID:  "c1",
						TeeID:     "server-tee",
						StartedAt: "2026-01-01T08:00:00Z",
					},
				})
				return
			}
			json.NewEncoder(w).Encode(api.Snapshot{})
		case r.Method == http.MethodGet && r.URL.Path == "/api/v1/users/u1/snapshot":
			json.NewEncoder(w).Encode(api.Snapshot{Rounds: []models.Round{{
				ID:        rejectedID,
				CourseID:  "c1",
				TeeID:     "server-tee",
				StartedAt: "2026-01-01T08:00:00Z",
			}}})
		case r.URL.Path == "/api/v1/leaderboard":
			json.NewEncoder(w).Encode(map[string]interface{}{"entries": []models.LeaderboardEntry{}})
		default:
			json.NewEncoder(w).Encode(api.Snapshot{})
		}
	})

	round, outcome, err := s.StartRound("c1", "t1")
	if err != nil {
		t.Fatalf("StartRound failed: %v", err)
	}
	if outcome.Kind != OutcomeConflict {
		t.Fatalf("outcome = %+v, want Conflict", outcome)
	}
	if round.ID != outcome.ForkedID {
		t.Errorf("returned round id = %q, want the fork %q", round.ID, outcome.ForkedID)
	}
	if got := s.ActiveRoundID(); got != outcome.ForkedID {
		t.Errorf("active = %q, want the fork %q, not the rejected id %q", got, outcome.ForkedID, rejectedID)
	}
}

func TestGuestLeaderboardAggregatesScoredRounds(t *testing.T) {
	s := newOfflineStore(t)

	for i, strokes := range []int{85, 90, 78} {
		if _, err := s.SaveRound(scoredRound(string(rune('a'+i)), strokes)); err != nil {
			t.Fatal(err)
		}
	}
	// Scoreless rounds are excluded from the aggregates.
	if _, err := s.SaveRound(models.Round{ID: "empty", CourseID: "c1"}); err != nil {
		t.Fatal(err)
	}

	if err := s.RefreshLeaderboard("all", "", ""); err != nil {
		t.Fatalf("RefreshLeaderboard failed: %v", err)
	}

	board := s.Leaderboard()
	if len(board) != 1 {
		t.Fatalf("board = %+v, want a single Guest entry", board)
	}
	e := board[0]
	if e.Name != "Guest" || e.Position != 1 {
		t.Errorf("entry = %+v", e)
	}
	if e.Rounds != 3 {
		t.Errorf("rounds = %d, want 3", e.Rounds)
	}
	if e.BestScore != 78 {
		t.Errorf("best = %d, want 78", e.BestScore)
	}
	if math.Abs(e.AverageScore-253.0/3.0) > 1e-9 {
		t.Errorf("average = %v, want %v", e.AverageScore, 253.0/3.0)
	}
}

func TestGuestLeaderboardEmptyWithoutScoredRounds(t *testing.T) {
	s := newOfflineStore(t)
	if _, err := s.SaveRound(models.Round{ID: "empty", CourseID: "c1"}); err != nil {
		t.Fatal(err)
	}
	if err := s.RefreshLeaderboard("all", "", ""); err != nil {
		t.Fatal(err)
	}
	if board := s.Leaderboard(); len(board) != 0 {
		t.Errorf("board = %+v, want empty", board)
	}
}

func TestCompleteRoundStampsAndClearsActivePointer(t *testing.T) {
	s := newOfflineStore(t)

	round, _, err := s.StartRound("c1", "t1")
	if err != nil {
		t.Fatalf("StartRound failed: %v", err)
	}
	if s.ActiveRoundID() != round.ID {
		t.Fatalf("active = %q, want %q", s.ActiveRoundID(), round.ID)
	}

	if _, err := s.RecordScore(round.ID, 1, 5); err != nil {
		t.Fatalf("RecordScore failed: %v", err)
	}

	if _, err := s.CompleteRound(round.ID); err != nil {
		t.Fatalf("CompleteRound failed: %v", err)
	}

	done := s.RoundByID(round.ID)
	if done == nil || done.CompletedAt == "" {
		t.Errorf("round not stamped complete: %+v", done)
	}
	if s.ActiveRoundID() != "" {
		t.Errorf("active pointer not cleared: %q", s.ActiveRoundID())
	}
	if board := s.Leaderboard(); len(board) != 1 {
		t.Errorf("leaderboard not refreshed after completion: %+v", board)
	}
}

func TestDeleteActiveRoundClearsPointer(t *testing.T) {
	s := newOfflineStore(t)

	round, _, err := s.StartRound("c1", "t1")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.DeleteRound(round.ID); err != nil {
		t.Fatalf("DeleteRound failed: %v", err)
	}
	if s.RoundByID(round.ID) != nil {
		t.Error("round still present after delete")
	}
	if s.ActiveRoundID() != "" {
		t.Errorf("active pointer survived the delete: %q", s.ActiveRoundID())
	}
}

func TestSignOutWipesAccountStateAndReseeds(t *testing.T) {
	s := newOfflineStore(t)

	if _, err := s.SaveRound(scoredRound("r1", 85)); err != nil {
		t.Fatal(err)
	}
	if _, err := s.SaveProfile(models.Profile{DisplayName: "Alex"}); err != nil {
		t.Fatal(err)
	}

	if err := s.SignOut(); err != nil {
		t.Fatalf("SignOut failed: %v", err)
	}

	if s.RoundByID("r1") != nil {
		t.Error("account round survived sign-out")
	}
	if s.RoundByID("demo-round") == nil {
		t.Error("demo round was not reseeded")
	}
	if s.Profile() != nil {
		t.Error("profile survived sign-out")
	}
	if board := s.Leaderboard(); len(board) != 0 {
		t.Errorf("leaderboard = %+v, want empty until next refresh", board)
	}
	if got := s.SyncState().Status; got != models.SyncLocalOnly {
		t.Errorf("state = %q, want local_only", got)
	}
}

func TestSignInReplacesLocalStateWithSnapshot(t *testing.T) {
	serverCourses := []models.Course{{ID: "c-remote", Name: "Remote Links", Holes: []models.Hole{{Number: 1, Par: 4}}}}
	serverRounds := []models.Round{{ID: "r-remote", CourseID: "c-remote", StartedAt: "2026-01-01T08:00:00Z"}}
	activeID := "r-remote"

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/api/v1/users/u1/snapshot":
			json.NewEncoder(w).Encode(api.Snapshot{
				Courses:       serverCourses,
				Rounds:        serverRounds,
				ActiveRoundID: &activeID,
			})
		case r.URL.Path == "/api/v1/leaderboard":
			json.NewEncoder(w).Encode(map[string]interface{}{
				"entries": []models.LeaderboardEntry{
					{PlayerID: "p1", Name: "Alex", Rounds: 2, BestScore: 74, AverageScore: 77, Position: 1},
				},
			})
		default:
			json.NewEncoder(w).Encode(api.Snapshot{})
		}
	}))
	defer srv.Close()

	client := api.NewClient(srv.URL)
	s, err := New(newTestDB(t), client)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.SaveRound(scoredRound("r-local", 85)); err != nil {
		t.Fatal(err)
	}

	if err := s.SignIn("tok", "u1"); err != nil {
		t.Fatalf("SignIn failed: %v", err)
	}

	if s.RoundByID("r-local") != nil {
		t.Error("local round survived the snapshot replace")
	}
	if s.RoundByID("r-remote") == nil {
		t.Error("server round missing after sign-in")
	}
	if s.CourseByID("c-remote") == nil {
		t.Error("server course missing after sign-in")
	}
	if s.ActiveRoundID() != "r-remote" {
		t.Errorf("active = %q, want r-remote", s.ActiveRoundID())
	}
	board := s.Leaderboard()
	if len(board) != 1 || board[0].Name != "Alex" {
		t.Errorf("board = %+v, want the server entries verbatim", board)
	}
	if got := s.SyncState().Status; got != models.SyncSynced {
		t.Errorf("state = %q, want synced", got)
	}
}

func TestImportBackupMergeOverwritesById(t *testing.T) {
	s := newOfflineStore(t)

	if _, err := s.SaveCourse(models.Course{ID: "c1", Name: "Old Name", Holes: []models.Hole{{Number: 1, Par: 4}}}); err != nil {
		t.Fatal(err)
	}
	if _, err := s.SaveRound(scoredRound("keep-me", 80)); err != nil {
		t.Fatal(err)
	}

	res := &backup.Result{Payload: backup.Payload{
		Schema:  backup.Schema,
		Version: backup.Version,
		Data: backup.Data{
			Courses: []models.Course{{ID: "c1", Name: "New Name", Holes: []models.Hole{{Number: 1, Par: 4}}}},
			Rounds:  []models.Round{scoredRound("imported", 77)},
		},
	}}
	outcome, err := s.ImportBackup(res, ImportMerge)
	if err != nil {
		t.Fatalf("ImportBackup failed: %v", err)
	}
	if outcome.Kind != OutcomeLocalOnly {
		t.Errorf("outcome = %+v, want LocalOnly without a session", outcome)
	}

	if c := s.CourseByID("c1"); c == nil || c.Name != "New Name" {
		t.Errorf("course not overwritten by id: %+v", c)
	}
	if s.RoundByID("keep-me") == nil {
		t.Error("merge import dropped an unrelated local round")
	}
	if s.RoundByID("imported") == nil {
		t.Error("imported round missing")
	}
}

func TestImportBackupReplaceWipesFirst(t *testing.T) {
	s := newOfflineStore(t)

	if _, err := s.SaveRound(scoredRound("old", 80)); err != nil {
		t.Fatal(err)
	}

	res := &backup.Result{Payload: backup.Payload{
		Schema:  backup.Schema,
		Version: backup.Version,
		Data: backup.Data{
			Rounds: []models.Round{scoredRound("new", 77)},
		},
	}}
	if _, err := s.ImportBackup(res, ImportReplace); err != nil {
		t.Fatalf("ImportBackup failed: %v", err)
	}

	if s.RoundByID("old") != nil {
		t.Error("replace import kept a pre-existing round")
	}
	if s.RoundByID("new") == nil {
		t.Error("imported round missing")
	}
}

func TestBackupFileRoundTrip(t *testing.T) {
	s := newOfflineStore(t)
	if _, err := s.SaveRound(scoredRound("r1", 85)); err != nil {
		t.Fatal(err)
	}

	dir := t.TempDir()
	path, err := s.ExportBackupFile(dir)
	if err != nil {
		t.Fatalf("ExportBackupFile failed: %v", err)
	}

	other := newOfflineStore(t)
	res, _, err := other.ImportBackupFile(path, ImportReplace)
	if err != nil {
		t.Fatalf("ImportBackupFile failed: %v", err)
	}
	if len(res.Warnings) != 0 {
		t.Errorf("warnings = %v", res.Warnings)
	}
	if other.RoundByID("r1") == nil {
		t.Error("round missing after file round trip")
	}
}
