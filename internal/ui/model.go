package ui

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/juandrep/golftrack/internal/models"
	"github.com/juandrep/golftrack/internal/store"
)

type Mode int

const (
	ModeNormal Mode = iota
	ModeConfirmDelete
	ModeImportPath
	ModeHelp
)

type Panel int

const (
	PanelCourses Panel = iota
	PanelRounds
	PanelScorecard
	PanelLeaderboard
)

type Model struct {
	store *store.Store

	courses   []models.Course
	rounds    []models.Round
	board     []models.LeaderboardEntry
	active    string
	settings  models.Settings
	syncState models.SyncState

	mode        Mode
	activePanel Panel

	courseCursor int
	roundCursor  int
	hole         int

	pathInput textinput.Model

	deleteTargetID    string
	deleteTargetTitle string

	width  int
	height int

	keys   KeyMap
	status string
	err    error
}

type errMsg error
type statusMsg string

// actionDoneMsg carries the settled outcome of a store mutation back
// into the event loop.
type actionDoneMsg struct {
	outcome store.SyncOutcome
	note    string
}

func NewModel(st *store.Store) Model {
	pi := textinput.New()
	pi.Placeholder = "path/to/golftrack-backup.json"
	pi.CharLimit = 512

	m := Model{
		store:       st,
		keys:        NewKeyMap(),
		pathInput:   pi,
		activePanel: PanelCourses,
		hole:        1,
	}
	m.pull()
	return m
}

// pull re-reads the coordinator's cached view state.
func (m *Model) pull() {
	m.courses = m.store.Courses()
	m.rounds = m.store.Rounds()
	m.board = m.store.Leaderboard()
	m.active = m.store.ActiveRoundID()
	m.settings = m.store.Settings()
	m.syncState = m.store.SyncState()

	if m.courseCursor >= len(m.courses) {
		m.courseCursor = 0
	}
	if m.roundCursor >= len(m.rounds) {
		m.roundCursor = 0
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

// currentRound prefers the active round, falling back to the round
// selected in the list.
func (m Model) currentRound() *models.Round {
	if m.active != "" {
		for i := range m.rounds {
			if m.rounds[i].ID == m.active {
				return &m.rounds[i]
			}
		}
	}
	if len(m.rounds) > 0 && m.roundCursor < len(m.rounds) {
		return &m.rounds[m.roundCursor]
	}
	return nil
}

func (m Model) selectedCourse() *models.Course {
	if len(m.courses) > 0 && m.courseCursor < len(m.courses) {
		return &m.courses[m.courseCursor]
	}
	return nil
}

func (m Model) courseFor(round *models.Round) *models.Course {
	if round == nil {
		return nil
	}
	for i := range m.courses {
		if m.courses[i].ID == round.CourseID {
			return &m.courses[i]
		}
	}
	return nil
}

// Commands

func (m Model) startRound() tea.Cmd {
	course := m.selectedCourse()
	if course == nil {
		return func() tea.Msg { return statusMsg("No course selected") }
	}
	teeID := ""
	if len(course.Tees) > 0 {
		teeID = course.Tees[0].ID
	}
	return func() tea.Msg {
		_, outcome, err := m.store.StartRound(course.ID, teeID)
		if err != nil {
			return errMsg(err)
		}
		return actionDoneMsg{outcome: outcome, note: "Round started on " + course.Name}
	}
}

func (m Model) adjustScore(delta int) tea.Cmd {
	round := m.currentRound()
	if round == nil {
		return func() tea.Msg { return statusMsg("No round to score") }
	}
	strokes := round.ScoreFor(m.hole) + delta
	if strokes < 0 {
		strokes = 0
	}
	id, hole := round.ID, m.hole
	return func() tea.Msg {
		outcome, err := m.store.RecordScore(id, hole, strokes)
		if err != nil {
			return errMsg(err)
		}
		return actionDoneMsg{outcome: outcome}
	}
}

func (m Model) completeRound() tea.Cmd {
	round := m.currentRound()
	if round == nil {
		return func() tea.Msg { return statusMsg("No round to complete") }
	}
	id := round.ID
	return func() tea.Msg {
		outcome, err := m.store.CompleteRound(id)
		if err != nil {
			return errMsg(err)
		}
		return actionDoneMsg{outcome: outcome, note: "Round completed"}
	}
}

func (m Model) deleteRound(id string) tea.Cmd {
	return func() tea.Msg {
		outcome, err := m.store.DeleteRound(id)
		if err != nil {
			return errMsg(err)
		}
		return actionDoneMsg{outcome: outcome, note: "Round deleted"}
	}
}

func (m Model) toggleUnits() tea.Cmd {
	unit := models.UnitYards
	if m.settings.DistanceUnit == models.UnitYards {
		unit = models.UnitMeters
	}
	return func() tea.Msg {
		outcome, err := m.store.SetUnit(unit)
		if err != nil {
			return errMsg(err)
		}
		return actionDoneMsg{outcome: outcome, note: "Distances in " + string(unit)}
	}
}

func (m Model) refreshLeaderboard() tea.Cmd {
	return func() tea.Msg {
		if err := m.store.RefreshLeaderboard("all", "", ""); err != nil {
			return errMsg(err)
		}
		return actionDoneMsg{note: "Leaderboard refreshed"}
	}
}

func (m Model) syncNow() tea.Cmd {
	return func() tea.Msg {
		if !m.store.HasSession() {
			return statusMsg("Not signed in; working locally")
		}
		if err := m.store.SyncFromRemote(); err != nil {
			return errMsg(err)
		}
		return actionDoneMsg{note: "Synced from server"}
	}
}

func (m Model) exportBackup() tea.Cmd {
	return func() tea.Msg {
		dir, err := os.UserHomeDir()
		if err != nil {
			dir = "."
		}
		path, err := m.store.ExportBackupFile(dir)
		if err != nil {
			return errMsg(err)
		}
		return statusMsg("Backup written to " + path)
	}
}

func (m Model) importBackup(path string, mode store.ImportMode) tea.Cmd {
	return func() tea.Msg {
		res, outcome, err := m.store.ImportBackupFile(path, mode)
		if err != nil {
			return errMsg(err)
		}
		note := fmt.Sprintf("Imported %d courses, %d rounds", res.Preview.CourseCount, res.Preview.RoundCount)
		if len(res.Warnings) > 0 {
			note += " (" + strings.Join(res.Warnings, "; ") + ")"
		}
		return actionDoneMsg{outcome: outcome, note: note}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case errMsg:
		m.err = msg
		m.pull()

	case statusMsg:
		m.status = string(msg)

	case actionDoneMsg:
		m.err = nil
		m.pull()
		m.status = msg.note
		switch msg.outcome.Kind {
		case store.OutcomeConflict:
			m.status = "Conflict: edit preserved as a new round"
		case store.OutcomeLocalOnly:
			if msg.outcome.Reason != "no account session" && msg.outcome.Reason != "" {
				m.status = "Saved locally (sync failed)"
			}
		}

	case tea.KeyMsg:
		switch m.mode {
		case ModeConfirmDelete:
			return m.handleConfirmDeleteKeys(msg)
		case ModeImportPath:
			return m.handleImportKeys(msg)
		case ModeHelp:
			m.mode = ModeNormal
			return m, nil
		}
		return m.handleNormalKeys(msg)
	}

	return m, nil
}

func (m Model) handleNormalKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.mode = ModeHelp

	case key.Matches(msg, m.keys.Tab):
		m.activePanel = (m.activePanel + 1) % 4

	case key.Matches(msg, m.keys.ShiftTab):
		m.activePanel = (m.activePanel + 3) % 4

	case key.Matches(msg, m.keys.Up):
		switch m.activePanel {
		case PanelCourses:
			if m.courseCursor > 0 {
				m.courseCursor--
			}
		case PanelRounds:
			if m.roundCursor > 0 {
				m.roundCursor--
			}
		}

	case key.Matches(msg, m.keys.Down):
		switch m.activePanel {
		case PanelCourses:
			if m.courseCursor < len(m.courses)-1 {
				m.courseCursor++
			}
		case PanelRounds:
			if m.roundCursor < len(m.rounds)-1 {
				m.roundCursor++
			}
		}

	case key.Matches(msg, m.keys.PrevHole):
		if m.hole > 1 {
			m.hole--
		}

	case key.Matches(msg, m.keys.NextHole):
		if m.hole < m.holeCount() {
			m.hole++
		}

	case key.Matches(msg, m.keys.Increment):
		return m, m.adjustScore(1)

	case key.Matches(msg, m.keys.Decrement):
		return m, m.adjustScore(-1)

	case key.Matches(msg, m.keys.NewRound):
		return m, m.startRound()

	case key.Matches(msg, m.keys.Complete):
		return m, m.completeRound()

	case key.Matches(msg, m.keys.Delete):
		if len(m.rounds) > 0 && m.roundCursor < len(m.rounds) {
			r := m.rounds[m.roundCursor]
			m.deleteTargetID = r.ID
			m.deleteTargetTitle = m.roundLabel(r)
			m.mode = ModeConfirmDelete
		}

	case key.Matches(msg, m.keys.Units):
		return m, m.toggleUnits()

	case key.Matches(msg, m.keys.Refresh):
		return m, m.refreshLeaderboard()

	case key.Matches(msg, m.keys.Sync):
		return m, m.syncNow()

	case key.Matches(msg, m.keys.Export):
		return m, m.exportBackup()

	case key.Matches(msg, m.keys.Import):
		m.pathInput.SetValue("")
		m.pathInput.Focus()
		m.mode = ModeImportPath
	}

	return m, nil
}

func (m Model) handleConfirmDeleteKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "enter":
		id := m.deleteTargetID
		m.mode = ModeNormal
		m.deleteTargetID = ""
		return m, m.deleteRound(id)
	case "n", "esc":
		m.mode = ModeNormal
		m.deleteTargetID = ""
	}
	return m, nil
}

func (m Model) handleImportKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = ModeNormal
		m.pathInput.Blur()
		return m, nil
	case "enter":
		path := strings.TrimSpace(m.pathInput.Value())
		m.mode = ModeNormal
		m.pathInput.Blur()
		if path == "" {
			return m, nil
		}
		return m, m.importBackup(path, store.ImportMerge)
	case "ctrl+r":
		path := strings.TrimSpace(m.pathInput.Value())
		m.mode = ModeNormal
		m.pathInput.Blur()
		if path == "" {
			return m, nil
		}
		return m, m.importBackup(path, store.ImportReplace)
	}

	var cmd tea.Cmd
	m.pathInput, cmd = m.pathInput.Update(msg)
	return m, cmd
}

func (m Model) holeCount() int {
	course := m.courseFor(m.currentRound())
	if course == nil || len(course.Holes) == 0 {
		return 18
	}
	return len(course.Holes)
}

func (m Model) roundLabel(r models.Round) string {
	name := r.CourseID
	for i := range m.courses {
		if m.courses[i].ID == r.CourseID {
			name = m.courses[i].Name
		}
	}
	when := r.StartedAt
	if t := models.ParseStamp(r.StartedAt); !t.IsZero() {
		when = t.Format("Jan 2 15:04")
	}
	return fmt.Sprintf("%s · %s", name, when)
}

// View

func (m Model) View() string {
	if m.width == 0 {
		return "loading..."
	}

	header := HeaderStyle.Render("⛳ golftrack")

	switch m.mode {
	case ModeHelp:
		return lipgloss.JoinVertical(lipgloss.Left, header, m.helpView(), m.statusBar())
	case ModeConfirmDelete:
		dialog := DialogStyle.Render(fmt.Sprintf("Delete round?\n\n%s\n\n[y] yes   [n] no", m.deleteTargetTitle))
		return lipgloss.JoinVertical(lipgloss.Left, header, dialog, m.statusBar())
	case ModeImportPath:
		dialog := DialogStyle.Render("Import backup file\n\n" + m.pathInput.View() +
			"\n\nEnter: merge import   Ctrl+R: replace import   Esc: cancel")
		return lipgloss.JoinVertical(lipgloss.Left, header, dialog, m.statusBar())
	}

	sideWidth := m.width / 4
	body := lipgloss.JoinHorizontal(lipgloss.Top,
		m.panel(PanelCourses, "Courses", m.coursesView(), sideWidth),
		m.panel(PanelRounds, "Rounds", m.roundsView(), sideWidth),
		m.panel(PanelScorecard, "Scorecard", m.scorecardView(), m.width-3*sideWidth-8),
		m.panel(PanelLeaderboard, "Leaderboard", m.leaderboardView(), sideWidth),
	)

	return lipgloss.JoinVertical(lipgloss.Left, header, body, m.statusBar())
}

func (m Model) panel(p Panel, title, content string, width int) string {
	style := PanelStyle
	if m.activePanel == p {
		style = ActivePanelStyle
	}
	return style.Width(width).Render(TitleStyle.Render(title) + "\n" + content)
}

func (m Model) coursesView() string {
	if len(m.courses) == 0 {
		return MutedStyle.Render("No courses yet")
	}
	var b strings.Builder
	for i, c := range m.courses {
		line := c.Name
		if c.PublishStatus == models.PublishDraft {
			line += MutedStyle.Render(" (draft)")
		}
		if i == m.courseCursor && m.activePanel == PanelCourses {
			line = SelectedListItemStyle.Render(line)
		} else {
			line = ListItemStyle.Render(line)
		}
		b.WriteString(line + "\n")
	}
	return b.String()
}

func (m Model) roundsView() string {
	if len(m.rounds) == 0 {
		return MutedStyle.Render("No rounds yet")
	}
	var b strings.Builder
	for i, r := range m.rounds {
		line := m.roundLabel(r)
		if r.HasScores() {
			line += fmt.Sprintf("  [%d]", r.TotalStrokes())
		}
		if r.ID == m.active {
			line = SelectedStyle.Render("▶ ") + line
		}
		if i == m.roundCursor && m.activePanel == PanelRounds {
			line = SelectedListItemStyle.Render(line)
		} else {
			line = ListItemStyle.Render(line)
		}
		b.WriteString(line + "\n")
	}
	return b.String()
}

func (m Model) scorecardView() string {
	round := m.currentRound()
	if round == nil {
		return MutedStyle.Render("Start a round with Ctrl+N")
	}
	course := m.courseFor(round)

	var b strings.Builder
	total := 0
	for n := 1; n <= m.holeCount(); n++ {
		par := 0
		if course != nil && n <= len(course.Holes) {
			par = course.Holes[n-1].Par
		}
		strokes := round.ScoreFor(n)
		total += strokes

		line := fmt.Sprintf("Hole %2d  par %d  ", n, par)
		if strokes > 0 {
			line += fmt.Sprintf("%2d", strokes)
		} else {
			line += " –"
		}
		if n == m.hole {
			line = SelectedStyle.Render("› " + line)
		} else {
			line = "  " + line
		}
		b.WriteString(line + "\n")
	}
	b.WriteString("\n" + TitleStyle.Render(fmt.Sprintf("Total: %d", total)))
	if round.CompletedAt != "" {
		b.WriteString(MutedStyle.Render("  (completed)"))
	}
	return b.String()
}

func (m Model) leaderboardView() string {
	if len(m.board) == 0 {
		return MutedStyle.Render("No leaderboard entries")
	}
	var b strings.Builder
	for _, e := range m.board {
		b.WriteString(fmt.Sprintf("%d. %s\n", e.Position, e.Name))
		b.WriteString(MutedStyle.Render(fmt.Sprintf("   %d rounds · best %d · avg %.1f", e.Rounds, e.BestScore, e.AverageScore)) + "\n")
	}
	return b.String()
}

func (m Model) helpView() string {
	var b strings.Builder
	for _, row := range m.keys.FullHelp() {
		for _, binding := range row {
			b.WriteString(KeyStyle.Render(binding.Help().Key))
			b.WriteString(" " + KeyHintStyle.Render(binding.Help().Desc) + "   ")
		}
		b.WriteString("\n")
	}
	b.WriteString("\n" + MutedStyle.Render("press any key to close"))
	return DialogStyle.Render(b.String())
}

func (m Model) statusBar() string {
	var badge string
	switch m.syncState.Status {
	case models.SyncSynced:
		badge = SelectedStyle.Render("● synced")
	case models.SyncSyncing:
		badge = MutedStyle.Render("◌ syncing")
	case models.SyncConflict:
		badge = ConflictStyle.Render("⚠ conflict")
	default:
		badge = MutedStyle.Render("○ local only")
	}

	parts := []string{badge}
	if m.err != nil {
		parts = append(parts, ErrorStyle.Render(m.err.Error()))
	} else if m.status != "" {
		parts = append(parts, m.status)
	} else if m.syncState.Message != "" {
		parts = append(parts, m.syncState.Message)
	}
	parts = append(parts, MutedStyle.Render(fmt.Sprintf("units: %s", m.settings.DistanceUnit)))

	var hints []string
	for _, binding := range m.keys.ShortHelp() {
		hints = append(hints, KeyStyle.Render(binding.Help().Key)+" "+KeyHintStyle.Render(binding.Help().Desc))
	}
	parts = append(parts, strings.Join(hints, "  "))

	return StatusBarStyle.Render(strings.Join(parts, "  │  "))
}
