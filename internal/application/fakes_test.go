package application

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"

	"scrimbot/internal/domain"
	"scrimbot/internal/domain/entities"
	"scrimbot/internal/ports/output"
)

// memPanels is an in-memory PanelRepository with the same guard semantics as
// the SQL implementation: every refused precondition maps to the same domain
// error, and a refused call mutates nothing.
type memPanels struct {
	mu     sync.Mutex
	nextID uint
	panels map[uint]*entities.AvailabilityPanel
}

var _ output.PanelRepository = (*memPanels)(nil)

func newMemPanels() *memPanels {
	return &memPanels{panels: make(map[uint]*entities.AvailabilityPanel)}
}

func clonePanel(p *entities.AvailabilityPanel) *entities.AvailabilityPanel {
	cp := *p
	cp.LeagueFilters = append([]string(nil), p.LeagueFilters...)
	cp.Slots = make([]entities.TimeSlot, len(p.Slots))
	for i, s := range p.Slots {
		cs := s
		cs.Challenges = append([]entities.PendingChallenge(nil), s.Challenges...)
		cp.Slots[i] = cs
	}
	return &cp
}

func (m *memPanels) Create(_ context.Context, panel *entities.AvailabilityPanel) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.panels {
		if p.TeamID == panel.TeamID && p.PanelType == panel.PanelType {
			return domain.ErrPanelExists
		}
	}
	m.nextID++
	panel.ID = m.nextID
	m.panels[panel.ID] = clonePanel(panel)
	return nil
}

func (m *memPanels) FindByID(_ context.Context, id uint) (*entities.AvailabilityPanel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.panels[id]
	if !ok {
		return nil, domain.ErrPanelNotFound
	}
	return clonePanel(p), nil
}

func (m *memPanels) FindByTeamAndType(_ context.Context, teamID uint, panelType string) (*entities.AvailabilityPanel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.panels {
		if p.TeamID == teamID && p.PanelType == panelType {
			return clonePanel(p), nil
		}
	}
	return nil, domain.ErrPanelNotFound
}

func (m *memPanels) FindByMessageID(_ context.Context, messageID string) (*entities.AvailabilityPanel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.panels {
		if p.MessageID == messageID {
			return clonePanel(p), nil
		}
	}
	return nil, domain.ErrPanelNotFound
}

func (m *memPanels) SetMessageID(_ context.Context, panelID uint, channelID, messageID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.panels[panelID]
	if !ok {
		return domain.ErrPanelNotFound
	}
	p.ChannelID = channelID
	p.MessageID = messageID
	return nil
}

func (m *memPanels) SetSlotAvailable(_ context.Context, panelID uint, timeLabel string, available bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.panels[panelID]
	if !ok {
		return domain.ErrPanelNotFound
	}
	slot := p.Slot(timeLabel)
	if slot == nil {
		return domain.ErrSlotNotFound
	}
	if slot.Status == domain.SlotConfirmed {
		return domain.ErrSlotTaken
	}
	if !available && len(slot.Challenges) > 0 {
		return domain.ErrSlotHasChallenges
	}
	if available {
		slot.Status = domain.SlotAvailable
	} else {
		slot.Status = domain.SlotUnavailable
	}
	return nil
}

func (m *memPanels) AddChallenge(_ context.Context, panelID uint, timeLabel string, challenge *entities.PendingChallenge) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.panels[panelID]
	if !ok {
		return domain.ErrPanelNotFound
	}
	slot := p.Slot(timeLabel)
	if slot == nil {
		return domain.ErrSlotNotFound
	}
	if slot.Status == domain.SlotConfirmed {
		return domain.ErrSlotTaken
	}
	if slot.Status != domain.SlotAvailable {
		return domain.ErrSlotUnavailable
	}
	if slot.ChallengeByTeam(challenge.TeamID) != nil {
		return domain.ErrDuplicateChallenge
	}
	slot.Challenges = append(slot.Challenges, *challenge)
	return nil
}

func (m *memPanels) RemoveChallenge(_ context.Context, panelID uint, timeLabel string, challengeID uuid.UUID) (*entities.PendingChallenge, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.panels[panelID]
	if !ok {
		return nil, domain.ErrChallengeNotFound
	}
	slot := p.Slot(timeLabel)
	if slot == nil {
		return nil, domain.ErrChallengeNotFound
	}
	for i, c := range slot.Challenges {
		if c.ID == challengeID {
			slot.Challenges = append(slot.Challenges[:i], slot.Challenges[i+1:]...)
			removed := c
			return &removed, nil
		}
	}
	return nil, domain.ErrChallengeNotFound
}

func (m *memPanels) ConfirmSlot(_ context.Context, panelID uint, timeLabel string, challengeID uuid.UUID) (*output.ConfirmOutcome, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.panels[panelID]
	if !ok {
		return nil, domain.ErrPanelNotFound
	}
	slot := p.Slot(timeLabel)
	if slot == nil {
		return nil, domain.ErrSlotNotFound
	}
	if slot.Status == domain.SlotConfirmed {
		return nil, domain.ErrSlotTaken
	}
	outcome := &output.ConfirmOutcome{}
	winnerIdx := -1
	for i, c := range slot.Challenges {
		if c.ID == challengeID {
			winnerIdx = i
			outcome.Winner = c
			break
		}
	}
	if winnerIdx < 0 {
		return nil, domain.ErrChallengeNotFound
	}
	if m.teamConfirmedAt(outcome.Winner.TeamID, timeLabel) {
		return nil, domain.ErrDoubleBooked
	}
	for i, c := range slot.Challenges {
		if i != winnerIdx {
			outcome.Losers = append(outcome.Losers, c)
		}
	}
	slot.Status = domain.SlotConfirmed
	slot.OpponentTeamID = outcome.Winner.TeamID
	slot.Challenges = nil
	return outcome, nil
}

func (m *memPanels) ForceConfirmSlot(_ context.Context, teamID uint, panelType, timeLabel string, opponentTeamID uint) (bool, []entities.PendingChallenge, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.panels {
		if p.TeamID != teamID || p.PanelType != panelType {
			continue
		}
		slot := p.Slot(timeLabel)
		if slot == nil {
			return false, nil, nil
		}
		if slot.Status == domain.SlotConfirmed && slot.OpponentTeamID != opponentTeamID {
			return false, nil, nil
		}
		dropped := slot.Challenges
		slot.Status = domain.SlotConfirmed
		slot.OpponentTeamID = opponentTeamID
		slot.Challenges = nil
		return true, dropped, nil
	}
	return false, nil, nil
}

func (m *memPanels) ReleaseSlot(_ context.Context, panelID uint, timeLabel string) (uint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.panels[panelID]
	if !ok {
		return 0, domain.ErrNoConfirmedMatch
	}
	slot := p.Slot(timeLabel)
	if slot == nil || slot.Status != domain.SlotConfirmed {
		return 0, domain.ErrNoConfirmedMatch
	}
	opponent := slot.OpponentTeamID
	slot.Status = domain.SlotAvailable
	slot.OpponentTeamID = 0
	return opponent, nil
}

func (m *memPanels) ReleaseSlotByTeam(_ context.Context, teamID uint, panelType, timeLabel string, opponentTeamID uint) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.panels {
		if p.TeamID != teamID || p.PanelType != panelType {
			continue
		}
		slot := p.Slot(timeLabel)
		if slot == nil || slot.Status != domain.SlotConfirmed || slot.OpponentTeamID != opponentTeamID {
			return false, nil
		}
		slot.Status = domain.SlotAvailable
		slot.OpponentTeamID = 0
		return true, nil
	}
	return false, nil
}

func (m *memPanels) ClearChallenges(_ context.Context, panelID uint) ([]entities.PendingChallenge, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.panels[panelID]
	if !ok {
		return nil, domain.ErrPanelNotFound
	}
	var dropped []entities.PendingChallenge
	for i := range p.Slots {
		dropped = append(dropped, p.Slots[i].Challenges...)
		p.Slots[i].Challenges = nil
	}
	return dropped, nil
}

func (m *memPanels) TeamHasConfirmedAt(_ context.Context, teamID uint, timeLabel string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.teamConfirmedAt(teamID, timeLabel), nil
}

// teamConfirmedAt is the double-booking predicate; callers hold the lock.
func (m *memPanels) teamConfirmedAt(teamID uint, timeLabel string) bool {
	for _, p := range m.panels {
		slot := p.Slot(timeLabel)
		if slot == nil || slot.Status != domain.SlotConfirmed {
			continue
		}
		if p.TeamID == teamID || slot.OpponentTeamID == teamID {
			return true
		}
	}
	return false
}

func (m *memPanels) Delete(_ context.Context, id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.panels, id)
	return nil
}

func (m *memPanels) DeleteAll(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := int64(len(m.panels))
	m.panels = make(map[uint]*entities.AvailabilityPanel)
	return n, nil
}

// memTeams is a fixed team directory keyed by id and by member.
type memTeams struct {
	byID     map[uint]*entities.Team
	byMember map[string]uint // userID -> teamID
}

var _ output.TeamDirectory = (*memTeams)(nil)

func (m *memTeams) FindByID(_ context.Context, id uint) (*entities.Team, error) {
	t, ok := m.byID[id]
	if !ok {
		return nil, domain.ErrTeamNotFound
	}
	cp := *t
	return &cp, nil
}

func (m *memTeams) FindByMember(_ context.Context, guildID, userID string) (*entities.Team, error) {
	id, ok := m.byMember[userID]
	if !ok {
		return nil, domain.ErrTeamNotFound
	}
	t := m.byID[id]
	if t.GuildID != guildID {
		return nil, domain.ErrTeamNotFound
	}
	cp := *t
	return &cp, nil
}

type memGuilds struct {
	locales map[string]string
}

var _ output.GuildSettings = (*memGuilds)(nil)

func (m *memGuilds) Locale(_ context.Context, guildID string) (string, error) {
	return m.locales[guildID], nil
}

func (m *memGuilds) SetLocale(_ context.Context, guildID, locale string) error {
	m.locales[guildID] = locale
	return nil
}

// keyTranslator echoes the message key so tests assert on keys, not copy.
type keyTranslator struct{}

func (keyTranslator) T(_ string, key string, _ map[string]any) string { return key }

type notice struct {
	userID   string
	content  string
	controls []output.Control
}

// recNotifier records every notice; deliveries to users listed in failFor
// fail, which is how the submit rollback path is driven.
type recNotifier struct {
	mu      sync.Mutex
	sent    []notice
	failFor map[string]bool
}

var _ output.Notifier = (*recNotifier)(nil)

func (n *recNotifier) NotifyUser(_ context.Context, userID, content string, controls ...output.Control) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.failFor[userID] {
		return errors.New("dm closed")
	}
	n.sent = append(n.sent, notice{userID: userID, content: content, controls: controls})
	return nil
}

func (n *recNotifier) sentTo(userID string) []notice {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []notice
	for _, s := range n.sent {
		if s.userID == userID {
			out = append(out, s)
		}
	}
	return out
}

func (n *recNotifier) withKey(key string) []notice {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []notice
	for _, s := range n.sent {
		if s.content == key {
			out = append(out, s)
		}
	}
	return out
}

// recRenderer counts renders per panel.
type recRenderer struct {
	mu      sync.Mutex
	renders map[uint]int
}

var _ output.PanelRenderer = (*recRenderer)(nil)

func (r *recRenderer) Render(_ context.Context, panel *entities.AvailabilityPanel) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.renders == nil {
		r.renders = make(map[uint]int)
	}
	r.renders[panel.ID]++
	return nil
}

type noopMetrics struct{}

var _ output.Metrics = noopMetrics{}

func (noopMetrics) ChallengeSubmitted() {}
func (noopMetrics) ChallengeAccepted()  {}
func (noopMetrics) ChallengeRejected()  {}
func (noopMetrics) MatchAbandoned()     {}
func (noopMetrics) PanelCreated(string) {}
func (noopMetrics) SweepRun(int64)      {}

// fixture wires both services over the in-memory ports with four teams:
//
//	1 Lynx   (D1) manager mgr1, captain cap1, player player1
//	2 Ours   (D1) manager mgr2
//	3 Aigles (D2) manager mgr3
//	4 Loups  (D1) manager mgr4
type fixture struct {
	panels     *memPanels
	teams      *memTeams
	notifier   *recNotifier
	renderer   *recRenderer
	challenges *ChallengeService
	panelSvc   *PanelService
}

const guildID = "g1"

func newFixture() *fixture {
	teams := &memTeams{
		byID: map[uint]*entities.Team{
			1: {ID: 1, GuildID: guildID, Name: "Lynx", League: "D1", ManagerID: "mgr1", CaptainIDs: []string{"cap1"}},
			2: {ID: 2, GuildID: guildID, Name: "Ours", League: "D1", ManagerID: "mgr2"},
			3: {ID: 3, GuildID: guildID, Name: "Aigles", League: "D2", ManagerID: "mgr3"},
			4: {ID: 4, GuildID: guildID, Name: "Loups", League: "D1", ManagerID: "mgr4"},
		},
		byMember: map[string]uint{
			"mgr1": 1, "cap1": 1, "player1": 1,
			"mgr2": 2, "mgr3": 3, "mgr4": 4,
		},
	}
	f := &fixture{
		panels:   newMemPanels(),
		teams:    teams,
		notifier: &recNotifier{failFor: make(map[string]bool)},
		renderer: &recRenderer{},
	}
	guilds := &memGuilds{locales: map[string]string{guildID: "fr"}}
	translator := keyTranslator{}
	f.challenges = NewChallengeService(f.panels, f.teams, guilds, f.renderer, f.notifier, translator, noopMetrics{})
	f.panelSvc = NewPanelService(f.panels, f.teams, guilds, f.renderer, translator, noopMetrics{})
	return f
}

// seedPanel stores a SCHEDULED panel for the team with the given labels
// offered, bypassing the service so tests control the starting state exactly.
func (f *fixture) seedPanel(t *testing.T, teamID uint, offered ...string) *entities.AvailabilityPanel {
	t.Helper()
	offer := make(map[string]bool, len(offered))
	for _, l := range offered {
		offer[l] = true
	}
	panel := &entities.AvailabilityPanel{
		GuildID:   guildID,
		TeamID:    teamID,
		PanelType: domain.PanelScheduled,
		ChannelID: "board",
		CreatorID: fmt.Sprintf("mgr%d", teamID),
	}
	for _, label := range domain.LabelsFor(domain.PanelScheduled) {
		status := domain.SlotUnavailable
		if offer[label] {
			status = domain.SlotAvailable
		}
		panel.Slots = append(panel.Slots, entities.TimeSlot{TimeLabel: label, Status: status})
	}
	if err := f.panels.Create(context.Background(), panel); err != nil {
		t.Fatalf("seed panel: %v", err)
	}
	return panel
}
