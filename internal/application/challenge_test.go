package application

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scrimbot/internal/domain"
)

func submit(t *testing.T, f *fixture, panelID uint, label string, teamID uint, userID string) uuid.UUID {
	t.Helper()
	reply, err := f.challenges.SubmitChallenge(context.Background(), panelID, label, teamID, userID)
	require.NoError(t, err)
	require.Equal(t, "reply.challenge.sent", reply)

	panel, err := f.panels.FindByID(context.Background(), panelID)
	require.NoError(t, err)
	ch := panel.Slot(label).ChallengeByTeam(teamID)
	require.NotNil(t, ch)
	return ch.ID
}

func TestSubmitChallengeNotifiesHostManager(t *testing.T) {
	f := newFixture()
	panel := f.seedPanel(t, 1, "21:00")

	id := submit(t, f, panel.ID, "21:00", 2, "mgr2")

	notices := f.notifier.sentTo("mgr1")
	require.Len(t, notices, 1)
	assert.Equal(t, "dm.challenge.received", notices[0].content)
	require.Len(t, notices[0].controls, 2)
	assert.Equal(t, "accept", notices[0].controls[0].Action)
	assert.Equal(t, "reject", notices[0].controls[1].Action)
	assert.Equal(t, id, notices[0].controls[0].ChallengeID)
	assert.Equal(t, "21:00", notices[0].controls[0].TimeLabel)
}

func TestSubmitChallengeDuplicateTeam(t *testing.T) {
	f := newFixture()
	panel := f.seedPanel(t, 1, "21:00")
	submit(t, f, panel.ID, "21:00", 2, "mgr2")

	_, err := f.challenges.SubmitChallenge(context.Background(), panel.ID, "21:00", 2, "mgr2")
	assert.ErrorIs(t, err, domain.ErrDuplicateChallenge)

	fresh, _ := f.panels.FindByID(context.Background(), panel.ID)
	assert.Equal(t, 1, fresh.PendingCount())
}

func TestSubmitChallengeOwnPanel(t *testing.T) {
	f := newFixture()
	panel := f.seedPanel(t, 1, "21:00")

	_, err := f.challenges.SubmitChallenge(context.Background(), panel.ID, "21:00", 1, "cap1")
	assert.ErrorIs(t, err, domain.ErrOwnPanel)
}

func TestSubmitChallengeSlotStates(t *testing.T) {
	f := newFixture()
	panel := f.seedPanel(t, 1, "21:00")

	_, err := f.challenges.SubmitChallenge(context.Background(), panel.ID, "22:00", 2, "mgr2")
	assert.ErrorIs(t, err, domain.ErrSlotUnavailable)

	_, err = f.challenges.SubmitChallenge(context.Background(), panel.ID, "07:00", 2, "mgr2")
	assert.ErrorIs(t, err, domain.ErrSlotNotFound)

	id := submit(t, f, panel.ID, "21:00", 2, "mgr2")
	_, err = f.challenges.AcceptChallenge(context.Background(), panel.ID, "21:00", id, "mgr1")
	require.NoError(t, err)

	_, err = f.challenges.SubmitChallenge(context.Background(), panel.ID, "21:00", 3, "mgr3")
	assert.ErrorIs(t, err, domain.ErrSlotTaken)
}

func TestSubmitChallengeLeagueFilter(t *testing.T) {
	f := newFixture()
	panel := f.seedPanel(t, 1, "21:00")
	f.panels.panels[panel.ID].LeagueFilters = []string{"D1"}

	_, err := f.challenges.SubmitChallenge(context.Background(), panel.ID, "21:00", 3, "mgr3")
	assert.ErrorIs(t, err, domain.ErrLeagueFiltered)

	submit(t, f, panel.ID, "21:00", 2, "mgr2")
}

func TestSubmitChallengeDoubleBooked(t *testing.T) {
	f := newFixture()
	host := f.seedPanel(t, 1, "21:00")
	other := f.seedPanel(t, 3, "21:00")

	// Ours is already confirmed at 21:00 on the Aigles panel.
	id := submit(t, f, other.ID, "21:00", 2, "mgr2")
	_, err := f.challenges.AcceptChallenge(context.Background(), other.ID, "21:00", id, "mgr3")
	require.NoError(t, err)

	_, err = f.challenges.SubmitChallenge(context.Background(), host.ID, "21:00", 2, "mgr2")
	assert.ErrorIs(t, err, domain.ErrDoubleBooked)
}

func TestSubmitChallengeRollsBackOnNotifyFailure(t *testing.T) {
	f := newFixture()
	panel := f.seedPanel(t, 1, "21:00")
	f.notifier.failFor["mgr1"] = true

	_, err := f.challenges.SubmitChallenge(context.Background(), panel.ID, "21:00", 2, "mgr2")
	assert.ErrorIs(t, err, domain.ErrNotifyFailed)

	fresh, _ := f.panels.FindByID(context.Background(), panel.ID)
	assert.Zero(t, fresh.PendingCount(), "challenge must be rolled back")
	assert.Equal(t, domain.SlotAvailable, fresh.Slot("21:00").Status)
}

func TestSubmitChallengeLeavesNoResidueWhenHostTeamMissing(t *testing.T) {
	f := newFixture()
	// Panel owned by a team the directory no longer knows.
	panel := f.seedPanel(t, 9, "21:00")

	_, err := f.challenges.SubmitChallenge(context.Background(), panel.ID, "21:00", 2, "mgr2")
	assert.ErrorIs(t, err, domain.ErrTeamNotFound)

	fresh, _ := f.panels.FindByID(context.Background(), panel.ID)
	assert.Zero(t, fresh.PendingCount(), "nothing persisted when the host cannot be resolved")
}

func TestAcceptChallengePromotesOneAndSweepsRest(t *testing.T) {
	f := newFixture()
	panel := f.seedPanel(t, 1, "21:00")
	submit(t, f, panel.ID, "21:00", 2, "mgr2")
	winnerID := submit(t, f, panel.ID, "21:00", 3, "mgr3")
	submit(t, f, panel.ID, "21:00", 4, "mgr4")

	reply, err := f.challenges.AcceptChallenge(context.Background(), panel.ID, "21:00", winnerID, "cap1")
	require.NoError(t, err)
	assert.Equal(t, "reply.challenge.accepted", reply)

	fresh, _ := f.panels.FindByID(context.Background(), panel.ID)
	slot := fresh.Slot("21:00")
	assert.Equal(t, domain.SlotConfirmed, slot.Status)
	assert.Equal(t, uint(3), slot.OpponentTeamID)
	assert.Empty(t, slot.Challenges)

	assert.Len(t, f.notifier.withKey("dm.challenge.accepted"), 1)
	assert.Len(t, f.notifier.withKey("dm.challenge.rejected_other"), 2)
	assert.Len(t, f.notifier.sentTo("mgr3"), 1, "the winner hears about it exactly once")
}

func TestAcceptChallengeRefusesDoubleBookedChallenger(t *testing.T) {
	f := newFixture()
	first := f.seedPanel(t, 1, "21:00")
	second := f.seedPanel(t, 3, "21:00")

	// Pending challenges on several panels at the same label are legal; a
	// second confirmation of the same challenger is not.
	onFirst := submit(t, f, first.ID, "21:00", 2, "mgr2")
	onSecond := submit(t, f, second.ID, "21:00", 2, "mgr2")

	_, err := f.challenges.AcceptChallenge(context.Background(), first.ID, "21:00", onFirst, "mgr1")
	require.NoError(t, err)

	_, err = f.challenges.AcceptChallenge(context.Background(), second.ID, "21:00", onSecond, "mgr3")
	assert.ErrorIs(t, err, domain.ErrDoubleBooked)

	freshSecond, _ := f.panels.FindByID(context.Background(), second.ID)
	slot := freshSecond.Slot("21:00")
	assert.Equal(t, domain.SlotAvailable, slot.Status, "refused accept must not mutate the slot")
	assert.NotNil(t, slot.ChallengeByTeam(2), "the challenge stays pending")

	confirmed := 0
	for _, id := range []uint{first.ID, second.ID} {
		p, _ := f.panels.FindByID(context.Background(), id)
		if p.Slot("21:00").Status == domain.SlotConfirmed {
			confirmed++
		}
	}
	assert.Equal(t, 1, confirmed, "a team is confirmed at most once per label")
}

func TestAcceptChallengeSecondAcceptLosesRace(t *testing.T) {
	f := newFixture()
	panel := f.seedPanel(t, 1, "21:00")
	first := submit(t, f, panel.ID, "21:00", 2, "mgr2")
	second := submit(t, f, panel.ID, "21:00", 3, "mgr3")

	_, err := f.challenges.AcceptChallenge(context.Background(), panel.ID, "21:00", first, "mgr1")
	require.NoError(t, err)

	_, err = f.challenges.AcceptChallenge(context.Background(), panel.ID, "21:00", second, "mgr1")
	assert.ErrorIs(t, err, domain.ErrSlotTaken)

	fresh, _ := f.panels.FindByID(context.Background(), panel.ID)
	assert.Equal(t, uint(2), fresh.Slot("21:00").OpponentTeamID, "lost accept must not mutate the slot")
}

func TestAcceptChallengeUpdatesMirrorPanel(t *testing.T) {
	f := newFixture()
	host := f.seedPanel(t, 1, "21:00")
	mirror := f.seedPanel(t, 2, "21:00")

	// The challenger's own panel carries a pending challenge from Loups that
	// the mirror confirmation must sweep.
	submit(t, f, mirror.ID, "21:00", 4, "mgr4")

	id := submit(t, f, host.ID, "21:00", 2, "mgr2")
	_, err := f.challenges.AcceptChallenge(context.Background(), host.ID, "21:00", id, "mgr1")
	require.NoError(t, err)

	freshMirror, _ := f.panels.FindByID(context.Background(), mirror.ID)
	slot := freshMirror.Slot("21:00")
	assert.Equal(t, domain.SlotConfirmed, slot.Status)
	assert.Equal(t, uint(1), slot.OpponentTeamID)
	assert.Empty(t, slot.Challenges)

	superseded := f.notifier.withKey("dm.challenge.superseded")
	require.Len(t, superseded, 1)
	assert.Equal(t, "mgr4", superseded[0].userID)
}

func TestAcceptChallengeRequiresHostStaff(t *testing.T) {
	f := newFixture()
	panel := f.seedPanel(t, 1, "21:00")
	id := submit(t, f, panel.ID, "21:00", 2, "mgr2")

	_, err := f.challenges.AcceptChallenge(context.Background(), panel.ID, "21:00", id, "mgr2")
	assert.ErrorIs(t, err, domain.ErrNotTeamStaff)

	_, err = f.challenges.AcceptChallenge(context.Background(), panel.ID, "21:00", id, "player1")
	assert.ErrorIs(t, err, domain.ErrNotTeamStaff)
}

func TestRejectChallengeKeepsSlotOffered(t *testing.T) {
	f := newFixture()
	panel := f.seedPanel(t, 1, "21:00")
	rejected := submit(t, f, panel.ID, "21:00", 2, "mgr2")
	submit(t, f, panel.ID, "21:00", 3, "mgr3")

	reply, err := f.challenges.RejectChallenge(context.Background(), panel.ID, "21:00", rejected, "mgr1")
	require.NoError(t, err)
	assert.Equal(t, "reply.challenge.rejected", reply)

	fresh, _ := f.panels.FindByID(context.Background(), panel.ID)
	slot := fresh.Slot("21:00")
	assert.Equal(t, domain.SlotAvailable, slot.Status)
	assert.Equal(t, 1, len(slot.Challenges), "only the rejected challenge is removed")
	assert.Nil(t, slot.ChallengeByTeam(2))

	rej := f.notifier.withKey("dm.challenge.rejected")
	require.Len(t, rej, 1)
	assert.Equal(t, "mgr2", rej[0].userID)
}

func TestRejectUnknownChallenge(t *testing.T) {
	f := newFixture()
	panel := f.seedPanel(t, 1, "21:00")

	_, err := f.challenges.RejectChallenge(context.Background(), panel.ID, "21:00", uuid.New(), "mgr1")
	assert.ErrorIs(t, err, domain.ErrChallengeNotFound)
}

func TestAbandonMatchRevertsBothPanels(t *testing.T) {
	f := newFixture()
	host := f.seedPanel(t, 1, "21:00")
	mirror := f.seedPanel(t, 2, "21:00")

	id := submit(t, f, host.ID, "21:00", 2, "mgr2")
	_, err := f.challenges.AcceptChallenge(context.Background(), host.ID, "21:00", id, "mgr1")
	require.NoError(t, err)

	// The opponent's manager abandons from the host panel.
	reply, err := f.challenges.AbandonMatch(context.Background(), host.ID, "21:00", "mgr2")
	require.NoError(t, err)
	assert.Equal(t, "reply.match.cancelled", reply)

	freshHost, _ := f.panels.FindByID(context.Background(), host.ID)
	assert.Equal(t, domain.SlotAvailable, freshHost.Slot("21:00").Status)
	assert.Zero(t, freshHost.Slot("21:00").OpponentTeamID)

	freshMirror, _ := f.panels.FindByID(context.Background(), mirror.ID)
	assert.Equal(t, domain.SlotAvailable, freshMirror.Slot("21:00").Status)

	cancelled := f.notifier.withKey("dm.match.cancelled")
	require.Len(t, cancelled, 1)
	assert.Equal(t, "mgr1", cancelled[0].userID, "the non-acting side is notified")
}

func TestAbandonMatchToleratesMissingMirror(t *testing.T) {
	f := newFixture()
	host := f.seedPanel(t, 1, "21:00")

	id := submit(t, f, host.ID, "21:00", 2, "mgr2")
	_, err := f.challenges.AcceptChallenge(context.Background(), host.ID, "21:00", id, "mgr1")
	require.NoError(t, err)

	_, err = f.challenges.AbandonMatch(context.Background(), host.ID, "21:00", "mgr1")
	require.NoError(t, err)

	fresh, _ := f.panels.FindByID(context.Background(), host.ID)
	assert.Equal(t, domain.SlotAvailable, fresh.Slot("21:00").Status)
}

func TestAbandonMatchRequiresMatchParty(t *testing.T) {
	f := newFixture()
	host := f.seedPanel(t, 1, "21:00")
	id := submit(t, f, host.ID, "21:00", 2, "mgr2")
	_, err := f.challenges.AcceptChallenge(context.Background(), host.ID, "21:00", id, "mgr1")
	require.NoError(t, err)

	_, err = f.challenges.AbandonMatch(context.Background(), host.ID, "21:00", "mgr3")
	assert.ErrorIs(t, err, domain.ErrNotMatchParty)

	_, err = f.challenges.AbandonMatch(context.Background(), host.ID, "20:00", "mgr1")
	assert.ErrorIs(t, err, domain.ErrNoConfirmedMatch)
}

func TestCancelAllChallenges(t *testing.T) {
	f := newFixture()
	panel := f.seedPanel(t, 1, "21:00", "22:00", "23:00")
	submit(t, f, panel.ID, "21:00", 2, "mgr2")
	submit(t, f, panel.ID, "22:00", 3, "mgr3")
	confirmed := submit(t, f, panel.ID, "23:00", 4, "mgr4")
	_, err := f.challenges.AcceptChallenge(context.Background(), panel.ID, "23:00", confirmed, "mgr1")
	require.NoError(t, err)

	reply, err := f.challenges.CancelAllChallenges(context.Background(), panel.ID, "mgr1")
	require.NoError(t, err)
	assert.Equal(t, "reply.challenge.bulk_cancelled", reply)

	fresh, _ := f.panels.FindByID(context.Background(), panel.ID)
	assert.Zero(t, fresh.PendingCount())
	assert.Equal(t, domain.SlotConfirmed, fresh.Slot("23:00").Status, "confirmed matches survive the bulk cancel")

	assert.Len(t, f.notifier.withKey("dm.challenge.bulk_cancelled"), 2)
}

func TestCancelAllChallengesRequiresStaff(t *testing.T) {
	f := newFixture()
	panel := f.seedPanel(t, 1, "21:00")
	submit(t, f, panel.ID, "21:00", 2, "mgr2")

	_, err := f.challenges.CancelAllChallenges(context.Background(), panel.ID, "mgr2")
	assert.ErrorIs(t, err, domain.ErrNotTeamStaff)
}
