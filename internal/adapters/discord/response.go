package discord

import (
	"errors"

	"github.com/bwmarrin/discordgo"

	"scrimbot/internal/domain"
)

func respondEphemeral(s *discordgo.Session, i *discordgo.Interaction, content string) {
	_ = s.InteractionRespond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
}

// errorKey maps a domain error to the i18n key of its user-facing message.
// Unexpected faults fall through to the generic message, never exposing
// internals.
func errorKey(err error) string {
	switch {
	case errors.Is(err, domain.ErrPanelNotFound):
		return "error.panel_not_found"
	case errors.Is(err, domain.ErrPanelExists):
		return "error.panel_exists"
	case errors.Is(err, domain.ErrSlotNotFound):
		return "error.slot_not_found"
	case errors.Is(err, domain.ErrSlotTaken):
		return "error.slot_taken"
	case errors.Is(err, domain.ErrSlotUnavailable):
		return "error.slot_unavailable"
	case errors.Is(err, domain.ErrSlotHasChallenges):
		return "error.slot_has_challenges"
	case errors.Is(err, domain.ErrChallengeNotFound):
		return "error.challenge_not_found"
	case errors.Is(err, domain.ErrDuplicateChallenge):
		return "error.duplicate_challenge"
	case errors.Is(err, domain.ErrDoubleBooked):
		return "error.double_booked"
	case errors.Is(err, domain.ErrOwnPanel):
		return "error.own_panel"
	case errors.Is(err, domain.ErrLeagueFiltered):
		return "error.league_filtered"
	case errors.Is(err, domain.ErrNoConfirmedMatch):
		return "error.no_confirmed_match"
	case errors.Is(err, domain.ErrTeamNotFound):
		return "error.team_not_found"
	case errors.Is(err, domain.ErrNotTeamStaff):
		return "error.not_team_staff"
	case errors.Is(err, domain.ErrNotMatchParty):
		return "error.not_match_party"
	case errors.Is(err, domain.ErrNotifyFailed):
		return "error.notify_failed"
	default:
		return "error.generic"
	}
}

// respondError renders a domain error as an ephemeral localized message.
func (h *Handler) respondError(s *discordgo.Session, i *discordgo.Interaction, locale string, err error) {
	respondEphemeral(s, i, h.translator.T(locale, errorKey(err), nil))
}
