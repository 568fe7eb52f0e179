package discord

import (
	"context"

	"github.com/bwmarrin/discordgo"

	pkgdiscord "scrimbot/pkg/discord"
)

// dmUserID resolves the acting user for both guild and DM interactions; the
// accept/reject controls arrive in the host manager's DMs, where i.Member is
// nil.
func dmUserID(i *discordgo.InteractionCreate) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return ""
}

// HandleAccept is the DM-side accept control on a challenge notice.
func (h *Handler) HandleAccept(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	panelID, timeLabel, challengeID, err := pkgdiscord.ParseChallengeActionID(i.MessageComponentData().CustomID)
	if err != nil {
		return
	}
	actorID := dmUserID(i)
	if actorID == "" {
		return
	}

	// The panel's guild drives the locale; the DM itself has none.
	locale := "fr"
	if panel, perr := h.panelUseCase.GetPanelByID(ctx, panelID); perr == nil {
		locale = h.locale(ctx, panel.GuildID)
	}

	reply, err := h.challengeUseCase.AcceptChallenge(ctx, panelID, timeLabel, challengeID, actorID)
	if err != nil {
		h.respondError(s, i.Interaction, locale, err)
		return
	}
	respondEphemeral(s, i.Interaction, reply)
}

// HandleReject is the DM-side reject control on a challenge notice.
func (h *Handler) HandleReject(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	panelID, timeLabel, challengeID, err := pkgdiscord.ParseChallengeActionID(i.MessageComponentData().CustomID)
	if err != nil {
		return
	}
	actorID := dmUserID(i)
	if actorID == "" {
		return
	}

	locale := "fr"
	if panel, perr := h.panelUseCase.GetPanelByID(ctx, panelID); perr == nil {
		locale = h.locale(ctx, panel.GuildID)
	}

	reply, err := h.challengeUseCase.RejectChallenge(ctx, panelID, timeLabel, challengeID, actorID)
	if err != nil {
		h.respondError(s, i.Interaction, locale, err)
		return
	}
	respondEphemeral(s, i.Interaction, reply)
}
