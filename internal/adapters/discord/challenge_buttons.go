package discord

import (
	"context"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"

	pkgdiscord "scrimbot/pkg/discord"
)

// HandleChallenge is the board-side "⚔️ <time>" button: the clicking user's
// team challenges the host's slot.
func (h *Handler) HandleChallenge(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()
	locale := h.locale(ctx, i.GuildID)

	panelID, timeLabel, err := pkgdiscord.ParseSlotActionID(i.MessageComponentData().CustomID)
	if err != nil {
		return
	}
	userID := i.Member.User.ID
	if !h.cooldowns.Allow("challenge:" + userID) {
		respondEphemeral(s, i.Interaction, h.translator.T(locale, "error.cooldown", nil))
		return
	}

	team, err := h.teams.FindByMember(ctx, i.GuildID, userID)
	if err != nil {
		h.respondError(s, i.Interaction, locale, err)
		return
	}

	reply, err := h.challengeUseCase.SubmitChallenge(ctx, panelID, timeLabel, team.ID, userID)
	if err != nil {
		h.respondError(s, i.Interaction, locale, err)
		return
	}
	respondEphemeral(s, i.Interaction, reply)
}

// HandleAbandon is the board-side "🗑️ <time>" button on a confirmed slot.
func (h *Handler) HandleAbandon(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()
	locale := h.locale(ctx, i.GuildID)

	panelID, timeLabel, err := pkgdiscord.ParseSlotActionID(i.MessageComponentData().CustomID)
	if err != nil {
		return
	}
	reply, err := h.challengeUseCase.AbandonMatch(ctx, panelID, timeLabel, i.Member.User.ID)
	if err != nil {
		h.respondError(s, i.Interaction, locale, err)
		return
	}
	respondEphemeral(s, i.Interaction, reply)
}

// HandleCancelAll clears every pending challenge on the panel.
func (h *Handler) HandleCancelAll(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()
	locale := h.locale(ctx, i.GuildID)

	panelID, err := pkgdiscord.ParsePanelActionID(i.MessageComponentData().CustomID)
	if err != nil {
		return
	}
	reply, err := h.challengeUseCase.CancelAllChallenges(ctx, panelID, i.Member.User.ID)
	if err != nil {
		h.respondError(s, i.Interaction, locale, err)
		return
	}
	respondEphemeral(s, i.Interaction, reply)
}

// HandleDeletePanel removes the panel and its board message.
func (h *Handler) HandleDeletePanel(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()
	locale := h.locale(ctx, i.GuildID)

	panelID, err := pkgdiscord.ParsePanelActionID(i.MessageComponentData().CustomID)
	if err != nil {
		return
	}
	panel, err := h.panelUseCase.GetPanelByID(ctx, panelID)
	if err != nil {
		h.respondError(s, i.Interaction, locale, err)
		return
	}

	reply, err := h.panelUseCase.DeletePanel(ctx, panelID, i.Member.User.ID)
	if err != nil {
		h.respondError(s, i.Interaction, locale, err)
		return
	}
	if panel.MessageID != "" {
		if err := s.ChannelMessageDelete(panel.ChannelID, panel.MessageID); err != nil {
			log.Warn().Err(err).Str("message_id", panel.MessageID).Msg("suppression du message du panneau")
		}
	}
	respondEphemeral(s, i.Interaction, reply)
}
