package discord

import (
	"context"

	"github.com/bwmarrin/discordgo"
)

// HandleLocaleCommand sets the guild's locale. Restricted to members who can
// manage the server.
func (h *Handler) HandleLocaleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()
	locale := h.locale(ctx, i.GuildID)

	if i.Member.Permissions&discordgo.PermissionManageServer == 0 {
		respondEphemeral(s, i.Interaction, h.translator.T(locale, "error.not_admin", nil))
		return
	}

	var chosen string
	for _, opt := range i.ApplicationCommandData().Options {
		if opt.Name == "locale" {
			chosen = opt.StringValue()
		}
	}
	if chosen == "" {
		return
	}

	if err := h.guilds.SetLocale(ctx, i.GuildID, chosen); err != nil {
		h.respondError(s, i.Interaction, locale, err)
		return
	}
	respondEphemeral(s, i.Interaction, h.translator.T(chosen, "reply.locale.set", nil))
}
