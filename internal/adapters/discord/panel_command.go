package discord

import (
	"context"
	"strings"

	"github.com/bwmarrin/discordgo"

	"scrimbot/internal/domain"
	"scrimbot/internal/ports/input"
)

// splitCSV parses a comma-separated option value, trimming blanks.
func splitCSV(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if v := strings.TrimSpace(p); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// HandleSearchCommand creates an availability panel for the invoker's team
// and posts it on the board channel.
func (h *Handler) HandleSearchCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()
	locale := h.locale(ctx, i.GuildID)

	var panelType, rawSlots, rawLeagues string
	for _, opt := range i.ApplicationCommandData().Options {
		switch opt.Name {
		case "type":
			panelType = opt.StringValue()
		case "creneaux":
			rawSlots = opt.StringValue()
		case "ligues":
			rawLeagues = opt.StringValue()
		}
	}

	labels := splitCSV(rawSlots)
	if panelType == domain.PanelScheduled && len(labels) == 0 {
		// No explicit labels: offer the whole evening.
		labels = domain.LabelsFor(domain.PanelScheduled)
	}

	_, reply, err := h.panelUseCase.CreatePanel(ctx, input.CreatePanelParams{
		GuildID:       i.GuildID,
		ChannelID:     h.boardChannelID,
		CreatorUserID: i.Member.User.ID,
		PanelType:     panelType,
		TimeLabels:    labels,
		LeagueFilters: splitCSV(rawLeagues),
	})
	if err != nil {
		h.respondError(s, i.Interaction, locale, err)
		return
	}
	respondEphemeral(s, i.Interaction, reply)
}
