package discord

import (
	"context"

	"scrimbot/internal/cooldown"
	"scrimbot/internal/ports/input"
	"scrimbot/internal/ports/output"
)

// Handler handles Discord interactions using use cases.
type Handler struct {
	panelUseCase     input.PanelUseCase
	challengeUseCase input.ChallengeUseCase
	teams            output.TeamDirectory
	guilds           output.GuildSettings
	translator       output.T
	cooldowns        *cooldown.Tracker
	boardChannelID   string
}

// NewHandler creates a Handler.
func NewHandler(
	panelUseCase input.PanelUseCase,
	challengeUseCase input.ChallengeUseCase,
	teams output.TeamDirectory,
	guilds output.GuildSettings,
	translator output.T,
	cooldowns *cooldown.Tracker,
	boardChannelID string,
) *Handler {
	return &Handler{
		panelUseCase:     panelUseCase,
		challengeUseCase: challengeUseCase,
		teams:            teams,
		guilds:           guilds,
		translator:       translator,
		cooldowns:        cooldowns,
		boardChannelID:   boardChannelID,
	}
}

func (h *Handler) locale(ctx context.Context, guildID string) string {
	loc, err := h.guilds.Locale(ctx, guildID)
	if err != nil || loc == "" {
		return "fr"
	}
	return loc
}
