package discord

import (
	"context"
	"errors"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"

	"scrimbot/internal/domain"
	"scrimbot/internal/domain/entities"
	"scrimbot/internal/ports/output"
	pkgdiscord "scrimbot/pkg/discord"
)

var _ output.PanelRenderer = (*Renderer)(nil)

// Renderer keeps a panel's board message in sync with its persisted state.
// Rendering is derived entirely from the panel argument, so replaying it is
// safe; a board message deleted behind our back is re-posted.
type Renderer struct {
	session *discordgo.Session
	panels  output.PanelRepository
	teams   output.TeamDirectory
}

func NewRenderer(session *discordgo.Session, panels output.PanelRepository, teams output.TeamDirectory) *Renderer {
	return &Renderer{session: session, panels: panels, teams: teams}
}

func (r *Renderer) Render(ctx context.Context, panel *entities.AvailabilityPanel) error {
	host, err := r.teams.FindByID(ctx, panel.TeamID)
	if err != nil {
		host = &entities.Team{ID: panel.TeamID, Name: fmt.Sprintf("équipe #%d", panel.TeamID)}
	}

	opponents := map[uint]string{}
	for i := range panel.Slots {
		slot := &panel.Slots[i]
		if slot.Status != domain.SlotConfirmed || slot.OpponentTeamID == 0 {
			continue
		}
		if _, ok := opponents[slot.OpponentTeamID]; ok {
			continue
		}
		if opp, err := r.teams.FindByID(ctx, slot.OpponentTeamID); err == nil {
			opponents[opp.ID] = opp.Name
		}
	}

	embed := pkgdiscord.BuildPanelEmbed(panel, host, opponents)
	components := pkgdiscord.BuildPanelComponents(panel)

	if panel.MessageID == "" {
		return r.post(ctx, panel, embed, components)
	}

	embeds := []*discordgo.MessageEmbed{embed}
	_, err = r.session.ChannelMessageEditComplex(&discordgo.MessageEdit{
		ID:         panel.MessageID,
		Channel:    panel.ChannelID,
		Embeds:     &embeds,
		Components: &components,
	})
	if err == nil {
		return nil
	}
	if isUnknownMessage(err) {
		// The board message was deleted externally; re-post it.
		log.Warn().Uint("panel_id", panel.ID).Msg("message du panneau disparu, republication")
		return r.post(ctx, panel, embed, components)
	}
	return fmt.Errorf("édition du message du panneau: %w", err)
}

func (r *Renderer) post(ctx context.Context, panel *entities.AvailabilityPanel, embed *discordgo.MessageEmbed, components []discordgo.MessageComponent) error {
	msg, err := r.session.ChannelMessageSendComplex(panel.ChannelID, &discordgo.MessageSend{
		Embeds:     []*discordgo.MessageEmbed{embed},
		Components: components,
	})
	if err != nil {
		return fmt.Errorf("publication du panneau: %w", err)
	}
	panel.MessageID = msg.ID
	if err := r.panels.SetMessageID(ctx, panel.ID, panel.ChannelID, msg.ID); err != nil {
		return fmt.Errorf("enregistrement du message du panneau: %w", err)
	}
	return nil
}

func isUnknownMessage(err error) bool {
	var restErr *discordgo.RESTError
	return errors.As(err, &restErr) &&
		restErr.Message != nil &&
		restErr.Message.Code == discordgo.ErrCodeUnknownMessage
}
