package discord

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"scrimbot/internal/domain"
	pkgdiscord "scrimbot/pkg/discord"
)

// HandleToggleMenu is the owner's "⚙️ Créneaux" button: it opens an ephemeral
// select menu listing every slot with its current state.
func (h *Handler) HandleToggleMenu(s *discordgo.Session, i *discordgo.InteractionCreate) {
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

	options := make([]discordgo.SelectMenuOption, 0, len(panel.Slots))
	for _, slot := range panel.Slots {
		if slot.Status == domain.SlotConfirmed {
			continue
		}
		desc := "Ouvrir ce créneau aux défis"
		emoji := "⬜"
		if slot.Status == domain.SlotAvailable {
			desc = "Retirer ce créneau"
			emoji = "🟦"
		}
		options = append(options, discordgo.SelectMenuOption{
			Label:       fmt.Sprintf("%s %s", emoji, slot.TimeLabel),
			Value:       slot.TimeLabel,
			Description: desc,
		})
	}
	if len(options) == 0 {
		respondEphemeral(s, i.Interaction, h.translator.T(locale, "error.slot_not_found", nil))
		return
	}

	_ = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: "Choisis un créneau à basculer :",
			Flags:   discordgo.MessageFlagsEphemeral,
			Components: []discordgo.MessageComponent{
				discordgo.ActionsRow{
					Components: []discordgo.MessageComponent{
						discordgo.SelectMenu{
							CustomID:    pkgdiscord.PanelActionID(pkgdiscord.ActionToggleSel, panelID),
							Placeholder: "Sélectionner un créneau",
							Options:     options,
						},
					},
				},
			},
		},
	})
}

// HandleToggleSelect flips the chosen slot between offered and withdrawn.
func (h *Handler) HandleToggleSelect(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()
	locale := h.locale(ctx, i.GuildID)

	data := i.MessageComponentData()
	panelID, err := pkgdiscord.ParsePanelActionID(data.CustomID)
	if err != nil || len(data.Values) == 0 {
		return
	}
	timeLabel := strings.TrimSpace(data.Values[0])

	panel, err := h.panelUseCase.GetPanelByID(ctx, panelID)
	if err != nil {
		h.respondError(s, i.Interaction, locale, err)
		return
	}
	slot := panel.Slot(timeLabel)
	if slot == nil {
		h.respondError(s, i.Interaction, locale, domain.ErrSlotNotFound)
		return
	}

	makeAvailable := slot.Status == domain.SlotUnavailable
	reply, err := h.panelUseCase.SetSlotAvailability(ctx, panelID, timeLabel, makeAvailable, i.Member.User.ID)
	if err != nil {
		h.respondError(s, i.Interaction, locale, err)
		return
	}
	respondEphemeral(s, i.Interaction, reply)
}
