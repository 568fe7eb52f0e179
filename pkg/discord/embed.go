package discord

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"scrimbot/internal/domain"
	"scrimbot/internal/domain/entities"
)

const (
	colorSearching = 0x5865F2
	colorPending   = 0xE67E22
	colorConfirmed = 0x57F287
)

// panelState derives the board styling purely from slot states, so rendering
// the same panel twice yields the same result.
func panelState(panel *entities.AvailabilityPanel) (title string, color int) {
	switch {
	case panel.HasConfirmed():
		return "🤝 Match trouvé !", colorConfirmed
	case panel.PendingCount() > 0:
		return "⚔️ Défis en attente", colorPending
	default:
		return "🔎 Recherche de match", colorSearching
	}
}

func slotLine(slot *entities.TimeSlot, opponents map[uint]string) string {
	switch slot.Status {
	case domain.SlotConfirmed:
		name := opponents[slot.OpponentTeamID]
		if name == "" {
			name = fmt.Sprintf("équipe #%d", slot.OpponentTeamID)
		}
		return fmt.Sprintf("🟩 **%s** — confirmé contre **%s**", slot.TimeLabel, name)
	case domain.SlotAvailable:
		if n := len(slot.Challenges); n > 0 {
			return fmt.Sprintf("🟧 **%s** — %d défi(s) en attente", slot.TimeLabel, n)
		}
		return fmt.Sprintf("🟦 **%s** — ouvert aux défis", slot.TimeLabel)
	default:
		return fmt.Sprintf("⬜ ~~%s~~ — non proposé", slot.TimeLabel)
	}
}

// BuildPanelEmbed renders a panel's board embed from its persisted state.
// opponents maps team id -> display name for confirmed slots.
func BuildPanelEmbed(panel *entities.AvailabilityPanel, host *entities.Team, opponents map[uint]string) *discordgo.MessageEmbed {
	title, color := panelState(panel)

	var b strings.Builder
	for i := range panel.Slots {
		b.WriteString(slotLine(&panel.Slots[i], opponents))
		b.WriteString("\n")
	}

	footer := "Recherche instantanée"
	if panel.PanelType == domain.PanelScheduled {
		footer = "Recherche planifiée"
	}
	if len(panel.LeagueFilters) > 0 {
		footer += " • Ligues : " + strings.Join(panel.LeagueFilters, ", ")
	}

	embed := &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("%s — %s", title, host.Name),
		Description: b.String(),
		Color:       color,
		Footer:      &discordgo.MessageEmbedFooter{Text: footer},
	}
	if host.LogoURL != "" {
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: host.LogoURL}
	}
	return embed
}

// BuildPanelComponents builds the actionable controls for a panel: one button
// per offered or confirmed slot, plus the owner row.
func BuildPanelComponents(panel *entities.AvailabilityPanel) []discordgo.MessageComponent {
	var buttons []discordgo.MessageComponent
	for i := range panel.Slots {
		slot := &panel.Slots[i]
		switch slot.Status {
		case domain.SlotAvailable:
			buttons = append(buttons, discordgo.Button{
				Label:    "⚔️ " + slot.TimeLabel,
				Style:    discordgo.PrimaryButton,
				CustomID: SlotActionID(ActionChallenge, panel.ID, slot.TimeLabel),
			})
		case domain.SlotConfirmed:
			buttons = append(buttons, discordgo.Button{
				Label:    "🗑️ " + slot.TimeLabel,
				Style:    discordgo.DangerButton,
				CustomID: SlotActionID(ActionAbandon, panel.ID, slot.TimeLabel),
			})
		}
	}

	var components []discordgo.MessageComponent
	for len(buttons) > 0 {
		n := len(buttons)
		if n > 5 {
			n = 5
		}
		components = append(components, discordgo.ActionsRow{Components: buttons[:n]})
		buttons = buttons[n:]
	}

	ownerRow := []discordgo.MessageComponent{
		discordgo.Button{Label: "⚙️ Créneaux", Style: discordgo.SecondaryButton, CustomID: PanelActionID(ActionToggle, panel.ID)},
	}
	if panel.PendingCount() > 0 {
		ownerRow = append(ownerRow, discordgo.Button{Label: "🧹 Annuler les défis", Style: discordgo.SecondaryButton, CustomID: PanelActionID(ActionCancelAll, panel.ID)})
	}
	ownerRow = append(ownerRow, discordgo.Button{Label: "🗑️ Supprimer", Style: discordgo.DangerButton, CustomID: PanelActionID(ActionDelete, panel.ID)})
	components = append(components, discordgo.ActionsRow{Components: ownerRow})

	return components
}
