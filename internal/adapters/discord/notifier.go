package discord

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"golang.org/x/time/rate"

	"scrimbot/internal/cooldown"
	"scrimbot/internal/ports/output"
	pkgdiscord "scrimbot/pkg/discord"
)

var _ output.Notifier = (*Notifier)(nil)

// Notifier delivers DMs. Outbound sends go through a rate limiter; notices
// without controls are additionally deduplicated through the cooldown
// tracker, so a spammed button doesn't spam the recipient. Control-carrying
// notices are never suppressed.
type Notifier struct {
	session   *discordgo.Session
	cooldowns *cooldown.Tracker
	limiter   *rate.Limiter
}

func NewNotifier(session *discordgo.Session, cooldowns *cooldown.Tracker, limiter *rate.Limiter) *Notifier {
	return &Notifier{session: session, cooldowns: cooldowns, limiter: limiter}
}

func (n *Notifier) NotifyUser(ctx context.Context, userID, content string, controls ...output.Control) error {
	if len(controls) == 0 && !n.cooldowns.Allow(userID+"\x00"+content) {
		return nil
	}
	if err := n.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("attente du limiteur: %w", err)
	}

	ch, err := n.session.UserChannelCreate(userID)
	if err != nil {
		return fmt.Errorf("ouverture du MP: %w", err)
	}

	msg := &discordgo.MessageSend{Content: content}
	if len(controls) > 0 {
		row := discordgo.ActionsRow{}
		for _, c := range controls {
			row.Components = append(row.Components, controlButton(c))
		}
		msg.Components = []discordgo.MessageComponent{row}
	}
	if _, err := n.session.ChannelMessageSendComplex(ch.ID, msg); err != nil {
		return fmt.Errorf("envoi du MP: %w", err)
	}
	return nil
}

func controlButton(c output.Control) discordgo.Button {
	if c.Action == output.ControlAccept {
		return discordgo.Button{
			Label:    "✅ Accepter",
			Style:    discordgo.SuccessButton,
			CustomID: pkgdiscord.ChallengeActionID(pkgdiscord.ActionAccept, c.PanelID, c.TimeLabel, c.ChallengeID),
		}
	}
	return discordgo.Button{
		Label:    "❌ Refuser",
		Style:    discordgo.DangerButton,
		CustomID: pkgdiscord.ChallengeActionID(pkgdiscord.ActionReject, c.PanelID, c.TimeLabel, c.ChallengeID),
	}
}
