package discord

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"scrimbot/pkg/tz"
)

// runDailySweep wipes every panel and clears the board channel once a day,
// at cfg.SweepHour in Paris time. Panels describe "tonight" only, so
// yesterday's boards are garbage by morning.
func (b *Bot) runDailySweep() {
	for {
		next := tz.NextHour(time.Now(), b.config.SweepHour)
		log.Info().Time("next_sweep", next).Msg("🧹 Prochain sweep planifié")
		time.Sleep(time.Until(next))

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		if _, err := b.panelUC.SweepAllPanels(ctx); err != nil {
			log.Error().Err(err).Msg("❌ Sweep quotidien")
		}
		b.clearBoardChannel()
		cancel()
	}
}

// clearBoardChannel bulk-deletes everything in the board channel. Messages
// older than 14 days are refused by the bulk endpoint and deleted one by one.
func (b *Bot) clearBoardChannel() {
	channelID := b.config.BoardChannelID
	for {
		msgs, err := b.session.ChannelMessages(channelID, 100, "", "", "")
		if err != nil {
			log.Warn().Err(err).Str("channel_id", channelID).Msg("⚠️ Lecture du salon de recherche")
			return
		}
		if len(msgs) == 0 {
			return
		}

		cutoff := time.Now().Add(-14 * 24 * time.Hour)
		var bulk []string
		for _, m := range msgs {
			if m.Timestamp.After(cutoff) {
				bulk = append(bulk, m.ID)
				continue
			}
			if err := b.session.ChannelMessageDelete(channelID, m.ID); err != nil {
				log.Warn().Err(err).Str("message_id", m.ID).Msg("⚠️ Suppression d'un ancien message")
			}
		}
		if len(bulk) == 1 {
			if err := b.session.ChannelMessageDelete(channelID, bulk[0]); err != nil {
				log.Warn().Err(err).Str("message_id", bulk[0]).Msg("⚠️ Suppression d'un message")
			}
		} else if len(bulk) > 1 {
			if err := b.session.ChannelMessagesBulkDelete(channelID, bulk); err != nil {
				log.Warn().Err(err).Str("channel_id", channelID).Msg("⚠️ Suppression en masse")
				return
			}
		}
		if len(msgs) < 100 {
			return
		}
	}
}
