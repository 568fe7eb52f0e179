package application

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"scrimbot/internal/domain"
	"scrimbot/internal/domain/entities"
	"scrimbot/internal/ports/output"
)

// ChallengeService is the challenge coordinator. Every operation re-derives
// state from the store; the guarded repository updates carry the concurrency
// contract, so a lost race surfaces as a domain error instead of a silent
// overwrite.
type ChallengeService struct {
	panels     output.PanelRepository
	teams      output.TeamDirectory
	guilds     output.GuildSettings
	renderer   output.PanelRenderer
	notifier   output.Notifier
	translator output.T
	metrics    output.Metrics
}

func NewChallengeService(
	panels output.PanelRepository,
	teams output.TeamDirectory,
	guilds output.GuildSettings,
	renderer output.PanelRenderer,
	notifier output.Notifier,
	translator output.T,
	metrics output.Metrics,
) *ChallengeService {
	return &ChallengeService{
		panels:     panels,
		teams:      teams,
		guilds:     guilds,
		renderer:   renderer,
		notifier:   notifier,
		translator: translator,
		metrics:    metrics,
	}
}

func (s *ChallengeService) locale(ctx context.Context, guildID string) string {
	loc, err := s.guilds.Locale(ctx, guildID)
	if err != nil || loc == "" {
		return "fr"
	}
	return loc
}

func (s *ChallengeService) rerender(ctx context.Context, panel *entities.AvailabilityPanel) {
	fresh, err := s.panels.FindByID(ctx, panel.ID)
	if err != nil {
		log.Error().Err(err).Uint("panel_id", panel.ID).Msg("relecture du panneau avant rendu")
		return
	}
	if err := s.renderer.Render(ctx, fresh); err != nil {
		log.Error().Err(err).Uint("panel_id", panel.ID).Msg("rendu du panneau")
	}
}

// SubmitChallenge records a challenge against an offered slot and notifies the
// host manager with accept/reject controls. If that notification cannot be
// delivered, the just-written challenge is rolled back so no unreachable
// challenge lingers.
func (s *ChallengeService) SubmitChallenge(ctx context.Context, panelID uint, timeLabel string, challengerTeamID uint, userID string) (string, error) {
	panel, err := s.panels.FindByID(ctx, panelID)
	if err != nil {
		return "", domain.ErrPanelNotFound
	}
	slot := panel.Slot(timeLabel)
	if slot == nil {
		return "", domain.ErrSlotNotFound
	}
	if slot.Status == domain.SlotConfirmed {
		return "", domain.ErrSlotTaken
	}
	if slot.Status == domain.SlotUnavailable {
		return "", domain.ErrSlotUnavailable
	}
	if panel.TeamID == challengerTeamID {
		return "", domain.ErrOwnPanel
	}
	challenger, err := s.teams.FindByID(ctx, challengerTeamID)
	if err != nil {
		return "", domain.ErrTeamNotFound
	}
	if !panel.AcceptsLeague(challenger.League) {
		return "", domain.ErrLeagueFiltered
	}
	booked, err := s.panels.TeamHasConfirmedAt(ctx, challengerTeamID, timeLabel)
	if err != nil {
		return "", fmt.Errorf("check double booking: %w", err)
	}
	if booked {
		return "", domain.ErrDoubleBooked
	}
	// Resolve the host before persisting anything, so every failure past this
	// point goes through the rollback below.
	host, err := s.teams.FindByID(ctx, panel.TeamID)
	if err != nil {
		return "", domain.ErrTeamNotFound
	}

	challenge := &entities.PendingChallenge{
		ID:        uuid.New(),
		TeamID:    challengerTeamID,
		UserID:    userID,
		CreatedAt: time.Now(),
	}
	if err := s.panels.AddChallenge(ctx, panelID, timeLabel, challenge); err != nil {
		return "", err
	}
	s.metrics.ChallengeSubmitted()
	s.rerender(ctx, panel)

	locale := s.locale(ctx, panel.GuildID)
	content := s.translator.T(locale, "dm.challenge.received", map[string]any{
		"Team": challenger.Name,
		"Time": timeLabel,
	})
	controls := []output.Control{
		{Action: output.ControlAccept, PanelID: panelID, TimeLabel: timeLabel, ChallengeID: challenge.ID},
		{Action: output.ControlReject, PanelID: panelID, TimeLabel: timeLabel, ChallengeID: challenge.ID},
	}
	if err := s.notifier.NotifyUser(ctx, host.ManagerID, content, controls...); err != nil {
		log.Warn().Err(err).Str("manager_id", host.ManagerID).Msg("DM manager impossible, rollback du défi")
		if _, rbErr := s.panels.RemoveChallenge(ctx, panelID, timeLabel, challenge.ID); rbErr != nil {
			log.Error().Err(rbErr).Str("challenge_id", challenge.ID.String()).Msg("rollback du défi")
		}
		s.rerender(ctx, panel)
		return "", domain.ErrNotifyFailed
	}

	return s.translator.T(locale, "reply.challenge.sent", map[string]any{
		"Team": host.Name,
		"Time": timeLabel,
	}), nil
}

// AcceptChallenge promotes one pending challenge into a confirmed match. The
// host panel is persisted first; the mirror update on the challenger's own
// panel is a second, idempotent, best-effort step.
func (s *ChallengeService) AcceptChallenge(ctx context.Context, panelID uint, timeLabel string, challengeID uuid.UUID, actorUserID string) (string, error) {
	panel, err := s.panels.FindByID(ctx, panelID)
	if err != nil {
		return "", domain.ErrPanelNotFound
	}
	host, err := s.teams.FindByID(ctx, panel.TeamID)
	if err != nil {
		return "", domain.ErrTeamNotFound
	}
	if !host.CanManage(actorUserID) {
		return "", domain.ErrNotTeamStaff
	}

	outcome, err := s.panels.ConfirmSlot(ctx, panelID, timeLabel, challengeID)
	if err != nil {
		return "", err
	}
	s.metrics.ChallengeAccepted()
	s.rerender(ctx, panel)

	locale := s.locale(ctx, panel.GuildID)
	winnerTeam, err := s.teams.FindByID(ctx, outcome.Winner.TeamID)
	if err != nil {
		log.Error().Err(err).Uint("team_id", outcome.Winner.TeamID).Msg("équipe gagnante introuvable")
		winnerTeam = &entities.Team{ID: outcome.Winner.TeamID}
	}

	// Mirror: the challenger's own panel of the same type, if it exists.
	found, dropped, err := s.panels.ForceConfirmSlot(ctx, outcome.Winner.TeamID, panel.PanelType, timeLabel, panel.TeamID)
	if err != nil {
		log.Error().Err(err).Uint("team_id", outcome.Winner.TeamID).Msg("mise à jour du panneau miroir")
	} else if found {
		if mirror, mErr := s.panels.FindByTeamAndType(ctx, outcome.Winner.TeamID, panel.PanelType); mErr == nil {
			s.rerender(ctx, mirror)
		}
		for _, d := range dropped {
			s.notify(ctx, d.UserID, locale, "dm.challenge.superseded", map[string]any{
				"Team": winnerTeam.Name,
				"Time": timeLabel,
			})
		}
	}

	s.notify(ctx, outcome.Winner.UserID, locale, "dm.challenge.accepted", map[string]any{
		"Team": host.Name,
		"Time": timeLabel,
	})
	for _, loser := range outcome.Losers {
		s.notify(ctx, loser.UserID, locale, "dm.challenge.rejected_other", map[string]any{
			"Team": host.Name,
			"Time": timeLabel,
		})
	}

	return s.translator.T(locale, "reply.challenge.accepted", map[string]any{
		"Team": winnerTeam.Name,
		"Time": timeLabel,
	}), nil
}

// RejectChallenge discards the named challenge only; the slot stays offered.
func (s *ChallengeService) RejectChallenge(ctx context.Context, panelID uint, timeLabel string, challengeID uuid.UUID, actorUserID string) (string, error) {
	panel, err := s.panels.FindByID(ctx, panelID)
	if err != nil {
		return "", domain.ErrPanelNotFound
	}
	host, err := s.teams.FindByID(ctx, panel.TeamID)
	if err != nil {
		return "", domain.ErrTeamNotFound
	}
	if !host.CanManage(actorUserID) {
		return "", domain.ErrNotTeamStaff
	}

	removed, err := s.panels.RemoveChallenge(ctx, panelID, timeLabel, challengeID)
	if err != nil {
		return "", err
	}
	s.metrics.ChallengeRejected()
	s.rerender(ctx, panel)

	locale := s.locale(ctx, panel.GuildID)
	s.notify(ctx, removed.UserID, locale, "dm.challenge.rejected", map[string]any{
		"Team": host.Name,
		"Time": timeLabel,
	})
	return s.translator.T(locale, "reply.challenge.rejected", map[string]any{"Time": timeLabel}), nil
}

// AbandonMatch reverts a confirmed slot to AVAILABLE on both panels. Either
// side of the match may abandon; the other side is notified.
func (s *ChallengeService) AbandonMatch(ctx context.Context, panelID uint, timeLabel string, actorUserID string) (string, error) {
	panel, err := s.panels.FindByID(ctx, panelID)
	if err != nil {
		return "", domain.ErrPanelNotFound
	}
	slot := panel.Slot(timeLabel)
	if slot == nil {
		return "", domain.ErrSlotNotFound
	}
	if slot.Status != domain.SlotConfirmed {
		return "", domain.ErrNoConfirmedMatch
	}

	host, err := s.teams.FindByID(ctx, panel.TeamID)
	if err != nil {
		return "", domain.ErrTeamNotFound
	}
	opponent, err := s.teams.FindByID(ctx, slot.OpponentTeamID)
	if err != nil {
		return "", domain.ErrTeamNotFound
	}
	actorIsHost := host.CanManage(actorUserID)
	if !actorIsHost && !opponent.CanManage(actorUserID) {
		return "", domain.ErrNotMatchParty
	}

	opponentID, err := s.panels.ReleaseSlot(ctx, panelID, timeLabel)
	if err != nil {
		return "", err
	}
	s.metrics.MatchAbandoned()
	s.rerender(ctx, panel)

	// Mirror revert, tolerant of a missing mirror panel.
	found, err := s.panels.ReleaseSlotByTeam(ctx, opponentID, panel.PanelType, timeLabel, panel.TeamID)
	if err != nil {
		log.Error().Err(err).Uint("team_id", opponentID).Msg("annulation sur le panneau miroir")
	} else if found {
		if mirror, mErr := s.panels.FindByTeamAndType(ctx, opponentID, panel.PanelType); mErr == nil {
			s.rerender(ctx, mirror)
		}
	}

	locale := s.locale(ctx, panel.GuildID)
	notifyTarget := opponent.ManagerID
	actingTeam := host
	if !actorIsHost {
		notifyTarget = host.ManagerID
		actingTeam = opponent
	}
	s.notify(ctx, notifyTarget, locale, "dm.match.cancelled", map[string]any{
		"Team": actingTeam.Name,
		"Time": timeLabel,
	})

	return s.translator.T(locale, "reply.match.cancelled", map[string]any{"Time": timeLabel}), nil
}

// CancelAllChallenges clears every pending challenge on the panel in one
// persisted operation and notifies each discarded challenger once. Confirmed
// slots are untouched.
func (s *ChallengeService) CancelAllChallenges(ctx context.Context, panelID uint, actorUserID string) (string, error) {
	panel, err := s.panels.FindByID(ctx, panelID)
	if err != nil {
		return "", domain.ErrPanelNotFound
	}
	host, err := s.teams.FindByID(ctx, panel.TeamID)
	if err != nil {
		return "", domain.ErrTeamNotFound
	}
	if !host.CanManage(actorUserID) {
		return "", domain.ErrNotTeamStaff
	}

	dropped, err := s.panels.ClearChallenges(ctx, panelID)
	if err != nil {
		return "", fmt.Errorf("clear challenges: %w", err)
	}
	s.rerender(ctx, panel)

	locale := s.locale(ctx, panel.GuildID)
	for _, d := range dropped {
		s.notify(ctx, d.UserID, locale, "dm.challenge.bulk_cancelled", map[string]any{
			"Team": host.Name,
		})
	}
	return s.translator.T(locale, "reply.challenge.bulk_cancelled", map[string]any{
		"Count": len(dropped),
	}), nil
}

// notify sends a localized best-effort notice; failures are logged and
// swallowed (the submit rollback is handled at its call site).
func (s *ChallengeService) notify(ctx context.Context, userID, locale, key string, data map[string]any) {
	content := s.translator.T(locale, key, data)
	if err := s.notifier.NotifyUser(ctx, userID, content); err != nil {
		log.Warn().Err(err).Str("user_id", userID).Str("key", key).Msg("notification non délivrée")
	}
}
