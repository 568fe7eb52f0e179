package application

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"scrimbot/internal/domain"
	"scrimbot/internal/domain/entities"
	"scrimbot/internal/ports/input"
	"scrimbot/internal/ports/output"
)

// PanelService manages panel lifecycle: creation by team staff, slot
// availability toggles, deletion and the daily sweep.
type PanelService struct {
	panels     output.PanelRepository
	teams      output.TeamDirectory
	guilds     output.GuildSettings
	renderer   output.PanelRenderer
	translator output.T
	metrics    output.Metrics
}

func NewPanelService(
	panels output.PanelRepository,
	teams output.TeamDirectory,
	guilds output.GuildSettings,
	renderer output.PanelRenderer,
	translator output.T,
	metrics output.Metrics,
) *PanelService {
	return &PanelService{
		panels:     panels,
		teams:      teams,
		guilds:     guilds,
		renderer:   renderer,
		translator: translator,
		metrics:    metrics,
	}
}

func (s *PanelService) locale(ctx context.Context, guildID string) string {
	loc, err := s.guilds.Locale(ctx, guildID)
	if err != nil || loc == "" {
		return "fr"
	}
	return loc
}

// CreatePanel posts a new availability panel for the creator's team. SCHEDULED
// panels carry the full fixed label set, with the chosen labels offered;
// INSTANT panels carry the single sentinel label, already offered.
func (s *PanelService) CreatePanel(ctx context.Context, p input.CreatePanelParams) (*entities.AvailabilityPanel, string, error) {
	if !domain.ValidPanelType(p.PanelType) {
		return nil, "", domain.ErrPanelNotFound
	}
	team, err := s.teams.FindByMember(ctx, p.GuildID, p.CreatorUserID)
	if err != nil {
		return nil, "", domain.ErrTeamNotFound
	}
	if !team.CanManage(p.CreatorUserID) {
		return nil, "", domain.ErrNotTeamStaff
	}

	offered := make(map[string]bool, len(p.TimeLabels))
	for _, label := range p.TimeLabels {
		if !domain.ValidLabel(p.PanelType, label) {
			return nil, "", domain.ErrSlotNotFound
		}
		offered[label] = true
	}

	panel := &entities.AvailabilityPanel{
		GuildID:       p.GuildID,
		TeamID:        team.ID,
		PanelType:     p.PanelType,
		ChannelID:     p.ChannelID,
		CreatorID:     p.CreatorUserID,
		LeagueFilters: p.LeagueFilters,
	}
	for _, label := range domain.LabelsFor(p.PanelType) {
		status := domain.SlotUnavailable
		if p.PanelType == domain.PanelInstant || offered[label] {
			status = domain.SlotAvailable
		}
		panel.Slots = append(panel.Slots, entities.TimeSlot{TimeLabel: label, Status: status})
	}

	if err := s.panels.Create(ctx, panel); err != nil {
		return nil, "", err
	}
	s.metrics.PanelCreated(p.PanelType)
	if err := s.renderer.Render(ctx, panel); err != nil {
		log.Error().Err(err).Uint("panel_id", panel.ID).Msg("rendu initial du panneau")
	}

	locale := s.locale(ctx, p.GuildID)
	return panel, s.translator.T(locale, "reply.panel.created", map[string]any{
		"Team": team.Name,
	}), nil
}

// SetSlotAvailability toggles a slot between UNAVAILABLE and AVAILABLE.
// Confirmed slots and slots with pending challenges refuse the toggle.
func (s *PanelService) SetSlotAvailability(ctx context.Context, panelID uint, timeLabel string, available bool, actorUserID string) (string, error) {
	panel, err := s.panels.FindByID(ctx, panelID)
	if err != nil {
		return "", domain.ErrPanelNotFound
	}
	team, err := s.teams.FindByID(ctx, panel.TeamID)
	if err != nil {
		return "", domain.ErrTeamNotFound
	}
	if !team.CanManage(actorUserID) {
		return "", domain.ErrNotTeamStaff
	}

	if err := s.panels.SetSlotAvailable(ctx, panelID, timeLabel, available); err != nil {
		return "", err
	}
	if fresh, err := s.panels.FindByID(ctx, panelID); err == nil {
		if err := s.renderer.Render(ctx, fresh); err != nil {
			log.Error().Err(err).Uint("panel_id", panelID).Msg("rendu du panneau")
		}
	}

	locale := s.locale(ctx, panel.GuildID)
	key := "reply.slot.enabled"
	if !available {
		key = "reply.slot.disabled"
	}
	return s.translator.T(locale, key, map[string]any{"Time": timeLabel}), nil
}

// DeletePanel removes the panel; only the owning team's staff may do so.
func (s *PanelService) DeletePanel(ctx context.Context, panelID uint, actorUserID string) (string, error) {
	panel, err := s.panels.FindByID(ctx, panelID)
	if err != nil {
		return "", domain.ErrPanelNotFound
	}
	team, err := s.teams.FindByID(ctx, panel.TeamID)
	if err != nil {
		return "", domain.ErrTeamNotFound
	}
	if !team.CanManage(actorUserID) {
		return "", domain.ErrNotTeamStaff
	}
	if err := s.panels.Delete(ctx, panelID); err != nil {
		return "", fmt.Errorf("delete panel: %w", err)
	}
	locale := s.locale(ctx, panel.GuildID)
	return s.translator.T(locale, "reply.panel.deleted", nil), nil
}

// SweepAllPanels is the daily global reset: every panel is deleted
// unconditionally. The caller is responsible for clearing the board channels.
func (s *PanelService) SweepAllPanels(ctx context.Context) (int64, error) {
	start := time.Now()
	deleted, err := s.panels.DeleteAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("sweep panels: %w", err)
	}
	s.metrics.SweepRun(deleted)
	log.Info().Int64("panels", deleted).Dur("took", time.Since(start)).Msg("🧹 sweep quotidien terminé")
	return deleted, nil
}

func (s *PanelService) GetPanelByID(ctx context.Context, id uint) (*entities.AvailabilityPanel, error) {
	return s.panels.FindByID(ctx, id)
}

func (s *PanelService) GetPanelByMessageID(ctx context.Context, messageID string) (*entities.AvailabilityPanel, error) {
	return s.panels.FindByMessageID(ctx, messageID)
}
