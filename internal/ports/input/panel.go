package input

import (
	"context"

	"scrimbot/internal/domain/entities"
)

// CreatePanelParams describes a new availability panel.
type CreatePanelParams struct {
	GuildID       string
	ChannelID     string
	CreatorUserID string
	PanelType     string
	TimeLabels    []string // offered labels; ignored for INSTANT panels
	LeagueFilters []string
}

// PanelUseCase manages panel lifecycle: creation, slot availability,
// deletion and the daily sweep.
type PanelUseCase interface {
	CreatePanel(ctx context.Context, p CreatePanelParams) (*entities.AvailabilityPanel, string, error)
	SetSlotAvailability(ctx context.Context, panelID uint, timeLabel string, available bool, actorUserID string) (string, error)
	DeletePanel(ctx context.Context, panelID uint, actorUserID string) (string, error)
	SweepAllPanels(ctx context.Context) (int64, error)
	GetPanelByID(ctx context.Context, id uint) (*entities.AvailabilityPanel, error)
	GetPanelByMessageID(ctx context.Context, messageID string) (*entities.AvailabilityPanel, error)
}
