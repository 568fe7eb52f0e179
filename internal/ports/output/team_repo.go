package output

import (
	"context"

	"scrimbot/internal/domain/entities"
)

// TeamDirectory is the read-only view of team identity and roster the
// coordinator needs for authorization and display. Registration and roster
// management live outside the core.
type TeamDirectory interface {
	FindByID(ctx context.Context, id uint) (*entities.Team, error)
	FindByMember(ctx context.Context, guildID, userID string) (*entities.Team, error)
}
