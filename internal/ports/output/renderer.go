package output

import (
	"context"

	"scrimbot/internal/domain/entities"
)

// PanelRenderer re-renders a panel's board message from its persisted state.
// It is idempotent and must tolerate the message having been deleted
// externally. It is always invoked after persistence, never before.
type PanelRenderer interface {
	Render(ctx context.Context, panel *entities.AvailabilityPanel) error
}
