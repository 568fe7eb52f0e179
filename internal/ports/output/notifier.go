package output

import (
	"context"

	"github.com/google/uuid"
)

// Control actions attached to a notification.
const (
	ControlAccept = "accept"
	ControlReject = "reject"
)

// Control is an actionable button attached to a notification. The triple
// (PanelID, TimeLabel, ChallengeID) correlates the response unambiguously.
type Control struct {
	Action      string
	PanelID     uint
	TimeLabel   string
	ChallengeID uuid.UUID
}

// Notifier delivers point-to-point notices to users. Delivery is best-effort;
// apart from the documented submit-challenge rollback, a failure never aborts
// a persisted state change.
type Notifier interface {
	NotifyUser(ctx context.Context, userID, content string, controls ...Control) error
}
