package input

import (
	"context"

	"github.com/google/uuid"
)

// ChallengeUseCase is the challenge coordinator: the state machine over
// (panel, time slot) driving challenge submission, resolution and abandon.
// Each method returns the localized reply to show the acting user.
type ChallengeUseCase interface {
	SubmitChallenge(ctx context.Context, panelID uint, timeLabel string, challengerTeamID uint, userID string) (string, error)
	AcceptChallenge(ctx context.Context, panelID uint, timeLabel string, challengeID uuid.UUID, actorUserID string) (string, error)
	RejectChallenge(ctx context.Context, panelID uint, timeLabel string, challengeID uuid.UUID, actorUserID string) (string, error)
	AbandonMatch(ctx context.Context, panelID uint, timeLabel string, actorUserID string) (string, error)
	CancelAllChallenges(ctx context.Context, panelID uint, actorUserID string) (string, error)
}
