package output

import (
	"context"

	"github.com/google/uuid"

	"scrimbot/internal/domain/entities"
)

// ConfirmOutcome is the result of a guarded slot confirmation: the promoted
// challenge and the other pending challenges that were swept from the slot.
type ConfirmOutcome struct {
	Winner entities.PendingChallenge
	Losers []entities.PendingChallenge
}

// PanelRepository persists availability panels and their embedded slots and
// challenges. Every mutating method expresses its precondition as part of the
// persisted update: a stale caller gets a domain error back, never a silent
// overwrite.
type PanelRepository interface {
	Create(ctx context.Context, panel *entities.AvailabilityPanel) error
	FindByID(ctx context.Context, id uint) (*entities.AvailabilityPanel, error)
	FindByTeamAndType(ctx context.Context, teamID uint, panelType string) (*entities.AvailabilityPanel, error)
	FindByMessageID(ctx context.Context, messageID string) (*entities.AvailabilityPanel, error)
	SetMessageID(ctx context.Context, panelID uint, channelID, messageID string) error

	// SetSlotAvailable toggles UNAVAILABLE <-> AVAILABLE. Disabling a slot that
	// still has pending challenges fails with ErrSlotHasChallenges; a confirmed
	// slot cannot be toggled either way.
	SetSlotAvailable(ctx context.Context, panelID uint, timeLabel string, available bool) error

	// AddChallenge appends a pending challenge iff the slot is still AVAILABLE.
	// A second challenge from the same team fails with ErrDuplicateChallenge.
	AddChallenge(ctx context.Context, panelID uint, timeLabel string, challenge *entities.PendingChallenge) error

	// RemoveChallenge discards the named challenge from the given slot and
	// returns it, for reject and for the submit rollback.
	RemoveChallenge(ctx context.Context, panelID uint, timeLabel string, challengeID uuid.UUID) (*entities.PendingChallenge, error)

	// ConfirmSlot promotes the named challenge in one conditional update: it
	// succeeds only while the slot is not CONFIRMED and the challenge is still
	// pending. A slot lost to a race yields ErrSlotTaken, a vanished challenge
	// ErrChallengeNotFound, with no mutation in either case.
	ConfirmSlot(ctx context.Context, panelID uint, timeLabel string, challengeID uuid.UUID) (*ConfirmOutcome, error)

	// ForceConfirmSlot applies the mirror side of a confirmation on the panel
	// owned by (teamID, panelType), clearing its pending list. Re-applying the
	// same confirmation is a no-op. found is false when no mirror panel or slot
	// exists, which is not an error.
	ForceConfirmSlot(ctx context.Context, teamID uint, panelType, timeLabel string, opponentTeamID uint) (found bool, dropped []entities.PendingChallenge, err error)

	// ReleaseSlot reverts a confirmed slot to AVAILABLE and returns the cleared
	// opponent team id. ErrNoConfirmedMatch when the slot is not confirmed.
	ReleaseSlot(ctx context.Context, panelID uint, timeLabel string) (opponentTeamID uint, err error)

	// ReleaseSlotByTeam reverts the mirror slot, guarded on it still showing
	// the given opponent. found is false when no such mirror record exists.
	ReleaseSlotByTeam(ctx context.Context, teamID uint, panelType, timeLabel string, opponentTeamID uint) (found bool, err error)

	// ClearChallenges drops every pending challenge on the panel in one
	// operation and returns them. Confirmed slots are untouched.
	ClearChallenges(ctx context.Context, panelID uint) ([]entities.PendingChallenge, error)

	// TeamHasConfirmedAt reports whether the team already has a confirmed match
	// at this time label on any panel, as host or as opponent.
	TeamHasConfirmedAt(ctx context.Context, teamID uint, timeLabel string) (bool, error)

	Delete(ctx context.Context, id uint) error
	DeleteAll(ctx context.Context) (int64, error)
}
