package discord

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// Component custom ids. Fields are joined with '|' because time labels
// contain ':'.
const (
	ActionChallenge = "chal"
	ActionAbandon   = "chal_abandon"
	ActionAccept    = "chal_accept"
	ActionReject    = "chal_reject"
	ActionToggle    = "panel_toggle"
	ActionToggleSel = "panel_toggle_sel"
	ActionCancelAll = "panel_cancel"
	ActionDelete    = "panel_del"

	sep = "|"
)

// SlotActionID builds a custom id for a (panel, slot) action.
func SlotActionID(action string, panelID uint, timeLabel string) string {
	return strings.Join([]string{action, strconv.FormatUint(uint64(panelID), 10), timeLabel}, sep)
}

// ChallengeActionID builds a custom id for an accept/reject control. The
// challenge id makes the response unambiguous even after the pending list
// changed.
func ChallengeActionID(action string, panelID uint, timeLabel string, challengeID uuid.UUID) string {
	return strings.Join([]string{
		action,
		strconv.FormatUint(uint64(panelID), 10),
		timeLabel,
		challengeID.String(),
	}, sep)
}

// PanelActionID builds a custom id for a panel-wide action.
func PanelActionID(action string, panelID uint) string {
	return strings.Join([]string{action, strconv.FormatUint(uint64(panelID), 10)}, sep)
}

// Action returns the action part of a custom id.
func Action(customID string) string {
	action, _, _ := strings.Cut(customID, sep)
	return action
}

// ParseSlotActionID extracts (panelID, timeLabel) from a slot action id.
func ParseSlotActionID(customID string) (uint, string, error) {
	parts := strings.Split(customID, sep)
	if len(parts) != 3 {
		return 0, "", fmt.Errorf("custom id invalide: %q", customID)
	}
	id, err := strconv.ParseUint(parts[1], 10, 64)
	if err != nil {
		return 0, "", fmt.Errorf("custom id invalide: %q", customID)
	}
	return uint(id), parts[2], nil
}

// ParseChallengeActionID extracts (panelID, timeLabel, challengeID) from an
// accept/reject control id.
func ParseChallengeActionID(customID string) (uint, string, uuid.UUID, error) {
	parts := strings.Split(customID, sep)
	if len(parts) != 4 {
		return 0, "", uuid.Nil, fmt.Errorf("custom id invalide: %q", customID)
	}
	id, err := strconv.ParseUint(parts[1], 10, 64)
	if err != nil {
		return 0, "", uuid.Nil, fmt.Errorf("custom id invalide: %q", customID)
	}
	challengeID, err := uuid.Parse(parts[3])
	if err != nil {
		return 0, "", uuid.Nil, fmt.Errorf("custom id invalide: %q", customID)
	}
	return uint(id), parts[2], challengeID, nil
}

// ParsePanelActionID extracts the panel id from a panel-wide action id.
func ParsePanelActionID(customID string) (uint, error) {
	parts := strings.Split(customID, sep)
	if len(parts) != 2 {
		return 0, fmt.Errorf("custom id invalide: %q", customID)
	}
	id, err := strconv.ParseUint(parts[1], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("custom id invalide: %q", customID)
	}
	return uint(id), nil
}
