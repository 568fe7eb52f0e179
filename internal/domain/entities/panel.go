package entities

import (
	"time"

	"github.com/google/uuid"

	"scrimbot/internal/domain"
)

// AvailabilityPanel is a per-team, per-type board of time slots offered for
// friendly matches. At most one panel exists per (team, panel type) pair.
type AvailabilityPanel struct {
	ID            uint
	GuildID       string
	TeamID        uint
	PanelType     string
	ChannelID     string
	MessageID     string // empty until the board message has been posted
	CreatorID     string
	LeagueFilters []string // empty = any league may challenge
	Slots         []TimeSlot
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// TimeSlot is one offered time label within a panel.
type TimeSlot struct {
	TimeLabel      string
	Status         string
	OpponentTeamID uint // set only when Status is CONFIRMED
	Challenges     []PendingChallenge
}

// PendingChallenge is a request by another team to book a slot.
type PendingChallenge struct {
	ID        uuid.UUID
	TeamID    uint
	UserID    string
	CreatedAt time.Time
}

// Slot returns the slot with the given time label, or nil.
func (p *AvailabilityPanel) Slot(timeLabel string) *TimeSlot {
	for i := range p.Slots {
		if p.Slots[i].TimeLabel == timeLabel {
			return &p.Slots[i]
		}
	}
	return nil
}

// HasConfirmed reports whether any slot is confirmed.
func (p *AvailabilityPanel) HasConfirmed() bool {
	for i := range p.Slots {
		if p.Slots[i].Status == domain.SlotConfirmed {
			return true
		}
	}
	return false
}

// PendingCount is the total number of pending challenges across all slots.
func (p *AvailabilityPanel) PendingCount() int {
	n := 0
	for i := range p.Slots {
		n += len(p.Slots[i].Challenges)
	}
	return n
}

// AcceptsLeague reports whether a team from the given league may challenge
// this panel. An empty filter set means unrestricted.
func (p *AvailabilityPanel) AcceptsLeague(league string) bool {
	if len(p.LeagueFilters) == 0 {
		return true
	}
	for _, l := range p.LeagueFilters {
		if l == league {
			return true
		}
	}
	return false
}

// ChallengeByTeam returns the pending challenge of the given team on this
// slot, or nil.
func (s *TimeSlot) ChallengeByTeam(teamID uint) *PendingChallenge {
	for i := range s.Challenges {
		if s.Challenges[i].TeamID == teamID {
			return &s.Challenges[i]
		}
	}
	return nil
}
