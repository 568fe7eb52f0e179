package entities

import "time"

// Team is the read model the coordinator needs from the team directory:
// identity, league affiliation and the manager/captain hierarchy.
type Team struct {
	ID         uint
	GuildID    string
	Name       string
	League     string
	ManagerID  string
	CaptainIDs []string
	LogoURL    string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// CanManage reports whether userID is the team's manager or one of its captains.
func (t *Team) CanManage(userID string) bool {
	if userID == t.ManagerID {
		return true
	}
	for _, id := range t.CaptainIDs {
		if id == userID {
			return true
		}
	}
	return false
}
