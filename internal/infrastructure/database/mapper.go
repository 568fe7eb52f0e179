package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"scrimbot/internal/domain/entities"
)

// Row scanners shared by the repositories.

func scanPanel(row pgx.Row) (*entities.AvailabilityPanel, error) {
	var p entities.AvailabilityPanel
	var id, teamID int64
	if err := row.Scan(
		&id, &p.GuildID, &teamID, &p.PanelType, &p.ChannelID, &p.MessageID,
		&p.CreatorID, &p.LeagueFilters, &p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	p.ID = uint(id)
	p.TeamID = uint(teamID)
	return &p, nil
}

func scanSlot(row pgx.Row) (entities.TimeSlot, error) {
	var s entities.TimeSlot
	var id int64
	var opponent *int64
	if err := row.Scan(&id, &s.TimeLabel, &s.Status, &opponent); err != nil {
		return entities.TimeSlot{}, err
	}
	if opponent != nil {
		s.OpponentTeamID = uint(*opponent)
	}
	return s, nil
}

func scanChallenge(row pgx.Row) (entities.PendingChallenge, error) {
	var c entities.PendingChallenge
	var teamID int64
	if err := row.Scan(&c.ID, &teamID, &c.UserID, &c.CreatedAt); err != nil {
		return entities.PendingChallenge{}, err
	}
	c.TeamID = uint(teamID)
	return c, nil
}

func scanChallengeWithLabel(row pgx.Row) (entities.PendingChallenge, string, error) {
	var c entities.PendingChallenge
	var teamID int64
	var label string
	if err := row.Scan(&c.ID, &teamID, &c.UserID, &c.CreatedAt, &label); err != nil {
		return entities.PendingChallenge{}, "", err
	}
	c.TeamID = uint(teamID)
	return c, label, nil
}

// deleteChallengesReturning drops challenges matching where (args follow) and
// returns them.
func deleteChallengesReturning(ctx context.Context, tx pgx.Tx, where string, args ...any) ([]entities.PendingChallenge, error) {
	rows, err := tx.Query(ctx, `
		DELETE FROM challenges `+where+`
		RETURNING id, team_id, user_id, created_at`, args...)
	if err != nil {
		return nil, fmt.Errorf("sweep challenges: %w", err)
	}
	defer rows.Close()
	var out []entities.PendingChallenge
	for rows.Next() {
		c, err := scanChallenge(rows)
		if err != nil {
			return nil, fmt.Errorf("scan challenge: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate challenges: %w", err)
	}
	return out, nil
}
