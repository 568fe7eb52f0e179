package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"scrimbot/internal/domain"
	"scrimbot/internal/domain/entities"
	"scrimbot/internal/ports/output"
)

var _ output.TeamDirectory = (*TeamRepository)(nil)

// TeamRepository reads team identity and roster from the teams/team_members
// tables. The coordinator only consumes this data; registration flows write it.
type TeamRepository struct {
	pool *pgxpool.Pool
}

func NewTeamRepository(pool *pgxpool.Pool) *TeamRepository {
	return &TeamRepository{pool: pool}
}

func (r *TeamRepository) FindByID(ctx context.Context, id uint) (*entities.Team, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, guild_id, name, league, manager_id, logo_url, created_at, updated_at
		FROM teams WHERE id = $1`, int64(id))
	return r.scanTeam(ctx, row)
}

func (r *TeamRepository) FindByMember(ctx context.Context, guildID, userID string) (*entities.Team, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT t.id, t.guild_id, t.name, t.league, t.manager_id, t.logo_url, t.created_at, t.updated_at
		FROM teams t
		JOIN team_members m ON m.team_id = t.id
		WHERE t.guild_id = $1 AND m.user_id = $2`, guildID, userID)
	return r.scanTeam(ctx, row)
}

func (r *TeamRepository) scanTeam(ctx context.Context, row pgx.Row) (*entities.Team, error) {
	var t entities.Team
	var id int64
	err := row.Scan(&id, &t.GuildID, &t.Name, &t.League, &t.ManagerID, &t.LogoURL, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTeamNotFound
		}
		return nil, fmt.Errorf("get team: %w", err)
	}
	t.ID = uint(id)

	rows, err := r.pool.Query(ctx, `
		SELECT user_id FROM team_members WHERE team_id = $1 AND role = $2`,
		id, domain.RoleCaptain)
	if err != nil {
		return nil, fmt.Errorf("get captains: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var userID string
		if err := rows.Scan(&userID); err != nil {
			return nil, fmt.Errorf("scan captain: %w", err)
		}
		t.CaptainIDs = append(t.CaptainIDs, userID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate captains: %w", err)
	}
	return &t, nil
}
