package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"scrimbot/internal/domain"
	"scrimbot/internal/domain/entities"
	"scrimbot/internal/ports/output"
)

var _ output.PanelRepository = (*PanelRepository)(nil)

// PanelRepository persists panels, slots and challenges in PostgreSQL. All
// state-machine preconditions are expressed inside the SQL itself (guarded
// UPDATE/DELETE), so concurrent interactions can never both win the same slot.
type PanelRepository struct {
	pool *pgxpool.Pool
}

func NewPanelRepository(pool *pgxpool.Pool) *PanelRepository {
	return &PanelRepository{pool: pool}
}

const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

func (r *PanelRepository) Create(ctx context.Context, panel *entities.AvailabilityPanel) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	row := tx.QueryRow(ctx, `
		INSERT INTO panels (guild_id, team_id, panel_type, channel_id, message_id, creator_id, league_filters)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at`,
		panel.GuildID, int64(panel.TeamID), panel.PanelType, panel.ChannelID,
		panel.MessageID, panel.CreatorID, panel.LeagueFilters,
	)
	var id int64
	if err := row.Scan(&id, &panel.CreatedAt, &panel.UpdatedAt); err != nil {
		if isUniqueViolation(err) {
			return domain.ErrPanelExists
		}
		return fmt.Errorf("insert panel: %w", err)
	}
	panel.ID = uint(id)

	for i := range panel.Slots {
		s := &panel.Slots[i]
		if _, err := tx.Exec(ctx, `
			INSERT INTO slots (panel_id, time_label, status)
			VALUES ($1, $2, $3)`,
			id, s.TimeLabel, s.Status,
		); err != nil {
			return fmt.Errorf("insert slot %s: %w", s.TimeLabel, err)
		}
	}
	return tx.Commit(ctx)
}

func (r *PanelRepository) FindByID(ctx context.Context, id uint) (*entities.AvailabilityPanel, error) {
	return r.findOne(ctx, `WHERE p.id = $1`, int64(id))
}

func (r *PanelRepository) FindByTeamAndType(ctx context.Context, teamID uint, panelType string) (*entities.AvailabilityPanel, error) {
	return r.findOne(ctx, `WHERE p.team_id = $1 AND p.panel_type = $2`, int64(teamID), panelType)
}

func (r *PanelRepository) FindByMessageID(ctx context.Context, messageID string) (*entities.AvailabilityPanel, error) {
	return r.findOne(ctx, `WHERE p.message_id = $1`, messageID)
}

func (r *PanelRepository) findOne(ctx context.Context, where string, args ...any) (*entities.AvailabilityPanel, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT p.id, p.guild_id, p.team_id, p.panel_type, p.channel_id, p.message_id,
		       p.creator_id, p.league_filters, p.created_at, p.updated_at
		FROM panels p `+where, args...)
	panel, err := scanPanel(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPanelNotFound
		}
		return nil, fmt.Errorf("get panel: %w", err)
	}
	if err := r.attachSlots(ctx, panel); err != nil {
		return nil, err
	}
	return panel, nil
}

func (r *PanelRepository) attachSlots(ctx context.Context, panel *entities.AvailabilityPanel) error {
	rows, err := r.pool.Query(ctx, `
		SELECT s.id, s.time_label, s.status, s.opponent_team_id
		FROM slots s
		WHERE s.panel_id = $1
		ORDER BY s.id`, int64(panel.ID))
	if err != nil {
		return fmt.Errorf("get slots: %w", err)
	}
	panel.Slots = nil
	for rows.Next() {
		slot, err := scanSlot(rows)
		if err != nil {
			rows.Close()
			return fmt.Errorf("scan slot: %w", err)
		}
		panel.Slots = append(panel.Slots, slot)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate slots: %w", err)
	}

	crows, err := r.pool.Query(ctx, `
		SELECT c.id, c.team_id, c.user_id, c.created_at, s.time_label
		FROM challenges c
		JOIN slots s ON s.id = c.slot_id
		WHERE s.panel_id = $1
		ORDER BY c.created_at, c.id`, int64(panel.ID))
	if err != nil {
		return fmt.Errorf("get challenges: %w", err)
	}
	defer crows.Close()
	for crows.Next() {
		ch, label, err := scanChallengeWithLabel(crows)
		if err != nil {
			return fmt.Errorf("scan challenge: %w", err)
		}
		if slot := panel.Slot(label); slot != nil {
			slot.Challenges = append(slot.Challenges, ch)
		}
	}
	if err := crows.Err(); err != nil {
		return fmt.Errorf("iterate challenges: %w", err)
	}
	return nil
}

func (r *PanelRepository) SetMessageID(ctx context.Context, panelID uint, channelID, messageID string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE panels SET channel_id = $2, message_id = $3, updated_at = now()
		WHERE id = $1`,
		int64(panelID), channelID, messageID)
	if err != nil {
		return fmt.Errorf("set message id: %w", err)
	}
	return nil
}

func (r *PanelRepository) SetSlotAvailable(ctx context.Context, panelID uint, timeLabel string, available bool) error {
	var tag pgconn.CommandTag
	var err error
	if available {
		tag, err = r.pool.Exec(ctx, `
			UPDATE slots SET status = 'AVAILABLE'
			WHERE panel_id = $1 AND time_label = $2 AND status = 'UNAVAILABLE'`,
			int64(panelID), timeLabel)
	} else {
		tag, err = r.pool.Exec(ctx, `
			UPDATE slots SET status = 'UNAVAILABLE'
			WHERE panel_id = $1 AND time_label = $2 AND status = 'AVAILABLE'
			  AND NOT EXISTS (SELECT 1 FROM challenges c WHERE c.slot_id = slots.id)`,
			int64(panelID), timeLabel)
	}
	if err != nil {
		return fmt.Errorf("toggle slot: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return r.touch(ctx, panelID)
	}

	// The guard refused; inspect the slot to report why.
	var status string
	var pending int
	err = r.pool.QueryRow(ctx, `
		SELECT s.status, (SELECT count(*) FROM challenges c WHERE c.slot_id = s.id)
		FROM slots s WHERE s.panel_id = $1 AND s.time_label = $2`,
		int64(panelID), timeLabel).Scan(&status, &pending)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrSlotNotFound
	}
	if err != nil {
		return fmt.Errorf("inspect slot: %w", err)
	}
	switch {
	case status == domain.SlotConfirmed:
		return domain.ErrSlotTaken
	case !available && pending > 0:
		return domain.ErrSlotHasChallenges
	default:
		// Already in the requested state.
		return nil
	}
}

func (r *PanelRepository) AddChallenge(ctx context.Context, panelID uint, timeLabel string, challenge *entities.PendingChallenge) error {
	tag, err := r.pool.Exec(ctx, `
		INSERT INTO challenges (id, slot_id, team_id, user_id, created_at)
		SELECT $1, s.id, $2, $3, $4
		FROM slots s
		WHERE s.panel_id = $5 AND s.time_label = $6 AND s.status = 'AVAILABLE'`,
		challenge.ID, int64(challenge.TeamID), challenge.UserID, challenge.CreatedAt,
		int64(panelID), timeLabel)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateChallenge
		}
		return fmt.Errorf("insert challenge: %w", err)
	}
	if tag.RowsAffected() == 0 {
		var status string
		err := r.pool.QueryRow(ctx, `
			SELECT status FROM slots WHERE panel_id = $1 AND time_label = $2`,
			int64(panelID), timeLabel).Scan(&status)
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrSlotNotFound
		}
		if err != nil {
			return fmt.Errorf("inspect slot: %w", err)
		}
		if status == domain.SlotConfirmed {
			return domain.ErrSlotTaken
		}
		return domain.ErrSlotUnavailable
	}
	return r.touch(ctx, panelID)
}

func (r *PanelRepository) RemoveChallenge(ctx context.Context, panelID uint, timeLabel string, challengeID uuid.UUID) (*entities.PendingChallenge, error) {
	row := r.pool.QueryRow(ctx, `
		DELETE FROM challenges c
		USING slots s
		WHERE c.id = $1 AND c.slot_id = s.id AND s.panel_id = $2 AND s.time_label = $3
		RETURNING c.id, c.team_id, c.user_id, c.created_at`,
		challengeID, int64(panelID), timeLabel)
	ch, err := scanChallenge(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrChallengeNotFound
		}
		return nil, fmt.Errorf("remove challenge: %w", err)
	}
	if err := r.touch(ctx, panelID); err != nil {
		return nil, err
	}
	return &ch, nil
}

// ConfirmSlot is the race-sensitive path. The slot row is locked up front so
// two concurrent accepts serialize: the second re-reads the committed status
// and observes a lost race, never a deadlock. The DELETE additionally refuses
// to promote a challenger already confirmed elsewhere at this label, as host
// or as opponent.
func (r *PanelRepository) ConfirmSlot(ctx context.Context, panelID uint, timeLabel string, challengeID uuid.UUID) (*output.ConfirmOutcome, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	var slotID int64
	var status string
	err = tx.QueryRow(ctx, `
		SELECT id, status FROM slots
		WHERE panel_id = $1 AND time_label = $2
		FOR UPDATE`,
		int64(panelID), timeLabel).Scan(&slotID, &status)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrSlotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lock slot: %w", err)
	}
	if status == domain.SlotConfirmed {
		return nil, domain.ErrSlotTaken
	}

	var winnerTeamID int64
	var winner entities.PendingChallenge
	err = tx.QueryRow(ctx, `
		DELETE FROM challenges c
		WHERE c.id = $1 AND c.slot_id = $2
		  AND NOT EXISTS (
			SELECT 1
			FROM slots s2
			JOIN panels p2 ON p2.id = s2.panel_id
			WHERE s2.time_label = $3 AND s2.status = 'CONFIRMED'
			  AND (p2.team_id = c.team_id OR s2.opponent_team_id = c.team_id)
		  )
		RETURNING c.id, c.team_id, c.user_id, c.created_at`,
		challengeID, slotID, timeLabel).
		Scan(&winner.ID, &winnerTeamID, &winner.UserID, &winner.CreatedAt)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("promote challenge: %w", err)
		}
		// Guard refused: a vanished challenge, or a challenger meanwhile
		// confirmed at this label on another panel.
		var exists bool
		serr := tx.QueryRow(ctx, `
			SELECT EXISTS (SELECT 1 FROM challenges WHERE id = $1 AND slot_id = $2)`,
			challengeID, slotID).Scan(&exists)
		if serr != nil {
			return nil, fmt.Errorf("inspect challenge: %w", serr)
		}
		if !exists {
			return nil, domain.ErrChallengeNotFound
		}
		return nil, domain.ErrDoubleBooked
	}
	winner.TeamID = uint(winnerTeamID)

	if _, err := tx.Exec(ctx, `
		UPDATE slots SET status = 'CONFIRMED', opponent_team_id = $2 WHERE id = $1`,
		slotID, int64(winner.TeamID)); err != nil {
		return nil, fmt.Errorf("confirm slot: %w", err)
	}

	losers, err := deleteChallengesReturning(ctx, tx, `WHERE slot_id = $1`, slotID)
	if err != nil {
		return nil, err
	}
	if _, err := tx.Exec(ctx, `UPDATE panels SET updated_at = now() WHERE id = $1`, int64(panelID)); err != nil {
		return nil, fmt.Errorf("touch panel: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return &output.ConfirmOutcome{Winner: winner, Losers: losers}, nil
}

func (r *PanelRepository) ForceConfirmSlot(ctx context.Context, teamID uint, panelType, timeLabel string, opponentTeamID uint) (bool, []entities.PendingChallenge, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return false, nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	var slotID, mirrorPanelID int64
	var status string
	var currentOpponent *int64
	err = tx.QueryRow(ctx, `
		SELECT s.id, p.id, s.status, s.opponent_team_id
		FROM slots s
		JOIN panels p ON p.id = s.panel_id
		WHERE p.team_id = $1 AND p.panel_type = $2 AND s.time_label = $3
		FOR UPDATE OF s`,
		int64(teamID), panelType, timeLabel).Scan(&slotID, &mirrorPanelID, &status, &currentOpponent)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil, nil
	}
	if err != nil {
		return false, nil, fmt.Errorf("find mirror slot: %w", err)
	}
	// Never stomp a confirmation against someone else; re-applying the same
	// one is the idempotent no-op.
	if status == domain.SlotConfirmed && (currentOpponent == nil || uint(*currentOpponent) != opponentTeamID) {
		return false, nil, nil
	}

	if _, err := tx.Exec(ctx, `
		UPDATE slots SET status = 'CONFIRMED', opponent_team_id = $2 WHERE id = $1`,
		slotID, int64(opponentTeamID)); err != nil {
		return false, nil, fmt.Errorf("confirm mirror slot: %w", err)
	}
	dropped, err := deleteChallengesReturning(ctx, tx, `WHERE slot_id = $1`, slotID)
	if err != nil {
		return false, nil, err
	}
	if _, err := tx.Exec(ctx, `UPDATE panels SET updated_at = now() WHERE id = $1`, mirrorPanelID); err != nil {
		return false, nil, fmt.Errorf("touch mirror panel: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return false, nil, fmt.Errorf("commit: %w", err)
	}
	return true, dropped, nil
}

func (r *PanelRepository) ReleaseSlot(ctx context.Context, panelID uint, timeLabel string) (uint, error) {
	var opponentID int64
	err := r.pool.QueryRow(ctx, `
		WITH cur AS (
			SELECT id, opponent_team_id
			FROM slots
			WHERE panel_id = $1 AND time_label = $2 AND status = 'CONFIRMED'
			FOR UPDATE
		)
		UPDATE slots s SET status = 'AVAILABLE', opponent_team_id = NULL
		FROM cur WHERE s.id = cur.id
		RETURNING cur.opponent_team_id`,
		int64(panelID), timeLabel).Scan(&opponentID)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, domain.ErrNoConfirmedMatch
	}
	if err != nil {
		return 0, fmt.Errorf("release slot: %w", err)
	}
	if err := r.touch(ctx, panelID); err != nil {
		return 0, err
	}
	return uint(opponentID), nil
}

func (r *PanelRepository) ReleaseSlotByTeam(ctx context.Context, teamID uint, panelType, timeLabel string, opponentTeamID uint) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE slots s SET status = 'AVAILABLE', opponent_team_id = NULL
		FROM panels p
		WHERE p.id = s.panel_id AND p.team_id = $1 AND p.panel_type = $2
		  AND s.time_label = $3 AND s.status = 'CONFIRMED' AND s.opponent_team_id = $4`,
		int64(teamID), panelType, timeLabel, int64(opponentTeamID))
	if err != nil {
		return false, fmt.Errorf("release mirror slot: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *PanelRepository) ClearChallenges(ctx context.Context, panelID uint) ([]entities.PendingChallenge, error) {
	rows, err := r.pool.Query(ctx, `
		DELETE FROM challenges c
		USING slots s
		WHERE c.slot_id = s.id AND s.panel_id = $1
		RETURNING c.id, c.team_id, c.user_id, c.created_at`,
		int64(panelID))
	if err != nil {
		return nil, fmt.Errorf("clear challenges: %w", err)
	}
	defer rows.Close()
	var dropped []entities.PendingChallenge
	for rows.Next() {
		ch, err := scanChallenge(rows)
		if err != nil {
			return nil, fmt.Errorf("scan challenge: %w", err)
		}
		dropped = append(dropped, ch)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate challenges: %w", err)
	}
	if err := r.touch(ctx, panelID); err != nil {
		return nil, err
	}
	return dropped, nil
}

func (r *PanelRepository) TeamHasConfirmedAt(ctx context.Context, teamID uint, timeLabel string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1
			FROM slots s
			JOIN panels p ON p.id = s.panel_id
			WHERE s.time_label = $2 AND s.status = 'CONFIRMED'
			  AND (p.team_id = $1 OR s.opponent_team_id = $1)
		)`,
		int64(teamID), timeLabel).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check confirmed slot: %w", err)
	}
	return exists, nil
}

func (r *PanelRepository) Delete(ctx context.Context, id uint) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM panels WHERE id = $1`, int64(id)); err != nil {
		return fmt.Errorf("delete panel: %w", err)
	}
	return nil
}

func (r *PanelRepository) DeleteAll(ctx context.Context) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM panels`)
	if err != nil {
		return 0, fmt.Errorf("delete all panels: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *PanelRepository) touch(ctx context.Context, panelID uint) error {
	if _, err := r.pool.Exec(ctx, `UPDATE panels SET updated_at = now() WHERE id = $1`, int64(panelID)); err != nil {
		return fmt.Errorf("touch panel: %w", err)
	}
	return nil
}
