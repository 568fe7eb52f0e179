package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"scrimbot/internal/ports/output"
)

var _ output.GuildSettings = (*GuildSettingsRepository)(nil)

// GuildSettingsRepository stores per-guild preferences (locale).
type GuildSettingsRepository struct {
	pool          *pgxpool.Pool
	defaultLocale string
}

func NewGuildSettingsRepository(pool *pgxpool.Pool, defaultLocale string) *GuildSettingsRepository {
	return &GuildSettingsRepository{pool: pool, defaultLocale: defaultLocale}
}

func (r *GuildSettingsRepository) Locale(ctx context.Context, guildID string) (string, error) {
	var locale string
	err := r.pool.QueryRow(ctx, `
		SELECT locale FROM guild_settings WHERE guild_id = $1`, guildID).Scan(&locale)
	if errors.Is(err, pgx.ErrNoRows) {
		return r.defaultLocale, nil
	}
	if err != nil {
		return "", fmt.Errorf("get locale: %w", err)
	}
	return locale, nil
}

func (r *GuildSettingsRepository) SetLocale(ctx context.Context, guildID, locale string) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO guild_settings (guild_id, locale)
		VALUES ($1, $2)
		ON CONFLICT (guild_id) DO UPDATE SET locale = EXCLUDED.locale`,
		guildID, locale)
	if err != nil {
		return fmt.Errorf("set locale: %w", err)
	}
	return nil
}
