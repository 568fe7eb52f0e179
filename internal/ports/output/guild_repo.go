package output

import "context"

// GuildSettings stores per-guild preferences, currently just the locale used
// for every user-facing message in that guild.
type GuildSettings interface {
	Locale(ctx context.Context, guildID string) (string, error)
	SetLocale(ctx context.Context, guildID, locale string) error
}
