package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Token          string        `env:"TOKEN"`
	GuildID        string        `env:"GUILD_ID"`
	BoardChannelID string        `env:"BOARD_CHANNEL_ID"`
	DatabaseURL    string        `env:"DATABASE_URL" envDefault:"postgres://localhost:5432/scrimbot?sslmode=disable"`
	MigrationsPath string        `env:"MIGRATIONS_PATH" envDefault:"migrations"`
	MetricsAddr    string        `env:"METRICS_ADDR" envDefault:":2112"`
	DefaultLocale  string        `env:"DEFAULT_LOCALE" envDefault:"fr"`
	SweepHour      int           `env:"SWEEP_HOUR" envDefault:"5"`
	NotifyCooldown time.Duration `env:"NOTIFY_COOLDOWN" envDefault:"30s"`
}

// Load charge la configuration depuis les variables d'environnement et la valide.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		// .env est optionnel lorsque les variables sont fournies par l'environnement (Docker, CI, etc.).
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: lecture de l'environnement: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validate applique toutes les règles métier sur la configuration chargée.
func (c *Config) validate() error {
	if strings.TrimSpace(c.Token) == "" {
		return fmt.Errorf("config: TOKEN est requis et ne peut pas être vide")
	}

	if strings.TrimSpace(c.BoardChannelID) == "" {
		return fmt.Errorf("config: BOARD_CHANNEL_ID est requis et ne peut pas être vide")
	}

	for _, r := range c.BoardChannelID {
		if r < '0' || r > '9' {
			return fmt.Errorf("config: BOARD_CHANNEL_ID doit être un ID de salon Discord (chiffres uniquement)")
		}
	}

	if c.SweepHour < 0 || c.SweepHour > 23 {
		return fmt.Errorf("config: SWEEP_HOUR doit être entre 0 et 23 (reçu %d)", c.SweepHour)
	}

	if c.NotifyCooldown < 0 {
		return fmt.Errorf("config: NOTIFY_COOLDOWN ne peut pas être négatif")
	}

	parsed, err := url.Parse(c.DatabaseURL)
	if err != nil {
		return fmt.Errorf("config: DATABASE_URL invalide (%q): %w", c.DatabaseURL, err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("config: DATABASE_URL invalide (%q): scheme ou host manquant", c.DatabaseURL)
	}

	return nil
}
