package discord

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"scrimbot/internal/application"
	"scrimbot/internal/config"
	"scrimbot/internal/cooldown"
	"scrimbot/internal/ports/output"
	pkgdiscord "scrimbot/pkg/discord"
)

// Bot is the Discord adapter.
type Bot struct {
	session *discordgo.Session
	config  *config.Config
	handler *Handler
	panelUC *application.PanelService
}

// NewBot creates a Bot and wires ports: output adapters -> application (use
// cases) -> handler. The renderer and notifier are themselves Discord-backed
// output adapters, so they are built around the same session.
func NewBot(
	cfg *config.Config,
	panels output.PanelRepository,
	teams output.TeamDirectory,
	guilds output.GuildSettings,
	translator output.T,
	metrics output.Metrics,
) (*Bot, error) {
	s, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("création de la session Discord: %w", err)
	}

	cooldowns := cooldown.New(cfg.NotifyCooldown, clockwork.NewRealClock())
	renderer := NewRenderer(s, panels, teams)
	notifier := NewNotifier(s, cooldowns, rate.NewLimiter(rate.Every(time.Second), 5))

	panelUC := application.NewPanelService(panels, teams, guilds, renderer, translator, metrics)
	challengeUC := application.NewChallengeService(panels, teams, guilds, renderer, notifier, translator, metrics)

	handler := NewHandler(panelUC, challengeUC, teams, guilds, translator, cooldowns, cfg.BoardChannelID)

	bot := &Bot{
		session: s,
		config:  cfg,
		handler: handler,
		panelUC: panelUC,
	}
	bot.session.AddHandler(bot.handleInteraction)
	return bot, nil
}

func (b *Bot) handleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		switch i.ApplicationCommandData().Name {
		case "recherche":
			b.handler.HandleSearchCommand(s, i)
		case "langue":
			b.handler.HandleLocaleCommand(s, i)
		}
	case discordgo.InteractionMessageComponent:
		customID := i.MessageComponentData().CustomID
		switch pkgdiscord.Action(customID) {
		case pkgdiscord.ActionChallenge:
			b.handler.HandleChallenge(s, i)
		case pkgdiscord.ActionAbandon:
			b.handler.HandleAbandon(s, i)
		case pkgdiscord.ActionAccept:
			b.handler.HandleAccept(s, i)
		case pkgdiscord.ActionReject:
			b.handler.HandleReject(s, i)
		case pkgdiscord.ActionToggle:
			b.handler.HandleToggleMenu(s, i)
		case pkgdiscord.ActionToggleSel:
			b.handler.HandleToggleSelect(s, i)
		case pkgdiscord.ActionCancelAll:
			b.handler.HandleCancelAll(s, i)
		case pkgdiscord.ActionDelete:
			b.handler.HandleDeletePanel(s, i)
		}
	}
}

var searchCommand = &discordgo.ApplicationCommand{
	Name:        "recherche",
	Description: "Publier un panneau de recherche de match amical",
	Options: []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "type",
			Description: "Type de recherche",
			Required:    true,
			Choices: []*discordgo.ApplicationCommandOptionChoice{
				{Name: "Planifiée (créneaux du soir)", Value: "SCHEDULED"},
				{Name: "Instantanée (maintenant)", Value: "INSTANT"},
			},
		},
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "creneaux",
			Description: "Créneaux proposés, séparés par des virgules (ex: 21:00, 22:00)",
			Required:    false,
		},
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "ligues",
			Description: "Restreindre aux ligues listées, séparées par des virgules",
			Required:    false,
		},
	},
}

var localeCommand = &discordgo.ApplicationCommand{
	Name:        "langue",
	Description: "Choisir la langue du bot sur ce serveur",
	Options: []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "locale",
			Description: "Langue des réponses et notifications",
			Required:    true,
			Choices: []*discordgo.ApplicationCommandOptionChoice{
				{Name: "Français", Value: "fr"},
				{Name: "English", Value: "en"},
			},
		},
	},
}

// Start runs the bot until interrupted.
func (b *Bot) Start() error {
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("erreur lors de l'ouverture de la session: %w", err)
	}
	defer b.session.Close()

	for _, cmd := range []*discordgo.ApplicationCommand{searchCommand, localeCommand} {
		if _, err := b.session.ApplicationCommandCreate(b.session.State.User.ID, b.config.GuildID, cmd); err != nil {
			log.Warn().Err(err).Str("command", cmd.Name).Msg("⚠️ Enregistrement de la commande")
		}
	}

	go b.runDailySweep()

	log.Info().Msg("🤖 Bot en ligne ! CTRL+C pour quitter.")
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	return nil
}
