// Package discord exposes the bot's slash commands and chat surface.
package discord

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"

	"github.com/axieum/hlna/internal/ark"
	"github.com/axieum/hlna/internal/config"
	"github.com/axieum/hlna/internal/docker"
	"github.com/axieum/hlna/internal/domain"
	"github.com/axieum/hlna/internal/storage"
)

// handlerTimeout bounds a single slash command handler.
const handlerTimeout = 3 * time.Minute

// Bot is the Discord front end for the game server controls.
type Bot struct {
	session *discordgo.Session
	cfg     *config.Config
	orch    *ark.Orchestrator
	cluster *ark.Cluster
	compose *docker.Compose
	now     func() time.Time
	log     zerolog.Logger
}

// New wires up the Discord session, vote poller, and orchestrator.
func New(cfg *config.Config, store *storage.Store, log zerolog.Logger) (*Bot, error) {
	session, err := discordgo.New("Bot " + cfg.Client.Token)
	if err != nil {
		return nil, fmt.Errorf("creating discord session: %w", err)
	}

	cluster := ark.NewCluster(&cfg.Ark, log)
	poller := NewPoller(session, cfg.Ark.DinoWipe.Ping, log)
	orch := ark.New(&cfg.Ark, store, poller, cluster, log)

	return &Bot{
		session: session,
		cfg:     cfg,
		orch:    orch,
		cluster: cluster,
		compose: docker.NewCompose(cfg.Ark.ComposeFile, log),
		now:     time.Now,
		log:     log.With().Str("component", "bot").Logger(),
	}, nil
}

// Start connects to Discord, registers commands, and begins serving
// interactions until Stop is called.
func (b *Bot) Start(ctx context.Context) error {
	b.session.AddHandler(b.handleInteraction)
	b.session.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMessages

	if err := b.session.Open(); err != nil {
		return fmt.Errorf("opening gateway: %w", err)
	}

	if err := b.registerCommands(); err != nil {
		b.session.Close()
		return err
	}

	go b.consumeEvents(ctx)
	b.log.Info().Msg("bot connected")
	return nil
}

// Stop disconnects from Discord.
func (b *Bot) Stop() error {
	return b.session.Close()
}

func (b *Bot) registerCommands() error {
	choices := make([]*discordgo.ApplicationCommandOptionChoice, 0, len(b.cfg.Ark.Servers))
	for _, srv := range b.cfg.Ark.Servers {
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{
			Name:  srv.Label(),
			Value: srv.Name,
		})
	}

	serverOption := func(desc string, required bool) *discordgo.ApplicationCommandOption {
		return &discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "server",
			Description: desc,
			Required:    required,
			Choices:     choices,
		}
	}

	commands := []*discordgo.ApplicationCommand{
		{
			Name:        "ark",
			Description: "Manage the ARK cluster",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "dinowipe",
					Description: "Start a vote to wipe all wild creatures",
					Options:     []*discordgo.ApplicationCommandOption{serverOption("The server to wipe", false)},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "list",
					Description: "Show the status of every server",
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "listplayers",
					Description: "Show who is playing on a server",
					Options:     []*discordgo.ApplicationCommandOption{serverOption("The server to query", true)},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "start",
					Description: "Start a server",
					Options:     []*discordgo.ApplicationCommandOption{serverOption("The server to start", true)},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "stop",
					Description: "Save and stop a server",
					Options:     []*discordgo.ApplicationCommandOption{serverOption("The server to stop", true)},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "restart",
					Description: "Save and restart a server",
					Options:     []*discordgo.ApplicationCommandOption{serverOption("The server to restart", true)},
				},
			},
		},
	}

	_, err := b.session.ApplicationCommandBulkOverwrite(b.cfg.Client.ApplicationID, b.cfg.Client.GuildID, commands)
	if err != nil {
		return fmt.Errorf("registering commands: %w", err)
	}
	return nil
}

func (b *Bot) handleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		b.handleCommand(s, i)
	case discordgo.InteractionMessageComponent:
		b.handleComponent(s, i)
	}
}

func (b *Bot) handleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	data := i.ApplicationCommandData()
	if data.Name != "ark" || len(data.Options) == 0 {
		return
	}

	sub := data.Options[0]
	var target string
	for _, opt := range sub.Options {
		if opt.Name == "server" {
			target = opt.StringValue()
		}
	}

	// Player listings are noisy, keep them to the requester
	if err := deferReply(s, i, sub.Name == "listplayers"); err != nil {
		b.log.Error().Err(err).Str("command", sub.Name).Msg("failed to defer reply")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
	defer cancel()

	b.log.Info().
		Str("command", sub.Name).
		Str("server", target).
		Str("user", requesterID(i)).
		Msg("handling command")

	switch sub.Name {
	case "dinowipe":
		b.handleDinoWipe(ctx, s, i, target)
	case "list":
		b.handleList(ctx, s, i)
	case "listplayers":
		b.handleListPlayers(ctx, s, i, target)
	case "start", "stop", "restart":
		b.handleLifecycle(ctx, s, i, sub.Name, target)
	}
}

func (b *Bot) handleComponent(s *discordgo.Session, i *discordgo.InteractionCreate) {
	customID := i.MessageComponentData().CustomID
	parts := strings.Split(customID, ":")
	if len(parts) < 3 || parts[0] != "ark" {
		return
	}

	if err := deferUpdate(s, i); err != nil {
		b.log.Error().Err(err).Str("custom_id", customID).Msg("failed to defer update")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
	defer cancel()

	var target string
	if len(parts) > 3 {
		target = parts[3]
	}

	switch parts[1] {
	case "wipe":
		b.handleWipeComponent(ctx, s, i, parts[2], target)
	case "lc":
		switch parts[2] {
		case "cancel":
			b.editComplex(s, i, "Cancelled. Nothing was touched.", nil)
		case "confirm":
			// confirm carries action and target: ark:lc:confirm:<action>:<server>
			if len(parts) < 5 {
				return
			}
			b.handleLifecycleConfirm(ctx, s, i, parts[3], parts[4])
		}
	}
}

func (b *Bot) editComplex(s *discordgo.Session, i *discordgo.InteractionCreate, content string, components []discordgo.MessageComponent) {
	if err := editReply(s, i, content, components); err != nil {
		b.log.Error().Err(err).Msg("failed to edit reply")
	}
}

// consumeEvents relays vote and wipe outcomes back to the channel the
// vote was opened in, replying to the poll message.
func (b *Bot) consumeEvents(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-b.orch.Events():
			b.announce(ev)
		}
	}
}

func (b *Bot) announce(ev domain.Event) {
	label := ev.Vote.Target
	if srv, ok := b.cfg.Ark.Server(ev.Vote.Target); ok {
		label = srv.Label()
	}

	var title, description string
	var color int
	switch ev.Type {
	case domain.EventVotePassed:
		title = "Vote passed"
		description = fmt.Sprintf("%d for, %d against. Wiping wild creatures on **%s**...", ev.For, ev.Against, label)
		color = 0x57F287
	case domain.EventVoteFailed:
		title = "Vote failed"
		if ev.For == 0 && ev.Against == 0 {
			description = fmt.Sprintf("Nobody voted, so the wild creatures on **%s** live another day.", label)
		} else {
			description = fmt.Sprintf("%d for, %d against. No wipe on **%s**.", ev.For, ev.Against, label)
		}
		color = 0xED4245
	case domain.EventWipeCompleted:
		title = "Wipe complete"
		description = fmt.Sprintf("All wild creatures on **%s** have been wiped!", label)
		color = 0x57F287
	case domain.EventWipeFailed:
		title = "Wipe failed"
		description = fmt.Sprintf("The wipe on **%s** did not complete. An admin should take a look.", label)
		color = 0xED4245
	default:
		return
	}

	_, err := b.session.ChannelMessageSendComplex(ev.Requester.Origin, &discordgo.MessageSend{
		Embeds: []*discordgo.MessageEmbed{{
			Title:       title,
			Description: description,
			Color:       color,
		}},
		Reference: &discordgo.MessageReference{
			MessageID: ev.Vote.ExternalPollID,
			ChannelID: ev.Requester.Origin,
		},
	})
	if err != nil {
		b.log.Error().Err(err).Str("vote", ev.Vote.ID).Msg("failed to announce outcome")
	}
}
