package discord

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/axieum/hlna/internal/config"
)

// Component identifiers for lifecycle confirmations.
const (
	lifecycleConfirmID = "ark:lc:confirm"
	lifecycleCancelID  = "ark:lc:cancel"
)

// handleLifecycle asks for confirmation before acting on a server.
func (b *Bot) handleLifecycle(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, action, target string) {
	srv, ok := b.lookupService(s, i, target)
	if !ok {
		return
	}

	running, err := b.runningServices(ctx)
	if err != nil {
		b.log.Error().Err(err).Msg("failed to check services")
		b.editComplex(s, i, "I couldn't reach the server host. Try again later.", nil)
		return
	}

	isRunning := running[srv.DockerService]
	switch action {
	case "start":
		if isRunning {
			b.editComplex(s, i, fmt.Sprintf("**%s** is already running.", srv.Label()), nil)
			return
		}
		if len(running) >= b.cfg.Ark.MaxServers {
			b.editComplex(s, i, fmt.Sprintf("There are already **%d** servers running. Stop one first.", len(running)), nil)
			return
		}
	case "stop", "restart":
		if !isRunning {
			b.editComplex(s, i, fmt.Sprintf("**%s** is not running.", srv.Label()), nil)
			return
		}
	}

	b.editComplex(s, i,
		fmt.Sprintf("Are you sure you want to **%s** %s?", action, srv.Label()),
		confirmButtons(action, target))
}

func confirmButtons(action, target string) []discordgo.MessageComponent {
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			discordgo.Button{
				Label:    "Confirm",
				Style:    discordgo.DangerButton,
				CustomID: fmt.Sprintf("%s:%s:%s", lifecycleConfirmID, action, target),
			},
			discordgo.Button{
				Label:    "Cancel",
				Style:    discordgo.SecondaryButton,
				CustomID: lifecycleCancelID,
			},
		}},
	}
}

// handleLifecycleConfirm performs the confirmed action.
func (b *Bot) handleLifecycleConfirm(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, action, target string) {
	srv, ok := b.cfg.Ark.Server(target)
	if !ok || srv.DockerService == "" {
		b.editComplex(s, i, fmt.Sprintf("I don't know a server called **%s**.", target), nil)
		return
	}

	switch action {
	case "start":
		if err := b.compose.Up(ctx, srv.DockerService); err != nil {
			b.log.Error().Err(err).Str("target", target).Msg("failed to start service")
			b.editComplex(s, i, fmt.Sprintf("I couldn't start **%s**.", srv.Label()), nil)
			return
		}
		b.editComplex(s, i, fmt.Sprintf("**%s** is starting up. Give it a few minutes.", srv.Label()), nil)

	case "stop":
		if !b.saveBeforeShutdown(ctx, s, i, srv) {
			return
		}
		if err := b.compose.Down(ctx, srv.DockerService); err != nil {
			b.log.Error().Err(err).Str("target", target).Msg("failed to stop service")
			b.editComplex(s, i, fmt.Sprintf("I couldn't stop **%s**.", srv.Label()), nil)
			return
		}
		b.editComplex(s, i, fmt.Sprintf("**%s** has been shut down.", srv.Label()), nil)

	case "restart":
		if !b.saveBeforeShutdown(ctx, s, i, srv) {
			return
		}
		if err := b.compose.Restart(ctx, srv.DockerService); err != nil {
			b.log.Error().Err(err).Str("target", target).Msg("failed to restart service")
			b.editComplex(s, i, fmt.Sprintf("I couldn't restart **%s**.", srv.Label()), nil)
			return
		}
		b.editComplex(s, i, fmt.Sprintf("**%s** is restarting. Give it a few minutes.", srv.Label()), nil)
	}
}

// saveBeforeShutdown saves the world so player progress survives the
// shutdown. The shutdown is aborted when the save fails.
func (b *Bot) saveBeforeShutdown(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, srv config.ArkServer) bool {
	if !srv.HasRcon() {
		return true
	}
	if err := b.cluster.Save(ctx, srv.Name); err != nil {
		b.log.Error().Err(err).Str("target", srv.Name).Msg("save before shutdown failed")
		b.editComplex(s, i, fmt.Sprintf("I couldn't save the world on **%s**, so I'm leaving it alone.", srv.Label()), nil)
		return false
	}
	return true
}

// runningServices returns the set of compose services that are up.
func (b *Bot) runningServices(ctx context.Context) (map[string]bool, error) {
	services, err := b.compose.Services(ctx)
	if err != nil {
		return nil, err
	}
	running := make(map[string]bool)
	for _, svc := range services {
		if svc.Running() {
			running[svc.Name] = true
		}
	}
	return running, nil
}

func (b *Bot) lookupService(s *discordgo.Session, i *discordgo.InteractionCreate, target string) (config.ArkServer, bool) {
	srv, ok := b.cfg.Ark.Server(target)
	if !ok {
		b.editComplex(s, i, fmt.Sprintf("I don't know a server called **%s**.", target), nil)
		return config.ArkServer{}, false
	}
	if srv.DockerService == "" {
		b.editComplex(s, i, fmt.Sprintf("**%s** is not managed by this bot.", srv.Label()), nil)
		return config.ArkServer{}, false
	}
	return srv, true
}
